package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder counts enrollment outcomes and gateway charges.
type Recorder struct {
	enrollments *prometheus.CounterVec
	charges     *prometheus.CounterVec
	gatherer    prometheus.Gatherer
}

// NewRecorder registers the counters on reg. Pass prometheus.NewRegistry() in
// tests to keep them isolated from the default registry.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	r := &Recorder{
		enrollments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teachhub_enrollments_total",
			Help: "Enrollment attempts by outcome.",
		}, []string{"outcome"}),
		charges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teachhub_payment_charges_total",
			Help: "Payment gateway charge calls by result.",
		}, []string{"result"}),
		gatherer: reg,
	}
	reg.MustRegister(r.enrollments, r.charges)
	return r
}

func (r *Recorder) EnrollmentOutcome(outcome string) {
	r.enrollments.WithLabelValues(outcome).Inc()
}

func (r *Recorder) PaymentCharge(result string) {
	r.charges.WithLabelValues(result).Inc()
}

// Handler exposes the registry the recorder was built on.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
