package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/google/uuid"

	"teachhub/internal/domain"
)

type EnrollmentUseCase struct {
	users          UserStore
	courses        CourseStore
	enrollments    EnrollmentStore
	gateway        PaymentGateway
	guard          EnrollmentGuard
	observer       EnrollmentObserver
	paymentTimeout time.Duration
	now            func() time.Time
}

type EnrollmentOption func(*EnrollmentUseCase)

// WithEnrollmentGuard serialises concurrent attempts so the gateway is charged
// at most once per learner and course.
func WithEnrollmentGuard(g EnrollmentGuard) EnrollmentOption {
	return func(uc *EnrollmentUseCase) { uc.guard = g }
}

func WithEnrollmentObserver(o EnrollmentObserver) EnrollmentOption {
	return func(uc *EnrollmentUseCase) { uc.observer = o }
}

// WithPaymentTimeout bounds the charge call on top of the caller's context.
func WithPaymentTimeout(d time.Duration) EnrollmentOption {
	return func(uc *EnrollmentUseCase) { uc.paymentTimeout = d }
}

func WithEnrollmentClock(fn func() time.Time) EnrollmentOption {
	return func(uc *EnrollmentUseCase) { uc.now = fn }
}

func NewEnrollmentUseCase(
	users UserStore,
	courses CourseStore,
	enrollments EnrollmentStore,
	gateway PaymentGateway,
	opts ...EnrollmentOption,
) *EnrollmentUseCase {
	uc := &EnrollmentUseCase{
		users:       users,
		courses:     courses,
		enrollments: enrollments,
		gateway:     gateway,
		observer:    noopObserver{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Enroll charges the learner for the course and records the enrollment.
// Every precondition is checked before the gateway is called; once the charge
// succeeds the enrollment is written even if the caller has gone away.
func (uc *EnrollmentUseCase) Enroll(ctx context.Context, learnerID, courseID uuid.UUID, paymentToken string) (*domain.Enrollment, error) {
	enrollment, err := uc.enroll(ctx, learnerID, courseID, paymentToken)
	uc.observer.EnrollmentOutcome(outcomeOf(err))
	return enrollment, err
}

func (uc *EnrollmentUseCase) enroll(ctx context.Context, learnerID, courseID uuid.UUID, paymentToken string) (*domain.Enrollment, error) {
	course, err := uc.checkPreconditions(ctx, learnerID, courseID)
	if err != nil {
		return nil, err
	}

	if uc.guard != nil {
		release, ok, err := uc.guard.Acquire(ctx, learnerID, courseID)
		if err != nil {
			return nil, fmt.Errorf("acquire enrollment guard: %w", err)
		}
		if !ok {
			return nil, domain.ErrAlreadyEnrolled
		}
		defer release()

		// A concurrent attempt may have finished between the check and the guard.
		if err := uc.checkNotEnrolled(ctx, learnerID, courseID); err != nil {
			return nil, err
		}
	}

	txID, err := uc.charge(ctx, paymentToken, course.Price)
	if err != nil {
		return nil, err
	}

	enrollment := &domain.Enrollment{
		LearnerID:     learnerID,
		CourseID:      courseID,
		TransactionID: txID,
		Amount:        course.Price,
		TransactionAt: uc.now().UTC(),
		CourseTitle:   course.Title,
	}

	// The learner has paid; a client disconnect must not lose the record.
	if err := uc.enrollments.Create(context.WithoutCancel(ctx), enrollment); err != nil {
		if errors.Is(err, domain.ErrAlreadyEnrolled) {
			log.Printf("enrollment: duplicate after charge, learner=%s course=%s transaction=%s needs refund", learnerID, courseID, txID)
			return nil, domain.ErrAlreadyEnrolled
		}
		log.Printf("enrollment: failed to record paid enrollment, learner=%s course=%s transaction=%s: %v", learnerID, courseID, txID, err)
		return nil, fmt.Errorf("record enrollment for transaction %s: %w", txID, err)
	}

	return enrollment, nil
}

func (uc *EnrollmentUseCase) checkPreconditions(ctx context.Context, learnerID, courseID uuid.UUID) (*domain.Course, error) {
	user, err := uc.users.GetByID(ctx, learnerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrProfileIncomplete
		}
		return nil, err
	}
	if !user.IsLearner() {
		return nil, domain.ErrProfileIncomplete
	}

	course, err := uc.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsActive {
		return nil, domain.ErrCourseInactive
	}

	if err := uc.checkNotEnrolled(ctx, learnerID, courseID); err != nil {
		return nil, err
	}
	return course, nil
}

func (uc *EnrollmentUseCase) checkNotEnrolled(ctx context.Context, learnerID, courseID uuid.UUID) error {
	enrolled, err := uc.enrollments.Exists(ctx, learnerID, courseID)
	if err != nil {
		return err
	}
	if enrolled {
		return domain.ErrAlreadyEnrolled
	}
	return nil
}

// charge never retries. A failure whose outcome cannot be known is reported
// as ErrPaymentAmbiguous, every other failure as ErrPaymentFailed carrying the
// gateway's reason.
func (uc *EnrollmentUseCase) charge(ctx context.Context, token string, amount int64) (string, error) {
	chargeCtx := ctx
	if uc.paymentTimeout > 0 {
		var cancel context.CancelFunc
		chargeCtx, cancel = context.WithTimeout(ctx, uc.paymentTimeout)
		defer cancel()
	}

	txID, err := uc.gateway.Charge(chargeCtx, token, amount)
	if err == nil {
		uc.observer.PaymentCharge("ok")
		return txID, nil
	}

	if isAmbiguous(chargeCtx, err) {
		uc.observer.PaymentCharge("ambiguous")
		log.Printf("enrollment: payment outcome unknown, amount=%d: %v", amount, err)
		if errors.Is(err, domain.ErrPaymentAmbiguous) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrPaymentAmbiguous, err)
	}

	uc.observer.PaymentCharge("declined")
	return "", fmt.Errorf("%w: %w", domain.ErrPaymentFailed, err)
}

func isAmbiguous(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	if errors.Is(err, domain.ErrPaymentAmbiguous) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "enrolled"
	case errors.Is(err, domain.ErrProfileIncomplete):
		return "profile_incomplete"
	case errors.Is(err, domain.ErrCourseNotFound):
		return "course_not_found"
	case errors.Is(err, domain.ErrCourseInactive):
		return "course_inactive"
	case errors.Is(err, domain.ErrAlreadyEnrolled):
		return "already_enrolled"
	case errors.Is(err, domain.ErrPaymentAmbiguous):
		return "payment_ambiguous"
	case errors.Is(err, domain.ErrPaymentFailed):
		return "payment_failed"
	default:
		return "error"
	}
}
