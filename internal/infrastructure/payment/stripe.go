package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/charge"

	"teachhub/internal/domain"
)

// StripeGateway charges a card token through the Stripe charges API.
type StripeGateway struct {
	charges  charge.Client
	currency string
}

// NewStripeGateway talks to baseURL instead of api.stripe.com when it is set.
// Retries stay off: the enrollment flow decides what an unanswered charge means.
func NewStripeGateway(secretKey, baseURL string) *StripeGateway {
	cfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: time.Minute},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	if baseURL != "" {
		cfg.URL = stripe.String(strings.TrimRight(baseURL, "/"))
	}
	return &StripeGateway{
		charges:  charge.Client{B: stripe.GetBackendWithConfig(stripe.APIBackend, cfg), Key: secretKey},
		currency: string(stripe.CurrencyUSD),
	}
}

// Charge debits amount minor units. The token doubles as idempotency key so
// a repeated request cannot charge twice. Failures where the charge may have
// gone through wrap domain.ErrPaymentAmbiguous.
func (g *StripeGateway) Charge(ctx context.Context, token string, amount int64) (string, error) {
	params := &stripe.ChargeParams{
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(g.currency),
		Description: stripe.String("TeachHub course enrollment"),
	}
	if err := params.SetSource(token); err != nil {
		return "", fmt.Errorf("charge source: %w", err)
	}
	params.Context = ctx
	params.SetIdempotencyKey(token)

	ch, err := g.charges.New(params)
	if err != nil {
		return "", classifyStripeError(ctx, err)
	}
	if ch.Status != "" && ch.Status != stripe.ChargeStatusSucceeded {
		return "", fmt.Errorf("charge %s is %s", ch.ID, ch.Status)
	}
	return ch.ID, nil
}

// classifyStripeError keeps the gateway's own reason for a refused charge and
// marks everything else, where the outcome is unknown, as ambiguous.
func classifyStripeError(ctx context.Context, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && ctx.Err() == nil {
		if stripeErr.HTTPStatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: gateway status %d: %s", domain.ErrPaymentAmbiguous, stripeErr.HTTPStatusCode, stripeErr.Msg)
		}
		if stripeErr.Msg != "" {
			return errors.New(stripeErr.Msg)
		}
		return fmt.Errorf("charge refused: %s (status %d)", stripeErr.Code, stripeErr.HTTPStatusCode)
	}
	// Timeouts, cancellation, dropped connections and unreadable responses.
	return fmt.Errorf("%w: %v", domain.ErrPaymentAmbiguous, err)
}
