package payment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// SimulatedGateway mimics a test-mode gateway. Tokens starting with
// "tok_decline" are refused, everything else succeeds after Latency.
type SimulatedGateway struct {
	Latency time.Duration
}

func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{}
}

func (g *SimulatedGateway) Charge(ctx context.Context, token string, amount int64) (string, error) {
	if token == "" {
		return "", errors.New("payment token is required")
	}
	if amount < 0 {
		return "", errors.New("amount must not be negative")
	}

	if g.Latency > 0 {
		timer := time.NewTimer(g.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return "", err
	}

	if strings.HasPrefix(token, "tok_decline") {
		return "", errors.New("your card was declined")
	}

	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "test_ch_" + hex.EncodeToString(buf), nil
}
