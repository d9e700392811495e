package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

var (
	// ErrDeclined is a definitive refusal from the gateway; retrying the
	// same charge will not help.
	ErrDeclined = errors.New("payment declined")
	// ErrUnavailable covers transport failures and an open breaker.
	ErrUnavailable = errors.New("payment gateway unavailable")
)

// Charger is what the checkout HTTP layer depends on.
type Charger interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

type ChargeRequest struct {
	CheckoutID string  `json:"checkoutId"`
	Amount     float64 `json:"amount"`
	Method     string  `json:"method"`
}

type ChargeResult struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	Reason        string `json:"reason,omitempty"`
}

const statusSuccess = "success"

// Gateway charges through an external HTTP payment provider. Calls run inside
// a circuit breaker so a flapping provider fails fast instead of tying up
// checkout requests.
type Gateway struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*ChargeResult]
	log     *zap.Logger
}

func NewGateway(baseURL string, timeout time.Duration, log *zap.Logger) *Gateway {
	settings := gobreaker.Settings{
		Name:    "payment-gateway",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("payment breaker state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Gateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[*ChargeResult](settings),
		log:     log,
	}
}

func (g *Gateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	result, err := g.breaker.Execute(func() (*ChargeResult, error) {
		return g.charge(ctx, req)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if result.Status != statusSuccess {
		// A decline is a settled answer from the provider, distinct from
		// the provider being down.
		return result, fmt.Errorf("%w: %s", ErrDeclined, result.Reason)
	}
	return result, nil
}

func (g *Gateway) charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/charges", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("gateway returned %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result ChargeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("malformed gateway response: %w", err)
	}

	if result.Status != statusSuccess {
		g.log.Info("charge declined",
			zap.String("checkout_id", req.CheckoutID),
			zap.String("reason", result.Reason))
		// A decline is a settled answer, not a provider fault, so it must
		// not trip the breaker.
		return &result, nil
	}

	return &result, nil
}
