package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tour-booking/pkg/utils"

	"go.uber.org/zap"
)

// PaymentIntent is the slice of the gateway's payment object the reconciler
// needs: correlation id, state, amount and the checkout metadata map.
type PaymentIntent struct {
	ID               string            `json:"id"`
	Status           string            `json:"status"`
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	Metadata         map[string]string `json:"metadata"`
	LastPaymentError *PaymentError     `json:"last_payment_error"`
}

type PaymentError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const PaymentIntentStatusSucceeded = "succeeded"

// PaymentGateway is the synchronous query side of the payment provider, used
// by the confirmation endpoint to verify a charge before trusting the client.
type PaymentGateway interface {
	RetrievePaymentIntent(ctx context.Context, id string) (*PaymentIntent, error)
}

type paymentClient struct {
	config utils.PaymentConfig
	client *http.Client
	log    *zap.Logger
}

func NewPaymentClient(config utils.PaymentConfig, log *zap.Logger) PaymentGateway {
	return &paymentClient{
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log.With(zap.String("gateway", "payment")),
	}
}

func (c *paymentClient) RetrievePaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	url := fmt.Sprintf("%s/v1/payment_intents/%s", c.config.BaseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build payment intent request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.SecretKey)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Error("Payment intent request failed", zap.Error(err), zap.String("intent_id", id))
		return nil, fmt.Errorf("retrieve payment intent %s: %w", id, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read payment intent response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("Payment gateway returned non-200",
			zap.Int("status", resp.StatusCode),
			zap.String("intent_id", id),
		)
		return nil, fmt.Errorf("retrieve payment intent %s: gateway status %d", id, resp.StatusCode)
	}

	var intent PaymentIntent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("decode payment intent %s: %w", id, err)
	}

	return &intent, nil
}
