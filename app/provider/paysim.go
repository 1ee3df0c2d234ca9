package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type PaySimConfig struct {
	BaseURL     string
	APIKey      string
	HTTPTimeout time.Duration
}

type PaySimClient struct {
	cfg    PaySimConfig
	client *http.Client
}

func NewPaySimClient(cfg PaySimConfig) *PaySimClient {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	return &PaySimClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *PaySimClient) InitiatePayment(ctx context.Context, input *InitiateInput) (*InitiateOutput, error) {
	if strings.TrimSpace(p.cfg.APIKey) == "" {
		return nil, errors.New("paysim api key is not configured")
	}
	if strings.TrimSpace(input.IdempotencyKey) == "" {
		return nil, errors.New("idempotency key is required")
	}

	reqBody, err := json.Marshal(map[string]any{
		"amount":        input.Amount,
		"currency":      input.Currency,
		"customerEmail": input.CustomerEmail,
		"successUrl":    input.SuccessURL,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/api/payments/initiate", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.cfg.APIKey)
	req.Header.Set("Idempotency-Key", input.IdempotencyKey)

	body, err := p.do(req)
	if err != nil {
		return nil, err
	}

	var payload struct {
		PaymentID   string `json:"paymentId"`
		CheckoutURL string `json:"checkoutUrl"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	if strings.TrimSpace(payload.CheckoutURL) == "" {
		return nil, errors.New("paysim initiate response missing checkoutUrl")
	}

	return &InitiateOutput{
		PaymentID:   strings.TrimSpace(payload.PaymentID),
		CheckoutURL: strings.TrimSpace(payload.CheckoutURL),
	}, nil
}

func (p *PaySimClient) VerifyPayment(ctx context.Context, paymentID string) (*VerifyResult, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, errors.New("payment id is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/api/payments/verify/"+url.PathEscape(paymentID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", p.cfg.APIKey)

	body, err := p.do(req)
	if err != nil {
		return nil, err
	}

	var payload struct {
		PaymentID string  `json:"paymentId"`
		Status    string  `json:"status"`
		Amount    float64 `json:"amount"`
		Currency  string  `json:"currency"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	return &VerifyResult{
		PaymentID: strings.TrimSpace(payload.PaymentID),
		Status:    strings.TrimSpace(payload.Status),
		Amount:    payload.Amount,
		Currency:  strings.TrimSpace(payload.Currency),
	}, nil
}

// do executes the request and returns the body, mapping non-success responses
// to an APIError carrying the provider's msg field.
func (p *PaySimClient) do(req *http.Request) ([]byte, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paysim request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var msg struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(body, &msg) == nil {
			apiErr.Msg = strings.TrimSpace(msg.Msg)
		}
		return nil, apiErr
	}

	return body, nil
}
