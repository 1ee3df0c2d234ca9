package provider

import (
	"context"
	"fmt"
)

type InitiateInput struct {
	Amount        float64
	Currency      string
	CustomerEmail string
	SuccessURL    string

	// IdempotencyKey lets the provider collapse a retried initiate call into a
	// single charge. Fresh per creation attempt, never reused.
	IdempotencyKey string
}

type InitiateOutput struct {
	PaymentID   string
	CheckoutURL string
}

type VerifyResult struct {
	PaymentID string
	Status    string
	Amount    float64
	Currency  string
}

type Client interface {
	InitiatePayment(ctx context.Context, input *InitiateInput) (*InitiateOutput, error)
	VerifyPayment(ctx context.Context, paymentID string) (*VerifyResult, error)
}

// APIError is a non-success response from the provider, carrying the provider's
// own message so callers can tell a decline from an outage.
type APIError struct {
	StatusCode int
	Msg        string
}

func (e *APIError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("paysim request failed with status %d", e.StatusCode)
}
