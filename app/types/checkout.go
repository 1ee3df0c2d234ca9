package types

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
)

type CreatePaymentRequest struct {
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	CustomerEmail string  `json:"customerEmail"`
}

func NewCreatePaymentRequestFromContext(ctx echo.Context) (*CreatePaymentRequest, error) {
	var body CreatePaymentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.Currency = strings.ToUpper(strings.TrimSpace(body.Currency))
	body.CustomerEmail = strings.TrimSpace(body.CustomerEmail)

	return &body, nil
}

func (r *CreatePaymentRequest) Validate() error {
	if r.Amount <= 0 {
		return errors.New("amount must be > 0")
	}
	if len(r.Currency) != 3 {
		return errors.New("currency must be 3 letters")
	}
	if r.CustomerEmail == "" {
		return errors.New("customerEmail is required")
	}
	return nil
}

type CreatePaymentResponse struct {
	RedirectURL string `json:"redirectUrl"`
}

type OrderCompleteRequest struct {
	PaymentID string
}

func NewOrderCompleteRequestFromContext(ctx echo.Context) *OrderCompleteRequest {
	return &OrderCompleteRequest{
		PaymentID: strings.TrimSpace(ctx.QueryParam("paymentId")),
	}
}

// NotificationEvent is the body of a provider webhook. The raw payload carries
// more fields; only these drive any behavior here.
type NotificationEvent struct {
	PaymentID string `json:"paymentId"`
	Status    string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)
