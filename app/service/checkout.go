package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-checkout/app/factory"
	"github.com/vibast-solutions/ms-go-checkout/app/provider"
	"github.com/vibast-solutions/ms-go-checkout/app/types"
)

const orderCompletePath = "/order-complete"

type CheckoutService struct {
	provider      provider.Client
	fulfiller     Fulfiller
	publicBaseURL string
	webhookSecret string
	logger        logrus.FieldLogger
}

func NewCheckoutService(
	providerClient provider.Client,
	fulfiller Fulfiller,
	publicBaseURL string,
	webhookSecret string,
) *CheckoutService {
	return &CheckoutService{
		provider:      providerClient,
		fulfiller:     fulfiller,
		publicBaseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
		webhookSecret: webhookSecret,
		logger:        factory.NewModuleLogger("checkout-service"),
	}
}

// CreatePayment creates a payment intent at the provider and returns the
// hosted checkout URL the buyer should be redirected to. Nothing is persisted
// locally; the provider payment id only survives inside the redirect URL and
// later notification payloads.
func (s *CheckoutService) CreatePayment(ctx context.Context, req *types.CreatePaymentRequest) (string, error) {
	if req == nil {
		return "", ErrInvalidRequest
	}

	idempotencyKey, err := NewIdempotencyKey()
	if err != nil {
		return "", err
	}

	output, err := s.provider.InitiatePayment(ctx, &provider.InitiateInput{
		Amount:         req.Amount,
		Currency:       req.Currency,
		CustomerEmail:  req.CustomerEmail,
		SuccessURL:     s.publicBaseURL + orderCompletePath,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id": output.PaymentID,
		"currency":   req.Currency,
	}).Info("Payment intent created")

	return output.CheckoutURL, nil
}

// ReconcileReturn fetches the authoritative status for the payment the buyer
// returned with. It is a pure read: fulfillment only ever triggers from the
// notification path, never from here.
func (s *CheckoutService) ReconcileReturn(ctx context.Context, paymentID string) (*provider.VerifyResult, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, ErrMissingPaymentID
	}

	result, err := s.provider.VerifyPayment(ctx, paymentID)
	if err != nil {
		// Status is unknown here, not negative; the buyer sees a verification
		// problem rather than a declined payment.
		return nil, fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}

	if result.Status != types.PaymentStatusSucceeded {
		return result, fmt.Errorf("%w: current status: %s", ErrPaymentNotSucceeded, result.Status)
	}

	return result, nil
}

// HandleNotification authenticates and processes a provider webhook. The
// payload must be the exact bytes received on the wire; the signature is
// computed over the raw body.
func (s *CheckoutService) HandleNotification(ctx context.Context, payload []byte, signature string) (*types.NotificationEvent, error) {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		s.logger.Warn("Webhook ignored, missing signature header")
		return nil, ErrMissingSignature
	}

	if !provider.VerifySignature(s.webhookSecret, payload, signature) {
		// Log the supplied signature for audit, never the expected digest.
		s.logger.WithFields(logrus.Fields{
			"signature":    signature,
			"payload_size": len(payload),
		}).Warn("Webhook signature verification failed")
		return nil, ErrInvalidSignature
	}

	var event types.NotificationEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.logger.WithError(err).Warn("Webhook payload could not be parsed")
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	event.PaymentID = strings.TrimSpace(event.PaymentID)
	if event.PaymentID == "" {
		// A status without a payment identity is never acted on.
		return nil, fmt.Errorf("%w: missing paymentId", ErrMalformedPayload)
	}

	switch event.Status {
	case types.PaymentStatusSucceeded:
		s.fulfiller.FulfillOrder(ctx, &event)
	case types.PaymentStatusFailed:
		s.fulfiller.RecordFailure(ctx, &event)
	default:
		// Unknown statuses are acknowledged, not rejected, so the provider can
		// add event types without breaking this endpoint.
		s.logger.WithFields(logrus.Fields{
			"payment_id": event.PaymentID,
			"status":     event.Status,
		}).Info("Webhook status ignored")
	}

	return &event, nil
}
