package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vibast-solutions/ms-go-checkout/app/provider"
	"github.com/vibast-solutions/ms-go-checkout/app/types"
)

type fakeProvider struct {
	initiateInputs []*provider.InitiateInput
	initiateOut    *provider.InitiateOutput
	initiateErr    error

	verifyCalls  int
	verifyResult *provider.VerifyResult
	verifyErr    error
}

func (p *fakeProvider) InitiatePayment(_ context.Context, input *provider.InitiateInput) (*provider.InitiateOutput, error) {
	copied := *input
	p.initiateInputs = append(p.initiateInputs, &copied)
	if p.initiateErr != nil {
		return nil, p.initiateErr
	}
	return p.initiateOut, nil
}

func (p *fakeProvider) VerifyPayment(context.Context, string) (*provider.VerifyResult, error) {
	p.verifyCalls++
	if p.verifyErr != nil {
		return nil, p.verifyErr
	}
	return p.verifyResult, nil
}

type fakeFulfiller struct {
	fulfilled []string
	failed    []string
}

func (f *fakeFulfiller) FulfillOrder(_ context.Context, event *types.NotificationEvent) {
	f.fulfilled = append(f.fulfilled, event.PaymentID)
}

func (f *fakeFulfiller) RecordFailure(_ context.Context, event *types.NotificationEvent) {
	f.failed = append(f.failed, event.PaymentID)
}

const testWebhookSecret = "whsec_service_test"

func newTestService(p *fakeProvider, f *fakeFulfiller) *CheckoutService {
	return NewCheckoutService(p, f, "https://store.example.com/", testWebhookSecret)
}

func validCreateRequest() *types.CreatePaymentRequest {
	return &types.CreatePaymentRequest{
		Amount:        49.99,
		Currency:      "USD",
		CustomerEmail: "buyer@example.com",
	}
}

func TestCreatePaymentReturnsCheckoutURL(t *testing.T) {
	p := &fakeProvider{initiateOut: &provider.InitiateOutput{
		PaymentID:   "p1",
		CheckoutURL: "https://paysim.example/checkout/p1",
	}}
	svc := newTestService(p, &fakeFulfiller{})

	redirectURL, err := svc.CreatePayment(context.Background(), validCreateRequest())
	require.NoError(t, err)
	require.Equal(t, "https://paysim.example/checkout/p1", redirectURL)

	require.Len(t, p.initiateInputs, 1)
	input := p.initiateInputs[0]
	require.Equal(t, 49.99, input.Amount)
	require.Equal(t, "USD", input.Currency)
	require.Equal(t, "https://store.example.com/order-complete", input.SuccessURL)
	require.Len(t, input.IdempotencyKey, 2*idempotencyKeyBytes)
}

func TestCreatePaymentUsesFreshIdempotencyKeys(t *testing.T) {
	p := &fakeProvider{initiateOut: &provider.InitiateOutput{CheckoutURL: "https://paysim.example/c"}}
	svc := newTestService(p, &fakeFulfiller{})

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		_, err := svc.CreatePayment(context.Background(), validCreateRequest())
		require.NoError(t, err)
	}
	for _, input := range p.initiateInputs {
		require.False(t, seen[input.IdempotencyKey], "idempotency key reused")
		seen[input.IdempotencyKey] = true
	}
}

func TestCreatePaymentSurfacesProviderRejection(t *testing.T) {
	p := &fakeProvider{initiateErr: &provider.APIError{StatusCode: 402, Msg: "card declined"}}
	svc := newTestService(p, &fakeFulfiller{})

	_, err := svc.CreatePayment(context.Background(), validCreateRequest())
	require.ErrorIs(t, err, ErrProviderRejected)
	require.Contains(t, err.Error(), "card declined")
}

func TestReconcileReturnMissingPaymentID(t *testing.T) {
	p := &fakeProvider{}
	svc := newTestService(p, &fakeFulfiller{})

	_, err := svc.ReconcileReturn(context.Background(), "  ")
	require.ErrorIs(t, err, ErrMissingPaymentID)
	require.Zero(t, p.verifyCalls, "no provider call for a missing payment id")
}

func TestReconcileReturnVerificationUnavailable(t *testing.T) {
	p := &fakeProvider{verifyErr: errors.New("connection refused")}
	svc := newTestService(p, &fakeFulfiller{})

	_, err := svc.ReconcileReturn(context.Background(), "p1")
	require.ErrorIs(t, err, ErrVerificationUnavailable)
	require.NotErrorIs(t, err, ErrPaymentNotSucceeded)
}

func TestReconcileReturnNonSucceededStatuses(t *testing.T) {
	for _, status := range []string{types.PaymentStatusPending, types.PaymentStatusFailed} {
		t.Run(status, func(t *testing.T) {
			p := &fakeProvider{verifyResult: &provider.VerifyResult{PaymentID: "p1", Status: status}}
			svc := newTestService(p, &fakeFulfiller{})

			result, err := svc.ReconcileReturn(context.Background(), "p1")
			require.ErrorIs(t, err, ErrPaymentNotSucceeded)
			require.Contains(t, err.Error(), status)
			require.NotNil(t, result)
		})
	}
}

func TestReconcileReturnSucceeded(t *testing.T) {
	p := &fakeProvider{verifyResult: &provider.VerifyResult{
		PaymentID: "p1",
		Status:    types.PaymentStatusSucceeded,
		Amount:    49.99,
		Currency:  "USD",
	}}
	f := &fakeFulfiller{}
	svc := newTestService(p, f)

	result, err := svc.ReconcileReturn(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, "p1", result.PaymentID)
	require.Empty(t, f.fulfilled, "reconciliation never fulfills")
}

func signedBody(body string) ([]byte, string) {
	payload := []byte(body)
	return payload, provider.SignPayload(testWebhookSecret, payload)
}

func TestHandleNotificationMissingSignature(t *testing.T) {
	svc := newTestService(&fakeProvider{}, &fakeFulfiller{})
	_, err := svc.HandleNotification(context.Background(), []byte(`{"paymentId":"p1","status":"succeeded"}`), "")
	require.ErrorIs(t, err, ErrMissingSignature)
}

func TestHandleNotificationInvalidSignature(t *testing.T) {
	f := &fakeFulfiller{}
	svc := newTestService(&fakeProvider{}, f)

	payload, sig := signedBody(`{"paymentId":"p1","status":"succeeded"}`)
	tampered := append([]byte(nil), payload...)
	tampered[0] ^= 0x01

	_, err := svc.HandleNotification(context.Background(), tampered, sig)
	require.ErrorIs(t, err, ErrInvalidSignature)
	require.Empty(t, f.fulfilled)
}

func TestHandleNotificationMalformedPayload(t *testing.T) {
	svc := newTestService(&fakeProvider{}, &fakeFulfiller{})

	payload, sig := signedBody(`not json`)
	_, err := svc.HandleNotification(context.Background(), payload, sig)
	require.ErrorIs(t, err, ErrMalformedPayload)
}

func TestHandleNotificationMissingPaymentID(t *testing.T) {
	f := &fakeFulfiller{}
	svc := newTestService(&fakeProvider{}, f)

	payload, sig := signedBody(`{"status":"succeeded"}`)
	_, err := svc.HandleNotification(context.Background(), payload, sig)
	require.ErrorIs(t, err, ErrMalformedPayload)
	require.Empty(t, f.fulfilled)
}

func TestHandleNotificationSucceededTriggersFulfillment(t *testing.T) {
	f := &fakeFulfiller{}
	svc := newTestService(&fakeProvider{}, f)

	payload, sig := signedBody(`{"paymentId":"p1","status":"succeeded"}`)
	event, err := svc.HandleNotification(context.Background(), payload, sig)
	require.NoError(t, err)
	require.Equal(t, "p1", event.PaymentID)
	require.Equal(t, []string{"p1"}, f.fulfilled)
	require.Empty(t, f.failed)
}

func TestHandleNotificationFailedTriggersBookkeeping(t *testing.T) {
	f := &fakeFulfiller{}
	svc := newTestService(&fakeProvider{}, f)

	payload, sig := signedBody(`{"paymentId":"p2","status":"failed"}`)
	_, err := svc.HandleNotification(context.Background(), payload, sig)
	require.NoError(t, err)
	require.Empty(t, f.fulfilled)
	require.Equal(t, []string{"p2"}, f.failed)
}

func TestHandleNotificationUnknownStatusAccepted(t *testing.T) {
	f := &fakeFulfiller{}
	svc := newTestService(&fakeProvider{}, f)

	payload, sig := signedBody(`{"paymentId":"p3","status":"refunded"}`)
	event, err := svc.HandleNotification(context.Background(), payload, sig)
	require.NoError(t, err)
	require.Equal(t, "refunded", event.Status)
	require.Empty(t, f.fulfilled)
	require.Empty(t, f.failed)
}
