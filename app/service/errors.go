package service

import "errors"

var (
	ErrInvalidRequest          = errors.New("invalid request")
	ErrProviderRejected        = errors.New("provider rejected payment")
	ErrVerificationUnavailable = errors.New("payment verification unavailable")
	ErrMissingPaymentID        = errors.New("missing payment id")
	ErrPaymentNotSucceeded     = errors.New("payment not successful")
	ErrMissingSignature        = errors.New("missing signature")
	ErrInvalidSignature        = errors.New("invalid signature")
	ErrMalformedPayload        = errors.New("malformed payload")
)
