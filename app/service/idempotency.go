package service

import (
	"crypto/rand"
	"encoding/hex"
)

// 16 bytes gives the 128 bits of entropy the provider expects for collapsing
// retried initiate calls.
const idempotencyKeyBytes = 16

func NewIdempotencyKey() (string, error) {
	buf := make([]byte, idempotencyKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
