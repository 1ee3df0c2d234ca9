package provider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignPayload computes the hex-encoded HMAC-SHA256 digest of payload. The
// provider signs the raw request body, so callers must pass the exact bytes
// received on the wire.
func SignPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature is a valid hex HMAC-SHA256 digest
// of payload. The comparison runs in constant time; a mismatch position must
// not be observable through timing.
func VerifySignature(secret string, payload []byte, signature string) bool {
	if strings.TrimSpace(secret) == "" {
		return false
	}
	supplied, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(payload)
	return hmac.Equal(supplied, mac.Sum(nil))
}
