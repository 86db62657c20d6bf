package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrInvalidSignature is returned for every verification failure so callers
// can map it to a rejection without string matching.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Sign computes the base64-encoded HMAC-SHA256 of body under secret. This is
// the value storefront platforms place in their signature header.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the HMAC over the raw payload and compares it against the
// header-supplied signature in constant time. The comparison runs over the
// decoded digests, never over strings.
func Verify(body []byte, signature, secret string) error {
	if signature == "" {
		return fmt.Errorf("missing signature header: %w", ErrInvalidSignature)
	}

	expected, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("malformed signature encoding: %w", ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	if !hmac.Equal(mac.Sum(nil), expected) {
		return fmt.Errorf("signature mismatch: %w", ErrInvalidSignature)
	}
	return nil
}
