package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyAcceptsValidSignature(t *testing.T) {
	body := []byte(`{"id":123,"title":"Produto A"}`)
	sig := Sign(body, "shared-secret")

	assert.NoError(t, Verify(body, sig, "shared-secret"))
}

func TestVerifyRejectsAlteredSignature(t *testing.T) {
	body := []byte(`{"id":123,"title":"Produto A"}`)
	sig := Sign(body, "shared-secret")

	// Flip one byte of the base64 signature.
	altered := []byte(sig)
	if altered[0] == 'A' {
		altered[0] = 'B'
	} else {
		altered[0] = 'A'
	}

	assert.Error(t, Verify(body, string(altered), "shared-secret"))
}

func TestVerifyRejectsAlteredBody(t *testing.T) {
	body := []byte(`{"id":123,"title":"Produto A"}`)
	sig := Sign(body, "shared-secret")

	tampered := []byte(`{"id":124,"title":"Produto A"}`)
	assert.Error(t, Verify(tampered, sig, "shared-secret"))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	body := []byte(`{"id":123}`)
	sig := Sign(body, "secret-a")

	assert.Error(t, Verify(body, sig, "secret-b"))
}

func TestVerifyRejectsMissingSignature(t *testing.T) {
	assert.Error(t, Verify([]byte(`{}`), "", "secret"))
}

func TestVerifyRejectsGarbageEncoding(t *testing.T) {
	err := Verify([]byte(`{}`), "not-base64!!!", "secret")
	require.Error(t, err)
}

func TestVerifyFailuresWrapSentinel(t *testing.T) {
	body := []byte(`{"id":1}`)
	sig := Sign(body, "secret")

	assert.ErrorIs(t, Verify(body, sig, "other"), ErrInvalidSignature)
	assert.ErrorIs(t, Verify(body, "", "secret"), ErrInvalidSignature)
	assert.ErrorIs(t, Verify(body, "%%%", "secret"), ErrInvalidSignature)
}
