package slack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeSignatureShape(t *testing.T) {
	sig := ComputeSignature("secret", "1546305941", []byte("payload=hello"))

	assert.True(t, strings.HasPrefix(sig, "v0="))
	assert.Len(t, sig, 3+64)
}

func TestVerifySignature(t *testing.T) {
	secret := "8f742231b10e8888abcd99yyyzzz85a5"
	timestamp := "1546305941"
	body := []byte("payload=%7B%22type%22%3A%22interactive_message%22%7D")

	valid := ComputeSignature(secret, timestamp, body)

	t.Run("accepts matching signature", func(t *testing.T) {
		assert.True(t, VerifySignature(secret, timestamp, body, valid))
	})

	t.Run("rejects tampered body", func(t *testing.T) {
		assert.False(t, VerifySignature(secret, timestamp, []byte("payload=tampered"), valid))
	})

	t.Run("rejects tampered timestamp", func(t *testing.T) {
		assert.False(t, VerifySignature(secret, "1546305942", body, valid))
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		assert.False(t, VerifySignature("other-secret", timestamp, body, valid))
	})

	t.Run("rejects empty signature", func(t *testing.T) {
		assert.False(t, VerifySignature(secret, timestamp, body, ""))
	})
}
