package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Request header names for interactive-action callbacks.
const (
	SignatureHeader = "X-Slack-Signature"
	TimestampHeader = "X-Slack-Request-Timestamp"
)

// ComputeSignature returns the v0 request digest:
// "v0=" + hex(HMAC-SHA256(secret, "v0:" + timestamp + ":" + body)).
func ComputeSignature(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("v0:" + timestamp + ":"))
	mac.Write(body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a provided signature header in constant time.
// No timestamp freshness window is enforced; a previously valid request can be
// replayed.
func VerifySignature(secret, timestamp string, body []byte, provided string) bool {
	expected := ComputeSignature(secret, timestamp, body)
	return hmac.Equal([]byte(expected), []byte(provided))
}
