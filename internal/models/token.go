package models

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// tokenVersion is bumped whenever the serialized schema changes in a way old
// in-flight tokens cannot survive. Decoding rejects tokens from the future.
const tokenVersion = 1

type tokenEnvelope struct {
	V       int     `json:"v"`
	Absence Absence `json:"absence"`
}

// EncodeToken serializes a reduced absence request into the opaque
// base64 string embedded in the interactive message callback id.
func EncodeToken(a Absence) (string, error) {
	a.Requester = a.Requester.Reduced()
	if a.Reviewer != nil {
		reduced := a.Reviewer.Reduced()
		a.Reviewer = &reduced
	}
	a.Event = nil

	raw, err := json.Marshal(tokenEnvelope{V: tokenVersion, Absence: a})
	if err != nil {
		return "", fmt.Errorf("failed to encode absence token: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeToken deserializes an absence request token.
func DecodeToken(token string) (Absence, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return Absence{}, fmt.Errorf("failed to decode absence token: %w", err)
	}

	var envelope tokenEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Absence{}, fmt.Errorf("failed to decode absence token: %w", err)
	}
	if envelope.V > tokenVersion {
		return Absence{}, fmt.Errorf("unsupported absence token version %d", envelope.V)
	}
	return envelope.Absence, nil
}
