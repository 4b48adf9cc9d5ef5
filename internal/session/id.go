package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const idBytes = 32

// GenerateID returns an opaque, URL-safe session id with 256 bits of entropy.
func GenerateID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: failed to generate id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
