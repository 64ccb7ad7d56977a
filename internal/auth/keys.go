package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// signingKeyBytes gives 256 bits of entropy per key, comfortably above the
// 128-bit floor required for HMAC secrets.
const signingKeyBytes = 32

// NewSigningKey generates a fresh opaque signing secret. Every user carries
// two of these (access and refresh); replacing one invalidates all
// outstanding tokens of that class without any server-side blacklist.
func NewSigningKey() (string, error) {
	buf := make([]byte, signingKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate signing key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
