package application

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateCode returns byteLength random bytes hex encoded. Uniqueness is
// enforced by the link store, not by a lookup here.
func GenerateCode(byteLength int) (string, error) {
	if byteLength <= 0 {
		return "", fmt.Errorf("code length must be positive")
	}
	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read entropy: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func GenerateSessionID() string {
	return uuid.NewString()
}

func sha256Hex(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
