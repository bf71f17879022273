package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateObjectKey generates a random storage key in the format namespace/xxxxxxxxxxxxxxxxxxxxxxxx.ext
func GenerateObjectKey(namespace, ext string) (string, error) {
	bytes := make([]byte, 12)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	name := hex.EncodeToString(bytes)
	if ext == "" {
		return fmt.Sprintf("%s/%s", namespace, name), nil
	}
	return fmt.Sprintf("%s/%s.%s", namespace, name, ext), nil
}
