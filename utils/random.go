package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateRandomHex returns 2n hex characters from n random bytes
func GenerateRandomHex(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// ScratchName returns a fresh object name for one materialization
func ScratchName() (string, error) {
	suffix, err := GenerateRandomHex(16)
	if err != nil {
		return "", fmt.Errorf("failed to generate scratch name: %w", err)
	}
	return "vidfetch-" + suffix + ".part", nil
}
