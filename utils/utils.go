package utils

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// SessionIDLength is the length of the random part of a visitor session id.
const SessionIDLength = 16

// GenerateRandomAlphaNumeric returns a random string drawn from crypto/rand.
func GenerateRandomAlphaNumeric(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be greater than 0")
	}

	result := make([]byte, length)
	charsetLen := big.NewInt(int64(len(charset)))

	for i := range result {
		randomIndex, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			slog.Error("failed to generate random number", "error", err)
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = charset[randomIndex.Int64()]
	}

	return string(result), nil
}

// NewSessionID returns a visitor session id such as "sess_Xk29...".
func NewSessionID() (string, error) {
	suffix, err := GenerateRandomAlphaNumeric(SessionIDLength)
	if err != nil {
		return "", err
	}
	return "sess_" + suffix, nil
}
