// Package shortid generates the short numeric identifiers exposed on
// public resources (orders, enrollments, certificates, quiz entities).
// Internal rows keep UUID primary keys; these ids exist so URLs and
// receipts never leak database keys.
package shortid

import (
	"crypto/rand"
	"fmt"
)

const (
	alphabet = "1234567890"
	// Length is the canonical width of a public identifier.
	Length = 6
)

// New returns a random identifier of the canonical length.
func New() (string, error) {
	return NewN(Length)
}

// NewN returns a random identifier of n digits.
func NewN(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("shortid length must be positive, got %d", n)
	}

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading randomness: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}

// IsValid reports whether value looks like an identifier produced by New.
func IsValid(value string) bool {
	if len(value) != Length {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
