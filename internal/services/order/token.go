package order

import (
	"strings"

	"github.com/google/uuid"
)

// TokenLength is the number of characters in a customer-facing order token
const TokenLength = 8

// NewToken returns a short uppercase hex token drawn from a random UUID
func NewToken() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(hex[:TokenLength])
}
