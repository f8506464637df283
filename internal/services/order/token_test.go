package order

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var tokenPattern = regexp.MustCompile(`^[0-9A-F]{8}$`)

func TestNewToken_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		token := NewToken()
		if !tokenPattern.MatchString(token) {
			t.Fatalf("token %q does not match %s", token, tokenPattern)
		}
	}
}

func TestNewToken_Distinct(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		seen[NewToken()] = struct{}{}
	}
	// 32 bits of randomness: a handful of collisions in 10k draws is already unlikely
	assert.GreaterOrEqual(t, len(seen), 9990)
}
