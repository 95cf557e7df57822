// Package teamcode generates the short join codes handed to team leaders.
package teamcode

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length of a join code. Codes are secret until the team is approved, so they
// come from crypto/rand rather than a seeded PRNG.
const Length = 8

func Generate() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("rand.Read -> %w", err)
	}

	var sb strings.Builder
	sb.Grow(Length)
	for _, b := range buf {
		sb.WriteByte(charset[int(b)%len(charset)])
	}

	return sb.String(), nil
}
