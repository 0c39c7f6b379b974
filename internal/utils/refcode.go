package utils

import (
	"crypto/rand" // Random alphabet sampling
	"fmt"         // Reference formatting
	"strings"     // Builder for the code
	"time"        // Date stamp in references

	"github.com/google/uuid" // Unique reference tails
)

// Referral codes avoid 0/O and 1/I so they survive being read aloud
const refAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewReferralCode returns an 8-character shareable referral code
func NewReferralCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err // Return error if the RNG fails
	}
	var b strings.Builder
	for _, c := range buf {
		b.WriteByte(refAlphabet[int(c)%len(refAlphabet)]) // Map byte into the alphabet
	}
	return b.String(), nil
}

// NewReference returns a unique invoice/order reference like
// PRJ-20260831-7F3A2C1B, prefix identifying the record kind
func NewReference(prefix string) string {
	id := uuid.New()         // Unique tail
	tail := id.String()[:8]  // First UUID group is enough for display
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().Format("20060102"), strings.ToUpper(tail))
}
