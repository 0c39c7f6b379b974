package utils

import (
	"crypto/hmac"     // HMAC for the time-step MAC
	"crypto/rand"     // Secret generation
	"crypto/sha1"     // TOTP uses HMAC-SHA1
	"encoding/base32" // Secrets are exchanged base32-encoded
	"encoding/binary" // Big-endian counter encoding
	"fmt"             // Code formatting
	"net/url"         // otpauth URI building
	"strings"         // Secret normalization
	"time"            // Time steps
)

// TOTP parameters: 30 second steps, 6 digit codes
const (
	totpStep   = 30 * time.Second
	totpDigits = 6
)

// GenerateTOTPSecret returns a new random base32 secret without padding
func GenerateTOTPSecret() (string, error) {
	buf := make([]byte, 20) // 160-bit secret per RFC 4226
	if _, err := rand.Read(buf); err != nil {
		return "", err // Return error if the RNG fails
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf), nil
}

// TOTPCode computes the 6-digit code for a secret at a given time
func TOTPCode(secret string, t time.Time) (string, error) {
	key, err := decodeSecret(secret) // Decode the base32 secret
	if err != nil {
		return "", err // Invalid secret
	}
	counter := uint64(t.Unix()) / uint64(totpStep.Seconds()) // Time-step counter
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter) // Counter as big-endian bytes
	mac := hmac.New(sha1.New, key)              // HMAC-SHA1 over the counter
	mac.Write(msg[:])
	sum := mac.Sum(nil)
	// Dynamic truncation per RFC 4226 section 5.3
	off := sum[len(sum)-1] & 0x0f
	code := binary.BigEndian.Uint32(sum[off:off+4]) & 0x7fffffff
	return fmt.Sprintf("%06d", code%1000000), nil // Zero-padded 6 digits
}

// VerifyTOTP checks a code against the current step and one step of
// clock skew in each direction
func VerifyTOTP(secret, code string, t time.Time) bool {
	for _, skew := range []time.Duration{0, -totpStep, totpStep} {
		want, err := TOTPCode(secret, t.Add(skew)) // Code for the skewed step
		if err != nil {
			return false // Invalid secret
		}
		if hmac.Equal([]byte(want), []byte(code)) {
			return true // Code matches this step
		}
	}
	return false // No step matched
}

// TOTPProvisioningURI builds the otpauth:// URI that authenticator
// apps import, usually rendered as a QR code by the client
func TOTPProvisioningURI(secret, account, issuer string) string {
	v := url.Values{}
	v.Set("secret", secret)                     // Shared secret
	v.Set("issuer", issuer)                     // Issuer label
	v.Set("algorithm", "SHA1")                  // Hash algorithm
	v.Set("digits", fmt.Sprintf("%d", totpDigits)) // Code length
	v.Set("period", fmt.Sprintf("%d", int(totpStep.Seconds()))) // Step seconds
	label := url.PathEscape(issuer + ":" + account)
	return "otpauth://totp/" + label + "?" + v.Encode()
}

// decodeSecret decodes a base32 secret, tolerating lowercase input and
// missing padding
func decodeSecret(secret string) ([]byte, error) {
	s := strings.ToUpper(strings.TrimSpace(secret))
	s = strings.TrimRight(s, "=") // Normalize away any padding
	return base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(s)
}
