package utils

import (
	"encoding/base32"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// RFC 6238 appendix B secret, "12345678901234567890" in base32
var rfcSecret = base32.StdEncoding.EncodeToString([]byte("12345678901234567890"))

func TestTOTPCodeMatchesRFCVectors(t *testing.T) {
	// SHA1 test vectors from RFC 6238 appendix B, truncated to 6 digits
	cases := []struct {
		unix int64
		want string
	}{
		{59, "287082"},
		{1111111109, "081804"},
		{1111111111, "050471"},
		{1234567890, "005924"},
		{2000000000, "279037"},
	}
	for _, tc := range cases {
		got, err := TOTPCode(rfcSecret, time.Unix(tc.unix, 0))
		require.NoError(t, err)
		require.Equal(t, tc.want, got, "t=%d", tc.unix)
	}
}

func TestVerifyTOTPAllowsOneStepOfSkew(t *testing.T) {
	now := time.Unix(1111111109, 0)
	code, err := TOTPCode(rfcSecret, now)
	require.NoError(t, err)

	require.True(t, VerifyTOTP(rfcSecret, code, now))
	require.True(t, VerifyTOTP(rfcSecret, code, now.Add(30*time.Second)))
	require.True(t, VerifyTOTP(rfcSecret, code, now.Add(-30*time.Second)))
	require.False(t, VerifyTOTP(rfcSecret, code, now.Add(90*time.Second)))
	require.False(t, VerifyTOTP(rfcSecret, "000000", now))
}

func TestVerifyTOTPToleratesLowercaseAndPadding(t *testing.T) {
	now := time.Unix(1234567890, 0)
	code, err := TOTPCode(rfcSecret, now)
	require.NoError(t, err)

	require.True(t, VerifyTOTP(strings.ToLower(rfcSecret), code, now))
	require.True(t, VerifyTOTP(rfcSecret+"====", code, now))
}

func TestGenerateTOTPSecret(t *testing.T) {
	secret, err := GenerateTOTPSecret()
	require.NoError(t, err)
	require.Len(t, secret, 32) // 20 bytes base32 without padding
	require.NotContains(t, secret, "=")

	other, err := GenerateTOTPSecret()
	require.NoError(t, err)
	require.NotEqual(t, secret, other)

	// A fresh secret produces verifiable codes
	code, err := TOTPCode(secret, time.Now())
	require.NoError(t, err)
	require.True(t, VerifyTOTP(secret, code, time.Now()))
}

func TestTOTPProvisioningURI(t *testing.T) {
	uri := TOTPProvisioningURI("ABC234", "ali@campus.edu", "studenthub")
	require.True(t, strings.HasPrefix(uri, "otpauth://totp/studenthub:ali@campus.edu?"))
	require.Contains(t, uri, "secret=ABC234")
	require.Contains(t, uri, "issuer=studenthub")
	require.Contains(t, uri, "digits=6")
	require.Contains(t, uri, "period=30")
}

func TestTOTPCodeRejectsBadSecret(t *testing.T) {
	_, err := TOTPCode("not base32 !!", time.Now())
	require.Error(t, err)
	require.False(t, VerifyTOTP("not base32 !!", "123456", time.Now()))
}
