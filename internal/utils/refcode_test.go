package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewReferralCode(t *testing.T) {
	code, err := NewReferralCode()
	require.NoError(t, err)
	require.Len(t, code, 8)
	for _, c := range code {
		require.Contains(t, refAlphabet, string(c)) // Only unambiguous characters
	}

	other, err := NewReferralCode()
	require.NoError(t, err)
	require.NotEqual(t, code, other)
}

func TestNewReference(t *testing.T) {
	ref := NewReference("PRJ")
	parts := strings.Split(ref, "-")
	require.Len(t, parts, 3)
	require.Equal(t, "PRJ", parts[0])
	require.Equal(t, time.Now().Format("20060102"), parts[1])
	require.Len(t, parts[2], 8)
	require.Equal(t, strings.ToUpper(parts[2]), parts[2])

	require.NotEqual(t, ref, NewReference("PRJ")) // Unique tails
}
