package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	token, err := GenerateSessionToken(42, "member")
	require.NoError(t, err)

	claims, err := ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.AccountID)
	assert.Equal(t, "member", claims.Role)
}

func TestSessionToken_TamperedSignature(t *testing.T) {
	token, err := GenerateSessionToken(42, "member")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + parts[2][:len(parts[2])-2] + "xx"

	_, err = ValidateSessionToken(tampered)
	assert.Error(t, err)
}

func TestSessionToken_Garbage(t *testing.T) {
	_, err := ValidateSessionToken("definitely.not.a-token")
	assert.Error(t, err)
}
