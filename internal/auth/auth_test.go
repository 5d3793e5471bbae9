package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseRoundTrips(t *testing.T) {
	iss := NewIssuer("test-secret")
	token, err := iss.GenerateJWT("admin")
	require.NoError(t, err)

	claims, err := iss.ParseAndVerify(token)
	require.NoError(t, err)
	require.Equal(t, "admin", claims.Subject)
}

func TestParseRejectsTokenFromDifferentSecret(t *testing.T) {
	issA := NewIssuer("secret-a")
	issB := NewIssuer("secret-b")

	token, err := issA.GenerateJWT("admin")
	require.NoError(t, err)

	_, err = issB.ParseAndVerify(token)
	require.Error(t, err)
}
