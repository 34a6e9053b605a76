package jwthelper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	const signingKey = "test-signing-key"

	token, err := GenerateToken(signingKey, 42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(signingKey, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
}

func TestParseToken_WrongKey(t *testing.T) {
	token, err := GenerateToken("the-right-key", 42)
	require.NoError(t, err)

	_, err = ParseToken("the-wrong-key", token)
	require.Error(t, err)
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := ParseToken("key", "not.a.token")
	require.Error(t, err)
}
