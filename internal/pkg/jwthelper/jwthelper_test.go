package jwthelper_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/arenahq/competition-api/internal/pkg/jwthelper"
)

var signingKey = []byte("test-signing-key")

func TestGenerateAndParseToken(t *testing.T) {
	token, err := jwthelper.GenerateToken(signingKey, 42, "lea@example.com", "participant", "approved")
	require.NoError(t, err)

	claims, err := jwthelper.ParseToken(signingKey, token)
	require.NoError(t, err)
	require.Equal(t, uint(42), claims.UserID)
	require.Equal(t, "lea@example.com", claims.Email)
	require.Equal(t, "participant", claims.Role)
	require.Equal(t, "approved", claims.Status)

	require.WithinDuration(t,
		time.Now().Add(jwthelper.TokenLifespan), claims.ExpiresAt.Time, time.Minute)
}

func TestParseToken_WrongKey(t *testing.T) {
	token, err := jwthelper.GenerateToken(signingKey, 42, "lea@example.com", "participant", "approved")
	require.NoError(t, err)

	_, err = jwthelper.ParseToken([]byte("another-key"), token)
	require.Error(t, err)
}

func TestParseToken_WrongSigningMethod(t *testing.T) {
	// Tokens signed with "none" must never verify.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": 42,
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = jwthelper.ParseToken(signingKey, token)
	require.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwthelper.Claims{
		UserID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	})
	token, err := expired.SignedString(signingKey)
	require.NoError(t, err)

	_, err = jwthelper.ParseToken(signingKey, token)
	require.Error(t, err)
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := jwthelper.ParseToken(signingKey, "not.a.token")
	require.Error(t, err)
}
