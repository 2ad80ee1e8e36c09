package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateToken_RoundTrip(t *testing.T) {
	v := NewTokenValidator("secret")

	token, err := v.GenerateToken("user-42", "customer", time.Minute)
	require.NoError(t, err)

	claims, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID())
	assert.Equal(t, "customer", claims.Role)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := NewTokenValidator("secret").GenerateToken("user-42", "", time.Minute)
	require.NoError(t, err)

	_, err = NewTokenValidator("other").ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	v := NewTokenValidator("secret")
	token, err := v.GenerateToken("user-42", "", -time.Minute)
	require.NoError(t, err)

	_, err = v.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateHeader(t *testing.T) {
	v := NewTokenValidator("secret")
	token, err := v.GenerateToken("user-42", "", time.Minute)
	require.NoError(t, err)

	claims, err := v.ValidateHeader("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID())

	_, err = v.ValidateHeader("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = v.ValidateHeader("Basic abc")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
