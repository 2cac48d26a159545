package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	signed, err := GenerateToken("s3cret", "studio-42", time.Hour)
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(*jwt.Token) (interface{}, error) { return []byte("s3cret"), nil })
	require.NoError(t, err)
	assert.True(t, token.Valid)

	sub, err := token.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "studio-42", sub)

	exp, err := token.Claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp.Time, 5*time.Second)
}

func TestGenerateTokenRequiresCreator(t *testing.T) {
	_, err := GenerateToken("s3cret", "", time.Hour)
	assert.Error(t, err)
}
