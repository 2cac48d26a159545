package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the lifetime of tokens issued by the CLI.
const DefaultTTL = time.Hour * 24 * 7

// GenerateToken creates a new JWT identifying a creator.
func GenerateToken(secret, creatorID string, ttl time.Duration) (string, error) {
	if creatorID == "" {
		return "", errors.New("creator id is required")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": creatorID,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secret))
}
