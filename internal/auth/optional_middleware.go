package auth

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
)

// CreatorIDKey is the gin context key holding the authenticated creator id.
const CreatorIDKey = "creatorID"

// OptionalAuthMiddleware inspects for a token and sets the creator id if present and valid,
// but does not fail if the token is missing or invalid.
func OptionalAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" && secret != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString := parts[1]
				token, err := gojwt.Parse(tokenString, func(token *gojwt.Token) (interface{}, error) {
					if _, ok := token.Method.(*gojwt.SigningMethodHMAC); !ok {
						return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
					}
					return []byte(secret), nil
				})

				if err == nil {
					if claims, ok := token.Claims.(gojwt.MapClaims); ok && token.Valid {
						if sub, ok := claims["sub"].(string); ok && sub != "" {
							c.Set(CreatorIDKey, sub)
						}
					}
				}
			}
		}
		c.Next()
	}
}

// CreatorID returns the creator id set by OptionalAuthMiddleware, if any.
func CreatorID(c *gin.Context) (string, bool) {
	v, ok := c.Get(CreatorIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
