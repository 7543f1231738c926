package utils

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// jwtSecretKey verifies JWT tokens. Loaded from JWT_SECRET with an insecure
// development fallback.
var jwtSecretKey = []byte(Getenv("JWT_SECRET", "dev-only-insecure-jwt-key"))

// Claims defines the JWT claims structure. Tokens are issued by the identity
// service fronting this API; this service only verifies them.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"` // User role for authorization
	jwt.RegisteredClaims
}

// ValidateToken parses and validates a JWT token string.
// It returns the claims if the token is valid, otherwise an error.
func ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Don't forget to validate the alg is what you expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecretKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
