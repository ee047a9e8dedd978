package handlers

import (
	"fmt"

	"github.com/golang-jwt/jwt/v4"

	"github.com/pongarena/pongarena-backend/models"
)

// ValidateToken parses a signed token and returns its claims. The
// username inside is the connecting player's identity.
func ValidateToken(tokenStr, secretKey string) (*models.CustomClaims, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("JWT secret not set")
	}

	claims := &models.CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
