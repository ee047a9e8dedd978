package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/pongarena/pongarena-backend/models"
	"github.com/pongarena/pongarena-backend/responses"
	"github.com/pongarena/pongarena-backend/utils"
)

type contextKey string

// AuthInfoKey is the request context key holding the verified claims.
const AuthInfoKey contextKey = "authInfo"

func JWTValidationMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := r.Header.Get("Authorization")
			tokenStr = strings.TrimPrefix(tokenStr, "Bearer ")

			keyFunc := func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrInvalidKey
				}
				return []byte(secret), nil
			}

			token, err := jwt.ParseWithClaims(tokenStr, &models.CustomClaims{}, keyFunc)
			if err != nil || !token.Valid {
				utils.HandleError(w, responses.UnauthorizedError{Msg: "Your token is invalid or expired. Please log in again."})
				return
			}

			authInfo, ok := token.Claims.(*models.CustomClaims)
			if !ok {
				utils.HandleError(w, responses.InternalServerError{Msg: "Error processing request."})
				return
			}

			// Store the claims in the context
			ctx := context.WithValue(r.Context(), AuthInfoKey, authInfo)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims stored by the middleware.
func ClaimsFromContext(ctx context.Context) (*models.CustomClaims, bool) {
	claims, ok := ctx.Value(AuthInfoKey).(*models.CustomClaims)
	return claims, ok
}
