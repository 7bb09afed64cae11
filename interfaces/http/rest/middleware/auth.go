package middleware

import (
	"net/http"
	"strings"

	"pm-backend/pkg/auth"
	"pm-backend/pkg/common"
)

// Authenticate verifies the bearer credential on every request and attaches
// the caller context before the core is reached. Requests without a valid
// credential never make it past this stage.
func Authenticate(jwtService *auth.JWTService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				common.RespondMessage(w, http.StatusUnauthorized, "Missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				common.RespondMessage(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}

			claims, err := jwtService.ValidateToken(parts[1])
			if err != nil {
				switch err {
				case auth.ErrExpiredToken:
					common.RespondMessage(w, http.StatusUnauthorized, "Token has expired")
				case auth.ErrInvalidSignature:
					common.RespondMessage(w, http.StatusUnauthorized, "Invalid token signature")
				default:
					common.RespondMessage(w, http.StatusUnauthorized, "Invalid token")
				}
				return
			}

			caller := &auth.CallerContext{
				AccountID: claims.AccountID,
				Name:      claims.Name,
				Role:      claims.Role,
			}

			ctx := auth.SetCallerInContext(r.Context(), caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
