package handler

import (
	"context"
	"errors"
	"go-auth-api/common"
	"go-auth-api/service"
	"net/http"
	"strings"
)

type contextKey string

const (
	// CurrentUserKey holds the *model.User resolved from the bearer token.
	CurrentUserKey contextKey = "currentUser"
	// AccessTokenKey holds the raw bearer token string, needed by logout to
	// re-read the jti and exp claims.
	AccessTokenKey contextKey = "accessToken"
)

// AuthMiddleware extracts the bearer token, runs the full access-token
// verification flow and stores the resolved user in the request context.
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				common.NewAppError(http.StatusUnauthorized, "Authorization header is required", nil).Send(w)
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				common.NewAppError(http.StatusUnauthorized, "Invalid authorization header format", nil).Send(w)
				return
			}
			tokenString := headerParts[1]

			user, err := authService.CurrentUser(r.Context(), tokenString)
			if err != nil {
				if errors.Is(err, service.ErrTokenRevoked) {
					common.NewAppError(http.StatusUnauthorized, "Token has been revoked. Please log in again.", nil).Send(w)
					return
				}
				if errors.Is(err, service.ErrInvalidCredentials) {
					common.NewAppError(http.StatusUnauthorized, "Could not validate credentials", nil).Send(w)
					return
				}
				common.NewAppError(http.StatusInternalServerError, "Internal server error", err).Send(w)
				return
			}

			ctx := context.WithValue(r.Context(), CurrentUserKey, user)
			ctx = context.WithValue(ctx, AccessTokenKey, tokenString)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
