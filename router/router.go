package router

import (
	"go-auth-api/handler"
	"go-auth-api/service"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func NewRouter(authHandler *handler.AuthHandler, authService *service.AuthService) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", handler.HealthCheck)
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	mux.Handle("/auth/signup", handler.ErrorHandlingMiddleware(authHandler.Signup))
	mux.Handle("/auth/login", handler.ErrorHandlingMiddleware(authHandler.Login))
	mux.Handle("/auth/refresh", handler.ErrorHandlingMiddleware(authHandler.Refresh))
	mux.Handle("/auth/forgot-password", handler.ErrorHandlingMiddleware(authHandler.ForgotPassword))
	mux.Handle("/auth/reset-password", handler.ErrorHandlingMiddleware(authHandler.ResetPassword))
	mux.Handle("/auth/revoked-tokens", handler.ErrorHandlingMiddleware(authHandler.RevokedTokens))

	// Routes behind the bearer-token gate.
	authMW := handler.AuthMiddleware(authService)
	mux.Handle("/auth/logout", authMW(handler.ErrorHandlingMiddleware(authHandler.Logout)))
	mux.Handle("/auth/me", authMW(handler.ErrorHandlingMiddleware(authHandler.Me)))

	return mux
}
