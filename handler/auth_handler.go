package handler

import (
	"encoding/json"
	"errors"
	"go-auth-api/common"
	"go-auth-api/model"
	"go-auth-api/service"
	"net/http"
)

type AuthHandler struct {
	authService  *service.AuthService
	resetService *service.PasswordResetService
}

func NewAuthHandler(authService *service.AuthService, resetService *service.PasswordResetService) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		resetService: resetService,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// Signup godoc
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.SignupRequest  true  "New user payload"
// @Success      201      {object}  model.User
// @Failure      409      {object}  common.AppError
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.SignupRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	user, err := h.authService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return common.NewAppError(http.StatusConflict, "Email already registered", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Error creating user", err)
	}

	writeJSON(w, http.StatusCreated, user)
	return nil
}

// Login godoc
// @Summary      Authenticate and issue an access/refresh token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.LoginRequest  true  "Credentials"
// @Success      200      {object}  model.TokenPair
// @Failure      401      {object}  common.AppError
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	pair, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return common.NewAppError(http.StatusUnauthorized, "Incorrect email or password", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Error logging in", err)
	}

	writeJSON(w, http.StatusOK, pair)
	return nil
}

// Refresh godoc
// @Summary      Exchange a refresh token for a new access token
// @Description  The refresh token is returned unchanged; it is not rotated.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.RefreshRequest  true  "Refresh token"
// @Success      200      {object}  model.TokenPair
// @Failure      401      {object}  common.AppError
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	pair, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			return common.NewAppError(http.StatusUnauthorized, "Invalid refresh token", nil)
		}
		if errors.Is(err, service.ErrUserNotFound) {
			return common.NewAppError(http.StatusUnauthorized, "User not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Error refreshing token", err)
	}

	writeJSON(w, http.StatusOK, pair)
	return nil
}

// Logout godoc
// @Summary      Revoke the presented access token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  common.AppError
// @Failure      401  {object}  common.AppError
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	tokenString, ok := r.Context().Value(AccessTokenKey).(string)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Could not validate credentials", nil)
	}

	if err := h.authService.Logout(r.Context(), tokenString); err != nil {
		if errors.Is(err, service.ErrMalformedToken) {
			return common.NewAppError(http.StatusBadRequest, "Token missing jti or exp", nil)
		}
		if errors.Is(err, service.ErrInvalidToken) {
			return common.NewAppError(http.StatusBadRequest, "Invalid token", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Error logging out", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
	return nil
}

// Me godoc
// @Summary      Return the authenticated user's profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  common.AppError
// @Router       /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, ok := r.Context().Value(CurrentUserKey).(*model.User)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Could not validate credentials", nil)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":    user.ID,
		"email": user.Email,
	})
	return nil
}

// RevokedTokens godoc
// @Summary      List the store keys of currently revoked tokens
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string][]string
// @Router       /auth/revoked-tokens [get]
func (h *AuthHandler) RevokedTokens(w http.ResponseWriter, r *http.Request) *common.AppError {
	keys, err := h.authService.ListRevokedTokens(r.Context())
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Error listing revoked tokens", err)
	}
	if keys == nil {
		keys = []string{}
	}

	writeJSON(w, http.StatusOK, map[string][]string{"revoked_tokens": keys})
	return nil
}

// ForgotPassword godoc
// @Summary      Email a single-use password reset link
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.ForgotPasswordRequest  true  "Account email"
// @Success      200      {object}  map[string]string
// @Failure      404      {object}  common.AppError
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.ForgotPasswordRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	if err := h.resetService.ForgotPassword(r.Context(), req.Email); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return common.NewAppError(http.StatusNotFound, "User not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Error starting password reset", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset link sent"})
	return nil
}

// ResetPassword godoc
// @Summary      Reset the password with a single-use token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.ResetPasswordRequest  true  "Reset token and new password"
// @Success      200      {object}  map[string]string
// @Failure      400      {object}  common.AppError
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.ResetPasswordRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	if err := h.resetService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrResetTokenInvalid) {
			return common.NewAppError(http.StatusBadRequest, "Invalid or expired token", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Error resetting password", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successful"})
	return nil
}
