package service

import (
	"context"
	"database/sql"
	"errors"
	"go-auth-api/logger"
	"go-auth-api/model"
	"go-auth-api/repository"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials covers every failed access check: unknown email,
	// wrong password, bad signature, wrong scope, missing claims and unknown
	// subject. A single error prevents user enumeration.
	ErrInvalidCredentials = errors.New("could not validate credentials")
	// ErrTokenRevoked is reported when a token verifies but its jti has been
	// explicitly invalidated by a logout.
	ErrTokenRevoked = errors.New("token has been revoked")
	// ErrInvalidRefreshToken is reported when a presented refresh token fails
	// decoding or carries the wrong scope.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrUserNotFound is reported when a refresh token's subject no longer
	// resolves to a user, and by the password recovery flow.
	ErrUserNotFound = errors.New("user not found")
	// ErrMalformedToken is reported by logout when a token lacks the jti or
	// exp claims needed to record a revocation.
	ErrMalformedToken = errors.New("token missing jti or exp")
	// ErrEmailTaken is reported on signup with an already registered email.
	ErrEmailTaken = errors.New("email already registered")
)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// AuthService orchestrates login, refresh, logout and current-user
// resolution on top of the token service and the revocation store.
type AuthService struct {
	userRepo repository.IUserRepository
	tokens   *TokenService
	store    *TokenStore
}

func NewAuthService(userRepo repository.IUserRepository, tokens *TokenService, store *TokenStore) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		store:    store,
	}
}

// Login verifies the email/password pair and issues a fresh token pair.
// Missing user and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(email, password string) (*model.TokenPair, error) {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	logger.Log.WithField("user_id", user.ID).Info("User logged in")

	return &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

// Register creates a new user with a hashed password. The email must not
// already be registered.
func (s *AuthService) Register(username, email, password string) (*model.User, error) {
	_, err := s.userRepo.GetUserByEmail(email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
	}
	if err := s.userRepo.CreateUser(user); err != nil {
		return nil, err
	}

	logger.Log.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

// CurrentUser runs the full access-token verification flow: signature and
// claim validity, access scope, jti presence, revocation lookup, and subject
// resolution. It is the reusable "who is calling" gate.
func (s *AuthService) CurrentUser(ctx context.Context, tokenString string) (*model.User, error) {
	claims, err := s.tokens.DecodeToken(tokenString)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if claims.Scope != model.ScopeAccess {
		return nil, ErrInvalidCredentials
	}
	if claims.ID == "" {
		return nil, ErrInvalidCredentials
	}

	revoked, err := s.store.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Same class as a signature failure; do not leak existence.
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return user, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is returned unchanged; it is not rotated.
func (s *AuthService) Refresh(refreshToken string) (*model.TokenPair, error) {
	claims, err := s.tokens.DecodeToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	if claims.Scope != model.ScopeRefresh || claims.ID == "" {
		return nil, ErrInvalidRefreshToken
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	accessToken, err := s.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

// Logout revokes the presented access token for the remainder of its
// lifetime by recording its jti in the revocation store.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.tokens.DecodeToken(tokenString)
	if err != nil {
		return ErrInvalidToken
	}
	if claims.Scope != model.ScopeAccess {
		return ErrInvalidToken
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return ErrMalformedToken
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 0 {
		ttl = 0
	}

	if err := s.store.RevokeToken(ctx, claims.ID, ttl); err != nil {
		return err
	}

	logger.Log.WithField("jti", claims.ID).Info("Access token revoked")
	return nil
}

// ListRevokedTokens returns the store keys of all currently revoked tokens.
func (s *AuthService) ListRevokedTokens(ctx context.Context) ([]string, error) {
	return s.store.ListRevokedKeys(ctx)
}
