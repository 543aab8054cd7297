package service

import (
	"errors"
	"fmt"
	"go-auth-api/config"
	"go-auth-api/logger"
	"go-auth-api/model"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is the single decode failure: bad signature, malformed
// payload, unsupported algorithm and expired tokens are deliberately not
// distinguished to the caller.
var ErrInvalidToken = errors.New("invalid token")

func getJwtKey() []byte {
	return []byte(config.AppConfig.JWT.SecretKey)
}

// TokenService encodes and decodes signed claims and issues access and
// refresh tokens with the configured TTLs.
type TokenService struct{}

func NewTokenService() *TokenService {
	return &TokenService{}
}

// IssueAccessToken creates a short-lived token carrying the user's identity
// and a fresh jti for individual revocation.
func (s *TokenService) IssueAccessToken(userID int, email string) (string, error) {
	claims := &model.AuthClaims{
		Email: email,
		Scope: model.ScopeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(config.AccessTokenTTL())),
		},
	}
	return s.encode(claims)
}

// IssueRefreshToken creates a long-lived token used only to obtain new
// access tokens. It carries no email claim.
func (s *TokenService) IssueRefreshToken(userID int) (string, error) {
	claims := &model.AuthClaims{
		Scope: model.ScopeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(config.RefreshTokenTTL())),
		},
	}
	return s.encode(claims)
}

func (s *TokenService) encode(claims *model.AuthClaims) (string, error) {
	method := jwt.GetSigningMethod(config.AppConfig.JWT.Algorithm)
	token := jwt.NewWithClaims(method, claims)
	tokenString, err := token.SignedString(getJwtKey())
	if err != nil {
		logger.Log.WithError(err).WithField("subject", claims.Subject).Error("Failed to sign JWT")
		return "", fmt.Errorf("failed to sign token string: %w", err)
	}
	return tokenString, nil
}

// DecodeToken verifies the signature, the signing algorithm and the
// registered claims (including expiry) of a presented token.
func (s *TokenService) DecodeToken(tokenString string) (*model.AuthClaims, error) {
	claims := &model.AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return getJwtKey(), nil
	}, jwt.WithValidMethods([]string{config.AppConfig.JWT.Algorithm}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
