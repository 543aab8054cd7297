package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	revokedKeyPrefix = "revoked:"
	resetKeyPrefix   = "reset:"
)

// ErrResetTokenInvalid is reported when a reset token is unknown, expired,
// or has already been consumed.
var ErrResetTokenInvalid = errors.New("invalid or expired reset token")

// TokenStore tracks revoked token identifiers and pending password-reset
// tokens in an expiring key-value store. All operations are single-key; the
// store's per-key atomicity is the only concurrency guarantee required.
type TokenStore struct {
	cache ICacheClient
}

func NewTokenStore(cache ICacheClient) *TokenStore {
	return &TokenStore{cache: cache}
}

// RevokeToken marks a jti as revoked for the remainder of the token's
// lifetime. A zero TTL means the token is already expired: the entry would
// expire immediately, so nothing is stored.
func (s *TokenStore) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, revokedKeyPrefix+jti, "true", ttl).Err()
}

// IsTokenRevoked reports whether a revocation entry exists for the jti.
func (s *TokenStore) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	err := s.cache.Get(ctx, revokedKeyPrefix+jti).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListRevokedKeys returns the store keys of all live revocation entries.
// No ordering is guaranteed.
func (s *TokenStore) ListRevokedKeys(ctx context.Context) ([]string, error) {
	keys, err := s.cache.Keys(ctx, revokedKeyPrefix+"*").Result()
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// CreateResetToken stores a fresh single-use reset token mapped to the user.
func (s *TokenStore) CreateResetToken(ctx context.Context, userID int, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	if err := s.cache.Set(ctx, resetKeyPrefix+token, strconv.Itoa(userID), ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// ConsumeResetToken atomically reads and deletes a reset entry, so each
// token is honored at most once even under concurrent reset attempts.
func (s *TokenStore) ConsumeResetToken(ctx context.Context, token string) (int, error) {
	val, err := s.cache.GetDel(ctx, resetKeyPrefix+token).Result()
	if err == redis.Nil {
		return 0, ErrResetTokenInvalid
	}
	if err != nil {
		return 0, err
	}
	userID, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("malformed reset entry: %w", err)
	}
	return userID, nil
}
