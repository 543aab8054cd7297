package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ICacheClient defines the contract for the expiring key-value store backing
// the revocation and reset-token entries. This abstraction decouples the
// TokenStore from a concrete Redis implementation, enabling easier testing
// and future flexibility. *redis.Client satisfies it directly.
type ICacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
	Keys(ctx context.Context, pattern string) *redis.StringSliceCmd
}
