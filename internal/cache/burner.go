package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBurner marks activation and reset token IDs as consumed so the same
// token cannot be exchanged twice. Keys expire with the token so nothing
// accumulates.
type TokenBurner struct {
	client *redis.Client
}

func NewTokenBurner(client *redis.Client) *TokenBurner {
	return &TokenBurner{client: client}
}

// Burn returns true exactly once per token ID within ttl.
func (b *TokenBurner) Burn(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("token:used:%s", jti)
	ok, err := b.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("burn token: %w", err)
	}
	return ok, nil
}
