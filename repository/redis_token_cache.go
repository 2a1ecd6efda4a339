package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"rcmulti/domain"
)

// RedisTokenCache guarda tokens no Redis, com TTL igual à validade restante,
// para que instâncias concorrentes compartilhem o mesmo token.
type RedisTokenCache struct {
	client *redis.Client
}

func NewRedisTokenCache(addr string) *RedisTokenCache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisTokenCache{client: rdb}
}

func tokenKey(carrier string) string {
	return "rcmulti:token:" + carrier
}

func (r *RedisTokenCache) Get(ctx context.Context, carrier string) (domain.Token, bool) {
	val, err := r.client.Get(ctx, tokenKey(carrier)).Result()
	if err != nil {
		return domain.Token{}, false
	}
	var tok domain.Token
	if err := json.Unmarshal([]byte(val), &tok); err != nil {
		return domain.Token{}, false
	}
	return tok, true
}

func (r *RedisTokenCache) Set(ctx context.Context, carrier string, token domain.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return nil // token já vencido, não vale a pena guardar
	}
	return r.client.Set(ctx, tokenKey(carrier), data, ttl).Err()
}
