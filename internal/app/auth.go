package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/shrimpsizemoose/trekker/logger"
)

const sessionKeyTpl = "session:%s" // session:${token}

type Auth struct {
	enabled     bool
	redis       *redis.Client
	tokenHeader string
}

func NewAuth(config *Config) (*Auth, error) {
	if !config.Server.EnableAuth {
		return &Auth{enabled: false}, nil
	}

	opt, err := redis.ParseURL(config.Auth.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Auth{
		enabled:     true,
		redis:       client,
		tokenHeader: config.Auth.TokenHeader,
	}, nil
}

func (a *Auth) Enabled() bool {
	return a.enabled
}

func (a *Auth) Redis() *redis.Client {
	return a.redis
}

func (a *Auth) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

// ResolveToken maps a bearer token to the user id it was issued for and
// bumps the session's request counter.
func (a *Auth) ResolveToken(ctx context.Context, token string) (string, error) {
	if !a.enabled {
		return "", fmt.Errorf("auth is disabled")
	}

	key := fmt.Sprintf(sessionKeyTpl, token)

	fields, err := a.redis.HGetAll(ctx, key).Result()
	if err != nil {
		logger.Debug.Printf("Redis error: %v", err)
		return "", fmt.Errorf("redis error: %w", err)
	}
	if len(fields) == 0 || fields["user_id"] == "" {
		logger.Debug.Printf("No session found for token key: %s", key)
		return "", fmt.Errorf("invalid token")
	}

	if err := a.redis.HIncrBy(ctx, key, "request_count", 1).Err(); err != nil {
		logger.Debug.Printf("Failed to bump session counter: %v", err)
	}

	return fields["user_id"], nil
}
