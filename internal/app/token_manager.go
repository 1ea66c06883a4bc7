package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yourgrade/gradetrack/internal/models"
)

const (
	timeFormat  = "2006-01-02 15:04:05"
	tokenPrefix = "sk-grdtrk-"
	sessionTTL  = 30 * 24 * time.Hour
)

type TokenManager struct {
	redis *redis.Client
}

func NewTokenManager(redis *redis.Client) *TokenManager {
	return &TokenManager{redis: redis}
}

func generateToken() (string, error) {
	randomBytes := make([]byte, 12)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return tokenPrefix + hex.EncodeToString(randomBytes), nil
}

// IssueToken creates a fresh session token for the user. Every login gets
// its own token, so sessions on different devices stay independent.
func (tm *TokenManager) IssueToken(ctx context.Context, userID string) (*models.TokenInfo, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	key := fmt.Sprintf(sessionKeyTpl, token)
	now := time.Now().UTC()

	pipe := tm.redis.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"user_id":               userID,
		"request_count":         0,
		"last_request_dttm_utc": now.Format(timeFormat),
		"created_dttm_utc":      now.Format(timeFormat),
	})
	pipe.Expire(ctx, key, sessionTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &models.TokenInfo{
		Token:           token,
		RequestCount:    0,
		LastRequestTime: now,
		CreatedTime:     now,
	}, nil
}

// InspectToken returns the session bookkeeping for a token, mostly for
// debugging stuck clients.
func (tm *TokenManager) InspectToken(ctx context.Context, token string) (*models.TokenInfo, error) {
	key := fmt.Sprintf(sessionKeyTpl, token)

	values, err := tm.redis.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session info: %w", err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("session not found")
	}

	lastReqTime, _ := time.Parse(timeFormat, values["last_request_dttm_utc"])
	createdTime, _ := time.Parse(timeFormat, values["created_dttm_utc"])
	reqCount, _ := strconv.Atoi(values["request_count"])

	return &models.TokenInfo{
		Token:           token,
		RequestCount:    reqCount,
		LastRequestTime: lastReqTime,
		CreatedTime:     createdTime,
	}, nil
}

func (tm *TokenManager) RevokeToken(ctx context.Context, token string) error {
	key := fmt.Sprintf(sessionKeyTpl, token)
	return tm.redis.Del(ctx, key).Err()
}

func (tm *TokenManager) Close() error {
	if tm.redis != nil {
		return tm.redis.Close()
	}
	return nil
}
