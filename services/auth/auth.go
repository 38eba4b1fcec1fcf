package auth

import (
	"context"
	"time"

	"venuebook/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const sessionTTL = time.Hour

// DefaultAuthProvider validates bearer tokens: a JWT signature check plus a
// Redis-backed session cache so revoked tokens stop working before they
// expire. It only answers "who is this, if anyone"; the flow's
// authentication gate decides what to do about an anonymous caller.
type DefaultAuthProvider struct {
	AuthCache *redis.Client
	Logger    *zap.Logger
}

func NewAuthProvider(authCache *redis.Client, logger *zap.Logger) *DefaultAuthProvider {
	return &DefaultAuthProvider{AuthCache: authCache, Logger: logger}
}

// IsAuthenticated reports whether the token identifies a signed-in user.
// An empty or invalid token is simply an anonymous caller, never an error.
func (p *DefaultAuthProvider) IsAuthenticated(ctx context.Context, token string) (string, bool) {
	if token == "" {
		return "", false
	}

	userID, err := utils.ExtractIDFromToken(token)
	if err != nil {
		p.Logger.Debug("token rejected", zap.Error(err))
		return "", false
	}

	if p.AuthCache == nil {
		return userID, true
	}

	cacheKey := "auth:" + userID
	storedHash, err := p.AuthCache.Get(ctx, cacheKey).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		// Cache trouble should not lock users out of a valid session.
		p.Logger.Warn("auth cache unavailable, accepting signed token", zap.Error(err))
		return userID, true
	}
	if storedHash != utils.HashToken(token) {
		return "", false
	}

	_ = p.AuthCache.Expire(ctx, cacheKey, sessionTTL).Err()
	return userID, true
}

// RegisterSession stores the token hash for a signed-in user so later
// requests validate against it.
func (p *DefaultAuthProvider) RegisterSession(ctx context.Context, userID, token string) error {
	if p.AuthCache == nil {
		return nil
	}
	return p.AuthCache.Set(ctx, "auth:"+userID, utils.HashToken(token), sessionTTL).Err()
}
