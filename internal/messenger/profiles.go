package messenger

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/waterbot/pkg/logging"
)

const (
	profileKeyPrefix       = "waterbot:profile:"
	defaultProfileCacheTTL = 24 * time.Hour
)

// ProfileLookup resolves a user's display name and UTC offset.
type ProfileLookup interface {
	UserProfile(ctx context.Context, userID string) (*UserProfile, error)
}

// CachedProfiles keeps looked-up profiles in Redis as JSON. Cache failures fall
// through to the upstream lookup.
type CachedProfiles struct {
	upstream ProfileLookup
	redis    *redis.Client
	ttl      time.Duration
	logger   *logging.Logger
}

var _ ProfileLookup = (*CachedProfiles)(nil)

// NewCachedProfiles wraps upstream with a Redis cache. A nil client disables caching.
func NewCachedProfiles(upstream ProfileLookup, client *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedProfiles {
	if ttl <= 0 {
		ttl = defaultProfileCacheTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedProfiles{upstream: upstream, redis: client, ttl: ttl, logger: logger}
}

func (c *CachedProfiles) key(userID string) string {
	return profileKeyPrefix + userID
}

// UserProfile returns the cached profile or fetches and caches it.
func (c *CachedProfiles) UserProfile(ctx context.Context, userID string) (*UserProfile, error) {
	if c.redis == nil {
		return c.upstream.UserProfile(ctx, userID)
	}

	data, err := c.redis.Get(ctx, c.key(userID)).Bytes()
	switch {
	case err == nil:
		var profile UserProfile
		if jsonErr := json.Unmarshal(data, &profile); jsonErr == nil {
			return &profile, nil
		}
		c.logger.Warn("profile cache: dropping corrupt entry", "user_id", userID)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("profile cache: read failed", "user_id", userID, "error", err)
	}

	profile, err := c.upstream.UserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	cached := *profile
	cached.Error = nil
	if encoded, err := json.Marshal(cached); err == nil {
		if err := c.redis.Set(ctx, c.key(userID), encoded, c.ttl).Err(); err != nil {
			c.logger.Warn("profile cache: write failed", "user_id", userID, "error", err)
		}
	}
	return profile, nil
}
