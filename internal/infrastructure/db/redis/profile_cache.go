package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/identitydesk/identity-api/internal/api/metrics"
	"github.com/identitydesk/identity-api/internal/core/domain"
)

const profileTTL = 5 * time.Minute

// ProfileCache caches public-profile lookups by username. Entries are
// invalidated on profile updates and deletes; the TTL bounds staleness for
// anything missed. The cached JSON never contains the password hash (the
// field is excluded from marshaling).
type ProfileCache struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewProfileCache(client *redis.Client, log zerolog.Logger) *ProfileCache {
	return &ProfileCache{client: client, log: log}
}

func (c *ProfileCache) key(username string) string {
	return "profile:" + username
}

func (c *ProfileCache) Get(ctx context.Context, username string) (*domain.User, bool) {
	data, err := c.client.Get(ctx, c.key(username)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("username", username).Msg("profile cache read failed")
		}
		metrics.ProfileCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	var u domain.User
	if err := json.Unmarshal(data, &u); err != nil {
		metrics.ProfileCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.ProfileCacheTotal.WithLabelValues("hit").Inc()
	return &u, true
}

func (c *ProfileCache) Set(ctx context.Context, u *domain.User) {
	data, err := json.Marshal(u)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(u.Username), data, profileTTL).Err(); err != nil {
		c.log.Warn().Err(err).Str("username", u.Username).Msg("profile cache write failed")
	}
}

func (c *ProfileCache) Invalidate(ctx context.Context, username string) {
	if err := c.client.Del(ctx, c.key(username)).Err(); err != nil {
		c.log.Warn().Err(err).Str("username", username).Msg("profile cache invalidation failed")
	}
}
