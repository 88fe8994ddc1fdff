package utils

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"agenda/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ProfessionalCache is a read-through cache of professional records in the
// cache Redis DB. A nil client turns every call into a miss or a no-op.
type ProfessionalCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProfessionalCache(client *redis.Client, ttl time.Duration) *ProfessionalCache {
	if ttl <= 0 {
		ttl = ProfessionalCacheTTL
	}
	return &ProfessionalCache{client: client, ttl: ttl}
}

func professionalKey(id string) string {
	return ProfessionalCachePrefix + id
}

// Get reports a miss on any Redis failure; the caller falls back to the store.
func (c *ProfessionalCache) Get(ctx context.Context, id string) (*models.Professional, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, professionalKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			GetLogger().Warn("Professional cache read failed", zap.String("professionalID", id), zap.Error(err))
		}
		return nil, false
	}
	var p models.Professional
	cached := cachedProfessional{Professional: &p}
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false
	}
	p.PinHash, p.LegacyPin, p.FCMToken = cached.PinHash, cached.LegacyPin, cached.FCMToken
	return &p, true
}

func (c *ProfessionalCache) Set(ctx context.Context, p *models.Professional) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(cachedProfessional{
		Professional: p,
		PinHash:      p.PinHash,
		LegacyPin:    p.LegacyPin,
		FCMToken:     p.FCMToken,
	})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, professionalKey(p.ID), data, c.ttl).Err(); err != nil {
		GetLogger().Warn("Professional cache write failed", zap.String("professionalID", p.ID), zap.Error(err))
	}
}

func (c *ProfessionalCache) Invalidate(ctx context.Context, id string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, professionalKey(id)).Err(); err != nil {
		GetLogger().Warn("Professional cache invalidation failed", zap.String("professionalID", id), zap.Error(err))
	}
}

// cachedProfessional keeps the fields the API JSON omits.
type cachedProfessional struct {
	*models.Professional
	PinHash   string `json:"pinHash,omitempty"`
	LegacyPin string `json:"legacyPin,omitempty"`
	FCMToken  string `json:"fcmToken,omitempty"`
}
