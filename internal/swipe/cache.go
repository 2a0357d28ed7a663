// internal/swipe/cache.go
// Discovery queue cache with a per-user registry of live keys

package swipe

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/imadgeboyega/fitmatch-backend/internal/kvstore"
	"github.com/rs/zerolog"
)

type QueueCache struct {
	store kvstore.Store
	ttl   time.Duration
	log   zerolog.Logger
}

// NewQueueCache creates a cache whose entries live for ttl. A zero ttl
// disables caching.
func NewQueueCache(store kvstore.Store, ttl time.Duration, log zerolog.Logger) *QueueCache {
	return &QueueCache{
		store: store,
		ttl:   ttl,
		log:   log.With().Str("component", "queue_cache").Logger(),
	}
}

func (c *QueueCache) Enabled() bool {
	return c != nil && c.ttl > 0
}

// cacheFilters is the normalised filter set that goes into the fingerprint
type cacheFilters struct {
	RadiusKm      float64  `json:"radiusKm"`
	MinScore      float64  `json:"minScore"`
	Gender        *string  `json:"gender"`
	FitnessLevels []string `json:"fitnessLevels"`
}

type cachePayload struct {
	Limit   int          `json:"limit"`
	Filters cacheFilters `json:"filters"`
}

func registryKey(userID int64) string {
	return fmt.Sprintf("swipe:cachekeys:%d", userID)
}

// Key fingerprints a resolved request. q must already be normalised by
// resolve, which sorts the fitness levels.
func (c *QueueCache) Key(userID int64, q resolvedQuery) (string, error) {
	payload, err := json.Marshal(cachePayload{
		Limit: q.limit,
		Filters: cacheFilters{
			RadiusKm:      q.radiusKm,
			MinScore:      q.minScore,
			Gender:        q.gender,
			FitnessLevels: q.fitnessLevels,
		},
	})
	if err != nil {
		return "", fmt.Errorf("fingerprint queue request: %w", err)
	}
	sum := sha1.Sum(payload)
	return fmt.Sprintf("swipe:queue:%d:%s", userID, hex.EncodeToString(sum[:])), nil
}

// Get returns the cached queue stored under key
func (c *QueueCache) Get(ctx context.Context, key string) ([]ScoredCandidate, bool, error) {
	raw, found, err := c.store.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}

	var queue []ScoredCandidate
	if err := json.Unmarshal([]byte(raw), &queue); err != nil {
		return nil, false, fmt.Errorf("decode cached queue %s: %w", key, err)
	}
	return queue, true, nil
}

// Put stores queue under key and registers the key for userID. A failed
// registration is logged and otherwise ignored.
func (c *QueueCache) Put(ctx context.Context, userID int64, key string, queue []ScoredCandidate) error {
	if queue == nil {
		queue = []ScoredCandidate{}
	}
	payload, err := json.Marshal(queue)
	if err != nil {
		return fmt.Errorf("encode queue: %w", err)
	}

	if err := c.store.SetWithTTL(ctx, key, string(payload), c.ttl); err != nil {
		return err
	}

	if err := c.store.SetAddRefresh(ctx, registryKey(userID), c.ttl, key); err != nil {
		c.log.Warn().Err(err).Int64("user_id", userID).Msg("failed to register queue cache key")
	}
	return nil
}

// InvalidateUser deletes every registered queue of userID and the registry itself
func (c *QueueCache) InvalidateUser(ctx context.Context, userID int64) error {
	registry := registryKey(userID)
	keys, err := c.store.SetMembers(ctx, registry)
	if err != nil {
		return err
	}
	return c.store.Delete(ctx, append(keys, registry)...)
}
