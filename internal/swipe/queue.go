// internal/swipe/queue.go
// Discovery queue: exclusion, retrieval, scoring, filtering, ranking, caching

package swipe

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/imadgeboyega/fitmatch-backend/internal/profile"
	"github.com/imadgeboyega/fitmatch-backend/internal/signals"
	"github.com/rs/zerolog"
)

// SignalReader loads engagement signals for ranking
type SignalReader interface {
	GetSignals(ctx context.Context, ids []int64) (map[int64]*signals.EngagementSignal, error)
}

// QueueDefaults apply when a request leaves a value out
type QueueDefaults struct {
	Limit    int
	RadiusKm float64
	MinScore float64
}

type resolvedQuery struct {
	limit         int
	radiusKm      float64
	minScore      float64
	gender        *string
	fitnessLevels []string
}

type QueueBuilder struct {
	profiles  profile.Repository
	signals   SignalReader
	exclusion *ExclusionResolver
	cache     *QueueCache
	defaults  QueueDefaults
	log       zerolog.Logger
}

func NewQueueBuilder(profiles profile.Repository, signalReader SignalReader, exclusion *ExclusionResolver, cache *QueueCache, defaults QueueDefaults, log zerolog.Logger) *QueueBuilder {
	return &QueueBuilder{
		profiles:  profiles,
		signals:   signalReader,
		exclusion: exclusion,
		cache:     cache,
		defaults:  defaults,
		log:       log.With().Str("component", "queue_builder").Logger(),
	}
}

// resolve fills defaults and normalises the request. An explicit minScore
// of 0 is honoured; a non-positive radius falls back to the default.
func (b *QueueBuilder) resolve(limit int, filters *Filters) resolvedQuery {
	q := resolvedQuery{
		limit:    limit,
		radiusKm: b.defaults.RadiusKm,
		minScore: b.defaults.MinScore,
	}
	if q.limit <= 0 {
		q.limit = b.defaults.Limit
	}
	if q.limit > MaxQueueLimit {
		q.limit = MaxQueueLimit
	}
	if filters == nil {
		return q
	}

	if filters.RadiusKm != nil && *filters.RadiusKm > 0 {
		q.radiusKm = *filters.RadiusKm
	}
	if filters.MinScore != nil {
		q.minScore = *filters.MinScore
	}
	if filters.Gender != nil && strings.TrimSpace(*filters.Gender) != "" {
		g := strings.TrimSpace(*filters.Gender)
		q.gender = &g
	}
	for _, level := range filters.FitnessLevels {
		if level = strings.TrimSpace(level); level != "" {
			q.fitnessLevels = append(q.fitnessLevels, level)
		}
	}
	sort.Strings(q.fitnessLevels)
	return q
}

// Build returns the ranked queue for requesterID
func (b *QueueBuilder) Build(ctx context.Context, requesterID int64, limit int, filters *Filters) ([]ScoredCandidate, error) {
	requester, err := b.profiles.GetProfile(ctx, requesterID)
	if errors.Is(err, profile.ErrProfileNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, transient("load requester profile", err)
	}

	excluded, err := b.exclusion.Resolve(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	q := b.resolve(limit, filters)

	var cacheKey string
	useCache := b.cache.Enabled()
	if useCache {
		if cacheKey, err = b.cache.Key(requesterID, q); err != nil {
			b.log.Warn().Err(err).Int64("user_id", requesterID).Msg("queue request cannot be cached, bypassing cache")
			useCache = false
		}
	}
	if useCache {
		cached, hit, err := b.cache.Get(ctx, cacheKey)
		if err != nil {
			b.log.Warn().Err(err).Int64("user_id", requesterID).Msg("queue cache read failed, rebuilding")
		}
		if hit {
			queueRequestsTotal.WithLabelValues("hit").Inc()
			return cached, nil
		}
	}
	queueRequestsTotal.WithLabelValues("miss").Inc()

	start := time.Now()
	queue, err := b.compute(ctx, requester, excluded, q)
	if err != nil {
		return nil, err
	}
	queueBuildSeconds.Observe(time.Since(start).Seconds())

	if useCache {
		if err := b.cache.Put(ctx, requesterID, cacheKey, queue); err != nil {
			b.log.Warn().Err(err).Int64("user_id", requesterID).Msg("queue cache write failed")
		}
	}

	return queue, nil
}

func (b *QueueBuilder) compute(ctx context.Context, requester *profile.Profile, excluded ExclusionSet, q resolvedQuery) ([]ScoredCandidate, error) {
	candidates, err := b.profiles.FindCandidates(ctx, excluded.IDs(), true, q.limit*overfetchFactor)
	if err != nil {
		return nil, transient("find candidates", err)
	}

	ids := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		if c != nil {
			ids = append(ids, c.ID)
		}
	}

	signalsByUser, err := b.signals.GetSignals(ctx, ids)
	if err != nil {
		// Ranking still works without the nudge
		b.log.Warn().Err(err).Msg("engagement signals unavailable")
		signalsByUser = nil
	}

	queue := make([]ScoredCandidate, 0, q.limit)
	for _, c := range candidates {
		// The store filters these too; a bad record must not leak through
		if c == nil || excluded.Contains(c.ID) || !c.Eligible() {
			continue
		}

		distance := DistanceKm(requester.Location, c.Location)
		if !passesFilters(c, distance, q) {
			continue
		}

		score := scoreWithDistance(requester, c, distance, q.radiusKm, signalsByUser[c.ID])
		compatibilityScores.Observe(score)
		if score < q.minScore {
			continue
		}

		queue = append(queue, ScoredCandidate{
			Profile:            *c,
			CompatibilityScore: score,
			DistanceKm:         distance,
		})
	}

	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].CompatibilityScore > queue[j].CompatibilityScore
	})
	if len(queue) > q.limit {
		queue = queue[:q.limit]
	}
	return queue, nil
}

// passesFilters applies the hard filters. Candidates that leave gender or
// fitness level blank are kept, and an unknown distance never fails the
// radius check.
func passesFilters(c *profile.Profile, distance *float64, q resolvedQuery) bool {
	if q.gender != nil && c.Gender != nil && *c.Gender != *q.gender {
		return false
	}

	if len(q.fitnessLevels) > 0 && c.FitnessLevel != nil {
		found := false
		for _, level := range q.fitnessLevels {
			if level == *c.FitnessLevel {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if distance != nil && *distance > q.radiusKm {
		return false
	}
	return true
}
