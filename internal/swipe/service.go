// internal/swipe/service.go

package swipe

import (
	"context"

	"github.com/imadgeboyega/fitmatch-backend/internal/config"
	"github.com/imadgeboyega/fitmatch-backend/internal/kvstore"
	"github.com/imadgeboyega/fitmatch-backend/internal/profile"
	"github.com/imadgeboyega/fitmatch-backend/internal/signals"
	"github.com/rs/zerolog"
)

// Service is the discovery and swipe API exposed to the HTTP layer
type Service interface {
	BuildQueue(ctx context.Context, userID int64, limit int, filters *Filters) ([]ScoredCandidate, error)
	Like(ctx context.Context, fromUserID, toUserID int64, isSuper bool) (*LikeResult, error)
	Pass(ctx context.Context, fromUserID, toUserID int64) (*PassResult, error)
	ThrottleSnapshot(ctx context.Context, userID int64) (ThrottleSnapshot, error)
	ResetSeen(ctx context.Context, userID int64) error
	ListMatches(ctx context.Context, userID int64) ([]*Match, error)
	// Wait blocks until detached side effects have finished
	Wait()
}

// Blocks is everything the swipe flow needs from the block registry
type Blocks interface {
	BlockReader
	BlockChecker
}

// Deps are the external collaborators of the service
type Deps struct {
	Store    kvstore.Store
	Cache    *QueueCache
	Repo     Repository
	Profiles profile.Repository
	Signals  signals.Repository
	Blocks   Blocks
}

type service struct {
	queue    *QueueBuilder
	throttle *Throttle
	recorder *Recorder
}

// NewService wires the queue builder, throttle and recorder. When deps.Cache
// is nil a cache over deps.Store is created from cfg.
func NewService(deps Deps, cfg config.SwipeConfig, log zerolog.Logger) Service {
	cache := deps.Cache
	if cache == nil {
		cache = NewQueueCache(deps.Store, cfg.QueueCacheTTL, log)
	}

	seen := NewSeenRegistry(deps.Store, cfg.SeenTTL)
	exclusion := NewExclusionResolver(seen, deps.Blocks)
	throttle := NewThrottle(deps.Store, cfg.LikeDailyLimit, cfg.SuperLikeDailyLimit)

	queue := NewQueueBuilder(deps.Profiles, deps.Signals, exclusion, cache, QueueDefaults{
		Limit:    cfg.DefaultQueueLimit,
		RadiusKm: cfg.DefaultRadiusKm,
		MinScore: cfg.MinScore,
	}, log)

	recorder := NewRecorder(RecorderDeps{
		Repo:              deps.Repo,
		Profiles:          deps.Profiles,
		Throttle:          throttle,
		Seen:              seen,
		Cache:             cache,
		Blocks:            deps.Blocks,
		Exclusion:         exclusion,
		Signals:           deps.Signals,
		SideEffectTimeout: cfg.SideEffectTimeout,
	}, log)

	return &service{queue: queue, throttle: throttle, recorder: recorder}
}

func (s *service) BuildQueue(ctx context.Context, userID int64, limit int, filters *Filters) ([]ScoredCandidate, error) {
	return s.queue.Build(ctx, userID, limit, filters)
}

func (s *service) Like(ctx context.Context, fromUserID, toUserID int64, isSuper bool) (*LikeResult, error) {
	return s.recorder.Like(ctx, fromUserID, toUserID, isSuper)
}

func (s *service) Pass(ctx context.Context, fromUserID, toUserID int64) (*PassResult, error) {
	return s.recorder.Pass(ctx, fromUserID, toUserID)
}

func (s *service) ThrottleSnapshot(ctx context.Context, userID int64) (ThrottleSnapshot, error) {
	return s.throttle.Snapshot(ctx, userID)
}

func (s *service) ResetSeen(ctx context.Context, userID int64) error {
	return s.recorder.ResetSeen(ctx, userID)
}

func (s *service) ListMatches(ctx context.Context, userID int64) ([]*Match, error) {
	return s.recorder.ListMatches(ctx, userID)
}

func (s *service) Wait() {
	s.recorder.Wait()
}
