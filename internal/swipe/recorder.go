// internal/swipe/recorder.go
// Records likes and passes, forms matches on mutual likes

package swipe

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/imadgeboyega/fitmatch-backend/internal/profile"
	"github.com/rs/zerolog"
)

// BlockChecker answers whether two users are blocked either way
type BlockChecker interface {
	IsEitherBlocked(ctx context.Context, a, b int64) (bool, error)
}

// SignalWriter receives best effort engagement updates
type SignalWriter interface {
	IncrementPositiveMatch(ctx context.Context, userID int64) error
}

type Recorder struct {
	repo      Repository
	profiles  profile.Repository
	throttle  *Throttle
	seen      *SeenRegistry
	cache     *QueueCache
	blocks    BlockChecker
	exclusion *ExclusionResolver
	signals   SignalWriter
	log       zerolog.Logger

	sideEffectTimeout time.Duration
	tasks             sync.WaitGroup
}

type RecorderDeps struct {
	Repo              Repository
	Profiles          profile.Repository
	Throttle          *Throttle
	Seen              *SeenRegistry
	Cache             *QueueCache
	Blocks            BlockChecker
	Exclusion         *ExclusionResolver
	Signals           SignalWriter
	SideEffectTimeout time.Duration
}

func NewRecorder(deps RecorderDeps, log zerolog.Logger) *Recorder {
	timeout := deps.SideEffectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Recorder{
		repo:              deps.Repo,
		profiles:          deps.Profiles,
		throttle:          deps.Throttle,
		seen:              deps.Seen,
		cache:             deps.Cache,
		blocks:            deps.Blocks,
		exclusion:         deps.Exclusion,
		signals:           deps.Signals,
		sideEffectTimeout: timeout,
		log:               log.With().Str("component", "swipe_recorder").Logger(),
	}
}

// Like records fromUserID liking toUserID. Checks that can refuse the like
// run before the quota is consumed.
func (r *Recorder) Like(ctx context.Context, fromUserID, toUserID int64, isSuper bool) (*LikeResult, error) {
	// 1. Validate
	if fromUserID == toUserID {
		return nil, ErrInvalidLike
	}

	target, err := r.profiles.GetProfile(ctx, toUserID)
	if errors.Is(err, profile.ErrProfileNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, transient("load like target", err)
	}

	blocked, err := r.blocks.IsEitherBlocked(ctx, fromUserID, toUserID)
	if err != nil {
		return nil, transient("check block relation", err)
	}
	if blocked {
		return nil, ErrUserBlocked
	}

	// 2. Consume quota
	snapshot, err := r.throttle.CheckAndIncrement(ctx, fromUserID, isSuper)
	if err != nil {
		return nil, err
	}

	// 3. Persist the edge
	if _, err := r.repo.UpsertLike(ctx, fromUserID, toUserID, isSuper); err != nil {
		return nil, transient("record like", err)
	}
	if isSuper {
		likesTotal.WithLabelValues("super").Inc()
	} else {
		likesTotal.WithLabelValues("regular").Inc()
	}

	result := &LikeResult{Status: StatusLiked, Throttle: snapshot}

	// 4. Mutual like check
	_, reciprocal, err := r.repo.GetLike(ctx, toUserID, fromUserID)
	if err != nil {
		return nil, transient("check reciprocal like", err)
	}
	if reciprocal {
		match, created, err := r.repo.CreateMatchIfAbsent(ctx, fromUserID, toUserID)
		if err != nil {
			return nil, transient("create match", err)
		}
		if created {
			matchesTotal.Inc()
			r.log.Info().Str("match_id", match.ID).Int64("user1_id", match.User1ID).Int64("user2_id", match.User2ID).Msg("match created")
			r.bumpPositiveMatches(fromUserID, toUserID)
		}
		match.Partner = target
		result.Status = StatusMatch
		result.Match = match
	}

	// 5. Seen and cache
	if err := r.markSeen(ctx, fromUserID, toUserID); err != nil {
		return nil, err
	}

	return result, nil
}

// Pass removes any like from fromUserID to toUserID and hides the target.
// Passing never consumes quota.
func (r *Recorder) Pass(ctx context.Context, fromUserID, toUserID int64) (*PassResult, error) {
	if fromUserID == toUserID {
		return &PassResult{Status: StatusNoop}, nil
	}

	if err := r.repo.DeleteLike(ctx, fromUserID, toUserID); err != nil {
		return nil, transient("remove like", err)
	}
	passesTotal.Inc()

	if err := r.markSeen(ctx, fromUserID, toUserID); err != nil {
		return nil, err
	}

	result := &PassResult{Status: StatusPassed}
	snapshot, err := r.throttle.Snapshot(ctx, fromUserID)
	if err != nil {
		r.log.Warn().Err(err).Int64("user_id", fromUserID).Msg("throttle snapshot unavailable after pass")
	} else {
		result.Throttle = &snapshot
	}
	return result, nil
}

// ResetSeen forgets every swipe decision of userID
func (r *Recorder) ResetSeen(ctx context.Context, userID int64) error {
	if err := r.seen.Reset(ctx, userID); err != nil {
		return transient("reset seen set", err)
	}
	r.invalidate(ctx, userID)
	return nil
}

// ListMatches returns matches newest first with partner profiles,
// leaving out partners with a block relation either way
func (r *Recorder) ListMatches(ctx context.Context, userID int64) ([]*Match, error) {
	matches, err := r.repo.ListMatches(ctx, userID)
	if err != nil {
		return nil, transient("list matches", err)
	}

	blocked, err := r.exclusion.blockedEitherWay(ctx, userID)
	if err != nil {
		return nil, err
	}

	visible := make([]*Match, 0, len(matches))
	partnerIDs := make([]int64, 0, len(matches))
	for _, m := range matches {
		if blocked.Contains(m.PartnerID(userID)) {
			continue
		}
		visible = append(visible, m)
		partnerIDs = append(partnerIDs, m.PartnerID(userID))
	}

	partners, err := r.profiles.GetProfiles(ctx, partnerIDs)
	if err != nil {
		return nil, transient("load match partners", err)
	}
	for _, m := range visible {
		m.Partner = partners[m.PartnerID(userID)]
	}

	return visible, nil
}

// Wait blocks until every detached side effect has finished
func (r *Recorder) Wait() {
	r.tasks.Wait()
}

func (r *Recorder) markSeen(ctx context.Context, userID, targetID int64) error {
	if err := r.seen.Mark(ctx, userID, targetID); err != nil {
		return transient("mark seen", err)
	}
	r.invalidate(ctx, userID)
	return nil
}

func (r *Recorder) invalidate(ctx context.Context, userID int64) {
	if r.cache == nil {
		return
	}
	if err := r.cache.InvalidateUser(ctx, userID); err != nil {
		r.log.Warn().Err(err).Int64("user_id", userID).Msg("failed to invalidate queue cache")
	}
}

func (r *Recorder) bumpPositiveMatches(userIDs ...int64) {
	if r.signals == nil {
		return
	}
	for _, id := range userIDs {
		id := id
		r.detach("positive_match", func(ctx context.Context) error {
			return r.signals.IncrementPositiveMatch(ctx, id)
		})
	}
}

// detach runs fn outside the request with its own timeout. Failures are
// logged and counted, never returned.
func (r *Recorder) detach(task string, fn func(ctx context.Context) error) {
	r.tasks.Add(1)
	go func() {
		defer r.tasks.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.sideEffectTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			detachedFailuresTotal.WithLabelValues(task).Inc()
			r.log.Warn().Err(err).Str("task", task).Msg("detached task failed")
		}
	}()
}
