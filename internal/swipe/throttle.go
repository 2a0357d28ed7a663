// internal/swipe/throttle.go
// Daily like and super-like quotas

package swipe

import (
	"context"
	"fmt"
	"time"

	"github.com/imadgeboyega/fitmatch-backend/internal/kvstore"
)

// Throttle counts likes per user per UTC day. Counter keys embed the day,
// so a missing key is zero and a new day needs no reset.
type Throttle struct {
	store      kvstore.Store
	likeLimit  int
	superLimit int
	now        func() time.Time
}

// NewThrottle creates a limiter; a limit of 0 disables that limit
func NewThrottle(store kvstore.Store, likeLimit, superLimit int) *Throttle {
	return &Throttle{
		store:      store,
		likeLimit:  likeLimit,
		superLimit: superLimit,
		now:        time.Now,
	}
}

func dayStamp(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// nextReset is the UTC midnight following t
func nextReset(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}

func throttleKeys(userID int64, now time.Time) (likes, superLikes string) {
	day := dayStamp(now)
	return fmt.Sprintf("swipe:likes:%s:%d", day, userID),
		fmt.Sprintf("swipe:superlikes:%s:%d", day, userID)
}

// CheckAndIncrement consumes one like, plus one super-like when isSuper.
// On a *SwipeLimitError neither counter changed.
func (t *Throttle) CheckAndIncrement(ctx context.Context, userID int64, isSuper bool) (ThrottleSnapshot, error) {
	now := t.now()
	resetsAt := nextReset(now)
	likeKey, superKey := throttleKeys(userID, now)

	res, err := t.store.IncrementWithinLimits(ctx, kvstore.CounterPair{
		PrimaryKey:         likeKey,
		PrimaryLimit:       int64(t.likeLimit),
		SecondaryKey:       superKey,
		SecondaryLimit:     int64(t.superLimit),
		IncrementSecondary: isSuper,
		TTL:                resetsAt.Sub(now),
	})
	if err != nil {
		return ThrottleSnapshot{}, transient("throttle increment", err)
	}

	switch res.Outcome {
	case kvstore.CounterPrimaryExhausted:
		throttleRejectionsTotal.WithLabelValues(LimitLikes).Inc()
		return ThrottleSnapshot{}, &SwipeLimitError{Type: LimitLikes, ResetsAt: resetsAt}
	case kvstore.CounterSecondaryExhausted:
		throttleRejectionsTotal.WithLabelValues(LimitSuperLikes).Inc()
		return ThrottleSnapshot{}, &SwipeLimitError{Type: LimitSuperLikes, ResetsAt: resetsAt}
	}

	return t.snapshot(res.Primary, res.Secondary, resetsAt), nil
}

// Snapshot reads the current quota without touching the counters
func (t *Throttle) Snapshot(ctx context.Context, userID int64) (ThrottleSnapshot, error) {
	now := t.now()
	likeKey, superKey := throttleKeys(userID, now)

	likes, err := t.store.GetInt(ctx, likeKey)
	if err != nil {
		return ThrottleSnapshot{}, transient("throttle snapshot", err)
	}
	superLikes, err := t.store.GetInt(ctx, superKey)
	if err != nil {
		return ThrottleSnapshot{}, transient("throttle snapshot", err)
	}

	return t.snapshot(likes, superLikes, nextReset(now)), nil
}

func (t *Throttle) snapshot(likes, superLikes int64, resetsAt time.Time) ThrottleSnapshot {
	return ThrottleSnapshot{
		RemainingLikes:      remaining(t.likeLimit, likes),
		RemainingSuperLikes: remaining(t.superLimit, superLikes),
		Limits: ThrottleLimits{
			Likes:      t.likeLimit,
			SuperLikes: t.superLimit,
		},
		ResetsAt: resetsAt,
	}
}

func remaining(limit int, used int64) int {
	if limit <= 0 {
		return -1
	}
	if left := int64(limit) - used; left > 0 {
		return int(left)
	}
	return 0
}
