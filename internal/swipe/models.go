// internal/swipe/models.go

package swipe

import (
	"time"

	"github.com/imadgeboyega/fitmatch-backend/internal/profile"
)

const (
	MaxQueueLimit = 100
	// overfetchFactor widens the candidate batch to survive post filtering
	overfetchFactor = 4
)

// Throttle limit types
const (
	LimitLikes      = "likes"
	LimitSuperLikes = "superLikes"
)

// Swipe outcome statuses
const (
	StatusLiked  = "liked"
	StatusMatch  = "match"
	StatusPassed = "passed"
	StatusNoop   = "noop"
)

// Filters narrow a discovery queue. Nil fields fall back to the defaults.
type Filters struct {
	RadiusKm      *float64 `json:"radius_km,omitempty"`
	Gender        *string  `json:"gender,omitempty"`
	FitnessLevels []string `json:"fitness_levels,omitempty"`
	MinScore      *float64 `json:"min_score,omitempty"`
}

// ScoredCandidate is a profile ranked for one requester
type ScoredCandidate struct {
	profile.Profile
	CompatibilityScore float64  `json:"compatibility_score"`
	DistanceKm         *float64 `json:"distance_km"`
}

// LikeEdge is a directed like; at most one per ordered pair
type LikeEdge struct {
	ID         int64     `json:"id" db:"id"`
	FromUserID int64     `json:"from_user_id" db:"from_user_id"`
	ToUserID   int64     `json:"to_user_id" db:"to_user_id"`
	IsSuper    bool      `json:"is_super" db:"is_super"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Match is an unordered pair stored with User1ID < User2ID
type Match struct {
	ID          string           `json:"id" db:"id"`
	User1ID     int64            `json:"user1_id" db:"user1_id"`
	User2ID     int64            `json:"user2_id" db:"user2_id"`
	LastMessage *string          `json:"last_message,omitempty" db:"last_message"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	Partner     *profile.Profile `json:"partner,omitempty" db:"-"`
}

// PartnerID returns the other side of the match
func (m *Match) PartnerID(userID int64) int64 {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

// canonicalPair orders two user ids the way matches are stored
func canonicalPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// ThrottleLimits are the configured daily ceilings; 0 means unlimited
type ThrottleLimits struct {
	Likes      int `json:"likes"`
	SuperLikes int `json:"super_likes"`
}

// ThrottleSnapshot reports the remaining daily quota. A negative
// remaining count means the limit is disabled.
type ThrottleSnapshot struct {
	RemainingLikes      int            `json:"remaining_likes"`
	RemainingSuperLikes int            `json:"remaining_super_likes"`
	Limits              ThrottleLimits `json:"limits"`
	ResetsAt            time.Time      `json:"resets_at"`
}

type LikeResult struct {
	Status   string           `json:"status"`
	Match    *Match           `json:"match,omitempty"`
	Throttle ThrottleSnapshot `json:"throttle"`
}

type PassResult struct {
	Status   string            `json:"status"`
	Throttle *ThrottleSnapshot `json:"throttle,omitempty"`
}
