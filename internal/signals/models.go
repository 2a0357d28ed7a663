package signals

import "time"

// EngagementSignal holds the per-user counters that nudge ranking
type EngagementSignal struct {
	UserID          int64      `json:"user_id" db:"user_id"`
	PromptCount     int        `json:"prompt_count" db:"prompt_count"`
	ResponseCount   int        `json:"response_count" db:"response_count"`
	PositiveMatches int        `json:"positive_matches" db:"positive_matches"`
	NegativeFlags   int        `json:"negative_flags" db:"negative_flags"`
	LastBoostAt     *time.Time `json:"last_boost_at,omitempty" db:"last_boost_at"`
}

// ResponseRate is responses over prompts, 0 when no prompts were received
func (s *EngagementSignal) ResponseRate() float64 {
	if s == nil || s.PromptCount <= 0 {
		return 0
	}
	return float64(s.ResponseCount) / float64(s.PromptCount)
}
