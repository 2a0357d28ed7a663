package swipe

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/imadgeboyega/fitmatch-backend/internal/kvstore"
)

// SeenRegistry tracks who a user has already swiped on
type SeenRegistry struct {
	store kvstore.Store
	ttl   time.Duration
}

// NewSeenRegistry keeps seen sets for ttl after the first entry; 0 keeps them forever
func NewSeenRegistry(store kvstore.Store, ttl time.Duration) *SeenRegistry {
	return &SeenRegistry{store: store, ttl: ttl}
}

func seenKey(userID int64) string {
	return fmt.Sprintf("swipe:seen:%d", userID)
}

func (s *SeenRegistry) Mark(ctx context.Context, userID, targetID int64) error {
	return s.store.SetAdd(ctx, seenKey(userID), s.ttl, strconv.FormatInt(targetID, 10))
}

// Members returns the seen ids; malformed members are ignored
func (s *SeenRegistry) Members(ctx context.Context, userID int64) ([]int64, error) {
	raw, err := s.store.SetMembers(ctx, seenKey(userID))
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(raw))
	for _, m := range raw {
		if id, err := strconv.ParseInt(m, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *SeenRegistry) Reset(ctx context.Context, userID int64) error {
	return s.store.Delete(ctx, seenKey(userID))
}
