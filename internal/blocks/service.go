// internal/blocks/service.go

package blocks

import (
	"context"

	"github.com/rs/zerolog"
)

// QueueInvalidator drops every cached discovery queue of a user
type QueueInvalidator interface {
	InvalidateUser(ctx context.Context, userID int64) error
}

type Service interface {
	Block(ctx context.Context, blockerID, blockedID int64) (*Block, error)
	Unblock(ctx context.Context, blockerID, blockedID int64) (bool, error)
	List(ctx context.Context, blockerID int64) ([]*Block, error)
	IsEitherBlocked(ctx context.Context, a, b int64) (bool, error)
}

type service struct {
	repo        Repository
	invalidator QueueInvalidator
	log         zerolog.Logger
}

func NewService(repo Repository, invalidator QueueInvalidator, log zerolog.Logger) Service {
	return &service{
		repo:        repo,
		invalidator: invalidator,
		log:         log.With().Str("component", "blocks").Logger(),
	}
}

func (s *service) Block(ctx context.Context, blockerID, blockedID int64) (*Block, error) {
	if blockerID == blockedID {
		return nil, ErrCannotBlockSelf
	}

	block, err := s.repo.Create(ctx, blockerID, blockedID)
	if err != nil {
		return nil, err
	}

	s.invalidatePair(ctx, blockerID, blockedID)
	return block, nil
}

func (s *service) Unblock(ctx context.Context, blockerID, blockedID int64) (bool, error) {
	removed, err := s.repo.Delete(ctx, blockerID, blockedID)
	if err != nil {
		return false, err
	}
	if removed {
		s.invalidatePair(ctx, blockerID, blockedID)
	}
	return removed, nil
}

func (s *service) List(ctx context.Context, blockerID int64) ([]*Block, error) {
	return s.repo.List(ctx, blockerID)
}

func (s *service) IsEitherBlocked(ctx context.Context, a, b int64) (bool, error) {
	return s.repo.IsEitherBlocked(ctx, a, b)
}

// invalidatePair is best effort; a stale queue expires with its TTL anyway
func (s *service) invalidatePair(ctx context.Context, a, b int64) {
	if s.invalidator == nil {
		return
	}
	for _, id := range []int64{a, b} {
		if err := s.invalidator.InvalidateUser(ctx, id); err != nil {
			s.log.Warn().Err(err).Int64("user_id", id).Msg("failed to invalidate queue cache after block change")
		}
	}
}
