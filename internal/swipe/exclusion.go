package swipe

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// BlockReader is the read side of the block registry
type BlockReader interface {
	BlockedByUser(ctx context.Context, userID int64) ([]int64, error)
	BlockedUser(ctx context.Context, userID int64) ([]int64, error)
}

// ExclusionSet holds ids that must never reach a requester's queue
type ExclusionSet map[int64]struct{}

func (s ExclusionSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in ascending order
func (s ExclusionSet) IDs() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type ExclusionResolver struct {
	seen   *SeenRegistry
	blocks BlockReader
}

func NewExclusionResolver(seen *SeenRegistry, blocks BlockReader) *ExclusionResolver {
	return &ExclusionResolver{seen: seen, blocks: blocks}
}

// Resolve unions self, the seen set and block relations in both directions
func (r *ExclusionResolver) Resolve(ctx context.Context, userID int64) (ExclusionSet, error) {
	var seen, blocked, blockers []int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := r.seen.Members(gctx, userID)
		if err != nil {
			return transient("load seen set", err)
		}
		seen = ids
		return nil
	})
	g.Go(func() error {
		ids, err := r.blocks.BlockedByUser(gctx, userID)
		if err != nil {
			return transient("load blocked users", err)
		}
		blocked = ids
		return nil
	})
	g.Go(func() error {
		ids, err := r.blocks.BlockedUser(gctx, userID)
		if err != nil {
			return transient("load blockers", err)
		}
		blockers = ids
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := ExclusionSet{userID: {}}
	for _, group := range [][]int64{seen, blocked, blockers} {
		for _, id := range group {
			set[id] = struct{}{}
		}
	}
	return set, nil
}

// blockedEitherWay returns everyone with a block relation to userID
func (r *ExclusionResolver) blockedEitherWay(ctx context.Context, userID int64) (ExclusionSet, error) {
	var blocked, blockers []int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		blocked, err = r.blocks.BlockedByUser(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		blockers, err = r.blocks.BlockedUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, transient("load block relations", err)
	}

	set := ExclusionSet{}
	for _, id := range append(blocked, blockers...) {
		set[id] = struct{}{}
	}
	return set, nil
}
