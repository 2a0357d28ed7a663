// internal/blocks/repository.go

package blocks

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository is the block registry
type Repository interface {
	// BlockedByUser returns the ids userID has blocked
	BlockedByUser(ctx context.Context, userID int64) ([]int64, error)
	// BlockedUser returns the ids that have blocked userID
	BlockedUser(ctx context.Context, userID int64) ([]int64, error)
	IsEitherBlocked(ctx context.Context, a, b int64) (bool, error)

	Create(ctx context.Context, blockerID, blockedID int64) (*Block, error)
	Delete(ctx context.Context, blockerID, blockedID int64) (bool, error)
	List(ctx context.Context, blockerID int64) ([]*Block, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) BlockedByUser(ctx context.Context, userID int64) ([]int64, error) {
	ids := []int64{}
	query := `SELECT blocked_id FROM blocks WHERE blocker_id = $1`
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("blocked by user %d: %w", userID, err)
	}
	return ids, nil
}

func (r *postgresRepository) BlockedUser(ctx context.Context, userID int64) ([]int64, error) {
	ids := []int64{}
	query := `SELECT blocker_id FROM blocks WHERE blocked_id = $1`
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("blockers of user %d: %w", userID, err)
	}
	return ids, nil
}

func (r *postgresRepository) IsEitherBlocked(ctx context.Context, a, b int64) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM blocks
			WHERE (blocker_id = $1 AND blocked_id = $2)
			   OR (blocker_id = $2 AND blocked_id = $1)
		)`
	if err := r.db.GetContext(ctx, &exists, query, a, b); err != nil {
		return false, fmt.Errorf("check block between %d and %d: %w", a, b, err)
	}
	return exists, nil
}

// Create is idempotent: blocking twice returns the existing row
func (r *postgresRepository) Create(ctx context.Context, blockerID, blockedID int64) (*Block, error) {
	var block Block
	query := `
		INSERT INTO blocks (blocker_id, blocked_id)
		VALUES ($1, $2)
		ON CONFLICT (blocker_id, blocked_id) DO UPDATE SET blocker_id = EXCLUDED.blocker_id
		RETURNING id, blocker_id, blocked_id, created_at`
	if err := r.db.GetContext(ctx, &block, query, blockerID, blockedID); err != nil {
		return nil, fmt.Errorf("create block: %w", err)
	}
	return &block, nil
}

func (r *postgresRepository) Delete(ctx context.Context, blockerID, blockedID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM blocks WHERE blocker_id = $1 AND blocked_id = $2`, blockerID, blockedID)
	if err != nil {
		return false, fmt.Errorf("delete block: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete block: %w", err)
	}
	return rows > 0, nil
}

func (r *postgresRepository) List(ctx context.Context, blockerID int64) ([]*Block, error) {
	blocks := []*Block{}
	query := `
		SELECT id, blocker_id, blocked_id, created_at
		FROM blocks
		WHERE blocker_id = $1
		ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &blocks, query, blockerID); err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return blocks, nil
}
