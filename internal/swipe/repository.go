// internal/swipe/repository.go

package swipe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository persists like edges and matches
type Repository interface {
	// UpsertLike creates the edge or upgrades is_super; it never downgrades.
	UpsertLike(ctx context.Context, fromUserID, toUserID int64, isSuper bool) (*LikeEdge, error)
	GetLike(ctx context.Context, fromUserID, toUserID int64) (*LikeEdge, bool, error)
	DeleteLike(ctx context.Context, fromUserID, toUserID int64) error

	// CreateMatchIfAbsent atomically creates the match for the unordered
	// pair or returns the existing one. created reports which happened.
	CreateMatchIfAbsent(ctx context.Context, a, b int64) (match *Match, created bool, err error)
	ListMatches(ctx context.Context, userID int64) ([]*Match, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) UpsertLike(ctx context.Context, fromUserID, toUserID int64, isSuper bool) (*LikeEdge, error) {
	var edge LikeEdge
	query := `
		INSERT INTO likes (from_user_id, to_user_id, is_super)
		VALUES ($1, $2, $3)
		ON CONFLICT (from_user_id, to_user_id) DO UPDATE
		SET is_super = likes.is_super OR EXCLUDED.is_super
		RETURNING id, from_user_id, to_user_id, is_super, created_at`

	if err := r.db.GetContext(ctx, &edge, query, fromUserID, toUserID, isSuper); err != nil {
		return nil, fmt.Errorf("upsert like %d->%d: %w", fromUserID, toUserID, err)
	}
	return &edge, nil
}

func (r *postgresRepository) GetLike(ctx context.Context, fromUserID, toUserID int64) (*LikeEdge, bool, error) {
	var edge LikeEdge
	query := `
		SELECT id, from_user_id, to_user_id, is_super, created_at
		FROM likes
		WHERE from_user_id = $1 AND to_user_id = $2`

	err := r.db.GetContext(ctx, &edge, query, fromUserID, toUserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get like %d->%d: %w", fromUserID, toUserID, err)
	}
	return &edge, true, nil
}

func (r *postgresRepository) DeleteLike(ctx context.Context, fromUserID, toUserID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM likes WHERE from_user_id = $1 AND to_user_id = $2`, fromUserID, toUserID)
	if err != nil {
		return fmt.Errorf("delete like %d->%d: %w", fromUserID, toUserID, err)
	}
	return nil
}

// CreateMatchIfAbsent relies on the unique (user1_id, user2_id) constraint
// over the ordered pair, so concurrent callers cannot both insert.
func (r *postgresRepository) CreateMatchIfAbsent(ctx context.Context, a, b int64) (*Match, bool, error) {
	user1, user2 := canonicalPair(a, b)

	var match Match
	insert := `
		INSERT INTO matches (id, user1_id, user2_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user1_id, user2_id) DO NOTHING
		RETURNING id, user1_id, user2_id, last_message, created_at`

	err := r.db.GetContext(ctx, &match, insert, uuid.New().String(), user1, user2)
	if err == nil {
		return &match, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("create match %d/%d: %w", user1, user2, err)
	}

	existing := `
		SELECT id, user1_id, user2_id, last_message, created_at
		FROM matches
		WHERE user1_id = $1 AND user2_id = $2`
	if err := r.db.GetContext(ctx, &match, existing, user1, user2); err != nil {
		return nil, false, fmt.Errorf("load match %d/%d: %w", user1, user2, err)
	}
	return &match, false, nil
}

func (r *postgresRepository) ListMatches(ctx context.Context, userID int64) ([]*Match, error) {
	matches := []*Match{}
	query := `
		SELECT id, user1_id, user2_id, last_message, created_at
		FROM matches
		WHERE user1_id = $1 OR user2_id = $1
		ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &matches, query, userID); err != nil {
		return nil, fmt.Errorf("list matches for user %d: %w", userID, err)
	}
	return matches, nil
}
