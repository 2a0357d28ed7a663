// internal/signals/repository.go

package signals

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository reads and bumps engagement signals
type Repository interface {
	GetSignals(ctx context.Context, ids []int64) (map[int64]*EngagementSignal, error)
	IncrementPositiveMatch(ctx context.Context, userID int64) error
	IncrementNegativeFlag(ctx context.Context, userID int64) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetSignals(ctx context.Context, ids []int64) (map[int64]*EngagementSignal, error) {
	signals := make(map[int64]*EngagementSignal, len(ids))
	if len(ids) == 0 {
		return signals, nil
	}

	var rows []EngagementSignal
	query := `
		SELECT user_id, prompt_count, response_count, positive_matches, negative_flags, last_boost_at
		FROM user_signals
		WHERE user_id = ANY($1)`

	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("get signals: %w", err)
	}

	for i := range rows {
		signals[rows[i].UserID] = &rows[i]
	}
	return signals, nil
}

func (r *postgresRepository) IncrementPositiveMatch(ctx context.Context, userID int64) error {
	return r.increment(ctx, userID, "positive_matches")
}

func (r *postgresRepository) IncrementNegativeFlag(ctx context.Context, userID int64) error {
	return r.increment(ctx, userID, "negative_flags")
}

// increment upserts the signal row; column is always one of the fixed names above
func (r *postgresRepository) increment(ctx context.Context, userID int64, column string) error {
	query := fmt.Sprintf(`
		INSERT INTO user_signals (user_id, %[1]s)
		VALUES ($1, 1)
		ON CONFLICT (user_id) DO UPDATE
		SET %[1]s = user_signals.%[1]s + 1`, column)

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("increment %s for user %d: %w", column, userID, err)
	}
	return nil
}
