// internal/profile/repository.go

package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository is the read side of the profile store
type Repository interface {
	GetProfile(ctx context.Context, id int64) (*Profile, error)
	GetProfiles(ctx context.Context, ids []int64) (map[int64]*Profile, error)
	// FindCandidates returns up to limit profiles whose ids are not in excludeIDs.
	FindCandidates(ctx context.Context, excludeIDs []int64, eligibleOnly bool, limit int) ([]*Profile, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a profile repository over the users table
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const profileColumns = `id, display_name, age, gender, bio, fitness_level, primary_goal, ` +
	`interests, workout_times, location_name, location_lat, location_lng, is_snoozed, is_hidden`

func (r *postgresRepository) GetProfile(ctx context.Context, id int64) (*Profile, error) {
	var row profileRow
	query := `SELECT ` + profileColumns + ` FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %d: %w", id, err)
	}

	return row.toProfile(), nil
}

func (r *postgresRepository) GetProfiles(ctx context.Context, ids []int64) (map[int64]*Profile, error) {
	profiles := make(map[int64]*Profile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	query := `SELECT ` + profileColumns + ` FROM users WHERE id = ANY($1)`
	rows, err := r.db.QueryxContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row profileRow
		if err := rows.StructScan(&row); err != nil {
			// A malformed record is skipped, not fatal
			continue
		}
		profiles[row.ID] = row.toProfile()
	}

	return profiles, rows.Err()
}

func (r *postgresRepository) FindCandidates(ctx context.Context, excludeIDs []int64, eligibleOnly bool, limit int) ([]*Profile, error) {
	if excludeIDs == nil {
		excludeIDs = []int64{}
	}

	query := `SELECT ` + profileColumns + ` FROM users WHERE NOT (id = ANY($1))`
	if eligibleOnly {
		query += ` AND is_snoozed = FALSE AND is_hidden = FALSE`
	}
	query += ` ORDER BY id LIMIT $2`

	rows, err := r.db.QueryxContext(ctx, query, pq.Array(excludeIDs), limit)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}
	defer rows.Close()

	candidates := make([]*Profile, 0, limit)
	for rows.Next() {
		var row profileRow
		if err := rows.StructScan(&row); err != nil {
			continue
		}
		candidates = append(candidates, row.toProfile())
	}

	return candidates, rows.Err()
}
