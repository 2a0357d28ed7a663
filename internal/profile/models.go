//internal/profile/models.go

package profile

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var ErrProfileNotFound = errors.New("profile not found")

// Fitness levels in ascending order
const (
	FitnessBeginner     = "Beginner"
	FitnessIntermediate = "Intermediate"
	FitnessAdvanced     = "Advanced"
)

// FitnessLevels lists the known levels from lowest to highest
var FitnessLevels = []string{FitnessBeginner, FitnessIntermediate, FitnessAdvanced}

// FitnessRank returns the position of level in FitnessLevels, or -1 for
// an empty or unknown level
func FitnessRank(level string) int {
	for i, l := range FitnessLevels {
		if l == level {
			return i
		}
	}
	return -1
}

// Location is a place with optional coordinates
type Location struct {
	Name *string  `json:"name,omitempty"`
	Lat  *float64 `json:"lat,omitempty"`
	Lng  *float64 `json:"lng,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are known
func (l *Location) HasCoordinates() bool {
	return l != nil && l.Lat != nil && l.Lng != nil
}

// Profile is the read-only view of a user used by discovery
type Profile struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Age          *int      `json:"age,omitempty"`
	Gender       *string   `json:"gender,omitempty"`
	Bio          *string   `json:"bio,omitempty"`
	FitnessLevel *string   `json:"fitness_level,omitempty"`
	PrimaryGoal  *string   `json:"primary_goal,omitempty"`
	Interests    []string  `json:"interests"`
	WorkoutTimes []string  `json:"workout_times"`
	Location     *Location `json:"location,omitempty"`
	IsSnoozed    bool      `json:"is_snoozed"`
	IsHidden     bool      `json:"is_hidden"`
}

// Eligible reports whether the profile may appear in anyone's queue
func (p *Profile) Eligible() bool {
	return !p.IsSnoozed && !p.IsHidden
}

// profileRow mirrors the users table
type profileRow struct {
	ID           int64           `db:"id"`
	DisplayName  string          `db:"display_name"`
	Age          sql.NullInt32   `db:"age"`
	Gender       sql.NullString  `db:"gender"`
	Bio          sql.NullString  `db:"bio"`
	FitnessLevel sql.NullString  `db:"fitness_level"`
	PrimaryGoal  sql.NullString  `db:"primary_goal"`
	Interests    pq.StringArray  `db:"interests"`
	WorkoutTimes pq.StringArray  `db:"workout_times"`
	LocationName sql.NullString  `db:"location_name"`
	LocationLat  sql.NullFloat64 `db:"location_lat"`
	LocationLng  sql.NullFloat64 `db:"location_lng"`
	IsSnoozed    bool            `db:"is_snoozed"`
	IsHidden     bool            `db:"is_hidden"`
}

func (r *profileRow) toProfile() *Profile {
	p := &Profile{
		ID:           r.ID,
		Name:         r.DisplayName,
		Gender:       nullString(r.Gender),
		Bio:          nullString(r.Bio),
		FitnessLevel: nullString(r.FitnessLevel),
		PrimaryGoal:  nullString(r.PrimaryGoal),
		Interests:    []string(r.Interests),
		WorkoutTimes: []string(r.WorkoutTimes),
		IsSnoozed:    r.IsSnoozed,
		IsHidden:     r.IsHidden,
	}
	if p.Interests == nil {
		p.Interests = []string{}
	}
	if p.WorkoutTimes == nil {
		p.WorkoutTimes = []string{}
	}
	if r.Age.Valid {
		age := int(r.Age.Int32)
		p.Age = &age
	}

	if r.LocationName.Valid || r.LocationLat.Valid || r.LocationLng.Valid {
		p.Location = &Location{Name: nullString(r.LocationName)}
		if r.LocationLat.Valid {
			lat := r.LocationLat.Float64
			p.Location.Lat = &lat
		}
		if r.LocationLng.Valid {
			lng := r.LocationLng.Float64
			p.Location.Lng = &lng
		}
	}

	return p
}

func nullString(s sql.NullString) *string {
	if !s.Valid || s.String == "" {
		return nil
	}
	v := s.String
	return &v
}
