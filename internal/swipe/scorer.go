// internal/swipe/scorer.go
// Geo distance and weighted compatibility scoring

package swipe

import (
	"math"

	"github.com/imadgeboyega/fitmatch-backend/internal/profile"
	"github.com/imadgeboyega/fitmatch-backend/internal/signals"
)

const earthRadiusKm = 6371.0

// Sub-score weights, summing to 1
const (
	weightLocation  = 0.40
	weightFitness   = 0.20
	weightSchedule  = 0.15
	weightInterests = 0.15
	weightGoal      = 0.10
)

const minSharedThreshold = 2

// DistanceKm is the great circle distance between two locations, nil when
// either coordinate is unknown.
func DistanceKm(a, b *profile.Location) *float64 {
	if !a.HasCoordinates() || !b.HasCoordinates() {
		return nil
	}

	dLat := toRadians(*b.Lat - *a.Lat)
	dLng := toRadians(*b.Lng - *a.Lng)
	lat1 := toRadians(*a.Lat)
	lat2 := toRadians(*b.Lat)

	h := math.Pow(math.Sin(dLat/2), 2) + math.Pow(math.Sin(dLng/2), 2)*math.Cos(lat1)*math.Cos(lat2)
	d := earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return &d
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Score rates candidate for requester, rounded to three decimals.
// The result is not clamped: the signal adjustment may move it slightly
// outside [0,1].
func Score(requester, candidate *profile.Profile, radiusKm float64, signal *signals.EngagementSignal) float64 {
	return scoreWithDistance(requester, candidate, DistanceKm(requester.Location, candidate.Location), radiusKm, signal)
}

func scoreWithDistance(requester, candidate *profile.Profile, distance *float64, radiusKm float64, signal *signals.EngagementSignal) float64 {
	total := weightLocation*locationScore(distance, radiusKm) +
		weightFitness*fitnessScore(requester.FitnessLevel, candidate.FitnessLevel) +
		weightSchedule*overlapScore(requester.WorkoutTimes, candidate.WorkoutTimes) +
		weightInterests*overlapScore(requester.Interests, candidate.Interests) +
		weightGoal*goalScore(requester.PrimaryGoal, candidate.PrimaryGoal)

	total += signalAdjustment(signal)

	return math.Round(total*1000) / 1000
}

func locationScore(distance *float64, radiusKm float64) float64 {
	if distance == nil {
		return 0.4
	}
	if *distance > radiusKm {
		return 0
	}
	return 1 - *distance/radiusKm
}

func fitnessScore(a, b *string) float64 {
	if a == nil || b == nil {
		return 0.5
	}
	ra, rb := profile.FitnessRank(*a), profile.FitnessRank(*b)
	if ra < 0 || rb < 0 {
		return 0.5
	}

	switch diff := ra - rb; {
	case diff == 0:
		return 1
	case diff == 1 || diff == -1:
		return 0.7
	default:
		return 0.3
	}
}

func overlapScore(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.3
	}

	set := make(map[string]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	shared := 0
	seen := make(map[string]struct{}, len(a))
	for _, v := range a {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		if _, ok := set[v]; ok {
			shared++
		}
	}

	return math.Min(1, float64(shared)/minSharedThreshold)
}

func goalScore(a, b *string) float64 {
	if a == nil || b == nil {
		return 0.4
	}
	if *a == *b {
		return 1
	}
	return 0.5
}

func signalAdjustment(signal *signals.EngagementSignal) float64 {
	if signal == nil {
		return 0
	}

	adj := 0.0
	if signal.ResponseRate() >= 0.6 && signal.ResponseCount >= 5 {
		adj += 0.05
	}
	if signal.NegativeFlags >= 2 {
		adj -= math.Min(0.1, float64(signal.NegativeFlags)*0.03)
	}
	return adj
}
