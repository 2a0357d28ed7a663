package swipe

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

type LikeRequestDTO struct {
	TargetUserID int64 `json:"target_user_id" validate:"required,gt=0"`
	SuperLike    bool  `json:"super_like"`
}

type PassRequestDTO struct {
	TargetUserID int64 `json:"target_user_id" validate:"required,gt=0"`
}

// QueueQueryDTO is the parsed query string of a queue request
type QueueQueryDTO struct {
	Limit         int      `validate:"gte=0"`
	RadiusKm      *float64 `validate:"omitempty,gt=0"`
	Gender        *string
	FitnessLevels []string
	MinScore      *float64 `validate:"omitempty,gte=0,lte=1"`
}

type QueueResponse struct {
	Items []ScoredCandidate `json:"items"`
	Count int               `json:"count"`
}

type limitDetails struct {
	Throttle limitInfo `json:"throttle"`
}

type limitInfo struct {
	Type     string `json:"type"`
	ResetsAt string `json:"resets_at"`
}

// parseQueueQuery reads limit, radiusKm, gender, fitnessLevels and minScore.
// fitnessLevels may be repeated or comma separated.
func parseQueueQuery(values url.Values) (*QueueQueryDTO, error) {
	dto := &QueueQueryDTO{}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, badQuery("limit")
		}
		dto.Limit = limit
	}

	var err error
	if dto.RadiusKm, err = parseOptionalFloat(values, "radiusKm"); err != nil {
		return nil, err
	}
	if dto.MinScore, err = parseOptionalFloat(values, "minScore"); err != nil {
		return nil, err
	}

	if gender := strings.TrimSpace(values.Get("gender")); gender != "" {
		dto.Gender = &gender
	}

	for _, raw := range values["fitnessLevels"] {
		for _, level := range strings.Split(raw, ",") {
			if level = strings.TrimSpace(level); level != "" {
				dto.FitnessLevels = append(dto.FitnessLevels, level)
			}
		}
	}

	return dto, nil
}

func parseOptionalFloat(values url.Values, name string) (*float64, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, badQuery(name)
	}
	return &f, nil
}

func badQuery(param string) error {
	return fmt.Errorf("%s must be a number", param)
}

func (d *QueueQueryDTO) filters() *Filters {
	return &Filters{
		RadiusKm:      d.RadiusKm,
		Gender:        d.Gender,
		FitnessLevels: d.FitnessLevels,
		MinScore:      d.MinScore,
	}
}
