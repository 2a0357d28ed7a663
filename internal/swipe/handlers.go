// internal/swipe/handlers.go

package swipe

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/imadgeboyega/fitmatch-backend/internal/auth"
	"github.com/imadgeboyega/fitmatch-backend/internal/common/utils"
	"github.com/rs/zerolog"
)

type Handler struct {
	service Service
	log     zerolog.Logger
	now     func() time.Time
}

func NewHandler(service Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("component", "swipe_handler").Logger(),
		now:     time.Now,
	}
}

func (h *Handler) GetQueue(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	query, err := parseQueueQuery(r.URL.Query())
	if err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(query); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	queue, err := h.service.BuildQueue(r.Context(), userID, query.Limit, query.filters())
	if err != nil {
		h.writeError(w, err, "Failed to build swipe queue")
		return
	}

	utils.SuccessResponse(w, QueueResponse{Items: queue, Count: len(queue)}, http.StatusOK)
}

func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var dto LikeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.ErrorResponse(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Like(r.Context(), userID, dto.TargetUserID, dto.SuperLike)
	if err != nil {
		h.writeError(w, err, "Failed to record like")
		return
	}

	status := http.StatusOK
	if result.Match != nil {
		status = http.StatusCreated
	}
	utils.SuccessResponse(w, result, status)
}

func (h *Handler) Pass(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var dto PassRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.ErrorResponse(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Pass(r.Context(), userID, dto.TargetUserID)
	if err != nil {
		h.writeError(w, err, "Failed to record pass")
		return
	}

	utils.SuccessResponse(w, result, http.StatusOK)
}

func (h *Handler) GetThrottle(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	snapshot, err := h.service.ThrottleSnapshot(r.Context(), userID)
	if err != nil {
		h.writeError(w, err, "Failed to get swipe limits")
		return
	}

	utils.SuccessResponse(w, snapshot, http.StatusOK)
}

func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	matches, err := h.service.ListMatches(r.Context(), userID)
	if err != nil {
		h.writeError(w, err, "Failed to get matches")
		return
	}

	utils.SuccessResponse(w, matches, http.StatusOK)
}

func (h *Handler) ResetSeen(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.service.ResetSeen(r.Context(), userID); err != nil {
		h.writeError(w, err, "Failed to reset swipe history")
		return
	}

	utils.MessageResponse(w, "Swipe history cleared", http.StatusOK)
}

// writeError maps the error taxonomy onto HTTP statuses
func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch KindOf(err) {
	case KindUserNotFound:
		utils.ErrorResponse(w, err.Error(), http.StatusNotFound)
	case KindInvalidLike:
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
	case KindUserBlocked:
		utils.ErrorResponse(w, err.Error(), http.StatusForbidden)
	case KindSwipeLimitReached:
		var limitErr *SwipeLimitError
		errors.As(err, &limitErr)
		retryAfter := int(math.Ceil(limitErr.ResetsAt.Sub(h.now()).Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		utils.ErrorResponseWithDetails(w, err.Error(), limitDetails{
			Throttle: limitInfo{Type: limitErr.Type, ResetsAt: limitErr.ResetsAt.UTC().Format(time.RFC3339)},
		}, http.StatusTooManyRequests)
	case KindTransient:
		h.log.Error().Err(err).Msg("store unavailable")
		utils.ErrorResponse(w, "Service temporarily unavailable, please retry", http.StatusServiceUnavailable)
	default:
		h.log.Error().Err(err).Msg(fallback)
		utils.ErrorResponse(w, fallback, http.StatusInternalServerError)
	}
}
