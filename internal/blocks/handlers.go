package blocks

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/imadgeboyega/fitmatch-backend/internal/auth"
	"github.com/imadgeboyega/fitmatch-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateBlock(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var dto CreateBlockDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.ErrorResponse(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	block, err := h.service.Block(r.Context(), userID, dto.UserID)
	if err != nil {
		if errors.Is(err, ErrCannotBlockSelf) {
			utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		utils.ErrorResponse(w, "Failed to block user", http.StatusInternalServerError)
		return
	}

	utils.SuccessResponse(w, block, http.StatusCreated)
}

func (h *Handler) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	blockedID, err := strconv.ParseInt(mux.Vars(r)["blockedUserId"], 10, 64)
	if err != nil || blockedID <= 0 {
		utils.ErrorResponse(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	removed, err := h.service.Unblock(r.Context(), userID, blockedID)
	if err != nil {
		utils.ErrorResponse(w, "Failed to unblock user", http.StatusInternalServerError)
		return
	}
	if !removed {
		utils.ErrorResponse(w, ErrBlockNotFound.Error(), http.StatusNotFound)
		return
	}

	utils.MessageResponse(w, "User unblocked", http.StatusOK)
}

func (h *Handler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	blocks, err := h.service.List(r.Context(), userID)
	if err != nil {
		utils.ErrorResponse(w, "Failed to get blocked users", http.StatusInternalServerError)
		return
	}

	utils.SuccessResponse(w, blocks, http.StatusOK)
}
