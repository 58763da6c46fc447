package paymentoption

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	errors "github.com/frahmantamala/invoice-payments/internal"
	"github.com/frahmantamala/invoice-payments/internal/transport"
)

type Handler struct {
	transport.BaseHandler
	Service *Service
	Logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.BaseHandler{Logger: logger},
		Service:     service,
		Logger:      logger,
	}
}

type UserDeletedRequest struct {
	DeletedAt time.Time `json:"deleted_at"`
	RemovedAt time.Time `json:"removed_at"`
}

// HandleUserDeleted handles POST /api/v1/users/{id}/deleted
func (h *Handler) HandleUserDeleted(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.Logger.Error("HandleUserDeleted: invalid user id", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid user id", errors.ErrCodeValidationFailed))
		return
	}

	var req UserDeletedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("HandleUserDeleted: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	if req.DeletedAt.IsZero() {
		req.DeletedAt = time.Now()
	}
	if req.RemovedAt.IsZero() {
		req.RemovedAt = req.DeletedAt
	}

	if err := h.Service.OnUserDeleted(r.Context(), userID, req.DeletedAt, req.RemovedAt); err != nil {
		h.Logger.Error("HandleUserDeleted: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "processed",
		"user_id": userID,
	})
}
