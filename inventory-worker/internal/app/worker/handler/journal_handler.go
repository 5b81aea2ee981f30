package handler

import (
	"errors"
	"net/http"
	"strconv"

	"vidasmart/inventory-worker/internal/app/worker/entity"
	"vidasmart/inventory-worker/internal/app/worker/service"
	"vidasmart/pkg/logger"

	"github.com/google/uuid"
)

// JournalHandler отдаёт журнал движений и снимки остатков только на чтение
type JournalHandler struct {
	journalSvc  service.JournalServiceInterface
	snapshotSvc service.SnapshotServiceInterface
}

func NewJournalHandler(journalSvc service.JournalServiceInterface, snapshotSvc service.SnapshotServiceInterface) *JournalHandler {
	return &JournalHandler{
		journalSvc:  journalSvc,
		snapshotSvc: snapshotSvc,
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// ProductMovements - GET /movements/{product_id}?limit=
func (h *JournalHandler) ProductMovements(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(r.PathValue("product_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_id", Message: "product_id must be a UUID"})
		return
	}

	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err = strconv.ParseInt(raw, 10, 64); err != nil || limit < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_limit", Message: "limit must be a positive integer"})
			return
		}
	}

	movements, err := h.journalSvc.ProductMovements(r.Context(), productID, limit)
	if err != nil {
		logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to list movements")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
		return
	}

	writeJSON(w, http.StatusOK, listResponse[entity.Movement]{Items: movements, Total: len(movements)})
}

// LatestSnapshot - GET /snapshots/latest
func (h *JournalHandler) LatestSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.snapshotSvc.LatestSnapshot(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrSnapshotNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()})
			return
		}
		logger.Error().Err(err).Msg("failed to get latest snapshot")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (h *JournalHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /movements/{product_id}", h.ProductMovements)
	mux.HandleFunc("GET /snapshots/latest", h.LatestSnapshot)
}
