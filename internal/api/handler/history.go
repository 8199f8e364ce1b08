package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iconidentify/xresolve/internal/history"
)

// HistoryLister lists recent resolutions.
type HistoryLister interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

// HistoryHandler serves resolution history.
type HistoryHandler struct {
	store  HistoryLister
	logger *slog.Logger
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(store HistoryLister, logger *slog.Logger) *HistoryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryHandler{store: store, logger: logger}
}

// HistoryResponse wraps a page of history entries.
type HistoryResponse struct {
	Entries []history.Entry `json:"entries"`
	Limit   int             `json:"limit"`
}

// List handles GET /api/v1/history
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	entries, err := h.store.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("list history failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}

	writeJSON(w, http.StatusOK, HistoryResponse{Entries: entries, Limit: limit})
}
