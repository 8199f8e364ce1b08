package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/xresolve/internal/domain"
)

// ThreadNavigator walks self-reply threads.
type ThreadNavigator interface {
	Count(ctx context.Context, conversationID, userID uint64) uint
	Thread(ctx context.Context, conversationID uint64, position int, userID uint64) (domain.TweetID, bool)
}

// ThreadHandler handles thread navigation requests.
type ThreadHandler struct {
	threads ThreadNavigator
}

// NewThreadHandler creates a new thread handler.
func NewThreadHandler(threads ThreadNavigator) *ThreadHandler {
	return &ThreadHandler{threads: threads}
}

// PositionResponse is returned for a thread position lookup.
type PositionResponse struct {
	ConversationID string `json:"conversation_id"`
	Position       int    `json:"position"`
	TweetID        string `json:"tweet_id"`
}

// CountResponse is returned for a thread length query.
type CountResponse struct {
	ConversationID string `json:"conversation_id"`
	Count          uint   `json:"count"`
}

// Position handles GET /api/v1/threads/{conversationID}/{position}
func (h *ThreadHandler) Position(w http.ResponseWriter, r *http.Request) {
	convID, userID, ok := threadParams(w, r)
	if !ok {
		return
	}

	position, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil || position < 1 {
		writeError(w, http.StatusBadRequest, "position must be a positive integer")
		return
	}

	id, found := h.threads.Thread(r.Context(), convID, position, userID)
	if !found {
		writeError(w, http.StatusNotFound, "thread position not found")
		return
	}

	writeJSON(w, http.StatusOK, PositionResponse{
		ConversationID: strconv.FormatUint(convID, 10),
		Position:       position,
		TweetID:        id.String(),
	})
}

// Count handles GET /api/v1/threads/{conversationID}/count
func (h *ThreadHandler) Count(w http.ResponseWriter, r *http.Request) {
	convID, userID, ok := threadParams(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, CountResponse{
		ConversationID: strconv.FormatUint(convID, 10),
		Count:          h.threads.Count(r.Context(), convID, userID),
	})
}

func threadParams(w http.ResponseWriter, r *http.Request) (convID, userID uint64, ok bool) {
	convID, err := strconv.ParseUint(chi.URLParam(r, "conversationID"), 10, 64)
	if err != nil || convID == 0 {
		writeError(w, http.StatusBadRequest, "invalid conversation id")
		return 0, 0, false
	}

	userID, err = strconv.ParseUint(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID == 0 {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return 0, 0, false
	}
	return convID, userID, true
}
