package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iconidentify/xresolve/internal/domain"
	"github.com/iconidentify/xresolve/internal/history"
	"github.com/iconidentify/xresolve/pkg/twitter"
)

// BundleResolver resolves a post reference into a delivery bundle.
type BundleResolver interface {
	Resolve(ctx context.Context, rawURL string) (*domain.Bundle, error)
}

// HistoryRecorder stores successful resolutions.
type HistoryRecorder interface {
	Record(ctx context.Context, b *domain.Bundle) (history.Entry, error)
}

// ResolveHandler handles post resolution requests.
type ResolveHandler struct {
	resolver BundleResolver
	recorder HistoryRecorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewResolveHandler creates a new resolve handler. recorder may be nil.
func NewResolveHandler(resolver BundleResolver, recorder HistoryRecorder, logger *slog.Logger) *ResolveHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResolveHandler{
		resolver: resolver,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Resolve handles GET /api/v1/resolve?url=...
func (h *ResolveHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	rawURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if rawURL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	bundle, err := h.resolver.Resolve(r.Context(), rawURL)
	if err != nil {
		h.writeResolveError(w, err)
		return
	}

	if h.recorder != nil {
		if _, err := h.recorder.Record(r.Context(), bundle); err != nil {
			h.logger.Warn("record history failed", "tweet_id", bundle.PostID.String(), "error", err)
		}
	}

	writeJSON(w, http.StatusOK, bundle)
}

func (h *ResolveHandler) writeResolveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidTweetURL):
		writeError(w, http.StatusBadRequest, "invalid tweet URL")
	case errors.Is(err, domain.ErrRateLimited):
		if rl, ok := twitter.AsRateLimit(err); ok {
			if wait := rl.RetryAfter(h.now()); wait > 0 {
				secs := int((wait + time.Second - 1) / time.Second)
				w.Header().Set("Retry-After", strconv.Itoa(secs))
			}
		}
		writeError(w, http.StatusTooManyRequests, "rate limited, retry later")
	case errors.Is(err, domain.ErrUnauthorized):
		h.logger.Error("upstream rejected credentials", "error", err)
		writeError(w, http.StatusBadGateway, "upstream authorization failed")
	case errors.Is(err, domain.ErrMissingText):
		writeError(w, http.StatusUnprocessableEntity, "post has no text")
	case errors.Is(err, domain.ErrTweetNotFound):
		writeError(w, http.StatusNotFound, "tweet not found")
	default:
		h.logger.Error("resolve failed", "error", err)
		writeError(w, http.StatusBadGateway, "upstream request failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
