package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iconidentify/xresolve/internal/api/handler"
	"github.com/iconidentify/xresolve/internal/domain"
)

const testKey = "secret"

type stubResolver struct{}

func (stubResolver) Resolve(ctx context.Context, rawURL string) (*domain.Bundle, error) {
	if rawURL == "bad" {
		return nil, domain.ErrInvalidTweetURL
	}
	return &domain.Bundle{PostID: 42, Caption: "hi"}, nil
}

type stubThreads struct{}

func (stubThreads) Count(ctx context.Context, conversationID, userID uint64) uint { return 4 }

func (stubThreads) Thread(ctx context.Context, conversationID uint64, position int, userID uint64) (domain.TweetID, bool) {
	if position > 4 {
		return 0, false
	}
	return domain.TweetID(conversationID + uint64(position)), true
}

func newTestRouter() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(Handlers{
		Resolve: handler.NewResolveHandler(stubResolver{}, nil, logger),
		Thread:  handler.NewThreadHandler(stubThreads{}),
		Health:  handler.NewHealthHandler(nil),
	}, testKey, logger)
}

func do(t *testing.T, h http.Handler, path string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authed {
		req.Header.Set("X-API-Key", testKey)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouter(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name   string
		path   string
		authed bool
		want   int
	}{
		{"health without auth", "/health", false, http.StatusOK},
		{"ready without auth", "/ready", false, http.StatusOK},
		{"resolve requires auth", "/api/v1/resolve?url=1", false, http.StatusUnauthorized},
		{"resolve ok", "/api/v1/resolve?url=1", true, http.StatusOK},
		{"resolve invalid", "/api/v1/resolve?url=bad", true, http.StatusBadRequest},
		{"thread count", "/api/v1/threads/100/count?user_id=7", true, http.StatusOK},
		{"thread position", "/api/v1/threads/100/2?user_id=7", true, http.StatusOK},
		{"thread position missing", "/api/v1/threads/100/9?user_id=7", true, http.StatusNotFound},
		{"history disabled", "/api/v1/history", true, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, tt.path, tt.authed)
			if w.Code != tt.want {
				t.Errorf("GET %s status = %d, want %d: %s", tt.path, w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestRouter_CountRouteNotShadowed(t *testing.T) {
	router := newTestRouter()

	w := do(t, router, "/api/v1/threads/100/count?user_id=7", true)

	var resp handler.CountResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 4 {
		t.Errorf("count = %d, want 4", resp.Count)
	}
}

func TestRouter_ThreadPosition(t *testing.T) {
	router := newTestRouter()

	w := do(t, router, "/api/v1/threads/100/2?user_id=7", true)

	var resp handler.PositionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TweetID != "102" {
		t.Errorf("tweet_id = %q, want 102", resp.TweetID)
	}
}
