package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/xresolve/internal/domain"
	"github.com/iconidentify/xresolve/internal/history"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockResolver is a test implementation of BundleResolver.
type mockResolver struct {
	bundle *domain.Bundle
	err    error
	gotURL string
}

func (m *mockResolver) Resolve(ctx context.Context, rawURL string) (*domain.Bundle, error) {
	m.gotURL = rawURL
	if m.err != nil {
		return nil, m.err
	}
	return m.bundle, nil
}

// mockHistory implements both HistoryRecorder and HistoryLister.
type mockHistory struct {
	recorded  []*domain.Bundle
	recordErr error
	entries   []history.Entry
	listErr   error
	gotLimit  int
}

func (m *mockHistory) Record(ctx context.Context, b *domain.Bundle) (history.Entry, error) {
	if m.recordErr != nil {
		return history.Entry{}, m.recordErr
	}
	m.recorded = append(m.recorded, b)
	return history.Entry{TweetID: b.PostID.String()}, nil
}

func (m *mockHistory) Recent(ctx context.Context, limit int) ([]history.Entry, error) {
	m.gotLimit = limit
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.entries, nil
}

// mockThreads is a test implementation of ThreadNavigator.
type mockThreads struct {
	chain   map[int]domain.TweetID
	gotConv uint64
	gotUser uint64
}

func (m *mockThreads) Count(ctx context.Context, conversationID, userID uint64) uint {
	m.gotConv, m.gotUser = conversationID, userID
	return uint(len(m.chain))
}

func (m *mockThreads) Thread(ctx context.Context, conversationID uint64, position int, userID uint64) (domain.TweetID, bool) {
	m.gotConv, m.gotUser = conversationID, userID
	id, ok := m.chain[position]
	return id, ok
}

// mockPinger is a test implementation of Pinger.
type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.err
}

// withURLParams attaches chi route params to a request.
func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
