package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/iconidentify/xresolve/internal/domain"
	"github.com/iconidentify/xresolve/pkg/twitter"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockFetcher struct {
	tweet *domain.Tweet
	err   error
	calls int
}

func (m *mockFetcher) FetchTweet(ctx context.Context, id domain.TweetID) (*domain.Tweet, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.tweet, nil
}

type mockThreads struct {
	enabled bool
	count   uint
	calls   int
	gotConv uint64
	gotUser uint64
}

func (m *mockThreads) Enabled() bool { return m.enabled }

func (m *mockThreads) Count(ctx context.Context, conversationID, userID uint64) uint {
	m.calls++
	m.gotConv = conversationID
	m.gotUser = userID
	return m.count
}

func strPtr(s string) *string { return &s }

func rate(n int) *int { return &n }

func sampleTweet() *domain.Tweet {
	return &domain.Tweet{
		ID:             1500,
		Text:           strPtr("new clip https://t.co/real https://t.co/media"),
		ConversationID: 1400,
		Author:         domain.Author{ID: 77, Name: "Jane", Username: "jane"},
		Attachments: []domain.Attachment{{
			Kind:       domain.MediaKindVideo,
			PreviewURL: "thumb.jpg",
			Variants: []domain.Variant{
				{BitRate: rate(256000), URL: "low.mp4"},
				{BitRate: rate(832000), URL: "high.mp4"},
				{URL: "playlist.m3u8"},
			},
		}},
	}
}

func TestResolver_Resolve(t *testing.T) {
	fetcher := &mockFetcher{tweet: sampleTweet()}
	threads := &mockThreads{enabled: true, count: 4}
	r := NewResolver(fetcher, nil, threads, testLogger())

	b, err := r.Resolve(context.Background(), "https://twitter.com/jane/status/1500?s=20")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if b.PostID != 1500 {
		t.Errorf("PostID = %d, want 1500", b.PostID)
	}
	if len(b.Media) != 1 || b.Media[0].URL != "high.mp4" {
		t.Errorf("Media = %+v, want high.mp4", b.Media)
	}
	if len(b.AllVariants) != 2 {
		t.Errorf("len(AllVariants) = %d, want 2", len(b.AllVariants))
	}
	if !strings.HasPrefix(b.Caption, "new clip \nhttps://t.co/real  \n\n") {
		t.Errorf("Caption = %q", b.Caption)
	}
	if !strings.Contains(b.Caption, "https://twitter.com/jane/status/1500") {
		t.Errorf("Caption missing credit link: %q", b.Caption)
	}
	if b.AuthorName != "Jane" || b.AuthorHandle != "jane" || b.AuthorID != 77 {
		t.Errorf("author = %q/%q/%d", b.AuthorName, b.AuthorHandle, b.AuthorID)
	}
	if b.ConversationID != 1400 {
		t.Errorf("ConversationID = %d", b.ConversationID)
	}
	if b.ThreadCount != 4 || b.Cursor != 1 {
		t.Errorf("ThreadCount/Cursor = %d/%d, want 4/1", b.ThreadCount, b.Cursor)
	}
	if threads.gotConv != 1400 || threads.gotUser != 77 {
		t.Errorf("thread lookup used conv=%d user=%d", threads.gotConv, threads.gotUser)
	}
}

func TestResolver_ThreadsDisabled(t *testing.T) {
	threads := &mockThreads{enabled: false, count: 9}
	r := NewResolver(&mockFetcher{tweet: sampleTweet()}, nil, threads, testLogger())

	b, err := r.Resolve(context.Background(), "1500")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if threads.calls != 0 {
		t.Errorf("thread counter called %d times while disabled", threads.calls)
	}
	if b.ThreadCount != 0 || b.Cursor != 0 {
		t.Errorf("ThreadCount/Cursor = %d/%d, want 0/0", b.ThreadCount, b.Cursor)
	}
}

func TestResolver_TextOnlyWithoutThread(t *testing.T) {
	tweet := sampleTweet()
	tweet.Text = strPtr("see https://t.co/real")
	tweet.Attachments = nil
	threads := &mockThreads{enabled: true, count: 0}
	r := NewResolver(&mockFetcher{tweet: tweet}, nil, threads, testLogger())

	b, err := r.Resolve(context.Background(), "1500")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if b.HasMedia() || len(b.AllVariants) != 0 {
		t.Errorf("Media = %+v, want none", b.Media)
	}
	if !strings.HasPrefix(b.Caption, "see \nhttps://t.co/real \n\n") {
		t.Errorf("Caption = %q, trailing link must stay when there is no media", b.Caption)
	}
	if threads.calls != 1 {
		t.Errorf("thread counter calls = %d, want 1", threads.calls)
	}
	if b.HasThread() || b.Cursor != 0 {
		t.Errorf("ThreadCount/Cursor = %d/%d, want 0/0", b.ThreadCount, b.Cursor)
	}
}

func TestResolver_NilThreads(t *testing.T) {
	r := NewResolver(&mockFetcher{tweet: sampleTweet()}, nil, nil, testLogger())

	if _, err := r.Resolve(context.Background(), "1500"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
}

func TestResolver_Errors(t *testing.T) {
	noText := sampleTweet()
	noText.Text = nil

	tests := []struct {
		name    string
		url     string
		fetcher *mockFetcher
		wantErr error
	}{
		{
			name:    "invalid url",
			url:     "https://twitter.com/i/spaces/1AbC",
			fetcher: &mockFetcher{tweet: sampleTweet()},
			wantErr: domain.ErrInvalidTweetURL,
		},
		{
			name:    "unauthorized",
			url:     "1500",
			fetcher: &mockFetcher{err: domain.ErrUnauthorized},
			wantErr: domain.ErrUnauthorized,
		},
		{
			name:    "rate limited",
			url:     "1500",
			fetcher: &mockFetcher{err: &twitter.RateLimitError{Reset: time.Now().Add(time.Minute)}},
			wantErr: domain.ErrRateLimited,
		},
		{
			name:    "missing text",
			url:     "1500",
			fetcher: &mockFetcher{tweet: noText},
			wantErr: domain.ErrMissingText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			threads := &mockThreads{enabled: true}
			r := NewResolver(tt.fetcher, nil, threads, testLogger())

			b, err := r.Resolve(context.Background(), tt.url)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
			}
			if b != nil {
				t.Errorf("expected nil bundle, got %+v", b)
			}
			if threads.calls != 0 {
				t.Errorf("thread counter must not run on failure")
			}
		})
	}
}

func TestResolver_InvalidURLSkipsFetch(t *testing.T) {
	fetcher := &mockFetcher{tweet: sampleTweet()}
	r := NewResolver(fetcher, nil, nil, testLogger())

	_, _ = r.Resolve(context.Background(), "not a url")
	if fetcher.calls != 0 {
		t.Errorf("fetcher called %d times for invalid input", fetcher.calls)
	}
}

func TestResolver_RateLimitKeepsReset(t *testing.T) {
	reset := time.Unix(1700000000, 0)
	r := NewResolver(&mockFetcher{err: &twitter.RateLimitError{Reset: reset}}, nil, nil, testLogger())

	_, err := r.Resolve(context.Background(), "1500")
	rl, ok := twitter.AsRateLimit(err)
	if !ok {
		t.Fatalf("expected RateLimitError in chain, got %v", err)
	}
	if !rl.Reset.Equal(reset) {
		t.Errorf("Reset = %v, want %v", rl.Reset, reset)
	}
}
