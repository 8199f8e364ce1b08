package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/iconidentify/xresolve/internal/caption"
	"github.com/iconidentify/xresolve/internal/domain"
	"github.com/iconidentify/xresolve/internal/media"
	"github.com/iconidentify/xresolve/pkg/twitter"
)

// ThreadCounter reports the length of a conversation's self-reply thread.
type ThreadCounter interface {
	Enabled() bool
	Count(ctx context.Context, conversationID, userID uint64) uint
}

// Resolver turns a post reference into a delivery bundle.
type Resolver struct {
	fetcher  domain.TweetFetcher
	composer *caption.Composer
	threads  ThreadCounter
	logger   *slog.Logger
}

// NewResolver creates a Resolver. threads may be nil when thread support is
// not wired at all.
func NewResolver(fetcher domain.TweetFetcher, composer *caption.Composer, threads ThreadCounter, logger *slog.Logger) *Resolver {
	if composer == nil {
		composer = caption.NewComposer(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		fetcher:  fetcher,
		composer: composer,
		threads:  threads,
		logger:   logger,
	}
}

// Resolve parses rawURL, fetches the post and assembles the bundle.
//
// Errors: domain.ErrInvalidTweetURL for unparseable input,
// domain.ErrUnauthorized when upstream rejects the credential,
// domain.ErrRateLimited when no result is available now (retry later), and
// domain.ErrMissingText when the post has no body. Thread failures never
// surface; they only zero the thread count.
func (s *Resolver) Resolve(ctx context.Context, rawURL string) (*domain.Bundle, error) {
	id, ok := twitter.ExtractTweetID(rawURL)
	if !ok {
		return nil, domain.ErrInvalidTweetURL
	}
	return s.ResolveID(ctx, id)
}

// ResolveID resolves an already parsed post identifier.
func (s *Resolver) ResolveID(ctx context.Context, id domain.TweetID) (*domain.Bundle, error) {
	logger := s.logger.With("tweet_id", id)

	tweet, err := s.fetcher.FetchTweet(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRateLimited):
			logger.Warn("rate limited, no result now", "error", err)
		case errors.Is(err, domain.ErrUnauthorized):
			logger.Error("upstream rejected credentials", "error", err)
		default:
			logger.Error("failed to fetch tweet", "error", err)
		}
		return nil, domain.NewResolveError(id, "fetch tweet", err)
	}

	if tweet.Text == nil {
		logger.Error("tweet has no text")
		return nil, domain.NewResolveError(id, "compose caption", domain.ErrMissingText)
	}

	sel := media.Select(tweet.Attachments)

	bundle := &domain.Bundle{
		Media:          sel.Media,
		AuthorName:     tweet.Author.Name,
		AuthorHandle:   tweet.Author.Username,
		PostID:         id,
		URL:            domain.StatusURL(tweet.Author.Username, id),
		AllVariants:    sel.Variants,
		ConversationID: tweet.ConversationID,
		AuthorID:       tweet.Author.ID,
	}
	bundle.Caption = s.composer.Compose(*tweet.Text, bundle.HasMedia(), tweet.Author, id)

	if s.threads != nil && s.threads.Enabled() {
		bundle.ThreadCount = s.threads.Count(ctx, tweet.ConversationID, tweet.Author.ID)
		if bundle.HasThread() {
			bundle.Cursor = 1
		}
	}

	logger.Info("tweet resolved",
		"author", bundle.AuthorHandle,
		"media_count", len(bundle.Media),
		"thread_count", bundle.ThreadCount,
	)
	return bundle, nil
}
