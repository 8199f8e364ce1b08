package domain

import (
	"context"
	"time"
)

// TweetFetcher fetches a single post with its attachments and author.
type TweetFetcher interface {
	// FetchTweet returns the post payload. Implementations report an
	// unauthorized credential with ErrUnauthorized and rate limiting with an
	// error matching ErrRateLimited.
	FetchTweet(ctx context.Context, id TweetID) (*Tweet, error)
}

// ConversationSearcher finds the author's own replies inside a conversation.
type ConversationSearcher interface {
	// SearchConversation returns at most one page of posts by userID addressed
	// to userID within the conversation, newest first. An empty result is not
	// an error.
	SearchConversation(ctx context.Context, conversationID, userID uint64) ([]SearchResult, error)
}

// ThreadCache stores thread chains keyed by conversation.
type ThreadCache interface {
	// Chain returns every stored position of the conversation's thread.
	// A missing key yields an empty map and no error.
	Chain(ctx context.Context, conversationID uint64) (map[int]TweetID, error)

	// Position returns one stored position. ok is false when absent.
	Position(ctx context.Context, conversationID uint64, position int) (id TweetID, ok bool, err error)

	// Store writes the chain (1-based positions in slice order) and its expiry
	// as one atomic batch.
	Store(ctx context.Context, conversationID uint64, chain []TweetID, ttl time.Duration) error
}
