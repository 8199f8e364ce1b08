// Package thread rebuilds an author's self-reply chain within a conversation
// and serves thread positions from the thread cache.
package thread

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iconidentify/xresolve/internal/domain"
)

// DefaultTTL is how long a reconstructed chain stays authoritative.
const DefaultTTL = 24 * time.Hour

// Options configures a Reconstructor.
type Options struct {
	// Enabled turns thread support on. When false every call returns 0 or
	// not found without touching the cache or upstream.
	Enabled bool

	// TTL is the chain expiry. Zero means DefaultTTL.
	TTL time.Duration

	// Timeout bounds each upstream search and cache round-trip. Zero means no
	// extra bound beyond the caller's context.
	Timeout time.Duration
}

// Reconstructor validates self-reply chains and persists them to the cache.
type Reconstructor struct {
	search domain.ConversationSearcher
	cache  domain.ThreadCache
	opts   Options
	logger *slog.Logger

	// group collapses concurrent first-population of the same conversation.
	group singleflight.Group
}

// New creates a Reconstructor.
func New(search domain.ConversationSearcher, cache domain.ThreadCache, opts Options, logger *slog.Logger) *Reconstructor {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconstructor{
		search: search,
		cache:  cache,
		opts:   opts,
		logger: logger,
	}
}

// Enabled reports whether thread support is on.
func (r *Reconstructor) Enabled() bool {
	return r.opts.Enabled
}

// Count returns the number of posts in the conversation's thread, reading the
// cache first and reconstructing it from upstream on a miss. Disabled support,
// an empty search and any search or cache failure all yield 0.
func (r *Reconstructor) Count(ctx context.Context, conversationID, userID uint64) uint {
	logger := r.logger.With("conversation_id", conversationID, "user_id", userID)

	if !r.opts.Enabled {
		logger.Debug("thread support disabled", "reason", "disabled")
		return 0
	}

	cctx, cancel := r.bound(ctx)
	chain, err := r.cache.Chain(cctx, conversationID)
	cancel()
	if err != nil {
		logger.Warn("thread cache read failed, treating as miss", "reason", "cache_read_failed", "error", err)
	} else if len(chain) > 0 {
		logger.Debug("thread cache hit", "count", len(chain))
		return uint(len(chain))
	}

	// The result is shared by every waiter on the key, so one caller going
	// away must not cut it short. Options.Timeout still bounds each call.
	shared := context.WithoutCancel(ctx)
	key := strconv.FormatUint(conversationID, 10)
	v, _, _ := r.group.Do(key, func() (interface{}, error) {
		return r.reconstruct(shared, logger, conversationID, userID), nil
	})
	return v.(uint)
}

// Thread returns the post id stored at the 1-based position of the
// conversation's thread, reconstructing the thread on a cache miss.
// ok is false when the position cannot be resolved.
func (r *Reconstructor) Thread(ctx context.Context, conversationID uint64, position int, userID uint64) (domain.TweetID, bool) {
	if !r.opts.Enabled || position < 1 {
		return 0, false
	}
	logger := r.logger.With("conversation_id", conversationID, "user_id", userID, "position", position)

	if id, ok := r.lookup(ctx, logger, conversationID, position); ok {
		return id, true
	}

	if r.Count(ctx, conversationID, userID) == 0 {
		return 0, false
	}
	return r.lookup(ctx, logger, conversationID, position)
}

func (r *Reconstructor) lookup(ctx context.Context, logger *slog.Logger, conversationID uint64, position int) (domain.TweetID, bool) {
	cctx, cancel := r.bound(ctx)
	defer cancel()

	id, ok, err := r.cache.Position(cctx, conversationID, position)
	if err != nil {
		logger.Warn("thread cache read failed", "reason", "cache_read_failed", "error", err)
		return 0, false
	}
	return id, ok
}

func (r *Reconstructor) reconstruct(ctx context.Context, logger *slog.Logger, conversationID, userID uint64) uint {
	sctx, cancel := r.bound(ctx)
	results, err := r.search.SearchConversation(sctx, conversationID, userID)
	cancel()
	if err != nil {
		logger.Warn("thread search failed", "reason", "search_failed", "error", err)
		return 0
	}

	chain := Validate(results)
	if len(chain) == 0 {
		logger.Debug("no thread found", "reason", "empty")
		return 0
	}

	wctx, cancel := r.bound(ctx)
	defer cancel()
	if err := r.cache.Store(wctx, conversationID, chain, r.opts.TTL); err != nil {
		logger.Warn("thread cache write failed", "reason", "cache_write_failed", "error", err)
		return 0
	}

	logger.Info("thread reconstructed", "count", len(chain))
	return uint(len(chain))
}

func (r *Reconstructor) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opts.Timeout > 0 {
		return context.WithTimeout(ctx, r.opts.Timeout)
	}
	return context.WithCancel(ctx)
}

// Validate walks search results from oldest to newest and returns the
// contiguous reply chain. The oldest post seeds the chain; each following
// post must reply to the previously accepted one, and the walk stops at the
// first post that does not.
//
// Results are expected newest first. They are re-sorted by id, which is
// time-ordered, so a searcher that breaks that order cannot corrupt the walk.
func Validate(results []domain.SearchResult) []domain.TweetID {
	if len(results) == 0 {
		return nil
	}

	ordered := make([]domain.SearchResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ID < ordered[j].ID
	})

	chain := []domain.TweetID{ordered[0].ID}
	for _, post := range ordered[1:] {
		if !post.RepliesTo(chain[len(chain)-1]) {
			break
		}
		chain = append(chain, post.ID)
	}
	return chain
}
