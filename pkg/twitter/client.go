package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iconidentify/xresolve/internal/domain"
)

const (
	defaultBaseURL    = "https://api.twitter.com/2"
	defaultMaxResults = 100

	tweetExpansions  = "attachments.media_keys,author_id"
	tweetMediaFields = "url,variants,preview_image_url"
	tweetFields      = "conversation_id,author_id"
)

// ClientConfig configures the X API v2 client.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	MaxResults int // search page size, 10..100
}

// Client fetches posts and searches conversations through the X API v2.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	userAgent  string
	maxResults int
	logger     *slog.Logger
}

// NewClient creates a new Twitter client. Each request picks its bearer
// token from tokens.
func NewClient(cfg ClientConfig, tokens TokenSource, logger *slog.Logger) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "xresolve/1.0"
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 || maxResults > defaultMaxResults {
		maxResults = defaultMaxResults
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:    strings.TrimRight(base, "/"),
		tokens:     tokens,
		userAgent:  ua,
		maxResults: maxResults,
		logger:     logger,
	}
}

// FetchTweet retrieves a post with its media and author expansions.
func (c *Client) FetchTweet(ctx context.Context, id domain.TweetID) (*domain.Tweet, error) {
	u, err := url.Parse(c.baseURL + "/tweets/" + id.String())
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	q := u.Query()
	q.Set("expansions", tweetExpansions)
	q.Set("media.fields", tweetMediaFields)
	q.Set("user.fields", "name")
	q.Set("tweet.fields", tweetFields)
	u.RawQuery = q.Encode()

	c.logger.Info("send request to twitter", "tweet_id", id)

	var parsed tweetResponse
	if err := c.get(ctx, u.String(), &parsed); err != nil {
		return nil, err
	}
	if parsed.Data == nil {
		if len(parsed.Errors) > 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrTweetNotFound, parsed.Errors[0].Detail)
		}
		return nil, domain.ErrTweetNotFound
	}

	return toDomainTweet(id, parsed.Data, parsed.Includes), nil
}

// SearchConversation returns the author's self-replies in a conversation,
// newest first, capped at one page.
func (c *Client) SearchConversation(ctx context.Context, conversationID, userID uint64) ([]domain.SearchResult, error) {
	u, err := url.Parse(c.baseURL + "/tweets/search/recent")
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	user := strconv.FormatUint(userID, 10)
	q := u.Query()
	q.Set("query", fmt.Sprintf("conversation_id:%d from:%s to:%s", conversationID, user, user))
	q.Set("tweet.fields", "referenced_tweets")
	q.Set("max_results", strconv.Itoa(c.maxResults))
	q.Set("sort_order", "recency")
	u.RawQuery = q.Encode()

	var parsed searchResponse
	if err := c.get(ctx, u.String(), &parsed); err != nil {
		return nil, err
	}

	c.logger.Debug("conversation search", "conversation_id", conversationID, "result_count", parsed.Meta.ResultCount)

	out := make([]domain.SearchResult, 0, len(parsed.Data))
	for _, t := range parsed.Data {
		id, err := domain.ParseTweetID(t.ID)
		if err != nil {
			return nil, fmt.Errorf("decode search result: %w", err)
		}
		res := domain.SearchResult{ID: id}
		for _, ref := range t.ReferencedTweets {
			refID, err := domain.ParseTweetID(ref.ID)
			if err != nil {
				continue
			}
			res.References = append(res.References, domain.Reference{Type: ref.Type, ID: refID})
		}
		out = append(out, res)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, rawURL string, into any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("bearer token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("twitter response", "status", resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return rateLimitFromResponse(resp)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &APIError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func toDomainTweet(id domain.TweetID, data *apiTweet, includes *apiIncludes) *domain.Tweet {
	tweet := &domain.Tweet{
		ID:   id,
		Text: data.Text,
	}
	tweet.ConversationID, _ = strconv.ParseUint(data.ConversationID, 10, 64)
	tweet.Author.ID, _ = strconv.ParseUint(data.AuthorID, 10, 64)

	if includes == nil {
		return tweet
	}

	if user, ok := findAuthor(includes.Users, data.AuthorID); ok {
		tweet.Author.Name = user.Name
		tweet.Author.Username = user.Username
	}

	byKey := make(map[string]apiMedia, len(includes.Media))
	for _, m := range includes.Media {
		byKey[m.MediaKey] = m
	}
	// Attachment order is the post's media_keys order; includes may be
	// shuffled or carry media belonging to other expanded objects.
	for _, key := range data.Attachments.MediaKeys {
		m, ok := byKey[key]
		if !ok {
			continue
		}
		att := domain.Attachment{
			Kind:       domain.MediaKind(m.Type),
			URL:        m.URL,
			PreviewURL: m.PreviewImageURL,
		}
		for _, v := range m.Variants {
			att.Variants = append(att.Variants, domain.Variant{
				BitRate:     v.BitRate,
				ContentType: v.ContentType,
				URL:         v.URL,
			})
		}
		tweet.Attachments = append(tweet.Attachments, att)
	}
	return tweet
}

// findAuthor prefers the user matching authorID and falls back to the first
// included user.
func findAuthor(users []apiUser, authorID string) (apiUser, bool) {
	for _, u := range users {
		if u.ID == authorID {
			return u, true
		}
	}
	if len(users) > 0 {
		return users[0], true
	}
	return apiUser{}, false
}
