package twitter

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/iconidentify/xresolve/internal/domain"
)

// RateLimitError indicates the request hit a rate limit and includes a reset time if known.
type RateLimitError struct {
	Reset time.Time
}

func (e *RateLimitError) Error() string {
	if !e.Reset.IsZero() {
		return fmt.Sprintf("rate limited until %s", e.Reset.Format(time.RFC3339))
	}
	return "rate limited"
}

// Is lets callers match with errors.Is(err, domain.ErrRateLimited).
func (e *RateLimitError) Is(target error) bool {
	return target == domain.ErrRateLimited
}

// RetryAfter returns how long to wait before retrying, or zero when unknown.
func (e *RateLimitError) RetryAfter(now time.Time) time.Duration {
	if e.Reset.IsZero() || !e.Reset.After(now) {
		return 0
	}
	return e.Reset.Sub(now)
}

// AsRateLimit extracts a RateLimitError from err.
func AsRateLimit(err error) (*RateLimitError, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl, true
	}
	return nil, false
}

// APIError is a non-2xx upstream response not covered by a sentinel.
type APIError struct {
	StatusCode int
	Status     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twitter API error: %s", e.Status)
}

func rateLimitFromResponse(resp *http.Response) *RateLimitError {
	rl := &RateLimitError{}
	if reset := resp.Header.Get("x-rate-limit-reset"); reset != "" {
		if sec, err := strconv.ParseInt(reset, 10, 64); err == nil {
			rl.Reset = time.Unix(sec, 0)
		}
	}
	return rl
}
