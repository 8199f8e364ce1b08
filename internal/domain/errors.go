package domain

import "errors"

// Domain errors.
var (
	// ErrInvalidTweetURL is returned when no post identifier can be parsed from the input.
	ErrInvalidTweetURL = errors.New("not a valid post reference")

	// ErrUnauthorized is returned when upstream rejects the bearer credential.
	ErrUnauthorized = errors.New("upstream authorization failed")

	// ErrRateLimited is returned when upstream rate limits the request.
	// No result is available now; the caller may retry later.
	ErrRateLimited = errors.New("rate limited")

	// ErrMissingText is returned when the upstream post carries no body text.
	ErrMissingText = errors.New("post has no text")

	// ErrTweetNotFound is returned when upstream has no post for the id.
	ErrTweetNotFound = errors.New("tweet not found")

	// ErrThreadNotFound is returned when a thread position cannot be resolved.
	ErrThreadNotFound = errors.New("thread position not found")
)

// ResolveError wraps an error with post context.
type ResolveError struct {
	TweetID TweetID
	Op      string
	Err     error
}

func (e *ResolveError) Error() string {
	if e.TweetID != 0 {
		return e.Op + " [" + e.TweetID.String() + "]: " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// NewResolveError creates a new ResolveError.
func NewResolveError(id TweetID, op string, err error) *ResolveError {
	return &ResolveError{
		TweetID: id,
		Op:      op,
		Err:     err,
	}
}
