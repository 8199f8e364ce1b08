package twitter

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
)

// TokenSource provides bearer tokens for API calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource uses a fixed bearer token.
type StaticTokenSource struct {
	TokenValue string
}

func (s *StaticTokenSource) Token(ctx context.Context) (string, error) {
	if strings.TrimSpace(s.TokenValue) == "" {
		return "", fmt.Errorf("token is empty")
	}
	return s.TokenValue, nil
}

// RandomTokenSource picks one of several bearer tokens per call.
// Choices are independent; there is no affinity between requests.
type RandomTokenSource struct {
	tokens []string
	intn   func(n int) int
}

// NewRandomTokenSource drops blank tokens. A nil intn uses math/rand/v2.
func NewRandomTokenSource(tokens []string, intn func(n int) int) *RandomTokenSource {
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			kept = append(kept, t)
		}
	}
	if intn == nil {
		intn = rand.IntN
	}
	return &RandomTokenSource{tokens: kept, intn: intn}
}

func (s *RandomTokenSource) Token(ctx context.Context) (string, error) {
	if len(s.tokens) == 0 {
		return "", fmt.Errorf("no bearer tokens configured")
	}
	return s.tokens[s.intn(len(s.tokens))], nil
}

// Len returns the number of usable tokens.
func (s *RandomTokenSource) Len() int {
	return len(s.tokens)
}
