package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iconidentify/xresolve/internal/domain"
	"github.com/iconidentify/xresolve/internal/retry"
	"github.com/iconidentify/xresolve/pkg/twitter"
)

var (
	resolveRetries  int
	resolveMaxDelay time.Duration
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <url>",
	Short: "Resolve a post link into a media bundle",
	Args:  cobra.ExactArgs(1),
	RunE:  resolveAction,
}

func init() {
	resolveCmd.Flags().IntVar(&resolveRetries, "retries", 1, "attempts when rate limited")
	resolveCmd.Flags().DurationVar(&resolveMaxDelay, "max-delay", time.Minute, "longest wait between attempts")
	rootCmd.AddCommand(resolveCmd)
}

func resolveAction(cmd *cobra.Command, args []string) error {
	logger := cliLogger()

	a, err := loadApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = resolveRetries
	cfg.MaxDelay = resolveMaxDelay

	ctx := cmd.Context()
	bundle, err := retry.Do(ctx, cfg, func(ctx context.Context) (*domain.Bundle, error) {
		return a.resolver.Resolve(ctx, args[0])
	}, isRateLimited, rateLimitWait)
	if err != nil {
		if errors.Is(err, domain.ErrRateLimited) {
			return fmt.Errorf("no result available now, retry later: %w", err)
		}
		return err
	}

	a.record(ctx, bundle)
	return printJSON(cmd.OutOrStdout(), bundle)
}

func isRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}

func rateLimitWait(err error) time.Duration {
	if rl, ok := twitter.AsRateLimit(err); ok {
		return rl.RetryAfter(time.Now())
	}
	return 0
}
