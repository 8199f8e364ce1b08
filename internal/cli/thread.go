package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/iconidentify/xresolve/internal/domain"
)

var threadUser uint64

var threadCmd = &cobra.Command{
	Use:   "thread <conversation-id> <position>",
	Short: "Look up a post by its position in a self-reply thread",
	Args:  cobra.ExactArgs(2),
	RunE:  threadAction,
}

func init() {
	threadCmd.Flags().Uint64Var(&threadUser, "user", 0, "author id of the conversation (required)")
	_ = threadCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(threadCmd)
}

type threadResult struct {
	ConversationID string `json:"conversation_id"`
	Position       int    `json:"position"`
	Count          uint   `json:"count"`
	TweetID        string `json:"tweet_id"`
}

func threadAction(cmd *cobra.Command, args []string) error {
	convID, position, err := parseThreadArgs(args)
	if err != nil {
		return err
	}
	if threadUser == 0 {
		return fmt.Errorf("--user must be a positive id")
	}

	a, err := loadApp(cliLogger())
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.threads.Enabled() {
		return fmt.Errorf("thread support is disabled")
	}

	ctx := cmd.Context()
	id, ok := a.threads.Thread(ctx, convID, position, threadUser)
	if !ok {
		return fmt.Errorf("conversation %d position %d: %w", convID, position, domain.ErrThreadNotFound)
	}

	return printJSON(cmd.OutOrStdout(), threadResult{
		ConversationID: strconv.FormatUint(convID, 10),
		Position:       position,
		Count:          a.threads.Count(ctx, convID, threadUser),
		TweetID:        id.String(),
	})
}

func parseThreadArgs(args []string) (uint64, int, error) {
	convID, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil || convID == 0 {
		return 0, 0, fmt.Errorf("invalid conversation id %q", args[0])
	}
	position, err := strconv.Atoi(args[1])
	if err != nil || position < 1 {
		return 0, 0, fmt.Errorf("position must be a positive integer, got %q", args[1])
	}
	return convID, position, nil
}
