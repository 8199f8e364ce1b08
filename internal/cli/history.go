package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iconidentify/xresolve/internal/history"
)

var (
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent resolutions",
	Args:  cobra.NoArgs,
	RunE:  historyAction,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of entries to show")
	historyCmd.Flags().StringVar(&historyFormat, "format", "terminal", "output format: terminal, json")
	rootCmd.AddCommand(historyCmd)
}

func historyAction(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cliLogger())
	if err != nil {
		return err
	}
	defer a.Close()

	if a.history == nil {
		return fmt.Errorf("history is disabled (set HISTORY_PATH)")
	}

	entries, err := a.history.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}

	switch historyFormat {
	case "json":
		if entries == nil {
			entries = []history.Entry{}
		}
		return printJSON(cmd.OutOrStdout(), entries)
	case "terminal", "":
		printHistory(cmd.OutOrStdout(), entries)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want terminal or json)", historyFormat)
	}
}

func printHistory(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No resolutions recorded yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RESOLVED\tTWEET\tAUTHOR\tMEDIA\tTHREAD")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t@%s\t%d\t%d\n",
			e.ResolvedAt.Local().Format(time.DateTime), e.TweetID, e.Author, e.MediaCount, e.ThreadCount)
	}
	tw.Flush()
}
