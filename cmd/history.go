package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"opsdeck/internal/config"
	"opsdeck/internal/db"
	"opsdeck/internal/logger"
	"opsdeck/internal/middleware"
	"opsdeck/internal/ui"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View remote run history",
	Long:  `List, search and summarise the commands executed on remote hosts.`,
	Example: `  opsdeck history
  opsdeck history --limit 50
  opsdeck history --search "pull"
  opsdeck history --stats
  opsdeck history --clear`,
	RunE: middleware.RunE(runHistory),
}

var (
	historyLimit  int
	historySearch string
	historyStats  bool
	historyClear  bool
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "number of entries to show")
	historyCmd.Flags().StringVarP(&historySearch, "search", "s", "", "fuzzy search term")
	historyCmd.Flags().BoolVar(&historyStats, "stats", false, "show statistics")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "clear history")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logger.With("history")
	out := cmd.OutOrStdout()

	storage, err := db.NewStorage(config.Get().Database.Path)
	if err != nil {
		log.Error("failed to initialize storage", "error", err)
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer storage.Close()

	switch {
	case historyClear:
		if err := storage.ClearRuns(ctx); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Fprintln(out, "History cleared")
		return nil
	case historyStats:
		return showHistoryStats(ctx, out, storage)
	}

	runs, err := storage.SearchRuns(ctx, historySearch, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, ui.Muted("no runs recorded"))
		return nil
	}
	for _, r := range runs {
		printRun(out, r)
	}
	return nil
}

func printRun(w io.Writer, r db.RunRecord) {
	mark := ui.Green("✓")
	if r.Failed() {
		mark = ui.Red("✗")
	}
	fmt.Fprintf(w, "%s %s %s %s\n",
		mark,
		ui.Muted(r.At.Local().Format(time.DateTime)),
		ui.Command(r.Command),
		ui.Mutedf("[%s exit %d]", r.Host, r.ExitCode),
	)
	if r.Raw != "" && r.Raw != r.Command {
		fmt.Fprintln(w, ui.Mutedf("    typed: %s", r.Raw))
	}
}

func showHistoryStats(ctx context.Context, w io.Writer, storage *db.Storage) error {
	stats, err := storage.Stats(ctx, 10)
	if err != nil {
		return fmt.Errorf("failed to compute stats: %w", err)
	}

	fmt.Fprintln(w, ui.Title("Run statistics"))
	fmt.Fprintf(w, "  Total runs:      %d\n", stats.TotalRuns)
	fmt.Fprintf(w, "  Failed runs:     %d\n", stats.Failures)
	fmt.Fprintf(w, "  Unique commands: %d\n", stats.UniqueCommands)

	if len(stats.TopCommands) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, ui.Title("Top commands"))
		for i, c := range stats.TopCommands {
			fmt.Fprintf(w, "  %2d. %-40s %d runs, %d failed\n", i+1, c.Command, c.Count, c.Failures)
		}
	}
	return nil
}
