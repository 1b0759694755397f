package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"opsdeck/internal/config"
	"opsdeck/internal/db"
	"opsdeck/internal/health"
	"opsdeck/internal/middleware"
	"opsdeck/internal/ui"
)

// checkCmd verifies that everything a run needs is in place
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check configuration, history database and the remote host",
	Long: `Run readiness checks: the catalog loads, the history database opens, the
SSH host accepts a connection and has the configured program installed.`,
	RunE: middleware.RunE(runCheck),
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	checker := newChecker(cfg)

	report := checker.Run(cmd.Context())
	out := cmd.OutOrStdout()
	for _, r := range report.Results {
		if r.OK() {
			fmt.Fprintf(out, "%s %-10s %s\n", ui.Green("✓"), r.Name, ui.Muted(r.Detail))
		} else {
			fmt.Fprintf(out, "%s %-10s %s\n", ui.Red("✗"), r.Name, ui.Red(r.Err.Error()))
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, ui.Title("Status: "+report.Status.String()))
	if report.Status == health.StatusUnhealthy {
		return fmt.Errorf("critical checks failed")
	}
	return nil
}

func newChecker(cfg *config.Config) *health.Checker {
	c := health.NewChecker()

	c.Register(health.Check{
		Name:     "catalog",
		Critical: true,
		Run: func(ctx context.Context) (string, error) {
			cat, err := loadCatalog(cfg)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d entries for %s", len(cat.Entries), cat.Program), nil
		},
	})

	c.Register(health.Check{
		Name: "history",
		Run: func(ctx context.Context) (string, error) {
			store, err := db.NewStorage(cfg.Database.Path)
			if err != nil {
				return "", err
			}
			defer store.Close()
			stats, err := store.Stats(ctx, 0)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s (%d runs)", store.Path(), stats.TotalRuns), nil
		},
	})

	c.Register(health.Check{
		Name:     "ssh",
		Critical: true,
		Timeout:  cfg.SSH.Timeout + cfg.SSH.Timeout/2,
		Run: func(ctx context.Context) (string, error) {
			exec, err := dialer(cfg)(ctx)
			if err != nil {
				return "", err
			}
			defer exec.Close()

			res, err := exec.Run(ctx, cfg.Corrector.Program+" --version")
			if err != nil {
				return "", err
			}
			if !res.Success() {
				return "", fmt.Errorf("%s not available on %s: exit %d", cfg.Corrector.Program, cfg.SSH.Host, res.ExitCode)
			}
			return strings.TrimSpace(res.Stdout), nil
		},
	})

	return c
}
