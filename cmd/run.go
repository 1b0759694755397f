package cmd

import (
	"github.com/spf13/cobra"

	"opsdeck/internal/config"
	"opsdeck/internal/middleware"
)

// runCmd executes a free-form command on the remote host
var runCmd = &cobra.Command{
	Use:   "run [command...]",
	Short: "Correct and run a command on the remote host",
	Long: `Correct a Docker command line, then execute it on the configured host.
With --raw the line runs as typed, which also covers arbitrary Linux commands.`,
	Example: `  opsdeck run dcoker ps -a
  opsdeck run "docker pul nginx"
  opsdeck run --raw "df -h | head"
  opsdeck run --dry-run ps -a`,
	Args: cobra.MinimumNArgs(1),
	RunE: middleware.RunE(runRun),
}

var (
	runRaw    bool
	runDryRun bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runRaw, "raw", false, "run the command as typed, without correction")
	runCmd.Flags().BoolVarP(&runDryRun, "dry-run", "n", false, "show the corrected command without running it")
}

func runRun(cmd *cobra.Command, args []string) error {
	r, err := newRunner(config.Get())
	if err != nil {
		return err
	}
	defer r.Close()
	r.out = cmd.OutOrStdout()

	res, err := r.run(cmd.Context(), commandLine(args), runOptions{Raw: runRaw, DryRun: runDryRun})
	if err != nil {
		return err
	}
	if res != nil && !res.Success() {
		return &exitError{code: res.ExitCode}
	}
	return nil
}
