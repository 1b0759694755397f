package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"opsdeck/internal/config"
	"opsdeck/internal/corrector"
	"opsdeck/internal/logger"
	"opsdeck/internal/middleware"
	"opsdeck/internal/ui"
)

// fixCmd corrects a command without running it
var fixCmd = &cobra.Command{
	Use:   "fix [command...]",
	Short: "Correct typos in a Docker command",
	Long: `Print the corrected form of a command line and what was changed.
Nothing is executed.`,
	Example: `  opsdeck fix dcoker ps -a
  opsdeck fix "docker pul nginx" --copy
  opsdeck fix --file commands.txt --workers 8
  opsdeck fix --list`,
	RunE: middleware.RunE(runFix),
}

var (
	fixCopy    bool
	fixFile    string
	fixWorkers int
	fixList    bool
)

// fixExamples are shown by --list
var fixExamples = []string{
	"dcoker ps -a",
	"ps -a",
	"docker pul nginx",
	"dockr imagse",
	"docker stpo web",
	"docker xyz --flag",
	`docker run "unterminated`,
}

func init() {
	rootCmd.AddCommand(fixCmd)

	fixCmd.Flags().BoolVarP(&fixCopy, "copy", "c", false, "copy corrected command to clipboard")
	fixCmd.Flags().StringVarP(&fixFile, "file", "f", "", "correct every line of a file (- for stdin)")
	fixCmd.Flags().IntVarP(&fixWorkers, "workers", "w", 0, "number of concurrent workers for --file (0 = auto)")
	fixCmd.Flags().BoolVarP(&fixList, "list", "l", false, "show example corrections")
}

func runFix(cmd *cobra.Command, args []string) error {
	c, err := newCorrector(config.Get())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch {
	case fixList:
		printExamples(out, c)
		return nil
	case fixFile != "":
		return fixLines(cmd, c, fixFile)
	case len(args) == 0:
		return fmt.Errorf("nothing to fix: pass a command or --file")
	}

	res := c.Correct(commandLine(args))
	printCorrection(out, res)

	if fixCopy && res.Command != "" {
		if err := clipboard.WriteAll(res.Command); err != nil {
			logger.With("fix").Warn("clipboard unavailable", "error", err)
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Fprintln(out, ui.Muted("copied to clipboard"))
	}
	return nil
}

func printCorrection(w io.Writer, res corrector.Result) {
	if res.Command != "" {
		fmt.Fprintln(w, ui.Command(res.Command))
	}
	if res.Note != "" {
		fmt.Fprintln(w, ui.Note(res.Note))
	}
}

func printExamples(w io.Writer, c *corrector.Corrector) {
	fmt.Fprintln(w, ui.Title("Example corrections"))
	for _, in := range fixExamples {
		res := c.Correct(in)
		fmt.Fprintf(w, "  %-28s → %s\n", in, ui.Command(res.Command))
		for _, ch := range res.Changes {
			fmt.Fprintln(w, ui.Mutedf("      %s %s → %s (%.2f)", ch.Kind, ch.From, ch.To, ch.Score))
		}
		if !res.Changed() && res.Note != "" {
			fmt.Fprintln(w, ui.Mutedf("      %s", res.Note))
		}
	}
}

// fixLines corrects a file line by line, keeping blank lines and comments as they are
func fixLines(cmd *cobra.Command, c *corrector.Corrector, path string) error {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	results, err := c.CorrectAll(cmd.Context(), lines, fixWorkers)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	changed := 0
	for i, res := range results {
		line := lines[i]
		if trimmed := strings.TrimSpace(line); trimmed == "" || strings.HasPrefix(trimmed, "#") {
			fmt.Fprintln(out, line)
			continue
		}
		fmt.Fprintln(out, res.Command)
		if res.Changed() {
			changed++
			fmt.Fprintln(cmd.ErrOrStderr(), ui.Mutedf("line %d: %s", i+1, res.Note))
		}
	}
	logger.With("fix").Debug("batch corrected", "lines", len(lines), "changed", changed)
	return nil
}
