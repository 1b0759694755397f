// Package cmd provides CLI commands for opsdeck
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"opsdeck/internal/config"
	"opsdeck/internal/logger"
	"opsdeck/internal/ui"
)

var (
	// Version is set during build
	Version = "0.1.0"
	// BuildTime is set during build
	BuildTime = "unknown"
	// Commit is set during build
	Commit = "unknown"

	cfgFile string
	debug   bool

	// rootCmd represents the base command
	rootCmd = &cobra.Command{
		Use:   "opsdeck",
		Short: "Docker control deck for a remote host",
		Long: `Run curated or free-form Docker commands on a remote Linux host over SSH.
Typos in the program name or sub-command are corrected before anything runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initialize(cmd.Context())
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling")
		cancel()
	}()

	rootCmd.SetContext(ctx)
	rootCmd.Version = Version
	applyHelpRecursively(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.status())
		}
		logger.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, ui.Redf("Error: %v", err))
		os.Exit(1)
	}
}

// exitError carries a failed remote exit status out to the process
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("remote command exited with status %d", e.code)
}

func (e *exitError) status() int {
	if e.code <= 0 || e.code > 255 {
		return 1
	}
	return e.code
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/opsdeck/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// initialize loads configuration, then starts the logger from it
func initialize(ctx context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if debug {
		cfg.App.Debug = true
		cfg.Logging.Level = "debug"
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.File = cfg.Logging.File
	logCfg.MaxSize = cfg.Logging.MaxSize
	logCfg.MaxBackups = cfg.Logging.MaxBackups
	if err := logger.Initialize(logCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.With("init").Debug("starting opsdeck",
		"version", Version,
		"commit", Commit,
		"config_file", config.Path(),
	)
	return nil
}

func applyHelpRecursively(c *cobra.Command) {
	setupHelp(c)
	for _, sub := range c.Commands() {
		applyHelpRecursively(sub)
	}
}

func setupHelp(cmd *cobra.Command) {
	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		if c.Parent() == nil {
			banner := lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(ui.ColorPurple).
				Padding(0, 2).
				MarginBottom(1)
			fmt.Printf("\n%s\n", banner.Render("opsdeck "+Version))
			fmt.Println(c.Long)
		} else {
			fmt.Printf("\n%s\n", ui.Title(fmt.Sprintf("%s - %s", c.CommandPath(), c.Short)))
			if c.Long != "" && c.Long != c.Short {
				fmt.Printf("%s\n", ui.Muted(c.Long))
			}
		}
		fmt.Println()

		fmt.Println(ui.Title("Usage:"))
		if c.Runnable() {
			fmt.Printf("  %s\n", ui.Command(c.UseLine()))
		}
		if c.HasAvailableSubCommands() {
			fmt.Printf("  %s %s\n", ui.Command(c.CommandPath()), ui.Green("[command]"))
		}
		fmt.Println()

		if c.Example != "" {
			fmt.Println(ui.Title("Examples:"))
			fmt.Printf("%s\n\n", ui.Yellow(c.Example))
		}

		if c.HasAvailableSubCommands() {
			fmt.Println(ui.Title("Commands:"))
			for _, sub := range c.Commands() {
				if !sub.IsAvailableCommand() {
					continue
				}
				pad := max(20-len(sub.Name()), 2)
				fmt.Printf("  %s%s%s\n", ui.Green(sub.Name()), strings.Repeat(" ", pad), ui.Muted(sub.Short))
			}
			fmt.Println()
		}

		printFlags := func(title string, flags *pflag.FlagSet) {
			if !flags.HasAvailableFlags() {
				return
			}
			fmt.Println(ui.Title(title))
			flags.VisitAll(func(f *pflag.Flag) {
				if f.Hidden {
					return
				}
				name := fmt.Sprintf("      --%s", f.Name)
				if f.Shorthand != "" {
					name = fmt.Sprintf("  -%s, --%s", f.Shorthand, f.Name)
				}
				if t := f.Value.Type(); t != "bool" {
					name += " " + t
				}
				pad := max(28-len(name), 2)
				fmt.Printf("%s%s%s\n", ui.Yellow(name), strings.Repeat(" ", pad), ui.Muted(f.Usage))
			})
			fmt.Println()
		}
		printFlags("Flags:", c.LocalFlags())
		printFlags("Global Flags:", c.InheritedFlags())

		if c.HasAvailableSubCommands() {
			fmt.Println(ui.Mutedf("Use \"%s [command] --help\" for more information about a command.", c.CommandPath()))
		}
	})
}
