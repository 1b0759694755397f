package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"opsdeck/internal/catalog"
	"opsdeck/internal/config"
	"opsdeck/internal/logger"
	"opsdeck/internal/middleware"
	"opsdeck/internal/remote"
	"opsdeck/internal/ui"
)

// menuCmd is the interactive catalog menu
var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick a catalog command and run it",
	Long: `Browse the command catalog by group, fill in an argument where one is
needed and run the result on the remote host. Pick "Custom command" to type a
free-form line, which goes through correction first.`,
	Example: `  opsdeck menu
  opsdeck menu --pick "Pull Image (name)" --arg nginx:latest
  opsdeck menu --pick "Disk Usage" --dry-run`,
	RunE: middleware.RunE(runMenu),
}

var (
	menuPick   string
	menuArg    string
	menuDryRun bool
)

const (
	menuCustom = "\x00custom"
	menuQuit   = "\x00quit"
)

var groupTitle = cases.Title(language.English)

func init() {
	rootCmd.AddCommand(menuCmd)

	menuCmd.Flags().StringVarP(&menuPick, "pick", "p", "", "run the catalog entry with this label")
	menuCmd.Flags().StringVarP(&menuArg, "arg", "a", "", "argument for --pick")
	menuCmd.Flags().BoolVarP(&menuDryRun, "dry-run", "n", false, "show the command without running it")
}

func runMenu(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	r, err := newRunner(cfg)
	if err != nil {
		return err
	}
	defer r.Close()
	r.out = cmd.OutOrStdout()

	opts := runOptions{DryRun: menuDryRun}
	if menuPick != "" {
		_, err := runPick(cmd.Context(), r, cat, menuPick, menuArg, opts)
		return err
	}
	return menuLoop(cmd.Context(), cat, r, opts)
}

// renderPick resolves a label non-interactively
func renderPick(cat *catalog.Catalog, label, arg string) (string, error) {
	entry, ok := cat.Find(label)
	if !ok {
		if suggestions := cat.Suggest(label, 3); len(suggestions) > 0 {
			return "", fmt.Errorf("no catalog entry %q, did you mean: %s", label, strings.Join(suggestions, ", "))
		}
		return "", fmt.Errorf("no catalog entry %q", label)
	}
	return entry.Render(arg)
}

// runPick renders a catalog entry and runs it without correction
func runPick(ctx context.Context, r *runner, cat *catalog.Catalog, label, arg string, opts runOptions) (*remote.Result, error) {
	command, err := renderPick(cat, label, arg)
	if err != nil {
		return nil, err
	}
	opts.Raw = true
	return r.run(ctx, command, opts)
}

// menuLoop keeps offering the menu until the user quits
func menuLoop(ctx context.Context, cat *catalog.Catalog, r *runner, opts runOptions) error {
	log := logger.With("menu")
	for {
		command, custom, err := pickCommand(ctx, cat)
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		if err != nil {
			return err
		}
		if command == menuQuit {
			return nil
		}

		// catalog entries are curated and run as rendered
		o := opts
		o.Raw = !custom
		if _, err := r.run(ctx, command, o); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("command failed", "error", err)
			fmt.Fprintln(r.out, ui.Redf("%v", err))
		}
		fmt.Fprintln(r.out)
	}
}

// pickCommand returns the chosen command and whether it was typed free-form
func pickCommand(ctx context.Context, cat *catalog.Catalog) (string, bool, error) {
	var group string
	groupOpts := make([]huh.Option[string], 0, len(cat.Groups())+2)
	for _, g := range cat.Groups() {
		groupOpts = append(groupOpts, huh.NewOption(groupTitle.String(g), g))
	}
	groupOpts = append(groupOpts,
		huh.NewOption("Custom command", menuCustom),
		huh.NewOption("Quit", menuQuit),
	)

	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(cat.Program + " commands").
			Options(groupOpts...).
			Value(&group),
	)).RunWithContext(ctx)
	if err != nil {
		return "", false, err
	}

	switch group {
	case menuQuit:
		return menuQuit, false, nil
	case menuCustom:
		var line string
		err := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Command").
				Placeholder(cat.Program+" ps -a").
				Value(&line),
		)).RunWithContext(ctx)
		return line, true, err
	}

	var label string
	entryOpts := make([]huh.Option[string], 0)
	for _, e := range cat.InGroup(group) {
		entryOpts = append(entryOpts, huh.NewOption(e.Label, e.Label))
	}
	err = huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(groupTitle.String(group)).
			Options(entryOpts...).
			Value(&label),
	)).RunWithContext(ctx)
	if err != nil {
		return "", false, err
	}

	entry, _ := cat.Find(label)
	var arg string
	if entry.RequiresArgument {
		err = huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title(entry.Label).
				Description(entry.Template).
				Value(&arg).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return catalog.ErrMissingArgument
					}
					return nil
				}),
		)).RunWithContext(ctx)
		if err != nil {
			return "", false, err
		}
	}
	command, err := entry.Render(arg)
	return command, false, err
}
