package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"opsdeck/internal/catalog"
	"opsdeck/internal/middleware"
	"opsdeck/internal/ui"
)

// cheatsheetCmd prints the Linux command reference
var cheatsheetCmd = &cobra.Command{
	Use:     "cheatsheet",
	Aliases: []string{"cheat"},
	Short:   "Show common Red Hat Linux commands",
	Long: `Print a grouped reference of everyday Red Hat Linux commands. Run any of
them on the remote host with "opsdeck run --raw".`,
	Example: `  opsdeck cheatsheet
  opsdeck cheatsheet --group network
  opsdeck cheatsheet --search systemctl`,
	RunE: middleware.RunE(runCheatsheet),
}

var (
	cheatGroup  string
	cheatSearch string
)

func init() {
	rootCmd.AddCommand(cheatsheetCmd)

	cheatsheetCmd.Flags().StringVarP(&cheatGroup, "group", "g", "", "only groups whose title contains this")
	cheatsheetCmd.Flags().StringVarP(&cheatSearch, "search", "s", "", "fuzzy filter commands")
}

func runCheatsheet(cmd *cobra.Command, args []string) error {
	sections := catalog.FilterSections(catalog.Cheatsheet(), cheatGroup, cheatSearch)
	if len(sections) == 0 {
		return fmt.Errorf("no cheatsheet entries match")
	}
	printSections(cmd.OutOrStdout(), sections)
	return nil
}

func printSections(w io.Writer, sections []catalog.Section) {
	for i, s := range sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, ui.Title(s.Title))
		for _, c := range s.Commands {
			fmt.Fprintf(w, "  %s\n", ui.Command(c))
		}
	}
}
