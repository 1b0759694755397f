package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"opsdeck/internal/catalog"
	"opsdeck/internal/config"
	"opsdeck/internal/middleware"
	"opsdeck/internal/ui"
)

// catalogCmd lists the command catalog
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the command catalog",
	Example: `  opsdeck catalog
  opsdeck catalog --search prune
  opsdeck catalog --validate my-catalog.yaml
  opsdeck catalog --export > my-catalog.yaml`,
	RunE: middleware.RunE(runCatalog),
}

var (
	catalogSearch   string
	catalogValidate string
	catalogExport   bool
)

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().StringVarP(&catalogSearch, "search", "s", "", "fuzzy filter by label")
	catalogCmd.Flags().StringVar(&catalogValidate, "validate", "", "validate a catalog file and exit")
	catalogCmd.Flags().BoolVar(&catalogExport, "export", false, "print the active catalog as YAML")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if catalogValidate != "" {
		c, err := catalog.Load(catalogValidate)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Green(fmt.Sprintf("✓ %s: %d entries for %s", catalogValidate, len(c.Entries), c.Program)))
		return nil
	}

	c, err := loadCatalog(config.Get())
	if err != nil {
		return err
	}

	if catalogExport {
		data, err := c.Marshal()
		if err != nil {
			return fmt.Errorf("failed to encode catalog: %w", err)
		}
		_, err = out.Write(data)
		return err
	}

	if catalogSearch != "" {
		matches := c.Search(catalogSearch)
		if len(matches) == 0 {
			fmt.Fprintln(out, ui.Muted("no matching entries"))
			return nil
		}
		for _, e := range matches {
			printEntry(out, e)
		}
		return nil
	}

	for _, g := range c.Groups() {
		fmt.Fprintln(out, ui.Title(groupTitle.String(g)))
		for _, e := range c.InGroup(g) {
			printEntry(out, e)
		}
		fmt.Fprintln(out)
	}
	return nil
}

func printEntry(w io.Writer, e catalog.Entry) {
	fmt.Fprintf(w, "  %-36s %s\n", e.Label, ui.Muted(e.Template))
}
