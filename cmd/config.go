package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"opsdeck/internal/config"
	"opsdeck/internal/middleware"
	"opsdeck/internal/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the configuration after defaults, the config file and OPSDECK_*
environment overrides are applied. The SSH password is masked.`,
	Example: `  opsdeck config
  opsdeck config --path
  OPSDECK_SSH_HOST=10.0.0.5 opsdeck config`,
	RunE: middleware.RunE(runConfig),
}

var configPath bool

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().BoolVarP(&configPath, "path", "p", false, "print the config file location")
}

func runConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if configPath {
		fmt.Fprintln(out, config.Path())
		return nil
	}

	data, err := yaml.Marshal(config.Get().Redacted())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	fmt.Fprintln(out, ui.Mutedf("# %s", config.Path()))
	_, err = out.Write(data)
	return err
}
