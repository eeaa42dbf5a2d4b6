package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sample-analyzer/configs"
	"github.com/RyanBlaney/sample-analyzer/internal/app"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create, check and show configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a configuration file with the defaults",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join(configs.DefaultConfigDir(), configs.AppName+".yaml")
		if len(args) == 1 {
			path = args[0]
		}
		if err := app.GenerateExampleConfig(path); err != nil {
			return err
		}
		printSuccess("Configuration written to: %s", path)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Check a configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.ValidateConfigFile(args[0])
		if err != nil {
			return err
		}
		printSuccess("Configuration is valid: %s", args[0])
		printInfo("Peaks: %d, workers: %d", cfg.Analysis.NumPeaks, cfg.Library.Workers)
		printInfo("Cache: %t (%s)", cfg.Cache.Enabled, cfg.Cache.Path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer application.Close()

		format := application.Config().OutputFormat
		if !isStructuredOutput(format) {
			format = "yaml"
		}
		data, err := app.NewFormatter(format).Format(application.Config(), true)
		if err != nil {
			return fmt.Errorf("failed to format configuration: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configValidateCmd, configShowCmd)
}
