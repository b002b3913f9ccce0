package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	validateConfigPath string
	validateSchemaPath string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a benchmark configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(validateConfigPath, validateSchemaPath)
		if err != nil {
			return err
		}
		sel, err := cfg.Selector()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "config OK: %d CCAs x %d trials against %s:%d, metric %s\n",
			len(cfg.CCAs), cfg.Trials, cfg.TargetServer, cfg.TargetPort, sel)
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateConfigPath, "config", "", "Path to benchmark configuration YAML")
	validateCmd.Flags().StringVar(&validateSchemaPath, "schema", "", "Path to CUE schema file (embedded schema when empty)")
	validateCmd.MarkFlagRequired("config")
}
