package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ccabench/internal/bench"
	"ccabench/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "ccabench",
	Short: "Congestion-control benchmark toolkit",
	Long: `ccabench runs repeated iperf3 trials for several congestion-control algorithms,
averages the per-interval measurements across trials and plots the comparison.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(dashboardCmd)
}

func initConfig() {
	viper.SetEnvPrefix("CCABENCH")
	viper.AutomaticEnv()

	viper.BindEnv("greptimedb_endpoint", "GREPTIMEDB_ENDPOINT")
	viper.BindEnv("greptimedb_database", "GREPTIMEDB_DATABASE")
	viper.BindEnv("greptimedb_table", "GREPTIMEDB_TABLE")

	viper.SetDefault("log_level", "info")
	viper.SetDefault("greptimedb_database", "public")
	viper.SetDefault("greptimedb_table", bench.DefaultSamplesTable)
}

func newLogger() *slog.Logger {
	return logging.New(viper.GetString("log_level"))
}
