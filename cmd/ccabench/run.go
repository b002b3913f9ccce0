package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ccabench/internal/bench"
	"ccabench/internal/chart"
	"ccabench/internal/config"
	"ccabench/internal/logging"
	"ccabench/internal/prompt"
	"ccabench/internal/trial"
)

var (
	runConfigPath string
	runSchemaPath string
	runYes        bool
	runLogFile    string
	runPrintOnly  bool
	runJSON       bool
	runTUI        bool
	runOutput     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the benchmark batch and plot the averaged results",
	Long: `run executes every configured trial for every CCA in order, averages the chosen
metric across trials and writes the comparison chart. Trial artifacts are deleted
once parsed, so the command asks for confirmation first unless --yes is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if runTUI && !runYes {
			return fmt.Errorf("--tui requires --yes")
		}
		if runTUI && runJSON {
			return fmt.Errorf("--tui and --json are mutually exclusive")
		}
		logger := newLogger()

		cfg, err := loadConfig(runConfigPath, runSchemaPath)
		if err != nil {
			return err
		}
		if runOutput != "" {
			cfg.Output = runOutput
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		confirm, err := newConfirmer(runYes)
		if err != nil {
			return err
		}

		w, err := newWriters(cfg, writerOptions{printOnly: runPrintOnly, json: runJSON, tui: runTUI, logFile: runLogFile}, logger)
		if err != nil {
			return err
		}
		defer w.close()

		runner, err := bench.NewRunner(cfg, newGenerator(cfg), confirm, w.options()...)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logging.NewContext(ctx, logger)

		results, err := runner.Run(ctx)
		w.close()
		if errors.Is(err, bench.ErrDeclined) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborting")
			return nil
		}
		if err != nil {
			return err
		}
		if w.summary != nil {
			w.summary.Summary(runner.Selector().String())
		}

		if err := chart.Render(results, chart.Options{Trials: cfg.Trials, Unit: cfg.YUnit, Path: cfg.Output}); err != nil {
			return err
		}
		logger.Info("chart written", "path", cfg.Output, "run_id", runner.RunID())
		return nil
	},
}

// newConfirmer asks on the terminal unless --yes was given.
var newConfirmer = func(yes bool) (prompt.Confirmer, error) {
	if yes {
		return prompt.Always{}, nil
	}
	p, err := prompt.New()
	if err != nil {
		return nil, err
	}
	return p, nil
}

// loadConfig returns the built-in defaults when no config file is given.
func loadConfig(path, schema string) (config.BenchConfig, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path, schema)
}

func newGenerator(cfg config.BenchConfig) trial.Generator {
	if cfg.Generator == config.GeneratorScript {
		return &trial.ScriptGenerator{Script: cfg.ScriptPath, Sudo: cfg.UseSudo, Dir: cfg.ArtifactDir}
	}
	return &trial.IperfGenerator{Path: cfg.Iperf3Path}
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Path to benchmark configuration YAML (built-in defaults when empty)")
	runCmd.Flags().StringVar(&runSchemaPath, "schema", "", "Path to CUE schema file (embedded schema when empty)")
	runCmd.Flags().BoolVarP(&runYes, "yes", "y", false, "Skip the confirmation prompt")
	runCmd.Flags().StringVar(&runLogFile, "log-file", "", "Path to export raw interval samples (JSONL)")
	runCmd.Flags().BoolVar(&runPrintOnly, "print-only", false, "Do not write samples to GreptimeDB even if GREPTIMEDB_ENDPOINT is set")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print samples and results as JSON lines")
	runCmd.Flags().BoolVar(&runTUI, "tui", false, "Show progress in an interactive terminal UI")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Chart output path (.png, .svg or .pdf), overrides the config")
}
