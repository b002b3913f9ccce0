package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ccabench/internal/bench"
	"ccabench/internal/chart"
	"ccabench/internal/metric"
)

var (
	replayInput  string
	replayYUnit  string
	replayUseSum bool
	replayOutput string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Re-average a recorded samples log",
	Long:  "replay rebuilds trials from a JSONL samples log written by run --log-file and plots them with any metric.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		sel, err := metric.NewSelector(replayYUnit, replayUseSum)
		if err != nil {
			return err
		}
		results, err := bench.ReplayFile(replayInput, sel)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			return chart.ErrNoResults
		}

		sw := bench.NewStdoutWriter(term.IsTerminal(int(os.Stdout.Fd())))
		for _, r := range results {
			sw.ResultReady(r)
		}
		sw.Summary(sel.String())

		if err := chart.Render(results, chart.Options{Trials: results[0].Trials, Unit: replayYUnit, Path: replayOutput}); err != nil {
			return err
		}
		newLogger().Info("chart written", "path", replayOutput, "input", replayInput)
		return nil
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to samples log file")
	replayCmd.Flags().StringVar(&replayYUnit, "y-unit", "bytes", "Metric to plot ("+fmt.Sprint(metric.Names())+")")
	replayCmd.Flags().BoolVar(&replayUseSum, "use-sum", true, "Use the aggregate sum view instead of the first stream")
	replayCmd.Flags().StringVarP(&replayOutput, "output", "o", "cca_comparison.png", "Chart output path (.png, .svg or .pdf)")
	replayCmd.MarkFlagRequired("input")
}
