package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/viper"
	"golang.org/x/term"

	"ccabench/internal/bench"
	"ccabench/internal/config"
)

type writerOptions struct {
	printOnly bool
	json      bool
	tui       bool
	logFile   string
}

// writers holds the sample and progress sinks chosen for one run.
type writers struct {
	samples  []bench.SampleWriter
	progress []bench.ProgressWriter
	summary  *bench.StdoutWriter
	closers  []io.Closer
}

// newWriters sets up sample and progress writers based on flags and env vars.
// GreptimeDB is used when GREPTIMEDB_ENDPOINT is set and print-only is off.
func newWriters(cfg config.BenchConfig, opts writerOptions, logger *slog.Logger) (*writers, error) {
	w := &writers{}

	switch {
	case opts.tui:
		tw := bench.NewTUIWriter(cfg)
		w.progress = append(w.progress, tw)
		w.samples = append(w.samples, tw)
		w.closers = append(w.closers, tw)
	case opts.json:
		jw := bench.NewJSONStdoutWriter(logger)
		w.progress = append(w.progress, jw)
		w.samples = append(w.samples, jw)
	default:
		w.summary = bench.NewStdoutWriter(term.IsTerminal(int(os.Stdout.Fd())))
		w.progress = append(w.progress, w.summary)
	}

	endpoint := viper.GetString("greptimedb_endpoint")
	if !opts.printOnly && endpoint != "" {
		gw, err := bench.NewGreptimeDBWriter(endpoint, viper.GetString("greptimedb_database"), viper.GetString("greptimedb_table"), logger)
		if err != nil {
			w.close()
			return nil, err
		}
		w.samples = append(w.samples, gw)
	} else {
		logger.Debug("print-only mode, samples are not stored in GreptimeDB")
	}

	if opts.logFile != "" {
		fw, err := bench.NewFileWriter(opts.logFile)
		if err != nil {
			w.close()
			return nil, err
		}
		w.samples = append(w.samples, fw)
		w.closers = append(w.closers, fw)
	}
	return w, nil
}

// options returns the runner options that attach the writers.
func (w *writers) options() []bench.Option {
	mw := bench.NewMultiWriter(w.samples, w.progress)
	return []bench.Option{bench.WithSampleWriter(mw), bench.WithProgressWriter(mw)}
}

// close releases writer resources; safe to call more than once.
func (w *writers) close() {
	for _, c := range w.closers {
		c.Close()
	}
	w.closers = nil
}
