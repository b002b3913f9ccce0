// Package bench runs the benchmark batch: every configured CCA, every trial, one
// averaged series per CCA.
package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"ccabench/internal/config"
	"ccabench/internal/iperf"
	"ccabench/internal/logging"
	"ccabench/internal/metric"
	"ccabench/internal/prompt"
	"ccabench/internal/series"
	"ccabench/internal/trial"
)

// ErrDeclined is returned when the operator refuses the confirmation prompt.
var ErrDeclined = errors.New("confirmation declined")

// Runner orchestrates trial generation, parsing, extraction and averaging.
type Runner struct {
	cfg      config.BenchConfig
	sel      metric.Selector
	gen      trial.Generator
	confirm  prompt.Confirmer
	samples  SampleWriter
	progress ProgressWriter
	logger   *slog.Logger
	runID    string
	now      func() time.Time
}

// Option customises a Runner.
type Option func(*Runner)

// WithSampleWriter sets the destination for raw interval rows.
func WithSampleWriter(w SampleWriter) Option {
	return func(r *Runner) { r.samples = w }
}

// WithProgressWriter sets the destination for progress notifications.
func WithProgressWriter(w ProgressWriter) Option {
	return func(r *Runner) { r.progress = w }
}

// WithLogger sets the logger. Without it Run logs to the logger carried by its
// context.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(r *Runner) { r.runID = id }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner validates cfg and returns a Runner. Configuration errors surface here,
// before anything runs.
func NewRunner(cfg config.BenchConfig, gen trial.Generator, confirm prompt.Confirmer, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sel, err := cfg.Selector()
	if err != nil {
		return nil, err
	}
	if gen == nil {
		return nil, errors.New("bench: nil trial generator")
	}
	if confirm == nil {
		return nil, errors.New("bench: nil confirmer")
	}
	cfg.CCAs = append([]string(nil), cfg.CCAs...)
	r := &Runner{
		cfg:     cfg,
		sel:     sel,
		gen:     gen,
		confirm: confirm,
		runID:   uuid.NewString(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// RunID returns the identifier attached to every emitted sample row.
func (r *Runner) RunID() string { return r.runID }

// Selector returns the metric selector results are computed for.
func (r *Runner) Selector() metric.Selector { return r.sel }

// Question is the confirmation text shown before the batch starts.
func (r *Runner) Question() string {
	return fmt.Sprintf("This will run %d trials against %s:%d and delete every <cca>_<n>.json artifact in %q. Do you want to continue?",
		r.cfg.Runs(), r.cfg.TargetServer, r.cfg.TargetPort, r.cfg.ArtifactDir)
}

// Run executes the whole batch and returns one result per CCA in configured order.
// The operator is asked once, before any process is started or file removed.
func (r *Runner) Run(ctx context.Context) ([]series.Result, error) {
	ok, err := r.confirm.Confirm(r.Question())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDeclined
	}
	if r.logger == nil {
		r.logger = logging.FromContext(ctx)
	}

	r.logger.Info("running benchmark",
		"run_id", r.runID,
		"ccas", r.cfg.CCAs,
		"target", fmt.Sprintf("%s:%d", r.cfg.TargetServer, r.cfg.TargetPort),
		"total_seconds", r.cfg.TotalSeconds,
		"report_interval", r.cfg.ReportInterval,
		"trials", r.cfg.Trials,
		"metric", r.sel.String())

	results := make([]series.Result, 0, len(r.cfg.CCAs))
	for _, cca := range r.cfg.CCAs {
		res, err := r.runCCA(ctx, cca)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
		if r.progress != nil {
			r.progress.ResultReady(res)
		}
	}
	return results, nil
}

func (r *Runner) runCCA(ctx context.Context, cca string) (series.Result, error) {
	var acc series.Accumulator
	for i := 1; i <= r.cfg.Trials; i++ {
		if r.progress != nil {
			r.progress.TrialStarted(cca, i, r.cfg.Trials)
		}
		tr, started, err := r.runTrial(ctx, cca, i)
		if err != nil {
			return series.Result{}, err
		}
		if r.samples != nil {
			if err := r.samples.WriteSamples(sampleRows(r.runID, cca, i, started, tr)); err != nil {
				return series.Result{}, fmt.Errorf("write samples for %s trial %d: %w", cca, i, err)
			}
		}
		pair, err := series.Extract(tr, r.sel)
		if err != nil {
			return series.Result{}, fmt.Errorf("%s trial %d: %w", cca, i, err)
		}
		if err := acc.Add(pair); err != nil {
			return series.Result{}, fmt.Errorf("%s trial %d: %w", cca, i, err)
		}
		if r.progress != nil {
			r.progress.TrialFinished(cca, i, len(tr))
		}
		r.logger.Debug("trial done", "cca", cca, "trial", i, "intervals", len(tr))
	}
	mean, err := acc.Mean()
	if err != nil {
		return series.Result{}, fmt.Errorf("%s: %w", cca, err)
	}
	return series.Result{CCA: cca, Trials: acc.Len(), Pair: mean}, nil
}

// runTrial generates, parses and deletes one artifact.
func (r *Runner) runTrial(ctx context.Context, cca string, idx int) (iperf.Trial, time.Time, error) {
	path := trial.ArtifactPath(r.cfg.ArtifactDir, cca, idx)
	if err := removeStale(path, r.logger); err != nil {
		return nil, time.Time{}, err
	}

	started := r.now()
	spec := trial.Spec{
		Target:   r.cfg.TargetServer,
		Port:     r.cfg.TargetPort,
		Duration: r.cfg.Duration(),
		Interval: r.cfg.Interval(),
		CCA:      cca,
		Index:    idx,
		Output:   path,
	}
	if err := r.gen.Generate(ctx, spec); err != nil {
		return nil, time.Time{}, err
	}

	rep, err := iperf.ParseFile(path)
	if err != nil {
		r.logger.Error("artifact kept for inspection", "path", path, "err", err)
		return nil, time.Time{}, err
	}
	r.logger.Debug("iperf3 report",
		"cca", cca,
		"trial", idx,
		"version", rep.Start.Version,
		"protocol", rep.Start.TestStart.Protocol,
		"streams", rep.Start.TestStart.NumStreams)
	if err := os.Remove(path); err != nil {
		return nil, time.Time{}, fmt.Errorf("delete artifact: %w", err)
	}
	return rep.Trial(), started, nil
}

// removeStale deletes a leftover artifact; iperf3 appends to an existing logfile.
func removeStale(path string, logger *slog.Logger) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	logger.Warn("removing stale artifact", "path", path)
	return os.Remove(path)
}
