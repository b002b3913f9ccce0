package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"ccabench/internal/logging"
	"ccabench/internal/series"
)

// JSONStdoutWriter prints sample rows and averaged results as JSON lines.
type JSONStdoutWriter struct {
	out    io.Writer
	logger *slog.Logger
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter(logger *slog.Logger) *JSONStdoutWriter {
	if logger == nil {
		logger = logging.Discard()
	}
	return &JSONStdoutWriter{out: os.Stdout, logger: logger}
}

// WriteSamples outputs each sample row in JSON format.
func (w *JSONStdoutWriter) WriteSamples(rows []SampleRow) error {
	for _, r := range rows {
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		fmt.Fprintln(w.out, string(data))
	}
	return nil
}

// TrialStarted implements ProgressWriter.
func (w *JSONStdoutWriter) TrialStarted(cca string, trial, total int) {}

// TrialFinished implements ProgressWriter.
func (w *JSONStdoutWriter) TrialFinished(cca string, trial, intervals int) {}

// ResultReady outputs the averaged result in JSON format. A result that cannot be
// encoded (NaN or Inf values) is logged and skipped.
func (w *JSONStdoutWriter) ResultReady(res series.Result) {
	data, err := json.Marshal(res)
	if err != nil {
		if w.logger != nil {
			w.logger.Error("cannot encode result", "cca", res.CCA, "err", err)
		}
		return
	}
	fmt.Fprintln(w.out, string(data))
}
