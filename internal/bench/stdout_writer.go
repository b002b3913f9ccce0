// StdoutWriter prints human-friendly, colorized progress to STDOUT.
package bench

import (
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"ccabench/internal/series"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

var ccaPalette = []string{colorCyan, colorMagenta, colorYellow, colorBlue, colorGreen, colorRed}

// StdoutWriter prints trial progress and a per-CCA summary table.
type StdoutWriter struct {
	out       io.Writer
	color     bool
	now       func() time.Time
	started   time.Time
	ccaColors map[string]string
	colorIdx  int
	results   []series.Result
}

// NewStdoutWriter creates a StdoutWriter writing to os.Stdout.
func NewStdoutWriter(color bool) *StdoutWriter {
	return newStdoutWriter(os.Stdout, color)
}

func newStdoutWriter(out io.Writer, color bool) *StdoutWriter {
	return &StdoutWriter{out: out, color: color, now: time.Now, ccaColors: make(map[string]string)}
}

func (w *StdoutWriter) paint(c, s string) string {
	if !w.color {
		return s
	}
	return c + s + colorReset
}

func (w *StdoutWriter) ccaColor(cca string) string {
	if c, ok := w.ccaColors[cca]; ok {
		return c
	}
	c := ccaPalette[w.colorIdx%len(ccaPalette)]
	w.ccaColors[cca] = c
	w.colorIdx++
	return c
}

// TrialStarted implements ProgressWriter.
func (w *StdoutWriter) TrialStarted(cca string, trial, total int) {
	w.started = w.now()
	fmt.Fprintf(w.out, "%s %s trial %d/%d running\n",
		w.paint(colorGray, w.started.Format(time.TimeOnly)),
		w.paint(w.ccaColor(cca), "["+cca+"]"), trial, total)
}

// TrialFinished implements ProgressWriter.
func (w *StdoutWriter) TrialFinished(cca string, trial, intervals int) {
	took := w.now().Sub(w.started).Round(time.Millisecond)
	fmt.Fprintf(w.out, "%s %s trial %d %s intervals=%d took=%s\n",
		w.paint(colorGray, w.now().Format(time.TimeOnly)),
		w.paint(w.ccaColor(cca), "["+cca+"]"), trial,
		w.paint(colorGreen, "done"), intervals, took)
}

// ResultReady implements ProgressWriter.
func (w *StdoutWriter) ResultReady(res series.Result) {
	w.results = append(w.results, res)
	fmt.Fprintf(w.out, "%s averaged over %d trials (%d points)\n",
		w.paint(w.ccaColor(res.CCA), "["+res.CCA+"]"), res.Trials, res.Len())
}

// Summary prints a table of every result received so far.
func (w *StdoutWriter) Summary(unit string) {
	if len(w.results) == 0 {
		return
	}
	fmt.Fprintln(w.out, "\nResults ("+unit+"):")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "CCA\tTrials\tPoints\tMean\tMin\tMax\n")
	for _, r := range w.results {
		st := describe(r.Values)
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t%.2f\t%.2f\n", r.CCA, r.Trials, r.Len(), st.mean, st.min, st.max)
	}
	tw.Flush()
}

type stats struct{ mean, min, max float64 }

func describe(vals []float64) stats {
	if len(vals) == 0 {
		return stats{}
	}
	st := stats{min: math.Inf(1), max: math.Inf(-1)}
	var sum float64
	for _, v := range vals {
		sum += v
		st.min = math.Min(st.min, v)
		st.max = math.Max(st.max, v)
	}
	st.mean = sum / float64(len(vals))
	return st
}
