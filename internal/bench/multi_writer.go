package bench

import "ccabench/internal/series"

// MultiWriter fans sample rows and progress notifications out to several writers.
type MultiWriter struct {
	samples  []SampleWriter
	progress []ProgressWriter
}

// NewMultiWriter creates a new MultiWriter. Nil entries are skipped.
func NewMultiWriter(sws []SampleWriter, pws []ProgressWriter) *MultiWriter {
	mw := &MultiWriter{}
	for _, w := range sws {
		if w != nil {
			mw.samples = append(mw.samples, w)
		}
	}
	for _, w := range pws {
		if w != nil {
			mw.progress = append(mw.progress, w)
		}
	}
	return mw
}

// WriteSamples sends rows to every sample writer, stopping at the first error.
func (mw *MultiWriter) WriteSamples(rows []SampleRow) error {
	for _, w := range mw.samples {
		if err := w.WriteSamples(rows); err != nil {
			return err
		}
	}
	return nil
}

// TrialStarted implements ProgressWriter.
func (mw *MultiWriter) TrialStarted(cca string, trial, total int) {
	for _, w := range mw.progress {
		w.TrialStarted(cca, trial, total)
	}
}

// TrialFinished implements ProgressWriter.
func (mw *MultiWriter) TrialFinished(cca string, trial, intervals int) {
	for _, w := range mw.progress {
		w.TrialFinished(cca, trial, intervals)
	}
}

// ResultReady implements ProgressWriter.
func (mw *MultiWriter) ResultReady(res series.Result) {
	for _, w := range mw.progress {
		w.ResultReady(res)
	}
}
