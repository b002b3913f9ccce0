package bench

import (
	"time"

	"ccabench/internal/iperf"
	"ccabench/internal/series"
)

// SampleRow is one raw interval of one trial, as handed to sample writers.
type SampleRow struct {
	RunID     string        `json:"run_id"`
	CCA       string        `json:"cca"`
	Trial     int           `json:"trial"`
	Index     int           `json:"index"`
	Sum       iperf.Sample  `json:"sum"`
	Stream    *iperf.Sample `json:"stream,omitempty"`
	Timestamp time.Time     `json:"ts"`
}

// Interval rebuilds the interval record the row was taken from.
func (r SampleRow) Interval() iperf.Interval {
	iv := iperf.Interval{Sum: r.Sum}
	if r.Stream != nil {
		iv.Streams = []iperf.Sample{*r.Stream}
	}
	return iv
}

// SampleWriter receives the raw intervals of every finished trial.
type SampleWriter interface {
	WriteSamples([]SampleRow) error
}

// ProgressWriter is told about trial lifecycle and each CCA's averaged result.
type ProgressWriter interface {
	TrialStarted(cca string, trial, total int)
	TrialFinished(cca string, trial, intervals int)
	ResultReady(series.Result)
}

func sampleRows(runID, cca string, trialIdx int, started time.Time, tr iperf.Trial) []SampleRow {
	rows := make([]SampleRow, len(tr))
	for i, iv := range tr {
		row := SampleRow{
			RunID:     runID,
			CCA:       cca,
			Trial:     trialIdx,
			Index:     i,
			Sum:       iv.Sum,
			Timestamp: started.Add(time.Duration(iv.Sum.Start * float64(time.Second))),
		}
		if st, ok := iv.FirstStream(); ok {
			row.Stream = &st
		}
		rows[i] = row
	}
	return rows
}
