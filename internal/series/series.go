// Package series extracts metric time series from iperf3 trials and averages them
// across trials.
package series

import (
	"errors"
	"fmt"

	"ccabench/internal/iperf"
	"ccabench/internal/metric"
)

var (
	// ErrEmptyTrial is returned when a trial has no intervals.
	ErrEmptyTrial = errors.New("trial has no intervals")
	// ErrNoTrials is returned when aggregating an empty trial set.
	ErrNoTrials = errors.New("no trials to aggregate")
	// ErrMismatchedLength matches every *MismatchedLengthError.
	ErrMismatchedLength = errors.New("trial lengths differ")
)

// Pair is an index-aligned sequence of interval start offsets and metric values.
type Pair struct {
	Time   []float64 `json:"time"`
	Values []float64 `json:"values"`
}

// Len returns the number of points.
func (p Pair) Len() int { return len(p.Time) }

// Result is the averaged series of one CCA.
type Result struct {
	CCA    string `json:"cca"`
	Trials int    `json:"trials"`
	Pair
}

// MismatchedLengthError reports a trial whose length differs from the first one.
type MismatchedLengthError struct {
	Trial int // zero-based position of the offending trial
	Want  int
	Got   int
}

func (e *MismatchedLengthError) Error() string {
	return fmt.Sprintf("trial %d has %d intervals, want %d", e.Trial, e.Got, e.Want)
}

// Is makes errors.Is(err, ErrMismatchedLength) hold.
func (e *MismatchedLengthError) Is(target error) bool {
	return target == ErrMismatchedLength
}

// Extract reads the selected metric from every interval of trial, preserving order.
// The selector is checked before any interval is read.
func Extract(trial iperf.Trial, sel metric.Selector) (Pair, error) {
	if err := sel.Validate(); err != nil {
		return Pair{}, err
	}
	if len(trial) == 0 {
		return Pair{}, ErrEmptyTrial
	}
	p := Pair{
		Time:   make([]float64, len(trial)),
		Values: make([]float64, len(trial)),
	}
	for i, iv := range trial {
		s := iv.Sum
		if !sel.UseAggregate() {
			var ok bool
			if s, ok = iv.FirstStream(); !ok {
				return Pair{}, fmt.Errorf("interval %d: %w", i, iperf.ErrNoStreams)
			}
		}
		v, _ := s.Value(sel.Kind())
		p.Time[i] = s.Start
		p.Values[i] = v
	}
	return p, nil
}
