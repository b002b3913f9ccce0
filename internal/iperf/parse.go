package iperf

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrNoStreams is returned when first-stream data is needed but an interval has none.
	ErrNoStreams = errors.New("interval has no streams")
	// ErrNoIntervals is returned for reports without interval records.
	ErrNoIntervals = errors.New("report has no intervals")
	// ErrReport wraps the error message iperf3 embeds in a failed run's report.
	ErrReport = errors.New("iperf3 reported an error")
)

// Parse decodes an iperf3 JSON report from r.
func Parse(r io.Reader) (*Report, error) {
	var rep Report
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return nil, fmt.Errorf("decode iperf3 report: %w", err)
	}
	if rep.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrReport, rep.Error)
	}
	if len(rep.Intervals) == 0 {
		return nil, ErrNoIntervals
	}
	return &rep, nil
}

// ParseFile opens and parses one trial artifact.
func ParseFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rep, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rep, nil
}
