// Package iperf models the subset of the iperf3 JSON report (-J) consumed by ccabench.
package iperf

import "ccabench/internal/metric"

// Sample is one reporting-interval snapshot, either summed across streams or for
// a single stream. rtt, rttvar and pmtu are only reported per stream.
type Sample struct {
	Socket        int     `json:"socket,omitempty"`
	Start         float64 `json:"start"`
	End           float64 `json:"end"`
	Seconds       float64 `json:"seconds"`
	Bytes         float64 `json:"bytes"`
	BitsPerSecond float64 `json:"bits_per_second"`
	Retransmits   float64 `json:"retransmits"`
	SndCwnd       float64 `json:"snd_cwnd"`
	RTT           float64 `json:"rtt,omitempty"`
	RTTVar        float64 `json:"rttvar,omitempty"`
	PMTU          float64 `json:"pmtu,omitempty"`
	Omitted       bool    `json:"omitted"`
}

// Value returns the field named by k.
func (s Sample) Value(k metric.Kind) (float64, bool) {
	switch k {
	case metric.KindSndCwnd:
		return s.SndCwnd, true
	case metric.KindBytes:
		return s.Bytes, true
	case metric.KindBitsPerSecond:
		return s.BitsPerSecond, true
	case metric.KindRetransmits:
		return s.Retransmits, true
	case metric.KindRTT:
		return s.RTT, true
	}
	return 0, false
}

// Interval is one reporting interval of a trial.
type Interval struct {
	Streams []Sample `json:"streams"`
	Sum     Sample   `json:"sum"`
}

// FirstStream returns the first per-stream sample.
func (iv Interval) FirstStream() (Sample, bool) {
	if len(iv.Streams) == 0 {
		return Sample{}, false
	}
	return iv.Streams[0], true
}

// Trial is the ordered interval list of one (CCA, trial index) run.
type Trial []Interval

// Report is the top-level iperf3 JSON document.
type Report struct {
	Start     TestStart  `json:"start"`
	Intervals []Interval `json:"intervals"`
	Error     string     `json:"error,omitempty"`
}

// TestStart holds the parts of the "start" block used for logging.
type TestStart struct {
	Version   string    `json:"version"`
	TestStart TestSetup `json:"test_start"`
}

// TestSetup describes the parameters iperf3 ran with.
type TestSetup struct {
	Protocol   string  `json:"protocol"`
	NumStreams int     `json:"num_streams"`
	Duration   float64 `json:"duration"`
}

// Trial returns the report's intervals as a Trial.
func (r *Report) Trial() Trial {
	return Trial(r.Intervals)
}
