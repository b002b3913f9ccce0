// Package metric defines the closed set of iperf3 interval metrics ccabench can plot.
package metric

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies one plottable interval metric.
type Kind int

// Recognised metric kinds. The zero value is not a valid kind.
const (
	KindUnknown Kind = iota
	KindSndCwnd
	KindBytes
	KindBitsPerSecond
	KindRetransmits
	KindRTT
)

var (
	// ErrInvalidMetric is returned for metric names outside the recognised set.
	ErrInvalidMetric = errors.New("invalid metric")
	// ErrIncompatibleAggregation is returned when rtt is combined with the summed view.
	ErrIncompatibleAggregation = errors.New("rtt cannot be summed across streams")
)

var kindNames = map[Kind]string{
	KindSndCwnd:       "snd_cwnd",
	KindBytes:         "bytes",
	KindBitsPerSecond: "bits_per_second",
	KindRetransmits:   "retransmits",
	KindRTT:           "rtt",
}

// Kinds returns every recognised kind in display order.
func Kinds() []Kind {
	return []Kind{KindSndCwnd, KindBytes, KindBitsPerSecond, KindRetransmits, KindRTT}
}

// Names returns the recognised metric names in display order.
func Names() []string {
	kinds := Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return names
}

// ParseKind maps a metric name such as "bits_per_second" to its Kind.
func ParseKind(name string) (Kind, error) {
	n := strings.TrimSpace(name)
	for k, s := range kindNames {
		if s == n {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("%w: %q (valid: %s)", ErrInvalidMetric, name, strings.Join(Names(), ", "))
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is one of the recognised kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Summable reports whether the metric has a meaningful sum across streams.
func (k Kind) Summable() bool {
	return k != KindRTT
}

// Selector picks a metric and the view it is read from: the sum across streams
// or the first stream.
type Selector struct {
	kind         Kind
	useAggregate bool
}

// NewSelector builds a validated Selector from a metric name.
func NewSelector(name string, useAggregate bool) (Selector, error) {
	k, err := ParseKind(name)
	if err != nil {
		return Selector{}, err
	}
	return NewSelectorKind(k, useAggregate)
}

// NewSelectorKind builds a validated Selector from a Kind.
func NewSelectorKind(k Kind, useAggregate bool) (Selector, error) {
	s := Selector{kind: k, useAggregate: useAggregate}
	if err := s.Validate(); err != nil {
		return Selector{}, err
	}
	return s, nil
}

// Validate checks the selector; the zero Selector is rejected.
func (s Selector) Validate() error {
	if !s.kind.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidMetric, s.kind)
	}
	if s.useAggregate && !s.kind.Summable() {
		return fmt.Errorf("%w: %s", ErrIncompatibleAggregation, s.kind)
	}
	return nil
}

// Kind returns the selected metric.
func (s Selector) Kind() Kind { return s.kind }

// UseAggregate reports whether the summed view is read.
func (s Selector) UseAggregate() bool { return s.useAggregate }

func (s Selector) String() string {
	view := "stream[0]"
	if s.useAggregate {
		view = "sum"
	}
	return fmt.Sprintf("%s(%s)", s.kind, view)
}
