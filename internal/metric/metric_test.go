package metric

import (
	"errors"
	"testing"
)

func TestNewSelector(t *testing.T) {
	cases := []struct {
		name    string
		metric  string
		sum     bool
		wantErr error
	}{
		{name: "bytes sum", metric: "bytes", sum: true},
		{name: "bytes stream", metric: "bytes", sum: false},
		{name: "rtt stream", metric: "rtt", sum: false},
		{name: "snd_cwnd sum", metric: "snd_cwnd", sum: true},
		{name: "rtt sum", metric: "rtt", sum: true, wantErr: ErrIncompatibleAggregation},
		{name: "unknown", metric: "jitter_ms", sum: false, wantErr: ErrInvalidMetric},
		{name: "unknown sum", metric: "", sum: true, wantErr: ErrInvalidMetric},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sel, err := NewSelector(tc.metric, tc.sum)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				if sel != (Selector{}) {
					t.Fatalf("expected zero selector on error, got %v", sel)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSelector: %v", err)
			}
			if sel.Kind().String() != tc.metric || sel.UseAggregate() != tc.sum {
				t.Fatalf("unexpected selector %v", sel)
			}
		})
	}
}

func TestZeroSelectorInvalid(t *testing.T) {
	if err := (Selector{}).Validate(); !errors.Is(err, ErrInvalidMetric) {
		t.Fatalf("expected ErrInvalidMetric, got %v", err)
	}
}

func TestNamesRoundTrip(t *testing.T) {
	for _, n := range Names() {
		k, err := ParseKind(n)
		if err != nil {
			t.Fatalf("ParseKind(%s): %v", n, err)
		}
		if k.String() != n {
			t.Errorf("ParseKind(%s)=%s", n, k)
		}
	}
	if len(Names()) != 5 {
		t.Fatalf("expected 5 metrics, got %d", len(Names()))
	}
}
