package bench

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"

	"ccabench/internal/iperf"
	"ccabench/internal/logging"
	"ccabench/internal/series"
)

func testRows() []SampleRow {
	ts := time.Unix(0, 0).UTC()
	st := iperf.Sample{Start: 0, Bytes: 50, SndCwnd: 14480, RTT: 2100}
	return []SampleRow{
		{RunID: "r1", CCA: "cubic", Trial: 2, Index: 0, Sum: iperf.Sample{Start: 0, Bytes: 100, BitsPerSecond: 8000}, Stream: &st, Timestamp: ts},
		{RunID: "r1", CCA: "cubic", Trial: 2, Index: 1, Sum: iperf.Sample{Start: 0.1, Bytes: 200}, Timestamp: ts.Add(100 * time.Millisecond)},
	}
}

func TestFileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.jsonl")
	fw, err := NewFileWriter(path)
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	if err := fw.WriteSamples(testRows()); err != nil {
		t.Fatalf("write: %v", err)
	}
	fw.Close()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := ReadSamples(f)
	if err != nil {
		t.Fatalf("ReadSamples: %v", err)
	}
	if len(rows) != 2 || rows[0].Stream == nil || rows[0].Stream.RTT != 2100 || rows[1].Stream != nil {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if rows[1].Sum.Bytes != 200 || rows[1].Trial != 2 {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
}

func TestStdoutWriter(t *testing.T) {
	var buf bytes.Buffer
	w := newStdoutWriter(&buf, false)
	w.TrialStarted("cubic", 1, 3)
	w.TrialFinished("cubic", 1, 300)
	w.ResultReady(series.Result{CCA: "cubic", Trials: 3, Pair: series.Pair{Time: []float64{0, 1}, Values: []float64{2, 4}}})
	w.Summary("bytes")
	out := buf.String()
	for _, want := range []string{"[cubic] trial 1/3 running", "intervals=300", "averaged over 3 trials", "Results (bytes)", "3.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("colour codes written with color disabled")
	}
}

func TestJSONStdoutWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &JSONStdoutWriter{out: &buf}
	if err := w.WriteSamples(testRows()[:1]); err != nil {
		t.Fatalf("WriteSamples: %v", err)
	}
	w.ResultReady(series.Result{CCA: "bbr", Trials: 1, Pair: series.Pair{Time: []float64{0}, Values: []float64{1}}})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var res series.Result
	if err := json.Unmarshal([]byte(lines[1]), &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.CCA != "bbr" || len(res.Values) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestJSONStdoutWriterSkipsUnencodable(t *testing.T) {
	var out, logs bytes.Buffer
	w := &JSONStdoutWriter{out: &out, logger: logging.NewWithWriter(&logs, "info")}
	w.ResultReady(series.Result{CCA: "cubic", Trials: 1, Pair: series.Pair{Time: []float64{0}, Values: []float64{math.NaN()}}})
	if out.Len() != 0 {
		t.Fatalf("expected nothing on stdout, got %q", out.String())
	}
	if !strings.Contains(logs.String(), "cannot encode result") {
		t.Fatalf("expected an error log, got %q", logs.String())
	}
}

type failingWriter struct{ err error }

func (f failingWriter) WriteSamples([]SampleRow) error { return f.err }

func TestMultiWriter(t *testing.T) {
	a, b := &collectWriter{}, &collectWriter{}
	mw := NewMultiWriter([]SampleWriter{a, nil, b}, []ProgressWriter{a, b})
	if err := mw.WriteSamples(testRows()); err != nil {
		t.Fatalf("WriteSamples: %v", err)
	}
	mw.TrialStarted("cubic", 1, 1)
	mw.TrialFinished("cubic", 1, 2)
	mw.ResultReady(series.Result{CCA: "cubic"})
	for _, c := range []*collectWriter{a, b} {
		if len(c.rows) != 2 || len(c.started) != 1 || c.finished != 1 || len(c.results) != 1 {
			t.Fatalf("writer not fanned out: %+v", c)
		}
	}
	boom := errors.New("boom")
	mw = NewMultiWriter([]SampleWriter{failingWriter{boom}, a}, nil)
	if err := mw.WriteSamples(testRows()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

type mockGreptimeClient struct {
	table *table.Table
}

func (m *mockGreptimeClient) Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error) {
	if len(tables) > 0 {
		m.table = tables[0]
	}
	return &gpb.GreptimeResponse{}, nil
}

func TestGreptimeWriterSamples(t *testing.T) {
	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, table: DefaultSamplesTable, logger: logging.Discard()}
	if err := w.WriteSamples(testRows()); err != nil {
		t.Fatalf("WriteSamples: %v", err)
	}
	if m.table == nil {
		t.Fatalf("expected table to be captured")
	}
	rows := m.table.GetRows()
	if len(rows.Schema) != 11 {
		t.Fatalf("unexpected schema length: %d", len(rows.Schema))
	}
	if len(rows.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows.Rows))
	}
	if got := rows.Rows[0].Values[1].GetStringValue(); got != "cubic" {
		t.Fatalf("cca = %s, want cubic", got)
	}
	if got := rows.Rows[0].Values[2].GetI64Value(); got != 2 {
		t.Fatalf("trial = %d, want 2", got)
	}
	if got := rows.Rows[0].Values[9].GetF64Value(); got != 2100 {
		t.Fatalf("rtt = %f, want 2100", got)
	}
	if got := rows.Rows[1].Values[9].GetF64Value(); got != 0 {
		t.Fatalf("rtt without stream = %f, want 0", got)
	}

	m.table = nil
	if err := w.WriteSamples(nil); err != nil || m.table != nil {
		t.Fatalf("empty write should be a no-op")
	}
}

func TestSplitEndpoint(t *testing.T) {
	cases := []struct {
		in   string
		host string
		port int
		err  bool
	}{
		{in: "greptime.local", host: "greptime.local", port: 4001},
		{in: "10.0.0.5:5001", host: "10.0.0.5", port: 5001},
		{in: "db:http", err: true},
		{in: "", err: true},
	}
	for _, tc := range cases {
		host, port, err := splitEndpoint(tc.in)
		if tc.err {
			if err == nil {
				t.Errorf("splitEndpoint(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil || host != tc.host || port != tc.port {
			t.Errorf("splitEndpoint(%q) = %s, %d, %v", tc.in, host, port, err)
		}
	}
}

func TestFileWriterLeavesExistingLogUntilWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.jsonl")
	old := []byte(`{"cca":"cubic"}` + "\n")
	if err := os.WriteFile(path, old, 0o644); err != nil {
		t.Fatal(err)
	}
	fw, err := NewFileWriter(path)
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil || !bytes.Equal(got, old) {
		t.Fatalf("existing log changed without a write: %q (err=%v)", got, err)
	}
}
