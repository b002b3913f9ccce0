package bench

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"ccabench/internal/logging"
)

// DefaultSamplesTable is used when no table name is configured.
const DefaultSamplesTable = "cca_samples"

const defaultGreptimePort = 4001

type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes raw sample rows to GreptimeDB via the ingester client.
type GreptimeDBWriter struct {
	client greptimeClient
	table  string
	logger *slog.Logger
}

// NewGreptimeDBWriter connects to endpoint ("host" or "host:port", gRPC port 4001
// by default).
func NewGreptimeDBWriter(endpoint, database, tableName string, logger *slog.Logger) (*GreptimeDBWriter, error) {
	host, port, err := splitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	if database == "" {
		database = "public"
	}
	if tableName == "" {
		tableName = DefaultSamplesTable
	}
	if logger == nil {
		logger = logging.Discard()
	}
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptimedb client: %w", err)
	}
	return &GreptimeDBWriter{client: client, table: tableName, logger: logger}, nil
}

func splitEndpoint(endpoint string) (string, int, error) {
	if endpoint == "" {
		return "", 0, fmt.Errorf("greptimedb endpoint is empty")
	}
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		return endpoint, defaultGreptimePort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid greptimedb port %q", portStr)
	}
	return host, port, nil
}

// WriteSamples inserts one trial's rows as a single table write.
func (w *GreptimeDBWriter) WriteSamples(rows []SampleRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := w.samplesTable(rows)
	if err != nil {
		return err
	}
	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		w.logger.Error("greptimedb write failed", "table", w.table, "err", err)
		return err
	}
	w.logger.Debug("greptimedb rows written", "table", w.table, "rows", len(rows))
	return nil
}

func (w *GreptimeDBWriter) samplesTable(rows []SampleRow) (*table.Table, error) {
	tbl, err := table.New(w.table)
	if err != nil {
		return nil, err
	}
	tags := []string{"run_id", "cca"}
	for _, c := range tags {
		if err := tbl.AddTagColumn(c, types.STRING); err != nil {
			return nil, err
		}
	}
	if err := tbl.AddTagColumn("trial", types.INT64); err != nil {
		return nil, err
	}
	if err := tbl.AddFieldColumn("interval_index", types.INT64); err != nil {
		return nil, err
	}
	fields := []string{"start", "bytes", "bits_per_second", "retransmits", "snd_cwnd", "rtt"}
	for _, c := range fields {
		if err := tbl.AddFieldColumn(c, types.FLOAT64); err != nil {
			return nil, err
		}
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return nil, err
	}

	for _, r := range rows {
		var cwnd, rtt float64
		if r.Stream != nil {
			cwnd, rtt = r.Stream.SndCwnd, r.Stream.RTT
		}
		err := tbl.AddRow(
			r.RunID, r.CCA, int64(r.Trial),
			int64(r.Index),
			r.Sum.Start, r.Sum.Bytes, r.Sum.BitsPerSecond, r.Sum.Retransmits, cwnd, rtt,
			r.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", r.Index, err)
		}
	}
	return tbl, nil
}
