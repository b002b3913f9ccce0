package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"ccabench/internal/config"
	"ccabench/internal/prompt"
)

type answer bool

func (a answer) Confirm(string) (bool, error) { return bool(a), nil }

// benchFixture writes a config whose iperf3 binary only records that it ran.
func benchFixture(t *testing.T) (cfgPath, ranPath string) {
	t.Helper()
	dir := t.TempDir()
	ranPath = filepath.Join(dir, "iperf3.ran")
	fake := filepath.Join(dir, "iperf3")
	script := fmt.Sprintf("#!/bin/sh\necho run >> %q\nexit 1\n", ranPath)
	if err := os.WriteFile(fake, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	cfgPath = filepath.Join(dir, "bench.yaml")
	body := fmt.Sprintf("ccas: [cubic]\ntrials: 1\ntotal_seconds: 1\nartifact_dir: %q\niperf3_path: %q\noutput: %q\n",
		dir, fake, filepath.Join(dir, "chart.png"))
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath, ranPath
}

func resetRunFlags(t *testing.T) {
	t.Helper()
	runConfigPath, runSchemaPath, runLogFile, runOutput = "", "", "", ""
	runYes, runPrintOnly, runJSON, runTUI = false, false, false, false
	viper.Set("greptimedb_endpoint", "")
	orig := newConfirmer
	t.Cleanup(func() { newConfirmer = orig })
}

func executeRun(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"run"}, args...))
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRunDeclineKeepsSamplesLog(t *testing.T) {
	resetRunFlags(t)
	newConfirmer = func(bool) (prompt.Confirmer, error) { return answer(false), nil }
	cfgPath, ranPath := benchFixture(t)

	logPath := filepath.Join(t.TempDir(), "samples.jsonl")
	old := []byte(`{"run_id":"r0","cca":"cubic","trial":1,"index":0}` + "\n")
	if err := os.WriteFile(logPath, old, 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := executeRun(t, "--config", cfgPath, "--print-only", "--log-file", logPath)
	if err != nil {
		t.Fatalf("declined run should exit cleanly, got %v", err)
	}
	if !strings.Contains(out, "Aborting") {
		t.Fatalf("expected Aborting, got %q", out)
	}
	got, err := os.ReadFile(logPath)
	if err != nil || !bytes.Equal(got, old) {
		t.Fatalf("samples log changed by a declined run: %q (err=%v)", got, err)
	}
	if _, err := os.Stat(ranPath); !os.IsNotExist(err) {
		t.Fatalf("iperf3 ran after a decline")
	}
}

func TestRunRejectsOutputFormatBeforeTrials(t *testing.T) {
	resetRunFlags(t)
	cfgPath, ranPath := benchFixture(t)

	_, err := executeRun(t, "--config", cfgPath, "--yes", "--print-only", "-o", filepath.Join(t.TempDir(), "chart.jpg"))
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := os.Stat(ranPath); !os.IsNotExist(err) {
		t.Fatalf("iperf3 ran despite an invalid output path")
	}
}
