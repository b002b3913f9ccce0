// Package trial runs the external measurement tool that produces one iperf3 JSON
// artifact per benchmark trial.
package trial

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoArtifact is returned when the tool exits cleanly without writing its report.
var ErrNoArtifact = errors.New("trial produced no artifact")

// Spec describes one trial to generate.
type Spec struct {
	Target   string
	Port     int
	Duration time.Duration
	Interval time.Duration
	CCA      string
	Index    int    // 1-based trial number
	Output   string // artifact path the report must end up at
}

// Generator produces the artifact described by a Spec. Generate blocks until the
// external process has exited.
type Generator interface {
	Generate(ctx context.Context, spec Spec) error
}

// ArtifactPath returns the conventional artifact location <dir>/<cca>_<index>.json.
func ArtifactPath(dir, cca string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%d.json", cca, index))
}

// runCommand executes cmd, folding the tail of its stderr into any error.
func runCommand(cmd *exec.Cmd, stdout io.Writer) error {
	var stderr bytes.Buffer
	if stdout == nil {
		stdout = io.Discard
	}
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > 512 {
			msg = "..." + msg[len(msg)-512:]
		}
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", filepath.Base(cmd.Path), err, msg)
		}
		return fmt.Errorf("%s: %w", filepath.Base(cmd.Path), err)
	}
	return nil
}

func checkArtifact(spec Spec) error {
	info, err := os.Stat(spec.Output)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNoArtifact, spec.Output)
		}
		return err
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", ErrNoArtifact, spec.Output)
	}
	return nil
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%g", d.Seconds())
}
