package trial

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// ScriptGenerator drives a benchmark shell script taking the positional arguments
// "host port seconds interval cca trials" and writing <cca>_<n>.json into Dir.
// It asks the script for a single trial per call and moves the report to
// spec.Output.
type ScriptGenerator struct {
	Script string // path to the script, "benchmark.sh" when empty
	Shell  string // interpreter, "bash" when empty
	Sudo   bool
	Dir    string // working directory the script writes into
	Stdout io.Writer
}

// Command returns the program and arguments used for spec.
func (g *ScriptGenerator) Command(spec Spec) (string, []string) {
	script := g.Script
	if script == "" {
		script = "benchmark.sh"
	}
	shell := g.Shell
	if shell == "" {
		shell = "bash"
	}
	args := []string{
		script,
		spec.Target,
		strconv.Itoa(spec.Port),
		seconds(spec.Duration),
		seconds(spec.Interval),
		spec.CCA,
		"1",
	}
	if g.Sudo {
		return "sudo", append([]string{shell}, args...)
	}
	return shell, args
}

// resolved returns a copy whose Script is absolute when the process runs in Dir;
// a relative script path is taken relative to the caller's working directory.
func (g *ScriptGenerator) resolved() (*ScriptGenerator, error) {
	c := *g
	if c.Script == "" {
		c.Script = "benchmark.sh"
	}
	if c.Dir != "" && !filepath.IsAbs(c.Script) {
		abs, err := filepath.Abs(c.Script)
		if err != nil {
			return nil, fmt.Errorf("resolve script: %w", err)
		}
		c.Script = abs
	}
	return &c, nil
}

// Generate implements Generator.
func (g *ScriptGenerator) Generate(ctx context.Context, spec Spec) error {
	run, err := g.resolved()
	if err != nil {
		return err
	}
	name, args := run.Command(spec)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = g.Dir
	if err := runCommand(cmd, g.Stdout); err != nil {
		return fmt.Errorf("%s trial %d: %w", spec.CCA, spec.Index, err)
	}

	produced := ArtifactPath(g.Dir, spec.CCA, 1)
	if filepath.Clean(produced) != filepath.Clean(spec.Output) {
		if err := os.Rename(produced, spec.Output); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s", ErrNoArtifact, produced)
			}
			return err
		}
	}
	return checkArtifact(spec)
}
