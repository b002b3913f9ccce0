package trial

import (
	"context"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
)

// IperfGenerator runs iperf3 directly with -J and --logfile.
type IperfGenerator struct {
	Path   string    // iperf3 binary, "iperf3" when empty
	Stdout io.Writer // receives process stdout; discarded when nil
}

// Args returns the iperf3 argument list for spec.
func (g *IperfGenerator) Args(spec Spec) []string {
	secs := int(math.Ceil(spec.Duration.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return []string{
		"-c", spec.Target,
		"-p", strconv.Itoa(spec.Port),
		"-t", strconv.Itoa(secs),
		"-i", seconds(spec.Interval),
		"-C", spec.CCA,
		"-J",
		"--logfile", spec.Output,
	}
}

// Generate implements Generator.
func (g *IperfGenerator) Generate(ctx context.Context, spec Spec) error {
	path := g.Path
	if path == "" {
		path = "iperf3"
	}
	cmd := exec.CommandContext(ctx, path, g.Args(spec)...)
	if err := runCommand(cmd, g.Stdout); err != nil {
		return fmt.Errorf("%s trial %d: %w", spec.CCA, spec.Index, err)
	}
	return checkArtifact(spec)
}
