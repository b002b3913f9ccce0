// YAML config loader with CUE validation integration
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"ccabench/internal/chart"
	"ccabench/internal/metric"
)

// Generator names accepted in the config file.
const (
	GeneratorIperf3 = "iperf3"
	GeneratorScript = "script"
)

// ErrInvalidConfig wraps semantic configuration errors found after schema validation.
var ErrInvalidConfig = errors.New("invalid config")

// BenchConfig is the complete, read-only description of one benchmark batch.
// It is built by Load or Default and passed by value into the runner.
type BenchConfig struct {
	TargetServer   string   `yaml:"target_server"`
	TargetPort     int      `yaml:"target_port"`
	TotalSeconds   float64  `yaml:"total_seconds"`
	ReportInterval float64  `yaml:"report_interval"`
	CCAs           []string `yaml:"ccas"`
	Trials         int      `yaml:"trials"`
	YUnit          string   `yaml:"y_unit"`
	UseSum         bool     `yaml:"use_sum"`

	ArtifactDir string `yaml:"artifact_dir"`
	Generator   string `yaml:"generator"`
	Iperf3Path  string `yaml:"iperf3_path"`
	ScriptPath  string `yaml:"script_path"`
	UseSudo     bool   `yaml:"use_sudo"`
	Output      string `yaml:"output"`
}

// Default returns the stock benchmark: two CUBIC variants, ten 30 s trials each.
func Default() BenchConfig {
	return BenchConfig{
		TargetServer:   "bokaibi.com",
		TargetPort:     5142,
		TotalSeconds:   30,
		ReportInterval: 0.1,
		CCAs:           []string{"cubic", "bpf_cubic"},
		Trials:         10,
		YUnit:          "bytes",
		UseSum:         true,
		ArtifactDir:    ".",
		Generator:      GeneratorIperf3,
		Iperf3Path:     "iperf3",
		ScriptPath:     "benchmark.sh",
		UseSudo:        true,
		Output:         "cca_comparison.png",
	}
}

// Load reads a YAML config, validates it against the CUE schema and overlays it on
// Default. An empty cueSchemaPath selects the embedded schema.
func Load(configPath, cueSchemaPath string) (BenchConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return BenchConfig{}, err
	}
	schema := embeddedSchema
	if cueSchemaPath != "" {
		if schema, err = os.ReadFile(cueSchemaPath); err != nil {
			return BenchConfig{}, fmt.Errorf("cannot read CUE schema: %w", err)
		}
	}
	if err := ValidateWithCue(configPath, data, schema); err != nil {
		return BenchConfig{}, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return BenchConfig{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return BenchConfig{}, err
	}
	return cfg, nil
}

// Validate checks cross-field rules the schema does not express.
func (c BenchConfig) Validate() error {
	if c.TargetServer == "" {
		return fmt.Errorf("%w: target_server is empty", ErrInvalidConfig)
	}
	if c.TargetPort <= 0 || c.TargetPort > 65535 {
		return fmt.Errorf("%w: target_port %d out of range", ErrInvalidConfig, c.TargetPort)
	}
	if c.TotalSeconds <= 0 || c.ReportInterval <= 0 {
		return fmt.Errorf("%w: total_seconds and report_interval must be positive", ErrInvalidConfig)
	}
	if c.ReportInterval > c.TotalSeconds {
		return fmt.Errorf("%w: report_interval %.3gs exceeds total_seconds %.3gs", ErrInvalidConfig, c.ReportInterval, c.TotalSeconds)
	}
	if len(c.CCAs) == 0 {
		return fmt.Errorf("%w: no ccas configured", ErrInvalidConfig)
	}
	seen := make(map[string]struct{}, len(c.CCAs))
	for _, cca := range c.CCAs {
		if _, dup := seen[cca]; dup {
			return fmt.Errorf("%w: cca %q listed twice", ErrInvalidConfig, cca)
		}
		seen[cca] = struct{}{}
	}
	if c.Trials <= 0 {
		return fmt.Errorf("%w: trials must be positive", ErrInvalidConfig)
	}
	switch c.Generator {
	case GeneratorIperf3, GeneratorScript:
	default:
		return fmt.Errorf("%w: unknown generator %q", ErrInvalidConfig, c.Generator)
	}
	if err := chart.CheckPath(c.Output); err != nil {
		return fmt.Errorf("%w: output: %w", ErrInvalidConfig, err)
	}
	_, err := c.Selector()
	return err
}

// Selector returns the metric selector described by y_unit and use_sum.
func (c BenchConfig) Selector() (metric.Selector, error) {
	return metric.NewSelector(c.YUnit, c.UseSum)
}

// Duration returns total_seconds as a time.Duration.
func (c BenchConfig) Duration() time.Duration {
	return time.Duration(c.TotalSeconds * float64(time.Second))
}

// Interval returns report_interval as a time.Duration.
func (c BenchConfig) Interval() time.Duration {
	return time.Duration(c.ReportInterval * float64(time.Second))
}

// Runs returns the number of trials the batch will execute.
func (c BenchConfig) Runs() int {
	return len(c.CCAs) * c.Trials
}
