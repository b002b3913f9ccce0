// Package dashboard renders a Grafana dashboard for the GreptimeDB samples table.
package dashboard

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"
)

// DatasourceEnv names the environment variable holding the Grafana datasource UID.
const DatasourceEnv = "GREPTIMEDB_DATASOURCE_UID"

// FileName is the name Render output is saved under by RenderFile.
const FileName = "ccabench-dashboard.json"

//go:embed cca-dashboard.json.tmpl
var dashboardTemplate string

// DefaultMetrics are the sample columns charted when Params.Metrics is empty.
var DefaultMetrics = []string{"bytes", "bits_per_second", "snd_cwnd", "rtt", "retransmits"}

// Params fill in the dashboard template.
type Params struct {
	Title   string
	Table   string
	Metrics []string
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"env": func(key string) (string, error) {
			v := os.Getenv(key)
			if v == "" {
				return "", fmt.Errorf("environment variable %s not set", key)
			}
			return v, nil
		},
		"json": func(v any) (string, error) {
			b, err := json.Marshal(v)
			return string(b), err
		},
		"add": func(a, b int) int { return a + b },
		"mul": func(a, b int) int { return a * b },
		"div": func(a, b int) int { return a / b },
		"mod": func(a, b int) int { return a % b },
	}
}

// Render executes the embedded dashboard template into w.
func Render(w io.Writer, p Params) error {
	if p.Title == "" {
		p.Title = "CCA benchmark samples"
	}
	if p.Table == "" {
		return fmt.Errorf("dashboard: table name is empty")
	}
	if len(p.Metrics) == 0 {
		p.Metrics = DefaultMetrics
	}
	t, err := template.New("dashboard").Funcs(funcMap()).Parse(dashboardTemplate)
	if err != nil {
		return err
	}
	return t.Execute(w, p)
}

// RenderFile renders the dashboard to outDir/FileName and returns the path.
func RenderFile(outDir string, p Params) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	outPath := filepath.Join(outDir, FileName)
	f, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	if err := Render(f, p); err != nil {
		f.Close()
		os.Remove(outPath)
		return "", err
	}
	return outPath, f.Close()
}
