// Package chart renders averaged CCA results as a line chart.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"ccabench/internal/series"
)

var (
	// ErrNoResults is returned when there is nothing to draw.
	ErrNoResults = errors.New("no results to plot")
	// ErrUnsupportedFormat is returned for output paths gonum/plot cannot encode.
	ErrUnsupportedFormat = errors.New("unsupported chart format")
)

var palette = []color.RGBA{
	{0, 114, 178, 255},
	{213, 94, 0, 255},
	{0, 158, 115, 255},
	{204, 121, 167, 255},
	{230, 159, 0, 255},
	{86, 180, 233, 255},
}

// Options control the chart layout and destination.
type Options struct {
	Trials int
	Unit   string
	Path   string
	Width  vg.Length
	Height vg.Length
}

func (o Options) withDefaults() Options {
	if o.Width == 0 {
		o.Width = 10 * vg.Inch
	}
	if o.Height == 0 {
		o.Height = 5 * vg.Inch
	}
	return o
}

// Title returns the chart title for n averaged trials.
func Title(n int) string {
	return fmt.Sprintf("CCA Performance, averaged over %d trials", n)
}

// Build creates the plot with one line per result, in result order.
func Build(results []series.Result, opts Options) (*plot.Plot, error) {
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	p := plot.New()
	p.Title.Text = Title(opts.Trials)
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = opts.Unit
	p.Add(plotter.NewGrid())

	for i, r := range results {
		pts := make(plotter.XYs, r.Len())
		for j := range pts {
			pts[j].X = r.Time[j]
			pts[j].Y = r.Values[j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.CCA, err)
		}
		line.Color = palette[i%len(palette)]
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(r.CCA, line)
	}
	p.Legend.Top = true
	return p, nil
}

// CheckPath reports whether path has an extension Render can encode.
func CheckPath(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".svg", ".pdf":
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
}

// Render draws results to opts.Path. The format follows the file extension.
func Render(results []series.Result, opts Options) error {
	opts = opts.withDefaults()
	if err := CheckPath(opts.Path); err != nil {
		return err
	}
	p, err := Build(results, opts)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := p.Save(opts.Width, opts.Height, opts.Path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}
