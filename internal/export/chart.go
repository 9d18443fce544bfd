package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/san-kum/sissim/internal/viz"
)

const (
	DefaultWidth  = 1024
	DefaultHeight = 512
)

var (
	susceptibleColor = drawing.Color{R: 31, G: 119, B: 180, A: 255}
	infectedColor    = drawing.Color{R: 214, G: 39, B: 40, A: 255}
)

// Chart builds the susceptible/infected line chart for s.
func Chart(s viz.Series, title string) (*chart.Chart, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	graph := &chart.Chart{
		Title:  title,
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Name:  "days",
			Style: chart.Style{FontSize: 10.0},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%g", v.(float64))
			},
		},
		YAxis: chart.YAxis{
			Name:  "people",
			Style: chart.Style{FontSize: 10.0},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    viz.LegendSusceptible,
				XValues: s.Times,
				YValues: s.Susceptible,
				Style:   chart.Style{StrokeColor: susceptibleColor, StrokeWidth: 2.0},
			},
			chart.ContinuousSeries{
				Name:    viz.LegendInfected,
				XValues: s.Times,
				YValues: s.Infected,
				Style:   chart.Style{StrokeColor: infectedColor, StrokeWidth: 2.0},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(graph)}
	return graph, nil
}

func WritePNG(w io.Writer, s viz.Series, title string) error {
	return render(w, s, title, chart.PNG)
}

func WriteSVG(w io.Writer, s viz.Series, title string) error {
	return render(w, s, title, chart.SVG)
}

// Format is an image encoding accepted by WriteFile.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// WriteFile renders s to path as format. A path extension naming a different
// image type is an error.
func WriteFile(path string, format Format, s viz.Series, title string) error {
	var write func(io.Writer, viz.Series, string) error
	switch format {
	case PNG:
		write = WritePNG
	case SVG:
		write = WriteSVG
	default:
		return fmt.Errorf("export: unsupported image format %q (want png or svg)", format)
	}
	if ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext != "" && ext != string(format) {
		return fmt.Errorf("export: %s does not match format %s", path, format)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, s, title); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func render(w io.Writer, s viz.Series, title string, provider chart.RendererProvider) error {
	graph, err := Chart(s, title)
	if err != nil {
		return err
	}
	if err := graph.Render(provider, w); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}
