package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
)

const (
	LegendSusceptible = "susceptible"
	LegendInfected    = "infected"
)

// Series is a sampled SIS trajectory. All slices have the same length.
type Series struct {
	Times       []float64
	Susceptible []float64
	Infected    []float64
}

func (s Series) Len() int { return len(s.Times) }

func (s Series) Validate() error {
	if len(s.Susceptible) != s.Len() || len(s.Infected) != s.Len() {
		return fmt.Errorf("viz: series lengths differ: %d times, %d susceptible, %d infected",
			len(s.Times), len(s.Susceptible), len(s.Infected))
	}
	if s.Len() == 0 {
		return fmt.Errorf("viz: empty series")
	}
	return nil
}

type ChartOptions struct {
	Width  int
	Height int
	Color  bool
	// HideSusceptible and HideInfected drop a curve from the chart.
	HideSusceptible bool
	HideInfected    bool
}

// Caption describes the axes since asciigraph has no x labels.
func (s Series) Caption() string {
	return fmt.Sprintf("SIS  x: days %g to %g  y: people", s.Times[0], s.Times[s.Len()-1])
}

// RenderChart plots susceptible and infected against time.
func RenderChart(s Series, opts ChartOptions) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}

	var (
		data    [][]float64
		legends []string
		colors  []asciigraph.AnsiColor
	)
	if !opts.HideSusceptible {
		data = append(data, s.Susceptible)
		legends = append(legends, LegendSusceptible)
		colors = append(colors, asciigraph.Blue)
	}
	if !opts.HideInfected {
		data = append(data, s.Infected)
		legends = append(legends, LegendInfected)
		colors = append(colors, asciigraph.Red)
	}
	if len(data) == 0 {
		return s.Caption(), nil
	}

	options := []asciigraph.Option{
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(s.Caption()),
		asciigraph.SeriesLegends(legends...),
	}
	if opts.Color {
		options = append(options, asciigraph.SeriesColors(colors...))
	}
	return asciigraph.PlotMany(data, options...), nil
}
