package analysis

import (
	"context"
	"fmt"
	"io"
	"math"
	"runtime"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/sissim/internal/dynamo"
	"github.com/san-kum/sissim/internal/epidemic"
	"github.com/san-kum/sissim/internal/experiment"
)

// SweepPoint is the long-run infected level for one growth rate.
type SweepPoint struct {
	GrowthRate         float64
	ReproductionNumber float64
	Final              float64
	// Equilibrium is the stable fixed point: I* when endemic, otherwise 0.
	Equilibrium float64
}

type SweepConfig struct {
	Params  epidemic.Params
	Min     float64
	Max     float64
	Steps   int
	Horizon float64
	Sim     dynamo.Config
	// Integrator names a registry integrator; empty means rk45.
	Integrator string
	// Workers bounds concurrent solves; 0 means one per CPU.
	Workers int
}

// Sweep solves the model to Horizon for Steps growth rates evenly spaced over
// [Min, Max] and records where each run ends. The results trace the
// transcritical bifurcation at λ = γ.
func Sweep(ctx context.Context, sc SweepConfig) ([]SweepPoint, error) {
	if sc.Steps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sc.Steps)
	}
	if sc.Min < 0 || sc.Max <= sc.Min {
		return nil, fmt.Errorf("sweep range must satisfy 0 <= min < max, got [%g, %g]", sc.Min, sc.Max)
	}
	if sc.Horizon <= 0 {
		return nil, fmt.Errorf("sweep horizon must be positive, got %g", sc.Horizon)
	}
	if err := sc.Params.Validate(); err != nil {
		return nil, err
	}

	name := sc.Integrator
	if name == "" {
		name = "rk45"
	}
	reg := experiment.NewRegistry()
	if _, err := reg.GetIntegrator(name); err != nil {
		return nil, err
	}

	rates := floats.Span(make([]float64, sc.Steps), sc.Min, sc.Max)
	points := make([]SweepPoint, sc.Steps)

	workers := sc.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rate := range rates {
		i, rate := i, rate
		g.Go(func() error {
			model, err := reg.GetModel(experiment.DefaultModel, sc.Params)
			if err != nil {
				return err
			}
			tunable, ok := model.(dynamo.Configurable)
			if !ok {
				return fmt.Errorf("model %s has no tunable parameters", experiment.DefaultModel)
			}
			if err := tunable.SetParam("growth_rate", rate); err != nil {
				return err
			}
			p := sc.Params
			p.GrowthRate = rate

			integ, err := reg.GetIntegrator(name)
			if err != nil {
				return err
			}
			sim := dynamo.New(model, integ)
			res, err := sim.Solve(ctx, dynamo.State{p.InitialInfected}, []float64{0, sc.Horizon}, sc.Sim)
			if err != nil {
				return fmt.Errorf("growth rate %g with %s: %w", rate, name, err)
			}

			points[i] = SweepPoint{
				GrowthRate:         rate,
				ReproductionNumber: p.ReproductionNumber(),
				Final:              res.States[len(res.States)-1][0],
				Equilibrium:        math.Max(p.Equilibrium(), 0),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

// Threshold returns the first swept growth rate whose run stays endemic, or
// NaN when every run dies out.
func Threshold(points []SweepPoint, population float64) float64 {
	for _, p := range points {
		if p.Final > 1e-3*population {
			return p.GrowthRate
		}
	}
	return math.NaN()
}

// SweepToASCII plots the simulated final level against the equilibrium.
func SweepToASCII(points []SweepPoint, width, height int) string {
	if len(points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	final := make([]float64, len(points))
	eq := make([]float64, len(points))
	for i, p := range points {
		final[i] = p.Final
		eq[i] = p.Equilibrium
	}

	return asciigraph.PlotMany([][]float64{final, eq},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue),
		asciigraph.SeriesLegends("simulated", "equilibrium"),
		asciigraph.Caption(fmt.Sprintf("final infected, growth rate %g to %g", points[0].GrowthRate, points[len(points)-1].GrowthRate)),
	)
}

func WriteSweep(w io.Writer, points []SweepPoint) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "growth rate\tR0\tfinal\tequilibrium")
	for _, p := range points {
		fmt.Fprintf(tw, "%.4f\t%.3f\t%.1f\t%.1f\n", p.GrowthRate, p.ReproductionNumber, p.Final, p.Equilibrium)
	}
	return tw.Flush()
}
