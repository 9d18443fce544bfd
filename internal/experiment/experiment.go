package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/san-kum/sissim/internal/config"
	"github.com/san-kum/sissim/internal/dynamo"
	"github.com/san-kum/sissim/internal/epidemic"
	"github.com/san-kum/sissim/internal/logging"
	"github.com/san-kum/sissim/internal/report"
)

const DefaultModel = "sis"

// Outcome is one solved run: the sampled trajectory, its report rows and the
// solver statistics.
type Outcome struct {
	Params      epidemic.Params
	Integrator  string
	Times       []float64
	Infected    []float64
	Susceptible []float64
	Analytic    []float64
	Rows        []report.Row
	Result      *dynamo.Result
	Summary     report.Summary
	Elapsed     time.Duration
}

type Experiment struct {
	cfg      *config.Config
	registry *Registry
	logger   logr.Logger
}

func New(cfg *config.Config, logger logr.Logger) *Experiment {
	return &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		logger:   logger,
	}
}

// Run integrates the SIS model over the configured grid and compares every
// sample against the closed form.
func (e *Experiment) Run(ctx context.Context) (*Outcome, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	p := e.cfg.Params()
	model, err := e.registry.GetModel(DefaultModel, p)
	if err != nil {
		return nil, err
	}
	integ, err := e.registry.GetIntegrator(e.cfg.Solver.Integrator)
	if err != nil {
		return nil, err
	}
	times, err := dynamo.TimeGrid(e.cfg.Grid.FinalTime, e.cfg.Grid.Increment)
	if err != nil {
		return nil, err
	}

	sim := dynamo.New(model, integ)
	for _, m := range e.registry.DefaultMetrics(p) {
		sim.AddMetric(m)
	}

	e.logger.V(logging.DEBUG).Info("Solving SIS model",
		"growthRate", p.GrowthRate, "recoveryRate", p.RecoveryRate,
		"population", p.Population, "initialInfected", p.InitialInfected,
		"integrator", e.cfg.Solver.Integrator, "points", len(times))

	x0 := dynamo.State{p.InitialInfected}
	start := time.Now()
	result, err := sim.Solve(ctx, x0, times, e.cfg.SimConfig())
	if err != nil {
		return nil, fmt.Errorf("solving with %s: %w", e.cfg.Solver.Integrator, err)
	}
	elapsed := time.Since(start)

	out := &Outcome{
		Params:      p,
		Integrator:  e.cfg.Solver.Integrator,
		Times:       result.Times,
		Infected:    make([]float64, len(result.States)),
		Susceptible: make([]float64, len(result.States)),
		Analytic:    make([]float64, len(result.States)),
		Result:      result,
		Elapsed:     elapsed,
	}
	for i, x := range result.States {
		out.Infected[i] = x[0]
		out.Susceptible[i] = p.Susceptible(x[0])
		out.Analytic[i] = p.Analytic(result.Times[i])
	}

	out.Rows, err = report.Build(out.Times, out.Infected, p)
	if err != nil {
		return nil, err
	}
	out.Summary = report.Summarize(out.Rows, p)

	if n := report.Undefined(out.Rows); n > 0 {
		e.logger.Info("Relative error undefined where the closed form vanishes or diverges",
			"rows", n, "total", len(out.Rows), "reproductionNumber", p.ReproductionNumber())
	}
	if v := result.Metrics[MetricBounds]; v < 1 {
		e.logger.Info("Infected count left [0, N]", "fractionInBounds", v)
	}

	e.logger.V(logging.DEBUG).Info("Solve finished",
		"steps", result.StepsTaken, "rejected", result.Rejected,
		"peakInfected", result.Metrics[MetricPeakInfected], "peakDay", result.Metrics[MetricPeakDay],
		"elapsed", elapsed)

	return out, nil
}
