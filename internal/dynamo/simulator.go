package dynamo

import (
	"context"
	"errors"
	"fmt"
	"math"
)

type Simulator struct {
	dyn        System
	integrator Integrator
	metrics    []Metric
}

func New(dyn System, integrator Integrator) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		metrics:    make([]Metric, 0),
	}
}

func (s *Simulator) AddMetric(m Metric) { s.metrics = append(s.metrics, m) }

// Solve integrates the initial-value problem x(times[0]) = x0 and returns the
// state at every requested output time. Internal steps never cross an output
// time, so each returned state is evaluated exactly at its grid point.
func (s *Simulator) Solve(ctx context.Context, x0 State, times []float64, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if err := validateTimes(times); err != nil {
		return nil, err
	}
	if len(x0) != s.dyn.StateDim() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}

	adaptive, isAdaptive := s.integrator.(AdaptiveIntegrator)

	result := &Result{
		States:   make([]State, 0, len(times)),
		Times:    make([]float64, 0, len(times)),
		Metrics:  make(map[string]float64),
		Adaptive: isAdaptive,
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := times[0]
	dt := cfg.Dt

	s.record(result, x, t)

	for _, target := range times[1:] {
		for t < target {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			default:
			}

			if result.StepsTaken >= cfg.MaxSteps {
				return result, &SimulationError{Step: result.StepsTaken, Time: t, State: x.Clone(), Wrapped: ErrTooManySteps}
			}

			h := dt
			clamped := false
			if t+h >= target {
				h = target - t
				clamped = true
			}

			var newX State
			if isAdaptive {
				var next float64
				var err error
				newX, next, err = adaptive.StepAdaptive(s.dyn, x, t, h, cfg.Tolerance)
				if errors.Is(err, ErrStepRejected) {
					result.Rejected++
					dt = next
					if dt < cfg.MinDt {
						return result, &SimulationError{Step: result.StepsTaken, Time: t, State: x.Clone(), Wrapped: ErrStepTooSmall}
					}
					continue
				}
				if err != nil {
					return result, &SimulationError{Step: result.StepsTaken, Time: t, State: x.Clone(), Wrapped: err}
				}
				if !clamped {
					dt = math.Min(next, cfg.MaxDt)
				}
			} else {
				newX = s.integrator.Step(s.dyn, x, t, h)
			}

			if cfg.ValidateState && !newX.IsValid() {
				return result, &SimulationError{Step: result.StepsTaken, Time: t, State: x.Clone(), Wrapped: ErrInvalidState}
			}

			x = newX
			if clamped {
				t = target
			} else {
				t += h
			}
			result.StepsTaken++
		}

		s.record(result, x, t)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) record(result *Result, x State, t float64) {
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.MaxSteps <= 0 {
		return fmt.Errorf("max steps must be positive, got %d", cfg.MaxSteps)
	}
	if _, ok := s.integrator.(AdaptiveIntegrator); ok {
		if cfg.Tolerance <= 0 {
			return fmt.Errorf("tolerance must be positive for adaptive stepping")
		}
		if cfg.MaxDt < cfg.MinDt || cfg.MaxDt <= 0 {
			return fmt.Errorf("max dt must be positive and at least min dt, got [%g, %g]", cfg.MinDt, cfg.MaxDt)
		}
	}
	return nil
}

func validateTimes(times []float64) error {
	if len(times) == 0 {
		return fmt.Errorf("%w: no output times", ErrInvalidGrid)
	}
	for i, t := range times {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("%w: non-finite time at index %d", ErrInvalidGrid, i)
		}
		if i > 0 && t <= times[i-1] {
			return fmt.Errorf("%w: times not strictly increasing at index %d", ErrInvalidGrid, i)
		}
	}
	return nil
}
