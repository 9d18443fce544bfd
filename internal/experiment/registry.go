package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/sissim/internal/dynamo"
	"github.com/san-kum/sissim/internal/epidemic"
	"github.com/san-kum/sissim/internal/integrators"
	"github.com/san-kum/sissim/internal/metrics"
)

// Metric names reported in dynamo.Result.Metrics.
const (
	MetricPeakInfected  = "peak_infected"
	MetricPeakDay       = "peak_day"
	MetricFinalInfected = "final_infected"
	MetricBounds        = "bounds"
)

type Registry struct {
	models      map[string]func(epidemic.Params) dynamo.System
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func(epidemic.Params) dynamo.System),
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.models["sis"] = func(p epidemic.Params) dynamo.System { return epidemic.NewSIS(p) }

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() dynamo.Integrator { return integrators.NewRK45() }

	return r
}

func (r *Registry) GetModel(name string, p epidemic.Params) (dynamo.System, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(p), nil
}

// GetIntegrator returns a fresh integrator; integrators keep scratch buffers
// and must not be shared between concurrent runs.
func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, r.ListIntegrators())
	}
	return fn(), nil
}

func (r *Registry) ListModels() []string {
	return sortedKeys(r.models)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

// DefaultMetrics tracks the epidemic peak, the final level and samples
// outside [0, N].
func (r *Registry) DefaultMetrics(p epidemic.Params) []dynamo.Metric {
	peak := metrics.NewPeak(MetricPeakInfected, 0)
	return []dynamo.Metric{
		peak,
		metrics.NewPeakTime(MetricPeakDay, peak),
		metrics.NewFinal(MetricFinalInfected, 0),
		metrics.NewBounds(0, p.Population),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
