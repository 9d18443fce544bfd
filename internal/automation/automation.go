package automation

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/go-logr/logr"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/sissim/internal/config"
	"github.com/san-kum/sissim/internal/epidemic"
	"github.com/san-kum/sissim/internal/experiment"
	"github.com/san-kum/sissim/internal/logging"
)

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. Zero fields keep the value from the preset, or
// from the base configuration when no preset is named.
type ScenarioStep struct {
	Name       string             `yaml:"name"`
	Preset     string             `yaml:"preset"`
	Integrator string             `yaml:"integrator"`
	FinalTime  float64            `yaml:"final_time"`
	Increment  float64            `yaml:"increment"`
	Params     map[string]float64 `yaml:"params"`
	Save       bool               `yaml:"save"`
}

type StepResult struct {
	Name    string
	Config  *config.Config
	Outcome *experiment.Outcome
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// StepConfig derives the configuration of one step from base.
func StepConfig(base *config.Config, step ScenarioStep) (*config.Config, error) {
	cfg := *base
	if step.Preset != "" {
		p := config.GetPreset(step.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", step.Preset, config.ListPresets())
		}
		cfg.Model = p.Model
		cfg.Grid = p.Grid
	}
	if step.Integrator != "" {
		cfg.Solver.Integrator = step.Integrator
	}
	if step.FinalTime != 0 {
		cfg.Grid.FinalTime = step.FinalTime
	}
	if step.Increment != 0 {
		cfg.Grid.Increment = step.Increment
	}

	// SetParam rejects unknown names, so typos in the scenario fail loudly.
	model := epidemic.NewSIS(cfg.Params())
	names := make([]string, 0, len(step.Params))
	for name := range step.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := model.SetParam(name, step.Params[name]); err != nil {
			return nil, err
		}
	}
	p := model.Params()
	cfg.Model = config.ModelConfig{
		GrowthRate:      p.GrowthRate,
		RecoveryRate:    p.RecoveryRate,
		Population:      p.Population,
		InitialInfected: p.InitialInfected,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RunScenario executes all steps in order and stops at the first failure.
// save is called for steps marked save.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, logger logr.Logger,
	save func(*config.Config, *experiment.Outcome) error) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		logger.V(logging.DEBUG).Info("Running scenario step", "scenario", scenario.Name, "step", name, "index", i+1, "total", len(scenario.Steps))

		cfg, err := StepConfig(base, step)
		if err != nil {
			return results, fmt.Errorf("step %s: %w", name, err)
		}

		out, err := experiment.New(cfg, logger.WithValues("step", name)).Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %s run: %w", name, err)
		}

		if step.Save && save != nil {
			if err := save(cfg, out); err != nil {
				return results, fmt.Errorf("step %s save: %w", name, err)
			}
		}

		results = append(results, StepResult{Name: name, Config: cfg, Outcome: out})
	}

	return results, nil
}

func WriteResults(w io.Writer, results []StepResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tR0\tINTEG\tDAYS\tFINAL\tEQUILIBRIUM\tMAX |ERROR|\tUNDEFINED")
	for _, r := range results {
		s := r.Outcome.Summary
		fmt.Fprintf(tw, "%s\t%.3f\t%s\t%g\t%.1f\t%.1f\t%.4E\t%d\n",
			r.Name, s.ReproductionNumber, r.Config.Solver.Integrator, r.Config.Grid.FinalTime,
			s.FinalInfected, s.Equilibrium, s.MaxAbsError, s.UndefinedErrors)
	}
	return tw.Flush()
}
