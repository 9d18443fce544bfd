package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/sissim/internal/dynamo"
	"github.com/san-kum/sissim/internal/epidemic"
)

const (
	DefaultFinalTime  = 90.0
	DefaultIncrement  = 1.0
	DefaultIntegrator = "rk45"
	DefaultDt         = 0.1
	DefaultTolerance  = 1e-9
	DefaultMinDt      = 1e-10
	DefaultMaxDt      = 10.0
	DefaultMaxSteps   = 1_000_000
	DefaultWidth      = 80
	DefaultHeight     = 15
	DefaultDataDir    = ".sissim"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Model  ModelConfig  `yaml:"model" mapstructure:"model"`
	Grid   GridConfig   `yaml:"grid" mapstructure:"grid"`
	Solver SolverConfig `yaml:"solver" mapstructure:"solver"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
}

type ModelConfig struct {
	GrowthRate      float64 `yaml:"growth_rate" mapstructure:"growth_rate"`
	RecoveryRate    float64 `yaml:"recovery_rate" mapstructure:"recovery_rate"`
	Population      float64 `yaml:"population" mapstructure:"population"`
	InitialInfected float64 `yaml:"initial_infected" mapstructure:"initial_infected"`
}

type GridConfig struct {
	FinalTime float64 `yaml:"final_time" mapstructure:"final_time"`
	Increment float64 `yaml:"increment" mapstructure:"increment"`
}

type SolverConfig struct {
	Integrator string  `yaml:"integrator" mapstructure:"integrator"`
	Dt         float64 `yaml:"dt" mapstructure:"dt"`
	Tolerance  float64 `yaml:"tolerance" mapstructure:"tolerance"`
	MinDt      float64 `yaml:"min_dt" mapstructure:"min_dt"`
	MaxDt      float64 `yaml:"max_dt" mapstructure:"max_dt"`
	MaxSteps   int     `yaml:"max_steps" mapstructure:"max_steps"`
}

type OutputConfig struct {
	Plot    bool   `yaml:"plot" mapstructure:"plot"`
	Show    bool   `yaml:"show" mapstructure:"show"`
	Width   int    `yaml:"width" mapstructure:"width"`
	Height  int    `yaml:"height" mapstructure:"height"`
	PNG     string `yaml:"png" mapstructure:"png"`
	SVG     string `yaml:"svg" mapstructure:"svg"`
	Save    bool   `yaml:"save" mapstructure:"save"`
	Summary bool   `yaml:"summary" mapstructure:"summary"`
	Color   bool   `yaml:"color" mapstructure:"color"`
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`
}

func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			GrowthRate:      epidemic.DefaultGrowthRate,
			RecoveryRate:    epidemic.DefaultRecoveryRate,
			Population:      epidemic.DefaultPopulation,
			InitialInfected: epidemic.DefaultInitialInfected,
		},
		Grid: GridConfig{
			FinalTime: DefaultFinalTime,
			Increment: DefaultIncrement,
		},
		Solver: SolverConfig{
			Integrator: DefaultIntegrator,
			Dt:         DefaultDt,
			Tolerance:  DefaultTolerance,
			MinDt:      DefaultMinDt,
			MaxDt:      DefaultMaxDt,
			MaxSteps:   DefaultMaxSteps,
		},
		Output: OutputConfig{
			Plot:    true,
			Show:    true,
			Width:   DefaultWidth,
			Height:  DefaultHeight,
			DataDir: DefaultDataDir,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Params returns the model section as epidemic parameters.
func (c *Config) Params() epidemic.Params {
	return epidemic.Params{
		GrowthRate:      c.Model.GrowthRate,
		RecoveryRate:    c.Model.RecoveryRate,
		Population:      c.Model.Population,
		InitialInfected: c.Model.InitialInfected,
	}
}

// SimConfig returns the step control settings for dynamo.Simulator.
func (c *Config) SimConfig() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.Dt = c.Solver.Dt
	cfg.Tolerance = c.Solver.Tolerance
	cfg.MinDt = c.Solver.MinDt
	cfg.MaxDt = c.Solver.MaxDt
	cfg.MaxSteps = c.Solver.MaxSteps
	return cfg
}

func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Grid.FinalTime <= 0 || c.Grid.Increment <= 0 || c.Grid.Increment > c.Grid.FinalTime {
		return fmt.Errorf("%w: need 0 < increment <= final time, got increment %g final time %g",
			ErrInvalidConfig, c.Grid.Increment, c.Grid.FinalTime)
	}
	if c.Solver.Integrator == "" {
		return fmt.Errorf("%w: integrator must be set", ErrInvalidConfig)
	}
	if c.Solver.Dt <= 0 || c.Solver.Tolerance <= 0 || c.Solver.MaxSteps <= 0 {
		return fmt.Errorf("%w: dt, tolerance and max_steps must be positive", ErrInvalidConfig)
	}
	if c.Solver.MinDt <= 0 || c.Solver.MaxDt < c.Solver.MinDt {
		return fmt.Errorf("%w: need 0 < min_dt <= max_dt, got [%g, %g]", ErrInvalidConfig, c.Solver.MinDt, c.Solver.MaxDt)
	}
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		return fmt.Errorf("%w: plot size must be positive, got %dx%d", ErrInvalidConfig, c.Output.Width, c.Output.Height)
	}
	return nil
}
