package epidemic

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/sissim/internal/dynamo"
)

const (
	DefaultGrowthRate      = 0.2587
	DefaultRecoveryRate    = 0.045
	DefaultPopulation      = 58500
	DefaultInitialInfected = 1.619
)

var ErrInvalidParams = errors.New("epidemic: invalid model parameters")

// Params holds the SIS model constants. Rates are per day.
type Params struct {
	GrowthRate      float64 `json:"growth_rate"`
	RecoveryRate    float64 `json:"recovery_rate"`
	Population      float64 `json:"population"`
	InitialInfected float64 `json:"initial_infected"`
}

func DefaultParams() Params {
	return Params{
		GrowthRate:      DefaultGrowthRate,
		RecoveryRate:    DefaultRecoveryRate,
		Population:      DefaultPopulation,
		InitialInfected: DefaultInitialInfected,
	}
}

// Validate enforces N > 0, I₀ ∈ (0, N] and finite non-negative rates.
func (p Params) Validate() error {
	for name, v := range map[string]float64{
		"growth rate":      p.GrowthRate,
		"recovery rate":    p.RecoveryRate,
		"population":       p.Population,
		"initial infected": p.InitialInfected,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be finite, got %g", ErrInvalidParams, name, v)
		}
	}
	if p.Population <= 0 {
		return fmt.Errorf("%w: population must be positive, got %g", ErrInvalidParams, p.Population)
	}
	if p.InitialInfected <= 0 || p.InitialInfected > p.Population {
		return fmt.Errorf("%w: initial infected must be in (0, %g], got %g", ErrInvalidParams, p.Population, p.InitialInfected)
	}
	if p.GrowthRate < 0 || p.RecoveryRate < 0 {
		return fmt.Errorf("%w: rates must be non-negative, got growth %g recovery %g", ErrInvalidParams, p.GrowthRate, p.RecoveryRate)
	}
	return nil
}

// Derivative returns dI/dt for infected count i. N must be non-zero.
func Derivative(i float64, p Params) float64 {
	return p.GrowthRate*i*(1-i/p.Population) - p.RecoveryRate*i
}

// DecayRate is λ − γ, the exponential rate in the closed form.
func (p Params) DecayRate() float64 {
	return p.GrowthRate - p.RecoveryRate
}

// Equilibrium is the endemic level I* = N(λ−γ)/λ. It is not positive when λ ≤ γ
// and undefined (NaN or ±Inf) when λ = 0.
func (p Params) Equilibrium() float64 {
	return p.Population * p.DecayRate() / p.GrowthRate
}

// ReproductionNumber is R0 = λ/γ.
func (p Params) ReproductionNumber() float64 {
	return p.GrowthRate / p.RecoveryRate
}

// Endemic reports whether the infection persists (λ > γ).
func (p Params) Endemic() bool {
	return p.GrowthRate > p.RecoveryRate
}

// Analytic evaluates the closed-form solution at time t.
func (p Params) Analytic(t float64) float64 {
	eq := p.Equilibrium()
	i0 := p.InitialInfected
	return eq / (1 + (eq-i0)/i0*math.Exp(-p.DecayRate()*t))
}

// Susceptible returns S = N − I.
func (p Params) Susceptible(infected float64) float64 {
	return p.Population - infected
}

// SIS adapts Params to dynamo.System. The state is the one-element vector {I}.
type SIS struct {
	params Params
}

func NewSIS(p Params) *SIS {
	return &SIS{params: p}
}

func (s *SIS) Params() Params { return s.params }

func (s *SIS) StateDim() int { return 1 }

func (s *SIS) Derive(x dynamo.State, _ float64) dynamo.State {
	return dynamo.State{Derivative(x[0], s.params)}
}

func (s *SIS) InitialState() dynamo.State {
	return dynamo.State{s.params.InitialInfected}
}

func (s *SIS) GetParams() map[string]float64 {
	return map[string]float64{
		"growth_rate":      s.params.GrowthRate,
		"recovery_rate":    s.params.RecoveryRate,
		"population":       s.params.Population,
		"initial_infected": s.params.InitialInfected,
	}
}

func (s *SIS) SetParam(name string, value float64) error {
	switch name {
	case "growth_rate":
		s.params.GrowthRate = value
	case "recovery_rate":
		s.params.RecoveryRate = value
	case "population":
		s.params.Population = value
	case "initial_infected":
		s.params.InitialInfected = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
