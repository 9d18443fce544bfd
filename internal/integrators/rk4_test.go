package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/sissim/internal/dynamo"
)

type simpleDynamics struct{}

func (s *simpleDynamics) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (s *simpleDynamics) StateDim() int { return 2 }

// logistic is dI/dt = r*I*(1 - I/k), whose closed form is known.
type logistic struct{ r, k float64 }

func (l *logistic) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{l.r * x[0] * (1 - x[0]/l.k)}
}

func (l *logistic) StateDim() int { return 1 }

func (l *logistic) exact(x0, t float64) float64 {
	return l.k / (1 + (l.k-x0)/x0*math.Exp(-l.r*t))
}

func TestRK4Accuracy(t *testing.T) {
	dyn := &simpleDynamics{}
	integ := NewRK4()

	x0 := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	x := x0
	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}

	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestRK4Logistic(t *testing.T) {
	dyn := &logistic{r: 0.5, k: 100}
	integ := NewRK4()

	x := dynamo.State{1.0}
	dt := 0.05
	for i := 0; i < 400; i++ {
		x = integ.Step(dyn, x, float64(i)*dt, dt)
	}

	want := dyn.exact(1.0, 20)
	if rel := math.Abs(x[0]-want) / want; rel > 1e-6 {
		t.Errorf("relative error %e too large (got %.6f, want %.6f)", rel, x[0], want)
	}
}

func TestRK4BeatsEuler(t *testing.T) {
	dyn := &logistic{r: 0.5, k: 100}
	rk4 := NewRK4()
	euler := NewEuler()

	x4 := dynamo.State{1.0}
	xe := dynamo.State{1.0}
	dt := 0.1
	for i := 0; i < 100; i++ {
		x4 = rk4.Step(dyn, x4, float64(i)*dt, dt)
		xe = euler.Step(dyn, xe, float64(i)*dt, dt)
	}

	want := dyn.exact(1.0, 10)
	if math.Abs(x4[0]-want) >= math.Abs(xe[0]-want) {
		t.Errorf("rk4 error %e not below euler error %e", math.Abs(x4[0]-want), math.Abs(xe[0]-want))
	}
}

func TestEulerStep(t *testing.T) {
	dyn := &logistic{r: 1, k: 10}
	x := NewEuler().Step(dyn, dynamo.State{5}, 0, 0.1)

	// 5 + 0.1 * 1 * 5 * 0.5
	if math.Abs(x[0]-5.25) > 1e-12 {
		t.Errorf("expected 5.25, got %v", x[0])
	}
}
