package integrators

import "github.com/san-kum/sissim/internal/dynamo"

// RK4 is the classical fixed-step fourth-order Runge-Kutta method.
type RK4 struct {
	k       [4]dynamo.State
	scratch dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.scratch) != n {
		for i := range r.k {
			r.k[i] = make(dynamo.State, n)
		}
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	r.ensureScratch(len(x))

	copy(r.k[0], dyn.Derive(x, t))

	combine(r.scratch, x, dt, []float64{0.5}, r.k[:1])
	copy(r.k[1], dyn.Derive(r.scratch, t+dt*0.5))

	combine(r.scratch, x, dt, []float64{0, 0.5}, r.k[:2])
	copy(r.k[2], dyn.Derive(r.scratch, t+dt*0.5))

	combine(r.scratch, x, dt, []float64{0, 0, 1}, r.k[:3])
	copy(r.k[3], dyn.Derive(r.scratch, t+dt))

	result := make(dynamo.State, len(x))
	combine(result, x, dt, rk4Weights, r.k[:])
	return result
}

var rk4Weights = []float64{1.0 / 6.0, 2.0 / 6.0, 2.0 / 6.0, 1.0 / 6.0}

// combine writes x + dt*sum(a[j]*k[j]) into dst. Zero coefficients are skipped.
func combine(dst, x dynamo.State, dt float64, a []float64, k []dynamo.State) {
	for i := range x {
		sum := 0.0
		for j, aj := range a {
			if aj != 0 {
				sum += aj * k[j][i]
			}
		}
		dst[i] = x[i] + dt*sum
	}
}
