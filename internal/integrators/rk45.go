package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/sissim/internal/dynamo"
)

// Dormand-Prince 5(4) tableau.
var (
	dpNodes = [7]float64{0, 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0, 1, 1}

	dpStages = [6][]float64{
		{1.0 / 5.0},
		{3.0 / 40.0, 9.0 / 40.0},
		{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0},
		{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0},
		{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0},
		{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0},
	}

	// fifth-order solution minus embedded fourth-order solution
	dpError = [7]float64{
		35.0/384.0 - 5179.0/57600.0,
		0,
		500.0/1113.0 - 7571.0/16695.0,
		125.0/192.0 - 393.0/640.0,
		-2187.0/6784.0 - -92097.0/339200.0,
		11.0/84.0 - 187.0/2100.0,
		-1.0 / 40.0,
	}
)

// RK45 is the Dormand-Prince embedded Runge-Kutta pair. The fifth-order
// solution is propagated; the fourth-order one only drives step control.
type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64

	k       [7]dynamo.State
	scratch dynamo.State
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) ensureScratch(n int) {
	if len(r.scratch) != n {
		for i := range r.k {
			r.k[i] = make(dynamo.State, n)
		}
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK45) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	xNew, _ := r.attempt(dyn, x, t, dt)
	return xNew
}

func (r *RK45) StepAdaptive(dyn dynamo.System, x dynamo.State, t, dt, tol float64) (dynamo.State, float64, error) {
	if tol <= 0 {
		return nil, dt, fmt.Errorf("rk45: tolerance must be positive, got %g", tol)
	}

	xNew, errMax := r.attempt(dyn, x, t, dt)
	errRatio := errMax / tol

	if errRatio > 1 || math.IsNaN(errRatio) {
		scale := r.minScale
		if !math.IsNaN(errRatio) {
			scale = math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
		}
		return x, dt * scale, dynamo.ErrStepRejected
	}

	var dtNew float64
	if errRatio > 0 {
		dtNew = dt * math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
	} else {
		dtNew = dt * r.maxScale
	}

	return xNew, dtNew, nil
}

// attempt takes one Dormand-Prince step and returns the fifth-order state
// together with the largest scaled local error estimate.
func (r *RK45) attempt(dyn dynamo.System, x dynamo.State, t, dt float64) (dynamo.State, float64) {
	n := len(x)
	r.ensureScratch(n)

	copy(r.k[0], dyn.Derive(x, t))
	for s, a := range dpStages[:5] {
		combine(r.scratch, x, dt, a, r.k[:s+1])
		copy(r.k[s+1], dyn.Derive(r.scratch, t+dpNodes[s+1]*dt))
	}

	xNew := make(dynamo.State, n)
	combine(xNew, x, dt, dpStages[5], r.k[:6])
	copy(r.k[6], dyn.Derive(xNew, t+dt))

	errMax := 0.0
	for i := 0; i < n; i++ {
		errEst := 0.0
		for j, e := range dpError {
			errEst += e * r.k[j][i]
		}
		errEst *= dt
		scale := math.Abs(x[i]) + math.Abs(dt*r.k[0][i]) + 1e-10
		errMax = math.Max(errMax, math.Abs(errEst)/scale)
	}

	return xNew, errMax
}
