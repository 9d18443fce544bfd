// Package epidemic provides the single-compartment SIS epidemic model.
//
// The infected count I evolves under the logistic SIS law
//
//	dI/dt = λ·I·(1 − I/N) − γ·I
//
// where λ is the growth rate, γ the recovery rate and N the closed population.
// The susceptible count is S = N − I. The same equation has the closed form
//
//	I(t) = I* / (1 + ((I* − I₀)/I₀)·e^(−(λ−γ)t)),   I* = N(λ−γ)/λ
//
// which [Params.Analytic] evaluates for validating numeric solutions.
//
// [SIS] adapts the model to [dynamo.System] so any integrator can solve it:
//
//	sis := epidemic.NewSIS(epidemic.DefaultParams())
//	result, err := dynamo.New(sis, integrators.NewRK45()).Solve(ctx, sis.InitialState(), times, cfg)
//
// When λ ≤ γ the disease dies out and I* ≤ 0. The model does not special-case
// that regime.
package epidemic
