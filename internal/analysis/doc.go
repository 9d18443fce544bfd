// Package analysis runs parameter studies on the SIS model.
//
// [Sweep] varies the growth rate λ with the recovery rate fixed and solves
// each case concurrently. Below λ = γ every run dies out; above it the runs
// settle on I* = N(λ−γ)/λ:
//
//	points, err := analysis.Sweep(ctx, analysis.SweepConfig{
//	    Params: epidemic.DefaultParams(),
//	    Min: 0, Max: 0.5, Steps: 26, Horizon: 365,
//	    Sim: dynamo.DefaultConfig(),
//	})
//	fmt.Println(analysis.SweepToASCII(points, 60, 12))
package analysis
