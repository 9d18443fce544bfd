package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// gridSlack absorbs rounding when final is a whole multiple of increment.
const gridSlack = 1e-9

// TimeGrid returns the output times 0, increment, 2*increment, ... up to and
// including final when final is a whole multiple of increment. A final time
// that is not a whole multiple is truncated to the last full increment.
func TimeGrid(final, increment float64) ([]float64, error) {
	if math.IsNaN(final) || math.IsInf(final, 0) || final <= 0 {
		return nil, fmt.Errorf("%w: final time must be positive and finite, got %g", ErrInvalidGrid, final)
	}
	if math.IsNaN(increment) || math.IsInf(increment, 0) || increment <= 0 {
		return nil, fmt.Errorf("%w: increment must be positive and finite, got %g", ErrInvalidGrid, increment)
	}
	if increment > final {
		return nil, fmt.Errorf("%w: increment %g exceeds final time %g", ErrInvalidGrid, increment, final)
	}

	intervals := int(math.Floor(final/increment + gridSlack))
	return floats.Span(make([]float64, intervals+1), 0, float64(intervals)*increment), nil
}
