package metrics

import "github.com/san-kum/sissim/internal/dynamo"

// Bounds is the fraction of samples whose state components all lie in
// [lower, upper]. 1.0 means no violation was observed.
type Bounds struct {
	name       string
	lower      float64
	upper      float64
	violations int
	samples    int
}

func NewBounds(lower, upper float64) *Bounds {
	return &Bounds{
		name:  "bounds",
		lower: lower,
		upper: upper,
	}
}

func (b *Bounds) Name() string {
	return b.name
}

func (b *Bounds) Observe(x dynamo.State, t float64) {
	b.samples++
	for _, val := range x {
		if val < b.lower || val > b.upper {
			b.violations++
			break
		}
	}
}

func (b *Bounds) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Bounds) Violations() int { return b.violations }

func (b *Bounds) Reset() {
	b.violations = 0
	b.samples = 0
}
