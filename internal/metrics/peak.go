package metrics

import (
	"math"

	"github.com/san-kum/sissim/internal/dynamo"
)

// Peak tracks the largest value of one state component and when it occurred.
type Peak struct {
	name  string
	index int
	peak  float64
	at    float64
	seen  bool
}

func NewPeak(name string, index int) *Peak {
	return &Peak{name: name, index: index}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(x dynamo.State, t float64) {
	if p.index >= len(x) {
		return
	}
	if !p.seen || x[p.index] > p.peak {
		p.peak = x[p.index]
		p.at = t
		p.seen = true
	}
}

func (p *Peak) Value() float64 {
	if !p.seen {
		return math.NaN()
	}
	return p.peak
}

// Time returns when the peak was observed.
func (p *Peak) Time() float64 { return p.at }

func (p *Peak) Reset() {
	p.peak = 0
	p.at = 0
	p.seen = false
}

// PeakTime exposes the time of a Peak as its own metric.
type PeakTime struct {
	name string
	peak *Peak
}

func NewPeakTime(name string, peak *Peak) *PeakTime {
	return &PeakTime{name: name, peak: peak}
}

func (p *PeakTime) Name() string                      { return p.name }
func (p *PeakTime) Observe(x dynamo.State, t float64) {}
func (p *PeakTime) Value() float64                    { return p.peak.Time() }
func (p *PeakTime) Reset()                            {}

// Final records the last observed value of one state component.
type Final struct {
	name  string
	index int
	value float64
}

func NewFinal(name string, index int) *Final {
	return &Final{name: name, index: index, value: math.NaN()}
}

func (f *Final) Name() string { return f.name }

func (f *Final) Observe(x dynamo.State, t float64) {
	if f.index < len(x) {
		f.value = x[f.index]
	}
}

func (f *Final) Value() float64 { return f.value }

func (f *Final) Reset() { f.value = math.NaN() }
