package report

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/sissim/internal/epidemic"
)

const (
	Title  = "SIS Model Differential Equation Solver"
	Header = " day, Susceptible, infectious,   formula,     error,    % infected "
	Done   = "All Done"

	// denominators at or below this magnitude leave the relative error undefined
	minDenominator = 1e-12
)

type Row struct {
	Day             float64 `json:"day"`
	Susceptible     float64 `json:"susceptible"`
	Infected        float64 `json:"infected"`
	Analytic        float64 `json:"analytic"`
	RelativeError   float64 `json:"relative_error"`
	ErrorDefined    bool    `json:"error_defined"`
	PercentInfected float64 `json:"percent_infected"`
}

// RelativeError returns (analytic − numeric)/analytic. ok is false when the
// analytic value is too close to zero for the ratio to mean anything.
func RelativeError(analytic, numeric float64) (float64, bool) {
	if math.Abs(analytic) <= minDenominator || math.IsNaN(analytic) || math.IsInf(analytic, 0) {
		return math.NaN(), false
	}
	e := (analytic - numeric) / analytic
	if math.IsNaN(e) || math.IsInf(e, 0) {
		return math.NaN(), false
	}
	return e, true
}

// Build computes one row per time point. times and infected must have the
// same length.
func Build(times, infected []float64, p epidemic.Params) ([]Row, error) {
	if len(times) != len(infected) {
		return nil, fmt.Errorf("report: %d times but %d infected values", len(times), len(infected))
	}

	rows := make([]Row, len(times))
	for i, t := range times {
		analytic := p.Analytic(t)
		relErr, ok := RelativeError(analytic, infected[i])
		rows[i] = Row{
			Day:             t,
			Susceptible:     p.Susceptible(infected[i]),
			Infected:        infected[i],
			Analytic:        analytic,
			RelativeError:   relErr,
			ErrorDefined:    ok,
			PercentInfected: infected[i] / p.Population * 100.0,
		}
	}
	return rows, nil
}

// Undefined counts rows whose relative error is flagged.
func Undefined(rows []Row) int {
	n := 0
	for _, r := range rows {
		if !r.ErrorDefined {
			n++
		}
	}
	return n
}

func (r Row) Format() string {
	errCol := fmt.Sprintf("%+8.4E", r.RelativeError)
	if !r.ErrorDefined {
		errCol = fmt.Sprintf("%11s", "undefined")
	}
	return fmt.Sprintf("%4.1f %11.1f %11.1f %11.1f    %s    %8.4f",
		r.Day, r.Susceptible, r.Infected, r.Analytic, errCol, r.PercentInfected)
}

// WriteBanner writes the title, version line and the blank line that
// precede the table.
func WriteBanner(w io.Writer, version string) error {
	_, err := fmt.Fprintf(w, "%s\nvs. %s\n\n", Title, version)
	return err
}

func WriteTable(w io.Writer, rows []Row) error {
	if _, err := fmt.Fprintln(w, Header); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintln(w, r.Format()); err != nil {
			return err
		}
	}
	return nil
}

type Summary struct {
	Equilibrium        float64 `json:"equilibrium"`
	ReproductionNumber float64 `json:"reproduction_number"`
	MaxAbsError        float64 `json:"max_abs_relative_error"`
	MeanAbsError       float64 `json:"mean_abs_relative_error"`
	UndefinedErrors    int     `json:"undefined_errors"`
	FinalInfected      float64 `json:"final_infected"`
	FinalPercent       float64 `json:"final_percent_infected"`
}

// Summarize aggregates the defined relative errors. Error statistics are NaN
// when no row has a defined error.
func Summarize(rows []Row, p epidemic.Params) Summary {
	s := Summary{
		Equilibrium:        p.Equilibrium(),
		ReproductionNumber: p.ReproductionNumber(),
		MaxAbsError:        math.NaN(),
		MeanAbsError:       math.NaN(),
		FinalInfected:      math.NaN(),
		FinalPercent:       math.NaN(),
	}
	if len(rows) == 0 {
		return s
	}

	abs := make([]float64, 0, len(rows))
	for _, r := range rows {
		if r.ErrorDefined {
			abs = append(abs, math.Abs(r.RelativeError))
		}
	}
	s.UndefinedErrors = len(rows) - len(abs)
	if len(abs) > 0 {
		s.MaxAbsError = floats.Max(abs)
		s.MeanAbsError = stat.Mean(abs, nil)
	}

	last := rows[len(rows)-1]
	s.FinalInfected = last.Infected
	s.FinalPercent = last.PercentInfected
	return s
}

func WriteSummary(w io.Writer, s Summary) error {
	_, err := fmt.Fprintf(w,
		"\nR0: %.4f\nequilibrium: %.1f\nfinal infected: %.1f (%.4f%%)\nmax |error|: %.4E\nmean |error|: %.4E\nundefined errors: %d\n",
		s.ReproductionNumber, s.Equilibrium, s.FinalInfected, s.FinalPercent, s.MaxAbsError, s.MeanAbsError, s.UndefinedErrors)
	return err
}
