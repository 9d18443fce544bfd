package experiment

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/go-logr/logr"

	"github.com/san-kum/sissim/internal/config"
)

// Comparison is the accuracy of one integrator against the closed form.
type Comparison struct {
	Integrator   string
	MaxAbsError  float64
	MeanAbsError float64
	Steps        int
	Rejected     int
	Elapsed      time.Duration
}

// Compare solves the same configuration with each named integrator. Runs are
// sequential so the timings are comparable.
func Compare(ctx context.Context, cfg *config.Config, names []string, logger logr.Logger) ([]Comparison, error) {
	out := make([]Comparison, 0, len(names))
	for _, name := range names {
		c := *cfg
		c.Solver.Integrator = name

		o, err := New(&c, logger).Run(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, Comparison{
			Integrator:   name,
			MaxAbsError:  o.Summary.MaxAbsError,
			MeanAbsError: o.Summary.MeanAbsError,
			Steps:        o.Result.StepsTaken,
			Rejected:     o.Result.Rejected,
			Elapsed:      o.Elapsed,
		})
	}
	return out, nil
}

func WriteComparison(w io.Writer, cs []Comparison) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "integrator\tmax |error|\tmean |error|\tsteps\trejected\ttime")
	for _, c := range cs {
		fmt.Fprintf(tw, "%s\t%.4E\t%.4E\t%d\t%d\t%v\n",
			c.Integrator, c.MaxAbsError, c.MeanAbsError, c.Steps, c.Rejected, c.Elapsed.Round(time.Microsecond))
	}
	return tw.Flush()
}
