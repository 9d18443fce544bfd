package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/san-kum/sissim/internal/config"
	"github.com/san-kum/sissim/internal/experiment"
	"github.com/san-kum/sissim/internal/export"
	"github.com/san-kum/sissim/internal/logging"
	"github.com/san-kum/sissim/internal/report"
	"github.com/san-kum/sissim/internal/storage"
	"github.com/san-kum/sissim/internal/viz"
)

type options struct {
	configFile string
	preset     string
	verbose    bool
	noShow     bool
	noPlot     bool
}

func newRootCmd() *cobra.Command {
	o := &options{}
	defaults := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:          "sissim",
		Short:        "SIS epidemic solver",
		Long:         "Integrates the SIS epidemic model, compares it with the closed-form solution and plots susceptible and infected over time.",
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         o.runPipeline,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&o.configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&o.preset, "preset", "", "use preset configuration")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "debug logging on stderr")
	pf.String("data", defaults.Output.DataDir, "data directory")

	pf.Float64("growth-rate", defaults.Model.GrowthRate, "infection growth rate λ per day")
	pf.Float64("recovery-rate", defaults.Model.RecoveryRate, "recovery rate γ per day")
	pf.Float64("population", defaults.Model.Population, "population N")
	pf.Float64("initial-infected", defaults.Model.InitialInfected, "infected at day 0")
	pf.Float64("final-time", defaults.Grid.FinalTime, "last day reported")
	pf.Float64("increment", defaults.Grid.Increment, "days between report rows")
	pf.String("integrator", defaults.Solver.Integrator, "integrator (euler, rk4, rk45)")
	pf.Float64("dt", defaults.Solver.Dt, "initial or fixed step size in days")
	pf.Float64("tol", defaults.Solver.Tolerance, "local error tolerance for rk45")
	pf.Int("max-steps", defaults.Solver.MaxSteps, "step budget before giving up")

	f := rootCmd.Flags()
	f.Int("width", defaults.Output.Width, "terminal chart width")
	f.Int("height", defaults.Output.Height, "terminal chart height")
	f.String("png", "", "also write the chart as PNG")
	f.String("svg", "", "also write the chart as SVG")
	f.Bool("save", false, "store the run in the data directory")
	f.Bool("summary", false, "print error and epidemic summary")
	f.Bool("color", false, "color the terminal chart")
	f.BoolVar(&o.noShow, "no-show", false, "print a static chart instead of the viewer")
	f.BoolVar(&o.noPlot, "no-plot", false, "skip the chart")

	rootCmd.AddCommand(
		newCompareCmd(o),
		newSweepCmd(o),
		newScenarioCmd(o),
		newPresetsCmd(),
		newConfigCmd(o),
		newListCmd(o),
		newPlotCmd(o),
		newExportCSVCmd(o),
		newExportJSONCmd(o),
	)
	return rootCmd
}

func (o *options) logger() logr.Logger {
	return logging.NewLogger(o.verbose)
}

func (o *options) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Resolve(o.configFile, o.preset, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if o.noShow {
		cfg.Output.Show = false
	}
	if o.noPlot {
		cfg.Output.Plot = false
	}
	return cfg, nil
}

func (o *options) runPipeline(cmd *cobra.Command, _ []string) error {
	cfg, err := o.resolve(cmd)
	if err != nil {
		return err
	}
	logger := o.logger()

	out, err := experiment.New(cfg, logger).Run(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if err := report.WriteBanner(w, version); err != nil {
		return err
	}
	if err := report.WriteTable(w, out.Rows); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, report.Done); err != nil {
		return err
	}

	if cfg.Output.Summary {
		if err := report.WriteSummary(w, out.Summary); err != nil {
			return err
		}
	}

	series := viz.Series{Times: out.Times, Susceptible: out.Susceptible, Infected: out.Infected}
	if cfg.Output.Plot {
		if err := plot(w, series, out, cfg); err != nil {
			return err
		}
	}

	images := []struct {
		path   string
		format export.Format
	}{
		{cfg.Output.PNG, export.PNG},
		{cfg.Output.SVG, export.SVG},
	}
	for _, img := range images {
		if img.path == "" {
			continue
		}
		if err := export.WriteFile(img.path, img.format, series, "SIS"); err != nil {
			return err
		}
		logger.Info("Wrote chart", "path", img.path, "format", img.format)
	}

	if cfg.Output.Save {
		st := storage.New(cfg.Output.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(out, cfg.Grid.FinalTime, cfg.Grid.Increment)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "run id: %s\n", runID)
	}
	return nil
}

func plot(w io.Writer, series viz.Series, out *experiment.Outcome, cfg *config.Config) error {
	opts := viz.ChartOptions{Width: cfg.Output.Width, Height: cfg.Output.Height, Color: cfg.Output.Color}

	if cfg.Output.Show && interactive(w) {
		return viz.Show(series, report.Title, footer(out), opts)
	}

	chart, err := viz.RenderChart(series, opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, chart)
	return nil
}

func footer(out *experiment.Outcome) string {
	parts := []string{
		viz.Metric("R0", fmt.Sprintf("%.3f", out.Params.ReproductionNumber())),
		viz.Metric("I*", fmt.Sprintf("%.1f", out.Summary.Equilibrium)),
		viz.Metric("peak", fmt.Sprintf("%.1f on day %g",
			out.Result.Metrics[experiment.MetricPeakInfected], out.Result.Metrics[experiment.MetricPeakDay])),
	}
	if out.Summary.UndefinedErrors > 0 {
		parts = append(parts, viz.Warning.Render(fmt.Sprintf("%d undefined errors", out.Summary.UndefinedErrors)))
	}
	return strings.Join(parts, "  ") + "\n" + viz.SparklineChart(out.Infected, 60)
}

// interactive reports whether w is a terminal and input can reach the viewer.
func interactive(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	isTerm := func(fd uintptr) bool { return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) }
	return isTerm(f.Fd()) && isTerm(os.Stdin.Fd())
}
