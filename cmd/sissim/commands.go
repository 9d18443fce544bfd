package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/sissim/internal/analysis"
	"github.com/san-kum/sissim/internal/automation"
	"github.com/san-kum/sissim/internal/config"
	"github.com/san-kum/sissim/internal/experiment"
	"github.com/san-kum/sissim/internal/storage"
	"github.com/san-kum/sissim/internal/viz"
)

func newCompareCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare integrators against the closed form",
		Long:  "Solves the configured model with each integrator (all of them by default) and reports the error against the closed-form solution.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.resolve(cmd)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = experiment.NewRegistry().ListIntegrators()
			}

			cs, err := experiment.Compare(cmd.Context(), cfg, args, o.logger())
			if err != nil {
				return err
			}
			return experiment.WriteComparison(cmd.OutOrStdout(), cs)
		},
	}
}

func newSweepCmd(o *options) *cobra.Command {
	var (
		minRate, maxRate, horizon float64
		steps, workers            int
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep the growth rate across the epidemic threshold",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.resolve(cmd)
			if err != nil {
				return err
			}

			points, err := analysis.Sweep(cmd.Context(), analysis.SweepConfig{
				Params:     cfg.Params(),
				Min:        minRate,
				Max:        maxRate,
				Steps:      steps,
				Horizon:    horizon,
				Sim:        cfg.SimConfig(),
				Integrator: cfg.Solver.Integrator,
				Workers:    workers,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if err := analysis.WriteSweep(w, points); err != nil {
				return err
			}
			fmt.Fprintf(w, "\nfirst endemic growth rate: %.4f (recovery rate %.4f)\n\n",
				analysis.Threshold(points, cfg.Model.Population), cfg.Model.RecoveryRate)
			fmt.Fprintln(w, analysis.SweepToASCII(points, cfg.Output.Width, cfg.Output.Height))
			return nil
		},
	}

	cmd.Flags().Float64Var(&minRate, "min", 0, "lowest growth rate")
	cmd.Flags().Float64Var(&maxRate, "max", 0.5, "highest growth rate")
	cmd.Flags().IntVar(&steps, "steps", 26, "number of growth rates")
	cmd.Flags().Float64Var(&horizon, "horizon", 365, "days solved per growth rate")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent solves (0 = one per CPU)")
	return cmd
}

func newScenarioCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of solves from a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := o.resolve(cmd)
			if err != nil {
				return err
			}
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}

			save := func(cfg *config.Config, out *experiment.Outcome) error {
				st := storage.New(cfg.Output.DataDir)
				if err := st.Init(); err != nil {
					return err
				}
				runID, err := st.Save(out, cfg.Grid.FinalTime, cfg.Grid.Increment)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "run id: %s\n", runID)
				return nil
			}

			results, err := automation.RunScenario(cmd.Context(), sc, base, o.logger(), save)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if sc.Description != "" {
				fmt.Fprintf(w, "%s: %s\n\n", sc.Name, sc.Description)
			}
			return automation.WriteResults(w, results)
		},
	}
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tGROWTH\tRECOVERY\tPOPULATION\tINFECTED\tDAYS\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t%g\t%s\n",
					name, p.Model.GrowthRate, p.Model.RecoveryRate, p.Model.Population,
					p.Model.InitialInfected, p.Grid.FinalTime, p.Description)
			}
			return w.Flush()
		},
	}
}

func newConfigCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "print the resolved configuration as yaml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.resolve(cmd)
			if err != nil {
				return err
			}
			out, err := config.Dump(cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func (o *options) store(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := o.resolve(cmd)
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.Output.DataDir), nil
}

func newListCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := o.store(cmd)
			if err != nil {
				return err
			}
			runs, err := st.List()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "no runs found")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tGROWTH\tRECOVERY\tPOPULATION\tDAYS\tINTEG\tSTEPS")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%g\t%g\t%s\t%d\n",
					run.ID,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Params.GrowthRate,
					run.Params.RecoveryRate,
					run.Params.Population,
					run.FinalTime,
					run.Integrator,
					run.Steps,
				)
			}
			return w.Flush()
		},
	}
}

func newPlotCmd(o *options) *cobra.Command {
	var width, height int

	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := o.store(cmd)
			if err != nil {
				return err
			}
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			tr, err := st.LoadTrajectory(args[0])
			if err != nil {
				return err
			}

			times, susceptible, infected := tr.Series()
			chart, err := viz.RenderChart(
				viz.Series{Times: times, Susceptible: susceptible, Infected: infected},
				viz.ChartOptions{Width: width, Height: height},
			)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  λ=%g γ=%g N=%g I0=%g  %s\n\n", meta.ID,
				meta.Params.GrowthRate, meta.Params.RecoveryRate, meta.Params.Population,
				meta.Params.InitialInfected, meta.Integrator)
			fmt.Fprintln(out, chart)
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", config.DefaultWidth, "chart width")
	cmd.Flags().IntVar(&height, "height", config.DefaultHeight, "chart height")
	return cmd
}

func newExportCSVCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a saved trajectory to CSV on stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := o.store(cmd)
			if err != nil {
				return err
			}
			return st.ExportCSV(cmd.OutOrStdout(), args[0])
		},
	}
}

func newExportJSONCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a saved run to JSON on stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := o.store(cmd)
			if err != nil {
				return err
			}
			return st.ExportJSON(cmd.OutOrStdout(), args[0])
		},
	}
}
