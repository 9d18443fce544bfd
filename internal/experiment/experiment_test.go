package experiment

import (
	"context"
	"math"
	"strings"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sissim/internal/config"
	"github.com/san-kum/sissim/internal/logging"
)

func run(cfg *config.Config, logger logr.Logger) *Outcome {
	out, err := New(cfg, logger).Run(context.Background())
	Expect(err).NotTo(HaveOccurred())
	return out
}

var _ = Describe("Run", func() {
	var logger logr.Logger

	BeforeEach(func() {
		logger = logging.NewTestLogger(GinkgoWriter)
	})

	Context("with the default parameters", func() {
		var (
			cfg *config.Config
			out *Outcome
		)

		BeforeEach(func() {
			cfg = config.DefaultConfig()
			out = run(cfg, logger)
		})

		It("should sample every day including the final one", func() {
			Expect(out.Rows).To(HaveLen(91))
			Expect(out.Times[0]).To(Equal(0.0))
			Expect(out.Times[90]).To(Equal(90.0))
		})

		It("should conserve the population", func() {
			n := out.Params.Population
			for i := range out.Times {
				Expect(out.Susceptible[i]+out.Infected[i]).To(BeNumerically("~", n, 1e-9*n))
				Expect(out.Infected[i]).To(BeNumerically(">=", 0))
				Expect(out.Infected[i]).To(BeNumerically("<=", n))
			}
		})

		It("should start from the initial condition", func() {
			Expect(out.Infected[0]).To(Equal(out.Params.InitialInfected))
			Expect(out.Analytic[0]).To(BeNumerically("~", out.Params.InitialInfected, 1e-12*out.Params.Population))
		})

		It("should approach the endemic equilibrium", func() {
			eq := out.Params.Equilibrium()
			Expect(eq).To(BeNumerically("~", 48324.1, 0.1))
			last := out.Infected[len(out.Infected)-1]
			Expect(math.Abs(last-eq) / eq).To(BeNumerically("<", 1e-3))
		})

		It("should track the closed form", func() {
			for _, r := range out.Rows {
				Expect(r.ErrorDefined).To(BeTrue())
				Expect(math.Abs(r.RelativeError)).To(BeNumerically("<", 1e-3))
			}
			Expect(out.Summary.UndefinedErrors).To(BeZero())
		})

		It("should format the first row", func() {
			line := out.Rows[0].Format()
			Expect(line).To(HavePrefix(" 0.0     58498.4         1.6         1.6    "))
			Expect(line).To(HaveSuffix("0.0028"))
		})

		It("should report the peak and bounds metrics", func() {
			Expect(out.Result.Metrics[MetricPeakInfected]).To(BeNumerically(">", 48000))
			Expect(out.Result.Metrics[MetricBounds]).To(Equal(1.0))
			Expect(out.Result.Metrics[MetricFinalInfected]).To(Equal(out.Infected[90]))
		})

		It("should not depend on the output increment", func() {
			fine := *cfg
			fine.Grid.Increment = 0.5
			half := run(&fine, logger)

			Expect(half.Rows).To(HaveLen(181))
			for i, t := range out.Times {
				Expect(half.Times[2*i]).To(Equal(t))
				Expect(math.Abs(half.Infected[2*i]-out.Infected[i]) / out.Infected[i]).To(BeNumerically("<", 1e-6))
			}
		})
	})

	Context("when recovery outpaces infection", func() {
		It("should decay towards zero with defined errors", func() {
			out := run(config.GetPreset("die-out"), logger)

			Expect(out.Params.Endemic()).To(BeFalse())
			Expect(out.Infected[len(out.Infected)-1]).To(BeNumerically("<", out.Params.InitialInfected))
			Expect(out.Summary.UndefinedErrors).To(BeZero())
			Expect(out.Summary.MaxAbsError).To(BeNumerically("<", 1e-3))
		})
	})

	Context("at the epidemic threshold", func() {
		It("should flag every relative error instead of printing NaN", func() {
			out := run(config.GetPreset("threshold"), logger)

			Expect(out.Summary.UndefinedErrors).To(Equal(len(out.Rows)))
			for _, r := range out.Rows {
				Expect(r.Format()).To(ContainSubstring("undefined"))
				Expect(r.Infected).To(BeNumerically(">", 0))
			}
		})
	})

	Context("with invalid input", func() {
		It("should reject an unknown integrator", func() {
			cfg := config.DefaultConfig()
			cfg.Solver.Integrator = "leapfrog"
			_, err := New(cfg, logger).Run(context.Background())
			Expect(err).To(MatchError(ContainSubstring("unknown integrator")))
		})

		It("should reject invalid parameters", func() {
			cfg := config.DefaultConfig()
			cfg.Model.InitialInfected = 0
			_, err := New(cfg, logger).Run(context.Background())
			Expect(err).To(MatchError(config.ErrInvalidConfig))
		})

		It("should stop when the context is canceled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := New(config.DefaultConfig(), logger).Run(ctx)
			Expect(err).To(MatchError(context.Canceled))
		})
	})
})

var _ = Describe("Compare", func() {
	It("should rank the adaptive integrator above Euler", func() {
		cs, err := Compare(context.Background(), config.DefaultConfig(), []string{"euler", "rk4", "rk45"}, logr.Discard())
		Expect(err).NotTo(HaveOccurred())
		Expect(cs).To(HaveLen(3))

		byName := map[string]Comparison{}
		for _, c := range cs {
			byName[c.Integrator] = c
		}
		Expect(byName["rk45"].MaxAbsError).To(BeNumerically("<", byName["euler"].MaxAbsError))
		Expect(byName["rk4"].MaxAbsError).To(BeNumerically("<", byName["euler"].MaxAbsError))

		var sb strings.Builder
		Expect(WriteComparison(&sb, cs)).To(Succeed())
		Expect(sb.String()).To(ContainSubstring("rk45"))
	})
})

var _ = Describe("Registry", func() {
	It("should list the integrators in order", func() {
		Expect(NewRegistry().ListIntegrators()).To(Equal([]string{"euler", "rk4", "rk45"}))
		Expect(NewRegistry().ListModels()).To(Equal([]string{"sis"}))
	})
})
