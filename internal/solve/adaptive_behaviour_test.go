package solve_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/JP-Ellis/desir/internal/ode"
	"github.com/JP-Ellis/desir/internal/solve"
	"github.com/JP-Ellis/desir/internal/tableau"
)

var _ = Describe("adaptive solving", func() {
	var (
		cfg   ode.Config
		decay ode.Field
	)

	BeforeEach(func() {
		cfg = ode.DefaultConfig()
		decay = ode.FieldFunc(1, func(t float64, y ode.State) (ode.State, error) {
			return ode.State{-y[0]}, nil
		})
	})

	It("tracks the analytic solution within tolerance", func() {
		s, err := solve.NewEmbedded(decay, tableau.DormandPrince(), cfg)
		Expect(err).NotTo(HaveOccurred())

		res, err := s.Run(context.Background(), 0, ode.State{1}, 3)
		Expect(err).NotTo(HaveOccurred())

		final, ok := res.Final()
		Expect(ok).To(BeTrue())
		Expect(final.T).To(Equal(3.0))
		Expect(final.Y[0]).To(BeNumerically("~", math.Exp(-3), 1e-4))
	})

	It("produces monotonically increasing sample times", func() {
		s, err := solve.NewEmbedded(decay, tableau.Tsit5(), cfg)
		Expect(err).NotTo(HaveOccurred())

		res, err := s.Run(context.Background(), 0, ode.State{1}, 2)
		Expect(err).NotTo(HaveOccurred())

		for i := 1; i < len(res.Times); i++ {
			Expect(res.Times[i]).To(BeNumerically(">", res.Times[i-1]))
		}
	})

	It("takes fewer steps when tolerances are loosened", func() {
		tight := cfg
		tight.AbsTol, tight.RelTol = 1e-10, 1e-8
		loose := cfg
		loose.AbsTol, loose.RelTol = 1e-4, 1e-2

		run := func(c ode.Config) int {
			s, err := solve.NewEmbedded(decay, tableau.DormandPrince(), c)
			Expect(err).NotTo(HaveOccurred())
			res, err := s.Run(context.Background(), 0, ode.State{1}, 5)
			Expect(err).NotTo(HaveOccurred())
			return res.Stats.Steps
		}

		Expect(run(loose)).To(BeNumerically("<", run(tight)))
	})

	It("keeps rejected attempts out of the trajectory", func() {
		// A sharp transient forces rejections early on.
		stiffish := ode.FieldFunc(1, func(t float64, y ode.State) (ode.State, error) {
			return ode.State{-50 * (y[0] - math.Cos(t))}, nil
		})
		cfg.InitialStep = 0.5

		s, err := solve.NewEmbedded(stiffish, tableau.BS32(), cfg)
		Expect(err).NotTo(HaveOccurred())

		res, err := s.Run(context.Background(), 0, ode.State{0}, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Stats.Rejected).To(BeNumerically(">", 0))
		Expect(res.Stats.Steps).To(Equal(len(res.Times) - 1))
	})
})

var _ = Describe("lazy sessions", func() {
	It("computes nothing until pulled", func() {
		evals := 0
		field := ode.FieldFunc(1, func(t float64, y ode.State) (ode.State, error) {
			evals++
			return ode.State{-y[0]}, nil
		})

		s, err := solve.NewSolver(field, tableau.RK4(), ode.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())

		sess, err := s.Start(0, ode.State{1}, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(evals).To(BeZero())

		_, ok, err := sess.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(evals).To(BeZero(), "the initial sample is free")

		_, ok, err = sess.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(evals).To(Equal(4), "one rk4 step costs four evaluations")
	})
})
