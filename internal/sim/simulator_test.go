package sim_test

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sphsim/internal/dynamo"
	"github.com/san-kum/sphsim/internal/kernel"
	"github.com/san-kum/sphsim/internal/particles"
	"github.com/san-kum/sphsim/internal/physics"
	"github.com/san-kum/sphsim/internal/sim"
	"github.com/san-kum/sphsim/internal/stream"
)

// countingStepper records how many ticks were computed.
type countingStepper struct {
	*physics.Stepper[kernel.Poly6]
	steps atomic.Uint64
}

func (c *countingStepper) Step(sys *particles.System) dynamo.Snapshot {
	c.steps.Add(1)
	return c.Stepper.Step(sys)
}

type tickObserver struct{ ticks []uint64 }

func (o *tickObserver) OnStep(snap dynamo.Snapshot) { o.ticks = append(o.ticks, snap.Tick) }

type massMetric struct{ total float64 }

func (m *massMetric) Name() string { return "mass" }
func (m *massMetric) Observe(sys *particles.System, _ dynamo.Snapshot) {
	m.total = sys.TotalMass()
}
func (m *massMetric) Value() float64 { return m.total }
func (m *massMetric) Reset()         { m.total = 0 }

func newSystem(n int) *particles.System {
	l := particles.DefaultLayout()
	l.N = n
	sys, err := l.Build()
	Expect(err).NotTo(HaveOccurred())
	return sys
}

func newStepper() *countingStepper {
	st, err := physics.New[kernel.Poly6](0.5, 0.01, physics.Options{})
	Expect(err).NotTo(HaveOccurred())
	return &countingStepper{Stepper: st}
}

var _ = Describe("Simulator", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("stops after MaxTicks and closes the sink", func() {
		h := stream.New(0, stream.Unbounded)
		s := sim.New(newStepper(), newSystem(20), nil)

		res, err := s.Run(ctx, h, sim.RunConfig{MaxTicks: 10})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Reason).To(Equal(sim.StopMaxTicks))
		Expect(res.Ticks).To(BeEquivalentTo(10))
		Expect(res.Time).To(BeNumerically("~", 0.1, 1e-12))
		Expect(h.Len()).To(Equal(10))

		for i := uint64(1); i <= 10; i++ {
			snap, err := h.Receive(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Tick).To(Equal(i))
			Expect(snap.Len()).To(Equal(20))
		}
		_, err = h.Receive(ctx)
		Expect(errors.Is(err, dynamo.ErrProducerGone)).To(BeTrue())
	})

	It("stops producing once the consumer is gone", func() {
		h := stream.New(1, stream.Block)
		st := newStepper()
		s := sim.New(st, newSystem(10), nil)

		done := make(chan *sim.Result, 1)
		go func() {
			defer GinkgoRecover()
			res, err := s.Run(ctx, h, sim.RunConfig{})
			Expect(err).NotTo(HaveOccurred())
			done <- res
		}()

		for i := 0; i < 3; i++ {
			_, err := h.Receive(ctx)
			Expect(err).NotTo(HaveOccurred())
		}
		h.CloseReceive()

		var res *sim.Result
		Eventually(done).Should(Receive(&res))
		Expect(res.Reason).To(Equal(sim.StopConsumerGone))

		steps := st.steps.Load()
		Expect(steps).To(BeNumerically("<=", 3+1+1))
		Consistently(st.steps.Load, 30*time.Millisecond).Should(Equal(steps))
	})

	It("reports snapshots the sink dropped", func() {
		h := stream.New(2, stream.DropOldest)
		s := sim.New(newStepper(), newSystem(5), nil)

		res, err := s.Run(ctx, h, sim.RunConfig{MaxTicks: 5})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Dropped).To(BeEquivalentTo(3))

		snap, err := h.Receive(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(snap.Tick).To(BeEquivalentTo(4))
	})

	It("returns the context error when canceled", func() {
		cctx, cancel := context.WithCancel(ctx)
		h := stream.New(1, stream.Block)
		s := sim.New(newStepper(), newSystem(5), nil)

		errc := make(chan error, 1)
		go func() {
			_, err := s.Run(cctx, h, sim.RunConfig{})
			errc <- err
		}()

		_, err := h.Receive(ctx)
		Expect(err).NotTo(HaveOccurred())
		cancel()
		Eventually(errc).Should(Receive(MatchError(context.Canceled)))
	})

	It("reports metrics and notifies observers in tick order", func() {
		sys := newSystem(15)
		s := sim.New(newStepper(), sys, nil)
		obs := &tickObserver{}
		s.AddObserver(obs)
		s.AddMetric(&massMetric{})

		res, err := s.Run(ctx, sim.Discard, sim.RunConfig{MaxTicks: 4})
		Expect(err).NotTo(HaveOccurred())
		Expect(obs.ticks).To(Equal([]uint64{1, 2, 3, 4}))
		Expect(res.Metrics).To(HaveKeyWithValue("mass", 15.0))
	})

	It("flags numerical blow-up when validation is on", func() {
		sys, err := particles.New(
			[]float64{1},
			[]dynamo.Vec3{{0, 0, 0}},
			[]dynamo.Vec3{{math.Inf(1), 0, 0}},
			[]dynamo.Vec3{{}},
		)
		Expect(err).NotTo(HaveOccurred())
		s := sim.New(newStepper(), sys, nil)

		res, err := s.Run(ctx, sim.Discard, sim.RunConfig{MaxTicks: 3, ValidateState: true})
		Expect(errors.Is(err, dynamo.ErrUnstable)).To(BeTrue())
		Expect(res.Reason).To(Equal(sim.StopUnstable))
	})

	It("runs identically twice from the same layout", func() {
		collect := func() []dynamo.Snapshot {
			h := stream.New(0, stream.Unbounded)
			s := sim.New(newStepper(), newSystem(30), nil)
			_, err := s.Run(ctx, h, sim.RunConfig{MaxTicks: 15})
			Expect(err).NotTo(HaveOccurred())
			var out []dynamo.Snapshot
			for {
				snap, err := h.Receive(ctx)
				if err != nil {
					break
				}
				out = append(out, snap)
			}
			return out
		}
		Expect(collect()).To(Equal(collect()))
	})
})

var _ = Describe("Ensemble", func() {
	It("runs one independent member per seed", func() {
		build := func(seed uint64) (*sim.Simulator, error) {
			l := particles.DefaultLayout()
			l.N = 10
			l.Seed = seed
			sys, err := l.Build()
			if err != nil {
				return nil, err
			}
			st, err := physics.New[kernel.Poly6](0.5, 0.01, physics.Options{})
			if err != nil {
				return nil, err
			}
			return sim.New(st, sys, nil), nil
		}

		results, err := sim.NewEnsemble(build, 3, 1).Run(context.Background(), sim.RunConfig{MaxTicks: 5})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		for _, r := range results {
			Expect(r.Ticks).To(BeEquivalentTo(5))
		}
	})

	It("surfaces build failures", func() {
		build := func(uint64) (*sim.Simulator, error) { return nil, dynamo.ErrNoParticles }
		_, err := sim.NewEnsemble(build, 2, 0).Run(context.Background(), sim.RunConfig{MaxTicks: 1})
		Expect(err).To(MatchError(dynamo.ErrNoParticles))
	})
})
