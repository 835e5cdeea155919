package stream_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sphsim/internal/dynamo"
	"github.com/san-kum/sphsim/internal/stream"
)

func snap(tick uint64) dynamo.Snapshot {
	return dynamo.Snapshot{Tick: tick, Records: []dynamo.Record{{Density: float64(tick)}}}
}

var _ = Describe("Handoff", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("delivers snapshots in FIFO order", func() {
		h := stream.New(8, stream.Block)
		for i := uint64(1); i <= 5; i++ {
			Expect(h.Send(ctx, snap(i))).To(Succeed())
		}
		Expect(h.Len()).To(Equal(5))

		for i := uint64(1); i <= 5; i++ {
			s, err := h.Receive(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Tick).To(Equal(i))
		}
	})

	It("drains buffered snapshots before reporting the producer gone", func() {
		h := stream.New(4, stream.Block)
		Expect(h.Send(ctx, snap(1))).To(Succeed())
		Expect(h.Send(ctx, snap(2))).To(Succeed())
		h.CloseSend()

		s, err := h.Receive(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Tick).To(BeEquivalentTo(1))
		s, err = h.Receive(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Tick).To(BeEquivalentTo(2))

		_, err = h.Receive(ctx)
		Expect(errors.Is(err, dynamo.ErrProducerGone)).To(BeTrue())
	})

	It("fails every send once the consumer is gone", func() {
		h := stream.New(4, stream.Unbounded)
		Expect(h.Send(ctx, snap(1))).To(Succeed())
		h.CloseReceive()

		Expect(h.Send(ctx, snap(2))).To(MatchError(dynamo.ErrConsumerGone))
		Expect(h.Send(ctx, snap(3))).To(MatchError(dynamo.ErrConsumerGone))
		Expect(h.Len()).To(BeZero())
	})

	It("tolerates closing either side twice", func() {
		h := stream.New(1, stream.Block)
		h.CloseSend()
		h.CloseSend()
		h.CloseReceive()
		h.CloseReceive()
		Eventually(h.Done()).Should(BeClosed())
	})

	Context("with the block policy", func() {
		It("blocks the producer until the consumer makes room", func() {
			h := stream.New(2, stream.Block)
			Expect(h.Send(ctx, snap(1))).To(Succeed())
			Expect(h.Send(ctx, snap(2))).To(Succeed())

			sent := make(chan error, 1)
			go func() {
				defer GinkgoRecover()
				sent <- h.Send(ctx, snap(3))
			}()
			Consistently(sent, 50*time.Millisecond).ShouldNot(Receive())

			s, err := h.Receive(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Tick).To(BeEquivalentTo(1))
			Eventually(sent).Should(Receive(BeNil()))
			Expect(h.Dropped()).To(BeZero())
		})

		It("releases a blocked producer when the consumer leaves", func() {
			h := stream.New(1, stream.Block)
			Expect(h.Send(ctx, snap(1))).To(Succeed())

			sent := make(chan error, 1)
			go func() {
				defer GinkgoRecover()
				sent <- h.Send(ctx, snap(2))
			}()
			Consistently(sent, 20*time.Millisecond).ShouldNot(Receive())

			h.CloseReceive()
			var err error
			Eventually(sent).Should(Receive(&err))
			Expect(errors.Is(err, dynamo.ErrConsumerGone)).To(BeTrue())
		})

		It("gives up when the context ends", func() {
			h := stream.New(1, stream.Block)
			Expect(h.Send(ctx, snap(1))).To(Succeed())

			cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
			defer cancel()
			Expect(h.Send(cctx, snap(2))).To(MatchError(context.DeadlineExceeded))
		})
	})

	Context("with the drop-oldest policy", func() {
		It("evicts the oldest snapshot and counts it", func() {
			h := stream.New(2, stream.DropOldest)
			for i := uint64(1); i <= 5; i++ {
				Expect(h.Send(ctx, snap(i))).To(Succeed())
			}
			Expect(h.Dropped()).To(BeEquivalentTo(3))
			Expect(h.Sent()).To(BeEquivalentTo(5))

			s, _ := h.Receive(ctx)
			Expect(s.Tick).To(BeEquivalentTo(4))
			s, _ = h.Receive(ctx)
			Expect(s.Tick).To(BeEquivalentTo(5))
		})
	})

	Context("with the unbounded policy", func() {
		It("never blocks the producer", func() {
			h := stream.New(1, stream.Unbounded)
			for i := uint64(0); i < 1000; i++ {
				Expect(h.Send(ctx, snap(i))).To(Succeed())
			}
			Expect(h.Len()).To(Equal(1000))
		})
	})

	It("wakes a waiting consumer", func() {
		h := stream.New(4, stream.Block)
		got := make(chan dynamo.Snapshot, 1)
		go func() {
			defer GinkgoRecover()
			s, err := h.Receive(ctx)
			Expect(err).NotTo(HaveOccurred())
			got <- s
		}()

		Consistently(got, 20*time.Millisecond).ShouldNot(Receive())
		Expect(h.Send(ctx, snap(7))).To(Succeed())

		var s dynamo.Snapshot
		Eventually(got).Should(Receive(&s))
		Expect(s.Tick).To(BeEquivalentTo(7))
	})

	It("streams every tick across goroutines without loss", func() {
		h := stream.New(4, stream.Block)
		const ticks = 500

		go func() {
			defer GinkgoRecover()
			defer h.CloseSend()
			for i := uint64(1); i <= ticks; i++ {
				Expect(h.Send(ctx, snap(i))).To(Succeed())
			}
		}()

		var next uint64 = 1
		for {
			s, err := h.Receive(ctx)
			if errors.Is(err, dynamo.ErrProducerGone) {
				break
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Tick).To(Equal(next))
			next++
		}
		Expect(next).To(BeEquivalentTo(ticks + 1))
	})

	It("supports non-blocking receives", func() {
		h := stream.New(2, stream.Block)
		_, ok := h.TryReceive()
		Expect(ok).To(BeFalse())

		Expect(h.Send(ctx, snap(1))).To(Succeed())
		s, ok := h.TryReceive()
		Expect(ok).To(BeTrue())
		Expect(s.Tick).To(BeEquivalentTo(1))
	})
})

var _ = DescribeTable("ParsePolicy",
	func(in string, want stream.Policy, ok bool) {
		p, err := stream.ParsePolicy(in)
		if !ok {
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
			return
		}
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(want))
		Expect(p.String()).NotTo(BeEmpty())
	},
	Entry("default", "", stream.Block, true),
	Entry("block", "block", stream.Block, true),
	Entry("drop-oldest", "drop-oldest", stream.DropOldest, true),
	Entry("unbounded", "unbounded", stream.Unbounded, true),
	Entry("unknown", "lossy", stream.Block, false),
)
