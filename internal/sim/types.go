package sim

import (
	"context"

	"github.com/san-kum/sphsim/internal/dynamo"
	"github.com/san-kum/sphsim/internal/particles"
)

// Stepper advances a particle system by one tick.
type Stepper interface {
	Step(sys *particles.System) dynamo.Snapshot
	Dt() float64
	H() float64
	KernelName() string
}

// Sink receives one snapshot per tick. Send returning dynamo.ErrConsumerGone
// ends the run.
type Sink interface {
	Send(ctx context.Context, snap dynamo.Snapshot) error
	CloseSend()
}

// Metric accumulates a scalar over the ticks of a run. Observe runs on the
// simulation goroutine and must not modify sys or snap.
type Metric interface {
	Name() string
	Observe(sys *particles.System, snap dynamo.Snapshot)
	Value() float64
	Reset()
}

// Observer is told about every tick before it is sent.
type Observer interface {
	OnStep(snap dynamo.Snapshot)
}

type RunConfig struct {
	// MaxTicks stops the run after that many ticks; 0 runs until the
	// consumer leaves or ctx ends.
	MaxTicks uint64
	// ValidateState stops the run with dynamo.ErrUnstable on NaN/Inf.
	ValidateState bool
}

type StopReason string

const (
	StopConsumerGone StopReason = "consumer-gone"
	StopMaxTicks     StopReason = "max-ticks"
	StopCanceled     StopReason = "canceled"
	StopUnstable     StopReason = "unstable"
)

type Result struct {
	Ticks   uint64
	Time    float64
	Reason  StopReason
	Metrics map[string]float64
	// Dropped counts snapshots the sink discarded, when it reports them.
	Dropped uint64
}

// Discard is a Sink that accepts and forgets every snapshot.
var Discard Sink = discard{}

type discard struct{}

func (discard) Send(context.Context, dynamo.Snapshot) error { return nil }
func (discard) CloseSend()                                  {}
