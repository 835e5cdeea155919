package sim

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/sphsim/internal/dynamo"
	"github.com/san-kum/sphsim/internal/particles"
)

// Simulator owns a particle system and runs it through a Stepper, handing
// every tick to a Sink. The system never leaves the goroutine calling Run.
type Simulator struct {
	stepper   Stepper
	sys       *particles.System
	metrics   []Metric
	observers []Observer
	logger    *log.Logger
}

func New(stepper Stepper, sys *particles.System, logger *log.Logger) *Simulator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Simulator{
		stepper:   stepper,
		sys:       sys,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    logger,
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Particles() int { return s.sys.Len() }

// Run steps until the sink reports the consumer gone, cfg.MaxTicks is
// reached, or ctx ends. The sink's send side is closed on return.
//
// A departed consumer is a normal way to finish: Run returns a nil error and
// Result.Reason == StopConsumerGone.
func (s *Simulator) Run(ctx context.Context, sink Sink, cfg RunConfig) (*Result, error) {
	defer sink.CloseSend()

	for _, m := range s.metrics {
		m.Reset()
	}

	result := &Result{Metrics: make(map[string]float64)}
	defer s.collect(result, sink)

	start := time.Now()
	s.logger.Info("simulation started",
		"particles", s.sys.Len(),
		"kernel", s.stepper.KernelName(),
		"h", s.stepper.H(),
		"dt", s.stepper.Dt(),
		"max_ticks", cfg.MaxTicks,
	)
	defer func() {
		s.logger.Info("simulation stopped",
			"reason", result.Reason,
			"ticks", result.Ticks,
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
	}()

	for {
		if cfg.MaxTicks > 0 && result.Ticks >= cfg.MaxTicks {
			result.Reason = StopMaxTicks
			return result, nil
		}
		select {
		case <-ctx.Done():
			result.Reason = StopCanceled
			return result, ctx.Err()
		default:
		}

		snap := s.stepper.Step(s.sys)

		if cfg.ValidateState && !s.sys.IsFinite() {
			result.Reason = StopUnstable
			return result, &dynamo.SimulationError{Tick: snap.Tick, Time: snap.Time, Wrapped: dynamo.ErrUnstable}
		}

		for _, m := range s.metrics {
			m.Observe(s.sys, snap)
		}
		for _, obs := range s.observers {
			obs.OnStep(snap)
		}

		if err := sink.Send(ctx, snap); err != nil {
			switch {
			case errors.Is(err, dynamo.ErrConsumerGone):
				result.Reason = StopConsumerGone
				return result, nil
			case ctx.Err() != nil:
				result.Reason = StopCanceled
				return result, ctx.Err()
			default:
				return result, &dynamo.SimulationError{Tick: snap.Tick, Time: snap.Time, Wrapped: err}
			}
		}

		result.Ticks++
		result.Time = snap.Time
		s.logger.Debug("tick", "tick", snap.Tick, "t", snap.Time)
	}
}

type dropCounter interface {
	Dropped() uint64
}

func (s *Simulator) collect(result *Result, sink Sink) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	if dc, ok := sink.(dropCounter); ok {
		result.Dropped = dc.Dropped()
		if result.Dropped > 0 {
			s.logger.Warn("snapshots dropped", "count", result.Dropped)
		}
	}
}
