package metrics

import (
	"github.com/san-kum/sphsim/internal/dynamo"
	"github.com/san-kum/sphsim/internal/particles"
)

// Stability is the fraction of ticks in which every particle stayed finite
// and within bound of the origin.
type Stability struct {
	bound      float64
	violations int
	samples    int
}

func NewStability(bound float64) *Stability {
	return &Stability{bound: bound}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(_ *particles.System, snap dynamo.Snapshot) {
	s.samples++
	b2 := s.bound * s.bound
	for _, r := range snap.Records {
		if !r.Position.IsFinite() || r.Position.Norm2() > b2 {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
