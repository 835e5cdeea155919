// Package metrics provides sim.Metric implementations for SPH runs.
package metrics

import (
	"github.com/san-kum/sphsim/internal/dynamo"
	"github.com/san-kum/sphsim/internal/particles"
)

// MaxDensity tracks the largest particle density seen during a run.
type MaxDensity struct {
	max float64
}

func NewMaxDensity() *MaxDensity { return &MaxDensity{} }

func (m *MaxDensity) Name() string { return "density_max" }

func (m *MaxDensity) Observe(_ *particles.System, snap dynamo.Snapshot) {
	_, hi := snap.DensityRange()
	if hi > m.max {
		m.max = hi
	}
}

func (m *MaxDensity) Value() float64 { return m.max }
func (m *MaxDensity) Reset()         { m.max = 0 }

// MeanDensity averages the per-tick mean density over a run.
type MeanDensity struct {
	sum     float64
	samples int
}

func NewMeanDensity() *MeanDensity { return &MeanDensity{} }

func (m *MeanDensity) Name() string { return "density_mean" }

func (m *MeanDensity) Observe(_ *particles.System, snap dynamo.Snapshot) {
	if snap.Len() == 0 {
		return
	}
	m.sum += TickMeanDensity(snap)
	m.samples++
}

func (m *MeanDensity) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanDensity) Reset() {
	m.sum = 0
	m.samples = 0
}

// TickMeanDensity is the mean density of a single snapshot.
func TickMeanDensity(snap dynamo.Snapshot) float64 {
	if snap.Len() == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range snap.Records {
		sum += r.Density
	}
	return sum / float64(snap.Len())
}
