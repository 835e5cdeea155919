package metrics

import (
	"math"

	"github.com/san-kum/sphsim/internal/dynamo"
	"github.com/san-kum/sphsim/internal/particles"
)

// KineticEnergy reports the kinetic energy at the last observed tick.
type KineticEnergy struct {
	current float64
}

func NewKineticEnergy() *KineticEnergy { return &KineticEnergy{} }

func (k *KineticEnergy) Name() string { return "kinetic_energy" }

func (k *KineticEnergy) Observe(sys *particles.System, _ dynamo.Snapshot) {
	k.current = sys.KineticEnergy()
}

func (k *KineticEnergy) Value() float64 { return k.current }
func (k *KineticEnergy) Reset()         { k.current = 0 }

// MassDrift is the largest |ΣM - ΣM₀| seen during a run. Mass is never
// integrated, so anything but zero is a bug.
type MassDrift struct {
	initial  float64
	maxDrift float64
	seen     bool
}

func NewMassDrift() *MassDrift { return &MassDrift{} }

func (m *MassDrift) Name() string { return "mass_drift" }

func (m *MassDrift) Observe(sys *particles.System, _ dynamo.Snapshot) {
	total := sys.TotalMass()
	if !m.seen {
		m.initial = total
		m.seen = true
		return
	}
	m.maxDrift = math.Max(m.maxDrift, math.Abs(total-m.initial))
}

func (m *MassDrift) Value() float64 { return m.maxDrift }

func (m *MassDrift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.seen = false
}
