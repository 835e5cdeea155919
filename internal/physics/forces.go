package physics

import (
	"github.com/san-kum/sphsim/internal/dynamo"
	"github.com/san-kum/sphsim/internal/kernel"
	"github.com/san-kum/sphsim/internal/particles"
)

// ForceField recomputes sys.Force after density estimation. The new forces
// take effect on the next tick.
type ForceField interface {
	Apply(sys *particles.System, density []float64)
	Name() string
}

// PressureForce adds a symmetric pressure term to the external force the
// system started with. Pressure follows p = Stiffness·(ρ - RestDensity) and
// the gradient comes from the kernel K (usually Spiky).
type PressureForce[K kernel.Kernel] struct {
	H           float64
	Stiffness   float64
	RestDensity float64

	base  []dynamo.Vec3
	press []float64
}

func NewPressureForce[K kernel.Kernel](h, stiffness, restDensity float64) *PressureForce[K] {
	return &PressureForce[K]{H: h, Stiffness: stiffness, RestDensity: restDensity}
}

func (p *PressureForce[K]) Name() string { return "pressure" }

func (p *PressureForce[K]) Apply(sys *particles.System, density []float64) {
	n := sys.Len()
	if p.base == nil {
		p.base = make([]dynamo.Vec3, n)
		copy(p.base, sys.Force)
	}
	if len(p.press) != n {
		p.press = make([]float64, n)
	}
	for i, rho := range density {
		p.press[i] = p.Stiffness * (rho - p.RestDensity)
	}

	var k K
	for i := 0; i < n; i++ {
		f := p.base[i]
		for j := 0; j < n; j++ {
			if i == j || density[j] == 0 {
				continue
			}
			r := sys.Position[i].Sub(sys.Position[j])
			dist := r.Norm()
			if dist == 0 || dist > p.H {
				continue
			}
			mag := -sys.Mass[j] * (p.press[i] + p.press[j]) / (2 * density[j]) * k.GradientMag(r, p.H)
			f = f.Add(r.Scale(mag / dist))
		}
		sys.Force[i] = f
	}
}
