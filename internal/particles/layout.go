package particles

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/san-kum/sphsim/internal/dynamo"
)

const (
	DistCube    = "cube"
	DistLattice = "lattice"
)

// Layout describes how to seed a System: N equal masses placed by a
// distribution, at rest, under a restoring force F = -Restoring·x.
type Layout struct {
	N            int
	Mass         float64
	Spread       float64
	Restoring    float64
	Distribution string
	Seed         uint64
}

func DefaultLayout() Layout {
	return Layout{
		N:            1000,
		Mass:         1.0,
		Spread:       1.0,
		Restoring:    0.1,
		Distribution: DistCube,
		Seed:         1,
	}
}

// Build creates the System described by the layout. The same layout always
// yields the same System.
func (l Layout) Build() (*System, error) {
	if l.N <= 0 {
		return nil, dynamo.ErrNoParticles
	}
	var pos []dynamo.Vec3
	switch l.Distribution {
	case DistCube, "":
		pos = Cube(l.N, l.Spread, rand.New(rand.NewPCG(l.Seed, l.Seed^0x9e3779b97f4a7c15)))
	case DistLattice:
		pos = Lattice(l.N, l.Spacing())
	default:
		return nil, &dynamo.ConfigError{Field: "distribution", Value: l.Distribution, Wrapped: dynamo.ErrInvalidConfig}
	}

	mass := make([]float64, l.N)
	for i := range mass {
		mass[i] = l.Mass
	}
	sys, err := New(mass, pos, make([]dynamo.Vec3, l.N), RestoringForces(pos, l.Restoring))
	if err != nil {
		return nil, fmt.Errorf("build %s layout: %w", l.Distribution, err)
	}
	return sys, nil
}

// Spacing is the lattice pitch that fills the [-Spread, Spread]³ cube.
func (l Layout) Spacing() float64 {
	side := int(math.Ceil(math.Cbrt(float64(l.N))))
	if side <= 1 {
		return 0
	}
	return 2 * l.Spread / float64(side-1)
}

// Cube places n points uniformly in [-spread, spread]³.
func Cube(n int, spread float64, rng *rand.Rand) []dynamo.Vec3 {
	pos := make([]dynamo.Vec3, n)
	for i := range pos {
		pos[i] = dynamo.Vec3{
			(rng.Float64()*2 - 1) * spread,
			(rng.Float64()*2 - 1) * spread,
			(rng.Float64()*2 - 1) * spread,
		}
	}
	return pos
}

// Lattice places n points on a cubic lattice centred on the origin, filling
// x fastest.
func Lattice(n int, spacing float64) []dynamo.Vec3 {
	side := int(math.Ceil(math.Cbrt(float64(n))))
	offset := float64(side-1) * spacing / 2
	pos := make([]dynamo.Vec3, n)
	for i := range pos {
		x, y, z := i%side, (i/side)%side, i/(side*side)
		pos[i] = dynamo.Vec3{
			float64(x)*spacing - offset,
			float64(y)*spacing - offset,
			float64(z)*spacing - offset,
		}
	}
	return pos
}

// RestoringForces returns -k·x for every position.
func RestoringForces(pos []dynamo.Vec3, k float64) []dynamo.Vec3 {
	f := make([]dynamo.Vec3, len(pos))
	for i, p := range pos {
		f[i] = p.Scale(-k)
	}
	return f
}
