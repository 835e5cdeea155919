package physics

import (
	"math"
	"slices"

	"github.com/san-kum/sphsim/internal/dynamo"
	"github.com/san-kum/sphsim/internal/kernel"
)

// DensityEstimator fills out[i] with Σ_j mass[j]·W(pos[i]-pos[j], h).
// len(out) must equal len(pos).
type DensityEstimator interface {
	Estimate(pos []dynamo.Vec3, mass []float64, h float64, out []float64)
	Name() string
}

// AllPairs is the O(N²) estimator. The sum runs over every j, including i.
type AllPairs[K kernel.Kernel] struct{}

func (AllPairs[K]) Name() string { return "all-pairs" }

func (AllPairs[K]) Estimate(pos []dynamo.Vec3, mass []float64, h float64, out []float64) {
	var k K
	for i := range pos {
		rho := 0.0
		for j := range pos {
			rho += mass[j] * k.Value(pos[i].Sub(pos[j]), h)
		}
		out[i] = rho
	}
}

type cellKey [3]int64

// Grid bins particles into cubic cells of side h and sums only over the 27
// cells around each particle. Candidates are visited in index order, so the
// result matches AllPairs bit for bit.
type Grid[K kernel.Kernel] struct {
	cells map[cellKey][]int
	cand  []int
}

func NewGrid[K kernel.Kernel]() *Grid[K] {
	return &Grid[K]{cells: make(map[cellKey][]int)}
}

func (g *Grid[K]) Name() string { return "grid" }

func (g *Grid[K]) Estimate(pos []dynamo.Vec3, mass []float64, h float64, out []float64) {
	for _, p := range pos {
		if !p.IsFinite() {
			AllPairs[K]{}.Estimate(pos, mass, h, out)
			return
		}
	}

	if g.cells == nil {
		g.cells = make(map[cellKey][]int)
	}
	for key, idx := range g.cells {
		if len(idx) == 0 {
			delete(g.cells, key)
			continue
		}
		g.cells[key] = idx[:0]
	}
	for i, p := range pos {
		key := cellOf(p, h)
		g.cells[key] = append(g.cells[key], i)
	}

	var k K
	for i, p := range pos {
		c := cellOf(p, h)
		g.cand = g.cand[:0]
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for dz := int64(-1); dz <= 1; dz++ {
					g.cand = append(g.cand, g.cells[cellKey{c[0] + dx, c[1] + dy, c[2] + dz}]...)
				}
			}
		}
		slices.Sort(g.cand)

		rho := 0.0
		for _, j := range g.cand {
			rho += mass[j] * k.Value(p.Sub(pos[j]), h)
		}
		out[i] = rho
	}
}

func cellOf(p dynamo.Vec3, h float64) cellKey {
	return cellKey{
		int64(math.Floor(p[0] / h)),
		int64(math.Floor(p[1] / h)),
		int64(math.Floor(p[2] / h)),
	}
}
