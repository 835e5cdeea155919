package dynamo

import (
	"math"
)

// Vec3 is a point or direction in 3-D space.
type Vec3 [3]float64

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{v[0] * f, v[1] * f, v[2] * f}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2]
}

// Norm2 is the squared length; kernels written in squared-distance form use it
// to avoid the square root.
func (v Vec3) Norm2() float64 {
	return v.Dot(v)
}

func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Norm2())
}

func (v Vec3) IsFinite() bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Record is one particle of a rendered tick.
type Record struct {
	Position Vec3    `json:"position"`
	Color    Vec3    `json:"color"`
	Density  float64 `json:"density"`
}

// Snapshot is the output of one tick: exactly one record per particle, in
// particle index order.
type Snapshot struct {
	Tick    uint64   `json:"tick"`
	Time    float64  `json:"time"`
	Records []Record `json:"records"`
}

func (s Snapshot) Len() int { return len(s.Records) }

func (s Snapshot) Clone() Snapshot {
	c := s
	c.Records = make([]Record, len(s.Records))
	copy(c.Records, s.Records)
	return c
}

func (s Snapshot) Densities() []float64 {
	out := make([]float64, len(s.Records))
	for i, r := range s.Records {
		out[i] = r.Density
	}
	return out
}

// DensityRange returns the smallest and largest density in the snapshot.
// An empty snapshot yields (0, 0).
func (s Snapshot) DensityRange() (lo, hi float64) {
	if len(s.Records) == 0 {
		return 0, 0
	}
	lo, hi = s.Records[0].Density, s.Records[0].Density
	for _, r := range s.Records[1:] {
		lo = math.Min(lo, r.Density)
		hi = math.Max(hi, r.Density)
	}
	return lo, hi
}
