// Package kernel implements the radially symmetric SPH smoothing kernels.
//
// Every kernel has compact support: it is zero for |r| > h. Kernels are
// zero-size value types so they can be selected as a type parameter when a
// simulation is built, rather than switched at runtime.
package kernel

import (
	"math"

	"github.com/san-kum/sphsim/internal/dynamo"
)

// Kernel is the capability set shared by every smoothing kernel.
type Kernel interface {
	// Value is the weight of a neighbour at separation r.
	Value(r dynamo.Vec3, h float64) float64
	// GradientMag is d Value / d|r|. It is zero outside the support and
	// non-positive inside it.
	GradientMag(r dynamo.Vec3, h float64) float64
	Name() string
}

// Spiky weights neighbours by (h-|r|)^3. It stays steep near the origin and
// is the usual choice for pressure terms.
type Spiky struct{}

func (Spiky) Name() string { return "spiky" }

func (Spiky) Value(r dynamo.Vec3, h float64) float64 {
	mag := r.Norm()
	if mag > h {
		return 0
	}
	c := 15.0 / (math.Pi * math.Pow(h, 6))
	d := h - mag
	return c * d * d * d
}

func (Spiky) GradientMag(r dynamo.Vec3, h float64) float64 {
	mag := r.Norm()
	if mag > h {
		return 0
	}
	c := -45.0 / (math.Pi * math.Pow(h, 6))
	d := h - mag
	return c * d * d
}

// Poly6 weights neighbours by (h²-|r|²)^3 and is used for density.
//
// Poly6 is zero at r = 0: a particle does not contribute to its own density.
// Density sums depend on this, so it must not be "fixed".
type Poly6 struct{}

func (Poly6) Name() string { return "poly6" }

func (Poly6) Value(r dynamo.Vec3, h float64) float64 {
	mag2, h2 := r.Norm2(), h*h
	if mag2 > h2 || mag2 <= 0 {
		return 0
	}
	d := h2 - mag2
	return poly6Coeff(h) * d * d * d
}

func (Poly6) GradientMag(r dynamo.Vec3, h float64) float64 {
	mag2, h2 := r.Norm2(), h*h
	if mag2 > h2 || mag2 <= 0 {
		return 0
	}
	d := h2 - mag2
	return poly6Coeff(h) * -6.0 * math.Sqrt(mag2) * d * d
}

func poly6Coeff(h float64) float64 {
	return 315.0 / (64.0 * math.Pi * math.Pow(h, 9))
}

// ByName returns the kernel registered under name, or nil.
func ByName(name string) Kernel {
	switch name {
	case "spiky":
		return Spiky{}
	case "poly6":
		return Poly6{}
	}
	return nil
}

// Names lists the available kernels.
func Names() []string {
	return []string{"poly6", "spiky"}
}
