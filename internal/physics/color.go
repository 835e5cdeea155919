package physics

import "github.com/san-kum/sphsim/internal/dynamo"

// DefaultColorScale maps typical densities of a 1000-particle unit cube into
// a displayable range.
const DefaultColorScale = 150.0

// ColorMap turns a density into a colour triple. Values are not clamped;
// consumers tone-map as they see fit.
type ColorMap func(density float64) dynamo.Vec3

// Linear returns (ρ/scale, 1, ρ/scale).
func Linear(scale float64) ColorMap {
	return func(density float64) dynamo.Vec3 {
		v := density / scale
		return dynamo.Vec3{v, 1, v}
	}
}
