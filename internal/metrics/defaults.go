package metrics

import "github.com/san-kum/sphsim/internal/sim"

// Defaults is the metric set attached to every run. bound is the radius
// used by Stability.
func Defaults(bound float64) []sim.Metric {
	return []sim.Metric{
		NewMaxDensity(),
		NewMeanDensity(),
		NewKineticEnergy(),
		NewMassDrift(),
		NewStability(bound),
	}
}
