// Package analysis looks at recorded density series.
//
// Particles held by the restoring force oscillate, and the density sums
// oscillate with them. [PowerSpectrum] and [DominantFrequency] recover that
// frequency from a series sampled every dt:
//
//	f := analysis.DominantFrequency(meanDensity, dt)
package analysis
