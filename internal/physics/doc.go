// Package physics implements the SPH step function.
//
// A [Stepper] advances a [particles.System] by one fixed timestep and returns
// the tick's [dynamo.Snapshot]:
//
//   - integrate velocity and position for every particle (semi-implicit Euler)
//   - estimate density from the post-integration positions
//   - optionally recompute forces through a [ForceField] hook
//   - emit one render record per particle, coloured by density
//
// The smoothing kernel used for density is a type parameter, so the choice is
// fixed when the stepper is built:
//
//	st, err := physics.New[kernel.Poly6](1.0, 0.01, physics.Options{})
//	snap := st.Step(sys)
//
// # Density Estimation
//
// [AllPairs] evaluates every pair of particles. [Grid] bins particles into
// cells of side h and only visits neighbouring cells; it returns bit-identical
// densities and is a drop-in replacement for large systems.
package physics
