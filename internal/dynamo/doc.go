// Package dynamo provides the core value types shared by the SPH simulation.
//
// The package defines the small vocabulary every other package speaks:
//
//   - [Vec3]: a 3-D vector used for positions, velocities and forces
//   - [Record]: one particle as seen by a consumer (position, color, density)
//   - [Snapshot]: the ordered records emitted by a single simulation tick
//
// # Ownership
//
// A [Snapshot] is a value. Once the simulator hands it to a consumer it keeps
// no reference to it, so consumers may retain or mutate it freely.
//
// # Errors
//
// Construction failures wrap one of the sentinel errors declared here and can
// be tested with [errors.Is]:
//
//	sys, err := particles.New(mass, pos, vel, force)
//	if errors.Is(err, dynamo.ErrInvalidMass) {
//	    ...
//	}
package dynamo
