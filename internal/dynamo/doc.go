// Package dynamo provides the core types shared by the satellite kernel.
//
//   - [Vec3]: Cartesian vector
//   - [Body]: one satellite with a fixed kinematic [Mode]
//   - [Event]: a reported collision pair
//   - [Integrator]: advances or projects bodies by whole steps
//   - [InputError]: rejected ingestion field
//
// # Example
//
//	a, _ := dynamo.NewLinear("Sat-1", 10, dynamo.Vec3{X: 200}, dynamo.Vec3{Y: 1})
//	b, _ := dynamo.NewOrbital("Sat-2", 10, 150, 0.05, 0)
//	euler := integrators.NewEuler(0.1)
//	euler.Advance(&a, 1)
//	fmt.Println(collision.Colliding(a, b))
//
// Bodies are plain values. Copying a Body copies its whole state, which is
// what snapshots and forecasts rely on.
package dynamo
