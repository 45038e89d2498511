// Package sim owns the body and joint store and runs the fixed-step
// pipeline over it.
//
// Every step runs four stages in order:
//
//  1. integrate velocities and poses
//  2. detect contacts
//  3. resolve contacts
//  4. solve joints
//
// # Backends
//
// [World.StepReference] runs the stages directly on the float64 store.
// [World.StepDevice] encodes the store into canonical layout records and
// dispatches each stage as a kernel through a [compute.Backend]. The store
// is only written back once all four kernels succeed, so a failed device
// step leaves the world exactly as it was and the caller may retry with
// the reference path.
//
// A World is not safe for concurrent use.
package sim
