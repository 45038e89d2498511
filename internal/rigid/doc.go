// Package rigid defines the records a simulated world is made of.
//
// Bodies and joints are closed tagged variants: a [ShapeKind] or [JointKind]
// selects which shape or joint fields are meaningful, and every consumer
// switches over the kind exhaustively.
//
//   - [Body]: sphere, box, cylinder or plane with pose, velocity and material
//   - [Joint]: distance, revolute, prismatic, ball or fixed constraint
//   - [Contact]: one penetration produced by collision detection
//   - [Params]: gravity, timestep and solver settings
//
// # Conventions
//
// Contact normals point from body A to body B. Resolving a contact pushes A
// along -Normal and B along +Normal. Bodies with zero inverse mass are static.
//
// # Errors
//
// Invalid construction input is reported as a [*ConfigurationError] wrapping
// one of the sentinel errors, so callers can test with errors.Is.
package rigid
