// Package solver turns contacts into position corrections and velocity
// impulses, and enforces joint constraints with position-based corrections.
//
// Both solvers are Gauss-Seidel sweeps over slices in their given order, so
// results depend only on the input state and enumeration order. Entries
// that reference bodies outside the slice, or whose geometry is degenerate,
// are skipped without affecting the rest of the sweep.
package solver
