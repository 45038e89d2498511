// Package collision routes body pairs to narrow-phase routines by shape kind
// and produces contacts.
//
// The routine table is indexed by the canonical (lower, higher) pair of
// [rigid.ShapeKind] values. When the caller's order differs, the routine is
// run with the bodies swapped and each contact is flipped back, so every
// contact's normal points from the caller's first body to its second.
//
// Detection only reads bodies. Calling [Pair] twice on the same bodies
// yields identical contacts, and a pair that does not overlap yields none.
package collision
