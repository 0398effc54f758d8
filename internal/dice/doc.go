// Package dice implements the dice and roll-range table resolver.
//
// All randomness in the campaign engine flows through a Source. Production
// code uses PCGSource, a seeded math/rand/v2 PCG generator whose state can be
// marshaled alongside a save so that a reloaded campaign continues the same
// roll sequence. Tests substitute a scripted source.
//
// A Table is an ordered partition of an integer domain into disjoint,
// inclusive [Low, High] ranges. Tables are validated once at construction:
// rows must be sorted, must not overlap and must leave no gaps between the
// declared Min and Max. Resolution is a step function over that partition and
// a value outside the domain is reported as a malformed-table error, never as
// a user-facing condition.
package dice
