// Package campaign is the phase controller of a crew campaign.
//
// An Engine owns one state.Document and exposes every player intent as a
// method. Each command:
//
//  1. Evaluates a guard (phase, pending interrupt, tasks finalized,
//     interdiction, affordability). A closed guard returns a
//     *PreconditionError and changes nothing.
//  2. Runs against a deep clone of the document, drawing dice from the
//     engine's Roller and delegating multi-step events to package events.
//  3. Applies effects through mutate.Apply, which validates before it
//     writes.
//  4. Swaps the clone in only if every step succeeded.
//
// Exactly one interrupt may be pending. Setting a second one is an
// invariant violation reported as *InvariantError with code
// INTERRUPT_CONFLICT. Phases and post-battle steps move only along the
// transition tables in transitions.go.
package campaign
