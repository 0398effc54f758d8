// Package state defines the persisted campaign document.
//
// A Document bundles the four aggregates the engine mutates together:
// Campaign, Crew, Ship (optional) and Stash. Every type here is plain data
// that round-trips through JSON unchanged; derived values are computed by
// the ledger package and never stored.
//
// The pending interrupt is a closed tagged union. Campaign.Pending holds at
// most one Interrupt value, so the at-most-one rule is carried by the type
// rather than by convention. Multi-step travel events nest a second closed
// union (EventState) whose Stage field is stored explicitly.
package state
