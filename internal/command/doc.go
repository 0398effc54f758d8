// Package command is the named-command surface of the campaign engine.
//
// Every engine operation is reachable by a snake_case name with JSON
// arguments, so the CLI, the conformance harness and journal replay drive
// the engine the same way. Commands that change the document are
// journaled by a Recorder; queries are not.
//
// # Outcome Cases
//
//   - ok: the command applied (or the query answered)
//   - rejected: a precondition was unmet or the arguments were invalid;
//     the document is unchanged
//   - fatal: an invariant was violated; this is a defect, never a player path
package command
