// Package events implements the multi-step event machines.
//
// Every machine keeps its stage in the persisted interrupt payload and is
// advanced by an explicit Action. Machines never touch the document
// directly: a step returns a Result whose Effects the caller applies with
// mutate.Apply, so a rejected effect leaves both the document and the
// machine state untouched once the caller discards its working copy.
//
// Errors split in two. ErrChoiceUnavailable and ErrSelection are unmet
// preconditions (the control would be disabled). ErrUnknownEvent,
// ErrUnknownStage and ErrUnknownRow mean the payload or tables are corrupt.
package events
