package harness

// TraceEvent records one flow step and its outcome.
type TraceEvent struct {
	Seq    int            `json:"seq"`
	Invoke string         `json:"invoke"`
	Args   map[string]any `json:"args,omitempty"`
	Case   string         `json:"case"`
	Reason string         `json:"reason,omitempty"`
	// Logs are the campaign log keys the step appended.
	Logs []string `json:"logs,omitempty"`

	// Result is the command's return value. Not part of golden traces.
	Result any `json:"-"`
	// Error is the error text of a failed step. Not part of golden traces.
	Error string `json:"-"`
}

// FinalState summarizes the document after the flow.
type FinalState struct {
	Turn      int    `json:"turn"`
	Phase     string `json:"phase"`
	Interrupt string `json:"interrupt,omitempty"`
	Digest    string `json:"-"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// Trace contains one event per flow step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	Final FinalState `json:"final"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
