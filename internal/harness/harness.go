package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/driftcrew/internal/campaign"
	"github.com/roach88/driftcrew/internal/command"
	"github.com/roach88/driftcrew/internal/dice"
	"github.com/roach88/driftcrew/internal/state"
	"github.com/roach88/driftcrew/internal/store"
	"github.com/roach88/driftcrew/internal/testutil"
)

// ErrPanic marks a step that panicked, typically an exhausted or
// out-of-range dice script.
var ErrPanic = errors.New("command panicked")

// Harness is the test execution engine for one scenario.
type Harness struct {
	store    *store.Store
	recorder *command.Recorder
	scripted *testutil.ScriptedSource
	opts     []campaign.Option
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Build the starting document from the fixture or creation parameters
// 2. Execute flow steps with expect validation, journaling accepted commands
// 3. Evaluate assertions against the final document
// 4. Check dice usage and, for seeded scenarios, replay determinism
//
// The returned error reports a harness failure (bad setup, store errors);
// scenario failures are reported in Result.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	h.opts = []campaign.Option{
		campaign.WithIDs(testutil.SequentialIDs{}),
		campaign.WithLogger(h.logger),
	}

	var src dice.Source
	if scenario.Scripted() {
		h.scripted = testutil.NewScriptedSource(scenario.Dice...)
		src = h.scripted
	} else {
		src = dice.NewPCGSource(scenario.Seed)
	}

	e, err := h.setup(scenario.Setup, src)
	if err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}
	if err := st.CreateCampaign(ctx, e.Campaign().ID, e.Campaign().Name); err != nil {
		return nil, err
	}
	h.recorder = command.NewRecorder(st, e, 0)
	if _, err := h.recorder.Checkpoint(ctx); err != nil {
		return nil, err
	}

	result := NewResult()
	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	doc, err := e.Document()
	if err != nil {
		return nil, err
	}
	if result.Final, err = finalState(doc); err != nil {
		return nil, err
	}

	for _, errMsg := range EvaluateAssertions(doc, scenario.Assertions) {
		result.AddError(errMsg)
	}

	if h.scripted != nil {
		if n := h.scripted.Remaining(); n > 0 {
			result.AddError(fmt.Sprintf("%d scripted dice rolls unused", n))
		}
	} else if err := h.checkReplay(ctx, e.Campaign().ID, result); err != nil {
		return nil, err
	}

	return result, nil
}

// setup builds the engine for the scenario's starting document.
func (h *Harness) setup(s Setup, src dice.Source) (*campaign.Engine, error) {
	var doc state.Document
	switch {
	case s.Create != nil:
		e, err := campaign.Create(*s.Create, src, h.opts...)
		if err != nil {
			return nil, fmt.Errorf("create: %w", err)
		}
		if len(s.Set) == 0 {
			return e, nil
		}
		if doc, err = e.Document(); err != nil {
			return nil, err
		}
	case s.Fixture == FixtureShipless:
		doc = testutil.ShiplessDocument()
	default:
		doc = testutil.Document()
	}

	doc, err := applyOverrides(doc, s.Set)
	if err != nil {
		return nil, err
	}
	return campaign.New(doc, src, h.opts...)
}

// executeFlow runs all flow steps and validates expect clauses.
//
// Each step:
// 1. Executes the command through the recorder
// 2. Classifies the outcome and collects the log keys it appended
// 3. Validates the expect clause
// 4. Appends the step to the trace for golden comparison
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) error {
	for i, step := range flow {
		var args json.RawMessage
		if len(step.Args) > 0 {
			data, err := json.Marshal(step.Args)
			if err != nil {
				return fmt.Errorf("flow step %d: failed to encode args: %w", i, err)
			}
			args = data
		}

		before := len(h.recorder.Engine().Campaign().Log)
		out, err := h.invoke(ctx, step.Invoke, args)

		event := TraceEvent{
			Seq:    i + 1,
			Invoke: step.Invoke,
			Args:   step.Args,
			Case:   string(command.Classify(err)),
			Result: out,
		}
		if err != nil {
			event.Error = err.Error()
			event.Reason, _ = campaign.Reason(err)
		}
		for _, entry := range h.recorder.Engine().Campaign().Log[before:] {
			event.Logs = append(event.Logs, entry.Key)
		}
		result.Trace = append(result.Trace, event)

		for _, msg := range checkExpect(event, step.Expect) {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Invoke, msg))
		}

		h.logger.Info("flow step completed",
			"step", i,
			"command", step.Invoke,
			"case", event.Case,
		)
	}
	return nil
}

// invoke runs one command, turning a panic into an error.
func (h *Harness) invoke(ctx context.Context, name string, args json.RawMessage) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return h.recorder.Invoke(ctx, name, args)
}

// checkExpect compares a step outcome against its expectation.
func checkExpect(event TraceEvent, expect *ExpectClause) []string {
	if expect == nil {
		if event.Case == string(command.CaseFatal) {
			return []string{"unexpected fatal: " + event.Error}
		}
		return nil
	}

	var errs []string
	if event.Case != expect.Case {
		msg := fmt.Sprintf("expected case %s, got %s", expect.Case, event.Case)
		if event.Error != "" {
			msg += ": " + event.Error
		}
		return append(errs, msg)
	}
	if expect.Reason != "" && event.Reason != expect.Reason {
		errs = append(errs, fmt.Sprintf("expected reason %s, got %q", expect.Reason, event.Reason))
	}
	if expect.Result != nil {
		want, err := toGeneric(expect.Result)
		if err != nil {
			return append(errs, fmt.Sprintf("expected result: %v", err))
		}
		got, err := toGeneric(event.Result)
		if err != nil {
			return append(errs, fmt.Sprintf("result: %v", err))
		}
		if !matchValue(want, got) {
			errs = append(errs, fmt.Sprintf("expected result %v, got %v", want, got))
		}
	}
	return errs
}

// checkReplay re-executes the journal from the first snapshot and
// requires the recorded digest.
func (h *Harness) checkReplay(ctx context.Context, campaignID string, result *Result) error {
	first, err := h.store.FirstSnapshot(ctx, campaignID)
	if err != nil {
		return err
	}
	latest, err := h.store.LatestSnapshot(ctx, campaignID)
	if err != nil {
		return err
	}
	journal, err := h.store.ReadCommands(ctx, campaignID, 0)
	if err != nil {
		return err
	}
	report, err := command.Replay(first, journal, latest, h.opts...)
	if err != nil {
		result.AddError(fmt.Sprintf("replay: %v", err))
		return nil
	}
	if !report.Match {
		result.AddError(fmt.Sprintf("replay diverged: digest %s, recorded %s", report.Digest, report.Expected))
	}
	return nil
}

func finalState(doc state.Document) (FinalState, error) {
	digest, err := state.Digest(doc)
	if err != nil {
		return FinalState{}, err
	}
	fs := FinalState{
		Turn:   doc.Campaign.Turn,
		Phase:  string(doc.Campaign.Phase),
		Digest: digest,
	}
	if doc.Campaign.Pending != nil {
		fs.Interrupt = string(doc.Campaign.Pending.Kind())
	}
	return fs, nil
}
