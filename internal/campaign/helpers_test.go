package campaign

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/driftcrew/internal/state"
	"github.com/roach88/driftcrew/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newEngine builds an engine over doc with scripted dice and readable ids.
func newEngine(t *testing.T, doc state.Document, rolls ...int) (*Engine, *testutil.ScriptedSource) {
	t.Helper()
	src := testutil.NewScriptedSource(rolls...)
	e, err := New(doc, src, WithIDs(testutil.SequentialIDs{}), WithLogger(quietLogger()))
	require.NoError(t, err)
	return e, src
}

func snapshot(t *testing.T, e *Engine) state.Document {
	t.Helper()
	doc, err := e.Document()
	require.NoError(t, err)
	return doc
}

func requireReason(t *testing.T, err error, want string) {
	t.Helper()
	require.Error(t, err)
	got, ok := Reason(err)
	require.True(t, ok, "expected precondition %q, got %v", want, err)
	assert.Equal(t, want, got)
}

func logKeys(doc state.Document) []string {
	keys := make([]string, 0, len(doc.Campaign.Log))
	for _, l := range doc.Campaign.Log {
		keys = append(keys, l.Key)
	}
	return keys
}

func upkeepDocument() state.Document {
	doc := testutil.Document()
	doc.Campaign.Phase = state.PhaseUpkeep
	doc.Campaign.TasksFinalized = false
	return doc
}

func openTasksDocument() state.Document {
	doc := testutil.Document()
	doc.Campaign.TasksFinalized = false
	return doc
}

var nextWorld = state.World{ID: "world-2", Name: "Kessa"}
