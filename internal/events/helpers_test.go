package events

import (
	"fmt"
	"testing"

	"github.com/roach88/driftcrew/internal/catalog"
	"github.com/roach88/driftcrew/internal/dice"
	"github.com/roach88/driftcrew/internal/ledger"
	"github.com/roach88/driftcrew/internal/mutate"
	"github.com/roach88/driftcrew/internal/state"
	"github.com/roach88/driftcrew/internal/tables"
	"github.com/roach88/driftcrew/internal/testutil"
	"github.com/stretchr/testify/require"
)

var (
	testTables  = tables.Default()
	testCatalog = catalog.Default()
)

func newContext(doc *state.Document, rolls ...int) (*Context, *testutil.ScriptedSource) {
	src := testutil.NewScriptedSource(rolls...)
	var seq int64
	return &Context{
		Doc:     doc,
		Roller:  dice.NewRoller(src),
		Tables:  testTables,
		Catalog: testCatalog,
		Rates:   ledger.DefaultRates(),
		NewID: func(kind string) string {
			seq++
			return fmt.Sprintf("%s-new-%d", kind, seq)
		},
	}, src
}

// apply commits a step's effects the way the engine does.
func apply(t *testing.T, ctx *Context, res Result) {
	t.Helper()
	require.NoError(t, mutate.Apply(ctx.Doc, res.Effects, ctx.Limits()))
}

func travelRow(t *testing.T, id state.EventID) tables.TravelRow {
	t.Helper()
	for _, e := range testTables.Travel.Entries() {
		if e.Row.ID == id {
			return e.Row
		}
	}
	t.Fatalf("no travel row %s", id)
	return tables.TravelRow{}
}

func tradeRow(t *testing.T, id string) tables.TradeRow {
	t.Helper()
	row, ok := testTables.TradeByID(id)
	require.True(t, ok, id)
	return row
}

func travelRowWithID(id state.EventID) tables.TravelRow {
	return tables.TravelRow{ID: id, LogKey: "travel." + string(id)}
}
