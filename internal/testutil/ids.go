package testutil

import "fmt"

// SequentialIDs derives readable entity ids of the form "<kind>-<seq>".
//
// The campaign engine already supplies a monotonic sequence per document,
// so the same command history always yields the same ids. Stateless and
// safe for concurrent use.
type SequentialIDs struct{}

// NewID returns kind and seq joined by a dash. The campaign id is ignored.
func (SequentialIDs) NewID(_ string, kind string, seq int64) string {
	return fmt.Sprintf("%s-%d", kind, seq)
}
