package command

import (
	"context"
	"encoding"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/roach88/driftcrew/internal/campaign"
	"github.com/roach88/driftcrew/internal/dice"
	"github.com/roach88/driftcrew/internal/store"
)

// RNGState marshals src if it supports it. Sources that cannot be
// serialized yield nil.
func RNGState(src dice.Source) ([]byte, error) {
	m, ok := src.(encoding.BinaryMarshaler)
	if !ok {
		return nil, nil
	}
	data, err := m.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal dice state: %w", err)
	}
	return data, nil
}

// Recorder executes commands against one campaign and persists every
// accepted command with a snapshot of the resulting document.
type Recorder struct {
	store      *store.Store
	engine     *campaign.Engine
	campaignID string
	seq        int64
}

// NewRecorder wraps e. seq is the journal position e's document reflects.
func NewRecorder(st *store.Store, e *campaign.Engine, seq int64) *Recorder {
	return &Recorder{
		store:      st,
		engine:     e,
		campaignID: e.Campaign().ID,
		seq:        seq,
	}
}

// Engine returns the wrapped engine.
func (r *Recorder) Engine() *campaign.Engine { return r.engine }

// Seq returns the journal position of the current document.
func (r *Recorder) Seq() int64 { return r.seq }

// Checkpoint stores the current document as the snapshot for Seq.
func (r *Recorder) Checkpoint(ctx context.Context) (string, error) {
	snap, err := r.snapshot()
	if err != nil {
		return "", fmt.Errorf("checkpoint: %w", err)
	}
	snap.Seq = r.seq
	return r.store.SaveSnapshot(ctx, r.campaignID, snap)
}

func (r *Recorder) snapshot() (store.Snapshot, error) {
	doc, err := r.engine.Document()
	if err != nil {
		return store.Snapshot{}, err
	}
	rng, err := RNGState(r.engine.Source())
	if err != nil {
		return store.Snapshot{}, err
	}
	return store.Snapshot{Document: doc, RNG: rng}, nil
}

// Invoke executes the named command. Accepted commands that change the
// document are journaled and checkpointed in one transaction; queries and
// rejected commands leave the store untouched. When the store write fails
// the engine is restored to its state before the command.
func (r *Recorder) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	spec, _ := Lookup(name)
	var before store.Snapshot
	if !spec.Query {
		var err error
		if before, err = r.snapshot(); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	out, err := Execute(r.engine, name, args)
	if err != nil || spec.Query {
		return out, err
	}

	after, err := r.snapshot()
	if err == nil {
		var seq int64
		if seq, _, err = r.store.RecordCommand(ctx, r.campaignID, name, args, after); err == nil {
			r.seq = seq
			slog.Debug("command journaled", "campaign", r.campaignID, "command", name, "seq", seq)
			return out, nil
		}
	}
	if rerr := r.engine.Restore(before.Document, before.RNG); rerr != nil {
		return out, fmt.Errorf("journal %s: %w (restore: %v)", name, err, rerr)
	}
	return out, fmt.Errorf("journal %s: %w", name, err)
}
