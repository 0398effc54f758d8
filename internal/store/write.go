package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/driftcrew/internal/state"
)

// ErrDigestMismatch means a stored document no longer hashes to its
// recorded digest.
var ErrDigestMismatch = errors.New("digest mismatch")

// Snapshot is a persisted campaign document.
type Snapshot struct {
	CampaignID string
	// Seq is the number of journaled commands the document reflects.
	Seq      int64
	Document state.Document
	Digest   string
	// RNG is the marshaled dice state after Seq commands. Nil for sources
	// that cannot be serialized.
	RNG []byte
}

// CommandRecord is one journaled command.
type CommandRecord struct {
	CampaignID string          `json:"-"`
	Seq        int64           `json:"seq"`
	Name       string          `json:"name"`
	Args       json.RawMessage `json:"args,omitempty"`
}

// CreateCampaign registers a campaign id. Uses ON CONFLICT(id) DO NOTHING
// for idempotency.
func (s *Store) CreateCampaign(ctx context.Context, id, name string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO campaigns (id, name)
		VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, name)
	if err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SaveSnapshot stores snap under campaignID and returns the document digest.
//
// Writing the same seq twice replaces the earlier snapshot; the journal is
// the source of truth for what happened, snapshots only cache it.
func (s *Store) SaveSnapshot(ctx context.Context, campaignID string, snap Snapshot) (string, error) {
	return saveSnapshot(ctx, s.db, campaignID, snap)
}

func saveSnapshot(ctx context.Context, ex execer, campaignID string, snap Snapshot) (string, error) {
	blob, digest, err := marshalDocument(snap.Document)
	if err != nil {
		return "", fmt.Errorf("save snapshot: %w", err)
	}
	c := snap.Document.Campaign
	_, err = ex.ExecContext(ctx, `
		INSERT INTO snapshots
		(campaign_id, seq, turn, phase, digest, document, rng_state)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(campaign_id, seq) DO UPDATE SET
			turn = excluded.turn,
			phase = excluded.phase,
			digest = excluded.digest,
			document = excluded.document,
			rng_state = excluded.rng_state
	`,
		campaignID,
		snap.Seq,
		c.Turn,
		string(c.Phase),
		digest,
		blob,
		snap.RNG,
	)
	if err != nil {
		return "", fmt.Errorf("save snapshot: %w", err)
	}
	return digest, nil
}

// AppendCommand appends a command to the campaign journal and returns its
// seq. Seqs start at 1 and have no gaps.
func (s *Store) AppendCommand(ctx context.Context, campaignID, name string, args json.RawMessage) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("append command: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	seq, err := appendCommand(ctx, tx, campaignID, name, args)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("append command: commit: %w", err)
	}
	return seq, nil
}

// RecordCommand journals a command and stores snap as the snapshot for
// the new seq in one transaction. Either both rows are written or
// neither is. snap.Seq is ignored.
func (s *Store) RecordCommand(ctx context.Context, campaignID, name string, args json.RawMessage, snap Snapshot) (int64, string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, "", fmt.Errorf("record command: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	seq, err := appendCommand(ctx, tx, campaignID, name, args)
	if err != nil {
		return 0, "", err
	}
	snap.Seq = seq
	digest, err := saveSnapshot(ctx, tx, campaignID, snap)
	if err != nil {
		return 0, "", err
	}
	if err := tx.Commit(); err != nil {
		return 0, "", fmt.Errorf("record command: commit: %w", err)
	}
	return seq, digest, nil
}

func appendCommand(ctx context.Context, ex execer, campaignID, name string, args json.RawMessage) (int64, error) {
	argsJSON, err := marshalArgs(args)
	if err != nil {
		return 0, fmt.Errorf("append command: %w", err)
	}

	var seq int64
	if err := ex.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM commands WHERE campaign_id = ?
	`, campaignID).Scan(&seq); err != nil {
		return 0, fmt.Errorf("append command: next seq: %w", err)
	}

	if _, err := ex.ExecContext(ctx, `
		INSERT INTO commands (campaign_id, seq, name, args)
		VALUES (?, ?, ?, ?)
	`, campaignID, seq, name, argsJSON); err != nil {
		return 0, fmt.Errorf("append command: insert: %w", err)
	}
	return seq, nil
}
