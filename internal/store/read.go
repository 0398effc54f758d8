package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// CampaignInfo is a stored campaign with its latest position.
type CampaignInfo struct {
	ID      string
	Name    string
	LastSeq int64
}

// Campaigns lists stored campaigns ordered by id.
func (s *Store) Campaigns(ctx context.Context) ([]CampaignInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, COALESCE(MAX(s.seq), 0)
		FROM campaigns c
		LEFT JOIN snapshots s ON s.campaign_id = c.id
		GROUP BY c.id, c.name
		ORDER BY c.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query campaigns: %w", err)
	}
	defer rows.Close()

	infos := []CampaignInfo{}
	for rows.Next() {
		var info CampaignInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.LastSeq); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaigns: %w", err)
	}
	return infos, nil
}

// LatestSnapshot returns the snapshot with the highest seq.
// Returns sql.ErrNoRows if the campaign has none.
func (s *Store) LatestSnapshot(ctx context.Context, campaignID string) (Snapshot, error) {
	return s.readSnapshot(ctx, campaignID, "DESC")
}

// FirstSnapshot returns the snapshot with the lowest seq, normally the
// document as created.
// Returns sql.ErrNoRows if the campaign has none.
func (s *Store) FirstSnapshot(ctx context.Context, campaignID string) (Snapshot, error) {
	return s.readSnapshot(ctx, campaignID, "ASC")
}

func (s *Store) readSnapshot(ctx context.Context, campaignID, order string) (Snapshot, error) {
	snap := Snapshot{CampaignID: campaignID}
	var blob []byte
	row := s.db.QueryRowContext(ctx, `
		SELECT seq, digest, document, rng_state
		FROM snapshots
		WHERE campaign_id = ?
		ORDER BY seq `+order+`
		LIMIT 1
	`, campaignID)
	if err := row.Scan(&snap.Seq, &snap.Digest, &blob, &snap.RNG); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return snap, fmt.Errorf("snapshot for %q: %w", campaignID, err)
		}
		return snap, fmt.Errorf("read snapshot: %w", err)
	}
	doc, err := unmarshalDocument(blob, snap.Digest)
	if err != nil {
		return snap, fmt.Errorf("read snapshot %s@%d: %w", campaignID, snap.Seq, err)
	}
	snap.Document = doc
	return snap, nil
}

// ReadCommands returns the journal of a campaign ordered by seq.
// Commands with seq <= after are skipped.
//
// Returns an empty slice (not nil) if no records exist.
func (s *Store) ReadCommands(ctx context.Context, campaignID string, after int64) ([]CommandRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, name, args
		FROM commands
		WHERE campaign_id = ? AND seq > ?
		ORDER BY seq ASC
	`, campaignID, after)
	if err != nil {
		return nil, fmt.Errorf("query commands: %w", err)
	}
	defer rows.Close()

	records := []CommandRecord{}
	for rows.Next() {
		rec := CommandRecord{CampaignID: campaignID}
		var args string
		if err := rows.Scan(&rec.Seq, &rec.Name, &args); err != nil {
			return nil, fmt.Errorf("scan command: %w", err)
		}
		rec.Args = json.RawMessage(args)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commands: %w", err)
	}
	return records, nil
}
