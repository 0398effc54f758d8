package command

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/driftcrew/internal/campaign"
	"github.com/roach88/driftcrew/internal/dice"
	"github.com/roach88/driftcrew/internal/state"
	"github.com/roach88/driftcrew/internal/store"
)

// ErrNoDiceState means a snapshot cannot seed a replay.
var ErrNoDiceState = errors.New("snapshot has no dice state")

// ReplayReport is the outcome of a determinism check.
type ReplayReport struct {
	CampaignID string `json:"campaignId"`
	// Commands is how many journaled commands were re-executed.
	Commands int    `json:"commands"`
	FromSeq  int64  `json:"fromSeq"`
	ToSeq    int64  `json:"toSeq"`
	Digest   string `json:"digest"`
	Expected string `json:"expected"`
	Match    bool   `json:"match"`
}

// Replay re-executes journal on a fresh engine seeded from first and
// compares the resulting digest with latest.
//
// Only commands with first.Seq < seq <= latest.Seq are replayed. opts
// must configure the engine the way the recorded one was (ids, rates,
// tables); a mismatch shows up as a digest mismatch, not an error.
// A journaled command that fails on replay is an error.
func Replay(first store.Snapshot, journal []store.CommandRecord, latest store.Snapshot, opts ...campaign.Option) (ReplayReport, error) {
	report := ReplayReport{
		CampaignID: first.CampaignID,
		FromSeq:    first.Seq,
		ToSeq:      latest.Seq,
		Expected:   latest.Digest,
	}
	if first.RNG == nil {
		return report, ErrNoDiceState
	}
	src, err := dice.RestorePCGSource(first.RNG)
	if err != nil {
		return report, fmt.Errorf("replay: %w", err)
	}
	e, err := campaign.New(first.Document, src, opts...)
	if err != nil {
		return report, fmt.Errorf("replay: %w", err)
	}

	for _, rec := range journal {
		if rec.Seq <= first.Seq || rec.Seq > latest.Seq {
			continue
		}
		if _, err := Execute(e, rec.Name, rec.Args); err != nil {
			return report, fmt.Errorf("replay seq %d %s: %w", rec.Seq, rec.Name, err)
		}
		report.Commands++
	}

	doc, err := e.Document()
	if err != nil {
		return report, fmt.Errorf("replay: %w", err)
	}
	if report.Digest, err = state.Digest(doc); err != nil {
		return report, fmt.Errorf("replay: %w", err)
	}
	report.Match = report.Digest == report.Expected
	if !report.Match {
		slog.Warn("replay diverged",
			"campaign", report.CampaignID,
			"digest", report.Digest,
			"expected", report.Expected,
		)
	}
	return report, nil
}
