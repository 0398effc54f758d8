package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/driftcrew/internal/campaign"
	"github.com/roach88/driftcrew/internal/command"
	"github.com/roach88/driftcrew/internal/dice"
	"github.com/roach88/driftcrew/internal/store"
)

// session is an open campaign resumed from its latest snapshot.
type session struct {
	store    *store.Store
	recorder *command.Recorder
}

func (s *session) engine() *campaign.Engine { return s.recorder.Engine() }

func (s *session) Close() error { return s.store.Close() }

// openSession resumes campaignID. The caller must Close the session.
func openSession(ctx context.Context, opts *RootOptions, campaignID string) (*session, error) {
	engineOpts, err := opts.engineOptions()
	if err != nil {
		return nil, err
	}
	st, err := opts.openStore()
	if err != nil {
		return nil, err
	}

	snap, err := st.LatestSnapshot(ctx, campaignID)
	if err != nil {
		st.Close()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("campaign not found: %s", campaignID))
		}
		return nil, WrapExitError(ExitCommandError, "failed to load campaign", err)
	}
	if snap.RNG == nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load campaign", command.ErrNoDiceState)
	}

	src, err := dice.RestorePCGSource(snap.RNG)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to restore dice", err)
	}
	e, err := campaign.New(snap.Document, src, engineOpts...)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load campaign", err)
	}

	return &session{
		store:    st,
		recorder: command.NewRecorder(st, e, snap.Seq),
	}, nil
}
