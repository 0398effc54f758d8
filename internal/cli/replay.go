package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/driftcrew/internal/campaign"
	"github.com/roach88/driftcrew/internal/command"
	"github.com/roach88/driftcrew/internal/store"
)

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Campaigns        []command.ReplayReport `json:"campaigns"`
	TotalCampaigns   int                    `json:"total_campaigns"`
	AllDeterministic bool                   `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay [campaign-id]",
		Short: "Replay the command journal and verify determinism",
		Long: `Replay journaled commands and verify determinism.

Each campaign is rebuilt from its first snapshot, including the saved dice
state, and every journaled command is executed again. The resulting digest
must equal the digest of the latest snapshot. Without a campaign id every
campaign in the database is replayed.

Exit codes:
  0 - All campaigns are deterministic
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, etc.)

Examples:
  driftcrew replay
  driftcrew replay 0190b5c2-...
  driftcrew replay --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runReplay(opts *RootOptions, args []string, cmd *cobra.Command) error {
	ctx := context.Background()

	engineOpts, err := opts.engineOptions()
	if err != nil {
		return err
	}
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	// Get campaigns to process
	var ids []string
	if len(args) == 1 {
		ids = args
	} else {
		campaigns, err := st.Campaigns(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list campaigns", err)
		}
		for _, c := range campaigns {
			ids = append(ids, c.ID)
		}
	}

	result := ReplayResult{
		Campaigns:        make([]command.ReplayReport, 0, len(ids)),
		TotalCampaigns:   len(ids),
		AllDeterministic: true,
	}
	if len(ids) == 0 {
		if opts.Format == "json" {
			return outputReplayJSON(cmd, result)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No campaigns found in database.")
		return nil
	}

	for _, id := range ids {
		report, err := replayCampaign(ctx, st, id, engineOpts)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay campaign %s", id), err)
		}

		result.Campaigns = append(result.Campaigns, report)
		if !report.Match {
			result.AllDeterministic = false
		}
	}

	// Output results
	if opts.Format == "json" {
		return outputReplayJSON(cmd, result)
	}

	return outputReplayText(cmd, result, opts.Verbose)
}

// replayCampaign replays one campaign's journal between its first and
// latest snapshots.
func replayCampaign(ctx context.Context, st *store.Store, id string, opts []campaign.Option) (command.ReplayReport, error) {
	first, err := st.FirstSnapshot(ctx, id)
	if err != nil {
		return command.ReplayReport{}, err
	}
	latest, err := st.LatestSnapshot(ctx, id)
	if err != nil {
		return command.ReplayReport{}, err
	}
	journal, err := st.ReadCommands(ctx, id, first.Seq)
	if err != nil {
		return command.ReplayReport{}, err
	}
	return command.Replay(first, journal, latest, opts...)
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeDeterminism,
			Message: "determinism verification failed",
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if !result.AllDeterministic {
		// Determinism failure = exit code 1
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replay Summary: %d campaign(s)\n", result.TotalCampaigns)
	fmt.Fprintln(w)

	for _, report := range result.Campaigns {
		status := okMark
		if !report.Match {
			status = failMark
		}

		fmt.Fprintf(w, "%s Campaign: %s\n", status, report.CampaignID)
		fmt.Fprintf(w, "  Commands: %d (seq %d..%d)\n", report.Commands, report.FromSeq, report.ToSeq)
		if verbose || !report.Match {
			fmt.Fprintf(w, "  Digest:   %s\n", report.Digest)
			fmt.Fprintf(w, "  Expected: %s\n", report.Expected)
		}

		if !report.Match {
			fmt.Fprintln(w, "  Warning: Non-deterministic replay detected!")
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintf(w, "%s All campaigns verified deterministic\n", okMark)
		return nil
	}

	fmt.Fprintf(w, "%s Determinism verification failed\n", failMark)
	// Determinism failure = exit code 1
	return NewExitError(ExitFailure, "determinism verification failed")
}
