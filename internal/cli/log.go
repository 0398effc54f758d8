package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/driftcrew/internal/state"
	"github.com/roach88/driftcrew/internal/store"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	After   int64
	Entries bool
	Turn    int
}

// LogResult holds the journal or the narrative log of a campaign.
type LogResult struct {
	CampaignID string                `json:"campaignId"`
	Commands   []store.CommandRecord `json:"commands,omitempty"`
	Entries    []state.LogEntry      `json:"entries,omitempty"`
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log <campaign-id>",
		Short: "Show a campaign's command journal",
		Long: `Show the journal of accepted commands in the order they were applied.

With --entries, show the campaign's narrative log instead: one line per
rule outcome, keyed for rendering.

Examples:
  driftcrew log 0190b5c2-...
  driftcrew log 0190b5c2-... --after 10
  driftcrew log 0190b5c2-... --entries --turn 3`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(opts, args[0], cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.After, "after", 0, "only commands after this journal seq")
	cmd.Flags().BoolVar(&opts.Entries, "entries", false, "show the narrative log instead of the journal")
	cmd.Flags().IntVar(&opts.Turn, "turn", 0, "only entries from this turn (with --entries)")

	return cmd
}

func runLog(opts *LogOptions, campaignID string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.formatter(cmd)
	result := LogResult{CampaignID: campaignID}

	// Opening a session checks the campaign exists.
	sess, err := openSession(ctx, opts.RootOptions, campaignID)
	if err != nil {
		return err
	}
	defer sess.Close()

	if opts.Entries {
		result.Entries = []state.LogEntry{}
		for _, entry := range sess.engine().Campaign().Log {
			if opts.Turn == 0 || entry.Turn == opts.Turn {
				result.Entries = append(result.Entries, entry)
			}
		}
	} else {
		result.Commands, err = sess.store.ReadCommands(ctx, campaignID, opts.After)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read journal", err)
		}
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	if opts.Entries {
		for _, e := range result.Entries {
			fmt.Fprintf(w, "turn %-3d #%-5d %s%s\n", e.Turn, e.Seq, e.Key, formatParams(e.Params))
		}
		if len(result.Entries) == 0 {
			fmt.Fprintln(w, "No log entries.")
		}
		return nil
	}

	for _, c := range result.Commands {
		fmt.Fprintf(w, "%5d  %-28s %s\n", c.Seq, c.Name, c.Args)
	}
	if len(result.Commands) == 0 {
		fmt.Fprintln(w, "No commands journaled.")
	}
	return nil
}

func formatParams(p state.Params) string {
	if len(p) == 0 {
		return ""
	}
	parts := make([]string, 0, len(p))
	for _, k := range slices.Sorted(maps.Keys(p)) {
		parts = append(parts, k+"="+p[k])
	}
	return " " + strings.Join(parts, " ")
}
