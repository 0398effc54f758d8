package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/driftcrew/internal/campaign"
	"github.com/roach88/driftcrew/internal/command"
)

// InvokeOptions holds flags for the invoke command.
type InvokeOptions struct {
	*RootOptions
	Args string
}

// InvokeResult is the outcome of an accepted command.
type InvokeResult struct {
	Command   string `json:"command"`
	Case      string `json:"case"`
	Seq       int64  `json:"seq"`
	Phase     string `json:"phase"`
	Interrupt string `json:"interrupt,omitempty"`
	Result    any    `json:"result,omitempty"`
}

// NewInvokeCommand creates the invoke command.
func NewInvokeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invoke <campaign-id> <command>",
		Short: "Run a command against a campaign",
		Long: `Run a command against a stored campaign.

Accepted commands are journaled and a new snapshot is stored. Rejected
commands leave the campaign untouched and exit with code 1. Queries
(available, quote_upkeep, travel_choices) are never journaled.

Commands:
` + commandList() + `
Examples:
  driftcrew invoke 0190b5c2-... trade --args '{"characterId":"ch-1"}'
  driftcrew invoke 0190b5c2-... available --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokeCommand(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Args, "args", "{}", "command arguments as JSON")

	return cmd
}

func commandList() string {
	var b strings.Builder
	for _, spec := range command.Specs() {
		fmt.Fprintf(&b, "  %-28s %s\n", spec.Name, spec.Summary)
	}
	return b.String()
}

func invokeCommand(opts *InvokeOptions, campaignID, name string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.formatter(cmd)

	// Validate args JSON
	if !json.Valid([]byte(opts.Args)) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --args JSON: %s", opts.Args))
	}
	if _, ok := command.Lookup(name); !ok {
		return WrapExitError(ExitCommandError, name, command.ErrUnknownCommand)
	}

	sess, err := openSession(ctx, opts.RootOptions, campaignID)
	if err != nil {
		return err
	}
	defer sess.Close()

	out, err := sess.recorder.Invoke(ctx, name, json.RawMessage(opts.Args))
	switch command.Classify(err) {
	case command.CaseRejected:
		reason, ok := campaign.Reason(err)
		if !ok {
			reason = err.Error()
		}
		_ = formatter.Error(ErrCodeRejected, reason, nil)
		return NewExitError(ExitFailure, fmt.Sprintf("%s rejected: %s", name, reason))
	case command.CaseFatal:
		_ = formatter.Error(ErrCodeInvariant, err.Error(), nil)
		return WrapExitError(ExitFailure, fmt.Sprintf("%s failed", name), err)
	}

	e := sess.engine()
	result := InvokeResult{
		Command:   name,
		Case:      string(command.CaseOK),
		Seq:       sess.recorder.Seq(),
		Phase:     string(e.Campaign().Phase),
		Interrupt: string(e.Pending()),
		Result:    out,
	}
	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s %s (seq %d)\n", okMark, name, result.Seq)
	if result.Interrupt != "" {
		fmt.Fprintf(w, "  Pending: %s\n", result.Interrupt)
	}
	if out != nil {
		data, err := json.MarshalIndent(out, "  ", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s\n", data)
	}
	return nil
}
