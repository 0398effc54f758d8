package cli

import (
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/driftcrew/internal/campaign"
	"github.com/roach88/driftcrew/internal/command"
	"github.com/roach88/driftcrew/internal/dice"
)

// NewOptions holds flags for the new command.
type NewOptions struct {
	*RootOptions
	Seed uint64
}

// NewResult describes a freshly created campaign.
type NewResult struct {
	CampaignID string `json:"campaignId"`
	Name       string `json:"name"`
	Seed       uint64 `json:"seed"`
	Credits    int    `json:"credits"`
	Crew       int    `json:"crew"`
	Digest     string `json:"digest"`
}

// NewNewCommand creates the new command.
func NewNewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "new <campaign.yaml>",
		Short: "Create a campaign",
		Long: `Create a campaign from a YAML description and store its first snapshot.

The file names the campaign, the crew, the leader, an optional starting
ship and the starting world:

  name: First Run
  crew_name: Wayfarers
  ship_name: Rustbucket
  leader: { name: Ash, race: human }
  crew:
    - { name: Bryn, race: human }
  world: { name: Nivar }

Examples:
  driftcrew new campaign.yaml
  driftcrew new campaign.yaml --seed 42 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(opts, args[0], cmd)
		},
	}

	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "dice seed (default: config seed, else random)")

	return cmd
}

func runNew(opts *NewOptions, path string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.formatter(cmd)

	params, err := loadCreateParams(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read campaign file", err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = opts.Config.Seed
	}
	if seed == 0 {
		seed = rand.Uint64()
	}
	formatter.VerboseLog("Using dice seed %d", seed)

	engineOpts, err := opts.engineOptions()
	if err != nil {
		return err
	}
	e, err := campaign.Create(params, dice.NewPCGSource(seed), engineOpts...)
	if err != nil {
		if reason, ok := campaign.Reason(err); ok {
			_ = formatter.Error(ErrCodeRejected, reason, nil)
			return NewExitError(ExitFailure, fmt.Sprintf("campaign rejected: %s", reason))
		}
		return WrapExitError(ExitCommandError, "failed to create campaign", err)
	}

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	c := e.Campaign()
	if err := st.CreateCampaign(ctx, c.ID, c.Name); err != nil {
		return WrapExitError(ExitCommandError, "failed to store campaign", err)
	}
	digest, err := command.NewRecorder(st, e, 0).Checkpoint(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to store campaign", err)
	}

	doc, err := e.Document()
	if err != nil {
		return err
	}
	result := NewResult{
		CampaignID: c.ID,
		Name:       c.Name,
		Seed:       seed,
		Credits:    c.Credits,
		Crew:       len(doc.Crew.Members),
		Digest:     digest,
	}
	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s Created campaign %s (%s)\n", okMark, result.Name, result.CampaignID)
	fmt.Fprintf(w, "  Crew: %d  Credits: %d  Seed: %d\n", result.Crew, result.Credits, result.Seed)
	return nil
}

func loadCreateParams(path string) (campaign.CreateParams, error) {
	var p campaign.CreateParams
	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return p, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return p, nil
}
