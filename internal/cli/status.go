package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/driftcrew/internal/state"
)

// StatusView summarizes a campaign.
type StatusView struct {
	CampaignID  string       `json:"campaignId"`
	Name        string       `json:"name"`
	Turn        int          `json:"turn"`
	Phase       string       `json:"phase"`
	Credits     int          `json:"credits"`
	Debt        int          `json:"debt"`
	StoryPoints int          `json:"storyPoints"`
	World       string       `json:"world,omitempty"`
	Interrupt   string       `json:"interrupt,omitempty"`
	Crew        []MemberView `json:"crew"`
	Ship        *state.Ship  `json:"ship,omitempty"`
	Available   []string     `json:"available"`
}

// MemberView is one crew member in a status report.
type MemberView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Leader  bool   `json:"leader,omitempty"`
	XP      int    `json:"xp"`
	SickBay bool   `json:"sickBay,omitempty"`
}

var titler = cases.Title(language.English)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <campaign-id>",
		Short: "Show a campaign's current state",
		Long: `Show the turn, phase, resources, crew and pending interrupt of a
campaign, along with the commands whose preconditions currently hold.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runStatus(opts *RootOptions, campaignID string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.formatter(cmd)

	sess, err := openSession(ctx, opts, campaignID)
	if err != nil {
		return err
	}
	defer sess.Close()

	doc, err := sess.engine().Document()
	if err != nil {
		return err
	}
	view := buildStatus(doc)
	view.Interrupt = string(sess.engine().Pending())
	for _, g := range sess.engine().Available() {
		if g.Guard.Allowed {
			view.Available = append(view.Available, g.Command)
		}
	}

	if formatter.JSON() {
		return formatter.Success(view)
	}
	writeStatus(cmd, view)
	return nil
}

func buildStatus(doc state.Document) StatusView {
	c := doc.Campaign
	view := StatusView{
		CampaignID:  c.ID,
		Name:        c.Name,
		Turn:        c.Turn,
		Phase:       string(c.Phase),
		Credits:     c.Credits,
		Debt:        c.Debt,
		StoryPoints: c.StoryPoints,
		Crew:        make([]MemberView, 0, len(doc.Crew.Members)),
		Ship:        doc.Ship,
		Available:   []string{},
	}
	if c.CurrentWorld != nil {
		view.World = c.CurrentWorld.Name
	}
	for _, m := range doc.Crew.Members {
		view.Crew = append(view.Crew, MemberView{
			ID:      m.ID,
			Name:    m.Name,
			Leader:  m.Leader,
			XP:      m.XP,
			SickBay: m.InSickBay(),
		})
	}
	return view
}

// displayName turns an identifier such as post_battle into "Post Battle".
func displayName(id string) string {
	return titler.String(strings.ReplaceAll(id, "_", " "))
}

func writeStatus(cmd *cobra.Command, v StatusView) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "%s (%s)\n", v.Name, v.CampaignID)
	fmt.Fprintf(w, "Turn %d, %s phase\n", v.Turn, displayName(v.Phase))
	fmt.Fprintf(w, "Credits: %d  Debt: %d  Story points: %d\n", v.Credits, v.Debt, v.StoryPoints)
	if v.World != "" {
		fmt.Fprintf(w, "World: %s\n", v.World)
	}
	if v.Interrupt != "" {
		fmt.Fprintf(w, "%s Pending: %s\n", warnMark, displayName(v.Interrupt))
	}

	fmt.Fprintln(w, "Crew:")
	for _, m := range v.Crew {
		var tags []string
		if m.Leader {
			tags = append(tags, "leader")
		}
		if m.SickBay {
			tags = append(tags, "sick bay")
		}
		line := fmt.Sprintf("  %s %s, xp %d", m.ID, m.Name, m.XP)
		if len(tags) > 0 {
			line += " [" + strings.Join(tags, ", ") + "]"
		}
		fmt.Fprintln(w, line)
	}

	if v.Ship != nil {
		fmt.Fprintf(w, "Ship: %s, hull %d/%d\n", v.Ship.Name, v.Ship.Hull, v.Ship.MaxHull)
	} else {
		fmt.Fprintln(w, "Ship: none")
	}
	if len(v.Available) > 0 {
		fmt.Fprintf(w, "Available: %s\n", strings.Join(v.Available, ", "))
	}
}
