package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommand(t *testing.T) {
	opts := testOptions(t, "text")
	path := filepath.Join(t.TempDir(), "campaign.yaml")
	require.NoError(t, os.WriteFile(path, []byte(campaignYAML), 0o644))

	out, err := execute(t, NewNewCommand(opts), path, "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Created campaign First Run")
	assert.Contains(t, out, "Crew: 3")
	assert.Contains(t, out, "Seed: 7")
}

func TestNewCommandErrors(t *testing.T) {
	dir := t.TempDir()
	typo := filepath.Join(dir, "typo.yaml")
	require.NoError(t, os.WriteFile(typo, []byte("name: x\ncrewname: y\n"), 0o644))
	noLeader := filepath.Join(dir, "noleader.yaml")
	require.NoError(t, os.WriteFile(noLeader, []byte("name: x\nworld: {name: Nivar}\n"), 0o644))

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantErr  string
	}{
		{"missing file", filepath.Join(dir, "absent.yaml"), ExitCommandError, "failed to read campaign file"},
		{"unknown field", typo, ExitCommandError, "failed to parse YAML"},
		{"no leader", noLeader, ExitFailure, "create.no_leader"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, NewNewCommand(testOptions(t, "text")), tt.path)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInvokeCommand_Session(t *testing.T) {
	opts := testOptions(t, "text")
	id := createCampaign(t, opts)

	// queries are answered but not journaled
	out, err := execute(t, NewInvokeCommand(opts), id, "available")
	require.NoError(t, err)
	assert.Contains(t, out, "available (seq 0)")
	assert.Contains(t, out, "sp_for_credits")

	out, err = execute(t, NewInvokeCommand(opts), id, "sp_for_credits")
	require.NoError(t, err)
	assert.Contains(t, out, "sp_for_credits (seq 1)")

	// the used flag survives a reload from the store
	out, err = execute(t, NewInvokeCommand(opts), id, "sp_for_credits")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "guard.used_this_turn")
	assert.Contains(t, out, ErrCodeRejected)

	_, err = execute(t, NewInvokeCommand(opts), id, "end_turn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "guard.wrong_phase")

	out, err = execute(t, NewLogCommand(opts), id)
	require.NoError(t, err)
	assert.Contains(t, out, "sp_for_credits")
	assert.NotContains(t, out, "end_turn")
	assert.NotContains(t, out, "available")

	out, err = execute(t, NewLogCommand(opts), id, "--entries")
	require.NoError(t, err)
	assert.Contains(t, out, "campaign.created")

	out, err = execute(t, NewReplayCommand(opts), id)
	require.NoError(t, err)
	assert.Contains(t, out, "Commands: 1 (seq 0..1)")
	assert.Contains(t, out, "All campaigns verified deterministic")
}

func TestInvokeCommand_JSON(t *testing.T) {
	opts := testOptions(t, "json")
	id := createCampaign(t, opts)

	out, err := execute(t, NewInvokeCommand(opts), id, "sp_for_credits", "--args", "{}")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   InvokeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Data.Case)
	assert.Equal(t, int64(1), resp.Data.Seq)
	assert.Equal(t, "upkeep", resp.Data.Phase)
}

func TestInvokeCommand_Errors(t *testing.T) {
	opts := testOptions(t, "text")
	id := createCampaign(t, opts)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"missing args", []string{id}, ExitFailure, "accepts 2 arg"},
		{"bad json", []string{id, "trade", "--args", "{"}, ExitCommandError, "invalid --args JSON"},
		{"unknown command", []string{id, "teleport"}, ExitCommandError, "unknown command"},
		{"unknown campaign", []string{"nope", "available"}, ExitCommandError, "campaign not found"},
		{"unknown field", []string{id, "sp_for_xp", "--args", `{"who":"x"}`}, ExitFailure, "rejected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, NewInvokeCommand(opts), tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStatusCommand(t *testing.T) {
	opts := testOptions(t, "text")
	id := createCampaign(t, opts)

	out, err := execute(t, NewStatusCommand(opts), id)
	require.NoError(t, err)
	assert.Contains(t, out, "First Run ("+id+")")
	assert.Contains(t, out, "Turn 1, Upkeep phase")
	assert.Contains(t, out, "World: Nivar")
	assert.Contains(t, out, "Ash, xp 0 [leader]")
	assert.Contains(t, out, "Ship: Rustbucket")

	jsonOpts := *opts
	jsonOpts.Format = "json"
	out, err = execute(t, NewStatusCommand(&jsonOpts), id)
	require.NoError(t, err)

	var resp struct {
		Data StatusView `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp.Data.Turn)
	assert.Equal(t, "upkeep", resp.Data.Phase)
	assert.Len(t, resp.Data.Crew, 3)
	assert.Contains(t, resp.Data.Available, "sp_for_credits")
	assert.NotContains(t, resp.Data.Available, "end_turn")
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Post Battle", displayName("post_battle"))
	assert.Equal(t, "Trade Choice", displayName("trade_choice"))
	assert.Equal(t, "Upkeep", displayName("upkeep"))
}

func TestReplayCommand_AllCampaigns(t *testing.T) {
	opts := testOptions(t, "json")

	out, err := execute(t, NewReplayCommand(opts))
	require.NoError(t, err)
	var empty struct {
		Data ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &empty))
	assert.Equal(t, 0, empty.Data.TotalCampaigns)
	assert.True(t, empty.Data.AllDeterministic)

	createCampaign(t, opts)
	createCampaign(t, opts)

	out, err = execute(t, NewReplayCommand(opts))
	require.NoError(t, err)
	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.TotalCampaigns)
	assert.True(t, resp.Data.AllDeterministic)
}

func TestReplayCommand_UnknownCampaign(t *testing.T) {
	_, err := execute(t, NewReplayCommand(testOptions(t, "text")), "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
