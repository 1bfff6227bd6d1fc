package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/carlschroedl/votelib/internal/config"
	"github.com/carlschroedl/votelib/pkg/db"
)

func TestRunTransfer_ElectWithQuota(t *testing.T) {
	step, err := RunTransfer(zap.NewNop(), sampleCountProfile(t), gregoryConfig(),
		[]string{"Alice"}, nil, "15")
	require.NoError(t, err)

	assert.Equal(t, []db.CandidateTotal{
		{Candidate: "Alice", Votes: "24"},
		{Candidate: "Bob", Votes: "10"},
		{Candidate: "Carol", Votes: "8"},
	}, step.Before)

	// Alice's surplus fraction is 9/24, so 6 reach Bob and 3 reach Carol
	assert.Equal(t, []db.CandidateTotal{
		{Candidate: "Bob", Votes: "16"},
		{Candidate: "Carol", Votes: "11"},
	}, step.After)
	assert.Equal(t, "15", step.Discarded)
}

func TestRunTransfer_EliminateOnly(t *testing.T) {
	step, err := RunTransfer(zap.NewNop(), sampleCountProfile(t), gregoryConfig(),
		nil, []string{"Carol"}, "")
	require.NoError(t, err)

	assert.Equal(t, []db.CandidateTotal{
		{Candidate: "Alice", Votes: "24"},
		{Candidate: "Bob", Votes: "18"},
	}, step.After)
	assert.Equal(t, "0", step.Discarded)
}

func TestRunTransfer_FractionalQuota(t *testing.T) {
	step, err := RunTransfer(zap.NewNop(), sampleCountProfile(t), gregoryConfig(),
		[]string{"Alice"}, nil, "31/2")
	require.NoError(t, err)

	// 24 - 31/2 = 17/2 surplus, split 2:1 over Alice's ballot forms
	assert.Equal(t, []db.CandidateTotal{
		{Candidate: "Bob", Votes: "47/3"},
		{Candidate: "Carol", Votes: "65/6"},
	}, step.After)
	assert.Equal(t, "31/2", step.Discarded)
}

func TestRunTransfer_HareReplaysWithSeed(t *testing.T) {
	seed := uint64(1711)
	cfg := &config.Config{Method: "hare", Seats: 2, Seed: &seed}

	first, err := RunTransfer(zap.NewNop(), sampleCountProfile(t), cfg,
		[]string{"Alice"}, nil, "15")
	require.NoError(t, err)
	second, err := RunTransfer(zap.NewNop(), sampleCountProfile(t), cfg,
		[]string{"Alice"}, nil, "15")
	require.NoError(t, err)

	assert.Equal(t, first.After, second.After)
	assert.Equal(t, "15", first.Discarded)
}

func TestRunTransfer_InvalidRequests(t *testing.T) {
	profile := sampleCountProfile(t)
	cfg := gregoryConfig()

	_, err := RunTransfer(zap.NewNop(), profile, cfg, nil, nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to transfer")

	_, err = RunTransfer(zap.NewNop(), profile, cfg, []string{"Alice"}, nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires --quota")

	_, err = RunTransfer(zap.NewNop(), profile, cfg, []string{"Alice"}, nil, "fifteen")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid quota")

	_, err = RunTransfer(zap.NewNop(), profile, cfg, nil, []string{"Zed"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in allocation")
}
