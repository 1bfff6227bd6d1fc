// Package services orchestrates counts across the core, the ballot file
// loader and the results store, keeping the CLI commands thin.
package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/carlschroedl/votelib/internal/config"
	"github.com/carlschroedl/votelib/pkg/ballotfile"
	"github.com/carlschroedl/votelib/pkg/core/count"
	"github.com/carlschroedl/votelib/pkg/db"
)

// CountStore defines the database operations needed to persist a count
type CountStore interface {
	InsertElection(ctx context.Context, election *db.Election) error
	InsertRounds(ctx context.Context, rounds []db.Round) error
}

// RunCountResult contains the tabulation outcome and its stored form
type RunCountResult struct {
	Result   *count.Result
	Election *db.Election
	Rounds   []db.Round
	Saved    bool
}

// RunCount tabulates the profile under the configured method and, when a
// store is provided, persists the result. A nil store skips persistence.
func RunCount(
	ctx context.Context,
	store CountStore,
	logger *zap.Logger,
	profile *ballotfile.Profile,
	cfg *config.Config,
) (*RunCountResult, error) {
	logger.Debug("starting count",
		zap.String("election", profile.Election),
		zap.String("method", cfg.Method),
		zap.Int("seats", cfg.Seats),
		zap.Int("ballot_forms", len(profile.Ballots)))

	opts := count.Options{
		Seats:     cfg.Seats,
		Method:    count.Method(cfg.Method),
		QuotaRule: count.QuotaRule(cfg.QuotaRule),
		Seed:      cfg.Seed,
		Logger:    logger,
	}
	result, err := count.Count(profile.BallotCounts(), opts)
	if err != nil {
		return nil, fmt.Errorf("count failed: %w", err)
	}

	election, rounds := buildRecords(profile.Election, cfg, result, time.Now())
	out := &RunCountResult{Result: result, Election: election, Rounds: rounds}

	if store == nil {
		return out, nil
	}

	logger.Debug("saving count", zap.String("election_id", election.ID))
	if err := store.InsertElection(ctx, election); err != nil {
		return nil, fmt.Errorf("failed to save election: %w", err)
	}
	if err := store.InsertRounds(ctx, rounds); err != nil {
		return nil, fmt.Errorf("failed to save rounds: %w", err)
	}
	out.Saved = true
	return out, nil
}

// buildRecords converts a count result into its stored form. Vote totals are
// serialized as exact rational strings.
func buildRecords(name string, cfg *config.Config, result *count.Result, countedAt time.Time) (*db.Election, []db.Round) {
	quotaRule := cfg.QuotaRule
	if quotaRule == "" {
		quotaRule = string(count.QuotaDroop)
	}
	election := &db.Election{
		ID:        result.ID,
		Name:      name,
		Seats:     cfg.Seats,
		Method:    cfg.Method,
		QuotaRule: quotaRule,
		Quota:     result.Quota.RatString(),
		Elected:   candidateNames(result.Elected),
		CountedAt: countedAt.UTC().Format(time.RFC3339),
	}

	rounds := make([]db.Round, len(result.Rounds))
	for i, round := range result.Rounds {
		record := db.Round{
			ID:         round.ID,
			ElectionID: result.ID,
			Number:     round.Number,
			Elected:    candidateNames(round.Elected),
			Eliminated: candidateNames(round.Eliminated),
		}
		for cand, votes := range round.Totals {
			record.Totals = append(record.Totals, db.CandidateTotal{
				Candidate: string(cand),
				Votes:     votes.RatString(),
			})
		}
		sort.Slice(record.Totals, func(a, b int) bool {
			return record.Totals[a].Candidate < record.Totals[b].Candidate
		})
		rounds[i] = record
	}
	return election, rounds
}

func candidateNames[S ~string](candidates []S) []string {
	out := make([]string, len(candidates))
	for i, cand := range candidates {
		out[i] = string(cand)
	}
	return out
}
