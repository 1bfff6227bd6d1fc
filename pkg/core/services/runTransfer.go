package services

import (
	"fmt"
	"math/big"
	"sort"

	"go.uber.org/zap"

	"github.com/carlschroedl/votelib/internal/config"
	"github.com/carlschroedl/votelib/pkg/ballotfile"
	"github.com/carlschroedl/votelib/pkg/core/count"
	"github.com/carlschroedl/votelib/pkg/core/transfer"
	"github.com/carlschroedl/votelib/pkg/db"
)

// TransferStep is the outcome of a single inspected transfer: candidate
// totals before and after, and how much weight left the count entirely
// (elected quotas plus exhausted ballots).
type TransferStep struct {
	Before    []db.CandidateTotal
	After     []db.CandidateTotal
	Discarded string // exact rational string
}

// RunTransfer allocates first preferences from the profile and applies one
// transfer step, removing the elected candidates (each consuming quota) and
// the eliminated candidates. It is a dry-run inspection tool; nothing is
// stored.
func RunTransfer(
	logger *zap.Logger,
	profile *ballotfile.Profile,
	cfg *config.Config,
	elect []string,
	eliminate []string,
	quota string,
) (*TransferStep, error) {
	if len(elect) == 0 && len(eliminate) == 0 {
		return nil, fmt.Errorf("nothing to transfer: name at least one candidate to elect or eliminate")
	}

	policy, err := count.PolicyFor(count.Options{Method: count.Method(cfg.Method), Seed: cfg.Seed})
	if err != nil {
		return nil, err
	}

	var quotaRat *big.Rat
	if len(elect) > 0 {
		if quota == "" {
			return nil, fmt.Errorf("electing a candidate requires --quota")
		}
		quotaRat = new(big.Rat)
		if _, ok := quotaRat.SetString(quota); !ok {
			return nil, fmt.Errorf("invalid quota %q: want a rational like 15 or 31/2", quota)
		}
		if quotaRat.Sign() < 0 {
			return nil, fmt.Errorf("quota %q is negative", quota)
		}
	}

	alloc, votes, err := count.FirstPreferences(profile.BallotCounts(), policy)
	if err != nil {
		return nil, err
	}
	logger.Debug("transfer step",
		zap.String("method", cfg.Method),
		zap.Strings("elect", elect),
		zap.Strings("eliminate", eliminate),
		zap.Int64("valid_votes", votes))

	elected := make(map[transfer.Candidate]*big.Rat, len(elect))
	for _, name := range elect {
		elected[transfer.Candidate(name)] = new(big.Rat).Set(quotaRat)
	}
	eliminated := make([]transfer.Candidate, len(eliminate))
	for i, name := range eliminate {
		eliminated[i] = transfer.Candidate(name)
	}

	before := allocationTotals(alloc)
	out, err := transfer.New(policy).Transfer(alloc, elected, eliminated)
	if err != nil {
		return nil, err
	}

	discarded := new(big.Rat).Sub(alloc.Total(), out.Total())
	return &TransferStep{
		Before:    before,
		After:     allocationTotals(out),
		Discarded: discarded.RatString(),
	}, nil
}

func allocationTotals(alloc transfer.Allocation) []db.CandidateTotal {
	out := make([]db.CandidateTotal, 0, len(alloc))
	for cand, held := range alloc {
		out = append(out, db.CandidateTotal{
			Candidate: string(cand),
			Votes:     held.Total().RatString(),
		})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Candidate < out[b].Candidate })
	return out
}
