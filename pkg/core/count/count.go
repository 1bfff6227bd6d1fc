// Package count drives a full single transferable vote tabulation on top of
// pkg/core/transfer: it allocates first preferences, computes the quota,
// elects and eliminates candidates round by round, and records what happened
// in each round.
package count

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carlschroedl/votelib/pkg/core/transfer"
)

// Method selects the vote transfer method for a count.
type Method string

const (
	// MethodHare transfers surpluses by random whole-ballot selection.
	MethodHare Method = "hare"
	// MethodGregory transfers surpluses by exact fractional scaling.
	MethodGregory Method = "gregory"
)

// QuotaRule selects how the election quota is computed from the valid vote
// total and the number of seats.
type QuotaRule string

const (
	// QuotaDroop is floor(votes / (seats + 1)) + 1, the usual STV quota.
	QuotaDroop QuotaRule = "droop"
	// QuotaHare is floor(votes / seats).
	QuotaHare QuotaRule = "hare"
)

// Options configures a count.
type Options struct {
	Seats     int
	Method    Method
	QuotaRule QuotaRule // defaults to QuotaDroop
	Seed      *uint64   // fixed Hare seed; nil means system entropy
	Logger    *zap.Logger
}

// BallotCount is a distinct ballot form and how many voters cast it.
type BallotCount struct {
	Ballot *transfer.RankedBallot
	Count  int64
}

// Round records one round of the count. Exactly one of Elected and
// Eliminated is non-empty except for the final fill-by-default round, where
// the last candidates are elected without reaching quota.
type Round struct {
	ID         string
	Number     int
	Totals     map[transfer.Candidate]*big.Rat
	Elected    []transfer.Candidate
	Eliminated []transfer.Candidate
}

// Result is the outcome of a count.
type Result struct {
	ID      string
	Quota   *big.Rat
	Elected []transfer.Candidate // in order of election
	Rounds  []Round
}

// Count runs a full STV tabulation and returns the elected candidates along
// with the round-by-round record.
func Count(ballots []BallotCount, opts Options) (*Result, error) {
	if opts.Seats < 1 {
		return nil, fmt.Errorf("cannot fill %d seats", opts.Seats)
	}
	if len(ballots) == 0 {
		return nil, errors.New("no ballots to count")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	policy, err := PolicyFor(opts)
	if err != nil {
		return nil, err
	}
	transferer := transfer.New(policy)

	alloc, total, err := FirstPreferences(ballots, policy)
	if err != nil {
		return nil, err
	}
	if len(alloc) <= opts.Seats {
		return nil, fmt.Errorf("%d candidates cannot contest %d seats", len(alloc), opts.Seats)
	}

	quota, err := computeQuota(opts.QuotaRule, total, opts.Seats)
	if err != nil {
		return nil, err
	}
	logger.Debug("count started",
		zap.String("method", string(opts.Method)),
		zap.Int("seats", opts.Seats),
		zap.Int64("valid_votes", total),
		zap.String("quota", quota.RatString()),
	)

	result := &Result{ID: uuid.NewString(), Quota: quota}
	for number := 1; len(result.Elected) < opts.Seats; number++ {
		if number > 2*len(ballots)+2*opts.Seats+len(alloc)+2 {
			return nil, errors.New("count did not converge")
		}
		round := Round{ID: uuid.NewString(), Number: number, Totals: totals(alloc)}

		seatsLeft := opts.Seats - len(result.Elected)
		elected := reachedQuota(round.Totals, quota, seatsLeft)

		switch {
		case len(elected) > 0:
			electedQuotas := make(map[transfer.Candidate]*big.Rat, len(elected))
			for _, cand := range elected {
				electedQuotas[cand] = new(big.Rat).Set(quota)
			}
			alloc, err = transferer.Transfer(alloc, electedQuotas, nil)
			if err != nil {
				return nil, fmt.Errorf("round %d: %w", number, err)
			}
			round.Elected = elected
			result.Elected = append(result.Elected, elected...)

		case len(alloc) <= seatsLeft:
			// everyone left is elected by default
			round.Elected = alloc.Candidates()
			result.Elected = append(result.Elected, round.Elected...)
			alloc = transfer.Allocation{}

		default:
			lowest := lowestCandidate(round.Totals)
			alloc, err = transferer.Transfer(alloc, nil, []transfer.Candidate{lowest})
			if err != nil {
				return nil, fmt.Errorf("round %d: %w", number, err)
			}
			round.Eliminated = []transfer.Candidate{lowest}
		}

		logRound(logger, round)
		result.Rounds = append(result.Rounds, round)
	}
	return result, nil
}

// PolicyFor builds the transfer policy the options select.
func PolicyFor(opts Options) (transfer.TransferPolicy, error) {
	switch opts.Method {
	case MethodHare:
		if opts.Seed != nil {
			return transfer.NewHare(*opts.Seed), nil
		}
		return transfer.NewRandomHare(), nil
	case MethodGregory:
		return transfer.NewGregory(), nil
	default:
		return nil, fmt.Errorf("unknown transfer method %q", opts.Method)
	}
}

// FirstPreferences builds the initial allocation. Every candidate appearing
// anywhere on a ballot enters the allocation (so it can receive transfers);
// ballots with a shared first rank are split by the policy's tie-break rule.
// Returns the allocation and the number of valid votes cast.
func FirstPreferences(ballots []BallotCount, policy transfer.TransferPolicy) (transfer.Allocation, int64, error) {
	alloc := make(transfer.Allocation)
	var total int64
	for _, bc := range ballots {
		if bc.Count < 1 {
			return nil, 0, fmt.Errorf("ballot %s has non-positive count %d", bc.Ballot, bc.Count)
		}
		for _, rank := range bc.Ballot.Ranks {
			for _, cand := range rank {
				if alloc[cand] == nil {
					alloc[cand] = make(transfer.BallotWeights)
				}
			}
		}
		if len(bc.Ballot.Ranks) == 0 {
			continue // blank ballot, not a valid vote
		}
		total += bc.Count
		first := bc.Ballot.Ranks[0]
		weight := big.NewRat(bc.Count, 1)
		if len(first) == 1 {
			addWeight(alloc[first[0]], bc.Ballot, weight)
			continue
		}
		shares, err := policy.SplitEqualRank(append([]transfer.Candidate(nil), first...), weight)
		if err != nil {
			return nil, 0, fmt.Errorf("splitting shared first rank on ballot %s: %w", bc.Ballot, err)
		}
		for cand, share := range shares {
			if share.Sign() != 0 {
				addWeight(alloc[cand], bc.Ballot, share)
			}
		}
	}
	return alloc, total, nil
}

func addWeight(held transfer.BallotWeights, ballot *transfer.RankedBallot, w *big.Rat) {
	if existing, ok := held[ballot]; ok {
		existing.Add(existing, w)
	} else {
		held[ballot] = new(big.Rat).Set(w)
	}
}

func computeQuota(rule QuotaRule, total int64, seats int) (*big.Rat, error) {
	switch rule {
	case QuotaDroop, "":
		return big.NewRat(total/int64(seats+1)+1, 1), nil
	case QuotaHare:
		q := total / int64(seats)
		if q < 1 {
			q = 1
		}
		return big.NewRat(q, 1), nil
	default:
		return nil, fmt.Errorf("unknown quota rule %q", rule)
	}
}

func totals(alloc transfer.Allocation) map[transfer.Candidate]*big.Rat {
	out := make(map[transfer.Candidate]*big.Rat, len(alloc))
	for cand, held := range alloc {
		out[cand] = held.Total()
	}
	return out
}

// reachedQuota returns up to seatsLeft candidates at or over quota, highest
// total first; total ties resolve by candidate name so counts replay.
func reachedQuota(totals map[transfer.Candidate]*big.Rat, quota *big.Rat, seatsLeft int) []transfer.Candidate {
	var elected []transfer.Candidate
	for cand, total := range totals {
		if total.Cmp(quota) >= 0 {
			elected = append(elected, cand)
		}
	}
	sort.Slice(elected, func(i, j int) bool {
		cmp := totals[elected[i]].Cmp(totals[elected[j]])
		if cmp != 0 {
			return cmp > 0
		}
		return elected[i] < elected[j]
	})
	if len(elected) > seatsLeft {
		elected = elected[:seatsLeft]
	}
	return elected
}

// lowestCandidate picks the candidate with the fewest votes for elimination,
// breaking exact ties by candidate name.
func lowestCandidate(totals map[transfer.Candidate]*big.Rat) transfer.Candidate {
	var lowest transfer.Candidate
	var lowestTotal *big.Rat
	for cand, total := range totals {
		if lowestTotal == nil {
			lowest, lowestTotal = cand, total
			continue
		}
		cmp := total.Cmp(lowestTotal)
		if cmp < 0 || (cmp == 0 && cand < lowest) {
			lowest, lowestTotal = cand, total
		}
	}
	return lowest
}

func logRound(logger *zap.Logger, round Round) {
	fields := []zap.Field{zap.Int("round", round.Number)}
	for _, cand := range round.Elected {
		fields = append(fields, zap.String("elected", string(cand)))
	}
	for _, cand := range round.Eliminated {
		fields = append(fields, zap.String("eliminated", string(cand)))
	}
	logger.Debug("round complete", fields...)
}
