// Package transfer implements vote transfer for single transferable vote
// (STV) counts: redistributing the ballots of elected and eliminated
// candidates to the remaining candidates by their next usable preference.
// Two canonical methods are provided, random whole-ballot selection (Hare)
// and exact fractional scaling (Gregory). Deciding who is elected or
// eliminated, and with what quota, is the caller's job; see pkg/core/count
// for a round driver built on top of this package.
package transfer

import (
	"fmt"
	"math/big"
	"sort"
)

// VoteTransferer reallocates votes from elected and eliminated candidates to
// those remaining in the contest.
type VoteTransferer interface {
	// Transfer removes the elected candidates (consuming their quota) and
	// the eliminated candidates from the allocation, moving their ballots
	// to the next usable preference. The input allocation is never
	// modified; a new allocation without the removed candidates is
	// returned. Ballots with no usable next preference are exhausted and
	// their weight is dropped.
	Transfer(alloc Allocation, elected map[Candidate]*big.Rat, eliminated []Candidate) (Allocation, error)
}

// TransferPolicy supplies the two method-specific operations of a transfer:
// how quota weight is subtracted from an elected candidate's ballots, and how
// a ballot's weight is split among candidates sharing its next rank.
type TransferPolicy interface {
	// Subtract reduces the held weights by quota in place, according to
	// the method's rules.
	Subtract(held BallotWeights, quota *big.Rat) error

	// SplitEqualRank divides weight among the tied target candidates.
	// The returned shares sum exactly to weight.
	SplitEqualRank(targets []Candidate, weight *big.Rat) (map[Candidate]*big.Rat, error)
}

// Transferer is the generic transfer algorithm, parameterized by a
// TransferPolicy. It implements VoteTransferer.
type Transferer struct {
	policy TransferPolicy
}

// New creates a Transferer driven by the given policy.
func New(policy TransferPolicy) *Transferer {
	return &Transferer{policy: policy}
}

// Transfer implements VoteTransferer. Candidates named in elected or
// eliminated must be present in the allocation; a missing candidate fails
// immediately rather than being silently skipped.
func (t *Transferer) Transfer(alloc Allocation, elected map[Candidate]*big.Rat, eliminated []Candidate) (Allocation, error) {
	removed := make(map[Candidate]bool, len(elected)+len(eliminated))
	for cand := range elected {
		removed[cand] = true
	}
	for _, cand := range eliminated {
		removed[cand] = true
	}
	for _, cand := range sortedSet(removed) {
		if _, ok := alloc[cand]; !ok {
			return nil, fmt.Errorf("candidate %q not found in allocation", cand)
		}
	}

	out := alloc.Clone()

	for _, cand := range sortedSet(electedSet(elected)) {
		if err := t.policy.Subtract(out[cand], elected[cand]); err != nil {
			return nil, fmt.Errorf("subtracting quota from %q: %w", cand, err)
		}
	}

	retained := make(map[Candidate]bool, len(out))
	for cand := range out {
		if !removed[cand] {
			retained[cand] = true
		}
	}

	for _, cand := range sortedSet(removed) {
		for _, ballot := range sortedBallots(out[cand]) {
			weight := out[cand][ballot]
			if weight.Sign() == 0 {
				continue
			}
			targets := NextPreference(ballot, cand, retained)
			if len(targets) == 0 {
				continue // exhausted ballot, weight is dropped
			}
			var shares map[Candidate]*big.Rat
			if len(targets) == 1 {
				shares = map[Candidate]*big.Rat{targets[0]: weight}
			} else {
				var err error
				shares, err = t.policy.SplitEqualRank(targets, weight)
				if err != nil {
					return nil, fmt.Errorf("splitting shared rank on ballot %s: %w", ballot, err)
				}
			}
			for target, share := range shares {
				if share.Sign() == 0 {
					continue
				}
				held := out[target]
				if existing, ok := held[ballot]; ok {
					existing.Add(existing, share)
				} else {
					held[ballot] = new(big.Rat).Set(share)
				}
			}
		}
		delete(out, cand)
	}
	return out, nil
}

func electedSet(elected map[Candidate]*big.Rat) map[Candidate]bool {
	set := make(map[Candidate]bool, len(elected))
	for cand := range elected {
		set[cand] = true
	}
	return set
}

func sortedSet(set map[Candidate]bool) []Candidate {
	out := make([]Candidate, 0, len(set))
	for cand := range set {
		out = append(out, cand)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
