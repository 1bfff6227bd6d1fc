package transfer

import (
	"math/big"
	"sort"
	"strings"
)

// Candidate identifies a contestant in the election. The counting code treats
// it as an opaque token; any stable string works (name, ballot-paper id, ...).
type Candidate string

// Rank is a single preference position on a ballot. Most ranks hold exactly
// one candidate; a rank with multiple candidates expresses equal preference
// between them (a shared rank).
type Rank []Candidate

// RankedBallot is an ordered list of preference ranks, highest first.
// Ballots are shared by pointer: an allocation keys on *RankedBallot so that
// the same ballot keeps its identity as it moves between candidates during
// transfers.
type RankedBallot struct {
	Ranks []Rank
}

// NewBallot builds a ballot from the given ranks, highest preference first.
func NewBallot(ranks ...Rank) *RankedBallot {
	return &RankedBallot{Ranks: ranks}
}

// String renders the ballot in a compact "A>B=C>D" form. Used for logging and
// to give ballots a stable ordering during counting.
func (b *RankedBallot) String() string {
	parts := make([]string, len(b.Ranks))
	for i, rank := range b.Ranks {
		names := make([]string, len(rank))
		for j, cand := range rank {
			names[j] = string(cand)
		}
		parts[i] = strings.Join(names, "=")
	}
	return strings.Join(parts, ">")
}

// NextPreference finds the candidate(s) ranked on the ballot directly after
// cand. If allowed is non-nil, only candidates present in it are eligible;
// ranks whose candidates have all dropped out of allowed are skipped and the
// scan continues to lower preferences. The result is empty when cand is not
// on the ballot or no usable preference follows it (an exhausted ballot).
// Returned candidates are sorted for deterministic downstream iteration.
func NextPreference(b *RankedBallot, cand Candidate, allowed map[Candidate]bool) []Candidate {
	takeNext := false
	for _, rank := range b.Ranks {
		if !takeNext {
			for _, alt := range rank {
				if alt == cand {
					takeNext = true
					break
				}
			}
			continue
		}
		if allowed == nil {
			return sortedRank(rank)
		}
		var eligible []Candidate
		for _, alt := range rank {
			if allowed[alt] {
				eligible = append(eligible, alt)
			}
		}
		if len(eligible) > 0 {
			return sortedRank(eligible)
		}
		// every candidate at this rank has left the contest, scan lower ranks
	}
	return nil
}

func sortedRank(rank []Candidate) []Candidate {
	out := make([]Candidate, len(rank))
	copy(out, rank)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// BallotWeights records how much vote weight each ballot contributes to the
// candidate currently holding it. Weights are exact rationals; the Hare
// method keeps them integer-valued.
type BallotWeights map[*RankedBallot]*big.Rat

// Total sums the weights held.
func (bw BallotWeights) Total() *big.Rat {
	total := new(big.Rat)
	for _, w := range bw {
		total.Add(total, w)
	}
	return total
}

// Clone deep-copies the mapping, including the weight values.
func (bw BallotWeights) Clone() BallotWeights {
	out := make(BallotWeights, len(bw))
	for ballot, w := range bw {
		out[ballot] = new(big.Rat).Set(w)
	}
	return out
}

// Allocation assigns every candidate still in the contest the ballots they
// currently hold. A ballot appears under at most one candidate at a time.
type Allocation map[Candidate]BallotWeights

// Clone deep-copies the allocation. Ballot pointers are shared (ballot
// identity is deliberately preserved); weights are copied.
func (a Allocation) Clone() Allocation {
	out := make(Allocation, len(a))
	for cand, held := range a {
		out[cand] = held.Clone()
	}
	return out
}

// Total sums all weight held across all candidates.
func (a Allocation) Total() *big.Rat {
	total := new(big.Rat)
	for _, held := range a {
		total.Add(total, held.Total())
	}
	return total
}

// Candidates returns the allocation's candidates in sorted order. Go maps
// iterate in randomized order; counting walks candidates through this so
// seeded runs reproduce.
func (a Allocation) Candidates() []Candidate {
	out := make([]Candidate, 0, len(a))
	for cand := range a {
		out = append(out, cand)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// sortedBallots orders ballots by their canonical string form so ballot
// iteration is deterministic under a fixed random seed.
func sortedBallots(bw BallotWeights) []*RankedBallot {
	out := make([]*RankedBallot, 0, len(bw))
	for ballot := range bw {
		out = append(out, ballot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
