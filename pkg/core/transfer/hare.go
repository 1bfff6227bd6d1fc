package transfer

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"
	"math/rand/v2"
)

// Hare is the random ballot selection transfer policy, as used in Irish lower
// house (Dáil Éireann) elections. When a candidate is elected, whole ballots
// equal to the quota are drawn at random and discarded; the rest transfer
// whole to their next preference. Shared ranks are split at random between
// the tied candidates.
//
// A Hare policy constructed with a seed is stable: repeating a transfer with
// identical inputs reproduces identical output, because the policy reseeds
// its private generator from the stored seed before every draw. Without a
// seed each draw is seeded from system entropy and runs are not reproducible.
type Hare struct {
	seed   uint64
	seeded bool
}

// NewHare creates a Hare policy with a fixed seed, giving deterministic
// transfers for identical inputs.
func NewHare(seed uint64) *Hare {
	return &Hare{seed: seed, seeded: true}
}

// NewRandomHare creates a Hare policy seeded from system entropy. Transfers
// are not reproducible across runs.
func NewRandomHare() *Hare {
	return &Hare{}
}

// Stable reports whether the policy produces reproducible transfers.
func (h *Hare) Stable() bool {
	return h.seeded
}

// newRNG returns a generator reset to the stored seed, or freshly seeded
// from entropy when none was configured. Called once per draw site so that a
// fixed seed replays the same stream at each site.
func (h *Hare) newRNG() *rand.Rand {
	if h.seeded {
		return rand.New(rand.NewPCG(h.seed, 0))
	}
	var buf [16]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		// entropy failure is not recoverable mid-count
		panic(fmt.Sprintf("seeding random generator: %v", err))
	}
	return rand.New(rand.NewPCG(
		binary.LittleEndian.Uint64(buf[:8]),
		binary.LittleEndian.Uint64(buf[8:]),
	))
}

// Subtract discards quota whole ballots at random from the held set,
// weighted by each ballot's count and capped by it, then decrements the
// counts. The quota and all held counts must be whole numbers.
func (h *Hare) Subtract(held BallotWeights, quota *big.Rat) error {
	n, err := wholeVotes(quota)
	if err != nil {
		return fmt.Errorf("hare quota: %w", err)
	}
	entries := make([]Weighted[*RankedBallot], 0, len(held))
	for _, ballot := range sortedBallots(held) {
		entries = append(entries, Weighted[*RankedBallot]{Key: ballot, Weight: held[ballot]})
	}
	subtractions, err := DistributeRandom(h.newRNG(), entries, n, true)
	if err != nil {
		return err
	}
	for ballot, num := range subtractions {
		held[ballot].Sub(held[ballot], big.NewRat(int64(num), 1))
	}
	return nil
}

// SplitEqualRank gives each tied target an equal whole share of the votes
// and assigns the remainder one ballot at a time by unweighted random draw.
func (h *Hare) SplitEqualRank(targets []Candidate, weight *big.Rat) (map[Candidate]*big.Rat, error) {
	votes, err := wholeVotes(weight)
	if err != nil {
		return nil, fmt.Errorf("hare ballot weight: %w", err)
	}
	shares := make(map[Candidate]*big.Rat, len(targets))
	whole := votes / len(targets)
	remainder := votes - whole*len(targets)
	for _, cand := range targets {
		shares[cand] = big.NewRat(int64(whole), 1)
	}
	if remainder == 0 {
		return shares, nil
	}
	entries := make([]Weighted[Candidate], len(targets))
	for i, cand := range targets {
		entries[i] = Weighted[Candidate]{Key: cand, Weight: big.NewRat(int64(remainder), 1)}
	}
	dist, err := DistributeRandom(h.newRNG(), entries, remainder, false)
	if err != nil {
		return nil, err
	}
	for cand, extra := range dist {
		shares[cand].Add(shares[cand], big.NewRat(int64(extra), 1))
	}
	return shares, nil
}

// wholeVotes converts a rational vote quantity to a non-negative int,
// rejecting fractional values: Hare operates on indivisible whole ballots.
func wholeVotes(r *big.Rat) (int, error) {
	if !r.IsInt() {
		return 0, fmt.Errorf("%s is not a whole number of votes", r.RatString())
	}
	if r.Sign() < 0 {
		return 0, fmt.Errorf("%s is a negative number of votes", r.RatString())
	}
	if !r.Num().IsInt64() {
		return 0, fmt.Errorf("%s votes out of range", r.RatString())
	}
	return int(r.Num().Int64()), nil
}
