package transfer

import (
	"errors"
	"math/big"
)

// Gregory is the fractional transfer policy, specifically the Weighted
// Inclusive Gregory Method (WIGM) used in Scottish local government
// elections. When a candidate is elected, every ballot they hold is scaled
// by the exact fraction of their votes left over after the quota is
// consumed, and the reduced weights transfer to the next preferences.
// Shared ranks are split evenly.
//
// All arithmetic is exact rational; no rounding is applied and no vote
// weight is ever created or destroyed beyond the quota itself. Rounded
// fractional transfers (as some statutes prescribe) are not implemented.
// Gregory transfers are fully deterministic.
type Gregory struct{}

// NewGregory creates a Gregory policy.
func NewGregory() *Gregory {
	return &Gregory{}
}

// Subtract scales every held weight by (total - quota) / total, where total
// is the sum of the candidate's current weights.
func (g *Gregory) Subtract(held BallotWeights, quota *big.Rat) error {
	total := held.Total()
	if total.Sign() == 0 {
		if quota.Sign() == 0 {
			return nil
		}
		return errors.New("candidate holds no votes to subtract a quota from")
	}
	fraction := new(big.Rat).Sub(total, quota)
	fraction.Quo(fraction, total)
	for _, w := range held {
		w.Mul(w, fraction)
	}
	return nil
}

// SplitEqualRank divides weight exactly evenly among the targets.
func (g *Gregory) SplitEqualRank(targets []Candidate, weight *big.Rat) (map[Candidate]*big.Rat, error) {
	split := new(big.Rat).Quo(weight, big.NewRat(int64(len(targets)), 1))
	shares := make(map[Candidate]*big.Rat, len(targets))
	for _, cand := range targets {
		shares[cand] = new(big.Rat).Set(split)
	}
	return shares, nil
}
