// Package apportion implements largest-remainder seat apportionment with the
// Hare quota. The vote transfer code uses it to correct random ballot draws
// against per-ballot capacity; it also works standalone for party-list style
// seat allocation.
package apportion

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
)

// ErrInsufficientCapacity is returned when the caps on the shares do not
// leave room for all of the seats being allocated.
var ErrInsufficientCapacity = errors.New("share caps too low to place all seats")

// Share is one participant in an apportionment: its vote weight and an
// optional cap on how many seats it may receive. A nil Cap means unlimited.
// Shares are supplied as an ordered slice so that remainder ties resolve the
// same way on every run.
type Share[K comparable] struct {
	Key   K
	Votes *big.Rat
	Cap   *big.Rat
}

// HareLargestRemainder allocates seats proportionally to the shares' votes
// using the Hare quota (total votes divided by seats). Each share first
// receives the whole part of its exact entitlement, clamped to its cap; the
// remaining seats go one each to the largest fractional remainders among
// shares still under their cap. The result maps every share's key to its
// seat count and the counts sum exactly to seats.
func HareLargestRemainder[K comparable](shares []Share[K], seats int) (map[K]int, error) {
	if seats < 0 {
		return nil, fmt.Errorf("cannot allocate %d seats", seats)
	}
	result := make(map[K]int, len(shares))
	for _, s := range shares {
		result[s.Key] = 0
	}
	if seats == 0 {
		return result, nil
	}

	total := new(big.Rat)
	for _, s := range shares {
		if s.Votes.Sign() < 0 {
			return nil, fmt.Errorf("negative vote weight for share %v", s.Key)
		}
		total.Add(total, s.Votes)
	}
	if total.Sign() == 0 {
		return nil, errors.New("no votes to apportion seats by")
	}

	type entitlement struct {
		idx       int
		remainder *big.Rat
		capSeats  int
		capped    bool
	}

	// exact entitlement = votes / (total / seats) = votes * seats / total
	scale := new(big.Rat).Mul(big.NewRat(int64(seats), 1), new(big.Rat).Inv(total))
	entitlements := make([]entitlement, len(shares))
	allocated := 0
	for i, s := range shares {
		exact := new(big.Rat).Mul(s.Votes, scale)
		whole := int(new(big.Int).Quo(exact.Num(), exact.Denom()).Int64())
		ent := entitlement{idx: i, remainder: new(big.Rat)}
		if s.Cap != nil {
			ent.capped = true
			ent.capSeats = int(new(big.Int).Quo(s.Cap.Num(), s.Cap.Denom()).Int64())
			if whole > ent.capSeats {
				whole = ent.capSeats
			}
		}
		ent.remainder.Sub(exact, big.NewRat(int64(whole), 1))
		entitlements[i] = ent
		result[s.Key] = whole
		allocated += whole
	}

	// leftover seats go to the largest remainders, skipping shares at cap
	sort.SliceStable(entitlements, func(i, j int) bool {
		return entitlements[i].remainder.Cmp(entitlements[j].remainder) > 0
	})
	for remaining := seats - allocated; remaining > 0; {
		progressed := false
		for _, ent := range entitlements {
			key := shares[ent.idx].Key
			if ent.capped && result[key] >= ent.capSeats {
				continue
			}
			result[key]++
			remaining--
			progressed = true
			if remaining == 0 {
				break
			}
		}
		if !progressed {
			return nil, ErrInsufficientCapacity
		}
	}
	return result, nil
}
