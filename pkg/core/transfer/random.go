package transfer

import (
	"errors"
	"fmt"
	"math/big"
	"math/rand/v2"
	"sort"

	"github.com/carlschroedl/votelib/pkg/core/apportion"
)

// ErrSampleExceedsWeight is returned when more random draws are requested
// than there is weight to draw from without replacement.
var ErrSampleExceedsWeight = errors.New("sample size exceeds total weight")

// Weighted pairs a key with its sampling weight. Distribution input is an
// ordered slice rather than a map so the cumulative boundaries are built the
// same way on every run, which a fixed random seed depends on.
type Weighted[K comparable] struct {
	Key    K
	Weight *big.Rat
}

// DistributeRandom splits n among the entries at random, proportionally to
// their weights. The returned counts sum exactly to n.
//
// Rational weights are rescaled to integers by multiplying through with the
// largest denominator. When that yields exact integer weights, n distinct
// positions are drawn without replacement from the combined weight range, so
// each unit of weight can be selected at most once; drawing more than the
// total weight fails with ErrSampleExceedsWeight. When the weights stay
// fractional after rescaling, n independent uniform samples over the
// cumulative proportions are used instead.
//
// With limitByWeight set, the raw counts are corrected by a Hare-quota
// largest-remainder pass so no entry receives more than its own weight.
func DistributeRandom[K comparable](rng *rand.Rand, entries []Weighted[K], n int, limitByWeight bool) (map[K]int, error) {
	if n < 0 {
		return nil, fmt.Errorf("cannot distribute a negative count %d", n)
	}
	counts := make(map[K]int)
	if n == 0 {
		return counts, nil
	}
	if len(entries) == 0 {
		return nil, errors.New("no entries to distribute among")
	}

	maxDenom := big.NewInt(1)
	for _, e := range entries {
		if e.Weight.Sign() < 0 {
			return nil, fmt.Errorf("negative weight for entry %v", e.Key)
		}
		if e.Weight.Denom().Cmp(maxDenom) > 0 {
			maxDenom = e.Weight.Denom()
		}
	}
	scale := new(big.Rat).SetInt(maxDenom)
	scaled := make([]*big.Rat, len(entries))
	integral := true
	total := new(big.Rat)
	for i, e := range entries {
		w := new(big.Rat).Mul(e.Weight, scale)
		scaled[i] = w
		if !w.IsInt() {
			integral = false
		}
		total.Add(total, w)
	}

	if integral && total.Num().IsInt64() {
		// discrete path: pick n distinct weight units
		cum := make([]int64, len(entries))
		var running int64
		for i, w := range scaled {
			running += w.Num().Int64()
			cum[i] = running
		}
		draws, err := sampleWithoutReplacement(rng, running, n)
		if err != nil {
			return nil, err
		}
		for _, d := range draws {
			idx := sort.Search(len(cum), func(i int) bool { return cum[i] > d })
			counts[entries[idx].Key]++
		}
	} else {
		// continuous fallback over cumulative proportions
		totalF, _ := total.Float64()
		cum := make([]float64, len(entries))
		var running float64
		for i, w := range scaled {
			wf, _ := w.Float64()
			running += wf / totalF
			cum[i] = running
		}
		for i := 0; i < n; i++ {
			u := rng.Float64()
			idx := sort.Search(len(cum), func(i int) bool { return cum[i] > u })
			if idx == len(cum) {
				idx = len(cum) - 1
			}
			counts[entries[idx].Key]++
		}
	}

	if limitByWeight {
		shares := make([]apportion.Share[K], 0, len(counts))
		for _, e := range entries {
			c, selected := counts[e.Key]
			if !selected {
				continue
			}
			shares = append(shares, apportion.Share[K]{
				Key:   e.Key,
				Votes: big.NewRat(int64(c), 1),
				Cap:   e.Weight,
			})
		}
		return apportion.HareLargestRemainder(shares, n)
	}
	return counts, nil
}

// sampleWithoutReplacement draws n distinct integers from [0, total) using
// Floyd's algorithm, so it needs only O(n) extra space regardless of total.
func sampleWithoutReplacement(rng *rand.Rand, total int64, n int) ([]int64, error) {
	if int64(n) > total {
		return nil, fmt.Errorf("%w: want %d of %d", ErrSampleExceedsWeight, n, total)
	}
	chosen := make(map[int64]struct{}, n)
	out := make([]int64, 0, n)
	for i := total - int64(n); i < total; i++ {
		j := rng.Int64N(i + 1)
		if _, taken := chosen[j]; taken {
			j = i
		}
		chosen[j] = struct{}{}
		out = append(out, j)
	}
	return out, nil
}
