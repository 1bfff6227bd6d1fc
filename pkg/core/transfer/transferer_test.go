package transfer

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleAllocation builds a four-candidate allocation with fully ranked
// ballots, so no ballot exhausts while any candidate remains.
func sampleAllocation() Allocation {
	ranks := func(order string) []Rank {
		out := make([]Rank, len(order))
		for i, c := range order {
			out[i] = Rank{Candidate(c)}
		}
		return out
	}
	ballot := func(order string, n int64) func(BallotWeights) {
		return func(bw BallotWeights) {
			bw[NewBallot(ranks(order)...)] = big.NewRat(n, 1)
		}
	}
	build := func(ballots ...func(BallotWeights)) BallotWeights {
		bw := make(BallotWeights)
		for _, add := range ballots {
			add(bw)
		}
		return bw
	}
	return Allocation{
		"A": build(ballot("ABCD", 5), ballot("ACDB", 3), ballot("ADBC", 2)),
		"B": build(ballot("BACD", 2), ballot("BCAD", 1), ballot("BDAC", 5)),
		"C": build(ballot("CABD", 2), ballot("CBDA", 1), ballot("CDAB", 3)),
		"D": build(ballot("DABC", 1), ballot("DBCA", 1), ballot("DCAB", 1)),
	}
}

func transferers() map[string]*Transferer {
	return map[string]*Transferer{
		"hare":    New(NewHare(1711)),
		"gregory": New(NewGregory()),
	}
}

func TestTransfer_RemovesElectedAndEliminated(t *testing.T) {
	for name, tr := range transferers() {
		alloc := sampleAllocation()

		out, err := tr.Transfer(alloc,
			map[Candidate]*big.Rat{"A": big.NewRat(6, 1)},
			[]Candidate{"D"})
		require.NoError(t, err, name)

		assert.NotContains(t, out, Candidate("A"), name)
		assert.NotContains(t, out, Candidate("D"), name)
		assert.Contains(t, out, Candidate("B"), name)
		assert.Contains(t, out, Candidate("C"), name)
	}
}

func TestTransfer_DoesNotMutateInput(t *testing.T) {
	for name, tr := range transferers() {
		alloc := sampleAllocation()
		want := sampleAllocation()

		_, err := tr.Transfer(alloc,
			map[Candidate]*big.Rat{"A": big.NewRat(6, 1)},
			[]Candidate{"D"})
		require.NoError(t, err, name)

		require.Len(t, alloc, len(want), name)
		for cand, held := range want {
			require.Len(t, alloc[cand], len(held), name)
			total := alloc[cand].Total()
			assert.Equal(t, 0, total.Cmp(held.Total()), "%s: %s changed", name, cand)
		}
	}
}

func TestTransfer_MissingElectedCandidate(t *testing.T) {
	for name, tr := range transferers() {
		alloc := sampleAllocation()

		_, err := tr.Transfer(alloc,
			map[Candidate]*big.Rat{"X": big.NewRat(1, 1)}, nil)
		require.Error(t, err, name)
		assert.Contains(t, err.Error(), "not found in allocation", name)
	}
}

func TestTransfer_MissingEliminatedCandidate(t *testing.T) {
	for name, tr := range transferers() {
		alloc := sampleAllocation()

		_, err := tr.Transfer(alloc, nil, []Candidate{"X"})
		require.Error(t, err, name)
		assert.Contains(t, err.Error(), "not found in allocation", name)
	}
}

func TestTransfer_ExhaustedBallotWeightDropped(t *testing.T) {
	short := NewBallot(Rank{"A"})
	long := NewBallot(Rank{"A"}, Rank{"B"})
	alloc := Allocation{
		"A": BallotWeights{
			short: big.NewRat(3, 1),
			long:  big.NewRat(4, 1),
		},
		"B": BallotWeights{},
	}

	for name, tr := range transferers() {
		out, err := tr.Transfer(alloc.Clone(), nil, []Candidate{"A"})
		require.NoError(t, err, name)

		// the short ballot has no next preference; only the long one moves
		require.Contains(t, out["B"], long, name)
		assert.NotContains(t, out["B"], short, name)
		assert.Equal(t, 0, out.Total().Cmp(big.NewRat(4, 1)), name)
	}
}

func TestTransfer_MergesIntoExistingBallotWeight(t *testing.T) {
	// the same ballot arrives at C from two removed candidates that held
	// shares of it, and the weights sum under one key
	shared := NewBallot(Rank{"A", "B"}, Rank{"C"})
	alloc := Allocation{
		"A": BallotWeights{shared: big.NewRat(3, 1)},
		"B": BallotWeights{shared: big.NewRat(2, 1)},
		"C": BallotWeights{},
	}

	for name, tr := range transferers() {
		out, err := tr.Transfer(alloc.Clone(), nil, []Candidate{"A", "B"})
		require.NoError(t, err, name)

		require.Contains(t, out["C"], shared, name)
		assert.Equal(t, 0, out["C"][shared].Cmp(big.NewRat(5, 1)), name)
	}
}

func TestTransfer_NoRemovalsReturnsEqualAllocation(t *testing.T) {
	for name, tr := range transferers() {
		alloc := sampleAllocation()

		out, err := tr.Transfer(alloc, nil, nil)
		require.NoError(t, err, name)

		require.Len(t, out, len(alloc), name)
		for cand, held := range alloc {
			assert.Equal(t, 0, out[cand].Total().Cmp(held.Total()), name)
		}
	}
}
