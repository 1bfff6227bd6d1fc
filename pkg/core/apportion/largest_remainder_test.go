package apportion

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shares(votes map[string]int64, order []string) []Share[string] {
	out := make([]Share[string], len(order))
	for i, key := range order {
		out[i] = Share[string]{Key: key, Votes: big.NewRat(votes[key], 1)}
	}
	return out
}

func TestHareLargestRemainder_Proportional(t *testing.T) {
	// quota 20, whole seats 2/1/1; remainders are .35/.3/.35 and the
	// stable ordering sends the leftover seat to A, listed first
	result, err := HareLargestRemainder(shares(
		map[string]int64{"A": 47, "B": 26, "C": 27},
		[]string{"A", "B", "C"},
	), 5)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"A": 3, "B": 1, "C": 1}, result)
}

func TestHareLargestRemainder_SumsToSeats(t *testing.T) {
	for seats := 0; seats <= 12; seats++ {
		result, err := HareLargestRemainder(shares(
			map[string]int64{"A": 7, "B": 3, "C": 11, "D": 2},
			[]string{"A", "B", "C", "D"},
		), seats)
		require.NoError(t, err, "seats=%d", seats)

		total := 0
		for _, n := range result {
			total += n
		}
		assert.Equal(t, seats, total, "seats=%d", seats)
	}
}

func TestHareLargestRemainder_RespectsCaps(t *testing.T) {
	input := []Share[string]{
		{Key: "A", Votes: big.NewRat(10, 1), Cap: big.NewRat(2, 1)},
		{Key: "B", Votes: big.NewRat(1, 1), Cap: big.NewRat(5, 1)},
		{Key: "C", Votes: big.NewRat(1, 1), Cap: big.NewRat(5, 1)},
	}

	result, err := HareLargestRemainder(input, 6)
	require.NoError(t, err)

	assert.Equal(t, 2, result["A"])
	assert.Equal(t, 6, result["A"]+result["B"]+result["C"])
	assert.LessOrEqual(t, result["B"], 5)
	assert.LessOrEqual(t, result["C"], 5)
}

func TestHareLargestRemainder_InsufficientCapacity(t *testing.T) {
	input := []Share[string]{
		{Key: "A", Votes: big.NewRat(5, 1), Cap: big.NewRat(1, 1)},
		{Key: "B", Votes: big.NewRat(5, 1), Cap: big.NewRat(1, 1)},
	}

	_, err := HareLargestRemainder(input, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientCapacity)
}

func TestHareLargestRemainder_ZeroSeats(t *testing.T) {
	result, err := HareLargestRemainder(shares(
		map[string]int64{"A": 5, "B": 3},
		[]string{"A", "B"},
	), 0)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"A": 0, "B": 0}, result)
}

func TestHareLargestRemainder_NoVotes(t *testing.T) {
	_, err := HareLargestRemainder(shares(
		map[string]int64{"A": 0, "B": 0},
		[]string{"A", "B"},
	), 2)
	assert.Error(t, err)
}

func TestHareLargestRemainder_RationalVotes(t *testing.T) {
	input := []Share[string]{
		{Key: "A", Votes: big.NewRat(5, 2)}, // 2.5
		{Key: "B", Votes: big.NewRat(3, 2)}, // 1.5
	}

	// quota 4/4 = 1: A gets 2 whole, B gets 1 whole, remainder .5 each,
	// the stable sort gives the last seat to A (listed first)
	result, err := HareLargestRemainder(input, 4)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"A": 3, "B": 1}, result)
}

func TestHareLargestRemainder_NegativeSeats(t *testing.T) {
	_, err := HareLargestRemainder(shares(map[string]int64{"A": 5}, []string{"A"}), -1)
	assert.Error(t, err)
}
