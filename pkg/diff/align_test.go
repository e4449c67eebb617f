package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/node"
)

func TestLCS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		left  string
		right string
		want  [][2]int
	}{
		{name: "empty", left: "", right: "abc", want: nil},
		{name: "identical", left: "abc", right: "abc", want: [][2]int{{0, 0}, {1, 1}, {2, 2}}},
		{name: "disjoint", left: "abc", right: "xyz", want: [][2]int{}},
		{name: "rotation", left: "abc", right: "cab", want: [][2]int{{0, 1}, {1, 2}}},
		{name: "earliest match", left: "a", right: "aa", want: [][2]int{{0, 0}}},
		{name: "gaps", left: "axbyc", right: "abc", want: [][2]int{{0, 0}, {2, 1}, {4, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := lcs(len(tt.left), len(tt.right), func(i, j int) bool {
				return tt.left[i] == tt.right[j]
			})

			assert.Equal(t, tt.want, got)
		})
	}
}

func pairsFromOrder(order []int) []alignPair {
	pairs := make([]alignPair, 0, len(order))
	for tgtPos, srcPos := range order {
		pairs = append(pairs, alignPair{
			src:    srcPos,
			tgt:    tgtPos,
			srcPos: srcPos,
			tgtPos: tgtPos,
			key:    node.Digest(100 + srcPos),
		})
	}

	return pairs
}

func TestAlignChildren_Minimal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		order []int
		kept  int
	}{
		{name: "in order", order: []int{0, 1, 2, 3}, kept: 4},
		{name: "rotation", order: []int{3, 0, 1, 2}, kept: 3},
		{name: "reversal", order: []int{3, 2, 1, 0}, kept: 1},
		{name: "swaps", order: []int{1, 0, 3, 2}, kept: 2},
		{name: "single", order: []int{0}, kept: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			kept := alignChildren(pairsFromOrder(tt.order))

			require.Len(t, kept, tt.kept)

			for idx := 1; idx < len(kept); idx++ {
				assert.Less(t, kept[idx-1].srcPos, kept[idx].srcPos)
				assert.Less(t, kept[idx-1].tgtPos, kept[idx].tgtPos)
			}
		})
	}
}

func TestAlignChildren_PrefersSmallKeys(t *testing.T) {
	t.Parallel()

	// a and b swap places; only one can stay.
	pairs := []alignPair{
		{src: 0, tgt: 1, srcPos: 0, tgtPos: 1, key: 7},
		{src: 1, tgt: 0, srcPos: 1, tgtPos: 0, key: 3},
	}

	kept := alignChildren(pairs)
	require.Len(t, kept, 1)
	assert.Equal(t, 1, kept[0].src)

	mirrored := []alignPair{
		{src: 1, tgt: 0, srcPos: 1, tgtPos: 0, key: 7},
		{src: 0, tgt: 1, srcPos: 0, tgtPos: 1, key: 3},
	}

	kept = alignChildren(mirrored)
	require.Len(t, kept, 1)
	assert.Equal(t, 0, kept[0].src)
}

func TestChainLength(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, chainLength(nil))
	assert.Equal(t, 3, chainLength(pairsFromOrder([]int{2, 0, 3, 1, 4})))
	assert.Equal(t, 1, chainLength(pairsFromOrder([]int{4, 3, 2, 1, 0})))
}

func TestDiceCoefficient(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.0, diceCoefficient("SELECT a", "SELECT  a"), 1e-9)
	assert.InDelta(t, 0.0, diceCoefficient("ab", "cd"), 1e-9)
	assert.InDelta(t, 1.0, diceCoefficient("", ""), 1e-9)
	assert.InDelta(t, 0.0, diceCoefficient("a", "b"), 1e-9)
	assert.InDelta(t, 16.0/18.0, diceCoefficient("SELECT a, b, c", "SELECT a, c"), 1e-9)
}
