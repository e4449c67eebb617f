package diff

import (
	"slices"
	"sort"

	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/node"
)

// lcs aligns two sequences of lengths n and m and returns the index pairs of
// one longest common subsequence. Among equally long alignments it takes the
// earliest matches.
func lcs(n, m int, equal func(i, j int) bool) [][2]int {
	if n == 0 || m == 0 {
		return nil
	}

	// table[i][j] is the LCS length of the suffixes starting at i and j.
	table := make([][]int, n+1)
	for i := range table {
		table[i] = make([]int, m+1)
	}

	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			switch {
			case equal(i, j):
				table[i][j] = table[i+1][j+1] + 1
			case table[i+1][j] >= table[i][j+1]:
				table[i][j] = table[i+1][j]
			default:
				table[i][j] = table[i][j+1]
			}
		}
	}

	pairs := make([][2]int, 0, table[0][0])

	for i, j := 0, 0; i < n && j < m; {
		switch {
		case equal(i, j) && table[i][j] == table[i+1][j+1]+1:
			pairs = append(pairs, [2]int{i, j})
			i++
			j++
		case table[i+1][j] >= table[i][j+1]:
			i++
		default:
			j++
		}
	}

	return pairs
}

// alignPair is a matched child pair under corresponding parents.
type alignPair struct {
	src    int
	tgt    int
	srcPos int
	tgtPos int
	key    node.Digest
}

// compatible reports whether two pairs keep their relative order.
func (pair alignPair) compatible(other alignPair) bool {
	return (pair.srcPos < other.srcPos) == (pair.tgtPos < other.tgtPos)
}

// alignChildren returns the subset of pairs that stays in place: a longest
// subsequence ordered the same way on both sides. Among the longest ones it
// prefers pairs with the smallest key, so swapping source and target keeps
// the same pairs. Positions must be distinct on each side.
func alignChildren(pairs []alignPair) []alignPair {
	if len(pairs) < 2 {
		return pairs
	}

	longest := chainLength(pairs)

	candidates := slices.Clone(pairs)
	sort.SliceStable(candidates, func(i, j int) bool {
		return alignsBefore(candidates[i], candidates[j])
	})

	alive := slices.Clone(pairs)
	kept := make([]alignPair, 0, longest)

	for _, candidate := range candidates {
		if len(kept) == longest {
			break
		}

		next := make([]alignPair, 0, len(alive))

		for _, pair := range alive {
			if pair == candidate || pair.compatible(candidate) {
				next = append(next, pair)
			}
		}

		if chainLength(next) == longest {
			kept = append(kept, candidate)
			alive = next
		}
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].srcPos < kept[j].srcPos })

	return kept
}

func alignsBefore(left, right alignPair) bool {
	if left.key != right.key {
		return left.key < right.key
	}

	leftSum, rightSum := left.srcPos+left.tgtPos, right.srcPos+right.tgtPos
	if leftSum != rightSum {
		return leftSum < rightSum
	}

	leftLow, rightLow := min(left.srcPos, left.tgtPos), min(right.srcPos, right.tgtPos)
	if leftLow != rightLow {
		return leftLow < rightLow
	}

	return left.srcPos < right.srcPos
}

// chainLength returns the length of the longest subsequence of pairs that is
// increasing in both positions.
func chainLength(pairs []alignPair) int {
	ordered := slices.Clone(pairs)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].srcPos < ordered[j].srcPos })

	// tails[k] is the smallest target position ending an increasing run of k+1.
	tails := make([]int, 0, len(ordered))

	for _, pair := range ordered {
		at := sort.SearchInts(tails, pair.tgtPos)
		if at == len(tails) {
			tails = append(tails, pair.tgtPos)
		} else {
			tails[at] = pair.tgtPos
		}
	}

	return len(tails)
}
