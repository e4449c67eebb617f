package diff

import (
	"strings"
	"unicode"
)

type bigram [2]rune

// diceCoefficient returns the Sørensen-Dice coefficient of the bigram
// multisets of two strings, ignoring whitespace.
func diceCoefficient(left, right string) float64 {
	leftGrams, leftTotal := bigrams(left)
	rightGrams, rightTotal := bigrams(right)

	total := leftTotal + rightTotal
	if total == 0 {
		if compact(left) == compact(right) {
			return 1
		}

		return 0
	}

	overlap := 0

	for gram, leftCount := range leftGrams {
		overlap += min(leftCount, rightGrams[gram])
	}

	return 2 * float64(overlap) / float64(total)
}

func bigrams(text string) (map[bigram]int, int) {
	runes := []rune(compact(text))
	if len(runes) < 2 {
		return nil, 0
	}

	grams := make(map[bigram]int, len(runes)-1)
	for idx := 0; idx+1 < len(runes); idx++ {
		grams[bigram{runes[idx], runes[idx+1]}]++
	}

	return grams, len(runes) - 1
}

func compact(text string) string {
	return strings.Map(func(char rune) rune {
		if unicode.IsSpace(char) {
			return -1
		}

		return char
	}, text)
}

// leafRatio returns the share of leaves under s whose correspondents lie under
// t, relative to the larger of the two leaf counts.
func (m *matcher) leafRatio(s, t int) float64 {
	maxLeaves := max(m.src.leafCount[s], m.tgt.leafCount[t])
	if maxLeaves == 0 {
		return 0
	}

	common := 0

	for id := s; id < m.src.end[s]; id++ {
		if !m.src.isLeaf(id) {
			continue
		}

		if partner := m.srcToTgt[id]; partner != noNode && m.tgt.contains(t, partner) {
			common++
		}
	}

	return float64(common) / float64(maxLeaves)
}

// similar decides whether two unmatched inner nodes of the same kind
// correspond and returns their leaf ratio. A strong leaf overlap alone
// suffices, otherwise a weaker overlap must be backed by similar canonical
// renderings.
func (m *matcher) similar(s, t int) (float64, bool) {
	ratio := m.leafRatio(s, t)
	if ratio >= strongLeafRatio {
		return ratio, true
	}

	threshold := smallSubtreeT
	if min(m.src.leafCount[s], m.tgt.leafCount[t]) > smallSubtreeLeaves {
		threshold = m.t
	}

	if ratio < threshold {
		return ratio, false
	}

	dice := diceCoefficient(m.canonical(m.src.nodes[s]), m.canonical(m.tgt.nodes[t]))

	return ratio, dice >= m.f
}
