package diff

import (
	"cmp"
	"slices"
	"sort"

	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/node"
	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/render"
)

// matcher builds the correspondence between two indexed trees. The two id
// slices are inverse partial maps; noNode marks an unmatched node.
type matcher struct {
	src      *treeIndex
	tgt      *treeIndex
	canon    map[*node.Node]string
	srcToTgt []int
	tgtToSrc []int
	f        float64
	t        float64
	stats    MatchStats
}

// MatchStats counts the pairs each matching pass contributed.
type MatchStats struct {
	Seeded  int `json:"seeded"`
	Exact   int `json:"exact"`
	Similar int `json:"similar"`
	TopDown int `json:"top_down"`
	Source  int `json:"source_nodes"`
	Target  int `json:"target_nodes"`
}

// Matched returns the number of matched pairs.
func (stats MatchStats) Matched() int {
	return stats.Seeded + stats.Exact + stats.Similar + stats.TopDown
}

func newMatcher(src, tgt *treeIndex, f, t float64) *matcher {
	m := &matcher{
		src:      src,
		tgt:      tgt,
		canon:    make(map[*node.Node]string),
		srcToTgt: make([]int, src.size()),
		tgtToSrc: make([]int, tgt.size()),
		f:        f,
		t:        t,
	}

	for id := range m.srcToTgt {
		m.srcToTgt[id] = noNode
	}

	for id := range m.tgtToSrc {
		m.tgtToSrc[id] = noNode
	}

	return m
}

// run executes all passes. Pre-matched pairs are fixed points: later passes
// only ever pair nodes that are still unmatched on both sides.
func (m *matcher) run(seeds [][2]int) {
	for _, pair := range seeds {
		m.link(pair[0], pair[1])
	}

	m.stats.Seeded = len(seeds)
	m.stats.Source = m.src.size()
	m.stats.Target = m.tgt.size()

	m.exactPass()
	m.similarityPass()
	m.topDownPass()
}

func (m *matcher) link(s, t int) {
	m.srcToTgt[s] = t
	m.tgtToSrc[t] = s
}

func (m *matcher) free(s, t int) bool {
	return m.srcToTgt[s] == noNode && m.tgtToSrc[t] == noNode
}

func (m *matcher) canonical(current *node.Node) string {
	text, ok := m.canon[current]
	if !ok {
		text = render.Canonical(current)
		m.canon[current] = text
	}

	return text
}

// candidate is a possible pair of identical subtrees with its ranking.
type candidate struct {
	s        int
	t        int
	chain    int
	spread   int
	offset   int
	anchored bool
}

// compareCandidates orders identical candidates: anchored parents first, then
// the longest agreeing ancestor chain, then the closest sibling positions,
// then the leftmost pair over both trees. Every ranking key reads the same
// from either tree, and two candidates sharing a node never tie.
func compareCandidates(left, right candidate) int {
	switch {
	case left.anchored != right.anchored:
		if left.anchored {
			return -1
		}

		return 1
	case left.chain != right.chain:
		return cmp.Compare(right.chain, left.chain)
	case left.spread != right.spread:
		return cmp.Compare(left.spread, right.spread)
	case left.offset != right.offset:
		return cmp.Compare(left.offset, right.offset)
	default:
		return cmp.Compare(left.s, right.s)
	}
}

// exactPass pairs identical subtrees, largest first. Candidates of one size
// are ranked together and claimed greedily; claiming a pair cannot change the
// ranking of another pair of the same size because zip only links smaller
// descendants.
func (m *matcher) exactPass() {
	buckets := make(map[node.Digest][]int)

	for id := range m.tgt.size() {
		if m.tgtToSrc[id] == noNode {
			buckets[m.tgt.digest[id]] = append(buckets[m.tgt.digest[id]], id)
		}
	}

	var sources []int

	for s := range m.src.size() {
		if m.srcToTgt[s] == noNode && len(buckets[m.src.digest[s]]) > 0 {
			sources = append(sources, s)
		}
	}

	sort.SliceStable(sources, func(i, j int) bool {
		return m.src.subtreeSize(sources[i]) > m.src.subtreeSize(sources[j])
	})

	for start := 0; start < len(sources); {
		end := start + 1
		for end < len(sources) && m.src.subtreeSize(sources[end]) == m.src.subtreeSize(sources[start]) {
			end++
		}

		m.claimIdentical(sources[start:end], buckets)
		start = end
	}
}

func (m *matcher) claimIdentical(sources []int, buckets map[node.Digest][]int) {
	var candidates []candidate

	for _, s := range sources {
		if m.srcToTgt[s] != noNode {
			continue
		}

		for _, t := range buckets[m.src.digest[s]] {
			if m.tgtToSrc[t] != noNode || !node.Equal(m.src.nodes[s], m.tgt.nodes[t]) {
				continue
			}

			candidates = append(candidates, candidate{
				s:        s,
				t:        t,
				anchored: m.anchored(s, t),
				chain:    m.ancestorChain(s, t),
				spread:   abs(m.src.pos[s] - m.tgt.pos[t]),
				offset:   s + t,
			})
		}
	}

	slices.SortFunc(candidates, compareCandidates)

	for _, pair := range candidates {
		if m.free(pair.s, pair.t) {
			m.zip(pair.s, pair.t)
		}
	}
}

func (m *matcher) anchored(s, t int) bool {
	ps, pt := m.src.parent[s], m.tgt.parent[t]
	if ps == noNode || pt == noNode {
		return ps == pt
	}

	return m.srcToTgt[ps] == pt
}

// ancestorChain counts consecutive ancestors that agree on tag, with every
// step down the chain entering through the same slot name.
func (m *matcher) ancestorChain(s, t int) int {
	chain := 0

	for {
		ps, pt := m.src.parent[s], m.tgt.parent[t]
		if ps == noNode || pt == noNode {
			return chain
		}

		if m.src.slot[s] != m.tgt.slot[t] || m.src.tag(ps) != m.tgt.tag(pt) {
			return chain
		}

		chain++
		s, t = ps, pt
	}
}

type zipFrame struct {
	left  *node.Node
	right *node.Node
}

// zip links two identical subtrees node by node, pairing slots by name and
// skipping nodes that are already matched.
func (m *matcher) zip(s, t int) {
	stack := []zipFrame{{left: m.src.nodes[s], right: m.tgt.nodes[t]}}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		sid, tid := m.src.ids[frame.left], m.tgt.ids[frame.right]
		if m.free(sid, tid) {
			m.link(sid, tid)
			m.stats.Exact++
		}

		for idx := range frame.left.Slots {
			leftSlot := &frame.left.Slots[idx]

			rightSlot, ok := frame.right.Slot(leftSlot.Name)
			if !ok {
				continue
			}

			switch leftSlot.Kind {
			case node.SlotChild:
				if leftSlot.Child != nil && rightSlot.Child != nil {
					stack = append(stack, zipFrame{left: leftSlot.Child, right: rightSlot.Child})
				}
			case node.SlotList:
				for pos := range min(len(leftSlot.List), len(rightSlot.List)) {
					if leftSlot.List[pos] != nil && rightSlot.List[pos] != nil {
						stack = append(stack, zipFrame{left: leftSlot.List[pos], right: rightSlot.List[pos]})
					}
				}
			case node.SlotScalar:
			}
		}
	}
}

// similarPair is an accepted similarity candidate.
type similarPair struct {
	s     int
	t     int
	ratio float64
}

// similarityPass pairs unmatched inner nodes of the same kind. Linking inner
// nodes leaves every leaf ratio unchanged, so all similar candidates are
// collected first and claimed by descending leaf ratio, then leftmost pair.
func (m *matcher) similarityPass() {
	byKind := make(map[string][]int)

	for t := range m.tgt.size() {
		if m.tgtToSrc[t] == noNode && !m.tgt.isLeaf(t) {
			byKind[m.tgt.kind[t]] = append(byKind[m.tgt.kind[t]], t)
		}
	}

	var pairs []similarPair

	for s := range m.src.size() {
		if m.srcToTgt[s] != noNode || m.src.isLeaf(s) {
			continue
		}

		for _, t := range byKind[m.src.kind[s]] {
			if ratio, ok := m.similar(s, t); ok {
				pairs = append(pairs, similarPair{s: s, t: t, ratio: ratio})
			}
		}
	}

	slices.SortFunc(pairs, func(left, right similarPair) int {
		if left.ratio != right.ratio {
			return cmp.Compare(right.ratio, left.ratio)
		}

		if left.s+left.t != right.s+right.t {
			return cmp.Compare(left.s+left.t, right.s+right.t)
		}

		return cmp.Compare(left.s, right.s)
	})

	for _, pair := range pairs {
		if m.free(pair.s, pair.t) {
			m.link(pair.s, pair.t)
			m.stats.Similar++
		}
	}
}

// topDownPass walks matched pairs breadth-first and pairs their unmatched
// children of the same kind: single-child slots by slot name, list slots by
// an order-preserving alignment of child kinds.
func (m *matcher) topDownPass() {
	queue := make([]int, 0, m.src.size())

	for s := range m.src.size() {
		if m.srcToTgt[s] != noNode {
			queue = append(queue, s)
		}
	}

	for head := 0; head < len(queue); head++ {
		s := queue[head]
		queue = m.pairChildren(s, m.srcToTgt[s], queue)
	}
}

func (m *matcher) pairChildren(s, t int, queue []int) []int {
	sourceNode, targetNode := m.src.nodes[s], m.tgt.nodes[t]

	for idx := range sourceNode.Slots {
		sourceSlot := &sourceNode.Slots[idx]

		targetSlot, ok := targetNode.Slot(sourceSlot.Name)
		if !ok || targetSlot.Kind != sourceSlot.Kind {
			continue
		}

		switch sourceSlot.Kind {
		case node.SlotChild:
			if sourceSlot.Child == nil || targetSlot.Child == nil {
				continue
			}

			cs, ct := m.src.ids[sourceSlot.Child], m.tgt.ids[targetSlot.Child]
			if m.free(cs, ct) && m.src.kind[cs] == m.tgt.kind[ct] {
				m.link(cs, ct)
				m.stats.TopDown++
				queue = append(queue, cs)
			}
		case node.SlotList:
			queue = m.pairLists(sourceSlot.List, targetSlot.List, queue)
		case node.SlotScalar:
		}
	}

	return queue
}

// pairLists pairs the unmatched children of two corresponding list slots.
// Matched children that keep their relative order split both lists into
// gaps, and children are only paired within the same gap.
func (m *matcher) pairLists(sourceList, targetList []*node.Node, queue []int) []int {
	sources, targets := m.src.idsOf(sourceList), m.tgt.idsOf(targetList)

	targetPos := make(map[int]int, len(targets))
	for pos, t := range targets {
		targetPos[t] = pos
	}

	var anchors []alignPair

	for pos, s := range sources {
		partner := m.srcToTgt[s]
		if partner == noNode {
			continue
		}

		if tgtPos, ok := targetPos[partner]; ok {
			anchors = append(anchors, alignPair{
				src:    s,
				tgt:    partner,
				srcPos: pos,
				tgtPos: tgtPos,
				key:    min(m.src.digest[s], m.tgt.digest[partner]),
			})
		}
	}

	srcStart, tgtStart := 0, 0

	for _, anchor := range alignChildren(anchors) {
		queue = m.pairGap(sources[srcStart:anchor.srcPos], targets[tgtStart:anchor.tgtPos], queue)
		srcStart, tgtStart = anchor.srcPos+1, anchor.tgtPos+1
	}

	return m.pairGap(sources[srcStart:], targets[tgtStart:], queue)
}

// pairGap aligns the unmatched children of one gap by kind, keeping order.
func (m *matcher) pairGap(sourceGap, targetGap []int, queue []int) []int {
	var sources, targets []int

	for _, s := range sourceGap {
		if m.srcToTgt[s] == noNode {
			sources = append(sources, s)
		}
	}

	for _, t := range targetGap {
		if m.tgtToSrc[t] == noNode {
			targets = append(targets, t)
		}
	}

	if len(sources) == 0 || len(targets) == 0 {
		return queue
	}

	aligned := lcs(len(sources), len(targets), func(i, j int) bool {
		return m.src.kind[sources[i]] == m.tgt.kind[targets[j]]
	})

	for _, pair := range aligned {
		cs, ct := sources[pair[0]], targets[pair[1]]
		m.link(cs, ct)
		m.stats.TopDown++
		queue = append(queue, cs)
	}

	return queue
}

func abs(value int) int {
	if value < 0 {
		return -value
	}

	return value
}
