package diff

import (
	"cmp"
	"slices"

	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/node"
)

// classifier turns a frozen correspondence into an edit script.
type classifier struct {
	m *matcher
	// srcPartner and tgtPartner hold the effective correspondence: matched
	// pairs whose tags differ are treated as unmatched.
	srcPartner []int
	tgtPartner []int
	// stays marks source ids whose pair is kept in place by sibling alignment.
	stays []bool
}

func classify(m *matcher) Script {
	cls := &classifier{
		m:          m,
		srcPartner: make([]int, m.src.size()),
		tgtPartner: make([]int, m.tgt.size()),
		stays:      make([]bool, m.src.size()),
	}

	for id := range cls.tgtPartner {
		cls.tgtPartner[id] = noNode
	}

	for s, t := range m.srcToTgt {
		cls.srcPartner[s] = noNode

		if t != noNode && m.src.tag(s) == m.tgt.tag(t) {
			cls.srcPartner[s] = t
			cls.tgtPartner[t] = s
		}
	}

	cls.alignSiblings()

	removes := cls.unmatched(m.src, cls.srcPartner, KindRemove)
	inserts := cls.unmatched(m.tgt, cls.tgtPartner, KindInsert)

	var updates, moves, keeps Script

	for s := range m.src.size() {
		t := cls.srcPartner[s]
		if t == noNode {
			continue
		}

		source, target := m.src.nodes[s], m.tgt.nodes[t]
		updated := false

		if m.src.digest[s] != m.tgt.digest[t] || !node.Equal(source, target) {
			if slots := node.ChangedScalars(source, target); len(slots) > 0 {
				updates = append(updates, Edit{Kind: KindUpdate, Source: source, Target: target, Slots: slots})
				updated = true
			}
		}

		switch {
		case cls.moved(s, t):
			moves = append(moves, Edit{Kind: KindMove, Source: source, Target: target})
		case !updated:
			keeps = append(keeps, Edit{Kind: KindKeep, Source: source, Target: target})
		}
	}

	script := make(Script, 0, len(removes)+len(inserts)+len(updates)+len(moves)+len(keeps))
	script = append(script, removes...)
	script = append(script, inserts...)
	script = append(script, updates...)
	script = append(script, moves...)

	return append(script, keeps...)
}

// mirrorScript turns a script computed from tgt to src into the script from
// src to tgt and restores script order.
func mirrorScript(script Script, src, tgt *treeIndex) Script {
	mirrored := make(Script, 0, len(script))
	for _, edit := range script {
		mirrored = append(mirrored, edit.Mirror())
	}

	anchor := func(edit Edit) int {
		if edit.Kind == KindInsert {
			return tgt.ids[edit.Target]
		}

		return src.ids[edit.Source]
	}

	slices.SortStableFunc(mirrored, func(left, right Edit) int {
		if left.Kind != right.Kind {
			return cmp.Compare(left.Kind, right.Kind)
		}

		return cmp.Compare(anchor(left), anchor(right))
	})

	return mirrored
}

// unmatched reports the highest unmatched node of every unmatched region in
// pre-order and skips its subtree.
func (cls *classifier) unmatched(idx *treeIndex, partner []int, kind Kind) Script {
	var script Script

	for id := 0; id < idx.size(); {
		if partner[id] != noNode {
			id++

			continue
		}

		edit := Edit{Kind: kind}
		if kind == KindRemove {
			edit.Source = idx.nodes[id]
		} else {
			edit.Target = idx.nodes[id]
		}

		script = append(script, edit)
		id = idx.end[id]
	}

	return script
}

// alignSiblings runs the sequence alignment under every pair of
// corresponding parents and records which children stay in place.
func (cls *classifier) alignSiblings() {
	m := cls.m

	for parent := range m.src.size() {
		partner := cls.srcPartner[parent]
		if partner == noNode || m.src.isLeaf(parent) {
			continue
		}

		var pairs []alignPair

		for _, child := range m.src.children[parent] {
			t := cls.srcPartner[child]
			if t == noNode || m.tgt.parent[t] != partner {
				continue
			}

			pairs = append(pairs, alignPair{
				src:    child,
				tgt:    t,
				srcPos: m.src.pos[child],
				tgtPos: m.tgt.pos[t],
				key:    min(m.src.digest[child], m.tgt.digest[t]),
			})
		}

		for _, pair := range alignChildren(pairs) {
			cls.stays[pair.src] = true
		}
	}
}

// moved decides whether the matched pair (s, t) changed position. Siblings
// under corresponding parents move only when they fall outside the alignment;
// any other pair moves when it was reparented from or into a matched node.
func (cls *classifier) moved(s, t int) bool {
	ps, pt := cls.m.src.parent[s], cls.m.tgt.parent[t]

	switch {
	case ps == noNode && pt == noNode:
		return false
	case ps != noNode && pt != noNode && cls.srcPartner[ps] == pt:
		return !cls.stays[s]
	}

	sourceParentMatched := ps != noNode && cls.srcPartner[ps] != noNode
	targetParentMatched := pt != noNode && cls.tgtPartner[pt] != noNode

	return sourceParentMatched || targetParentMatched
}
