package diff

import (
	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/node"
)

const noNode = -1

// treeIndex is a read-only view of one tree addressed by pre-order ids.
type treeIndex struct {
	ids       map[*node.Node]int
	nodes     []*node.Node
	parent    []int
	depth     []int
	slot      []string
	kind      []string
	pos       []int
	end       []int
	children  [][]int
	bfs       []int
	digest    []node.Digest
	leafCount []int
}

type indexFrame struct {
	current *node.Node
	slot    string
	parent  int
	pos     int
}

// indexTree assigns pre-order ids and records the tree shape. Digests are
// computed separately by hash so that matchings can be validated first.
func indexTree(root *node.Node) *treeIndex {
	idx := &treeIndex{ids: make(map[*node.Node]int)}
	stack := []indexFrame{{current: root, parent: noNode}}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		id := len(idx.nodes)
		idx.ids[frame.current] = id
		idx.nodes = append(idx.nodes, frame.current)
		idx.parent = append(idx.parent, frame.parent)
		idx.slot = append(idx.slot, frame.slot)
		idx.kind = append(idx.kind, frame.current.KindKey())
		idx.pos = append(idx.pos, frame.pos)
		idx.children = append(idx.children, nil)

		if frame.parent == noNode {
			idx.depth = append(idx.depth, 0)
		} else {
			idx.depth = append(idx.depth, idx.depth[frame.parent]+1)
			idx.children[frame.parent] = append(idx.children[frame.parent], id)
		}

		stack = pushSlotChildren(stack, frame.current, id)
	}

	idx.computeExtents()
	idx.computeBFS()

	return idx
}

// pushSlotChildren pushes the node's children in reverse so they pop in
// declaration order.
func pushSlotChildren(stack []indexFrame, current *node.Node, id int) []indexFrame {
	var frames []indexFrame

	pos := 0

	for slotIdx := range current.Slots {
		slot := &current.Slots[slotIdx]

		switch slot.Kind {
		case node.SlotChild:
			if slot.Child != nil {
				frames = append(frames, indexFrame{current: slot.Child, slot: slot.Name, parent: id, pos: pos})
				pos++
			}
		case node.SlotList:
			for _, child := range slot.List {
				if child == nil {
					continue
				}

				frames = append(frames, indexFrame{current: child, slot: slot.Name, parent: id, pos: pos})
				pos++
			}
		case node.SlotScalar:
		}
	}

	for i := len(frames) - 1; i >= 0; i-- {
		stack = append(stack, frames[i])
	}

	return stack
}

// computeExtents records the exclusive pre-order end of every subtree and its
// leaf count, walking ids in reverse so children finish before parents.
func (idx *treeIndex) computeExtents() {
	size := len(idx.nodes)
	idx.end = make([]int, size)
	idx.leafCount = make([]int, size)

	for id := range size {
		idx.end[id] = id + 1
	}

	for id := size - 1; id >= 0; id-- {
		if len(idx.children[id]) == 0 {
			idx.leafCount[id] = 1
		}

		if parent := idx.parent[id]; parent != noNode {
			idx.leafCount[parent] += idx.leafCount[id]

			if idx.end[id] > idx.end[parent] {
				idx.end[parent] = idx.end[id]
			}
		}
	}
}

func (idx *treeIndex) computeBFS() {
	if len(idx.nodes) == 0 {
		return
	}

	idx.bfs = make([]int, 0, len(idx.nodes))
	idx.bfs = append(idx.bfs, 0)

	for head := 0; head < len(idx.bfs); head++ {
		idx.bfs = append(idx.bfs, idx.children[idx.bfs[head]]...)
	}
}

// hash fills in the structural digest of every node.
func (idx *treeIndex) hash() {
	digests := node.Digests(idx.nodes[0])
	idx.digest = make([]node.Digest, len(idx.nodes))

	for id, current := range idx.nodes {
		idx.digest[id] = digests[current]
	}
}

func (idx *treeIndex) size() int {
	return len(idx.nodes)
}

// subtreeSize returns the number of nodes in the subtree rooted at id.
func (idx *treeIndex) subtreeSize(id int) int {
	return idx.end[id] - id
}

// idsOf returns the ids of the non-nil entries of a list slot.
func (idx *treeIndex) idsOf(list []*node.Node) []int {
	ids := make([]int, 0, len(list))

	for _, child := range list {
		if child != nil {
			ids = append(ids, idx.ids[child])
		}
	}

	return ids
}

func (idx *treeIndex) isLeaf(id int) bool {
	return len(idx.children[id]) == 0
}

// contains reports whether id lies in the subtree rooted at root.
func (idx *treeIndex) contains(root, id int) bool {
	return id >= root && id < idx.end[root]
}

func (idx *treeIndex) tag(id int) node.Tag {
	return idx.nodes[id].Tag
}
