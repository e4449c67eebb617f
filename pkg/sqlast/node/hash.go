package node

import (
	"encoding/binary"
	"math"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Digest is a 64-bit structural hash of a subtree.
type Digest uint64

// Markers separating hash input sections.
const (
	markTag      byte = 0x01
	markSlot     byte = 0x02
	markAbsent   byte = 0x03
	markPresent  byte = 0x04
	markListEnd  byte = 0x05
	markDiscrim  byte = 0x06
	markNodeDone byte = 0x07
)

// Hash returns the structural digest of the subtree rooted at targetNode.
func Hash(targetNode *Node) Digest {
	if targetNode == nil {
		return 0
	}

	return Digests(targetNode)[targetNode]
}

// Digests computes the digest of every node in the tree with a single
// post-order pass and returns them keyed by node.
func Digests(root *Node) map[*Node]Digest {
	digests := make(map[*Node]Digest)
	if root == nil {
		return digests
	}

	hasher := xxhash.New()

	root.VisitPostOrder(func(current *Node) {
		digests[current] = digestNode(hasher, current, digests)
	})

	return digests
}

// digestNode hashes a node whose children already have digests.
func digestNode(hasher *xxhash.Digest, current *Node, digests map[*Node]Digest) Digest {
	hasher.Reset()

	var buf [8]byte

	hasher.Write([]byte{markTag})
	_, _ = hasher.WriteString(string(current.Tag))

	for _, slot := range SortedSlots(current) {
		hasher.Write([]byte{markSlot, byte(slot.Kind)})
		_, _ = hasher.WriteString(slot.Name)

		switch slot.Kind {
		case SlotChild:
			if slot.Child == nil {
				hasher.Write([]byte{markAbsent})

				continue
			}

			hasher.Write([]byte{markPresent})
			binary.LittleEndian.PutUint64(buf[:], uint64(digests[slot.Child]))
			hasher.Write(buf[:])
		case SlotList:
			binary.LittleEndian.PutUint64(buf[:], uint64(len(slot.List)))
			hasher.Write(buf[:])

			for _, child := range slot.List {
				binary.LittleEndian.PutUint64(buf[:], uint64(digests[child]))
				hasher.Write(buf[:])
			}

			hasher.Write([]byte{markListEnd})
		case SlotScalar:
			if slot.Discriminant {
				hasher.Write([]byte{markDiscrim})
			}

			writeValue(hasher, slot.Value, buf[:])
		}
	}

	hasher.Write([]byte{markNodeDone})

	return Digest(hasher.Sum64())
}

func writeValue(hasher *xxhash.Digest, value Value, buf []byte) {
	hasher.Write([]byte{byte(value.kind)})

	switch value.kind {
	case ValueString, ValueEnum:
		binary.LittleEndian.PutUint64(buf, uint64(len(value.str)))
		hasher.Write(buf)
		_, _ = hasher.WriteString(value.str)
	case ValueBool:
		if value.flag {
			hasher.Write([]byte{1})
		} else {
			hasher.Write([]byte{0})
		}
	case ValueInt:
		binary.LittleEndian.PutUint64(buf, uint64(value.in))
		hasher.Write(buf)
	case ValueFloat:
		binary.LittleEndian.PutUint64(buf, math.Float64bits(value.num))
		hasher.Write(buf)
	case ValueNone:
	}
}

// SortedSlots returns pointers to the node's slots ordered by name.
func SortedSlots(targetNode *Node) []*Slot {
	sorted := make([]*Slot, len(targetNode.Slots))
	for idx := range targetNode.Slots {
		sorted[idx] = &targetNode.Slots[idx]
	}

	slices.SortFunc(sorted, func(left, right *Slot) int {
		return strings.Compare(left.Name, right.Name)
	})

	return sorted
}
