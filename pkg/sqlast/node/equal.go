package node

type equalFrame struct {
	left  *Node
	right *Node
}

// Equal reports whether two subtrees are structurally identical: same tags,
// same slot names and kinds, equal scalars, and pairwise equal children.
// List order is significant; slot declaration order is not.
func Equal(left, right *Node) bool {
	stack := []equalFrame{{left: left, right: right}}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if frame.left == frame.right {
			continue
		}

		if frame.left == nil || frame.right == nil {
			return false
		}

		var ok bool

		stack, ok = compareShallow(frame.left, frame.right, stack)
		if !ok {
			return false
		}
	}

	return true
}

// compareShallow compares the node-local parts of two nodes and pushes the
// child pairs that still need comparing.
func compareShallow(left, right *Node, stack []equalFrame) ([]equalFrame, bool) {
	if left.Tag != right.Tag || len(left.Slots) != len(right.Slots) {
		return stack, false
	}

	for idx := range left.Slots {
		leftSlot := &left.Slots[idx]

		rightSlot, found := right.Slot(leftSlot.Name)
		if !found || rightSlot.Kind != leftSlot.Kind {
			return stack, false
		}

		switch leftSlot.Kind {
		case SlotChild:
			stack = append(stack, equalFrame{left: leftSlot.Child, right: rightSlot.Child})
		case SlotList:
			if len(leftSlot.List) != len(rightSlot.List) {
				return stack, false
			}

			for pos := range leftSlot.List {
				stack = append(stack, equalFrame{left: leftSlot.List[pos], right: rightSlot.List[pos]})
			}
		case SlotScalar:
			if leftSlot.Discriminant != rightSlot.Discriminant || !leftSlot.Value.Equal(rightSlot.Value) {
				return stack, false
			}
		}
	}

	return stack, true
}
