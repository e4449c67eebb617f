package node

type copyFrame struct {
	src *Node
	dst *Node
}

// Copy returns a deep copy of the subtree. Scalars are values, so the copy
// shares no mutable state with the original.
func Copy(targetNode *Node) *Node {
	if targetNode == nil {
		return nil
	}

	root := &Node{}
	stack := []copyFrame{{src: targetNode, dst: root}}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		frame.dst.Tag = frame.src.Tag
		frame.dst.Slots = make([]Slot, len(frame.src.Slots))

		for idx := range frame.src.Slots {
			srcSlot := &frame.src.Slots[idx]
			dstSlot := &frame.dst.Slots[idx]

			dstSlot.Name = srcSlot.Name
			dstSlot.Kind = srcSlot.Kind
			dstSlot.Value = srcSlot.Value
			dstSlot.Discriminant = srcSlot.Discriminant

			switch srcSlot.Kind {
			case SlotChild:
				if srcSlot.Child != nil {
					dstSlot.Child = &Node{}
					stack = append(stack, copyFrame{src: srcSlot.Child, dst: dstSlot.Child})
				}
			case SlotList:
				dstSlot.List = make([]*Node, len(srcSlot.List))

				for pos, child := range srcSlot.List {
					if child == nil {
						continue
					}

					dstSlot.List[pos] = &Node{}
					stack = append(stack, copyFrame{src: child, dst: dstSlot.List[pos]})
				}
			case SlotScalar:
			}
		}
	}

	return root
}
