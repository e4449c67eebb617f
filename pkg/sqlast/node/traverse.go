package node

const stackCapGrowth = 16

// VisitPreOrder visits every node in pre-order (root, then children left to right).
func (targetNode *Node) VisitPreOrder(fn func(*Node)) {
	targetNode.Walk(func(current *Node) bool {
		fn(current)

		return true
	})
}

// Walk visits nodes in pre-order. When fn returns false the children of the
// current node are skipped.
func (targetNode *Node) Walk(fn func(*Node) bool) {
	if targetNode == nil {
		return
	}

	stack := make([]*Node, 0, stackCapGrowth)
	stack = append(stack, targetNode)

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !fn(current) {
			continue
		}

		stack = pushChildrenReversed(stack, current.Children())
	}
}

// PreOrder returns all nodes of the tree in pre-order.
func (targetNode *Node) PreOrder() []*Node {
	var nodes []*Node

	targetNode.VisitPreOrder(func(current *Node) {
		nodes = append(nodes, current)
	})

	return nodes
}

type postOrderFrame struct {
	node     *Node
	expanded bool
}

// VisitPostOrder visits every node in post-order (children left to right, then root).
func (targetNode *Node) VisitPostOrder(fn func(*Node)) {
	if targetNode == nil {
		return
	}

	stack := make([]postOrderFrame, 0, stackCapGrowth)
	stack = append(stack, postOrderFrame{node: targetNode})

	for len(stack) > 0 {
		top := len(stack) - 1
		frame := stack[top]

		if frame.expanded {
			stack = stack[:top]
			fn(frame.node)

			continue
		}

		stack[top].expanded = true

		children := frame.node.Children()
		for idx := len(children) - 1; idx >= 0; idx-- {
			stack = append(stack, postOrderFrame{node: children[idx]})
		}
	}
}

// VisitBFS visits every node in breadth-first order.
func (targetNode *Node) VisitBFS(fn func(*Node)) {
	if targetNode == nil {
		return
	}

	queue := []*Node{targetNode}

	for head := 0; head < len(queue); head++ {
		current := queue[head]
		fn(current)

		queue = append(queue, current.Children()...)
	}
}

// Find returns all nodes in pre-order that satisfy the predicate.
func (targetNode *Node) Find(predicate func(*Node) bool) []*Node {
	var found []*Node

	targetNode.VisitPreOrder(func(current *Node) {
		if predicate(current) {
			found = append(found, current)
		}
	})

	return found
}

// Leaves returns the leaf nodes of the subtree in pre-order.
func (targetNode *Node) Leaves() []*Node {
	return targetNode.Find(func(current *Node) bool { return current.IsLeaf() })
}

// Size returns the number of nodes in the subtree.
func (targetNode *Node) Size() int {
	count := 0

	targetNode.VisitPreOrder(func(*Node) { count++ })

	return count
}

func pushChildrenReversed(stack, children []*Node) []*Node {
	for idx := len(children) - 1; idx >= 0; idx-- {
		stack = append(stack, children[idx])
	}

	return stack
}
