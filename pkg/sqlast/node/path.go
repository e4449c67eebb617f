package node

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Path errors.
var (
	ErrInvalidPath  = errors.New("invalid node path")
	ErrPathNotFound = errors.New("node path not found")
)

// Resolve returns the node addressed by path, relative to root.
//
// Paths are slash-separated slot steps: "/from/this" follows child slots,
// "/expressions[2]" indexes a list slot (zero-based). "/" and "" address the
// root itself.
func Resolve(root *Node, path string) (*Node, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", ErrPathNotFound)
	}

	current := root

	for _, step := range strings.Split(path, "/") {
		if step == "" {
			continue
		}

		name, index, err := parseStep(step)
		if err != nil {
			return nil, err
		}

		slot, ok := current.Slot(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no slot %q", ErrPathNotFound, current.Tag, name)
		}

		current, err = followSlot(slot, index, step)
		if err != nil {
			return nil, err
		}
	}

	return current, nil
}

func followSlot(slot *Slot, index int, step string) (*Node, error) {
	switch slot.Kind {
	case SlotChild:
		if index >= 0 {
			return nil, fmt.Errorf("%w: %q indexes a child slot", ErrInvalidPath, step)
		}

		if slot.Child == nil {
			return nil, fmt.Errorf("%w: %q is empty", ErrPathNotFound, step)
		}

		return slot.Child, nil
	case SlotList:
		if index < 0 {
			return nil, fmt.Errorf("%w: list slot %q needs an index", ErrInvalidPath, step)
		}

		if index >= len(slot.List) {
			return nil, fmt.Errorf("%w: %q out of range (len %d)", ErrPathNotFound, step, len(slot.List))
		}

		return slot.List[index], nil
	case SlotScalar:
	}

	return nil, fmt.Errorf("%w: %q is a scalar slot", ErrInvalidPath, step)
}

// parseStep splits "name[3]" into ("name", 3); a step without brackets has index -1.
func parseStep(step string) (string, int, error) {
	open := strings.IndexByte(step, '[')
	if open < 0 {
		return step, -1, nil
	}

	if open == 0 || !strings.HasSuffix(step, "]") {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidPath, step)
	}

	index, err := strconv.Atoi(step[open+1 : len(step)-1])
	if err != nil || index < 0 {
		return "", 0, fmt.Errorf("%w: bad index in %q", ErrInvalidPath, step)
	}

	return step[:open], index, nil
}

// PathOf returns the path of target below root, or false if target is not part
// of the tree.
func PathOf(root, target *Node) (string, bool) {
	if root == nil || target == nil {
		return "", false
	}

	if root == target {
		return "/", true
	}

	parents := make(map[*Node]*Node)
	steps := make(map[*Node]string)
	found := false

	root.Walk(func(current *Node) bool {
		if found {
			return false
		}

		for idx := range current.Slots {
			slot := &current.Slots[idx]

			switch slot.Kind {
			case SlotChild:
				if slot.Child != nil {
					parents[slot.Child] = current
					steps[slot.Child] = slot.Name
					found = found || slot.Child == target
				}
			case SlotList:
				for pos, child := range slot.List {
					parents[child] = current
					steps[child] = slot.Name + "[" + strconv.Itoa(pos) + "]"
					found = found || child == target
				}
			case SlotScalar:
			}
		}

		return true
	})

	if !found {
		return "", false
	}

	var parts []string

	for current := target; current != root; current = parents[current] {
		parts = append(parts, steps[current])
	}

	var buf strings.Builder

	for idx := len(parts) - 1; idx >= 0; idx-- {
		buf.WriteByte('/')
		buf.WriteString(parts[idx])
	}

	return buf.String(), true
}

// Paths returns the path of every node below root, root included.
func Paths(root *Node) map[*Node]string {
	paths := make(map[*Node]string)
	if root == nil {
		return paths
	}

	paths[root] = ""

	root.Walk(func(current *Node) bool {
		prefix := paths[current]

		for idx := range current.Slots {
			slot := &current.Slots[idx]

			switch slot.Kind {
			case SlotChild:
				if slot.Child != nil {
					paths[slot.Child] = prefix + "/" + slot.Name
				}
			case SlotList:
				for pos, child := range slot.List {
					paths[child] = prefix + "/" + slot.Name + "[" + strconv.Itoa(pos) + "]"
				}
			case SlotScalar:
			}
		}

		return true
	})

	paths[root] = "/"

	return paths
}
