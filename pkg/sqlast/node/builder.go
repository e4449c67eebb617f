package node

import (
	"errors"
	"fmt"
)

// ErrDuplicateSlot is returned when a node declares the same slot name twice.
var ErrDuplicateSlot = errors.New("duplicate slot name")

// Builder provides a fluent interface for constructing nodes.
type Builder struct {
	err  error
	node *Node
	seen map[string]struct{}
}

// NewBuilder creates a builder for a node of the given tag.
func NewBuilder(tag Tag) *Builder {
	return &Builder{
		node: &Node{Tag: tag},
		seen: make(map[string]struct{}),
	}
}

// Child adds a single-child slot. A nil child records the slot as absent.
func (builder *Builder) Child(name string, child *Node) *Builder {
	return builder.add(Slot{Name: name, Kind: SlotChild, Child: child})
}

// List adds a list slot. Nil entries are dropped.
func (builder *Builder) List(name string, children ...*Node) *Builder {
	list := make([]*Node, 0, len(children))

	for _, child := range children {
		if child != nil {
			list = append(list, child)
		}
	}

	return builder.add(Slot{Name: name, Kind: SlotList, List: list})
}

// Scalar adds a scalar slot.
func (builder *Builder) Scalar(name string, value Value) *Builder {
	return builder.add(Slot{Name: name, Kind: SlotScalar, Value: value})
}

// Discriminant adds a scalar slot that is part of the node's kind.
func (builder *Builder) Discriminant(name string, value Value) *Builder {
	return builder.add(Slot{Name: name, Kind: SlotScalar, Value: value, Discriminant: true})
}

// Err returns the first construction error, if any.
func (builder *Builder) Err() error {
	return builder.err
}

// Build returns the constructed node. It panics on construction errors; use
// TryBuild when slot names come from untrusted input.
func (builder *Builder) Build() *Node {
	built, err := builder.TryBuild()
	if err != nil {
		panic(err)
	}

	return built
}

// TryBuild returns the constructed node or the first construction error.
func (builder *Builder) TryBuild() (*Node, error) {
	if builder.err != nil {
		return nil, builder.err
	}

	return builder.node, nil
}

func (builder *Builder) add(slot Slot) *Builder {
	if builder.err != nil {
		return builder
	}

	if _, dup := builder.seen[slot.Name]; dup {
		builder.err = fmt.Errorf("%w: %s.%s", ErrDuplicateSlot, builder.node.Tag, slot.Name)

		return builder
	}

	builder.seen[slot.Name] = struct{}{}
	builder.node.Slots = append(builder.node.Slots, slot)

	return builder
}

// Leaf returns a childless node carrying a single scalar slot.
func Leaf(tag Tag, name string, value Value) *Node {
	return NewBuilder(tag).Scalar(name, value).Build()
}
