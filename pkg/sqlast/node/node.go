// Package node provides the canonical SQL expression tree structure: tagged
// nodes with named child, list, and scalar slots, plus structural hashing,
// structural equality, and iterative traversal.
package node

import (
	"math"
	"strconv"
	"strings"
)

// Tag identifies the semantic kind of a node (e.g. "Select", "Column").
type Tag string

// SlotKind describes what a slot holds.
type SlotKind uint8

// Slot kinds.
const (
	SlotChild SlotKind = iota + 1
	SlotList
	SlotScalar
)

func (kind SlotKind) String() string {
	switch kind {
	case SlotChild:
		return "child"
	case SlotList:
		return "list"
	case SlotScalar:
		return "scalar"
	default:
		return "unknown"
	}
}

// ValueKind describes the type of a scalar slot value.
type ValueKind uint8

// Scalar value kinds. ValueNone is the zero Value.
const (
	ValueNone ValueKind = iota
	ValueString
	ValueBool
	ValueInt
	ValueFloat
	ValueEnum
)

func (kind ValueKind) String() string {
	switch kind {
	case ValueNone:
		return "none"
	case ValueString:
		return "string"
	case ValueBool:
		return "bool"
	case ValueInt:
		return "int"
	case ValueFloat:
		return "float"
	case ValueEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Value is an immutable scalar slot value. It participates in node identity
// but is never a traversable child.
type Value struct {
	str  string
	num  float64
	in   int64
	kind ValueKind
	flag bool
}

// String returns a string scalar.
func String(s string) Value { return Value{kind: ValueString, str: s} }

// Enum returns an enum scalar (a keyword such as a join side or sort order).
func Enum(s string) Value { return Value{kind: ValueEnum, str: s} }

// Bool returns a boolean scalar.
func Bool(b bool) Value { return Value{kind: ValueBool, flag: b} }

// Int returns an integer scalar.
func Int(i int64) Value { return Value{kind: ValueInt, in: i} }

// Float returns a floating point scalar.
func Float(f float64) Value { return Value{kind: ValueFloat, num: f} }

// Kind returns the value kind.
func (value Value) Kind() ValueKind { return value.kind }

// Str returns the string payload of a string or enum value.
func (value Value) Str() string { return value.str }

// AsBool returns the payload of a boolean value.
func (value Value) AsBool() bool { return value.flag }

// AsInt returns the payload of an integer value.
func (value Value) AsInt() int64 { return value.in }

// AsFloat returns the payload of a float value.
func (value Value) AsFloat() float64 { return value.num }

// Equal reports whether two values have the same kind and payload. Floats
// compare by bit pattern, matching the digest.
func (value Value) Equal(other Value) bool {
	if value.kind != other.kind {
		return false
	}

	switch value.kind {
	case ValueString, ValueEnum:
		return value.str == other.str
	case ValueBool:
		return value.flag == other.flag
	case ValueInt:
		return value.in == other.in
	case ValueFloat:
		return math.Float64bits(value.num) == math.Float64bits(other.num)
	default:
		return true
	}
}

// Interface returns the payload as a plain Go value (nil for ValueNone).
func (value Value) Interface() any {
	switch value.kind {
	case ValueString, ValueEnum:
		return value.str
	case ValueBool:
		return value.flag
	case ValueInt:
		return value.in
	case ValueFloat:
		return value.num
	default:
		return nil
	}
}

func (value Value) String() string {
	switch value.kind {
	case ValueString:
		return strconv.Quote(value.str)
	case ValueEnum:
		return value.str
	case ValueBool:
		return strconv.FormatBool(value.flag)
	case ValueInt:
		return strconv.FormatInt(value.in, 10)
	case ValueFloat:
		return strconv.FormatFloat(value.num, 'g', -1, 64)
	default:
		return "none"
	}
}

// Slot is one named argument of a node. Exactly one of Child, List, or Value
// is meaningful, selected by Kind.
//
// Discriminant marks a scalar slot that is part of the node's kind: two nodes
// with the same tag but different discriminant values are never paired by the
// heuristic matching passes (a LEFT join is not a RIGHT join).
type Slot struct {
	Child        *Node
	Name         string
	List         []*Node
	Value        Value
	Kind         SlotKind
	Discriminant bool
}

// Node is the canonical expression tree node.
//
// Fields:
//
//	Tag: node kind (e.g. "Select", "Column").
//	Slots: named arguments in declaration order. Declaration order drives
//	  traversal; identity (hash and equality) treats slots as a mapping by name.
type Node struct {
	Tag   Tag    `json:"tag"`
	Slots []Slot `json:"-"`
}

// Slot returns the slot with the given name.
func (targetNode *Node) Slot(name string) (*Slot, bool) {
	if targetNode == nil {
		return nil, false
	}

	for idx := range targetNode.Slots {
		if targetNode.Slots[idx].Name == name {
			return &targetNode.Slots[idx], true
		}
	}

	return nil, false
}

// Get returns the child stored in a child slot, or nil.
func (targetNode *Node) Get(name string) *Node {
	slot, ok := targetNode.Slot(name)
	if !ok || slot.Kind != SlotChild {
		return nil
	}

	return slot.Child
}

// ListOf returns the children stored in a list slot, or nil.
func (targetNode *Node) ListOf(name string) []*Node {
	slot, ok := targetNode.Slot(name)
	if !ok || slot.Kind != SlotList {
		return nil
	}

	return slot.List
}

// Scalar returns the value stored in a scalar slot.
func (targetNode *Node) Scalar(name string) (Value, bool) {
	slot, ok := targetNode.Slot(name)
	if !ok || slot.Kind != SlotScalar {
		return Value{}, false
	}

	return slot.Value, true
}

// Children returns the node's child sequence: every present child of every
// child and list slot, flattened in slot declaration order.
func (targetNode *Node) Children() []*Node {
	if targetNode == nil {
		return nil
	}

	var children []*Node

	for idx := range targetNode.Slots {
		slot := &targetNode.Slots[idx]

		switch slot.Kind {
		case SlotChild:
			if slot.Child != nil {
				children = append(children, slot.Child)
			}
		case SlotList:
			for _, child := range slot.List {
				if child != nil {
					children = append(children, child)
				}
			}
		case SlotScalar:
		}
	}

	return children
}

// IsLeaf reports whether the node has no child nodes.
func (targetNode *Node) IsLeaf() bool {
	if targetNode == nil {
		return true
	}

	for idx := range targetNode.Slots {
		slot := &targetNode.Slots[idx]

		if slot.Kind == SlotChild && slot.Child != nil {
			return false
		}

		if slot.Kind == SlotList {
			for _, child := range slot.List {
				if child != nil {
					return false
				}
			}
		}
	}

	return true
}

// KindKey returns the node's tag followed by its discriminant scalars. Nodes
// with different kind keys are never paired heuristically.
func (targetNode *Node) KindKey() string {
	if targetNode == nil {
		return ""
	}

	var buf strings.Builder

	buf.WriteString(string(targetNode.Tag))

	for idx := range targetNode.Slots {
		slot := &targetNode.Slots[idx]
		if slot.Kind != SlotScalar || !slot.Discriminant {
			continue
		}

		buf.WriteByte('|')
		buf.WriteString(slot.Name)
		buf.WriteByte('=')
		buf.WriteString(slot.Value.String())
	}

	return buf.String()
}

// ScalarsEqual reports whether two nodes carry the same scalar slots
// (compared by name, regardless of declaration order).
func ScalarsEqual(left, right *Node) bool {
	return len(ChangedScalars(left, right)) == 0
}

// ChangedScalars returns the names of scalar slots whose presence or value
// differs between the two nodes, in left-then-right declaration order.
func ChangedScalars(left, right *Node) []string {
	var changed []string

	for idx := range left.Slots {
		slot := &left.Slots[idx]
		if slot.Kind != SlotScalar {
			continue
		}

		other, ok := right.Slot(slot.Name)
		if !ok || other.Kind != SlotScalar || !other.Value.Equal(slot.Value) ||
			other.Discriminant != slot.Discriminant {
			changed = append(changed, slot.Name)
		}
	}

	for idx := range right.Slots {
		slot := &right.Slots[idx]
		if slot.Kind != SlotScalar {
			continue
		}

		if _, ok := left.Slot(slot.Name); !ok {
			changed = append(changed, slot.Name)
		}
	}

	return changed
}

// String returns a compact representation of the node and its scalars.
func (targetNode *Node) String() string {
	if targetNode == nil {
		return "nil"
	}

	var buf strings.Builder

	buf.WriteString("Node{Tag:")
	buf.WriteString(string(targetNode.Tag))

	children := 0

	for idx := range targetNode.Slots {
		slot := &targetNode.Slots[idx]

		switch slot.Kind {
		case SlotScalar:
			buf.WriteByte(',')
			buf.WriteString(slot.Name)
			buf.WriteByte(':')
			buf.WriteString(slot.Value.String())
		case SlotChild:
			if slot.Child != nil {
				children++
			}
		case SlotList:
			children += len(slot.List)
		}
	}

	if children > 0 {
		buf.WriteString(",Children:")
		buf.WriteString(strconv.Itoa(children))
	}

	buf.WriteString("}")

	return buf.String()
}
