package node //nolint:testpackage // Tests need access to internal types.

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func column(name string) *Node {
	return NewBuilder("Column").Scalar("this", String(name)).Build()
}

func makeTestTree() *Node {
	// Tree structure:
	//        Select
	//       /   |   \
	//     a     b    From
	//                 |
	//               Table(x)
	from := NewBuilder("From").
		Child("this", NewBuilder("Table").Scalar("this", String("x")).Build()).
		Build()

	return NewBuilder("Select").
		List("expressions", column("a"), column("b")).
		Child("from", from).
		Child("where", nil).
		Build()
}

func tagsOf(nodes []*Node) []string {
	tags := make([]string, 0, len(nodes))

	for _, current := range nodes {
		label := string(current.Tag)
		if value, ok := current.Scalar("this"); ok {
			label += ":" + value.Str()
		}

		tags = append(tags, label)
	}

	return tags
}

func TestNodeTraversalOrders(t *testing.T) {
	t.Parallel()

	tree := makeTestTree()

	assert.Equal(t,
		[]string{"Select", "Column:a", "Column:b", "From", "Table:x"},
		tagsOf(tree.PreOrder()))

	var post []*Node

	tree.VisitPostOrder(func(current *Node) { post = append(post, current) })
	assert.Equal(t,
		[]string{"Column:a", "Column:b", "Table:x", "From", "Select"},
		tagsOf(post))

	var bfs []*Node

	tree.VisitBFS(func(current *Node) { bfs = append(bfs, current) })
	assert.Equal(t,
		[]string{"Select", "Column:a", "Column:b", "From", "Table:x"},
		tagsOf(bfs))
}

func TestNodeWalkSkipsSubtrees(t *testing.T) {
	t.Parallel()

	tree := makeTestTree()

	var visited []*Node

	tree.Walk(func(current *Node) bool {
		visited = append(visited, current)

		return current.Tag != "From"
	})

	assert.Equal(t, []string{"Select", "Column:a", "Column:b", "From"}, tagsOf(visited))
}

func TestNodeFindAndLeaves(t *testing.T) {
	t.Parallel()

	tree := makeTestTree()

	columns := tree.Find(func(current *Node) bool { return current.Tag == "Column" })
	assert.Equal(t, []string{"Column:a", "Column:b"}, tagsOf(columns))
	assert.Equal(t, []string{"Column:a", "Column:b", "Table:x"}, tagsOf(tree.Leaves()))
	assert.Equal(t, 5, tree.Size())
}

func TestNodeChildrenFlattensSlots(t *testing.T) {
	t.Parallel()

	tree := makeTestTree()

	children := tree.Children()
	require.Len(t, children, 3)
	assert.Equal(t, Tag("From"), children[2].Tag)
	assert.Nil(t, tree.Get("where"))
	assert.Len(t, tree.ListOf("expressions"), 2)
	assert.False(t, tree.IsLeaf())
	assert.True(t, children[0].IsLeaf())
}

func TestHashIgnoresSlotDeclarationOrder(t *testing.T) {
	t.Parallel()

	left := NewBuilder("Column").Scalar("this", String("a")).Scalar("table", String("t")).Build()
	right := NewBuilder("Column").Scalar("table", String("t")).Scalar("this", String("a")).Build()

	assert.Equal(t, Hash(left), Hash(right))
	assert.True(t, Equal(left, right))
}

func TestHashDistinguishesStructure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		left  *Node
		right *Node
	}{
		{
			name:  "list order",
			left:  NewBuilder("Tuple").List("expressions", column("a"), column("b")).Build(),
			right: NewBuilder("Tuple").List("expressions", column("b"), column("a")).Build(),
		},
		{
			name:  "absent child versus empty list",
			left:  NewBuilder("Select").Child("where", nil).Build(),
			right: NewBuilder("Select").List("where").Build(),
		},
		{
			name:  "scalar value",
			left:  column("a"),
			right: column("b"),
		},
		{
			name:  "scalar kind",
			left:  NewBuilder("Literal").Scalar("this", String("1")).Build(),
			right: NewBuilder("Literal").Scalar("this", Int(1)).Build(),
		},
		{
			name:  "tag",
			left:  NewBuilder("Column").Scalar("this", String("a")).Build(),
			right: NewBuilder("Identifier").Scalar("this", String("a")).Build(),
		},
		{
			name:  "discriminant flag",
			left:  NewBuilder("Join").Scalar("side", Enum("LEFT")).Build(),
			right: NewBuilder("Join").Discriminant("side", Enum("LEFT")).Build(),
		},
		{
			name:  "slot name",
			left:  NewBuilder("Alias").Child("this", column("a")).Build(),
			right: NewBuilder("Alias").Child("alias", column("a")).Build(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.NotEqual(t, Hash(tt.left), Hash(tt.right))
			assert.False(t, Equal(tt.left, tt.right))
		})
	}
}

func TestEqualIndependentlyBuiltTrees(t *testing.T) {
	t.Parallel()

	left := makeTestTree()
	right := makeTestTree()

	assert.NotSame(t, left, right)
	assert.True(t, Equal(left, right))
	assert.Equal(t, Hash(left), Hash(right))
}

func TestDigestsCoverEveryNode(t *testing.T) {
	t.Parallel()

	tree := makeTestTree()
	digests := Digests(tree)

	assert.Len(t, digests, tree.Size())

	columns := tree.ListOf("expressions")
	assert.Equal(t, Hash(columns[0]), digests[columns[0]])
	assert.NotEqual(t, digests[columns[0]], digests[columns[1]])
}

func TestCopyIsDeepAndEqual(t *testing.T) {
	t.Parallel()

	tree := makeTestTree()
	dup := Copy(tree)

	require.True(t, Equal(tree, dup))
	assert.NotSame(t, tree.ListOf("expressions")[0], dup.ListOf("expressions")[0])

	dup.ListOf("expressions")[0].Slots[0].Value = String("z")
	assert.False(t, Equal(tree, dup))

	value, ok := tree.ListOf("expressions")[0].Scalar("this")
	require.True(t, ok)
	assert.Equal(t, "a", value.Str())
	assert.Nil(t, Copy(nil))
}

func TestKindKeyIncludesDiscriminants(t *testing.T) {
	t.Parallel()

	left := NewBuilder("Join").Discriminant("side", Enum("LEFT")).Scalar("alias", String("j")).Build()
	right := NewBuilder("Join").Discriminant("side", Enum("RIGHT")).Scalar("alias", String("j")).Build()
	plain := NewBuilder("Join").Scalar("side", Enum("LEFT")).Build()

	assert.NotEqual(t, left.KindKey(), right.KindKey())
	assert.Equal(t, "Join", plain.KindKey())
	assert.Equal(t, "Join|side=LEFT", left.KindKey())
}

func TestChangedScalars(t *testing.T) {
	t.Parallel()

	left := NewBuilder("Column").Scalar("this", String("a")).Scalar("table", String("t")).Build()
	right := NewBuilder("Column").Scalar("this", String("a")).Scalar("table", String("u")).
		Scalar("quoted", Bool(true)).Build()

	assert.Equal(t, []string{"table", "quoted"}, ChangedScalars(left, right))
	assert.True(t, ScalarsEqual(left, Copy(left)))
}

func TestBuilderRejectsDuplicateSlot(t *testing.T) {
	t.Parallel()

	_, err := NewBuilder("Column").Scalar("this", String("a")).Scalar("this", String("b")).TryBuild()
	require.ErrorIs(t, err, ErrDuplicateSlot)

	assert.Panics(t, func() {
		NewBuilder("Column").Child("this", nil).List("this").Build()
	})
}

func TestBuilderDropsNilListEntries(t *testing.T) {
	t.Parallel()

	built := NewBuilder("Tuple").List("expressions", nil, column("a"), nil).Build()

	assert.Len(t, built.ListOf("expressions"), 1)
}

func TestValueAccessors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"x"`, String("x").String())
	assert.Equal(t, "DESC", Enum("DESC").String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "42", Int(42).String())
	assert.Equal(t, "1.5", Float(1.5).String())
	assert.Equal(t, "none", Value{}.String())
	assert.True(t, Int(3).Equal(Int(3)))
	assert.False(t, Int(3).Equal(Float(3)))
	assert.Equal(t, int64(3), Int(3).Interface())
	assert.Nil(t, Value{}.Interface())
}

func TestFloatValuesCompareByBits(t *testing.T) {
	t.Parallel()

	assert.True(t, Float(math.NaN()).Equal(Float(math.NaN())))
	assert.False(t, Float(0).Equal(Float(math.Copysign(0, -1))))

	build := func() *Node {
		return NewBuilder("Select").List("expressions", Leaf("Literal", "this", Float(math.NaN()))).Build()
	}

	left, right := build(), build()

	assert.Equal(t, Hash(left), Hash(right))
	assert.True(t, Equal(left, right))
}

func TestNodeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `Node{Tag:Column,this:"a"}`, column("a").String())
	assert.Equal(t, "Node{Tag:Select,Children:3}", makeTestTree().String())
	assert.Equal(t, "nil", (*Node)(nil).String())
}

func TestDeepTreesDoNotExhaustStack(t *testing.T) {
	t.Parallel()

	const depth = 200_000

	build := func() *Node {
		current := column("leaf")
		for range depth {
			current = NewBuilder("Paren").Child("this", current).Build()
		}

		return current
	}

	left := build()
	right := build()

	assert.True(t, Equal(left, right))
	assert.Equal(t, Hash(left), Hash(right))
	assert.Equal(t, depth+1, Copy(left).Size())
}
