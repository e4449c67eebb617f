package diff_test

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sqldiff/pkg/diff"
	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/expr"
	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/node"
)

// treeGen builds small random statements over a narrow vocabulary so that
// repeated identical leaves and subtrees are common.
type treeGen struct {
	rng *rand.Rand
}

func (gen treeGen) leaf() *node.Node {
	switch gen.rng.Intn(3) {
	case 0:
		return expr.Column([]string{"a", "b", "c"}[gen.rng.Intn(3)])
	case 1:
		return expr.Int(int64(gen.rng.Intn(3)))
	default:
		return expr.Str([]string{"x", "y"}[gen.rng.Intn(2)])
	}
}

func (gen treeGen) expression(depth int) *node.Node {
	if depth == 0 || gen.rng.Intn(3) == 0 {
		return gen.leaf()
	}

	switch gen.rng.Intn(5) {
	case 0:
		return expr.Add(gen.expression(depth-1), gen.expression(depth-1))
	case 1:
		return expr.Sum(gen.expression(depth - 1))
	case 2:
		return expr.Alias(gen.expression(depth-1), []string{"p", "q"}[gen.rng.Intn(2)])
	case 3:
		args := make([]*node.Node, 1+gen.rng.Intn(3))
		for idx := range args {
			args[idx] = gen.expression(depth - 1)
		}

		return expr.Concat(args...)
	default:
		return expr.EQ(gen.expression(depth-1), gen.expression(depth-1))
	}
}

func (gen treeGen) statement() *node.Node {
	projections := make([]*node.Node, 1+gen.rng.Intn(4))
	for idx := range projections {
		projections[idx] = gen.expression(3)
	}

	builder := expr.Select(projections...)
	if gen.rng.Intn(2) == 0 {
		builder.From(expr.Table("t"))
	}

	if gen.rng.Intn(2) == 0 {
		builder.Where(gen.expression(2))
	}

	return builder.Build()
}

// mutate returns an edited deep copy of tree.
func (gen treeGen) mutate(tree *node.Node) *node.Node {
	tree = node.Copy(tree)

	slot, ok := tree.Slot(expr.SlotExpressions)
	if !ok {
		return tree
	}

	for range 1 + gen.rng.Intn(3) {
		size := len(slot.List)

		switch gen.rng.Intn(5) {
		case 0:
			i, j := gen.rng.Intn(size), gen.rng.Intn(size)
			slot.List[i], slot.List[j] = slot.List[j], slot.List[i]
		case 1:
			if size > 1 {
				pos := gen.rng.Intn(size)
				slot.List = slices.Delete(slot.List, pos, pos+1)
			}
		case 2:
			slot.List = slices.Insert(slot.List, gen.rng.Intn(size+1), gen.expression(2))
		case 3:
			pos := gen.rng.Intn(size)
			slot.List[pos] = expr.Sum(slot.List[pos])
		default:
			slot.List[gen.rng.Intn(size)] = gen.leaf()
		}
	}

	return tree
}

func TestDiff_SymmetryRandomTrees(t *testing.T) {
	t.Parallel()

	gen := treeGen{rng: rand.New(rand.NewSource(7))}

	for iteration := range 300 {
		source := gen.statement()

		target := gen.statement()
		if iteration%3 != 0 {
			target = gen.mutate(source)
		}

		forward, err := diff.Diff(source, target)
		require.NoError(t, err)

		backward, err := diff.Diff(target, source)
		require.NoError(t, err)

		mirrored := make(diff.Script, 0, len(forward))
		for _, edit := range forward {
			mirrored = append(mirrored, edit.Mirror())
		}

		require.Equal(t, mirrored.Set(), backward.Set(), "iteration %d: %s -> %s", iteration, source, target)

		forwardSummary, backwardSummary := forward.Summarize(), backward.Summarize()
		assert.Equal(t, forwardSummary.Remove, backwardSummary.Insert)
		assert.Equal(t, forwardSummary.Insert, backwardSummary.Remove)
		assert.Equal(t, forwardSummary.Update, backwardSummary.Update)
		assert.Equal(t, forwardSummary.Move, backwardSummary.Move)
	}
}
