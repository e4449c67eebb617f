package node_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/node"
)

func pathTree(t *testing.T) *node.Node {
	t.Helper()

	tree, err := node.Decode([]byte(selectDocJSON), node.FormatJSON)
	require.NoError(t, err)

	return tree
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tree := pathTree(t)

	tests := []struct {
		path string
		tag  node.Tag
	}{
		{"/", "Select"},
		{"", "Select"},
		{"/expressions[0]", "Column"},
		{"/expressions[1]", "Literal"},
		{"/from", "Table"},
		{"from", "Table"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			found, err := node.Resolve(tree, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.tag, found.Tag)
		})
	}
}

func TestResolveErrors(t *testing.T) {
	t.Parallel()

	tree := pathTree(t)

	tests := []struct {
		path string
		want error
	}{
		{"/missing", node.ErrPathNotFound},
		{"/expressions[5]", node.ErrPathNotFound},
		{"/where", node.ErrPathNotFound},
		{"/expressions", node.ErrInvalidPath},
		{"/from[0]", node.ErrInvalidPath},
		{"/limit", node.ErrInvalidPath},
		{"/expressions[x]", node.ErrInvalidPath},
		{"/[0]", node.ErrInvalidPath},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			_, err := node.Resolve(tree, tt.path)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPathOfRoundTrips(t *testing.T) {
	t.Parallel()

	tree := pathTree(t)

	tree.VisitPreOrder(func(current *node.Node) {
		path, ok := node.PathOf(tree, current)
		require.True(t, ok)

		resolved, err := node.Resolve(tree, path)
		require.NoError(t, err)
		assert.Same(t, current, resolved, path)
	})

	_, ok := node.PathOf(tree, node.Copy(tree.Get("from")))
	assert.False(t, ok)
}

func TestPathsAgreeWithPathOf(t *testing.T) {
	t.Parallel()

	tree := pathTree(t)
	paths := node.Paths(tree)

	assert.Len(t, paths, tree.Size())

	tree.VisitPreOrder(func(current *node.Node) {
		want, ok := node.PathOf(tree, current)
		require.True(t, ok)
		assert.Equal(t, want, paths[current])
	})

	assert.Empty(t, node.Paths(nil))
}
