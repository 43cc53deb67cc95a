package semantic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/asjs/internal/semantic"
	th "github.com/standardbeagle/asjs/testhelpers"
)

func TestIdentityLeavesCrossLinksUnset(t *testing.T) {
	var p semantic.Pass = semantic.Identity{}

	tree := th.NewTree(nil)
	root := th.Int(tree, 1)

	require.NoError(t, p.ResolveNames(root))
	require.NoError(t, p.InferTypes(root))

	assert.Nil(t, root.Instance())
	assert.Nil(t, root.TypeNode())
}
