package emitter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/asjs/internal/ast"
	"github.com/standardbeagle/asjs/internal/emitter"
	"github.com/standardbeagle/asjs/internal/flatten"
	th "github.com/standardbeagle/asjs/testhelpers"
)

// Spec scenario 1, end to end: `1 + 2 * 3` flattens, emits, and saves to a
// well-formed image with the documented header layout.
func TestOutputProducesWellFormedImage(t *testing.T) {
	tree := th.NewTree(nil)
	expr := th.Binary(tree, ast.Add,
		th.Int(tree, 1),
		th.Binary(tree, ast.Multiply, th.Int(tree, 2), th.Int(tree, 3)))

	prog := flatten.Flatten(expr, nil)

	data, err := emitter.Output(prog, "", nil)
	require.NoError(t, err)

	assert.Equal(t, byte(0xBA), data[0])
	assert.Equal(t, byte(0xDC), data[1])
	assert.Equal(t, byte(0x0D), data[2])
	assert.Equal(t, byte(0xE1), data[3])
	assert.Equal(t, "ENDB!", string(data[len(data)-5:]))
	assert.True(t, len(data)%4 == 0)
}

// Scenario 4's ternary lowers to a conditional branch; the image must
// still come out well-formed with the Label32 relocation resolved.
func TestOutputResolvesConditionalBranchRelocations(t *testing.T) {
	tree := th.NewTree(nil)
	cond := th.Conditional(tree, th.Bool(tree, true), th.Int(tree, 11), th.Int(tree, 22))
	stmt := th.VarStatement(tree, th.Declarator(tree, "a", true, cond))

	prog := flatten.Flatten(stmt, nil)

	data, err := emitter.Output(prog, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "ENDB!", string(data[len(data)-5:]))
}

// Scenario 3: `5 ** 3` emits a Power op, which must pull the `power`
// runtime function out of rt.oar and resolve its RT32 relocation.
func TestOutputLinksRuntimePowerFunction(t *testing.T) {
	// base in rdi, exponent in rsi, result in rax: rax = 1; while (rsi != 0)
	// { rax *= rdi; rsi-- }; ret.
	power := []byte{
		0x48, 0xC7, 0xC0, 0x01, 0x00, 0x00, 0x00, // mov rax, 1
		0x48, 0x85, 0xF6, // test rsi, rsi
		0x74, 0x09, // jz +9 (done)
		0x48, 0x0F, 0xAF, 0xC7, // imul rax, rdi
		0x48, 0xFF, 0xCE, // dec rsi
		0xEB, 0xF2, // jmp -14 (loop)
		0xC3, // ret
	}
	rtDir := th.RuntimeArchive(t, map[string][]byte{"power": power})

	tree := th.NewTree(nil)
	expr := th.Binary(tree, ast.Power, th.Int(tree, 5), th.Int(tree, 3))

	prog := flatten.Flatten(expr, nil)

	data, err := emitter.Output(prog, rtDir, nil)
	require.NoError(t, err)
	assert.Equal(t, "ENDB!", string(data[len(data)-5:]))
}
