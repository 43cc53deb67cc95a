package image_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/asjs/internal/ast"
	"github.com/standardbeagle/asjs/internal/emitter"
	"github.com/standardbeagle/asjs/internal/flatten"
	"github.com/standardbeagle/asjs/internal/image"
	"github.com/standardbeagle/asjs/internal/ir"
	th "github.com/standardbeagle/asjs/testhelpers"
)

// Spec scenario 4: `var a = true ? 11 : 22;` with a declared extern. The
// saved image must expose `a` through the sorted variable table.
func TestLoadBytesParsesHeaderAndVariables(t *testing.T) {
	tree := th.NewTree(nil)
	cond := th.Conditional(tree, th.Bool(tree, true), th.Int(tree, 11), th.Int(tree, 22))
	stmt := th.VarStatement(tree, th.Declarator(tree, "a", true, cond))

	prog := flatten.Flatten(stmt, nil)
	data, err := emitter.Output(prog, "", nil)
	require.NoError(t, err)

	img, err := image.LoadBytes(data, nil)
	require.NoError(t, err)
	defer img.Clean()

	major, minor := img.Version()
	assert.Equal(t, byte(1), major)
	assert.Equal(t, byte(0), minor)

	v := img.FindVariable("a")
	require.NotNil(t, v)
	assert.Equal(t, ir.TypeInteger, v.Type)
	assert.Nil(t, img.FindVariable("does_not_exist"))
}

// Scenario 1 end to end: `1 + 2 * 3` compiles to an image whose entry
// point, once mapped executable, returns integer 7.
func TestRunExecutesEntryAndReturnsInteger(t *testing.T) {
	tree := th.NewTree(nil)
	expr := th.Binary(tree, ast.Add,
		th.Int(tree, 1),
		th.Binary(tree, ast.Multiply, th.Int(tree, 2), th.Int(tree, 3)))

	prog := flatten.Flatten(expr, nil)
	data, err := emitter.Output(prog, "", nil)
	require.NoError(t, err)

	img, err := image.LoadBytes(data, nil)
	require.NoError(t, err)
	defer img.Clean()

	result, err := img.Run()
	require.NoError(t, err)
	assert.Equal(t, int64(7), result)
}

func TestSetAndGetTypedVariablesRoundTrip(t *testing.T) {
	tree := th.NewTree(nil)
	cond := th.Conditional(tree, th.Bool(tree, true), th.Int(tree, 11), th.Int(tree, 22))
	stmt := th.VarStatement(tree, th.Declarator(tree, "a", true, cond))

	prog := flatten.Flatten(stmt, nil)
	data, err := emitter.Output(prog, "", nil)
	require.NoError(t, err)

	img, err := image.LoadBytes(data, nil)
	require.NoError(t, err)
	defer img.Clean()

	v := img.FindVariable("a")
	require.NotNil(t, v)

	img.SetInt64(v, 42)
	assert.Equal(t, int64(42), img.Int64(v))
}

func TestCleanIsIdempotent(t *testing.T) {
	tree := th.NewTree(nil)
	expr := th.Int(tree, 1)
	prog := flatten.Flatten(expr, nil)
	data, err := emitter.Output(prog, "", nil)
	require.NoError(t, err)

	img, err := image.LoadBytes(data, nil)
	require.NoError(t, err)

	require.NoError(t, img.Clean())
	require.NoError(t, img.Clean())
}

func TestLoadBytesRejectsBadMagic(t *testing.T) {
	_, err := image.LoadBytes(make([]byte, 32), nil)
	assert.Error(t, err)
}

// Scenario 3: `5 ** 3` links in a runtime `power` function; running the
// loaded image must produce 125.
func TestRunExecutesLinkedRuntimeFunction(t *testing.T) {
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

	img, err := image.LoadBytes(data, nil)
	require.NoError(t, err)
	defer img.Clean()

	result, err := img.Run()
	require.NoError(t, err)
	assert.Equal(t, int64(125), result)
}
