package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/asjs/internal/archive"
	"github.com/standardbeagle/asjs/internal/emitter"
	"github.com/standardbeagle/asjs/internal/flatten"
	"github.com/standardbeagle/asjs/internal/image"
	"github.com/standardbeagle/asjs/internal/ir"
	th "github.com/standardbeagle/asjs/testhelpers"
)

// runAction builds a one-command cli.App around fn and runs it with args,
// the lightest way to exercise a *cli.Context-shaped function without
// building or exec'ing the asjsc binary.
func runAction(t *testing.T, fn cli.ActionFunc, flags []cli.Flag, args ...string) error {
	t.Helper()
	app := &cli.App{
		Name:  "test",
		Flags: flags,
		Action: func(c *cli.Context) error {
			return fn(c)
		},
	}
	return app.Run(append([]string{"test"}, args...))
}

func TestResolvePatternsFromArguments(t *testing.T) {
	var got []string
	err := runAction(t, func(c *cli.Context) error {
		var actionErr error
		got, actionErr = resolvePatterns(c)
		return actionErr
	}, []string{&cli.StringFlag{Name: "manifest"}}, "rt/src/*.s", "rt/extra/*.s")
	require.NoError(t, err)
	assert.Equal(t, []string{"rt/src/*.s", "rt/extra/*.s"}, got)
}

func TestResolvePatternsRequiresArgsOrManifest(t *testing.T) {
	err := runAction(t, func(c *cli.Context) error {
		_, actionErr := resolvePatterns(c)
		return actionErr
	}, []string{&cli.StringFlag{Name: "manifest"}})
	assert.Error(t, err)
}

func TestResolvePatternsFromManifest(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "asjs.build.toml")
	require.NoError(t, os.WriteFile(manifestPath, []byte("[runtime]\npatterns = [\"rt/src/*.s\"]\n"), 0o644))

	var got []string
	err := runAction(t, func(c *cli.Context) error {
		var actionErr error
		got, actionErr = resolvePatterns(c)
		return actionErr
	}, []string{&cli.StringFlag{Name: "manifest"}}, "--manifest", manifestPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"rt/src/*.s"}, got)
}

func TestBuildArchiveOnceParallelWritesFunctions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rt_double.s"), []byte{0xC3}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rt_square.s"), []byte{0xC3}, 0o644))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	output := filepath.Join(dir, "rt.oar")
	require.NoError(t, buildArchiveOnceParallel([]string{"*.s"}, output))

	a, err := archive.Load(output)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"double", "square"}, a.Names())
}

func TestArchiveListActionPrintsFunctionNames(t *testing.T) {
	dir := t.TempDir()
	a := archive.New()
	a.Add("power", []byte{0xC3})
	path := filepath.Join(dir, "rt.oar")
	require.NoError(t, a.WriteFile(path))

	err := runAction(t, archiveListAction, nil, path)
	assert.NoError(t, err)
}

func TestFormatVariableByType(t *testing.T) {
	tree := th.NewTree(nil)
	cond := th.Conditional(tree, th.Bool(tree, true), th.Int(tree, 11), th.Int(tree, 22))
	stmt := th.VarStatement(tree, th.Declarator(tree, "a", true, cond))

	prog := flatten.Flatten(stmt, nil)
	data, err := emitter.Output(prog, "", nil)
	require.NoError(t, err)

	img, err := image.LoadBytes(data, nil)
	require.NoError(t, err)
	defer img.Clean()

	_, err = img.Run()
	require.NoError(t, err)

	v := img.FindVariable("a")
	require.NotNil(t, v)
	assert.Equal(t, ir.TypeInteger, v.Type)
	assert.Equal(t, "11", formatVariable(img, v))
}
