package testhelpers

import (
	"path/filepath"
	"testing"

	"github.com/standardbeagle/asjs/internal/archive"
)

// RuntimeArchive writes an rt.oar containing functions (name -> code blob)
// to a fresh temp directory and returns that directory, suitable for
// emitter.New's rtPath argument.
func RuntimeArchive(t testing.TB, functions map[string][]byte) string {
	t.Helper()
	a := archive.New()
	for name, code := range functions {
		a.Add(name, code)
	}
	dir := t.TempDir()
	if err := a.WriteFile(filepath.Join(dir, "rt.oar")); err != nil {
		t.Fatalf("testhelpers.RuntimeArchive: %v", err)
	}
	return dir
}
