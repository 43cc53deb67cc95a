package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/asjs/internal/config"
)

const sampleKDL = `
project {
    root "."
    runtime-path "./rt"
}
lexer {
    extended-escape-sequences #true
    extended-operators 3
    octal #false
}
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadParsesProjectAndLexerSections(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "asjs.kdl", sampleKDL)

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Root)
	assert.Equal(t, filepath.Join(dir, "rt"), cfg.RuntimePath)
	assert.True(t, cfg.Lexer.ExtendedEscapeSequences())
	assert.Equal(t, 3, cfg.Lexer.ExtendedOperators())
	assert.False(t, cfg.Lexer.Octal())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Root)
	assert.True(t, cfg.Lexer.ExtendedEscapeSequences())
	assert.Equal(t, 0, cfg.Lexer.ExtendedOperators())
	assert.False(t, cfg.Lexer.Octal())
}

func TestValidateAcceptsWellFormedRegistry(t *testing.T) {
	reg := &config.OptionRegistry{ExtEscapeSequences: true, ExtOperators: 1, OctalLiterals: false}
	assert.NoError(t, config.Validate(reg))
}

func TestValidateRejectsOutOfRangeOperatorMask(t *testing.T) {
	reg := &config.OptionRegistry{ExtEscapeSequences: true, ExtOperators: 7, OctalLiterals: false}
	assert.Error(t, config.Validate(reg))
}

func TestLoadBuildManifestParsesRuntimePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "asjs.build.toml", "[runtime]\npatterns = [\"rt/src/*.s\", \"rt/extra/*.s\"]\n")

	m, err := config.LoadBuildManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"rt/src/*.s", "rt/extra/*.s"}, m.Runtime.Patterns)
}

func TestLoadBuildManifestMissingFileIsEmpty(t *testing.T) {
	dir := t.TempDir()

	m, err := config.LoadBuildManifest(dir)
	require.NoError(t, err)
	assert.Empty(t, m.Runtime.Patterns)
}
