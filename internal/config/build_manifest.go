package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const defaultManifestFile = "asjs.build.toml"

// BuildManifest is the decoded asjs.build.toml: the glob patterns feeding
// internal/archive.Create, kept separate from asjs.kdl (lexer behavior) the
// way the teacher keeps .lci.kdl (indexing behavior) separate from the
// language-specific build files build_artifact_detector.go reads with the
// same toml.Unmarshal call.
type BuildManifest struct {
	Runtime struct {
		Patterns []string `toml:"patterns"`
	} `toml:"runtime"`
}

// LoadBuildManifest reads <projectRoot>/asjs.build.toml. A missing file
// yields an empty manifest (no patterns), not an error, so a project with
// no runtime archive to build still compiles.
func LoadBuildManifest(projectRoot string) (*BuildManifest, error) {
	path := filepath.Join(projectRoot, defaultManifestFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &BuildManifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: cannot read %s: %w", path, err)
	}

	var m BuildManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &m, nil
}
