// Package config loads the project-level asjs.kdl document into an
// OptionRegistry (internal/lexer.Options) and a ProjectConfig, the way the
// teacher's internal/config/kdl_config.go loads .lci.kdl: kdl-go parses the
// document, a small switch over node names assigns fields, and anything
// absent from the file keeps its default.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/standardbeagle/asjs/internal/lexer"
)

const defaultConfigFile = "asjs.kdl"

// OptionRegistry is the decoded `lexer { ... }` block, implementing
// lexer.Options (spec.md §4.2/§6's "option registry"). Field tags describe
// the schema Validate checks the decoded values against.
type OptionRegistry struct {
	ExtEscapeSequences bool `json:"extended_escape_sequences"`
	ExtOperators       int  `json:"extended_operators"`
	OctalLiterals      bool `json:"octal"`
}

func (o *OptionRegistry) ExtendedEscapeSequences() bool { return o.ExtEscapeSequences }
func (o *OptionRegistry) ExtendedOperators() int        { return o.ExtOperators }
func (o *OptionRegistry) Octal() bool                   { return o.OctalLiterals }

var _ lexer.Options = (*OptionRegistry)(nil)

// ProjectConfig is the decoded `project { ... }` block plus the lexer
// registry it carries alongside.
type ProjectConfig struct {
	Root        string
	RuntimePath string
	Lexer       OptionRegistry
}

// Load reads <projectRoot>/asjs.kdl. A missing file is not an error: it
// returns the default ProjectConfig (DefaultOptions' permissive values),
// matching LoadKDL's "no .lci.kdl found, use defaults" behavior.
func Load(projectRoot string) (*ProjectConfig, error) {
	path := filepath.Join(projectRoot, defaultConfigFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return defaultProjectConfig(projectRoot), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: cannot read %s: %w", path, err)
	}

	cfg, err := parseKDL(string(content), projectRoot)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func defaultProjectConfig(projectRoot string) *ProjectConfig {
	return &ProjectConfig{
		Root:        projectRoot,
		RuntimePath: filepath.Join(projectRoot, "rt"),
		Lexer: OptionRegistry{
			ExtEscapeSequences: true,
			ExtOperators:       0,
			OctalLiterals:      false,
		},
	}
}

func parseKDL(content, projectRoot string) (*ProjectConfig, error) {
	cfg := defaultProjectConfig(projectRoot)

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parsing KDL: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Root = v })
				assignSimpleString(cn, "runtime-path", func(v string) { cfg.RuntimePath = v })
			}
		case "lexer":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "extended-escape-sequences":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Lexer.ExtEscapeSequences = b
					}
				case "extended-operators":
					if v, ok := firstIntArg(cn); ok {
						cfg.Lexer.ExtOperators = v
					}
				case "octal":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Lexer.OctalLiterals = b
					}
				}
			}
		}
	}

	if cfg.Root != "" && !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Clean(filepath.Join(projectRoot, cfg.Root))
	}
	if cfg.RuntimePath != "" && !filepath.IsAbs(cfg.RuntimePath) {
		cfg.RuntimePath = filepath.Clean(filepath.Join(cfg.Root, strings.TrimPrefix(cfg.RuntimePath, "./")))
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}
