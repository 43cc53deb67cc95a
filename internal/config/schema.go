package config

import (
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/standardbeagle/asjs/internal/lexer"
)

// optionRegistrySchema mirrors OptionRegistry's json tags, built once and
// reused across Validate calls the way the MCP tool schemas in the
// teacher's internal/mcp/server.go are built once at tool registration.
var optionRegistrySchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"extended_escape_sequences": {Type: "boolean"},
			"extended_operators":        {Type: "integer"},
			"octal":                     {Type: "boolean"},
		},
		Required: []string{"extended_escape_sequences", "extended_operators", "octal"},
	}
	return schema.Resolve(nil)
})

// Validate checks a decoded OptionRegistry against the compiled schema,
// catching a malformed KDL document (a string where octal wants a bool, a
// missing field) before the lexer ever sees it.
func Validate(o *OptionRegistry) error {
	resolved, err := optionRegistrySchema()
	if err != nil {
		return fmt.Errorf("config: compiling option schema: %w", err)
	}
	if err := resolved.Validate(o); err != nil {
		return fmt.Errorf("config: invalid lexer options: %w", err)
	}
	if o.ExtOperators < 0 || o.ExtOperators > lexerExtendedOperatorMax {
		return fmt.Errorf("config: extended-operators %d out of range [0,%d]", o.ExtOperators, lexerExtendedOperatorMax)
	}
	return nil
}

// lexerExtendedOperatorMax is the bitmask's highest valid value: both bits
// from internal/lexer's ExtendedOperator* constants set.
const lexerExtendedOperatorMax = lexer.ExtendedOperatorAngleNotEqual | lexer.ExtendedOperatorDisablePlainAssign
