package lexer

// ExtendedOperators bits, matching spec.md §6's option table: bit 0 allows
// `<>`/`:=`, bit 1 disables plain `=`.
const (
	ExtendedOperatorAngleNotEqual = 1 << 0
	ExtendedOperatorDisablePlainAssign = 1 << 1
)

// Options is the lexer's option registry, the interface `internal/config`
// implements over a parsed `asjs.kdl` document (spec.md §6).
type Options interface {
	// ExtendedEscapeSequences reports whether \U######, \e, and octal
	// escapes are recognized inside string/template literals.
	ExtendedEscapeSequences() bool
	// ExtendedOperators returns the bit-mask controlling non-standard
	// operator forms.
	ExtendedOperators() int
	// Octal reports whether a legacy leading-zero octal number is accepted.
	Octal() bool
}

// DefaultOptions is the permissive registry used by tests and callers that
// don't need project-specific lexer behavior: extended escape sequences on,
// no extended-operator bits set, legacy octal numbers off.
type DefaultOptions struct{}

func (DefaultOptions) ExtendedEscapeSequences() bool { return true }
func (DefaultOptions) ExtendedOperators() int        { return 0 }
func (DefaultOptions) Octal() bool                   { return false }
