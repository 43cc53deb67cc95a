// Package diag is the single diagnostic sink shared by the lexer, node
// model, flattener, and build file. It implements spec.md §7's two-kind
// failure model: internal (programmer) errors panic immediately, user
// errors are reported through a process-wide callback and counted.
package diag

import (
	"fmt"
	"sync"

	"github.com/standardbeagle/asjs/internal/position"
)

// Severity ranks a diagnostic, from merely informational to fatal.
type Severity int

const (
	Trace Severity = iota
	Debug
	Info
	Warning
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Trace:
		return "trace"
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Code discriminates the kind of user-facing error, the way as2js's
// err_code_t does, so callers can pattern-match on it without parsing text.
type Code string

const (
	CodeUnterminatedString Code = "unterminated_string"
	CodeUnterminatedTemplate Code = "unterminated_template"
	CodeBadEscape          Code = "bad_escape"
	CodeBadNumber          Code = "bad_number"
	CodeUnexpectedLetter   Code = "unexpected_letter"
	CodeUnknownPunctuation Code = "unknown_punctuation"
	CodeUnknownIdentifier  Code = "unknown_identifier"
	CodeConflictingAttribute Code = "conflicting_attribute"
	CodeUnknownRuntimeFunction Code = "unknown_runtime_function"
	CodeUnreadableFile     Code = "unreadable_file"
	CodeExtendedFeatureDisabled Code = "extended_feature_disabled"
	CodeInvalidImage       Code = "invalid_image"
)

// Diagnostic is one reported event. Position is optional: diagnostics that
// do not originate from source text carry a zero Position.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Position position.Position
	HasPos   bool
}

func (d Diagnostic) String() string {
	if d.HasPos {
		return fmt.Sprintf("%s: %s: %s [%s]", d.Position.String(), d.Severity, d.Message, d.Code)
	}
	return fmt.Sprintf("%s: %s [%s]", d.Severity, d.Message, d.Code)
}

// Callback receives every diagnostic reported through a Sink at or above its
// minimum level.
type Callback func(Diagnostic)

// Sink is the process-wide message sink: a single registered callback plus
// monotonic warning/error counters, matching spec.md §5's "Message, warning,
// and error counters are process-wide; they are not reset across
// compilations." The zero value is usable; Reset clears counters between
// compiles for callers (tests, the CLI) that want per-compile counts.
type Sink struct {
	mu           sync.Mutex
	callback     Callback
	minimum      Severity
	warningCount int
	errorCount   int
}

// NewSink returns a Sink with the given minimum severity and callback.
// Passing a nil callback discards every diagnostic but still counts them.
func NewSink(minimum Severity, cb Callback) *Sink {
	return &Sink{minimum: minimum, callback: cb}
}

// SetCallback replaces the registered callback.
func (s *Sink) SetCallback(cb Callback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callback = cb
}

// SetMinimumLevel changes the minimum severity forwarded to the callback.
func (s *Sink) SetMinimumLevel(level Severity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minimum = level
}

// Report records a diagnostic, bumping the warning/error counters as
// appropriate, and invokes the callback if the severity clears the minimum.
func (s *Sink) Report(d Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch d.Severity {
	case Warning:
		s.warningCount++
	case Error, Fatal:
		s.errorCount++
	}

	if d.Severity < s.minimum {
		return
	}
	if s.callback != nil {
		s.callback(d)
	}
}

// Reportf is a convenience wrapper building a positionless Diagnostic.
func (s *Sink) Reportf(severity Severity, code Code, format string, args ...any) {
	s.Report(Diagnostic{Severity: severity, Code: code, Message: fmt.Sprintf(format, args...)})
}

// ReportAt is a convenience wrapper attaching a source Position.
func (s *Sink) ReportAt(pos position.Position, severity Severity, code Code, format string, args ...any) {
	s.Report(Diagnostic{
		Severity: severity,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Position: pos,
		HasPos:   true,
	})
}

// ErrorCount returns the number of Error/Fatal diagnostics reported so far.
func (s *Sink) ErrorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errorCount
}

// WarningCount returns the number of Warning diagnostics reported so far.
func (s *Sink) WarningCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warningCount
}

// HasErrors reports whether any Error/Fatal diagnostic has been reported.
func (s *Sink) HasErrors() bool {
	return s.ErrorCount() > 0
}

// Reset zeroes both counters. Intended for callers that run many
// independent compiles in one process (e.g. the test suite) and want
// per-compile counts; the production CLI driver never calls it, preserving
// the "not reset across compilations" contract for a single run.
func (s *Sink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warningCount = 0
	s.errorCount = 0
}

// Default is the process-wide sink used when no Sink is threaded explicitly,
// mirroring the single global callback the original as2js message system
// exposes to callers that never set up their own context.
var Default = NewSink(Info, nil)
