package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportCountsErrorsAndWarnings(t *testing.T) {
	var received []Diagnostic
	s := NewSink(Trace, func(d Diagnostic) { received = append(received, d) })

	s.Reportf(Warning, CodeBadNumber, "bad number %q", "12x")
	s.Reportf(Error, CodeUnknownIdentifier, "unknown identifier %q", "foo")

	assert.Equal(t, 1, s.WarningCount())
	assert.Equal(t, 1, s.ErrorCount())
	assert.True(t, s.HasErrors())
	require.Len(t, received, 2)
}

func TestMinimumLevelFiltersCallbackNotCounters(t *testing.T) {
	var received []Diagnostic
	s := NewSink(Error, func(d Diagnostic) { received = append(received, d) })

	s.Reportf(Warning, CodeBadNumber, "ignored by callback")
	assert.Len(t, received, 0)
	assert.Equal(t, 1, s.WarningCount(), "counters are not filtered by minimum level")
}

func TestResetClearsCounters(t *testing.T) {
	s := NewSink(Trace, nil)
	s.Reportf(Error, CodeBadNumber, "x")
	require.True(t, s.HasErrors())

	s.Reset()
	assert.False(t, s.HasErrors())
	assert.Equal(t, 0, s.WarningCount())
}

func TestBugPanicsWithInternalError(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		ierr, ok := r.(*InternalError)
		require.True(t, ok)
		assert.Contains(t, ierr.Error(), "Node.SetFlag")
	}()
	Bug("Node.SetFlag", "flag %d invalid on kind %d", 3, 7)
}
