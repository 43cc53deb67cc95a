package literal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNaN(t *testing.T) {
	assert.True(t, NewFloat(math.NaN()).IsNaN())
	assert.False(t, NewFloat(1.0).IsNaN())
}

func TestIsInfinity(t *testing.T) {
	assert.True(t, NewFloat(math.Inf(1)).IsInfinity())
	assert.True(t, NewFloat(math.Inf(-1)).IsInfinity())
	assert.False(t, NewFloat(1.0).IsInfinity())
}

func TestClassify(t *testing.T) {
	assert.Equal(t, "NaN", NewFloat(math.NaN()).Classify())
	assert.Equal(t, "+Infinity", NewFloat(math.Inf(1)).Classify())
	assert.Equal(t, "-Infinity", NewFloat(math.Inf(-1)).Classify())
	assert.Equal(t, "-0", NewFloat(math.Copysign(0, -1)).Classify())
	assert.Equal(t, "+0", NewFloat(0).Classify())
	assert.Equal(t, "finite", NewFloat(3.14).Classify())
}

func TestNearlyEqual(t *testing.T) {
	a := NewFloat(1.0)
	b := NewFloat(1.0 + 1e-12)
	assert.True(t, a.NearlyEqual(b))

	c := NewFloat(2.0)
	assert.False(t, a.NearlyEqual(c))

	assert.False(t, NewFloat(math.NaN()).NearlyEqual(NewFloat(math.NaN())), "NaN never nearly-equals itself")
}

func TestCompareStrictUnorderedOnNaN(t *testing.T) {
	assert.Equal(t, Unordered, NewFloat(math.NaN()).CompareStrict(NewFloat(1)))
}

func TestCompareStrictOrdering(t *testing.T) {
	assert.Equal(t, Less, NewFloat(1).CompareStrict(NewFloat(2)))
	assert.Equal(t, Greater, NewFloat(2).CompareStrict(NewFloat(1)))
	assert.Equal(t, Equal, NewFloat(2).CompareStrict(NewFloat(2)))
}

func TestCompareSmartUsesNearlyEqual(t *testing.T) {
	assert.Equal(t, Equal, NewFloat(1.0).CompareSmart(NewFloat(1.0+1e-12)))
}

func TestBitPatternDistinguishesSignedZero(t *testing.T) {
	pos := NewFloat(0).BitPattern()
	neg := NewFloat(math.Copysign(0, -1)).BitPattern()
	assert.NotEqual(t, pos, neg)
}
