package literal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidString(t *testing.T) {
	assert.True(t, ValidString("hello"))
	assert.True(t, ValidString(""))
	assert.False(t, ValidCharacter(0xD800), "lone surrogate is invalid")
	assert.False(t, ValidCharacter(-1))
}

func TestIsInteger(t *testing.T) {
	assert.True(t, IsInteger("123", false))
	assert.True(t, IsInteger("-123", false))
	assert.True(t, IsInteger("+123", false))
	assert.True(t, IsInteger("0x1F", false))
	assert.True(t, IsInteger("-0x1F", false))
	assert.False(t, IsInteger("-0x1F", true), "hex forbids sign in strict mode")
	assert.False(t, IsInteger("0x", false), "bare 0x is not a valid number")
	assert.False(t, IsInteger("", false))
	assert.False(t, IsInteger("12.5", false))
	assert.True(t, IsInteger("012", false), "no octal support in strings: a leading zero is plain decimal")
}

func TestIsFloatingPoint(t *testing.T) {
	assert.True(t, IsFloatingPoint(""), "empty string represents 0.0")
	assert.True(t, IsFloatingPoint("12.5"))
	assert.True(t, IsFloatingPoint(".5"))
	assert.True(t, IsFloatingPoint("12."))
	assert.True(t, IsFloatingPoint("12.5e2"))
	assert.True(t, IsFloatingPoint("-12.5e+2"))
	assert.True(t, IsFloatingPoint("123"), "an integer is also a valid float")
	assert.False(t, IsFloatingPoint("."), "period alone needs a digit on one side")
	assert.False(t, IsFloatingPoint("1e"), "exponent requires at least one digit")
	assert.False(t, IsFloatingPoint("0x1F"), "hex is not a float")
}

func TestIsNumber(t *testing.T) {
	assert.True(t, IsNumber("0x1F"))
	assert.True(t, IsNumber("12.5"))
	assert.False(t, IsNumber("abc"))
}

func TestToInteger(t *testing.T) {
	assert.Equal(t, int64(0), ToInteger(""))
	assert.Equal(t, int64(123), ToInteger("123"))
	assert.Equal(t, int64(-123), ToInteger("-123"))
	assert.Equal(t, int64(31), ToInteger("0x1F"))
	assert.Equal(t, int64(-31), ToInteger("-0x1F"))
}

func TestToFloatingPoint(t *testing.T) {
	assert.Equal(t, 0.0, ToFloatingPoint(""))
	assert.Equal(t, 12.5, ToFloatingPoint("12.5"))
	assert.True(t, math.IsNaN(ToFloatingPoint("abc")))
}

func TestIsTrue(t *testing.T) {
	assert.False(t, IsTrue(""))
	assert.True(t, IsTrue("anything"))
	assert.True(t, IsTrue("0"), "string truthiness only cares about emptiness")
}

func TestSimplify(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"  12.5e2 abc ", "12.5e2"},
		{"   ", "0"},
		{"", "0"},
		{"  hello   world  ", "hello world"},
		{"-5 remainder", "-5"},
		{"+5", "+5"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.out, Simplify(tc.in), "input %q", tc.in)
	}
}
