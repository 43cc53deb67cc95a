package literal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmallestSize(t *testing.T) {
	tests := []struct {
		value    int64
		expected Size
	}{
		{0, Size1Bit},
		{1, Size1Bit},
		{-1, Size8Signed},
		{127, Size8Signed},
		{-128, Size8Signed},
		{255, Size8Unsigned},
		{256, Size16Signed},
		{32767, Size16Signed},
		{65535, Size16Unsigned},
		{70000, Size32Signed},
		{4294967295, Size32Unsigned},
		{1 << 40, Size64},
		{-(1 << 40), Size64},
	}

	for _, tc := range tests {
		assert.Equalf(t, tc.expected, NewInteger(tc.value).SmallestSize(), "value %d", tc.value)
	}
}

func TestFitsInt8(t *testing.T) {
	assert.True(t, NewInteger(127).FitsInt8())
	assert.True(t, NewInteger(-128).FitsInt8())
	assert.False(t, NewInteger(128).FitsInt8())
}

func TestFitsInt32(t *testing.T) {
	assert.True(t, NewInteger(2147483647).FitsInt32())
	assert.False(t, NewInteger(2147483648).FitsInt32())
}
