package buildfile

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/asjs/internal/ir"
)

func TestAddExternVariableKeepsSortedOrder(t *testing.T) {
	b := New(nil)
	b.AddExternVariable("zebra", ir.TypeInteger)
	b.AddExternVariable("apple", ir.TypeBoolean)
	b.AddExternVariable("mango", ir.TypeFloatingPoint)

	names := make([]string, len(b.externVars))
	for i, v := range b.externVars {
		names[i] = v.Name
	}
	assert.Equal(t, []string{"apple", "mango", "zebra"}, names)
}

func TestAddTemporaryVariableSlotArithmetic(t *testing.T) {
	b := New(nil)
	offBool := b.AddTemporaryVariable("%t1", ir.TypeBoolean)
	offInt := b.AddTemporaryVariable("%t2", ir.TypeInteger)
	offBool2 := b.AddTemporaryVariable("%t3", ir.TypeBoolean)

	assert.Equal(t, int32(-1), offBool)
	assert.Equal(t, int32(-8), offInt)
	assert.Equal(t, int32(-2), offBool2)

	got, ok := b.TemporaryOffset("%t2")
	require.True(t, ok)
	assert.Equal(t, int32(-8), got)
}

func TestSaveProducesValidHeader(t *testing.T) {
	b := New(nil)
	b.AddExternVariable("result", ir.TypeInteger)
	b.AddText([]byte{0x55, 0x48, 0x89, 0xe5, 0xc3}) // push rbp; mov rbp,rsp; ret

	data, err := b.Save()
	require.NoError(t, err)

	assert.Equal(t, imageMagic[:], data[0:4])
	assert.Equal(t, byte(1), data[4]) // version_major
	assert.Equal(t, byte(0), data[5]) // version_minor
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[6:8]))

	fileSize := binary.LittleEndian.Uint32(data[16:20])
	assert.Equal(t, uint32(len(data)), fileSize)

	assert.Equal(t, trailingMagic, string(data[len(data)-len(trailingMagic):]))
}

// A backward jump: the label sits at text offset 4, the jmp's rel32
// operand is patched at text offset 5, and the instruction following the
// operand starts at text offset 9. The displacement (target - anchor) is
// computed in a common file-offset space but both sit in .text, so the
// section's own file offset cancels out, leaving the text-relative
// difference 4 - 9 = -5 regardless of where .text ultimately lands.
func TestLabelRelocationResolvesToTextOffset(t *testing.T) {
	b := New(nil)
	b.AddText([]byte{0x90, 0x90, 0x90, 0x90}) // 4 nops before the label
	b.AddLabel("loop")
	b.AddText([]byte{0xe9, 0x00, 0x00, 0x00, 0x00}) // jmp rel32 placeholder
	b.AddRelocation(Relocation{Name: "loop", Kind: Label32, Position: 5, RIPAnchor: 9})

	data, err := b.Save()
	require.NoError(t, err)

	patched := int32(binary.LittleEndian.Uint32(data[headerSize+5 : headerSize+9]))
	assert.Equal(t, int32(-5), patched)
}
