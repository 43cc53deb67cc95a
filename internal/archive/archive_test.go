package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveParseRoundTrip(t *testing.T) {
	a := newArchive()
	a.add("power", []byte{0x48, 0x0f, 0xaf, 0xc1})
	a.add("strings_concat", []byte{0x90, 0x90})

	data := a.Save()
	assert.Equal(t, magic[:], data[0:4])

	loaded, err := Parse(data)
	require.NoError(t, err)

	code, ok := loaded.Function("power")
	require.True(t, ok)
	assert.Equal(t, []byte{0x48, 0x0f, 0xaf, 0xc1}, code)

	code, ok = loaded.Function("strings_concat")
	require.True(t, ok)
	assert.Equal(t, []byte{0x90, 0x90}, code)

	assert.Equal(t, []string{"power", "strings_concat"}, loaded.Names())
}

func TestParseRejectsBadMagic(t *testing.T) {
	_, err := Parse([]byte("not an archive at all"))
	require.Error(t, err)
}

func TestFunctionNameForStripsRTPrefix(t *testing.T) {
	assert.Equal(t, "power", functionNameFor("rt/rt_power.o"))
	assert.Equal(t, "strings_concat", functionNameFor("rt_strings_concat.o"))
	assert.Equal(t, "noprefix", functionNameFor("noprefix.o"))
}
