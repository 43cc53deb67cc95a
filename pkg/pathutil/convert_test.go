package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToRelative(t *testing.T) {
	assert.Equal(t, "src/a.oar", ToRelative("/home/user/project/src/a.oar", "/home/user/project"))
	assert.Equal(t, "/other/file.oar", ToRelative("/other/file.oar", "/home/user/project"))
	assert.Equal(t, "src/a.oar", ToRelative("src/a.oar", "/home/user/project"))
	assert.Equal(t, "", ToRelative("", "/home/user/project"))
}

func TestGlobRoot(t *testing.T) {
	assert.Equal(t, "rt/src", GlobRoot("rt/src/*.s"))
	assert.Equal(t, "rt", GlobRoot("rt/**/*.s"))
	assert.Equal(t, ".", GlobRoot("*.s"))
	assert.Equal(t, ".", GlobRoot("plain.s"))
}
