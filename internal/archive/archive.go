// Package archive reads and writes the .oar runtime-function archive format
// spec.md §4.6 describes: a header, a per-function record array, a
// NUL-terminated name pool, and concatenated code blobs.
package archive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"
)

var magic = [4]byte{0x03, 'o', 'a', 'r'}

const headerSize = 16  // magic(4) + major(1) + minor(1) + pad(2) + count(4) + names(4)
const recordSize = 12  // name_offset(4) + code_offset(4) + code_size(4)

type function struct {
	Name string
	Code []byte
}

// Archive is an in-memory view of a loaded or under-construction .oar file:
// a name-indexed map of code blobs plus a hash index for fast lookup on
// large runtime archives (spec.md §4.6's "load ... copies each blob and its
// name into an in-memory map").
type Archive struct {
	mu        sync.RWMutex
	functions map[string]function
	hash      map[uint64]string // xxhash(name) -> name, narrows lookups before the map hit
}

func newArchive() *Archive {
	return &Archive{
		functions: make(map[string]function),
		hash:      make(map[uint64]string),
	}
}

// New returns an empty, in-memory archive, for callers building one
// programmatically instead of loading it from disk (fixtures, `archive
// build` before its first Save/WriteFile).
func New() *Archive {
	return newArchive()
}

// Add inserts or replaces name's code blob.
func (a *Archive) Add(name string, code []byte) {
	a.add(name, code)
}

// Function returns the code blob for name, if present.
func (a *Archive) Function(name string) ([]byte, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if _, ok := a.hash[xxhash.Sum64String(name)]; !ok {
		return nil, false
	}
	f, ok := a.functions[name]
	if !ok {
		return nil, false
	}
	return f.Code, true
}

// Names returns every function name, sorted.
func (a *Archive) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.functions))
	for n := range a.functions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (a *Archive) add(name string, code []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.functions[name] = function{Name: name, Code: code}
	a.hash[xxhash.Sum64String(name)] = name
}

// loadGroup collapses concurrent loads of the same archive path into one
// disk read (spec.md §4.4 "re-entering should reuse the cached archive").
var loadGroup singleflight.Group

// Load reads and validates an .oar file from disk.
func Load(path string) (*Archive, error) {
	v, err, _ := loadGroup.Do(path, func() (interface{}, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return Parse(data)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Archive), nil
}

// Parse decodes an .oar image already held in memory.
func Parse(data []byte) (*Archive, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("archive: truncated header (%d bytes)", len(data))
	}
	if !bytes.Equal(data[0:4], magic[:]) {
		return nil, fmt.Errorf("archive: bad magic %x", data[0:4])
	}
	count := binary.LittleEndian.Uint32(data[8:12])
	namesSize := binary.LittleEndian.Uint32(data[12:16])

	recordsEnd := headerSize + int(count)*recordSize
	if len(data) < recordsEnd {
		return nil, fmt.Errorf("archive: truncated function records")
	}
	namePoolStart := recordsEnd
	namePoolEnd := namePoolStart + int(namesSize)
	if len(data) < namePoolEnd {
		return nil, fmt.Errorf("archive: truncated name pool")
	}

	a := newArchive()
	for i := 0; i < int(count); i++ {
		rec := data[headerSize+i*recordSize:]
		nameOff := binary.LittleEndian.Uint32(rec[0:4])
		codeOff := binary.LittleEndian.Uint32(rec[4:8])
		codeSize := binary.LittleEndian.Uint32(rec[8:12])

		name := cString(data[nameOff:])
		if int(codeOff+codeSize) > len(data) {
			return nil, fmt.Errorf("archive: function %q code range out of bounds", name)
		}
		code := append([]byte(nil), data[codeOff:codeOff+codeSize]...)
		a.add(name, code)
	}
	return a, nil
}

func cString(b []byte) string {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return string(b)
	}
	return string(b[:i])
}

// Save serializes the archive to the .oar layout: header, records, name
// pool, code blobs, in that order (spec.md §4.6 "save").
func (a *Archive) Save() []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, 0, len(a.functions))
	for n := range a.functions {
		names = append(names, n)
	}
	sort.Strings(names)

	var namePool bytes.Buffer
	nameOffsets := make(map[string]uint32, len(names))
	for _, n := range names {
		nameOffsets[n] = uint32(namePool.Len())
		namePool.WriteString(n)
		namePool.WriteByte(0)
	}

	recordsStart := headerSize
	namePoolStart := recordsStart + len(names)*recordSize
	codeStart := namePoolStart + namePool.Len()

	var buf bytes.Buffer
	buf.Write(magic[:])
	buf.WriteByte(1) // major
	buf.WriteByte(0) // minor
	binary.Write(&buf, binary.LittleEndian, uint16(0))              // pad
	binary.Write(&buf, binary.LittleEndian, uint32(len(names)))     // count
	binary.Write(&buf, binary.LittleEndian, uint32(namePool.Len())) // names size

	codeOff := codeStart
	for _, n := range names {
		f := a.functions[n]
		binary.Write(&buf, binary.LittleEndian, uint32(namePoolStart)+nameOffsets[n])
		binary.Write(&buf, binary.LittleEndian, uint32(codeOff))
		binary.Write(&buf, binary.LittleEndian, uint32(len(f.Code)))
		codeOff += len(f.Code)
	}

	buf.Write(namePool.Bytes())
	for _, n := range names {
		buf.Write(a.functions[n].Code)
	}

	return buf.Bytes()
}

// WriteFile serializes and writes the archive to path.
func (a *Archive) WriteFile(path string) error {
	return os.WriteFile(path, a.Save(), 0o644)
}

// Create resolves patterns (brace expansion + tilde, doublestar syntax) and
// imports each matching file as a function, deriving the function's name
// from the file's base name with a leading "rt_" stripped (spec.md §4.6
// "create(patterns)"). Unmatched or unreadable files are skipped, not
// fatal — matching the original's "ignored errors" glob semantics.
func Create(patterns []string) (*Archive, map[string][]string, error) {
	a := newArchive()
	contributors := make(map[string][]string)
	for _, pattern := range patterns {
		matches, err := AddFromPattern(a, pattern)
		if err != nil {
			return nil, nil, err
		}
		contributors[pattern] = matches
	}
	return a, contributors, nil
}

// AddFromPattern resolves one glob pattern and imports every match into a,
// returning the matched file paths (spec.md §4's supplemented "add_from_pattern
// per-pattern granularity", kept alongside bulk Create so callers can report
// which pattern contributed which function).
func AddFromPattern(a *Archive, pattern string) ([]string, error) {
	fsys := os.DirFS(".")
	rel := strings.TrimPrefix(expandTilde(pattern), "./")
	matches, err := doublestar.Glob(fsys, rel)
	if err != nil {
		return nil, nil
	}
	var added []string
	for _, m := range matches {
		code, err := os.ReadFile(m)
		if err != nil {
			continue
		}
		name := functionNameFor(m)
		a.add(name, code)
		added = append(added, m)
	}
	return added, nil
}

func functionNameFor(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return strings.TrimPrefix(base, "rt_")
}

func expandTilde(pattern string) string {
	if pattern == "~" || strings.HasPrefix(pattern, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return home + pattern[1:]
		}
	}
	return pattern
}
