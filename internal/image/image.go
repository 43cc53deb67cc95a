// Package image implements C9, the binary image loader (spec.md §4.7
// "running_file"): it maps a build file's saved bytes into an anonymous,
// page-aligned region, protects it executable on first run, calls the
// entry point, and exposes named variables to the host.
package image

import (
	"encoding/binary"
	"fmt"
	"os"
	"sort"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/standardbeagle/asjs/internal/diag"
	"github.com/standardbeagle/asjs/internal/ir"
)

const (
	headerSize         = 24
	binaryVariableSize = 24
	trailingMagic      = "ENDB!"
)

var wantMagic = [4]byte{0xBA, 0xDC, 0x0D, 0xE1}

// header mirrors the bit-exact layout internal/buildfile.Save writes
// (spec.md §6 "Binary image header").
type header struct {
	VersionMajor          byte
	VersionMinor          byte
	VariableCount         uint16
	VariablesOffset       uint32
	Start                 uint32
	FileSize              uint32
	ReturnType            uint16
	PrivateVariableCount  uint16
}

// variableFlag bits, stored in a record's flags field.
const flagAllocated = 1 << 0

// Variable is a parsed view of one binary_variable record. Its value lives
// in the record's 8-byte data field inside the mapped image (inline values,
// data_size <= 8) or in alloc (a string value that didn't fit inline,
// flagAllocated set).
type Variable struct {
	Name      string
	Type      ir.VariableType
	recordOff int // file offset of the record's first byte
	alloc     []byte
}

// Image is one loaded, optionally running, binary image. It owns a single
// anonymous memory mapping for the lifetime between Load and Clean.
type Image struct {
	sink *diag.Sink

	buf     []byte // the mapped region, length rounded up to a page
	size    int    // actual image size within buf
	mapped  bool
	running bool

	hdr       header
	variables []*Variable
}

// Load reads path fully, then behaves like LoadBytes (spec.md §4.7 step 1-4:
// "read the fixed header; validate magic; allocate an anonymous region sized
// up to the next page boundary; read the full image into it").
func Load(path string, sink *diag.Sink) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if sink != nil {
			sink.Reportf(diag.Error, diag.CodeUnreadableFile, "cannot read image %q: %v", path, err)
		}
		return nil, err
	}
	return LoadBytes(data, sink)
}

// LoadBytes validates data's header and copies it into a fresh anonymous,
// page-aligned mapping.
func LoadBytes(data []byte, sink *diag.Sink) (*Image, error) {
	if len(data) < headerSize {
		return nil, reportInvalid(sink, "image shorter than header (%d bytes)", len(data))
	}
	if [4]byte(data[0:4]) != wantMagic {
		return nil, reportInvalid(sink, "bad magic %x", data[0:4])
	}
	h := header{
		VersionMajor:         data[4],
		VersionMinor:         data[5],
		VariableCount:        binary.LittleEndian.Uint16(data[6:8]),
		VariablesOffset:      binary.LittleEndian.Uint32(data[8:12]),
		Start:                binary.LittleEndian.Uint32(data[12:16]),
		FileSize:             binary.LittleEndian.Uint32(data[16:20]),
		ReturnType:           binary.LittleEndian.Uint16(data[20:22]),
		PrivateVariableCount: binary.LittleEndian.Uint16(data[22:24]),
	}
	if int(h.FileSize) != len(data) {
		return nil, reportInvalid(sink, "header file_size %d does not match %d bytes read", h.FileSize, len(data))
	}
	if len(data) < len(trailingMagic) || string(data[len(data)-len(trailingMagic):]) != trailingMagic {
		return nil, reportInvalid(sink, "missing trailing %q marker", trailingMagic)
	}

	pageSize := os.Getpagesize()
	mapLen := roundUpToPage(len(data), pageSize)
	buf, err := unix.Mmap(-1, 0, mapLen, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		if sink != nil {
			sink.Reportf(diag.Error, diag.CodeInvalidImage, "mmap anonymous region: %v", err)
		}
		return nil, err
	}
	copy(buf, data)

	img := &Image{sink: sink, buf: buf, size: len(data), mapped: true, hdr: h}
	img.parseVariables()
	return img, nil
}

func roundUpToPage(n, page int) int {
	if n%page == 0 {
		return n
	}
	return (n/page + 1) * page
}

func reportInvalid(sink *diag.Sink, format string, args ...any) error {
	err := fmt.Errorf("image: "+format, args...)
	if sink != nil {
		sink.Reportf(diag.Error, diag.CodeInvalidImage, format, args...)
	}
	return err
}

// parseVariables reads every binary_variable record starting at
// VariablesOffset (spec.md §4.7 "sorted variable table"); the records are
// already sorted by name because internal/buildfile inserts extern
// variables in sorted order.
func (img *Image) parseVariables() {
	off := int(img.hdr.VariablesOffset)
	for i := 0; i < int(img.hdr.VariableCount); i++ {
		recOff := off + i*binaryVariableSize
		rec := img.buf[recOff : recOff+binaryVariableSize]

		typ := ir.VariableType(binary.LittleEndian.Uint16(rec[0:2]))
		nameSize := binary.LittleEndian.Uint16(rec[6:8])

		var name string
		if nameSize <= 8 {
			name = cString(rec[8 : 8+min16(nameSize, 4)])
		} else {
			nameOff := binary.LittleEndian.Uint32(rec[8:12])
			name = cString(img.buf[nameOff : nameOff+uint32(nameSize)])
		}

		img.variables = append(img.variables, &Variable{Name: name, Type: typ, recordOff: recOff})
	}
}

func min16(a, b uint16) uint16 {
	if a < b {
		return a
	}
	return b
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// Version returns the image's major.minor (spec.md §4.7 "get_version").
func (img *Image) Version() (major, minor byte) {
	return img.hdr.VersionMajor, img.hdr.VersionMinor
}

// VariableCount enumerates the extern variable table (spec.md §4.7
// "variable_size()").
func (img *Image) VariableCount() int {
	return len(img.variables)
}

// VariableAt returns the i'th variable in table order (spec.md §4.7
// "get_variable(i, out_name)").
func (img *Image) VariableAt(i int) *Variable {
	if i < 0 || i >= len(img.variables) {
		return nil
	}
	return img.variables[i]
}

// FindVariable binary-searches the sorted variable table by name (spec.md
// §4.7 "find_variable(name) binary-searches the sorted variable table").
func (img *Image) FindVariable(name string) *Variable {
	i := sort.Search(len(img.variables), func(i int) bool { return img.variables[i].Name >= name })
	if i < len(img.variables) && img.variables[i].Name == name {
		return img.variables[i]
	}
	return nil
}

func (img *Image) dataField(v *Variable) []byte {
	return img.buf[v.recordOff+16 : v.recordOff+24]
}

// Bool reads v's inline boolean payload, reporting an internal error if v's
// stored kind doesn't match (spec.md §4.7 "typed getters/setters ... verify
// the stored kind").
func (img *Image) Bool(v *Variable) bool {
	img.checkType(v, ir.TypeBoolean)
	return img.dataField(v)[0] != 0
}

// SetBool writes v's inline boolean payload.
func (img *Image) SetBool(v *Variable, value bool) {
	img.checkType(v, ir.TypeBoolean)
	b := byte(0)
	if value {
		b = 1
	}
	img.dataField(v)[0] = b
}

// Int64 reads v's inline 64-bit integer payload.
func (img *Image) Int64(v *Variable) int64 {
	img.checkType(v, ir.TypeInteger)
	return int64(binary.LittleEndian.Uint64(img.dataField(v)))
}

// SetInt64 writes v's inline 64-bit integer payload.
func (img *Image) SetInt64(v *Variable, value int64) {
	img.checkType(v, ir.TypeInteger)
	binary.LittleEndian.PutUint64(img.dataField(v), uint64(value))
}

// Float64 reads v's inline double payload.
func (img *Image) Float64(v *Variable) float64 {
	img.checkType(v, ir.TypeFloatingPoint)
	bits := binary.LittleEndian.Uint64(img.dataField(v))
	return *(*float64)(unsafe.Pointer(&bits))
}

// SetFloat64 writes v's inline double payload.
func (img *Image) SetFloat64(v *Variable, value float64) {
	img.checkType(v, ir.TypeFloatingPoint)
	bits := *(*uint64)(unsafe.Pointer(&value))
	binary.LittleEndian.PutUint64(img.dataField(v), bits)
}

// String reads v's string payload: inline (<= 8 bytes, data_size small
// enough to fit the record's data field) or externally allocated (spec.md
// §4.7 "for strings either inline ... or allocate externally and set an
// Allocated flag").
func (img *Image) String(v *Variable) string {
	img.checkType(v, ir.TypeString)
	rec := img.buf[v.recordOff : v.recordOff+binaryVariableSize]
	size := binary.LittleEndian.Uint32(rec[12:16])
	flags := binary.LittleEndian.Uint16(rec[2:4])
	if flags&flagAllocated != 0 {
		if v.alloc != nil {
			return string(v.alloc)
		}
		return ""
	}
	return string(img.dataField(v)[:size])
}

// SetString writes v's string payload: inline if it fits in 8 bytes, else
// allocates externally and marks the record Allocated so Clean can free it.
func (img *Image) SetString(v *Variable, value string) {
	img.checkType(v, ir.TypeString)
	rec := img.buf[v.recordOff : v.recordOff+binaryVariableSize]
	binary.LittleEndian.PutUint32(rec[12:16], uint32(len(value)))

	if len(value) <= 8 {
		binary.LittleEndian.PutUint16(rec[2:4], 0)
		data := img.dataField(v)
		clear(data)
		copy(data, value)
		v.alloc = nil
		return
	}

	binary.LittleEndian.PutUint16(rec[2:4], flagAllocated)
	v.alloc = append([]byte(nil), value...)
}

func (img *Image) checkType(v *Variable, want ir.VariableType) {
	if v.Type != want {
		diag.Bug("image", "variable %q has type %s, not %s", v.Name, v.Type, want)
	}
}

// Run calls mprotect(PROT_READ|PROT_WRITE|PROT_EXEC) on first invocation
// (spec.md §4.7 step 5), then calls the entry point as a function returning
// an integer. Subsequent calls reuse the already-executable mapping.
func (img *Image) Run() (int64, error) {
	if !img.mapped {
		return 0, fmt.Errorf("image: Run called after Clean")
	}
	if !img.running {
		if err := unix.Mprotect(img.buf, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC); err != nil {
			if img.sink != nil {
				img.sink.Reportf(diag.Error, diag.CodeInvalidImage, "mprotect executable: %v", err)
			}
			return 0, err
		}
		img.running = true
	}
	entry := entryPoint(unsafe.Pointer(&img.buf[img.hdr.Start]))
	return entry(), nil
}

// entryFunc matches the generated prologue/epilogue's calling convention:
// no arguments, a 64-bit integer return in rax (spec.md §4.5 "ret").
type entryFunc func() int64

// entryPoint reinterprets a raw code pointer as a Go function value, the way
// a hand-rolled JIT casts its emitted buffer (mirrors the pattern scm-jit
// uses to turn emitted amd64 bytes into a callable Go closure, except there
// the buffer is heap-allocated and here it is the mmap'd image itself). A Go
// func value points at a word holding the code address, so the code pointer
// is boxed once before the cast.
func entryPoint(p unsafe.Pointer) entryFunc {
	code := &p
	return *(*entryFunc)(unsafe.Pointer(&code))
}

// Clean frees every variable whose Allocated flag is set, then unmaps the
// image buffer; idempotent (spec.md §4.7 "Cleanup").
func (img *Image) Clean() error {
	if !img.mapped {
		return nil
	}
	for _, v := range img.variables {
		v.alloc = nil
	}
	err := unix.Munmap(img.buf)
	img.buf = nil
	img.mapped = false
	img.running = false
	return err
}
