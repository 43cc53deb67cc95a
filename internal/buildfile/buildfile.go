// Package buildfile accumulates one compilation's emission state (variables,
// constants, labels, runtime function copies, relocations, text bytes) and
// lays it out into the bit-exact binary image spec.md §6 describes
// (spec.md §4.4 "Build file").
package buildfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/standardbeagle/asjs/internal/archive"
	"github.com/standardbeagle/asjs/internal/diag"
	"github.com/standardbeagle/asjs/internal/ir"
)

// RelocationKind distinguishes what a relocation's target offset resolves
// against (spec.md §4.4 "Relocation kinds").
type RelocationKind int

const (
	Variable32 RelocationKind = iota
	RT32
	Label32
)

// Relocation is a recorded fixup: a 32-bit RIP-relative displacement to
// patch into the text once every section's final offset is known. Position
// and RIPAnchor are both .text-relative (the emitter never knows the file's
// final layout while it walks operations); Save adds the text section's
// fixed file offset to both before computing the displacement.
type Relocation struct {
	Name      string
	Kind      RelocationKind
	Position  int // byte offset within .text to patch
	RIPAnchor int // .text-relative offset of the instruction immediately following the operand
}

type variable struct {
	Name string
	Type ir.VariableType
	// DataSize and inline payload are filled as constants/externs are added;
	// zero-valued for now since SPEC_FULL's scope ends at "variable exists
	// with a type and a name", not full default-value constant folding.
	DataSize int32
	Data     [8]byte
}

type tempSlot struct {
	Name   string
	Type   ir.VariableType
	Offset int32 // relative to rbp, negative
}

type label struct {
	Name   string
	Offset int
}

// BuildFile is spec.md's accumulator: one instance per compiled program.
type BuildFile struct {
	sink *diag.Sink

	externVars   []variable
	privateVars  []variable
	temp1Byte    []tempSlot
	temp8Byte    []tempSlot

	numberPool []float64
	numberName map[string]int // "@<bits>" -> index into numberPool
	stringPool []string
	stringName map[string]int // "@strN" -> index into stringPool

	labels []label

	text []byte

	rtFunctions   []string // names copied from the runtime archive, in add order
	rtCode        map[string][]byte
	rtArchivePath string
	rtArchive     *archive.Archive

	relocations []Relocation
}

// New returns an empty BuildFile reporting user errors (missing runtime
// function, missing archive) through sink.
func New(sink *diag.Sink) *BuildFile {
	return &BuildFile{
		sink:       sink,
		numberName: make(map[string]int),
		stringName: make(map[string]int),
		rtCode:     make(map[string][]byte),
	}
}

// AddExternVariable records an extern (host-visible) variable, kept sorted
// by name since the binary_variable table is searched with binary search
// (spec.md §4.7 "binary-searches the sorted variable table").
func (b *BuildFile) AddExternVariable(name string, t ir.VariableType) {
	b.externVars = insertSorted(b.externVars, variable{Name: name, Type: t, DataSize: int32(t.Size())})
}

// AddPrivateVariable records a non-extern, non-temporary declared variable.
func (b *BuildFile) AddPrivateVariable(name string, t ir.VariableType) {
	b.privateVars = append(b.privateVars, variable{Name: name, Type: t, DataSize: int32(t.Size())})
}

// AddTemporaryVariable assigns a stack slot: 1-byte booleans occupy the
// byte region at offset -(index+1), everything else occupies the 8-byte
// region at offset -8*(index+1), both relative to rbp (spec.md §4.4).
func (b *BuildFile) AddTemporaryVariable(name string, t ir.VariableType) int32 {
	if t == ir.TypeBoolean {
		off := int32(-(len(b.temp1Byte) + 1))
		b.temp1Byte = append(b.temp1Byte, tempSlot{Name: name, Type: t, Offset: off})
		return off
	}
	off := int32(-8 * (len(b.temp8Byte) + 1))
	b.temp8Byte = append(b.temp8Byte, tempSlot{Name: name, Type: t, Offset: off})
	return off
}

// TemporaryOffset returns the previously assigned stack offset for name, and
// whether it was found.
func (b *BuildFile) TemporaryOffset(name string) (int32, bool) {
	for _, s := range b.temp1Byte {
		if s.Name == name {
			return s.Offset, true
		}
	}
	for _, s := range b.temp8Byte {
		if s.Name == name {
			return s.Offset, true
		}
	}
	return 0, false
}

// AddNumberConstant pools a double constant, deduplicating by generated name
// (the flattener's ir.Program already deduplicates by bit pattern; this is
// the build file's own pool that the emitter's relocations point into).
func (b *BuildFile) AddNumberConstant(generatedName string, v float64) int {
	if idx, ok := b.numberName[generatedName]; ok {
		return idx
	}
	idx := len(b.numberPool)
	b.numberPool = append(b.numberPool, v)
	b.numberName[generatedName] = idx
	return idx
}

// AddStringConstant pools a string constant, deduplicating by generated name.
func (b *BuildFile) AddStringConstant(generatedName string, v string) int {
	if idx, ok := b.stringName[generatedName]; ok {
		return idx
	}
	idx := len(b.stringPool)
	b.stringPool = append(b.stringPool, v)
	b.stringName[generatedName] = idx
	return idx
}

// AddLabel records name at the current text offset.
func (b *BuildFile) AddLabel(name string) {
	b.labels = append(b.labels, label{Name: name, Offset: len(b.text)})
}

// LabelOffset returns the recorded offset for a label, if any.
func (b *BuildFile) LabelOffset(name string) (int, bool) {
	for _, l := range b.labels {
		if l.Name == name {
			return l.Offset, true
		}
	}
	return 0, false
}

// SetRuntimeArchive points add_rt_function at path/rt.oar, lazily opened on
// first use (spec.md §4.4 "lazily opens the runtime archive").
func (b *BuildFile) SetRuntimeArchive(path string) {
	b.rtArchivePath = path
	b.rtArchive = nil
}

// AddRTFunction copies name's code from the runtime archive into the image,
// failing the compile (a reported Error, not a panic — spec.md §7 classifies
// a missing archive/function as a user error) if either is missing.
func (b *BuildFile) AddRTFunction(name string) bool {
	if _, ok := b.rtCode[name]; ok {
		return true
	}
	if b.rtArchive == nil {
		if b.rtArchivePath == "" {
			b.reportf(diag.Error, diag.CodeUnreadableFile, "no runtime archive path configured, needed for function %q", name)
			return false
		}
		rtFile := filepath.Join(b.rtArchivePath, "rt.oar")
		a, err := archive.Load(rtFile)
		if err != nil {
			b.reportf(diag.Error, diag.CodeUnreadableFile, "cannot open runtime archive %q: %v", rtFile, err)
			return false
		}
		b.rtArchive = a
	}
	code, ok := b.rtArchive.Function(name)
	if !ok {
		b.reportf(diag.Error, diag.CodeUnknownRuntimeFunction, "runtime archive %q has no function %q", b.rtArchivePath, name)
		return false
	}
	b.rtFunctions = append(b.rtFunctions, name)
	b.rtCode[name] = code
	return true
}

// AddText appends bytes to the .text section and returns the offset they
// were written at.
func (b *BuildFile) AddText(code []byte) int {
	off := len(b.text)
	b.text = append(b.text, code...)
	return off
}

// CurrentTextOffset returns the current length of .text.
func (b *BuildFile) CurrentTextOffset() int {
	return len(b.text)
}

// PatchText overwrites 4 bytes at off (used by relocation resolution).
func (b *BuildFile) PatchText(off int, v int32) {
	binary.LittleEndian.PutUint32(b.text[off:off+4], uint32(v))
}

// AddRelocation records a fixup to resolve at Save time.
func (b *BuildFile) AddRelocation(r Relocation) {
	b.relocations = append(b.relocations, r)
}

func (b *BuildFile) reportf(sev diag.Severity, code diag.Code, format string, args ...any) {
	if b.sink != nil {
		b.sink.Reportf(sev, code, format, args...)
	}
}

func insertSorted(vs []variable, v variable) []variable {
	i := sort.Search(len(vs), func(i int) bool { return vs[i].Name >= v.Name })
	if i < len(vs) && vs[i].Name == v.Name {
		return vs
	}
	vs = append(vs, variable{})
	copy(vs[i+1:], vs[i:])
	vs[i] = v
	return vs
}

const headerSize = 24
const binaryVariableSize = 24
const trailingMagic = "ENDB!"

var imageMagic = [4]byte{0xBA, 0xDC, 0x0D, 0xE1}

// layout is the result of computing every section's final file offset, in
// the fixed order spec.md §4.4 mandates: header, text, runtime functions,
// variables, numbers, string descriptors, booleans, string pool, trailing
// magic, padded to 4 bytes.
type layout struct {
	textOffset      int
	rtOffset        int
	variablesOffset int
	numbersOffset   int
	stringDescOffset int
	booleansOffset  int
	stringPoolOffset int
	fileSize        int
}

func (b *BuildFile) computeLayout() layout {
	var l layout
	l.textOffset = headerSize
	off := l.textOffset + len(b.text)

	l.rtOffset = off
	for _, name := range b.rtFunctions {
		off += len(b.rtCode[name])
	}

	l.variablesOffset = off
	off += len(b.externVars) * binaryVariableSize

	l.numbersOffset = off
	off += len(b.numberPool) * 8

	l.stringDescOffset = off
	off += len(b.stringPool) * binaryVariableSize

	l.booleansOffset = off
	// private boolean variables occupy 1 byte each.
	for _, v := range b.privateVars {
		if v.Type == ir.TypeBoolean {
			off++
		}
	}

	l.stringPoolOffset = off
	for _, s := range b.stringPool {
		off += len(s) + 1
	}

	pad := (4 - (off+len(trailingMagic))%4) % 4
	off += pad + len(trailingMagic)
	l.fileSize = off
	return l
}

// Save resolves every relocation against the computed layout and writes the
// complete image: header, text, runtime functions, variables, numbers,
// string descriptors, booleans, string pool, trailing magic.
func (b *BuildFile) Save() ([]byte, error) {
	l := b.computeLayout()

	for _, r := range b.relocations {
		target, ok := b.resolveRelocation(r, l)
		if !ok {
			return nil, fmt.Errorf("buildfile: unresolved relocation for %q (%v)", r.Name, r.Kind)
		}
		disp := int32(target - (l.textOffset + r.RIPAnchor))
		b.PatchText(r.Position, disp)
	}

	var buf bytes.Buffer
	buf.Write(imageMagic[:])
	buf.WriteByte(1) // version_major
	buf.WriteByte(0) // version_minor
	binary.Write(&buf, binary.LittleEndian, uint16(len(b.externVars)))
	binary.Write(&buf, binary.LittleEndian, uint32(l.variablesOffset))
	binary.Write(&buf, binary.LittleEndian, uint32(l.textOffset))
	binary.Write(&buf, binary.LittleEndian, uint32(l.fileSize))
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // return_type: always 0; the entry point's result is read as an integer
	binary.Write(&buf, binary.LittleEndian, uint16(len(b.privateVars)))

	buf.Write(b.text)
	for _, name := range b.rtFunctions {
		buf.Write(b.rtCode[name])
	}

	writeVariable := func(name string, dataSize int32, t ir.VariableType) {
		binary.Write(&buf, binary.LittleEndian, uint16(t))
		binary.Write(&buf, binary.LittleEndian, uint16(0)) // flags
		binary.Write(&buf, binary.LittleEndian, uint16(0)) // pad
		binary.Write(&buf, binary.LittleEndian, uint16(len(name)))
		var nameField [4]byte
		if len(name) <= 4 {
			copy(nameField[:], name)
		}
		buf.Write(nameField[:])
		binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
		var dataField [8]byte
		buf.Write(dataField[:])
	}
	for _, v := range b.externVars {
		writeVariable(v.Name, v.DataSize, v.Type)
	}

	for _, v := range b.numberPool {
		binary.Write(&buf, binary.LittleEndian, v)
	}

	for i, s := range b.stringPool {
		writeVariable(fmt.Sprintf("@str%d", i), int32(len(s)), ir.TypeString)
	}

	for _, v := range b.privateVars {
		if v.Type == ir.TypeBoolean {
			buf.WriteByte(0)
		}
	}

	for _, s := range b.stringPool {
		buf.WriteString(s)
		buf.WriteByte(0)
	}

	for (buf.Len()+len(trailingMagic))%4 != 0 {
		buf.WriteByte(0)
	}
	buf.WriteString(trailingMagic)

	return buf.Bytes(), nil
}

func (b *BuildFile) resolveRelocation(r Relocation, l layout) (int, bool) {
	switch r.Kind {
	case Label32:
		off, ok := b.LabelOffset(r.Name)
		if !ok {
			return 0, false
		}
		return l.textOffset + off, true
	case RT32:
		off := l.rtOffset
		for _, name := range b.rtFunctions {
			if name == r.Name {
				return off, true
			}
			off += len(b.rtCode[name])
		}
		return 0, false
	case Variable32:
		// A Variable32 relocation targets the record's 8-byte inline data
		// field (offset 16 within the 24-byte record), since the emitted
		// mov reads/writes the value itself, not the surrounding record.
		off := l.variablesOffset
		for _, v := range b.externVars {
			if v.Name == r.Name {
				return off + 16, true
			}
			off += binaryVariableSize
		}
		return 0, false
	default:
		return 0, false
	}
}
