// Package emitter lowers a flattened ir.Program into x86-64 machine code,
// using internal/buildfile as the section accumulator and relocation table
// (spec.md §4.5 "Native code emitter").
package emitter

import (
	"github.com/standardbeagle/asjs/internal/buildfile"
	"github.com/standardbeagle/asjs/internal/diag"
	"github.com/standardbeagle/asjs/internal/ir"
	"github.com/standardbeagle/asjs/internal/literal"
)

// Emitter walks one ir.Program's operation list and emits its prologue,
// body, and epilogue into a buildfile.BuildFile.
type Emitter struct {
	prog *ir.Program
	bf   *buildfile.BuildFile
	sink *diag.Sink

	tempType map[string]ir.VariableType
	rtPath   string
}

// New returns an Emitter targeting bf. rtPath is the directory containing
// rt.oar, passed to buildfile.SetRuntimeArchive right away; the archive
// itself is opened on the first runtime-function reference (spec.md §4.4
// "lazily opens the runtime archive at path/rt.oar").
func New(prog *ir.Program, bf *buildfile.BuildFile, rtPath string, sink *diag.Sink) *Emitter {
	bf.SetRuntimeArchive(rtPath)
	return &Emitter{prog: prog, bf: bf, sink: sink, tempType: make(map[string]ir.VariableType), rtPath: rtPath}
}

// Output runs the flattener's result through the emitter and saves the
// complete image, per spec.md §4.5 "output(root) runs the flattener, then
// emits the prologue ... then calls build_file.save".
func Output(prog *ir.Program, rtPath string, sink *diag.Sink) ([]byte, error) {
	bf := buildfile.New(sink)
	e := New(prog, bf, rtPath, sink)
	e.declareVariables()
	e.emitPrologue()
	for _, op := range prog.Operations {
		e.emitOp(op)
	}
	e.emitEpilogue()
	e.pad8()
	return bf.Save()
}

// declareVariables registers every extern/private declared variable, plus
// a stack slot for every distinct temporary name referenced in the
// operation list (the original compiler calls add_temporary_variable while
// walking the type-checked tree; here it happens on first sight of each
// temporary name in IR, in operation order, which is equivalent since the
// flattener already assigns names in a single left-to-right pass).
func (e *Emitter) declareVariables() {
	for _, name := range e.prog.VariableOrder() {
		v := e.prog.Variables[name]
		switch v.Kind {
		case ir.VariableExtern:
			e.bf.AddExternVariable(v.Name, v.Type)
		case ir.VariablePrivate:
			e.bf.AddPrivateVariable(v.Name, v.Type)
		case ir.VariableTemp:
			e.declareTemp(v.Name, v.Type)
		}
	}
	for _, op := range e.prog.Operations {
		e.inferTemp(op.LHS, ir.TypeInteger)
		if op.RHS {
			e.inferTemp(op.RHSVal, ir.TypeInteger)
		}
		for _, p := range op.ExtraParams {
			e.inferTemp(p, ir.TypeInteger)
		}
		if op.HasResult {
			// A Result Data carries no literal payload to inspect (unlike an
			// operand freshly read off a literal node), so its type is
			// inferred from the producing operation instead.
			e.inferTemp(op.Result, resultType(op))
		}
	}
}

// inferTemp declares a stack slot the first time temporary d is seen,
// preferring a type read off d's own literal payload and falling back to
// fallback (the producing operation's inferred result type) when d carries
// none, which is always the case for a compiler-introduced temporary.
func (e *Emitter) inferTemp(d ir.Data, fallback ir.VariableType) {
	if d.Kind != ir.DataTemporary {
		return
	}
	if _, ok := e.tempType[d.Name]; ok {
		return
	}
	t := fallback
	switch {
	case d.HasFloat:
		t = ir.TypeFloatingPoint
	case d.HasBool:
		t = ir.TypeBoolean
	case d.HasStr:
		t = ir.TypeString
	}
	e.declareTemp(d.Name, t)
}

// resultType infers a produced Data's storage type from the operation that
// produced it, used when a temporary is first seen as an op's Result
// (which carries no payload of its own to inspect, unlike a literal Data).
func resultType(op ir.Operation) ir.VariableType {
	switch op.Op {
	case ir.OpEqual, ir.OpNotEqual, ir.OpLess, ir.OpLessEqual, ir.OpGreater, ir.OpGreaterEqual,
		ir.OpAlmostEqual, ir.OpStrictlyEqual, ir.OpStrictlyNotEqual, ir.OpLogicalNot:
		return ir.TypeBoolean
	case ir.OpCompare:
		return ir.TypeInteger
	default:
		if op.RHS && op.RHSVal.HasFloat {
			return ir.TypeFloatingPoint
		}
		if op.LHS.HasFloat {
			return ir.TypeFloatingPoint
		}
		return ir.TypeInteger
	}
}

func (e *Emitter) declareTemp(name string, t ir.VariableType) {
	if _, ok := e.tempType[name]; ok {
		return
	}
	e.tempType[name] = t
	e.bf.AddTemporaryVariable(name, t)
}

// emitPrologue emits `push rbp; mov rbp, rsp; sub rsp, N`, reserving the
// temporary frame computed from every declared temporary's slot region
// (spec.md §4.5).
func (e *Emitter) emitPrologue() {
	e.bf.AddText([]byte{0x55})             // push rbp
	e.bf.AddText([]byte{rex(true, false, false, false), 0x89, modrm(3, byte(rsp), byte(rbp))}) // mov rbp, rsp

	frameSize := e.frameSize()
	if frameSize > 0 {
		e.subRSPImm(frameSize)
	}
}

// frameSize recovers the total stack reservation from the most negative
// offset assigned to any declared temporary (buildfile doesn't expose slot
// counts directly, only per-name offsets).
func (e *Emitter) frameSize() int32 {
	var max1, max8 int32
	for name, t := range e.tempType {
		off, ok := e.bf.TemporaryOffset(name)
		if !ok {
			continue
		}
		if t == ir.TypeBoolean {
			if -off > max1 {
				max1 = -off
			}
		} else if -off > max8 {
			max8 = -off
		}
	}
	total := max1 + max8
	if total%16 != 0 {
		total += 16 - total%16
	}
	return total
}

func (e *Emitter) subRSPImm(n int32) {
	if n >= -128 && n <= 127 {
		e.bf.AddText([]byte{rex(true, false, false, false), 0x83, modrm(3, 5, byte(rsp)), byte(int8(n))})
		return
	}
	b := int32ToBytes(n)
	e.bf.AddText(append([]byte{rex(true, false, false, false), 0x81, modrm(3, 5, byte(rsp))}, b...))
}

func (e *Emitter) addRSPImm(n int32) {
	if n >= -128 && n <= 127 {
		e.bf.AddText([]byte{rex(true, false, false, false), 0x83, modrm(3, 0, byte(rsp)), byte(int8(n))})
		return
	}
	b := int32ToBytes(n)
	e.bf.AddText(append([]byte{rex(true, false, false, false), 0x81, modrm(3, 0, byte(rsp))}, b...))
}

// emitEpilogue emits `add rsp, N; pop rbp; ret`.
func (e *Emitter) emitEpilogue() {
	if frameSize := e.frameSize(); frameSize > 0 {
		e.addRSPImm(frameSize)
	}
	e.bf.AddText([]byte{0x5D}) // pop rbp
	e.bf.AddText([]byte{0xC3}) // ret
}

// canonicalNops are Intel's recommended multi-byte NOP sequences, used to
// pad .text to an 8-byte boundary without disturbing instruction decoding.
var canonicalNops = [][]byte{
	{},
	{0x90},
	{0x66, 0x90},
	{0x0F, 0x1F, 0x00},
	{0x0F, 0x1F, 0x40, 0x00},
	{0x0F, 0x1F, 0x44, 0x00, 0x00},
	{0x66, 0x0F, 0x1F, 0x44, 0x00, 0x00},
	{0x0F, 0x1F, 0x80, 0x00, 0x00, 0x00, 0x00},
}

func (e *Emitter) pad8() {
	n := e.bf.CurrentTextOffset() % 8
	if n == 0 {
		return
	}
	need := 8 - n
	for need > 0 {
		chunk := need
		if chunk > 7 {
			chunk = 7
		}
		e.bf.AddText(canonicalNops[chunk])
		need -= chunk
	}
}

func int32ToBytes(v int32) []byte {
	u := uint32(v)
	return []byte{byte(u), byte(u >> 8), byte(u >> 16), byte(u >> 24)}
}

func int8OrNil(v int64) (int8, bool) {
	if v >= -128 && v <= 127 {
		return int8(v), true
	}
	return 0, false
}

func sizeOf(t ir.VariableType) literal.Size {
	if t == ir.TypeBoolean {
		return literal.Size8Unsigned
	}
	return literal.Size64
}
