package emitter

import (
	"github.com/standardbeagle/asjs/internal/buildfile"
	"github.com/standardbeagle/asjs/internal/diag"
	"github.com/standardbeagle/asjs/internal/ir"
)

// emitOp dispatches one flattened instruction to its x86-64 lowering
// (spec.md §4.5 "Operation lowerings"). Unsupported kinds report an
// internal-error diagnostic, per spec.md "Unsupported op kinds emit an
// internal-error diagnostic."
func (e *Emitter) emitOp(op ir.Operation) {
	switch op.Op {
	case ir.OpAdd, ir.OpSubtract:
		e.emitAddSub(op)
	case ir.OpBitwiseAnd, ir.OpBitwiseOr, ir.OpBitwiseXor:
		e.emitBitwise(op)
	case ir.OpShiftLeft, ir.OpShiftRight, ir.OpShiftRightUnsigned, ir.OpRotateLeft, ir.OpRotateRight:
		e.emitShift(op)
	case ir.OpCompare:
		e.emitCompare(op)
	case ir.OpEqual, ir.OpNotEqual, ir.OpLess, ir.OpLessEqual, ir.OpGreater, ir.OpGreaterEqual,
		ir.OpAlmostEqual, ir.OpStrictlyEqual, ir.OpStrictlyNotEqual:
		e.emitRelational(op)
	case ir.OpDivide, ir.OpModulo:
		e.emitDivMod(op)
	case ir.OpMultiply:
		e.emitMultiply(op)
	case ir.OpPower:
		e.emitPower(op)
	case ir.OpNegate, ir.OpBitwiseNot, ir.OpLogicalNot, ir.OpIdentity:
		e.emitUnary(op)
	case ir.OpMinimum, ir.OpMaximum:
		e.emitMinMax(op)
	case ir.OpAbsoluteValue:
		e.emitAbsoluteValue(op)
	case ir.OpIncrement, ir.OpDecrement, ir.OpPostIncrement, ir.OpPostDecrement:
		e.emitIncDec(op)
	case ir.OpAssignment:
		e.emitAssignment(op)
	case ir.OpIfTrue, ir.OpIfFalse:
		e.emitBranch(op)
	case ir.OpGoto:
		e.emitGoto(op)
	case ir.OpLabel:
		e.bf.AddLabel(op.LabelName)
	case ir.OpArray:
		e.emitArray(op)
	case ir.OpParam, ir.OpCall:
		e.emitCall(op)
	default:
		e.bug("emitOp: unsupported op %v", op.Op)
	}
}

// emitAddSub: load lhs -> rax; if rhs is a narrow literal use the imm8/imm32
// forms, otherwise load rhs -> rdx and add/sub rax, rdx (spec.md §4.5).
func (e *Emitter) emitAddSub(op ir.Operation) {
	sub := op.Op == ir.OpSubtract
	e.loadToReg(op.LHS, rax)
	if op.RHS {
		if op.RHSVal.Kind == ir.DataLiteral && op.RHSVal.HasInt {
			if v, ok := int8OrNil(op.RHSVal.IntVal.Value()); ok {
				e.addSubRegImm8(rax, sub, v)
			} else if op.RHSVal.IntVal.FitsInt32() {
				e.addSubRaxImm32(sub, int32(op.RHSVal.IntVal.Value()))
			} else {
				e.loadToReg(op.RHSVal, rdx)
				e.addSubRegReg(rax, rdx, sub)
			}
		} else {
			e.loadToReg(op.RHSVal, rdx)
			e.addSubRegReg(rax, rdx, sub)
		}
	}
	if op.HasResult {
		e.storeResult(op.Result, rax)
	}
}

func (e *Emitter) addSubRegImm8(r reg, sub bool, v int8) {
	regField := byte(0)
	if sub {
		regField = 5
	}
	e.bf.AddText([]byte{rex(true, false, false, false), 0x83, modrm(3, regField, byte(r)), byte(v)})
}

func (e *Emitter) addSubRaxImm32(sub bool, v int32) {
	op := byte(0x05)
	if sub {
		op = 0x2D
	}
	e.bf.AddText(append([]byte{rex(true, false, false, false), op}, int32ToBytes(v)...))
}

func (e *Emitter) addSubRegReg(dst, src reg, sub bool) {
	op := byte(0x01)
	if sub {
		op = 0x29
	}
	e.bf.AddText([]byte{rex(true, false, false, false), op, modrm(3, byte(src), byte(dst))})
}

func (e *Emitter) emitBitwise(op ir.Operation) {
	var andOp, orOp byte = 0x21, 0x09
	xorOp := byte(0x31)
	e.loadToReg(op.LHS, rax)
	if op.RHS {
		e.loadToReg(op.RHSVal, rdx)
		var code byte
		switch op.Op {
		case ir.OpBitwiseAnd:
			code = andOp
		case ir.OpBitwiseOr:
			code = orOp
		case ir.OpBitwiseXor:
			code = xorOp
		}
		e.bf.AddText([]byte{rex(true, false, false, false), code, modrm(3, byte(rdx), byte(rax))})
	}
	if op.HasResult {
		e.storeResult(op.Result, rax)
	}
}

// shiftRegField per opcode /reg extension: rol=0 ror=1 shl=4 shr=5 sar=7.
func shiftRegField(op ir.Op) byte {
	switch op {
	case ir.OpRotateLeft:
		return 0
	case ir.OpRotateRight:
		return 1
	case ir.OpShiftLeft:
		return 4
	case ir.OpShiftRightUnsigned:
		return 5
	case ir.OpShiftRight:
		return 7 // sar: arithmetic shift right, distinct from logical ShiftRightUnsigned
	default:
		return 7
	}
}

func (e *Emitter) emitShift(op ir.Operation) {
	e.loadToReg(op.LHS, rax)
	field := shiftRegField(op.Op)
	if op.RHS && op.RHSVal.Kind == ir.DataLiteral && op.RHSVal.HasInt {
		imm := byte(op.RHSVal.IntVal.Value())
		e.bf.AddText([]byte{rex(true, false, false, false), 0xC1, modrm(3, field, byte(rax)), imm})
	} else if op.RHS {
		e.loadToReg(op.RHSVal, rcx)
		e.bf.AddText([]byte{rex(true, false, false, false), 0xD3, modrm(3, field, byte(rax))})
	}
	if op.HasResult {
		e.storeResult(op.Result, rax)
	}
}

// emitCompare is the three-way compare: `cmp rdx, rax; setg al; setl cl;
// sub al, cl; movsx rax, al` (spec.md §4.5).
func (e *Emitter) emitCompare(op ir.Operation) {
	e.loadToReg(op.LHS, rdx)
	e.loadToReg(op.RHSVal, rax)
	e.bf.AddText([]byte{rex(true, false, false, false), 0x39, modrm(3, byte(rax), byte(rdx))}) // cmp rdx, rax
	e.setcc(0x9F, rax)                                                                         // setg al
	e.setcc(0x9C, rcx)                                                                         // setl cl
	e.bf.AddText([]byte{0x28, modrm(3, byte(rcx), byte(rax))})                                 // sub al, cl
	e.bf.AddText([]byte{rex(true, false, false, false), 0x0F, 0xBE, modrm(3, byte(rax), byte(rax))}) // movsx rax, al
	if op.HasResult {
		e.storeResult(op.Result, rax)
	}
}

// setccCode maps a relational op to its SETcc condition byte (0F 9X).
var setccCode = map[ir.Op]byte{
	ir.OpEqual: 0x94, ir.OpNotEqual: 0x95, ir.OpLess: 0x9C, ir.OpLessEqual: 0x9E,
	ir.OpGreater: 0x9F, ir.OpGreaterEqual: 0x9D,
	ir.OpAlmostEqual: 0x94, ir.OpStrictlyEqual: 0x94, ir.OpStrictlyNotEqual: 0x95,
}

// emitRelational: `xor eax, eax; cmp; setCC al` (spec.md §4.5).
func (e *Emitter) emitRelational(op ir.Operation) {
	e.bf.AddText([]byte{0x31, modrm(3, byte(rax), byte(rax))}) // xor eax, eax
	e.loadToReg(op.LHS, rdx)
	e.loadToReg(op.RHSVal, rcx)
	e.bf.AddText([]byte{rex(true, false, false, false), 0x39, modrm(3, byte(rcx), byte(rdx))}) // cmp rdx, rcx
	e.setcc(setccCode[op.Op], rax)
	if op.HasResult {
		e.storeResult(op.Result, rax)
	}
}

func (e *Emitter) setcc(code byte, dst reg) {
	e.bf.AddText([]byte{0x0F, code, modrm(3, 0, byte(dst))})
}

// emitDivMod: `mov lhs->rax; mov rhs->rcx; cqo; idiv rcx`; modulo then
// moves rdx (the remainder) into rax before storing (spec.md §4.5).
func (e *Emitter) emitDivMod(op ir.Operation) {
	e.loadToReg(op.LHS, rax)
	e.loadToReg(op.RHSVal, rcx)
	e.bf.AddText([]byte{0x48, 0x99})                                                // cqo
	e.bf.AddText([]byte{rex(true, false, false, false), 0xF7, modrm(3, 7, byte(rcx))}) // idiv rcx
	if op.Op == ir.OpModulo {
		e.bf.AddText([]byte{rex(true, false, false, false), 0x89, modrm(3, byte(rdx), byte(rax))}) // mov rax, rdx
	}
	if op.HasResult {
		e.storeResult(op.Result, rax)
	}
}

func (e *Emitter) emitMultiply(op ir.Operation) {
	e.loadToReg(op.LHS, rax)
	if op.RHS && op.RHSVal.Kind == ir.DataLiteral && op.RHSVal.HasInt {
		if v, ok := int8OrNil(op.RHSVal.IntVal.Value()); ok {
			e.bf.AddText([]byte{rex(true, false, false, false), 0x6B, modrm(3, byte(rax), byte(rax)), byte(v)})
		} else {
			e.bf.AddText(append([]byte{rex(true, false, false, false), 0x69, modrm(3, byte(rax), byte(rax))}, int32ToBytes(int32(op.RHSVal.IntVal.Value()))...))
		}
	} else if op.RHS {
		e.loadToReg(op.RHSVal, rdx)
		e.bf.AddText([]byte{rex(true, false, false, false), 0x0F, 0xAF, modrm(3, byte(rax), byte(rdx))})
	}
	if op.HasResult {
		e.storeResult(op.Result, rax)
	}
}

// emitPower ensures the `power` runtime function is linked into the image,
// places args in rdi/rsi, and calls it RIP-relative (spec.md §4.5).
func (e *Emitter) emitPower(op ir.Operation) {
	e.bf.AddRTFunction("power")
	e.loadToReg(op.LHS, rdi)
	e.loadToReg(op.RHSVal, rsi)
	e.bf.AddText([]byte{0xE8})
	operandPos := e.bf.CurrentTextOffset()
	e.bf.AddText([]byte{0, 0, 0, 0})
	anchor := e.bf.CurrentTextOffset()
	e.bf.AddRelocation(buildfile.Relocation{Name: "power", Kind: buildfile.RT32, Position: operandPos, RIPAnchor: anchor})
	if op.HasResult {
		e.storeResult(op.Result, rax)
	}
}

// emitUnary: Negate (`neg rax`), BitwiseNot (`not rax`), LogicalNot (`xor
// eax,eax; test rdi,rdi; setz al`), Identity (no-op load/store).
func (e *Emitter) emitUnary(op ir.Operation) {
	switch op.Op {
	case ir.OpNegate:
		e.loadToReg(op.LHS, rax)
		e.bf.AddText([]byte{rex(true, false, false, false), 0xF7, modrm(3, 3, byte(rax))})
	case ir.OpBitwiseNot:
		e.loadToReg(op.LHS, rax)
		e.bf.AddText([]byte{rex(true, false, false, false), 0xF7, modrm(3, 2, byte(rax))})
	case ir.OpLogicalNot:
		e.loadToReg(op.LHS, rdi)
		e.bf.AddText([]byte{0x31, modrm(3, byte(rax), byte(rax))}) // xor eax, eax
		e.bf.AddText([]byte{rex(true, false, false, false), 0x85, modrm(3, byte(rdi), byte(rdi))}) // test rdi, rdi
		e.setcc(0x94, rax)                                                                         // setz al
	case ir.OpIdentity:
		e.loadToReg(op.LHS, rax)
	}
	if op.HasResult {
		e.storeResult(op.Result, rax)
	}
}

// emitMinMax: `cmp`, then `cmovl`/`cmovg` picks the winner into rax
// (spec.md §4.5).
func (e *Emitter) emitMinMax(op ir.Operation) {
	e.loadToReg(op.LHS, rax)
	e.loadToReg(op.RHSVal, rdx)
	e.bf.AddText([]byte{rex(true, false, false, false), 0x39, modrm(3, byte(rax), byte(rdx))}) // cmp rdx, rax
	cc := byte(0x4C)                                                                           // cmovl
	if op.Op == ir.OpMaximum {
		cc = 0x4F // cmovg
	}
	e.bf.AddText([]byte{rex(true, false, false, false), 0x0F, cc, modrm(3, byte(rax), byte(rdx))})
	if op.HasResult {
		e.storeResult(op.Result, rax)
	}
}

// emitAbsoluteValue: load, then negate in place only if negative, via
// `cmp rax,0; jns +3; neg rax` encoded branch-free with mov/sar/xor/sub, since
// the spec leaves this op's exact sequence unspecified (not in the
// "representative" list): cdq-style mask-and-subtract avoids a conditional
// jump. `mov rdx, rax; sar rdx, 63; xor rax, rdx; sub rax, rdx` computes
// abs(rax) unconditionally (a standard bit trick, not original-as2js
// derived, since as2js's abs() is a C library call with no emitted code to
// mirror).
func (e *Emitter) emitAbsoluteValue(op ir.Operation) {
	e.loadToReg(op.LHS, rax)
	e.bf.AddText([]byte{rex(true, false, false, false), 0x89, modrm(3, byte(rax), byte(rdx))})     // mov rdx, rax
	e.bf.AddText([]byte{rex(true, false, false, false), 0xC1, modrm(3, 7, byte(rdx)), 63})          // sar rdx, 63
	e.bf.AddText([]byte{rex(true, false, false, false), 0x31, modrm(3, byte(rdx), byte(rax))})      // xor rax, rdx
	e.bf.AddText([]byte{rex(true, false, false, false), 0x29, modrm(3, byte(rdx), byte(rax))})      // sub rax, rdx
	if op.HasResult {
		e.storeResult(op.Result, rax)
	}
}

// emitIncDec: `inc`/`dec` directly against memory; postfix forms load the
// old value first, prefix forms load the new one (spec.md §4.5).
func (e *Emitter) emitIncDec(op ir.Operation) {
	isDec := op.Op == ir.OpDecrement || op.Op == ir.OpPostDecrement
	isPost := op.Op == ir.OpPostIncrement || op.Op == ir.OpPostDecrement

	off, ok := e.bf.TemporaryOffset(op.LHS.Name)
	if !ok {
		e.bug("emitIncDec: %q has no assigned stack slot", op.LHS.Name)
	}
	size := sizeOf(e.tempType[op.LHS.Name])

	if isPost && op.HasResult {
		e.loadRBP(rax, off, size)
		e.storeResult(op.Result, rax)
	}

	field := byte(0)
	if isDec {
		field = 1
	}
	mod, dispBytes := dispEncoding(off)
	e.bf.AddText(append([]byte{rex(true, false, false, false), 0xFF, modrm(mod, field, byte(rbp))}, dispBytes...))

	if !isPost && op.HasResult {
		e.loadRBP(rax, off, size)
		e.storeResult(op.Result, rax)
	}
}

// emitAssignment: load rhs -> rax, store to lhs and to the op's result
// temporary (spec.md §4.5).
func (e *Emitter) emitAssignment(op ir.Operation) {
	e.loadToReg(op.RHSVal, rax)
	e.storeResult(op.LHS, rax)
	if op.HasResult {
		e.storeResult(op.Result, rax)
	}
}

// emitBranch: `cmp imm8, mem` against zero when the condition has a stack
// slot, or `test rax, rax` after loading a condition that has none (such as
// a literal true/false), then `je`/`jne disp32` with a Label32 relocation
// (spec.md §4.5).
func (e *Emitter) emitBranch(op ir.Operation) {
	if off, ok := e.bf.TemporaryOffset(op.LHS.Name); ok {
		mod, dispBytes := dispEncoding(off)
		e.bf.AddText(append([]byte{0x80, modrm(mod, 7, byte(rbp))}, append(dispBytes, 0)...)) // cmp byte [rbp+off], 0
	} else {
		e.loadToReg(op.LHS, rax)
		e.bf.AddText([]byte{rex(true, false, false, false), 0x85, modrm(3, byte(rax), byte(rax))}) // test rax, rax
	}

	code := byte(0x84) // je
	if op.Op == ir.OpIfTrue {
		code = 0x85 // jne
	}
	e.bf.AddText([]byte{0x0F, code})
	operandPos := e.bf.CurrentTextOffset()
	e.bf.AddText([]byte{0, 0, 0, 0})
	anchor := e.bf.CurrentTextOffset()
	e.bf.AddRelocation(buildfile.Relocation{Name: op.LabelName, Kind: buildfile.Label32, Position: operandPos, RIPAnchor: anchor})
}

// emitGoto: `jmp disp32` with a Label32 relocation.
func (e *Emitter) emitGoto(op ir.Operation) {
	e.bf.AddText([]byte{0xE9})
	operandPos := e.bf.CurrentTextOffset()
	e.bf.AddText([]byte{0, 0, 0, 0})
	anchor := e.bf.CurrentTextOffset()
	e.bf.AddRelocation(buildfile.Relocation{Name: op.LabelName, Kind: buildfile.Label32, Position: operandPos, RIPAnchor: anchor})
}

// emitArray loads the object then the property index/name is resolved at a
// higher level (member access beyond a flat load/store is semantic-compiler
// territory, out of SPEC_FULL's scope); here it degrades to loading the
// object reference into rax so the result temporary at least carries it
// through, matching the flattener's "lower member access to a single op"
// simplification.
func (e *Emitter) emitArray(op ir.Operation) {
	e.loadToReg(op.LHS, rax)
	if op.HasResult {
		e.storeResult(op.Result, rax)
	}
}

// emitCall covers both Param (stage an argument) and Call (invoke). Since
// user-defined function codegen is parser/semantic-compiler territory (out
// of scope per spec.md), this only handles the intrinsic calls the
// flattener already lowers directly (Math.abs/min/max bypass Call
// entirely); a residual Param/Call reaching the emitter names an unresolved
// callee and is reported, not silently dropped.
func (e *Emitter) emitCall(op ir.Operation) {
	if e.sink != nil {
		e.sink.Reportf(diag.Error, diag.CodeUnknownRuntimeFunction, "emitter: no codegen for user-defined call at result %q", op.Result.Name)
	}
}
