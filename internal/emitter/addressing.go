package emitter

import (
	"github.com/standardbeagle/asjs/internal/buildfile"
	"github.com/standardbeagle/asjs/internal/diag"
	"github.com/standardbeagle/asjs/internal/ir"
	"github.com/standardbeagle/asjs/internal/literal"
)

// loadToReg is generate_reg_mem specialized to "load data into dst"
// (spec.md §4.5's addressing helper): literal integers become an
// immediate-sized mov, temporaries/private variables load from an
// rbp-relative slot (byte or quad width matching the slot's size, using
// movzx to zero-extend an 8-bit slot into a 64-bit register), and extern
// variables load RIP-relative, recording a Variable32 relocation anchored
// at the instruction immediately following the operand.
func (e *Emitter) loadToReg(d ir.Data, dst reg) {
	switch d.Kind {
	case ir.DataLiteral:
		if d.HasInt {
			e.movImmToReg(dst, d.IntVal)
			return
		}
		if d.HasBool {
			v := int64(0)
			if d.BoolVal {
				v = 1
			}
			e.movImmToReg(dst, literal.NewInteger(v))
			return
		}
		// Float/string literals are addressed through the constant pool by
		// name once interned; treated as a variable-backed load here.
		e.loadStackOrExtern(d, dst)
	case ir.DataTemporary, ir.DataVariable:
		e.loadStackOrExtern(d, dst)
	case ir.DataExtern:
		e.loadStackOrExtern(d, dst)
	default:
		e.bug("loadToReg: unexpected data kind %v", d.Kind)
	}
}

func (e *Emitter) loadStackOrExtern(d ir.Data, dst reg) {
	if d.Kind == ir.DataExtern {
		e.loadRIPExtern(d.Name, dst)
		return
	}
	off, ok := e.bf.TemporaryOffset(d.Name)
	if !ok {
		e.bug("loadToReg: %q has no assigned stack slot", d.Name)
	}
	size := sizeOf(e.tempType[d.Name])
	e.loadRBP(dst, off, size)
}

// movImmToReg emits `mov reg, imm64` for a 64-bit literal or `mov reg,
// imm32` (sign-extended) for anything narrower, matching spec.md's
// "generate_reg_mem ... based on the integer's smallest-size classifier".
func (e *Emitter) movImmToReg(dst reg, v literal.Integer) {
	if v.SmallestSize() == literal.Size64 {
		b := make([]byte, 8)
		u := uint64(v.Value())
		for i := range b {
			b[i] = byte(u)
			u >>= 8
		}
		e.bf.AddText(append([]byte{rex(true, false, false, byte(dst) >= 8), 0xB8 + byte(dst&7)}, b...))
		return
	}
	e.bf.AddText(append([]byte{rex(true, false, false, false), 0xC7, modrm(3, 0, byte(dst))}, int32ToBytes(int32(v.Value()))...))
}

// loadRBP loads [rbp+disp] into dst, using disp8 or disp32 addressing
// depending on the offset's magnitude, and movzx for an 8-bit (boolean)
// slot so the full 64-bit register is zero-extended.
func (e *Emitter) loadRBP(dst reg, off int32, size literal.Size) {
	mod, dispBytes := dispEncoding(off)
	if size == literal.Size8Unsigned {
		e.bf.AddText(append([]byte{rex(true, false, false, false), 0x0F, 0xB6, modrm(mod, byte(dst), byte(rbp))}, dispBytes...))
		return
	}
	e.bf.AddText(append([]byte{rex(true, false, false, false), 0x8B, modrm(mod, byte(dst), byte(rbp))}, dispBytes...))
}

// storeRBP is generate_store's memory-target half: symmetric to loadRBP.
func (e *Emitter) storeRBP(off int32, size literal.Size, src reg) {
	mod, dispBytes := dispEncoding(off)
	opcode := byte(0x89) // mov r/m64, r64
	if size == literal.Size8Unsigned {
		opcode = 0x88 // mov r/m8, r8
	}
	w := size != literal.Size8Unsigned
	e.bf.AddText(append([]byte{rex(w, false, false, false), opcode, modrm(mod, byte(src), byte(rbp))}, dispBytes...))
}

func dispEncoding(off int32) (byte, []byte) {
	if off >= -128 && off <= 127 {
		return 1, []byte{byte(int8(off))}
	}
	return 2, int32ToBytes(off)
}

// loadRIPExtern loads an extern variable's value RIP-relative, recording a
// Variable32 relocation anchored at the byte following the 4-byte operand.
func (e *Emitter) loadRIPExtern(name string, dst reg) {
	e.bf.AddText([]byte{rex(true, false, false, false), 0x8B, modrm(0, byte(dst), 5)})
	operandPos := e.bf.CurrentTextOffset()
	e.bf.AddText([]byte{0, 0, 0, 0})
	anchor := e.bf.CurrentTextOffset()
	e.bf.AddRelocation(buildfile.Relocation{Name: name, Kind: buildfile.Variable32, Position: operandPos, RIPAnchor: anchor})
}

// storeRIPExtern is generate_store's extern-variable half.
func (e *Emitter) storeRIPExtern(name string, src reg) {
	e.bf.AddText([]byte{rex(true, false, false, false), 0x89, modrm(0, byte(src), 5)})
	operandPos := e.bf.CurrentTextOffset()
	e.bf.AddText([]byte{0, 0, 0, 0})
	anchor := e.bf.CurrentTextOffset()
	e.bf.AddRelocation(buildfile.Relocation{Name: name, Kind: buildfile.Variable32, Position: operandPos, RIPAnchor: anchor})
}

// storeResult is generate_store dispatching on the destination Data's kind.
func (e *Emitter) storeResult(d ir.Data, src reg) {
	switch d.Kind {
	case ir.DataExtern:
		e.storeRIPExtern(d.Name, src)
	case ir.DataTemporary, ir.DataVariable:
		off, ok := e.bf.TemporaryOffset(d.Name)
		if !ok {
			e.bug("storeResult: %q has no assigned stack slot", d.Name)
		}
		e.storeRBP(off, sizeOf(e.tempType[d.Name]), src)
	default:
		e.bug("storeResult: unexpected data kind %v", d.Kind)
	}
}

func (e *Emitter) bug(format string, args ...any) {
	diag.Bug("emitter", format, args...)
}
