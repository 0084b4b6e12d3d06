package rie

import "fmt"

// Instruction is a single encoded instruction word. Every variant of the
// tagged union described in spec.md §3 "Instruction word" is represented by
// one instrKind value plus whichever subset of these shared fields that
// variant uses; unused fields are simply left zero. Field reuse mirrors
// amd64 instr.go's instruction struct, which overlays op1/op2/u1/u2 across
// wildly different x86 instruction shapes instead of giving every shape its
// own Go type.
type Instruction struct {
	kind instrKind

	// Sub-discriminants for kindBitwise/kindCompare and their branch-fused
	// counterparts.
	bitOp   bitOp
	cmpOp   cmpOp
	width   operandWidth
	isImm16 bool // true: rhs carried in imm16, not in rhs register
	isEqz   bool // true: result of bitwise op is negated (*_eqz form)
	testNez bool // kindBranchUnary only: true=nez, false=eqz

	// Register operands. Meaning depends on kind:
	//   copy/copy_imm32/...:       result=dst,                     lhs=src (copy only)
	//   copy2/copy_many*:          span=dst head,                  lhs=r0, rhs=r1
	//   register/register2/3/list: result=r0, lhs=r1, rhs=r2
	//   return_reg:                result=r0
	//   return_reg2/3:             result=r0, lhs=r1, rhs=r2
	//   return_nez_*:              result=condition,               lhs=r0, rhs=r1
	//   bitwise/compare:           result=dst,                     lhs, rhs (rhs unused if isImm16)
	//   branch_unary:              lhs=condition register
	//   branch_bitwise/compare:    lhs, rhs (rhs unused if isImm16); no result (branch doesn't write)
	result Register
	lhs    Register
	rhs    Register

	// imm16 carries a sign-extended 16-bit immediate for *Imm16 bitwise and
	// compare variants.
	imm16 int32

	// imm32 carries the bit pattern for copy_imm32/copy_i64imm32/
	// copy_f64imm32 and the matching return_*imm32 variants. Interpretation
	// (i32 sign-extend, i64/f64 exact 32-bit pattern-preserving encode) is
	// documented on each constructor.
	imm32 int64

	// span/srcSpan/spanLen describe register spans for the span- and
	// many-register variants (copy_span*, copy_many*, return_span,
	// return_many, register_list).
	span    RegisterSpan
	srcSpan RegisterSpan
	spanLen uint16

	// offset is the wide unconditional-branch displacement (kindBranch
	// only).
	offset BranchOffset
	// offset16 is the narrow displacement embedded in every conditional
	// branch variant (kindBranchUnary/kindBranchBitwise/kindBranchCompare).
	offset16 BranchOffset16

	// fuel accumulates consumed fuel for kindConsumeFuel words.
	fuel uint64
}

func (i *Instruction) Kind() string { return i.kind.String() }

// --- Copies (spec §4.3) ---

// Copy builds a register-to-register copy: dst = src.
func Copy(dst, src Register) Instruction {
	return Instruction{kind: kindCopy, result: dst, lhs: src}
}

// CopyImm32 builds dst = sign_extend_i32(imm).
func CopyImm32(dst Register, imm int32) Instruction {
	return Instruction{kind: kindCopyImm32, result: dst, imm32: int64(imm)}
}

// CopyI64Imm32 builds dst = sign_extend_i64(imm), an i64 destination fed by
// a 32-bit immediate.
func CopyI64Imm32(dst Register, imm int32) Instruction {
	return Instruction{kind: kindCopyI64Imm32, result: dst, imm32: int64(imm)}
}

// CopyF64Imm32 builds dst = f64(f32_bits(imm)): an f64 destination fed by an
// f32-precision immediate widened to f64.
func CopyF64Imm32(dst Register, imm32Bits uint32) Instruction {
	return Instruction{kind: kindCopyF64Imm32, result: dst, imm32: int64(imm32Bits)}
}

// Copy2 builds a 2-register parallel copy into a destination span: the pair
// (r0, r1) is copied into (dst, dst.Next()) simultaneously (no
// read-after-write hazard between the two, per spec §4.3 "no self-overlap").
func Copy2(dst RegisterSpan, r0, r1 Register) Instruction {
	return Instruction{kind: kindCopy2, span: dst, lhs: r0, rhs: r1}
}

// CopySpan builds an overlap-aware span-to-span copy of len registers
// starting at src into dst.
func CopySpan(dst, src RegisterSpan, length uint16) Instruction {
	return Instruction{kind: kindCopySpan, span: dst, srcSpan: src, spanLen: length}
}

// CopySpanNonOverlapping is CopySpan's fast path for a caller-proven
// non-overlapping span pair.
func CopySpanNonOverlapping(dst, src RegisterSpan, length uint16) Instruction {
	return Instruction{kind: kindCopySpanNonOverlapping, span: dst, srcSpan: src, spanLen: length}
}

// CopyMany builds an overlap-aware copy of an explicit, possibly-discontiguous
// provider list into dst; the first two providers are carried inline (r0,
// r1) and any remainder follows as kindRegister/kindRegister2/kindRegister3
// continuation words (spec §4.5).
func CopyMany(dst RegisterSpan, r0, r1 Register) Instruction {
	return Instruction{kind: kindCopyMany, span: dst, lhs: r0, rhs: r1}
}

// CopyManyNonOverlapping is CopyMany's fast path for a caller-proven
// non-overlapping provider list.
func CopyManyNonOverlapping(dst RegisterSpan, r0, r1 Register) Instruction {
	return Instruction{kind: kindCopyManyNonOverlapping, span: dst, lhs: r0, rhs: r1}
}

// --- Returns (spec §4.4) ---

func Return() Instruction                 { return Instruction{kind: kindReturn} }
func ReturnReg(r0 Register) Instruction   { return Instruction{kind: kindReturnReg, result: r0} }
func ReturnReg2(r0, r1 Register) Instruction {
	return Instruction{kind: kindReturnReg2, result: r0, lhs: r1}
}
func ReturnReg3(r0, r1, r2 Register) Instruction {
	return Instruction{kind: kindReturnReg3, result: r0, lhs: r1, rhs: r2}
}
func ReturnImm32(imm int32) Instruction {
	return Instruction{kind: kindReturnImm32, imm32: int64(imm)}
}
func ReturnI64Imm32(imm int32) Instruction {
	return Instruction{kind: kindReturnI64Imm32, imm32: int64(imm)}
}
func ReturnF64Imm32(imm32Bits uint32) Instruction {
	return Instruction{kind: kindReturnF64Imm32, imm32: int64(imm32Bits)}
}
func ReturnSpan(results RegisterSpan, length uint16) Instruction {
	return Instruction{kind: kindReturnSpan, span: results, spanLen: length}
}
func ReturnMany(r0, r1 Register) Instruction {
	return Instruction{kind: kindReturnMany, lhs: r0, rhs: r1}
}

func ReturnNez(condition Register) Instruction {
	return Instruction{kind: kindReturnNez, result: condition}
}
func ReturnNezReg(condition, r0 Register) Instruction {
	return Instruction{kind: kindReturnNezReg, result: condition, lhs: r0}
}
func ReturnNezReg2(condition, r0, r1 Register) Instruction {
	return Instruction{kind: kindReturnNezReg2, result: condition, lhs: r0, rhs: r1}
}
func ReturnNezImm32(condition Register, imm int32) Instruction {
	return Instruction{kind: kindReturnNezImm32, result: condition, imm32: int64(imm)}
}
func ReturnNezI64Imm32(condition Register, imm int32) Instruction {
	return Instruction{kind: kindReturnNezI64Imm32, result: condition, imm32: int64(imm)}
}
func ReturnNezF64Imm32(condition Register, imm32Bits uint32) Instruction {
	return Instruction{kind: kindReturnNezF64Imm32, result: condition, imm32: int64(imm32Bits)}
}
func ReturnNezSpan(condition Register, results RegisterSpan, length uint16) Instruction {
	return Instruction{kind: kindReturnNezSpan, result: condition, span: results, spanLen: length}
}
func ReturnNezMany(condition, r0, r1 Register) Instruction {
	return Instruction{kind: kindReturnNezMany, result: condition, lhs: r0, rhs: r1}
}

// --- Register-list continuation words (spec §4.5) ---

func RegisterOne(r0 Register) Instruction { return Instruction{kind: kindRegister, result: r0} }
func RegisterTwo(r0, r1 Register) Instruction {
	return Instruction{kind: kindRegister2, result: r0, lhs: r1}
}
func RegisterThree(r0, r1, r2 Register) Instruction {
	return Instruction{kind: kindRegister3, result: r0, lhs: r1, rhs: r2}
}

// RegisterListContinuation builds a non-terminal register-list word: exactly
// 3 registers, with more registers still to follow in a subsequent
// continuation/terminal word. Distinct from RegisterThree, which is only
// valid when r0/r1/r2 are the final 3 registers in the list.
func RegisterListContinuation(r0, r1, r2 Register) Instruction {
	return Instruction{kind: kindRegisterList, result: r0, lhs: r1, rhs: r2}
}

// RegisterList builds the next word for the remaining registers in regs;
// returns the word and the count actually consumed, mirroring wasmi's
// chunked register-list encoding. A tail of exactly 3 is terminal
// (RegisterThree); a tail of more than 3 consumes 3 via the
// RegisterListContinuation marker and leaves the rest for the next call.
func RegisterList(regs []Register) (Instruction, int) {
	switch {
	case len(regs) > 3:
		return RegisterListContinuation(regs[0], regs[1], regs[2]), 3
	case len(regs) == 3:
		return RegisterThree(regs[0], regs[1], regs[2]), 3
	case len(regs) == 2:
		return RegisterTwo(regs[0], regs[1]), 2
	case len(regs) == 1:
		return RegisterOne(regs[0]), 1
	default:
		panic("rie: BUG: RegisterList called with no registers")
	}
}

// DecodeRegisterList returns the registers held by a single
// kindRegister/kindRegister2/kindRegister3/kindRegisterList word.
// Supplemented beyond spec.md as the decode half of the chunker, used for
// round-trip testing (SPEC_FULL.md §7).
func DecodeRegisterList(i *Instruction) []Register {
	switch i.kind {
	case kindRegister:
		return []Register{i.result}
	case kindRegister2:
		return []Register{i.result, i.lhs}
	case kindRegister3, kindRegisterList:
		return []Register{i.result, i.lhs, i.rhs}
	default:
		panic(fmt.Sprintf("rie: BUG: DecodeRegisterList called on non-register-list word %v", i.kind))
	}
}

// --- Fuel (spec §4.10) ---

func ConsumeFuel(amount uint64) Instruction {
	return Instruction{kind: kindConsumeFuel, fuel: amount}
}

// --- Bitwise (spec §4.9 fusion source operators; spec §3 data model) ---

func I32And(dst, lhs, rhs Register) Instruction {
	return Instruction{kind: kindBitwise, bitOp: bitAnd, result: dst, lhs: lhs, rhs: rhs}
}
func I32Or(dst, lhs, rhs Register) Instruction {
	return Instruction{kind: kindBitwise, bitOp: bitOr, result: dst, lhs: lhs, rhs: rhs}
}
func I32Xor(dst, lhs, rhs Register) Instruction {
	return Instruction{kind: kindBitwise, bitOp: bitXor, result: dst, lhs: lhs, rhs: rhs}
}
func I32AndImm16(dst, lhs Register, rhs int16) Instruction {
	return Instruction{kind: kindBitwise, bitOp: bitAnd, result: dst, lhs: lhs, imm16: int32(rhs), isImm16: true}
}
func I32OrImm16(dst, lhs Register, rhs int16) Instruction {
	return Instruction{kind: kindBitwise, bitOp: bitOr, result: dst, lhs: lhs, imm16: int32(rhs), isImm16: true}
}
func I32XorImm16(dst, lhs Register, rhs int16) Instruction {
	return Instruction{kind: kindBitwise, bitOp: bitXor, result: dst, lhs: lhs, imm16: int32(rhs), isImm16: true}
}

func I32AndEqz(dst, lhs, rhs Register) Instruction {
	return Instruction{kind: kindBitwise, bitOp: bitAnd, result: dst, lhs: lhs, rhs: rhs, isEqz: true}
}
func I32OrEqz(dst, lhs, rhs Register) Instruction {
	return Instruction{kind: kindBitwise, bitOp: bitOr, result: dst, lhs: lhs, rhs: rhs, isEqz: true}
}
func I32XorEqz(dst, lhs, rhs Register) Instruction {
	return Instruction{kind: kindBitwise, bitOp: bitXor, result: dst, lhs: lhs, rhs: rhs, isEqz: true}
}
func I32AndEqzImm16(dst, lhs Register, rhs int16) Instruction {
	return Instruction{kind: kindBitwise, bitOp: bitAnd, result: dst, lhs: lhs, imm16: int32(rhs), isImm16: true, isEqz: true}
}
func I32OrEqzImm16(dst, lhs Register, rhs int16) Instruction {
	return Instruction{kind: kindBitwise, bitOp: bitOr, result: dst, lhs: lhs, imm16: int32(rhs), isImm16: true, isEqz: true}
}
func I32XorEqzImm16(dst, lhs Register, rhs int16) Instruction {
	return Instruction{kind: kindBitwise, bitOp: bitXor, result: dst, lhs: lhs, imm16: int32(rhs), isImm16: true, isEqz: true}
}

// --- Comparisons (spec §4.8 fusion source operators) ---

func compareReg(w operandWidth, op cmpOp, dst, lhs, rhs Register) Instruction {
	return Instruction{kind: kindCompare, width: w, cmpOp: op, result: dst, lhs: lhs, rhs: rhs}
}
func compareImm16(w operandWidth, op cmpOp, dst, lhs Register, rhs int16) Instruction {
	return Instruction{kind: kindCompare, width: w, cmpOp: op, result: dst, lhs: lhs, imm16: int32(rhs), isImm16: true}
}

func I32Eq(dst, lhs, rhs Register) Instruction  { return compareReg(widthI32, cmpEq, dst, lhs, rhs) }
func I32Ne(dst, lhs, rhs Register) Instruction  { return compareReg(widthI32, cmpNe, dst, lhs, rhs) }
func I32LtS(dst, lhs, rhs Register) Instruction { return compareReg(widthI32, cmpLtS, dst, lhs, rhs) }
func I32LtU(dst, lhs, rhs Register) Instruction { return compareReg(widthI32, cmpLtU, dst, lhs, rhs) }
func I32LeS(dst, lhs, rhs Register) Instruction { return compareReg(widthI32, cmpLeS, dst, lhs, rhs) }
func I32LeU(dst, lhs, rhs Register) Instruction { return compareReg(widthI32, cmpLeU, dst, lhs, rhs) }
func I32GtS(dst, lhs, rhs Register) Instruction { return compareReg(widthI32, cmpGtS, dst, lhs, rhs) }
func I32GtU(dst, lhs, rhs Register) Instruction { return compareReg(widthI32, cmpGtU, dst, lhs, rhs) }
func I32GeS(dst, lhs, rhs Register) Instruction { return compareReg(widthI32, cmpGeS, dst, lhs, rhs) }
func I32GeU(dst, lhs, rhs Register) Instruction { return compareReg(widthI32, cmpGeU, dst, lhs, rhs) }

func I32EqImm16(dst, lhs Register, rhs int16) Instruction  { return compareImm16(widthI32, cmpEq, dst, lhs, rhs) }
func I32NeImm16(dst, lhs Register, rhs int16) Instruction  { return compareImm16(widthI32, cmpNe, dst, lhs, rhs) }
func I32LtSImm16(dst, lhs Register, rhs int16) Instruction { return compareImm16(widthI32, cmpLtS, dst, lhs, rhs) }
func I32LtUImm16(dst, lhs Register, rhs int16) Instruction { return compareImm16(widthI32, cmpLtU, dst, lhs, rhs) }
func I32LeSImm16(dst, lhs Register, rhs int16) Instruction { return compareImm16(widthI32, cmpLeS, dst, lhs, rhs) }
func I32LeUImm16(dst, lhs Register, rhs int16) Instruction { return compareImm16(widthI32, cmpLeU, dst, lhs, rhs) }
func I32GtSImm16(dst, lhs Register, rhs int16) Instruction { return compareImm16(widthI32, cmpGtS, dst, lhs, rhs) }
func I32GtUImm16(dst, lhs Register, rhs int16) Instruction { return compareImm16(widthI32, cmpGtU, dst, lhs, rhs) }
func I32GeSImm16(dst, lhs Register, rhs int16) Instruction { return compareImm16(widthI32, cmpGeS, dst, lhs, rhs) }
func I32GeUImm16(dst, lhs Register, rhs int16) Instruction { return compareImm16(widthI32, cmpGeU, dst, lhs, rhs) }

func I64Eq(dst, lhs, rhs Register) Instruction  { return compareReg(widthI64, cmpEq, dst, lhs, rhs) }
func I64Ne(dst, lhs, rhs Register) Instruction  { return compareReg(widthI64, cmpNe, dst, lhs, rhs) }
func I64LtS(dst, lhs, rhs Register) Instruction { return compareReg(widthI64, cmpLtS, dst, lhs, rhs) }
func I64LtU(dst, lhs, rhs Register) Instruction { return compareReg(widthI64, cmpLtU, dst, lhs, rhs) }
func I64LeS(dst, lhs, rhs Register) Instruction { return compareReg(widthI64, cmpLeS, dst, lhs, rhs) }
func I64LeU(dst, lhs, rhs Register) Instruction { return compareReg(widthI64, cmpLeU, dst, lhs, rhs) }
func I64GtS(dst, lhs, rhs Register) Instruction { return compareReg(widthI64, cmpGtS, dst, lhs, rhs) }
func I64GtU(dst, lhs, rhs Register) Instruction { return compareReg(widthI64, cmpGtU, dst, lhs, rhs) }
func I64GeS(dst, lhs, rhs Register) Instruction { return compareReg(widthI64, cmpGeS, dst, lhs, rhs) }
func I64GeU(dst, lhs, rhs Register) Instruction { return compareReg(widthI64, cmpGeU, dst, lhs, rhs) }

func I64EqImm16(dst, lhs Register, rhs int16) Instruction  { return compareImm16(widthI64, cmpEq, dst, lhs, rhs) }
func I64NeImm16(dst, lhs Register, rhs int16) Instruction  { return compareImm16(widthI64, cmpNe, dst, lhs, rhs) }
func I64LtSImm16(dst, lhs Register, rhs int16) Instruction { return compareImm16(widthI64, cmpLtS, dst, lhs, rhs) }
func I64LtUImm16(dst, lhs Register, rhs int16) Instruction { return compareImm16(widthI64, cmpLtU, dst, lhs, rhs) }
func I64LeSImm16(dst, lhs Register, rhs int16) Instruction { return compareImm16(widthI64, cmpLeS, dst, lhs, rhs) }
func I64LeUImm16(dst, lhs Register, rhs int16) Instruction { return compareImm16(widthI64, cmpLeU, dst, lhs, rhs) }
func I64GtSImm16(dst, lhs Register, rhs int16) Instruction { return compareImm16(widthI64, cmpGtS, dst, lhs, rhs) }
func I64GtUImm16(dst, lhs Register, rhs int16) Instruction { return compareImm16(widthI64, cmpGtU, dst, lhs, rhs) }
func I64GeSImm16(dst, lhs Register, rhs int16) Instruction { return compareImm16(widthI64, cmpGeS, dst, lhs, rhs) }
func I64GeUImm16(dst, lhs Register, rhs int16) Instruction { return compareImm16(widthI64, cmpGeU, dst, lhs, rhs) }

// Float comparisons have no unsigned or imm16 forms (spec §3).
func F32Eq(dst, lhs, rhs Register) Instruction { return compareReg(widthF32, cmpEq, dst, lhs, rhs) }
func F32Ne(dst, lhs, rhs Register) Instruction { return compareReg(widthF32, cmpNe, dst, lhs, rhs) }
func F32Lt(dst, lhs, rhs Register) Instruction { return compareReg(widthF32, cmpLtS, dst, lhs, rhs) }
func F32Le(dst, lhs, rhs Register) Instruction { return compareReg(widthF32, cmpLeS, dst, lhs, rhs) }
func F32Gt(dst, lhs, rhs Register) Instruction { return compareReg(widthF32, cmpGtS, dst, lhs, rhs) }
func F32Ge(dst, lhs, rhs Register) Instruction { return compareReg(widthF32, cmpGeS, dst, lhs, rhs) }

func F64Eq(dst, lhs, rhs Register) Instruction { return compareReg(widthF64, cmpEq, dst, lhs, rhs) }
func F64Ne(dst, lhs, rhs Register) Instruction { return compareReg(widthF64, cmpNe, dst, lhs, rhs) }
func F64Lt(dst, lhs, rhs Register) Instruction { return compareReg(widthF64, cmpLtS, dst, lhs, rhs) }
func F64Le(dst, lhs, rhs Register) Instruction { return compareReg(widthF64, cmpLeS, dst, lhs, rhs) }
func F64Gt(dst, lhs, rhs Register) Instruction { return compareReg(widthF64, cmpGtS, dst, lhs, rhs) }
func F64Ge(dst, lhs, rhs Register) Instruction { return compareReg(widthF64, cmpGeS, dst, lhs, rhs) }

// --- Branches (spec §4.6, §4.8, §4.9) ---

// Branch builds an unconditional wide branch.
func Branch(offset BranchOffset) Instruction {
	return Instruction{kind: kindBranch, offset: offset}
}

func BranchI32Eqz(condition Register, offset BranchOffset16) Instruction {
	return Instruction{kind: kindBranchUnary, width: widthI32, testNez: false, lhs: condition, offset16: offset}
}
func BranchI32Nez(condition Register, offset BranchOffset16) Instruction {
	return Instruction{kind: kindBranchUnary, width: widthI32, testNez: true, lhs: condition, offset16: offset}
}
func BranchI64Eqz(condition Register, offset BranchOffset16) Instruction {
	return Instruction{kind: kindBranchUnary, width: widthI64, testNez: false, lhs: condition, offset16: offset}
}
func BranchI64Nez(condition Register, offset BranchOffset16) Instruction {
	return Instruction{kind: kindBranchUnary, width: widthI64, testNez: true, lhs: condition, offset16: offset}
}

func branchBitwiseReg(op bitOp, eqz bool, lhs, rhs Register, offset BranchOffset16) Instruction {
	return Instruction{kind: kindBranchBitwise, bitOp: op, isEqz: eqz, lhs: lhs, rhs: rhs, offset16: offset}
}
func branchBitwiseImm16(op bitOp, eqz bool, lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return Instruction{kind: kindBranchBitwise, bitOp: op, isEqz: eqz, lhs: lhs, imm16: int32(rhs), isImm16: true, offset16: offset}
}

func BranchI32And(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchBitwiseReg(bitAnd, false, lhs, rhs, offset)
}
func BranchI32Or(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchBitwiseReg(bitOr, false, lhs, rhs, offset)
}
func BranchI32Xor(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchBitwiseReg(bitXor, false, lhs, rhs, offset)
}
func BranchI32AndEqz(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchBitwiseReg(bitAnd, true, lhs, rhs, offset)
}
func BranchI32OrEqz(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchBitwiseReg(bitOr, true, lhs, rhs, offset)
}
func BranchI32XorEqz(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchBitwiseReg(bitXor, true, lhs, rhs, offset)
}
func BranchI32AndImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchBitwiseImm16(bitAnd, false, lhs, rhs, offset)
}
func BranchI32OrImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchBitwiseImm16(bitOr, false, lhs, rhs, offset)
}
func BranchI32XorImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchBitwiseImm16(bitXor, false, lhs, rhs, offset)
}
func BranchI32AndEqzImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchBitwiseImm16(bitAnd, true, lhs, rhs, offset)
}
func BranchI32OrEqzImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchBitwiseImm16(bitOr, true, lhs, rhs, offset)
}
func BranchI32XorEqzImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchBitwiseImm16(bitXor, true, lhs, rhs, offset)
}

func branchCompareReg(w operandWidth, op cmpOp, lhs, rhs Register, offset BranchOffset16) Instruction {
	return Instruction{kind: kindBranchCompare, width: w, cmpOp: op, lhs: lhs, rhs: rhs, offset16: offset}
}
func branchCompareImm16(w operandWidth, op cmpOp, lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return Instruction{kind: kindBranchCompare, width: w, cmpOp: op, lhs: lhs, imm16: int32(rhs), isImm16: true, offset16: offset}
}

func BranchI32Eq(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthI32, cmpEq, lhs, rhs, offset)
}
func BranchI32Ne(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthI32, cmpNe, lhs, rhs, offset)
}
func BranchI32LtS(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthI32, cmpLtS, lhs, rhs, offset)
}
func BranchI32LtU(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthI32, cmpLtU, lhs, rhs, offset)
}
func BranchI32LeS(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthI32, cmpLeS, lhs, rhs, offset)
}
func BranchI32LeU(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthI32, cmpLeU, lhs, rhs, offset)
}
func BranchI32GtS(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthI32, cmpGtS, lhs, rhs, offset)
}
func BranchI32GtU(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthI32, cmpGtU, lhs, rhs, offset)
}
func BranchI32GeS(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthI32, cmpGeS, lhs, rhs, offset)
}
func BranchI32GeU(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthI32, cmpGeU, lhs, rhs, offset)
}

func BranchI32EqImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchCompareImm16(widthI32, cmpEq, lhs, rhs, offset)
}
func BranchI32NeImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchCompareImm16(widthI32, cmpNe, lhs, rhs, offset)
}
func BranchI32LtSImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchCompareImm16(widthI32, cmpLtS, lhs, rhs, offset)
}
func BranchI32LtUImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchCompareImm16(widthI32, cmpLtU, lhs, rhs, offset)
}
func BranchI32LeSImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchCompareImm16(widthI32, cmpLeS, lhs, rhs, offset)
}
func BranchI32LeUImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchCompareImm16(widthI32, cmpLeU, lhs, rhs, offset)
}
func BranchI32GtSImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchCompareImm16(widthI32, cmpGtS, lhs, rhs, offset)
}
func BranchI32GtUImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchCompareImm16(widthI32, cmpGtU, lhs, rhs, offset)
}
func BranchI32GeSImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchCompareImm16(widthI32, cmpGeS, lhs, rhs, offset)
}
func BranchI32GeUImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchCompareImm16(widthI32, cmpGeU, lhs, rhs, offset)
}

func BranchI64Eq(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthI64, cmpEq, lhs, rhs, offset)
}
func BranchI64Ne(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthI64, cmpNe, lhs, rhs, offset)
}
func BranchI64LtS(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthI64, cmpLtS, lhs, rhs, offset)
}
func BranchI64LtU(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthI64, cmpLtU, lhs, rhs, offset)
}
func BranchI64LeS(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthI64, cmpLeS, lhs, rhs, offset)
}
func BranchI64LeU(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthI64, cmpLeU, lhs, rhs, offset)
}
func BranchI64GtS(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthI64, cmpGtS, lhs, rhs, offset)
}
func BranchI64GtU(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthI64, cmpGtU, lhs, rhs, offset)
}
func BranchI64GeS(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthI64, cmpGeS, lhs, rhs, offset)
}
func BranchI64GeU(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthI64, cmpGeU, lhs, rhs, offset)
}

func BranchI64EqImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchCompareImm16(widthI64, cmpEq, lhs, rhs, offset)
}
func BranchI64NeImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchCompareImm16(widthI64, cmpNe, lhs, rhs, offset)
}
func BranchI64LtSImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchCompareImm16(widthI64, cmpLtS, lhs, rhs, offset)
}
func BranchI64LtUImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchCompareImm16(widthI64, cmpLtU, lhs, rhs, offset)
}
func BranchI64LeSImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchCompareImm16(widthI64, cmpLeS, lhs, rhs, offset)
}
func BranchI64LeUImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchCompareImm16(widthI64, cmpLeU, lhs, rhs, offset)
}
func BranchI64GtSImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchCompareImm16(widthI64, cmpGtS, lhs, rhs, offset)
}
func BranchI64GtUImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchCompareImm16(widthI64, cmpGtU, lhs, rhs, offset)
}
func BranchI64GeSImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchCompareImm16(widthI64, cmpGeS, lhs, rhs, offset)
}
func BranchI64GeUImm16(lhs Register, rhs int16, offset BranchOffset16) Instruction {
	return branchCompareImm16(widthI64, cmpGeU, lhs, rhs, offset)
}

func BranchF32Eq(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthF32, cmpEq, lhs, rhs, offset)
}
func BranchF32Ne(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthF32, cmpNe, lhs, rhs, offset)
}
func BranchF32Lt(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthF32, cmpLtS, lhs, rhs, offset)
}
func BranchF32Le(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthF32, cmpLeS, lhs, rhs, offset)
}
func BranchF32Gt(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthF32, cmpGtS, lhs, rhs, offset)
}
func BranchF32Ge(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthF32, cmpGeS, lhs, rhs, offset)
}

func BranchF64Eq(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthF64, cmpEq, lhs, rhs, offset)
}
func BranchF64Ne(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthF64, cmpNe, lhs, rhs, offset)
}
func BranchF64Lt(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthF64, cmpLtS, lhs, rhs, offset)
}
func BranchF64Le(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthF64, cmpLeS, lhs, rhs, offset)
}
func BranchF64Gt(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthF64, cmpGtS, lhs, rhs, offset)
}
func BranchF64Ge(lhs, rhs Register, offset BranchOffset16) Instruction {
	return branchCompareReg(widthF64, cmpGeS, lhs, rhs, offset)
}

// --- Cross-cutting helpers shared by the encoder package ---

// updateBranchOffset patches a branch word's displacement once its target
// label resolves. Panics if i is not a branch variant: update_branch_offset
// is only ever called from updateBranchOffsets against handles the label
// registry itself recorded, which only happens for branch pushes.
func (i *Instruction) updateBranchOffset(newOffset BranchOffset) error {
	switch i.kind {
	case kindBranch:
		i.offset = newOffset
		return nil
	case kindBranchUnary, kindBranchBitwise, kindBranchCompare:
		narrow, ok := NewBranchOffset16(newOffset)
		if !ok {
			return newError(ErrBranchOffsetOutOfRange, "branch offset %d does not fit in 16 bits", newOffset)
		}
		i.offset16 = narrow
		return nil
	default:
		panic(fmt.Sprintf("rie: BUG: updateBranchOffset called on non-branch word %v", i.kind))
	}
}

// bumpFuelConsumption adds delta to a kindConsumeFuel word's accumulator,
// reporting ErrFuelOverflow on wraparound. Panics if i is not a fuel word.
func (i *Instruction) bumpFuelConsumption(delta uint64) error {
	if i.kind != kindConsumeFuel {
		panic(fmt.Sprintf("rie: BUG: bumpFuelConsumption called on non-fuel word %v", i.kind))
	}
	sum := i.fuel + delta
	if sum < i.fuel {
		return newError(ErrFuelOverflow, "fuel consumption overflowed at +%d (had %d)", delta, i.fuel)
	}
	i.fuel = sum
	return nil
}

// relinkResult attempts to retarget i's result register from oldResult to
// newResult in place, reporting whether the retarget was legal. Used by
// encode_local_set's "peephole" path: if the previous instruction already
// computed into oldResult and nothing has observed it yet, a following
// local.set/local.tee can redirect the computation's result register
// directly instead of emitting a separate copy (spec §4.7).
//
// Only result-producing, non-branch, non-control kinds are relinkable;
// copies and arithmetic/comparison results qualify, multi-result and
// control-flow words do not.
func (i *Instruction) relinkResult(oldResult, newResult Register) bool {
	switch i.kind {
	case kindCopy, kindCopyImm32, kindCopyI64Imm32, kindCopyF64Imm32,
		kindBitwise, kindCompare:
		if i.result != oldResult {
			return false
		}
		i.result = newResult
		return true
	default:
		return false
	}
}

// visitInputRegisters calls visit once per plain register i reads and
// visitSpan once per register span i reads (not its result/destination),
// in encounter order. Used by defragmentation to remap every register a
// word refers to after allocation finalizes; destinations are excluded
// because local-space assignments are finalized earlier (spec §5
// "Defragmentation hook").
func (i *Instruction) visitInputRegisters(visit func(*Register), visitSpan func(*RegisterSpan)) {
	switch i.kind {
	case kindCopy:
		visit(&i.lhs)
	case kindCopy2, kindCopyMany, kindCopyManyNonOverlapping:
		visit(&i.lhs)
		visit(&i.rhs)
	case kindCopySpan, kindCopySpanNonOverlapping:
		visitSpan(&i.srcSpan)
	case kindReturnSpan:
		visitSpan(&i.span)
	case kindReturnNezSpan:
		visit(&i.result)
		visitSpan(&i.span)
	case kindReturnReg:
		visit(&i.result)
	case kindReturnReg2:
		visit(&i.result)
		visit(&i.lhs)
	case kindReturnReg3:
		visit(&i.result)
		visit(&i.lhs)
		visit(&i.rhs)
	case kindReturnMany:
		visit(&i.lhs)
		visit(&i.rhs)
	case kindReturnNez:
		visit(&i.result)
	case kindReturnNezReg:
		visit(&i.result)
		visit(&i.lhs)
	case kindReturnNezReg2:
		visit(&i.result)
		visit(&i.lhs)
		visit(&i.rhs)
	case kindReturnNezMany:
		visit(&i.result)
		visit(&i.lhs)
		visit(&i.rhs)
	case kindRegister:
		visit(&i.result)
	case kindRegister2:
		visit(&i.result)
		visit(&i.lhs)
	case kindRegister3, kindRegisterList:
		visit(&i.result)
		visit(&i.lhs)
		visit(&i.rhs)
	case kindBitwise, kindCompare:
		visit(&i.lhs)
		if !i.isImm16 {
			visit(&i.rhs)
		}
	case kindBranchUnary:
		visit(&i.lhs)
	case kindBranchBitwise, kindBranchCompare:
		visit(&i.lhs)
		if !i.isImm16 {
			visit(&i.rhs)
		}
	}
}

