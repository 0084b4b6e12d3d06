package rie

import "fmt"

// instrKind is the coarse discriminant of an instruction word. Finer-grained
// distinctions within a kind (which bitwise op, which comparison predicate,
// which operand width) are carried in small sub-enum fields on Instruction
// rather than as separate instrKind values, to avoid an explosion of
// near-identical constants.
//
// Grounded on internal/engine/wazevo/backend/isa/amd64/instr.go's
// instruction model: a single `kind instructionKind` field paired with
// small auxiliary opcode enums stored in shared fields (e.g. `aluRmiROpcode
// (i.u1)` alongside `kind: aluRmiR`), dispatched in String()/encoding via a
// switch on kind that then switches again on the sub-opcode.
type instrKind uint8

const (
	kindInvalid instrKind = iota

	// Copies (spec §4.3).
	kindCopy
	kindCopyImm32
	kindCopyI64Imm32
	kindCopyF64Imm32
	kindCopy2
	kindCopySpan
	kindCopySpanNonOverlapping
	kindCopyMany
	kindCopyManyNonOverlapping

	// Returns (spec §4.4).
	kindReturn
	kindReturnReg
	kindReturnReg2
	kindReturnReg3
	kindReturnImm32
	kindReturnI64Imm32
	kindReturnF64Imm32
	kindReturnSpan
	kindReturnMany
	kindReturnNez
	kindReturnNezReg
	kindReturnNezReg2
	kindReturnNezImm32
	kindReturnNezI64Imm32
	kindReturnNezF64Imm32
	kindReturnNezSpan
	kindReturnNezMany

	// Register-list tail words (spec §4.5).
	kindRegister
	kindRegister2
	kindRegister3
	kindRegisterList

	// Fuel meter (spec §4.10).
	kindConsumeFuel

	// Arithmetic/bitwise. Sub-opcode in Instruction.bitOp; Instruction.isImm16
	// selects the 16-bit-immediate form; Instruction.isEqz selects the
	// eqz-fused (*Eqz / *EqzImm16) form.
	kindBitwise

	// Comparisons. Sub-opcode in Instruction.cmpOp, operand width in
	// Instruction.width, Instruction.isImm16 selects the 16-bit-immediate
	// form (integer widths only).
	kindCompare

	// Unconditional wide branch: Branch{offset}.
	kindBranch

	// Unary conditional branch on a register being zero/nonzero:
	// branch_i32_eqz/nez, branch_i64_eqz/nez. Instruction.width selects
	// i32/i64, Instruction.testNez selects eqz vs nez.
	kindBranchUnary

	// Fused bitwise-result + branch: branch_i32_and_eqz, etc. Same
	// sub-fields as kindBitwise plus a narrow offset.
	kindBranchBitwise

	// Fused comparison + branch: branch_i32_eq, etc. Same sub-fields as
	// kindCompare plus a narrow offset.
	kindBranchCompare
)

func (k instrKind) String() string {
	switch k {
	case kindCopy:
		return "copy"
	case kindCopyImm32:
		return "copy_imm32"
	case kindCopyI64Imm32:
		return "copy_i64imm32"
	case kindCopyF64Imm32:
		return "copy_f64imm32"
	case kindCopy2:
		return "copy2"
	case kindCopySpan:
		return "copy_span"
	case kindCopySpanNonOverlapping:
		return "copy_span_non_overlapping"
	case kindCopyMany:
		return "copy_many"
	case kindCopyManyNonOverlapping:
		return "copy_many_non_overlapping"
	case kindReturn:
		return "return"
	case kindReturnReg:
		return "return_reg"
	case kindReturnReg2:
		return "return_reg2"
	case kindReturnReg3:
		return "return_reg3"
	case kindReturnImm32:
		return "return_imm32"
	case kindReturnI64Imm32:
		return "return_i64imm32"
	case kindReturnF64Imm32:
		return "return_f64imm32"
	case kindReturnSpan:
		return "return_span"
	case kindReturnMany:
		return "return_many"
	case kindReturnNez:
		return "return_nez"
	case kindReturnNezReg:
		return "return_nez_reg"
	case kindReturnNezReg2:
		return "return_nez_reg2"
	case kindReturnNezImm32:
		return "return_nez_imm32"
	case kindReturnNezI64Imm32:
		return "return_nez_i64imm32"
	case kindReturnNezF64Imm32:
		return "return_nez_f64imm32"
	case kindReturnNezSpan:
		return "return_nez_span"
	case kindReturnNezMany:
		return "return_nez_many"
	case kindRegister:
		return "register"
	case kindRegister2:
		return "register2"
	case kindRegister3:
		return "register3"
	case kindRegisterList:
		return "register_list"
	case kindConsumeFuel:
		return "consume_fuel"
	case kindBitwise:
		return "bitwise"
	case kindCompare:
		return "compare"
	case kindBranch:
		return "branch"
	case kindBranchUnary:
		return "branch_unary"
	case kindBranchBitwise:
		return "branch_bitwise"
	case kindBranchCompare:
		return "branch_compare"
	default:
		return fmt.Sprintf("instrKind(%d)", uint8(k))
	}
}

// bitOp selects And/Or/Xor within kindBitwise/kindBranchBitwise.
type bitOp uint8

const (
	bitAnd bitOp = iota
	bitOr
	bitXor
)

func (b bitOp) String() string {
	switch b {
	case bitAnd:
		return "and"
	case bitOr:
		return "or"
	case bitXor:
		return "xor"
	default:
		return fmt.Sprintf("bitOp(%d)", uint8(b))
	}
}

// cmpOp selects the comparison predicate within kindCompare/kindBranchCompare.
// Integer widths use the full set; float widths use only cmpEq, cmpNe,
// cmpLtS (as plain Lt), cmpLeS (as plain Le), cmpGtS (as plain Gt), cmpGeS
// (as plain Ge) — floats have no unsigned comparisons (spec §3).
type cmpOp uint8

const (
	cmpEq cmpOp = iota
	cmpNe
	cmpLtS
	cmpLtU
	cmpLeS
	cmpLeU
	cmpGtS
	cmpGtU
	cmpGeS
	cmpGeU
)

func (c cmpOp) String() string {
	switch c {
	case cmpEq:
		return "eq"
	case cmpNe:
		return "ne"
	case cmpLtS:
		return "lt_s"
	case cmpLtU:
		return "lt_u"
	case cmpLeS:
		return "le_s"
	case cmpLeU:
		return "le_u"
	case cmpGtS:
		return "gt_s"
	case cmpGtU:
		return "gt_u"
	case cmpGeS:
		return "ge_s"
	case cmpGeU:
		return "ge_u"
	default:
		return fmt.Sprintf("cmpOp(%d)", uint8(c))
	}
}

// invert returns the logically negated predicate, used by compare+branch
// fusion to rewrite `cmp ; branch_eqz` into a single fused branch on the
// inverted predicate (spec §4.8).
func (c cmpOp) invert() cmpOp {
	switch c {
	case cmpEq:
		return cmpNe
	case cmpNe:
		return cmpEq
	case cmpLtS:
		return cmpGeS
	case cmpLtU:
		return cmpGeU
	case cmpLeS:
		return cmpGtS
	case cmpLeU:
		return cmpGtU
	case cmpGtS:
		return cmpLeS
	case cmpGtU:
		return cmpLeU
	case cmpGeS:
		return cmpLtS
	case cmpGeU:
		return cmpLtU
	default:
		panic(fmt.Sprintf("rie: BUG: invert of unknown cmpOp %v", c))
	}
}

// operandWidth selects I32/I64/F32/F64 within kindCompare/kindBranchCompare.
type operandWidth uint8

const (
	widthI32 operandWidth = iota
	widthI64
	widthF32
	widthF64
)

func (w operandWidth) String() string {
	switch w {
	case widthI32:
		return "i32"
	case widthI64:
		return "i64"
	case widthF32:
		return "f32"
	case widthF64:
		return "f64"
	default:
		return fmt.Sprintf("operandWidth(%d)", uint8(w))
	}
}

func (w operandWidth) isFloat() bool {
	return w == widthF32 || w == widthF64
}

func (w operandWidth) isInt() bool {
	return w == widthI32 || w == widthI64
}
