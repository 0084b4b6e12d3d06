package rie

// FuseI32Eqz rewrites `dst = eqz(input)` by negating the instruction that
// most recently computed input in place, retargeting its result to dst,
// instead of emitting a separate comparison. Only the immediately
// preceding plain (non-eqz) i32 bitwise instruction qualifies; anything
// else falls back to the equivalent `i32.eq_imm16(dst, input, 0)` — eqz and
// eq-with-zero are the same predicate, so no dedicated unary opcode is
// needed (spec §3 "Opcode kind").
//
// Grounded on fuse_i32_eqz in instr_encoder.rs.
func (e *Encoder) FuseI32Eqz(fuel FuelInfo, dst, input Register) error {
	if e.hasLast {
		last := e.instrs.get(e.lastInstr)
		if last.kind == kindBitwise && last.result == input && !last.isEqz &&
			e.stack.GetRegisterSpace(last.result) != RegisterSpaceLocal {
			last.isEqz = true
			last.result = dst
			return nil
		}
	}
	if err := e.bumpFuelBase(fuel); err != nil {
		return err
	}
	_, err := e.PushInstr(I32EqImm16(dst, input, 0))
	return err
}

// fusionCandidate is the shape of the single preceding instruction that
// EncodeBranchEqz/EncodeBranchNez can fold into a fused branch word,
// captured before the label registry resolves this branch's target (so the
// eventual pending-user handle is registered against whichever instruction
// — the rewritten predecessor or a freshly pushed one — actually ends up
// carrying the branch offset).
type fusionCandidate struct {
	kind    instrKind // kindBitwise or kindCompare
	bitOp   bitOp
	cmpOp   cmpOp
	width   operandWidth
	isImm16 bool
	lhs, rhs Register
	imm16   int32
}

// branchFusionCandidate inspects the last pushed instruction and reports
// whether it can be folded into a fused branch testing condition against
// zero (wantNez selects nonzero vs zero).
//
// A bitwise candidate must have produced condition as a fresh, not-yet-eqz
// result and must be i32 (bitwise has no i64/float form in this ISA). A
// compare candidate must have produced condition as its fresh result; when
// wantNez is false (branch_eqz, i.e. "branch unless predicate held") the
// predicate must be inverted, which for floating-point operands is sound
// only for Eq/Ne — every other float predicate disagrees with its logical
// negation once a NaN operand forces every IEEE754 ordered comparison to
// false (spec §4.8).
func (e *Encoder) branchFusionCandidate(width operandWidth, condition Register, wantNez bool) (fusionCandidate, bool) {
	if !e.hasLast {
		return fusionCandidate{}, false
	}
	last := e.instrs.get(e.lastInstr)
	switch last.kind {
	case kindBitwise:
		if width != widthI32 || last.result != condition || last.isEqz {
			return fusionCandidate{}, false
		}
		if e.stack.GetRegisterSpace(last.result) == RegisterSpaceLocal {
			return fusionCandidate{}, false
		}
		return fusionCandidate{
			kind: kindBitwise, bitOp: last.bitOp, isImm16: last.isImm16,
			lhs: last.lhs, rhs: last.rhs, imm16: last.imm16,
		}, true
	case kindCompare:
		if last.result != condition {
			return fusionCandidate{}, false
		}
		if e.stack.GetRegisterSpace(last.result) == RegisterSpaceLocal {
			return fusionCandidate{}, false
		}
		op := last.cmpOp
		if !wantNez {
			if last.width.isFloat() && op != cmpEq && op != cmpNe {
				return fusionCandidate{}, false
			}
			op = op.invert()
		}
		return fusionCandidate{
			kind: kindCompare, cmpOp: op, width: last.width, isImm16: last.isImm16,
			lhs: last.lhs, rhs: last.rhs, imm16: last.imm16,
		}, true
	default:
		return fusionCandidate{}, false
	}
}

// toBranchWord builds the fused branch instruction for c, given the
// narrow offset and whether the branch fires on a truthy (nez) condition.
func (c fusionCandidate) toBranchWord(offset BranchOffset16, wantNez bool) Instruction {
	switch c.kind {
	case kindBitwise:
		eqz := !wantNez
		if c.isImm16 {
			return branchBitwiseImm16(c.bitOp, eqz, c.lhs, int16(c.imm16), offset)
		}
		return branchBitwiseReg(c.bitOp, eqz, c.lhs, c.rhs, offset)
	case kindCompare:
		if c.isImm16 {
			return branchCompareImm16(c.width, c.cmpOp, c.lhs, int16(c.imm16), offset)
		}
		return branchCompareReg(c.width, c.cmpOp, c.lhs, c.rhs, offset)
	default:
		panic("rie: BUG: toBranchWord called on a non-fusion candidate")
	}
}

// EncodeBranchEqz encodes a branch taken when condition (of the given
// width) is exactly zero, fusing the immediately preceding
// compare/bitwise instruction into the branch when legal.
func (e *Encoder) EncodeBranchEqz(fuel FuelInfo, label LabelRef, width operandWidth, condition Register) error {
	return e.encodeBranchUnaryFamily(fuel, label, width, condition, false)
}

// EncodeBranchNez encodes a branch taken when condition (of the given
// width) is nonzero, fusing the immediately preceding compare/bitwise
// instruction into the branch when legal.
func (e *Encoder) EncodeBranchNez(fuel FuelInfo, label LabelRef, width operandWidth, condition Register) error {
	return e.encodeBranchUnaryFamily(fuel, label, width, condition, true)
}

func (e *Encoder) encodeBranchUnaryFamily(fuel FuelInfo, label LabelRef, width operandWidth, condition Register, wantNez bool) error {
	if err := e.bumpFuelBase(fuel); err != nil {
		return err
	}

	candidate, fusable := e.branchFusionCandidate(width, condition, wantNez)

	var user Instr
	if fusable {
		user = e.lastInstr
	} else {
		user = e.instrs.nextInstr()
	}

	wide, err := e.labels.TryResolveLabelFor(label, user)
	if err != nil {
		return err
	}
	narrow, ok := NewBranchOffset16(wide)
	if !ok {
		return newError(ErrBranchOffsetOutOfRange, "branch offset %d does not fit in 16 bits", wide)
	}

	if fusable {
		*e.instrs.get(e.lastInstr) = candidate.toBranchWord(narrow, wantNez)
		return nil
	}

	var word Instruction
	switch width {
	case widthI32:
		if wantNez {
			word = BranchI32Nez(condition, narrow)
		} else {
			word = BranchI32Eqz(condition, narrow)
		}
	case widthI64:
		if wantNez {
			word = BranchI64Nez(condition, narrow)
		} else {
			word = BranchI64Eqz(condition, narrow)
		}
	default:
		panic("rie: BUG: branch_unary is only defined for i32/i64 conditions")
	}
	_, err = e.PushInstr(word)
	return err
}
