package rie

import "math"

// EncodeCopy encodes dst = value, eliding the instruction entirely when
// value is a register equal to dst (a self-copy is a no-op per spec §4.3
// point 1). For a constant value, the narrowest immediate-carrying copy
// that can represent it exactly is chosen; a constant that cannot be
// represented that way (an out-of-range i64/f64, or any reference type)
// is instead materialized into a constant-pool register via the bound
// ValueStack and copied from there.
//
// Grounded on encode_copy in instr_encoder.rs.
func (e *Encoder) EncodeCopy(fuel FuelInfo, dst Register, value Provider) error {
	if r, ok := value.tryRegister(); ok {
		if r == dst {
			return nil
		}
		if err := e.bumpFuelBase(fuel); err != nil {
			return err
		}
		_, err := e.PushInstr(Copy(dst, r))
		return err
	}

	if err := e.bumpFuelBase(fuel); err != nil {
		return err
	}
	if word, ok := copyImmWord(dst, value); ok {
		_, err := e.PushInstr(word)
		return err
	}
	constReg, err := e.valueStackAllocConst(value)
	if err != nil {
		return err
	}
	_, err = e.PushInstr(Copy(dst, constReg))
	return err
}

// copyImmWord selects the narrowest copy_*imm32 variant that can carry
// value's constant exactly: a plain 32-bit immediate for I32/F32 (always
// exact, since both are 32 bits wide), a sign-extended 32-bit immediate
// for I64/F64 when the value round-trips through it exactly, and no word
// at all (false) for out-of-range I64/F64 constants or any reference
// type — those always take the constant-pool-slot path (spec §4.3 point
// 2: "Reference types and out-of-range floats/longs always take the
// constant-slot path").
func copyImmWord(dst Register, value Provider) (Instruction, bool) {
	ty, v := value.Const()
	switch ty {
	case ValueTypeI32:
		return CopyImm32(dst, v.I32()), true
	case ValueTypeF32:
		return CopyImm32(dst, int32(math.Float32bits(v.F32()))), true
	case ValueTypeI64:
		i64 := v.I64()
		if narrow := int32(i64); int64(narrow) == i64 {
			return CopyI64Imm32(dst, narrow), true
		}
		return Instruction{}, false
	case ValueTypeF64:
		f64 := v.F64()
		if narrow := float32(f64); float64(narrow) == f64 {
			return CopyF64Imm32(dst, math.Float32bits(narrow)), true
		}
		return Instruction{}, false
	default: // ValueTypeFuncref, ValueTypeExternref
		return Instruction{}, false
	}
}

// EncodeCopies encodes a copy sequence of values into the contiguous span
// of len(values) registers starting at dst.Head(). Leading register-to-self
// no-ops are peeled off the front (advancing both the destination span and
// the value list in lockstep) before the remaining length selects among
// encode_copy, a possibly-elided copy2, and the span/many ladder.
//
// Grounded on encode_copies in instr_encoder.rs.
func (e *Encoder) EncodeCopies(fuel FuelInfo, dst RegisterSpan, values []Provider) error {
	dst, values = peelNoOpCopyPrefix(dst, values)

	switch len(values) {
	case 0:
		return nil
	case 1:
		return e.EncodeCopy(fuel, dst.Head(), values[0])
	case 2:
		if r, ok := values[1].tryRegister(); ok && r == dst.Head().Next() {
			return e.EncodeCopy(fuel, dst.Head(), values[0])
		}
		if err := e.bumpFuelBase(fuel); err != nil {
			return err
		}
		r0, err := e.providerToRegister(values[0])
		if err != nil {
			return err
		}
		r1, err := e.providerToRegister(values[1])
		if err != nil {
			return err
		}
		_, err = e.PushInstr(Copy2(dst, r0, r1))
		return err
	default:
		if span, ok := registerSpanFromProviders(values); ok {
			return e.EncodeCopySpan(fuel, dst, span.Span(), span.LenAsU16())
		}
		return e.EncodeCopyMany(fuel, dst, values)
	}
}

// peelNoOpCopyPrefix strips leading register-to-self copies from the front
// of values, advancing dst in lockstep. Mirrors instr_encoder.rs's
// recursive head-peel, implemented iteratively.
func peelNoOpCopyPrefix(dst RegisterSpan, values []Provider) (RegisterSpan, []Provider) {
	for len(values) > 0 {
		r, ok := values[0].tryRegister()
		if !ok || r != dst.Head() {
			break
		}
		dst = NewRegisterSpan(dst.Head().Next())
		values = values[1:]
	}
	return dst, values
}

// has_overlapping_copy_spans reports whether copying the len registers
// starting at src into the len registers starting at dst, in ascending
// register order, could read a register after an earlier copy in the same
// batch already overwrote it.
//
// A span-to-span copy only overlaps-dangerously when the destination head
// falls strictly inside the source span and strictly after its head — i.e.
// dst shifts the span downward into registers the copy hasn't read yet.
// Grounded on has_overlapping_copy_spans in instr_encoder.rs.
func hasOverlappingCopySpans(dst, src RegisterSpan, length uint16) bool {
	if length == 0 {
		return false
	}
	d, s := int32(dst.Head()), int32(src.Head())
	if d == s {
		return false
	}
	// Overlap can only cause a hazard when copying registers in ascending
	// order and the destination starts after the source but still within
	// the source's span: dst in (src, src+len).
	return d > s && d < s+int32(length)
}

// EncodeCopySpan encodes a copy of the length registers starting at src
// into the length registers starting at dst. When the caller cannot prove
// the spans are disjoint, overlap is detected and a safe (possibly
// reordered) span-copy variant is chosen instead of a non-overlapping fast
// path; when length is 0 or the spans are identical, nothing is emitted.
func (e *Encoder) EncodeCopySpan(fuel FuelInfo, dst, src RegisterSpan, length uint16) error {
	if length == 0 || dst.Head() == src.Head() {
		return nil
	}
	// spec §4.3: charge fuel base once, then copies_cost(rest+3) where rest
	// is the length beyond the two providers EncodeCopies already carries
	// inline (mirrors the return ladder's "len - 3 + 3" for its own three
	// inline slots).
	if err := e.bumpFuelBase(fuel); err != nil {
		return err
	}
	if err := e.bumpFuelCopies(fuel, uint64(length)-2+3); err != nil {
		return err
	}
	var word Instruction
	if hasOverlappingCopySpans(dst, src, length) {
		word = CopySpan(dst, src, length)
	} else {
		word = CopySpanNonOverlapping(dst, src, length)
	}
	_, err := e.PushInstr(word)
	return err
}

// hasOverlappingCopies is has_overlapping_copy_spans generalized to an
// explicit, possibly-discontiguous list of source providers being copied
// into the contiguous span starting at dst. A register-valued provider at
// list index i lands at dst+i; overlap exists if any register provider's
// source register equals a prior index's destination slot, one already
// overwritten earlier in the same pass.
//
// Grounded on has_overlapping_copies in instr_encoder.rs: for each i, if
// providers[i] is a register r with dst <= r < dst+i (a *prior* destination
// slot, strictly before the current index), then that slot has already
// been overwritten by an earlier copy in the same pass by the time index i
// would read it — a hazard. r == dst+i is the provider's own destination
// slot (a self-copy, not a hazard) and r > dst+i is a not-yet-written later
// slot (also not a hazard), so both fall through.
func hasOverlappingCopies(dst RegisterSpan, providers []Provider) bool {
	base := int32(dst.Head())
	for i, p := range providers {
		if !p.IsRegister() {
			continue
		}
		r := int32(p.Register())
		if r < base || r >= base+int32(i) {
			continue // not a prior destination slot: no hazard
		}
		return true
	}
	return false
}

// EncodeCopyMany encodes a copy of an explicit provider list into the
// contiguous span starting at dst. Register-valued providers that form a
// contiguous ascending run matching dst exactly are detected and elided
// (spec §4.3 "copy eliding"); otherwise a register-list word (possibly
// chunked via register/register2/register3 continuations) follows the
// primary copy_many/copy_many_non_overlapping word.
func (e *Encoder) EncodeCopyMany(fuel FuelInfo, dst RegisterSpan, providers []Provider) error {
	if len(providers) == 0 {
		return nil
	}
	if src, ok := registerSpanFromProviders(providers); ok && src.Span().Head() == dst.Head() {
		return nil
	}
	if err := e.bumpFuelBase(fuel); err != nil {
		return err
	}
	if err := e.bumpFuelCopies(fuel, uint64(len(providers))-2+3); err != nil {
		return err
	}

	overlapping := hasOverlappingCopies(dst, providers)

	// Const providers are materialized into constant-pool registers, since
	// copy_many/copy_many_non_overlapping carry only registers and no
	// immediates; the first two registers then go inline on the head word.
	regs := make([]Register, len(providers))
	for i, p := range providers {
		if p.IsRegister() {
			regs[i] = p.Register()
			continue
		}
		constReg, err := e.valueStackAllocConst(p)
		if err != nil {
			return err
		}
		regs[i] = constReg
	}

	var head Instruction
	if len(regs) == 1 {
		if overlapping {
			head = CopyMany(dst, regs[0], 0)
		} else {
			head = CopyManyNonOverlapping(dst, regs[0], 0)
		}
		_, err := e.PushInstr(head)
		return err
	}

	r0, r1 := regs[0], regs[1]
	if overlapping {
		head = CopyMany(dst, r0, r1)
	} else {
		head = CopyManyNonOverlapping(dst, r0, r1)
	}
	if _, err := e.PushInstr(head); err != nil {
		return err
	}
	rest := regs[2:]
	for len(rest) > 0 {
		word, n := RegisterList(rest)
		if _, err := e.AppendInstr(word); err != nil {
			return err
		}
		rest = rest[n:]
	}
	return nil
}

// valueStackAllocConst allocates a constant-pool register for a const
// provider via the bound ValueStack collaborator (spec §6 "Consumed from
// ValueStack").
func (e *Encoder) valueStackAllocConst(p Provider) (Register, error) {
	_, v := p.Const()
	return e.stack.AllocConst(v)
}
