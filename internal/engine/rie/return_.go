package rie

import "math"

// EncodeReturn encodes a function return given its result providers,
// selecting the cheapest instruction variant the arity and operand shapes
// allow: no results, a single register/immediate, two or three registers
// inline (constants materialized into registers), a contiguous register
// span, or a general (possibly overlap-hazarding) list.
//
// Grounded on encode_return in instr_encoder.rs; the variant-selection
// ladder (arity 0/1/2/3/span/many) mirrors encode_return's own match on the
// provider slice shape. Arities 2 and 3 always resolve to return_reg2/
// return_reg3 — never return_many — since the source's [v0, v1] and
// [v0, v1, v2] arms convert every provider via provider2reg unconditionally;
// only arity >=4 can fall through to the span/many ladder.
func (e *Encoder) EncodeReturn(fuel FuelInfo, results []Provider) error {
	if len(results) >= 4 {
		// spec §4.4: the >=4 ladder rung charges base plus
		// copies_cost(len - 3 + 3), i.e. copies_cost(len).
		if err := e.bumpFuelBase(fuel); err != nil {
			return err
		}
		if err := e.bumpFuelCopies(fuel, uint64(len(results))); err != nil {
			return err
		}
		return e.encodeReturnMany(results)
	}
	if err := e.bumpFuelBase(fuel); err != nil {
		return err
	}
	word, err := e.returnWord(results)
	if err != nil {
		return err
	}
	_, err = e.PushInstr(word)
	return err
}

// returnWord selects the instruction for an arity-0/1/2/3 return. Arities 2
// and 3 materialize every provider into a register via providerToRegister
// before building the inline word.
func (e *Encoder) returnWord(results []Provider) (Instruction, error) {
	switch len(results) {
	case 0:
		return Return(), nil
	case 1:
		return e.singleResultReturn(results[0])
	case 2:
		r0, err := e.providerToRegister(results[0])
		if err != nil {
			return Instruction{}, err
		}
		r1, err := e.providerToRegister(results[1])
		if err != nil {
			return Instruction{}, err
		}
		return ReturnReg2(r0, r1), nil
	case 3:
		r0, err := e.providerToRegister(results[0])
		if err != nil {
			return Instruction{}, err
		}
		r1, err := e.providerToRegister(results[1])
		if err != nil {
			return Instruction{}, err
		}
		r2, err := e.providerToRegister(results[2])
		if err != nil {
			return Instruction{}, err
		}
		return ReturnReg3(r0, r1, r2), nil
	default:
		panic("rie: BUG: returnWord called with arity >= 4")
	}
}

// singleResultReturn builds the arity-1 return word. An I32/F32 constant
// always fits a plain 32-bit immediate; an I64/F64 constant uses the
// narrower imm32 form only when it round-trips exactly, and otherwise (like
// every FuncRef/ExternRef constant) is materialized into a constant-pool
// register via the bound ValueStack and returned as return_reg.
//
// Grounded on encode_return's single-constant match arm in instr_encoder.rs.
func (e *Encoder) singleResultReturn(p Provider) (Instruction, error) {
	if r, ok := p.tryRegister(); ok {
		return ReturnReg(r), nil
	}
	ty, v := p.Const()
	switch ty {
	case ValueTypeI64:
		i64 := v.I64()
		if narrow := int32(i64); int64(narrow) == i64 {
			return ReturnI64Imm32(narrow), nil
		}
	case ValueTypeF64:
		f64 := v.F64()
		if narrow := float32(f64); float64(narrow) == f64 {
			return ReturnF64Imm32(math.Float32bits(narrow)), nil
		}
	case ValueTypeFuncref, ValueTypeExternref:
		// always takes the constant-slot path below.
	default: // ValueTypeI32, ValueTypeF32: always exact in 32 bits.
		return ReturnImm32(int32(v.I32())), nil
	}
	r, err := e.valueStackAllocConst(p)
	if err != nil {
		return Instruction{}, err
	}
	return ReturnReg(r), nil
}

// encodeReturnMany handles the arity >=4 ladder rung: a contiguous
// ascending register span collapses to return_span; otherwise the first two
// results are carried inline on return_many and the remainder follows as
// register-list continuation words.
func (e *Encoder) encodeReturnMany(results []Provider) error {
	if span, ok := registerSpanFromProviders(results); ok {
		_, err := e.PushInstr(ReturnSpan(span.Span(), span.LenAsU16()))
		return err
	}
	r0, err := e.providerToRegister(results[0])
	if err != nil {
		return err
	}
	r1, err := e.providerToRegister(results[1])
	if err != nil {
		return err
	}
	return e.pushRegisterListFamily(ReturnMany(r0, r1), results[2:])
}

// providerToRegister returns p's backing register, allocating a
// constant-pool register via the bound ValueStack if p is a const
// provider. Used by the return_reg2/3 and return_many/return_nez_many
// paths, which carry no immediate slot of their own and so must
// materialize every operand as a register (spec §6 "Consumed from
// ValueStack").
func (e *Encoder) providerToRegister(p Provider) (Register, error) {
	if r, ok := p.tryRegister(); ok {
		return r, nil
	}
	return e.valueStackAllocConst(p)
}

// pushRegisterListFamily pushes word, then chunks rest into
// register/register2/register3 continuation words.
func (e *Encoder) pushRegisterListFamily(word Instruction, rest []Provider) error {
	if _, err := e.PushInstr(word); err != nil {
		return err
	}
	if len(rest) == 0 {
		return nil
	}
	regs := make([]Register, len(rest))
	for i, p := range rest {
		r, err := e.providerToRegister(p)
		if err != nil {
			return err
		}
		regs[i] = r
	}
	for len(regs) > 0 {
		tail, n := RegisterList(regs)
		if _, err := e.AppendInstr(tail); err != nil {
			return err
		}
		regs = regs[n:]
	}
	return nil
}

// EncodeReturnNez encodes a conditional return: if condition is nonzero,
// return with results; otherwise fall through. Mirrors EncodeReturn's
// variant-selection ladder with the condition register carried alongside,
// except the inline-register rung stops one arity earlier (0/1/2 inline,
// >=3 span/many) since condition occupies the slot return_reg3 would
// otherwise use for a third result.
//
// Grounded on encode_return_nez in instr_encoder.rs. Fuel is bumped
// unconditionally even when the branch is not taken at runtime: the source
// documents this as a conservative simplification (spec §4.4, Open
// Question (a)) rather than threading a branch-taken/not-taken cost split
// through fuel accounting.
func (e *Encoder) EncodeReturnNez(fuel FuelInfo, condition Register, results []Provider) error {
	if len(results) >= 3 {
		// spec §4.4: charges base plus copies_cost(len - 2 + 3), i.e.
		// copies_cost(len + 1).
		if err := e.bumpFuelBase(fuel); err != nil {
			return err
		}
		if err := e.bumpFuelCopies(fuel, uint64(len(results))+1); err != nil {
			return err
		}
		return e.encodeReturnNezMany(condition, results)
	}
	if err := e.bumpFuelBase(fuel); err != nil {
		return err
	}
	switch len(results) {
	case 0:
		_, err := e.PushInstr(ReturnNez(condition))
		return err
	case 1:
		word, err := e.singleResultReturnNez(condition, results[0])
		if err != nil {
			return err
		}
		_, err = e.PushInstr(word)
		return err
	default: // 2
		r0, err := e.providerToRegister(results[0])
		if err != nil {
			return err
		}
		r1, err := e.providerToRegister(results[1])
		if err != nil {
			return err
		}
		_, err = e.PushInstr(ReturnNezReg2(condition, r0, r1))
		return err
	}
}

// singleResultReturnNez is singleResultReturn's conditional-return
// counterpart: same imm32-fit-or-const-slot rule, condition carried
// alongside.
func (e *Encoder) singleResultReturnNez(condition Register, p Provider) (Instruction, error) {
	if r, ok := p.tryRegister(); ok {
		return ReturnNezReg(condition, r), nil
	}
	ty, v := p.Const()
	switch ty {
	case ValueTypeI64:
		i64 := v.I64()
		if narrow := int32(i64); int64(narrow) == i64 {
			return ReturnNezI64Imm32(condition, narrow), nil
		}
	case ValueTypeF64:
		f64 := v.F64()
		if narrow := float32(f64); float64(narrow) == f64 {
			return ReturnNezF64Imm32(condition, math.Float32bits(narrow)), nil
		}
	case ValueTypeFuncref, ValueTypeExternref:
		// always takes the constant-slot path below.
	default: // ValueTypeI32, ValueTypeF32: always exact in 32 bits.
		return ReturnNezImm32(condition, int32(v.I32())), nil
	}
	r, err := e.valueStackAllocConst(p)
	if err != nil {
		return Instruction{}, err
	}
	return ReturnNezReg(condition, r), nil
}

func (e *Encoder) encodeReturnNezMany(condition Register, results []Provider) error {
	if span, ok := registerSpanFromProviders(results); ok {
		_, err := e.PushInstr(ReturnNezSpan(condition, span.Span(), span.LenAsU16()))
		return err
	}
	r0, err := e.providerToRegister(results[0])
	if err != nil {
		return err
	}
	r1, err := e.providerToRegister(results[1])
	if err != nil {
		return err
	}
	return e.pushRegisterListFamily(ReturnNezMany(condition, r0, r1), results[2:])
}
