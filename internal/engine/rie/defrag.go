package rie

// defragState tracks the earliest instruction a register preservation
// touched since the last defragmentation pass, so DefragRegisters can skip
// re-scanning a prefix that provably holds no stale register (spec §4.11,
// "optimize defragmentation via earliest affected instruction tracking").
//
// Grounded on defrag_registers / notify_preserved_register in
// instr_encoder.rs, which track a single "first preserved instruction"
// watermark for exactly this reason.
type defragState struct {
	has      bool
	earliest Instr
}

func (d *defragState) notify(instr Instr) {
	if !d.has || instr < d.earliest {
		d.earliest = instr
		d.has = true
	}
}

func (d *defragState) reset() {
	d.has = false
}

// NotifyPreservedRegister records that the instruction at instr now holds
// (or reads) a freshly preserved register, widening the defragmentation
// watermark if instr precedes it.
//
// The caller must pass the handle where the preservation copy itself was
// inserted — which, after InstrSequence.pushBefore's shift, is the
// *original* last-instruction handle (pushBefore places the new word at
// that index and shifts the previously-resident word to index+1). Passing
// the shifted handle instead would let DefragRegisters skip over the very
// instruction that introduced the new register, confirmed against
// instr_encoder.rs lines ~775-786 (see SPEC_FULL.md §4 point 1).
func (e *Encoder) NotifyPreservedRegister(instr Instr) {
	e.defrag.notify(instr)
}

// DefragRegisters remaps every register reference from the watermark
// instruction onward through stack's post-allocation mapping. A no-op if no
// preservation happened since the last call (or ever).
//
// Grounded on defrag_registers in instr_encoder.rs: FinalizeAlloc runs
// first so ValueStack.DefragRegister's answers are stable, then every
// instruction from the watermark forward has its *input* register operands
// and span heads rewritten in place — destinations are never touched here,
// since local-space assignments are already finalized by the time
// defragmentation runs (spec §5 "Defragmentation hook").
func (e *Encoder) DefragRegisters(stack ValueStack) {
	if !e.defrag.has {
		return
	}
	stack.FinalizeAlloc()
	remapReg := func(r *Register) { *r = stack.DefragRegister(*r) }
	remapSpan := func(s *RegisterSpan) { s.remapHead(stack.DefragRegister) }
	words := e.instrs.tailFrom(e.defrag.earliest)
	for i := range words {
		words[i].visitInputRegisters(remapReg, remapSpan)
	}
	e.defrag.reset()
}
