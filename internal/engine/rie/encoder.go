package rie

// Encoder is the top-level register-machine instruction encoder: it owns
// the growing instruction sequence for the function currently being
// translated, the label registry for that function, and the bookkeeping
// peephole optimization needs to relink or preserve the previous
// instruction's result register.
//
// Grounded on wasmi's InstrEncoder (instr_encoder.rs), restructured as a
// single Go struct the way internal/engine/wazevo/backend/machine.go's
// Machine struct bundles a CompileResult, a RegAlloc function, and ISA
// backend state behind one encode/resolve API.
type Encoder struct {
	instrs    InstrSequence
	labels    LabelRegistry
	lastInstr Instr
	hasLast   bool
	stack     ValueStack
	defrag    defragState
}

// NewEncoder returns an empty encoder ready to translate one function
// against the given value stack collaborator.
func NewEncoder(stack ValueStack) *Encoder {
	return &Encoder{stack: stack}
}

// Reset empties the encoder for reuse translating the next function,
// without releasing the underlying slice capacity.
func (e *Encoder) Reset() {
	e.instrs.reset()
	e.labels.Reset()
	e.lastInstr = 0
	e.hasLast = false
	e.defrag.reset()
}

// NewLabel allocates a new unresolved label scoped to the function
// currently being translated.
func (e *Encoder) NewLabel() LabelRef {
	return e.labels.NewLabel()
}

// PinLabel pins label to the next instruction that will be pushed.
func (e *Encoder) PinLabel(label LabelRef) {
	e.labels.PinLabel(label, e.instrs.nextInstr())
}

// PinLabelIfUnpinned pins label to the next instruction unless it is
// already pinned, for join points reached by more than one predecessor.
func (e *Encoder) PinLabelIfUnpinned(label LabelRef) {
	e.labels.TryPinLabel(label, e.instrs.nextInstr())
}

// NextInstr returns the handle the next pushed word would receive, without
// pushing anything.
func (e *Encoder) NextInstr() Instr {
	return e.instrs.nextInstr()
}

// PushInstr appends word to the sequence and records it as the
// peephole-visible "last instruction" for a subsequent encode_local_set to
// examine. Returns word's handle.
func (e *Encoder) PushInstr(word Instruction) (Instr, error) {
	handle, err := e.instrs.push(word)
	if err != nil {
		return 0, err
	}
	e.lastInstr = handle
	e.hasLast = true
	return handle, nil
}

// AppendInstr appends word without disturbing the peephole-visible "last
// instruction" bookkeeping. Used for continuation words (register_list
// tails) and other instructions that are never themselves a relink target.
func (e *Encoder) AppendInstr(word Instruction) (Instr, error) {
	return e.instrs.push(word)
}

// ResetLastInstr clears the peephole-visible "last instruction" marker,
// forcing the next encode_local_set call to fall back to a plain copy. Used
// at points where control flow joins and the "previous" instruction is no
// longer a reliable optimization target (spec §4.7).
func (e *Encoder) ResetLastInstr() {
	e.hasLast = false
}

// Drain empties the sequence and returns every word in order, after
// patching every pending branch offset. Intended to be called exactly once
// per translated function, after every label has been pinned.
func (e *Encoder) Drain() ([]Instruction, error) {
	if err := e.updateBranchOffsets(); err != nil {
		return nil, err
	}
	return e.instrs.drain(), nil
}

// updateBranchOffsets patches every pending forward-branch instruction with
// its now-resolvable offset. Must run after every label in the function has
// been pinned; surfaces ErrUnresolvedLabel otherwise.
func (e *Encoder) updateBranchOffsets() error {
	resolved, err := e.labels.ResolvedUsers()
	if err != nil {
		return err
	}
	for _, r := range resolved {
		word := e.instrs.get(r.User)
		if err := word.updateBranchOffset(r.Offset); err != nil {
			return err
		}
	}
	return nil
}
