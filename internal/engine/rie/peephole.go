package rie

// maxRelinkableWidth bounds how far back a local.set may reach to retarget
// the immediately preceding instruction's result register. Reaching back
// further than this many pushed words stops paying for itself as a code
// size win (spec §4.7's "width-preservation heuristic"). The check applies
// only when a preservation copy is also inserted: then distance(last, next)
// >= maxRelinkableWidth bails to a plain copy instead of relinking.
const maxRelinkableWidth = 4

// EncodeLocalSet encodes `local[localReg] = value`, preferring (in order):
//  1. eliding the instruction entirely when value is already localReg;
//  2. relinking the immediately preceding instruction's fresh result
//     register directly to localReg, if nothing has observed that result
//     yet and the two instructions are close enough to be worth it;
//  3. a plain copy/immediate-load into localReg.
//
// If preserveInto is non-nil, localReg's current value is preserved into
// *preserveInto via a copy — the translator passes preserveInto only when
// it has determined (via its own value-stack bookkeeping, out of this
// package's scope per spec §6) that some pending operand-stack entry still
// aliases localReg's current contents.
//
// Grounded on encode_local_set in instr_encoder.rs. Two details the
// distilled spec leaves implicit are resolved here against the Rust
// source (SPEC_FULL.md §4 points 1-2):
//   - which preservation insertion shape is used depends on which path is
//     taken: the optimized (relink) path inserts the preservation copy via
//     push_before at last_instr's original handle (so the relinked
//     instruction ends up immediately after it); the fallback path simply
//     appends the preservation copy, since there is no relink target whose
//     position needs protecting;
//   - notify_preserved_register is always called with the handle the
//     preservation copy itself occupies, which for the push_before case is
//     the *original* last_instr handle (push_before leaves the new word at
//     that index and shifts the prior occupant to index+1).
func (e *Encoder) EncodeLocalSet(fuel FuelInfo, localReg Register, value Provider, preserveInto *Register) error {
	if value.IsRegister() && value.Register() == localReg {
		return nil
	}

	if value.IsRegister() {
		reg := value.Register()
		// The optimized (relink) path only applies when reg is not itself
		// in local space: relinking would otherwise retarget the
		// instruction that computed reg to write localReg directly,
		// silently dropping the write to reg that other code may still
		// observe (spec §4.7).
		if e.stack.GetRegisterSpace(reg) != RegisterSpaceLocal &&
			e.tryRelinkLocalSet(reg, localReg, preserveInto != nil) {
			if preserveInto != nil {
				return e.insertPreservationBeforeLast(fuel, localReg, *preserveInto)
			}
			return nil
		}

		if preserveInto != nil {
			if err := e.appendPreservation(fuel, localReg, *preserveInto); err != nil {
				return err
			}
		}
		if err := e.bumpFuelBase(fuel); err != nil {
			return err
		}
		_, err := e.PushInstr(Copy(localReg, reg))
		return err
	}

	if preserveInto != nil {
		if err := e.appendPreservation(fuel, localReg, *preserveInto); err != nil {
			return err
		}
	}
	// A constant value never goes through relinking (there is no producing
	// instruction to retarget); delegate to EncodeCopy, which already
	// picks the narrowest immediate form or falls back to a constant-pool
	// slot for out-of-range i64/f64 and reference-type constants.
	return e.EncodeCopy(fuel, localReg, value)
}

// tryRelinkLocalSet attempts to retarget the last pushed instruction's
// result register from reg to localReg in place. Requires a last
// instruction to exist and that its opcode supports relinking; the width
// check against maxRelinkableWidth only applies when a preservation copy
// is also being inserted (checkWidth true), since that is the case where
// push_before's O(n) shift cost is actually paid (spec §4.7).
func (e *Encoder) tryRelinkLocalSet(reg, localReg Register, checkWidth bool) bool {
	if !e.hasLast {
		return false
	}
	if checkWidth && e.instrs.nextInstr().Distance(e.lastInstr) >= maxRelinkableWidth {
		return false
	}
	return e.instrs.get(e.lastInstr).relinkResult(reg, localReg)
}

// insertPreservationBeforeLast inserts a copy of localReg's current value
// into preserve immediately before the (already relinked) last instruction,
// so the relinked instruction ends up directly after its own preservation
// copy, then records the preservation at the original (pre-shift) handle.
func (e *Encoder) insertPreservationBeforeLast(fuel FuelInfo, localReg, preserve Register) error {
	if err := e.bumpFuelBase(fuel); err != nil {
		return err
	}
	original := e.lastInstr
	shifted, err := e.instrs.pushBefore(original, Copy(preserve, localReg))
	if err != nil {
		return err
	}
	e.NotifyPreservedRegister(original)
	e.lastInstr = shifted
	return nil
}

// appendPreservation emits a copy of localReg's current value into preserve
// at the current end of the sequence (the fallback-path shape: there is no
// relink target to insert ahead of), recording the preservation at the
// handle it was pushed to.
func (e *Encoder) appendPreservation(fuel FuelInfo, localReg, preserve Register) error {
	if err := e.bumpFuelBase(fuel); err != nil {
		return err
	}
	handle, err := e.PushInstr(Copy(preserve, localReg))
	if err != nil {
		return err
	}
	e.NotifyPreservedRegister(handle)
	return nil
}
