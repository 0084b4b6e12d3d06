package rie

import "math"

// BranchOffset is the wide, signed branch displacement produced by the
// label registry's resolution. It is initialized to an uninitialized
// sentinel when a branch targets a not-yet-pinned label, then patched once
// the label resolves.
type BranchOffset int32

// uninitializedBranchOffset is the sentinel BranchOffset a forward branch
// gets before its label resolves. Grounded on the Open Question in spec.md
// §3 ("an uninitialized sentinel offset; later patched"); wasmi zero-inits
// and the invariant that every sentinel is overwritten by
// updateBranchOffsets is the contract we enforce via LabelRegistry.
const uninitializedBranchOffset BranchOffset = 0

// NewBranchOffset computes the signed displacement from user to target.
func NewBranchOffset(user, target Instr) BranchOffset {
	return BranchOffset(int64(target) - int64(user))
}

// IsInitialized reports whether the offset differs from the zero sentinel.
// A resolved offset of 0 (a branch to its own position) also reports false.
// A freshly uninitialized offset that is never patched indicates a bug in
// the label registry (every pending user must be visited by
// LabelRegistry.ResolvedUsers before update_branch_offsets finishes).
func (o BranchOffset) IsInitialized() bool {
	return o != uninitializedBranchOffset
}

// BranchOffset16 is the narrow, 16-bit signed displacement embedded
// directly in compact branch/fused-branch instruction variants.
type BranchOffset16 int16

// NewBranchOffset16 converts a wide BranchOffset to its narrow form. The
// second return is false if offset does not fit in 16 bits; callers must
// fall back to an unfused, wide-offset encoding in that case (spec §4.8).
func NewBranchOffset16(offset BranchOffset) (BranchOffset16, bool) {
	if offset < math.MinInt16 || offset > math.MaxInt16 {
		return 0, false
	}
	return BranchOffset16(offset), true
}
