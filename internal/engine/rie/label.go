package rie

import "fmt"

// LabelRef identifies a label created by LabelRegistry.NewLabel. It is
// opaque to callers; the only operations on it go through the registry.
type LabelRef uint32

// labelState is the tri-state lifecycle of a Label (spec §3 "Label"):
// unresolved-no-users, unresolved-with-users, or pinned.
type labelState byte

const (
	labelUnresolved labelState = iota
	labelPinned
)

type pendingUser struct {
	user Instr
}

type labelEntry struct {
	state  labelState
	target Instr // valid only once state == labelPinned
	users  []pendingUser
}

// LabelRegistry issues label handles, tracks branch instructions that
// reference a label before it is pinned, and resolves their offsets once
// every label has a concrete target instruction index.
//
// Grounded two ways: the closure-based "onLabelAddressResolved" forward
// fixup table in internal/engine/interpreter/interpreter.go's lowerIR
// (register a callback per pending branch, fire all callbacks for a label
// once it's placed), and wagon's patch-oriented branch fixup in
// other_examples/253ba51e_go-interpreter-wagon__exec-internal-compile-compile.go.go
// (track byte offsets, patch addresses once known). We use neither
// closures nor raw byte patching directly — instead a handle-keyed pending
// list, since our resolution step (updateBranchOffsets) mutates
// already-pushed Instruction words in place rather than closing over a
// not-yet-existent slice cell.
type LabelRegistry struct {
	labels []labelEntry
}

// NewLabel creates a new unresolved label with no position and no users.
func (r *LabelRegistry) NewLabel() LabelRef {
	r.labels = append(r.labels, labelEntry{state: labelUnresolved})
	return LabelRef(len(r.labels) - 1)
}

// Reset clears every label, returning the registry to its zero state.
func (r *LabelRegistry) Reset() {
	r.labels = r.labels[:0]
}

func (r *LabelRegistry) entry(label LabelRef) *labelEntry {
	return &r.labels[label]
}

// TryResolveLabel resolves label for a branch instruction about to be
// pushed at the sequence's next position.
func (r *LabelRegistry) TryResolveLabel(label LabelRef, nextInstr Instr) (BranchOffset, error) {
	return r.TryResolveLabelFor(label, nextInstr)
}

// TryResolveLabelFor resolves label for the branch instruction at user.
//
// If label is already pinned to target T, returns T-U where U is user,
// directly. Otherwise records (label, user) as a pending user and returns
// an uninitialized sentinel offset; ResolvedUsers later computes the real
// offset, which the encoder's updateBranchOffsets writes into the word.
//
// Grounded on try_resolve_label_for in instr_encoder.rs, which is the
// primitive both the plain branch path (try_resolve_label) and the
// compare+branch fusion path (which resolves for the fusion target, not a
// freshly pushed instruction) share — see SPEC_FULL.md §7.
func (r *LabelRegistry) TryResolveLabelFor(label LabelRef, user Instr) (BranchOffset, error) {
	e := r.entry(label)
	if e.state == labelPinned {
		return NewBranchOffset(user, e.target), nil
	}
	e.users = append(e.users, pendingUser{user: user})
	return uninitializedBranchOffset, nil
}

// TryPinLabel pins label to target. Idempotent: does nothing if label is
// already pinned.
func (r *LabelRegistry) TryPinLabel(label LabelRef, target Instr) {
	e := r.entry(label)
	if e.state == labelPinned {
		return
	}
	e.state = labelPinned
	e.target = target
}

// PinLabel pins label to target. Panics if label is already pinned: a
// double-pin is a programmer-invariant violation (spec §3).
func (r *LabelRegistry) PinLabel(label LabelRef, target Instr) {
	e := r.entry(label)
	if e.state == labelPinned {
		panic(fmt.Sprintf("rie: BUG: label %d already pinned to instruction %d", label, e.target))
	}
	e.state = labelPinned
	e.target = target
}

// ResolvedUser is one pending branch site paired with its resolved offset.
type ResolvedUser struct {
	User   Instr
	Offset BranchOffset
}

// ResolvedUsers computes (user, target-user) for every pending branch site
// across every label. Every label must be pinned first; an unresolved
// label surfaces ErrUnresolvedLabel.
func (r *LabelRegistry) ResolvedUsers() ([]ResolvedUser, error) {
	var out []ResolvedUser
	for i := range r.labels {
		e := &r.labels[i]
		if len(e.users) == 0 {
			continue
		}
		if e.state != labelPinned {
			return nil, newError(ErrUnresolvedLabel, "label %d was never pinned", i)
		}
		for _, u := range e.users {
			out = append(out, ResolvedUser{User: u.user, Offset: NewBranchOffset(u.user, e.target)})
		}
	}
	return out, nil
}
