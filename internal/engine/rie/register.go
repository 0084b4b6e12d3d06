package rie

import "fmt"

// Register is a 16-bit signed index into one of the register spaces
// (RegisterSpace) the translator's value stack partitions registers into. It is the unit
// of addressing for every instruction operand and destination.
//
// Grounded on the bit-packed regalloc.VReg in
// internal/engine/wazevo/backend/regalloc/reg.go: a small value type
// wrapping a numeric index, with a classification accessor supplied by an
// external owner (there, the register allocator; here, the ValueStack).
type Register int16

// RegisterSpace classifies the provenance of a Register. Classification is
// supplied by the ValueStack and is stable for the duration of a function
// translation.
type RegisterSpace byte

const (
	// RegisterSpaceLocal holds named Wasm locals and function parameters.
	// Writes to this space are externally observable.
	RegisterSpaceLocal RegisterSpace = iota
	// RegisterSpaceDynamic holds operand-stack temporaries.
	RegisterSpaceDynamic
	// RegisterSpaceStorage holds preservation/spill slots for saved locals.
	RegisterSpaceStorage
	// RegisterSpaceConst holds constant-pool slots allocated via
	// ValueStack.AllocConst.
	RegisterSpaceConst
)

func (s RegisterSpace) String() string {
	switch s {
	case RegisterSpaceLocal:
		return "local"
	case RegisterSpaceDynamic:
		return "dynamic"
	case RegisterSpaceStorage:
		return "storage"
	case RegisterSpaceConst:
		return "const"
	default:
		return fmt.Sprintf("RegisterSpace(%d)", byte(s))
	}
}

// Next returns the register immediately following r. Used when walking a
// RegisterSpan one slot at a time.
func (r Register) Next() Register {
	return r + 1
}

// remapHead rewrites the span's head register through f, used by
// defragmentation to remap a span after the value stack compacts the
// preservation arena.
func (s *RegisterSpan) remapHead(f func(Register) Register) {
	s.head = f(s.head)
}

// RegisterSpan is a contiguous range of registers [head, head+len) used as
// the destination of a copy or return sequence. The length is carried
// externally (by a RegisterSpanIter or an explicit count) rather than in
// the span itself, mirroring wasmi's RegisterSpan/RegisterSpanIter split.
type RegisterSpan struct {
	head Register
}

// NewRegisterSpan creates a RegisterSpan starting at head.
func NewRegisterSpan(head Register) RegisterSpan {
	return RegisterSpan{head: head}
}

// Head returns the first register of the span.
func (s RegisterSpan) Head() Register {
	return s.head
}

// Iter returns a RegisterSpanIter over the first n registers of the span.
func (s RegisterSpan) Iter(n uint16) RegisterSpanIter {
	return RegisterSpanIter{span: s, len: n}
}

// RegisterSpanIter iterates a RegisterSpan of known length, yielding
// registers head, head+1, ..., head+len-1. It also supports advancing the
// head (Next) and slicing (Tail). The copy encoder's no-op prefix peel does
// not use it: peelNoOpCopyPrefix advances a plain RegisterSpan.
type RegisterSpanIter struct {
	span RegisterSpan
	len  uint16
}

// NewRegisterSpanIter builds an iterator of length n over span.
func NewRegisterSpanIter(span RegisterSpan, n uint16) RegisterSpanIter {
	return RegisterSpanIter{span: span, len: n}
}

// Span returns the underlying RegisterSpan.
func (it RegisterSpanIter) Span() RegisterSpan {
	return it.span
}

// Len returns the number of registers remaining in the iterator.
func (it RegisterSpanIter) Len() uint16 {
	return it.len
}

// LenAsU16 returns Len as a uint16, the width the span-carrying instruction
// variants encode.
func (it RegisterSpanIter) LenAsU16() uint16 {
	return it.len
}

// IsEmpty reports whether the iterator has no registers left.
func (it RegisterSpanIter) IsEmpty() bool {
	return it.len == 0
}

// Next advances the iterator by one register, shrinking it in place.
func (it *RegisterSpanIter) Next() {
	if it.len == 0 {
		return
	}
	it.span.head++
	it.len--
}

// Tail returns a copy of it advanced by k registers.
func (it RegisterSpanIter) Tail(k uint16) RegisterSpanIter {
	for ; k > 0 && it.len > 0; k-- {
		it.Next()
	}
	return it
}

// ProviderKind distinguishes the two shapes a Provider can take.
type ProviderKind byte

const (
	ProviderKindRegister ProviderKind = iota
	ProviderKindConst
)

// Provider is a source operand: either a register or a typed constant
// value. Mirrors wasmi's TypedProvider (Provider<TypedValue>).
type Provider struct {
	kind ProviderKind
	reg  Register
	val  UntypedValue
	ty   ValueType
}

// RegisterProvider builds a Provider backed by a register.
func RegisterProvider(r Register) Provider {
	return Provider{kind: ProviderKindRegister, reg: r}
}

// ConstProvider builds a Provider backed by a typed constant value.
func ConstProvider(ty ValueType, v UntypedValue) Provider {
	return Provider{kind: ProviderKindConst, val: v, ty: ty}
}

// IsRegister reports whether p is backed by a register.
func (p Provider) IsRegister() bool { return p.kind == ProviderKindRegister }

// Register returns the backing register. Panics if p is not a register
// provider; callers must check IsRegister first.
func (p Provider) Register() Register {
	if p.kind != ProviderKindRegister {
		panic("rie: Provider.Register called on a constant provider")
	}
	return p.reg
}

// Const returns the backing constant value and type. Panics if p is not a
// constant provider.
func (p Provider) Const() (ValueType, UntypedValue) {
	if p.kind != ProviderKindConst {
		panic("rie: Provider.Const called on a register provider")
	}
	return p.ty, p.val
}

// registerSpanFromProviders returns a RegisterSpanIter iff every provider in
// values is a register forming a contiguous, ascending span starting at the
// first value's register. Returns false otherwise.
//
// Grounded on RegisterSpanIter::from_providers in instr_encoder.rs, used by
// both the copy and return encoders to detect when a general value list can
// collapse into a cheaper span-based instruction.
func registerSpanFromProviders(values []Provider) (RegisterSpanIter, bool) {
	if len(values) == 0 {
		return RegisterSpanIter{}, false
	}
	first, ok := values[0].tryRegister()
	if !ok {
		return RegisterSpanIter{}, false
	}
	for i, v := range values[1:] {
		r, ok := v.tryRegister()
		if !ok || int32(r) != int32(first)+int32(i)+1 {
			return RegisterSpanIter{}, false
		}
	}
	return NewRegisterSpanIter(NewRegisterSpan(first), uint16(len(values))), true
}

func (p Provider) tryRegister() (Register, bool) {
	if p.kind == ProviderKindRegister {
		return p.reg, true
	}
	return 0, false
}
