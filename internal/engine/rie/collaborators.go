package rie

// ValueStack is the external collaborator owned by the translator and
// borrowed mutably across every encode call. The encoder never retains it
// between calls (spec §5 "Shared resources").
//
// Grounded on the "Consumed from ValueStack" contract in spec.md §6.
type ValueStack interface {
	// AllocConst allocates a constant-pool slot for v and returns a
	// register in RegisterSpaceConst.
	AllocConst(v UntypedValue) (Register, error)
	// GetRegisterSpace classifies reg. Stable through a function
	// translation.
	GetRegisterSpace(reg Register) RegisterSpace
	// FinalizeAlloc must be called before any DefragRegister call.
	FinalizeAlloc()
	// DefragRegister remaps reg after FinalizeAlloc has compacted the
	// preservation arena.
	DefragRegister(reg Register) Register
}

// ModuleHeader is read-only function metadata for the translator. Nothing in
// this package consults it: relinkResult takes no header, and the kinds it
// relinks (copies, bitwise, compare) include no call opcodes.
//
// Grounded on the "Consumed from ModuleHeader" contract in spec.md §6.
type ModuleHeader interface {
	// FunctionReturnCount returns the number of values the function at
	// funcIdx declares as its result arity.
	FunctionReturnCount(funcIdx uint32) int
}

// FuelCosts is the fuel-metering cost table consulted by fuel accounting.
//
// Grounded on the "Consumed from FuelCosts" contract in spec.md §6.
type FuelCosts interface {
	// Base is the baseline cost charged per instruction.
	Base() uint64
	// FuelForCopies is the amortized cost for an n-way copy/return.
	FuelForCopies(n uint64) uint64
}
