// Package wasmi is the public surface of the register-machine instruction
// encoder: a thin re-export of internal/engine/rie for translators that
// live outside this module, mirroring how the teacher's root wazero.go
// re-exports internal/wasm's engine types rather than asking callers to
// reach into internal/.
package wasmi

import "github.com/yagehu/wasmi/internal/engine/rie"

// Encoder builds a validated stream of register-machine instructions from
// a translator's stack-machine operations. See rie.Encoder for the full
// operation set (copies, returns, branches, local.set/tee fusion).
type Encoder = rie.Encoder

// NewEncoder returns an Encoder bound to stack, which supplies constant
// allocation, register-space classification, and defragmentation.
func NewEncoder(stack rie.ValueStack) *Encoder {
	return rie.NewEncoder(stack)
}

// Register identifies an operand slot in one of the four register spaces
// (local, dynamic, storage, const).
type Register = rie.Register

// RegisterSpace classifies a Register's storage (spec §3 "Register space").
type RegisterSpace = rie.RegisterSpace

// Provider is either a Register or an inline constant value supplied where
// an operation expects an operand (spec §3 "Provider").
type Provider = rie.Provider

// RegisterProvider wraps a register as a Provider.
func RegisterProvider(r Register) Provider { return rie.RegisterProvider(r) }

// ConstProvider wraps an inline constant as a Provider.
func ConstProvider(t rie.ValueType, v rie.UntypedValue) Provider {
	return rie.ConstProvider(t, v)
}

// LabelRef identifies a not-yet-resolved branch target (spec §3 "Label").
type LabelRef = rie.LabelRef

// FuelInfo threads a translator's optional fuel metering context through an
// encode call. Pass rie.NoFuel() when fuel metering is disabled.
type FuelInfo = rie.FuelInfo

// NoFuel returns a FuelInfo indicating fuel metering is disabled.
func NoFuel() FuelInfo { return rie.NoFuel() }
