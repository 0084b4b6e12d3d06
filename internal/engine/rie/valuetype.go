package rie

import "math"

// ValueType describes one of the Wasm numeric or reference value types that
// can flow through a Provider or be returned by a function.
//
// Grounded on the teacher's api.ValueType (api/wasm.go): "this is a type
// alias as it is easier to encode and decode in the binary format", using
// the same Wasm binary-format tag bytes rather than an arbitrary local
// numbering.
type ValueType byte

const (
	// ValueTypeI32 is a 32-bit integer.
	ValueTypeI32 ValueType = 0x7f
	// ValueTypeI64 is a 64-bit integer.
	ValueTypeI64 ValueType = 0x7e
	// ValueTypeF32 is a 32-bit floating point number.
	ValueTypeF32 ValueType = 0x7d
	// ValueTypeF64 is a 64-bit floating point number.
	ValueTypeF64 ValueType = 0x7c
	// ValueTypeFuncref is a funcref type. Not present in api.ValueType
	// (wazero surfaces it via a separate RefType at the API boundary) but
	// needed here since Provider constants can carry function references;
	// 0x70 is the standard Wasm binary-format funcref tag.
	ValueTypeFuncref ValueType = 0x70
	// ValueTypeExternref is an externref type.
	ValueTypeExternref ValueType = 0x6f
)

func (t ValueType) String() string {
	switch t {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	case ValueTypeFuncref:
		return "funcref"
	case ValueTypeExternref:
		return "externref"
	default:
		return "unknown"
	}
}

// UntypedValue is an untyped 64-bit bit pattern, the constant-pool payload
// type shared by every numeric and reference Wasm value. Grounded on the
// teacher's EncodeI32/DecodeF64-style free functions in api/wasm.go,
// reshaped as methods on a dedicated type the way wasmi's UntypedValue
// carries constant-pool and Provider payloads in instr_encoder.rs.
type UntypedValue uint64

// UntypedValueFromI32 encodes v as an UntypedValue.
func UntypedValueFromI32(v int32) UntypedValue { return UntypedValue(uint32(v)) }

// UntypedValueFromI64 encodes v as an UntypedValue.
func UntypedValueFromI64(v int64) UntypedValue { return UntypedValue(uint64(v)) }

// UntypedValueFromF32 encodes v as an UntypedValue.
func UntypedValueFromF32(v float32) UntypedValue { return UntypedValue(math.Float32bits(v)) }

// UntypedValueFromF64 encodes v as an UntypedValue.
func UntypedValueFromF64(v float64) UntypedValue { return UntypedValue(math.Float64bits(v)) }

// I32 decodes the UntypedValue as an int32.
func (v UntypedValue) I32() int32 { return int32(uint32(v)) }

// I64 decodes the UntypedValue as an int64.
func (v UntypedValue) I64() int64 { return int64(v) }

// F32 decodes the UntypedValue as a float32.
func (v UntypedValue) F32() float32 { return math.Float32frombits(uint32(v)) }

// F64 decodes the UntypedValue as a float64.
func (v UntypedValue) F64() float64 { return math.Float64frombits(uint64(v)) }
