package rie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCopyElidesSelfCopy(t *testing.T) {
	e := NewEncoder(newFakeValueStack())
	err := e.EncodeCopy(NoFuel(), Register(1), RegisterProvider(Register(1)))
	require.NoError(t, err)
	assert.Equal(t, 0, e.instrs.len())
}

func TestEncodeCopyRegisterToRegister(t *testing.T) {
	e := NewEncoder(newFakeValueStack())
	err := e.EncodeCopy(NoFuel(), Register(2), RegisterProvider(Register(1)))
	require.NoError(t, err)
	require.Equal(t, 1, e.instrs.len())
	word := e.instrs.get(InstrFromUsize(0))
	assert.Equal(t, kindCopy, word.kind)
	assert.Equal(t, Register(2), word.result)
	assert.Equal(t, Register(1), word.lhs)
}

func TestEncodeCopyNarrowsI64ConstThatFitsIn32Bits(t *testing.T) {
	e := NewEncoder(newFakeValueStack())
	err := e.EncodeCopy(NoFuel(), Register(0), ConstProvider(ValueTypeI64, UntypedValueFromI64(42)))
	require.NoError(t, err)
	word := e.instrs.get(InstrFromUsize(0))
	assert.Equal(t, kindCopyI64Imm32, word.kind)
	assert.Equal(t, int64(42), word.imm32)
}

func TestEncodeCopyFallsBackToConstSlotForOutOfRangeI64(t *testing.T) {
	stack := newFakeValueStack()
	e := NewEncoder(stack)
	huge := int64(1) << 40
	err := e.EncodeCopy(NoFuel(), Register(0), ConstProvider(ValueTypeI64, UntypedValueFromI64(huge)))
	require.NoError(t, err)
	word := e.instrs.get(InstrFromUsize(0))
	assert.Equal(t, kindCopy, word.kind)
	assert.Equal(t, stack.constBase, word.lhs)
	require.Len(t, stack.allocated, 1)
	assert.Equal(t, huge, stack.allocated[0].I64())
}

func TestEncodeCopyAlwaysSpillsReferenceTypeConstants(t *testing.T) {
	stack := newFakeValueStack()
	e := NewEncoder(stack)
	err := e.EncodeCopy(NoFuel(), Register(0), ConstProvider(ValueTypeExternref, UntypedValue(7)))
	require.NoError(t, err)
	word := e.instrs.get(InstrFromUsize(0))
	assert.Equal(t, kindCopy, word.kind)
	require.Len(t, stack.allocated, 1)
}

func TestEncodeCopyBumpsBaseFuel(t *testing.T) {
	e := NewEncoder(newFakeValueStack())
	fuelHandle, err := e.PushInstr(ConsumeFuel(0))
	require.NoError(t, err)
	e.ResetLastInstr()
	fuel := FuelAt(fuelHandle, fakeFuelCosts{})

	require.NoError(t, e.EncodeCopy(fuel, Register(2), RegisterProvider(Register(1))))
	assert.Equal(t, uint64(1), e.instrs.get(fuelHandle).fuel)
}

func TestEncodeCopiesPeelsNoOpPrefix(t *testing.T) {
	e := NewEncoder(newFakeValueStack())
	dst := NewRegisterSpan(Register(0))
	values := []Provider{
		RegisterProvider(Register(0)),
		RegisterProvider(Register(5)),
	}
	require.NoError(t, e.EncodeCopies(NoFuel(), dst, values))
	require.Equal(t, 1, e.instrs.len())
	word := e.instrs.get(InstrFromUsize(0))
	assert.Equal(t, kindCopy, word.kind)
	assert.Equal(t, Register(1), word.result)
	assert.Equal(t, Register(5), word.lhs)
}

func TestEncodeCopiesEmptyIsNoOp(t *testing.T) {
	e := NewEncoder(newFakeValueStack())
	require.NoError(t, e.EncodeCopies(NoFuel(), NewRegisterSpan(0), nil))
	assert.Equal(t, 0, e.instrs.len())
}

func TestEncodeCopiesTwoElidesWhenSecondAlreadyInPlace(t *testing.T) {
	e := NewEncoder(newFakeValueStack())
	dst := NewRegisterSpan(Register(10))
	values := []Provider{RegisterProvider(Register(3)), RegisterProvider(Register(11))}
	require.NoError(t, e.EncodeCopies(NoFuel(), dst, values))
	require.Equal(t, 1, e.instrs.len())
	word := e.instrs.get(InstrFromUsize(0))
	assert.Equal(t, kindCopy, word.kind)
	assert.Equal(t, Register(10), word.result)
	assert.Equal(t, Register(3), word.lhs)
}

func TestEncodeCopiesTwoEmitsCopy2(t *testing.T) {
	e := NewEncoder(newFakeValueStack())
	dst := NewRegisterSpan(Register(10))
	values := []Provider{RegisterProvider(Register(3)), RegisterProvider(Register(4))}
	require.NoError(t, e.EncodeCopies(NoFuel(), dst, values))
	require.Equal(t, 1, e.instrs.len())
	word := e.instrs.get(InstrFromUsize(0))
	assert.Equal(t, kindCopy2, word.kind)
	assert.Equal(t, Register(3), word.lhs)
	assert.Equal(t, Register(4), word.rhs)
}

func TestEncodeCopiesThreeOrMoreContiguousRegistersEmitsSpan(t *testing.T) {
	e := NewEncoder(newFakeValueStack())
	dst := NewRegisterSpan(Register(0))
	values := []Provider{
		RegisterProvider(Register(10)),
		RegisterProvider(Register(11)),
		RegisterProvider(Register(12)),
	}
	require.NoError(t, e.EncodeCopies(NoFuel(), dst, values))
	require.Equal(t, 1, e.instrs.len())
	word := e.instrs.get(InstrFromUsize(0))
	assert.Equal(t, kindCopySpanNonOverlapping, word.kind)
	assert.Equal(t, uint16(3), word.spanLen)
}

func TestEncodeCopiesNonSpanFallsBackToCopyMany(t *testing.T) {
	e := NewEncoder(newFakeValueStack())
	dst := NewRegisterSpan(Register(0))
	values := []Provider{
		RegisterProvider(Register(10)),
		ConstProvider(ValueTypeI32, UntypedValueFromI32(1)),
		RegisterProvider(Register(12)),
	}
	require.NoError(t, e.EncodeCopies(NoFuel(), dst, values))
	// head word (two inline registers) + one register continuation word.
	require.Equal(t, 2, e.instrs.len())
	word := e.instrs.get(InstrFromUsize(0))
	assert.Equal(t, kindCopyManyNonOverlapping, word.kind)
}

func TestHasOverlappingCopySpansDetectsDownwardShift(t *testing.T) {
	dst := NewRegisterSpan(Register(2))
	src := NewRegisterSpan(Register(0))
	assert.True(t, hasOverlappingCopySpans(dst, src, 3))
}

func TestHasOverlappingCopySpansNoHazardWhenDisjoint(t *testing.T) {
	dst := NewRegisterSpan(Register(10))
	src := NewRegisterSpan(Register(0))
	assert.False(t, hasOverlappingCopySpans(dst, src, 3))
}

func TestHasOverlappingCopySpansNoHazardForIdenticalSpans(t *testing.T) {
	span := NewRegisterSpan(Register(5))
	assert.False(t, hasOverlappingCopySpans(span, span, 4))
}

func TestEncodeCopySpanChoosesOverlappingVariantWhenHazardPresent(t *testing.T) {
	e := NewEncoder(newFakeValueStack())
	dst := NewRegisterSpan(Register(1))
	src := NewRegisterSpan(Register(0))
	require.NoError(t, e.EncodeCopySpan(NoFuel(), dst, src, 3))
	word := e.instrs.get(InstrFromUsize(0))
	assert.Equal(t, kindCopySpan, word.kind)
}

func TestEncodeCopySpanChargesSeparateBaseAndCopiesFuel(t *testing.T) {
	e := NewEncoder(newFakeValueStack())
	fuelHandle, err := e.PushInstr(ConsumeFuel(0))
	require.NoError(t, err)
	e.ResetLastInstr()
	fuel := FuelAt(fuelHandle, fakeFuelCosts{})

	dst := NewRegisterSpan(Register(10))
	src := NewRegisterSpan(Register(0))
	require.NoError(t, e.EncodeCopySpan(fuel, dst, src, 5))
	// base (1) + fuel_for_copies((5-2)+3) = 1 + 6 = 7, under fakeFuelCosts'
	// identity FuelForCopies.
	assert.Equal(t, uint64(7), e.instrs.get(fuelHandle).fuel)
}

func TestHasOverlappingCopiesEmptyIsNeverOverlapping(t *testing.T) {
	dst := NewRegisterSpan(Register(0))
	assert.False(t, hasOverlappingCopies(dst, nil))
}

func TestHasOverlappingCopiesForwardReferenceIsNotAHazard(t *testing.T) {
	// [reg0, reg1] into span(0): each provider reads its own not-yet-
	// overwritten slot or a not-yet-reached later slot. No prior
	// destination is read, so no hazard.
	dst := NewRegisterSpan(Register(0))
	providers := []Provider{
		RegisterProvider(Register(0)),
		RegisterProvider(Register(1)),
	}
	assert.False(t, hasOverlappingCopies(dst, providers))
}

func TestHasOverlappingCopiesConstProvidersAreNeverAHazard(t *testing.T) {
	dst := NewRegisterSpan(Register(0))
	providers := []Provider{
		ConstProvider(ValueTypeI32, UntypedValueFromI32(10)),
		ConstProvider(ValueTypeI32, UntypedValueFromI32(20)),
	}
	assert.False(t, hasOverlappingCopies(dst, providers))
}

func TestHasOverlappingCopiesDetectsReadOfPriorDestinationSlot(t *testing.T) {
	// index 1 reads register 0, which is index 0's destination slot,
	// already overwritten by the time index 1 copies into it.
	dst := NewRegisterSpan(Register(0))
	providers := []Provider{
		ConstProvider(ValueTypeI32, UntypedValueFromI32(10)),
		RegisterProvider(Register(0)),
	}
	assert.True(t, hasOverlappingCopies(dst, providers))
}

func TestHasOverlappingCopiesDetectsRepeatedPriorSlotRead(t *testing.T) {
	dst := NewRegisterSpan(Register(0))
	providers := []Provider{
		RegisterProvider(Register(0)),
		RegisterProvider(Register(0)),
	}
	assert.True(t, hasOverlappingCopies(dst, providers))
}

func TestHasOverlappingCopiesDetectsHazardWithNonZeroBase(t *testing.T) {
	dst := NewRegisterSpan(Register(3))
	providers := []Provider{
		RegisterProvider(Register(2)),
		RegisterProvider(Register(3)),
		RegisterProvider(Register(2)),
	}
	assert.True(t, hasOverlappingCopies(dst, providers))
}

func TestHasOverlappingCopiesDetectsHazardAmongOutOfRangeTail(t *testing.T) {
	// A mix of out-of-span (negative, far-future) registers and one read of
	// an already-overwritten prior slot (register 4 == dst+1, overwritten
	// at index 1): the hazard must still be found regardless of the other
	// out-of-range entries.
	dst := NewRegisterSpan(Register(3))
	providers := []Provider{
		RegisterProvider(Register(-1)),
		RegisterProvider(Register(10)),
		RegisterProvider(Register(2)),
		RegisterProvider(Register(4)),
	}
	assert.True(t, hasOverlappingCopies(dst, providers))
}

func TestHasOverlappingCopiesNoHazardWithSelfAndFutureSlots(t *testing.T) {
	// Each register either reads its own destination slot (self-copy, not
	// a hazard) or lies entirely outside the destination span, so this
	// list is safe for the non-overlapping fast path.
	dst := NewRegisterSpan(Register(4))
	providers := []Provider{
		RegisterProvider(Register(8)),
		RegisterProvider(Register(5)),
		RegisterProvider(Register(2)),
	}
	assert.False(t, hasOverlappingCopies(dst, providers))
}

func TestHasOverlappingCopiesNoHazardWhenSourcesOutsideSpan(t *testing.T) {
	dst := NewRegisterSpan(Register(0))
	providers := []Provider{
		RegisterProvider(Register(100)),
		RegisterProvider(Register(101)),
	}
	assert.False(t, hasOverlappingCopies(dst, providers))
}

func TestEncodeCopyManyWithConstProviderStillEncodes(t *testing.T) {
	e := NewEncoder(newFakeValueStack())
	dst := NewRegisterSpan(Register(0))
	providers := []Provider{
		RegisterProvider(Register(0)),
		ConstProvider(ValueTypeI32, UntypedValueFromI32(1)),
		RegisterProvider(Register(2)),
	}
	// Not a contiguous ascending register span (middle is a const), so the
	// no-op-span-elide path isn't taken.
	require.NoError(t, e.EncodeCopyMany(NoFuel(), dst, providers))
	// head word (two inline registers) + one register continuation word.
	assert.Equal(t, 2, e.instrs.len())
}

func TestEncodeCopyManyChunksRegisterListContinuations(t *testing.T) {
	stack := newFakeValueStack()
	e := NewEncoder(stack)
	dst := NewRegisterSpan(Register(0))
	providers := []Provider{
		RegisterProvider(Register(50)),
		RegisterProvider(Register(51)),
		RegisterProvider(Register(52)),
		RegisterProvider(Register(53)),
		RegisterProvider(Register(54)),
	}
	require.NoError(t, e.EncodeCopyMany(NoFuel(), dst, providers))
	// head word + one RegisterThree continuation carrying the remaining 3.
	require.Equal(t, 2, e.instrs.len())
	head := e.instrs.get(InstrFromUsize(0))
	assert.Equal(t, kindCopyManyNonOverlapping, head.kind)
	tail := e.instrs.get(InstrFromUsize(1))
	assert.Equal(t, kindRegister3, tail.kind)
}
