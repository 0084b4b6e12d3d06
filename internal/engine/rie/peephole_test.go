package rie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLocalSetElidesSelfAssignment(t *testing.T) {
	e := NewEncoder(newFakeValueStack())
	require.NoError(t, e.EncodeLocalSet(NoFuel(), Register(3), RegisterProvider(Register(3)), nil))
	assert.Equal(t, 0, e.instrs.len())
}

func TestEncodeLocalSetRelinksPrecedingDynamicResult(t *testing.T) {
	e := NewEncoder(newFakeValueStack())
	_, err := e.PushInstr(I32And(Register(5), Register(1), Register(2)))
	require.NoError(t, err)

	require.NoError(t, e.EncodeLocalSet(NoFuel(), Register(10), RegisterProvider(Register(5)), nil))
	require.Equal(t, 1, e.instrs.len())
	word := e.instrs.get(InstrFromUsize(0))
	assert.Equal(t, Register(10), word.result)
}

func TestEncodeLocalSetDoesNotRelinkWhenValueIsAlreadyLocal(t *testing.T) {
	stack := newFakeValueStack()
	stack.space[Register(5)] = RegisterSpaceLocal
	e := NewEncoder(stack)
	_, err := e.PushInstr(I32And(Register(5), Register(1), Register(2)))
	require.NoError(t, err)

	require.NoError(t, e.EncodeLocalSet(NoFuel(), Register(10), RegisterProvider(Register(5)), nil))
	require.Equal(t, 2, e.instrs.len())
	copyWord := e.instrs.get(InstrFromUsize(1))
	assert.Equal(t, kindCopy, copyWord.kind)
	assert.Equal(t, Register(10), copyWord.result)
	assert.Equal(t, Register(5), copyWord.lhs)
}

func TestEncodeLocalSetFallsBackToCopyWhenNoPrecedingInstruction(t *testing.T) {
	e := NewEncoder(newFakeValueStack())
	require.NoError(t, e.EncodeLocalSet(NoFuel(), Register(10), RegisterProvider(Register(5)), nil))
	word := e.instrs.get(InstrFromUsize(0))
	assert.Equal(t, kindCopy, word.kind)
}

func TestEncodeLocalSetConstantEmitsNarrowestImmediateWord(t *testing.T) {
	e := NewEncoder(newFakeValueStack())
	require.NoError(t, e.EncodeLocalSet(NoFuel(), Register(10), ConstProvider(ValueTypeI32, UntypedValueFromI32(42)), nil))
	word := e.instrs.get(InstrFromUsize(0))
	assert.Equal(t, kindCopyImm32, word.kind)
	assert.Equal(t, int64(42), word.imm32)
}

func TestEncodeLocalSetOutOfRangeI64ConstantAllocatesConstSlotInsteadOfTruncating(t *testing.T) {
	stack := newFakeValueStack()
	e := NewEncoder(stack)
	require.NoError(t, e.EncodeLocalSet(NoFuel(), Register(10), ConstProvider(ValueTypeI64, UntypedValueFromI64(1<<40)), nil))
	word := e.instrs.get(InstrFromUsize(0))
	assert.Equal(t, kindCopy, word.kind)
	assert.Equal(t, Register(10), word.result)
	assert.Equal(t, stack.constBase, word.lhs)
	assert.Equal(t, UntypedValueFromI64(1<<40), stack.allocated[0])
}

func TestEncodeLocalSetPreservationInsertsBeforeRelinkedInstruction(t *testing.T) {
	e := NewEncoder(newFakeValueStack())
	_, err := e.PushInstr(I32And(Register(5), Register(1), Register(2)))
	require.NoError(t, err)

	preserve := Register(20)
	require.NoError(t, e.EncodeLocalSet(NoFuel(), Register(10), RegisterProvider(Register(5)), &preserve))

	require.Equal(t, 2, e.instrs.len())
	// The preservation copy lands first, the relinked instruction second.
	preserveWord := e.instrs.get(InstrFromUsize(0))
	assert.Equal(t, kindCopy, preserveWord.kind)
	assert.Equal(t, Register(20), preserveWord.result)
	assert.Equal(t, Register(10), preserveWord.lhs)

	relinked := e.instrs.get(InstrFromUsize(1))
	assert.Equal(t, kindBitwise, relinked.kind)
	assert.Equal(t, Register(10), relinked.result)
}

func TestEncodeLocalSetPreservationAppendsInFallbackPath(t *testing.T) {
	e := NewEncoder(newFakeValueStack())
	preserve := Register(20)
	require.NoError(t, e.EncodeLocalSet(NoFuel(), Register(10), ConstProvider(ValueTypeI32, UntypedValueFromI32(1)), &preserve))

	require.Equal(t, 2, e.instrs.len())
	preserveWord := e.instrs.get(InstrFromUsize(0))
	assert.Equal(t, kindCopy, preserveWord.kind)
	assert.Equal(t, Register(20), preserveWord.result)
	assert.Equal(t, Register(10), preserveWord.lhs)

	setWord := e.instrs.get(InstrFromUsize(1))
	assert.Equal(t, kindCopyImm32, setWord.kind)
}

func TestEncodeLocalSetRelinkBailsBeyondMaxWidthWhenPreserving(t *testing.T) {
	e := NewEncoder(newFakeValueStack())
	target, err := e.PushInstr(I32And(Register(5), Register(1), Register(2)))
	require.NoError(t, err)
	// Push filler words until the gap between target and the next slot
	// reaches maxRelinkableWidth, so the width check bails the relink.
	for e.instrs.nextInstr().Distance(target) < maxRelinkableWidth {
		_, err := e.AppendInstr(I32Or(Register(6), Register(1), Register(2)))
		require.NoError(t, err)
	}
	e.lastInstr = target
	e.hasLast = true

	preserve := Register(20)
	require.NoError(t, e.EncodeLocalSet(NoFuel(), Register(10), RegisterProvider(Register(5)), &preserve))

	last := e.instrs.get(InstrFromUsize(e.instrs.len() - 1))
	assert.Equal(t, kindCopy, last.kind)
	assert.Equal(t, Register(10), last.result)
	assert.Equal(t, Register(5), last.lhs)
}

func TestNotifyPreservedRegisterTracksEarliestHandle(t *testing.T) {
	e := NewEncoder(newFakeValueStack())
	e.NotifyPreservedRegister(InstrFromUsize(5))
	e.NotifyPreservedRegister(InstrFromUsize(2))
	e.NotifyPreservedRegister(InstrFromUsize(9))
	assert.True(t, e.defrag.has)
	assert.Equal(t, InstrFromUsize(2), e.defrag.earliest)
}
