package rie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelinkResultRetargetsRelinkableKinds(t *testing.T) {
	word := Copy(Register(1), Register(2))
	assert.True(t, word.relinkResult(Register(1), Register(9)))
	assert.Equal(t, Register(9), word.result)
}

func TestRelinkResultFailsWhenOldResultDoesNotMatch(t *testing.T) {
	word := Copy(Register(1), Register(2))
	assert.False(t, word.relinkResult(Register(5), Register(9)))
	assert.Equal(t, Register(1), word.result)
}

func TestRelinkResultFailsForNonRelinkableKind(t *testing.T) {
	word := Branch(NewBranchOffset(InstrFromUsize(0), InstrFromUsize(1)))
	assert.False(t, word.relinkResult(Register(0), Register(9)))
}

func TestUpdateBranchOffsetPatchesWideBranch(t *testing.T) {
	word := Branch(BranchOffset(0))
	require.NoError(t, word.updateBranchOffset(BranchOffset(42)))
	assert.Equal(t, BranchOffset(42), word.offset)
}

func TestUpdateBranchOffsetPatchesNarrowBranch(t *testing.T) {
	word := BranchI32Eqz(Register(1), BranchOffset16(0))
	require.NoError(t, word.updateBranchOffset(BranchOffset(42)))
	assert.Equal(t, BranchOffset16(42), word.offset16)
}

func TestUpdateBranchOffsetErrorsWhenOutOfNarrowRange(t *testing.T) {
	word := BranchI32Eqz(Register(1), BranchOffset16(0))
	err := word.updateBranchOffset(BranchOffset(1 << 20))
	require.Error(t, err)
	var encErr *EncoderError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, ErrBranchOffsetOutOfRange, encErr.Kind)
}

func TestUpdateBranchOffsetPanicsOnNonBranchWord(t *testing.T) {
	word := Copy(Register(0), Register(1))
	assert.Panics(t, func() {
		_ = word.updateBranchOffset(BranchOffset(1))
	})
}

func TestBumpFuelConsumptionAccumulates(t *testing.T) {
	word := ConsumeFuel(10)
	require.NoError(t, word.bumpFuelConsumption(5))
	assert.Equal(t, uint64(15), word.fuel)
}

func TestBumpFuelConsumptionReportsOverflow(t *testing.T) {
	word := ConsumeFuel(^uint64(0))
	err := word.bumpFuelConsumption(1)
	require.Error(t, err)
	var encErr *EncoderError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, ErrFuelOverflow, encErr.Kind)
}

func TestVisitInputRegistersSkipsResultOnPlainCopy(t *testing.T) {
	word := Copy(Register(1), Register(2))
	var seen []Register
	word.visitInputRegisters(func(r *Register) { seen = append(seen, *r) }, nil)
	assert.Equal(t, []Register{2}, seen)
}

func TestVisitInputRegistersSkipsRhsWhenImm16(t *testing.T) {
	word := I32AndImm16(Register(1), Register(2), 7)
	var seen []Register
	word.visitInputRegisters(func(r *Register) { seen = append(seen, *r) }, nil)
	assert.Equal(t, []Register{2}, seen)
}

func TestDecodeRegisterListPanicsOnNonRegisterListWord(t *testing.T) {
	word := Copy(Register(0), Register(1))
	assert.Panics(t, func() {
		DecodeRegisterList(&word)
	})
}
