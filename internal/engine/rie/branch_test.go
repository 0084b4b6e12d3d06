package rie

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBranchOffsetComputesSignedDisplacement(t *testing.T) {
	assert.Equal(t, BranchOffset(5), NewBranchOffset(InstrFromUsize(10), InstrFromUsize(15)))
	assert.Equal(t, BranchOffset(-5), NewBranchOffset(InstrFromUsize(15), InstrFromUsize(10)))
	assert.Equal(t, BranchOffset(0), NewBranchOffset(InstrFromUsize(10), InstrFromUsize(10)))
}

func TestNewBranchOffset16RoundTripsWithinRange(t *testing.T) {
	narrow, ok := NewBranchOffset16(BranchOffset(math.MaxInt16))
	assert.True(t, ok)
	assert.Equal(t, BranchOffset16(math.MaxInt16), narrow)

	narrow, ok = NewBranchOffset16(BranchOffset(math.MinInt16))
	assert.True(t, ok)
	assert.Equal(t, BranchOffset16(math.MinInt16), narrow)
}

func TestNewBranchOffset16FailsOutsideRange(t *testing.T) {
	_, ok := NewBranchOffset16(BranchOffset(math.MaxInt16 + 1))
	assert.False(t, ok)

	_, ok = NewBranchOffset16(BranchOffset(math.MinInt16 - 1))
	assert.False(t, ok)
}

func TestUninitializedBranchOffsetIsNotInitialized(t *testing.T) {
	var offset BranchOffset
	assert.False(t, offset.IsInitialized())
	assert.True(t, BranchOffset(1).IsInitialized())
}
