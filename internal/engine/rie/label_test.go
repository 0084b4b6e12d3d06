package rie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelRegistryResolvesAlreadyPinnedLabelImmediately(t *testing.T) {
	var r LabelRegistry
	label := r.NewLabel()
	r.PinLabel(label, InstrFromUsize(10))

	offset, err := r.TryResolveLabelFor(label, InstrFromUsize(7))
	require.NoError(t, err)
	assert.Equal(t, NewBranchOffset(InstrFromUsize(7), InstrFromUsize(10)), offset)
}

func TestLabelRegistryRecordsPendingUserForUnresolvedLabel(t *testing.T) {
	var r LabelRegistry
	label := r.NewLabel()

	offset, err := r.TryResolveLabelFor(label, InstrFromUsize(3))
	require.NoError(t, err)
	assert.False(t, offset.IsInitialized())

	r.PinLabel(label, InstrFromUsize(20))
	resolved, err := r.ResolvedUsers()
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, InstrFromUsize(3), resolved[0].User)
	assert.Equal(t, NewBranchOffset(InstrFromUsize(3), InstrFromUsize(20)), resolved[0].Offset)
}

func TestLabelRegistryResolvedUsersErrorsOnNeverPinnedLabel(t *testing.T) {
	var r LabelRegistry
	label := r.NewLabel()
	_, err := r.TryResolveLabelFor(label, InstrFromUsize(1))
	require.NoError(t, err)

	_, err = r.ResolvedUsers()
	require.Error(t, err)
	var encErr *EncoderError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, ErrUnresolvedLabel, encErr.Kind)
}

func TestLabelRegistryPinLabelPanicsOnDoublePin(t *testing.T) {
	var r LabelRegistry
	label := r.NewLabel()
	r.PinLabel(label, InstrFromUsize(1))
	assert.Panics(t, func() {
		r.PinLabel(label, InstrFromUsize(2))
	})
}

func TestLabelRegistryTryPinLabelIsIdempotent(t *testing.T) {
	var r LabelRegistry
	label := r.NewLabel()
	r.TryPinLabel(label, InstrFromUsize(1))
	r.TryPinLabel(label, InstrFromUsize(99))

	offset, err := r.TryResolveLabelFor(label, InstrFromUsize(0))
	require.NoError(t, err)
	assert.Equal(t, NewBranchOffset(InstrFromUsize(0), InstrFromUsize(1)), offset)
}
