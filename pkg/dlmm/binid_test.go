package dlmm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinIDRoundTrip(t *testing.T) {
	for _, signed := range []int32{MinBinID, -1, 0, 1, MaxBinID} {
		unsigned, err := ToUnsignedBinID(signed)
		require.NoError(t, err)
		back, err := ToSignedBinID(unsigned)
		require.NoError(t, err)
		assert.Equal(t, signed, back)
	}

	unsigned, err := ToUnsignedBinID(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(CenterBinID), unsigned)
}

func TestBinIDRange(t *testing.T) {
	_, err := ToUnsignedBinID(MaxBinID + 1)
	assert.ErrorIs(t, err, ErrInvalidBinID)
	_, err = ToUnsignedBinID(MinBinID - 1)
	assert.ErrorIs(t, err, ErrInvalidBinID)
	_, err = ToSignedBinID(NumOfBins)
	assert.ErrorIs(t, err, ErrInvalidBinID)

	assert.True(t, ValidBinID(0))
	assert.True(t, ValidBinID(MinBinID))
	assert.True(t, ValidBinID(MaxBinID))
	assert.False(t, ValidBinID(MaxBinID+1))
	assert.False(t, ValidBinID(MinBinID-1))
}

func TestPositionOf(t *testing.T) {
	assert.Equal(t, BelowActive, PositionOf(-3, 0))
	assert.Equal(t, AtActive, PositionOf(0, 0))
	assert.Equal(t, AboveActive, PositionOf(7, 0))
}
