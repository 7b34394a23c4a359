package dlmm

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBinFactors(t *testing.T) {
	factors, err := BuildBinFactors(100)
	require.NoError(t, err)
	require.Len(t, factors, NumOfBins)

	assert.True(t, factors[CenterBinID].Equal(math.NewInt(PriceScale)))
	// One step up multiplies by 1.01, floored.
	assert.Equal(t, int64(101_000_000), factors[CenterBinID+1].Int64())
	// One step down divides by 1.01, floored.
	assert.Equal(t, int64(99_009_900), factors[CenterBinID-1].Int64())

	require.NoError(t, ValidateBinFactors(100, factors))
}

func TestBuildBinFactorsRejectsBadStep(t *testing.T) {
	_, err := BuildBinFactors(0)
	assert.ErrorIs(t, err, ErrInvalidBinStep)
	_, err = BuildBinFactors(FeeScale)
	assert.ErrorIs(t, err, ErrInvalidBinStep)
}

func TestValidateBinFactors(t *testing.T) {
	base, err := BuildBinFactors(25)
	require.NoError(t, err)

	clone := func() FactorTable {
		out := make(FactorTable, len(base))
		copy(out, base)
		return out
	}

	t.Run("wrong length", func(t *testing.T) {
		err := ValidateBinFactors(25, base[:NumOfBins-1])
		assert.ErrorIs(t, err, ErrInvalidBinFactorsLength)
	})

	t.Run("zero first factor", func(t *testing.T) {
		factors := clone()
		factors[0] = math.ZeroInt()
		err := ValidateBinFactors(25, factors)
		assert.ErrorIs(t, err, ErrInvalidFirstBinFactor)
	})

	t.Run("wrong center factor", func(t *testing.T) {
		factors := clone()
		factors[CenterBinID] = math.NewInt(PriceScale + 1)
		err := ValidateBinFactors(25, factors)
		assert.ErrorIs(t, err, ErrInvalidCenterBinFactor)
	})

	t.Run("unsorted", func(t *testing.T) {
		factors := clone()
		factors[10] = factors[9]
		err := ValidateBinFactors(25, factors)
		assert.ErrorIs(t, err, ErrUnsortedBinFactorsList)
	})

	t.Run("negative factor", func(t *testing.T) {
		factors := clone()
		factors[700] = math.NewInt(-1)
		err := ValidateBinFactors(25, factors)
		assert.ErrorIs(t, err, ErrInvalidBinFactor)
	})
}

func TestFactorsStrictlyAscending(t *testing.T) {
	factors, err := BuildBinFactors(1)
	require.NoError(t, err)
	for i := 1; i < NumOfBins; i++ {
		require.True(t, factors[i].GT(factors[i-1]), "factor %d not above factor %d", i, i-1)
	}
}

func TestBuildBinFactorsOverflowingStep(t *testing.T) {
	// Near-doubling per bin blows past 128 bits long before the top of
	// the table; generation must fail cleanly rather than wrap.
	_, err := BuildBinFactors(9_999)
	assert.ErrorIs(t, err, ErrInvalidBinFactor)
}
