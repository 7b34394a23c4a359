package dlmm

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinPriceCenter(t *testing.T) {
	factors, err := BuildBinFactors(100)
	require.NoError(t, err)

	initial := math.NewInt(5 * PriceScale) // 5.0
	price, err := BinPrice(initial, factors, 0)
	require.NoError(t, err)
	assert.True(t, price.Equal(initial), "center bin price must equal the initial price")
}

func TestBinPriceMonotonic(t *testing.T) {
	factors, err := BuildBinFactors(100)
	require.NoError(t, err)
	initial := math.NewInt(2 * PriceScale)

	prev, err := BinPrice(initial, factors, -10)
	require.NoError(t, err)
	for binID := int32(-9); binID <= 10; binID++ {
		price, err := BinPrice(initial, factors, binID)
		require.NoError(t, err)
		require.True(t, price.LT(prev), "price at bin %d not below bin %d", binID, binID-1)
		prev = price
	}
}

func TestBinPriceErrors(t *testing.T) {
	factors, err := BuildBinFactors(100)
	require.NoError(t, err)

	_, err = BinPrice(math.ZeroInt(), factors, 0)
	assert.ErrorIs(t, err, ErrInvalidInitialPrice)

	_, err = BinPrice(math.NewInt(PriceScale), factors[:10], 0)
	assert.ErrorIs(t, err, ErrNoBinFactors)

	_, err = BinPrice(math.NewInt(PriceScale), factors, MaxBinID+1)
	assert.ErrorIs(t, err, ErrInvalidBinID)
}

func TestLiquidityValue(t *testing.T) {
	price := math.NewInt(2 * PriceScale) // 2.0

	// 10 X at price 2.0 plus 5 Y = 25.
	value := LiquidityValue(math.NewInt(10), math.NewInt(5), price)
	assert.Equal(t, int64(25), value.Int64())

	// X value floors.
	odd := LiquidityValue(math.NewInt(3), math.ZeroInt(), math.NewInt(PriceScale/2))
	assert.Equal(t, int64(1), odd.Int64())

	zero := LiquidityValue(math.ZeroInt(), math.ZeroInt(), price)
	assert.True(t, zero.IsZero())
}
