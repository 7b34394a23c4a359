package ledger

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binfi-labs/dlmm-go/pkg/dlmm"
)

func TestSnapshotRestore(t *testing.T) {
	s := NewMemoryStore()

	big, ok := math.NewIntFromString("340282366920938463463374607431768211455")
	require.True(t, ok)

	s.PutPool(Pool{
		ID:           1,
		Name:         "Pair",
		Symbol:       "PR",
		XToken:       addr(10),
		YToken:       addr(11),
		Vault:        addr(20),
		FeeAddress:   addr(21),
		ActiveBinID:  -3,
		BinStep:      100,
		InitialPrice: math.NewInt(dlmm.PriceScale),
		XProtocolFee: 10,
		YProviderFee: 20,
		Status:       dlmm.PoolStatusDisabled,
		Created:      true,
	})
	s.PutBin(1, 497, Bin{XBalance: big, YBalance: math.NewInt(5), TotalLpSupply: big})
	s.PutShares(1, 497, addr(7), math.NewInt(123))
	s.PutUnclaimedFees(1, UnclaimedFees{XFee: math.NewInt(9), YFee: math.ZeroInt()})

	data, err := Snapshot(s)
	require.NoError(t, err)

	restored, err := Restore(data)
	require.NoError(t, err)

	pool, ok := restored.GetPool(1)
	require.True(t, ok)
	assert.Equal(t, int32(-3), pool.ActiveBinID)
	assert.Equal(t, dlmm.PoolStatusDisabled, pool.Status)
	assert.True(t, pool.InitialPrice.Equal(math.NewInt(dlmm.PriceScale)))

	bin := restored.GetBin(1, 497)
	assert.True(t, bin.XBalance.Equal(big), "oversized balances survive the round trip")
	assert.Equal(t, int64(5), bin.YBalance.Int64())

	assert.Equal(t, int64(123), restored.GetShares(1, 497, addr(7)).Int64())
	assert.Equal(t, int64(9), restored.GetUnclaimedFees(1).XFee.Int64())
}

func TestRestoreRejectsGarbage(t *testing.T) {
	_, err := Restore([]byte{0x01, 0x02})
	assert.Error(t, err)
}

func TestSnapshotDeterministic(t *testing.T) {
	s := NewMemoryStore()
	s.PutPool(Pool{
		ID:           1,
		XToken:       addr(10),
		YToken:       addr(11),
		InitialPrice: math.NewInt(dlmm.PriceScale),
		Created:      true,
	})
	for i := uint32(480); i < 520; i++ {
		s.PutBin(1, i, Bin{
			XBalance:      math.NewInt(int64(i)),
			YBalance:      math.NewInt(int64(i) * 2),
			TotalLpSupply: math.NewInt(int64(i) * 3),
		})
	}

	// Equal states must serialize to equal bytes regardless of map
	// iteration order.
	first, err := Snapshot(s)
	require.NoError(t, err)
	second, err := Snapshot(s)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
