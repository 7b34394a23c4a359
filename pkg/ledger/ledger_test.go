package ledger

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binfi-labs/dlmm-go/pkg/dlmm"
)

func addr(b byte) solana.PublicKey {
	var key solana.PublicKey
	key[0] = b
	return key
}

func TestMemoryStoreBins(t *testing.T) {
	s := NewMemoryStore()

	// Absent bins read as zero records.
	bin := s.GetBin(1, 500)
	assert.True(t, bin.IsEmpty())

	bin.XBalance = math.NewInt(10)
	bin.YBalance = math.NewInt(20)
	bin.TotalLpSupply = math.NewInt(30)
	s.PutBin(1, 500, bin)
	assert.Equal(t, int64(10), s.GetBin(1, 500).XBalance.Int64())

	// Writing a zero record deletes it.
	s.PutBin(1, 500, NewBin())
	assert.Len(t, s.Bins(1), 0)
}

func TestMemoryStoreShares(t *testing.T) {
	s := NewMemoryStore()
	owner := addr(7)

	assert.True(t, s.GetShares(1, 500, owner).IsZero())

	s.PutShares(1, 500, owner, math.NewInt(100))
	assert.Equal(t, int64(100), s.GetShares(1, 500, owner).Int64())
	require.Len(t, s.Positions(1), 1)

	s.PutShares(1, 500, owner, math.ZeroInt())
	assert.Len(t, s.Positions(1), 0)
}

func TestMemoryStorePools(t *testing.T) {
	s := NewMemoryStore()

	_, ok := s.GetPool(3)
	assert.False(t, ok)

	s.PutPool(Pool{ID: 3, InitialPrice: math.NewInt(1), Created: true})
	s.PutPool(Pool{ID: 1, InitialPrice: math.NewInt(1), Created: true})

	pools := s.Pools()
	require.Len(t, pools, 2)
	assert.Equal(t, uint64(1), pools[0].ID)
	assert.Equal(t, uint64(3), pools[1].ID)
}

func TestRegistryAdmins(t *testing.T) {
	deployer := addr(1)
	r := NewRegistry(deployer)
	assert.True(t, r.IsAdmin(deployer))

	other := addr(2)
	require.NoError(t, r.AddAdmin(other))
	assert.ErrorIs(t, r.AddAdmin(other), dlmm.ErrAlreadyAdmin)

	for b := byte(3); len(r.Admins()) < dlmm.MaxAdmins; b++ {
		require.NoError(t, r.AddAdmin(addr(b)))
	}
	assert.ErrorIs(t, r.AddAdmin(addr(100)), dlmm.ErrAdminLimitReached)

	assert.ErrorIs(t, r.RemoveAdmin(deployer), dlmm.ErrCannotRemoveDeployer)
	assert.ErrorIs(t, r.RemoveAdmin(addr(101)), dlmm.ErrAdminNotInList)
	require.NoError(t, r.RemoveAdmin(other))
	assert.False(t, r.IsAdmin(other))
}

func TestRegistryBinSteps(t *testing.T) {
	r := NewRegistry(addr(1))

	factors, err := dlmm.BuildBinFactors(50)
	require.NoError(t, err)

	_, err = r.Factors(50)
	assert.ErrorIs(t, err, dlmm.ErrNoBinFactors)

	require.NoError(t, r.AddBinStep(50, factors))
	assert.ErrorIs(t, r.AddBinStep(50, factors), dlmm.ErrAlreadyBinStep)

	got, err := r.Factors(50)
	require.NoError(t, err)
	assert.Len(t, got, dlmm.NumOfBins)
}
