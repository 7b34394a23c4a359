package engine_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binfi-labs/dlmm-go/pkg/dlmm"
)

func TestSetFixedFees(t *testing.T) {
	f := newFixture(t)
	id := f.createPool()

	err := f.eng.SetXFees(f.stranger, id, 10, 20)
	assert.ErrorIs(t, err, dlmm.ErrNotAuthorized)

	require.NoError(t, f.eng.SetXFees(f.admin, id, 10, 20))
	require.NoError(t, f.eng.SetYFees(f.admin, id, 5, 15))

	pool, err := f.eng.Pool(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), pool.TotalXFee())
	assert.Equal(t, uint64(20), pool.TotalYFee())

	err = f.eng.SetXFees(f.admin, id, dlmm.FeeScale, 1)
	assert.ErrorIs(t, err, dlmm.ErrInvalidFee)
}

func TestSetVariableFeesAuth(t *testing.T) {
	f := newFixture(t)
	p := f.poolParams()
	p.VariableFeesManager = f.bob
	id, err := f.eng.CreatePool(f.admin, p)
	require.NoError(t, err)

	err = f.eng.SetVariableFees(f.stranger, id, 5, 5)
	assert.ErrorIs(t, err, dlmm.ErrNotAuthorized)

	require.NoError(t, f.eng.SetVariableFees(f.bob, id, 5, 5))
	pool, err := f.eng.Pool(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), pool.XVariableFee)
	assert.Equal(t, uint64(5), pool.YVariableFee)
}

func TestSetVariableFeesCooldown(t *testing.T) {
	f := newFixture(t)
	id := f.createPool()
	require.NoError(t, f.eng.SetVariableFeesCooldown(f.admin, id, 10))

	// The creation height starts the first cooldown window.
	f.clock.Advance(10)
	require.NoError(t, f.eng.SetVariableFees(f.admin, id, 5, 5))

	// Second update inside the cooldown window fails.
	f.clock.Advance(9)
	err := f.eng.SetVariableFees(f.admin, id, 6, 6)
	assert.ErrorIs(t, err, dlmm.ErrVariableFeesCooldown)

	f.clock.Advance(1)
	require.NoError(t, f.eng.SetVariableFees(f.admin, id, 6, 6))
}

func TestVariableFeesManagerFreeze(t *testing.T) {
	f := newFixture(t)
	p := f.poolParams()
	p.VariableFeesManager = f.bob
	id, err := f.eng.CreatePool(f.admin, p)
	require.NoError(t, err)

	err = f.eng.FreezeVariableFeesManager(f.stranger, id)
	assert.ErrorIs(t, err, dlmm.ErrNotAuthorized)
	require.NoError(t, f.eng.FreezeVariableFeesManager(f.admin, id))

	// The frozen manager is locked out; admins are not.
	err = f.eng.SetVariableFees(f.bob, id, 5, 5)
	assert.ErrorIs(t, err, dlmm.ErrVariableFeesManagerFrozen)
	require.NoError(t, f.eng.SetVariableFees(f.admin, id, 5, 5))

	err = f.eng.SetVariableFeesManager(f.admin, id, f.alice)
	assert.ErrorIs(t, err, dlmm.ErrVariableFeesManagerFrozen)
}

func TestResetVariableFeesRequiresAuth(t *testing.T) {
	f := newFixture(t)
	p := f.poolParams()
	p.VariableFeesManager = f.bob
	id, err := f.eng.CreatePool(f.admin, p)
	require.NoError(t, err)
	require.NoError(t, f.eng.SetVariableFees(f.bob, id, 25, 25))

	// A reset is an authorized operation like any other fee update.
	err = f.eng.ResetVariableFees(f.stranger, id)
	assert.ErrorIs(t, err, dlmm.ErrNotAuthorized)

	// But it ignores the cooldown so a spike can be backed out at once.
	require.NoError(t, f.eng.SetVariableFeesCooldown(f.admin, id, 100))
	require.NoError(t, f.eng.ResetVariableFees(f.bob, id))

	pool, err := f.eng.Pool(id)
	require.NoError(t, err)
	assert.Zero(t, pool.XVariableFee)
	assert.Zero(t, pool.YVariableFee)
}

func TestSetVariableFeesRateCap(t *testing.T) {
	f := newFixture(t)
	id := f.createFeePool(10, 20, 10, 20)

	err := f.eng.SetVariableFees(f.admin, id, dlmm.FeeScale-29, 0)
	assert.ErrorIs(t, err, dlmm.ErrInvalidFee)

	require.NoError(t, f.eng.SetVariableFees(f.admin, id, dlmm.FeeScale-30, 0))
}

func TestClaimProtocolFees(t *testing.T) {
	f := newFixture(t)
	id := f.createFeePool(10, 20, 10, 20)

	// Nothing accumulated yet.
	claimed, err := f.eng.ClaimProtocolFees(id, f.xToken, f.yToken)
	require.NoError(t, err)
	assert.False(t, claimed)

	// A 100_000 X swap at 10 bps protocol fee accrues 100 X.
	_, err = f.eng.SwapXForY(f.alice, id, f.xToken, f.yToken, 0, math.NewInt(100_000))
	require.NoError(t, err)

	claimed, err = f.eng.ClaimProtocolFees(id, f.xToken, f.yToken)
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.Equal(t, int64(100), f.tokens.BalanceOf(f.xToken, f.feeAddr).Int64())

	fees := f.store.GetUnclaimedFees(id)
	assert.True(t, fees.XFee.IsZero())
	assert.True(t, fees.YFee.IsZero())

	// The claim drained the accumulator; a second claim is a no-op.
	claimed, err = f.eng.ClaimProtocolFees(id, f.xToken, f.yToken)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestClaimProtocolFeesWrongAssetRefs(t *testing.T) {
	f := newFixture(t)
	id := f.createFeePool(10, 20, 10, 20)

	_, err := f.eng.ClaimProtocolFees(id, f.yToken, f.xToken)
	assert.ErrorIs(t, err, dlmm.ErrInvalidXToken)
}

func TestClaimProtocolFeesAllOrNothing(t *testing.T) {
	f := newFixture(t)
	id := f.createFeePool(10, 20, 10, 20)

	// Accrue protocol fees on both sides.
	_, err := f.eng.SwapXForY(f.alice, id, f.xToken, f.yToken, 0, math.NewInt(100_000))
	require.NoError(t, err)
	_, err = f.eng.SwapYForX(f.bob, id, f.xToken, f.yToken, 0, math.NewInt(100_000))
	require.NoError(t, err)
	before := f.store.GetUnclaimedFees(id)
	require.True(t, before.XFee.IsPositive())
	require.True(t, before.YFee.IsPositive())

	// Strip the vault's Y so the claim's second leg cannot be paid. The
	// X leg must not run either, or a later claim would pay it twice.
	require.NoError(t, f.tokens.Burn(f.yToken, f.vault, f.tokens.BalanceOf(f.yToken, f.vault)))
	_, err = f.eng.ClaimProtocolFees(id, f.xToken, f.yToken)
	assert.ErrorIs(t, err, dlmm.ErrInsufficientBalance)

	assert.True(t, f.tokens.BalanceOf(f.xToken, f.feeAddr).IsZero())
	after := f.store.GetUnclaimedFees(id)
	assert.True(t, after.XFee.Equal(before.XFee))
	assert.True(t, after.YFee.Equal(before.YFee))
}
