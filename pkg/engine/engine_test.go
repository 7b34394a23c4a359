package engine_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binfi-labs/dlmm-go/pkg/dlmm"
	"github.com/binfi-labs/dlmm-go/pkg/engine"
	"github.com/binfi-labs/dlmm-go/pkg/ledger"
	"github.com/binfi-labs/dlmm-go/pkg/token"
)

const (
	testBinStep = 100

	seedX      = 1_000_000
	seedY      = 1_000_000
	seedBurn   = 1000
	actorFunds = 1_000_000_000
)

// pk builds a deterministic, non-zero test address.
func pk(b byte) solana.PublicKey {
	var key solana.PublicKey
	key[0] = b
	key[31] = b
	return key
}

type fixture struct {
	t      *testing.T
	store  *ledger.MemoryStore
	reg    *ledger.Registry
	tokens *token.MemoryLedger
	clock  *engine.ManualClock
	eng    *engine.Engine

	admin    solana.PublicKey
	alice    solana.PublicKey
	bob      solana.PublicKey
	xToken   solana.PublicKey
	yToken   solana.PublicKey
	vault    solana.PublicKey
	feeAddr  solana.PublicKey
	stranger solana.PublicKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:        t,
		store:    ledger.NewMemoryStore(),
		tokens:   token.NewMemoryLedger(),
		clock:    engine.NewManualClock(100),
		admin:    pk(1),
		alice:    pk(2),
		bob:      pk(3),
		xToken:   pk(10),
		yToken:   pk(11),
		vault:    pk(20),
		feeAddr:  pk(21),
		stranger: pk(99),
	}
	f.reg = ledger.NewRegistry(f.admin)

	factors, err := dlmm.BuildBinFactors(testBinStep)
	require.NoError(t, err)
	require.NoError(t, f.reg.AddBinStep(testBinStep, factors))

	for _, holder := range []solana.PublicKey{f.admin, f.alice, f.bob} {
		require.NoError(t, f.tokens.Mint(f.xToken, holder, math.NewInt(actorFunds)))
		require.NoError(t, f.tokens.Mint(f.yToken, holder, math.NewInt(actorFunds)))
	}

	f.eng = engine.New(f.store, f.reg, f.tokens, f.clock, nil)
	return f
}

func (f *fixture) poolParams() engine.CreatePoolParams {
	return engine.CreatePoolParams{
		Name:         "Test Pair",
		Symbol:       "TP",
		URI:          "https://example.com/tp.json",
		XToken:       f.xToken,
		YToken:       f.yToken,
		Vault:        f.vault,
		FeeAddress:   f.feeAddr,
		BinStep:      testBinStep,
		InitialPrice: math.NewInt(dlmm.PriceScale), // 1.0
		XAmount:      math.NewInt(seedX),
		YAmount:      math.NewInt(seedY),
		BurnAmount:   math.NewInt(seedBurn),
	}
}

// createPool seeds a pool with no fees and the center bin prefunded.
func (f *fixture) createPool() uint64 {
	f.t.Helper()
	id, err := f.eng.CreatePool(f.admin, f.poolParams())
	require.NoError(f.t, err)
	return id
}

// createFeePool seeds a pool charging the given X and Y side fees.
func (f *fixture) createFeePool(xProtocol, xProvider, yProtocol, yProvider uint64) uint64 {
	f.t.Helper()
	p := f.poolParams()
	p.XProtocolFee = xProtocol
	p.XProviderFee = xProvider
	p.YProtocolFee = yProtocol
	p.YProviderFee = yProvider
	id, err := f.eng.CreatePool(f.admin, p)
	require.NoError(f.t, err)
	return id
}

func (f *fixture) bin(poolID uint64, binID int32) ledger.Bin {
	f.t.Helper()
	unsigned, err := dlmm.ToUnsignedBinID(binID)
	require.NoError(f.t, err)
	return f.store.GetBin(poolID, unsigned)
}

func (f *fixture) shares(poolID uint64, binID int32, owner solana.PublicKey) math.Int {
	f.t.Helper()
	unsigned, err := dlmm.ToUnsignedBinID(binID)
	require.NoError(f.t, err)
	return f.store.GetShares(poolID, unsigned, owner)
}

func TestPoolLookupErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.eng.Pool(7)
	assert.ErrorIs(t, err, dlmm.ErrNoPoolData)

	// A pool record without the created flag is not usable.
	f.store.PutPool(ledger.Pool{ID: 7, InitialPrice: math.NewInt(1)})
	_, err = f.eng.Pool(7)
	assert.ErrorIs(t, err, dlmm.ErrPoolNotCreated)
}

func TestActiveBin(t *testing.T) {
	f := newFixture(t)
	id := f.createPool()

	binID, bin, err := f.eng.ActiveBin(id)
	require.NoError(t, err)
	assert.Equal(t, int32(0), binID)
	assert.Equal(t, int64(seedX), bin.XBalance.Int64())
	assert.Equal(t, int64(seedY), bin.YBalance.Int64())
	assert.Equal(t, int64(seedX+seedY), bin.TotalLpSupply.Int64())
}

func TestBinPriceThroughEngine(t *testing.T) {
	f := newFixture(t)
	id := f.createPool()

	price, err := f.eng.BinPrice(id, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(dlmm.PriceScale), price.Int64())

	// One bin up is one binStep cheaper.
	up, err := f.eng.BinPrice(id, 1)
	require.NoError(t, err)
	assert.True(t, up.LT(price))
}

func TestFeeExemption(t *testing.T) {
	f := newFixture(t)
	id := f.createFeePool(10, 20, 10, 20)

	err := f.eng.SetFeeExemption(f.stranger, id, f.alice, true)
	assert.ErrorIs(t, err, dlmm.ErrNotAuthorized)
	assert.False(t, f.eng.IsFeeExempt(id, f.alice))

	require.NoError(t, f.eng.SetFeeExemption(f.admin, id, f.alice, true))
	assert.True(t, f.eng.IsFeeExempt(id, f.alice))

	require.NoError(t, f.eng.SetFeeExemption(f.admin, id, f.alice, false))
	assert.False(t, f.eng.IsFeeExempt(id, f.alice))
}
