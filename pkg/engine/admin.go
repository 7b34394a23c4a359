package engine

import (
	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/binfi-labs/dlmm-go/pkg/dlmm"
	"github.com/binfi-labs/dlmm-go/pkg/ledger"
)

// CreatePoolParams carries everything CreatePool needs to seed a pair.
type CreatePoolParams struct {
	Name   string
	Symbol string
	URI    string

	XToken     solana.PublicKey
	YToken     solana.PublicKey
	Vault      solana.PublicKey
	FeeAddress solana.PublicKey

	BinStep      uint64
	InitialPrice math.Int

	XProtocolFee uint64
	XProviderFee uint64
	YProtocolFee uint64
	YProviderFee uint64

	VariableFeesManager  solana.PublicKey
	VariableFeesCooldown uint64

	// XAmount and YAmount seed the center bin from the creator's
	// balances. BurnAmount of the minted shares is assigned to
	// BurntSharesHolder; the creator keeps the rest.
	XAmount    math.Int
	YAmount    math.Int
	BurnAmount math.Int
}

// CreatePool registers a new pool, seeds its center bin and mints the
// creator's initial shares. Only admins may create pools unless public
// pool creation is enabled on the registry.
func (e *Engine) CreatePool(caller solana.PublicKey, p CreatePoolParams) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.registry.IsAdmin(caller) && !e.registry.PublicPoolCreation {
		return 0, dlmm.ErrNotAuthorized
	}
	if p.XToken.Equals(p.YToken) {
		return 0, dlmm.ErrMatchingTokenContracts
	}
	if p.InitialPrice.IsNil() || !p.InitialPrice.IsPositive() {
		return 0, dlmm.ErrInvalidInitialPrice
	}
	if p.XProtocolFee+p.XProviderFee > dlmm.FeeScale ||
		p.YProtocolFee+p.YProviderFee > dlmm.FeeScale {
		return 0, dlmm.ErrInvalidFee
	}
	factors, err := e.registry.Factors(p.BinStep)
	if err != nil {
		return 0, err
	}
	if p.BurnAmount.IsNil() || p.BurnAmount.LT(math.NewInt(dlmm.MinimumBurntShares)) {
		return 0, dlmm.ErrInvalidMinBurntShares
	}
	if p.XAmount.IsNil() || p.XAmount.IsNegative() {
		return 0, dlmm.ErrInvalidXAmount
	}
	if p.YAmount.IsNil() || p.YAmount.IsNegative() {
		return 0, dlmm.ErrInvalidYAmount
	}

	price, err := dlmm.BinPrice(p.InitialPrice, factors, 0)
	if err != nil {
		return 0, err
	}
	value := dlmm.LiquidityValue(p.XAmount, p.YAmount, price)
	if value.IsZero() {
		return 0, dlmm.ErrInvalidLiquidityValue
	}
	if value.LT(p.BurnAmount) {
		return 0, dlmm.ErrMinimumBurnAmount
	}
	creatorShares := value.Sub(p.BurnAmount)

	if p.XAmount.IsPositive() {
		if err := e.tokens.Transfer(p.XToken, caller, p.Vault, p.XAmount); err != nil {
			return 0, err
		}
	}
	if p.YAmount.IsPositive() {
		if err := e.tokens.Transfer(p.YToken, caller, p.Vault, p.YAmount); err != nil {
			return 0, err
		}
	}

	height := e.clock.Height()
	id := e.registry.NextPoolID()
	pool := ledger.Pool{
		ID:                     id,
		Name:                   p.Name,
		Symbol:                 p.Symbol,
		URI:                    p.URI,
		XToken:                 p.XToken,
		YToken:                 p.YToken,
		Vault:                  p.Vault,
		FeeAddress:             p.FeeAddress,
		ActiveBinID:            0,
		BinStep:                p.BinStep,
		InitialPrice:           p.InitialPrice,
		XProtocolFee:           p.XProtocolFee,
		XProviderFee:           p.XProviderFee,
		YProtocolFee:           p.YProtocolFee,
		YProviderFee:           p.YProviderFee,
		VariableFeesManager:    p.VariableFeesManager,
		VariableFeesCooldown:   p.VariableFeesCooldown,
		LastVariableFeesUpdate: height,
		Status:                 dlmm.PoolStatusEnabled,
		Created:                true,
		CreationHeight:         height,
	}
	e.store.PutPool(pool)

	centerBin := uint32(dlmm.CenterBinID)
	e.store.PutBin(id, centerBin, ledger.Bin{
		XBalance:      p.XAmount,
		YBalance:      p.YAmount,
		TotalLpSupply: value,
	})
	e.store.PutShares(id, centerBin, BurntSharesHolder, p.BurnAmount)
	if creatorShares.IsPositive() {
		e.store.PutShares(id, centerBin, caller, creatorShares)
	}
	e.store.PutUnclaimedFees(id, ledger.NewUnclaimedFees())

	e.log.Info("pool created",
		zap.Uint64("pool", id),
		zap.String("symbol", p.Symbol),
		zap.Uint64("bin_step", p.BinStep),
		zap.String("initial_price", p.InitialPrice.String()),
		zap.String("minted_shares", value.String()))
	return id, nil
}

// SetPoolStatus enables or disables swaps and deposits on a pool.
// Admin only. Withdrawals stay available on disabled pools.
func (e *Engine) SetPoolStatus(caller solana.PublicKey, poolID uint64, status dlmm.PoolStatus) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.registry.IsAdmin(caller) {
		return dlmm.ErrNotAuthorized
	}
	p, err := e.pool(poolID)
	if err != nil {
		return err
	}
	p.Status = status
	e.store.PutPool(p)
	e.log.Info("pool status updated",
		zap.Uint64("pool", poolID),
		zap.Uint8("status", uint8(status)))
	return nil
}

// AddAdmin appends addr to the registry's admin list. Admin only.
func (e *Engine) AddAdmin(caller, addr solana.PublicKey) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.registry.IsAdmin(caller) {
		return dlmm.ErrNotAuthorized
	}
	return e.registry.AddAdmin(addr)
}

// RemoveAdmin drops addr from the registry's admin list. Admin only;
// the deployer cannot be removed.
func (e *Engine) RemoveAdmin(caller, addr solana.PublicKey) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.registry.IsAdmin(caller) {
		return dlmm.ErrNotAuthorized
	}
	return e.registry.RemoveAdmin(addr)
}

// AddBinStep registers a validated factor table for a new bin step.
// Admin only.
func (e *Engine) AddBinStep(caller solana.PublicKey, binStep uint64, factors dlmm.FactorTable) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.registry.IsAdmin(caller) {
		return dlmm.ErrNotAuthorized
	}
	if err := e.registry.AddBinStep(binStep, factors); err != nil {
		return err
	}
	e.log.Info("bin step registered", zap.Uint64("bin_step", binStep))
	return nil
}

// SetPublicPoolCreation toggles permissionless pool creation. Admin
// only. Setting the flag to its current value fails so an operator
// notices a stale toggle.
func (e *Engine) SetPublicPoolCreation(caller solana.PublicKey, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.registry.IsAdmin(caller) {
		return dlmm.ErrNotAuthorized
	}
	if e.registry.PublicPoolCreation == enabled {
		return dlmm.ErrPublicPoolCreationEnabled
	}
	e.registry.PublicPoolCreation = enabled
	return nil
}
