package engine

import (
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/binfi-labs/dlmm-go/pkg/dlmm"
	"github.com/binfi-labs/dlmm-go/pkg/ledger"
)

// SetXFees updates the fixed X-side fee rates. Admin only. The summed
// X-side rate, variable fee included, must stay within FeeScale.
func (e *Engine) SetXFees(caller solana.PublicKey, poolID uint64, protocolFee, providerFee uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.registry.IsAdmin(caller) {
		return dlmm.ErrNotAuthorized
	}
	p, err := e.pool(poolID)
	if err != nil {
		return err
	}
	if protocolFee+providerFee+p.XVariableFee > dlmm.FeeScale {
		return dlmm.ErrInvalidFee
	}
	p.XProtocolFee = protocolFee
	p.XProviderFee = providerFee
	e.store.PutPool(p)
	e.log.Info("x fees updated",
		zap.Uint64("pool", poolID),
		zap.Uint64("protocol_bps", protocolFee),
		zap.Uint64("provider_bps", providerFee))
	return nil
}

// SetYFees updates the fixed Y-side fee rates. Admin only.
func (e *Engine) SetYFees(caller solana.PublicKey, poolID uint64, protocolFee, providerFee uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.registry.IsAdmin(caller) {
		return dlmm.ErrNotAuthorized
	}
	p, err := e.pool(poolID)
	if err != nil {
		return err
	}
	if protocolFee+providerFee+p.YVariableFee > dlmm.FeeScale {
		return dlmm.ErrInvalidFee
	}
	p.YProtocolFee = protocolFee
	p.YProviderFee = providerFee
	e.store.PutPool(p)
	e.log.Info("y fees updated",
		zap.Uint64("pool", poolID),
		zap.Uint64("protocol_bps", protocolFee),
		zap.Uint64("provider_bps", providerFee))
	return nil
}

// SetVariableFees updates both variable fee rates. Callable by admins
// and by the pool's variable-fees manager while the manager role is
// not frozen. Consecutive updates must respect the pool's cooldown.
func (e *Engine) SetVariableFees(caller solana.PublicKey, poolID uint64, xVariableFee, yVariableFee uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, err := e.pool(poolID)
	if err != nil {
		return err
	}
	if err := e.variableFeesAuth(caller, &p); err != nil {
		return err
	}
	if e.clock.Height()-p.LastVariableFeesUpdate < p.VariableFeesCooldown {
		return dlmm.ErrVariableFeesCooldown
	}
	if p.XProtocolFee+p.XProviderFee+xVariableFee > dlmm.FeeScale ||
		p.YProtocolFee+p.YProviderFee+yVariableFee > dlmm.FeeScale {
		return dlmm.ErrInvalidFee
	}
	p.XVariableFee = xVariableFee
	p.YVariableFee = yVariableFee
	p.LastVariableFeesUpdate = e.clock.Height()
	e.store.PutPool(p)
	e.log.Info("variable fees updated",
		zap.Uint64("pool", poolID),
		zap.Uint64("x_bps", xVariableFee),
		zap.Uint64("y_bps", yVariableFee))
	return nil
}

// ResetVariableFees zeroes both variable fee rates. It carries the
// same authorization as SetVariableFees but skips the cooldown, so an
// authorized party can always back a spike out immediately.
func (e *Engine) ResetVariableFees(caller solana.PublicKey, poolID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, err := e.pool(poolID)
	if err != nil {
		return err
	}
	if err := e.variableFeesAuth(caller, &p); err != nil {
		return err
	}
	p.XVariableFee = 0
	p.YVariableFee = 0
	p.LastVariableFeesUpdate = e.clock.Height()
	e.store.PutPool(p)
	e.log.Info("variable fees reset", zap.Uint64("pool", poolID))
	return nil
}

// SetVariableFeesManager rotates the pool's variable-fees manager.
// Admin only, and impossible once the role is frozen.
func (e *Engine) SetVariableFeesManager(caller solana.PublicKey, poolID uint64, manager solana.PublicKey) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.registry.IsAdmin(caller) {
		return dlmm.ErrNotAuthorized
	}
	p, err := e.pool(poolID)
	if err != nil {
		return err
	}
	if p.FreezeVariableFeesManager {
		return dlmm.ErrVariableFeesManagerFrozen
	}
	p.VariableFeesManager = manager
	e.store.PutPool(p)
	return nil
}

// FreezeVariableFeesManager permanently locks the manager role out of
// variable-fee updates. Admin only, irreversible.
func (e *Engine) FreezeVariableFeesManager(caller solana.PublicKey, poolID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.registry.IsAdmin(caller) {
		return dlmm.ErrNotAuthorized
	}
	p, err := e.pool(poolID)
	if err != nil {
		return err
	}
	p.FreezeVariableFeesManager = true
	e.store.PutPool(p)
	e.log.Info("variable fees manager frozen", zap.Uint64("pool", poolID))
	return nil
}

// SetVariableFeesCooldown updates the minimum height gap between
// variable-fee updates. Admin only.
func (e *Engine) SetVariableFeesCooldown(caller solana.PublicKey, poolID uint64, cooldown uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.registry.IsAdmin(caller) {
		return dlmm.ErrNotAuthorized
	}
	p, err := e.pool(poolID)
	if err != nil {
		return err
	}
	p.VariableFeesCooldown = cooldown
	e.store.PutPool(p)
	return nil
}

// ClaimProtocolFees pays the pool's accumulated protocol fees from the
// vault to the fee address and zeroes the accumulator. Anyone may
// trigger a claim; xToken and yToken must name the pool's configured
// pair. Returns false when there was nothing to claim.
func (e *Engine) ClaimProtocolFees(poolID uint64, xToken, yToken solana.PublicKey) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, err := e.pool(poolID)
	if err != nil {
		return false, err
	}
	if err := matchPoolTokens(&p, xToken, yToken); err != nil {
		return false, err
	}
	fees := e.store.GetUnclaimedFees(poolID)
	if fees.XFee.IsZero() && fees.YFee.IsZero() {
		return false, nil
	}
	if err := e.requireBalance(p.XToken, p.Vault, fees.XFee); err != nil {
		return false, err
	}
	if err := e.requireBalance(p.YToken, p.Vault, fees.YFee); err != nil {
		return false, err
	}
	if fees.XFee.IsPositive() {
		if err := e.tokens.Transfer(p.XToken, p.Vault, p.FeeAddress, fees.XFee); err != nil {
			return false, err
		}
	}
	if fees.YFee.IsPositive() {
		if err := e.tokens.Transfer(p.YToken, p.Vault, p.FeeAddress, fees.YFee); err != nil {
			return false, err
		}
	}
	e.store.PutUnclaimedFees(poolID, ledger.NewUnclaimedFees())
	e.log.Info("protocol fees claimed",
		zap.Uint64("pool", poolID),
		zap.String("x_fee", fees.XFee.String()),
		zap.String("y_fee", fees.YFee.String()))
	return true, nil
}

func (e *Engine) variableFeesAuth(caller solana.PublicKey, p *ledger.Pool) error {
	if e.registry.IsAdmin(caller) {
		return nil
	}
	if caller.Equals(p.VariableFeesManager) {
		if p.FreezeVariableFeesManager {
			return dlmm.ErrVariableFeesManagerFrozen
		}
		return nil
	}
	return dlmm.ErrNotAuthorized
}
