package engine

import (
	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/binfi-labs/dlmm-go/pkg/dlmm"
	"github.com/binfi-labs/dlmm-go/pkg/ledger"
)

// depositPlan is a fully computed, not yet committed deposit.
type depositPlan struct {
	unsigned     uint32
	bin          ledger.Bin
	minted       math.Int
	xFee         math.Int
	yFee         math.Int
	xProtocolCut math.Int
	yProtocolCut math.Int
}

// AddLiquidity deposits into the bin at binID and mints LP shares to
// the caller. Bins below the active bin take Y only, bins above take X
// only, and the active bin takes both. xToken and yToken must name the
// pool's configured pair. Deposits into a non-empty active bin pay the
// swap fee on each side; maxXFee and maxYFee bound what the caller
// will accept. minLp must be positive and bounds the minted shares.
func (e *Engine) AddLiquidity(caller solana.PublicKey, poolID uint64, xToken, yToken solana.PublicKey, binID int32, xAmount, yAmount, minLp, maxXFee, maxYFee math.Int) (math.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.pool(poolID)
	if err != nil {
		return math.ZeroInt(), err
	}
	if err := matchPoolTokens(&p, xToken, yToken); err != nil {
		return math.ZeroInt(), err
	}
	if err := requireEnabled(&p); err != nil {
		return math.ZeroInt(), err
	}
	if minLp.IsNil() || !minLp.IsPositive() {
		return math.ZeroInt(), dlmm.ErrInvalidMinDlpAmount
	}

	plan, err := e.planDeposit(&p, caller, binID, xAmount, yAmount, maxXFee, maxYFee)
	if err != nil {
		return math.ZeroInt(), err
	}
	if plan.minted.LT(minLp) {
		return math.ZeroInt(), dlmm.ErrMinimumLpAmount
	}

	if err := e.requireBalance(p.XToken, caller, xAmount); err != nil {
		return math.ZeroInt(), err
	}
	if err := e.requireBalance(p.YToken, caller, yAmount); err != nil {
		return math.ZeroInt(), err
	}
	if xAmount.IsPositive() {
		if err := e.tokens.Transfer(p.XToken, caller, p.Vault, xAmount); err != nil {
			return math.ZeroInt(), err
		}
	}
	if yAmount.IsPositive() {
		if err := e.tokens.Transfer(p.YToken, caller, p.Vault, yAmount); err != nil {
			return math.ZeroInt(), err
		}
	}

	e.commitDeposit(poolID, caller, plan)
	e.log.Debug("liquidity added",
		zap.Uint64("pool", poolID),
		zap.Int32("bin", binID),
		zap.String("x", xAmount.String()),
		zap.String("y", yAmount.String()),
		zap.String("minted", plan.minted.String()))
	return plan.minted, nil
}

// WithdrawLiquidity burns lpAmount of the caller's shares in the bin
// at binID and pays out the proportional reserves. Withdrawals stay
// available while a pool is disabled. minX and minY bound the payouts.
func (e *Engine) WithdrawLiquidity(caller solana.PublicKey, poolID uint64, xToken, yToken solana.PublicKey, binID int32, lpAmount, minX, minY math.Int) (math.Int, math.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.pool(poolID)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	if err := matchPoolTokens(&p, xToken, yToken); err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	unsigned, err := dlmm.ToUnsignedBinID(binID)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	if lpAmount.IsNil() || !lpAmount.IsPositive() {
		return math.ZeroInt(), math.ZeroInt(), dlmm.ErrInvalidAmount
	}
	shares := e.store.GetShares(poolID, unsigned, caller)
	if shares.LT(lpAmount) {
		return math.ZeroInt(), math.ZeroInt(), dlmm.ErrNoBinShares
	}

	bin := e.store.GetBin(poolID, unsigned)
	xOut := dlmm.MulDiv(bin.XBalance, lpAmount, bin.TotalLpSupply, dlmm.RoundingDown)
	yOut := dlmm.MulDiv(bin.YBalance, lpAmount, bin.TotalLpSupply, dlmm.RoundingDown)
	if !minX.IsNil() && xOut.LT(minX) {
		return math.ZeroInt(), math.ZeroInt(), dlmm.ErrMinimumXAmount
	}
	if !minY.IsNil() && yOut.LT(minY) {
		return math.ZeroInt(), math.ZeroInt(), dlmm.ErrMinimumYAmount
	}

	if err := e.requireBalance(p.XToken, p.Vault, xOut); err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	if err := e.requireBalance(p.YToken, p.Vault, yOut); err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	if xOut.IsPositive() {
		if err := e.tokens.Transfer(p.XToken, p.Vault, caller, xOut); err != nil {
			return math.ZeroInt(), math.ZeroInt(), err
		}
	}
	if yOut.IsPositive() {
		if err := e.tokens.Transfer(p.YToken, p.Vault, caller, yOut); err != nil {
			return math.ZeroInt(), math.ZeroInt(), err
		}
	}

	bin.XBalance = bin.XBalance.Sub(xOut)
	bin.YBalance = bin.YBalance.Sub(yOut)
	bin.TotalLpSupply = bin.TotalLpSupply.Sub(lpAmount)
	e.store.PutBin(poolID, unsigned, bin)
	e.store.PutShares(poolID, unsigned, caller, shares.Sub(lpAmount))

	e.log.Debug("liquidity withdrawn",
		zap.Uint64("pool", poolID),
		zap.Int32("bin", binID),
		zap.String("lp", lpAmount.String()),
		zap.String("x", xOut.String()),
		zap.String("y", yOut.String()))
	return xOut, yOut, nil
}

// MoveLiquidity withdraws lpAmount of the caller's shares from the bin
// at fromBin and deposits the proceeds into toBin in one atomic step.
// Tokens never leave the vault. The withdrawn composition must satisfy
// the destination bin's directional rule; a mismatch fails the whole
// move.
func (e *Engine) MoveLiquidity(caller solana.PublicKey, poolID uint64, xToken, yToken solana.PublicKey, fromBin, toBin int32, lpAmount, minLp, maxXFee, maxYFee math.Int) (math.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if fromBin == toBin {
		return math.ZeroInt(), dlmm.ErrMatchingBinID
	}
	p, err := e.pool(poolID)
	if err != nil {
		return math.ZeroInt(), err
	}
	if err := matchPoolTokens(&p, xToken, yToken); err != nil {
		return math.ZeroInt(), err
	}
	if err := requireEnabled(&p); err != nil {
		return math.ZeroInt(), err
	}
	if minLp.IsNil() || !minLp.IsPositive() {
		return math.ZeroInt(), dlmm.ErrInvalidMinDlpAmount
	}
	fromUnsigned, err := dlmm.ToUnsignedBinID(fromBin)
	if err != nil {
		return math.ZeroInt(), err
	}
	if lpAmount.IsNil() || !lpAmount.IsPositive() {
		return math.ZeroInt(), dlmm.ErrInvalidAmount
	}
	shares := e.store.GetShares(poolID, fromUnsigned, caller)
	if shares.LT(lpAmount) {
		return math.ZeroInt(), dlmm.ErrNoBinShares
	}

	from := e.store.GetBin(poolID, fromUnsigned)
	xMoved := dlmm.MulDiv(from.XBalance, lpAmount, from.TotalLpSupply, dlmm.RoundingDown)
	yMoved := dlmm.MulDiv(from.YBalance, lpAmount, from.TotalLpSupply, dlmm.RoundingDown)

	plan, err := e.planDeposit(&p, caller, toBin, xMoved, yMoved, maxXFee, maxYFee)
	if err != nil {
		return math.ZeroInt(), err
	}
	if plan.minted.LT(minLp) {
		return math.ZeroInt(), dlmm.ErrMinimumLpAmount
	}

	from.XBalance = from.XBalance.Sub(xMoved)
	from.YBalance = from.YBalance.Sub(yMoved)
	from.TotalLpSupply = from.TotalLpSupply.Sub(lpAmount)
	e.store.PutBin(poolID, fromUnsigned, from)
	e.store.PutShares(poolID, fromUnsigned, caller, shares.Sub(lpAmount))
	e.commitDeposit(poolID, caller, plan)

	e.log.Debug("liquidity moved",
		zap.Uint64("pool", poolID),
		zap.Int32("from", fromBin),
		zap.Int32("to", toBin),
		zap.String("lp", lpAmount.String()),
		zap.String("minted", plan.minted.String()))
	return plan.minted, nil
}

// planDeposit validates a deposit against the directional rules,
// charges the active-bin liquidity fee, and computes the shares to
// mint. It reads state but writes nothing.
func (e *Engine) planDeposit(p *ledger.Pool, caller solana.PublicKey, binID int32, xAmount, yAmount, maxXFee, maxYFee math.Int) (depositPlan, error) {
	unsigned, err := dlmm.ToUnsignedBinID(binID)
	if err != nil {
		return depositPlan{}, err
	}
	if xAmount.IsNil() || xAmount.IsNegative() {
		return depositPlan{}, dlmm.ErrInvalidXAmount
	}
	if yAmount.IsNil() || yAmount.IsNegative() {
		return depositPlan{}, dlmm.ErrInvalidYAmount
	}
	switch dlmm.PositionOf(binID, p.ActiveBinID) {
	case dlmm.BelowActive:
		if !xAmount.IsZero() {
			return depositPlan{}, dlmm.ErrInvalidXAmount
		}
		if yAmount.IsZero() {
			return depositPlan{}, dlmm.ErrInvalidYAmount
		}
	case dlmm.AboveActive:
		if !yAmount.IsZero() {
			return depositPlan{}, dlmm.ErrInvalidYAmount
		}
		if xAmount.IsZero() {
			return depositPlan{}, dlmm.ErrInvalidXAmount
		}
	case dlmm.AtActive:
		if xAmount.IsZero() && yAmount.IsZero() {
			return depositPlan{}, dlmm.ErrInvalidAmount
		}
	}

	price, err := e.binPrice(p, binID)
	if err != nil {
		return depositPlan{}, err
	}
	bin := e.store.GetBin(p.ID, unsigned)

	xFee, yFee := math.ZeroInt(), math.ZeroInt()
	xProtocolCut, yProtocolCut := math.ZeroInt(), math.ZeroInt()
	exempt := e.exemptions[exemptKey{PoolID: p.ID, Addr: caller}]
	// An active-bin deposit joins a bin swaps are running against, so
	// it pays the same rate a swap on each side would.
	if binID == p.ActiveBinID && bin.TotalLpSupply.IsPositive() && !exempt {
		xFee = dlmm.MulDivUint64(xAmount, p.TotalXFee(), dlmm.FeeScale, dlmm.RoundingDown)
		yFee = dlmm.MulDivUint64(yAmount, p.TotalYFee(), dlmm.FeeScale, dlmm.RoundingDown)
		if xFee.IsPositive() && (maxXFee.IsNil() || xFee.GT(maxXFee)) {
			return depositPlan{}, dlmm.ErrMaximumXLiquidityFee
		}
		if yFee.IsPositive() && (maxYFee.IsNil() || yFee.GT(maxYFee)) {
			return depositPlan{}, dlmm.ErrMaximumYLiquidityFee
		}
		xProtocolCut = dlmm.MulDivUint64(xAmount, p.XProtocolFee, dlmm.FeeScale, dlmm.RoundingDown)
		yProtocolCut = dlmm.MulDivUint64(yAmount, p.YProtocolFee, dlmm.FeeScale, dlmm.RoundingDown)
	}

	netX := xAmount.Sub(xFee)
	netY := yAmount.Sub(yFee)
	value := dlmm.LiquidityValue(netX, netY, price)
	if value.IsZero() {
		return depositPlan{}, dlmm.ErrInvalidLiquidityValue
	}

	var minted math.Int
	if bin.TotalLpSupply.IsZero() {
		minted = value
	} else {
		reserveValue := dlmm.LiquidityValue(bin.XBalance, bin.YBalance, price)
		if reserveValue.IsZero() {
			return depositPlan{}, dlmm.ErrInvalidLiquidityValue
		}
		minted = dlmm.MulDiv(value, bin.TotalLpSupply, reserveValue, dlmm.RoundingDown)
	}

	bin.XBalance = bin.XBalance.Add(xAmount).Sub(xProtocolCut)
	bin.YBalance = bin.YBalance.Add(yAmount).Sub(yProtocolCut)
	bin.TotalLpSupply = bin.TotalLpSupply.Add(minted)
	return depositPlan{
		unsigned:     unsigned,
		bin:          bin,
		minted:       minted,
		xFee:         xFee,
		yFee:         yFee,
		xProtocolCut: xProtocolCut,
		yProtocolCut: yProtocolCut,
	}, nil
}

func (e *Engine) commitDeposit(poolID uint64, caller solana.PublicKey, plan depositPlan) {
	e.store.PutBin(poolID, plan.unsigned, plan.bin)
	shares := e.store.GetShares(poolID, plan.unsigned, caller)
	e.store.PutShares(poolID, plan.unsigned, caller, shares.Add(plan.minted))
	if plan.xProtocolCut.IsPositive() || plan.yProtocolCut.IsPositive() {
		fees := e.store.GetUnclaimedFees(poolID)
		fees.XFee = fees.XFee.Add(plan.xProtocolCut)
		fees.YFee = fees.YFee.Add(plan.yProtocolCut)
		e.store.PutUnclaimedFees(poolID, fees)
	}
}
