package engine

import (
	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/binfi-labs/dlmm-go/pkg/dlmm"
)

// SwapResult reports what a swap actually did. In is the amount pulled
// from the caller after capping against the bin's capacity, fee
// included; Out is the amount paid out. ActiveBinID is the pool's
// active bin after the swap, which differs from the traded bin exactly
// when Crossed is true.
type SwapResult struct {
	In          math.Int
	Out         math.Int
	Fee         math.Int
	BinID       int32
	ActiveBinID int32
	Crossed     bool
}

// SwapXForY sells up to amount of the X token into the bin at binID,
// which must be the pool's active bin. xToken and yToken must name the
// pool's configured pair. The input is capped so the bin's Y reserve is
// never overdrawn; draining the Y reserve to zero moves the active
// pointer one bin up.
func (e *Engine) SwapXForY(caller solana.PublicKey, poolID uint64, xToken, yToken solana.PublicKey, binID int32, amount math.Int) (SwapResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.pool(poolID)
	if err != nil {
		return SwapResult{}, err
	}
	if err := matchPoolTokens(&p, xToken, yToken); err != nil {
		return SwapResult{}, err
	}
	if err := requireEnabled(&p); err != nil {
		return SwapResult{}, err
	}
	if binID != p.ActiveBinID {
		return SwapResult{}, dlmm.ErrNotActiveBin
	}
	if amount.IsNil() || !amount.IsPositive() {
		return SwapResult{}, dlmm.ErrInvalidAmount
	}
	unsigned, err := dlmm.ToUnsignedBinID(binID)
	if err != nil {
		return SwapResult{}, err
	}
	price, err := e.binPrice(&p, binID)
	if err != nil {
		return SwapResult{}, err
	}
	bin := e.store.GetBin(poolID, unsigned)

	totalFee := p.TotalXFee()
	protocolFee := p.XProtocolFee
	if e.exemptions[exemptKey{PoolID: poolID, Addr: caller}] {
		totalFee = 0
		protocolFee = 0
	}

	// The most X the bin can absorb at this price, grossed up so the
	// post-fee amount still fits.
	maxIn := dlmm.MulDiv(bin.YBalance, math.NewInt(dlmm.PriceScale), price, dlmm.RoundingUp)
	if totalFee > 0 {
		maxIn = dlmm.MulDivUint64(maxIn, dlmm.FeeScale, dlmm.FeeScale-totalFee, dlmm.RoundingUp)
	}
	in := dlmm.MinInt(amount, maxIn)
	if in.IsZero() {
		return SwapResult{}, dlmm.ErrInvalidAmount
	}

	fee := dlmm.MulDivUint64(in, totalFee, dlmm.FeeScale, dlmm.RoundingDown)
	net := in.Sub(fee)
	out := dlmm.MulDiv(net, price, math.NewInt(dlmm.PriceScale), dlmm.RoundingDown)
	if out.GT(bin.YBalance) {
		out = bin.YBalance
	}
	protocolCut := dlmm.MulDivUint64(in, protocolFee, dlmm.FeeScale, dlmm.RoundingDown)

	if err := e.requireBalance(p.XToken, caller, in); err != nil {
		return SwapResult{}, err
	}
	if err := e.requireBalance(p.YToken, p.Vault, out); err != nil {
		return SwapResult{}, err
	}
	if err := e.tokens.Transfer(p.XToken, caller, p.Vault, in); err != nil {
		return SwapResult{}, err
	}
	if out.IsPositive() {
		if err := e.tokens.Transfer(p.YToken, p.Vault, caller, out); err != nil {
			return SwapResult{}, err
		}
	}

	// The protocol cut leaves the reserve for the claim accumulator;
	// the provider share stays in the bin.
	bin.XBalance = bin.XBalance.Add(in).Sub(protocolCut)
	bin.YBalance = bin.YBalance.Sub(out)
	e.store.PutBin(poolID, unsigned, bin)

	if protocolCut.IsPositive() {
		fees := e.store.GetUnclaimedFees(poolID)
		fees.XFee = fees.XFee.Add(protocolCut)
		e.store.PutUnclaimedFees(poolID, fees)
	}

	crossed := false
	if bin.YBalance.IsZero() && p.ActiveBinID < dlmm.MaxBinID {
		p.ActiveBinID++
		p.BinChangeCount++
		e.store.PutPool(p)
		crossed = true
	}

	e.log.Debug("swap x for y",
		zap.Uint64("pool", poolID),
		zap.Int32("bin", binID),
		zap.String("in", in.String()),
		zap.String("out", out.String()),
		zap.Bool("crossed", crossed))
	return SwapResult{
		In:          in,
		Out:         out,
		Fee:         fee,
		BinID:       binID,
		ActiveBinID: p.ActiveBinID,
		Crossed:     crossed,
	}, nil
}

// SwapYForX sells up to amount of the Y token into the bin at binID,
// which must be the pool's active bin. Draining the X reserve to zero
// moves the active pointer one bin down.
func (e *Engine) SwapYForX(caller solana.PublicKey, poolID uint64, xToken, yToken solana.PublicKey, binID int32, amount math.Int) (SwapResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.pool(poolID)
	if err != nil {
		return SwapResult{}, err
	}
	if err := matchPoolTokens(&p, xToken, yToken); err != nil {
		return SwapResult{}, err
	}
	if err := requireEnabled(&p); err != nil {
		return SwapResult{}, err
	}
	if binID != p.ActiveBinID {
		return SwapResult{}, dlmm.ErrNotActiveBin
	}
	if amount.IsNil() || !amount.IsPositive() {
		return SwapResult{}, dlmm.ErrInvalidAmount
	}
	unsigned, err := dlmm.ToUnsignedBinID(binID)
	if err != nil {
		return SwapResult{}, err
	}
	price, err := e.binPrice(&p, binID)
	if err != nil {
		return SwapResult{}, err
	}
	bin := e.store.GetBin(poolID, unsigned)

	totalFee := p.TotalYFee()
	protocolFee := p.YProtocolFee
	if e.exemptions[exemptKey{PoolID: poolID, Addr: caller}] {
		totalFee = 0
		protocolFee = 0
	}

	maxIn := dlmm.MulDiv(bin.XBalance, price, math.NewInt(dlmm.PriceScale), dlmm.RoundingUp)
	if totalFee > 0 {
		maxIn = dlmm.MulDivUint64(maxIn, dlmm.FeeScale, dlmm.FeeScale-totalFee, dlmm.RoundingUp)
	}
	in := dlmm.MinInt(amount, maxIn)
	if in.IsZero() {
		return SwapResult{}, dlmm.ErrInvalidAmount
	}

	fee := dlmm.MulDivUint64(in, totalFee, dlmm.FeeScale, dlmm.RoundingDown)
	net := in.Sub(fee)
	out := dlmm.MulDiv(net, math.NewInt(dlmm.PriceScale), price, dlmm.RoundingDown)
	if out.GT(bin.XBalance) {
		out = bin.XBalance
	}
	protocolCut := dlmm.MulDivUint64(in, protocolFee, dlmm.FeeScale, dlmm.RoundingDown)

	if err := e.requireBalance(p.YToken, caller, in); err != nil {
		return SwapResult{}, err
	}
	if err := e.requireBalance(p.XToken, p.Vault, out); err != nil {
		return SwapResult{}, err
	}
	if err := e.tokens.Transfer(p.YToken, caller, p.Vault, in); err != nil {
		return SwapResult{}, err
	}
	if out.IsPositive() {
		if err := e.tokens.Transfer(p.XToken, p.Vault, caller, out); err != nil {
			return SwapResult{}, err
		}
	}

	bin.YBalance = bin.YBalance.Add(in).Sub(protocolCut)
	bin.XBalance = bin.XBalance.Sub(out)
	e.store.PutBin(poolID, unsigned, bin)

	if protocolCut.IsPositive() {
		fees := e.store.GetUnclaimedFees(poolID)
		fees.YFee = fees.YFee.Add(protocolCut)
		e.store.PutUnclaimedFees(poolID, fees)
	}

	crossed := false
	if bin.XBalance.IsZero() && p.ActiveBinID > dlmm.MinBinID {
		p.ActiveBinID--
		p.BinChangeCount++
		e.store.PutPool(p)
		crossed = true
	}

	e.log.Debug("swap y for x",
		zap.Uint64("pool", poolID),
		zap.Int32("bin", binID),
		zap.String("in", in.String()),
		zap.String("out", out.String()),
		zap.Bool("crossed", crossed))
	return SwapResult{
		In:          in,
		Out:         out,
		Fee:         fee,
		BinID:       binID,
		ActiveBinID: p.ActiveBinID,
		Crossed:     crossed,
	}, nil
}
