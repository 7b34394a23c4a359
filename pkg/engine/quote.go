package engine

import (
	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"

	"github.com/binfi-labs/dlmm-go/pkg/dlmm"
	"github.com/binfi-labs/dlmm-go/pkg/ledger"
)

// stepOutcome is one bin's worth of a swap, computed on copies.
type stepOutcome struct {
	result      SwapResult
	bin         ledger.Bin
	protocolCut math.Int
}

// step computes a single-bin swap against a copy of the bin. It does
// not touch the store.
func step(p *ledger.Pool, bin ledger.Bin, price math.Int, xForY bool, amount math.Int, exempt bool) (stepOutcome, error) {
	var totalFee, protocolFee uint64
	if xForY {
		totalFee, protocolFee = p.TotalXFee(), p.XProtocolFee
	} else {
		totalFee, protocolFee = p.TotalYFee(), p.YProtocolFee
	}
	if exempt {
		totalFee, protocolFee = 0, 0
	}

	var maxIn math.Int
	if xForY {
		maxIn = dlmm.MulDiv(bin.YBalance, math.NewInt(dlmm.PriceScale), price, dlmm.RoundingUp)
	} else {
		maxIn = dlmm.MulDiv(bin.XBalance, price, math.NewInt(dlmm.PriceScale), dlmm.RoundingUp)
	}
	if totalFee > 0 {
		maxIn = dlmm.MulDivUint64(maxIn, dlmm.FeeScale, dlmm.FeeScale-totalFee, dlmm.RoundingUp)
	}
	in := dlmm.MinInt(amount, maxIn)
	if in.IsZero() {
		return stepOutcome{}, dlmm.ErrInvalidAmount
	}

	fee := dlmm.MulDivUint64(in, totalFee, dlmm.FeeScale, dlmm.RoundingDown)
	net := in.Sub(fee)
	protocolCut := dlmm.MulDivUint64(in, protocolFee, dlmm.FeeScale, dlmm.RoundingDown)
	var out math.Int
	if xForY {
		out = dlmm.MulDiv(net, price, math.NewInt(dlmm.PriceScale), dlmm.RoundingDown)
		if out.GT(bin.YBalance) {
			out = bin.YBalance
		}
		// The protocol cut leaves the reserve for the claim
		// accumulator; the provider share stays in the bin.
		bin.XBalance = bin.XBalance.Add(in).Sub(protocolCut)
		bin.YBalance = bin.YBalance.Sub(out)
	} else {
		out = dlmm.MulDiv(net, math.NewInt(dlmm.PriceScale), price, dlmm.RoundingDown)
		if out.GT(bin.XBalance) {
			out = bin.XBalance
		}
		bin.YBalance = bin.YBalance.Add(in).Sub(protocolCut)
		bin.XBalance = bin.XBalance.Sub(out)
	}

	crossed := false
	binAfter := p.ActiveBinID
	if xForY && bin.YBalance.IsZero() && p.ActiveBinID < dlmm.MaxBinID {
		binAfter++
		crossed = true
	}
	if !xForY && bin.XBalance.IsZero() && p.ActiveBinID > dlmm.MinBinID {
		binAfter--
		crossed = true
	}

	return stepOutcome{
		result: SwapResult{
			In:          in,
			Out:         out,
			Fee:         fee,
			BinID:       p.ActiveBinID,
			ActiveBinID: binAfter,
			Crossed:     crossed,
		},
		bin:         bin,
		protocolCut: protocolCut,
	}, nil
}

// walkPath runs a swap across up to maxBins consecutive bins on copies
// of the state, returning the per-bin results. When commit is true the
// computed state and the caller/vault token movements are applied in
// one block at the end.
func (e *Engine) walkPath(caller solana.PublicKey, poolID uint64, xToken, yToken solana.PublicKey, xForY bool, amount math.Int, maxBins int, commit bool) ([]SwapResult, error) {
	p, err := e.pool(poolID)
	if err != nil {
		return nil, err
	}
	if err := matchPoolTokens(&p, xToken, yToken); err != nil {
		return nil, err
	}
	if err := requireEnabled(&p); err != nil {
		return nil, err
	}
	if amount.IsNil() || !amount.IsPositive() {
		return nil, dlmm.ErrInvalidAmount
	}
	if maxBins <= 0 {
		return nil, dlmm.ErrInvalidAmount
	}
	exempt := e.exemptions[exemptKey{PoolID: poolID, Addr: caller}]

	var (
		results   []SwapResult
		bins      = make(map[uint32]ledger.Bin)
		touched   []uint32
		remaining = amount
		totalIn   = math.ZeroInt()
		totalOut  = math.ZeroInt()
		totalCut  = math.ZeroInt()
	)
	for len(results) < maxBins && remaining.IsPositive() {
		unsigned, err := dlmm.ToUnsignedBinID(p.ActiveBinID)
		if err != nil {
			return nil, err
		}
		price, err := e.binPrice(&p, p.ActiveBinID)
		if err != nil {
			return nil, err
		}
		bin, seen := bins[unsigned]
		if !seen {
			bin = e.store.GetBin(poolID, unsigned)
			touched = append(touched, unsigned)
		}

		outcome, err := step(&p, bin, price, xForY, remaining, exempt)
		if err != nil {
			if len(results) > 0 {
				break
			}
			return nil, err
		}
		bins[unsigned] = outcome.bin
		results = append(results, outcome.result)
		remaining = remaining.Sub(outcome.result.In)
		totalIn = totalIn.Add(outcome.result.In)
		totalOut = totalOut.Add(outcome.result.Out)
		totalCut = totalCut.Add(outcome.protocolCut)
		if outcome.result.Crossed {
			p.ActiveBinID = outcome.result.ActiveBinID
			p.BinChangeCount++
		} else {
			break
		}
	}

	if !commit {
		return results, nil
	}

	inToken, outToken := p.XToken, p.YToken
	if !xForY {
		inToken, outToken = p.YToken, p.XToken
	}
	if err := e.requireBalance(inToken, caller, totalIn); err != nil {
		return nil, err
	}
	if err := e.requireBalance(outToken, p.Vault, totalOut); err != nil {
		return nil, err
	}
	if err := e.tokens.Transfer(inToken, caller, p.Vault, totalIn); err != nil {
		return nil, err
	}
	if totalOut.IsPositive() {
		if err := e.tokens.Transfer(outToken, p.Vault, caller, totalOut); err != nil {
			return nil, err
		}
	}
	for _, unsigned := range touched {
		e.store.PutBin(poolID, unsigned, bins[unsigned])
	}
	e.store.PutPool(p)
	if totalCut.IsPositive() {
		fees := e.store.GetUnclaimedFees(poolID)
		if xForY {
			fees.XFee = fees.XFee.Add(totalCut)
		} else {
			fees.YFee = fees.YFee.Add(totalCut)
		}
		e.store.PutUnclaimedFees(poolID, fees)
	}
	return results, nil
}

// QuoteExactIn simulates a swap across up to maxBins consecutive bins
// without committing anything.
func (e *Engine) QuoteExactIn(caller solana.PublicKey, poolID uint64, xToken, yToken solana.PublicKey, xForY bool, amount math.Int, maxBins int) ([]SwapResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.walkPath(caller, poolID, xToken, yToken, xForY, amount, maxBins, false)
}

// SwapExactIn executes a swap across up to maxBins consecutive bins,
// crossing each drained bin, and commits the whole path atomically.
func (e *Engine) SwapExactIn(caller solana.PublicKey, poolID uint64, xToken, yToken solana.PublicKey, xForY bool, amount math.Int, maxBins int) ([]SwapResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.walkPath(caller, poolID, xToken, yToken, xForY, amount, maxBins, true)
}
