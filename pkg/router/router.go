// Package router wraps the pool engine with the caller-facing swap
// surface: bin-slippage and minimum-received guards, multi-bin
// exact-in routing, and batched swap lists.
package router

import (
	"errors"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/binfi-labs/dlmm-go/pkg/dlmm"
	"github.com/binfi-labs/dlmm-go/pkg/engine"
)

// MaxSwapResults caps a batched swap list.
const MaxSwapResults = 20

// SwapRequest describes one routed swap. ExpectedBinID and
// BinTolerance bound how far the active bin may have drifted from the
// bin the caller priced against; MinReceived bounds the total output.
// MaxBins limits how many consecutive bins an exact-in swap may cross
// and defaults to 1.
type SwapRequest struct {
	PoolID        uint64
	XToken        solana.PublicKey
	YToken        solana.PublicKey
	XForY         bool
	Amount        math.Int
	ExpectedBinID int32
	BinTolerance  uint32
	MinReceived   math.Int
	MaxBins       int
}

// RouteResult is the outcome of one routed swap.
type RouteResult struct {
	Steps    []engine.SwapResult
	TotalIn  math.Int
	TotalOut math.Int
}

// Router executes guarded swaps against a single engine.
type Router struct {
	engine *engine.Engine
	log    *zap.Logger
}

// New builds a Router. A nil logger is replaced with a no-op logger.
func New(eng *engine.Engine, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{engine: eng, log: log}
}

// Swap quotes and executes one request. The quote runs first so a
// request that would cross the caller's slippage or minimum-received
// bounds fails before any state changes.
func (r *Router) Swap(caller solana.PublicKey, req SwapRequest) (RouteResult, error) {
	maxBins := req.MaxBins
	if maxBins <= 0 {
		maxBins = 1
	}

	pool, err := r.engine.Pool(req.PoolID)
	if err != nil {
		if errors.Is(err, dlmm.ErrNoPoolData) {
			return RouteResult{}, dlmm.ErrNoActiveBinData
		}
		return RouteResult{}, err
	}
	if binDistance(pool.ActiveBinID, req.ExpectedBinID) > req.BinTolerance {
		return RouteResult{}, dlmm.ErrBinSlippage
	}

	quote, err := r.engine.QuoteExactIn(caller, req.PoolID, req.XToken, req.YToken, req.XForY, req.Amount, maxBins)
	if err != nil {
		return RouteResult{}, err
	}
	if !req.MinReceived.IsNil() && totalOut(quote).LT(req.MinReceived) {
		return RouteResult{}, dlmm.ErrMinimumReceived
	}

	steps, err := r.engine.SwapExactIn(caller, req.PoolID, req.XToken, req.YToken, req.XForY, req.Amount, maxBins)
	if err != nil {
		return RouteResult{}, err
	}
	res := RouteResult{Steps: steps, TotalIn: totalIn(steps), TotalOut: totalOut(steps)}
	r.log.Debug("routed swap",
		zap.Uint64("pool", req.PoolID),
		zap.Bool("x_for_y", req.XForY),
		zap.Int("bins", len(steps)),
		zap.String("in", res.TotalIn.String()),
		zap.String("out", res.TotalOut.String()))
	return res, nil
}

// SwapMany executes a list of requests in order, stopping at the first
// failure. The list must be non-empty and fit MaxSwapResults.
func (r *Router) SwapMany(caller solana.PublicKey, reqs []SwapRequest) ([]RouteResult, error) {
	if len(reqs) == 0 {
		return nil, dlmm.ErrEmptySwapsList
	}
	if len(reqs) > MaxSwapResults {
		return nil, dlmm.ErrResultsListOverflow
	}
	results := make([]RouteResult, 0, len(reqs))
	for _, req := range reqs {
		res, err := r.Swap(caller, req)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// LiquidityRequest describes one batched liquidity change. For
// deposits Lp is the minimum acceptable mint; for withdrawals it is
// the share amount to redeem.
type LiquidityRequest struct {
	PoolID  uint64
	XToken  solana.PublicKey
	YToken  solana.PublicKey
	BinID   int32
	X       math.Int
	Y       math.Int
	Lp      math.Int
	MaxXFee math.Int
	MaxYFee math.Int
	MinX    math.Int
	MinY    math.Int
}

// MoveRequest describes one batched liquidity move between bins.
type MoveRequest struct {
	PoolID    uint64
	XToken    solana.PublicKey
	YToken    solana.PublicKey
	FromBinID int32
	ToBinID   int32
	Lp        math.Int
	MinLp     math.Int
	MaxXFee   math.Int
	MaxYFee   math.Int
}

// AddLiquidityMany deposits into each requested bin in order, stopping
// at the first failure. Returns the shares minted per request.
func (r *Router) AddLiquidityMany(caller solana.PublicKey, reqs []LiquidityRequest) ([]math.Int, error) {
	if len(reqs) == 0 {
		return nil, dlmm.ErrEmptySwapsList
	}
	minted := make([]math.Int, 0, len(reqs))
	for _, req := range reqs {
		lp, err := r.engine.AddLiquidity(caller, req.PoolID, req.XToken, req.YToken, req.BinID, req.X, req.Y, req.Lp, req.MaxXFee, req.MaxYFee)
		if err != nil {
			return minted, err
		}
		minted = append(minted, lp)
	}
	return minted, nil
}

// WithdrawLiquidityMany redeems shares from each requested bin in
// order, stopping at the first failure.
func (r *Router) WithdrawLiquidityMany(caller solana.PublicKey, reqs []LiquidityRequest) ([]math.Int, []math.Int, error) {
	if len(reqs) == 0 {
		return nil, nil, dlmm.ErrEmptySwapsList
	}
	xs := make([]math.Int, 0, len(reqs))
	ys := make([]math.Int, 0, len(reqs))
	for _, req := range reqs {
		x, y, err := r.engine.WithdrawLiquidity(caller, req.PoolID, req.XToken, req.YToken, req.BinID, req.Lp, req.MinX, req.MinY)
		if err != nil {
			return xs, ys, err
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	return xs, ys, nil
}

// MoveLiquidityMany relocates shares between bins for each request in
// order, stopping at the first failure.
func (r *Router) MoveLiquidityMany(caller solana.PublicKey, reqs []MoveRequest) ([]math.Int, error) {
	if len(reqs) == 0 {
		return nil, dlmm.ErrEmptySwapsList
	}
	minted := make([]math.Int, 0, len(reqs))
	for _, req := range reqs {
		lp, err := r.engine.MoveLiquidity(caller, req.PoolID, req.XToken, req.YToken, req.FromBinID, req.ToBinID, req.Lp, req.MinLp, req.MaxXFee, req.MaxYFee)
		if err != nil {
			return minted, err
		}
		minted = append(minted, lp)
	}
	return minted, nil
}

// ClaimRequest names one pool and its token pair for a batched
// protocol fee claim.
type ClaimRequest struct {
	PoolID uint64
	XToken solana.PublicKey
	YToken solana.PublicKey
}

// ClaimProtocolFeesMany triggers a protocol fee claim on each pool.
// The per-pool booleans report whether anything was transferred.
func (r *Router) ClaimProtocolFeesMany(reqs []ClaimRequest) ([]bool, error) {
	if len(reqs) == 0 {
		return nil, dlmm.ErrEmptySwapsList
	}
	claimed := make([]bool, 0, len(reqs))
	for _, req := range reqs {
		ok, err := r.engine.ClaimProtocolFees(req.PoolID, req.XToken, req.YToken)
		if err != nil {
			return claimed, err
		}
		claimed = append(claimed, ok)
	}
	return claimed, nil
}

// Result picks the i-th result out of a batch.
func Result(results []RouteResult, i int) (RouteResult, error) {
	if i < 0 || i >= len(results) {
		return RouteResult{}, dlmm.ErrNoResultData
	}
	return results[i], nil
}

func binDistance(a, b int32) uint32 {
	d := int64(a) - int64(b)
	if d < 0 {
		d = -d
	}
	return uint32(d)
}

func totalIn(steps []engine.SwapResult) math.Int {
	sum := math.ZeroInt()
	for _, s := range steps {
		sum = sum.Add(s.In)
	}
	return sum
}

func totalOut(steps []engine.SwapResult) math.Int {
	sum := math.ZeroInt()
	for _, s := range steps {
		sum = sum.Add(s.Out)
	}
	return sum
}
