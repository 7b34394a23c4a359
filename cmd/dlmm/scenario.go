package main

import (
	"crypto/sha256"
	"fmt"
	"os"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/binfi-labs/dlmm-go/pkg/dlmm"
	"github.com/binfi-labs/dlmm-go/pkg/engine"
	"github.com/binfi-labs/dlmm-go/pkg/ledger"
	"github.com/binfi-labs/dlmm-go/pkg/token"
)

// scenarioRunner holds a fully in-memory deployment driven by a JSON
// scenario file.
type scenarioRunner struct {
	eng    *engine.Engine
	store  *ledger.MemoryStore
	tokens *token.MemoryLedger
	clock  *engine.ManualClock
	log    *zap.Logger

	admin  solana.PublicKey
	xToken solana.PublicKey
	yToken solana.PublicKey
	poolID uint64
}

// actorKey derives a stable address from an actor name.
func actorKey(name string) solana.PublicKey {
	return solana.PublicKey(sha256.Sum256([]byte("actor:" + name)))
}

// parseAmount reads a decimal-string token amount.
func parseAmount(r gjson.Result) (math.Int, error) {
	if !r.Exists() {
		return math.ZeroInt(), nil
	}
	v, ok := math.NewIntFromString(r.String())
	if !ok {
		return math.ZeroInt(), fmt.Errorf("invalid amount %q", r.String())
	}
	return v, nil
}

// parsePrice reads a human price like "1.25" into the fixed-point
// representation.
func parsePrice(s string) (math.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return math.ZeroInt(), fmt.Errorf("invalid price %q: %w", s, err)
	}
	scaled := d.Mul(decimal.NewFromInt(dlmm.PriceScale)).Truncate(0)
	return math.NewIntFromBigInt(scaled.BigInt()), nil
}

// renderPrice formats a fixed-point price back to a human string.
func renderPrice(p math.Int) string {
	return decimal.NewFromBigInt(p.BigInt(), -8).String()
}

// loadScenario builds an engine and pool from a scenario file.
func loadScenario(path string, logger *zap.Logger) (*scenarioRunner, gjson.Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, gjson.Result{}, fmt.Errorf("read scenario: %w", err)
	}
	if !gjson.ValidBytes(raw) {
		return nil, gjson.Result{}, fmt.Errorf("scenario %s is not valid JSON", path)
	}
	doc := gjson.ParseBytes(raw)

	r := &scenarioRunner{
		store:  ledger.NewMemoryStore(),
		tokens: token.NewMemoryLedger(),
		clock:  engine.NewManualClock(doc.Get("height").Uint()),
		log:    logger,
		admin:  actorKey("admin"),
	}

	reg := ledger.NewRegistry(r.admin)
	binStep := doc.Get("binStep").Uint()
	if binStep == 0 {
		binStep = 100
	}
	factors, err := dlmm.BuildBinFactors(binStep)
	if err != nil {
		return nil, gjson.Result{}, err
	}
	if err := reg.AddBinStep(binStep, factors); err != nil {
		return nil, gjson.Result{}, err
	}
	r.eng = engine.New(r.store, reg, r.tokens, r.clock, logger)

	r.xToken, r.yToken = actorKey("token:x"), actorKey("token:y")
	fund := func(name string, x, y math.Int) error {
		holder := actorKey(name)
		if err := r.tokens.Mint(r.xToken, holder, x); err != nil {
			return err
		}
		return r.tokens.Mint(r.yToken, holder, y)
	}

	seedX, err := parseAmount(doc.Get("seed.x"))
	if err != nil {
		return nil, gjson.Result{}, err
	}
	seedY, err := parseAmount(doc.Get("seed.y"))
	if err != nil {
		return nil, gjson.Result{}, err
	}
	burn, err := parseAmount(doc.Get("seed.burn"))
	if err != nil {
		return nil, gjson.Result{}, err
	}
	if burn.IsZero() {
		burn = math.NewInt(dlmm.MinimumBurntShares)
	}
	if err := fund("admin", seedX, seedY); err != nil {
		return nil, gjson.Result{}, err
	}
	for _, actor := range doc.Get("actors").Array() {
		x, err := parseAmount(actor.Get("x"))
		if err != nil {
			return nil, gjson.Result{}, err
		}
		y, err := parseAmount(actor.Get("y"))
		if err != nil {
			return nil, gjson.Result{}, err
		}
		if err := fund(actor.Get("name").String(), x, y); err != nil {
			return nil, gjson.Result{}, err
		}
	}

	priceStr := doc.Get("initialPrice").String()
	if priceStr == "" {
		priceStr = "1"
	}
	initialPrice, err := parsePrice(priceStr)
	if err != nil {
		return nil, gjson.Result{}, err
	}

	r.poolID, err = r.eng.CreatePool(r.admin, engine.CreatePoolParams{
		Name:         doc.Get("name").String(),
		Symbol:       doc.Get("symbol").String(),
		XToken:       r.xToken,
		YToken:       r.yToken,
		Vault:        actorKey("vault"),
		FeeAddress:   actorKey("fees"),
		BinStep:      binStep,
		InitialPrice: initialPrice,
		XProtocolFee: doc.Get("fees.xProtocol").Uint(),
		XProviderFee: doc.Get("fees.xProvider").Uint(),
		YProtocolFee: doc.Get("fees.yProtocol").Uint(),
		YProviderFee: doc.Get("fees.yProvider").Uint(),
		XAmount:      seedX,
		YAmount:      seedY,
		BurnAmount:   burn,
	})
	if err != nil {
		return nil, gjson.Result{}, fmt.Errorf("create pool: %w", err)
	}
	return r, doc, nil
}

// runOps executes the scenario's operation list in order.
func (r *scenarioRunner) runOps(doc gjson.Result) error {
	for i, op := range doc.Get("ops").Array() {
		if err := r.runOp(op); err != nil {
			return fmt.Errorf("op %d (%s): %w", i, op.Get("op").String(), err)
		}
	}
	return nil
}

func (r *scenarioRunner) runOp(op gjson.Result) error {
	actor := actorKey(op.Get("actor").String())
	bin := int32(op.Get("bin").Int())

	switch kind := op.Get("op").String(); kind {
	case "swap":
		amount, err := parseAmount(op.Get("amount"))
		if err != nil {
			return err
		}
		var res engine.SwapResult
		if op.Get("dir").String() == "yx" {
			res, err = r.eng.SwapYForX(actor, r.poolID, r.xToken, r.yToken, bin, amount)
		} else {
			res, err = r.eng.SwapXForY(actor, r.poolID, r.xToken, r.yToken, bin, amount)
		}
		if err != nil {
			return err
		}
		r.log.Info("swap",
			zap.Int32("bin", res.BinID),
			zap.String("in", res.In.String()),
			zap.String("out", res.Out.String()),
			zap.Bool("crossed", res.Crossed))
		return nil

	case "add":
		x, err := parseAmount(op.Get("x"))
		if err != nil {
			return err
		}
		y, err := parseAmount(op.Get("y"))
		if err != nil {
			return err
		}
		minLp, err := parseAmount(op.Get("minLp"))
		if err != nil {
			return err
		}
		if minLp.IsZero() {
			minLp = math.OneInt()
		}
		maxXFee, err := parseAmount(op.Get("maxXFee"))
		if err != nil {
			return err
		}
		maxYFee, err := parseAmount(op.Get("maxYFee"))
		if err != nil {
			return err
		}
		minted, err := r.eng.AddLiquidity(actor, r.poolID, r.xToken, r.yToken, bin, x, y, minLp, maxXFee, maxYFee)
		if err != nil {
			return err
		}
		r.log.Info("add", zap.Int32("bin", bin), zap.String("minted", minted.String()))
		return nil

	case "withdraw":
		lp, err := parseAmount(op.Get("lp"))
		if err != nil {
			return err
		}
		minX, err := parseAmount(op.Get("minX"))
		if err != nil {
			return err
		}
		minY, err := parseAmount(op.Get("minY"))
		if err != nil {
			return err
		}
		x, y, err := r.eng.WithdrawLiquidity(actor, r.poolID, r.xToken, r.yToken, bin, lp, minX, minY)
		if err != nil {
			return err
		}
		r.log.Info("withdraw", zap.Int32("bin", bin), zap.String("x", x.String()), zap.String("y", y.String()))
		return nil

	case "move":
		to := int32(op.Get("to").Int())
		lp, err := parseAmount(op.Get("lp"))
		if err != nil {
			return err
		}
		minLp, err := parseAmount(op.Get("minLp"))
		if err != nil {
			return err
		}
		if minLp.IsZero() {
			minLp = math.OneInt()
		}
		maxXFee, err := parseAmount(op.Get("maxXFee"))
		if err != nil {
			return err
		}
		maxYFee, err := parseAmount(op.Get("maxYFee"))
		if err != nil {
			return err
		}
		minted, err := r.eng.MoveLiquidity(actor, r.poolID, r.xToken, r.yToken, bin, to, lp, minLp, maxXFee, maxYFee)
		if err != nil {
			return err
		}
		r.log.Info("move", zap.Int32("from", bin), zap.Int32("to", to), zap.String("minted", minted.String()))
		return nil

	case "claim":
		claimed, err := r.eng.ClaimProtocolFees(r.poolID, r.xToken, r.yToken)
		if err != nil {
			return err
		}
		r.log.Info("claim", zap.Bool("claimed", claimed))
		return nil

	case "advance":
		r.clock.Advance(op.Get("heights").Uint())
		return nil

	default:
		return fmt.Errorf("unknown op %q", kind)
	}
}

// summary logs the pool's final state.
func (r *scenarioRunner) summary() error {
	pool, err := r.eng.Pool(r.poolID)
	if err != nil {
		return err
	}
	price, err := r.eng.BinPrice(r.poolID, pool.ActiveBinID)
	if err != nil {
		return err
	}
	fees := r.store.GetUnclaimedFees(r.poolID)
	r.log.Info("final state",
		zap.Int32("active_bin", pool.ActiveBinID),
		zap.String("active_price", renderPrice(price)),
		zap.Uint64("bin_changes", pool.BinChangeCount),
		zap.String("unclaimed_x", fees.XFee.String()),
		zap.String("unclaimed_y", fees.YFee.String()),
		zap.Int("bins", len(r.store.Bins(r.poolID))))
	return nil
}
