package dlmm

import (
	"math/big"

	"cosmossdk.io/math"
)

// Rounding represents the rounding mode for mathematical operations.
// The placement of RoundingUp vs RoundingDown across the swap and
// liquidity formulas is a security property: capacity caps round up,
// fees and payouts round down, so rounding error always favors the
// pool.
type Rounding int

const (
	RoundingUp Rounding = iota
	RoundingDown
)

// MulDiv computes x * y / denominator with the requested rounding.
// The product is taken at full precision before dividing.
func MulDiv(x, y, denominator math.Int, rounding Rounding) math.Int {
	prod := new(big.Int).Mul(x.BigInt(), y.BigInt())

	div, mod := new(big.Int).DivMod(prod, denominator.BigInt(), new(big.Int))
	if rounding == RoundingUp && mod.Sign() != 0 {
		div.Add(div, big.NewInt(1))
	}

	return math.NewIntFromBigInt(div)
}

// MulDivUint64 is MulDiv over plain uint64 scalars, for the constant
// denominators PriceScale and FeeScale.
func MulDivUint64(x math.Int, y, denominator uint64, rounding Rounding) math.Int {
	return MulDiv(x, math.NewIntFromUint64(y), math.NewIntFromUint64(denominator), rounding)
}

// MinInt returns the smaller of a and b.
func MinInt(a, b math.Int) math.Int {
	if a.LT(b) {
		return a
	}
	return b
}
