package dlmm

import (
	"cosmossdk.io/math"
	"lukechampine.com/uint128"
)

// FactorTable is the precomputed price-factor list for one bin step:
// one strictly ascending positive factor per unsigned bin index. Tables
// are registered once per bin step and treated as immutable afterwards.
type FactorTable []math.Int

// ValidateBinFactors checks a candidate factor table for a bin step.
// The center factor anchors the table: the center bin's price must be
// exactly the pool's initial price.
func ValidateBinFactors(binStep uint64, factors FactorTable) error {
	if binStep == 0 || binStep >= FeeScale {
		return ErrInvalidBinStep
	}
	if len(factors) != NumOfBins {
		return ErrInvalidBinFactorsLength
	}
	if !factors[0].IsPositive() {
		return ErrInvalidFirstBinFactor
	}
	if !factors[CenterBinID].Equal(math.NewInt(PriceScale)) {
		return ErrInvalidCenterBinFactor
	}
	for i := 1; i < len(factors); i++ {
		if !factors[i].IsPositive() {
			return ErrInvalidBinFactor
		}
		if factors[i].LTE(factors[i-1]) {
			return ErrUnsortedBinFactorsList
		}
	}
	return nil
}

// BuildBinFactors generates the canonical factor table for a bin step.
// Starting from PriceScale at the center, each step up multiplies by
// (FeeScale+binStep)/FeeScale and each step down divides by it, flooring
// at every step exactly like the reference generator. uint128 keeps the
// upper half of the table from overflowing for large steps.
func BuildBinFactors(binStep uint64) (FactorTable, error) {
	if binStep == 0 || binStep >= FeeScale {
		return nil, ErrInvalidBinStep
	}

	factors := make(FactorTable, NumOfBins)
	factors[CenterBinID] = math.NewInt(PriceScale)

	num := uint128.From64(FeeScale + binStep)
	den := uint128.From64(FeeScale)

	// Largest factor whose product with num still fits in 128 bits.
	mulLimit := uint128.Max.Div(num)

	cur := uint128.From64(PriceScale)
	for i := CenterBinID + 1; i < NumOfBins; i++ {
		if cur.Cmp(mulLimit) > 0 {
			return nil, ErrInvalidBinFactor
		}
		cur = cur.Mul(num).Div(den)
		factors[i] = uint128ToInt(cur)
	}

	cur = uint128.From64(PriceScale)
	for i := CenterBinID - 1; i >= 0; i-- {
		cur = cur.Mul(den).Div(num)
		if cur.IsZero() {
			return nil, ErrInvalidBinFactor
		}
		factors[i] = uint128ToInt(cur)
	}

	if err := ValidateBinFactors(binStep, factors); err != nil {
		return nil, err
	}
	return factors, nil
}

func uint128ToInt(u uint128.Uint128) math.Int {
	return math.NewIntFromBigInt(u.Big())
}
