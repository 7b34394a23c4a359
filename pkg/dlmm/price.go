package dlmm

import "cosmossdk.io/math"

// BinPrice computes the price of a bin from the pool's initial price
// and the factor table registered for its bin step:
//
//	price = floor(initialPrice * PriceScale / factor[toUnsigned(binID)])
//
// Factors ascend with the bin index, so bins above the center carry
// strictly lower prices and bins below strictly higher ones.
func BinPrice(initialPrice math.Int, factors FactorTable, binID int32) (math.Int, error) {
	if !initialPrice.IsPositive() {
		return math.ZeroInt(), ErrInvalidInitialPrice
	}
	if len(factors) != NumOfBins {
		return math.ZeroInt(), ErrNoBinFactors
	}

	unsigned, err := ToUnsignedBinID(binID)
	if err != nil {
		return math.ZeroInt(), err
	}

	factor := factors[unsigned]
	if !factor.IsPositive() {
		return math.ZeroInt(), ErrInvalidBinFactor
	}

	price := MulDiv(initialPrice, math.NewInt(PriceScale), factor, RoundingDown)
	if !price.IsPositive() {
		return math.ZeroInt(), ErrInvalidBinPrice
	}
	return price, nil
}

// LiquidityValue is a bin's fungible unit of value: the X side valued
// in Y terms at the bin price, plus the Y side.
func LiquidityValue(xAmount, yAmount, binPrice math.Int) math.Int {
	xValue := MulDiv(xAmount, binPrice, math.NewInt(PriceScale), RoundingDown)
	return xValue.Add(yAmount)
}
