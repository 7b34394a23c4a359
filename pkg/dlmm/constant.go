package dlmm

// Bin-id range constants. Signed bin ids are zero-centered; storage uses
// the unsigned index obtained by shifting with CenterBinID.
const (
	NumOfBins   = 1001
	CenterBinID = 500
	MaxBinID    = 500
	MinBinID    = -500
)

// Scaling constants shared by the price and fee arithmetic.
const (
	// PriceScale is the fixed-point denominator for bin prices (1e8).
	PriceScale = 100_000_000

	// FeeScale is the basis-point denominator for all fee rates.
	FeeScale = 10_000
)

// Registry and pool-creation limits.
const (
	// MaxAdmins bounds the registry admin list.
	MaxAdmins = 5

	// MaxBinSteps bounds the number of registered factor tables.
	MaxBinSteps = 25

	// MinimumBurntShares is the smallest share burn accepted at pool
	// creation. Burnt shares stay in the bin's total supply forever,
	// which keeps a withdrawal from ever draining a created pool's
	// active bin to a zero-supply state.
	MinimumBurntShares = 1000
)

// PoolStatus gates swaps and deposits on a pool.
type PoolStatus uint8

const (
	PoolStatusEnabled PoolStatus = iota
	PoolStatusDisabled
)

// BinPosition is the three-way relation of a target bin to the active
// bin. It decides which token sides a deposit may carry and is resolved
// once at the start of every liquidity operation.
type BinPosition uint8

const (
	BelowActive BinPosition = iota // accepts Y only
	AtActive                       // accepts X and Y
	AboveActive                    // accepts X only
)

func (p BinPosition) String() string {
	switch p {
	case BelowActive:
		return "below_active"
	case AtActive:
		return "at_active"
	case AboveActive:
		return "above_active"
	}
	return "unknown"
}

// PositionOf classifies binID against the pool's active bin.
func PositionOf(binID, activeBinID int32) BinPosition {
	switch {
	case binID < activeBinID:
		return BelowActive
	case binID > activeBinID:
		return AboveActive
	default:
		return AtActive
	}
}
