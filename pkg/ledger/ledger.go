// Package ledger is the bin ledger storage engine: per-pool fee and
// pointer configuration, per-bin reserves and LP-share supply,
// per-(bin,user) share balances, and the unclaimed protocol-fee
// accumulators. The engine package owns all mutation rules; this
// package only stores state.
package ledger

import (
	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"

	"github.com/binfi-labs/dlmm-go/pkg/dlmm"
)

// Pool is the per-pair configuration block plus the active-bin pointer.
type Pool struct {
	ID     uint64
	Name   string
	Symbol string
	URI    string

	XToken solana.PublicKey
	YToken solana.PublicKey
	// Vault holds the pool's token balances on the external token
	// ledger.
	Vault      solana.PublicKey
	FeeAddress solana.PublicKey

	ActiveBinID  int32
	BinStep      uint64
	InitialPrice math.Int

	XProtocolFee uint64
	XProviderFee uint64
	XVariableFee uint64
	YProtocolFee uint64
	YProviderFee uint64
	YVariableFee uint64

	VariableFeesManager       solana.PublicKey
	FreezeVariableFeesManager bool
	VariableFeesCooldown      uint64
	LastVariableFeesUpdate    uint64

	Status         dlmm.PoolStatus
	Created        bool
	BinChangeCount uint64
	CreationHeight uint64
}

// TotalXFee is the summed X-side fee rate in basis points.
func (p *Pool) TotalXFee() uint64 {
	return p.XProtocolFee + p.XProviderFee + p.XVariableFee
}

// TotalYFee is the summed Y-side fee rate in basis points.
func (p *Pool) TotalYFee() uint64 {
	return p.YProtocolFee + p.YProviderFee + p.YVariableFee
}

// Bin holds one price slot's reserves and outstanding LP-share supply.
type Bin struct {
	XBalance      math.Int
	YBalance      math.Int
	TotalLpSupply math.Int
}

// NewBin returns an all-zero bin record.
func NewBin() Bin {
	return Bin{
		XBalance:      math.ZeroInt(),
		YBalance:      math.ZeroInt(),
		TotalLpSupply: math.ZeroInt(),
	}
}

// IsEmpty reports whether the bin holds no reserves and no supply.
func (b Bin) IsEmpty() bool {
	return b.XBalance.IsZero() && b.YBalance.IsZero() && b.TotalLpSupply.IsZero()
}

// UnclaimedFees is a pool's protocol-fee accumulator. It only grows
// between claims and is zeroed atomically when claimed.
type UnclaimedFees struct {
	XFee math.Int
	YFee math.Int
}

// NewUnclaimedFees returns a zeroed accumulator.
func NewUnclaimedFees() UnclaimedFees {
	return UnclaimedFees{XFee: math.ZeroInt(), YFee: math.ZeroInt()}
}

// PositionKey identifies a per-(bin,user) LP-share balance.
type PositionKey struct {
	PoolID uint64
	BinID  uint32
	Owner  solana.PublicKey
}

// Position is one user's LP-share balance in one bin.
type Position struct {
	Key    PositionKey
	Shares math.Int
}

// Store is the mutable state surface the engine operates on. Absent
// bins and positions read as zero records; writing a zero record is
// equivalent to deleting it.
type Store interface {
	GetPool(id uint64) (Pool, bool)
	PutPool(p Pool)
	Pools() []Pool

	GetBin(poolID uint64, binID uint32) Bin
	PutBin(poolID uint64, binID uint32, b Bin)
	Bins(poolID uint64) map[uint32]Bin

	GetShares(poolID uint64, binID uint32, owner solana.PublicKey) math.Int
	PutShares(poolID uint64, binID uint32, owner solana.PublicKey, shares math.Int)
	Positions(poolID uint64) []Position

	GetUnclaimedFees(poolID uint64) UnclaimedFees
	PutUnclaimedFees(poolID uint64, f UnclaimedFees)
}
