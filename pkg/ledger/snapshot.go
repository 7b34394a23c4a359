package ledger

import (
	"bytes"
	"fmt"
	"sort"

	"cosmossdk.io/math"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/binfi-labs/dlmm-go/pkg/dlmm"
)

// Snapshot state layout, borsh encoded. Amounts travel as decimal
// strings so arbitrarily large reserves survive the round trip.
type snapshotState struct {
	Pools     []snapshotPool
	Bins      []snapshotBin
	Positions []snapshotPosition
	Fees      []snapshotFees
}

type snapshotPool struct {
	ID     uint64
	Name   string
	Symbol string
	URI    string

	XToken     solana.PublicKey
	YToken     solana.PublicKey
	Vault      solana.PublicKey
	FeeAddress solana.PublicKey

	ActiveBinID  int32
	BinStep      uint64
	InitialPrice string

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

	Status         uint8
	Created        bool
	BinChangeCount uint64
	CreationHeight uint64
}

type snapshotBin struct {
	PoolID        uint64
	BinID         uint32
	XBalance      string
	YBalance      string
	TotalLpSupply string
}

type snapshotPosition struct {
	PoolID uint64
	BinID  uint32
	Owner  solana.PublicKey
	Shares string
}

type snapshotFees struct {
	PoolID uint64
	XFee   string
	YFee   string
}

// Snapshot serializes the full ledger state of every pool in the store.
func Snapshot(s Store) ([]byte, error) {
	state := snapshotState{}

	for _, p := range s.Pools() {
		state.Pools = append(state.Pools, snapshotPool{
			ID:                        p.ID,
			Name:                      p.Name,
			Symbol:                    p.Symbol,
			URI:                       p.URI,
			XToken:                    p.XToken,
			YToken:                    p.YToken,
			Vault:                     p.Vault,
			FeeAddress:                p.FeeAddress,
			ActiveBinID:               p.ActiveBinID,
			BinStep:                   p.BinStep,
			InitialPrice:              p.InitialPrice.String(),
			XProtocolFee:              p.XProtocolFee,
			XProviderFee:              p.XProviderFee,
			XVariableFee:              p.XVariableFee,
			YProtocolFee:              p.YProtocolFee,
			YProviderFee:              p.YProviderFee,
			YVariableFee:              p.YVariableFee,
			VariableFeesManager:       p.VariableFeesManager,
			FreezeVariableFeesManager: p.FreezeVariableFeesManager,
			VariableFeesCooldown:      p.VariableFeesCooldown,
			LastVariableFeesUpdate:    p.LastVariableFeesUpdate,
			Status:                    uint8(p.Status),
			Created:                   p.Created,
			BinChangeCount:            p.BinChangeCount,
			CreationHeight:            p.CreationHeight,
		})

		// Map order is random; equal states must produce equal bytes.
		bins := s.Bins(p.ID)
		binIDs := make([]uint32, 0, len(bins))
		for binID := range bins {
			binIDs = append(binIDs, binID)
		}
		sort.Slice(binIDs, func(i, j int) bool { return binIDs[i] < binIDs[j] })
		for _, binID := range binIDs {
			b := bins[binID]
			state.Bins = append(state.Bins, snapshotBin{
				PoolID:        p.ID,
				BinID:         binID,
				XBalance:      b.XBalance.String(),
				YBalance:      b.YBalance.String(),
				TotalLpSupply: b.TotalLpSupply.String(),
			})
		}

		for _, pos := range s.Positions(p.ID) {
			state.Positions = append(state.Positions, snapshotPosition{
				PoolID: pos.Key.PoolID,
				BinID:  pos.Key.BinID,
				Owner:  pos.Key.Owner,
				Shares: pos.Shares.String(),
			})
		}

		fees := s.GetUnclaimedFees(p.ID)
		state.Fees = append(state.Fees, snapshotFees{
			PoolID: p.ID,
			XFee:   fees.XFee.String(),
			YFee:   fees.YFee.String(),
		})
	}

	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(state); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Restore rebuilds a MemoryStore from a Snapshot payload.
func Restore(data []byte) (*MemoryStore, error) {
	var state snapshotState
	if err := bin.NewBorshDecoder(data).Decode(&state); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	store := NewMemoryStore()
	for _, p := range state.Pools {
		initialPrice, err := parseAmount(p.InitialPrice)
		if err != nil {
			return nil, err
		}
		store.PutPool(Pool{
			ID:                        p.ID,
			Name:                      p.Name,
			Symbol:                    p.Symbol,
			URI:                       p.URI,
			XToken:                    p.XToken,
			YToken:                    p.YToken,
			Vault:                     p.Vault,
			FeeAddress:                p.FeeAddress,
			ActiveBinID:               p.ActiveBinID,
			BinStep:                   p.BinStep,
			InitialPrice:              initialPrice,
			XProtocolFee:              p.XProtocolFee,
			XProviderFee:              p.XProviderFee,
			XVariableFee:              p.XVariableFee,
			YProtocolFee:              p.YProtocolFee,
			YProviderFee:              p.YProviderFee,
			YVariableFee:              p.YVariableFee,
			VariableFeesManager:       p.VariableFeesManager,
			FreezeVariableFeesManager: p.FreezeVariableFeesManager,
			VariableFeesCooldown:      p.VariableFeesCooldown,
			LastVariableFeesUpdate:    p.LastVariableFeesUpdate,
			Status:                    dlmm.PoolStatus(p.Status),
			Created:                   p.Created,
			BinChangeCount:            p.BinChangeCount,
			CreationHeight:            p.CreationHeight,
		})
	}

	for _, b := range state.Bins {
		xBalance, err := parseAmount(b.XBalance)
		if err != nil {
			return nil, err
		}
		yBalance, err := parseAmount(b.YBalance)
		if err != nil {
			return nil, err
		}
		supply, err := parseAmount(b.TotalLpSupply)
		if err != nil {
			return nil, err
		}
		store.PutBin(b.PoolID, b.BinID, Bin{
			XBalance:      xBalance,
			YBalance:      yBalance,
			TotalLpSupply: supply,
		})
	}

	for _, pos := range state.Positions {
		shares, err := parseAmount(pos.Shares)
		if err != nil {
			return nil, err
		}
		store.PutShares(pos.PoolID, pos.BinID, pos.Owner, shares)
	}

	for _, f := range state.Fees {
		xFee, err := parseAmount(f.XFee)
		if err != nil {
			return nil, err
		}
		yFee, err := parseAmount(f.YFee)
		if err != nil {
			return nil, err
		}
		store.PutUnclaimedFees(f.PoolID, UnclaimedFees{XFee: xFee, YFee: yFee})
	}

	return store, nil
}

func parseAmount(s string) (math.Int, error) {
	v, ok := math.NewIntFromString(s)
	if !ok {
		return math.ZeroInt(), fmt.Errorf("invalid amount %q in snapshot", s)
	}
	return v, nil
}
