package ledger

import (
	"sort"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
)

// MemoryStore is the in-process Store implementation backing the engine
// and the simulation CLI. Operations are serialized by the engine; the
// store itself does plain map bookkeeping.
type MemoryStore struct {
	pools     map[uint64]Pool
	bins      map[uint64]map[uint32]Bin
	positions map[PositionKey]math.Int
	fees      map[uint64]UnclaimedFees
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pools:     make(map[uint64]Pool),
		bins:      make(map[uint64]map[uint32]Bin),
		positions: make(map[PositionKey]math.Int),
		fees:      make(map[uint64]UnclaimedFees),
	}
}

func (s *MemoryStore) GetPool(id uint64) (Pool, bool) {
	p, ok := s.pools[id]
	return p, ok
}

func (s *MemoryStore) PutPool(p Pool) {
	s.pools[p.ID] = p
}

func (s *MemoryStore) Pools() []Pool {
	out := make([]Pool, 0, len(s.pools))
	for _, p := range s.pools {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) GetBin(poolID uint64, binID uint32) Bin {
	if b, ok := s.bins[poolID][binID]; ok {
		return b
	}
	return NewBin()
}

func (s *MemoryStore) PutBin(poolID uint64, binID uint32, b Bin) {
	byBin, ok := s.bins[poolID]
	if !ok {
		byBin = make(map[uint32]Bin)
		s.bins[poolID] = byBin
	}
	if b.IsEmpty() {
		delete(byBin, binID)
		return
	}
	byBin[binID] = b
}

func (s *MemoryStore) Bins(poolID uint64) map[uint32]Bin {
	out := make(map[uint32]Bin, len(s.bins[poolID]))
	for id, b := range s.bins[poolID] {
		out[id] = b
	}
	return out
}

func (s *MemoryStore) GetShares(poolID uint64, binID uint32, owner solana.PublicKey) math.Int {
	if shares, ok := s.positions[PositionKey{PoolID: poolID, BinID: binID, Owner: owner}]; ok {
		return shares
	}
	return math.ZeroInt()
}

func (s *MemoryStore) PutShares(poolID uint64, binID uint32, owner solana.PublicKey, shares math.Int) {
	key := PositionKey{PoolID: poolID, BinID: binID, Owner: owner}
	if shares.IsZero() {
		delete(s.positions, key)
		return
	}
	s.positions[key] = shares
}

func (s *MemoryStore) Positions(poolID uint64) []Position {
	out := make([]Position, 0)
	for key, shares := range s.positions {
		if key.PoolID != poolID {
			continue
		}
		out = append(out, Position{Key: key, Shares: shares})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.BinID != out[j].Key.BinID {
			return out[i].Key.BinID < out[j].Key.BinID
		}
		return out[i].Key.Owner.String() < out[j].Key.Owner.String()
	})
	return out
}

func (s *MemoryStore) GetUnclaimedFees(poolID uint64) UnclaimedFees {
	if f, ok := s.fees[poolID]; ok {
		return f
	}
	return NewUnclaimedFees()
}

func (s *MemoryStore) PutUnclaimedFees(poolID uint64, f UnclaimedFees) {
	s.fees[poolID] = f
}
