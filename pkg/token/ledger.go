// Package token provides the fungible token ledger the pool engine
// settles swaps and liquidity flows against.
package token

import (
	"sync"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"

	"github.com/binfi-labs/dlmm-go/pkg/dlmm"
)

// Ledger is the balance book for every token the engine touches.
// Implementations must reject transfers that would overdraw a holder.
type Ledger interface {
	// Mint credits amount of token to holder.
	Mint(token, holder solana.PublicKey, amount math.Int) error
	// Burn debits amount of token from holder.
	Burn(token, holder solana.PublicKey, amount math.Int) error
	// Transfer moves amount of token from one holder to another.
	Transfer(token, from, to solana.PublicKey, amount math.Int) error
	// BalanceOf reports holder's balance of token. Unknown holders
	// read as zero.
	BalanceOf(token, holder solana.PublicKey) math.Int
}

type balanceKey struct {
	Token  solana.PublicKey
	Holder solana.PublicKey
}

// MemoryLedger is an in-memory Ledger, safe for concurrent use.
type MemoryLedger struct {
	mu       sync.RWMutex
	balances map[balanceKey]math.Int
}

// NewMemoryLedger returns an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[balanceKey]math.Int)}
}

func (l *MemoryLedger) Mint(token, holder solana.PublicKey, amount math.Int) error {
	if amount.IsNegative() {
		return dlmm.ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(token, holder, amount)
	return nil
}

func (l *MemoryLedger) Burn(token, holder solana.PublicKey, amount math.Int) error {
	if amount.IsNegative() {
		return dlmm.ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debit(token, holder, amount)
}

func (l *MemoryLedger) Transfer(token, from, to solana.PublicKey, amount math.Int) error {
	if amount.IsNegative() {
		return dlmm.ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.debit(token, from, amount); err != nil {
		return err
	}
	l.credit(token, to, amount)
	return nil
}

func (l *MemoryLedger) BalanceOf(token, holder solana.PublicKey) math.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if bal, ok := l.balances[balanceKey{Token: token, Holder: holder}]; ok {
		return bal
	}
	return math.ZeroInt()
}

func (l *MemoryLedger) credit(token, holder solana.PublicKey, amount math.Int) {
	key := balanceKey{Token: token, Holder: holder}
	bal, ok := l.balances[key]
	if !ok {
		bal = math.ZeroInt()
	}
	l.balances[key] = bal.Add(amount)
}

func (l *MemoryLedger) debit(token, holder solana.PublicKey, amount math.Int) error {
	key := balanceKey{Token: token, Holder: holder}
	bal, ok := l.balances[key]
	if !ok {
		bal = math.ZeroInt()
	}
	if bal.LT(amount) {
		return dlmm.ErrInsufficientBalance
	}
	next := bal.Sub(amount)
	if next.IsZero() {
		delete(l.balances, key)
		return nil
	}
	l.balances[key] = next
	return nil
}
