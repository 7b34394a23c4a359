package token

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binfi-labs/dlmm-go/pkg/dlmm"
)

func addr(b byte) solana.PublicKey {
	var key solana.PublicKey
	key[0] = b
	return key
}

func TestMintBurnTransfer(t *testing.T) {
	l := NewMemoryLedger()
	tok, alice, bob := addr(1), addr(2), addr(3)

	require.NoError(t, l.Mint(tok, alice, math.NewInt(1000)))
	assert.Equal(t, int64(1000), l.BalanceOf(tok, alice).Int64())

	require.NoError(t, l.Transfer(tok, alice, bob, math.NewInt(400)))
	assert.Equal(t, int64(600), l.BalanceOf(tok, alice).Int64())
	assert.Equal(t, int64(400), l.BalanceOf(tok, bob).Int64())

	require.NoError(t, l.Burn(tok, bob, math.NewInt(400)))
	assert.True(t, l.BalanceOf(tok, bob).IsZero())
}

func TestOverdraw(t *testing.T) {
	l := NewMemoryLedger()
	tok, alice, bob := addr(1), addr(2), addr(3)
	require.NoError(t, l.Mint(tok, alice, math.NewInt(100)))

	err := l.Transfer(tok, alice, bob, math.NewInt(101))
	assert.ErrorIs(t, err, dlmm.ErrInsufficientBalance)
	// The failed transfer moved nothing.
	assert.Equal(t, int64(100), l.BalanceOf(tok, alice).Int64())
	assert.True(t, l.BalanceOf(tok, bob).IsZero())

	err = l.Burn(tok, bob, math.NewInt(1))
	assert.ErrorIs(t, err, dlmm.ErrInsufficientBalance)
}

func TestNegativeAmountsRejected(t *testing.T) {
	l := NewMemoryLedger()
	tok, alice, bob := addr(1), addr(2), addr(3)

	assert.ErrorIs(t, l.Mint(tok, alice, math.NewInt(-1)), dlmm.ErrInvalidAmount)
	assert.ErrorIs(t, l.Burn(tok, alice, math.NewInt(-1)), dlmm.ErrInvalidAmount)
	assert.ErrorIs(t, l.Transfer(tok, alice, bob, math.NewInt(-1)), dlmm.ErrInvalidAmount)
}

func TestBalancesPerToken(t *testing.T) {
	l := NewMemoryLedger()
	tokA, tokB, alice := addr(1), addr(2), addr(3)

	require.NoError(t, l.Mint(tokA, alice, math.NewInt(5)))
	assert.True(t, l.BalanceOf(tokB, alice).IsZero())
}
