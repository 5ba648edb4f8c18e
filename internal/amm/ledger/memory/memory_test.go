// internal/amm/ledger/memory/memory_test.go
package memory

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-amm/internal/amm/ledger"
)

type tokenFixture struct {
	ledger    *Ledger
	mint      solana.PublicKey
	mintAuth  solana.PublicKey
	alice     solana.PublicKey
	aliceAcct solana.PublicKey
	bob       solana.PublicKey
	bobAcct   solana.PublicKey
}

// newTokenFixture seeds a mint plus two funded accounts: alice holds 1000,
// bob holds nothing.
func newTokenFixture(t *testing.T) *tokenFixture {
	t.Helper()

	f := &tokenFixture{
		ledger:    New(zap.NewNop()),
		mint:      solana.NewWallet().PublicKey(),
		mintAuth:  solana.NewWallet().PublicKey(),
		alice:     solana.NewWallet().PublicKey(),
		aliceAcct: solana.NewWallet().PublicKey(),
		bob:       solana.NewWallet().PublicKey(),
		bobAcct:   solana.NewWallet().PublicKey(),
	}

	require.NoError(t, f.ledger.CreateMint(f.mint, &f.mintAuth, nil, 6))
	require.NoError(t, f.ledger.CreateTokenAccount(f.aliceAcct, f.mint, f.alice, 0))
	require.NoError(t, f.ledger.CreateTokenAccount(f.bobAcct, f.mint, f.bob, 0))
	require.NoError(t, f.ledger.MintTo(context.Background(), f.mint, f.aliceAcct, f.mintAuth, 1000))
	return f
}

func (f *tokenFixture) balance(t *testing.T, key solana.PublicKey) uint64 {
	t.Helper()
	acc, err := f.ledger.Account(context.Background(), key)
	require.NoError(t, err)
	decoded, err := ledger.UnpackTokenAccount(acc.Data)
	require.NoError(t, err)
	return decoded.Amount
}

func (f *tokenFixture) supply(t *testing.T) uint64 {
	t.Helper()
	acc, err := f.ledger.Account(context.Background(), f.mint)
	require.NoError(t, err)
	decoded, err := ledger.UnpackMint(acc.Data)
	require.NoError(t, err)
	return decoded.Supply
}

func TestTransferMovesTokens(t *testing.T) {
	f := newTokenFixture(t)
	ctx := context.Background()

	require.NoError(t, f.ledger.Transfer(ctx, f.aliceAcct, f.bobAcct, f.alice, 400))

	assert.Equal(t, uint64(600), f.balance(t, f.aliceAcct))
	assert.Equal(t, uint64(400), f.balance(t, f.bobAcct))
	assert.Equal(t, uint64(1000), f.supply(t), "transfers do not change the supply")
}

func TestTransferAuthorityRules(t *testing.T) {
	f := newTokenFixture(t)
	ctx := context.Background()

	err := f.ledger.Transfer(ctx, f.aliceAcct, f.bobAcct, f.bob, 1)
	assert.ErrorIs(t, err, ledger.ErrOwnerMismatch)

	// A delegate may spend up to its allowance, which burns down as it goes.
	delegate := solana.NewWallet().PublicKey()
	delegated := solana.NewWallet().PublicKey()
	require.NoError(t, f.ledger.SeedTokenAccount(delegated, ledger.TokenAccount{
		Mint:            f.mint,
		Owner:           f.alice,
		Amount:          300,
		Delegate:        &delegate,
		State:           ledger.AccountInitialized,
		DelegatedAmount: 250,
	}))

	require.NoError(t, f.ledger.Transfer(ctx, delegated, f.bobAcct, delegate, 200))
	err = f.ledger.Transfer(ctx, delegated, f.bobAcct, delegate, 100)
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds, "allowance is down to 50")

	require.NoError(t, f.ledger.Transfer(ctx, delegated, f.bobAcct, delegate, 50))
	err = f.ledger.Transfer(ctx, delegated, f.bobAcct, delegate, 1)
	assert.ErrorIs(t, err, ledger.ErrOwnerMismatch, "exhausted delegate is revoked")
}

func TestTransferRejectsBadMoves(t *testing.T) {
	f := newTokenFixture(t)
	ctx := context.Background()

	err := f.ledger.Transfer(ctx, f.aliceAcct, f.bobAcct, f.alice, 1001)
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	otherMint := solana.NewWallet().PublicKey()
	otherAcct := solana.NewWallet().PublicKey()
	require.NoError(t, f.ledger.CreateMint(otherMint, &f.mintAuth, nil, 6))
	require.NoError(t, f.ledger.CreateTokenAccount(otherAcct, otherMint, f.bob, 0))
	err = f.ledger.Transfer(ctx, f.aliceAcct, otherAcct, f.alice, 1)
	assert.ErrorIs(t, err, ledger.ErrMintMismatch)

	frozen := solana.NewWallet().PublicKey()
	require.NoError(t, f.ledger.SeedTokenAccount(frozen, ledger.TokenAccount{
		Mint:   f.mint,
		Owner:  f.alice,
		Amount: 10,
		State:  ledger.AccountFrozen,
	}))
	err = f.ledger.Transfer(ctx, frozen, f.bobAcct, f.alice, 1)
	assert.ErrorIs(t, err, ledger.ErrAccountFrozen)

	err = f.ledger.Transfer(ctx, f.mint, f.bobAcct, f.alice, 1)
	assert.ErrorIs(t, err, ledger.ErrNotTokenAccount, "a mint is not a token account")
}

func TestMintToRequiresMintAuthority(t *testing.T) {
	f := newTokenFixture(t)
	ctx := context.Background()

	err := f.ledger.MintTo(ctx, f.mint, f.bobAcct, f.alice, 5)
	assert.ErrorIs(t, err, ledger.ErrOwnerMismatch)

	// A fixed-supply mint has no authority at all.
	fixed := solana.NewWallet().PublicKey()
	fixedAcct := solana.NewWallet().PublicKey()
	require.NoError(t, f.ledger.CreateMint(fixed, nil, nil, 0))
	require.NoError(t, f.ledger.CreateTokenAccount(fixedAcct, fixed, f.bob, 0))
	err = f.ledger.MintTo(ctx, fixed, fixedAcct, f.mintAuth, 5)
	assert.ErrorIs(t, err, ledger.ErrOwnerMismatch)
}

func TestBurnAdjustsSupply(t *testing.T) {
	f := newTokenFixture(t)
	ctx := context.Background()

	require.NoError(t, f.ledger.Burn(ctx, f.aliceAcct, f.mint, f.alice, 300))
	assert.Equal(t, uint64(700), f.balance(t, f.aliceAcct))
	assert.Equal(t, uint64(700), f.supply(t))

	err := f.ledger.Burn(ctx, f.aliceAcct, f.mint, f.alice, 701)
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	err = f.ledger.Burn(ctx, f.aliceAcct, f.mint, f.bob, 1)
	assert.ErrorIs(t, err, ledger.ErrOwnerMismatch)
}

func TestNativeTransfer(t *testing.T) {
	l := New(nil)
	ctx := context.Background()

	from := solana.NewWallet().PublicKey()
	to := solana.NewWallet().PublicKey()
	require.NoError(t, l.CreateSystemAccount(from, 5_000))
	require.NoError(t, l.CreateSystemAccount(to, 0))

	require.NoError(t, l.NativeTransfer(ctx, from, to, 3_000))

	fromAcc, err := l.Account(ctx, from)
	require.NoError(t, err)
	toAcc, err := l.Account(ctx, to)
	require.NoError(t, err)
	assert.Equal(t, uint64(2_000), fromAcc.Lamports)
	assert.Equal(t, uint64(3_000), toAcc.Lamports)

	err = l.NativeTransfer(ctx, from, to, 2_001)
	assert.ErrorIs(t, err, ledger.ErrInsufficientLamports)

	// Debits must come from a system account; credits can go anywhere.
	tokenOwned := solana.NewWallet().PublicKey()
	require.NoError(t, l.CreateTokenAccount(tokenOwned, solana.NewWallet().PublicKey(), from, 0))
	err = l.NativeTransfer(ctx, tokenOwned, to, 1)
	assert.ErrorIs(t, err, ledger.ErrNotSystemOwned)
	require.NoError(t, l.NativeTransfer(ctx, from, tokenOwned, 1))
}

func TestAccountReturnsCopy(t *testing.T) {
	f := newTokenFixture(t)
	ctx := context.Background()

	acc, err := f.ledger.Account(ctx, f.aliceAcct)
	require.NoError(t, err)
	acc.Data[64] = 0xFF

	assert.Equal(t, uint64(1000), f.balance(t, f.aliceAcct), "callers mutate a copy, not the store")
}

func TestCreateAndWriteAccount(t *testing.T) {
	l := New(nil)
	ctx := context.Background()

	key := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()

	require.NoError(t, l.CreateAccount(ctx, key, owner, 64))
	acc, err := l.Account(ctx, key)
	require.NoError(t, err)
	assert.Len(t, acc.Data, 64)
	assert.Equal(t, owner, acc.Owner)

	assert.ErrorIs(t, l.CreateAccount(ctx, key, owner, 64), ledger.ErrAccountExists)

	require.NoError(t, l.WriteAccount(ctx, key, []byte{1, 2, 3}))
	acc, err = l.Account(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, acc.Data)

	err = l.WriteAccount(ctx, solana.NewWallet().PublicKey(), nil)
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestSnapshotRestore(t *testing.T) {
	f := newTokenFixture(t)
	ctx := context.Background()

	snap := f.ledger.Snapshot()

	require.NoError(t, f.ledger.Transfer(ctx, f.aliceAcct, f.bobAcct, f.alice, 999))
	assert.Equal(t, uint64(1), f.balance(t, f.aliceAcct))

	f.ledger.Restore(snap)
	assert.Equal(t, uint64(1000), f.balance(t, f.aliceAcct))
	assert.Equal(t, uint64(0), f.balance(t, f.bobAcct))

	// The snapshot survives a restore and can be used again.
	require.NoError(t, f.ledger.Transfer(ctx, f.aliceAcct, f.bobAcct, f.alice, 10))
	f.ledger.Restore(snap)
	assert.Equal(t, uint64(1000), f.balance(t, f.aliceAcct))
}
