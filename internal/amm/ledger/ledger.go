// internal/amm/ledger/ledger.go

// Package ledger abstracts the account store the swap program runs against:
// raw records, SPL token moves, native lamport moves and account allocation.
package ledger

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
)

var (
	ErrAccountNotFound      = errors.New("account does not exist")
	ErrAccountExists        = errors.New("account already exists")
	ErrNotTokenAccount      = errors.New("account data is not an SPL token account")
	ErrNotMint              = errors.New("account data is not an SPL mint")
	ErrAccountFrozen        = errors.New("token account is frozen")
	ErrMintMismatch         = errors.New("token account belongs to a different mint")
	ErrOwnerMismatch        = errors.New("authority cannot act for this account")
	ErrInsufficientFunds    = errors.New("insufficient token balance")
	ErrInsufficientLamports = errors.New("insufficient lamports")
	ErrNotSystemOwned       = errors.New("lamports can only be debited from a system account")
	ErrAmountOverflow       = errors.New("token amount overflow")
)

// Account is a raw record as the ledger sees it. Token accounts and mints are
// decoded from Data on demand.
type Account struct {
	Key      solana.PublicKey
	Owner    solana.PublicKey
	Lamports uint64
	Data     []byte
}

// Clone returns an independent copy of the record.
func (a *Account) Clone() *Account {
	out := *a
	out.Data = append([]byte(nil), a.Data...)
	return &out
}

// Reader fetches raw accounts.
type Reader interface {
	Account(ctx context.Context, key solana.PublicKey) (*Account, error)
}

// TokenLedger executes SPL token moves on behalf of an authority.
type TokenLedger interface {
	Transfer(ctx context.Context, source, destination, authority solana.PublicKey, amount uint64) error
	MintTo(ctx context.Context, mint, destination, authority solana.PublicKey, amount uint64) error
	Burn(ctx context.Context, account, mint, authority solana.PublicKey, amount uint64) error
}

// NativeLedger moves lamports between accounts.
type NativeLedger interface {
	NativeTransfer(ctx context.Context, from, to solana.PublicKey, lamports uint64) error
}

// Allocator creates and rewrites raw accounts.
type Allocator interface {
	CreateAccount(ctx context.Context, key, owner solana.PublicKey, size int) error
	WriteAccount(ctx context.Context, key solana.PublicKey, data []byte) error
}

// Ledger is the full collaborator surface the instruction handlers need.
type Ledger interface {
	Reader
	TokenLedger
	NativeLedger
	Allocator
}
