// internal/amm/ledger/memory/seed.go
package memory

import (
	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-amm/internal/amm/ledger"
)

// CreateSystemAccount seeds a system-owned account holding lamports.
func (l *Ledger) CreateSystemAccount(key solana.PublicKey, lamports uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.accounts[key]; ok {
		return ledger.ErrAccountExists
	}
	l.accounts[key] = &ledger.Account{Key: key, Owner: solana.SystemProgramID, Lamports: lamports}
	return nil
}

// CreateMint seeds an initialized SPL mint with zero supply.
func (l *Ledger) CreateMint(key solana.PublicKey, authority, freezeAuthority *solana.PublicKey, decimals uint8) error {
	m := ledger.Mint{
		MintAuthority:   authority,
		Decimals:        decimals,
		IsInitialized:   true,
		FreezeAuthority: freezeAuthority,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.accounts[key]; ok {
		return ledger.ErrAccountExists
	}
	l.accounts[key] = &ledger.Account{Key: key, Owner: solana.TokenProgramID, Data: m.Pack()}
	return nil
}

// CreateTokenAccount seeds an initialized token account. A non-zero amount is
// credited directly without touching the mint supply, which is convenient for
// scenario setup; balances that must stay consistent with the supply should
// go through MintTo instead.
func (l *Ledger) CreateTokenAccount(key, mint, owner solana.PublicKey, amount uint64) error {
	return l.SeedTokenAccount(key, ledger.TokenAccount{
		Mint:   mint,
		Owner:  owner,
		Amount: amount,
		State:  ledger.AccountInitialized,
	})
}

// SeedTokenAccount seeds a token account in an arbitrary state, delegates and
// freeze flags included.
func (l *Ledger) SeedTokenAccount(key solana.PublicKey, acc ledger.TokenAccount) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.accounts[key]; ok {
		return ledger.ErrAccountExists
	}
	l.accounts[key] = &ledger.Account{Key: key, Owner: solana.TokenProgramID, Data: acc.Pack()}
	return nil
}
