// internal/amm/ledger/memory/memory.go

// Package memory is an in-process ledger.Ledger with SPL-shaped token
// accounting, used by the simulator and the test suites.
package memory

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-amm/internal/amm/ledger"
)

// Ledger keeps every account in process memory and enforces the token rules
// the swap handlers rely on. All methods are safe for concurrent use.
type Ledger struct {
	mu       sync.RWMutex
	accounts map[solana.PublicKey]*ledger.Account
	logger   *zap.Logger
}

// New builds an empty ledger.
func New(logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		accounts: make(map[solana.PublicKey]*ledger.Account),
		logger:   logger.Named("memory_ledger"),
	}
}

// Account returns a copy of the record at key; callers can mutate it freely.
func (l *Ledger) Account(ctx context.Context, key solana.PublicKey) (*ledger.Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acc, ok := l.accounts[key]
	if !ok {
		return nil, ledger.ErrAccountNotFound
	}
	return acc.Clone(), nil
}

// CreateAccount allocates a zeroed record of the given size under owner.
func (l *Ledger) CreateAccount(ctx context.Context, key, owner solana.PublicKey, size int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.accounts[key]; ok {
		return ledger.ErrAccountExists
	}
	l.accounts[key] = &ledger.Account{Key: key, Owner: owner, Data: make([]byte, size)}
	l.logger.Debug("account created",
		zap.String("key", key.String()),
		zap.String("owner", owner.String()),
		zap.Int("size", size))
	return nil
}

// WriteAccount replaces the data of an existing record.
func (l *Ledger) WriteAccount(ctx context.Context, key solana.PublicKey, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[key]
	if !ok {
		return ledger.ErrAccountNotFound
	}
	acc.Data = append([]byte(nil), data...)
	return nil
}

// Transfer moves tokens between two accounts of the same mint. The authority
// must be the source owner, or its delegate within the delegated allowance.
func (l *Ledger) Transfer(ctx context.Context, source, destination, authority solana.PublicKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	src, err := l.tokenAccount(source)
	if err != nil {
		return err
	}
	dst, err := l.tokenAccount(destination)
	if err != nil {
		return err
	}

	if src.IsFrozen() || dst.IsFrozen() {
		return ledger.ErrAccountFrozen
	}
	if src.Mint != dst.Mint {
		return ledger.ErrMintMismatch
	}
	if amount > src.Amount {
		return ledger.ErrInsufficientFunds
	}
	if err := spendAuthority(&src, authority, amount); err != nil {
		return err
	}
	if source == destination {
		return nil
	}
	if dst.Amount+amount < dst.Amount {
		return ledger.ErrAmountOverflow
	}

	src.Amount -= amount
	dst.Amount += amount
	l.storeToken(source, src)
	l.storeToken(destination, dst)

	l.logger.Debug("token transfer",
		zap.String("source", source.String()),
		zap.String("destination", destination.String()),
		zap.Uint64("amount", amount))
	return nil
}

// MintTo creates amount new tokens on destination; the authority must be the
// mint authority.
func (l *Ledger) MintTo(ctx context.Context, mint, destination, authority solana.PublicKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, err := l.mint(mint)
	if err != nil {
		return err
	}
	dst, err := l.tokenAccount(destination)
	if err != nil {
		return err
	}

	if dst.IsFrozen() {
		return ledger.ErrAccountFrozen
	}
	if dst.Mint != mint {
		return ledger.ErrMintMismatch
	}
	if m.MintAuthority == nil || *m.MintAuthority != authority {
		return ledger.ErrOwnerMismatch
	}
	if m.Supply+amount < m.Supply || dst.Amount+amount < dst.Amount {
		return ledger.ErrAmountOverflow
	}

	m.Supply += amount
	dst.Amount += amount
	l.storeMint(mint, m)
	l.storeToken(destination, dst)

	l.logger.Debug("tokens minted",
		zap.String("mint", mint.String()),
		zap.String("destination", destination.String()),
		zap.Uint64("amount", amount))
	return nil
}

// Burn destroys amount tokens held by account and shrinks the mint supply.
func (l *Ledger) Burn(ctx context.Context, account, mint, authority solana.PublicKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, err := l.tokenAccount(account)
	if err != nil {
		return err
	}
	m, err := l.mint(mint)
	if err != nil {
		return err
	}

	if acc.IsFrozen() {
		return ledger.ErrAccountFrozen
	}
	if acc.Mint != mint {
		return ledger.ErrMintMismatch
	}
	if amount > acc.Amount || amount > m.Supply {
		return ledger.ErrInsufficientFunds
	}
	if err := spendAuthority(&acc, authority, amount); err != nil {
		return err
	}

	acc.Amount -= amount
	m.Supply -= amount
	l.storeToken(account, acc)
	l.storeMint(mint, m)

	l.logger.Debug("tokens burned",
		zap.String("account", account.String()),
		zap.String("mint", mint.String()),
		zap.Uint64("amount", amount))
	return nil
}

// NativeTransfer moves lamports out of a system-owned account. Credits are
// unrestricted, debits are not.
func (l *Ledger) NativeTransfer(ctx context.Context, from, to solana.PublicKey, lamports uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	src, ok := l.accounts[from]
	if !ok {
		return ledger.ErrAccountNotFound
	}
	dst, ok := l.accounts[to]
	if !ok {
		return ledger.ErrAccountNotFound
	}

	if src.Owner != solana.SystemProgramID {
		return ledger.ErrNotSystemOwned
	}
	if lamports > src.Lamports {
		return ledger.ErrInsufficientLamports
	}
	if from == to {
		return nil
	}
	if dst.Lamports+lamports < dst.Lamports {
		return ledger.ErrAmountOverflow
	}

	src.Lamports -= lamports
	dst.Lamports += lamports

	l.logger.Debug("native transfer",
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.Uint64("lamports", lamports))
	return nil
}

// spendAuthority verifies that authority may move amount out of the account
// and burns down the delegated allowance when a delegate is acting.
func spendAuthority(acc *ledger.TokenAccount, authority solana.PublicKey, amount uint64) error {
	if authority == acc.Owner {
		return nil
	}
	if acc.Delegate != nil && authority == *acc.Delegate {
		if amount > acc.DelegatedAmount {
			return ledger.ErrInsufficientFunds
		}
		acc.DelegatedAmount -= amount
		if acc.DelegatedAmount == 0 {
			acc.Delegate = nil
		}
		return nil
	}
	return ledger.ErrOwnerMismatch
}

// tokenAccount decodes the token account at key. Callers hold the lock.
func (l *Ledger) tokenAccount(key solana.PublicKey) (ledger.TokenAccount, error) {
	acc, ok := l.accounts[key]
	if !ok {
		return ledger.TokenAccount{}, ledger.ErrAccountNotFound
	}
	if acc.Owner != solana.TokenProgramID {
		return ledger.TokenAccount{}, ledger.ErrNotTokenAccount
	}
	return ledger.UnpackTokenAccount(acc.Data)
}

// mint decodes the mint at key. Callers hold the lock.
func (l *Ledger) mint(key solana.PublicKey) (ledger.Mint, error) {
	acc, ok := l.accounts[key]
	if !ok {
		return ledger.Mint{}, ledger.ErrAccountNotFound
	}
	if acc.Owner != solana.TokenProgramID {
		return ledger.Mint{}, ledger.ErrNotMint
	}
	return ledger.UnpackMint(acc.Data)
}

func (l *Ledger) storeToken(key solana.PublicKey, acc ledger.TokenAccount) {
	l.accounts[key].Data = acc.Pack()
}

func (l *Ledger) storeMint(key solana.PublicKey, m ledger.Mint) {
	l.accounts[key].Data = m.Pack()
}
