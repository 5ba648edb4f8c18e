// =============================
// File: internal/amm/processor/processor.go
// =============================

// Package processor executes the swap program's seven instructions against a
// token ledger: one governance operation (UpdateState), one pool bootstrap
// (Initialize) and five trade operations. Handlers validate every account
// reference before touching balances; the mutation order inside each handler
// is part of the protocol contract.
package processor

import (
	"context"
	"errors"
	"fmt"

	cosmath "cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-amm/internal/amm/constraints"
	"github.com/rovshanmuradov/solana-amm/internal/amm/ledger"
	"github.com/rovshanmuradov/solana-amm/internal/amm/state"
)

// Required account counts per opcode. Lists are exact: a request carrying
// more or fewer rows is malformed.
const (
	updateStateAccounts    = 6
	initializeAccounts     = 12
	swapAccounts           = 13
	depositAllAccounts     = 11
	withdrawAllAccounts    = 11
	depositSingleAccounts  = 10
	withdrawSingleAccounts = 10
)

// Processor runs swap-program instructions. It owns no accounts itself; all
// reads and writes go through the ledger.
type Processor struct {
	ledger      ledger.Ledger
	deriver     state.AddressDeriver
	constraints constraints.SwapConstraints
	programID   solana.PublicKey
	logger      *zap.Logger
}

// Option adjusts a Processor at construction time.
type Option func(*Processor)

// WithProgramID sets the program identity instructions must address.
func WithProgramID(id solana.PublicKey) Option {
	return func(p *Processor) { p.programID = id }
}

// WithDeriver replaces the address derivation, usually for tests.
func WithDeriver(d state.AddressDeriver) Option {
	return func(p *Processor) { p.deriver = d }
}

// WithConstraints replaces the compiled-in governance limits.
func WithConstraints(c constraints.SwapConstraints) Option {
	return func(p *Processor) { p.constraints = c }
}

// WithLogger attaches a zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New builds a Processor over l with the standard address derivation, the
// default constraints and a nop logger.
func New(l ledger.Ledger, opts ...Option) *Processor {
	p := &Processor{
		ledger:      l,
		deriver:     state.Deriver{},
		constraints: constraints.Default(),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named("amm_processor")
	return p
}

// Process decodes inst and dispatches it to the matching handler. The
// instruction must address the processor's program id.
func (p *Processor) Process(ctx context.Context, inst solana.Instruction) error {
	if !inst.ProgramID().Equals(p.programID) {
		return ErrIncorrectProgramID
	}
	data, err := inst.Data()
	if err != nil {
		return fmt.Errorf("read instruction data: %w", err)
	}
	decoded, err := DecodeInstruction(data)
	if err != nil {
		return err
	}
	metas := inst.Accounts()
	p.logger.Debug("processing instruction",
		zap.String("op", decoded.Opcode().String()),
		zap.Int("accounts", len(metas)))

	switch ix := decoded.(type) {
	case *UpdateStateInstruction:
		return p.updateState(ctx, ix, metas)
	case *InitializeInstruction:
		return p.initialize(ctx, ix, metas)
	case *SwapInstruction:
		return p.swap(ctx, ix, metas)
	case *DepositAllInstruction:
		return p.depositAll(ctx, ix, metas)
	case *WithdrawAllInstruction:
		return p.withdrawAll(ctx, ix, metas)
	case *DepositSingleInstruction:
		return p.depositSingle(ctx, ix, metas)
	case *WithdrawSingleInstruction:
		return p.withdrawSingle(ctx, ix, metas)
	}
	return ErrInvalidInstruction
}

// checkStateAddress verifies key is the canonical program state address.
func (p *Processor) checkStateAddress(key solana.PublicKey) error {
	derived, _, err := p.deriver.StateAddress(p.programID)
	if err != nil || !derived.Equals(key) {
		return ErrInvalidStateAddress
	}
	return nil
}

// poolAuthority re-derives the pool authority from the swap key and nonce.
func (p *Processor) poolAuthority(swapKey solana.PublicKey, nonce uint8) (solana.PublicKey, error) {
	authority, err := p.deriver.PoolAuthority(p.programID, swapKey, nonce)
	if err != nil {
		return solana.PublicKey{}, ErrInvalidProgramAddress
	}
	return authority, nil
}

// loadState checks the state address, loads the record and requires it to be
// initialized. A missing or zeroed account reports ErrStateNotInitialized.
func (p *Processor) loadState(ctx context.Context, key solana.PublicKey) (state.ProgramState, error) {
	if err := p.checkStateAddress(key); err != nil {
		return state.ProgramState{}, err
	}
	acc, err := p.ledger.Account(ctx, key)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return state.ProgramState{}, ErrStateNotInitialized
		}
		return state.ProgramState{}, fmt.Errorf("load program state: %w", err)
	}
	st, err := state.UnpackProgramState(acc.Data)
	if err != nil {
		return state.ProgramState{}, err
	}
	if !st.IsInitialized {
		return state.ProgramState{}, ErrStateNotInitialized
	}
	return st, nil
}

// loadSwap loads and unpacks a swap record, returning the record and the
// program that owns the account.
func (p *Processor) loadSwap(ctx context.Context, key solana.PublicKey) (state.SwapV1, solana.PublicKey, error) {
	acc, err := p.ledger.Account(ctx, key)
	if err != nil {
		return state.SwapV1{}, solana.PublicKey{}, fmt.Errorf("load swap record %s: %w", key, err)
	}
	swap, err := state.UnpackSwap(acc.Data)
	if err != nil {
		return state.SwapV1{}, solana.PublicKey{}, err
	}
	return swap, acc.Owner, nil
}

// tokenAccount loads key and decodes it as an SPL token account held by
// tokenProgram.
func (p *Processor) tokenAccount(ctx context.Context, key, tokenProgram solana.PublicKey) (ledger.TokenAccount, error) {
	acc, err := p.ledger.Account(ctx, key)
	if err != nil {
		return ledger.TokenAccount{}, fmt.Errorf("load token account %s: %w", key, err)
	}
	if !acc.Owner.Equals(tokenProgram) {
		return ledger.TokenAccount{}, ErrIncorrectTokenProgramID
	}
	tok, err := ledger.UnpackTokenAccount(acc.Data)
	if err != nil {
		return ledger.TokenAccount{}, ErrExpectedAccount
	}
	return tok, nil
}

// mintAccount loads key and decodes it as an SPL mint held by tokenProgram.
func (p *Processor) mintAccount(ctx context.Context, key, tokenProgram solana.PublicKey) (ledger.Mint, error) {
	acc, err := p.ledger.Account(ctx, key)
	if err != nil {
		return ledger.Mint{}, fmt.Errorf("load mint %s: %w", key, err)
	}
	if !acc.Owner.Equals(tokenProgram) {
		return ledger.Mint{}, ErrIncorrectTokenProgramID
	}
	mint, err := ledger.UnpackMint(acc.Data)
	if err != nil {
		return ledger.Mint{}, ErrExpectedMint
	}
	return mint, nil
}

// sharedAccounts carries the account references every trade operation has in
// common. userA/userB are the optional user-side accounts that must not alias
// the pool's own accounts.
type sharedAccounts struct {
	swapKey      solana.PublicKey
	swapOwner    solana.PublicKey
	authority    solana.PublicKey
	tokenA       solana.PublicKey
	tokenB       solana.PublicKey
	poolMint     solana.PublicKey
	tokenProgram solana.PublicKey
	userA        *solana.PublicKey
	userB        *solana.PublicKey
}

// checkAccounts verifies the shared references against the stored swap
// record. Order of checks is fixed.
func (p *Processor) checkAccounts(swap state.SwapV1, accs sharedAccounts) error {
	if !accs.swapOwner.Equals(p.programID) {
		return ErrIncorrectProgramID
	}
	authority, err := p.poolAuthority(accs.swapKey, swap.Nonce)
	if err != nil {
		return err
	}
	if !accs.authority.Equals(authority) {
		return ErrInvalidProgramAddress
	}
	if !accs.tokenA.Equals(swap.TokenA) {
		return ErrIncorrectSwapAccount
	}
	if !accs.tokenB.Equals(swap.TokenB) {
		return ErrIncorrectSwapAccount
	}
	if !accs.poolMint.Equals(swap.PoolMint) {
		return ErrIncorrectPoolMint
	}
	if !accs.tokenProgram.Equals(swap.TokenProgramID) {
		return ErrIncorrectTokenProgramID
	}
	if accs.userA != nil && accs.userA.Equals(accs.tokenA) {
		return ErrInvalidInput
	}
	if accs.userB != nil && accs.userB.Equals(accs.tokenB) {
		return ErrInvalidInput
	}
	return nil
}

func u128(v uint64) cosmath.Int {
	return cosmath.NewIntFromUint64(v)
}

// toU64 narrows a curve result back to a transferable amount.
func toU64(v cosmath.Int) (uint64, error) {
	if !v.IsUint64() {
		return 0, ErrConversionFailure
	}
	return v.Uint64(), nil
}
