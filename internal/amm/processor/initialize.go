// =============================
// File: internal/amm/processor/initialize.go
// =============================
package processor

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-amm/internal/amm/state"
)

// initialize opens a pool over a pre-allocated swap record slot. The program
// state must already exist and the caller must be its owner; both reserves
// must be funded, authority-owned, clean token accounts; the pool mint must
// be a fresh mint controlled by the pool authority. On success the initial
// pool supply is minted to the destination and the record is persisted.
func (p *Processor) initialize(ctx context.Context, ix *InitializeInstruction, metas []*solana.AccountMeta) error {
	if len(metas) != initializeAccounts {
		return ErrInvalidInstruction
	}
	swapKey := metas[0].PublicKey
	authorityKey := metas[1].PublicKey
	stateKey := metas[2].PublicKey
	ammIDKey := metas[3].PublicKey
	tokenAKey := metas[4].PublicKey
	tokenBKey := metas[5].PublicKey
	poolMintKey := metas[6].PublicKey
	destinationKey := metas[7].PublicKey
	marketKey := metas[8].PublicKey
	tokenProgramKey := metas[9].PublicKey
	dexProgramKey := metas[10].PublicKey
	currentOwner := metas[11]

	swapAcc, err := p.ledger.Account(ctx, swapKey)
	if err != nil {
		return fmt.Errorf("load swap record %s: %w", swapKey, err)
	}
	if state.SwapInitialized(swapAcc.Data) {
		return ErrAlreadyInUse
	}

	derived, err := p.poolAuthority(swapKey, ix.Nonce)
	if err != nil {
		return err
	}
	if !authorityKey.Equals(derived) {
		return ErrInvalidProgramAddress
	}

	st, err := p.loadState(ctx, stateKey)
	if err != nil {
		return err
	}
	if !currentOwner.IsSigner {
		return ErrInvalidSigner
	}
	if !currentOwner.PublicKey.Equals(st.StateOwner) {
		return ErrInvalidOwner
	}

	tokenA, err := p.tokenAccount(ctx, tokenAKey, tokenProgramKey)
	if err != nil {
		return err
	}
	tokenB, err := p.tokenAccount(ctx, tokenBKey, tokenProgramKey)
	if err != nil {
		return err
	}
	destination, err := p.tokenAccount(ctx, destinationKey, tokenProgramKey)
	if err != nil {
		return err
	}
	poolMint, err := p.mintAccount(ctx, poolMintKey, tokenProgramKey)
	if err != nil {
		return err
	}

	if !authorityKey.Equals(tokenA.Owner) {
		return ErrInvalidOwner
	}
	if !authorityKey.Equals(tokenB.Owner) {
		return ErrInvalidOwner
	}
	// The LP destination must stay out of the pool authority's hands.
	if authorityKey.Equals(destination.Owner) {
		return ErrInvalidOutputOwner
	}
	if poolMint.MintAuthority == nil || !poolMint.MintAuthority.Equals(authorityKey) {
		return ErrInvalidOwner
	}
	if tokenA.Mint.Equals(tokenB.Mint) {
		return ErrRepeatedMint
	}
	if err := st.SwapCurve.Calculator.ValidateSupply(tokenA.Amount, tokenB.Amount); err != nil {
		return err
	}
	if tokenA.Delegate != nil {
		return ErrInvalidDelegate
	}
	if tokenB.Delegate != nil {
		return ErrInvalidDelegate
	}
	if tokenA.IsFrozen() {
		return ErrInvalidFreezeAuthority
	}
	if tokenB.IsFrozen() {
		return ErrInvalidFreezeAuthority
	}
	if tokenA.CloseAuthority != nil {
		return ErrInvalidCloseAuthority
	}
	if tokenB.CloseAuthority != nil {
		return ErrInvalidCloseAuthority
	}
	if poolMint.Decimals != state.LPMintDecimals {
		return ErrInvalidDecimals
	}
	if poolMint.Supply != 0 {
		return ErrInvalidSupply
	}
	if poolMint.FreezeAuthority != nil {
		return ErrInvalidFreezeAuthority
	}

	market, err := p.ledger.Account(ctx, marketKey)
	if err != nil {
		return fmt.Errorf("load market account %s: %w", marketKey, err)
	}
	if !market.Owner.Equals(dexProgramKey) {
		return ErrIncorrectMarketOwner
	}

	initialAmount := st.InitialSupplyU64()
	if err := p.ledger.MintTo(ctx, poolMintKey, destinationKey, authorityKey, initialAmount); err != nil {
		return fmt.Errorf("mint initial pool supply: %w", err)
	}

	swap := state.SwapV1{
		IsInitialized:  true,
		Nonce:          ix.Nonce,
		AmmID:          ammIDKey,
		DexProgramID:   dexProgramKey,
		MarketID:       marketKey,
		TokenProgramID: tokenProgramKey,
		TokenA:         tokenAKey,
		TokenB:         tokenBKey,
		PoolMint:       poolMintKey,
		TokenAMint:     tokenA.Mint,
		TokenBMint:     tokenB.Mint,
	}
	if err := p.ledger.WriteAccount(ctx, swapKey, swap.Pack()); err != nil {
		return fmt.Errorf("write swap record: %w", err)
	}
	p.logger.Info("pool initialized",
		zap.String("swap", swapKey.String()),
		zap.String("token_a_mint", tokenA.Mint.String()),
		zap.String("token_b_mint", tokenB.Mint.String()),
		zap.Uint64("initial_supply", initialAmount))
	return nil
}
