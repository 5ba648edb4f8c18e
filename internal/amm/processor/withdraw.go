// =============================
// File: internal/amm/processor/withdraw.go
// =============================
package processor

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-amm/internal/amm/curve"
	"github.com/rovshanmuradov/solana-amm/internal/amm/state"
)

// withdrawAll burns pool tokens for proportional amounts of both trading
// tokens. The burn is silently clamped so the mint supply never drops below
// the permanently locked floor; each side is additionally clamped to its
// reserve. No withdraw fee is assessed.
func (p *Processor) withdrawAll(ctx context.Context, ix *WithdrawAllInstruction, metas []*solana.AccountMeta) error {
	if len(metas) != withdrawAllAccounts {
		return ErrInvalidInstruction
	}
	swapKey := metas[0].PublicKey
	authorityKey := metas[1].PublicKey
	userAuthorityKey := metas[2].PublicKey
	stateKey := metas[3].PublicKey
	poolMintKey := metas[4].PublicKey
	sourceKey := metas[5].PublicKey
	tokenAKey := metas[6].PublicKey
	tokenBKey := metas[7].PublicKey
	destTokenAKey := metas[8].PublicKey
	destTokenBKey := metas[9].PublicKey
	tokenProgramKey := metas[10].PublicKey

	swap, swapOwner, err := p.loadSwap(ctx, swapKey)
	if err != nil {
		return err
	}
	st, err := p.loadState(ctx, stateKey)
	if err != nil {
		return err
	}
	if err := p.checkAccounts(swap, sharedAccounts{
		swapKey:      swapKey,
		swapOwner:    swapOwner,
		authority:    authorityKey,
		tokenA:       tokenAKey,
		tokenB:       tokenBKey,
		poolMint:     poolMintKey,
		tokenProgram: tokenProgramKey,
		userA:        &destTokenAKey,
		userB:        &destTokenBKey,
	}); err != nil {
		return err
	}

	tokenA, err := p.tokenAccount(ctx, tokenAKey, swap.TokenProgramID)
	if err != nil {
		return err
	}
	tokenB, err := p.tokenAccount(ctx, tokenBKey, swap.TokenProgramID)
	if err != nil {
		return err
	}
	poolMint, err := p.mintAccount(ctx, poolMintKey, swap.TokenProgramID)
	if err != nil {
		return err
	}

	supply := u128(poolMint.Supply)
	lockedFloor := u128(state.MinLPSupply)
	if lockedFloor.GT(supply) {
		return ErrCalculationFailure
	}
	poolTokenAmount := u128(ix.PoolTokenAmount)
	maxPoolTokenAmount := supply.Sub(lockedFloor)
	if poolTokenAmount.GT(maxPoolTokenAmount) {
		poolTokenAmount = maxPoolTokenAmount
	}

	results, ok := st.SwapCurve.Calculator.PoolTokensToTradingTokens(
		poolTokenAmount,
		supply,
		u128(tokenA.Amount),
		u128(tokenB.Amount),
		curve.RoundFloor,
	)
	if !ok {
		return ErrZeroTradingTokens
	}
	amountA, err := toU64(results.TokenAAmount)
	if err != nil {
		return err
	}
	if amountA > tokenA.Amount {
		amountA = tokenA.Amount
	}
	if amountA < ix.MinimumTokenA {
		return ErrExceededSlippage
	}
	if amountA == 0 && tokenA.Amount != 0 {
		return ErrZeroTradingTokens
	}
	amountB, err := toU64(results.TokenBAmount)
	if err != nil {
		return err
	}
	if amountB > tokenB.Amount {
		amountB = tokenB.Amount
	}
	if amountB < ix.MinimumTokenB {
		return ErrExceededSlippage
	}
	if amountB == 0 && tokenB.Amount != 0 {
		return ErrZeroTradingTokens
	}
	burnAmount, err := toU64(poolTokenAmount)
	if err != nil {
		return err
	}

	if err := p.ledger.Burn(ctx, sourceKey, poolMintKey, userAuthorityKey, burnAmount); err != nil {
		return fmt.Errorf("burn pool tokens: %w", err)
	}
	if amountA > 0 {
		if err := p.ledger.Transfer(ctx, tokenAKey, destTokenAKey, authorityKey, amountA); err != nil {
			return fmt.Errorf("transfer token a: %w", err)
		}
	}
	if amountB > 0 {
		if err := p.ledger.Transfer(ctx, tokenBKey, destTokenBKey, authorityKey, amountB); err != nil {
			return fmt.Errorf("transfer token b: %w", err)
		}
	}

	p.logger.Info("liquidity withdrawn",
		zap.String("swap", swapKey.String()),
		zap.Uint64("pool_tokens", burnAmount),
		zap.Uint64("token_a", amountA),
		zap.Uint64("token_b", amountB))
	return nil
}

// withdrawSingle burns however many pool tokens the curve prices for an
// exact one-sided output. The requested amount leaves the pool in full; the
// fee is charged by burning more pool tokens than the fee-free price.
func (p *Processor) withdrawSingle(ctx context.Context, ix *WithdrawSingleInstruction, metas []*solana.AccountMeta) error {
	if len(metas) != withdrawSingleAccounts {
		return ErrInvalidInstruction
	}
	swapKey := metas[0].PublicKey
	authorityKey := metas[1].PublicKey
	userAuthorityKey := metas[2].PublicKey
	stateKey := metas[3].PublicKey
	poolMintKey := metas[4].PublicKey
	sourceKey := metas[5].PublicKey
	swapTokenAKey := metas[6].PublicKey
	swapTokenBKey := metas[7].PublicKey
	destinationKey := metas[8].PublicKey
	tokenProgramKey := metas[9].PublicKey

	swap, swapOwner, err := p.loadSwap(ctx, swapKey)
	if err != nil {
		return err
	}
	st, err := p.loadState(ctx, stateKey)
	if err != nil {
		return err
	}

	destination, err := p.tokenAccount(ctx, destinationKey, swap.TokenProgramID)
	if err != nil {
		return err
	}
	swapTokenA, err := p.tokenAccount(ctx, swapTokenAKey, swap.TokenProgramID)
	if err != nil {
		return err
	}
	swapTokenB, err := p.tokenAccount(ctx, swapTokenBKey, swap.TokenProgramID)
	if err != nil {
		return err
	}

	var direction curve.TradeDirection
	switch {
	case destination.Mint.Equals(swapTokenA.Mint):
		direction = curve.DirectionAtoB
	case destination.Mint.Equals(swapTokenB.Mint):
		direction = curve.DirectionBtoA
	default:
		return ErrIncorrectSwapAccount
	}

	accs := sharedAccounts{
		swapKey:      swapKey,
		swapOwner:    swapOwner,
		authority:    authorityKey,
		tokenA:       swapTokenAKey,
		tokenB:       swapTokenBKey,
		poolMint:     poolMintKey,
		tokenProgram: tokenProgramKey,
	}
	if direction == curve.DirectionAtoB {
		accs.userA = &destinationKey
	} else {
		accs.userB = &destinationKey
	}
	if err := p.checkAccounts(swap, accs); err != nil {
		return err
	}

	poolMint, err := p.mintAccount(ctx, poolMintKey, swap.TokenProgramID)
	if err != nil {
		return err
	}

	burnPoolTokenAmount, ok := st.SwapCurve.WithdrawSingleTokenTypeExactOut(
		u128(ix.DestinationTokenAmount),
		u128(swapTokenA.Amount),
		u128(swapTokenB.Amount),
		u128(poolMint.Supply),
		direction,
		st.Fees,
	)
	if !ok {
		return ErrZeroTradingTokens
	}

	// No withdraw fee is assessed on top of the burn.
	burnAmount, err := toU64(burnPoolTokenAmount)
	if err != nil {
		return err
	}
	if burnAmount > ix.MaximumPoolTokenAmount {
		return ErrExceededSlippage
	}
	if burnAmount == 0 {
		return ErrZeroTradingTokens
	}

	if err := p.ledger.Burn(ctx, sourceKey, poolMintKey, userAuthorityKey, burnAmount); err != nil {
		return fmt.Errorf("burn pool tokens: %w", err)
	}
	poolSideKey := swapTokenBKey
	if direction == curve.DirectionAtoB {
		poolSideKey = swapTokenAKey
	}
	if err := p.ledger.Transfer(ctx, poolSideKey, destinationKey, authorityKey, ix.DestinationTokenAmount); err != nil {
		return fmt.Errorf("transfer destination tokens: %w", err)
	}

	p.logger.Info("single-sided liquidity withdrawn",
		zap.String("swap", swapKey.String()),
		zap.Bool("a_to_b", direction == curve.DirectionAtoB),
		zap.Uint64("destination_amount", ix.DestinationTokenAmount),
		zap.Uint64("pool_tokens", burnAmount))
	return nil
}
