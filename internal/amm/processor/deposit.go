// =============================
// File: internal/amm/processor/deposit.go
// =============================
package processor

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-amm/internal/amm/curve"
)

// depositAll adds liquidity on both sides for an exact pool-token amount.
// The first deposit into an empty pool ignores the requested amount and
// prices the whole initial supply against the current reserves.
func (p *Processor) depositAll(ctx context.Context, ix *DepositAllInstruction, metas []*solana.AccountMeta) error {
	if len(metas) != depositAllAccounts {
		return ErrInvalidInstruction
	}
	swapKey := metas[0].PublicKey
	authorityKey := metas[1].PublicKey
	userAuthorityKey := metas[2].PublicKey
	stateKey := metas[3].PublicKey
	sourceAKey := metas[4].PublicKey
	sourceBKey := metas[5].PublicKey
	tokenAKey := metas[6].PublicKey
	tokenBKey := metas[7].PublicKey
	poolMintKey := metas[8].PublicKey
	destinationKey := metas[9].PublicKey
	tokenProgramKey := metas[10].PublicKey

	swap, swapOwner, err := p.loadSwap(ctx, swapKey)
	if err != nil {
		return err
	}
	st, err := p.loadState(ctx, stateKey)
	if err != nil {
		return err
	}
	if !st.SwapCurve.Calculator.AllowsDeposits() {
		return ErrUnsupportedCurveOperation
	}
	if err := p.checkAccounts(swap, sharedAccounts{
		swapKey:      swapKey,
		swapOwner:    swapOwner,
		authority:    authorityKey,
		tokenA:       tokenAKey,
		tokenB:       tokenBKey,
		poolMint:     poolMintKey,
		tokenProgram: tokenProgramKey,
		userA:        &sourceAKey,
		userB:        &sourceBKey,
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

	poolTokenAmount := u128(ix.PoolTokenAmount)
	poolMintSupply := u128(poolMint.Supply)
	if poolMint.Supply == 0 {
		poolTokenAmount = u128(st.InitialSupplyU64())
		poolMintSupply = u128(st.InitialSupplyU64())
	}

	results, ok := st.SwapCurve.Calculator.PoolTokensToTradingTokens(
		poolTokenAmount,
		poolMintSupply,
		u128(tokenA.Amount),
		u128(tokenB.Amount),
		curve.RoundCeiling,
	)
	if !ok {
		return ErrZeroTradingTokens
	}
	amountA, err := toU64(results.TokenAAmount)
	if err != nil {
		return err
	}
	if amountA > ix.MaximumTokenA {
		return ErrExceededSlippage
	}
	if amountA == 0 {
		return ErrZeroTradingTokens
	}
	amountB, err := toU64(results.TokenBAmount)
	if err != nil {
		return err
	}
	if amountB > ix.MaximumTokenB {
		return ErrExceededSlippage
	}
	if amountB == 0 {
		return ErrZeroTradingTokens
	}
	mintAmount, err := toU64(poolTokenAmount)
	if err != nil {
		return err
	}

	if err := p.ledger.Transfer(ctx, sourceAKey, tokenAKey, userAuthorityKey, amountA); err != nil {
		return fmt.Errorf("transfer token a: %w", err)
	}
	if err := p.ledger.Transfer(ctx, sourceBKey, tokenBKey, userAuthorityKey, amountB); err != nil {
		return fmt.Errorf("transfer token b: %w", err)
	}
	if err := p.ledger.MintTo(ctx, poolMintKey, destinationKey, authorityKey, mintAmount); err != nil {
		return fmt.Errorf("mint pool tokens: %w", err)
	}

	p.logger.Info("liquidity deposited",
		zap.String("swap", swapKey.String()),
		zap.Uint64("token_a", amountA),
		zap.Uint64("token_b", amountB),
		zap.Uint64("pool_tokens", mintAmount))
	return nil
}

// depositSingle adds liquidity from one side only. The side is picked by
// matching the source account's mint against the pool reserves; the pool
// token price includes the trading fee on the half that is implicitly
// swapped. An empty pool mints the whole initial supply.
func (p *Processor) depositSingle(ctx context.Context, ix *DepositSingleInstruction, metas []*solana.AccountMeta) error {
	if len(metas) != depositSingleAccounts {
		return ErrInvalidInstruction
	}
	swapKey := metas[0].PublicKey
	authorityKey := metas[1].PublicKey
	userAuthorityKey := metas[2].PublicKey
	stateKey := metas[3].PublicKey
	sourceKey := metas[4].PublicKey
	swapTokenAKey := metas[5].PublicKey
	swapTokenBKey := metas[6].PublicKey
	poolMintKey := metas[7].PublicKey
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

	source, err := p.tokenAccount(ctx, sourceKey, swap.TokenProgramID)
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
	case source.Mint.Equals(swapTokenA.Mint):
		direction = curve.DirectionAtoB
	case source.Mint.Equals(swapTokenB.Mint):
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
		accs.userA = &sourceKey
	} else {
		accs.userB = &sourceKey
	}
	if err := p.checkAccounts(swap, accs); err != nil {
		return err
	}

	poolMint, err := p.mintAccount(ctx, poolMintKey, swap.TokenProgramID)
	if err != nil {
		return err
	}

	poolTokenAmount := u128(st.InitialSupplyU64())
	if poolMint.Supply > 0 {
		amount, ok := st.SwapCurve.DepositSingleTokenType(
			u128(ix.SourceTokenAmount),
			u128(swapTokenA.Amount),
			u128(swapTokenB.Amount),
			u128(poolMint.Supply),
			direction,
			st.Fees,
		)
		if !ok {
			return ErrZeroTradingTokens
		}
		poolTokenAmount = amount
	}

	mintAmount, err := toU64(poolTokenAmount)
	if err != nil {
		return err
	}
	if mintAmount < ix.MinimumPoolTokenAmount {
		return ErrExceededSlippage
	}
	if mintAmount == 0 {
		return ErrZeroTradingTokens
	}

	poolSideKey := swapTokenBKey
	if direction == curve.DirectionAtoB {
		poolSideKey = swapTokenAKey
	}
	if err := p.ledger.Transfer(ctx, sourceKey, poolSideKey, userAuthorityKey, ix.SourceTokenAmount); err != nil {
		return fmt.Errorf("transfer source tokens: %w", err)
	}
	if err := p.ledger.MintTo(ctx, poolMintKey, destinationKey, authorityKey, mintAmount); err != nil {
		return fmt.Errorf("mint pool tokens: %w", err)
	}

	p.logger.Info("single-sided liquidity deposited",
		zap.String("swap", swapKey.String()),
		zap.Bool("a_to_b", direction == curve.DirectionAtoB),
		zap.Uint64("source_amount", ix.SourceTokenAmount),
		zap.Uint64("pool_tokens", mintAmount))
	return nil
}
