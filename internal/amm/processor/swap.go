// =============================
// File: internal/amm/processor/swap.go
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

// swap trades an exact amount of the source token for at least the minimum
// of the destination token. Direction is inferred from which pool account
// the trade feeds. The fixed fee goes to the fee owner: as a lamport
// transfer from the user authority when the source mint is wrapped SOL, as
// a token transfer into the fee token account otherwise. The return fee
// stays in the pool by transferring that much less out of the user source.
func (p *Processor) swap(ctx context.Context, ix *SwapInstruction, metas []*solana.AccountMeta) error {
	if len(metas) != swapAccounts {
		return ErrInvalidInstruction
	}
	swapKey := metas[0].PublicKey
	authorityKey := metas[1].PublicKey
	userAuthorityKey := metas[2].PublicKey
	stateKey := metas[3].PublicKey
	sourceKey := metas[4].PublicKey
	swapSourceKey := metas[5].PublicKey
	swapDestinationKey := metas[6].PublicKey
	destinationKey := metas[7].PublicKey
	poolMintKey := metas[8].PublicKey
	fixedFeeAccountKey := metas[9].PublicKey
	fixedFeeWalletKey := metas[10].PublicKey
	tokenProgramKey := metas[11].PublicKey
	// metas[12] is the system program row backing the native fee path.

	swapAcc, err := p.ledger.Account(ctx, swapKey)
	if err != nil {
		return fmt.Errorf("load swap record %s: %w", swapKey, err)
	}
	if !swapAcc.Owner.Equals(p.programID) {
		return ErrIncorrectProgramID
	}
	swap, err := state.UnpackSwap(swapAcc.Data)
	if err != nil {
		return err
	}

	derived, err := p.poolAuthority(swapKey, swap.Nonce)
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

	if !swapSourceKey.Equals(swap.TokenA) && !swapSourceKey.Equals(swap.TokenB) {
		return ErrIncorrectSwapAccount
	}
	if !swapDestinationKey.Equals(swap.TokenA) && !swapDestinationKey.Equals(swap.TokenB) {
		return ErrIncorrectSwapAccount
	}
	if swapSourceKey.Equals(swapDestinationKey) {
		return ErrInvalidInput
	}
	if swapSourceKey.Equals(sourceKey) {
		return ErrInvalidInput
	}
	if swapDestinationKey.Equals(destinationKey) {
		return ErrInvalidInput
	}
	if !poolMintKey.Equals(swap.PoolMint) {
		return ErrIncorrectPoolMint
	}
	if !tokenProgramKey.Equals(swap.TokenProgramID) {
		return ErrIncorrectTokenProgramID
	}

	direction := curve.DirectionBtoA
	if swapSourceKey.Equals(swap.TokenA) {
		direction = curve.DirectionAtoB
	}

	poolSource, err := p.tokenAccount(ctx, swapSourceKey, swap.TokenProgramID)
	if err != nil {
		return err
	}
	poolDestination, err := p.tokenAccount(ctx, swapDestinationKey, swap.TokenProgramID)
	if err != nil {
		return err
	}

	if !st.FeeOwner.Equals(fixedFeeWalletKey) {
		return ErrInvalidOwner
	}
	nativeFee := poolSource.Mint.Equals(state.WSOLMint)
	if !nativeFee {
		feeAccount, err := p.tokenAccount(ctx, fixedFeeAccountKey, swap.TokenProgramID)
		if err != nil {
			return err
		}
		if !st.FeeOwner.Equals(feeAccount.Owner) || !poolSource.Mint.Equals(feeAccount.Mint) {
			return ErrIncorrectFeeAccount
		}
	}

	result, ok := st.SwapCurve.Swap(
		u128(ix.AmountIn),
		u128(poolSource.Amount),
		u128(poolDestination.Amount),
		direction,
		st.Fees,
	)
	if !ok {
		return ErrZeroTradingTokens
	}
	if u128(ix.MinimumAmountOut).GT(result.DestinationAmountSwapped) {
		return ErrExceededSlippage
	}

	amountIn, err := toU64(result.SourceAmountSwapped.Sub(result.OwnerFee))
	if err != nil {
		return err
	}
	ownerFee, err := toU64(result.OwnerFee)
	if err != nil {
		return err
	}
	amountOut, err := toU64(result.DestinationAmountSwapped)
	if err != nil {
		return err
	}

	if err := p.ledger.Transfer(ctx, sourceKey, swapSourceKey, userAuthorityKey, amountIn); err != nil {
		return fmt.Errorf("transfer source tokens: %w", err)
	}
	if nativeFee {
		if err := p.ledger.NativeTransfer(ctx, userAuthorityKey, fixedFeeWalletKey, ownerFee); err != nil {
			return fmt.Errorf("pay native owner fee: %w", err)
		}
	} else {
		if err := p.ledger.Transfer(ctx, sourceKey, fixedFeeAccountKey, userAuthorityKey, ownerFee); err != nil {
			return fmt.Errorf("pay owner fee: %w", err)
		}
	}
	if err := p.ledger.Transfer(ctx, swapDestinationKey, destinationKey, authorityKey, amountOut); err != nil {
		return fmt.Errorf("transfer destination tokens: %w", err)
	}

	p.logger.Info("swap executed",
		zap.String("swap", swapKey.String()),
		zap.Bool("a_to_b", direction == curve.DirectionAtoB),
		zap.Uint64("amount_in", ix.AmountIn),
		zap.Uint64("amount_out", amountOut),
		zap.Uint64("owner_fee", ownerFee),
		zap.Bool("native_fee", nativeFee))
	return nil
}
