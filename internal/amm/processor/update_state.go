// =============================
// File: internal/amm/processor/update_state.go
// =============================
package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"lukechampine.com/uint128"

	"github.com/rovshanmuradov/solana-amm/internal/amm/curve"
	"github.com/rovshanmuradov/solana-amm/internal/amm/ledger"
	"github.com/rovshanmuradov/solana-amm/internal/amm/state"
)

// defaultState is the record a never-written state account behaves as:
// owned by the well-known initial owner and carrying the compiled-in fee
// floor over a constant product curve.
func (p *Processor) defaultState() state.ProgramState {
	return state.ProgramState{
		IsInitialized: true,
		InitialSupply: uint128.From64(state.InitialPoolAmount),
		StateOwner:    state.InitialStateOwner,
		FeeOwner:      p.constraints.OwnerKey,
		Fees:          p.constraints.Fees,
		SwapCurve: curve.SwapCurve{
			CurveType:  curve.CurveConstantProduct,
			Calculator: curve.ConstantProductCurve{},
		},
	}
}

// updateState creates or rewrites the program state record. Only the current
// state owner may call it; for a record that has never been written the
// expected owner is the initial owner constant. The new fee schedule and
// curve must clear the compiled-in constraints and validate themselves. All
// checks precede the single write.
func (p *Processor) updateState(ctx context.Context, ix *UpdateStateInstruction, metas []*solana.AccountMeta) error {
	if len(metas) != updateStateAccounts {
		return ErrInvalidInstruction
	}
	stateKey := metas[0].PublicKey
	currentOwner := metas[1]
	newOwnerKey := metas[2].PublicKey
	feeOwnerKey := metas[3].PublicKey

	if err := p.checkStateAddress(stateKey); err != nil {
		return err
	}
	if !currentOwner.IsSigner {
		return ErrInvalidSigner
	}

	var data []byte
	allocate := false
	acc, err := p.ledger.Account(ctx, stateKey)
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
		allocate = true
	case err != nil:
		return fmt.Errorf("load program state: %w", err)
	default:
		data = acc.Data
	}

	current := state.ProgramState{}
	if len(data) > 0 {
		current, err = state.UnpackProgramState(data)
		if err != nil {
			return err
		}
	}
	if !current.IsInitialized {
		current = p.defaultState()
	}
	if !current.StateOwner.Equals(currentOwner.PublicKey) {
		return ErrInvalidStateOwner
	}

	if err := p.constraints.ValidateCurve(ix.SwapCurve); err != nil {
		return err
	}
	if err := p.constraints.ValidateFees(ix.Fees); err != nil {
		return err
	}
	if err := ix.Fees.Validate(); err != nil {
		return err
	}
	if err := ix.SwapCurve.Calculator.Validate(); err != nil {
		return err
	}

	next := state.ProgramState{
		IsInitialized: true,
		InitialSupply: uint128.From64(ix.InitialSupply),
		StateOwner:    newOwnerKey,
		FeeOwner:      feeOwnerKey,
		Fees:          ix.Fees,
		SwapCurve:     ix.SwapCurve,
	}
	if allocate {
		if err := p.ledger.CreateAccount(ctx, stateKey, p.programID, state.ProgramStateLen); err != nil {
			return fmt.Errorf("allocate program state: %w", err)
		}
	}
	if err := p.ledger.WriteAccount(ctx, stateKey, next.Pack()); err != nil {
		return fmt.Errorf("write program state: %w", err)
	}
	p.logger.Info("program state updated",
		zap.String("state", stateKey.String()),
		zap.String("state_owner", newOwnerKey.String()),
		zap.String("fee_owner", feeOwnerKey.String()),
		zap.Uint64("initial_supply", ix.InitialSupply))
	return nil
}
