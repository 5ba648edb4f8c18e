// internal/amm/processor/processor_test.go
package processor

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-amm/internal/amm/constraints"
	"github.com/rovshanmuradov/solana-amm/internal/amm/curve"
	"github.com/rovshanmuradov/solana-amm/internal/amm/ledger"
	"github.com/rovshanmuradov/solana-amm/internal/amm/ledger/memory"
	"github.com/rovshanmuradov/solana-amm/internal/amm/state"
)

const (
	reserveAmount = 1_000_000
	userFunds     = 1_000_000
)

var productionFees = curve.Fees{FixedFeeNumerator: 20, ReturnFeeNumerator: 10, FeeDenominator: 10000}

func constantProduct(t *testing.T) curve.SwapCurve {
	t.Helper()
	swapCurve, err := curve.NewSwapCurve(curve.CurveConstantProduct)
	require.NoError(t, err)
	return swapCurve
}

func productionUpdate(t *testing.T) *UpdateStateInstruction {
	t.Helper()
	return &UpdateStateInstruction{
		InitialSupply: state.InitialPoolAmount,
		Fees:          productionFees,
		SwapCurve:     constantProduct(t),
	}
}

// venue is a complete single-pool world: a seeded ledger, a processor bound
// to a random program id, the governance keys and the token plumbing for two
// trading mints, a pool mint and one user.
type venue struct {
	t      *testing.T
	ctx    context.Context
	ledger *memory.Ledger
	proc   *Processor

	programID solana.PublicKey
	stateKey  solana.PublicKey

	stateOwner solana.PublicKey
	feeOwner   solana.PublicKey

	swapKey   solana.PublicKey
	authority solana.PublicKey
	nonce     uint8

	mintAuthority solana.PublicKey
	mintA         solana.PublicKey
	mintB         solana.PublicKey

	tokenA    solana.PublicKey // pool reserve, owned by the pool authority
	tokenB    solana.PublicKey
	poolMint  solana.PublicKey
	lpOwner   solana.PublicKey
	lpReserve solana.PublicKey // receives the initial pool supply

	ammID      solana.PublicKey
	market     solana.PublicKey
	dexProgram solana.PublicKey

	user   solana.PublicKey
	userA  solana.PublicKey
	userB  solana.PublicKey
	userLP solana.PublicKey

	feeTokenA solana.PublicKey
	feeTokenB solana.PublicKey
}

// rawVenue seeds the ledger and derives every address but does not touch the
// program state, so governance bootstrap itself can be put under test. With
// native set, side A trades the wrapped SOL mint and the user authority is
// backed by a funded system account.
func rawVenue(t *testing.T, native bool) *venue {
	t.Helper()

	v := &venue{
		t:             t,
		ctx:           context.Background(),
		ledger:        memory.New(zap.NewNop()),
		programID:     solana.NewWallet().PublicKey(),
		stateOwner:    solana.NewWallet().PublicKey(),
		feeOwner:      solana.NewWallet().PublicKey(),
		swapKey:       solana.NewWallet().PublicKey(),
		mintAuthority: solana.NewWallet().PublicKey(),
		mintA:         solana.NewWallet().PublicKey(),
		mintB:         solana.NewWallet().PublicKey(),
		tokenA:        solana.NewWallet().PublicKey(),
		tokenB:        solana.NewWallet().PublicKey(),
		poolMint:      solana.NewWallet().PublicKey(),
		lpOwner:       solana.NewWallet().PublicKey(),
		lpReserve:     solana.NewWallet().PublicKey(),
		ammID:         solana.NewWallet().PublicKey(),
		market:        solana.NewWallet().PublicKey(),
		dexProgram:    solana.NewWallet().PublicKey(),
		user:          solana.NewWallet().PublicKey(),
		userA:         solana.NewWallet().PublicKey(),
		userB:         solana.NewWallet().PublicKey(),
		userLP:        solana.NewWallet().PublicKey(),
		feeTokenA:     solana.NewWallet().PublicKey(),
		feeTokenB:     solana.NewWallet().PublicKey(),
	}
	if native {
		v.mintA = state.WSOLMint
	}

	stateKey, _, err := state.Deriver{}.StateAddress(v.programID)
	require.NoError(t, err)
	v.stateKey = stateKey

	authority, nonce, err := state.FindPoolAuthority(v.programID, v.swapKey)
	require.NoError(t, err)
	v.authority, v.nonce = authority, nonce

	v.proc = New(v.ledger, WithProgramID(v.programID))

	require.NoError(t, v.ledger.CreateAccount(v.ctx, v.swapKey, v.programID, state.SwapLen))
	require.NoError(t, v.ledger.CreateAccount(v.ctx, v.market, v.dexProgram, 1))

	require.NoError(t, v.ledger.CreateMint(v.mintA, &v.mintAuthority, nil, 9))
	require.NoError(t, v.ledger.CreateMint(v.mintB, &v.mintAuthority, nil, 6))
	require.NoError(t, v.ledger.CreateMint(v.poolMint, &v.authority, nil, state.LPMintDecimals))

	require.NoError(t, v.ledger.CreateTokenAccount(v.tokenA, v.mintA, v.authority, 0))
	require.NoError(t, v.ledger.CreateTokenAccount(v.tokenB, v.mintB, v.authority, 0))
	require.NoError(t, v.ledger.CreateTokenAccount(v.lpReserve, v.poolMint, v.lpOwner, 0))
	require.NoError(t, v.ledger.CreateTokenAccount(v.userA, v.mintA, v.user, 0))
	require.NoError(t, v.ledger.CreateTokenAccount(v.userB, v.mintB, v.user, 0))
	require.NoError(t, v.ledger.CreateTokenAccount(v.userLP, v.poolMint, v.user, 0))
	require.NoError(t, v.ledger.CreateTokenAccount(v.feeTokenA, v.mintA, v.feeOwner, 0))
	require.NoError(t, v.ledger.CreateTokenAccount(v.feeTokenB, v.mintB, v.feeOwner, 0))

	require.NoError(t, v.ledger.MintTo(v.ctx, v.mintA, v.tokenA, v.mintAuthority, reserveAmount))
	require.NoError(t, v.ledger.MintTo(v.ctx, v.mintB, v.tokenB, v.mintAuthority, reserveAmount))
	require.NoError(t, v.ledger.MintTo(v.ctx, v.mintA, v.userA, v.mintAuthority, userFunds))
	require.NoError(t, v.ledger.MintTo(v.ctx, v.mintB, v.userB, v.mintAuthority, userFunds))

	require.NoError(t, v.ledger.CreateSystemAccount(v.feeOwner, 0))
	if native {
		require.NoError(t, v.ledger.CreateSystemAccount(v.user, 1_000_000))
	}
	return v
}

// newVenue is a rawVenue whose governance record has been written: the
// initial owner hands control to the venue's state owner and points fees at
// the fee owner. The pool is not initialized yet.
func newVenue(t *testing.T) *venue {
	t.Helper()
	v := rawVenue(t, false)
	require.NoError(t, v.updateState(t, state.InitialStateOwner, productionUpdate(t)))
	return v
}

// bootstrapVenue is a newVenue with the pool opened: reserves hold
// reserveAmount on each side and the initial pool supply sits in lpReserve.
func bootstrapVenue(t *testing.T) *venue {
	t.Helper()
	v := newVenue(t)
	require.NoError(t, v.run((&InitializeInstruction{Nonce: v.nonce}).Build(v.programID, v.initializeWiring())))
	return v
}

// bootstrapNativeVenue opens a pool whose A side is wrapped SOL.
func bootstrapNativeVenue(t *testing.T) *venue {
	t.Helper()
	v := rawVenue(t, true)
	require.NoError(t, v.updateState(t, state.InitialStateOwner, productionUpdate(t)))
	require.NoError(t, v.run((&InitializeInstruction{Nonce: v.nonce}).Build(v.programID, v.initializeWiring())))
	return v
}

// run builds nothing itself: it takes a Build result pair and pushes the
// instruction through the processor.
func (v *venue) run(inst solana.Instruction, err error) error {
	v.t.Helper()
	require.NoError(v.t, err)
	return v.proc.Process(v.ctx, inst)
}

func (v *venue) updateState(t *testing.T, current solana.PublicKey, ix *UpdateStateInstruction) error {
	t.Helper()
	return v.run(ix.Build(v.programID, UpdateStateAccounts{
		State:             v.stateKey,
		CurrentStateOwner: current,
		NewStateOwner:     v.stateOwner,
		FeeOwner:          v.feeOwner,
	}))
}

func (v *venue) initializeWiring() InitializeAccounts {
	return InitializeAccounts{
		Swap:              v.swapKey,
		Authority:         v.authority,
		State:             v.stateKey,
		AmmID:             v.ammID,
		TokenA:            v.tokenA,
		TokenB:            v.tokenB,
		PoolMint:          v.poolMint,
		Destination:       v.lpReserve,
		Market:            v.market,
		TokenProgram:      solana.TokenProgramID,
		DexProgram:        v.dexProgram,
		CurrentStateOwner: v.stateOwner,
	}
}

func (v *venue) swapWiring(aToB bool) SwapAccounts {
	accs := SwapAccounts{
		Swap:                  v.swapKey,
		Authority:             v.authority,
		UserTransferAuthority: v.user,
		State:                 v.stateKey,
		PoolMint:              v.poolMint,
		FixedFeeWallet:        v.feeOwner,
		TokenProgram:          solana.TokenProgramID,
	}
	if aToB {
		accs.Source, accs.SwapSource = v.userA, v.tokenA
		accs.SwapDestination, accs.Destination = v.tokenB, v.userB
		accs.FixedFeeAccount = v.feeTokenA
	} else {
		accs.Source, accs.SwapSource = v.userB, v.tokenB
		accs.SwapDestination, accs.Destination = v.tokenA, v.userA
		accs.FixedFeeAccount = v.feeTokenB
	}
	return accs
}

func (v *venue) depositAllWiring() DepositAllAccounts {
	return DepositAllAccounts{
		Swap:                  v.swapKey,
		Authority:             v.authority,
		UserTransferAuthority: v.user,
		State:                 v.stateKey,
		SourceA:               v.userA,
		SourceB:               v.userB,
		TokenA:                v.tokenA,
		TokenB:                v.tokenB,
		PoolMint:              v.poolMint,
		Destination:           v.userLP,
		TokenProgram:          solana.TokenProgramID,
	}
}

// withdrawAllWiring burns from source, whose owner must sign as authority.
func (v *venue) withdrawAllWiring(source, owner solana.PublicKey) WithdrawAllAccounts {
	return WithdrawAllAccounts{
		Swap:                  v.swapKey,
		Authority:             v.authority,
		UserTransferAuthority: owner,
		State:                 v.stateKey,
		PoolMint:              v.poolMint,
		Source:                source,
		TokenA:                v.tokenA,
		TokenB:                v.tokenB,
		DestTokenA:            v.userA,
		DestTokenB:            v.userB,
		TokenProgram:          solana.TokenProgramID,
	}
}

func (v *venue) depositSingleWiring(source solana.PublicKey) DepositSingleAccounts {
	return DepositSingleAccounts{
		Swap:                  v.swapKey,
		Authority:             v.authority,
		UserTransferAuthority: v.user,
		State:                 v.stateKey,
		Source:                source,
		SwapTokenA:            v.tokenA,
		SwapTokenB:            v.tokenB,
		PoolMint:              v.poolMint,
		Destination:           v.userLP,
		TokenProgram:          solana.TokenProgramID,
	}
}

func (v *venue) withdrawSingleWiring(source, owner, destination solana.PublicKey) WithdrawSingleAccounts {
	return WithdrawSingleAccounts{
		Swap:                  v.swapKey,
		Authority:             v.authority,
		UserTransferAuthority: owner,
		State:                 v.stateKey,
		PoolMint:              v.poolMint,
		Source:                source,
		SwapTokenA:            v.tokenA,
		SwapTokenB:            v.tokenB,
		Destination:           destination,
		TokenProgram:          solana.TokenProgramID,
	}
}

func (v *venue) tokenBalance(t *testing.T, key solana.PublicKey) uint64 {
	t.Helper()
	acc, err := v.ledger.Account(v.ctx, key)
	require.NoError(t, err)
	tok, err := ledger.UnpackTokenAccount(acc.Data)
	require.NoError(t, err)
	return tok.Amount
}

func (v *venue) mintSupply(t *testing.T, key solana.PublicKey) uint64 {
	t.Helper()
	acc, err := v.ledger.Account(v.ctx, key)
	require.NoError(t, err)
	m, err := ledger.UnpackMint(acc.Data)
	require.NoError(t, err)
	return m.Supply
}

func (v *venue) lamports(t *testing.T, key solana.PublicKey) uint64 {
	t.Helper()
	acc, err := v.ledger.Account(v.ctx, key)
	require.NoError(t, err)
	return acc.Lamports
}

func (v *venue) programState(t *testing.T) state.ProgramState {
	t.Helper()
	acc, err := v.ledger.Account(v.ctx, v.stateKey)
	require.NoError(t, err)
	st, err := state.UnpackProgramState(acc.Data)
	require.NoError(t, err)
	return st
}

func (v *venue) swapRecord(t *testing.T) state.SwapV1 {
	t.Helper()
	acc, err := v.ledger.Account(v.ctx, v.swapKey)
	require.NoError(t, err)
	swap, err := state.UnpackSwap(acc.Data)
	require.NoError(t, err)
	return swap
}

func TestUpdateState(t *testing.T) {
	t.Run("bootstrap installs the governance record", func(t *testing.T) {
		v := newVenue(t)

		acc, err := v.ledger.Account(v.ctx, v.stateKey)
		require.NoError(t, err)
		assert.Equal(t, v.programID, acc.Owner)

		st := v.programState(t)
		assert.True(t, st.IsInitialized)
		assert.Equal(t, v.stateOwner, st.StateOwner)
		assert.Equal(t, v.feeOwner, st.FeeOwner)
		assert.Equal(t, uint64(state.InitialPoolAmount), st.InitialSupplyU64())
		assert.Equal(t, productionFees, st.Fees)
		assert.Equal(t, curve.CurveConstantProduct, st.SwapCurve.CurveType)
	})

	t.Run("fresh record answers only to the initial owner", func(t *testing.T) {
		v := rawVenue(t, false)

		err := v.updateState(t, v.stateOwner, productionUpdate(t))
		require.ErrorIs(t, err, ErrInvalidStateOwner)

		require.NoError(t, v.updateState(t, state.InitialStateOwner, productionUpdate(t)))
	})

	t.Run("rotation retires the previous owner", func(t *testing.T) {
		v := newVenue(t)

		err := v.updateState(t, state.InitialStateOwner, productionUpdate(t))
		require.ErrorIs(t, err, ErrInvalidStateOwner)

		require.NoError(t, v.updateState(t, v.stateOwner, productionUpdate(t)))
	})

	t.Run("missing signature is rejected", func(t *testing.T) {
		v := newVenue(t)

		data, err := productionUpdate(t).Data()
		require.NoError(t, err)
		metas := []*solana.AccountMeta{
			{PublicKey: v.stateKey, IsWritable: true},
			{PublicKey: v.stateOwner}, // signer flag deliberately off
			{PublicKey: v.stateOwner},
			{PublicKey: v.feeOwner},
			{PublicKey: solana.SystemProgramID},
			{PublicKey: solana.SysVarRentPubkey},
		}
		err = v.proc.Process(v.ctx, solana.NewInstruction(v.programID, metas, data))
		require.ErrorIs(t, err, ErrInvalidSigner)
	})

	t.Run("state account must be the derived address", func(t *testing.T) {
		v := newVenue(t)

		err := v.run(productionUpdate(t).Build(v.programID, UpdateStateAccounts{
			State:             solana.NewWallet().PublicKey(),
			CurrentStateOwner: v.stateOwner,
			NewStateOwner:     v.stateOwner,
			FeeOwner:          v.feeOwner,
		}))
		require.ErrorIs(t, err, ErrInvalidStateAddress)
	})

	t.Run("fee schedule below the floor is rejected", func(t *testing.T) {
		v := newVenue(t)

		ix := productionUpdate(t)
		ix.Fees = curve.Fees{FixedFeeNumerator: 10, ReturnFeeNumerator: 10, FeeDenominator: 10000}
		require.ErrorIs(t, v.updateState(t, v.stateOwner, ix), ErrInvalidFee)

		ix.Fees = curve.Fees{FixedFeeNumerator: 20, ReturnFeeNumerator: 10, FeeDenominator: 100}
		require.ErrorIs(t, v.updateState(t, v.stateOwner, ix), ErrInvalidFee)
	})

	t.Run("curve outside the whitelist is rejected", func(t *testing.T) {
		v := newVenue(t)

		strict := New(v.ledger,
			WithProgramID(v.programID),
			WithConstraints(constraints.SwapConstraints{
				OwnerKey: v.feeOwner,
				Fees:     productionFees,
			}))
		inst, err := productionUpdate(t).Build(v.programID, UpdateStateAccounts{
			State:             v.stateKey,
			CurrentStateOwner: v.stateOwner,
			NewStateOwner:     v.stateOwner,
			FeeOwner:          v.feeOwner,
		})
		require.NoError(t, err)
		require.ErrorIs(t, strict.Process(v.ctx, inst), ErrUnsupportedCurveType)
	})

	t.Run("initial supply can be retuned", func(t *testing.T) {
		v := newVenue(t)

		ix := productionUpdate(t)
		ix.InitialSupply = 42_000_000
		require.NoError(t, v.updateState(t, v.stateOwner, ix))
		assert.Equal(t, uint64(42_000_000), v.programState(t).InitialSupplyU64())
	})

	t.Run("account list length is exact", func(t *testing.T) {
		v := newVenue(t)

		data, err := productionUpdate(t).Data()
		require.NoError(t, err)
		metas := []*solana.AccountMeta{
			{PublicKey: v.stateKey, IsWritable: true},
			{PublicKey: v.stateOwner, IsSigner: true},
			{PublicKey: v.stateOwner},
			{PublicKey: v.feeOwner},
			{PublicKey: solana.SystemProgramID},
		}
		err = v.proc.Process(v.ctx, solana.NewInstruction(v.programID, metas, data))
		require.ErrorIs(t, err, ErrInvalidInstruction)
	})
}

func TestProcess(t *testing.T) {
	t.Run("foreign program id is rejected", func(t *testing.T) {
		v := bootstrapVenue(t)

		ix := &SwapInstruction{AmountIn: 1000, MinimumAmountOut: 0}
		inst, err := ix.Build(solana.NewWallet().PublicKey(), v.swapWiring(true))
		require.NoError(t, err)
		require.ErrorIs(t, v.proc.Process(v.ctx, inst), ErrIncorrectProgramID)
	})

	t.Run("malformed data is rejected before dispatch", func(t *testing.T) {
		v := bootstrapVenue(t)

		metas := []*solana.AccountMeta{{PublicKey: v.stateKey}}
		err := v.proc.Process(v.ctx, solana.NewInstruction(v.programID, metas, []byte{2, 1}))
		require.ErrorIs(t, err, ErrInvalidInstruction)
	})
}
