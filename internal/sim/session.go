// =============================
// File: internal/sim/session.go
// =============================

// Package sim runs a complete single-pool venue in process memory: it seeds
// an in-memory ledger, walks the governance and pool bootstrap, and wraps the
// trade instructions so commands and the TUI can drive the swap program
// without any chain plumbing.
package sim

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-amm/internal/amm/curve"
	"github.com/rovshanmuradov/solana-amm/internal/amm/ledger"
	"github.com/rovshanmuradov/solana-amm/internal/amm/ledger/memory"
	"github.com/rovshanmuradov/solana-amm/internal/amm/processor"
	"github.com/rovshanmuradov/solana-amm/internal/amm/state"
)

// SessionOptions configures the venue a Session bootstraps.
type SessionOptions struct {
	ProgramID     solana.PublicKey
	Fees          curve.Fees
	InitialSupply uint64
	ReserveA      uint64
	ReserveB      uint64
	UserFundsA    uint64
	UserFundsB    uint64
	// NativeA makes side A trade wrapped SOL so swaps from A pay the
	// protocol fee in lamports.
	NativeA bool
	Logger  *zap.Logger
}

// DefaultSessionOptions is a million-unit pool at the production fee floor.
func DefaultSessionOptions() SessionOptions {
	return SessionOptions{
		ProgramID:     solana.NewWallet().PublicKey(),
		Fees:          curve.Fees{FixedFeeNumerator: 20, ReturnFeeNumerator: 10, FeeDenominator: 10000},
		InitialSupply: state.InitialPoolAmount,
		ReserveA:      1_000_000,
		ReserveB:      1_000_000,
		UserFundsA:    1_000_000,
		UserFundsB:    1_000_000,
	}
}

// Session owns one pool's world: the ledger, the processor and every key the
// instructions reference. All trade methods act for the session's single user.
type Session struct {
	opts   SessionOptions
	ledger *memory.Ledger
	proc   *processor.Processor
	logger *zap.Logger

	stateKey   solana.PublicKey
	stateOwner solana.PublicKey
	feeOwner   solana.PublicKey

	swapKey   solana.PublicKey
	authority solana.PublicKey
	nonce     uint8

	mintAuthority solana.PublicKey
	mintA         solana.PublicKey
	mintB         solana.PublicKey

	tokenA    solana.PublicKey
	tokenB    solana.PublicKey
	poolMint  solana.PublicKey
	lpOwner   solana.PublicKey
	lpReserve solana.PublicKey

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

// NewSession builds the venue's key set and seeds the ledger. The governance
// record and the pool are not written until Bootstrap runs.
func NewSession(opts SessionOptions) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ProgramID.IsZero() {
		opts.ProgramID = solana.NewWallet().PublicKey()
	}
	if opts.InitialSupply == 0 {
		opts.InitialSupply = state.InitialPoolAmount
	}

	s := &Session{
		opts:          opts,
		ledger:        memory.New(opts.Logger),
		logger:        opts.Logger.Named("sim"),
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
	if opts.NativeA {
		s.mintA = state.WSOLMint
	}

	stateKey, _, err := state.Deriver{}.StateAddress(opts.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("derive state address: %w", err)
	}
	s.stateKey = stateKey

	authority, nonce, err := state.FindPoolAuthority(opts.ProgramID, s.swapKey)
	if err != nil {
		return nil, fmt.Errorf("derive pool authority: %w", err)
	}
	s.authority, s.nonce = authority, nonce

	s.proc = processor.New(s.ledger,
		processor.WithProgramID(opts.ProgramID),
		processor.WithLogger(opts.Logger),
	)

	if err := s.seed(); err != nil {
		return nil, err
	}
	return s, nil
}

// seed creates every account the bootstrap instructions expect: the empty
// swap slot, the mints, the pool and user token accounts and the fee wallet.
func (s *Session) seed() error {
	ctx := context.Background()

	if err := s.ledger.CreateAccount(ctx, s.swapKey, s.opts.ProgramID, state.SwapLen); err != nil {
		return fmt.Errorf("allocate swap slot: %w", err)
	}
	if err := s.ledger.CreateAccount(ctx, s.market, s.dexProgram, 1); err != nil {
		return fmt.Errorf("allocate market record: %w", err)
	}

	if err := s.ledger.CreateMint(s.mintA, &s.mintAuthority, nil, 9); err != nil {
		return fmt.Errorf("create mint A: %w", err)
	}
	if err := s.ledger.CreateMint(s.mintB, &s.mintAuthority, nil, 6); err != nil {
		return fmt.Errorf("create mint B: %w", err)
	}
	if err := s.ledger.CreateMint(s.poolMint, &s.authority, nil, state.LPMintDecimals); err != nil {
		return fmt.Errorf("create pool mint: %w", err)
	}

	tokenAccounts := []struct {
		key, mint, owner solana.PublicKey
	}{
		{s.tokenA, s.mintA, s.authority},
		{s.tokenB, s.mintB, s.authority},
		{s.lpReserve, s.poolMint, s.lpOwner},
		{s.userA, s.mintA, s.user},
		{s.userB, s.mintB, s.user},
		{s.userLP, s.poolMint, s.user},
		{s.feeTokenA, s.mintA, s.feeOwner},
		{s.feeTokenB, s.mintB, s.feeOwner},
	}
	for _, acc := range tokenAccounts {
		if err := s.ledger.CreateTokenAccount(acc.key, acc.mint, acc.owner, 0); err != nil {
			return fmt.Errorf("create token account %s: %w", acc.key, err)
		}
	}

	funding := []struct {
		mint, dest solana.PublicKey
		amount     uint64
	}{
		{s.mintA, s.tokenA, s.opts.ReserveA},
		{s.mintB, s.tokenB, s.opts.ReserveB},
		{s.mintA, s.userA, s.opts.UserFundsA},
		{s.mintB, s.userB, s.opts.UserFundsB},
	}
	for _, f := range funding {
		if f.amount == 0 {
			continue
		}
		if err := s.ledger.MintTo(ctx, f.mint, f.dest, s.mintAuthority, f.amount); err != nil {
			return fmt.Errorf("fund %s: %w", f.dest, err)
		}
	}

	if err := s.ledger.CreateSystemAccount(s.feeOwner, 0); err != nil {
		return fmt.Errorf("create fee wallet: %w", err)
	}
	if s.opts.NativeA {
		// Lamports back the native fee path.
		if err := s.ledger.CreateSystemAccount(s.user, 1_000_000_000); err != nil {
			return fmt.Errorf("create user system account: %w", err)
		}
	}
	return nil
}

// Bootstrap writes the governance record and opens the pool. The initial
// state owner hands control to the session's own owner key in the same write.
func (s *Session) Bootstrap(ctx context.Context) error {
	swapCurve, err := curve.NewSwapCurve(curve.CurveConstantProduct)
	if err != nil {
		return err
	}
	update := &processor.UpdateStateInstruction{
		InitialSupply: s.opts.InitialSupply,
		Fees:          s.opts.Fees,
		SwapCurve:     swapCurve,
	}
	inst, err := update.Build(s.opts.ProgramID, processor.UpdateStateAccounts{
		State:             s.stateKey,
		CurrentStateOwner: state.InitialStateOwner,
		NewStateOwner:     s.stateOwner,
		FeeOwner:          s.feeOwner,
	})
	if err != nil {
		return err
	}
	if err := s.proc.Process(ctx, inst); err != nil {
		return fmt.Errorf("write governance record: %w", err)
	}

	initialize := &processor.InitializeInstruction{Nonce: s.nonce}
	inst, err = initialize.Build(s.opts.ProgramID, processor.InitializeAccounts{
		Swap:              s.swapKey,
		Authority:         s.authority,
		State:             s.stateKey,
		AmmID:             s.ammID,
		TokenA:            s.tokenA,
		TokenB:            s.tokenB,
		PoolMint:          s.poolMint,
		Destination:       s.lpReserve,
		Market:            s.market,
		TokenProgram:      solana.TokenProgramID,
		DexProgram:        s.dexProgram,
		CurrentStateOwner: s.stateOwner,
	})
	if err != nil {
		return err
	}
	if err := s.proc.Process(ctx, inst); err != nil {
		return fmt.Errorf("initialize pool: %w", err)
	}

	s.logger.Info("venue bootstrapped",
		zap.String("swap", s.swapKey.String()),
		zap.Uint64("reserve_a", s.opts.ReserveA),
		zap.Uint64("reserve_b", s.opts.ReserveB),
		zap.Uint64("initial_supply", s.opts.InitialSupply))
	return nil
}

// Balances is one observation of every balance a scenario cares about.
type Balances struct {
	PoolA       uint64
	PoolB       uint64
	UserA       uint64
	UserB       uint64
	UserLP      uint64
	FeeA        uint64
	FeeB        uint64
	FeeLamports uint64
	LPSupply    uint64
}

func (s *Session) tokenAmount(ctx context.Context, key solana.PublicKey) (uint64, error) {
	acc, err := s.ledger.Account(ctx, key)
	if err != nil {
		return 0, err
	}
	tok, err := ledger.UnpackTokenAccount(acc.Data)
	if err != nil {
		return 0, err
	}
	return tok.Amount, nil
}

// Balances reads the current venue balances from the ledger.
func (s *Session) Balances(ctx context.Context) (Balances, error) {
	var b Balances
	reads := []struct {
		key  solana.PublicKey
		dest *uint64
	}{
		{s.tokenA, &b.PoolA},
		{s.tokenB, &b.PoolB},
		{s.userA, &b.UserA},
		{s.userB, &b.UserB},
		{s.userLP, &b.UserLP},
		{s.feeTokenA, &b.FeeA},
		{s.feeTokenB, &b.FeeB},
	}
	for _, r := range reads {
		amount, err := s.tokenAmount(ctx, r.key)
		if err != nil {
			return Balances{}, err
		}
		*r.dest = amount
	}

	feeAcc, err := s.ledger.Account(ctx, s.feeOwner)
	if err != nil {
		return Balances{}, err
	}
	b.FeeLamports = feeAcc.Lamports

	mintAcc, err := s.ledger.Account(ctx, s.poolMint)
	if err != nil {
		return Balances{}, err
	}
	mint, err := ledger.UnpackMint(mintAcc.Data)
	if err != nil {
		return Balances{}, err
	}
	b.LPSupply = mint.Supply
	return b, nil
}

// Report pairs the balances around one executed operation.
type Report struct {
	Op     string
	Before Balances
	After  Balances
}

// execute runs one instruction with all-or-nothing semantics: the ledger
// snapshot taken up front is reinstated when the processor reports a failure,
// the way the real execution environment discards a failed transaction.
func (s *Session) execute(ctx context.Context, op string, inst solana.Instruction) (Report, error) {
	before, err := s.Balances(ctx)
	if err != nil {
		return Report{}, err
	}
	snap := s.ledger.Snapshot()
	if err := s.proc.Process(ctx, inst); err != nil {
		s.ledger.Restore(snap)
		return Report{Op: op, Before: before, After: before}, err
	}
	after, err := s.Balances(ctx)
	if err != nil {
		return Report{}, err
	}
	return Report{Op: op, Before: before, After: after}, nil
}

// Swap trades amountIn of the source side for at least minAmountOut.
func (s *Session) Swap(ctx context.Context, aToB bool, amountIn, minAmountOut uint64) (Report, error) {
	ix := &processor.SwapInstruction{AmountIn: amountIn, MinimumAmountOut: minAmountOut}
	accs := processor.SwapAccounts{
		Swap:                  s.swapKey,
		Authority:             s.authority,
		UserTransferAuthority: s.user,
		State:                 s.stateKey,
		PoolMint:              s.poolMint,
		FixedFeeWallet:        s.feeOwner,
		TokenProgram:          solana.TokenProgramID,
	}
	op := "swap_b_to_a"
	if aToB {
		op = "swap_a_to_b"
		accs.Source, accs.SwapSource = s.userA, s.tokenA
		accs.SwapDestination, accs.Destination = s.tokenB, s.userB
		accs.FixedFeeAccount = s.feeTokenA
	} else {
		accs.Source, accs.SwapSource = s.userB, s.tokenB
		accs.SwapDestination, accs.Destination = s.tokenA, s.userA
		accs.FixedFeeAccount = s.feeTokenB
	}
	inst, err := ix.Build(s.opts.ProgramID, accs)
	if err != nil {
		return Report{}, err
	}
	return s.execute(ctx, op, inst)
}

// DepositAll adds liquidity on both sides for poolTokenAmount pool tokens,
// consuming at most maxA and maxB.
func (s *Session) DepositAll(ctx context.Context, poolTokenAmount, maxA, maxB uint64) (Report, error) {
	ix := &processor.DepositAllInstruction{
		PoolTokenAmount: poolTokenAmount,
		MaximumTokenA:   maxA,
		MaximumTokenB:   maxB,
	}
	inst, err := ix.Build(s.opts.ProgramID, processor.DepositAllAccounts{
		Swap:                  s.swapKey,
		Authority:             s.authority,
		UserTransferAuthority: s.user,
		State:                 s.stateKey,
		SourceA:               s.userA,
		SourceB:               s.userB,
		TokenA:                s.tokenA,
		TokenB:                s.tokenB,
		PoolMint:              s.poolMint,
		Destination:           s.userLP,
		TokenProgram:          solana.TokenProgramID,
	})
	if err != nil {
		return Report{}, err
	}
	return s.execute(ctx, "deposit_all", inst)
}

// WithdrawAll burns poolTokenAmount of the user's pool tokens for both sides,
// requiring at least minA and minB.
func (s *Session) WithdrawAll(ctx context.Context, poolTokenAmount, minA, minB uint64) (Report, error) {
	ix := &processor.WithdrawAllInstruction{
		PoolTokenAmount: poolTokenAmount,
		MinimumTokenA:   minA,
		MinimumTokenB:   minB,
	}
	inst, err := ix.Build(s.opts.ProgramID, processor.WithdrawAllAccounts{
		Swap:                  s.swapKey,
		Authority:             s.authority,
		UserTransferAuthority: s.user,
		State:                 s.stateKey,
		PoolMint:              s.poolMint,
		Source:                s.userLP,
		TokenA:                s.tokenA,
		TokenB:                s.tokenB,
		DestTokenA:            s.userA,
		DestTokenB:            s.userB,
		TokenProgram:          solana.TokenProgramID,
	})
	if err != nil {
		return Report{}, err
	}
	return s.execute(ctx, "withdraw_all", inst)
}

// DepositSingle deposits sourceAmount of one side for at least
// minPoolTokenAmount pool tokens.
func (s *Session) DepositSingle(ctx context.Context, aSide bool, sourceAmount, minPoolTokenAmount uint64) (Report, error) {
	ix := &processor.DepositSingleInstruction{
		SourceTokenAmount:      sourceAmount,
		MinimumPoolTokenAmount: minPoolTokenAmount,
	}
	source := s.userB
	op := "deposit_single_b"
	if aSide {
		source = s.userA
		op = "deposit_single_a"
	}
	inst, err := ix.Build(s.opts.ProgramID, processor.DepositSingleAccounts{
		Swap:                  s.swapKey,
		Authority:             s.authority,
		UserTransferAuthority: s.user,
		State:                 s.stateKey,
		Source:                source,
		SwapTokenA:            s.tokenA,
		SwapTokenB:            s.tokenB,
		PoolMint:              s.poolMint,
		Destination:           s.userLP,
		TokenProgram:          solana.TokenProgramID,
	})
	if err != nil {
		return Report{}, err
	}
	return s.execute(ctx, op, inst)
}

// WithdrawSingle burns at most maxPoolTokenAmount pool tokens to release
// exactly destAmount of one side.
func (s *Session) WithdrawSingle(ctx context.Context, aSide bool, destAmount, maxPoolTokenAmount uint64) (Report, error) {
	ix := &processor.WithdrawSingleInstruction{
		DestinationTokenAmount: destAmount,
		MaximumPoolTokenAmount: maxPoolTokenAmount,
	}
	destination := s.userB
	op := "withdraw_single_b"
	if aSide {
		destination = s.userA
		op = "withdraw_single_a"
	}
	inst, err := ix.Build(s.opts.ProgramID, processor.WithdrawSingleAccounts{
		Swap:                  s.swapKey,
		Authority:             s.authority,
		UserTransferAuthority: s.user,
		State:                 s.stateKey,
		PoolMint:              s.poolMint,
		Source:                s.userLP,
		SwapTokenA:            s.tokenA,
		SwapTokenB:            s.tokenB,
		Destination:           destination,
		TokenProgram:          solana.TokenProgramID,
	})
	if err != nil {
		return Report{}, err
	}
	return s.execute(ctx, op, inst)
}

// Snapshot captures the ledger so a caller can roll a what-if back.
func (s *Session) Snapshot() memory.Snapshot {
	return s.ledger.Snapshot()
}

// Restore reinstates a snapshot taken earlier.
func (s *Session) Restore(snap memory.Snapshot) {
	s.ledger.Restore(snap)
}
