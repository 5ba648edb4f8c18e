// =============================
// File: internal/amm/processor/instruction.go
// =============================
package processor

import (
	"bytes"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-amm/internal/amm/curve"
	binutil "github.com/rovshanmuradov/solana-amm/internal/utils/binary"
)

// Opcode is the one-byte instruction tag on the wire.
type Opcode uint8

const (
	OpUpdateState Opcode = iota
	OpInitialize
	OpSwap
	OpDepositAllTokenTypes
	OpWithdrawAllTokenTypes
	OpDepositSingleTokenTypeExactAmountIn
	OpWithdrawSingleTokenTypeExactOut
)

func (o Opcode) String() string {
	switch o {
	case OpUpdateState:
		return "UpdateState"
	case OpInitialize:
		return "Initialize"
	case OpSwap:
		return "Swap"
	case OpDepositAllTokenTypes:
		return "DepositAllTokenTypes"
	case OpWithdrawAllTokenTypes:
		return "WithdrawAllTokenTypes"
	case OpDepositSingleTokenTypeExactAmountIn:
		return "DepositSingleTokenTypeExactAmountIn"
	case OpWithdrawSingleTokenTypeExactOut:
		return "WithdrawSingleTokenTypeExactOut"
	}
	return "Unknown"
}

// Wire lengths, tag byte included. Payloads are little-endian fixed width.
const (
	updateStateDataLen    = 1 + 8 + curve.FeesLen + curve.SwapCurveLen
	initializeDataLen     = 1 + 1
	swapDataLen           = 1 + 8 + 8
	depositAllDataLen     = 1 + 8 + 8 + 8
	withdrawAllDataLen    = 1 + 8 + 8 + 8
	depositSingleDataLen  = 1 + 8 + 8
	withdrawSingleDataLen = 1 + 8 + 8
)

// Instruction is one decoded swap-program request.
type Instruction interface {
	// Opcode reports the wire tag of the request.
	Opcode() Opcode
	// Data serializes the request back to tag plus payload.
	Data() ([]byte, error)
}

// DecodeInstruction parses the tag byte and the fixed-width payload behind
// it. Trailing bytes are tolerated; a short or unknown buffer is not.
func DecodeInstruction(data []byte) (Instruction, error) {
	if len(data) < 1 {
		return nil, ErrInvalidInstruction
	}
	switch Opcode(data[0]) {
	case OpUpdateState:
		if len(data) < updateStateDataLen {
			return nil, ErrInvalidInstruction
		}
		swapCurve, err := curve.UnpackSwapCurve(data, 1+8+curve.FeesLen)
		if err != nil {
			return nil, ErrInvalidInstruction
		}
		return &UpdateStateInstruction{
			InitialSupply: binutil.ReadUint64LittleEndian(data, 1),
			Fees:          curve.UnpackFees(data, 1+8),
			SwapCurve:     swapCurve,
		}, nil

	case OpInitialize:
		if len(data) < initializeDataLen {
			return nil, ErrInvalidInstruction
		}
		return &InitializeInstruction{Nonce: data[1]}, nil

	case OpSwap:
		if len(data) < swapDataLen {
			return nil, ErrInvalidInstruction
		}
		return &SwapInstruction{
			AmountIn:         binutil.ReadUint64LittleEndian(data, 1),
			MinimumAmountOut: binutil.ReadUint64LittleEndian(data, 9),
		}, nil

	case OpDepositAllTokenTypes:
		if len(data) < depositAllDataLen {
			return nil, ErrInvalidInstruction
		}
		return &DepositAllInstruction{
			PoolTokenAmount: binutil.ReadUint64LittleEndian(data, 1),
			MaximumTokenA:   binutil.ReadUint64LittleEndian(data, 9),
			MaximumTokenB:   binutil.ReadUint64LittleEndian(data, 17),
		}, nil

	case OpWithdrawAllTokenTypes:
		if len(data) < withdrawAllDataLen {
			return nil, ErrInvalidInstruction
		}
		return &WithdrawAllInstruction{
			PoolTokenAmount: binutil.ReadUint64LittleEndian(data, 1),
			MinimumTokenA:   binutil.ReadUint64LittleEndian(data, 9),
			MinimumTokenB:   binutil.ReadUint64LittleEndian(data, 17),
		}, nil

	case OpDepositSingleTokenTypeExactAmountIn:
		if len(data) < depositSingleDataLen {
			return nil, ErrInvalidInstruction
		}
		return &DepositSingleInstruction{
			SourceTokenAmount:      binutil.ReadUint64LittleEndian(data, 1),
			MinimumPoolTokenAmount: binutil.ReadUint64LittleEndian(data, 9),
		}, nil

	case OpWithdrawSingleTokenTypeExactOut:
		if len(data) < withdrawSingleDataLen {
			return nil, ErrInvalidInstruction
		}
		return &WithdrawSingleInstruction{
			DestinationTokenAmount: binutil.ReadUint64LittleEndian(data, 1),
			MaximumPoolTokenAmount: binutil.ReadUint64LittleEndian(data, 9),
		}, nil
	}
	return nil, ErrInvalidInstruction
}

func encodeAmounts(op Opcode, amounts ...uint64) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteBytes([]byte{byte(op)}, false); err != nil {
		return nil, err
	}
	for _, amount := range amounts {
		if err := enc.WriteUint64(amount, binary.LittleEndian); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// UpdateStateInstruction creates or rewrites the program state record.
type UpdateStateInstruction struct {
	InitialSupply uint64
	Fees          curve.Fees
	SwapCurve     curve.SwapCurve
}

func (ix *UpdateStateInstruction) Opcode() Opcode { return OpUpdateState }

func (ix *UpdateStateInstruction) Data() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteBytes([]byte{byte(OpUpdateState)}, false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(ix.InitialSupply, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := ix.Fees.MarshalWithEncoder(enc); err != nil {
		return nil, err
	}
	if err := ix.SwapCurve.MarshalWithEncoder(enc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UpdateStateAccounts lists the update accounts in handler order. The system
// program and rent sysvar rows are appended by Build.
type UpdateStateAccounts struct {
	State             solana.PublicKey
	CurrentStateOwner solana.PublicKey // signer, pays for the allocation
	NewStateOwner     solana.PublicKey
	FeeOwner          solana.PublicKey
}

func (ix *UpdateStateInstruction) Build(programID solana.PublicKey, accounts UpdateStateAccounts) (solana.Instruction, error) {
	data, err := ix.Data()
	if err != nil {
		return nil, err
	}
	metas := []*solana.AccountMeta{
		{PublicKey: accounts.State, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.CurrentStateOwner, IsSigner: true, IsWritable: true},
		{PublicKey: accounts.NewStateOwner, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.FeeOwner, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(programID, metas, data), nil
}

// InitializeInstruction opens a pool over an existing swap record slot.
type InitializeInstruction struct {
	Nonce uint8
}

func (ix *InitializeInstruction) Opcode() Opcode { return OpInitialize }

func (ix *InitializeInstruction) Data() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteBytes([]byte{byte(OpInitialize), ix.Nonce}, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// InitializeAccounts lists the pool bootstrap accounts in handler order.
type InitializeAccounts struct {
	Swap              solana.PublicKey
	Authority         solana.PublicKey
	State             solana.PublicKey
	AmmID             solana.PublicKey
	TokenA            solana.PublicKey
	TokenB            solana.PublicKey
	PoolMint          solana.PublicKey
	Destination       solana.PublicKey
	Market            solana.PublicKey
	TokenProgram      solana.PublicKey
	DexProgram        solana.PublicKey
	CurrentStateOwner solana.PublicKey // signer
}

func (ix *InitializeInstruction) Build(programID solana.PublicKey, accounts InitializeAccounts) (solana.Instruction, error) {
	data, err := ix.Data()
	if err != nil {
		return nil, err
	}
	metas := []*solana.AccountMeta{
		{PublicKey: accounts.Swap, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Authority, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.State, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.AmmID, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.TokenA, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.TokenB, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.PoolMint, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Destination, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Market, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.TokenProgram, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.DexProgram, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.CurrentStateOwner, IsSigner: true, IsWritable: false},
	}
	return solana.NewInstruction(programID, metas, data), nil
}

// SwapInstruction trades an exact input for at least the minimum output.
type SwapInstruction struct {
	AmountIn         uint64
	MinimumAmountOut uint64
}

func (ix *SwapInstruction) Opcode() Opcode { return OpSwap }

func (ix *SwapInstruction) Data() ([]byte, error) {
	return encodeAmounts(OpSwap, ix.AmountIn, ix.MinimumAmountOut)
}

// SwapAccounts lists the trade accounts in handler order. The system program
// row backing the native fee path is appended by Build.
type SwapAccounts struct {
	Swap                  solana.PublicKey
	Authority             solana.PublicKey
	UserTransferAuthority solana.PublicKey // signer
	State                 solana.PublicKey
	Source                solana.PublicKey
	SwapSource            solana.PublicKey
	SwapDestination       solana.PublicKey
	Destination           solana.PublicKey
	PoolMint              solana.PublicKey
	FixedFeeAccount       solana.PublicKey
	FixedFeeWallet        solana.PublicKey
	TokenProgram          solana.PublicKey
}

func (ix *SwapInstruction) Build(programID solana.PublicKey, accounts SwapAccounts) (solana.Instruction, error) {
	data, err := ix.Data()
	if err != nil {
		return nil, err
	}
	metas := []*solana.AccountMeta{
		{PublicKey: accounts.Swap, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.Authority, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.UserTransferAuthority, IsSigner: true, IsWritable: true},
		{PublicKey: accounts.State, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.Source, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.SwapSource, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.SwapDestination, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Destination, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.PoolMint, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.FixedFeeAccount, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.FixedFeeWallet, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.TokenProgram, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(programID, metas, data), nil
}

// DepositAllInstruction adds liquidity on both sides for pool tokens.
type DepositAllInstruction struct {
	PoolTokenAmount uint64
	MaximumTokenA   uint64
	MaximumTokenB   uint64
}

func (ix *DepositAllInstruction) Opcode() Opcode { return OpDepositAllTokenTypes }

func (ix *DepositAllInstruction) Data() ([]byte, error) {
	return encodeAmounts(OpDepositAllTokenTypes, ix.PoolTokenAmount, ix.MaximumTokenA, ix.MaximumTokenB)
}

// DepositAllAccounts lists the two-sided deposit accounts in handler order.
type DepositAllAccounts struct {
	Swap                  solana.PublicKey
	Authority             solana.PublicKey
	UserTransferAuthority solana.PublicKey // signer
	State                 solana.PublicKey
	SourceA               solana.PublicKey
	SourceB               solana.PublicKey
	TokenA                solana.PublicKey
	TokenB                solana.PublicKey
	PoolMint              solana.PublicKey
	Destination           solana.PublicKey
	TokenProgram          solana.PublicKey
}

func (ix *DepositAllInstruction) Build(programID solana.PublicKey, accounts DepositAllAccounts) (solana.Instruction, error) {
	data, err := ix.Data()
	if err != nil {
		return nil, err
	}
	metas := []*solana.AccountMeta{
		{PublicKey: accounts.Swap, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.Authority, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.UserTransferAuthority, IsSigner: true, IsWritable: false},
		{PublicKey: accounts.State, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.SourceA, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.SourceB, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.TokenA, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.TokenB, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.PoolMint, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Destination, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.TokenProgram, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(programID, metas, data), nil
}

// WithdrawAllInstruction burns pool tokens for both trading tokens.
type WithdrawAllInstruction struct {
	PoolTokenAmount uint64
	MinimumTokenA   uint64
	MinimumTokenB   uint64
}

func (ix *WithdrawAllInstruction) Opcode() Opcode { return OpWithdrawAllTokenTypes }

func (ix *WithdrawAllInstruction) Data() ([]byte, error) {
	return encodeAmounts(OpWithdrawAllTokenTypes, ix.PoolTokenAmount, ix.MinimumTokenA, ix.MinimumTokenB)
}

// WithdrawAllAccounts lists the two-sided withdrawal accounts in handler order.
type WithdrawAllAccounts struct {
	Swap                  solana.PublicKey
	Authority             solana.PublicKey
	UserTransferAuthority solana.PublicKey // signer
	State                 solana.PublicKey
	PoolMint              solana.PublicKey
	Source                solana.PublicKey
	TokenA                solana.PublicKey
	TokenB                solana.PublicKey
	DestTokenA            solana.PublicKey
	DestTokenB            solana.PublicKey
	TokenProgram          solana.PublicKey
}

func (ix *WithdrawAllInstruction) Build(programID solana.PublicKey, accounts WithdrawAllAccounts) (solana.Instruction, error) {
	data, err := ix.Data()
	if err != nil {
		return nil, err
	}
	metas := []*solana.AccountMeta{
		{PublicKey: accounts.Swap, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.Authority, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.UserTransferAuthority, IsSigner: true, IsWritable: false},
		{PublicKey: accounts.State, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.PoolMint, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Source, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.TokenA, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.TokenB, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.DestTokenA, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.DestTokenB, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.TokenProgram, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(programID, metas, data), nil
}

// DepositSingleInstruction adds liquidity from one side only.
type DepositSingleInstruction struct {
	SourceTokenAmount      uint64
	MinimumPoolTokenAmount uint64
}

func (ix *DepositSingleInstruction) Opcode() Opcode {
	return OpDepositSingleTokenTypeExactAmountIn
}

func (ix *DepositSingleInstruction) Data() ([]byte, error) {
	return encodeAmounts(OpDepositSingleTokenTypeExactAmountIn, ix.SourceTokenAmount, ix.MinimumPoolTokenAmount)
}

// DepositSingleAccounts lists the one-sided deposit accounts in handler order.
type DepositSingleAccounts struct {
	Swap                  solana.PublicKey
	Authority             solana.PublicKey
	UserTransferAuthority solana.PublicKey // signer
	State                 solana.PublicKey
	Source                solana.PublicKey
	SwapTokenA            solana.PublicKey
	SwapTokenB            solana.PublicKey
	PoolMint              solana.PublicKey
	Destination           solana.PublicKey
	TokenProgram          solana.PublicKey
}

func (ix *DepositSingleInstruction) Build(programID solana.PublicKey, accounts DepositSingleAccounts) (solana.Instruction, error) {
	data, err := ix.Data()
	if err != nil {
		return nil, err
	}
	metas := []*solana.AccountMeta{
		{PublicKey: accounts.Swap, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.Authority, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.UserTransferAuthority, IsSigner: true, IsWritable: false},
		{PublicKey: accounts.State, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.Source, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.SwapTokenA, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.SwapTokenB, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.PoolMint, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Destination, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.TokenProgram, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(programID, metas, data), nil
}

// WithdrawSingleInstruction burns pool tokens for an exact one-sided output.
type WithdrawSingleInstruction struct {
	DestinationTokenAmount uint64
	MaximumPoolTokenAmount uint64
}

func (ix *WithdrawSingleInstruction) Opcode() Opcode {
	return OpWithdrawSingleTokenTypeExactOut
}

func (ix *WithdrawSingleInstruction) Data() ([]byte, error) {
	return encodeAmounts(OpWithdrawSingleTokenTypeExactOut, ix.DestinationTokenAmount, ix.MaximumPoolTokenAmount)
}

// WithdrawSingleAccounts lists the one-sided withdrawal accounts in handler
// order.
type WithdrawSingleAccounts struct {
	Swap                  solana.PublicKey
	Authority             solana.PublicKey
	UserTransferAuthority solana.PublicKey // signer
	State                 solana.PublicKey
	PoolMint              solana.PublicKey
	Source                solana.PublicKey
	SwapTokenA            solana.PublicKey
	SwapTokenB            solana.PublicKey
	Destination           solana.PublicKey
	TokenProgram          solana.PublicKey
}

func (ix *WithdrawSingleInstruction) Build(programID solana.PublicKey, accounts WithdrawSingleAccounts) (solana.Instruction, error) {
	data, err := ix.Data()
	if err != nil {
		return nil, err
	}
	metas := []*solana.AccountMeta{
		{PublicKey: accounts.Swap, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.Authority, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.UserTransferAuthority, IsSigner: true, IsWritable: false},
		{PublicKey: accounts.State, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.PoolMint, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Source, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.SwapTokenA, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.SwapTokenB, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Destination, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.TokenProgram, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(programID, metas, data), nil
}
