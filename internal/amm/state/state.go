// internal/amm/state/state.go

// Package state defines the two persisted records of the swap program and the
// program-derived addresses that guard them.
package state

import (
	"errors"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"github.com/rovshanmuradov/solana-amm/internal/amm/curve"
	binutil "github.com/rovshanmuradov/solana-amm/internal/utils/binary"
)

const (
	// StateSeed is the PDA seed of the program's singleton configuration
	// record.
	StateSeed = "AmmState"

	// LPMintDecimals is the only decimal precision accepted for a pool's
	// liquidity mint.
	LPMintDecimals uint8 = 8

	// MinLPSupply is the liquidity-token floor: withdrawals are clamped so
	// the circulating supply never drops below it.
	MinLPSupply uint64 = 100_000

	// InitialPoolAmount is the genesis liquidity-token supply a fresh
	// configuration record starts with before governance overrides it.
	InitialPoolAmount uint64 = 1_000_000_000
)

// InitialStateOwner may administer a configuration record that has never been
// written. It bootstraps ownership on a fresh deployment.
var InitialStateOwner = solana.MustPublicKeyFromBase58("DjXkZxNWUoGsL87rbWRFVPmoxN1FKXUWpinUyN921PwQ")

// WSOLMint is the wrapped-SOL mint. Swaps funded from wrapped SOL pay the
// protocol fee in native lamports instead of a token transfer.
var WSOLMint = solana.SolMint

var (
	// ErrInvalidAccountData reports a record blob that is too short or
	// carries an unknown version tag.
	ErrInvalidAccountData = errors.New("account data does not hold a valid record")
	// ErrSwapNotInitialized reports a swap record whose initialized flag is
	// still clear.
	ErrSwapNotInitialized = errors.New("swap record is not initialized")
)

// ProgramStateLen is the packed byte length of the configuration record.
const ProgramStateLen = 138

// ProgramState is the program-wide configuration record living at the
// AmmState PDA. Governance rewrites it; every pool operation reads it.
type ProgramState struct {
	IsInitialized bool
	InitialSupply uint128.Uint128
	StateOwner    solana.PublicKey
	FeeOwner      solana.PublicKey
	Fees          curve.Fees
	SwapCurve     curve.SwapCurve
}

// InitialSupplyU64 narrows the genesis supply to the u64 range token mints
// work in; the high half is discarded.
func (s ProgramState) InitialSupplyU64() uint64 {
	return s.InitialSupply.Lo
}

// Pack serializes the record into a fresh ProgramStateLen-byte blob.
func (s ProgramState) Pack() []byte {
	dst := make([]byte, ProgramStateLen)
	binutil.WriteBool(s.IsInitialized, dst, 0)
	s.InitialSupply.PutBytes(dst[1:17])
	binutil.WritePubKey(s.StateOwner, dst, 17)
	binutil.WritePubKey(s.FeeOwner, dst, 49)
	s.Fees.Pack(dst, 81)
	s.SwapCurve.Pack(dst, 105)
	return dst
}

// UnpackProgramState reads a record packed by Pack. An all-zero blob decodes
// to an uninitialized record with a constant-product curve, which is exactly
// what a freshly allocated account holds.
func UnpackProgramState(data []byte) (ProgramState, error) {
	if len(data) < ProgramStateLen {
		return ProgramState{}, ErrInvalidAccountData
	}
	swapCurve, err := curve.UnpackSwapCurve(data, 105)
	if err != nil {
		return ProgramState{}, err
	}
	return ProgramState{
		IsInitialized: binutil.ReadBool(data, 0),
		InitialSupply: uint128.FromBytes(data[1:17]),
		StateOwner:    binutil.ReadPubKey(data, 17),
		FeeOwner:      binutil.ReadPubKey(data, 49),
		Fees:          curve.UnpackFees(data, 81),
		SwapCurve:     swapCurve,
	}, nil
}

const (
	// SwapLen is the packed byte length of a versioned pool record.
	SwapLen = 291

	swapVersionV1 = 1
)

// SwapV1 is a single pool's record: the token accounts it trades between, the
// liquidity mint, and the nonce that rebuilds its signing authority.
type SwapV1 struct {
	IsInitialized  bool
	Nonce          uint8
	AmmID          solana.PublicKey
	DexProgramID   solana.PublicKey
	MarketID       solana.PublicKey
	TokenProgramID solana.PublicKey
	TokenA         solana.PublicKey
	TokenB         solana.PublicKey
	PoolMint       solana.PublicKey
	TokenAMint     solana.PublicKey
	TokenBMint     solana.PublicKey
}

// Pack serializes the record into a fresh SwapLen-byte blob with a leading
// version tag.
func (s SwapV1) Pack() []byte {
	dst := make([]byte, SwapLen)
	binutil.WriteUint8(swapVersionV1, dst, 0)
	binutil.WriteBool(s.IsInitialized, dst, 1)
	binutil.WriteUint8(s.Nonce, dst, 2)
	binutil.WritePubKey(s.AmmID, dst, 3)
	binutil.WritePubKey(s.DexProgramID, dst, 35)
	binutil.WritePubKey(s.MarketID, dst, 67)
	binutil.WritePubKey(s.TokenProgramID, dst, 99)
	binutil.WritePubKey(s.TokenA, dst, 131)
	binutil.WritePubKey(s.TokenB, dst, 163)
	binutil.WritePubKey(s.PoolMint, dst, 195)
	binutil.WritePubKey(s.TokenAMint, dst, 227)
	binutil.WritePubKey(s.TokenBMint, dst, 259)
	return dst
}

// UnpackSwap reads a versioned pool record. Unknown versions and short blobs
// are rejected, as is a record whose initialized flag is still clear.
func UnpackSwap(data []byte) (SwapV1, error) {
	if len(data) < SwapLen || binutil.ReadUint8(data, 0) != swapVersionV1 {
		return SwapV1{}, ErrInvalidAccountData
	}
	s := SwapV1{
		IsInitialized:  binutil.ReadBool(data, 1),
		Nonce:          binutil.ReadUint8(data, 2),
		AmmID:          binutil.ReadPubKey(data, 3),
		DexProgramID:   binutil.ReadPubKey(data, 35),
		MarketID:       binutil.ReadPubKey(data, 67),
		TokenProgramID: binutil.ReadPubKey(data, 99),
		TokenA:         binutil.ReadPubKey(data, 131),
		TokenB:         binutil.ReadPubKey(data, 163),
		PoolMint:       binutil.ReadPubKey(data, 195),
		TokenAMint:     binutil.ReadPubKey(data, 227),
		TokenBMint:     binutil.ReadPubKey(data, 259),
	}
	if !s.IsInitialized {
		return SwapV1{}, ErrSwapNotInitialized
	}
	return s, nil
}

// SwapInitialized reports whether data already holds a live pool record.
func SwapInitialized(data []byte) bool {
	_, err := UnpackSwap(data)
	return err == nil
}
