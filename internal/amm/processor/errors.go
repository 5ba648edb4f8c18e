// =============================
// File: internal/amm/processor/errors.go
// =============================
package processor

import (
	"errors"

	"github.com/rovshanmuradov/solana-amm/internal/amm/curve"
)

// Sentinel errors of the instruction handlers. The curve package owns the
// arithmetic and governance sentinels that both layers report; they are
// aliased here so one errors.Is target works everywhere.
var (
	ErrAlreadyInUse           = errors.New("swap account already in use")
	ErrInvalidProgramAddress  = errors.New("address does not derive from the pool and nonce")
	ErrInvalidStateAddress    = errors.New("account is not the program state address")
	ErrInvalidStateOwner      = errors.New("caller is not the state owner")
	ErrInvalidOwner           = errors.New("input account owner is not the expected address")
	ErrInvalidOutputOwner     = errors.New("output account must not be owned by the pool authority")
	ErrExpectedMint           = errors.New("deserialized account is not an SPL mint")
	ErrExpectedAccount        = errors.New("deserialized account is not an SPL token account")
	ErrInvalidDecimals        = errors.New("pool mint decimals do not match the required precision")
	ErrInvalidSupply          = errors.New("pool mint supply must be zero")
	ErrRepeatedMint           = errors.New("swap sides share the same mint")
	ErrInvalidDelegate        = errors.New("token account has a delegate")
	ErrInvalidInput           = errors.New("input account aliases a pool account")
	ErrIncorrectSwapAccount   = errors.New("account does not belong to this pool")
	ErrIncorrectPoolMint      = errors.New("account is not this pool's liquidity mint")
	ErrInvalidOutput          = errors.New("output account is invalid")
	ErrCalculationFailure     = errors.New("calculation overflowed or underflowed")
	ErrInvalidInstruction     = errors.New("instruction data or accounts are malformed")
	ErrExceededSlippage       = errors.New("result is past the slippage bound")
	ErrInvalidCloseAuthority  = errors.New("token account has a close authority")
	ErrInvalidFreezeAuthority = errors.New("pool token account or mint carries a freeze authority")
	ErrIncorrectMarketOwner   = errors.New("market account is not owned by the dex program")
	ErrInvalidSigner          = errors.New("required signature is missing")
	ErrStateNotInitialized    = errors.New("program state is not initialized")
	ErrIncorrectFeeAccount    = errors.New("fee account owner or mint does not match")
	ErrZeroTradingTokens      = errors.New("trade computes to zero tokens")
	ErrFeeCalculationFailure  = errors.New("fee calculation failed")
	ErrConversionFailure      = errors.New("amount does not fit the target width")
	ErrIncorrectProgramID     = errors.New("account is not owned by the swap program")

	ErrIncorrectTokenProgramID = errors.New("account is not owned by the expected token program")

	ErrInvalidFee                = curve.ErrInvalidFee
	ErrEmptySupply               = curve.ErrEmptySupply
	ErrInvalidCurve              = curve.ErrInvalidCurve
	ErrUnsupportedCurveType      = curve.ErrUnsupportedCurveType
	ErrUnsupportedCurveOperation = errors.New("curve does not support this operation")
)

// ErrorClass buckets the sentinels by what the caller can do about them.
type ErrorClass string

const (
	// ClassUnknown covers wrapped collaborator failures and anything not in
	// the sentinel table.
	ClassUnknown ErrorClass = "unknown"
	// ClassAuthorization: the wrong party signed or supplied keys.
	ClassAuthorization ErrorClass = "authorization"
	// ClassAccountMismatch: structurally wrong account references; retrying
	// the same request cannot succeed.
	ClassAccountMismatch ErrorClass = "account_mismatch"
	// ClassGovernance: fees or curve outside what governance allows.
	ClassGovernance ErrorClass = "governance_violation"
	// ClassState: the venue is in the wrong lifecycle state for the request.
	ClassState ErrorClass = "state"
	// ClassArithmetic: amounts that overflow, underflow or compute to zero.
	ClassArithmetic ErrorClass = "arithmetic"
	// ClassSlippage: the one class worth retrying with looser bounds.
	ClassSlippage ErrorClass = "slippage"
)

var errorClasses = []struct {
	err   error
	class ErrorClass
}{
	{ErrExceededSlippage, ClassSlippage},

	{ErrInvalidSigner, ClassAuthorization},
	{ErrInvalidStateOwner, ClassAuthorization},
	{ErrInvalidOwner, ClassAuthorization},
	{ErrInvalidOutputOwner, ClassAuthorization},
	{ErrInvalidProgramAddress, ClassAuthorization},

	{ErrInvalidStateAddress, ClassAccountMismatch},
	{ErrIncorrectSwapAccount, ClassAccountMismatch},
	{ErrIncorrectPoolMint, ClassAccountMismatch},
	{ErrIncorrectTokenProgramID, ClassAccountMismatch},
	{ErrIncorrectFeeAccount, ClassAccountMismatch},
	{ErrIncorrectMarketOwner, ClassAccountMismatch},
	{ErrIncorrectProgramID, ClassAccountMismatch},
	{ErrInvalidInput, ClassAccountMismatch},
	{ErrInvalidOutput, ClassAccountMismatch},
	{ErrExpectedMint, ClassAccountMismatch},
	{ErrExpectedAccount, ClassAccountMismatch},
	{ErrRepeatedMint, ClassAccountMismatch},
	{ErrInvalidDelegate, ClassAccountMismatch},
	{ErrInvalidCloseAuthority, ClassAccountMismatch},
	{ErrInvalidFreezeAuthority, ClassAccountMismatch},
	{ErrInvalidInstruction, ClassAccountMismatch},

	{ErrInvalidFee, ClassGovernance},
	{ErrUnsupportedCurveType, ClassGovernance},
	{ErrInvalidCurve, ClassGovernance},
	{ErrUnsupportedCurveOperation, ClassGovernance},

	{ErrAlreadyInUse, ClassState},
	{ErrStateNotInitialized, ClassState},
	{ErrEmptySupply, ClassState},
	{ErrInvalidSupply, ClassState},
	{ErrInvalidDecimals, ClassState},

	{ErrCalculationFailure, ClassArithmetic},
	{ErrConversionFailure, ClassArithmetic},
	{ErrFeeCalculationFailure, ClassArithmetic},
	{ErrZeroTradingTokens, ClassArithmetic},
}

// Class maps err (possibly wrapped) onto the taxonomy. Errors outside the
// sentinel table come back as ClassUnknown.
func Class(err error) ErrorClass {
	for _, entry := range errorClasses {
		if errors.Is(err, entry.err) {
			return entry.class
		}
	}
	return ClassUnknown
}
