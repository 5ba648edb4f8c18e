// internal/amm/curve/calculator.go
package curve

import (
	"errors"

	cosmath "cosmossdk.io/math"
)

// CurveType tags the pricing model carried by a SwapCurve.
type CurveType uint8

const (
	// CurveConstantProduct is the x*y=k invariant curve.
	CurveConstantProduct CurveType = 0
)

// TradeDirection names which pool side the trader feeds.
type TradeDirection uint8

const (
	DirectionAtoB TradeDirection = iota
	DirectionBtoA
)

// RoundDirection selects the rounding policy for pool-token conversions:
// deposits round up (the pool may never be under-funded), withdrawals round
// down (the pool may never over-pay).
type RoundDirection uint8

const (
	RoundFloor RoundDirection = iota
	RoundCeiling
)

var (
	ErrInvalidFee           = errors.New("fee numerator must be smaller than the denominator")
	ErrEmptySupply          = errors.New("pool reserves must both be positive")
	ErrInvalidCurve         = errors.New("curve parameters are invalid")
	ErrUnsupportedCurveType = errors.New("curve type is not supported")
	ErrCurveTypeMismatch    = errors.New("curve tag and calculator type disagree")
	ErrInvalidCurveEncoding = errors.New("curve encoding is malformed")
)

// SwapWithoutFeesResult carries the raw invariant trade, before fees are
// added back onto the source side.
type SwapWithoutFeesResult struct {
	SourceAmountSwapped      cosmath.Int
	DestinationAmountSwapped cosmath.Int
}

// TradingTokens is a pool-token amount converted into both trading sides.
type TradingTokens struct {
	TokenAAmount cosmath.Int
	TokenBAmount cosmath.Int
}

// TradeResult is the full outcome of a fee-aware swap. NewSourceAmount and
// NewDestinationAmount are the pool-side balances after the trade: the owner
// fee is paid by the trader directly to the fee recipient and never enters
// the pool, so NewSourceAmount = reserveIn + SourceAmountSwapped - OwnerFee.
type TradeResult struct {
	SourceAmountSwapped      cosmath.Int
	DestinationAmountSwapped cosmath.Int
	OwnerFee                 cosmath.Int
	NewSourceAmount          cosmath.Int
	NewDestinationAmount     cosmath.Int
}

// Calculator is the capability set a curve variant must provide. Amount
// arguments are non-negative integers at 128-bit precision; the boolean
// result is false when no trade is possible (zero output or arithmetic out
// of range), which is distinct from a malformed-input error.
type Calculator interface {
	// CurveType reports the variant the calculator implements; it must agree
	// with the tag of the SwapCurve holding it.
	CurveType() CurveType

	// SwapWithoutFees runs the invariant-preserving trade on an already
	// fee-skimmed source amount against the pool-side balances.
	SwapWithoutFees(sourceAmount, swapSourceAmount, swapDestinationAmount cosmath.Int, direction TradeDirection) (SwapWithoutFeesResult, bool)

	// PoolTokensToTradingTokens converts a pool-token amount into the
	// proportional amounts of both trading tokens.
	PoolTokensToTradingTokens(poolTokens, poolSupply, reserveA, reserveB cosmath.Int, rounding RoundDirection) (TradingTokens, bool)

	// DepositSingleTokenType prices a one-sided deposit (already net of
	// fees) in pool tokens, rounding against the depositor.
	DepositSingleTokenType(sourceAmount, reserveA, reserveB, poolSupply cosmath.Int, direction TradeDirection) (cosmath.Int, bool)

	// WithdrawSingleTokenTypeExactOut prices the pool tokens that must be
	// burned to release an exact one-sided amount (already grossed up by
	// fees), rounding against the withdrawer.
	WithdrawSingleTokenTypeExactOut(destinationAmount, reserveA, reserveB, poolSupply cosmath.Int, direction TradeDirection) (cosmath.Int, bool)

	// Validate checks the calculator's own parameters.
	Validate() error

	// ValidateSupply checks the starting reserves a pool may open with.
	ValidateSupply(tokenAAmount, tokenBAmount uint64) error

	// AllowsDeposits reports whether the variant supports adding liquidity
	// after initialization.
	AllowsDeposits() bool
}
