// internal/amm/curve/constant_product.go
package curve

import (
	cosmath "cosmossdk.io/math"
)

// ConstantProductCurve prices trades against the x*y=k invariant. It carries
// no parameters; the pool reserves are the whole model.
type ConstantProductCurve struct{}

// CurveType implements Calculator.
func (ConstantProductCurve) CurveType() CurveType {
	return CurveConstantProduct
}

// SwapWithoutFees trades sourceAmount against the reserves keeping
// newSource*newDestination >= source*destination. The destination side is
// divided rounding up, then the source side is shrunk to the smallest amount
// that still buys the same output, so the trader never overpays for rounding.
func (ConstantProductCurve) SwapWithoutFees(sourceAmount, swapSourceAmount, swapDestinationAmount cosmath.Int, _ TradeDirection) (SwapWithoutFeesResult, bool) {
	invariant, ok := checkedMul(swapSourceAmount, swapDestinationAmount)
	if !ok {
		return SwapWithoutFeesResult{}, false
	}

	newSwapSourceAmount, ok := checkedAdd(swapSourceAmount, sourceAmount)
	if !ok {
		return SwapWithoutFeesResult{}, false
	}
	newSwapDestinationAmount, newSwapSourceAmount, ok := ceilDivAdjust(invariant, newSwapSourceAmount)
	if !ok {
		return SwapWithoutFeesResult{}, false
	}

	sourceAmountSwapped, ok := checkedSub(newSwapSourceAmount, swapSourceAmount)
	if !ok {
		return SwapWithoutFeesResult{}, false
	}
	destinationAmountSwapped, ok := checkedSub(swapDestinationAmount, newSwapDestinationAmount)
	if !ok || destinationAmountSwapped.IsZero() {
		return SwapWithoutFeesResult{}, false
	}

	return SwapWithoutFeesResult{
		SourceAmountSwapped:      sourceAmountSwapped,
		DestinationAmountSwapped: destinationAmountSwapped,
	}, true
}

// proportionalShare is poolTokens*reserve/poolSupply under the requested
// rounding. Ceiling never rounds a zero share up: a pool-token amount too
// small to be worth one trading token stays zero and is rejected downstream
// instead of overcharging the depositor.
func proportionalShare(poolTokens, reserve, poolSupply cosmath.Int, rounding RoundDirection) (cosmath.Int, bool) {
	product, ok := checkedMul(poolTokens, reserve)
	if !ok {
		return zeroInt, false
	}
	amount, ok := checkedDiv(product, poolSupply)
	if !ok {
		return zeroInt, false
	}
	if rounding == RoundCeiling && !amount.IsZero() && product.Mod(poolSupply).IsPositive() {
		amount = amount.AddRaw(1)
	}
	return amount, true
}

// PoolTokensToTradingTokens implements Calculator.
func (ConstantProductCurve) PoolTokensToTradingTokens(poolTokens, poolSupply, reserveA, reserveB cosmath.Int, rounding RoundDirection) (TradingTokens, bool) {
	tokenAAmount, ok := proportionalShare(poolTokens, reserveA, poolSupply, rounding)
	if !ok {
		return TradingTokens{}, false
	}
	tokenBAmount, ok := proportionalShare(poolTokens, reserveB, poolSupply, rounding)
	if !ok {
		return TradingTokens{}, false
	}
	return TradingTokens{TokenAAmount: tokenAAmount, TokenBAmount: tokenBAmount}, true
}

func sideReserve(reserveA, reserveB cosmath.Int, direction TradeDirection) cosmath.Int {
	if direction == DirectionAtoB {
		return reserveA
	}
	return reserveB
}

// DepositSingleTokenType prices a one-sided deposit as the Balancer
// single-asset formula for two equally weighted tokens:
//
//	poolTokens = poolSupply * (sqrt(1 + sourceAmount/reserve) - 1)
//
// The supply is folded into the radicand (sqrt(supply^2*x) = supply*sqrt(x))
// so the square root keeps supply-scale precision, then the result is floored
// so the depositor never receives more than the exact share.
func (ConstantProductCurve) DepositSingleTokenType(sourceAmount, reserveA, reserveB, poolSupply cosmath.Int, direction TradeDirection) (cosmath.Int, bool) {
	reserve := sideReserve(reserveA, reserveB, direction)

	grown, ok := checkedAdd(reserve, sourceAmount)
	if !ok {
		return zeroInt, false
	}
	radicand := mulWide(mulWide(poolSupply, poolSupply), mulWide(grown, reserve))
	rootGain, ok := checkedSub(sqrtFloor(radicand), mulWide(poolSupply, reserve))
	if !ok {
		return zeroInt, false
	}
	poolTokens, ok := checkedDiv(rootGain, reserve)
	if !ok || !fits128(poolTokens) {
		return zeroInt, false
	}
	return poolTokens, true
}

// WithdrawSingleTokenTypeExactOut prices the pool tokens to burn for an
// exact one-sided withdrawal:
//
//	poolTokens = poolSupply * (1 - sqrt(1 - destinationAmount/reserve))
//
// The supply is folded into the radicand as in DepositSingleTokenType, and
// because the root is floored the loss term only ever grows, so rounding up
// the final division never under-burns. Fails when the requested amount
// exceeds the reserve.
func (ConstantProductCurve) WithdrawSingleTokenTypeExactOut(destinationAmount, reserveA, reserveB, poolSupply cosmath.Int, direction TradeDirection) (cosmath.Int, bool) {
	reserve := sideReserve(reserveA, reserveB, direction)

	shrunk, ok := checkedSub(reserve, destinationAmount)
	if !ok {
		return zeroInt, false
	}
	radicand := mulWide(mulWide(poolSupply, poolSupply), mulWide(shrunk, reserve))
	rootLoss, ok := checkedSub(mulWide(poolSupply, reserve), sqrtFloor(radicand))
	if !ok {
		return zeroInt, false
	}
	poolTokens, ok := divCeil(rootLoss, reserve)
	if !ok || !fits128(poolTokens) {
		return zeroInt, false
	}
	return poolTokens, true
}

// Validate implements Calculator. The constant-product curve has no
// parameters to check.
func (ConstantProductCurve) Validate() error {
	return nil
}

// ValidateSupply implements Calculator. Both reserves must be funded before
// the invariant is meaningful.
func (ConstantProductCurve) ValidateSupply(tokenAAmount, tokenBAmount uint64) error {
	if tokenAAmount == 0 || tokenBAmount == 0 {
		return ErrEmptySupply
	}
	return nil
}

// AllowsDeposits implements Calculator.
func (ConstantProductCurve) AllowsDeposits() bool {
	return true
}
