// internal/amm/curve/constant_product_test.go
package curve

import (
	"testing"

	cosmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwapWithoutFees(t *testing.T) {
	curve := ConstantProductCurve{}

	tests := []struct {
		name       string
		sourceIn   int64
		reserveIn  int64
		reserveOut int64
		wantSource int64
		wantDest   int64
		wantOK     bool
	}{
		{
			name:       "balanced million pool",
			sourceIn:   998,
			reserveIn:  1_000_000,
			reserveOut: 1_000_000,
			wantSource: 998,
			wantDest:   997,
			wantOK:     true,
		},
		{
			name:       "source shrunk to what moves the price",
			sourceIn:   4,
			reserveIn:  10,
			reserveOut: 10,
			wantSource: 3,
			wantDest:   2,
			wantOK:     true,
		},
		{
			name:       "zero input buys nothing",
			sourceIn:   0,
			reserveIn:  1_000_000,
			reserveOut: 1_000_000,
			wantOK:     false,
		},
		{
			name:       "dust against deep reserves buys nothing",
			sourceIn:   1,
			reserveIn:  1_000_000,
			reserveOut: 100,
			wantOK:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := curve.SwapWithoutFees(
				cosmath.NewInt(tt.sourceIn),
				cosmath.NewInt(tt.reserveIn),
				cosmath.NewInt(tt.reserveOut),
				DirectionAtoB,
			)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, cosmath.NewInt(tt.wantSource).String(), result.SourceAmountSwapped.String())
			assert.Equal(t, cosmath.NewInt(tt.wantDest).String(), result.DestinationAmountSwapped.String())

			// new_in * new_out >= in * out
			newIn := cosmath.NewInt(tt.reserveIn).Add(result.SourceAmountSwapped)
			newOut := cosmath.NewInt(tt.reserveOut).Sub(result.DestinationAmountSwapped)
			invariantBefore := cosmath.NewInt(tt.reserveIn).Mul(cosmath.NewInt(tt.reserveOut))
			assert.True(t, newIn.Mul(newOut).GTE(invariantBefore),
				"invariant shrank: %s * %s < %s", newIn, newOut, invariantBefore)
		})
	}
}

func TestPoolTokensToTradingTokens(t *testing.T) {
	curve := ConstantProductCurve{}

	tests := []struct {
		name       string
		poolTokens int64
		poolSupply int64
		reserveA   int64
		reserveB   int64
		rounding   RoundDirection
		wantA      int64
		wantB      int64
		wantOK     bool
	}{
		{
			name:       "exact proportional share",
			poolTokens: 10, poolSupply: 100, reserveA: 1000, reserveB: 500,
			rounding: RoundFloor,
			wantA:    100, wantB: 50, wantOK: true,
		},
		{
			name:       "floor drops the remainder",
			poolTokens: 1, poolSupply: 3, reserveA: 10, reserveB: 10,
			rounding: RoundFloor,
			wantA:    3, wantB: 3, wantOK: true,
		},
		{
			name:       "ceiling keeps the remainder",
			poolTokens: 1, poolSupply: 3, reserveA: 10, reserveB: 10,
			rounding: RoundCeiling,
			wantA:    4, wantB: 4, wantOK: true,
		},
		{
			name:       "ceiling never rounds zero up",
			poolTokens: 1, poolSupply: 100, reserveA: 10, reserveB: 10,
			rounding: RoundCeiling,
			wantA:    0, wantB: 0, wantOK: true,
		},
		{
			name:       "empty pool supply",
			poolTokens: 1, poolSupply: 0, reserveA: 10, reserveB: 10,
			rounding: RoundFloor,
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := curve.PoolTokensToTradingTokens(
				cosmath.NewInt(tt.poolTokens),
				cosmath.NewInt(tt.poolSupply),
				cosmath.NewInt(tt.reserveA),
				cosmath.NewInt(tt.reserveB),
				tt.rounding,
			)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, cosmath.NewInt(tt.wantA).String(), result.TokenAAmount.String())
			assert.Equal(t, cosmath.NewInt(tt.wantB).String(), result.TokenBAmount.String())
		})
	}
}

func TestCeilingDominatesFloor(t *testing.T) {
	curve := ConstantProductCurve{}
	supply := cosmath.NewInt(1_000_000)
	reserveA := cosmath.NewInt(3_333_331)
	reserveB := cosmath.NewInt(7_777_771)

	for _, poolTokens := range []int64{1, 7, 999, 123_456, 999_999} {
		amount := cosmath.NewInt(poolTokens)
		floor, ok := curve.PoolTokensToTradingTokens(amount, supply, reserveA, reserveB, RoundFloor)
		require.True(t, ok)
		ceiling, ok := curve.PoolTokensToTradingTokens(amount, supply, reserveA, reserveB, RoundCeiling)
		require.True(t, ok)

		assert.True(t, ceiling.TokenAAmount.GTE(floor.TokenAAmount), "pool=%d", poolTokens)
		assert.True(t, ceiling.TokenBAmount.GTE(floor.TokenBAmount), "pool=%d", poolTokens)
	}
}

func TestDepositSingleTokenType(t *testing.T) {
	curve := ConstantProductCurve{}

	// supply * (sqrt(1 + 10_000/1_000_000) - 1) with supply 1e9.
	poolTokens, ok := curve.DepositSingleTokenType(
		cosmath.NewInt(10_000),
		cosmath.NewInt(1_000_000),
		cosmath.NewInt(999), // other side must not matter for AtoB
		cosmath.NewInt(1_000_000_000),
		DirectionAtoB,
	)
	require.True(t, ok)
	assert.Equal(t, "4987562", poolTokens.String())

	// Same trade against the B side.
	poolTokens, ok = curve.DepositSingleTokenType(
		cosmath.NewInt(10_000),
		cosmath.NewInt(999),
		cosmath.NewInt(1_000_000),
		cosmath.NewInt(1_000_000_000),
		DirectionBtoA,
	)
	require.True(t, ok)
	assert.Equal(t, "4987562", poolTokens.String())

	// Empty reserve cannot price a deposit.
	_, ok = curve.DepositSingleTokenType(
		cosmath.NewInt(10_000),
		cosmath.ZeroInt(),
		cosmath.NewInt(999),
		cosmath.NewInt(1_000_000_000),
		DirectionAtoB,
	)
	assert.False(t, ok)
}

func TestWithdrawSingleTokenTypeExactOut(t *testing.T) {
	curve := ConstantProductCurve{}

	// supply * (1 - sqrt(1 - 10_000/1_000_000)) with supply 1e9, rounded up.
	poolTokens, ok := curve.WithdrawSingleTokenTypeExactOut(
		cosmath.NewInt(10_000),
		cosmath.NewInt(1_000_000),
		cosmath.NewInt(999),
		cosmath.NewInt(1_000_000_000),
		DirectionAtoB,
	)
	require.True(t, ok)
	assert.Equal(t, "5012563", poolTokens.String())

	// Draining the whole reserve burns the whole supply.
	poolTokens, ok = curve.WithdrawSingleTokenTypeExactOut(
		cosmath.NewInt(1_000_000),
		cosmath.NewInt(1_000_000),
		cosmath.NewInt(999),
		cosmath.NewInt(1_000_000_000),
		DirectionAtoB,
	)
	require.True(t, ok)
	assert.Equal(t, "1000000000", poolTokens.String())

	// More than the reserve holds cannot be priced.
	_, ok = curve.WithdrawSingleTokenTypeExactOut(
		cosmath.NewInt(1_000_001),
		cosmath.NewInt(1_000_000),
		cosmath.NewInt(999),
		cosmath.NewInt(1_000_000_000),
		DirectionAtoB,
	)
	assert.False(t, ok)
}

func TestWithdrawPricesAboveDeposit(t *testing.T) {
	curve := ConstantProductCurve{}
	reserveA := cosmath.NewInt(1_000_000)
	reserveB := cosmath.NewInt(2_000_000)
	supply := cosmath.NewInt(500_000_000)

	// Releasing an amount must always burn at least as many pool tokens as
	// depositing the same amount mints, or round trips would print money.
	for _, amount := range []int64{1, 100, 9_999, 123_456, 999_999} {
		in := cosmath.NewInt(amount)
		minted, ok := curve.DepositSingleTokenType(in, reserveA, reserveB, supply, DirectionAtoB)
		require.True(t, ok, "amount=%d", amount)
		burned, ok := curve.WithdrawSingleTokenTypeExactOut(in, reserveA, reserveB, supply, DirectionAtoB)
		require.True(t, ok, "amount=%d", amount)

		assert.True(t, burned.GTE(minted), "amount=%d minted=%s burned=%s", amount, minted, burned)
	}
}

func TestValidateSupply(t *testing.T) {
	curve := ConstantProductCurve{}

	assert.NoError(t, curve.ValidateSupply(1, 1))
	assert.ErrorIs(t, curve.ValidateSupply(0, 1), ErrEmptySupply)
	assert.ErrorIs(t, curve.ValidateSupply(1, 0), ErrEmptySupply)
}
