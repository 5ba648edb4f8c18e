// internal/amm/curve/swap_curve.go
package curve

import (
	cosmath "cosmossdk.io/math"
	bin "github.com/gagliardetto/binary"

	binutil "github.com/rovshanmuradov/solana-amm/internal/utils/binary"
)

// SwapCurveLen is the packed byte length of a curve: one tag byte plus a
// fixed 32-byte calculator parameter blob.
const SwapCurveLen = 33

const calculatorBlobLen = 32

// SwapCurve pairs a curve tag with the calculator implementing it and layers
// the fee schedule on top of the raw invariant math.
type SwapCurve struct {
	CurveType  CurveType
	Calculator Calculator
}

func calculatorForType(curveType CurveType) (Calculator, error) {
	switch curveType {
	case CurveConstantProduct:
		return ConstantProductCurve{}, nil
	default:
		return nil, ErrUnsupportedCurveType
	}
}

// NewSwapCurve builds the curve for a tag.
func NewSwapCurve(curveType CurveType) (SwapCurve, error) {
	calculator, err := calculatorForType(curveType)
	if err != nil {
		return SwapCurve{}, err
	}
	return SwapCurve{CurveType: curveType, Calculator: calculator}, nil
}

// Validate checks the tag, the calculator, and their agreement.
func (c SwapCurve) Validate() error {
	if c.Calculator == nil {
		return ErrInvalidCurve
	}
	if c.CurveType != c.Calculator.CurveType() {
		return ErrCurveTypeMismatch
	}
	return c.Calculator.Validate()
}

// Swap runs a fee-aware trade. Both fees are skimmed off the gross source
// amount before the invariant trade; afterwards the return fee stays in the
// pool while the owner fee goes to the fee recipient, so the pool-side
// balance grows by SourceAmountSwapped minus OwnerFee.
func (c SwapCurve) Swap(sourceAmount, swapSourceAmount, swapDestinationAmount cosmath.Int, direction TradeDirection, fees Fees) (TradeResult, bool) {
	fixedFee, ok := fees.fixedFee(sourceAmount)
	if !ok {
		return TradeResult{}, false
	}
	returnFee, ok := fees.returnFee(sourceAmount)
	if !ok {
		return TradeResult{}, false
	}
	totalFees, ok := checkedAdd(fixedFee, returnFee)
	if !ok {
		return TradeResult{}, false
	}
	netSourceAmount, ok := checkedSub(sourceAmount, totalFees)
	if !ok {
		return TradeResult{}, false
	}

	raw, ok := c.Calculator.SwapWithoutFees(netSourceAmount, swapSourceAmount, swapDestinationAmount, direction)
	if !ok {
		return TradeResult{}, false
	}

	sourceAmountSwapped, ok := checkedAdd(raw.SourceAmountSwapped, totalFees)
	if !ok {
		return TradeResult{}, false
	}
	newSourceAmount, ok := checkedAdd(swapSourceAmount, sourceAmountSwapped)
	if !ok {
		return TradeResult{}, false
	}
	newSourceAmount, ok = checkedSub(newSourceAmount, fixedFee)
	if !ok {
		return TradeResult{}, false
	}
	newDestinationAmount, ok := checkedSub(swapDestinationAmount, raw.DestinationAmountSwapped)
	if !ok {
		return TradeResult{}, false
	}

	return TradeResult{
		SourceAmountSwapped:      sourceAmountSwapped,
		DestinationAmountSwapped: raw.DestinationAmountSwapped,
		OwnerFee:                 fixedFee,
		NewSourceAmount:          newSourceAmount,
		NewDestinationAmount:     newDestinationAmount,
	}, true
}

// DepositSingleTokenType prices a one-sided deposit in pool tokens. Half the
// deposit is effectively traded for the other side, so half pays the trading
// fees before the calculator sees it.
func (c SwapCurve) DepositSingleTokenType(sourceAmount, reserveA, reserveB, poolSupply cosmath.Int, direction TradeDirection, fees Fees) (cosmath.Int, bool) {
	if sourceAmount.IsZero() {
		return zeroInt, true
	}

	half := sourceAmount.QuoRaw(2)
	if half.IsZero() {
		half = cosmath.OneInt()
	}
	fixedFee, ok := fees.fixedFee(half)
	if !ok {
		return zeroInt, false
	}
	returnFee, ok := fees.returnFee(half)
	if !ok {
		return zeroInt, false
	}
	netSourceAmount, ok := checkedSub(sourceAmount, fixedFee)
	if !ok {
		return zeroInt, false
	}
	netSourceAmount, ok = checkedSub(netSourceAmount, returnFee)
	if !ok {
		return zeroInt, false
	}

	return c.Calculator.DepositSingleTokenType(netSourceAmount, reserveA, reserveB, poolSupply, direction)
}

// WithdrawSingleTokenTypeExactOut prices the pool tokens to burn for an exact
// one-sided amount out. Half of the output is effectively bought from the
// other side, so that half is grossed up by the inverse fee before the
// calculator prices it.
func (c SwapCurve) WithdrawSingleTokenTypeExactOut(destinationAmount, reserveA, reserveB, poolSupply cosmath.Int, direction TradeDirection, fees Fees) (cosmath.Int, bool) {
	if destinationAmount.IsZero() {
		return zeroInt, true
	}

	halfPlus, ok := checkedAdd(destinationAmount, cosmath.OneInt())
	if !ok {
		return zeroInt, false
	}
	half := halfPlus.QuoRaw(2)
	preFeeHalf, ok := fees.preTradeAmount(half)
	if !ok {
		return zeroInt, false
	}
	grossAmount, ok := checkedSub(destinationAmount, half)
	if !ok {
		return zeroInt, false
	}
	grossAmount, ok = checkedAdd(grossAmount, preFeeHalf)
	if !ok {
		return zeroInt, false
	}

	return c.Calculator.WithdrawSingleTokenTypeExactOut(grossAmount, reserveA, reserveB, poolSupply, direction)
}

// Pack writes the curve at offset: the tag byte followed by the calculator
// blob, zero-padded to its fixed width. Dst must have SwapCurveLen bytes of
// room.
func (c SwapCurve) Pack(dst []byte, offset int) {
	binutil.WriteUint8(uint8(c.CurveType), dst, offset)
	for i := 0; i < calculatorBlobLen; i++ {
		dst[offset+1+i] = 0
	}
}

// UnpackSwapCurve reads a curve packed by Pack, rebuilding the calculator
// from the tag.
func UnpackSwapCurve(data []byte, offset int) (SwapCurve, error) {
	if len(data) < offset+SwapCurveLen {
		return SwapCurve{}, ErrInvalidCurveEncoding
	}
	return NewSwapCurve(CurveType(binutil.ReadUint8(data, offset)))
}

// MarshalWithEncoder writes the curve in the same layout as Pack.
func (c SwapCurve) MarshalWithEncoder(encoder *bin.Encoder) error {
	blob := make([]byte, SwapCurveLen)
	c.Pack(blob, 0)
	return encoder.WriteBytes(blob, false)
}
