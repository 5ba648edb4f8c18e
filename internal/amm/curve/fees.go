// internal/amm/curve/fees.go
package curve

import (
	"encoding/binary"

	cosmath "cosmossdk.io/math"
	bin "github.com/gagliardetto/binary"

	binutil "github.com/rovshanmuradov/solana-amm/internal/utils/binary"
)

// FeesLen is the packed byte length of a fee schedule.
const FeesLen = 24

// Fees is a pool's fee schedule: two numerators over one shared denominator.
// The fixed fee is the protocol cut paid out to the fee owner on every swap;
// the return fee is skimmed from the trade but stays in the pool, raising the
// invariant for liquidity providers.
type Fees struct {
	FixedFeeNumerator  uint64
	ReturnFeeNumerator uint64
	FeeDenominator     uint64
}

func validateFraction(numerator, denominator uint64) error {
	if numerator == 0 && denominator == 0 {
		return nil
	}
	if numerator >= denominator {
		return ErrInvalidFee
	}
	return nil
}

// Validate checks that each fee fraction is a proper fraction. The all-zero
// schedule is valid and means "no fees".
func (f Fees) Validate() error {
	if err := validateFraction(f.FixedFeeNumerator, f.FeeDenominator); err != nil {
		return err
	}
	return validateFraction(f.ReturnFeeNumerator, f.FeeDenominator)
}

// calculateFee floors amount*numerator/denominator, bumped to one token when
// the floor would be zero but a fee is due. Dust trades cannot dodge the fee
// entirely.
func calculateFee(amount cosmath.Int, numerator, denominator uint64) (cosmath.Int, bool) {
	if numerator == 0 || amount.IsZero() {
		return zeroInt, true
	}
	product, ok := checkedMul(amount, cosmath.NewIntFromUint64(numerator))
	if !ok {
		return zeroInt, false
	}
	fee, ok := checkedDiv(product, cosmath.NewIntFromUint64(denominator))
	if !ok {
		return zeroInt, false
	}
	if fee.IsZero() {
		return cosmath.OneInt(), true
	}
	return fee, true
}

func (f Fees) fixedFee(amount cosmath.Int) (cosmath.Int, bool) {
	return calculateFee(amount, f.FixedFeeNumerator, f.FeeDenominator)
}

func (f Fees) returnFee(amount cosmath.Int) (cosmath.Int, bool) {
	return calculateFee(amount, f.ReturnFeeNumerator, f.FeeDenominator)
}

// preTradeAmount inverts the skim: the smallest gross source amount whose
// post-fee remainder still covers postFeeAmount. Zero-fee schedules are the
// identity.
func (f Fees) preTradeAmount(postFeeAmount cosmath.Int) (cosmath.Int, bool) {
	total := cosmath.NewIntFromUint64(f.FixedFeeNumerator).
		Add(cosmath.NewIntFromUint64(f.ReturnFeeNumerator))
	if total.IsZero() || f.FeeDenominator == 0 {
		return postFeeAmount, true
	}
	denominator := cosmath.NewIntFromUint64(f.FeeDenominator)
	if total.Equal(denominator) || postFeeAmount.IsZero() {
		return zeroInt, true
	}
	rest, ok := checkedSub(denominator, total)
	if !ok {
		return zeroInt, false
	}
	product, ok := checkedMul(postFeeAmount, denominator)
	if !ok {
		return zeroInt, false
	}
	return divCeil(product, rest)
}

// Pack writes the schedule little-endian at offset; dst must have FeesLen
// bytes of room.
func (f Fees) Pack(dst []byte, offset int) {
	binutil.WriteUint64LittleEndian(f.FixedFeeNumerator, dst, offset)
	binutil.WriteUint64LittleEndian(f.ReturnFeeNumerator, dst, offset+8)
	binutil.WriteUint64LittleEndian(f.FeeDenominator, dst, offset+16)
}

// UnpackFees reads a schedule packed by Pack.
func UnpackFees(data []byte, offset int) Fees {
	return Fees{
		FixedFeeNumerator:  binutil.ReadUint64LittleEndian(data, offset),
		ReturnFeeNumerator: binutil.ReadUint64LittleEndian(data, offset+8),
		FeeDenominator:     binutil.ReadUint64LittleEndian(data, offset+16),
	}
}

// MarshalWithEncoder writes the schedule in the same layout as Pack.
func (f Fees) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint64(f.FixedFeeNumerator, binary.LittleEndian); err != nil {
		return err
	}
	if err := encoder.WriteUint64(f.ReturnFeeNumerator, binary.LittleEndian); err != nil {
		return err
	}
	return encoder.WriteUint64(f.FeeDenominator, binary.LittleEndian)
}
