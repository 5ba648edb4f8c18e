// internal/amm/curve/math128.go
package curve

import (
	"math/big"

	cosmath "cosmossdk.io/math"
)

// Intermediate values are computed at full precision and rejected once a
// result no longer fits the 128-bit budget the wire format and the token
// ledger can express.
const maxIntermediateBits = 128

var zeroInt = cosmath.ZeroInt()

func fits128(v cosmath.Int) bool {
	return v.BigInt().BitLen() <= maxIntermediateBits
}

func checkedAdd(a, b cosmath.Int) (cosmath.Int, bool) {
	sum := a.Add(b)
	if !fits128(sum) {
		return zeroInt, false
	}
	return sum, true
}

// checkedSub fails instead of going negative; all curve quantities are
// unsigned.
func checkedSub(a, b cosmath.Int) (cosmath.Int, bool) {
	if b.GT(a) {
		return zeroInt, false
	}
	return a.Sub(b), true
}

func checkedMul(a, b cosmath.Int) (cosmath.Int, bool) {
	prod := a.Mul(b)
	if !fits128(prod) {
		return zeroInt, false
	}
	return prod, true
}

// mulWide multiplies without the 128-bit cap for intermediates that are
// divided back down before leaving the package.
func mulWide(a, b cosmath.Int) cosmath.Int {
	return a.Mul(b)
}

func checkedDiv(a, b cosmath.Int) (cosmath.Int, bool) {
	if b.IsZero() {
		return zeroInt, false
	}
	return a.Quo(b), true
}

// divCeil is plain ceiling division.
func divCeil(a, b cosmath.Int) (cosmath.Int, bool) {
	if b.IsZero() {
		return zeroInt, false
	}
	q := a.Quo(b)
	if a.Mod(b).IsPositive() {
		q = q.AddRaw(1)
	}
	return q, true
}

// ceilDivAdjust divides rounding the quotient up, then shrinks the divisor
// to the smallest value that still produces the same quotient. For a swap
// this charges the trader only the source amount that actually moves the
// price: quotient*adjusted >= dividend always holds. Fails when the
// quotient would be zero, so a dust trade against deep reserves cannot
// round up to a full token.
func ceilDivAdjust(dividend, divisor cosmath.Int) (quotient, adjusted cosmath.Int, ok bool) {
	if divisor.IsZero() {
		return zeroInt, zeroInt, false
	}
	quotient = dividend.Quo(divisor)
	if quotient.IsZero() {
		return zeroInt, zeroInt, false
	}
	if dividend.Mod(divisor).IsPositive() {
		quotient = quotient.AddRaw(1)
		divisor = dividend.Quo(quotient)
		if dividend.Mod(quotient).IsPositive() {
			divisor = divisor.AddRaw(1)
		}
	}
	return quotient, divisor, true
}

// sqrtFloor is the integer square root (largest s with s*s <= v).
func sqrtFloor(v cosmath.Int) cosmath.Int {
	root := new(big.Int).Sqrt(v.BigInt())
	return cosmath.NewIntFromBigInt(root)
}

func minInt(a, b cosmath.Int) cosmath.Int {
	if a.LT(b) {
		return a
	}
	return b
}
