// internal/amm/constraints/constraints.go
package constraints

import (
	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-amm/internal/amm/curve"
)

// defaultOwnerKey receives the fixed fee on every swap in the production
// deployment.
const defaultOwnerKey = "DjXkZxNWUoGsL87rbWRFVPmoxN1FKXUWpinUyN921PwQ"

// SwapConstraints is the floor a deployment bakes in at build time: any
// runtime-supplied fee schedule or curve must clear it, so a permissionless
// frontend cannot configure the program below the operator's terms.
type SwapConstraints struct {
	// OwnerKey is the designated fee recipient.
	OwnerKey solana.PublicKey
	// ValidCurveTypes whitelists the curve variants a pool may use.
	ValidCurveTypes []curve.CurveType
	// Fees holds the minimum numerators and the required denominator.
	Fees curve.Fees
}

// Default is the constraint set compiled into the production build.
func Default() SwapConstraints {
	return SwapConstraints{
		OwnerKey:        solana.MustPublicKeyFromBase58(defaultOwnerKey),
		ValidCurveTypes: []curve.CurveType{curve.CurveConstantProduct},
		Fees: curve.Fees{
			FixedFeeNumerator:  20,
			ReturnFeeNumerator: 10,
			FeeDenominator:     10000,
		},
	}
}

func (c SwapConstraints) allows(curveType curve.CurveType) bool {
	for _, allowed := range c.ValidCurveTypes {
		if allowed == curveType {
			return true
		}
	}
	return false
}

// ValidateCurve checks both the declared tag and the calculator's
// self-reported tag against the whitelist, so a mislabeled calculator cannot
// ride in under an allowed tag.
func (c SwapConstraints) ValidateCurve(swapCurve curve.SwapCurve) error {
	if swapCurve.Calculator == nil {
		return curve.ErrUnsupportedCurveType
	}
	if c.allows(swapCurve.CurveType) && c.allows(swapCurve.Calculator.CurveType()) {
		return nil
	}
	return curve.ErrUnsupportedCurveType
}

// ValidateFees accepts a schedule whose numerators meet or exceed the floor
// and whose denominator matches it exactly; there is no implicit rescaling
// between denominators.
func (c SwapConstraints) ValidateFees(fees curve.Fees) error {
	if fees.ReturnFeeNumerator >= c.Fees.ReturnFeeNumerator &&
		fees.FixedFeeNumerator >= c.Fees.FixedFeeNumerator &&
		fees.FeeDenominator == c.Fees.FeeDenominator {
		return nil
	}
	return curve.ErrInvalidFee
}
