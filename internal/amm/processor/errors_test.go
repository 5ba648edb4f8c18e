// internal/amm/processor/errors_test.go
package processor

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClass(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorClass
	}{
		{ErrExceededSlippage, ClassSlippage},
		{ErrInvalidSigner, ClassAuthorization},
		{ErrInvalidStateOwner, ClassAuthorization},
		{ErrInvalidProgramAddress, ClassAuthorization},
		{ErrIncorrectPoolMint, ClassAccountMismatch},
		{ErrIncorrectTokenProgramID, ClassAccountMismatch},
		{ErrInvalidInstruction, ClassAccountMismatch},
		{ErrInvalidFee, ClassGovernance},
		{ErrUnsupportedCurveType, ClassGovernance},
		{ErrAlreadyInUse, ClassState},
		{ErrStateNotInitialized, ClassState},
		{ErrEmptySupply, ClassState},
		{ErrZeroTradingTokens, ClassArithmetic},
		{ErrConversionFailure, ClassArithmetic},
		{ErrCalculationFailure, ClassArithmetic},
		{errors.New("disk on fire"), ClassUnknown},
		{nil, ClassUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Class(tc.err), "class of %v", tc.err)
	}
}

func TestClassSeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("load program state: %w", ErrStateNotInitialized)
	assert.Equal(t, ClassState, Class(err))

	err = fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", ErrExceededSlippage))
	assert.Equal(t, ClassSlippage, Class(err))
}
