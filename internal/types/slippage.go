// internal/types/slippage.go
package types

import "math"

// SlippageType selects how a trade bound is derived from a quote.
type SlippageType string

const (
	// SlippageFixed uses the configured value as the bound directly.
	SlippageFixed SlippageType = "fixed"
	// SlippagePercent derives the bound as a percentage of the quoted amount.
	SlippagePercent SlippageType = "percent"
	// SlippageNone disables the bound.
	SlippageNone SlippageType = "none"
)

// SlippageConfig configures the slippage policy for a trade.
type SlippageConfig struct {
	Type SlippageType `json:"type" mapstructure:"type"`
	// Value holds the policy parameter: the exact bound for SlippageFixed,
	// the tolerated percentage for SlippagePercent (1.0 = 1%), ignored for
	// SlippageNone.
	Value float64 `json:"value" mapstructure:"value"`
}

// MinAmountOut converts an expected output into the minimum the trade must
// deliver. SlippageNone returns 1 so a zero-output trade still fails.
func (c SlippageConfig) MinAmountOut(expected uint64) uint64 {
	switch c.Type {
	case SlippageFixed:
		return uint64(c.Value)
	case SlippagePercent:
		multiplier := 1.0 - c.Value/100.0
		if multiplier < 0 {
			return 0
		}
		return uint64(math.Floor(float64(expected) * multiplier))
	case SlippageNone:
		return 1
	default:
		return 1
	}
}

// MaxAmountIn converts an expected input into the maximum the trade may
// consume. SlippageNone places no cap.
func (c SlippageConfig) MaxAmountIn(expected uint64) uint64 {
	switch c.Type {
	case SlippageFixed:
		return uint64(c.Value)
	case SlippagePercent:
		return uint64(math.Floor(float64(expected) * (1.0 + c.Value/100.0)))
	case SlippageNone:
		return math.MaxUint64
	default:
		return math.MaxUint64
	}
}
