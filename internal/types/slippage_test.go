// internal/types/slippage_test.go
package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinAmountOut(t *testing.T) {
	tests := []struct {
		name     string
		cfg      SlippageConfig
		expected uint64
		want     uint64
	}{
		{"fixed passes value through", SlippageConfig{Type: SlippageFixed, Value: 950}, 1000, 950},
		{"percent floors the tolerance", SlippageConfig{Type: SlippagePercent, Value: 1.0}, 1000, 990},
		{"percent over 100 clamps to zero", SlippageConfig{Type: SlippagePercent, Value: 150}, 1000, 0},
		{"none still rejects zero output", SlippageConfig{Type: SlippageNone}, 1000, 1},
		{"unknown policy behaves like none", SlippageConfig{Type: "bogus"}, 1000, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.MinAmountOut(tt.expected))
		})
	}
}

func TestMaxAmountIn(t *testing.T) {
	assert.Equal(t, uint64(1050), SlippageConfig{Type: SlippageFixed, Value: 1050}.MaxAmountIn(1000))
	assert.Equal(t, uint64(1010), SlippageConfig{Type: SlippagePercent, Value: 1.0}.MaxAmountIn(1000))
	assert.Equal(t, uint64(math.MaxUint64), SlippageConfig{Type: SlippageNone}.MaxAmountIn(1000))
}
