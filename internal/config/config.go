// =================================
// File: internal/config/config.go
// =================================

// Package config loads the simulator configuration: pool bootstrap values,
// the fee schedule the governance record is written with, and the scenario
// the headless runner plays through.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"

	"github.com/rovshanmuradov/solana-amm/internal/types"
	"github.com/rovshanmuradov/solana-amm/internal/utils/logger"
)

type Config struct {
	Log      logger.Config  `mapstructure:"log"`
	Pool     PoolConfig     `mapstructure:"pool"`
	Fees     FeeConfig      `mapstructure:"fees"`
	Scenario ScenarioConfig `mapstructure:"scenario"`
}

// PoolConfig seeds the simulated venue: two reserve balances, the user's
// starting funds and the genesis liquidity-token supply.
type PoolConfig struct {
	ReserveA      uint64 `mapstructure:"reserve_a"`
	ReserveB      uint64 `mapstructure:"reserve_b"`
	UserFundsA    uint64 `mapstructure:"user_funds_a"`
	UserFundsB    uint64 `mapstructure:"user_funds_b"`
	InitialSupply uint64 `mapstructure:"initial_supply"`
	// NativeA makes side A trade wrapped SOL, which routes the protocol fee
	// through the native lamport path.
	NativeA bool `mapstructure:"native_a"`
}

// FeeConfig is the fee schedule written into the governance record. It must
// clear the compiled-in floor (20/10 over 10000).
type FeeConfig struct {
	FixedFeeNumerator  uint64 `mapstructure:"fixed_fee_numerator"`
	ReturnFeeNumerator uint64 `mapstructure:"return_fee_numerator"`
	FeeDenominator     uint64 `mapstructure:"fee_denominator"`
}

// ScenarioConfig drives the headless runner.
type ScenarioConfig struct {
	SwapAmount        uint64               `mapstructure:"swap_amount"`
	Slippage          types.SlippageConfig `mapstructure:"slippage"`
	DepositPoolTokens uint64               `mapstructure:"deposit_pool_tokens"`
	LadderStart       uint64               `mapstructure:"ladder_start"`
	LadderSteps       int                  `mapstructure:"ladder_steps"`
}

const (
	DefaultReserve     = 1_000_000
	DefaultUserFunds   = 1_000_000
	DefaultSwapAmount  = 1_000
	DefaultLadderSteps = 8
	// DefaultDepositPoolTokens is 1% of the default genesis supply.
	DefaultDepositPoolTokens = 10_000_000
)

// Load reads the yaml file at path (optional), applies SOLANA_AMM_* overrides
// and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"log.level":                    "info",
		"log.format":                   "console",
		"pool.reserve_a":               DefaultReserve,
		"pool.reserve_b":               DefaultReserve,
		"pool.user_funds_a":            DefaultUserFunds,
		"pool.user_funds_b":            DefaultUserFunds,
		"fees.fixed_fee_numerator":     20,
		"fees.return_fee_numerator":    10,
		"fees.fee_denominator":         10000,
		"scenario.swap_amount":         DefaultSwapAmount,
		"scenario.deposit_pool_tokens": DefaultDepositPoolTokens,
		"scenario.slippage.type":       string(types.SlippagePercent),
		"scenario.slippage.value":      1.0,
		"scenario.ladder_start":        DefaultSwapAmount,
		"scenario.ladder_steps":        DefaultLadderSteps,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("SOLANA_AMM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, cfg.Validate()
}

// Validate rejects configurations the processor would refuse anyway, so the
// failure surfaces at startup instead of mid-scenario.
func (c *Config) Validate() error {
	if c.Pool.ReserveA == 0 || c.Pool.ReserveB == 0 {
		return errors.New("pool reserves must both be positive")
	}
	if c.Fees.FeeDenominator == 0 {
		return errors.New("fee denominator must be positive")
	}
	if c.Fees.FixedFeeNumerator >= c.Fees.FeeDenominator ||
		c.Fees.ReturnFeeNumerator >= c.Fees.FeeDenominator {
		return errors.New("fee numerators must be smaller than the denominator")
	}
	if c.Scenario.SwapAmount == 0 {
		return errors.New("scenario swap_amount must be positive")
	}
	if c.Scenario.LadderSteps < 0 {
		return errors.New("scenario ladder_steps must not be negative")
	}
	switch c.Scenario.Slippage.Type {
	case types.SlippageFixed, types.SlippagePercent, types.SlippageNone:
	default:
		return errors.New("unknown slippage type")
	}
	return nil
}
