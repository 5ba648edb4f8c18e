// ====================================
// File: cmd/ammsim/main.go
// ====================================

// ammsim plays a configured scenario against a fresh in-memory pool: it
// bootstraps governance and the venue, prints a quote ladder, then runs a
// swap and a deposit/withdraw round trip, logging every balance movement.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-amm/internal/amm/curve"
	"github.com/rovshanmuradov/solana-amm/internal/config"
	"github.com/rovshanmuradov/solana-amm/internal/sim"
	"github.com/rovshanmuradov/solana-amm/internal/utils/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() {
		_ = appLogger.Sync()
	}()

	if err := run(context.Background(), cfg, appLogger); err != nil {
		appLogger.Error("Scenario failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	session, err := sim.NewSession(sim.SessionOptions{
		Fees: curve.Fees{
			FixedFeeNumerator:  cfg.Fees.FixedFeeNumerator,
			ReturnFeeNumerator: cfg.Fees.ReturnFeeNumerator,
			FeeDenominator:     cfg.Fees.FeeDenominator,
		},
		InitialSupply: cfg.Pool.InitialSupply,
		ReserveA:      cfg.Pool.ReserveA,
		ReserveB:      cfg.Pool.ReserveB,
		UserFundsA:    cfg.Pool.UserFundsA,
		UserFundsB:    cfg.Pool.UserFundsB,
		NativeA:       cfg.Pool.NativeA,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	if err := session.Bootstrap(ctx); err != nil {
		return err
	}

	if cfg.Scenario.LadderSteps > 0 {
		quotes, err := session.QuoteLadder(ctx, true,
			sim.Ladder(cfg.Scenario.LadderStart, cfg.Scenario.LadderSteps))
		if err != nil {
			return err
		}
		for _, q := range quotes {
			logger.Info("quote",
				zap.Uint64("amount_in", q.AmountIn),
				zap.Uint64("amount_out", q.AmountOut),
				zap.Uint64("owner_fee", q.OwnerFee),
				zap.Float64("effective_price", q.EffectivePrice))
		}
	}

	quote, err := session.Quote(ctx, true, cfg.Scenario.SwapAmount)
	if err != nil {
		return err
	}
	minOut := cfg.Scenario.Slippage.MinAmountOut(quote.AmountOut)
	swap, err := session.Swap(ctx, true, cfg.Scenario.SwapAmount, minOut)
	if err != nil {
		return err
	}
	logger.Info("swap executed",
		zap.Uint64("amount_in", cfg.Scenario.SwapAmount),
		zap.Uint64("min_amount_out", minOut),
		zap.Uint64("amount_out", swap.After.UserB-swap.Before.UserB),
		zap.Uint64("owner_fee", quote.OwnerFee))

	if cfg.Scenario.DepositPoolTokens > 0 {
		deposit, err := session.DepositAll(ctx, cfg.Scenario.DepositPoolTokens,
			cfg.Pool.UserFundsA, cfg.Pool.UserFundsB)
		if err != nil {
			return err
		}
		logger.Info("liquidity deposited",
			zap.Uint64("pool_tokens", cfg.Scenario.DepositPoolTokens),
			zap.Uint64("token_a_in", deposit.Before.UserA-deposit.After.UserA),
			zap.Uint64("token_b_in", deposit.Before.UserB-deposit.After.UserB))

		withdraw, err := session.WithdrawAll(ctx, cfg.Scenario.DepositPoolTokens, 0, 0)
		if err != nil {
			return err
		}
		logger.Info("liquidity withdrawn",
			zap.Uint64("pool_tokens", cfg.Scenario.DepositPoolTokens),
			zap.Uint64("token_a_out", withdraw.After.UserA-withdraw.Before.UserA),
			zap.Uint64("token_b_out", withdraw.After.UserB-withdraw.Before.UserB))
	}

	final, err := session.Balances(ctx)
	if err != nil {
		return err
	}
	logger.Info("scenario complete",
		zap.Uint64("pool_a", final.PoolA),
		zap.Uint64("pool_b", final.PoolB),
		zap.Uint64("lp_supply", final.LPSupply),
		zap.Uint64("fee_a", final.FeeA),
		zap.Uint64("fee_b", final.FeeB),
		zap.Uint64("fee_lamports", final.FeeLamports))
	return nil
}
