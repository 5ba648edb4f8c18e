// ====================================
// File: cmd/tui/main.go
// ====================================

// tui opens the interactive pool playground over a freshly bootstrapped
// in-memory venue.
package main

import (
	"context"
	"flag"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/solana-amm/internal/amm/curve"
	"github.com/rovshanmuradov/solana-amm/internal/config"
	"github.com/rovshanmuradov/solana-amm/internal/sim"
	"github.com/rovshanmuradov/solana-amm/internal/tui"
	"github.com/rovshanmuradov/solana-amm/internal/utils/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Logging goes to the configured file only; stdout belongs to the TUI.
	logCfg := cfg.Log
	if logCfg.File == "" {
		logCfg.File = "ammsim-tui.log"
	}
	logCfg.Quiet = true
	appLogger, err := logger.New(&logCfg)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() {
		_ = appLogger.Sync()
	}()

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
		Logger:        appLogger,
	})
	if err != nil {
		log.Fatalf("Failed to build session: %v", err)
	}
	if err := session.Bootstrap(context.Background()); err != nil {
		log.Fatalf("Failed to bootstrap venue: %v", err)
	}

	model, err := tui.New(session)
	if err != nil {
		log.Fatalf("Failed to build TUI: %v", err)
	}

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Fatalf("TUI failed: %v", err)
	}
}
