package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/smartmoney/wallet-tracker/internal/application/services"
	"github.com/smartmoney/wallet-tracker/internal/config"
	"github.com/smartmoney/wallet-tracker/internal/infrastructure/database"
	"github.com/smartmoney/wallet-tracker/internal/infrastructure/gmgn"
)

// One-shot ingestion run: fetch trending wallets, filter, enrich, store.
// Intended to be invoked by an external scheduler (cron); the exit code
// reports the run outcome.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log.Level)
	defer logger.Sync()

	logger.Info("Starting wallet scraper",
		zap.String("timeframe", cfg.Scraper.Timeframe),
		zap.Strings("wallet_tags", cfg.Scraper.WalletTags),
		zap.Float64("min_winrate", cfg.Scraper.MinWinrate),
	)

	// Connect to database
	db, err := database.NewPostgresDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	walletRepo := database.NewWalletRepo(db.DB(), logger)
	if err := walletRepo.EnsureSchema(context.Background()); err != nil {
		logger.Fatal("Failed to ensure database schema", zap.Error(err))
	}

	fetcher := gmgn.NewClient(cfg.Scraper, logger)
	scraper := services.NewScraperService(fetcher, walletRepo, cfg.Scraper, logger)

	if !scraper.RunScrape(context.Background()) {
		logger.Error("Scrape run completed with errors")
		db.Close()
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("Scrape run completed successfully")
}

func setupLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := config.Build()
	return logger
}
