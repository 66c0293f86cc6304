package repositories

import (
	"context"
	"time"

	"github.com/smartmoney/wallet-tracker/internal/domain/entities"
)

// WalletStatsResult holds aggregate statistics over the wallet collection.
// AverageWinrate is computed over wallets with a non-null winrate only and is
// rounded to 3 decimal places; LatestScrape is nil for an empty collection.
type WalletStatsResult struct {
	TotalWallets   int64
	AverageWinrate float64
	LatestScrape   *time.Time
}

// WalletRepository defines the interface for wallet data operations
type WalletRepository interface {
	// EnsureSchema idempotently creates the wallets table, the unique
	// constraint on wallet_address, and the supporting indexes
	EnsureSchema(ctx context.Context) error

	// Upsert atomically replaces-or-inserts a wallet keyed by address,
	// stamping a scrape timestamp when missing. It reports whether a new
	// row was inserted (false means an existing row was replaced).
	Upsert(ctx context.Context, wallet *entities.WalletRecord) (bool, error)

	// UpsertBatch applies Upsert to each wallet independently; a failed
	// record is counted and does not abort the rest of the batch
	UpsertBatch(ctx context.Context, wallets []entities.WalletRecord) entities.RunStats

	// GetByAddress retrieves a wallet by its address, (nil, nil) on miss
	GetByAddress(ctx context.Context, address string) (*entities.WalletRecord, error)

	// GetByFilter retrieves wallets matching the filter, most recently
	// scraped first
	GetByFilter(ctx context.Context, filter entities.WalletFilter) ([]entities.WalletRecord, error)

	// Stats returns aggregate statistics over the whole collection
	Stats(ctx context.Context) (*WalletStatsResult, error)
}
