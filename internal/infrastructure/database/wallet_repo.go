package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/smartmoney/wallet-tracker/internal/domain/entities"
	"github.com/smartmoney/wallet-tracker/internal/domain/repositories"
)

// Ensure WalletRepo implements WalletRepository
var _ repositories.WalletRepository = (*WalletRepo)(nil)

// WalletRepo implements WalletRepository using PostgreSQL
type WalletRepo struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewWalletRepo creates a new wallet repository
func NewWalletRepo(db *sqlx.DB, logger *zap.Logger) *WalletRepo {
	return &WalletRepo{db: db, logger: logger}
}

// schemaStatements is idempotent DDL: the unique key on wallet_address plus the
// indexes backing the time-range and winrate queries. Safe to run on every startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS wallets (
		wallet_address   TEXT PRIMARY KEY,
		realized_profit  DOUBLE PRECISION NOT NULL DEFAULT 0,
		winrate_7d       DOUBLE PRECISION,
		pnl_7d           DOUBLE PRECISION NOT NULL DEFAULT 0,
		pnl_30d          DOUBLE PRECISION NOT NULL DEFAULT 0,
		buy              BIGINT NOT NULL DEFAULT 0,
		sell             BIGINT NOT NULL DEFAULT 0,
		last_active      BIGINT NOT NULL DEFAULT 0,
		risk             JSONB NOT NULL DEFAULT '{}',
		scrape_timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_wallets_scrape_timestamp ON wallets (scrape_timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_wallets_winrate_7d ON wallets (winrate_7d)`,
}

// EnsureSchema creates the wallets table and indexes if they do not exist
func (r *WalletRepo) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// Upsert replaces-or-inserts a wallet keyed by address. The prior row is
// replaced in full, not merged; the latest scrape is always the source of
// truth. Reports true when a new row was inserted.
func (r *WalletRepo) Upsert(ctx context.Context, wallet *entities.WalletRecord) (bool, error) {
	if wallet.ScrapeTimestamp.IsZero() {
		wallet.ScrapeTimestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO wallets (wallet_address, realized_profit, winrate_7d, pnl_7d, pnl_30d,
							 buy, sell, last_active, risk, scrape_timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, '{}'::jsonb), $10)
		ON CONFLICT (wallet_address) DO UPDATE SET
			realized_profit  = EXCLUDED.realized_profit,
			winrate_7d       = EXCLUDED.winrate_7d,
			pnl_7d           = EXCLUDED.pnl_7d,
			pnl_30d          = EXCLUDED.pnl_30d,
			buy              = EXCLUDED.buy,
			sell             = EXCLUDED.sell,
			last_active      = EXCLUDED.last_active,
			risk             = EXCLUDED.risk,
			scrape_timestamp = EXCLUDED.scrape_timestamp
		RETURNING (xmax = 0) AS inserted
	`

	var inserted bool
	err := r.db.GetContext(ctx, &inserted, query,
		wallet.WalletAddress,
		wallet.RealizedProfit,
		wallet.Winrate7D,
		wallet.PnL7D,
		wallet.PnL30D,
		wallet.Buy,
		wallet.Sell,
		wallet.LastActive,
		[]byte(wallet.Risk),
		wallet.ScrapeTimestamp,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert wallet: %w", err)
	}

	return inserted, nil
}

// UpsertBatch upserts each wallet independently. A failed record increments
// the error count and is logged; it never aborts the remainder of the batch.
func (r *WalletRepo) UpsertBatch(ctx context.Context, wallets []entities.WalletRecord) entities.RunStats {
	var stats entities.RunStats

	for i := range wallets {
		inserted, err := r.Upsert(ctx, &wallets[i])
		if err != nil {
			r.logger.Error("Failed to upsert wallet",
				zap.String("wallet_address", wallets[i].WalletAddress),
				zap.Error(err),
			)
			stats.Errors++
			continue
		}
		if inserted {
			stats.Inserted++
		} else {
			stats.Updated++
		}
	}

	return stats
}

// GetByAddress retrieves a wallet by its address. A miss is (nil, nil), not an error.
func (r *WalletRepo) GetByAddress(ctx context.Context, address string) (*entities.WalletRecord, error) {
	var wallet entities.WalletRecord
	query := `SELECT * FROM wallets WHERE wallet_address = $1`

	if err := r.db.GetContext(ctx, &wallet, query, address); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &wallet, nil
}

// GetByFilter retrieves wallets matching the filter, most recently scraped first
func (r *WalletRepo) GetByFilter(ctx context.Context, filter entities.WalletFilter) ([]entities.WalletRecord, error) {
	query, args := buildFilterQuery(filter)

	wallets := make([]entities.WalletRecord, 0)
	if err := r.db.SelectContext(ctx, &wallets, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get wallets: %w", err)
	}

	return wallets, nil
}

// buildFilterQuery builds the SQL query for filtering wallets. The winrate
// condition uses a plain comparison, so NULL winrates never match any threshold.
func buildFilterQuery(filter entities.WalletFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argIdx := 1

	if filter.MinWinrate != nil {
		conditions = append(conditions, fmt.Sprintf("winrate_7d >= $%d", argIdx))
		args = append(args, *filter.MinWinrate)
		argIdx++
	}

	if filter.StartTime != nil {
		conditions = append(conditions, fmt.Sprintf("scrape_timestamp >= $%d", argIdx))
		args = append(args, *filter.StartTime)
		argIdx++
	}

	if filter.EndTime != nil {
		conditions = append(conditions, fmt.Sprintf("scrape_timestamp <= $%d", argIdx))
		args = append(args, *filter.EndTime)
		argIdx++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	limitClause := ""
	if filter.Limit != nil {
		limitClause = fmt.Sprintf("LIMIT $%d", argIdx)
		args = append(args, *filter.Limit)
	}

	query := fmt.Sprintf(`
		SELECT wallet_address, realized_profit, winrate_7d, pnl_7d, pnl_30d,
			   buy, sell, last_active, risk, scrape_timestamp
		FROM wallets
		%s
		ORDER BY scrape_timestamp DESC
		%s
	`, whereClause, limitClause)

	return query, args
}

// statsRow holds the result of the stats query
type statsRow struct {
	TotalWallets   int64      `db:"total_wallets"`
	AverageWinrate float64    `db:"average_winrate"`
	LatestScrape   *time.Time `db:"latest_scrape"`
}

// Stats returns aggregate statistics over the wallet collection. The average
// skips NULL winrates (SQL AVG semantics) and is rounded to 3 decimal places;
// an empty collection yields average 0 and a nil latest-scrape timestamp.
func (r *WalletRepo) Stats(ctx context.Context) (*repositories.WalletStatsResult, error) {
	query := `
		SELECT
			COUNT(*) AS total_wallets,
			COALESCE(ROUND(AVG(winrate_7d)::numeric, 3), 0)::DOUBLE PRECISION AS average_winrate,
			MAX(scrape_timestamp) AS latest_scrape
		FROM wallets
	`

	var row statsRow
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return nil, fmt.Errorf("failed to get wallet stats: %w", err)
	}

	return &repositories.WalletStatsResult{
		TotalWallets:   row.TotalWallets,
		AverageWinrate: row.AverageWinrate,
		LatestScrape:   row.LatestScrape,
	}, nil
}
