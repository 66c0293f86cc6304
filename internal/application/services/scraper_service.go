package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/smartmoney/wallet-tracker/internal/config"
	"github.com/smartmoney/wallet-tracker/internal/domain/entities"
	"github.com/smartmoney/wallet-tracker/internal/domain/repositories"
)

// TrendingFetcher fetches raw trending-wallet records from the external
// analytics source
type TrendingFetcher interface {
	GetTrendingWallets(ctx context.Context, timeframe, walletTag string) ([]entities.RawWallet, error)
}

// ScraperService orchestrates one ingestion run: fetch, filter by winrate,
// enrich, store. Scheduling of runs is the caller's concern.
type ScraperService struct {
	fetcher    TrendingFetcher
	walletRepo repositories.WalletRepository
	cfg        config.ScraperConfig
	logger     *zap.Logger
}

// NewScraperService creates a new scraper service
func NewScraperService(
	fetcher TrendingFetcher,
	walletRepo repositories.WalletRepository,
	cfg config.ScraperConfig,
	logger *zap.Logger,
) *ScraperService {
	return &ScraperService{
		fetcher:    fetcher,
		walletRepo: walletRepo,
		cfg:        cfg,
		logger:     logger,
	}
}

// RunScrape executes the full pipeline once and reports success. Zero fetched
// records is a failed run; zero records surviving the winrate filter is a
// normal run with nothing to store. Record-level failures are absorbed into
// the run stats: the run succeeds only when every surviving record was stored.
func (s *ScraperService) RunScrape(ctx context.Context) bool {
	start := time.Now()
	s.logger.Info("Starting wallet scrape run",
		zap.String("timeframe", s.cfg.Timeframe),
		zap.Strings("wallet_tags", s.cfg.WalletTags),
	)

	// Stage 1: fetch
	raw, err := s.fetchTrendingWallets(ctx)
	if err != nil {
		s.logger.Error("Fetch stage failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return false
	}
	if len(raw) == 0 {
		s.logger.Error("No wallets fetched from API", zap.Duration("elapsed", time.Since(start)))
		return false
	}
	s.logger.Info("Fetched trending wallets", zap.Int("count", len(raw)))

	// Stage 2: filter by winrate
	filtered := entities.FilterByWinrate(raw, s.cfg.MinWinrate)
	s.logger.Info("Filtered wallets by winrate",
		zap.Int("count", len(filtered)),
		zap.Int("fetched", len(raw)),
		zap.Float64("min_winrate", s.cfg.MinWinrate),
	)
	if len(filtered) == 0 {
		// No qualifying wallets this cycle is an expected steady state
		s.logger.Info("No wallets passed winrate filter", zap.Duration("elapsed", time.Since(start)))
		return true
	}

	// Stage 3: enrich
	enriched := s.enrichWallets(filtered)
	if len(enriched) == 0 {
		s.logger.Error("No wallets successfully enriched",
			zap.Int("filtered", len(filtered)),
			zap.Duration("elapsed", time.Since(start)),
		)
		return false
	}
	s.logger.Info("Enriched wallets", zap.Int("count", len(enriched)))

	// Stage 4: store
	stats := s.walletRepo.UpsertBatch(ctx, enriched)

	s.logger.Info("Scrape run completed",
		zap.Int("processed", len(enriched)),
		zap.Int("inserted", stats.Inserted),
		zap.Int("updated", stats.Updated),
		zap.Int("errors", stats.Errors),
		zap.Duration("elapsed", time.Since(start)),
	)

	return stats.Errors == 0
}

// fetchTrendingWallets fetches every configured wallet tag concurrently and
// merges the results, preserving tag order
func (s *ScraperService) fetchTrendingWallets(ctx context.Context) ([]entities.RawWallet, error) {
	results := make([][]entities.RawWallet, len(s.cfg.WalletTags))

	g, gctx := errgroup.WithContext(ctx)
	for i, tag := range s.cfg.WalletTags {
		i, tag := i, tag
		g.Go(func() error {
			wallets, err := s.fetcher.GetTrendingWallets(gctx, s.cfg.Timeframe, tag)
			if err != nil {
				return err
			}
			results[i] = wallets
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []entities.RawWallet
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged, nil
}

// enrichWallets shapes the filtered records for storage, logging and skipping
// any record that fails validation
func (s *ScraperService) enrichWallets(wallets []entities.RawWallet) []entities.WalletRecord {
	enriched := make([]entities.WalletRecord, 0, len(wallets))
	now := time.Now().UTC()

	for i := range wallets {
		record, ok := wallets[i].Enrich(now)
		if !ok {
			s.logger.Warn("Skipped invalid wallet",
				zap.String("wallet_address", wallets[i].WalletAddress),
			)
			continue
		}
		enriched = append(enriched, *record)
	}

	return enriched
}
