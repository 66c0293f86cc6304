package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/smartmoney/wallet-tracker/internal/domain/repositories"
	"github.com/smartmoney/wallet-tracker/internal/infrastructure/cache"
)

// statsCacheKey is the single cache entry for collection statistics
const statsCacheKey = "wallets:stats"

// StatsService provides business logic for collection statistics
type StatsService struct {
	walletRepo repositories.WalletRepository
	cache      *cache.RedisCache
	logger     *zap.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(
	walletRepo repositories.WalletRepository,
	cache *cache.RedisCache,
	logger *zap.Logger,
) *StatsService {
	return &StatsService{
		walletRepo: walletRepo,
		cache:      cache,
		logger:     logger,
	}
}

// StatisticsDTO is the API representation of collection statistics
type StatisticsDTO struct {
	TotalWallets   int64   `json:"total_wallets"`
	AverageWinrate float64 `json:"average_winrate"`
	LatestScrape   *string `json:"latest_scrape"`
}

// StatsResponse is the API response for stats queries
type StatsResponse struct {
	Statistics StatisticsDTO `json:"statistics"`
	Timestamp  string        `json:"timestamp"`
}

// GetStats retrieves aggregate statistics over the wallet collection
func (s *StatsService) GetStats(ctx context.Context) (*StatsResponse, error) {
	var cached StatsResponse
	if s.cache != nil {
		if err := s.cache.Get(ctx, statsCacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", statsCacheKey))
			return &cached, nil
		}
	}

	stats, err := s.walletRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet stats: %w", err)
	}

	response := &StatsResponse{
		Statistics: StatisticsDTO{
			TotalWallets:   stats.TotalWallets,
			AverageWinrate: stats.AverageWinrate,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if stats.LatestScrape != nil {
		latest := stats.LatestScrape.UTC().Format(time.RFC3339)
		response.Statistics.LatestScrape = &latest
	}

	// Stats change on every scrape run; keep the cache window short
	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, statsCacheKey, response, 60*time.Second); err != nil {
			s.logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	return response, nil
}
