package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/smartmoney/wallet-tracker/internal/domain/entities"
	"github.com/smartmoney/wallet-tracker/internal/domain/repositories"
	"github.com/smartmoney/wallet-tracker/internal/infrastructure/cache"
)

const (
	minQueryLimit = 1
	maxQueryLimit = 1000
)

// timestampFormats are the accepted ISO-8601 shapes for date filters. RFC3339
// covers the trailing "Z" designator.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// WalletService provides business logic for wallet queries
type WalletService struct {
	walletRepo repositories.WalletRepository
	cache      *cache.RedisCache
	logger     *zap.Logger
}

// NewWalletService creates a new wallet service
func NewWalletService(
	walletRepo repositories.WalletRepository,
	cache *cache.RedisCache,
	logger *zap.Logger,
) *WalletService {
	return &WalletService{
		walletRepo: walletRepo,
		cache:      cache,
		logger:     logger,
	}
}

// WalletQueryParams holds caller-supplied filter parameters before validation.
// Dates are kept as raw strings so the response can echo them back verbatim.
type WalletQueryParams struct {
	MinWinrate *float64
	Limit      *int
	StartDate  string
	EndDate    string
}

// WalletDTO is the API representation of a wallet
type WalletDTO struct {
	WalletAddress   string          `json:"wallet_address"`
	RealizedProfit  float64         `json:"realized_profit"`
	Winrate7D       *float64        `json:"winrate_7d"`
	Buy             int64           `json:"buy"`
	Sell            int64           `json:"sell"`
	LastActive      int64           `json:"last_active"`
	ScrapeTimestamp string          `json:"scrape_timestamp"`
	Risk            json.RawMessage `json:"risk"`
	PnL7D           float64         `json:"pnl_7d"`
	PnL30D          float64         `json:"pnl_30d"`
}

// QueryFilters echoes the caller's filter values back in the response
type QueryFilters struct {
	MinWinrate *float64 `json:"min_winrate"`
	Limit      *int     `json:"limit"`
	StartDate  *string  `json:"start_date"`
	EndDate    *string  `json:"end_date"`
}

// WalletListResponse is the API response for wallet list queries
type WalletListResponse struct {
	Wallets []WalletDTO  `json:"wallets"`
	Count   int          `json:"count"`
	Filters QueryFilters `json:"filters"`
}

// WalletResponse is the API response for single wallet lookups
type WalletResponse struct {
	Wallet WalletDTO `json:"wallet"`
}

// GetWallets validates the filter parameters, queries storage, and projects
// the results. Invalid parameters return an InputError before storage is touched.
func (s *WalletService) GetWallets(ctx context.Context, params WalletQueryParams) (*WalletListResponse, error) {
	filter, err := buildWalletFilter(params)
	if err != nil {
		return nil, err
	}

	cacheKey := listCacheKey(params)
	var cached WalletListResponse
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return &cached, nil
		}
	}

	wallets, err := s.walletRepo.GetByFilter(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallets: %w", err)
	}

	dtos := make([]WalletDTO, len(wallets))
	for i := range wallets {
		dtos[i] = walletToDTO(&wallets[i])
	}

	response := &WalletListResponse{
		Wallets: dtos,
		Count:   len(dtos),
		Filters: QueryFilters{
			MinWinrate: params.MinWinrate,
			Limit:      params.Limit,
			StartDate:  optionalString(params.StartDate),
			EndDate:    optionalString(params.EndDate),
		},
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, response); err != nil {
			s.logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	return response, nil
}

// GetWalletByAddress retrieves a single wallet. A miss returns ErrNotFound.
func (s *WalletService) GetWalletByAddress(ctx context.Context, address string) (*WalletResponse, error) {
	wallet, err := s.walletRepo.GetByAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, ErrNotFound
	}

	return &WalletResponse{Wallet: walletToDTO(wallet)}, nil
}

// buildWalletFilter validates the caller's parameters and translates them into
// a storage filter
func buildWalletFilter(params WalletQueryParams) (entities.WalletFilter, error) {
	var filter entities.WalletFilter

	if params.Limit != nil {
		if *params.Limit < minQueryLimit || *params.Limit > maxQueryLimit {
			return filter, invalidInput("limit must be between %d and %d", minQueryLimit, maxQueryLimit)
		}
		filter.Limit = params.Limit
	}

	filter.MinWinrate = params.MinWinrate

	if params.StartDate != "" {
		t, err := parseTimestamp(params.StartDate)
		if err != nil {
			return filter, invalidInput("invalid start_date format, use ISO format")
		}
		filter.StartTime = &t
	}

	if params.EndDate != "" {
		t, err := parseTimestamp(params.EndDate)
		if err != nil {
			return filter, invalidInput("invalid end_date format, use ISO format")
		}
		filter.EndTime = &t
	}

	return filter, nil
}

// parseTimestamp parses an ISO-8601 timestamp string
func parseTimestamp(s string) (time.Time, error) {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse timestamp: %s", s)
}

// walletToDTO projects a stored wallet into its API view
func walletToDTO(w *entities.WalletRecord) WalletDTO {
	risk := w.Risk
	if len(risk) == 0 {
		risk = json.RawMessage(`{}`)
	}

	return WalletDTO{
		WalletAddress:   w.WalletAddress,
		RealizedProfit:  w.RealizedProfit,
		Winrate7D:       w.Winrate7D,
		Buy:             w.Buy,
		Sell:            w.Sell,
		LastActive:      w.LastActive,
		ScrapeTimestamp: w.ScrapeTimestamp.UTC().Format(time.RFC3339),
		Risk:            risk,
		PnL7D:           w.PnL7D,
		PnL30D:          w.PnL30D,
	}
}

func listCacheKey(params WalletQueryParams) string {
	minWinrate := "-"
	if params.MinWinrate != nil {
		minWinrate = fmt.Sprintf("%g", *params.MinWinrate)
	}
	limit := "-"
	if params.Limit != nil {
		limit = fmt.Sprintf("%d", *params.Limit)
	}
	return fmt.Sprintf("wallets:list:%s:%s:%s:%s", minWinrate, limit, params.StartDate, params.EndDate)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
