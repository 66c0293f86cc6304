package testutil

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/smartmoney/wallet-tracker/internal/domain/entities"
	"github.com/smartmoney/wallet-tracker/internal/domain/repositories"
)

type MockCall struct {
	Method string
	Args   []interface{}
}

// MockWalletRepository is an in-memory mock implementation of WalletRepository.
// Default behavior mirrors the real store: full-document replace on upsert,
// NULL winrates excluded from filters and averages, newest-first ordering.
type MockWalletRepository struct {
	mu      sync.RWMutex
	wallets map[string]entities.WalletRecord

	// Function hooks for custom behavior
	EnsureSchemaFunc func(ctx context.Context) error
	UpsertFunc       func(ctx context.Context, wallet *entities.WalletRecord) (bool, error)
	UpsertBatchFunc  func(ctx context.Context, wallets []entities.WalletRecord) entities.RunStats
	GetByAddressFunc func(ctx context.Context, address string) (*entities.WalletRecord, error)
	GetByFilterFunc  func(ctx context.Context, filter entities.WalletFilter) ([]entities.WalletRecord, error)
	StatsFunc        func(ctx context.Context) (*repositories.WalletStatsResult, error)

	// Call tracking
	Calls []MockCall
}

func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{
		wallets: make(map[string]entities.WalletRecord),
		Calls:   make([]MockCall, 0),
	}
}

func (m *MockWalletRepository) EnsureSchema(ctx context.Context) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "EnsureSchema", Args: nil})
	m.mu.Unlock()

	if m.EnsureSchemaFunc != nil {
		return m.EnsureSchemaFunc(ctx)
	}
	return nil
}

func (m *MockWalletRepository) Upsert(ctx context.Context, wallet *entities.WalletRecord) (bool, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Upsert", Args: []interface{}{wallet.WalletAddress}})
	m.mu.Unlock()

	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, wallet)
	}

	if wallet.ScrapeTimestamp.IsZero() {
		wallet.ScrapeTimestamp = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, exists := m.wallets[wallet.WalletAddress]
	m.wallets[wallet.WalletAddress] = *wallet
	return !exists, nil
}

func (m *MockWalletRepository) UpsertBatch(ctx context.Context, wallets []entities.WalletRecord) entities.RunStats {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "UpsertBatch", Args: []interface{}{len(wallets)}})
	m.mu.Unlock()

	if m.UpsertBatchFunc != nil {
		return m.UpsertBatchFunc(ctx, wallets)
	}

	var stats entities.RunStats
	for i := range wallets {
		inserted, err := m.Upsert(ctx, &wallets[i])
		if err != nil {
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

func (m *MockWalletRepository) GetByAddress(ctx context.Context, address string) (*entities.WalletRecord, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetByAddress", Args: []interface{}{address}})
	m.mu.Unlock()

	if m.GetByAddressFunc != nil {
		return m.GetByAddressFunc(ctx, address)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if wallet, ok := m.wallets[address]; ok {
		return &wallet, nil
	}
	return nil, nil
}

func (m *MockWalletRepository) GetByFilter(ctx context.Context, filter entities.WalletFilter) ([]entities.WalletRecord, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetByFilter", Args: []interface{}{filter}})
	m.mu.Unlock()

	if m.GetByFilterFunc != nil {
		return m.GetByFilterFunc(ctx, filter)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]entities.WalletRecord, 0)
	for _, w := range m.wallets {
		if filter.MinWinrate != nil && (w.Winrate7D == nil || *w.Winrate7D < *filter.MinWinrate) {
			continue
		}
		if filter.StartTime != nil && w.ScrapeTimestamp.Before(*filter.StartTime) {
			continue
		}
		if filter.EndTime != nil && w.ScrapeTimestamp.After(*filter.EndTime) {
			continue
		}
		result = append(result, w)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ScrapeTimestamp.After(result[j].ScrapeTimestamp)
	})

	if filter.Limit != nil && len(result) > *filter.Limit {
		result = result[:*filter.Limit]
	}

	return result, nil
}

func (m *MockWalletRepository) Stats(ctx context.Context) (*repositories.WalletStatsResult, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Stats", Args: nil})
	m.mu.Unlock()

	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := &repositories.WalletStatsResult{
		TotalWallets: int64(len(m.wallets)),
	}

	var sum float64
	var rated int
	for _, w := range m.wallets {
		if w.Winrate7D != nil {
			sum += *w.Winrate7D
			rated++
		}
		if result.LatestScrape == nil || w.ScrapeTimestamp.After(*result.LatestScrape) {
			ts := w.ScrapeTimestamp
			result.LatestScrape = &ts
		}
	}
	if rated > 0 {
		result.AverageWinrate = math.Round(sum/float64(rated)*1000) / 1000
	}

	return result, nil
}

// AddWallets seeds the mock store
func (m *MockWalletRepository) AddWallets(wallets ...entities.WalletRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range wallets {
		m.wallets[w.WalletAddress] = w
	}
}

// Count returns the number of stored wallets
func (m *MockWalletRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.wallets)
}

// CallsTo returns the number of recorded calls to a method
func (m *MockWalletRepository) CallsTo(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Reset clears all stored data and calls
func (m *MockWalletRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets = make(map[string]entities.WalletRecord)
	m.Calls = make([]MockCall, 0)
}

// MockTrendingFetcher is a mock trending-wallets source
type MockTrendingFetcher struct {
	mu sync.Mutex

	// Wallets is returned for every tag unless a hook is set
	Wallets []entities.RawWallet
	Err     error

	GetTrendingWalletsFunc func(ctx context.Context, timeframe, walletTag string) ([]entities.RawWallet, error)

	Calls []MockCall
}

func NewMockTrendingFetcher(wallets ...entities.RawWallet) *MockTrendingFetcher {
	return &MockTrendingFetcher{
		Wallets: wallets,
		Calls:   make([]MockCall, 0),
	}
}

func (m *MockTrendingFetcher) GetTrendingWallets(ctx context.Context, timeframe, walletTag string) ([]entities.RawWallet, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetTrendingWallets", Args: []interface{}{timeframe, walletTag}})
	m.mu.Unlock()

	if m.GetTrendingWalletsFunc != nil {
		return m.GetTrendingWalletsFunc(ctx, timeframe, walletTag)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Wallets, nil
}

// MockHealthChecker is a mock implementation of HealthChecker
type MockHealthChecker struct {
	mu sync.RWMutex

	Error error
	Calls []MockCall
}

func NewMockHealthChecker(healthy bool) *MockHealthChecker {
	var err error
	if !healthy {
		err = errors.New("health check failed")
	}
	return &MockHealthChecker{
		Error: err,
		Calls: make([]MockCall, 0),
	}
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "HealthCheck", Args: nil})
	m.mu.Unlock()

	return m.Error
}

func (m *MockHealthChecker) SetHealthy(healthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if healthy {
		m.Error = nil
	} else {
		m.Error = errors.New("health check failed")
	}
}
