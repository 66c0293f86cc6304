package testutil

import (
	"encoding/json"
	"time"

	"github.com/smartmoney/wallet-tracker/internal/domain/entities"
)

// Common test wallet addresses
const (
	WalletA = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
	WalletB = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	WalletC = "5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1"
)

// CreateTestWallet creates a stored wallet record with default values
func CreateTestWallet(opts ...WalletOption) entities.WalletRecord {
	winrate := 0.75
	w := entities.WalletRecord{
		WalletAddress:   WalletA,
		RealizedProfit:  15234.5,
		Winrate7D:       &winrate,
		PnL7D:           0.42,
		PnL30D:          1.87,
		Buy:             120,
		Sell:            95,
		LastActive:      1705312200,
		Risk:            json.RawMessage(`{"token_active":"12","token_honeypot":"0"}`),
		ScrapeTimestamp: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}

	for _, opt := range opts {
		opt(&w)
	}

	return w
}

type WalletOption func(*entities.WalletRecord)

func WalletWithAddress(addr string) WalletOption {
	return func(w *entities.WalletRecord) {
		w.WalletAddress = addr
	}
}

func WalletWithWinrate(winrate float64) WalletOption {
	return func(w *entities.WalletRecord) {
		w.Winrate7D = &winrate
	}
}

func WalletWithoutWinrate() WalletOption {
	return func(w *entities.WalletRecord) {
		w.Winrate7D = nil
	}
}

func WalletWithScrapeTimestamp(ts time.Time) WalletOption {
	return func(w *entities.WalletRecord) {
		w.ScrapeTimestamp = ts
	}
}

func WalletWithRealizedProfit(profit float64) WalletOption {
	return func(w *entities.WalletRecord) {
		w.RealizedProfit = profit
	}
}

// CreateRawWallet creates a raw API record with default values
func CreateRawWallet(opts ...RawWalletOption) entities.RawWallet {
	winrate := 0.75
	w := entities.RawWallet{
		WalletAddress:  WalletA,
		RealizedProfit: 15234.5,
		Winrate7D:      &winrate,
		PnL7D:          0.42,
		PnL30D:         1.87,
		Buy:            120,
		Sell:           95,
		LastActive:     1705312200,
		Risk:           json.RawMessage(`{"token_active":"12"}`),
	}

	for _, opt := range opts {
		opt(&w)
	}

	return w
}

type RawWalletOption func(*entities.RawWallet)

func RawWithAddress(addr string) RawWalletOption {
	return func(w *entities.RawWallet) {
		w.WalletAddress = addr
	}
}

func RawWithWinrate(winrate float64) RawWalletOption {
	return func(w *entities.RawWallet) {
		w.Winrate7D = &winrate
	}
}

func RawWithoutWinrate() RawWalletOption {
	return func(w *entities.RawWallet) {
		w.Winrate7D = nil
	}
}

func RawWithRisk(risk json.RawMessage) RawWalletOption {
	return func(w *entities.RawWallet) {
		w.Risk = risk
	}
}

// CreateMultipleWallets creates wallets with distinct addresses and ascending
// scrape timestamps, for ordering and limit tests
func CreateMultipleWallets(count int, opts ...WalletOption) []entities.WalletRecord {
	wallets := make([]entities.WalletRecord, count)
	base := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		w := CreateTestWallet(opts...)
		w.WalletAddress = generateAddress(i)
		w.ScrapeTimestamp = base.Add(time.Duration(i) * time.Minute)
		wallets[i] = w
	}
	return wallets
}

func generateAddress(index int) string {
	addr := make([]byte, 44)
	for i := range addr {
		addr[i] = byte('A' + (index+i)%26)
	}
	return string(addr)
}

// PointerTo returns a pointer to the given value
func PointerTo[T any](v T) *T {
	return &v
}
