package entities

import (
	"encoding/json"
	"time"
)

// emptyRisk is the stored default for wallets whose source record carries no risk data
var emptyRisk = json.RawMessage(`{}`)

// RawWallet is a trending-wallet record as returned by the external analytics API.
// The required fields are strongly typed; everything the source nests under "risk"
// is carried through opaquely.
type RawWallet struct {
	WalletAddress  string          `json:"wallet_address"`
	RealizedProfit float64         `json:"realized_profit"`
	Winrate7D      *float64        `json:"winrate_7d"`
	PnL7D          float64         `json:"pnl_7d"`
	PnL30D         float64         `json:"pnl_30d"`
	Buy            int64           `json:"buy"`
	Sell           int64           `json:"sell"`
	LastActive     int64           `json:"last_active"`
	Risk           json.RawMessage `json:"risk"`
}

// WalletRecord is the persisted shape of a wallet, keyed uniquely by address.
// Winrate7D stays a pointer: a wallet the source reported without a winrate is
// distinct from one with winrate 0.
type WalletRecord struct {
	WalletAddress   string          `db:"wallet_address"`
	RealizedProfit  float64         `db:"realized_profit"`
	Winrate7D       *float64        `db:"winrate_7d"`
	PnL7D           float64         `db:"pnl_7d"`
	PnL30D          float64         `db:"pnl_30d"`
	Buy             int64           `db:"buy"`
	Sell            int64           `db:"sell"`
	LastActive      int64           `db:"last_active"`
	Risk            json.RawMessage `db:"risk"`
	ScrapeTimestamp time.Time       `db:"scrape_timestamp"`
}

// RunStats summarizes a single ingestion run's storage outcome
type RunStats struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Errors   int `json:"errors"`
}

// WalletFilter describes an optional filter for wallet queries.
// Nil fields leave that dimension unconstrained; time bounds are inclusive.
type WalletFilter struct {
	MinWinrate *float64
	StartTime  *time.Time
	EndTime    *time.Time
	Limit      *int
}

// requiredCheck reports whether a raw wallet satisfies one required-field rule
type requiredCheck func(*RawWallet) bool

// requiredChecks is the set of validations a record must pass before it can be
// persisted. Extend here when the source contract grows.
var requiredChecks = []requiredCheck{
	func(w *RawWallet) bool { return w.WalletAddress != "" },
}

// Validate reports whether the raw wallet carries all required fields
func (w *RawWallet) Validate() bool {
	for _, check := range requiredChecks {
		if !check(w) {
			return false
		}
	}
	return true
}

// Enrich shapes a raw wallet into its storable form, stamping the scrape
// timestamp and defaulting the risk payload. The second return value is false
// when the record fails validation and must be skipped.
func (w *RawWallet) Enrich(now time.Time) (*WalletRecord, bool) {
	if !w.Validate() {
		return nil, false
	}

	risk := w.Risk
	if len(risk) == 0 {
		risk = emptyRisk
	}

	return &WalletRecord{
		WalletAddress:   w.WalletAddress,
		RealizedProfit:  w.RealizedProfit,
		Winrate7D:       w.Winrate7D,
		PnL7D:           w.PnL7D,
		PnL30D:          w.PnL30D,
		Buy:             w.Buy,
		Sell:            w.Sell,
		LastActive:      w.LastActive,
		Risk:            risk,
		ScrapeTimestamp: now.UTC(),
	}, true
}

// FilterByWinrate keeps wallets whose 7-day winrate is present and at least
// threshold. A missing winrate never passes, regardless of the threshold; this
// is an explicit nil check, not a zero-value comparison.
func FilterByWinrate(wallets []RawWallet, threshold float64) []RawWallet {
	filtered := make([]RawWallet, 0, len(wallets))
	for _, w := range wallets {
		if w.Winrate7D != nil && *w.Winrate7D >= threshold {
			filtered = append(filtered, w)
		}
	}
	return filtered
}
