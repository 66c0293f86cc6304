package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/smartmoney/wallet-tracker/internal/domain/entities"
)

func TestMockRepository_UpsertIsIdempotent(t *testing.T) {
	repo := NewMockWalletRepository()
	ctx := context.Background()

	wallet := CreateTestWallet(WalletWithAddress(WalletA))

	inserted, err := repo.Upsert(ctx, &wallet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inserted {
		t.Error("expected first upsert to insert")
	}

	again := CreateTestWallet(WalletWithAddress(WalletA), WalletWithWinrate(0.99))
	inserted, err = repo.Upsert(ctx, &again)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted {
		t.Error("expected second upsert to update, not insert")
	}

	if repo.Count() != 1 {
		t.Errorf("expected 1 wallet after repeated upserts, got %d", repo.Count())
	}
	stored, _ := repo.GetByAddress(ctx, WalletA)
	if stored.Winrate7D == nil || *stored.Winrate7D != 0.99 {
		t.Errorf("expected the latest winrate to win, got %v", stored.Winrate7D)
	}
}

func TestMockRepository_UpsertReplacesWholeRecord(t *testing.T) {
	repo := NewMockWalletRepository()
	ctx := context.Background()

	withRate := CreateTestWallet(WalletWithAddress(WalletA), WalletWithWinrate(0.8))
	if _, err := repo.Upsert(ctx, &withRate); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A later scrape without a winrate must clear the field, not keep the old value
	withoutRate := CreateTestWallet(WalletWithAddress(WalletA), WalletWithoutWinrate())
	if _, err := repo.Upsert(ctx, &withoutRate); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := repo.GetByAddress(ctx, WalletA)
	if stored.Winrate7D != nil {
		t.Errorf("expected winrate cleared by full replace, got %v", *stored.Winrate7D)
	}
}

func TestMockRepository_UpsertBatchAccounting(t *testing.T) {
	repo := NewMockWalletRepository()
	ctx := context.Background()

	repo.AddWallets(CreateTestWallet(WalletWithAddress(WalletA)))

	batch := []entities.WalletRecord{
		CreateTestWallet(WalletWithAddress(WalletA), WalletWithWinrate(0.7)),
		CreateTestWallet(WalletWithAddress(WalletB)),
		CreateTestWallet(WalletWithAddress(WalletC)),
	}

	stats := repo.UpsertBatch(ctx, batch)

	if stats.Inserted != 2 {
		t.Errorf("expected 2 inserted, got %d", stats.Inserted)
	}
	if stats.Updated != 1 {
		t.Errorf("expected 1 updated, got %d", stats.Updated)
	}
	if stats.Errors != 0 {
		t.Errorf("expected 0 errors, got %d", stats.Errors)
	}
	if stats.Inserted+stats.Updated != len(batch) {
		t.Error("expected every record accounted for")
	}
}

func TestMockRepository_GetByFilterDefaults(t *testing.T) {
	repo := NewMockWalletRepository()
	ctx := context.Background()

	repo.AddWallets(
		CreateTestWallet(WalletWithAddress(WalletA), WalletWithWinrate(0.9),
			WalletWithScrapeTimestamp(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))),
		CreateTestWallet(WalletWithAddress(WalletB), WalletWithWinrate(0.4),
			WalletWithScrapeTimestamp(time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC))),
		CreateTestWallet(WalletWithAddress(WalletC), WalletWithoutWinrate(),
			WalletWithScrapeTimestamp(time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC))),
	)

	all, err := repo.GetByFilter(ctx, entities.WalletFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 wallets, got %d", len(all))
	}
	// Most recent scrape first
	if all[0].WalletAddress != WalletC || all[2].WalletAddress != WalletA {
		t.Errorf("unexpected ordering: %s, %s, %s",
			all[0].WalletAddress, all[1].WalletAddress, all[2].WalletAddress)
	}

	// A nil winrate never matches a threshold, and limit caps the result
	filtered, err := repo.GetByFilter(ctx, entities.WalletFilter{
		MinWinrate: PointerTo(0.0),
		Limit:      PointerTo(1),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(filtered) != 1 {
		t.Fatalf("expected 1 wallet, got %d", len(filtered))
	}
	if filtered[0].WalletAddress != WalletB {
		t.Errorf("expected most recent rated wallet, got %s", filtered[0].WalletAddress)
	}
}
