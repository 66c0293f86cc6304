package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/smartmoney/wallet-tracker/internal/domain/entities"
	"github.com/smartmoney/wallet-tracker/internal/testutil"
)

func setupWalletServiceTest() (*WalletService, *testutil.MockWalletRepository) {
	repo := testutil.NewMockWalletRepository()
	service := NewWalletService(repo, nil, zap.NewNop())
	return service, repo
}

func TestGetWallets_Success(t *testing.T) {
	service, repo := setupWalletServiceTest()
	ctx := context.Background()

	repo.AddWallets(
		testutil.CreateTestWallet(testutil.WalletWithAddress(testutil.WalletA), testutil.WalletWithWinrate(0.8)),
		testutil.CreateTestWallet(testutil.WalletWithAddress(testutil.WalletB), testutil.WalletWithWinrate(0.6)),
	)

	response, err := service.GetWallets(ctx, WalletQueryParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if response.Count != 2 {
		t.Errorf("expected count 2, got %d", response.Count)
	}
	if len(response.Wallets) != 2 {
		t.Errorf("expected 2 wallets, got %d", len(response.Wallets))
	}
	if response.Filters.MinWinrate != nil || response.Filters.Limit != nil {
		t.Error("expected empty filters to echo as null")
	}
	if response.Filters.StartDate != nil || response.Filters.EndDate != nil {
		t.Error("expected absent dates to echo as null")
	}
}

func TestGetWallets_EchoesFilters(t *testing.T) {
	service, repo := setupWalletServiceTest()
	ctx := context.Background()

	repo.AddWallets(testutil.CreateTestWallet(testutil.WalletWithWinrate(0.9)))

	params := WalletQueryParams{
		MinWinrate: testutil.PointerTo(0.5),
		Limit:      testutil.PointerTo(10),
		StartDate:  "2024-01-01T00:00:00Z",
	}
	response, err := service.GetWallets(ctx, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if response.Filters.MinWinrate == nil || *response.Filters.MinWinrate != 0.5 {
		t.Errorf("expected min_winrate 0.5 echoed, got %v", response.Filters.MinWinrate)
	}
	if response.Filters.Limit == nil || *response.Filters.Limit != 10 {
		t.Errorf("expected limit 10 echoed, got %v", response.Filters.Limit)
	}
	if response.Filters.StartDate == nil || *response.Filters.StartDate != "2024-01-01T00:00:00Z" {
		t.Errorf("expected start_date echoed verbatim, got %v", response.Filters.StartDate)
	}
}

func TestGetWallets_LimitOutOfRange(t *testing.T) {
	service, repo := setupWalletServiceTest()
	ctx := context.Background()

	for _, limit := range []int{0, -1, 5000} {
		_, err := service.GetWallets(ctx, WalletQueryParams{Limit: testutil.PointerTo(limit)})

		var inputErr *InputError
		if !errors.As(err, &inputErr) {
			t.Errorf("limit %d: expected InputError, got %v", limit, err)
		}
	}

	// Input errors are rejected before storage is touched
	if repo.CallsTo("GetByFilter") != 0 {
		t.Error("expected no storage query for invalid limits")
	}
}

func TestGetWallets_InvalidDate(t *testing.T) {
	service, repo := setupWalletServiceTest()
	ctx := context.Background()

	_, err := service.GetWallets(ctx, WalletQueryParams{StartDate: "not-a-date"})
	var inputErr *InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected InputError, got %v", err)
	}

	_, err = service.GetWallets(ctx, WalletQueryParams{EndDate: "01/15/2024"})
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected InputError, got %v", err)
	}

	if repo.CallsTo("GetByFilter") != 0 {
		t.Error("expected no storage query for invalid dates")
	}
}

func TestGetWallets_DateFormats(t *testing.T) {
	service, repo := setupWalletServiceTest()
	ctx := context.Background()

	var captured entities.WalletFilter
	repo.GetByFilterFunc = func(ctx context.Context, filter entities.WalletFilter) ([]entities.WalletRecord, error) {
		captured = filter
		return nil, nil
	}

	// Trailing Z designator
	_, err := service.GetWallets(ctx, WalletQueryParams{StartDate: "2024-01-15T10:30:00Z"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	if captured.StartTime == nil || !captured.StartTime.Equal(want) {
		t.Errorf("expected start time %v, got %v", want, captured.StartTime)
	}

	// Date-only form
	_, err = service.GetWallets(ctx, WalletQueryParams{EndDate: "2024-02-01"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.EndTime == nil || captured.EndTime.Day() != 1 || captured.EndTime.Month() != 2 {
		t.Errorf("expected end time on 2024-02-01, got %v", captured.EndTime)
	}
}

func TestGetWallets_RepositoryError(t *testing.T) {
	service, repo := setupWalletServiceTest()
	ctx := context.Background()

	repo.GetByFilterFunc = func(ctx context.Context, filter entities.WalletFilter) ([]entities.WalletRecord, error) {
		return nil, errors.New("database connection failed")
	}

	_, err := service.GetWallets(ctx, WalletQueryParams{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		t.Error("storage failure must not surface as an input error")
	}
}

func TestWalletDTO_Projection(t *testing.T) {
	service, repo := setupWalletServiceTest()
	ctx := context.Background()

	repo.AddWallets(testutil.CreateTestWallet(
		testutil.WalletWithAddress(testutil.WalletA),
		testutil.WalletWithWinrate(0.75),
		testutil.WalletWithScrapeTimestamp(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)),
	))

	response, err := service.GetWalletByAddress(ctx, testutil.WalletA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dto := response.Wallet
	if dto.WalletAddress != testutil.WalletA {
		t.Errorf("expected address %s, got %s", testutil.WalletA, dto.WalletAddress)
	}
	if dto.ScrapeTimestamp != "2024-01-15T10:30:00Z" {
		t.Errorf("expected ISO timestamp, got %s", dto.ScrapeTimestamp)
	}
	if dto.Winrate7D == nil || *dto.Winrate7D != 0.75 {
		t.Errorf("expected winrate 0.75, got %v", dto.Winrate7D)
	}
	if len(dto.Risk) == 0 {
		t.Error("expected risk payload to be carried through")
	}
}

func TestGetWalletByAddress_NotFound(t *testing.T) {
	service, _ := setupWalletServiceTest()
	ctx := context.Background()

	_, err := service.GetWalletByAddress(ctx, "unknown")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetWalletByAddress_RepositoryError(t *testing.T) {
	service, repo := setupWalletServiceTest()
	ctx := context.Background()

	repo.GetByAddressFunc = func(ctx context.Context, address string) (*entities.WalletRecord, error) {
		return nil, errors.New("database error")
	}

	_, err := service.GetWalletByAddress(ctx, testutil.WalletA)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("storage failure must not surface as not-found")
	}
}
