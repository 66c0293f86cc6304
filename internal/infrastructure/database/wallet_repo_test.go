package database

import (
	"strings"
	"testing"
	"time"

	"github.com/smartmoney/wallet-tracker/internal/domain/entities"
	"github.com/smartmoney/wallet-tracker/internal/testutil"
)

func TestBuildFilterQuery_NoFilters(t *testing.T) {
	query, args := buildFilterQuery(entities.WalletFilter{})

	if strings.Contains(query, "WHERE") {
		t.Error("expected no WHERE clause for an empty filter")
	}
	if strings.Contains(query, "LIMIT") {
		t.Error("expected no LIMIT clause for an empty filter")
	}
	if !strings.Contains(query, "ORDER BY scrape_timestamp DESC") {
		t.Error("expected ordering by most recent scrape")
	}
	if len(args) != 0 {
		t.Errorf("expected 0 args, got %d", len(args))
	}
}

func TestBuildFilterQuery_AllFilters(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	filter := entities.WalletFilter{
		MinWinrate: testutil.PointerTo(0.6),
		StartTime:  &start,
		EndTime:    &end,
		Limit:      testutil.PointerTo(50),
	}

	query, args := buildFilterQuery(filter)

	for _, fragment := range []string{
		"winrate_7d >= $1",
		"scrape_timestamp >= $2",
		"scrape_timestamp <= $3",
		"LIMIT $4",
	} {
		if !strings.Contains(query, fragment) {
			t.Errorf("expected query to contain %q:\n%s", fragment, query)
		}
	}

	if len(args) != 4 {
		t.Fatalf("expected 4 args, got %d", len(args))
	}
	if args[0] != 0.6 {
		t.Errorf("expected first arg 0.6, got %v", args[0])
	}
	if args[1] != start || args[2] != end {
		t.Errorf("expected time args in order, got %v, %v", args[1], args[2])
	}
	if args[3] != 50 {
		t.Errorf("expected limit arg 50, got %v", args[3])
	}
}

func TestBuildFilterQuery_LimitOnly(t *testing.T) {
	filter := entities.WalletFilter{Limit: testutil.PointerTo(10)}

	query, args := buildFilterQuery(filter)

	if strings.Contains(query, "WHERE") {
		t.Error("expected no WHERE clause")
	}
	if !strings.Contains(query, "LIMIT $1") {
		t.Errorf("expected LIMIT to take the first placeholder:\n%s", query)
	}
	if len(args) != 1 || args[0] != 10 {
		t.Errorf("expected single limit arg, got %v", args)
	}
}

func TestBuildFilterQuery_WinrateOnly(t *testing.T) {
	filter := entities.WalletFilter{MinWinrate: testutil.PointerTo(0.5)}

	query, args := buildFilterQuery(filter)

	if !strings.Contains(query, "WHERE winrate_7d >= $1") {
		t.Errorf("expected single winrate condition:\n%s", query)
	}
	if strings.Contains(query, "AND") {
		t.Error("expected no AND for a single condition")
	}
	if len(args) != 1 {
		t.Errorf("expected 1 arg, got %d", len(args))
	}
}

func TestSchemaStatements_Idempotent(t *testing.T) {
	// Every statement must be re-runnable on startup
	for _, stmt := range schemaStatements {
		if !strings.Contains(stmt, "IF NOT EXISTS") {
			t.Errorf("schema statement is not idempotent:\n%s", stmt)
		}
	}
}
