package repository

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"StockCast/internal/domain/models"
)

const featureHeader = "symbol,date,open,high,low,close,volume,daily_return,ma_5,volatility_10,volume_spike,day_of_week,lag_close_1,hl_range,next_day_close,price_up\n"

func writeFeatureFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "features.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestCSVFeatureStoreLoadAndRead(t *testing.T) {
	content := featureHeader +
		"AAPL,2024-01-16,185,187,184,186,1000000,0.005,185.2,1.1,1.05,1,184.5,0.0163,187.0,1\n" +
		"AAPL,2024-01-17,186,188,185,187,1100000,0.0054,185.8,1.2,1.1,2,186.0,0.0162,,\n" +
		"MSFT,2024-01-17,400,404,399,402,800000,0.005,401.0,2.0,0.98,2,400.5,0.0125,,\n"

	store := NewCSVFeatureStore(writeFeatureFile(t, content))
	if err := store.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	syms, err := store.Symbols()
	if err != nil {
		t.Fatalf("Symbols: %v", err)
	}
	if len(syms) != 2 || syms[0] != "AAPL" || syms[1] != "MSFT" {
		t.Fatalf("unexpected symbols: %v", syms)
	}

	rows, err := store.RowsBySymbol("AAPL")
	if err != nil {
		t.Fatalf("RowsBySymbol: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 AAPL rows, got %d", len(rows))
	}
	if !rows[0].HasLabel {
		t.Fatalf("first AAPL row should carry labels")
	}
	if rows[0].PriceUp != 1 || rows[0].NextDayClose != 187.0 {
		t.Fatalf("unexpected labels: %+v", rows[0])
	}
	if rows[1].HasLabel {
		t.Fatalf("serving row must not carry labels")
	}

	latest, err := store.LatestRow("AAPL")
	if err != nil {
		t.Fatalf("LatestRow: %v", err)
	}
	if got := latest.Date.Format("2006-01-02"); got != "2024-01-17" {
		t.Fatalf("latest date = %s, want 2024-01-17", got)
	}
	if latest.Close != 187 {
		t.Fatalf("latest close = %v, want 187", latest.Close)
	}
}

func TestCSVFeatureStoreLatestRowIgnoresFileOrder(t *testing.T) {
	content := featureHeader +
		"AAPL,2024-01-19,188,190,187,189,900000,0.0053,186.5,1.3,1.0,4,188.0,0.016,,\n" +
		"AAPL,2024-01-16,185,187,184,186,1000000,0.005,185.2,1.1,1.05,1,184.5,0.0163,,\n" +
		"AAPL,2024-01-18,187,189,186,188,950000,0.0053,186.1,1.2,1.02,3,187.0,0.0161,,\n"

	store := NewCSVFeatureStore(writeFeatureFile(t, content))
	if err := store.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	latest, err := store.LatestRow("AAPL")
	if err != nil {
		t.Fatalf("LatestRow: %v", err)
	}
	if got := latest.Date.Format("2006-01-02"); got != "2024-01-19" {
		t.Fatalf("latest date = %s, want 2024-01-19", got)
	}

	rows, err := store.RowsBySymbol("AAPL")
	if err != nil {
		t.Fatalf("RowsBySymbol: %v", err)
	}
	for i := 1; i < len(rows); i++ {
		if !rows[i-1].Date.Before(rows[i].Date) {
			t.Fatalf("rows not sorted by date: %v >= %v", rows[i-1].Date, rows[i].Date)
		}
	}
}

func TestCSVFeatureStoreUnknownSymbol(t *testing.T) {
	content := featureHeader +
		"AAPL,2024-01-16,185,187,184,186,1000000,0.005,185.2,1.1,1.05,1,184.5,0.0163,,\n"

	store := NewCSVFeatureStore(writeFeatureFile(t, content))
	if err := store.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, err := store.LatestRow("TSLA"); !errors.Is(err, models.ErrSymbolNotFound) {
		t.Fatalf("expected ErrSymbolNotFound, got %v", err)
	}
	if _, err := store.RowsBySymbol("TSLA"); !errors.Is(err, models.ErrSymbolNotFound) {
		t.Fatalf("expected ErrSymbolNotFound, got %v", err)
	}
}

func TestCSVFeatureStoreNotLoaded(t *testing.T) {
	store := NewCSVFeatureStore(filepath.Join(t.TempDir(), "missing.csv"))

	if err := store.Health(); !errors.Is(err, models.ErrFeatureStoreUnreadable) {
		t.Fatalf("expected unreadable health, got %v", err)
	}
	if _, err := store.Symbols(); !errors.Is(err, models.ErrFeatureStoreUnreadable) {
		t.Fatalf("expected unreadable symbols, got %v", err)
	}

	if err := store.Load(); !errors.Is(err, models.ErrFeatureStoreUnreadable) {
		t.Fatalf("expected load failure, got %v", err)
	}
}

func TestCSVFeatureStoreReloadKeepsOldSnapshotOnFailure(t *testing.T) {
	content := featureHeader +
		"AAPL,2024-01-16,185,187,184,186,1000000,0.005,185.2,1.1,1.05,1,184.5,0.0163,,\n"
	path := writeFeatureFile(t, content)

	store := NewCSVFeatureStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := os.WriteFile(path, []byte("not,a,valid\nheader"), 0o644); err != nil {
		t.Fatalf("overwrite file: %v", err)
	}
	if err := store.Reload(); err == nil {
		t.Fatalf("expected reload failure")
	}

	// Previous snapshot still serves.
	if _, err := store.LatestRow("AAPL"); err != nil {
		t.Fatalf("old snapshot gone after failed reload: %v", err)
	}
}

func TestCSVFeatureStoreRejectsBadRows(t *testing.T) {
	cases := map[string]string{
		"bad date":   "AAPL,01/16/2024,185,187,184,186,1000000,0.005,185.2,1.1,1.05,1,184.5,0.0163,,\n",
		"bad dow":    "AAPL,2024-01-16,185,187,184,186,1000000,0.005,185.2,1.1,1.05,7,184.5,0.0163,,\n",
		"bad volume": "AAPL,2024-01-16,185,187,184,186,lots,0.005,185.2,1.1,1.05,1,184.5,0.0163,,\n",
	}

	for name, row := range cases {
		store := NewCSVFeatureStore(writeFeatureFile(t, featureHeader+row))
		if err := store.Load(); err == nil {
			t.Fatalf("%s: expected load failure", name)
		}
	}
}
