package features

import (
	"math"
	"testing"
	"time"

	"StockCast/internal/domain/models"
)

// mkBars builds a contiguous weekday-only series starting Mon 2024-01-01.
func mkBars(symbol string, closes []float64) []*models.PriceBar {
	bars := make([]*models.PriceBar, 0, len(closes))
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, c := range closes {
		bars = append(bars, &models.PriceBar{
			Symbol: symbol,
			Date:   d,
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		})
		d = d.AddDate(0, 0, 1)
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.AddDate(0, 0, 1)
		}
	}
	return bars
}

func seq(n int, start float64) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = start + float64(i)
	}
	return xs
}

func TestRollingMeanExact(t *testing.T) {
	ms := RollingMean([]float64{10, 11, 12, 13, 14}, 5)
	if ms[4] != 12.0 {
		t.Fatalf("ma_5 at 5th position = %v, want 12.0", ms[4])
	}
	for i := 0; i < 4; i++ {
		if !math.IsNaN(ms[i]) {
			t.Fatalf("position %d should be undefined", i)
		}
	}
}

func TestRollingStdSampleDenominator(t *testing.T) {
	same := make([]float64, 10)
	for i := range same {
		same[i] = 42.5
	}
	if got := RollingStd(same, 10)[9]; got != 0 {
		t.Fatalf("identical closes should give zero volatility, got %v", got)
	}

	// Known sample stddev: {1..10} has variance 55/6... check against direct formula.
	xs := seq(10, 1)
	got := RollingStd(xs, 10)[9]
	want := math.Sqrt(82.5 / 9.0) // sum of squared deviations = 82.5, N-1 = 9
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("sample std = %v, want %v", got, want)
	}
}

func TestDeriveRowCount(t *testing.T) {
	bars := mkBars("AAPL", seq(25, 100))
	rows := Derive(bars)
	if len(rows) != len(bars)-9 {
		t.Fatalf("serving rows = %d, want %d", len(rows), len(bars)-9)
	}
	training := DeriveTraining(bars)
	if len(training) != len(bars)-10 {
		t.Fatalf("training rows = %d, want %d", len(training), len(bars)-10)
	}
}

func TestDeriveInsufficientHistory(t *testing.T) {
	bars := mkBars("NVDA", seq(9, 50))
	if rows := Derive(bars); len(rows) != 0 {
		t.Fatalf("9 bars should yield zero rows, got %d", len(rows))
	}
}

func TestDeriveUnsortedInput(t *testing.T) {
	bars := mkBars("MSFT", seq(12, 10))
	shuffled := []*models.PriceBar{bars[5], bars[0], bars[11], bars[3], bars[8], bars[1], bars[10], bars[2], bars[7], bars[4], bars[9], bars[6]}
	rows := Derive(shuffled)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if !rows[i-1].Date.Before(rows[i].Date) {
			t.Fatalf("rows out of order at %d", i)
		}
	}
	// lag_close_1 must be the chronologically preceding close
	if rows[0].LagClose1 != bars[8].Close {
		t.Fatalf("lag_close_1 = %v, want %v", rows[0].LagClose1, bars[8].Close)
	}
}

func TestDeriveNoCrossSymbolLeakage(t *testing.T) {
	a := mkBars("AAA", seq(4, 500))
	b := mkBars("BBB", seq(6, 10))
	mixed := append(append([]*models.PriceBar{}, a...), b...)
	rows := DeriveAll(mixed, false)
	if len(rows) != 0 {
		t.Fatalf("neither symbol has a full window, got %d rows", len(rows))
	}

	// With enough bars, each symbol's windows stay within its own series.
	c := mkBars("CCC", seq(10, 1000))
	d := mkBars("DDD", seq(10, 1))
	rows = DeriveAll(append(append([]*models.PriceBar{}, c...), d...), false)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	for _, r := range rows {
		switch r.Symbol {
		case "CCC":
			if r.MA5 < 1000 {
				t.Fatalf("CCC ma_5 leaked low closes: %v", r.MA5)
			}
		case "DDD":
			if r.MA5 > 100 {
				t.Fatalf("DDD ma_5 leaked high closes: %v", r.MA5)
			}
		}
	}
}

func TestDeriveZeroVolumeMeanDropped(t *testing.T) {
	bars := mkBars("ZERO", seq(12, 20))
	for _, b := range bars {
		b.Volume = 0
	}
	if rows := Derive(bars); len(rows) != 0 {
		t.Fatalf("zero rolling volume mean must drop rows, got %d", len(rows))
	}
}

func TestDeriveTrainingLabels(t *testing.T) {
	closes := seq(12, 100) // strictly increasing, every label should be 1
	bars := mkBars("UPUP", closes)
	rows := DeriveTraining(bars)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	for _, r := range rows {
		if !r.HasLabel {
			t.Fatalf("training row missing label")
		}
		if r.PriceUp != 1 {
			t.Fatalf("rising series should label price_up=1")
		}
		if r.NextDayClose <= r.Close {
			t.Fatalf("next_day_close should exceed close")
		}
	}

	serving := Derive(bars)
	for _, r := range serving {
		if r.HasLabel {
			t.Fatalf("serving rows must not carry labels")
		}
	}
}

func TestDeriveFeatureValues(t *testing.T) {
	bars := mkBars("VAL", seq(10, 10))
	rows := Derive(bars)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	r := rows[0]
	b := bars[9]
	if got, want := r.DailyReturn, (b.Close-b.Open)/b.Open; math.Abs(got-want) > 1e-12 {
		t.Fatalf("daily_return = %v, want %v", got, want)
	}
	if got, want := r.HLRange, (b.High-b.Low)/b.Low; math.Abs(got-want) > 1e-12 {
		t.Fatalf("hl_range = %v, want %v", got, want)
	}
	if r.VolumeSpike != 1.0 {
		t.Fatalf("constant volume should give spike 1.0, got %v", r.VolumeSpike)
	}
	if r.LagClose1 != bars[8].Close {
		t.Fatalf("lag_close_1 = %v", r.LagClose1)
	}
	if r.MA5 != (15+16+17+18+19)/5.0 {
		t.Fatalf("ma_5 = %v", r.MA5)
	}
	if r.DayOfWeek < 0 || r.DayOfWeek > 4 {
		t.Fatalf("weekday-only series produced day_of_week %d", r.DayOfWeek)
	}
}
