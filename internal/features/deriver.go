package features

import (
	"math"
	"sort"

	"StockCast/internal/domain/models"
	"StockCast/pkg/util"
)

// Rolling window sizes for the derived feature set. volWindow dominates the
// warm-up: no row is defined before 10 observations exist for a symbol.
const (
	maWindow  = 5
	volWindow = 10
)

// RollingMean returns the trailing-window mean ending at each index.
// Positions without a full window are NaN.
func RollingMean(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	sum := 0.0
	for i, x := range xs {
		sum += x
		if i >= window {
			sum -= xs[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// RollingStd returns the trailing-window sample standard deviation (N-1
// denominator) ending at each index. Positions without a full window are NaN.
func RollingStd(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		win := xs[i-window+1 : i+1]
		sum := 0.0
		for _, x := range win {
			sum += x
		}
		mean := sum / float64(window)
		ss := 0.0
		for _, x := range win {
			d := x - mean
			ss += d * d
		}
		variance := ss / float64(window-1)
		if variance < 0 {
			variance = 0
		}
		out[i] = math.Sqrt(variance)
	}
	return out
}

// Partition splits bars by symbol. Rolling statistics must never cross a
// symbol boundary, so each partition is derived independently.
func Partition(bars []*models.PriceBar) map[string][]*models.PriceBar {
	out := make(map[string][]*models.PriceBar)
	for _, b := range bars {
		if b == nil {
			continue
		}
		out[b.Symbol] = append(out[b.Symbol], b)
	}
	return out
}

// Derive computes the ordered serving feature rows for one symbol's bars.
// Input need not be pre-sorted; bars are sorted ascending by date first.
// Rows with any undefined rolling value are dropped, so a symbol with N
// bars yields at most N-9 rows.
func Derive(bars []*models.PriceBar) []models.FeatureRow {
	return derive(bars, false)
}

// DeriveTraining derives rows with the one-day look-ahead label fields
// (next_day_close, price_up). The last bar has no next close and is
// dropped, so a symbol with N bars yields at most N-10 rows.
func DeriveTraining(bars []*models.PriceBar) []models.FeatureRow {
	return derive(bars, true)
}

// DeriveAll partitions mixed-symbol bars and derives each symbol
// independently, concatenating results in symbol order. Per-symbol rows
// stay chronological; no ordering is guaranteed across symbols.
func DeriveAll(bars []*models.PriceBar, withLabels bool) []models.FeatureRow {
	parts := Partition(bars)
	symbols := make([]string, 0, len(parts))
	for s := range parts {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	var out []models.FeatureRow
	for _, s := range symbols {
		out = append(out, derive(parts[s], withLabels)...)
	}
	return out
}

func derive(bars []*models.PriceBar, withLabels bool) []models.FeatureRow {
	if len(bars) < volWindow {
		return nil
	}

	sorted := make([]*models.PriceBar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	closes := make([]float64, len(sorted))
	volumes := make([]float64, len(sorted))
	for i, b := range sorted {
		closes[i] = b.Close
		volumes[i] = float64(b.Volume)
	}
	ma5 := RollingMean(closes, maWindow)
	vol10 := RollingStd(closes, volWindow)
	volMean5 := RollingMean(volumes, maWindow)

	out := make([]models.FeatureRow, 0, len(sorted)-volWindow+1)
	for i := volWindow - 1; i < len(sorted); i++ {
		b := sorted[i]
		if withLabels && i == len(sorted)-1 {
			break // no look-ahead close for the last bar
		}
		// A zero rolling volume mean makes volume_spike undefined; the row
		// is dropped rather than letting Inf/NaN reach the classifier.
		if volMean5[i] == 0 || b.Open <= 0 || b.Low <= 0 {
			continue
		}
		if math.IsNaN(ma5[i]) || math.IsNaN(vol10[i]) || math.IsNaN(volMean5[i]) {
			continue
		}

		row := models.FeatureRow{
			Symbol:       b.Symbol,
			Date:         b.Date,
			Open:         b.Open,
			High:         b.High,
			Low:          b.Low,
			Close:        b.Close,
			Volume:       b.Volume,
			DailyReturn:  (b.Close - b.Open) / b.Open,
			MA5:          ma5[i],
			Volatility10: vol10[i],
			VolumeSpike:  float64(b.Volume) / volMean5[i],
			DayOfWeek:    util.DayOfWeek(b.Date),
			LagClose1:    sorted[i-1].Close,
			HLRange:      (b.High - b.Low) / b.Low,
		}
		if withLabels {
			next := sorted[i+1]
			row.NextDayClose = next.Close
			if next.Close > b.Close {
				row.PriceUp = 1
			}
			row.HasLabel = true
		}
		out = append(out, row)
	}
	return out
}
