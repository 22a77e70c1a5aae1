package repository

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"StockCast/internal/domain/models"
	"StockCast/pkg/util"
)

// WriteFeatureCSV writes feature rows to path in the canonical column order.
// The write goes through a temp file and rename so readers never observe a
// partially written table.
func WriteFeatureCSV(path string, rows []models.FeatureRow) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create feature dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".features-*.csv")
	if err != nil {
		return fmt.Errorf("create temp feature file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	w := csv.NewWriter(tmp)
	if err := w.Write(models.FeatureCSVColumns); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}

	ff := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for i := range rows {
		r := &rows[i]
		rec := []string{
			r.Symbol,
			util.FormatDate(r.Date),
			ff(r.Open), ff(r.High), ff(r.Low), ff(r.Close),
			strconv.FormatInt(r.Volume, 10),
			ff(r.DailyReturn), ff(r.MA5), ff(r.Volatility10), ff(r.VolumeSpike),
			strconv.Itoa(r.DayOfWeek), ff(r.LagClose1), ff(r.HLRange),
			"", "",
		}
		if r.HasLabel {
			rec[14] = ff(r.NextDayClose)
			rec[15] = strconv.Itoa(r.PriceUp)
		}
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush feature file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close feature file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename feature file: %w", err)
	}
	return nil
}
