package models

import "time"

// ServingFeatures is the fixed feature order fed to the classifier.
// This order is a contract with the trained model and must never change
// without retraining.
var ServingFeatures = []string{
	"daily_return",
	"ma_5",
	"volatility_10",
	"volume_spike",
	"day_of_week",
	"lag_close_1",
	"hl_range",
}

// FeatureCSVColumns is the column order of the persisted feature table.
// The first fifteen columns up to hl_range must stay read-compatible with
// externally produced files; the two label columns are training-only.
var FeatureCSVColumns = []string{
	"symbol", "date", "open", "high", "low", "close", "volume",
	"daily_return", "ma_5", "volatility_10", "volume_spike",
	"day_of_week", "lag_close_1", "hl_range",
	"next_day_close", "price_up",
}

// FeatureRow is one derived observation for a symbol and date. Rows are
// immutable once computed. Label fields (NextDayClose, PriceUp) use one day
// of look-ahead and exist only on training rows; they must never enter a
// serving feature vector.
type FeatureRow struct {
	Symbol string
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64

	DailyReturn  float64
	MA5          float64
	Volatility10 float64
	VolumeSpike  float64
	DayOfWeek    int // 0=Mon .. 6=Sun
	LagClose1    float64
	HLRange      float64

	NextDayClose float64
	PriceUp      int
	HasLabel     bool
}

// Vector returns the serving features in the fixed contract order.
func (r *FeatureRow) Vector() []float64 {
	return []float64{
		r.DailyReturn,
		r.MA5,
		r.Volatility10,
		r.VolumeSpike,
		float64(r.DayOfWeek),
		r.LagClose1,
		r.HLRange,
	}
}
