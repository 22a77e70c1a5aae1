package models

import "time"

// PriceBar represents one symbol's OHLCV record for a single trading day.
// At most one bar exists per (symbol, date); the store keeps bars in
// chronological order per symbol but guarantees nothing across symbols.
type PriceBar struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"` // calendar date, UTC midnight
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}
