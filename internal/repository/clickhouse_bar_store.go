package repository

import (
	"context"
	"fmt"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/repository"
	"StockCast/pkg/clickhouse"
	applogger "StockCast/pkg/logger"
)

var barSchema = []string{
	`CREATE DATABASE IF NOT EXISTS stockcast`,
	`CREATE TABLE IF NOT EXISTS stockcast.daily_bars (
		symbol LowCardinality(String),
		date   Date,
		open   Float64,
		high   Float64,
		low    Float64,
		close  Float64,
		volume Int64
	) ENGINE = ReplacingMergeTree()
	ORDER BY (symbol, date)`,
}

// ClickHouseBarStore persists raw daily bars in ClickHouse.
type ClickHouseBarStore struct {
	client *clickhouse.Client
	logger *applogger.Logger
}

// NewClickHouseBarStore creates a bar store backed by ClickHouse.
func NewClickHouseBarStore(client *clickhouse.Client) *ClickHouseBarStore {
	return &ClickHouseBarStore{client: client}
}

// SetLogger attaches a structured logger.
func (s *ClickHouseBarStore) SetLogger(l *applogger.Logger) {
	s.logger = l
}

// Init creates the database and table if missing.
func (s *ClickHouseBarStore) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, barSchema)
}

// Store inserts a single daily bar.
func (s *ClickHouseBarStore) Store(ctx context.Context, bar *models.PriceBar) error {
	return s.StoreBatch(ctx, []*models.PriceBar{bar})
}

// StoreBatch inserts daily bars in a single transaction-backed batch.
func (s *ClickHouseBarStore) StoreBatch(ctx context.Context, bars []*models.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := s.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO stockcast.daily_bars (symbol, date, open, high, low, close, volume) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx,
			b.Symbol, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert bar %s %s: %w", b.Symbol, b.Date.Format("2006-01-02"), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("stored daily bars",
			applogger.Int("count", len(bars)),
		)
	}
	return nil
}

// Query returns bars for a symbol ordered by date ascending.
// Zero from/to bounds are treated as open-ended.
func (s *ClickHouseBarStore) Query(ctx context.Context, symbol string, from, to time.Time) ([]*models.PriceBar, error) {
	query := `SELECT symbol, date, open, high, low, close, volume
		FROM stockcast.daily_bars FINAL
		WHERE symbol = ?`
	args := []interface{}{symbol}

	if !from.IsZero() {
		query += ` AND date >= ?`
		args = append(args, from)
	}
	if !to.IsZero() {
		query += ` AND date <= ?`
		args = append(args, to)
	}
	query += ` ORDER BY date ASC`

	rows, err := s.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var out []*models.PriceBar
	for rows.Next() {
		var b models.PriceBar
		if err := rows.Scan(&b.Symbol, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		out = append(out, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bars: %w", err)
	}
	return out, nil
}

// Symbols returns the distinct symbols present in the store, sorted.
func (s *ClickHouseBarStore) Symbols(ctx context.Context) ([]string, error) {
	rows, err := s.client.DB().QueryContext(ctx,
		`SELECT DISTINCT symbol FROM stockcast.daily_bars ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		out = append(out, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate symbols: %w", err)
	}
	return out, nil
}

// Health reports connectivity of the underlying client.
func (s *ClickHouseBarStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

// Close releases the connection pool.
func (s *ClickHouseBarStore) Close() error {
	return s.client.Close()
}

var _ repository.BarStore = (*ClickHouseBarStore)(nil)
