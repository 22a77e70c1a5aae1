package repository

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"sync"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/repository"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/util"
)

// CSVFeatureStore serves derived feature rows from a CSV file. The file is
// parsed once into per-symbol slices sorted by date; reads after Load never
// touch the filesystem. Reload swaps the whole snapshot atomically.
type CSVFeatureStore struct {
	path   string
	logger *applogger.Logger

	mu      sync.RWMutex
	rows    map[string][]models.FeatureRow
	symbols []string
	loadErr error
}

// NewCSVFeatureStore creates a store for the given file path. Call Load
// before serving.
func NewCSVFeatureStore(path string) *CSVFeatureStore {
	return &CSVFeatureStore{path: path}
}

// SetLogger attaches a structured logger.
func (s *CSVFeatureStore) SetLogger(l *applogger.Logger) {
	s.logger = l
}

// Load reads and parses the feature file. On failure the previous snapshot
// (if any) stays in place and the error is retained for Health.
func (s *CSVFeatureStore) Load() error {
	rows, symbols, err := s.parse()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.loadErr = err
		if s.logger != nil {
			s.logger.Error("feature store load failed",
				applogger.String("path", s.path),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("%w: %v", models.ErrFeatureStoreUnreadable, err)
	}

	s.rows = rows
	s.symbols = symbols
	s.loadErr = nil

	if s.logger != nil {
		total := 0
		for _, rs := range rows {
			total += len(rs)
		}
		s.logger.Info("feature store loaded",
			applogger.String("path", s.path),
			applogger.Int("symbols", len(symbols)),
			applogger.Int("rows", total),
		)
	}
	return nil
}

// Reload re-reads the feature file, replacing the snapshot on success.
func (s *CSVFeatureStore) Reload() error {
	return s.Load()
}

// RowsBySymbol returns all rows for a symbol in date order.
func (s *CSVFeatureStore) RowsBySymbol(symbol string) ([]models.FeatureRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.rows == nil {
		return nil, models.ErrFeatureStoreUnreadable
	}
	rs, ok := s.rows[symbol]
	if !ok || len(rs) == 0 {
		return nil, models.ErrSymbolNotFound
	}
	out := make([]models.FeatureRow, len(rs))
	copy(out, rs)
	return out, nil
}

// LatestRow returns the row with the maximum date for a symbol. The scan is
// explicit rather than relying on file order.
func (s *CSVFeatureStore) LatestRow(symbol string) (*models.FeatureRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.rows == nil {
		return nil, models.ErrFeatureStoreUnreadable
	}
	rs, ok := s.rows[symbol]
	if !ok || len(rs) == 0 {
		return nil, models.ErrSymbolNotFound
	}

	latest := rs[0]
	for _, r := range rs[1:] {
		if r.Date.After(latest.Date) {
			latest = r
		}
	}
	out := latest
	return &out, nil
}

// Symbols returns the distinct symbols in ascending order.
func (s *CSVFeatureStore) Symbols() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.rows == nil {
		return nil, models.ErrFeatureStoreUnreadable
	}
	out := make([]string, len(s.symbols))
	copy(out, s.symbols)
	return out, nil
}

// Health reports whether a snapshot is loaded.
func (s *CSVFeatureStore) Health() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.rows == nil {
		if s.loadErr != nil {
			return fmt.Errorf("%w: %v", models.ErrFeatureStoreUnreadable, s.loadErr)
		}
		return models.ErrFeatureStoreUnreadable
	}
	return nil
}

func (s *CSVFeatureStore) parse() (map[string][]models.FeatureRow, []string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range models.FeatureCSVColumns[:14] {
		if _, ok := col[required]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", required)
		}
	}
	_, hasNextClose := col["next_day_close"]
	_, hasPriceUp := col["price_up"]
	hasLabels := hasNextClose && hasPriceUp

	rows := make(map[string][]models.FeatureRow)
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}

		row, err := parseFeatureRecord(rec, col, hasLabels)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows[row.Symbol] = append(rows[row.Symbol], row)
	}

	symbols := make([]string, 0, len(rows))
	for sym, rs := range rows {
		sort.Slice(rs, func(i, j int) bool { return rs[i].Date.Before(rs[j].Date) })
		rows[sym] = rs
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	return rows, symbols, nil
}

func parseFeatureRecord(rec []string, col map[string]int, hasLabels bool) (models.FeatureRow, error) {
	var row models.FeatureRow

	get := func(name string) string { return rec[col[name]] }

	row.Symbol = get("symbol")
	if row.Symbol == "" {
		return row, fmt.Errorf("empty symbol")
	}

	date, ok := util.ParseDate(get("date"))
	if !ok {
		return row, fmt.Errorf("bad date %q", get("date"))
	}
	row.Date = date

	var err error
	parse := func(name string, dst *float64) {
		if err != nil {
			return
		}
		var v float64
		v, err = strconv.ParseFloat(get(name), 64)
		if err != nil {
			err = fmt.Errorf("bad %s %q: %w", name, get(name), err)
			return
		}
		*dst = v
	}

	parse("open", &row.Open)
	parse("high", &row.High)
	parse("low", &row.Low)
	parse("close", &row.Close)
	parse("daily_return", &row.DailyReturn)
	parse("ma_5", &row.MA5)
	parse("volatility_10", &row.Volatility10)
	parse("volume_spike", &row.VolumeSpike)
	parse("lag_close_1", &row.LagClose1)
	parse("hl_range", &row.HLRange)
	if err != nil {
		return row, err
	}

	vol, err := strconv.ParseInt(get("volume"), 10, 64)
	if err != nil {
		return row, fmt.Errorf("bad volume %q: %w", get("volume"), err)
	}
	row.Volume = vol

	dow, err := strconv.Atoi(get("day_of_week"))
	if err != nil || dow < 0 || dow > 6 {
		return row, fmt.Errorf("bad day_of_week %q", get("day_of_week"))
	}
	row.DayOfWeek = dow

	// Label columns may be empty on serving rows even when present.
	if hasLabels && get("next_day_close") != "" && get("price_up") != "" {
		next, err := strconv.ParseFloat(get("next_day_close"), 64)
		if err != nil {
			return row, fmt.Errorf("bad next_day_close %q: %w", get("next_day_close"), err)
		}
		up, err := strconv.Atoi(get("price_up"))
		if err != nil || (up != 0 && up != 1) {
			return row, fmt.Errorf("bad price_up %q", get("price_up"))
		}
		row.NextDayClose = next
		row.PriceUp = up
		row.HasLabel = true
	}

	return row, nil
}

var _ repository.FeatureStore = (*CSVFeatureStore)(nil)
