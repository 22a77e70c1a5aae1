package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"StockCast/internal/domain/models"
)

type stubProvider struct {
	bars map[string][]*models.PriceBar
	errs map[string]error
}

func (p *stubProvider) HistoricalDaily(_ context.Context, symbol string, _, _ time.Time) ([]*models.PriceBar, error) {
	if err, ok := p.errs[symbol]; ok {
		return nil, err
	}
	return p.bars[symbol], nil
}

type stubBarStore struct {
	stored []*models.PriceBar
	err    error
}

func (s *stubBarStore) Init(context.Context) error { return nil }
func (s *stubBarStore) Store(_ context.Context, b *models.PriceBar) error {
	return s.StoreBatch(context.Background(), []*models.PriceBar{b})
}
func (s *stubBarStore) StoreBatch(_ context.Context, bars []*models.PriceBar) error {
	if s.err != nil {
		return s.err
	}
	s.stored = append(s.stored, bars...)
	return nil
}
func (s *stubBarStore) Query(context.Context, string, time.Time, time.Time) ([]*models.PriceBar, error) {
	return nil, nil
}
func (s *stubBarStore) Symbols(context.Context) ([]string, error) { return nil, nil }
func (s *stubBarStore) Health(context.Context) error              { return nil }
func (s *stubBarStore) Close() error                              { return nil }

type stubPublisher struct {
	published []*models.PriceBar
}

func (p *stubPublisher) Publish(_ context.Context, b *models.PriceBar) error {
	p.published = append(p.published, b)
	return nil
}
func (p *stubPublisher) PublishBatch(_ context.Context, bars []*models.PriceBar) error {
	p.published = append(p.published, bars...)
	return nil
}
func (p *stubPublisher) Close() error { return nil }

func mkProviderBars(symbol string, n int) []*models.PriceBar {
	out := make([]*models.PriceBar, 0, n)
	d := day("2024-01-01")
	for i := 0; i < n; i++ {
		out = append(out, &models.PriceBar{
			Symbol: symbol,
			Date:   d.AddDate(0, 0, i),
			Open:   100, High: 101, Low: 99, Close: 100.5, Volume: 1000,
		})
	}
	return out
}

func TestIngestorStoresToClickHouse(t *testing.T) {
	provider := &stubProvider{bars: map[string][]*models.PriceBar{
		"AAPL": mkProviderBars("AAPL", 3),
		"MSFT": mkProviderBars("MSFT", 2),
	}}
	store := &stubBarStore{}

	in, err := NewIngestor(provider, store, nil, BackendClickHouse, nil, nil)
	if err != nil {
		t.Fatalf("NewIngestor: %v", err)
	}

	res, err := in.Run(context.Background(), []string{"AAPL", "MSFT"}, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Symbols != 2 || res.Bars != 5 {
		t.Fatalf("result = %+v, want 2 symbols / 5 bars", res)
	}
	if len(store.stored) != 5 {
		t.Fatalf("stored %d bars, want 5", len(store.stored))
	}
}

func TestIngestorPublishesToKafka(t *testing.T) {
	provider := &stubProvider{bars: map[string][]*models.PriceBar{
		"AAPL": mkProviderBars("AAPL", 3),
	}}
	pub := &stubPublisher{}

	in, err := NewIngestor(provider, nil, pub, BackendKafka, nil, nil)
	if err != nil {
		t.Fatalf("NewIngestor: %v", err)
	}

	if _, err := in.Run(context.Background(), []string{"AAPL"}, time.Time{}, time.Time{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(pub.published) != 3 {
		t.Fatalf("published %d bars, want 3", len(pub.published))
	}
}

func TestIngestorSkipsFailedSymbol(t *testing.T) {
	provider := &stubProvider{
		bars: map[string][]*models.PriceBar{
			"AAPL": mkProviderBars("AAPL", 3),
			"MSFT": mkProviderBars("MSFT", 2),
		},
		errs: map[string]error{"BAD": errors.New("provider refused")},
	}
	store := &stubBarStore{}

	in, err := NewIngestor(provider, store, nil, BackendClickHouse, nil, nil)
	if err != nil {
		t.Fatalf("NewIngestor: %v", err)
	}

	res, err := in.Run(context.Background(), []string{"AAPL", "BAD", "MSFT"}, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Symbols != 2 || res.Bars != 5 {
		t.Fatalf("result = %+v, want 2 symbols / 5 bars", res)
	}
	if len(res.Failed) != 1 || res.Failed[0] != "BAD" {
		t.Fatalf("failed = %v, want [BAD]", res.Failed)
	}
}

func TestIngestorBackendValidation(t *testing.T) {
	provider := &stubProvider{}

	if _, err := NewIngestor(provider, nil, nil, BackendClickHouse, nil, nil); err == nil {
		t.Fatalf("expected error without store")
	}
	if _, err := NewIngestor(provider, nil, nil, BackendKafka, nil, nil); err == nil {
		t.Fatalf("expected error without publisher")
	}
	if _, err := NewIngestor(provider, &stubBarStore{}, nil, "sqlite", nil, nil); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
