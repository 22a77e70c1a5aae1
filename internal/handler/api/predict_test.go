package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/service"
	"StockCast/internal/service/cache"
	"StockCast/internal/usecase"

	"github.com/labstack/echo/v4"
)

type fakeFeatureStore struct {
	rows map[string]models.FeatureRow
	err  error
}

func (s *fakeFeatureStore) RowsBySymbol(symbol string) ([]models.FeatureRow, error) {
	r, err := s.LatestRow(symbol)
	if err != nil {
		return nil, err
	}
	return []models.FeatureRow{*r}, nil
}

func (s *fakeFeatureStore) LatestRow(symbol string) (*models.FeatureRow, error) {
	if s.err != nil {
		return nil, s.err
	}
	r, ok := s.rows[symbol]
	if !ok {
		return nil, models.ErrSymbolNotFound
	}
	return &r, nil
}

func (s *fakeFeatureStore) Symbols() ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []string{"AAPL", "MSFT"}, nil
}

func (s *fakeFeatureStore) Health() error { return s.err }

type fakeClassifier struct {
	calls int
}

func (c *fakeClassifier) Predict(_ context.Context, _ []float64) (int, []float64, error) {
	c.calls++
	return 1, []float64{0.35, 0.65}, nil
}

func testStore() *fakeFeatureStore {
	date, _ := time.Parse("2006-01-02", "2024-01-17")
	return &fakeFeatureStore{rows: map[string]models.FeatureRow{
		"AAPL": {
			Symbol: "AAPL", Date: date, Close: 186,
			DailyReturn: 0.005, MA5: 185.2, Volatility10: 1.1,
			VolumeSpike: 1.05, DayOfWeek: 2, LagClose1: 184.5, HLRange: 0.0163,
		},
	}}
}

func newTestServer(t *testing.T, store *fakeFeatureStore, clf *fakeClassifier, respCache cache.BytesCache) *echo.Echo {
	t.Helper()
	var c service.DirectionClassifier
	if clf != nil {
		c = clf
	}
	predictor := usecase.NewPredictor(store, c, nil, nil)
	h := NewPredictHandler(predictor, respCache, time.Minute, nil)

	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func doGet(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRootEndpoint(t *testing.T) {
	e := newTestServer(t, testStore(), &fakeClassifier{}, nil)

	rec := doGet(e, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["message"] == "" || body["usage"] == "" {
		t.Fatalf("missing message/usage: %v", body)
	}
}

func TestHealthEndpoint(t *testing.T) {
	e := newTestServer(t, testStore(), &fakeClassifier{}, nil)

	rec := doGet(e, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "healthy" {
		t.Fatalf("status = %q, want healthy", body["status"])
	}
}

func TestHealthDegradedWithoutModel(t *testing.T) {
	e := newTestServer(t, testStore(), nil, nil)

	rec := doGet(e, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "degraded" {
		t.Fatalf("status = %q, want degraded", body["status"])
	}
}

func TestSymbolsEndpoint(t *testing.T) {
	e := newTestServer(t, testStore(), &fakeClassifier{}, nil)

	rec := doGet(e, "/symbols")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var syms []string
	if err := json.Unmarshal(rec.Body.Bytes(), &syms); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(syms) != 2 || syms[0] != "AAPL" || syms[1] != "MSFT" {
		t.Fatalf("symbols = %v", syms)
	}
}

func TestSymbolsEndpointLimit(t *testing.T) {
	e := newTestServer(t, testStore(), &fakeClassifier{}, nil)

	rec := doGet(e, "/symbols?limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var syms []string
	if err := json.Unmarshal(rec.Body.Bytes(), &syms); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(syms) != 1 || syms[0] != "AAPL" {
		t.Fatalf("symbols = %v, want [AAPL]", syms)
	}
}

func TestPredictEndpoint(t *testing.T) {
	e := newTestServer(t, testStore(), &fakeClassifier{}, nil)

	rec := doGet(e, "/predict/AAPL")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Symbol        string  `json:"symbol"`
		Prediction    string  `json:"prediction"`
		Confidence    float64 `json:"confidence"`
		PredictedDate string  `json:"predicted_date"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Symbol != "AAPL" {
		t.Fatalf("symbol = %s", body.Symbol)
	}
	if body.Prediction != "UP" {
		t.Fatalf("prediction = %s, want UP", body.Prediction)
	}
	if body.Confidence != 0.65 {
		t.Fatalf("confidence = %v, want 0.65", body.Confidence)
	}
	// 2024-01-17 is a Wednesday.
	if body.PredictedDate != "2024-01-18" {
		t.Fatalf("predicted_date = %s, want 2024-01-18", body.PredictedDate)
	}
}

func TestPredictLowercaseSymbol(t *testing.T) {
	e := newTestServer(t, testStore(), &fakeClassifier{}, nil)

	rec := doGet(e, "/predict/aapl")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestPredictUnknownSymbol(t *testing.T) {
	e := newTestServer(t, testStore(), &fakeClassifier{}, nil)

	rec := doGet(e, "/predict/TSLA")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] == "" {
		t.Fatalf("missing error field: %s", rec.Body.String())
	}
}

func TestPredictWithoutModelReturns503(t *testing.T) {
	e := newTestServer(t, testStore(), nil, nil)

	rec := doGet(e, "/predict/AAPL")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestPredictInvalidSymbolReturns400(t *testing.T) {
	e := newTestServer(t, testStore(), &fakeClassifier{}, nil)

	rec := doGet(e, "/predict/THISSYMBOLISTOOLONG")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPredictResponseCache(t *testing.T) {
	clf := &fakeClassifier{}
	e := newTestServer(t, testStore(), clf, cache.NewTTLCache())

	first := doGet(e, "/predict/AAPL")
	second := doGet(e, "/predict/AAPL")
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("status = %d / %d, want 200", first.Code, second.Code)
	}
	if clf.calls != 1 {
		t.Fatalf("classifier called %d times, want 1 (second served from cache)", clf.calls)
	}
	if strings.TrimSpace(first.Body.String()) != strings.TrimSpace(second.Body.String()) {
		t.Fatalf("cached body differs:\n%s\n%s", first.Body.String(), second.Body.String())
	}
}
