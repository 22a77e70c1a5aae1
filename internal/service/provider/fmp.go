package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/repository"
	"StockCast/internal/service/ratelimit"
	pkghttp "StockCast/pkg/http"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/util"
)

const defaultBaseURL = "https://financialmodelingprep.com/stable"

// FMPClient fetches historical daily OHLCV bars from the Financial
// Modeling Prep REST API. Requests share a token bucket sized to the
// account's per-minute quota.
type FMPClient struct {
	http    *pkghttp.Client
	limiter *ratelimit.Limiter
	logger  *applogger.Logger

	baseURL string
	apiKey  string
	perMin  float64
}

// FMPOption configures FMPClient.
type FMPOption func(*FMPClient)

// NewFMPClient creates a provider client. apiKey is required.
func NewFMPClient(apiKey string, opts ...FMPOption) (*FMPClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	c := &FMPClient{
		http:    pkghttp.NewClient(pkghttp.WithTimeout(15 * time.Second)),
		limiter: ratelimit.New(),
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		perMin:  60,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) FMPOption {
	return func(c *FMPClient) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithRatePerMinute sets the request quota.
func WithRatePerMinute(n int) FMPOption {
	return func(c *FMPClient) {
		if n > 0 {
			c.perMin = float64(n)
		}
	}
}

// WithHTTPClient injects a custom HTTP client (used in tests).
func WithHTTPClient(h *pkghttp.Client) FMPOption {
	return func(c *FMPClient) {
		c.http = h
	}
}

// WithLogger attaches a structured logger.
func WithLogger(l *applogger.Logger) FMPOption {
	return func(c *FMPClient) {
		c.logger = l
	}
}

type fmpBar struct {
	Symbol string  `json:"symbol"`
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// HistoricalDaily returns daily bars for one symbol, sorted by date
// ascending. Zero from/to are sent as open bounds.
func (c *FMPClient) HistoricalDaily(ctx context.Context, symbol string, from, to time.Time) ([]*models.PriceBar, error) {
	if err := c.limiter.Wait(ctx, "fmp", c.perMin, c.perMin/60.0); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := map[string][]string{
		"symbol": {symbol},
		"apikey": {c.apiKey},
	}
	if !from.IsZero() {
		params["from"] = []string{util.FormatDate(from)}
	}
	if !to.IsZero() {
		params["to"] = []string{util.FormatDate(to)}
	}

	var raw []fmpBar
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:      pkghttp.MethodGet,
		URL:         c.baseURL + "/historical-price-eod/full",
		QueryParams: params,
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}

	bars := make([]*models.PriceBar, 0, len(raw))
	for _, r := range raw {
		date, ok := util.ParseDate(r.Date)
		if !ok {
			if c.logger != nil {
				c.logger.Warn("skipping bar with bad date",
					applogger.String("symbol", symbol),
					applogger.String("date", r.Date),
				)
			}
			continue
		}
		sym := r.Symbol
		if sym == "" {
			sym = symbol
		}
		bars = append(bars, &models.PriceBar{
			Symbol: sym,
			Date:   date,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		})
	}

	// The API returns newest first; downstream expects ascending.
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	if c.logger != nil {
		c.logger.Debug("fetched historical bars",
			applogger.String("symbol", symbol),
			applogger.Int("count", len(bars)),
		)
	}
	return bars, nil
}

var _ repository.PriceProvider = (*FMPClient)(nil)
