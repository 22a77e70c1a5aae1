package api

import (
	"encoding/json"
	"errors"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/service/cache"
	"StockCast/internal/usecase"
	pkghttp "StockCast/pkg/http"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/util"

	"github.com/labstack/echo/v4"
)

// PredictHandler exposes the prediction service over HTTP.
type PredictHandler struct {
	predictor *usecase.Predictor
	cache     cache.BytesCache
	cacheTTL  time.Duration
	logger    *applogger.Logger
}

// NewPredictHandler creates the handler. cache may be nil to disable
// response caching.
func NewPredictHandler(predictor *usecase.Predictor, respCache cache.BytesCache, cacheTTL time.Duration, logger *applogger.Logger) *PredictHandler {
	return &PredictHandler{
		predictor: predictor,
		cache:     respCache,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// RegisterRoutes mounts the public API.
func (h *PredictHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)
	e.GET("/symbols", h.Symbols)
	e.GET("/predict/:symbol", h.Predict)
}

type rootResponse struct {
	Message string `json:"message"`
	Usage   string `json:"usage"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type predictResponse struct {
	Symbol        string  `json:"symbol"`
	Prediction    string  `json:"prediction"`
	Confidence    float64 `json:"confidence"`
	PredictedDate string  `json:"predicted_date"`
}

// Root describes the API.
func (h *PredictHandler) Root(c echo.Context) error {
	return pkghttp.SuccessResponse(c, rootResponse{
		Message: "Stock direction prediction API",
		Usage:   "GET /predict/{symbol} for a next-day UP/DOWN call; GET /symbols for coverage",
	})
}

// Health reports serving readiness. Always 200; the status field carries
// the actual state so load balancers and humans read the same signal.
func (h *PredictHandler) Health(c echo.Context) error {
	status, message := h.predictor.Health(c.Request().Context())
	return pkghttp.SuccessResponse(c, healthResponse{Status: status, Message: message})
}

// Symbols returns the predictable symbols as a sorted JSON array. An
// optional limit query caps the list for large universes.
func (h *PredictHandler) Symbols(c echo.Context) error {
	req := new(models.SymbolsRequest)
	if verrs := pkghttp.ReadAndValidateRequest(c, req); len(verrs) > 0 {
		return pkghttp.BadRequestResponse(c, pkghttp.ValidationDetails(verrs))
	}

	symbols, err := h.predictor.Symbols(c.Request().Context())
	if err != nil {
		return h.mapError(c, err)
	}
	if symbols == nil {
		symbols = []string{}
	}
	if req.Limit > 0 && req.Limit < len(symbols) {
		symbols = symbols[:req.Limit]
	}
	return pkghttp.SuccessResponse(c, symbols)
}

// Predict serves the next-day direction call for one symbol.
func (h *PredictHandler) Predict(c echo.Context) error {
	req := new(models.PredictRequest)
	if verrs := pkghttp.ReadAndValidateRequest(c, req); len(verrs) > 0 {
		return pkghttp.BadRequestResponse(c, pkghttp.ValidationDetails(verrs))
	}

	cacheKey := "predict:" + req.Symbol
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(cacheKey); err == nil && ok {
			return c.JSONBlob(200, b)
		}
	}

	result, err := h.predictor.Predict(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.mapError(c, err)
	}

	resp := predictResponse{
		Symbol:        result.Symbol,
		Prediction:    result.Prediction,
		Confidence:    result.Confidence,
		PredictedDate: util.FormatDate(result.PredictedDate),
	}

	if h.cache != nil {
		if b, err := json.Marshal(resp); err == nil {
			_ = h.cache.SetBytes(cacheKey, b, h.cacheTTL)
		}
	}
	return pkghttp.SuccessResponse(c, resp)
}

// mapError translates domain errors into HTTP status codes. Wrapped causes
// are logged here and never rendered to the caller.
func (h *PredictHandler) mapError(c echo.Context, err error) error {
	var appErr *pkghttp.AppError

	switch {
	case errors.Is(err, models.ErrInvalidSymbol):
		appErr = pkghttp.BadRequestError("invalid symbol")
	case errors.Is(err, models.ErrSymbolNotFound):
		appErr = pkghttp.NotFoundError("symbol not found").
			WithDetails("no feature data for this symbol")
	case errors.Is(err, models.ErrClassifierUnavailable):
		appErr = pkghttp.ServiceUnavailableError("model unavailable").
			WithDetails("prediction model is not loaded")
	case errors.Is(err, models.ErrFeatureStoreUnreadable):
		appErr = pkghttp.InternalError("feature data unavailable")
	default:
		appErr = pkghttp.InternalError("internal error")
	}
	appErr.WithError(err)

	if h.logger != nil && appErr.Status >= 500 {
		h.logger.Error("request failed",
			applogger.String("path", c.Path()),
			applogger.Error(err),
		)
	}
	return pkghttp.AppErrorResponse(c, appErr)
}
