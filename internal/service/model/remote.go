package model

import (
	"context"
	"fmt"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/service"
	pkghttp "StockCast/pkg/http"
)

// RemoteClassifier delegates scoring to an external model service over
// HTTP. Used when the artifact is hosted by a separate inference process
// instead of being loaded in this binary.
type RemoteClassifier struct {
	http    *pkghttp.Client
	baseURL string
}

// NewRemoteClassifier creates a client for the model service at baseURL.
func NewRemoteClassifier(baseURL string, timeout time.Duration) (*RemoteClassifier, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("model service url is required")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RemoteClassifier{
		http:    pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
		baseURL: baseURL,
	}, nil
}

type scoreRequest struct {
	Features []float64 `json:"features"`
}

type scoreResponse struct {
	Label int       `json:"label"`
	Proba []float64 `json:"proba"`
}

// Predict scores one feature vector via the model service. Transport
// failures surface as ErrClassifierUnavailable so the HTTP boundary
// returns 503 rather than 500.
func (c *RemoteClassifier) Predict(ctx context.Context, features []float64) (int, []float64, error) {
	var resp scoreResponse
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodPost,
		URL:    c.baseURL + "/score",
		Body:   scoreRequest{Features: features},
	}, &resp)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", models.ErrClassifierUnavailable, err)
	}

	if len(resp.Proba) != 2 {
		return 0, nil, fmt.Errorf("model service returned %d probabilities, want 2", len(resp.Proba))
	}
	if resp.Label != 0 && resp.Label != 1 {
		return 0, nil, fmt.Errorf("model service returned label %d, want 0 or 1", resp.Label)
	}
	return resp.Label, resp.Proba, nil
}

var _ service.DirectionClassifier = (*RemoteClassifier)(nil)
