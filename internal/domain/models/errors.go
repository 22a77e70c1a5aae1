package models

import "errors"

// Error kinds for the serving path. Use cases return these (possibly
// wrapped); the HTTP boundary maps them to status codes so callers can
// distinguish a missing symbol from a missing model from an internal fault.
var (
	ErrSymbolNotFound         = errors.New("symbol not found")
	ErrClassifierUnavailable  = errors.New("classifier not loaded")
	ErrInvalidSymbol          = errors.New("invalid symbol")
	ErrFeatureStoreUnreadable = errors.New("feature store unreadable")
)
