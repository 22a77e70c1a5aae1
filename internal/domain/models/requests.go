package models

// Requests for the prediction HTTP endpoints. Defined in domain for
// consistency and reuse.

type PredictRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,min=1,max=12"`
}

type SymbolsRequest struct {
	Limit int `query:"limit" json:"limit" default:"0" validate:"gte=0,lte=10000"`
}
