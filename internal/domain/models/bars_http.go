package models

// Requests for the bar retrieval HTTP endpoints. Defined in domain for
// consistency and reuse.

type BarsRequest struct {
	DataType  string `json:"data_type" validate:"omitempty,oneof=stock etf crypto"`
	DataName  string `json:"data_name" validate:"required"`
	FromDate  string `json:"from_date" validate:"required"`
	ToDate    string `json:"to_date"`
	TimeFrame string `json:"time_frame" default:"1day"`
}

type IndicatorRequest struct {
	IndicatorName string         `json:"indicator_name" validate:"required"`
	SourceName    string         `json:"source_name" validate:"required"`
	DataType      string         `json:"data_type" validate:"omitempty,oneof=stock etf crypto"`
	FromDate      string         `json:"from_date" validate:"required"`
	ToDate        string         `json:"to_date"`
	TimeFrame     string         `json:"time_frame" default:"1day"`
	Kwargs        map[string]any `json:"kwargs"`
}
