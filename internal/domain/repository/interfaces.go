package repository

import (
	"context"

	"BarPull/internal/domain/models"
)

// BarSource performs one network round-trip for a single window against
// the upstream provider and normalizes its response shape. columns selects
// the indicator-ready column form over the row form.
type BarSource interface {
	FetchBars(ctx context.Context, symbol string, w models.Window, tf Timeframe, assetType models.AssetType, columns bool) (models.Series, error)
}

// SymbolDirectory resolves a symbol against the provider's listing
// endpoints when a caller omits the asset type.
type SymbolDirectory interface {
	Resolve(ctx context.Context, symbol string) (models.AssetType, error)
}

// Metrics records retrieval telemetry.
type Metrics interface {
	RecordUpstreamRequest(endpoint string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordWindows(n int)
}
