package usecase

import (
	"context"
	"strconv"
	"time"

	"BarPull/internal/domain/models"
	drepo "BarPull/internal/domain/repository"
	"BarPull/internal/service/indicator"
)

// IndicatorsUseCase retrieves indicator-ready bars and feeds them to the
// indicator engine. It owns no indicator math.
type IndicatorsUseCase struct {
	bars   *BarsUseCase
	engine *indicator.Engine
}

func NewIndicatorsUseCase(bars *BarsUseCase, engine *indicator.Engine) *IndicatorsUseCase {
	return &IndicatorsUseCase{bars: bars, engine: engine}
}

type GetIndicatorParams struct {
	Indicator string
	Symbol    string
	From      time.Time
	To        time.Time
	Timeframe drepo.Timeframe
	AssetType models.AssetType
	Kwargs    map[string]any
}

// GetIndicator computes the named indicator over the requested range.
// Each output column is trimmed to the last models.SeriesCap points.
func (uc *IndicatorsUseCase) GetIndicator(ctx context.Context, p GetIndicatorParams) (map[string]indicator.Series, error) {
	series, err := uc.bars.GetBars(ctx, GetBarsParams{
		Symbol:    p.Symbol,
		From:      p.From,
		To:        p.To,
		Timeframe: p.Timeframe,
		AssetType: p.AssetType,
		Columns:   true,
	})
	if err != nil {
		return nil, err
	}

	out, err := uc.engine.Compute(p.Indicator, series.Columns, coerceKwargs(p.Kwargs))
	if err != nil {
		return nil, err
	}

	for name, col := range out {
		if len(col) > models.SeriesCap {
			out[name] = col[len(col)-models.SeriesCap:]
		}
	}
	return out, nil
}

// Describe exposes the engine's grouped indicator catalog.
func (uc *IndicatorsUseCase) Describe() map[string]map[string]indicator.Info {
	return uc.engine.Describe()
}

// coerceKwargs converts JSON kwargs to named float parameters. Clients
// round-trip defaults through form fields, so numeric strings count as
// numbers too; anything else is dropped.
func coerceKwargs(kwargs map[string]any) map[string]float64 {
	out := make(map[string]float64, len(kwargs))
	for k, v := range kwargs {
		switch t := v.(type) {
		case float64:
			out[k] = t
		case int:
			out[k] = float64(t)
		case string:
			if f, err := strconv.ParseFloat(t, 64); err == nil {
				out[k] = f
			}
		}
	}
	return out
}
