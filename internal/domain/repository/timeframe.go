package repository

import (
	"fmt"
	"strings"

	"BarPull/internal/domain/models"
)

// Timeframe is the bar interval requested from the upstream provider.
type Timeframe string

const (
	TF1Min   Timeframe = "1min"
	TF5Min   Timeframe = "5min"
	TF15Min  Timeframe = "15min"
	TF30Min  Timeframe = "30min"
	TF45Min  Timeframe = "45min"
	TF1Hour  Timeframe = "1hour"
	TF4Hour  Timeframe = "4hour"
	TF1Day   Timeframe = "1day"
	TF1Week  Timeframe = "1week"
	TF1Month Timeframe = "1month"
	TF1Year  Timeframe = "1year"
)

// TimeframeSpec carries the provider's per-request range limit for one
// timeframe plus the expected bar count over that full range.
// PointsMarketHours assumes only exchange hours (09:30-16:00) produce
// bars; PointsContinuous assumes round-the-clock trading (crypto).
type TimeframeSpec struct {
	MaxRangeDays      int
	PointsMarketHours int
	PointsContinuous  int
}

// ExpectedPoints returns the bar count one full-span window should yield
// for the given asset type.
func (s TimeframeSpec) ExpectedPoints(assetType models.AssetType) int {
	if assetType == models.AssetCrypto {
		return s.PointsContinuous
	}
	return s.PointsMarketHours
}

const (
	marketMinutesPerDay = 390 // 09:30 to 16:00
	fullMinutesPerDay   = 1440
)

func intradaySpec(barMinutes, maxRangeDays int) TimeframeSpec {
	return TimeframeSpec{
		MaxRangeDays:      maxRangeDays,
		PointsMarketHours: maxRangeDays * marketMinutesPerDay / barMinutes,
		PointsContinuous:  maxRangeDays * fullMinutesPerDay / barMinutes,
	}
}

func coarseSpec(maxRangeDays, daysPerBar int) TimeframeSpec {
	points := maxRangeDays / daysPerBar
	return TimeframeSpec{
		MaxRangeDays:      maxRangeDays,
		PointsMarketHours: points,
		PointsContinuous:  points,
	}
}

// timeframeSpecs is fixed at process start. 45min is deliberately absent:
// the provider serves it on the intraday endpoint but publishes no range
// limit for it, so only direct (single-call) retrieval supports it.
var timeframeSpecs = map[Timeframe]TimeframeSpec{
	TF1Min:   intradaySpec(1, 3),
	TF5Min:   intradaySpec(5, 10),
	TF15Min:  intradaySpec(15, 45),
	TF30Min:  intradaySpec(30, 30),
	TF1Hour:  intradaySpec(60, 90),
	TF4Hour:  intradaySpec(240, 180),
	TF1Day:   coarseSpec(1825, 1),
	TF1Week:  coarseSpec(14600, 7),
	TF1Month: coarseSpec(14600, 30),
	TF1Year:  coarseSpec(14600, 365),
}

var allTimeframes = []Timeframe{
	TF1Min, TF5Min, TF15Min, TF30Min, TF45Min,
	TF1Hour, TF4Hour, TF1Day, TF1Week, TF1Month, TF1Year,
}

// IsValidTimeframe reports whether tf can be fetched at all.
func IsValidTimeframe(tf Timeframe) bool {
	for _, t := range allTimeframes {
		if t == tf {
			return true
		}
	}
	return false
}

// SupportedTimeframes returns every fetchable timeframe in ascending
// interval order.
func SupportedTimeframes() []Timeframe {
	out := make([]Timeframe, len(allTimeframes))
	copy(out, allTimeframes)
	return out
}

// Spec returns the range-limit spec for tf. Timeframes without a spec
// (and unknown ones) fail with ErrInvalidTimeframe before any planning
// or network activity happens.
func Spec(tf Timeframe) (TimeframeSpec, error) {
	s, ok := timeframeSpecs[tf]
	if !ok {
		return TimeframeSpec{}, fmt.Errorf("%w: %q", models.ErrInvalidTimeframe, tf)
	}
	return s, nil
}

// DefaultTimeframe is used when a request omits time_frame.
func DefaultTimeframe() Timeframe { return TF1Day }

// NormalizeTimeframe lowercases raw input and falls back to the default
// for empty strings. Unknown values pass through so validation can name
// them in the error.
func NormalizeTimeframe(s string) Timeframe {
	if s == "" {
		return DefaultTimeframe()
	}
	return Timeframe(strings.ToLower(strings.TrimSpace(s)))
}
