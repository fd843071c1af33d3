package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"BarPull/internal/domain/models"
	drepo "BarPull/internal/domain/repository"
	xlogger "BarPull/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Retrieval modes. Direct issues exactly one provider request for the
// whole range (the provider silently truncates over-long ranges);
// chunked splits long ranges into provider-sized windows fetched
// concurrently.
const (
	ModeDirect  = "direct"
	ModeChunked = "chunked"
)

// BarsUseCase is the retrieval entry point: it validates requests,
// decides between the direct and chunked paths, and merges chunked
// results into one series.
type BarsUseCase struct {
	source  drepo.BarSource
	metrics drepo.Metrics
	logger  *xlogger.Logger
	mode    string
	workers int
}

func NewBarsUseCase(source drepo.BarSource, metrics drepo.Metrics, logger *xlogger.Logger, mode string, workers int) *BarsUseCase {
	if mode != ModeDirect {
		mode = ModeChunked
	}
	if workers <= 0 {
		workers = 10
	}
	return &BarsUseCase{source: source, metrics: metrics, logger: logger, mode: mode, workers: workers}
}

type GetBarsParams struct {
	Symbol    string
	From      time.Time
	To        time.Time
	Timeframe drepo.Timeframe
	AssetType models.AssetType
	Columns   bool
}

// GetBars retrieves the bar series for p. Validation failures surface
// before any network call; a single failing window aborts the whole
// retrieval.
func (uc *BarsUseCase) GetBars(ctx context.Context, p GetBarsParams) (models.Series, error) {
	if p.Symbol == "" {
		return models.Series{}, fmt.Errorf("symbol required")
	}
	if !drepo.IsValidTimeframe(p.Timeframe) {
		return models.Series{}, fmt.Errorf("%w: %q", models.ErrInvalidTimeframe, p.Timeframe)
	}
	if p.AssetType != models.AssetStock && p.AssetType != models.AssetCrypto {
		return models.Series{}, fmt.Errorf("%w: got %q", models.ErrInvalidAssetType, p.AssetType)
	}
	if p.From.After(p.To) {
		return models.Series{}, fmt.Errorf("from must be <= to")
	}

	whole := models.Window{Start: p.From, End: p.To}

	if uc.mode == ModeDirect {
		return uc.source.FetchBars(ctx, p.Symbol, whole, p.Timeframe, p.AssetType, p.Columns)
	}

	spec, err := drepo.Spec(p.Timeframe)
	if err != nil {
		return models.Series{}, err
	}

	if fitsSingleWindow(spec, p.From, p.To) {
		if uc.metrics != nil {
			uc.metrics.RecordWindows(1)
		}
		return uc.source.FetchBars(ctx, p.Symbol, whole, p.Timeframe, p.AssetType, p.Columns)
	}

	windows := PlanWindows(spec, p.AssetType, p.From, p.To)
	if uc.metrics != nil {
		uc.metrics.RecordWindows(len(windows))
	}
	if uc.logger != nil {
		uc.logger.Info("chunked retrieval",
			xlogger.String("symbol", p.Symbol),
			xlogger.String("timeframe", string(p.Timeframe)),
			xlogger.Int("windows", len(windows)),
		)
	}
	return uc.retrieveParallel(ctx, p, windows)
}

// retrieveParallel fetches one window per task on a bounded pool and
// merges the results. Completion order is non-deterministic; ordering is
// restored by an explicit sort. Failure handling is fail-soft: the pool
// lets every dispatched fetch run to completion and then surfaces the
// first error, with no cancellation of in-flight siblings.
func (uc *BarsUseCase) retrieveParallel(ctx context.Context, p GetBarsParams, windows []models.Window) (models.Series, error) {
	results := make([]models.Series, len(windows))

	eg := new(errgroup.Group)
	eg.SetLimit(uc.workers)
	for i, w := range windows {
		i, w := i, w
		eg.Go(func() error {
			s, err := uc.source.FetchBars(ctx, p.Symbol, w, p.Timeframe, p.AssetType, p.Columns)
			if err != nil {
				return fmt.Errorf("window %s: %w", w, err)
			}
			results[i] = s
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return models.Series{}, err
	}

	if p.Columns {
		return mergeColumns(results), nil
	}
	return mergeBars(results), nil
}

// mergeBars concatenates per-window bars, restores chronological order,
// and keeps the last models.SeriesCap entries. Overlapping windows can
// contribute duplicate timestamps; they are kept as-is.
func mergeBars(results []models.Series) models.Series {
	total := 0
	for _, r := range results {
		total += len(r.Bars)
	}
	merged := make([]models.Bar, 0, total)
	for _, r := range results {
		merged = append(merged, r.Bars...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})

	if len(merged) > models.SeriesCap {
		merged = merged[len(merged)-models.SeriesCap:]
	}
	return models.Series{Bars: merged}
}

// mergeColumns concatenates per-window column series oldest window
// first. Windows are planned newest-first, so iteration runs backward.
// Provider-native date strings are zero-padded and therefore already
// collate chronologically within each endpoint's format; no cap applies
// to indicator input.
func mergeColumns(results []models.Series) models.Series {
	merged := &models.ColumnSeries{}
	for i := len(results) - 1; i >= 0; i-- {
		cs := results[i].Columns
		if cs == nil {
			continue
		}
		merged.Open = append(merged.Open, cs.Open...)
		merged.High = append(merged.High, cs.High...)
		merged.Low = append(merged.Low, cs.Low...)
		merged.Close = append(merged.Close, cs.Close...)
		merged.Volume = append(merged.Volume, cs.Volume...)
		merged.Date = append(merged.Date, cs.Date...)
	}
	return models.Series{Columns: merged}
}
