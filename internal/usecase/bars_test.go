package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"BarPull/internal/domain/models"
	drepo "BarPull/internal/domain/repository"
)

// fakeSource records fetch calls and serves canned bars per window.
type fakeSource struct {
	mu      sync.Mutex
	calls   int32
	windows []models.Window
	serve   func(w models.Window) (models.Series, error)
}

func (f *fakeSource) FetchBars(ctx context.Context, symbol string, w models.Window, tf drepo.Timeframe, at models.AssetType, columns bool) (models.Series, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.windows = append(f.windows, w)
	f.mu.Unlock()
	if f.serve != nil {
		return f.serve(w)
	}
	return models.Series{}, nil
}

func barAt(ts time.Time, close float64) models.Bar {
	return models.Bar{Timestamp: ts, Open: close, High: close, Low: close, Close: close, Volume: 1}
}

func TestGetBarsRejectsBeforeFetching(t *testing.T) {
	src := &fakeSource{}
	uc := NewBarsUseCase(src, nil, nil, ModeChunked, 4)

	from := day(2023, time.January, 1)
	to := day(2023, time.January, 31)

	cases := []struct {
		name string
		p    GetBarsParams
		want error
	}{
		{
			name: "unknown timeframe",
			p:    GetBarsParams{Symbol: "AAPL", From: from, To: to, Timeframe: "2min", AssetType: models.AssetStock},
			want: models.ErrInvalidTimeframe,
		},
		{
			name: "bad asset type",
			p:    GetBarsParams{Symbol: "AAPL", From: from, To: to, Timeframe: drepo.TF1Day, AssetType: "forex"},
			want: models.ErrInvalidAssetType,
		},
	}
	for _, c := range cases {
		if _, err := uc.GetBars(context.Background(), c.p); !errors.Is(err, c.want) {
			t.Fatalf("%s: err = %v, want %v", c.name, err, c.want)
		}
	}

	if _, err := uc.GetBars(context.Background(), GetBarsParams{Symbol: "", From: from, To: to, Timeframe: drepo.TF1Day, AssetType: models.AssetStock}); err == nil {
		t.Fatalf("empty symbol must fail")
	}
	if _, err := uc.GetBars(context.Background(), GetBarsParams{Symbol: "AAPL", From: to, To: from, Timeframe: drepo.TF1Day, AssetType: models.AssetStock}); err == nil {
		t.Fatalf("inverted range must fail")
	}

	if n := atomic.LoadInt32(&src.calls); n != 0 {
		t.Fatalf("validation failures reached the source %d times", n)
	}
}

func TestGetBarsSingleWindowSkipsPlanning(t *testing.T) {
	src := &fakeSource{}
	uc := NewBarsUseCase(src, nil, nil, ModeChunked, 4)

	_, err := uc.GetBars(context.Background(), GetBarsParams{
		Symbol:    "AAPL",
		From:      day(2023, time.June, 1),
		To:        day(2023, time.June, 2),
		Timeframe: drepo.TF1Min, // 3-day limit
		AssetType: models.AssetStock,
	})
	if err != nil {
		t.Fatalf("GetBars: %v", err)
	}
	if n := atomic.LoadInt32(&src.calls); n != 1 {
		t.Fatalf("fetch calls = %d, want 1", n)
	}
	if !src.windows[0].Start.Equal(day(2023, time.June, 1)) || !src.windows[0].End.Equal(day(2023, time.June, 2)) {
		t.Fatalf("window = %v, want the requested range untouched", src.windows[0])
	}
}

func TestGetBarsDirectModeIgnoresRangeLimits(t *testing.T) {
	src := &fakeSource{}
	uc := NewBarsUseCase(src, nil, nil, ModeDirect, 4)

	_, err := uc.GetBars(context.Background(), GetBarsParams{
		Symbol:    "AAPL",
		From:      day(2020, time.January, 1),
		To:        day(2023, time.January, 1),
		Timeframe: drepo.TF1Min,
		AssetType: models.AssetStock,
	})
	if err != nil {
		t.Fatalf("GetBars: %v", err)
	}
	if n := atomic.LoadInt32(&src.calls); n != 1 {
		t.Fatalf("direct mode issued %d calls, want 1", n)
	}
}

func TestGetBarsDirectModeServes45Min(t *testing.T) {
	src := &fakeSource{}
	uc := NewBarsUseCase(src, nil, nil, ModeDirect, 4)

	_, err := uc.GetBars(context.Background(), GetBarsParams{
		Symbol:    "AAPL",
		From:      day(2023, time.June, 1),
		To:        day(2023, time.June, 2),
		Timeframe: drepo.TF45Min,
		AssetType: models.AssetStock,
	})
	if err != nil {
		t.Fatalf("direct 45min: %v", err)
	}

	// Chunked mode has no range limit on record for 45min and refuses it.
	chunked := NewBarsUseCase(&fakeSource{}, nil, nil, ModeChunked, 4)
	if _, err := chunked.GetBars(context.Background(), GetBarsParams{
		Symbol:    "AAPL",
		From:      day(2023, time.June, 1),
		To:        day(2023, time.June, 2),
		Timeframe: drepo.TF45Min,
		AssetType: models.AssetStock,
	}); !errors.Is(err, models.ErrInvalidTimeframe) {
		t.Fatalf("chunked 45min err = %v, want ErrInvalidTimeframe", err)
	}
}

func TestGetBarsChunkedFetchesAllWindows(t *testing.T) {
	src := &fakeSource{
		serve: func(w models.Window) (models.Series, error) {
			return models.Series{Bars: []models.Bar{barAt(w.Start, 1), barAt(w.End, 2)}}, nil
		},
	}
	uc := NewBarsUseCase(src, nil, nil, ModeChunked, 4)

	got, err := uc.GetBars(context.Background(), GetBarsParams{
		Symbol:    "AAPL",
		From:      day(2023, time.January, 1),
		To:        day(2023, time.January, 7),
		Timeframe: drepo.TF1Min, // 3-day windows: 3 of them
		AssetType: models.AssetStock,
	})
	if err != nil {
		t.Fatalf("GetBars: %v", err)
	}
	if n := atomic.LoadInt32(&src.calls); n != 3 {
		t.Fatalf("fetch calls = %d, want 3", n)
	}
	if len(got.Bars) != 6 {
		t.Fatalf("merged bars = %d, want 6", len(got.Bars))
	}
	for i := 1; i < len(got.Bars); i++ {
		if got.Bars[i].Timestamp.Before(got.Bars[i-1].Timestamp) {
			t.Fatalf("merged series out of order at %d", i)
		}
	}
}

func TestGetBarsChunkedSurfacesWindowError(t *testing.T) {
	boom := errors.New("upstream down")
	var served int32
	src := &fakeSource{
		serve: func(w models.Window) (models.Series, error) {
			if w.End.Equal(day(2023, time.January, 4)) {
				return models.Series{}, boom
			}
			atomic.AddInt32(&served, 1)
			return models.Series{Bars: []models.Bar{barAt(w.Start, 1)}}, nil
		},
	}
	uc := NewBarsUseCase(src, nil, nil, ModeChunked, 4)

	_, err := uc.GetBars(context.Background(), GetBarsParams{
		Symbol:    "AAPL",
		From:      day(2023, time.January, 1),
		To:        day(2023, time.January, 7),
		Timeframe: drepo.TF1Min,
		AssetType: models.AssetStock,
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped upstream error", err)
	}
	// Sibling windows run to completion; the failure does not cancel them.
	if atomic.LoadInt32(&src.calls) != 3 {
		t.Fatalf("fetch calls = %d, want all 3 dispatched", src.calls)
	}
	if atomic.LoadInt32(&served) != 2 {
		t.Fatalf("healthy windows served = %d, want 2", served)
	}
}

func TestMergeBarsCapsAndKeepsNewest(t *testing.T) {
	old := models.Series{Bars: make([]models.Bar, 0, 6000)}
	recent := models.Series{Bars: make([]models.Bar, 0, 6000)}
	base := day(2023, time.January, 1)
	for i := 0; i < 6000; i++ {
		old.Bars = append(old.Bars, barAt(base.Add(time.Duration(i)*time.Minute), 1))
	}
	for i := 0; i < 6000; i++ {
		recent.Bars = append(recent.Bars, barAt(base.Add(time.Duration(6000+i)*time.Minute), 2))
	}

	// Planner emits newest first; merge must still come out ascending.
	merged := mergeBars([]models.Series{recent, old})
	if len(merged.Bars) != models.SeriesCap {
		t.Fatalf("merged len = %d, want %d", len(merged.Bars), models.SeriesCap)
	}
	last := merged.Bars[len(merged.Bars)-1]
	if !last.Timestamp.Equal(base.Add(11999 * time.Minute)) {
		t.Fatalf("cap must drop the oldest bars, last = %v", last.Timestamp)
	}
	if merged.Bars[0].Timestamp.After(merged.Bars[1].Timestamp) {
		t.Fatalf("merged series must be ascending")
	}
}

func TestMergeBarsKeepsDuplicateTimestamps(t *testing.T) {
	ts := day(2023, time.March, 1)
	a := models.Series{Bars: []models.Bar{barAt(ts, 1)}}
	b := models.Series{Bars: []models.Bar{barAt(ts, 2)}}

	merged := mergeBars([]models.Series{a, b})
	if len(merged.Bars) != 2 {
		t.Fatalf("overlapping windows must not be deduplicated, got %d bars", len(merged.Bars))
	}
}

func TestGetBarsColumnsMergeOldestFirst(t *testing.T) {
	src := &fakeSource{
		serve: func(w models.Window) (models.Series, error) {
			cs := &models.ColumnSeries{}
			cs.Append(w.Start.Format("2006-01-02"), 1, 1, 1, 1, 1)
			return models.Series{Columns: cs}, nil
		},
	}
	uc := NewBarsUseCase(src, nil, nil, ModeChunked, 4)

	got, err := uc.GetBars(context.Background(), GetBarsParams{
		Symbol:    "AAPL",
		From:      day(2023, time.January, 1),
		To:        day(2023, time.January, 7),
		Timeframe: drepo.TF1Min,
		AssetType: models.AssetStock,
		Columns:   true,
	})
	if err != nil {
		t.Fatalf("GetBars: %v", err)
	}
	if got.Columns == nil {
		t.Fatalf("expected column series")
	}
	want := []string{"2022-12-30", "2023-01-02", "2023-01-05"}
	if len(got.Columns.Date) != len(want) {
		t.Fatalf("dates = %v, want %v", got.Columns.Date, want)
	}
	for i, d := range want {
		if got.Columns.Date[i] != d {
			t.Fatalf("dates[%d] = %s, want %s (oldest window first)", i, got.Columns.Date[i], d)
		}
	}
	if fmt.Sprint(len(got.Columns.Open), len(got.Columns.Close), len(got.Columns.Volume)) != "3 3 3" {
		t.Fatalf("column lengths diverge")
	}
}
