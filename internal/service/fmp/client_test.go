package fmp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"BarPull/internal/domain/models"
	drepo "BarPull/internal/domain/repository"
)

func window(fromY int, fromM time.Month, fromD, toY int, toM time.Month, toD int) models.Window {
	return models.Window{
		Start: time.Date(fromY, fromM, fromD, 0, 0, 0, 0, time.UTC),
		End:   time.Date(toY, toM, toD, 0, 0, 0, 0, time.UTC),
	}
}

func TestFetchBarsIntraday(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		// Provider order is newest first.
		_, _ = w.Write([]byte(`[
			{"date":"2023-01-16 09:35:00","open":10,"high":11,"low":9,"close":10.5,"volume":100},
			{"date":"2023-01-16 09:30:00","open":9,"high":10,"low":8,"close":10,"volume":200}
		]`))
	}))
	defer srv.Close()

	c := New("test-key", srv.URL, WithExtendedHours(true))
	got, err := c.FetchBars(context.Background(), "AAPL", window(2023, time.January, 14, 2023, time.January, 16), drepo.TF5Min, models.AssetStock, false)
	if err != nil {
		t.Fatalf("FetchBars: %v", err)
	}

	if gotPath != "/historical-chart/5min/AAPL" {
		t.Fatalf("path = %s", gotPath)
	}
	for k, want := range map[string]string{
		"apikey":   "test-key",
		"from":     "2023-01-14",
		"to":       "2023-01-16",
		"extended": "true",
	} {
		if len(gotQuery[k]) != 1 || gotQuery[k][0] != want {
			t.Fatalf("query[%s] = %v, want %s", k, gotQuery[k], want)
		}
	}

	if len(got.Bars) != 2 {
		t.Fatalf("bars = %d, want 2", len(got.Bars))
	}
	// Ascending after reversal, exchange-local converted to UTC (EST = UTC-5).
	first := got.Bars[0]
	if want := time.Date(2023, time.January, 16, 14, 30, 0, 0, time.UTC); !first.Timestamp.Equal(want) {
		t.Fatalf("first timestamp = %v, want %v", first.Timestamp, want)
	}
	if first.Close != 10 || got.Bars[1].Close != 10.5 {
		t.Fatalf("bars not reversed to ascending: %v then %v", first.Close, got.Bars[1].Close)
	}
}

func TestFetchBarsDailyUnwrapsHistorical(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"symbol":"AAPL","historical":[
			{"date":"2023-01-16","open":10,"high":11,"low":9,"close":10.5,"volume":100},
			{"date":"2023-01-13","open":9,"high":10,"low":8,"close":10,"volume":200}
		]}`))
	}))
	defer srv.Close()

	c := New("k", srv.URL)
	got, err := c.FetchBars(context.Background(), "AAPL", window(2023, time.January, 1, 2023, time.January, 16), drepo.TF1Day, models.AssetStock, false)
	if err != nil {
		t.Fatalf("FetchBars: %v", err)
	}
	if gotPath != "/historical-price-full/AAPL" {
		t.Fatalf("path = %s", gotPath)
	}
	if len(got.Bars) != 2 {
		t.Fatalf("bars = %d, want 2", len(got.Bars))
	}
	// Daily dates carry no clock; midnight Eastern converts to 05:00 UTC.
	if want := time.Date(2023, time.January, 13, 5, 0, 0, 0, time.UTC); !got.Bars[0].Timestamp.Equal(want) {
		t.Fatalf("first timestamp = %v, want %v", got.Bars[0].Timestamp, want)
	}
}

func TestFetchBarsEmptyPayloads(t *testing.T) {
	daily := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer daily.Close()

	c := New("k", daily.URL)
	got, err := c.FetchBars(context.Background(), "ZZZZ", window(2023, time.January, 1, 2023, time.January, 2), drepo.TF1Day, models.AssetStock, false)
	if err != nil {
		t.Fatalf("empty daily payload must not error: %v", err)
	}
	if len(got.Bars) != 0 {
		t.Fatalf("bars = %d, want 0", len(got.Bars))
	}

	intraday := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer intraday.Close()

	c = New("k", intraday.URL)
	got, err = c.FetchBars(context.Background(), "ZZZZ", window(2023, time.January, 1, 2023, time.January, 2), drepo.TF5Min, models.AssetStock, false)
	if err != nil {
		t.Fatalf("empty intraday payload must not error: %v", err)
	}
	if len(got.Bars) != 0 {
		t.Fatalf("bars = %d, want 0", len(got.Bars))
	}
}

func TestFetchBarsColumnForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"date":"2023-01-16 09:35:00","open":10,"high":11,"low":9,"close":10.5,"volume":100},
			{"date":"2023-01-16 09:30:00","open":9,"high":10,"low":8,"close":10,"volume":200}
		]`))
	}))
	defer srv.Close()

	c := New("k", srv.URL)
	got, err := c.FetchBars(context.Background(), "AAPL", window(2023, time.January, 16, 2023, time.January, 16), drepo.TF5Min, models.AssetStock, true)
	if err != nil {
		t.Fatalf("FetchBars: %v", err)
	}
	cs := got.Columns
	if cs == nil {
		t.Fatalf("expected column series")
	}
	if cs.Len() != 2 {
		t.Fatalf("rows = %d, want 2", cs.Len())
	}
	// Dates stay provider-native: ascending but not timezone-converted.
	if cs.Date[0] != "2023-01-16 09:30:00" || cs.Date[1] != "2023-01-16 09:35:00" {
		t.Fatalf("dates = %v", cs.Date)
	}
	if cs.Open[0] != 9 || cs.Close[1] != 10.5 || cs.Volume[0] != 200 {
		t.Fatalf("column values misaligned: %+v", cs)
	}
}

func TestFetchBarsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Limit Reach", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New("k", srv.URL)
	_, err := c.FetchBars(context.Background(), "AAPL", window(2023, time.January, 1, 2023, time.January, 2), drepo.TF5Min, models.AssetStock, false)
	var fe *models.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *models.FetchError", err)
	}
	if fe.Endpoint != "intraday" {
		t.Fatalf("endpoint = %s, want intraday", fe.Endpoint)
	}
}

func TestFetchBarsNonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	c := New("k", srv.URL)
	_, err := c.FetchBars(context.Background(), "AAPL", window(2023, time.January, 1, 2023, time.January, 2), drepo.TF1Day, models.AssetStock, false)
	var fe *models.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *models.FetchError", err)
	}
}
