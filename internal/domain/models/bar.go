package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SeriesCap is the maximum number of bars a retrieval returns. When a
// requested range holds more, the chronologically last SeriesCap bars win.
const SeriesCap = 10000

// BarDatetimeLayout is the wire format for row-form timestamps after the
// UTC conversion ("2023-01-15 14:30:00+0000").
const BarDatetimeLayout = "2006-01-02 15:04:05-0700"

// Bar is one OHLCV observation for a fixed interval. Timestamp is UTC.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// MarshalJSON emits the row wire shape: a "datetime" string plus OHLCV.
func (b Bar) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(
		`{"datetime":%q,"open":%g,"high":%g,"low":%g,"close":%g,"volume":%g}`,
		b.Timestamp.Format(BarDatetimeLayout), b.Open, b.High, b.Low, b.Close, b.Volume,
	)), nil
}

// ColumnSeries is the column-oriented series used as indicator input:
// parallel arrays keyed by field, dates kept as provider-native strings.
type ColumnSeries struct {
	Open   []float64 `json:"open"`
	High   []float64 `json:"high"`
	Low    []float64 `json:"low"`
	Close  []float64 `json:"close"`
	Volume []float64 `json:"volume"`
	Date   []string  `json:"date"`
}

// Len returns the number of rows in the series.
func (cs *ColumnSeries) Len() int { return len(cs.Date) }

// Append adds one row to every column.
func (cs *ColumnSeries) Append(date string, open, high, low, close, volume float64) {
	cs.Open = append(cs.Open, open)
	cs.High = append(cs.High, high)
	cs.Low = append(cs.Low, low)
	cs.Close = append(cs.Close, close)
	cs.Volume = append(cs.Volume, volume)
	cs.Date = append(cs.Date, date)
}

// Series is the retrieval result: exactly one of Bars (row form) or
// Columns (column form) is populated, selected by the caller's request.
type Series struct {
	Bars    []Bar
	Columns *ColumnSeries
}

// MarshalJSON flattens the populated form.
func (s Series) MarshalJSON() ([]byte, error) {
	if s.Columns != nil {
		return json.Marshal(s.Columns)
	}
	if s.Bars == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.Bars)
}

// Window is one planner-produced [Start, End] sub-range, sized to respect
// the provider's per-request span limit. End >= Start.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) String() string {
	return fmt.Sprintf("%s..%s", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
}
