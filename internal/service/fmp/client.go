package fmp

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"BarPull/internal/domain/models"
	drepo "BarPull/internal/domain/repository"
	"BarPull/internal/service/ratelimit"
	xhttp "BarPull/pkg/http"
	xlogger "BarPull/pkg/logger"
	"BarPull/pkg/util"
)

const (
	dailyDateLayout    = "2006-01-02"
	intradayDateLayout = "2006-01-02 15:04:05"

	limiterKey = "fmp"
)

// Client fetches historical bars from the Financial Modeling Prep API.
// It implements drepo.BarSource: one FetchBars call is one provider
// round-trip for one window.
type Client struct {
	apiKey   string
	baseURL  string
	extended bool

	http    *xhttp.Client
	limiter *ratelimit.Limiter
	rlCap   float64
	rlRate  float64

	metrics drepo.Metrics
	logger  *xlogger.Logger
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.http = xhttp.NewClient(xhttp.WithTimeout(d))
	}
}

// WithExtendedHours requests pre/post-market bars from the provider.
func WithExtendedHours(enabled bool) ClientOption {
	return func(c *Client) {
		c.extended = enabled
	}
}

// WithRateLimit guards upstream calls with a token bucket.
func WithRateLimit(l *ratelimit.Limiter, capacity, refillPerSec float64) ClientOption {
	return func(c *Client) {
		c.limiter = l
		c.rlCap = capacity
		c.rlRate = refillPerSec
	}
}

// WithMetrics attaches a telemetry recorder.
func WithMetrics(m drepo.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger attaches a structured logger.
func WithLogger(l *xlogger.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a new FMP client. The API key is injected here; nothing in
// the retrieval path reads it from the environment.
func New(apiKey, baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:   apiKey,
		baseURL:  baseURL,
		extended: true,
		http:     xhttp.NewClient(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// barPayload is the provider's bar object. The date field format depends
// on the endpoint: YYYY-MM-DD for daily, YYYY-MM-DD HH:MM:SS for intraday.
type barPayload struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// dailyPayload wraps the daily endpoint's response; the bar array sits
// under the "historical" key. An object without it means no data.
type dailyPayload struct {
	Symbol     string       `json:"symbol"`
	Historical []barPayload `json:"historical"`
}

// FetchBars performs one provider round-trip for window w and normalizes
// the response. The provider returns bars newest-first; the result is
// ascending. Row form converts exchange-local timestamps to UTC and trims
// to the last models.SeriesCap bars of this window; column form keeps
// provider-native date strings with no cap. An empty payload yields an
// empty series, not an error.
func (c *Client) FetchBars(ctx context.Context, symbol string, w models.Window, tf drepo.Timeframe, assetType models.AssetType, columns bool) (models.Series, error) {
	endpoint, rawURL, dateLayout := c.route(symbol, tf)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, limiterKey, c.rlCap, c.rlRate); err != nil {
			return models.Series{}, &models.FetchError{Endpoint: endpoint, Err: err}
		}
	}

	query := url.Values{}
	query.Set("apikey", c.apiKey)
	query.Set("from", util.FormatCalendarDate(w.Start))
	query.Set("to", util.FormatCalendarDate(w.End))
	if c.extended {
		query.Set("extended", "true")
	}

	if c.metrics != nil {
		c.metrics.RecordUpstreamRequest(endpoint)
	}
	if c.logger != nil {
		c.logger.Debug("fetching window",
			xlogger.String("symbol", symbol),
			xlogger.String("timeframe", string(tf)),
			xlogger.String("window", w.String()),
		)
	}

	start := time.Now()
	bars, err := c.request(ctx, endpoint, rawURL, query, tf)
	if c.metrics != nil {
		c.metrics.RecordLatency("upstream_fetch", time.Since(start).Seconds())
	}
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordError("upstream_fetch")
		}
		return models.Series{}, err
	}

	// Provider order is newest-first.
	reverse(bars)

	if columns {
		return models.Series{Columns: pivot(bars)}, nil
	}

	if len(bars) > models.SeriesCap {
		bars = bars[len(bars)-models.SeriesCap:]
	}

	out := make([]models.Bar, 0, len(bars))
	for _, b := range bars {
		ts, err := util.ParseProviderTime(b.Date, dateLayout)
		if err != nil {
			return models.Series{}, &models.FetchError{Endpoint: endpoint, Err: err}
		}
		out = append(out, models.Bar{
			Timestamp: ts,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		})
	}
	return models.Series{Bars: out}, nil
}

// route selects the daily or intraday endpoint for tf.
func (c *Client) route(symbol string, tf drepo.Timeframe) (endpoint, rawURL, dateLayout string) {
	if tf == drepo.TF1Day {
		return "daily", fmt.Sprintf("%s/historical-price-full/%s", c.baseURL, url.PathEscape(symbol)), dailyDateLayout
	}
	return "intraday", fmt.Sprintf("%s/historical-chart/%s/%s", c.baseURL, tf, url.PathEscape(symbol)), intradayDateLayout
}

func (c *Client) request(ctx context.Context, endpoint, rawURL string, query url.Values, tf drepo.Timeframe) ([]barPayload, error) {
	if tf == drepo.TF1Day {
		var payload dailyPayload
		if err := c.http.GetJSON(ctx, rawURL, query, &payload); err != nil {
			return nil, &models.FetchError{Endpoint: endpoint, Err: err}
		}
		return payload.Historical, nil
	}

	var payload []barPayload
	if err := c.http.GetJSON(ctx, rawURL, query, &payload); err != nil {
		return nil, &models.FetchError{Endpoint: endpoint, Err: err}
	}
	return payload, nil
}

func reverse(bars []barPayload) {
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
}

// pivot reshapes row bars into indicator-ready parallel arrays. Dates
// stay provider-native: no timezone conversion, no cap.
func pivot(bars []barPayload) *models.ColumnSeries {
	cs := &models.ColumnSeries{
		Open:   make([]float64, 0, len(bars)),
		High:   make([]float64, 0, len(bars)),
		Low:    make([]float64, 0, len(bars)),
		Close:  make([]float64, 0, len(bars)),
		Volume: make([]float64, 0, len(bars)),
		Date:   make([]string, 0, len(bars)),
	}
	for _, b := range bars {
		cs.Append(b.Date, b.Open, b.High, b.Low, b.Close, b.Volume)
	}
	return cs
}
