package fmp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"BarPull/internal/domain/models"
	"BarPull/pkg/cache"
)

// listing is one row of the provider's symbol list endpoints.
type listing struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Directory resolves symbols against the provider's listing endpoints.
// Listings change rarely, so they are cached; bar data itself is never
// cached here.
type Directory struct {
	client *Client
	cache  cache.Service
	ttl    time.Duration
}

// NewDirectory creates a symbol directory backed by c.
func NewDirectory(c *Client, cacheSvc cache.Service, ttl time.Duration) *Directory {
	return &Directory{client: c, cache: cacheSvc, ttl: ttl}
}

// listPaths maps a listing kind to its endpoint path.
var listPaths = map[string]string{
	"stock":  "stock/list",
	"etf":    "etf/list",
	"crypto": "symbol/available-cryptocurrencies",
}

// listSymbols returns the lowercased symbols of one listing kind,
// consulting the cache first.
func (d *Directory) listSymbols(ctx context.Context, kind string) ([]string, error) {
	key := "symbols:" + kind
	if d.cache != nil {
		var cached []string
		if err := d.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			return nil, fmt.Errorf("symbol cache: %w", err)
		}
	}

	path, ok := listPaths[kind]
	if !ok {
		return nil, fmt.Errorf("unknown listing kind %q", kind)
	}

	query := url.Values{}
	query.Set("apikey", d.client.apiKey)

	var rows []listing
	if err := d.client.http.GetJSON(ctx, d.client.baseURL+"/"+path, query, &rows); err != nil {
		return nil, &models.FetchError{Endpoint: path, Err: err}
	}

	symbols := make([]string, 0, len(rows))
	for _, r := range rows {
		symbols = append(symbols, strings.ToLower(r.Symbol))
	}

	if d.cache != nil {
		_ = d.cache.Set(ctx, key, symbols, d.ttl)
	}
	return symbols, nil
}

// Resolve finds the asset type serving symbol. ETFs resolve as stock,
// matching the provider's endpoint routing.
func (d *Directory) Resolve(ctx context.Context, symbol string) (models.AssetType, error) {
	want := strings.ToLower(symbol)
	for _, kind := range []string{"stock", "etf", "crypto"} {
		symbols, err := d.listSymbols(ctx, kind)
		if err != nil {
			return "", err
		}
		for _, s := range symbols {
			if s == want {
				if kind == "crypto" {
					return models.AssetCrypto, nil
				}
				return models.AssetStock, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %q", models.ErrSymbolUnknown, symbol)
}
