package models

import "strings"

// AssetType routes a symbol to the upstream provider's endpoints.
type AssetType string

const (
	AssetStock  AssetType = "stock"
	AssetCrypto AssetType = "crypto"
)

// NormalizeAssetType maps a raw request value to a routable asset type.
// ETFs are served by the stock endpoints upstream, so "etf" folds into
// "stock". Returns false for anything else.
func NormalizeAssetType(raw string) (AssetType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "stock", "etf":
		return AssetStock, true
	case "crypto":
		return AssetCrypto, true
	default:
		return "", false
	}
}
