package models

import (
	"errors"
	"fmt"
)

// Validation failures are raised synchronously, before any network call.
var (
	ErrInvalidTimeframe = errors.New("invalid timeframe")
	ErrInvalidAssetType = errors.New("invalid asset type: must be 'stock' or 'crypto'")
	ErrSymbolUnknown    = errors.New("symbol not found in provider directory")
)

// FetchError wraps any upstream failure: transport errors, non-2xx
// statuses, and malformed response bodies. A single failing window aborts
// the whole retrieval; there is no partial-success mode.
type FetchError struct {
	Endpoint string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("upstream fetch %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
