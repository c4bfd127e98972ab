package collector

import (
	"context"
	"time"
)

// Fetcher defines the interface for retrieving raw pages from the exchange.
// Implementations return the response body as-is; parsing is the caller's job.
type Fetcher interface {
	MarketWatch(ctx context.Context) (string, error)
	CompanyPage(ctx context.Context, symbol string) (string, error)
	HistoricalData(ctx context.Context, symbol string, from, to time.Time) (string, error)
	Name() string
}
