package collector

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"PSXPipeline/internal/config"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// PSXFetcher implements Fetcher against the PSX data portal.
type PSXFetcher struct {
	BaseURL string
	Client  *http.Client

	marketWatchPath string
	companyPath     string
	historicalPath  string

	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
}

// NewPSXFetcher creates a live fetcher from the source configuration.
func NewPSXFetcher(cfg *config.Config) *PSXFetcher {
	return &PSXFetcher{
		BaseURL: cfg.Source.BaseURL,
		Client: &http.Client{
			Timeout: time.Duration(cfg.Source.RequestTimeout),
		},
		marketWatchPath: cfg.Source.MarketWatchPath,
		companyPath:     cfg.Source.CompanyPath,
		historicalPath:  cfg.Source.HistoricalPath,
		limiter:         rate.NewLimiter(rate.Limit(cfg.Source.RequestsPerSecond), 1),
		maxRetries:      cfg.Source.MaxRetries,
		retryDelay:      time.Duration(cfg.Source.RetryDelay),
	}
}

func (f *PSXFetcher) Name() string { return "psx" }

func (f *PSXFetcher) MarketWatch(ctx context.Context) (string, error) {
	return f.get(ctx, f.BaseURL+f.marketWatchPath, nil)
}

func (f *PSXFetcher) CompanyPage(ctx context.Context, symbol string) (string, error) {
	return f.get(ctx, f.BaseURL+f.companyPath+url.PathEscape(symbol), nil)
}

func (f *PSXFetcher) HistoricalData(ctx context.Context, symbol string, from, to time.Time) (string, error) {
	endpoint := f.BaseURL + fmt.Sprintf(f.historicalPath, url.PathEscape(symbol))
	params := map[string]string{
		"from": from.Format("2006-01-02"),
		"to":   to.Format("2006-01-02"),
	}
	return f.get(ctx, endpoint, params)
}

// get performs a GET with a fixed retry bound and fixed delay between
// attempts. It returns *FetchError once the budget is exhausted so that
// callers can skip the target instead of aborting the batch.
func (f *PSXFetcher) get(ctx context.Context, endpoint string, params map[string]string) (string, error) {
	var lastErr error
	lastStatus := 0

	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", err
		}

		body, status, err := f.doGet(ctx, endpoint, params)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if status != 0 {
			lastStatus = status
		}

		// A 404 will not change on retry.
		if status == http.StatusNotFound {
			break
		}

		if attempt < f.maxRetries {
			log.Printf("[WARN] fetch %s attempt %d/%d failed: %v, retrying in %s",
				endpoint, attempt, f.maxRetries, err, f.retryDelay)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(f.retryDelay):
			}
		}
	}

	return "", &FetchError{URL: endpoint, Attempts: f.maxRetries, Status: lastStatus, Err: lastErr}
}

func (f *PSXFetcher) doGet(ctx context.Context, endpoint string, params map[string]string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", 0, fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	for key, val := range params {
		q.Set(key, val)
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, fmt.Errorf("status %s", resp.Status)
	}
	return string(body), 0, nil
}
