package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"PSXPipeline/internal/config"
)

func testFetcher(t *testing.T, baseURL string) *PSXFetcher {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Source.BaseURL = baseURL
	cfg.Source.RetryDelay = config.Duration(time.Millisecond)
	cfg.Source.RequestsPerSecond = 10000
	return NewPSXFetcher(cfg)
}

func TestPSXFetcher_MarketWatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/market-watch" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("<html>listing</html>"))
	}))
	defer srv.Close()

	body, err := testFetcher(t, srv.URL).MarketWatch(context.Background())
	if err != nil {
		t.Fatalf("market watch: %v", err)
	}
	if body != "<html>listing</html>" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestPSXFetcher_RetriesThenSucceeds(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := testFetcher(t, srv.URL).CompanyPage(context.Background(), "HBL")
	if err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if body != "ok" || calls != 3 {
		t.Errorf("body %q after %d calls", body, calls)
	}
}

func TestPSXFetcher_ExhaustedRetriesReturnFetchError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := testFetcher(t, srv.URL)
	_, err := f.CompanyPage(context.Background(), "HBL")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %T: %v", err, err)
	}
	if fe.Attempts != f.maxRetries || fe.Status != http.StatusInternalServerError {
		t.Errorf("unexpected FetchError %+v", fe)
	}
	if calls != f.maxRetries {
		t.Errorf("expected %d attempts, got %d", f.maxRetries, calls)
	}
}

func TestPSXFetcher_NotFoundDoesNotRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := testFetcher(t, srv.URL).CompanyPage(context.Background(), "GONE")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if calls != 1 {
		t.Errorf("404 must not be retried, got %d attempts", calls)
	}
}

func TestPSXFetcher_HistoricalParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/company/HBL/historical" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("from") != "2014-01-01" || r.URL.Query().Get("to") != "2024-06-03" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	from := time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	if _, err := testFetcher(t, srv.URL).HistoricalData(context.Background(), "HBL", from, to); err != nil {
		t.Fatalf("historical data: %v", err)
	}
}

func TestMockFetcher_StablePayloads(t *testing.T) {
	m := NewMockFetcher()
	ctx := context.Background()

	first, err := m.MarketWatch(ctx)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := m.MarketWatch(ctx)
	if first != second {
		t.Error("mock market watch payload must be stable")
	}

	page, err := m.CompanyPage(ctx, "HBL")
	if err != nil {
		t.Fatal(err)
	}
	if page == "" {
		t.Error("expected canned company page for HBL")
	}

	missing, _ := m.CompanyPage(ctx, "NOPE")
	if missing == "" || missing == page {
		t.Error("unknown symbols must get a distinct not-found page")
	}
}
