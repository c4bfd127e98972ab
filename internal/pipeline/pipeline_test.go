package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"PSXPipeline/internal/collector"
	"PSXPipeline/internal/config"
	"PSXPipeline/internal/model"
	"PSXPipeline/internal/recorder"
	"PSXPipeline/internal/store"
)

func newMockPipeline(t *testing.T) *Pipeline {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	base := t.TempDir()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.MetadataDir = filepath.Join(base, "metadata")
	cfg.Mock = true
	cfg.Synthetic.StartDate = "2024-01-01"

	st, err := store.New(cfg.Paths.DataDir, cfg.Paths.MetadataDir)
	if err != nil {
		t.Fatal(err)
	}
	return New(cfg, collector.NewMockFetcher(), st, recorder.NewNoopRecorder())
}

func TestSyncTickers_FirstRun(t *testing.T) {
	p := newMockPipeline(t)
	if err := p.SyncTickers(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}

	tickers, path, err := p.Store.LatestSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("expected a snapshot to be written")
	}
	if len(tickers) != len(collector.MockSymbols()) {
		t.Errorf("snapshot holds %d tickers, want %d", len(tickers), len(collector.MockSymbols()))
	}
	for _, tk := range tickers {
		if tk.Sector == model.UnknownSector {
			t.Errorf("ticker %s not enriched with a sector", tk.Symbol)
		}
		if tk.URL == "" {
			t.Errorf("ticker %s missing company URL", tk.Symbol)
		}
	}

	// First run: no reconciliation output, so no change log yet.
	if _, err := os.Stat(filepath.Join(p.Cfg.Paths.MetadataDir, "ticker_changes.log")); !os.IsNotExist(err) {
		t.Error("change log must not be written on the first run")
	}
}

func TestSyncTickers_SecondRunIsQuiet(t *testing.T) {
	p := newMockPipeline(t)
	ctx := context.Background()
	if err := p.SyncTickers(ctx); err != nil {
		t.Fatal(err)
	}
	if err := p.SyncTickers(ctx); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(p.Cfg.Paths.MetadataDir, "ticker_changes.log"))
	if err != nil {
		t.Fatalf("second run must write the change log: %v", err)
	}
	if !strings.Contains(string(data), "NO CHANGES") {
		t.Errorf("identical runs must log no changes, got:\n%s", data)
	}
}

func TestFullRun_WritesPriceData(t *testing.T) {
	p := newMockPipeline(t)
	p.Cfg.MaxTickers = 3
	if err := p.FullRun(context.Background()); err != nil {
		t.Fatalf("full run: %v", err)
	}

	for _, sym := range collector.MockSymbols()[:3] {
		path := filepath.Join(p.Cfg.Paths.DataDir, sym+".csv")
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected price csv for %s: %v", sym, err)
		}
		if !strings.HasPrefix(string(data), "date,open,high,low,close,volume\n") {
			t.Errorf("csv for %s missing header", sym)
		}
	}
	if _, err := os.Stat(filepath.Join(p.Cfg.Paths.DataDir, collector.MockSymbols()[3]+".csv")); !os.IsNotExist(err) {
		t.Error("max-tickers cap must limit historical downloads")
	}
}

func TestDownloadHistorical_RequiresSnapshot(t *testing.T) {
	p := newMockPipeline(t)
	if err := p.DownloadHistorical(context.Background()); err == nil {
		t.Error("expected error when no snapshot exists")
	}
}
