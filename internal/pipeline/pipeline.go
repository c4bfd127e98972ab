// Package pipeline wires the fetch -> parse -> reconcile -> persist
// sequence behind the CLI modes. Execution is strictly sequential: one
// ticker at a time, one run at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"PSXPipeline/internal/calculator"
	"PSXPipeline/internal/collector"
	"PSXPipeline/internal/config"
	"PSXPipeline/internal/model"
	"PSXPipeline/internal/parser"
	"PSXPipeline/internal/reconcile"
	"PSXPipeline/internal/recorder"
	"PSXPipeline/internal/store"
	"PSXPipeline/internal/synth"
)

// Pipeline orchestrates the data-collection runs.
type Pipeline struct {
	Cfg      *config.Config
	Fetcher  collector.Fetcher
	Store    *store.Store
	Recorder recorder.Recorder
}

func New(cfg *config.Config, fetcher collector.Fetcher, st *store.Store, rec recorder.Recorder) *Pipeline {
	return &Pipeline{Cfg: cfg, Fetcher: fetcher, Store: st, Recorder: rec}
}

// SyncTickers fetches the current listing, reconciles it against the
// latest snapshot, and persists the new snapshot plus the change log.
func (p *Pipeline) SyncTickers(ctx context.Context) error {
	runTime := time.Now()
	log.Printf("[INFO] ticker sync starting (source: %s)", p.Fetcher.Name())

	raw, err := p.Fetcher.MarketWatch(ctx)
	if err != nil {
		return fmt.Errorf("fetch market watch: %w", err)
	}
	current, err := parser.MarketWatch(raw)
	if err != nil {
		return fmt.Errorf("parse market watch: %w", err)
	}
	if len(current) == 0 {
		return fmt.Errorf("market watch page yielded no tickers")
	}
	log.Printf("[INFO] fetched %d tickers", len(current))

	current = p.capTickers(current)
	p.enrichDetails(ctx, current)

	previous, prevPath, err := p.Store.LatestSnapshot()
	if err != nil {
		return fmt.Errorf("load previous snapshot: %w", err)
	}

	opts := reconcile.Options{
		NameLengthFloor: p.Cfg.Reconcile.NameLengthFloor,
		WordLengthFloor: p.Cfg.Reconcile.WordLengthFloor,
	}
	res := reconcile.Reconcile(previous, current, opts, runTime)

	for _, c := range res.Conflicts {
		log.Printf("[WARN] duplicate symbol %s in %s set, keeping first occurrence", c.Symbol, c.Set)
	}

	if prevPath == "" {
		log.Printf("[INFO] first run: %d initial tickers, no change events", len(res.Merged))
	} else {
		added, removed, renamed := countEvents(res.Events)
		log.Printf("[INFO] reconciled against %s: %d added, %d removed, %d renamed",
			prevPath, added, removed, renamed)
	}

	snapPath, err := p.Store.SaveSnapshot(res.Merged, runTime)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	log.Printf("[INFO] snapshot written: %s", snapPath)

	// The change log only carries reconciliation output; a first run has
	// nothing to report.
	if prevPath != "" {
		if err := p.Store.AppendChangeLog(res.Events, runTime); err != nil {
			return fmt.Errorf("append change log: %w", err)
		}
	}

	p.record(runTime, snapPath, &res, time.Since(runTime))
	log.Printf("[INFO] ticker sync completed in %s", time.Since(runTime).Round(time.Millisecond))
	return nil
}

// enrichDetails fetches each company page and folds real names and
// sectors into the scraped records. Fetch failures skip the one ticker.
func (p *Pipeline) enrichDetails(ctx context.Context, tickers []model.Ticker) {
	for i := range tickers {
		sym := tickers[i].Symbol
		raw, err := p.Fetcher.CompanyPage(ctx, sym)
		if err != nil {
			var fe *collector.FetchError
			if errors.As(err, &fe) {
				log.Printf("[WARN] company page for %s unavailable, keeping scraped fields: %v", sym, err)
				continue
			}
			log.Printf("[WARN] company page for %s: %v", sym, err)
			continue
		}

		detail := parser.CompanyProfile(raw, sym)
		if detail.HasName() {
			tickers[i].Name = detail.Name
		}
		if detail.Sector != model.UnknownSector {
			tickers[i].Sector = detail.Sector
		}
		if tickers[i].URL == "" {
			tickers[i].URL = p.Cfg.Source.BaseURL + p.Cfg.Source.CompanyPath + sym
		}
	}
}

// DownloadHistorical writes one price CSV per ticker in the latest
// snapshot. In mock mode the series is synthesized; live fetch failures
// fall back to synthesized data so a flaky source never leaves gaps.
func (p *Pipeline) DownloadHistorical(ctx context.Context) error {
	tickers, path, err := p.Store.LatestSnapshot()
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if path == "" {
		return fmt.Errorf("no ticker snapshot found, run a ticker sync first")
	}
	tickers = p.capTickers(tickers)

	startDate, err := time.Parse("2006-01-02", p.Cfg.Synthetic.StartDate)
	if err != nil {
		return fmt.Errorf("parse start date: %w", err)
	}
	endDate := time.Now()

	log.Printf("[INFO] downloading historical data for %d tickers", len(tickers))
	start := time.Now()
	var ok, failed int

	for _, t := range tickers {
		bars, err := p.historicalBars(ctx, t.Symbol, startDate, endDate)
		if err != nil {
			log.Printf("[WARN] historical data for %s: %v, skipping", t.Symbol, err)
			failed++
			continue
		}
		if len(bars) == 0 {
			log.Printf("[WARN] no historical data for %s, skipping", t.Symbol)
			failed++
			continue
		}
		csvPath, err := p.Store.WritePriceCSV(t.Symbol, bars)
		if err != nil {
			return fmt.Errorf("write price data for %s: %w", t.Symbol, err)
		}
		if sum, err := calculator.Summarize(bars); err == nil {
			log.Printf("[INFO] wrote %s: %s", csvPath, sum)
		}
		ok++
	}

	log.Printf("[INFO] historical download completed in %s: %d succeeded, %d failed",
		time.Since(start).Round(time.Millisecond), ok, failed)
	return nil
}

func (p *Pipeline) historicalBars(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error) {
	synthOpts := synth.Options{
		Drift:      p.Cfg.Synthetic.Drift,
		Volatility: p.Cfg.Synthetic.Volatility,
	}
	if p.Cfg.Mock {
		return synth.Generate(symbol, from, to, synthOpts), nil
	}

	raw, err := p.Fetcher.HistoricalData(ctx, symbol, from, to)
	if err != nil {
		var fe *collector.FetchError
		if errors.As(err, &fe) {
			log.Printf("[WARN] live data for %s unavailable, generating synthetic series", symbol)
			return synth.Generate(symbol, from, to, synthOpts), nil
		}
		return nil, err
	}
	bars, err := parser.HistoricalTable(raw)
	if err != nil || len(bars) == 0 {
		log.Printf("[WARN] no usable live data for %s, generating synthetic series", symbol)
		return synth.Generate(symbol, from, to, synthOpts), nil
	}
	return bars, nil
}

// FullRun executes the whole pipeline: ticker sync, then historical download.
func (p *Pipeline) FullRun(ctx context.Context) error {
	if err := p.SyncTickers(ctx); err != nil {
		return err
	}
	return p.DownloadHistorical(ctx)
}

func (p *Pipeline) capTickers(tickers []model.Ticker) []model.Ticker {
	if p.Cfg.MaxTickers > 0 && len(tickers) > p.Cfg.MaxTickers {
		log.Printf("[INFO] limiting to %d tickers (of %d)", p.Cfg.MaxTickers, len(tickers))
		return tickers[:p.Cfg.MaxTickers]
	}
	return tickers
}

func (p *Pipeline) record(runTime time.Time, snapPath string, res *reconcile.Result, dur time.Duration) {
	added, removed, renamed := countEvents(res.Events)
	if err := p.Recorder.RecordRun(&recorder.RunSummary{
		RunTime:      runTime,
		Source:       p.Fetcher.Name(),
		TickerCount:  len(res.Merged),
		Added:        added,
		Removed:      removed,
		Renamed:      renamed,
		Conflicts:    len(res.Conflicts),
		SnapshotPath: snapPath,
		Duration:     dur,
	}); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}
	if err := p.Recorder.RecordEvents(runTime, res.Events); err != nil {
		log.Printf("[ERROR] record events: %v", err)
	}
}

func countEvents(events []model.ChangeEvent) (added, removed, renamed int) {
	for _, e := range events {
		switch e.Kind {
		case model.ChangeAdded:
			added++
		case model.ChangeRemoved:
			removed++
		case model.ChangeRenamed:
			renamed++
		}
	}
	return
}
