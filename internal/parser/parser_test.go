package parser

import (
	"context"
	"testing"
	"time"

	"PSXPipeline/internal/collector"
	"PSXPipeline/internal/model"
)

const marketWatchPage = `<html><body>
<table class="table">
<thead><tr><th>SYMBOL</th><th>COMPANY NAME</th><th>SECTOR</th><th>CURRENT</th></tr></thead>
<tbody>
<tr><td>HBL</td><td>Habib Bank Limited</td><td>Commercial Banks</td><td>95.20</td></tr>
<tr><td>engro.pa</td><td>Engro Corporation Limited</td><td>Fertilizer</td><td>310.00</td></tr>
<tr><td>LUCK</td><td></td><td></td><td>620.10</td></tr>
<tr><td>Select...</td><td></td><td></td><td></td></tr>
<tr><td>X</td><td>Too Short Symbol</td><td>Junk</td><td></td></tr>
</tbody>
</table>
</body></html>`

func TestMarketWatch(t *testing.T) {
	tickers, err := MarketWatch(marketWatchPage)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(tickers) != 3 {
		t.Fatalf("expected 3 tickers, got %d: %+v", len(tickers), tickers)
	}

	want := []model.Ticker{
		{Symbol: "HBL", Name: "Habib Bank Limited", Sector: "Commercial Banks"},
		{Symbol: "ENGRO", Name: "Engro Corporation Limited", Sector: "Fertilizer"},
		{Symbol: "LUCK", Name: "LUCK", Sector: model.UnknownSector},
	}
	for i, w := range want {
		if tickers[i] != w {
			t.Errorf("ticker %d = %+v, want %+v", i, tickers[i], w)
		}
	}
}

func TestMarketWatch_NoTable(t *testing.T) {
	if _, err := MarketWatch("<html><body><p>maintenance</p></body></html>"); err == nil {
		t.Error("expected error for a page without a ticker table")
	}
}

func TestMarketWatch_MockPayload(t *testing.T) {
	raw, err := collector.NewMockFetcher().MarketWatch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	tickers, err := MarketWatch(raw)
	if err != nil {
		t.Fatalf("parse mock payload: %v", err)
	}
	if len(tickers) != len(collector.MockSymbols()) {
		t.Fatalf("expected %d tickers from the mock page, got %d",
			len(collector.MockSymbols()), len(tickers))
	}
	for _, tk := range tickers {
		if tk.Name == tk.Symbol {
			t.Errorf("mock ticker %s parsed without a name", tk.Symbol)
		}
		if tk.Sector == model.UnknownSector {
			t.Errorf("mock ticker %s parsed without a sector", tk.Symbol)
		}
	}
}

func TestCompanyProfile(t *testing.T) {
	tests := []struct {
		name       string
		html       string
		symbol     string
		wantName   string
		wantSector string
	}{
		{
			name:       "heading and sector class",
			html:       `<html><body><h1>Habib Bank Limited</h1><div class="sector">Commercial Banks</div></body></html>`,
			symbol:     "HBL",
			wantName:   "Habib Bank Limited",
			wantSector: "Commercial Banks",
		},
		{
			name:       "name from title",
			html:       `<html><head><title>Lucky Cement Limited - PSX</title></head><body></body></html>`,
			symbol:     "LUCK",
			wantName:   "Lucky Cement Limited",
			wantSector: model.UnknownSector,
		},
		{
			name:       "no record found",
			html:       `<html><body><p>No record found</p></body></html>`,
			symbol:     "GONE",
			wantName:   model.NoRecordName,
			wantSector: model.UnknownSector,
		},
		{
			name:       "empty page keeps placeholders",
			html:       `<html><body></body></html>`,
			symbol:     "XYZ",
			wantName:   "XYZ",
			wantSector: model.UnknownSector,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompanyProfile(tt.html, tt.symbol)
			if got.Name != tt.wantName {
				t.Errorf("name = %q, want %q", got.Name, tt.wantName)
			}
			if got.Sector != tt.wantSector {
				t.Errorf("sector = %q, want %q", got.Sector, tt.wantSector)
			}
		})
	}
}

const historicalPage = `<html><body>
<table class="historical-data-table">
<thead><tr><th>Date</th><th>Open</th><th>High</th><th>Low</th><th>Close</th><th>Volume</th></tr></thead>
<tbody>
<tr><td>2024-01-02</td><td>101.25</td><td>103.10</td><td>100.90</td><td>102.75</td><td>980,000</td></tr>
<tr><td>2024-01-01</td><td>100.50</td><td>102.00</td><td>99.80</td><td>101.25</td><td>1,250,000</td></tr>
<tr><td>bad-date</td><td>1</td><td>2</td><td>0</td><td>1</td><td>10</td></tr>
<tr><td>2024-01-03</td><td>102.75</td><td>n/a</td><td>101.00</td><td>101.50</td><td>1,100,000</td></tr>
</tbody>
</table>
</body></html>`

func TestHistoricalTable(t *testing.T) {
	bars, err := HistoricalTable(historicalPage)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	// Two valid rows survive; the malformed date and the
	// unparseable high are skipped.
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d: %+v", len(bars), bars)
	}
	if !bars[0].Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("bars not sorted ascending, first is %s", bars[0].Date)
	}
	if bars[0].Open != 100.50 || bars[0].Volume != 1250000 {
		t.Errorf("unexpected first bar %+v", bars[0])
	}
}

func TestHistoricalTable_MissingColumns(t *testing.T) {
	page := `<table><thead><tr><th>Date</th><th>Close</th></tr></thead>
<tbody><tr><td>2024-01-01</td><td>10</td></tr></tbody></table>`
	if _, err := HistoricalTable(page); err == nil {
		t.Error("expected error for a table without OHLC columns")
	}
}

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct{ in, want string }{
		{" hbl ", "HBL"},
		{"ENGRO.PA", "ENGRO"},
		{"luck", "LUCK"},
		{"OGDC", "OGDC"},
	}
	for _, tt := range tests {
		if got := NormalizeSymbol(tt.in); got != tt.want {
			t.Errorf("NormalizeSymbol(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
