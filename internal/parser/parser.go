// Package parser extracts structured records from PSX HTML pages.
// All functions are pure: they take raw markup and return records,
// substituting placeholders for fields a page does not carry.
package parser

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"PSXPipeline/internal/model"
)

// MarketWatch extracts the ticker listing from a market-watch page. It
// locates the table whose header row mentions SYMBOL, maps columns by
// header text, and tolerates malformed rows by skipping them. Missing
// optional fields get placeholder values rather than failing the batch.
func MarketWatch(raw string) ([]model.Ticker, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse market watch html: %w", err)
	}

	table := findSymbolTable(doc)
	if table == nil {
		return nil, fmt.Errorf("no ticker table found in market watch page")
	}

	cols := headerColumns(table)
	symbolCol, ok := cols["symbol"]
	if !ok {
		symbolCol = 0
	}

	var tickers []model.Ticker
	for _, row := range tableRows(table) {
		cells := cellTexts(row)
		if len(cells) < 2 || symbolCol >= len(cells) {
			continue
		}
		symbol := NormalizeSymbol(cells[symbolCol])
		if len(symbol) < 2 || strings.Contains(strings.ToUpper(symbol), "SELECT") {
			continue
		}

		t := model.Ticker{
			Symbol: symbol,
			Name:   symbol,
			Sector: model.UnknownSector,
		}
		if i, ok := cols["name"]; ok && i < len(cells) && strings.TrimSpace(cells[i]) != "" {
			t.Name = strings.TrimSpace(cells[i])
		}
		if i, ok := cols["sector"]; ok && i < len(cells) && strings.TrimSpace(cells[i]) != "" {
			t.Sector = strings.TrimSpace(cells[i])
		}
		tickers = append(tickers, t)
	}

	return tickers, nil
}

// CompanyProfile extracts name and sector from a company page. It never
// fails: fields that cannot be determined keep their placeholder values,
// and "no record found" pages are marked as such.
func CompanyProfile(raw, symbol string) model.Ticker {
	t := model.Ticker{
		Symbol: symbol,
		Name:   symbol,
		Sector: model.UnknownSector,
	}

	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return t
	}

	if strings.Contains(strings.ToLower(nodeText(doc)), "no record found") {
		t.Name = model.NoRecordName
		return t
	}

	// Company name: first heading with a real name, else the title
	// ("Company Name - PSX").
	for _, tag := range []string{"h1", "h2", "h3"} {
		if n := findElement(doc, tag); n != nil {
			name := strings.TrimSpace(nodeText(n))
			if name != "" && name != symbol && len(name) > len(symbol) {
				t.Name = name
				break
			}
		}
	}
	if t.Name == symbol {
		if n := findElement(doc, "title"); n != nil {
			title := strings.TrimSpace(nodeText(n))
			if before, _, found := strings.Cut(title, " - "); found {
				name := strings.TrimSpace(before)
				if name != "" && name != symbol {
					t.Name = name
				}
			}
		}
	}

	if n := findByClass(doc, "sector", "industry", "category"); n != nil {
		if sector := strings.TrimSpace(nodeText(n)); sector != "" {
			t.Sector = sector
		}
	}

	return t
}

// HistoricalTable extracts daily OHLC bars from a historical-data page.
// Rows whose cells fail to parse are skipped; the result is sorted by
// date ascending with duplicate dates dropped (first occurrence wins).
func HistoricalTable(raw string) ([]model.PriceBar, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse historical html: %w", err)
	}

	table := findByClass(doc, "historical-data-table")
	if table == nil {
		table = findElement(doc, "table")
	}
	if table == nil {
		return nil, fmt.Errorf("no historical data table found")
	}

	cols := headerColumns(table)
	need := []string{"date", "open", "high", "low", "close", "volume"}
	for _, k := range need {
		if _, ok := cols[k]; !ok {
			return nil, fmt.Errorf("historical table missing %s column", k)
		}
	}

	var bars []model.PriceBar
	seen := make(map[time.Time]bool)
	for _, row := range tableRows(table) {
		cells := cellTexts(row)
		bar, err := parseBarRow(cells, cols)
		if err != nil {
			continue
		}
		if seen[bar.Date] {
			continue
		}
		seen[bar.Date] = true
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// NormalizeSymbol applies PSX symbol conventions: trimmed, uppercased,
// exchange suffixes (".PA" and friends) stripped.
func NormalizeSymbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if before, _, found := strings.Cut(s, "."); found {
		s = before
	}
	return s
}

func parseBarRow(cells []string, cols map[string]int) (model.PriceBar, error) {
	var bar model.PriceBar

	get := func(key string) (string, error) {
		i, ok := cols[key]
		if !ok || i >= len(cells) {
			return "", fmt.Errorf("missing %s cell", key)
		}
		return strings.TrimSpace(cells[i]), nil
	}

	raw, err := get("date")
	if err != nil {
		return bar, err
	}
	date, err := parseDate(raw)
	if err != nil {
		return bar, err
	}
	bar.Date = date

	for key, dst := range map[string]*float64{
		"open": &bar.Open, "high": &bar.High, "low": &bar.Low, "close": &bar.Close,
	} {
		raw, err := get(key)
		if err != nil {
			return bar, err
		}
		v, err := parseNumber(raw)
		if err != nil {
			return bar, fmt.Errorf("%s: %w", key, err)
		}
		*dst = v
	}

	raw, err = get("volume")
	if err != nil {
		return bar, err
	}
	vol, err := parseNumber(raw)
	if err != nil {
		return bar, fmt.Errorf("volume: %w", err)
	}
	if vol < 0 {
		return bar, fmt.Errorf("volume: negative value %v", vol)
	}
	bar.Volume = int64(vol)

	return bar, nil
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

var dateLayouts = []string{"2006-01-02", "Jan 2, 2006", "02-01-2006", "01/02/2006"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
