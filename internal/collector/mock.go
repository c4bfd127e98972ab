package collector

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// mockTickers is the canned listing served by MockFetcher, mirroring a
// plausible PSX market-watch page.
var mockTickers = []struct {
	Symbol, Name, Sector string
}{
	{"HBL", "Habib Bank Limited", "Commercial Banks"},
	{"ENGRO", "Engro Corporation Limited", "Fertilizer"},
	{"PSO", "Pakistan State Oil Company Limited", "Oil & Gas Marketing Companies"},
	{"LUCK", "Lucky Cement Limited", "Cement"},
	{"OGDC", "Oil & Gas Development Company Limited", "Oil & Gas Exploration Companies"},
	{"PPL", "Pakistan Petroleum Limited", "Oil & Gas Exploration Companies"},
	{"UBL", "United Bank Limited", "Commercial Banks"},
	{"MCB", "MCB Bank Limited", "Commercial Banks"},
	{"FFC", "Fauji Fertilizer Company Limited", "Fertilizer"},
	{"EFERT", "Engro Fertilizers Limited", "Fertilizer"},
	{"BAHL", "Bank Al Habib Limited", "Commercial Banks"},
	{"MEBL", "Meezan Bank Limited", "Commercial Banks"},
	{"CNERGY", "Cnergyico PK Limited", "Refinery"},
	{"KEL", "K-Electric Limited", "Power Generation & Distribution"},
	{"SSGC", "Sui Southern Gas Company Limited", "Oil & Gas Marketing Companies"},
	{"PIBTL", "Pakistan International Bulk Terminal Limited", "Transportation"},
	{"MLCF", "Maple Leaf Cement Factory Limited", "Cement"},
	{"PAEL", "Pak Elektron Limited", "Electrical Goods"},
	{"FCCL", "Fauji Cement Company Limited", "Cement"},
	{"WTL", "WorldCall Telecom Limited", "Technology & Communication"},
	{"CPHL", "CPL Holdings", "Pharmaceuticals"},
	{"SNGP", "Sui Northern Gas Pipelines Limited", "Oil & Gas Marketing Companies"},
}

// MockFetcher serves canned payloads for offline development and testing.
// Any field left empty falls back to the built-in payload set.
type MockFetcher struct {
	MarketWatchHTML string
	CompanyHTML     map[string]string // keyed by symbol
	HistoricalHTML  string
}

func NewMockFetcher() *MockFetcher { return &MockFetcher{} }

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) MarketWatch(_ context.Context) (string, error) {
	if m.MarketWatchHTML != "" {
		return m.MarketWatchHTML, nil
	}
	var b strings.Builder
	b.WriteString("<html><body><table class=\"table\"><thead><tr>")
	b.WriteString("<th>SYMBOL</th><th>COMPANY</th><th>SECTOR</th><th>CURRENT</th><th>VOLUME</th>")
	b.WriteString("</tr></thead><tbody>")
	for _, t := range mockTickers {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>100.00</td><td>1,000</td></tr>",
			t.Symbol, t.Name, t.Sector)
	}
	b.WriteString("</tbody></table></body></html>")
	return b.String(), nil
}

func (m *MockFetcher) CompanyPage(_ context.Context, symbol string) (string, error) {
	if html, ok := m.CompanyHTML[symbol]; ok {
		return html, nil
	}
	for _, t := range mockTickers {
		if t.Symbol == symbol {
			return fmt.Sprintf(
				"<html><head><title>%s - PSX</title></head><body><h1>%s</h1><div class=\"sector\">%s</div></body></html>",
				t.Name, t.Name, t.Sector), nil
		}
	}
	return "<html><body><p>No record found</p></body></html>", nil
}

func (m *MockFetcher) HistoricalData(_ context.Context, _ string, _, _ time.Time) (string, error) {
	if m.HistoricalHTML != "" {
		return m.HistoricalHTML, nil
	}
	return `<html><body><table class="historical-data-table"><thead><tr>
<th>Date</th><th>Open</th><th>High</th><th>Low</th><th>Close</th><th>Volume</th>
</tr></thead><tbody>
<tr><td>2024-01-01</td><td>100.50</td><td>102.00</td><td>99.80</td><td>101.25</td><td>1,250,000</td></tr>
<tr><td>2024-01-02</td><td>101.25</td><td>103.10</td><td>100.90</td><td>102.75</td><td>980,000</td></tr>
<tr><td>2024-01-03</td><td>102.75</td><td>102.90</td><td>101.00</td><td>101.50</td><td>1,100,000</td></tr>
</tbody></table></body></html>`, nil
}

// MockSymbols returns the symbols of the canned listing, in page order.
func MockSymbols() []string {
	out := make([]string, len(mockTickers))
	for i, t := range mockTickers {
		out[i] = t.Symbol
	}
	return out
}
