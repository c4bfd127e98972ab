package model

// Placeholder values used when a scrape cannot determine a field.
const (
	UnknownSector = "Unknown"
	NoRecordName  = "No record found"
)

// Ticker represents one listed security. Symbol is the unique key;
// Name and Sector are best-effort and may hold placeholder values.
type Ticker struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
	URL    string `json:"url,omitempty"`
}

// HasName reports whether the ticker carries a real company name rather
// than a placeholder (the bare symbol or a not-found marker).
func (t Ticker) HasName() bool {
	return t.Name != "" && t.Name != t.Symbol && t.Name != NoRecordName
}
