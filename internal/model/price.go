package model

import "time"

// PriceBar represents a single daily OHLC bar.
// Invariants: Low <= min(Open, Close), High >= max(Open, Close), Volume >= 0.
type PriceBar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}
