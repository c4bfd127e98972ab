// Package synth generates deterministic daily price series used when
// live historical data is unavailable.
package synth

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"PSXPipeline/internal/model"
)

// Options tunes the random walk. Zero values fall back to defaults.
type Options struct {
	Drift      float64 // mean of the daily log return
	Volatility float64 // stddev of the daily log return
}

func (o Options) withDefaults() Options {
	if o.Drift == 0 {
		o.Drift = 0.0002
	}
	if o.Volatility == 0 {
		o.Volatility = 0.02
	}
	return o
}

// Generate produces one bar per business day in [start, end], dates
// ascending. The series is seeded from a stable hash of the symbol, so
// the same symbol and range always generate the same bars.
func Generate(symbol string, start, end time.Time, opts Options) []model.PriceBar {
	opts = opts.withDefaults()

	seed := symbolSeed(symbol)
	rng := rand.New(rand.NewSource(int64(seed)))

	// Base price between 50 and 500, stable per symbol.
	basePrice := 50 + float64(seed%450)

	var bars []model.PriceBar
	logPrice := 0.0
	prevClose := basePrice

	for d := dateOnly(start); !d.After(dateOnly(end)); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}

		logPrice += rng.NormFloat64()*opts.Volatility + opts.Drift
		closePrice := basePrice * math.Exp(logPrice)
		if closePrice < 1 {
			closePrice = 1
		}

		openPrice := prevClose * (1 + rng.NormFloat64()*0.005)
		if openPrice < 1 {
			openPrice = 1
		}
		highPrice := math.Max(openPrice, closePrice) * (1 + math.Abs(rng.NormFloat64())*0.008)
		lowPrice := math.Min(openPrice, closePrice) * (1 - math.Abs(rng.NormFloat64())*0.008)

		openPrice = round2(openPrice)
		closePrice = round2(closePrice)
		highPrice = round2(highPrice)
		lowPrice = round2(lowPrice)

		// Rounding must not break the OHLC ordering.
		highPrice = math.Max(highPrice, math.Max(openPrice, closePrice))
		lowPrice = math.Min(lowPrice, math.Min(openPrice, closePrice))

		// Volume scales with the day's relative range.
		relRange := (highPrice - lowPrice) / closePrice
		volume := int64((rng.NormFloat64()*300000 + 500000) * (1 + 5*relRange))
		if volume < 1000 {
			volume = 1000
		}

		bars = append(bars, model.PriceBar{
			Date:   d,
			Open:   openPrice,
			High:   highPrice,
			Low:    lowPrice,
			Close:  closePrice,
			Volume: volume,
		})
		prevClose = closePrice
	}

	return bars
}

// symbolSeed hashes a symbol into a stable seed. FNV-1a keeps the seed
// independent of Go map ordering and wall-clock time.
func symbolSeed(symbol string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	return h.Sum64() % (1 << 31)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
