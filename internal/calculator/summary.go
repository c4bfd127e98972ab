package calculator

import (
	"errors"
	"fmt"
	"math"
	"time"

	"PSXPipeline/internal/model"
)

// Summary describes a daily bar series in one line of log output.
type Summary struct {
	Bars      int
	First     time.Time
	Last      time.Time
	High      float64
	Low       float64
	AvgVolume int64
}

// Summarize scans a date-ordered bar series and returns its range statistics.
func Summarize(bars []model.PriceBar) (Summary, error) {
	if len(bars) == 0 {
		return Summary{}, errors.New("no daily bars provided")
	}
	s := Summary{
		Bars:  len(bars),
		First: bars[0].Date,
		Last:  bars[len(bars)-1].Date,
		High:  math.Inf(-1),
		Low:   math.Inf(1),
	}
	var volume int64
	for _, b := range bars {
		if b.High > s.High {
			s.High = b.High
		}
		if b.Low < s.Low {
			s.Low = b.Low
		}
		volume += b.Volume
	}
	s.AvgVolume = volume / int64(len(bars))
	return s, nil
}

func (s Summary) String() string {
	return fmt.Sprintf("%d bars %s..%s, range %.2f-%.2f, avg volume %d",
		s.Bars, s.First.Format("2006-01-02"), s.Last.Format("2006-01-02"), s.Low, s.High, s.AvgVolume)
}
