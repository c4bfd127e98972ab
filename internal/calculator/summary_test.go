package calculator

import (
	"testing"
	"time"

	"PSXPipeline/internal/model"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestSummarize(t *testing.T) {
	bars := []model.PriceBar{
		{Date: day(1), Open: 10, High: 12, Low: 9, Close: 11, Volume: 1000},
		{Date: day(2), Open: 11, High: 15, Low: 10, Close: 14, Volume: 3000},
		{Date: day(3), Open: 14, High: 14.5, Low: 8, Close: 9, Volume: 2000},
	}
	s, err := Summarize(bars)
	if err != nil {
		t.Fatal(err)
	}
	if s.Bars != 3 {
		t.Errorf("bars = %d, want 3", s.Bars)
	}
	if !s.First.Equal(day(1)) || !s.Last.Equal(day(3)) {
		t.Errorf("dates = %s..%s", s.First, s.Last)
	}
	if s.High != 15 || s.Low != 8 {
		t.Errorf("range = %.2f-%.2f, want 8.00-15.00", s.Low, s.High)
	}
	if s.AvgVolume != 2000 {
		t.Errorf("avg volume = %d, want 2000", s.AvgVolume)
	}
	want := "3 bars 2024-01-01..2024-01-03, range 8.00-15.00, avg volume 2000"
	if got := s.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if _, err := Summarize(nil); err == nil {
		t.Error("expected error for empty series")
	}
}
