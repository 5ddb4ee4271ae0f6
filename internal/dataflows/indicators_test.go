package dataflows

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func makeCandles(closes []float64) []Candle {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]Candle, len(closes))
	for i, c := range closes {
		candles[i] = Candle{
			Symbol: "TEST",
			Date:   base.AddDate(0, 0, i),
			Open:   decimal.NewFromFloat(c - 0.5),
			High:   decimal.NewFromFloat(c + 1),
			Low:    decimal.NewFromFloat(c - 1),
			Close:  decimal.NewFromFloat(c),
			Volume: 1000 + int64(i),
		}
	}
	return candles
}

func TestSMAPoints(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6}
	points := smaPoints(makeCandles(closes), closes, 3)

	if len(points) != 4 {
		t.Fatalf("got %d points, want 4", len(points))
	}
	if math.Abs(points[0].value-2) > 1e-9 {
		t.Fatalf("first SMA = %v, want 2", points[0].value)
	}
	if math.Abs(points[3].value-5) > 1e-9 {
		t.Fatalf("last SMA = %v, want 5", points[3].value)
	}
}

func TestEMASeedEqualsSMA(t *testing.T) {
	closes := []float64{10, 11, 12, 13, 14}
	series := emaSeries(closes, 5)
	if len(series) != 1 {
		t.Fatalf("got %d EMA values, want 1", len(series))
	}
	if math.Abs(series[0]-12) > 1e-9 {
		t.Fatalf("EMA seed = %v, want the 5-period SMA 12", series[0])
	}
}

func TestRSIBounds(t *testing.T) {
	// Monotonic rise pins RSI at 100; a mixed tail must pull it below.
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	points := rsiPoints(makeCandles(closes), closes, 14)
	if len(points) == 0 {
		t.Fatal("no RSI points")
	}
	if points[len(points)-1].value != 100 {
		t.Fatalf("monotonic rise RSI = %v, want 100", points[len(points)-1].value)
	}

	closes[39] = 80
	points = rsiPoints(makeCandles(closes), closes, 14)
	last := points[len(points)-1].value
	if last <= 0 || last >= 100 {
		t.Fatalf("mixed series RSI out of open interval: %v", last)
	}
}

func TestBollingerBandOrdering(t *testing.T) {
	closes := []float64{10, 12, 11, 13, 12, 14, 13, 15, 14, 16, 15, 17, 16, 18, 17, 19, 18, 20, 19, 21, 20, 22}
	mid, upper, lower := bollingerSeries(closes, 20, 2)
	if len(mid) == 0 {
		t.Fatal("no bollinger values")
	}
	for i := range mid {
		if !(lower[i] < mid[i] && mid[i] < upper[i]) {
			t.Fatalf("band ordering violated at %d: %v %v %v", i, lower[i], mid[i], upper[i])
		}
	}
}

func TestFormatIndicatorUnsupported(t *testing.T) {
	candles := makeCandles([]float64{1, 2, 3})
	_, err := FormatIndicator("TEST", "close_9000_sma", candles, candles[0].Date, candles[2].Date)
	if err == nil {
		t.Fatal("unsupported indicator must error")
	}
	if !strings.Contains(err.Error(), "close_50_sma") {
		t.Fatalf("error should list supported indicators: %v", err)
	}
}

func TestFormatIndicatorWindow(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 50 + float64(i%7)
	}
	candles := makeCandles(closes)

	start := candles[55].Date
	end := candles[59].Date
	out, err := FormatIndicator("TEST", "close_50_sma", candles, start, end)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, start.Format("2006-01-02")) {
		t.Fatalf("window start missing from output")
	}
	if strings.Contains(out, candles[10].Date.Format("2006-01-02")) {
		t.Fatalf("output leaked values before the window")
	}
	if !strings.Contains(out, "50 SMA") {
		t.Fatalf("usage note missing from output")
	}
}

func TestFormatCandles(t *testing.T) {
	candles := makeCandles([]float64{10.5, 11.25})
	out := FormatCandles("TEST", candles)
	if !strings.Contains(out, "| 2024-01-01 | 10.00 | 11.50 | 9.50 | 10.50 | 1000 |") {
		t.Fatalf("unexpected table row:\n%s", out)
	}
}
