package dataflows

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// indicatorGuide describes each supported indicator for the analyst prompt.
var indicatorGuide = map[string]string{
	"close_50_sma":  "50 SMA: A medium-term trend indicator. Usage: Identify trend direction and serve as dynamic support/resistance. Tips: It lags price; combine with faster indicators for timely signals.",
	"close_200_sma": "200 SMA: A long-term trend benchmark. Usage: Confirm overall market trend and identify golden/death cross setups. Tips: It reacts slowly; best for strategic trend confirmation.",
	"close_10_ema":  "10 EMA: A responsive short-term average. Usage: Capture quick shifts in momentum and potential entry points. Tips: Prone to noise in choppy markets; filter with longer averages.",
	"macd":          "MACD: Computes momentum via differences of EMAs. Usage: Look for crossovers and divergence as signals of trend changes.",
	"macds":         "MACD Signal: EMA smoothing of the MACD line. Usage: Crossovers with the MACD line trigger trades.",
	"macdh":         "MACD Histogram: Gap between MACD line and its signal. Usage: Visualize momentum strength and spot divergence early.",
	"rsi":           "RSI: Measures momentum to flag overbought/oversold conditions. Usage: Apply 70/30 thresholds and watch for divergence. Tips: In strong trends RSI may stay extreme; cross-check the trend.",
	"boll":          "Bollinger Middle: 20-period SMA serving as the band basis. Usage: Dynamic benchmark for price movement.",
	"boll_ub":       "Bollinger Upper Band: 2 standard deviations above the middle. Usage: Flags potential overbought zones and breakouts.",
	"boll_lb":       "Bollinger Lower Band: 2 standard deviations below the middle. Usage: Flags potential oversold conditions.",
	"atr":           "ATR: Averages the true range to gauge volatility. Usage: Size stops and positions off current volatility.",
	"vwma":          "VWMA: Moving average weighted by volume. Usage: Confirm trends with volume participation.",
	"mfi":           "MFI: Volume-weighted RSI analogue. Usage: 80/20 thresholds for overbought/oversold backed by flow.",
}

// SupportedIndicators returns the indicator names in stable order.
func SupportedIndicators() []string {
	names := make([]string, 0, len(indicatorGuide))
	for name := range indicatorGuide {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type indicatorPoint struct {
	date  time.Time
	value float64
}

// FormatIndicator computes an indicator over the candles and renders the
// values falling inside [start, end] with the usage note.
func FormatIndicator(symbol, indicator string, candles []Candle, start, end time.Time) (string, error) {
	guide, ok := indicatorGuide[indicator]
	if !ok {
		return "", fmt.Errorf("unsupported indicator %q, supported: %s",
			indicator, strings.Join(SupportedIndicators(), ", "))
	}

	points, err := computeIndicator(candles, indicator)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s values for %s\n\n", indicator, symbol)
	for _, p := range points {
		if p.date.Before(start) || p.date.After(end) {
			continue
		}
		fmt.Fprintf(&b, "%s: %.4f\n", p.date.Format("2006-01-02"), p.value)
	}
	fmt.Fprintf(&b, "\n%s\n", guide)
	return b.String(), nil
}

func computeIndicator(candles []Candle, indicator string) ([]indicatorPoint, error) {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i], _ = c.Close.Float64()
	}

	switch indicator {
	case "close_50_sma":
		return smaPoints(candles, closes, 50), nil
	case "close_200_sma":
		return smaPoints(candles, closes, 200), nil
	case "close_10_ema":
		return emaPoints(candles, closes, 10), nil
	case "macd":
		macd, _, _ := macdSeries(closes)
		return alignPoints(candles, macd, 26), nil
	case "macds":
		_, signal, _ := macdSeries(closes)
		return alignPoints(candles, signal, 26), nil
	case "macdh":
		_, _, hist := macdSeries(closes)
		return alignPoints(candles, hist, 26), nil
	case "rsi":
		return rsiPoints(candles, closes, 14), nil
	case "boll":
		mid, _, _ := bollingerSeries(closes, 20, 2)
		return alignPoints(candles, mid, 20), nil
	case "boll_ub":
		_, upper, _ := bollingerSeries(closes, 20, 2)
		return alignPoints(candles, upper, 20), nil
	case "boll_lb":
		_, _, lower := bollingerSeries(closes, 20, 2)
		return alignPoints(candles, lower, 20), nil
	case "atr":
		return atrPoints(candles, 14), nil
	case "vwma":
		return vwmaPoints(candles, 20), nil
	case "mfi":
		return mfiPoints(candles, 14), nil
	default:
		return nil, fmt.Errorf("unsupported indicator %q", indicator)
	}
}

func smaPoints(candles []Candle, closes []float64, period int) []indicatorPoint {
	var points []indicatorPoint
	for i := period - 1; i < len(closes); i++ {
		var sum float64
		for j := i - period + 1; j <= i; j++ {
			sum += closes[j]
		}
		points = append(points, indicatorPoint{candles[i].Date, sum / float64(period)})
	}
	return points
}

func emaSeries(values []float64, period int) []float64 {
	if len(values) < period {
		return nil
	}
	out := make([]float64, 0, len(values)-period+1)
	var sum float64
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	ema := sum / float64(period)
	out = append(out, ema)
	k := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		ema = values[i]*k + ema*(1-k)
		out = append(out, ema)
	}
	return out
}

func emaPoints(candles []Candle, closes []float64, period int) []indicatorPoint {
	series := emaSeries(closes, period)
	return alignPoints(candles, series, period)
}

// alignPoints pairs a derived series with the candle dates it starts from.
// firstPeriod is the window length consumed before the first value exists.
func alignPoints(candles []Candle, series []float64, firstPeriod int) []indicatorPoint {
	if len(series) == 0 {
		return nil
	}
	offset := len(candles) - len(series)
	if offset < firstPeriod-1 {
		offset = firstPeriod - 1
	}
	var points []indicatorPoint
	for i, v := range series {
		idx := offset + i
		if idx >= len(candles) {
			break
		}
		points = append(points, indicatorPoint{candles[idx].Date, v})
	}
	return points
}

func macdSeries(closes []float64) (macd, signal, hist []float64) {
	ema12 := emaSeries(closes, 12)
	ema26 := emaSeries(closes, 26)
	if len(ema26) == 0 {
		return nil, nil, nil
	}
	// ema12 starts 14 bars earlier than ema26; trim to the shared suffix.
	trim := len(ema12) - len(ema26)
	macd = make([]float64, len(ema26))
	for i := range ema26 {
		macd[i] = ema12[trim+i] - ema26[i]
	}
	signalFull := emaSeries(macd, 9)
	signal = signalFull
	if len(signal) == 0 {
		return macd, nil, nil
	}
	hist = make([]float64, len(signal))
	macdTail := macd[len(macd)-len(signal):]
	for i := range signal {
		hist[i] = macdTail[i] - signal[i]
	}
	// Align all three to the signal length for consistent reporting.
	return macdTail, signal, hist
}

func rsiPoints(candles []Candle, closes []float64, period int) []indicatorPoint {
	if len(closes) <= period {
		return nil
	}
	var points []indicatorPoint
	var gain, loss float64
	for i := 1; i <= period; i++ {
		diff := closes[i] - closes[i-1]
		if diff > 0 {
			gain += diff
		} else {
			loss -= diff
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)

	appendRSI := func(i int) {
		rsi := 100.0
		if avgLoss > 0 {
			rs := avgGain / avgLoss
			rsi = 100 - 100/(1+rs)
		}
		points = append(points, indicatorPoint{candles[i].Date, rsi})
	}

	appendRSI(period)
	for i := period + 1; i < len(closes); i++ {
		diff := closes[i] - closes[i-1]
		var g, l float64
		if diff > 0 {
			g = diff
		} else {
			l = -diff
		}
		avgGain = (avgGain*float64(period-1) + g) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + l) / float64(period)
		appendRSI(i)
	}
	return points
}

func bollingerSeries(closes []float64, period int, mult float64) (mid, upper, lower []float64) {
	if len(closes) < period {
		return nil, nil, nil
	}
	for i := period - 1; i < len(closes); i++ {
		var sum float64
		for j := i - period + 1; j <= i; j++ {
			sum += closes[j]
		}
		sma := sum / float64(period)
		var variance float64
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - sma
			variance += d * d
		}
		std := math.Sqrt(variance / float64(period))
		mid = append(mid, sma)
		upper = append(upper, sma+mult*std)
		lower = append(lower, sma-mult*std)
	}
	return mid, upper, lower
}

func atrPoints(candles []Candle, period int) []indicatorPoint {
	if len(candles) <= period {
		return nil
	}
	trs := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		high, _ := candles[i].High.Float64()
		low, _ := candles[i].Low.Float64()
		prevClose, _ := candles[i-1].Close.Float64()
		tr := math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
		trs = append(trs, tr)
	}

	var points []indicatorPoint
	var sum float64
	for i := 0; i < period; i++ {
		sum += trs[i]
	}
	atr := sum / float64(period)
	points = append(points, indicatorPoint{candles[period].Date, atr})
	for i := period; i < len(trs); i++ {
		atr = (atr*float64(period-1) + trs[i]) / float64(period)
		points = append(points, indicatorPoint{candles[i+1].Date, atr})
	}
	return points
}

func vwmaPoints(candles []Candle, period int) []indicatorPoint {
	var points []indicatorPoint
	for i := period - 1; i < len(candles); i++ {
		var pv, vol float64
		for j := i - period + 1; j <= i; j++ {
			c, _ := candles[j].Close.Float64()
			v := float64(candles[j].Volume)
			pv += c * v
			vol += v
		}
		if vol == 0 {
			continue
		}
		points = append(points, indicatorPoint{candles[i].Date, pv / vol})
	}
	return points
}

func mfiPoints(candles []Candle, period int) []indicatorPoint {
	if len(candles) <= period {
		return nil
	}
	typical := make([]float64, len(candles))
	flow := make([]float64, len(candles))
	for i, c := range candles {
		h, _ := c.High.Float64()
		l, _ := c.Low.Float64()
		cl, _ := c.Close.Float64()
		typical[i] = (h + l + cl) / 3
		flow[i] = typical[i] * float64(c.Volume)
	}

	var points []indicatorPoint
	for i := period; i < len(candles); i++ {
		var pos, neg float64
		for j := i - period + 1; j <= i; j++ {
			if typical[j] > typical[j-1] {
				pos += flow[j]
			} else if typical[j] < typical[j-1] {
				neg += flow[j]
			}
		}
		mfi := 100.0
		if neg > 0 {
			ratio := pos / neg
			mfi = 100 - 100/(1+ratio)
		}
		points = append(points, indicatorPoint{candles[i].Date, mfi})
	}
	return points
}
