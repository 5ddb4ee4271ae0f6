// Package market identifies the trading market of a ticker symbol and
// provides the associated metadata (currency, display name, default data
// vendor). Everything here is pure string classification with no I/O.
package market

import (
	"regexp"
	"strings"
)

// Market is the exchange family a ticker belongs to.
type Market string

const (
	US      Market = "us"
	China   Market = "china"
	HK      Market = "hk"
	Unknown Market = "unknown"
)

// Info carries display and routing metadata for a classified ticker.
type Info struct {
	Market         Market `json:"market"`
	MarketName     string `json:"market_name"`
	CurrencyName   string `json:"currency_name"`
	CurrencySymbol string `json:"currency_symbol"`
	DataSource     string `json:"data_source"`
}

var (
	chinaPattern = regexp.MustCompile(`^\d{6}(\.(SZ|SH|BJ|SS))?$`)
	hkPattern    = regexp.MustCompile(`^\d{4,5}(\.HK)?$`)
	usPattern    = regexp.MustCompile(`^[A-Z]{1,5}$`)
	digitsPrefix = regexp.MustCompile(`^\d+`)
)

// Identify classifies a ticker symbol.
//
// Rules, first match wins:
//   - 6-digit codes with optional .SZ/.SH/.BJ/.SS suffix -> China A-shares
//   - 4-5 digit codes with optional .HK suffix -> Hong Kong
//   - 1-5 letter codes -> US
//
// Matching is case-insensitive and ignores surrounding whitespace.
func Identify(ticker string) Market {
	t := strings.ToUpper(strings.TrimSpace(ticker))

	// China A-shares: exactly six digits, e.g. 600519, 000001.SZ.
	if chinaPattern.MatchString(t) {
		return China
	}

	// Hong Kong: 4-5 digits, e.g. 0700, 09988.HK. Six-digit numerics were
	// already claimed by the China rule above.
	if hkPattern.MatchString(t) {
		if d := digitsPrefix.FindString(t); len(d) <= 5 {
			return HK
		}
	}

	if usPattern.MatchString(t) {
		return US
	}

	return Unknown
}

// InfoFor returns the full metadata for a ticker's market. Unknown tickers
// fall back to USD/$ for display purposes only.
func InfoFor(ticker string) Info {
	switch Identify(ticker) {
	case China:
		return Info{
			Market:         China,
			MarketName:     "China A-shares",
			CurrencyName:   "CNY",
			CurrencySymbol: "¥",
			DataSource:     "akshare",
		}
	case HK:
		return Info{
			Market:         HK,
			MarketName:     "Hong Kong",
			CurrencyName:   "HKD",
			CurrencySymbol: "HK$",
			DataSource:     "yfinance",
		}
	case US:
		return Info{
			Market:         US,
			MarketName:     "US",
			CurrencyName:   "USD",
			CurrencySymbol: "$",
			DataSource:     "yfinance",
		}
	default:
		return Info{
			Market:         Unknown,
			MarketName:     "Unknown",
			CurrencyName:   "USD",
			CurrencySymbol: "$",
			DataSource:     "yfinance",
		}
	}
}

// Normalize rewrites a ticker into the form its market's data vendors expect:
// HK tickers gain a .HK suffix, China tickers are stripped to the bare six
// digits, US tickers are uppercased.
func Normalize(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))

	switch Identify(t) {
	case HK:
		if !strings.HasSuffix(t, ".HK") {
			return digitsPrefix.FindString(t) + ".HK"
		}
	case China:
		return digitsPrefix.FindString(t)
	}
	return t
}

// IsChina reports whether the ticker classifies as a China A-share.
func IsChina(ticker string) bool { return Identify(ticker) == China }
