// Package dataflows fetches the market, fundamental, and news data the
// analyst roles read. A capability router picks the vendor for each request
// so the agents never name data sources directly.
package dataflows

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Candle is one daily price bar.
type Candle struct {
	Symbol string          `json:"symbol"`
	Date   time.Time       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// NewsArticle is one headline with optional summary and sentiment.
type NewsArticle struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	Sentiment   float64   `json:"sentiment,omitempty"`
}

// Request carries the parameters shared by all capability calls. Vendors read
// the fields relevant to the capability and ignore the rest.
type Request struct {
	Symbol       string
	StartDate    time.Time
	EndDate      time.Time
	CurrDate     time.Time
	Indicator    string
	LookBackDays int
}

// FormatCandles renders candles as a markdown table for prompt consumption.
func FormatCandles(symbol string, candles []Candle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Daily price data for %s (%d rows)\n\n", symbol, len(candles))
	b.WriteString("| Date | Open | High | Low | Close | Volume |\n")
	b.WriteString("|------|------|------|-----|-------|--------|\n")
	for _, c := range candles {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %d |\n",
			c.Date.Format("2006-01-02"),
			c.Open.StringFixed(2), c.High.StringFixed(2),
			c.Low.StringFixed(2), c.Close.StringFixed(2), c.Volume)
	}
	return b.String()
}

// FormatArticles renders articles as a markdown digest.
func FormatArticles(header string, articles []NewsArticle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", header)
	if len(articles) == 0 {
		b.WriteString("No articles found for the requested window.\n")
		return b.String()
	}
	for _, a := range articles {
		fmt.Fprintf(&b, "### %s (%s, %s)\n", a.Title, a.Source, a.PublishedAt.Format("2006-01-02"))
		if a.Summary != "" {
			b.WriteString(a.Summary)
			b.WriteString("\n")
		}
		if a.Sentiment != 0 {
			fmt.Fprintf(&b, "Sentiment score: %.3f\n", a.Sentiment)
		}
		b.WriteString("\n")
	}
	return b.String()
}
