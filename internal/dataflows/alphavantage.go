package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"boardroom/internal/config"
	"boardroom/internal/market"
)

const alphaVantageBaseURL = "https://www.alphavantage.co/query"

// alphaVantageVendor serves prices, financial statements, and news sentiment
// from the Alpha Vantage REST API.
type alphaVantageVendor struct {
	cfg    *config.Config
	client *resty.Client
	cache  *CacheManager
	retry  *RetryConfig
}

func newAlphaVantageVendor(cfg *config.Config) *alphaVantageVendor {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetBaseURL(alphaVantageBaseURL)

	return &alphaVantageVendor{
		cfg:    cfg,
		client: client,
		cache:  NewCacheManager(filepath.Join(cfg.DataCacheDir, "alpha_vantage"), 24*time.Hour, cfg.CacheEnabled),
		retry:  DefaultRetryConfig(),
	}
}

func (v *alphaVantageVendor) query(ctx context.Context, params map[string]string, out interface{}) error {
	params["apikey"] = v.cfg.AlphaVantageAPIKey

	cacheParams := map[string]string{}
	for k, val := range params {
		if k != "apikey" {
			cacheParams[k] = val
		}
	}
	if v.cache.Get(VendorAlphaVantage, params["function"], cacheParams, out) {
		return nil
	}

	var body []byte
	err := WithRetry(ctx, v.retry, func() error {
		resp, err := v.client.R().SetContext(ctx).SetQueryParams(params).Get("")
		if err != nil {
			return fmt.Errorf("alpha vantage request: %w", err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("alpha vantage status %d", resp.StatusCode())
		}
		body = resp.Body()

		// Rate limit and error payloads come back with HTTP 200.
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(body, &probe); err == nil {
			for _, key := range []string{"Note", "Error Message", "Information"} {
				if msg, ok := probe[key]; ok {
					return fmt.Errorf("alpha vantage rejected request: %s", string(msg))
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode alpha vantage payload: %w", err)
	}
	_ = v.cache.Set(VendorAlphaVantage, params["function"], cacheParams, out)
	return nil
}

type avDailySeries struct {
	Series map[string]struct {
		Open   string `json:"1. open"`
		High   string `json:"2. high"`
		Low    string `json:"3. low"`
		Close  string `json:"4. close"`
		Volume string `json:"5. volume"`
	} `json:"Time Series (Daily)"`
}

func (v *alphaVantageVendor) candles(ctx context.Context, symbol string, start, end time.Time) ([]Candle, error) {
	symbol = market.Normalize(symbol)
	var payload avDailySeries
	err := v.query(ctx, map[string]string{
		"function":   "TIME_SERIES_DAILY",
		"symbol":     symbol,
		"outputsize": "full",
	}, &payload)
	if err != nil {
		return nil, err
	}

	var candles []Candle
	for dateStr, row := range payload.Series {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		if date.Before(start) || date.After(end) {
			continue
		}
		open, _ := decimal.NewFromString(row.Open)
		high, _ := decimal.NewFromString(row.High)
		low, _ := decimal.NewFromString(row.Low)
		closeP, _ := decimal.NewFromString(row.Close)
		volume, _ := strconv.ParseInt(row.Volume, 10, 64)
		candles = append(candles, Candle{
			Symbol: symbol, Date: date,
			Open: open, High: high, Low: low, Close: closeP, Volume: volume,
		})
	}
	sort.Slice(candles, func(i, j int) bool { return candles[i].Date.Before(candles[j].Date) })
	return candles, nil
}

func (v *alphaVantageVendor) stockData(ctx context.Context, req Request) (string, error) {
	candles, err := v.candles(ctx, req.Symbol, req.StartDate, req.EndDate)
	if err != nil {
		return "", err
	}
	return FormatCandles(req.Symbol, candles), nil
}

func (v *alphaVantageVendor) indicators(ctx context.Context, req Request) (string, error) {
	start := req.StartDate.AddDate(0, 0, -320)
	candles, err := v.candles(ctx, req.Symbol, start, req.EndDate)
	if err != nil {
		return "", err
	}
	return FormatIndicator(req.Symbol, req.Indicator, candles, req.StartDate, req.EndDate)
}

func (v *alphaVantageVendor) fundamentals(ctx context.Context, req Request) (string, error) {
	var payload map[string]string
	err := v.query(ctx, map[string]string{
		"function": "OVERVIEW",
		"symbol":   market.Normalize(req.Symbol),
	}, &payload)
	if err != nil {
		return "", err
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("no fundamental overview for %s", req.Symbol)
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "## Company fundamentals for %s\n\n", req.Symbol)
	for _, k := range keys {
		if payload[k] == "" || payload[k] == "None" {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", k, payload[k])
	}
	return b.String(), nil
}

type avStatement struct {
	AnnualReports []map[string]string `json:"annualReports"`
}

func (v *alphaVantageVendor) statement(ctx context.Context, function, title string, req Request) (string, error) {
	var payload avStatement
	err := v.query(ctx, map[string]string{
		"function": function,
		"symbol":   market.Normalize(req.Symbol),
	}, &payload)
	if err != nil {
		return "", err
	}
	if len(payload.AnnualReports) == 0 {
		return "", fmt.Errorf("no %s data for %s", title, req.Symbol)
	}

	latest := payload.AnnualReports[0]
	keys := make([]string, 0, len(latest))
	for k := range latest {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "## Latest annual %s for %s\n\n", title, req.Symbol)
	for _, k := range keys {
		if latest[k] == "" || latest[k] == "None" {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", k, latest[k])
	}
	return b.String(), nil
}

func (v *alphaVantageVendor) balanceSheet(ctx context.Context, req Request) (string, error) {
	return v.statement(ctx, "BALANCE_SHEET", "balance sheet", req)
}

func (v *alphaVantageVendor) cashflow(ctx context.Context, req Request) (string, error) {
	return v.statement(ctx, "CASH_FLOW", "cash flow statement", req)
}

func (v *alphaVantageVendor) incomeStatement(ctx context.Context, req Request) (string, error) {
	return v.statement(ctx, "INCOME_STATEMENT", "income statement", req)
}

type avNewsFeed struct {
	Feed []struct {
		Title                string `json:"title"`
		URL                  string `json:"url"`
		TimePublished        string `json:"time_published"`
		Summary              string `json:"summary"`
		Source               string `json:"source"`
		OverallSentimentText string  `json:"overall_sentiment_label"`
		OverallSentiment     float64 `json:"overall_sentiment_score"`
	} `json:"feed"`
}

func (v *alphaVantageVendor) news(ctx context.Context, params map[string]string, header string) (string, error) {
	var payload avNewsFeed
	if err := v.query(ctx, params, &payload); err != nil {
		return "", err
	}

	articles := make([]NewsArticle, 0, len(payload.Feed))
	for _, item := range payload.Feed {
		published, _ := time.Parse("20060102T150405", item.TimePublished)
		articles = append(articles, NewsArticle{
			Title:       item.Title,
			Summary:     item.Summary,
			URL:         item.URL,
			Source:      item.Source,
			PublishedAt: published,
			Sentiment:   item.OverallSentiment,
		})
	}
	return FormatArticles(header, articles), nil
}

func (v *alphaVantageVendor) companyNews(ctx context.Context, req Request) (string, error) {
	params := map[string]string{
		"function": "NEWS_SENTIMENT",
		"tickers":  market.Normalize(req.Symbol),
		"limit":    "50",
	}
	if !req.StartDate.IsZero() {
		params["time_from"] = req.StartDate.Format("20060102T0000")
	}
	return v.news(ctx, params, fmt.Sprintf("Company news for %s", req.Symbol))
}

func (v *alphaVantageVendor) globalNews(ctx context.Context, req Request) (string, error) {
	params := map[string]string{
		"function": "NEWS_SENTIMENT",
		"topics":   "financial_markets,economy_macro",
		"limit":    "50",
	}
	if !req.StartDate.IsZero() {
		params["time_from"] = req.StartDate.Format("20060102T0000")
	}
	return v.news(ctx, params, "Global macroeconomic news")
}
