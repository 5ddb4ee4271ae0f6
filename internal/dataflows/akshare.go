package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"boardroom/internal/config"
	"boardroom/internal/market"
)

// akshareVendor serves China A-share data through an AKTools HTTP bridge.
// AKTools exposes akshare functions as /api/public/<function> endpoints.
type akshareVendor struct {
	cfg    *config.Config
	client *resty.Client
	cache  *CacheManager
	retry  *RetryConfig
}

func newAKShareVendor(cfg *config.Config) *akshareVendor {
	client := resty.New()
	client.SetTimeout(60 * time.Second)
	client.SetBaseURL(cfg.AKToolsBaseURL)

	return &akshareVendor{
		cfg:    cfg,
		client: client,
		cache:  NewCacheManager(filepath.Join(cfg.DataCacheDir, "akshare"), 12*time.Hour, cfg.CacheEnabled),
		retry:  DefaultRetryConfig(),
	}
}

// bareSymbol strips exchange suffixes; akshare expects the six-digit code.
func bareSymbol(symbol string) string {
	symbol = market.Normalize(symbol)
	if i := strings.IndexByte(symbol, '.'); i > 0 {
		return symbol[:i]
	}
	return symbol
}

func (v *akshareVendor) call(ctx context.Context, function string, params map[string]string, out interface{}) error {
	if v.cache.Get(VendorAKShare, function, params, out) {
		return nil
	}

	var body []byte
	err := WithRetry(ctx, v.retry, func() error {
		resp, err := v.client.R().SetContext(ctx).
			SetQueryParams(params).
			Get("/api/public/" + function)
		if err != nil {
			return fmt.Errorf("aktools request %s: %w", function, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("aktools %s status %d", function, resp.StatusCode())
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode aktools %s payload: %w", function, err)
	}
	_ = v.cache.Set(VendorAKShare, function, params, out)
	return nil
}

type akHistRow struct {
	Date   string  `json:"日期"`
	Open   float64 `json:"开盘"`
	Close  float64 `json:"收盘"`
	High   float64 `json:"最高"`
	Low    float64 `json:"最低"`
	Volume float64 `json:"成交量"`
}

func (v *akshareVendor) candles(ctx context.Context, symbol string, start, end time.Time) ([]Candle, error) {
	var rows []akHistRow
	err := v.call(ctx, "stock_zh_a_hist", map[string]string{
		"symbol":     bareSymbol(symbol),
		"period":     "daily",
		"start_date": start.Format("20060102"),
		"end_date":   end.Format("20060102"),
		"adjust":     "qfq",
	}, &rows)
	if err != nil {
		return nil, err
	}

	candles := make([]Candle, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			continue
		}
		candles = append(candles, Candle{
			Symbol: symbol,
			Date:   date,
			Open:   decimal.NewFromFloat(row.Open),
			High:   decimal.NewFromFloat(row.High),
			Low:    decimal.NewFromFloat(row.Low),
			Close:  decimal.NewFromFloat(row.Close),
			Volume: int64(row.Volume),
		})
	}
	return candles, nil
}

func (v *akshareVendor) stockData(ctx context.Context, req Request) (string, error) {
	candles, err := v.candles(ctx, req.Symbol, req.StartDate, req.EndDate)
	if err != nil {
		return "", err
	}
	return FormatCandles(req.Symbol, candles), nil
}

func (v *akshareVendor) indicators(ctx context.Context, req Request) (string, error) {
	start := req.StartDate.AddDate(0, 0, -320)
	candles, err := v.candles(ctx, req.Symbol, start, req.EndDate)
	if err != nil {
		return "", err
	}
	return FormatIndicator(req.Symbol, req.Indicator, candles, req.StartDate, req.EndDate)
}

type akInfoRow struct {
	Item  string      `json:"item"`
	Value interface{} `json:"value"`
}

func (v *akshareVendor) fundamentals(ctx context.Context, req Request) (string, error) {
	var rows []akInfoRow
	err := v.call(ctx, "stock_individual_info_em", map[string]string{
		"symbol": bareSymbol(req.Symbol),
	}, &rows)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("no company info for %s", req.Symbol)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Company fundamentals for %s (A-share)\n\n", req.Symbol)
	for _, row := range rows {
		fmt.Fprintf(&b, "- %s: %v\n", row.Item, row.Value)
	}
	return b.String(), nil
}

type akNewsRow struct {
	Title   string `json:"新闻标题"`
	Content string `json:"新闻内容"`
	Time    string `json:"发布时间"`
	Source  string `json:"文章来源"`
	URL     string `json:"新闻链接"`
}

func (v *akshareVendor) companyNews(ctx context.Context, req Request) (string, error) {
	var rows []akNewsRow
	err := v.call(ctx, "stock_news_em", map[string]string{
		"symbol": bareSymbol(req.Symbol),
	}, &rows)
	if err != nil {
		return "", err
	}

	articles := make([]NewsArticle, 0, len(rows))
	for _, row := range rows {
		published, _ := time.Parse("2006-01-02 15:04:05", row.Time)
		if !req.StartDate.IsZero() && !published.IsZero() && published.Before(req.StartDate) {
			continue
		}
		articles = append(articles, NewsArticle{
			Title:       row.Title,
			Summary:     row.Content,
			URL:         row.URL,
			Source:      row.Source,
			PublishedAt: published,
		})
	}
	return FormatArticles(fmt.Sprintf("Company news for %s", req.Symbol), articles), nil
}
