package dataflows

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
	"github.com/shopspring/decimal"

	"boardroom/internal/config"
	"boardroom/internal/market"
)

// yfinanceVendor serves price history and indicators from Yahoo Finance.
type yfinanceVendor struct {
	cfg   *config.Config
	cache *CacheManager
	retry *RetryConfig
}

func newYFinanceVendor(cfg *config.Config) *yfinanceVendor {
	return &yfinanceVendor{
		cfg:   cfg,
		cache: NewCacheManager(filepath.Join(cfg.DataCacheDir, "yfinance"), 24*time.Hour, cfg.CacheEnabled),
		retry: DefaultRetryConfig(),
	}
}

func (v *yfinanceVendor) candles(ctx context.Context, symbol string, start, end time.Time) ([]Candle, error) {
	symbol = market.Normalize(symbol)
	params := map[string]string{
		"symbol": symbol,
		"start":  start.Format("2006-01-02"),
		"end":    end.Format("2006-01-02"),
	}

	var cached []Candle
	if v.cache.Get(VendorYFinance, "candles", params, &cached) {
		return cached, nil
	}

	var out []Candle
	err := WithRetry(ctx, v.retry, func() error {
		iter := chart.Get(&chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.OneDay,
		})
		out = out[:0]
		for iter.Next() {
			bar := iter.Bar()
			out = append(out, Candle{
				Symbol: symbol,
				Date:   time.Unix(int64(bar.Timestamp), 0).UTC(),
				Open:   bar.Open,
				High:   bar.High,
				Low:    bar.Low,
				Close:  bar.Close,
				Volume: int64(bar.Volume),
			})
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("chart for %s: %w", symbol, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = v.cache.Set(VendorYFinance, "candles", params, out)
	return out, nil
}

func (v *yfinanceVendor) stockData(ctx context.Context, req Request) (string, error) {
	candles, err := v.candles(ctx, req.Symbol, req.StartDate, req.EndDate)
	if err != nil {
		return "", err
	}
	table := FormatCandles(req.Symbol, candles)

	// Listing info is best-effort context; a failed lookup never fails the
	// price request.
	if overview, err := v.companyOverview(ctx, req.Symbol); err == nil && overview != "" {
		return overview + "\n\n" + table, nil
	}
	return table, nil
}

func (v *yfinanceVendor) indicators(ctx context.Context, req Request) (string, error) {
	// Indicator windows need history before the report window; 200-day SMA
	// is the longest lookback.
	start := req.StartDate.AddDate(0, 0, -320)
	candles, err := v.candles(ctx, req.Symbol, start, req.EndDate)
	if err != nil {
		return "", err
	}
	return FormatIndicator(req.Symbol, req.Indicator, candles, req.StartDate, req.EndDate)
}

// companyOverview fetches basic listing info, used to enrich prompts.
func (v *yfinanceVendor) companyOverview(ctx context.Context, symbol string) (string, error) {
	symbol = market.Normalize(symbol)

	var out string
	err := WithRetry(ctx, v.retry, func() error {
		eq, err := equity.Get(symbol)
		if err != nil {
			return fmt.Errorf("equity for %s: %w", symbol, err)
		}
		out = fmt.Sprintf("%s (%s), exchange %s, market cap %s, trailing P/E %s",
			eq.ShortName, symbol, eq.FullExchangeName,
			decimal.NewFromFloat(float64(eq.MarketCap)).String(),
			decimal.NewFromFloat(eq.TrailingPE).StringFixed(2))
		return nil
	})
	return out, err
}
