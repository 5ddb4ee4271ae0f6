package dataflows

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"boardroom/internal/config"
)

// googleNewsVendor scrapes Google News search results for headlines.
type googleNewsVendor struct {
	cfg    *config.Config
	client *resty.Client
	cache  *CacheManager
	retry  *RetryConfig
}

func newGoogleNewsVendor(cfg *config.Config) *googleNewsVendor {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; boardroom/1.0)")

	return &googleNewsVendor{
		cfg:    cfg,
		client: client,
		cache:  NewCacheManager(filepath.Join(cfg.DataCacheDir, "google_news"), 2*time.Hour, cfg.CacheEnabled),
		retry:  DefaultRetryConfig(),
	}
}

func (v *googleNewsVendor) search(ctx context.Context, query string, start, end time.Time, maxResults int) ([]NewsArticle, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if maxResults <= 0 {
		maxResults = 20
	}

	params := map[string]string{
		"query": query,
		"start": start.Format("2006-01-02"),
		"end":   end.Format("2006-01-02"),
	}
	var cached []NewsArticle
	if v.cache.Get(VendorGoogle, "search", params, &cached) {
		return cached, nil
	}

	q := query
	if !start.IsZero() && !end.IsZero() {
		q += fmt.Sprintf(" after:%s before:%s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	searchURL := fmt.Sprintf("https://news.google.com/search?q=%s&hl=en&gl=US&ceid=US:en", url.QueryEscape(q))

	var articles []NewsArticle
	err := WithRetry(ctx, v.retry, func() error {
		resp, err := v.client.R().SetContext(ctx).Get(searchURL)
		if err != nil {
			return fmt.Errorf("fetch google news: %w", err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("google news status %d", resp.StatusCode())
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
		if err != nil {
			return fmt.Errorf("parse google news html: %w", err)
		}

		articles = articles[:0]
		doc.Find("article").Each(func(_ int, s *goquery.Selection) {
			title := strings.TrimSpace(s.Find("h3").Text())
			if title == "" {
				title = strings.TrimSpace(s.Find("h4").Text())
			}
			if title == "" {
				return
			}

			href, _ := s.Find("a").First().Attr("href")
			source := strings.TrimSpace(s.Find("div[data-n-tid]").Text())
			if source == "" {
				source = "Google News"
			}
			articles = append(articles, NewsArticle{
				Title:       title,
				URL:         cleanRedirectURL(href),
				Source:      source,
				PublishedAt: parseRelativeTime(strings.TrimSpace(s.Find("time").Text())),
			})
		})
		if len(articles) > maxResults {
			articles = articles[:maxResults]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = v.cache.Set(VendorGoogle, "search", params, articles)
	return articles, nil
}

func (v *googleNewsVendor) companyNews(ctx context.Context, req Request) (string, error) {
	articles, err := v.search(ctx, req.Symbol+" stock", req.StartDate, req.EndDate, 25)
	if err != nil {
		return "", err
	}
	return FormatArticles(fmt.Sprintf("Company news for %s", req.Symbol), articles), nil
}

func (v *googleNewsVendor) globalNews(ctx context.Context, req Request) (string, error) {
	articles, err := v.search(ctx, "global economy markets macroeconomics", req.StartDate, req.EndDate, 25)
	if err != nil {
		return "", err
	}
	return FormatArticles("Global macroeconomic news", articles), nil
}

func cleanRedirectURL(raw string) string {
	if i := strings.Index(raw, "url="); i >= 0 {
		if decoded, err := url.QueryUnescape(raw[i+4:]); err == nil {
			if j := strings.IndexByte(decoded, '&'); j > 0 {
				return decoded[:j]
			}
			return decoded
		}
	}
	if strings.HasPrefix(raw, "./") {
		return "https://news.google.com/" + raw[2:]
	}
	return raw
}

var relativeTimePattern = regexp.MustCompile(`(?i)(\d+)\s*(minute|hour|day|week|month)s?\s+ago`)

// parseRelativeTime converts "3 hours ago" style stamps to absolute times.
// Unparseable stamps map to the zero time.
func parseRelativeTime(text string) time.Time {
	if text == "" {
		return time.Time{}
	}
	if t, err := time.Parse("Jan 2, 2006", text); err == nil {
		return t
	}
	m := relativeTimePattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}
	}
	n, _ := strconv.Atoi(m[1])
	now := time.Now()
	switch strings.ToLower(m[2]) {
	case "minute":
		return now.Add(-time.Duration(n) * time.Minute)
	case "hour":
		return now.Add(-time.Duration(n) * time.Hour)
	case "day":
		return now.AddDate(0, 0, -n)
	case "week":
		return now.AddDate(0, 0, -7*n)
	case "month":
		return now.AddDate(0, -n, 0)
	}
	return time.Time{}
}
