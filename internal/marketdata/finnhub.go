package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"investiq/internal/types"
)

// Finnhub serves company news from the /company-news endpoint.
type Finnhub struct {
	client       *resty.Client
	apiKey       string
	lookbackDays int
	now          func() time.Time
}

type finnhubNews struct {
	Category string `json:"category"`
	DateTime int64  `json:"datetime"`
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

func NewFinnhub(baseURL, apiKey string, lookbackDays int, timeout time.Duration) *Finnhub {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	client.SetTimeout(timeout)
	if lookbackDays <= 0 {
		lookbackDays = 7
	}
	return &Finnhub{
		client:       client,
		apiKey:       apiKey,
		lookbackDays: lookbackDays,
		now:          time.Now,
	}
}

func (f *Finnhub) RecentNews(ctx context.Context, symbol string) ([]types.NewsItem, error) {
	if f.apiKey == "" {
		return nil, errors.New("finnhub API key not configured")
	}

	to := f.now().UTC()
	from := to.AddDate(0, 0, -f.lookbackDays)

	var out []finnhubNews
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"from":   from.Format("2006-01-02"),
			"to":     to.Format("2006-01-02"),
			"token":  f.apiKey,
		}).
		SetResult(&out).
		Get("/company-news")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news for %s: %w", symbol, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("finnhub API error %d: %s", resp.StatusCode(), resp.String())
	}

	items := make([]types.NewsItem, 0, len(out))
	for _, n := range out {
		if strings.TrimSpace(n.Headline) == "" {
			continue
		}
		items = append(items, types.NewsItem{
			Title:     n.Headline,
			Summary:   n.Summary,
			Publisher: n.Source,
			URL:       n.URL,
			Published: time.Unix(n.DateTime, 0).UTC(),
		})
	}
	return items, nil
}
