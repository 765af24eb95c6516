package news

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"investiq/internal/logger"
	"investiq/internal/types"
)

const (
	SiteRSS  = "rss"
	SiteHTML = "html"

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Site is one scraped news source. URL may contain {symbol}.
type Site struct {
	Name      string    `yaml:"name"`
	Kind      string    `yaml:"kind"`
	URL       string    `yaml:"url"`
	Selectors Selectors `yaml:"selectors"`
}

// Selectors are CSS selectors for html sites.
type Selectors struct {
	Article   string `yaml:"article"`
	Title     string `yaml:"title"`
	Link      string `yaml:"link"`
	Summary   string `yaml:"summary"`
	Published string `yaml:"published"`
}

type ScraperConfig struct {
	Sites          []Site `yaml:"sites"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxPerSite     int    `yaml:"max_per_site"`
	UserAgent      string `yaml:"user_agent"`
}

func DefaultScraperConfig() ScraperConfig {
	return ScraperConfig{
		Sites: []Site{
			{
				Name: "YahooFinance",
				Kind: SiteRSS,
				URL:  "https://feeds.finance.yahoo.com/rss/2.0/headline?s={symbol}&region=US&lang=en-US",
			},
			{
				Name: "GoogleNews",
				Kind: SiteRSS,
				URL:  "https://news.google.com/rss/search?q={symbol}+stock&hl=en-US&gl=US&ceid=US:en",
			},
		},
		TimeoutSeconds: 20,
		MaxPerSite:     20,
		UserAgent:      defaultUserAgent,
	}
}

// Scraper collects headlines from RSS feeds and listing pages.
type Scraper struct {
	cfg     ScraperConfig
	timeout time.Duration
	now     func() time.Time
}

func NewScraper(cfg ScraperConfig) *Scraper {
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 20
	}
	if cfg.MaxPerSite <= 0 {
		cfg.MaxPerSite = 20
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	return &Scraper{
		cfg:     cfg,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		now:     time.Now,
	}
}

// RecentNews scrapes every site and returns items newest first. A failing
// site is logged and skipped; the call fails only when all sites fail.
func (s *Scraper) RecentNews(ctx context.Context, symbol string) ([]types.NewsItem, error) {
	if len(s.cfg.Sites) == 0 {
		return nil, errors.New("no news sites configured")
	}

	var (
		items    []types.NewsItem
		failures int
		lastErr  error
	)
	for _, site := range s.cfg.Sites {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		got, err := s.scrapeSite(ctx, site, symbol)
		if err != nil {
			logger.Warn(ctx, "News site scrape failed", "site", site.Name, "symbol", symbol, "error", err)
			failures++
			lastErr = err
			continue
		}
		items = append(items, got...)
	}
	if failures == len(s.cfg.Sites) {
		return nil, fmt.Errorf("all news sites failed: %w", lastErr)
	}

	items = dedupe(items)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Published.After(items[j].Published)
	})
	logger.Debug(ctx, "News scraping completed", "symbol", symbol, "items", len(items))
	return items, nil
}

func (s *Scraper) scrapeSite(ctx context.Context, site Site, symbol string) ([]types.NewsItem, error) {
	target := strings.ReplaceAll(site.URL, "{symbol}", url.QueryEscape(symbol))
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid url for %s: %w", site.Name, err)
	}

	c := colly.NewCollector(
		colly.AllowedDomains(u.Hostname()),
		colly.MaxDepth(1),
		colly.StdlibContext(ctx),
		colly.UserAgent(s.cfg.UserAgent),
	)
	c.SetRequestTimeout(s.timeout)

	var items []types.NewsItem
	var scrapeErr error
	c.OnError(func(r *colly.Response, err error) {
		scrapeErr = fmt.Errorf("%s returned %d: %w", site.Name, r.StatusCode, err)
	})

	switch site.Kind {
	case SiteHTML:
		s.onHTML(c, site, u, &items)
	default:
		s.onRSS(c, site, &items)
	}

	if err := c.Visit(target); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", target, err)
	}
	c.Wait()
	if scrapeErr != nil {
		return nil, scrapeErr
	}
	return items, nil
}

func (s *Scraper) onRSS(c *colly.Collector, site Site, items *[]types.NewsItem) {
	c.OnXML("//item", func(e *colly.XMLElement) {
		if len(*items) >= s.cfg.MaxPerSite {
			return
		}
		title := strings.TrimSpace(e.ChildText("title"))
		if title == "" {
			return
		}
		publisher := strings.TrimSpace(e.ChildText("source"))
		if publisher == "" {
			publisher = site.Name
		}
		*items = append(*items, types.NewsItem{
			Title:     title,
			Summary:   stripHTML(e.ChildText("description")),
			Publisher: publisher,
			URL:       strings.TrimSpace(e.ChildText("link")),
			Published: s.parseTime(e.ChildText("pubDate"), len(*items)),
		})
	})
}

func (s *Scraper) onHTML(c *colly.Collector, site Site, base *url.URL, items *[]types.NewsItem) {
	sel := site.Selectors
	c.OnHTML(sel.Article, func(e *colly.HTMLElement) {
		if len(*items) >= s.cfg.MaxPerSite {
			return
		}
		title := strings.TrimSpace(e.ChildText(sel.Title))
		if title == "" {
			return
		}
		link := e.ChildAttr(sel.Link, "href")
		if ref, err := url.Parse(link); err == nil {
			link = base.ResolveReference(ref).String()
		}

		// Prefer a machine readable datetime attribute over the visible text.
		published := e.DOM.Find(sel.Published).First()
		stamp := published.AttrOr("datetime", strings.TrimSpace(published.Text()))

		*items = append(*items, types.NewsItem{
			Title:     title,
			Summary:   strings.TrimSpace(e.ChildText(sel.Summary)),
			Publisher: site.Name,
			URL:       link,
			Published: s.parseTime(stamp, len(*items)),
		})
	})
}

var timeLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
}

// parseTime falls back to the scrape time when no layout matches, since
// listing pages often show relative ages. Fallback stamps step back one
// minute per position so newest-first listing order survives sorting.
func (s *Scraper) parseTime(v string, pos int) time.Time {
	v = strings.TrimSpace(v)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return s.now().Add(-time.Duration(pos) * time.Minute)
}

// stripHTML flattens feed descriptions, which are often HTML fragments.
func stripHTML(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if !strings.Contains(fragment, "<") {
		return fragment
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func dedupe(items []types.NewsItem) []types.NewsItem {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, it := range items {
		key := strings.ToLower(it.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out
}
