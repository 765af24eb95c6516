package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
	"golang.org/x/sync/singleflight"

	"investiq/internal/types"
)

const summaryModules = "price,summaryProfile,summaryDetail,financialData,defaultKeyStatistics,incomeStatementHistory,balanceSheetHistory"

// summaryTTL bounds how long one quoteSummary answer serves both
// CompanyInfo and FinancialStatements for a symbol.
const summaryTTL = time.Minute

// Yahoo serves prices through finance-go charts and fundamentals and news
// through the quoteSummary and search endpoints.
type Yahoo struct {
	client *resty.Client
	quote  func(symbol string) (*finance.Equity, error)
	chart  func(p *chart.Params) ([]*finance.ChartBar, error)
	now    func() time.Time

	summaries singleflight.Group
	mu        sync.Mutex
	recent    map[string]summaryEntry
}

type summaryEntry struct {
	res *summaryResult
	at  time.Time
}

func NewYahoo(baseURL string, timeout time.Duration) *Yahoo {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; investiq)")

	return &Yahoo{
		client: client,
		quote:  equity.Get,
		chart:  fetchChart,
		now:    time.Now,
		recent: make(map[string]summaryEntry),
	}
}

func fetchChart(p *chart.Params) ([]*finance.ChartBar, error) {
	iter := chart.Get(p)
	var bars []*finance.ChartBar
	for iter.Next() {
		bars = append(bars, iter.Bar())
	}
	return bars, iter.Err()
}

func (y *Yahoo) PriceHistory(ctx context.Context, symbol string, period types.Period) ([]types.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	end := y.now()
	start := period.Start(end)
	bars, err := y.chart(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get historical data for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no chart data for %s: %w", symbol, ErrDataUnavailable)
	}

	candles := make([]types.Candle, 0, len(bars))
	for _, bar := range bars {
		if bar == nil || bar.Close.IsZero() {
			continue
		}
		candles = append(candles, candleFromBar(bar))
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("no priced bars for %s: %w", symbol, ErrDataUnavailable)
	}
	return candles, nil
}

func candleFromBar(bar *finance.ChartBar) types.Candle {
	return types.Candle{
		Date:   time.Unix(int64(bar.Timestamp), 0).UTC(),
		Open:   bar.Open.InexactFloat64(),
		High:   bar.High.InexactFloat64(),
		Low:    bar.Low.InexactFloat64(),
		Close:  bar.Close.InexactFloat64(),
		Volume: float64(bar.Volume),
	}
}

type rawValue struct {
	Raw *float64 `json:"raw"`
}

type summaryResponse struct {
	QuoteSummary struct {
		Result []summaryResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type summaryResult struct {
	Price struct {
		ShortName string   `json:"shortName"`
		LongName  string   `json:"longName"`
		Currency  string   `json:"currency"`
		MarketCap rawValue `json:"marketCap"`
	} `json:"price"`
	SummaryProfile struct {
		Sector string `json:"sector"`
	} `json:"summaryProfile"`
	SummaryDetail struct {
		TrailingPE rawValue `json:"trailingPE"`
		ForwardPE  rawValue `json:"forwardPE"`
	} `json:"summaryDetail"`
	FinancialData struct {
		DebtToEquity   rawValue `json:"debtToEquity"`
		ProfitMargins  rawValue `json:"profitMargins"`
		ReturnOnEquity rawValue `json:"returnOnEquity"`
		RevenueGrowth  rawValue `json:"revenueGrowth"`
	} `json:"financialData"`
	DefaultKeyStatistics struct {
		ForwardPE rawValue `json:"forwardPE"`
	} `json:"defaultKeyStatistics"`
	IncomeStatementHistory struct {
		Statements []struct {
			EndDate      rawValue `json:"endDate"`
			TotalRevenue rawValue `json:"totalRevenue"`
			NetIncome    rawValue `json:"netIncome"`
		} `json:"incomeStatementHistory"`
	} `json:"incomeStatementHistory"`
	BalanceSheetHistory struct {
		Statements []struct {
			EndDate                rawValue `json:"endDate"`
			LongTermDebt           rawValue `json:"longTermDebt"`
			ShortLongTermDebt      rawValue `json:"shortLongTermDebt"`
			TotalStockholderEquity rawValue `json:"totalStockholderEquity"`
		} `json:"balanceSheetStatements"`
	} `json:"balanceSheetHistory"`
}

// summary returns the symbol's quoteSummary, reusing a recent answer and
// joining a request already in flight.
func (y *Yahoo) summary(ctx context.Context, symbol string) (*summaryResult, error) {
	now := y.now()
	y.mu.Lock()
	e, ok := y.recent[symbol]
	y.mu.Unlock()
	if ok && now.Sub(e.at) < summaryTTL {
		return e.res, nil
	}

	v, err, _ := y.summaries.Do(symbol, func() (any, error) {
		res, err := y.fetchSummary(ctx, symbol)
		if err != nil {
			return nil, err
		}
		y.mu.Lock()
		defer y.mu.Unlock()
		for sym, old := range y.recent {
			if now.Sub(old.at) >= summaryTTL {
				delete(y.recent, sym)
			}
		}
		y.recent[symbol] = summaryEntry{res: res, at: now}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*summaryResult), nil
}

func (y *Yahoo) fetchSummary(ctx context.Context, symbol string) (*summaryResult, error) {
	var out summaryResponse
	resp, err := y.client.R().
		SetContext(ctx).
		SetQueryParam("modules", summaryModules).
		SetResult(&out).
		Get("/v10/finance/quoteSummary/" + symbol)
	if err != nil {
		return nil, fmt.Errorf("quoteSummary request for %s failed: %w", symbol, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("quoteSummary for %s: %w", symbol, ErrDataUnavailable)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("quoteSummary API error %d: %s", resp.StatusCode(), resp.String())
	}
	if e := out.QuoteSummary.Error; e != nil {
		return nil, fmt.Errorf("quoteSummary for %s: %s: %w", symbol, e.Description, ErrDataUnavailable)
	}
	if len(out.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("empty quoteSummary for %s: %w", symbol, ErrDataUnavailable)
	}
	return &out.QuoteSummary.Result[0], nil
}

// CompanyInfo reads the summary modules and fills missing P/E values from
// the equity quote.
func (y *Yahoo) CompanyInfo(ctx context.Context, symbol string) (*types.CompanyInfo, error) {
	s, err := y.summary(ctx, symbol)
	if err != nil {
		return nil, err
	}

	info := &types.CompanyInfo{
		Symbol:         symbol,
		Name:           firstNonEmpty(s.Price.LongName, s.Price.ShortName),
		Sector:         s.SummaryProfile.Sector,
		Currency:       s.Price.Currency,
		MarketCap:      s.Price.MarketCap.Raw,
		TrailingPE:     s.SummaryDetail.TrailingPE.Raw,
		ForwardPE:      firstPtr(s.SummaryDetail.ForwardPE.Raw, s.DefaultKeyStatistics.ForwardPE.Raw),
		DebtToEquity:   s.FinancialData.DebtToEquity.Raw,
		ProfitMargins:  s.FinancialData.ProfitMargins.Raw,
		ReturnOnEquity: s.FinancialData.ReturnOnEquity.Raw,
		RevenueGrowth:  s.FinancialData.RevenueGrowth.Raw,
	}

	if info.TrailingPE == nil || info.ForwardPE == nil {
		if q, err := y.quote(symbol); err == nil && q != nil {
			if info.TrailingPE == nil && q.TrailingPE != 0 {
				info.TrailingPE = types.Ptr(q.TrailingPE)
			}
			if info.ForwardPE == nil && q.ForwardPE != 0 {
				info.ForwardPE = types.Ptr(q.ForwardPE)
			}
			if info.MarketCap == nil && q.MarketCap != 0 {
				info.MarketCap = types.Ptr(float64(q.MarketCap))
			}
			if info.Name == "" {
				info.Name = firstNonEmpty(q.LongName, q.ShortName)
			}
		}
	}
	return info, nil
}

func (y *Yahoo) FinancialStatements(ctx context.Context, symbol string) (*types.FinancialStatements, error) {
	s, err := y.summary(ctx, symbol)
	if err != nil {
		return nil, err
	}

	fs := &types.FinancialStatements{}
	for _, st := range s.IncomeStatementHistory.Statements {
		fs.Income = append(fs.Income, types.IncomePeriod{
			PeriodEnd:    unixDate(st.EndDate.Raw),
			TotalRevenue: st.TotalRevenue.Raw,
			NetIncome:    st.NetIncome.Raw,
		})
	}
	for _, st := range s.BalanceSheetHistory.Statements {
		fs.Balance = append(fs.Balance, types.BalancePeriod{
			PeriodEnd:          unixDate(st.EndDate.Raw),
			TotalDebt:          sumPtr(st.LongTermDebt.Raw, st.ShortLongTermDebt.Raw),
			StockholdersEquity: st.TotalStockholderEquity.Raw,
		})
	}
	if len(fs.Income) == 0 && len(fs.Balance) == 0 {
		return nil, fmt.Errorf("no statements for %s: %w", symbol, ErrDataUnavailable)
	}
	return fs, nil
}

type searchResponse struct {
	News []struct {
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		Link                string `json:"link"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

func (y *Yahoo) RecentNews(ctx context.Context, symbol string) ([]types.NewsItem, error) {
	var out searchResponse
	resp, err := y.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":           symbol,
			"quotesCount": "0",
			"newsCount":   "20",
		}).
		SetResult(&out).
		Get("/v1/finance/search")
	if err != nil {
		return nil, fmt.Errorf("news search for %s failed: %w", symbol, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("news search API error %d: %s", resp.StatusCode(), resp.String())
	}

	items := make([]types.NewsItem, 0, len(out.News))
	for _, n := range out.News {
		if strings.TrimSpace(n.Title) == "" {
			continue
		}
		items = append(items, types.NewsItem{
			Title:     n.Title,
			Publisher: n.Publisher,
			URL:       n.Link,
			Published: time.Unix(n.ProviderPublishTime, 0).UTC(),
		})
	}
	return items, nil
}

func unixDate(raw *float64) time.Time {
	if raw == nil {
		return time.Time{}
	}
	return time.Unix(int64(*raw), 0).UTC()
}

// sumPtr adds the present values; nil when none are present.
func sumPtr(vals ...*float64) *float64 {
	var total *float64
	for _, v := range vals {
		if v == nil {
			continue
		}
		if total == nil {
			total = types.Ptr(0)
		}
		*total += *v
	}
	return total
}

func firstPtr(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
