package marketdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investiq/internal/types"
)

const summaryBody = `{"quoteSummary":{"result":[{
  "price":{"shortName":"Acme","longName":"Acme Corporation","currency":"USD","marketCap":{"raw":2500000000}},
  "summaryProfile":{"sector":"Industrials"},
  "summaryDetail":{"trailingPE":{},"forwardPE":{"raw":18.5}},
  "financialData":{"debtToEquity":{"raw":42.1},"profitMargins":{"raw":0.21},"returnOnEquity":{"raw":0.17},"revenueGrowth":{"raw":0.08}},
  "defaultKeyStatistics":{"forwardPE":{"raw":19.0}},
  "incomeStatementHistory":{"incomeStatementHistory":[
    {"endDate":{"raw":1703980800},"totalRevenue":{"raw":1200},"netIncome":{"raw":240}},
    {"endDate":{"raw":1672444800},"totalRevenue":{"raw":1000},"netIncome":{}}
  ]},
  "balanceSheetHistory":{"balanceSheetStatements":[
    {"endDate":{"raw":1703980800},"longTermDebt":{"raw":300},"shortLongTermDebt":{"raw":50},"totalStockholderEquity":{"raw":1000}}
  ]}
}],"error":null}}`

const searchBody = `{"news":[
  {"title":"Acme wins contract","publisher":"Reuters","link":"https://example.com/1","providerPublishTime":1760486400},
  {"title":"  ","publisher":"Nobody","link":"https://example.com/2","providerPublishTime":1760486400}
]}`

func newYahooServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v10/finance/quoteSummary/ACME", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("modules"), "incomeStatementHistory")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(summaryBody))
	})
	mux.HandleFunc("/v10/finance/quoteSummary/NOPE", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found"}}}`))
	})
	mux.HandleFunc("/v1/finance/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ACME", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestYahooCompanyInfo(t *testing.T) {
	srv := newYahooServer(t)
	y := NewYahoo(srv.URL, 5*time.Second)
	y.quote = func(symbol string) (*finance.Equity, error) {
		q := &finance.Equity{TrailingPE: 22.4, ForwardPE: 99}
		return q, nil
	}

	info, err := y.CompanyInfo(context.Background(), "ACME")
	require.NoError(t, err)

	assert.Equal(t, "Acme Corporation", info.Name)
	assert.Equal(t, "Industrials", info.Sector)
	require.NotNil(t, info.TrailingPE)
	assert.Equal(t, 22.4, *info.TrailingPE, "missing trailing P/E is filled from the equity quote")
	assert.Equal(t, 18.5, *info.ForwardPE, "summary value wins over the quote")
	assert.Equal(t, 42.1, *info.DebtToEquity)
	assert.Equal(t, 0.21, *info.ProfitMargins)
	assert.Equal(t, 0.08, *info.RevenueGrowth)
}

func TestYahooFinancialStatements(t *testing.T) {
	srv := newYahooServer(t)
	y := NewYahoo(srv.URL, 5*time.Second)

	fs, err := y.FinancialStatements(context.Background(), "ACME")
	require.NoError(t, err)

	require.Len(t, fs.Income, 2)
	assert.Equal(t, 1200.0, *fs.IncomeAt(0).TotalRevenue)
	assert.Equal(t, 1000.0, *fs.IncomeAt(1).TotalRevenue)
	assert.Nil(t, fs.Income[1].NetIncome)
	require.NotNil(t, fs.BalanceAt(0).TotalDebt)
	assert.Equal(t, 350.0, *fs.BalanceAt(0).TotalDebt, "long and short term debt are summed")
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), fs.Income[0].PeriodEnd)
}

func TestYahooSharesSummaryAcrossFundamentals(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(summaryBody))
	}))
	t.Cleanup(srv.Close)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	y := NewYahoo(srv.URL, 5*time.Second)
	y.quote = func(string) (*finance.Equity, error) { return nil, errors.New("offline") }
	y.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := y.CompanyInfo(ctx, "ACME")
	require.NoError(t, err)
	_, err = y.FinancialStatements(ctx, "ACME")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "one quoteSummary request serves both")

	now = now.Add(summaryTTL)
	_, err = y.FinancialStatements(ctx, "ACME")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "expired summaries are fetched again")
}

func TestYahooUnknownSymbol(t *testing.T) {
	srv := newYahooServer(t)
	y := NewYahoo(srv.URL, 5*time.Second)

	_, err := y.CompanyInfo(context.Background(), "NOPE")
	assert.True(t, errors.Is(err, ErrDataUnavailable), "Expected ErrDataUnavailable, got %v", err)
}

func TestYahooRecentNews(t *testing.T) {
	srv := newYahooServer(t)
	y := NewYahoo(srv.URL, 5*time.Second)

	items, err := y.RecentNews(context.Background(), "ACME")
	require.NoError(t, err)
	require.Len(t, items, 1, "blank titles are dropped")
	assert.Equal(t, "Acme wins contract", items[0].Title)
	assert.Equal(t, "Reuters", items[0].Publisher)
	assert.Equal(t, time.Unix(1760486400, 0).UTC(), items[0].Published)
}

func TestYahooPriceHistory(t *testing.T) {
	y := NewYahoo("http://unused.invalid", time.Second)
	y.now = func() time.Time { return time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC) }

	var got *chart.Params
	y.chart = func(p *chart.Params) ([]*finance.ChartBar, error) {
		got = p
		return []*finance.ChartBar{
			{Timestamp: 1760313600, Open: decimal.RequireFromString("10.5"), High: decimal.NewFromInt(12), Low: decimal.NewFromInt(10), Close: decimal.RequireFromString("11.25"), Volume: 1000},
			{Timestamp: 1760400000},
		}, nil
	}

	candles, err := y.PriceHistory(context.Background(), "ACME", types.Period3M)
	require.NoError(t, err)
	require.Len(t, candles, 1, "bars without a close are skipped")
	assert.Equal(t, 11.25, candles[0].Close)
	assert.Equal(t, 10.5, candles[0].Open)
	assert.Equal(t, 1000.0, candles[0].Volume)
	assert.Equal(t, "ACME", got.Symbol)

	y.chart = func(p *chart.Params) ([]*finance.ChartBar, error) { return nil, nil }
	_, err = y.PriceHistory(context.Background(), "ACME", types.Period3M)
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestSumPtr(t *testing.T) {
	assert.Nil(t, sumPtr(nil, nil))
	assert.Equal(t, 5.0, *sumPtr(types.Ptr(2), nil, types.Ptr(3)))
}
