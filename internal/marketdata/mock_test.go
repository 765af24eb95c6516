package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investiq/internal/types"
)

func fixedMock(missing ...string) *Mock {
	m := NewMock(missing...)
	m.now = func() time.Time { return time.Date(2026, 10, 15, 15, 0, 0, 0, time.UTC) }
	return m
}

func TestMockIsDeterministic(t *testing.T) {
	ctx := context.Background()
	a, err := fixedMock().PriceHistory(ctx, "ACME", types.Period1Y)
	require.NoError(t, err)
	b, err := fixedMock().PriceHistory(ctx, "acme", types.Period1Y)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other, err := fixedMock().PriceHistory(ctx, "OTHER", types.Period1Y)
	require.NoError(t, err)
	assert.NotEqual(t, a[len(a)-1].Close, other[len(other)-1].Close)
}

func TestMockPriceHistoryShape(t *testing.T) {
	candles, err := fixedMock().PriceHistory(context.Background(), "ACME", types.Period1Y)
	require.NoError(t, err)
	assert.Greater(t, len(candles), 250)
	for i, c := range candles {
		wd := c.Date.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			t.Fatalf("Expected trading days only, got %s", c.Date)
		}
		if c.High < c.Low || c.Close <= 0 {
			t.Fatalf("Expected sane bar at %d, got %+v", i, c)
		}
		if i > 0 && !c.Date.After(candles[i-1].Date) {
			t.Fatalf("Expected chronological order at %d", i)
		}
	}
}

func TestMockFundamentalsAndNews(t *testing.T) {
	ctx := context.Background()
	m := fixedMock()

	info, err := m.CompanyInfo(ctx, "ACME")
	require.NoError(t, err)
	assert.NotNil(t, info.TrailingPE)

	fs, err := m.FinancialStatements(ctx, "ACME")
	require.NoError(t, err)
	assert.Len(t, fs.Income, 4)

	items, err := m.RecentNews(ctx, "ACME")
	require.NoError(t, err)
	assert.Len(t, items, 8)
	assert.Contains(t, items[0].Title, "ACME")
}

func TestMockMissingSymbol(t *testing.T) {
	ctx := context.Background()
	m := fixedMock("GONE")

	_, err := m.PriceHistory(ctx, "gone", types.Period1Y)
	assert.ErrorIs(t, err, ErrDataUnavailable)
	_, err = m.CompanyInfo(ctx, "GONE")
	assert.ErrorIs(t, err, ErrDataUnavailable)
	_, err = m.RecentNews(ctx, "GONE")
	assert.ErrorIs(t, err, ErrDataUnavailable)
}
