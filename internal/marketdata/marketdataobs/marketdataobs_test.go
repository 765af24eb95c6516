package marketdataobs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investiq/internal/marketdata"
	"investiq/internal/metrics"
	"investiq/internal/types"
)

func TestOutcome(t *testing.T) {
	tests := map[string]error{
		"ok":           nil,
		"unavailable":  fmt.Errorf("wrapped: %w", marketdata.ErrDataUnavailable),
		"circuit_open": fmt.Errorf("price: %w", marketdata.ErrCircuitOpen),
		"cancelled":    context.Canceled,
		"error":        errors.New("boom"),
	}
	for want, err := range tests {
		if got := Outcome(err); got != want {
			t.Errorf("Expected outcome %s, got %s", want, got)
		}
	}
}

func TestWrapCountsCalls(t *testing.T) {
	m := metrics.New()
	mock := marketdata.NewMock("GONE")
	md := Wrap(mock, m)
	ctx := context.Background()

	candles, err := md.PriceHistory(ctx, "ACME", types.Period3M)
	require.NoError(t, err)
	assert.NotEmpty(t, candles)

	_, err = md.CompanyInfo(ctx, "GONE")
	assert.ErrorIs(t, err, marketdata.ErrDataUnavailable)

	_, _ = md.FinancialStatements(ctx, "ACME")
	_, _ = md.RecentNews(ctx, "ACME")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderCalls.WithLabelValues(marketdata.OpPriceHistory, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderCalls.WithLabelValues(marketdata.OpCompanyInfo, "unavailable")))
	assert.Equal(t, 4, testutil.CollectAndCount(m.ProviderCalls))
}
