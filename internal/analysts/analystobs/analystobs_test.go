package analystobs

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"investiq/internal/metrics"
	"investiq/internal/types"
)

type fakeAnalyst struct {
	res *types.TechnicalResult
	err error
}

func (f *fakeAnalyst) Name() string { return "technical" }

func (f *fakeAnalyst) Analyze(ctx context.Context, symbol string) (*types.TechnicalResult, error) {
	return f.res, f.err
}

func TestWrapPassesResultThrough(t *testing.T) {
	m := metrics.New()
	want := &types.TechnicalResult{Score: 61, Bias: types.BiasSlightlyBullish}
	a := Wrap[*types.TechnicalResult](&fakeAnalyst{res: want}, m)

	if a.Name() != "technical" {
		t.Errorf("Expected name technical, got %s", a.Name())
	}
	got, err := a.Analyze(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("Expected wrapped result to be returned unchanged")
	}
	if n := testutil.CollectAndCount(m.AnalysisDuration); n != 1 {
		t.Errorf("Expected one duration series, got %d", n)
	}
}

func TestWrapPropagatesError(t *testing.T) {
	a := Wrap[*types.TechnicalResult](&fakeAnalyst{err: context.Canceled}, nil)

	got, err := a.Analyze(context.Background(), "ACME")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil result on error, got %+v", got)
	}
}
