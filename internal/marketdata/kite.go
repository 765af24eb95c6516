package marketdata

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"investiq/internal/logger"
	"investiq/internal/types"
)

// kiteAPI is the subset of the Kite Connect client used for daily candles.
type kiteAPI interface {
	GetInstrumentsByExchange(exchange string) (kiteconnect.Instruments, error)
	GetHistoricalData(instrumentToken int, interval string, fromDate time.Time, toDate time.Time, continuous bool, oi bool) ([]kiteconnect.HistoricalData, error)
}

// Kite serves daily candles for Indian equities from Kite Connect.
type Kite struct {
	api      kiteAPI
	exchange string
	mapper   *instrumentMapper
	loadMu   sync.Mutex
	now      func() time.Time
}

func NewKite(apiKey, accessToken, exchange string) *Kite {
	kc := kiteconnect.New(apiKey)
	kc.SetAccessToken(accessToken)
	return newKite(kc, exchange)
}

func newKite(api kiteAPI, exchange string) *Kite {
	return &Kite{
		api:      api,
		exchange: strings.ToUpper(exchange),
		mapper:   newInstrumentMapper(),
		now:      time.Now,
	}
}

// TradingSymbol strips Yahoo-style exchange suffixes (RELIANCE.NS -> RELIANCE).
func TradingSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	for _, suffix := range []string{".NS", ".BO"} {
		s = strings.TrimSuffix(s, suffix)
	}
	return s
}

func (k *Kite) PriceHistory(ctx context.Context, symbol string, period types.Period) ([]types.Candle, error) {
	token, err := k.token(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	to := k.now()
	logger.Debug(ctx, "Fetching Kite history", "tradingsymbol", k.mapper.getSymbol(token), "token", token, "period", period)
	bars, err := k.api.GetHistoricalData(token, "day", period.Start(to), to, false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch historical data for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no historical data for %s: %w", symbol, ErrDataUnavailable)
	}

	candles := make([]types.Candle, 0, len(bars))
	for _, b := range bars {
		candles = append(candles, types.Candle{
			Date:   b.Date.Time.UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		})
	}
	return candles, nil
}

// token resolves the instrument token, loading the exchange dump on first use.
func (k *Kite) token(ctx context.Context, symbol string) (int, error) {
	ts := TradingSymbol(symbol)
	if tok, ok := k.mapper.getToken(ts); ok {
		return tok, nil
	}

	k.loadMu.Lock()
	defer k.loadMu.Unlock()
	if k.mapper.size() == 0 {
		instruments, err := k.api.GetInstrumentsByExchange(k.exchange)
		if err != nil {
			return 0, fmt.Errorf("failed to load %s instruments: %w", k.exchange, err)
		}
		for _, inst := range instruments {
			k.mapper.addMapping(strings.ToUpper(inst.Tradingsymbol), inst.InstrumentToken)
		}
		logger.Info(ctx, "Loaded instrument map", "exchange", k.exchange, "instruments", k.mapper.size())
	}

	tok, ok := k.mapper.getToken(ts)
	if !ok {
		return 0, fmt.Errorf("%s on %s: %w", ts, k.exchange, ErrUnknownSymbol)
	}
	return tok, nil
}

// instrumentMapper maps trading symbols to instrument tokens and back.
type instrumentMapper struct {
	symbolToToken map[string]int
	tokenToSymbol map[int]string
	mu            sync.RWMutex
}

func newInstrumentMapper() *instrumentMapper {
	return &instrumentMapper{
		symbolToToken: make(map[string]int),
		tokenToSymbol: make(map[int]string),
	}
}

func (im *instrumentMapper) addMapping(symbol string, token int) {
	im.mu.Lock()
	defer im.mu.Unlock()

	im.symbolToToken[symbol] = token
	im.tokenToSymbol[token] = symbol
}

func (im *instrumentMapper) getToken(symbol string) (int, bool) {
	im.mu.RLock()
	defer im.mu.RUnlock()

	token, exists := im.symbolToToken[symbol]
	return token, exists
}

func (im *instrumentMapper) getSymbol(token int) string {
	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.tokenToSymbol[token]
}

func (im *instrumentMapper) size() int {
	im.mu.RLock()
	defer im.mu.RUnlock()

	return len(im.symbolToToken)
}
