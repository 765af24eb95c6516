package marketdata

import "errors"

var (
	// ErrDataUnavailable means the upstream answered but had nothing usable.
	ErrDataUnavailable = errors.New("market data unavailable")
	// ErrCircuitOpen is returned while an operation's breaker is open.
	ErrCircuitOpen = errors.New("market data circuit open")
	// ErrUnknownSymbol means the symbol could not be resolved to an instrument.
	ErrUnknownSymbol = errors.New("unknown symbol")
)
