package contracts

import (
	"context"
	"time"
)

// MarketDataProvider is the external market data source consumed by the scanner
// ⭐ SSOT: 시세 데이터 제공자 인터페이스
type MarketDataProvider interface {
	// ProbeExists reports whether any recent trade data exists for the ticker.
	ProbeExists(ctx context.Context, ticker Ticker) (bool, error)

	// GetIntradayBars returns bars of the given interval within [start, end].
	GetIntradayBars(ctx context.Context, ticker Ticker, start, end time.Time, interval time.Duration) (TimeSeries, error)
}

// SymbolSource resolves an exchange identifier into its raw symbol list
type SymbolSource interface {
	Symbols(ctx context.Context, exchange string) ([]string, error)
}
