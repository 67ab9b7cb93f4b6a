package scanner

import (
	"context"

	"github.com/wonny/aegis-intraday/internal/contracts"
	"github.com/wonny/aegis-intraday/pkg/logger"
)

// Fetcher retrieves one ticker's one-minute bars for a session
type Fetcher struct {
	provider contracts.MarketDataProvider
	config   Config
	logger   *logger.Logger
}

// NewFetcher creates a new Fetcher
func NewFetcher(provider contracts.MarketDataProvider, cfg Config, log *logger.Logger) *Fetcher {
	return &Fetcher{
		provider: provider,
		config:   cfg.withDefaults(),
		logger:   log.WithModule("fetcher"),
	}
}

// Fetch makes exactly one bounded-timeout provider call. Any failure yields an
// empty series. Bars outside the session or out of order are dropped.
func (f *Fetcher) Fetch(ctx context.Context, ticker contracts.Ticker, session contracts.Session) contracts.TimeSeries {
	callCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	series, err := f.provider.GetIntradayBars(callCtx, ticker, session.Open, session.Close, barInterval)
	if err != nil {
		f.logger.WithError(err).WithFields(map[string]interface{}{
			"ticker":  ticker,
			"session": session.Label(),
		}).Warn("Failed to fetch intraday bars")
		return contracts.TimeSeries{Ticker: ticker}
	}

	series.Ticker = ticker
	return series.Window(session.Open, session.Close)
}
