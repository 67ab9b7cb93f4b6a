package universe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wonny/aegis-intraday/internal/contracts"
	"github.com/wonny/aegis-intraday/pkg/logger"
)

// ErrUnknownExchange is a fatal input error raised before a scan starts
var ErrUnknownExchange = errors.New("unknown exchange")

// Universe turns exchange identifiers into suffix-qualified tickers
// ⭐ SSOT: 거래소 → 티커 변환은 여기서만
type Universe struct {
	source   contracts.SymbolSource
	suffixes map[string]string
	logger   *logger.Logger
}

// New creates a Universe. suffixes maps exchange code to ticker suffix.
func New(source contracts.SymbolSource, suffixes map[string]string, log *logger.Logger) *Universe {
	normalized := make(map[string]string, len(suffixes))
	for code, suffix := range suffixes {
		normalized[strings.ToUpper(code)] = suffix
	}

	return &Universe{
		source:   source,
		suffixes: normalized,
		logger:   log.WithModule("universe"),
	}
}

// Tickers returns the deduplicated tickers of all exchanges in input order
func (u *Universe) Tickers(ctx context.Context, exchanges []string) ([]contracts.Ticker, error) {
	if len(exchanges) == 0 {
		return nil, fmt.Errorf("no exchange selected")
	}

	seen := make(map[contracts.Ticker]bool)
	var tickers []contracts.Ticker

	for _, exchange := range exchanges {
		code := strings.ToUpper(strings.TrimSpace(exchange))
		suffix, ok := u.suffixes[code]
		if !ok {
			return nil, fmt.Errorf("%q: %w", exchange, ErrUnknownExchange)
		}

		symbols, err := u.source.Symbols(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("load %s symbols: %w", code, err)
		}

		for _, symbol := range symbols {
			symbol = strings.ToUpper(strings.TrimSpace(symbol))
			if symbol == "" {
				continue
			}
			t := contracts.Ticker(symbol + suffix)
			if seen[t] {
				continue
			}
			seen[t] = true
			tickers = append(tickers, t)
		}

		u.logger.WithFields(map[string]interface{}{
			"exchange": code,
			"symbols":  len(symbols),
		}).Debug("Loaded exchange symbols")
	}

	return tickers, nil
}

// Exchanges returns the known exchange codes
func (u *Universe) Exchanges() []string {
	codes := make([]string, 0, len(u.suffixes))
	for code := range u.suffixes {
		codes = append(codes, code)
	}
	return codes
}
