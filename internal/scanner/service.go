package scanner

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/aegis-intraday/internal/contracts"
	"github.com/wonny/aegis-intraday/pkg/logger"
)

// TickerSource resolves exchanges into tickers. *universe.Universe implements it.
type TickerSource interface {
	Tickers(ctx context.Context, exchanges []string) ([]contracts.Ticker, error)
}

// SessionSource supplies the session to scan. *session.Calendar implements it.
type SessionSource interface {
	Current() contracts.Session
}

// Service runs complete scans: exchanges → tickers → session → pipeline.
// It keeps the most recent outcome in memory only.
type Service struct {
	universe  TickerSource
	calendar  SessionSource
	pipeline  *Pipeline
	exchanges []string
	logger    *logger.Logger

	mu   sync.RWMutex
	last *contracts.BatchOutcome
}

// NewService creates a new Service. exchanges is the default selection.
func NewService(universe TickerSource, calendar SessionSource, pipeline *Pipeline, exchanges []string, log *logger.Logger) *Service {
	return &Service{
		universe:  universe,
		calendar:  calendar,
		pipeline:  pipeline,
		exchanges: exchanges,
		logger:    log.WithModule("scan_service"),
	}
}

// Scan runs one batch. An empty exchanges list uses the default selection.
// Only input errors (unknown exchange, unreadable universe) are returned.
func (s *Service) Scan(ctx context.Context, exchanges []string) (*contracts.BatchOutcome, error) {
	if len(exchanges) == 0 {
		exchanges = s.exchanges
	}

	tickers, err := s.universe.Tickers(ctx, exchanges)
	if err != nil {
		return nil, fmt.Errorf("resolve universe: %w", err)
	}

	session := s.calendar.Current()
	s.logger.WithFields(map[string]interface{}{
		"exchanges": exchanges,
		"tickers":   len(tickers),
		"session":   session.Label(),
	}).Info("Scan requested")

	out := s.pipeline.Run(ctx, tickers, session)

	s.mu.Lock()
	s.last = out
	s.mu.Unlock()

	return out, nil
}

// Last returns the most recent outcome, or nil before the first scan
func (s *Service) Last() *contracts.BatchOutcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Tickers exposes the universe resolution used by Scan
func (s *Service) Tickers(ctx context.Context, exchanges []string) ([]contracts.Ticker, error) {
	if len(exchanges) == 0 {
		exchanges = s.exchanges
	}
	return s.universe.Tickers(ctx, exchanges)
}

// Session returns the session a scan started now would use
func (s *Service) Session() contracts.Session {
	return s.calendar.Current()
}
