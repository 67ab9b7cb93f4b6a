package scanner

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/aegis-intraday/internal/contracts"
	"github.com/wonny/aegis-intraday/pkg/logger"
)

// Validator confirms tickers are tradable by probing the provider
type Validator struct {
	provider contracts.MarketDataProvider
	config   Config
	logger   *logger.Logger
}

// probeResult is one ticker's validation verdict.
// checked is false when the run was cancelled before a verdict was reached.
type probeResult struct {
	ticker  contracts.Ticker
	valid   bool
	checked bool
}

// NewValidator creates a new Validator
func NewValidator(provider contracts.MarketDataProvider, cfg Config, log *logger.Logger) *Validator {
	return &Validator{
		provider: provider,
		config:   cfg.withDefaults(),
		logger:   log.WithModule("validator"),
	}
}

// Validate returns the subset of tickers for which the provider has recent
// data. Probe failures and timeouts make a ticker invalid; they are never
// returned as errors. Output order is unspecified.
func (v *Validator) Validate(ctx context.Context, tickers []contracts.Ticker) []contracts.Ticker {
	valid, _ := v.validate(ctx, tickers, nil)
	return valid
}

// validate probes all tickers on a bounded worker pool.
// pending holds tickers left unchecked because ctx was cancelled.
func (v *Validator) validate(ctx context.Context, tickers []contracts.Ticker, onProgress func(done, total int)) (valid, pending []contracts.Ticker) {
	if len(tickers) == 0 {
		return nil, nil
	}

	resultCh := make(chan probeResult, len(tickers))
	tickerCh := make(chan contracts.Ticker, len(tickers))

	var wg sync.WaitGroup
	for i := 0; i < v.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			v.probeWorker(ctx, workerID, tickerCh, resultCh)
		}(i)
	}

	for _, t := range tickers {
		tickerCh <- t
	}
	close(tickerCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	done := 0
	for r := range resultCh {
		done++
		switch {
		case !r.checked:
			pending = append(pending, r.ticker)
		case r.valid:
			valid = append(valid, r.ticker)
		}
		if onProgress != nil {
			onProgress(done, len(tickers))
		}
	}

	v.logger.WithFields(map[string]interface{}{
		"total":   len(tickers),
		"valid":   len(valid),
		"pending": len(pending),
	}).Info("Validation completed")

	return valid, pending
}

func (v *Validator) probeWorker(ctx context.Context, workerID int, tickerCh <-chan contracts.Ticker, resultCh chan<- probeResult) {
	for t := range tickerCh {
		if ctx.Err() != nil {
			resultCh <- probeResult{ticker: t}
			continue
		}

		ok, err := v.probe(ctx, t)
		if ctx.Err() != nil {
			resultCh <- probeResult{ticker: t}
			continue
		}

		if err != nil || !ok {
			entry := v.logger.WithFields(map[string]interface{}{
				"worker": workerID,
				"ticker": t,
			})
			if err != nil {
				entry = entry.WithError(err)
			}
			entry.Debug("Ticker invalid")
		}

		resultCh <- probeResult{ticker: t, valid: err == nil && ok, checked: true}
	}
}

// probe makes one bounded-timeout existence check. A provider panic counts
// as a probe failure.
func (v *Validator) probe(ctx context.Context, t contracts.Ticker) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("probe %s panicked: %v", t, r)
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, v.config.Timeout)
	defer cancel()

	return v.provider.ProbeExists(callCtx, t)
}
