package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/aegis-intraday/internal/contracts"
	"github.com/wonny/aegis-intraday/internal/stats"
	"github.com/wonny/aegis-intraday/pkg/logger"
)

// Analyzer turns a series into statistics. *stats.Engine implements it.
type Analyzer interface {
	Analyze(ticker contracts.Ticker, series contracts.TimeSeries) (contracts.AnalysisResult, error)
}

// Recorder observes pipeline outcomes. *metrics.Recorder implements it.
type Recorder interface {
	RecordOutcome(kind contracts.OutcomeKind)
	RecordRun(outcome *contracts.BatchOutcome, duration time.Duration)
}

// Stage names a pipeline phase in progress callbacks
type Stage string

const (
	StageValidate Stage = "validate"
	StageProcess  Stage = "process"
)

// ProgressFunc receives (done, total) after each ticker finishes a stage.
// It is always called from a single goroutine.
type ProgressFunc func(stage Stage, done, total int)

// Option configures a Pipeline
type Option func(*Pipeline)

// WithProgress sets a progress callback
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// WithRecorder attaches an outcome recorder
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// WithClock overrides the clock used for run timestamps
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// Pipeline coordinates validate → fetch → analyze over a ticker batch.
// Each ticker is an isolated task: its failure never aborts the batch.
// ⭐ SSOT: 배치 스캔 오케스트레이션은 여기서만
type Pipeline struct {
	validator *Validator
	fetcher   *Fetcher
	analyzer  Analyzer
	config    Config
	logger    *logger.Logger

	progress ProgressFunc
	recorder Recorder
	now      func() time.Time
}

// NewPipeline creates a new Pipeline
func NewPipeline(provider contracts.MarketDataProvider, analyzer Analyzer, cfg Config, log *logger.Logger, opts ...Option) *Pipeline {
	cfg = cfg.withDefaults()

	p := &Pipeline{
		validator: NewValidator(provider, cfg, log),
		fetcher:   NewFetcher(provider, cfg, log),
		analyzer:  analyzer,
		config:    cfg,
		logger:    log.WithModule("pipeline"),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run scans the batch and returns its outcome. It never fails: per-ticker
// errors are folded into the outcome. On cancellation, tickers not yet
// processed are reported as skipped.
func (p *Pipeline) Run(ctx context.Context, tickers []contracts.Ticker, session contracts.Session) *contracts.BatchOutcome {
	out := &contracts.BatchOutcome{
		RunID:     uuid.NewString(),
		Session:   session,
		StartedAt: p.now(),
		Total:     len(tickers),
		Results:   []contracts.AnalysisResult{},
		Skipped:   []contracts.Ticker{},
	}

	log := p.logger.WithRun(out.RunID).WithField("session", session.Label())

	log.WithFields(map[string]interface{}{
		"tickers": len(tickers),
		"workers": p.config.Workers,
	}).Info("Starting scan")

	// 1. Validate
	valid, pending := p.validator.validate(ctx, tickers, p.stageProgress(StageValidate))
	out.Skipped = append(out.Skipped, pending...)
	out.InvalidCount = len(tickers) - len(valid) - len(pending)

	if p.recorder != nil {
		for i := 0; i < out.InvalidCount; i++ {
			p.recorder.RecordOutcome(contracts.OutcomeInvalidTicker)
		}
		for range pending {
			p.recorder.RecordOutcome(contracts.OutcomeCancelled)
		}
	}

	// 2. Fetch + analyze
	onProgress := p.stageProgress(StageProcess)
	done := 0
	for o := range p.process(ctx, valid, session) {
		done++

		switch o.Kind {
		case contracts.OutcomeSuccess:
			out.Results = append(out.Results, o.Result)
		default:
			out.Skipped = append(out.Skipped, o.Ticker)
		}

		if p.recorder != nil {
			p.recorder.RecordOutcome(o.Kind)
		}
		if onProgress != nil {
			onProgress(done, len(valid))
		}
	}

	out.FinishedAt = p.now()
	out.Normalize()

	log.WithFields(map[string]interface{}{
		"total":     out.Total,
		"valid":     out.ValidCount(),
		"processed": len(out.Results),
		"skipped":   len(out.Skipped),
		"invalid":   out.InvalidCount,
		"duration":  out.FinishedAt.Sub(out.StartedAt),
	}).Info("Scan completed")

	if p.recorder != nil {
		p.recorder.RecordRun(out, out.FinishedAt.Sub(out.StartedAt))
	}

	return out
}

func (p *Pipeline) stageProgress(stage Stage) func(done, total int) {
	if p.progress == nil {
		return nil
	}
	return func(done, total int) {
		p.progress(stage, done, total)
	}
}

// process runs fetch+analyze for each ticker on a bounded worker pool.
// The returned channel is closed once every ticker has produced one Outcome.
func (p *Pipeline) process(ctx context.Context, tickers []contracts.Ticker, session contracts.Session) <-chan contracts.Outcome {
	outcomeCh := make(chan contracts.Outcome, len(tickers))
	tickerCh := make(chan contracts.Ticker, len(tickers))

	var wg sync.WaitGroup
	for i := 0; i < p.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.processWorker(ctx, workerID, tickerCh, outcomeCh, session)
		}(i)
	}

	for _, t := range tickers {
		tickerCh <- t
	}
	close(tickerCh)

	go func() {
		wg.Wait()
		close(outcomeCh)
	}()

	return outcomeCh
}

func (p *Pipeline) processWorker(ctx context.Context, workerID int, tickerCh <-chan contracts.Ticker, outcomeCh chan<- contracts.Outcome, session contracts.Session) {
	for t := range tickerCh {
		if err := ctx.Err(); err != nil {
			outcomeCh <- contracts.Outcome{Ticker: t, Kind: contracts.OutcomeCancelled, Err: err}
			continue
		}

		o := p.processOne(ctx, t, session)
		p.logOutcome(workerID, o)
		outcomeCh <- o
	}
}

// processOne is the task boundary: a panic anywhere in fetch or analyze
// becomes a ComputeError outcome for this ticker only.
func (p *Pipeline) processOne(ctx context.Context, t contracts.Ticker, session contracts.Session) (o contracts.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			o = contracts.Outcome{
				Ticker: t,
				Kind:   contracts.OutcomeComputeError,
				Err:    fmt.Errorf("%s: panic: %v: %w", t, r, stats.ErrCompute),
			}
		}
	}()

	series := p.fetcher.Fetch(ctx, t, session)

	result, err := p.analyzer.Analyze(t, series)
	switch {
	case err == nil:
		return contracts.Outcome{Ticker: t, Kind: contracts.OutcomeSuccess, Result: result}
	case errors.Is(err, stats.ErrInsufficientData):
		return contracts.Outcome{Ticker: t, Kind: contracts.OutcomeInsufficientData, Err: err}
	default:
		return contracts.Outcome{Ticker: t, Kind: contracts.OutcomeComputeError, Err: err}
	}
}

func (p *Pipeline) logOutcome(workerID int, o contracts.Outcome) {
	entry := p.logger.WithFields(map[string]interface{}{
		"worker": workerID,
		"ticker": o.Ticker,
		"kind":   o.Kind.String(),
	})

	switch o.Kind {
	case contracts.OutcomeSuccess:
		entry.WithField("recommendation", o.Result.Recommendation).Debug("Ticker analyzed")
	case contracts.OutcomeInsufficientData:
		entry.WithError(o.Err).Debug("Ticker skipped")
	default:
		entry.WithError(o.Err).Warn("Ticker skipped")
	}
}
