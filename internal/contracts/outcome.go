package contracts

import (
	"sort"
	"time"
)

// OutcomeKind classifies how one ticker's unit of work ended
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeInvalidTicker
	OutcomeInsufficientData
	OutcomeComputeError
	OutcomeCancelled // run cancelled before the ticker was processed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeInvalidTicker:
		return "invalid_ticker"
	case OutcomeInsufficientData:
		return "insufficient_data"
	case OutcomeComputeError:
		return "compute_error"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome is the result of one per-ticker task. Result is set only on success.
type Outcome struct {
	Ticker Ticker
	Kind   OutcomeKind
	Result AnalysisResult
	Err    error
}

// BatchOutcome is the terminal aggregate of one scan run.
// Every input ticker is in exactly one of Results, Skipped or InvalidCount.
// ⭐ SSOT: scanner.Pipeline → report 전달
type BatchOutcome struct {
	RunID        string           `json:"run_id"`
	Session      Session          `json:"session"`
	StartedAt    time.Time        `json:"started_at"`
	FinishedAt   time.Time        `json:"finished_at"`
	Total        int              `json:"total"`
	Results      []AnalysisResult `json:"results"`
	Skipped      []Ticker         `json:"skipped"`
	InvalidCount int              `json:"invalid_count"`
}

// ValidCount returns the number of tickers that passed validation
func (b *BatchOutcome) ValidCount() int {
	return len(b.Results) + len(b.Skipped)
}

// Accounted returns how many input tickers the outcome covers
func (b *BatchOutcome) Accounted() int {
	return b.ValidCount() + b.InvalidCount
}

// Normalize sorts Results and Skipped by ticker so that outcomes of runs with
// different completion orders compare equal.
func (b *BatchOutcome) Normalize() {
	sort.Slice(b.Results, func(i, j int) bool {
		return b.Results[i].Ticker < b.Results[j].Ticker
	})
	SortTickers(b.Skipped)
}
