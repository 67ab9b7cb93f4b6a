package stats

import (
	"errors"
	"fmt"
	"math"

	"github.com/wonny/aegis-intraday/internal/contracts"
)

// DefaultMinDataPoints is one hour of one-minute bars
const DefaultMinDataPoints = 60

var (
	// ErrInsufficientData means the series is shorter than MinDataPoints.
	// It is an expected outcome, not a failure.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrCompute means a derived metric came out NaN or Inf
	ErrCompute = errors.New("compute error")
)

// Config holds engine thresholds
type Config struct {
	MinDataPoints int
}

// Engine derives per-ticker risk/return statistics from an intraday series.
// It is stateless and safe for concurrent use.
// ⭐ SSOT: 수익률/변동성/점수 계산은 여기서만
type Engine struct {
	config Config
}

// NewEngine creates a new Engine
func NewEngine(cfg Config) *Engine {
	if cfg.MinDataPoints <= 0 {
		cfg.MinDataPoints = DefaultMinDataPoints
	}
	return &Engine{config: cfg}
}

// MinDataPoints returns the configured minimum series length
func (e *Engine) MinDataPoints() int {
	return e.config.MinDataPoints
}

// Analyze computes the AnalysisResult for one ticker.
// Returns ErrInsufficientData or ErrCompute (wrapped) instead of a result.
func (e *Engine) Analyze(ticker contracts.Ticker, series contracts.TimeSeries) (result contracts.AnalysisResult, err error) {
	if series.Len() < e.config.MinDataPoints {
		return contracts.AnalysisResult{}, fmt.Errorf("%s: %d < %d bars: %w",
			ticker, series.Len(), e.config.MinDataPoints, ErrInsufficientData)
	}

	defer func() {
		if r := recover(); r != nil {
			result = contracts.AnalysisResult{}
			err = fmt.Errorf("%s: panic: %v: %w", ticker, r, ErrCompute)
		}
	}()

	closes := series.Closes()
	for i, c := range closes {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return contracts.AnalysisResult{}, fmt.Errorf("%s: close[%d] is %v: %w", ticker, i, c, ErrCompute)
		}
	}
	returns := Returns(closes)

	first := closes[0]
	last := closes[len(closes)-1]

	volatility := SampleStdDev(returns)
	dailyReturnPct := (last - first) / first * 100

	riskAdjusted := 0.0
	if volatility != 0 {
		riskAdjusted = dailyReturnPct / volatility
	}

	score := StandardizedScore(dailyReturnPct, returns)

	for name, v := range map[string]float64{
		"current_price":        last,
		"daily_return_pct":     dailyReturnPct,
		"volatility":           volatility,
		"risk_adjusted_return": riskAdjusted,
		"standardized_score":   score,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return contracts.AnalysisResult{}, fmt.Errorf("%s: %s is %v: %w", ticker, name, v, ErrCompute)
		}
	}

	return contracts.AnalysisResult{
		Ticker:             ticker,
		CurrentPrice:       last,
		DailyReturnPct:     dailyReturnPct,
		Volatility:         volatility,
		RiskAdjustedReturn: riskAdjusted,
		StandardizedScore:  score,
		Recommendation:     Classify(score, riskAdjusted),
		DataPoints:         series.Len(),
	}, nil
}

// Classify maps (standardized score, risk-adjusted return) to a recommendation.
// Both thresholds are strict.
func Classify(score, riskAdjusted float64) contracts.Recommendation {
	switch {
	case score > 1 && riskAdjusted > 0:
		return contracts.RecommendationBuy
	case score < -1 && riskAdjusted < 0:
		return contracts.RecommendationAvoid
	default:
		return contracts.RecommendationNeutral
	}
}
