package contracts

// Recommendation is the advisory classification of one ticker
type Recommendation string

const (
	RecommendationBuy     Recommendation = "Buy"
	RecommendationAvoid   Recommendation = "Avoid"
	RecommendationNeutral Recommendation = "Neutral"
)

// AnalysisResult holds the derived statistics for one ticker
// ⭐ SSOT: stats.Engine → report 분석 결과 전달
type AnalysisResult struct {
	Ticker             Ticker         `json:"ticker"`
	CurrentPrice       float64        `json:"current_price"`
	DailyReturnPct     float64        `json:"daily_return_pct"`
	Volatility         float64        `json:"volatility"`
	RiskAdjustedReturn float64        `json:"risk_adjusted_return"`
	StandardizedScore  float64        `json:"standardized_score"`
	Recommendation     Recommendation `json:"recommendation"`
	DataPoints         int            `json:"data_points"`
}
