package report

import (
	"sort"

	"github.com/wonny/aegis-intraday/internal/contracts"
)

// DefaultTopN is the number of ranked results shown
const DefaultTopN = 10

// Summary holds the processing statistics of one run
type Summary struct {
	Total     int `json:"total_scanned"`
	Valid     int `json:"valid_found"`
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Invalid   int `json:"invalid_ignored"`
}

// Report is the presentation model of a BatchOutcome
// ⭐ SSOT: BatchOutcome → 사용자 출력 변환은 여기서만
type Report struct {
	RunID   string                     `json:"run_id"`
	Session string                     `json:"session"`
	Summary Summary                    `json:"summary"`
	Top     []contracts.AnalysisResult `json:"top"`
	Skipped []contracts.Ticker         `json:"skipped"`
}

// Build derives the report of a finished run. topN <= 0 uses DefaultTopN.
func Build(out *contracts.BatchOutcome, topN int) *Report {
	if topN <= 0 {
		topN = DefaultTopN
	}

	return &Report{
		RunID:   out.RunID,
		Session: out.Session.Label(),
		Summary: Summary{
			Total:     out.Total,
			Valid:     out.ValidCount(),
			Processed: len(out.Results),
			Skipped:   len(out.Skipped),
			Invalid:   out.InvalidCount,
		},
		Top:     TopN(out.Results, topN),
		Skipped: out.Skipped,
	}
}

// Empty reports whether no ticker was analyzed
func (r *Report) Empty() bool {
	return r.Summary.Processed == 0
}

// TopN returns up to n results ordered by risk-adjusted return, highest
// first. Ties are broken by ticker. The input slice is not modified.
func TopN(results []contracts.AnalysisResult, n int) []contracts.AnalysisResult {
	ranked := make([]contracts.AnalysisResult, len(results))
	copy(ranked, results)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].RiskAdjustedReturn != ranked[j].RiskAdjustedReturn {
			return ranked[i].RiskAdjustedReturn > ranked[j].RiskAdjustedReturn
		}
		return ranked[i].Ticker < ranked[j].Ticker
	})

	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
