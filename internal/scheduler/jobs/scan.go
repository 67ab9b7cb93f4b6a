package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/aegis-intraday/internal/contracts"
	"github.com/wonny/aegis-intraday/internal/report"
	"github.com/wonny/aegis-intraday/pkg/logger"
)

// Scanner runs one scan. *scanner.Service implements it.
type Scanner interface {
	Scan(ctx context.Context, exchanges []string) (*contracts.BatchOutcome, error)
}

// ScanJob runs the intraday scan on a schedule
// ⭐ SSOT: 정기 스캔 스케줄은 이 Job에서만
type ScanJob struct {
	scanner   Scanner
	schedule  string
	exchanges []string
	topN      int
	logger    *logger.Logger
}

// NewScanJob creates a new scan job
func NewScanJob(scanner Scanner, schedule string, exchanges []string, topN int, log *logger.Logger) *ScanJob {
	return &ScanJob{
		scanner:   scanner,
		schedule:  schedule,
		exchanges: exchanges,
		topN:      topN,
		logger:    log.WithModule("scan_job"),
	}
}

// Name returns the job name
func (j *ScanJob) Name() string {
	return "intraday_scan"
}

// Schedule returns the cron schedule (with seconds)
func (j *ScanJob) Schedule() string {
	return j.schedule
}

// Run executes one scan and logs the report. The summary carries the run id
// and the summary counts.
func (j *ScanJob) Run(ctx context.Context) (string, error) {
	out, err := j.scanner.Scan(ctx, j.exchanges)
	if err != nil {
		return "", fmt.Errorf("scan: %w", err)
	}

	r := report.Build(out, j.topN)
	j.logger.WithFields(map[string]interface{}{
		"run_id":    r.RunID,
		"session":   r.Session,
		"total":     r.Summary.Total,
		"valid":     r.Summary.Valid,
		"processed": r.Summary.Processed,
		"skipped":   r.Summary.Skipped,
		"invalid":   r.Summary.Invalid,
	}).Info("Scheduled scan completed")

	for i, res := range r.Top {
		if res.Recommendation == contracts.RecommendationNeutral {
			continue
		}
		j.logger.WithFields(map[string]interface{}{
			"rank":           i + 1,
			"ticker":         res.Ticker,
			"recommendation": res.Recommendation,
			"risk_adjusted":  report.FormatDecimal(res.RiskAdjustedReturn, 2),
			"score":          report.FormatDecimal(res.StandardizedScore, 2),
		}).Info("Signal")
	}

	return fmt.Sprintf("run=%s session=%s total=%d processed=%d skipped=%d invalid=%d",
		r.RunID, r.Session, r.Summary.Total, r.Summary.Processed, r.Summary.Skipped, r.Summary.Invalid), nil
}
