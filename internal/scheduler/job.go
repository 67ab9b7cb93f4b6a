package scheduler

import (
	"context"
	"time"
)

// historyLimit caps the results kept per job
const historyLimit = 50

// Job is a unit of work fired by the scheduler
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string

	// Schedule is a cron expression with a leading seconds field
	// ("0 */15 9-15 * * MON-FRI") or a descriptor ("@every 15m").
	Schedule() string

	// Run executes the job once. The summary is a one-line description of
	// what the run produced and is kept in the job history.
	Run(ctx context.Context) (summary string, err error)
}

// JobResult is one execution of a job
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Summary   string        `json:"summary,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// JobHistory holds the most recent results of one job, oldest first
type JobHistory struct {
	Results []JobResult
}

func (h *JobHistory) add(result JobResult) {
	h.Results = append(h.Results, result)
	if over := len(h.Results) - historyLimit; over > 0 {
		h.Results = append([]JobResult(nil), h.Results[over:]...)
	}
}

func (h *JobHistory) clone() *JobHistory {
	results := make([]JobResult, len(h.Results))
	copy(results, h.Results)
	return &JobHistory{Results: results}
}

// Latest returns the most recent result, if any
func (h *JobHistory) Latest() (JobResult, bool) {
	if len(h.Results) == 0 {
		return JobResult{}, false
	}
	return h.Results[len(h.Results)-1], true
}

// Failures counts failed runs
func (h *JobHistory) Failures() int {
	n := 0
	for _, r := range h.Results {
		if !r.Success {
			n++
		}
	}
	return n
}

// SuccessRate is the fraction of successful runs, 0 with no runs
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0
	}
	return float64(len(h.Results)-h.Failures()) / float64(len(h.Results))
}
