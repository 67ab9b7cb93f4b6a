package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-intraday/internal/contracts"
)

func TestRecordOutcome(t *testing.T) {
	r := New()

	r.RecordOutcome(contracts.OutcomeSuccess)
	r.RecordOutcome(contracts.OutcomeSuccess)
	r.RecordOutcome(contracts.OutcomeComputeError)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.outcomes.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.outcomes.WithLabelValues("compute_error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.outcomes.WithLabelValues("invalid_ticker")))
}

func TestRecordRun(t *testing.T) {
	r := New()
	finished := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

	r.RecordRun(&contracts.BatchOutcome{
		Total:        5,
		Results:      []contracts.AnalysisResult{{Ticker: "A.NS"}, {Ticker: "B.NS"}},
		Skipped:      []contracts.Ticker{"C.NS"},
		InvalidCount: 2,
		FinishedAt:   finished,
	}, 1500*time.Millisecond)

	assert.Equal(t, 5.0, testutil.ToFloat64(r.lastRunTickers.WithLabelValues("total")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.lastRunTickers.WithLabelValues("valid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.lastRunTickers.WithLabelValues("processed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.lastRunTickers.WithLabelValues("skipped")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.lastRunTickers.WithLabelValues("invalid")))
	assert.Equal(t, 1.5, testutil.ToFloat64(r.lastRunDuration))
	assert.Equal(t, float64(finished.Unix()), testutil.ToFloat64(r.lastRunTime))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal))
}

func TestObserveProviderCall(t *testing.T) {
	r := New()

	r.ObserveProviderCall("probe", 100*time.Millisecond, nil)
	r.ObserveProviderCall("bars", 200*time.Millisecond, errors.New("timeout"))

	assert.Equal(t, 2, testutil.CollectAndCount(r.providerLatency))
}

func TestHandler(t *testing.T) {
	r := New()
	r.RecordOutcome(contracts.OutcomeInvalidTicker)
	r.ObserveHTTP("/api/scan", http.MethodGet, http.StatusOK, 10*time.Millisecond)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `intraday_ticker_outcomes_total{kind="invalid_ticker"} 1`)
	assert.Contains(t, string(body), `http_requests_total{method="GET",route="/api/scan",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNew_IndependentRegistries(t *testing.T) {
	a := New()
	b := New()

	a.RecordOutcome(contracts.OutcomeSuccess)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.outcomes.WithLabelValues("success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.outcomes.WithLabelValues("success")))
}
