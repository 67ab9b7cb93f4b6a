package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-intraday/internal/api/handlers"
	"github.com/wonny/aegis-intraday/internal/contracts"
	"github.com/wonny/aegis-intraday/internal/universe"
	"github.com/wonny/aegis-intraday/pkg/config"
	"github.com/wonny/aegis-intraday/pkg/logger"
)

var testDate = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

type fakeScanner struct {
	mu        sync.Mutex
	last      *contracts.BatchOutcome
	exchanges [][]string
}

func (f *fakeScanner) Scan(_ context.Context, exchanges []string) (*contracts.BatchOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchanges = append(f.exchanges, exchanges)

	for _, ex := range exchanges {
		if ex != "NSE" && ex != "BSE" {
			return nil, fmt.Errorf("resolve universe: %q: %w", ex, universe.ErrUnknownExchange)
		}
	}

	f.last = &contracts.BatchOutcome{
		RunID:   "run-42",
		Session: contracts.Session{Date: testDate},
		Total:   3,
		Results: []contracts.AnalysisResult{
			{Ticker: "A.NS", RiskAdjustedReturn: 1},
			{Ticker: "B.NS", RiskAdjustedReturn: 5},
		},
		InvalidCount: 1,
	}
	return f.last, nil
}

func (f *fakeScanner) Last() *contracts.BatchOutcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func (f *fakeScanner) Tickers(_ context.Context, exchanges []string) ([]contracts.Ticker, error) {
	if len(exchanges) == 1 && exchanges[0] == "XX" {
		return nil, fmt.Errorf("%q: %w", "XX", universe.ErrUnknownExchange)
	}
	return []contracts.Ticker{"A.NS", "B.NS"}, nil
}

func (f *fakeScanner) Session() contracts.Session {
	return contracts.Session{Date: testDate, Open: testDate.Add(9 * time.Hour), Close: testDate.Add(15 * time.Hour)}
}

type observedRequest struct {
	route  string
	status int
}

type fakeObserver struct {
	mu       sync.Mutex
	requests []observedRequest
}

func (o *fakeObserver) ObserveHTTP(route, method string, status int, d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requests = append(o.requests, observedRequest{route: route, status: status})
}

func newTestRouter(s *fakeScanner, cfg RouterConfig) http.Handler {
	return NewRouter(handlers.NewScanHandler(s, 10, logger.Nop()), cfg, logger.Nop())
}

func do(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	rec := do(newTestRouter(&fakeScanner{}, RouterConfig{}), http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestScan(t *testing.T) {
	s := &fakeScanner{}
	router := newTestRouter(s, RouterConfig{})

	rec := do(router, http.MethodPost, "/api/scan?exchange=nse&top=1")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "run-42", body["run_id"])
	assert.Equal(t, "2026-10-19", body["session"])
	top := body["top"].([]interface{})
	require.Len(t, top, 1)
	assert.Equal(t, "B.NS", top[0].(map[string]interface{})["ticker"])
	assert.Equal(t, []string{"NSE"}, s.exchanges[0])
}

func TestScan_DefaultExchanges(t *testing.T) {
	s := &fakeScanner{}
	rec := do(newTestRouter(s, RouterConfig{}), http.MethodPost, "/api/scan")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, s.exchanges[0])
}

func TestScan_BadInput(t *testing.T) {
	router := newTestRouter(&fakeScanner{}, RouterConfig{})

	tests := []struct {
		name   string
		target string
	}{
		{"unknown exchange", "/api/scan?exchange=NYSE"},
		{"bad top", "/api/scan?top=abc"},
		{"negative top", "/api/scan?top=-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(router, http.MethodPost, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode(t, rec)["error"])
		})
	}
}

func TestScan_MethodNotAllowed(t *testing.T) {
	rec := do(newTestRouter(&fakeScanner{}, RouterConfig{}), http.MethodGet, "/api/scan")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestLatest(t *testing.T) {
	s := &fakeScanner{}
	router := newTestRouter(s, RouterConfig{})

	rec := do(router, http.MethodGet, "/api/scan/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	do(router, http.MethodPost, "/api/scan")

	rec = do(router, http.MethodGet, "/api/scan/latest")
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode(t, rec)["summary"].(map[string]interface{})
	assert.Equal(t, 3.0, summary["total_scanned"])
	assert.Equal(t, 1.0, summary["invalid_ignored"])
}

func TestUniverse(t *testing.T) {
	router := newTestRouter(&fakeScanner{}, RouterConfig{})

	rec := do(router, http.MethodGet, "/api/universe?exchange=NSE")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, decode(t, rec)["count"])

	rec = do(router, http.MethodGet, "/api/universe?exchange=xx")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSession(t *testing.T) {
	rec := do(newTestRouter(&fakeScanner{}, RouterConfig{}), http.MethodGet, "/api/session")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2026-10-19", decode(t, rec)["date"])
}

func TestMetricsAndObserver(t *testing.T) {
	obs := &fakeObserver{}
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("intraday_runs_total 1\n"))
	})
	router := newTestRouter(&fakeScanner{}, RouterConfig{Metrics: metricsHandler, Observer: obs})

	rec := do(router, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "intraday_runs_total")

	do(router, http.MethodGet, "/api/scan/latest")

	require.Len(t, obs.requests, 2)
	assert.Equal(t, observedRequest{route: "/metrics", status: http.StatusOK}, obs.requests[0])
	assert.Equal(t, observedRequest{route: "/api/scan/latest", status: http.StatusNotFound}, obs.requests[1])
}

func TestMetricsDisabled(t *testing.T) {
	rec := do(newTestRouter(&fakeScanner{}, RouterConfig{}), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	}))

	rec := do(h, http.MethodGet, "/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode(t, rec)["error"])
}

func TestServerWriteTimeout(t *testing.T) {
	cfg := &config.Config{Port: "0", Scanner: config.ScannerConfig{Timeout: 10 * time.Second}}
	s := New(cfg, logger.Nop(), http.NewServeMux())

	assert.Equal(t, ":0", s.Addr())
	assert.Equal(t, 50*time.Second, s.httpServer.WriteTimeout)

	cfg.Scanner.Timeout = 0
	assert.Equal(t, 30*time.Second, writeTimeout(cfg))
}

func TestServerServeAndShutdown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	router := newTestRouter(&fakeScanner{}, RouterConfig{})
	s := New(&config.Config{Port: "0"}, logger.Nop(), router)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, l) }()

	resp, err := http.Get("http://" + l.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
