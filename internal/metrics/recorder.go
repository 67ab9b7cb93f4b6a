package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/aegis-intraday/internal/contracts"
)

const namespace = "intraday"

// Recorder exports scanner metrics through its own Prometheus registry.
// It implements scanner.Recorder and yahoo.Observer.
type Recorder struct {
	registry *prometheus.Registry

	outcomes        *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	lastRunTickers  *prometheus.GaugeVec
	lastRunDuration prometheus.Gauge
	lastRunTime     prometheus.Gauge
	runsTotal       prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates a Recorder with a fresh registry including Go runtime and
// process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		outcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ticker_outcomes_total",
				Help:      "Per-ticker task outcomes by kind",
			},
			[]string{"kind"},
		),
		providerLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_call_duration_seconds",
				Help:      "Market data provider call duration in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"operation", "status"},
		),
		lastRunTickers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_tickers",
				Help:      "Ticker counts of the most recent scan by state",
			},
			[]string{"state"},
		),
		lastRunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the most recent scan",
		}),
		lastRunTime: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the most recent scan finished",
		}),
		runsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed scans",
		}),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"route", "method"},
		),
	}
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RecordOutcome counts one per-ticker outcome
func (r *Recorder) RecordOutcome(kind contracts.OutcomeKind) {
	r.outcomes.WithLabelValues(kind.String()).Inc()
}

// RecordRun publishes the totals of a finished scan
func (r *Recorder) RecordRun(out *contracts.BatchOutcome, duration time.Duration) {
	r.lastRunTickers.WithLabelValues("total").Set(float64(out.Total))
	r.lastRunTickers.WithLabelValues("valid").Set(float64(out.ValidCount()))
	r.lastRunTickers.WithLabelValues("processed").Set(float64(len(out.Results)))
	r.lastRunTickers.WithLabelValues("skipped").Set(float64(len(out.Skipped)))
	r.lastRunTickers.WithLabelValues("invalid").Set(float64(out.InvalidCount))
	r.lastRunDuration.Set(duration.Seconds())
	r.lastRunTime.Set(float64(out.FinishedAt.Unix()))
	r.runsTotal.Inc()
}

// ObserveProviderCall records one provider round trip
func (r *Recorder) ObserveProviderCall(op string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.providerLatency.WithLabelValues(op, status).Observe(d.Seconds())
}

// ObserveHTTP records one served API request
func (r *Recorder) ObserveHTTP(route, method string, status int, d time.Duration) {
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}
