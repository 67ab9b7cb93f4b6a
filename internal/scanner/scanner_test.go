package scanner

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wonny/aegis-intraday/internal/contracts"
)

var ist = time.FixedZone("IST", 5*3600+1800)

// testSession is Monday 2026-10-19, 09:15-15:30 IST
func testSession() contracts.Session {
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, ist)
	return contracts.Session{
		Date:  date,
		Open:  date.Add(9*time.Hour + 15*time.Minute),
		Close: date.Add(15*time.Hour + 30*time.Minute),
	}
}

// fakeProvider serves canned data per ticker
type fakeProvider struct {
	mu       sync.Mutex
	exists   map[contracts.Ticker]bool
	probeErr map[contracts.Ticker]error
	closes   map[contracts.Ticker][]float64
	fetchErr map[contracts.Ticker]error
	panicOn  map[contracts.Ticker]bool
	block    map[contracts.Ticker]bool // wait for ctx.Done
	jitter   bool

	probes      int32
	fetches     int32
	inflight    int32
	maxInflight int32
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		exists:   make(map[contracts.Ticker]bool),
		probeErr: make(map[contracts.Ticker]error),
		closes:   make(map[contracts.Ticker][]float64),
		fetchErr: make(map[contracts.Ticker]error),
		panicOn:  make(map[contracts.Ticker]bool),
		block:    make(map[contracts.Ticker]bool),
	}
}

// withSeries registers a valid ticker with the given closes
func (f *fakeProvider) withSeries(t contracts.Ticker, closes []float64) *fakeProvider {
	f.exists[t] = true
	f.closes[t] = closes
	return f
}

func (f *fakeProvider) enter() func() {
	n := atomic.AddInt32(&f.inflight, 1)
	for {
		peak := atomic.LoadInt32(&f.maxInflight)
		if n <= peak || atomic.CompareAndSwapInt32(&f.maxInflight, peak, n) {
			break
		}
	}
	if f.jitter {
		time.Sleep(time.Duration(rand.Intn(3000)) * time.Microsecond)
	}
	return func() { atomic.AddInt32(&f.inflight, -1) }
}

func (f *fakeProvider) ProbeExists(ctx context.Context, t contracts.Ticker) (bool, error) {
	defer f.enter()()
	atomic.AddInt32(&f.probes, 1)

	f.mu.Lock()
	block, err, ok := f.block[t], f.probeErr[t], f.exists[t]
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return false, ctx.Err()
	}
	return ok, err
}

func (f *fakeProvider) GetIntradayBars(ctx context.Context, t contracts.Ticker, start, end time.Time, interval time.Duration) (contracts.TimeSeries, error) {
	defer f.enter()()
	atomic.AddInt32(&f.fetches, 1)

	f.mu.Lock()
	closes, err, boom := f.closes[t], f.fetchErr[t], f.panicOn[t]
	f.mu.Unlock()

	if boom {
		panic(fmt.Sprintf("provider exploded on %s", t))
	}
	if err != nil {
		return contracts.TimeSeries{}, err
	}

	return barsFrom(t, start, interval, closes), nil
}

func barsFrom(t contracts.Ticker, start time.Time, interval time.Duration, closes []float64) contracts.TimeSeries {
	s := contracts.TimeSeries{Ticker: t, Bars: make([]contracts.Bar, len(closes))}
	for i, c := range closes {
		s.Bars[i] = contracts.Bar{Time: start.Add(time.Duration(i) * interval), Close: c}
	}
	return s
}

// rising returns n closes climbing from 100 with a small wobble
func rising(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.1
		if i%2 == 1 {
			closes[i] += 0.03
		}
	}
	return closes
}

// panickyAnalyzer panics for one ticker and delegates otherwise
type panickyAnalyzer struct {
	inner  Analyzer
	target contracts.Ticker
}

func (a panickyAnalyzer) Analyze(t contracts.Ticker, s contracts.TimeSeries) (contracts.AnalysisResult, error) {
	if t == a.target {
		panic("analyzer exploded")
	}
	return a.inner.Analyze(t, s)
}

// recordingRecorder counts outcomes by kind
type recordingRecorder struct {
	mu    sync.Mutex
	kinds map[contracts.OutcomeKind]int
	runs  int
}

func (r *recordingRecorder) RecordOutcome(kind contracts.OutcomeKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.kinds == nil {
		r.kinds = make(map[contracts.OutcomeKind]int)
	}
	r.kinds[kind]++
}

func (r *recordingRecorder) RecordRun(*contracts.BatchOutcome, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
}

var errProvider = errors.New("provider unavailable")
