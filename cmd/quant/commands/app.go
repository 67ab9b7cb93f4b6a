package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/aegis-intraday/internal/contracts"
	"github.com/wonny/aegis-intraday/internal/external/yahoo"
	"github.com/wonny/aegis-intraday/internal/metrics"
	"github.com/wonny/aegis-intraday/internal/scanner"
	"github.com/wonny/aegis-intraday/internal/session"
	"github.com/wonny/aegis-intraday/internal/stats"
	"github.com/wonny/aegis-intraday/internal/universe"
	"github.com/wonny/aegis-intraday/pkg/config"
	"github.com/wonny/aegis-intraday/pkg/database"
	"github.com/wonny/aegis-intraday/pkg/httputil"
	"github.com/wonny/aegis-intraday/pkg/logger"
	"github.com/wonny/aegis-intraday/pkg/redis"
)

// connectTimeout bounds the initial Redis / Postgres handshake
const connectTimeout = 5 * time.Second

// app holds the wired scanner components shared by all commands
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	provider *yahoo.Client
	universe *universe.Universe
	calendar *session.Calendar
	service  *scanner.Service
	metrics  *metrics.Recorder // nil when METRICS_ENABLED=false
	db       *database.DB      // nil without DATABASE_URL

	closers []func()
}

// newApp wires config → provider → universe → session → pipeline
func newApp(cfg *config.Config, log *logger.Logger, opts ...scanner.Option) (*app, error) {
	a := &app{cfg: cfg, log: log}

	// 1. HTTP client, optionally sharing a provider budget through Redis
	httpClient := httputil.New(cfg, log)
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		rc, err := redis.New(ctx, cfg)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { rc.Close() })
		httpClient.WithRateLimiter(redis.NewRateLimiter(rc, "intraday"), redis.YahooRateLimit(cfg.Yahoo.RateLimit))
	}

	// 2. Market data provider
	a.provider = yahoo.NewClient(httpClient, yahoo.Config{
		BaseURL:   cfg.Yahoo.BaseURL,
		RateLimit: cfg.Yahoo.RateLimit,
	}, log)

	if cfg.MetricsEnabled {
		a.metrics = metrics.New()
		a.provider.WithObserver(a.metrics)
		opts = append(opts, scanner.WithRecorder(a.metrics))
	}

	// 3. Symbol universe
	u, err := a.buildUniverse()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.universe = u

	// 4. Session calendar
	sessCfg, err := session.ConfigFrom(cfg.Market)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("market session: %w", err)
	}
	a.calendar = session.NewCalendar(session.NewResolver(sessCfg), nil)

	// 5. Statistics engine + pipeline
	engine := stats.NewEngine(stats.Config{MinDataPoints: cfg.Scanner.MinDataPoints})
	pipeline := scanner.NewPipeline(a.provider, engine, scanner.ConfigFrom(cfg.Scanner), log, opts...)
	a.service = scanner.NewService(a.universe, a.calendar, pipeline, cfg.Scanner.Exchanges, log)

	return a, nil
}

// buildUniverse picks the symbol source: Postgres when DATABASE_URL is set,
// otherwise the built-in table, optionally overridden by UNIVERSE_FILE.
func (a *app) buildUniverse() (*universe.Universe, error) {
	static := universe.Default()
	if a.cfg.Universe.File != "" {
		loaded, err := universe.LoadFile(a.cfg.Universe.File)
		if err != nil {
			return nil, err
		}
		static = loaded
	}

	var src contracts.SymbolSource = static
	if a.cfg.Database.URL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		db, err := database.New(ctx, a.cfg)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		a.closers = append(a.closers, db.Close)
		src = universe.NewPostgresSource(db.Pool)
		a.log.Info("Using market.symbols as symbol universe")
	}

	return universe.New(src, static.Suffixes(), a.log), nil
}

// Close releases external connections
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
