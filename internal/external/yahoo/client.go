package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/aegis-intraday/internal/contracts"
	"github.com/wonny/aegis-intraday/pkg/httputil"
	"github.com/wonny/aegis-intraday/pkg/logger"
)

// ErrNoData is returned when the chart response has no result
var ErrNoData = errors.New("no chart data")

// Config holds Yahoo client settings
type Config struct {
	BaseURL   string
	RateLimit float64 // requests per second, <= 0 disables the limiter
}

// Client is the Yahoo Finance chart API client
// ⭐ SSOT: Yahoo Finance API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	limiter    *rate.Limiter
	metrics    Observer
}

// Observer receives per-call latency. internal/metrics implements it.
type Observer interface {
	ObserveProviderCall(op string, d time.Duration, err error)
}

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, cfg Config, log *logger.Logger) *Client {
	c := &Client{
		httpClient: httpClient,
		logger:     log.WithModule("yahoo"),
		baseURL:    cfg.BaseURL,
	}
	if c.baseURL == "" {
		c.baseURL = "https://query1.finance.yahoo.com"
	}
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c
}

// WithObserver attaches a latency observer
func (c *Client) WithObserver(o Observer) *Client {
	c.metrics = o
	return c
}

// ProbeExists reports whether the ticker has any trade data for the last day
func (c *Client) ProbeExists(ctx context.Context, ticker contracts.Ticker) (bool, error) {
	params := url.Values{}
	params.Set("range", "1d")
	params.Set("interval", "1d")

	result, err := c.fetchChart(ctx, "probe", ticker, params)
	if err != nil {
		if errors.Is(err, ErrNoData) {
			return false, nil
		}
		return false, err
	}

	for _, v := range firstQuote(result).Close {
		if v != nil {
			return true, nil
		}
	}
	return false, nil
}

// GetIntradayBars fetches bars of the given interval within [start, end]
func (c *Client) GetIntradayBars(ctx context.Context, ticker contracts.Ticker, start, end time.Time, interval time.Duration) (contracts.TimeSeries, error) {
	iv, err := formatInterval(interval)
	if err != nil {
		return contracts.TimeSeries{Ticker: ticker}, err
	}

	params := url.Values{}
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(end.Unix(), 10))
	params.Set("interval", iv)
	params.Set("includePrePost", "false")

	result, err := c.fetchChart(ctx, "bars", ticker, params)
	if err != nil {
		return contracts.TimeSeries{Ticker: ticker}, err
	}

	series := toSeries(ticker, result, start.Location())

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  series.Len(),
	}).Debug("Fetched intraday bars")

	return series.Window(start, end), nil
}

// fetchChart calls /v8/finance/chart/{ticker} once
func (c *Client) fetchChart(ctx context.Context, op string, ticker contracts.Ticker, params url.Values) (result *chartResult, err error) {
	start := time.Now()
	if c.metrics != nil {
		defer func() {
			c.metrics.ObserveProviderCall(op, time.Since(start), err)
		}()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker.String()), params.Encode())

	var resp chartResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		return nil, fmt.Errorf("chart %s: %w", ticker, err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart %s: %s: %s: %w", ticker, resp.Chart.Error.Code, resp.Chart.Error.Description, ErrNoData)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart %s: %w", ticker, ErrNoData)
	}

	return &resp.Chart.Result[0], nil
}

// toSeries zips timestamps with close prices, skipping null closes
func toSeries(ticker contracts.Ticker, result *chartResult, loc *time.Location) contracts.TimeSeries {
	q := firstQuote(result)
	if loc == nil {
		loc = time.UTC
	}

	bars := make([]contracts.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		bars = append(bars, contracts.Bar{
			Time:  time.Unix(ts, 0).In(loc),
			Close: *q.Close[i],
		})
	}

	return contracts.TimeSeries{Ticker: ticker, Bars: bars}
}

func firstQuote(result *chartResult) quote {
	if result == nil || len(result.Indicators.Quote) == 0 {
		return quote{}
	}
	return result.Indicators.Quote[0]
}

// formatInterval maps a bar duration to Yahoo's interval token
func formatInterval(d time.Duration) (string, error) {
	switch d {
	case time.Minute:
		return "1m", nil
	case 2 * time.Minute:
		return "2m", nil
	case 5 * time.Minute:
		return "5m", nil
	case 15 * time.Minute:
		return "15m", nil
	case 30 * time.Minute:
		return "30m", nil
	case time.Hour:
		return "60m", nil
	case 24 * time.Hour:
		return "1d", nil
	default:
		return "", fmt.Errorf("unsupported interval: %s", d)
	}
}
