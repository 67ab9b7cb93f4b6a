package session

import (
	"fmt"
	"time"

	"github.com/wonny/aegis-intraday/internal/contracts"
	"github.com/wonny/aegis-intraday/pkg/config"
)

// maxLookbackDays bounds the walk back to the previous weekday
const maxLookbackDays = 7

// Config holds the session rules of one market
type Config struct {
	Location   *time.Location
	Open       time.Duration // offset from local midnight
	Close      time.Duration // offset from local midnight
	OpenHour   int           // before this hour the previous session applies
	CutoffHour int           // at or after this hour the previous session applies
}

// ConfigFrom builds a session Config from the market section of the app config
func ConfigFrom(cfg config.MarketConfig) (Config, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Config{}, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	open, err := config.ParseClock(cfg.OpenTime)
	if err != nil {
		return Config{}, fmt.Errorf("parse open time: %w", err)
	}

	closeAt, err := config.ParseClock(cfg.CloseTime)
	if err != nil {
		return Config{}, fmt.Errorf("parse close time: %w", err)
	}

	return Config{
		Location:   loc,
		Open:       open,
		Close:      closeAt,
		OpenHour:   cfg.OpenHour,
		CutoffHour: cfg.CutoffHour,
	}, nil
}

// Resolver computes the boundaries of the relevant trading session
// ⭐ SSOT: 거래 세션 계산은 여기서만
type Resolver struct {
	cfg Config
}

// NewResolver creates a new Resolver
func NewResolver(cfg Config) *Resolver {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Resolver{cfg: cfg}
}

// Location returns the market timezone
func (r *Resolver) Location() *time.Location {
	return r.cfg.Location
}

// Resolve returns the session for now. On weekends, before OpenHour or at and
// after CutoffHour the latest earlier weekday is used.
func (r *Resolver) Resolve(now time.Time) contracts.Session {
	local := now.In(r.cfg.Location)
	day := local

	if isWeekend(local) || local.Hour() < r.cfg.OpenHour || local.Hour() >= r.cfg.CutoffHour {
		for delta := 1; delta <= maxLookbackDays; delta++ {
			candidate := local.AddDate(0, 0, -delta)
			if !isWeekend(candidate) {
				day = candidate
				break
			}
		}
	}

	y, m, d := day.Date()
	return contracts.Session{
		Date:  time.Date(y, m, d, 0, 0, 0, 0, r.cfg.Location),
		Open:  atOffset(y, m, d, r.cfg.Open, r.cfg.Location),
		Close: atOffset(y, m, d, r.cfg.Close, r.cfg.Location),
	}
}

// atOffset builds the wall clock time of a day, independent of DST shifts
func atOffset(y int, m time.Month, d int, offset time.Duration, loc *time.Location) time.Time {
	h := int(offset / time.Hour)
	mins := int((offset % time.Hour) / time.Minute)
	return time.Date(y, m, d, h, mins, 0, 0, loc)
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
