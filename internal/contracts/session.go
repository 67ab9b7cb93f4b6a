package contracts

import "time"

// Session is one trading day's window in the market's local timezone
// ⭐ SSOT: 세션 경계는 session.Resolver 에서만 생성
type Session struct {
	Date  time.Time `json:"date"`  // local midnight of the session day
	Open  time.Time `json:"open"`  // e.g. 09:15 local
	Close time.Time `json:"close"` // e.g. 15:30 local
}

// Contains reports whether t falls within [Open, Close]
func (s Session) Contains(t time.Time) bool {
	return !t.Before(s.Open) && !t.After(s.Close)
}

// Label returns the session date as YYYY-MM-DD
func (s Session) Label() string {
	return s.Date.Format("2006-01-02")
}
