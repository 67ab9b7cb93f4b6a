package session

import (
	"time"

	"github.com/wonny/aegis-intraday/internal/contracts"
)

// Clock supplies the current instant
type Clock func() time.Time

// Calendar is the market calendar: current time in the market timezone plus
// the session rules.
type Calendar struct {
	resolver *Resolver
	clock    Clock
}

// NewCalendar creates a Calendar. A nil clock uses time.Now.
func NewCalendar(resolver *Resolver, clock Clock) *Calendar {
	if clock == nil {
		clock = time.Now
	}
	return &Calendar{resolver: resolver, clock: clock}
}

// Now returns the current instant in the market timezone
func (c *Calendar) Now() time.Time {
	return c.clock().In(c.resolver.Location())
}

// Current resolves the session for the current instant
func (c *Calendar) Current() contracts.Session {
	return c.resolver.Resolve(c.Now())
}

// Location returns the market timezone
func (c *Calendar) Location() *time.Location {
	return c.resolver.Location()
}
