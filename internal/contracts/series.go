package contracts

import "time"

// Bar is one fixed-interval price sample
type Bar struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// TimeSeries is the ordered intraday history of one ticker.
// Timestamps are strictly increasing; the series may be empty.
type TimeSeries struct {
	Ticker Ticker `json:"ticker"`
	Bars   []Bar  `json:"bars"`
}

// Len returns the number of bars
func (s TimeSeries) Len() int {
	return len(s.Bars)
}

// Closes returns the close prices in order
func (s TimeSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Window keeps only bars inside [start, end] with strictly increasing
// timestamps, dropping anything out of order.
func (s TimeSeries) Window(start, end time.Time) TimeSeries {
	out := TimeSeries{Ticker: s.Ticker, Bars: make([]Bar, 0, len(s.Bars))}
	for _, b := range s.Bars {
		if b.Time.Before(start) || b.Time.After(end) {
			continue
		}
		if n := len(out.Bars); n > 0 && !b.Time.After(out.Bars[n-1].Time) {
			continue
		}
		out.Bars = append(out.Bars, b)
	}
	return out
}
