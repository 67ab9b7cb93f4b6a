package contracts

import "sort"

// Ticker is a suffix-qualified instrument identifier, e.g. "RELIANCE.NS"
type Ticker string

// String implements fmt.Stringer
func (t Ticker) String() string {
	return string(t)
}

// SortTickers sorts tickers in place lexicographically
func SortTickers(tickers []Ticker) {
	sort.Slice(tickers, func(i, j int) bool {
		return tickers[i] < tickers[j]
	})
}
