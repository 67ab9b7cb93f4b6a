package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wonny/aegis-intraday/internal/contracts"
)

// NoDataMessage is printed instead of a table when nothing was analyzed
const NoDataMessage = "No valid data to display"

var (
	columns = []string{"#", "Ticker", "Price", "Return %", "Volatility", "Risk-Adj", "Z-Score", "Signal"}
	widths  = []int{3, 14, 10, 9, 11, 9, 9, 8}
)

// WriteText renders the statistics block and the ranking table
func WriteText(w io.Writer, r *Report) error {
	ew := &errWriter{w: w}

	if r.Empty() {
		ew.printf("%s\n", NoDataMessage)
		return ew.err
	}

	ew.printf("\n=== Processing Statistics (%s) ===\n", r.Session)
	ew.printf("Total tickers scanned: %d\n", r.Summary.Total)
	ew.printf("Valid tickers found: %d\n", r.Summary.Valid)
	ew.printf("Successfully processed: %d\n", r.Summary.Processed)
	ew.printf("Skipped (insufficient data): %d\n", r.Summary.Skipped)
	ew.printf("Invalid tickers ignored: %d\n", r.Summary.Invalid)

	ew.printf("\n=== Top Recommendations ===\n")
	ew.row(columns)
	ew.printf("%s\n", strings.Repeat("─", tableWidth()))
	for i, res := range r.Top {
		ew.row(formatRow(i+1, res))
	}

	return ew.err
}

// WriteJSON renders the report as indented JSON
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func formatRow(rank int, res contracts.AnalysisResult) []string {
	return []string{
		fmt.Sprintf("%d", rank),
		res.Ticker.String(),
		FormatDecimal(res.CurrentPrice, 2),
		FormatDecimal(res.DailyReturnPct, 2),
		FormatDecimal(res.Volatility, 6),
		FormatDecimal(res.RiskAdjustedReturn, 2),
		FormatDecimal(res.StandardizedScore, 2),
		string(res.Recommendation),
	}
}

// FormatDecimal rounds v half away from zero to places digits
func FormatDecimal(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func tableWidth() int {
	total := 0
	for i, width := range widths {
		total += width
		if i < len(widths)-1 {
			total += 2
		}
	}
	return total
}

// errWriter keeps the first write error
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *errWriter) row(values []string) {
	for i, val := range values {
		if i < len(values)-1 {
			e.printf("%-*s  ", widths[i], val)
		} else {
			e.printf("%s", val)
		}
	}
	e.printf("\n")
}
