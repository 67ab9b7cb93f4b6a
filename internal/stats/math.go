package stats

import "math"

// Returns computes period-over-period fractional returns c[i]/c[i-1] - 1.
// The first (undefined) element and NaN results are dropped. Inf is kept so
// that a zero price surfaces as a compute error downstream.
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		r := closes[i]/closes[i-1] - 1
		if math.IsNaN(r) {
			continue
		}
		returns = append(returns, r)
	}
	return returns
}

// Mean returns the arithmetic mean, 0 for an empty slice
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SampleStdDev returns the n-1 standard deviation, 0 for fewer than 2 values
// or when all values are identical.
func SampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return math.Sqrt(sumSquaredDeviation(values) / float64(len(values)-1))
}

// PopulationStdDev returns the n standard deviation, 0 for an empty slice
func PopulationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return math.Sqrt(sumSquaredDeviation(values) / float64(len(values)))
}

// StandardizedScore is (dailyReturnPct - mean(returns)) / pstd(returns), or 0
// when pstd is 0.
//
// The numerator is a session return in percent while mean/pstd describe the
// same ticker's per-minute fractional returns. The mixed units are kept on
// purpose: changing them changes every Buy/Avoid call.
func StandardizedScore(dailyReturnPct float64, returns []float64) float64 {
	std := PopulationStdDev(returns)
	if std == 0 {
		return 0
	}
	return (dailyReturnPct - Mean(returns)) / std
}

func sumSquaredDeviation(values []float64) float64 {
	mean := Mean(values)

	// identical values must give exactly 0, not float noise
	allSame := true
	for _, v := range values[1:] {
		if v != values[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return 0
	}

	ss := 0.0
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return ss
}
