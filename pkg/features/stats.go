package features

import (
	"math"
	"sort"
)

// Stats holds the summary statistics for one metric series.
type Stats struct {
	Mean   float64
	StdDev float64
	P50    float64
	P95    float64
	P99    float64
	Min    float64
	Max    float64
}

// Summarize computes mean, population standard deviation and percentiles
// for a value series.
func Summarize(values []float64) Stats {
	if len(values) == 0 {
		return Stats{
			Mean: math.NaN(), StdDev: math.NaN(),
			P50: math.NaN(), P95: math.NaN(), P99: math.NaN(),
			Min: math.NaN(), Max: math.NaN(),
		}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return Stats{
		Mean:   mean(sorted),
		StdDev: stddevPop(sorted),
		P50:    percentile(sorted, 50),
		P95:    percentile(sorted, 95),
		P99:    percentile(sorted, 99),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
}

// percentile computes the Nth percentile using linear interpolation
// between order statistics.
func percentile(sortedValues []float64, p float64) float64 {
	if len(sortedValues) == 0 {
		return math.NaN()
	}
	if len(sortedValues) == 1 {
		return sortedValues[0]
	}

	n := float64(len(sortedValues))
	rank := (p / 100.0) * (n - 1)

	lowerIndex := int(math.Floor(rank))
	upperIndex := int(math.Ceil(rank))

	if lowerIndex == upperIndex {
		return sortedValues[lowerIndex]
	}

	lowerValue := sortedValues[lowerIndex]
	upperValue := sortedValues[upperIndex]
	fraction := rank - float64(lowerIndex)

	return lowerValue + (upperValue-lowerValue)*fraction
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddevPop computes the population standard deviation.
func stddevPop(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	m := mean(values)
	sumSquaredDiff := 0.0
	for _, v := range values {
		diff := v - m
		sumSquaredDiff += diff * diff
	}
	return math.Sqrt(sumSquaredDiff / float64(len(values)))
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
