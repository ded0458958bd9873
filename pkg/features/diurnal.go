package features

import (
	"math"
	"sort"
	"time"
)

type timedValue struct {
	at    time.Time
	value float64
}

// diurnalStrength measures how strongly a utilization series repeats on a
// 24-hour cycle: the mean-centered autocorrelation of the series at a
// 24-hour sample lag, clamped to [0, 1]. Returns NaN (unavailable) when the
// series spans less than minSpanHours or the lag cannot be resolved from
// the sampling interval.
func diurnalStrength(series []timedValue, minSpanHours float64) float64 {
	if len(series) < 4 {
		return math.NaN()
	}

	span := series[len(series)-1].at.Sub(series[0].at)
	if span.Hours() < minSpanHours {
		return math.NaN()
	}

	interval := medianInterval(series)
	if interval <= 0 {
		return math.NaN()
	}

	lag := int(math.Round(24 * time.Hour.Hours() / interval.Hours()))
	if lag < 1 || lag >= len(series) {
		return math.NaN()
	}

	values := make([]float64, len(series))
	for i, tv := range series {
		values[i] = tv.value
	}

	m := mean(values)
	var num, den float64
	for i := 0; i < len(values); i++ {
		d := values[i] - m
		den += d * d
	}
	if den == 0 {
		// constant series has no cyclical signal
		return 0
	}
	for i := 0; i+lag < len(values); i++ {
		num += (values[i] - m) * (values[i+lag] - m)
	}

	return clamp(num/den, 0, 1)
}

// medianInterval returns the median gap between consecutive samples.
func medianInterval(series []timedValue) time.Duration {
	if len(series) < 2 {
		return 0
	}

	gaps := make([]time.Duration, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		gaps = append(gaps, series[i].at.Sub(series[i-1].at))
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i] < gaps[j] })

	return gaps[len(gaps)/2]
}
