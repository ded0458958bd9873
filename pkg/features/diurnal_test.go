package features

import (
	"math"
	"testing"
	"time"
)

func hourlySeries(hours int, value func(hour int) float64) []timedValue {
	series := make([]timedValue, hours)
	for i := 0; i < hours; i++ {
		series[i] = timedValue{at: windowStart.Add(time.Duration(i) * time.Hour), value: value(i)}
	}
	return series
}

func TestDiurnalStrengthOfDailyCycle(t *testing.T) {
	// A clean 24-hour sine over 7 days correlates almost perfectly with
	// itself one day later.
	series := hourlySeries(7*24, func(hour int) float64 {
		return 50 + 40*math.Sin(2*math.Pi*float64(hour)/24)
	})

	strength := diurnalStrength(series, 48)
	if strength < 0.7 {
		t.Errorf("Expected strong diurnal signal (>= 0.7), got %.3f", strength)
	}
	if strength > 1.0 {
		t.Errorf("Expected strength clamped to 1.0, got %.3f", strength)
	}
}

func TestDiurnalStrengthShortSpanUnavailable(t *testing.T) {
	// 24 hours of data cannot support a 24-hour-lag comparison
	series := hourlySeries(24, func(hour int) float64 { return float64(hour) })

	strength := diurnalStrength(series, 48)
	if !math.IsNaN(strength) {
		t.Errorf("Expected NaN for span below 48h, got %.3f", strength)
	}
}

func TestDiurnalStrengthTooFewSamples(t *testing.T) {
	series := hourlySeries(3, func(hour int) float64 { return float64(hour) })
	if strength := diurnalStrength(series, 48); !math.IsNaN(strength) {
		t.Errorf("Expected NaN for 3 samples, got %.3f", strength)
	}
}

func TestDiurnalStrengthConstantSeriesIsZero(t *testing.T) {
	series := hourlySeries(7*24, func(int) float64 { return 42 })
	if strength := diurnalStrength(series, 48); strength != 0 {
		t.Errorf("Expected 0 for constant series, got %.3f", strength)
	}
}

func TestDiurnalStrengthNeverNegative(t *testing.T) {
	// A 48-hour cycle anti-correlates at the 24-hour lag; the score clamps
	// at 0 instead of going negative.
	series := hourlySeries(7*24, func(hour int) float64 {
		return 50 + 40*math.Sin(2*math.Pi*float64(hour)/48)
	})

	strength := diurnalStrength(series, 48)
	if strength < 0 {
		t.Errorf("Expected non-negative strength, got %.3f", strength)
	}
}

func TestMedianInterval(t *testing.T) {
	series := []timedValue{
		{at: windowStart},
		{at: windowStart.Add(time.Minute)},
		{at: windowStart.Add(2 * time.Minute)},
		{at: windowStart.Add(20 * time.Minute)}, // one gap from an outage
	}
	if got := medianInterval(series); got != time.Minute {
		t.Errorf("Expected median interval 1m, got %s", got)
	}
}
