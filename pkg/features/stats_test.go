package features

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	// [1, 2, ..., 10]
	values := make([]float64, 10)
	for i := range values {
		values[i] = float64(i + 1)
	}

	st := Summarize(values)

	if st.Mean != 5.5 {
		t.Errorf("Expected mean 5.5, got %.2f", st.Mean)
	}
	if st.Min != 1.0 {
		t.Errorf("Expected min 1.0, got %.2f", st.Min)
	}
	if st.Max != 10.0 {
		t.Errorf("Expected max 10.0, got %.2f", st.Max)
	}
	if st.P50 != 5.5 {
		t.Errorf("Expected P50 5.5, got %.2f", st.P50)
	}
	// rank 0.95 * 9 = 8.55 -> between 9 and 10
	if math.Abs(st.P95-9.55) > 1e-9 {
		t.Errorf("Expected P95 9.55, got %.4f", st.P95)
	}
	if math.Abs(st.P99-9.91) > 1e-9 {
		t.Errorf("Expected P99 9.91, got %.4f", st.P99)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	st := Summarize(nil)

	for name, v := range map[string]float64{
		"mean": st.Mean, "stddev": st.StdDev,
		"p50": st.P50, "p95": st.P95, "p99": st.P99,
		"min": st.Min, "max": st.Max,
	} {
		if !math.IsNaN(v) {
			t.Errorf("Expected %s to be NaN for empty input, got %.2f", name, v)
		}
	}
}

func TestSummarizeSingleValue(t *testing.T) {
	st := Summarize([]float64{42})

	if st.P50 != 42 || st.P95 != 42 || st.P99 != 42 {
		t.Errorf("Expected all percentiles 42 for single value, got p50=%.2f p95=%.2f p99=%.2f", st.P50, st.P95, st.P99)
	}
	if st.StdDev != 0 {
		t.Errorf("Expected stddev 0 for single value, got %.2f", st.StdDev)
	}
}

func TestStdDevIsPopulation(t *testing.T) {
	// population stddev of [2, 4, 4, 4, 5, 5, 7, 9] is exactly 2
	st := Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if math.Abs(st.StdDev-2.0) > 1e-9 {
		t.Errorf("Expected population stddev 2.0, got %.4f", st.StdDev)
	}
}

func TestPercentileDoesNotMutateInput(t *testing.T) {
	values := []float64{5, 1, 3}
	Summarize(values)
	if values[0] != 5 || values[1] != 1 || values[2] != 3 {
		t.Errorf("Summarize mutated its input: %v", values)
	}
}
