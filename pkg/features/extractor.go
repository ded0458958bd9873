package features

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/runixlabs/runix/pkg/config"
	"github.com/runixlabs/runix/pkg/models"
)

// MalformedWindowInputError reports a sample outside the declared window or
// with a mismatched resource. The caller must fix the input; the extraction
// is not retryable as-is.
type MalformedWindowInputError struct {
	ResourceID string
	Reason     string
}

func (e *MalformedWindowInputError) Error() string {
	return fmt.Sprintf("malformed window input for %s: %s", e.ResourceID, e.Reason)
}

// Options tunes a single extraction.
type Options struct {
	// MinInstances is the current architecture's min-instance count, used
	// to weight cost_idle_ratio. Zero (scale-to-zero) leaves cost_idle_ratio
	// equal to idle_ratio.
	MinInstances int
}

// Extractor reduces a bounded window of raw samples to a FeatureWindow.
type Extractor struct {
	thresholds *config.Thresholds
}

// NewExtractor creates an extractor using the given rule thresholds.
func NewExtractor(thresholds *config.Thresholds) *Extractor {
	if thresholds == nil {
		thresholds = config.DefaultThresholds()
	}
	return &Extractor{thresholds: thresholds}
}

// Extract computes the feature vector for one resource over one window.
// All samples must share resourceID and satisfy windowStart <= t < windowEnd;
// a violating sample yields a MalformedWindowInputError. An empty sample set
// is not an error: it produces a window with every derived field unavailable.
func (e *Extractor) Extract(samples []models.MetricSample, windowStart, windowEnd time.Time, resourceID, projectID string) (*models.FeatureWindow, error) {
	return e.ExtractWithOptions(samples, windowStart, windowEnd, resourceID, projectID, Options{})
}

// ExtractWithOptions is Extract with per-call options.
func (e *Extractor) ExtractWithOptions(samples []models.MetricSample, windowStart, windowEnd time.Time, resourceID, projectID string, opts Options) (*models.FeatureWindow, error) {
	if !windowEnd.After(windowStart) {
		return nil, &MalformedWindowInputError{
			ResourceID: resourceID,
			Reason:     fmt.Sprintf("window_end %s not after window_start %s", windowEnd.Format(time.RFC3339), windowStart.Format(time.RFC3339)),
		}
	}

	for _, s := range samples {
		if s.ResourceID != resourceID {
			return nil, &MalformedWindowInputError{
				ResourceID: resourceID,
				Reason:     fmt.Sprintf("sample belongs to resource %s", s.ResourceID),
			}
		}
		if s.Timestamp.Before(windowStart) || !s.Timestamp.Before(windowEnd) {
			return nil, &MalformedWindowInputError{
				ResourceID: resourceID,
				Reason:     fmt.Sprintf("sample at %s outside window", s.Timestamp.Format(time.RFC3339)),
			}
		}
	}

	series := groupByMetric(samples)

	fw := newUnavailableWindow()
	fw.AnalysisID = uuid.New().String()
	fw.ResourceID = resourceID
	fw.ProjectID = projectID
	fw.WindowStart = windowStart
	fw.WindowEnd = windowEnd
	for _, s := range series {
		fw.SampleCount += len(s)
	}

	cpu := series[models.MetricCPUUtilization]
	if len(cpu) > 0 {
		st := Summarize(valuesOf(cpu))
		fw.CPUMean = st.Mean
		fw.CPUStdDev = st.StdDev
		fw.CPUP50 = st.P50
		fw.CPUP95 = st.P95
		fw.CPUP99 = st.P99
		fw.CPUMin = st.Min
		fw.CPUMax = st.Max
	}

	if mem := series[models.MetricMemoryUtilization]; len(mem) > 0 {
		st := Summarize(valuesOf(mem))
		fw.MemoryMean = st.Mean
		fw.MemoryStdDev = st.StdDev
		fw.MemoryP95 = st.P95
	}

	req := series[models.MetricRequestRate]
	if len(req) > 0 {
		st := Summarize(valuesOf(req))
		fw.RequestRateMean = st.Mean
		fw.RequestRateStdDev = st.StdDev
		fw.RequestRateP95 = st.P95
		fw.RequestTotal = sum(valuesOf(req))
	}

	if conc := series[models.MetricConcurrency]; len(conc) > 0 {
		st := Summarize(valuesOf(conc))
		fw.ConcurrencyMean = st.Mean
		fw.ConcurrencyP95 = st.P95
	}

	fw.BurstinessScore = e.burstiness(fw)
	fw.IdleRatio = e.idleRatio(cpu)

	if models.Available(fw.IdleRatio) {
		fw.ActiveHoursPerDay = math.Round((1-fw.IdleRatio)*24*10) / 10
		fw.CostIdleRatio = fw.IdleRatio / (1 + float64(opts.MinInstances))
	}

	if len(cpu) > 0 {
		fw.DiurnalPatternStrength = diurnalStrength(cpu, e.thresholds.MinDiurnalSpan)
		fw.OverProvisionPenalty = e.overProvisionPenalty(fw.CPUP95)
	}

	if models.Available(fw.OverProvisionPenalty) && models.Available(fw.IdleRatio) {
		fw.EfficiencyScore = 100 * (1 - fw.OverProvisionPenalty) * (1 - fw.IdleRatio)
	}

	return fw, nil
}

// burstiness is the ratio of p95 to mean load: request rate when present,
// CPU utilization otherwise. Unavailable when the mean is zero.
func (e *Extractor) burstiness(fw *models.FeatureWindow) float64 {
	if models.Available(fw.RequestRateMean) {
		if fw.RequestRateMean == 0 {
			return math.NaN()
		}
		return math.Max(0, fw.RequestRateP95/fw.RequestRateMean)
	}
	if models.Available(fw.CPUMean) {
		if fw.CPUMean == 0 {
			return math.NaN()
		}
		return math.Max(0, fw.CPUP95/fw.CPUMean)
	}
	return math.NaN()
}

// idleRatio is the fraction of CPU samples below the low-utilization
// threshold.
func (e *Extractor) idleRatio(cpu []timedValue) float64 {
	if len(cpu) == 0 {
		return math.NaN()
	}

	idle := 0
	for _, tv := range cpu {
		if tv.value < e.thresholds.CPUIdleThreshold {
			idle++
		}
	}
	return float64(idle) / float64(len(cpu))
}

// overProvisionPenalty measures how far provisioned capacity exceeds p95
// observed utilization: 0 at or above the high bound, 1 at or below the low
// bound, linear in between.
func (e *Extractor) overProvisionPenalty(cpuP95 float64) float64 {
	if !models.Available(cpuP95) {
		return math.NaN()
	}
	hi, lo := e.thresholds.OverProvisionHi, e.thresholds.OverProvisionLo
	return clamp((hi-cpuP95)/(hi-lo), 0, 1)
}

// groupByMetric splits samples per metric type, deduplicates equal timestamps
// last-write-wins, and orders each series by time. Metric types outside the
// known set are dropped.
func groupByMetric(samples []models.MetricSample) map[models.MetricType][]timedValue {
	known := map[models.MetricType]bool{
		models.MetricCPUUtilization:    true,
		models.MetricMemoryUtilization: true,
		models.MetricRequestRate:       true,
		models.MetricConcurrency:       true,
	}

	byMetric := make(map[models.MetricType]map[int64]timedValue)
	for _, s := range samples {
		if !known[s.MetricType] {
			continue
		}
		m, ok := byMetric[s.MetricType]
		if !ok {
			m = make(map[int64]timedValue)
			byMetric[s.MetricType] = m
		}
		// last write wins on duplicate timestamps
		m[s.Timestamp.UnixNano()] = timedValue{at: s.Timestamp, value: s.Value}
	}

	out := make(map[models.MetricType][]timedValue, len(byMetric))
	for mt, m := range byMetric {
		series := make([]timedValue, 0, len(m))
		for _, tv := range m {
			series = append(series, tv)
		}
		sort.Slice(series, func(i, j int) bool { return series[i].at.Before(series[j].at) })
		out[mt] = series
	}
	return out
}

func valuesOf(series []timedValue) []float64 {
	values := make([]float64, len(series))
	for i, tv := range series {
		values[i] = tv.value
	}
	return values
}

// newUnavailableWindow returns a FeatureWindow with every derived field
// marked unavailable. Fields are filled in only when their metric had
// samples in the window.
func newUnavailableWindow() *models.FeatureWindow {
	nan := math.NaN()
	return &models.FeatureWindow{
		CPUMean: nan, CPUStdDev: nan, CPUP50: nan, CPUP95: nan, CPUP99: nan,
		CPUMin: nan, CPUMax: nan,
		MemoryMean: nan, MemoryStdDev: nan, MemoryP95: nan,
		RequestRateMean: nan, RequestRateStdDev: nan, RequestRateP95: nan,
		RequestTotal:    nan,
		ConcurrencyMean: nan, ConcurrencyP95: nan,
		BurstinessScore: nan, IdleRatio: nan, ActiveHoursPerDay: nan,
		DiurnalPatternStrength: nan, CostIdleRatio: nan,
		EfficiencyScore: nan, OverProvisionPenalty: nan,
	}
}
