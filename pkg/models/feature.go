package models

import (
	"encoding/json"
	"math"
	"time"
)

// Unavailable marks a derived feature that could not be computed because the
// contributing metric had no samples in the window. It is NaN in memory and
// serializes to JSON null.
func Unavailable() float64 {
	return math.NaN()
}

// Available reports whether a derived feature value was computed.
func Available(v float64) bool {
	return !math.IsNaN(v)
}

// FeatureWindow holds the derived statistics for one resource over one
// analysis window. Created once per extraction; never mutated. A changed
// window produces a new AnalysisID.
type FeatureWindow struct {
	AnalysisID  string
	ResourceID  string
	ProjectID   string
	WindowStart time.Time
	WindowEnd   time.Time

	// CPU utilization (percent of provisioned capacity)
	CPUMean   float64
	CPUStdDev float64
	CPUP50    float64
	CPUP95    float64
	CPUP99    float64
	CPUMin    float64
	CPUMax    float64

	// Memory utilization (percent of provisioned capacity)
	MemoryMean   float64
	MemoryStdDev float64
	MemoryP95    float64

	// Request rate (requests per minute)
	RequestRateMean   float64
	RequestRateStdDev float64
	RequestRateP95    float64
	RequestTotal      float64

	// Concurrency (instance count)
	ConcurrencyMean float64
	ConcurrencyP95  float64

	// Composite features
	BurstinessScore        float64
	IdleRatio              float64
	ActiveHoursPerDay      float64
	DiurnalPatternStrength float64
	CostIdleRatio          float64
	EfficiencyScore        float64
	OverProvisionPenalty   float64

	SampleCount int
}

// featureWindowJSON mirrors FeatureWindow with pointer fields so that
// unavailable (NaN) values serialize as null instead of breaking
// encoding/json.
type featureWindowJSON struct {
	AnalysisID  string    `json:"analysis_id"`
	ResourceID  string    `json:"resource_id"`
	ProjectID   string    `json:"project_id"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`

	CPUMean   *float64 `json:"cpu_mean"`
	CPUStdDev *float64 `json:"cpu_stddev"`
	CPUP50    *float64 `json:"cpu_p50"`
	CPUP95    *float64 `json:"cpu_p95"`
	CPUP99    *float64 `json:"cpu_p99"`
	CPUMin    *float64 `json:"cpu_min"`
	CPUMax    *float64 `json:"cpu_max"`

	MemoryMean   *float64 `json:"memory_mean"`
	MemoryStdDev *float64 `json:"memory_stddev"`
	MemoryP95    *float64 `json:"memory_p95"`

	RequestRateMean   *float64 `json:"request_rate_mean"`
	RequestRateStdDev *float64 `json:"request_rate_stddev"`
	RequestRateP95    *float64 `json:"request_rate_p95"`
	RequestTotal      *float64 `json:"request_total"`

	ConcurrencyMean *float64 `json:"concurrency_mean"`
	ConcurrencyP95  *float64 `json:"concurrency_p95"`

	BurstinessScore        *float64 `json:"burstiness_score"`
	IdleRatio              *float64 `json:"idle_ratio"`
	ActiveHoursPerDay      *float64 `json:"active_hours_per_day"`
	DiurnalPatternStrength *float64 `json:"diurnal_pattern_strength"`
	CostIdleRatio          *float64 `json:"cost_idle_ratio"`
	EfficiencyScore        *float64 `json:"efficiency_score"`
	OverProvisionPenalty   *float64 `json:"over_provision_penalty"`

	SampleCount int `json:"sample_count"`
}

func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func fromOptional(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// MarshalJSON serializes unavailable feature values as null.
func (f FeatureWindow) MarshalJSON() ([]byte, error) {
	return json.Marshal(featureWindowJSON{
		AnalysisID:  f.AnalysisID,
		ResourceID:  f.ResourceID,
		ProjectID:   f.ProjectID,
		WindowStart: f.WindowStart,
		WindowEnd:   f.WindowEnd,

		CPUMean:   optional(f.CPUMean),
		CPUStdDev: optional(f.CPUStdDev),
		CPUP50:    optional(f.CPUP50),
		CPUP95:    optional(f.CPUP95),
		CPUP99:    optional(f.CPUP99),
		CPUMin:    optional(f.CPUMin),
		CPUMax:    optional(f.CPUMax),

		MemoryMean:   optional(f.MemoryMean),
		MemoryStdDev: optional(f.MemoryStdDev),
		MemoryP95:    optional(f.MemoryP95),

		RequestRateMean:   optional(f.RequestRateMean),
		RequestRateStdDev: optional(f.RequestRateStdDev),
		RequestRateP95:    optional(f.RequestRateP95),
		RequestTotal:      optional(f.RequestTotal),

		ConcurrencyMean: optional(f.ConcurrencyMean),
		ConcurrencyP95:  optional(f.ConcurrencyP95),

		BurstinessScore:        optional(f.BurstinessScore),
		IdleRatio:              optional(f.IdleRatio),
		ActiveHoursPerDay:      optional(f.ActiveHoursPerDay),
		DiurnalPatternStrength: optional(f.DiurnalPatternStrength),
		CostIdleRatio:          optional(f.CostIdleRatio),
		EfficiencyScore:        optional(f.EfficiencyScore),
		OverProvisionPenalty:   optional(f.OverProvisionPenalty),

		SampleCount: f.SampleCount,
	})
}

// UnmarshalJSON restores null feature values as NaN.
func (f *FeatureWindow) UnmarshalJSON(data []byte) error {
	var j featureWindowJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}

	f.AnalysisID = j.AnalysisID
	f.ResourceID = j.ResourceID
	f.ProjectID = j.ProjectID
	f.WindowStart = j.WindowStart
	f.WindowEnd = j.WindowEnd

	f.CPUMean = fromOptional(j.CPUMean)
	f.CPUStdDev = fromOptional(j.CPUStdDev)
	f.CPUP50 = fromOptional(j.CPUP50)
	f.CPUP95 = fromOptional(j.CPUP95)
	f.CPUP99 = fromOptional(j.CPUP99)
	f.CPUMin = fromOptional(j.CPUMin)
	f.CPUMax = fromOptional(j.CPUMax)

	f.MemoryMean = fromOptional(j.MemoryMean)
	f.MemoryStdDev = fromOptional(j.MemoryStdDev)
	f.MemoryP95 = fromOptional(j.MemoryP95)

	f.RequestRateMean = fromOptional(j.RequestRateMean)
	f.RequestRateStdDev = fromOptional(j.RequestRateStdDev)
	f.RequestRateP95 = fromOptional(j.RequestRateP95)
	f.RequestTotal = fromOptional(j.RequestTotal)

	f.ConcurrencyMean = fromOptional(j.ConcurrencyMean)
	f.ConcurrencyP95 = fromOptional(j.ConcurrencyP95)

	f.BurstinessScore = fromOptional(j.BurstinessScore)
	f.IdleRatio = fromOptional(j.IdleRatio)
	f.ActiveHoursPerDay = fromOptional(j.ActiveHoursPerDay)
	f.DiurnalPatternStrength = fromOptional(j.DiurnalPatternStrength)
	f.CostIdleRatio = fromOptional(j.CostIdleRatio)
	f.EfficiencyScore = fromOptional(j.EfficiencyScore)
	f.OverProvisionPenalty = fromOptional(j.OverProvisionPenalty)

	f.SampleCount = j.SampleCount
	return nil
}

// Empty reports whether the window produced no usable features at all.
func (f *FeatureWindow) Empty() bool {
	return f.SampleCount == 0
}
