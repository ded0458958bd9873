package models

import "time"

// MetricType identifies one of the metric series the engine understands.
type MetricType string

const (
	MetricCPUUtilization    MetricType = "cpu_utilization"
	MetricMemoryUtilization MetricType = "memory_utilization"
	MetricRequestRate       MetricType = "request_rate"
	MetricConcurrency       MetricType = "concurrency"
)

// MetricSample is a single raw time-series data point for a resource.
// Samples are immutable; they are produced only by the metrics source.
type MetricSample struct {
	Timestamp  time.Time         `json:"timestamp"`
	ResourceID string            `json:"resource_id"`
	ProjectID  string            `json:"project_id"`
	MetricType MetricType        `json:"metric_type"`
	Value      float64           `json:"value"`
	Labels     map[string]string `json:"labels,omitempty"`
}
