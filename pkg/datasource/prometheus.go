package datasource

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"

	"github.com/runixlabs/runix/pkg/models"
)

// metricQueries maps each metric type to its PromQL expression. The service
// label selects one resource.
var metricQueries = map[models.MetricType]string{
	models.MetricCPUUtilization:    `avg(service_cpu_utilization_percent{service=%q})`,
	models.MetricMemoryUtilization: `avg(service_memory_utilization_percent{service=%q})`,
	models.MetricRequestRate:       `sum(rate(service_requests_total{service=%q}[5m])) * 60`,
	models.MetricConcurrency:       `sum(service_instance_count{service=%q})`,
}

// PrometheusSource fetches sample windows from a Prometheus server.
type PrometheusSource struct {
	client    v1.API
	url       string
	projectID string
	step      time.Duration
	logger    *slog.Logger
}

// NewPrometheusSource creates a source for the given Prometheus URL.
func NewPrometheusSource(cfg Config) (*PrometheusSource, error) {
	client, err := api.NewClient(api.Config{
		Address: cfg.PrometheusURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus client: %w", err)
	}

	step := cfg.Step
	if step <= 0 {
		step = time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &PrometheusSource{
		client:    v1.NewAPI(client),
		url:       cfg.PrometheusURL,
		projectID: cfg.ProjectID,
		step:      step,
		logger:    logger,
	}, nil
}

// FetchWindow range-queries every known metric type for one resource and
// returns the merged, time-ordered sample window.
func (p *PrometheusSource) FetchWindow(ctx context.Context, resourceID string, windowStart, windowEnd time.Time) ([]models.MetricSample, error) {
	r := v1.Range{
		Start: windowStart,
		// the engine rejects samples at window_end; stay inside the window
		End:  windowEnd.Add(-time.Millisecond),
		Step: p.step,
	}

	var samples []models.MetricSample
	for metricType, queryTemplate := range metricQueries {
		query := fmt.Sprintf(queryTemplate, resourceID)

		result, warnings, err := p.client.QueryRange(ctx, query, r)
		if err != nil {
			return nil, fmt.Errorf("range query for %s failed: %w", metricType, err)
		}
		if len(warnings) > 0 {
			// warnings are non-fatal; keep the series
			p.logger.Warn("prometheus range query returned warnings",
				"resource_id", resourceID, "metric_type", metricType, "warnings", warnings)
		}

		matrix, ok := result.(model.Matrix)
		if !ok {
			continue
		}
		for _, stream := range matrix {
			for _, pair := range stream.Values {
				samples = append(samples, models.MetricSample{
					Timestamp:  pair.Timestamp.Time(),
					ResourceID: resourceID,
					ProjectID:  p.projectID,
					MetricType: metricType,
					Value:      float64(pair.Value),
				})
			}
		}
	}

	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Timestamp.Before(samples[j].Timestamp)
	})
	return samples, nil
}

// ListResources enumerates services that reported CPU utilization recently.
func (p *PrometheusSource) ListResources(ctx context.Context) ([]string, error) {
	result, _, err := p.client.Query(ctx, `count by (service) (service_cpu_utilization_percent)`, time.Now())
	if err != nil {
		return nil, fmt.Errorf("resource discovery query failed: %w", err)
	}

	vector, ok := result.(model.Vector)
	if !ok {
		return nil, nil
	}

	var resources []string
	for _, sample := range vector {
		if name, ok := sample.Metric["service"]; ok {
			resources = append(resources, string(name))
		}
	}
	sort.Strings(resources)
	return resources, nil
}

func (p *PrometheusSource) IsAvailable(ctx context.Context) bool {
	_, _, err := p.client.Query(ctx, "up", time.Now())
	return err == nil
}

func (p *PrometheusSource) Name() string {
	return "prometheus"
}
