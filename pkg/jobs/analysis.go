package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/runixlabs/runix/pkg/datasource"
	"github.com/runixlabs/runix/pkg/engine"
	"github.com/runixlabs/runix/pkg/models"
	"github.com/runixlabs/runix/pkg/storage"
)

// AnalysisJob sweeps every discoverable resource through the pipeline and
// persists the resulting record chain.
type AnalysisJob struct {
	engine      *engine.Engine
	source      datasource.DataSource
	store       storage.Store
	projectID   string
	windowHours int
	logger      *slog.Logger
}

// NewAnalysisJob builds the recurring analysis sweep. store may be nil when
// persistence is disabled.
func NewAnalysisJob(eng *engine.Engine, source datasource.DataSource, store storage.Store, projectID string, windowHours int, logger *slog.Logger) *AnalysisJob {
	if windowHours <= 0 {
		windowHours = 7 * 24
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisJob{
		engine:      eng,
		source:      source,
		store:       store,
		projectID:   projectID,
		windowHours: windowHours,
		logger:      logger,
	}
}

// Run analyzes all discoverable resources over the trailing window. A
// resource that fails to fetch is skipped and logged rather than failing
// the whole sweep.
func (j *AnalysisJob) Run(ctx context.Context) error {
	resources, err := j.source.ListResources(ctx)
	if err != nil {
		return fmt.Errorf("resource discovery failed: %w", err)
	}
	if len(resources) == 0 {
		j.logger.Info("analysis sweep found no resources")
		return nil
	}

	windowEnd := time.Now().UTC().Truncate(time.Minute)
	windowStart := windowEnd.Add(-time.Duration(j.windowHours) * time.Hour)

	var inputs []engine.Analysis
	for _, resourceID := range resources {
		samples, err := j.source.FetchWindow(ctx, resourceID, windowStart, windowEnd)
		if err != nil {
			j.logger.Warn("skipping resource, metric fetch failed",
				"resource_id", resourceID, "error", err)
			continue
		}
		inputs = append(inputs, engine.Analysis{
			ResourceID:  resourceID,
			ProjectID:   j.projectID,
			WindowStart: windowStart,
			WindowEnd:   windowEnd,
			Samples:     samples,
			CurrentArchitecture: models.Architecture{
				VCPU:             1,
				MemoryMB:         512,
				MinInstances:     1,
				MaxInstances:     10,
				ConcurrencyLimit: 80,
			},
		})
	}

	results, err := j.engine.AnalyzeAll(ctx, inputs)
	if err != nil {
		return err
	}

	if j.store == nil {
		return nil
	}
	for i, res := range results {
		if err := j.store.SaveSamples(ctx, inputs[i].Samples); err != nil {
			return fmt.Errorf("saving samples for %s: %w", inputs[i].ResourceID, err)
		}
		if err := j.store.SaveFeatureWindow(ctx, res.Features); err != nil {
			return fmt.Errorf("saving features for %s: %w", inputs[i].ResourceID, err)
		}
		if err := j.store.SaveClassification(ctx, res.Classification); err != nil {
			return fmt.Errorf("saving classification for %s: %w", inputs[i].ResourceID, err)
		}
		if err := j.store.SaveRecommendation(ctx, res.Recommendation); err != nil {
			return fmt.Errorf("saving recommendation for %s: %w", inputs[i].ResourceID, err)
		}
	}

	j.logger.Info("analysis sweep complete", "resources", len(results))
	return nil
}
