package datasource

import (
	"context"
	"log/slog"
	"time"

	"github.com/runixlabs/runix/pkg/models"
)

// DataSource is the metrics-source collaborator: it assembles the ordered
// sample window for one resource that the engine consumes.
type DataSource interface {
	FetchWindow(ctx context.Context, resourceID string, windowStart, windowEnd time.Time) ([]models.MetricSample, error)
	ListResources(ctx context.Context) ([]string, error)
	IsAvailable(ctx context.Context) bool
	Name() string
}

type Config struct {
	PrometheusURL string
	ProjectID     string
	Step          time.Duration
	Timeout       time.Duration
	Logger        *slog.Logger
}
