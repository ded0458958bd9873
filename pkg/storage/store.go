package storage

import (
	"context"
	"errors"
	"time"

	"github.com/runixlabs/runix/pkg/models"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrNotPending is returned when an approval write races another decision:
// the recommendation was no longer pending when the update ran.
var ErrNotPending = errors.New("recommendation is not pending")

// Store defines the interface for the analytical record store. All tables
// are append-only except the approval fields of recommendations.
type Store interface {
	SaveSamples(ctx context.Context, samples []models.MetricSample) error
	SaveFeatureWindow(ctx context.Context, fw *models.FeatureWindow) error
	SaveClassification(ctx context.Context, cls *models.Classification) error
	SaveRecommendation(ctx context.Context, rec *models.Recommendation) error

	GetRecommendation(ctx context.Context, id string) (*models.Recommendation, error)
	ListRecommendations(ctx context.Context, resourceID string, limit int) ([]*models.Recommendation, error)

	// ApplyApproval persists an approval decision. The write only succeeds
	// while the stored row is still pending; a lost race returns ErrNotPending.
	ApplyApproval(ctx context.Context, rec *models.Recommendation) error

	LatestRecommendations(ctx context.Context, projectID string) ([]*models.LatestRecommendation, error)
	DashboardSummary(ctx context.Context, projectID string) ([]*models.DashboardRow, error)
	DashboardStats(ctx context.Context, projectID string) (*models.DashboardStats, error)

	Ping(ctx context.Context) error
	Close() error
}

type Config struct {
	URL     string
	Timeout time.Duration
}
