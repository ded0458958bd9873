package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/runixlabs/runix/pkg/models"
)

//go:embed migrations/*.sql
var postgresFS embed.FS

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db  *sql.DB
	dsn string
}

// NewPostgresStore opens a connection pool and applies migrations
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{
		db:  db,
		dsn: dsn,
	}

	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// migrate runs database migrations
func (s *PostgresStore) migrate() error {
	schema, err := postgresFS.ReadFile("migrations/001_schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}

	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// nullable converts an unavailable feature value to SQL NULL.
func nullable(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: models.Available(v)}
}

func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return models.Unavailable()
	}
	return v.Float64
}

// SaveSamples appends raw metric samples. Re-ingesting a (resource, metric,
// timestamp) key overwrites the value, matching last-write-wins dedup in the
// extractor.
func (s *PostgresStore) SaveSamples(ctx context.Context, samples []models.MetricSample) error {
	if len(samples) == 0 {
		return nil
	}

	query := `
		INSERT INTO raw_metrics (ts, resource_id, project_id, metric_type, value, labels)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (resource_id, metric_type, ts) DO UPDATE SET
			value = EXCLUDED.value,
			labels = EXCLUDED.labels
	`

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sample := range samples {
		var labels any
		if len(sample.Labels) > 0 {
			encoded, err := json.Marshal(sample.Labels)
			if err != nil {
				return fmt.Errorf("failed to encode labels: %w", err)
			}
			labels = encoded
		}

		if _, err := stmt.ExecContext(ctx,
			sample.Timestamp, sample.ResourceID, sample.ProjectID,
			sample.MetricType, sample.Value, labels,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveFeatureWindow appends one feature window. Unavailable values are
// stored as NULL.
func (s *PostgresStore) SaveFeatureWindow(ctx context.Context, fw *models.FeatureWindow) error {
	if fw.AnalysisID == "" {
		fw.AnalysisID = uuid.New().String()
	}

	query := `
		INSERT INTO feature_windows (
			analysis_id, resource_id, project_id, window_start, window_end,
			cpu_mean, cpu_stddev, cpu_p50, cpu_p95, cpu_p99, cpu_min, cpu_max,
			memory_mean, memory_stddev, memory_p95,
			request_rate_mean, request_rate_stddev, request_rate_p95, request_total,
			concurrency_mean, concurrency_p95,
			burstiness_score, idle_ratio, active_hours_per_day,
			diurnal_pattern_strength, cost_idle_ratio, efficiency_score,
			over_provision_penalty, sample_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)
	`

	_, err := s.db.ExecContext(ctx, query,
		fw.AnalysisID, fw.ResourceID, fw.ProjectID, fw.WindowStart, fw.WindowEnd,
		nullable(fw.CPUMean), nullable(fw.CPUStdDev), nullable(fw.CPUP50),
		nullable(fw.CPUP95), nullable(fw.CPUP99), nullable(fw.CPUMin), nullable(fw.CPUMax),
		nullable(fw.MemoryMean), nullable(fw.MemoryStdDev), nullable(fw.MemoryP95),
		nullable(fw.RequestRateMean), nullable(fw.RequestRateStdDev),
		nullable(fw.RequestRateP95), nullable(fw.RequestTotal),
		nullable(fw.ConcurrencyMean), nullable(fw.ConcurrencyP95),
		nullable(fw.BurstinessScore), nullable(fw.IdleRatio), nullable(fw.ActiveHoursPerDay),
		nullable(fw.DiurnalPatternStrength), nullable(fw.CostIdleRatio),
		nullable(fw.EfficiencyScore), nullable(fw.OverProvisionPenalty),
		fw.SampleCount,
	)

	return err
}

// SaveClassification appends one classification record
func (s *PostgresStore) SaveClassification(ctx context.Context, cls *models.Classification) error {
	if cls.ClassificationID == "" {
		cls.ClassificationID = uuid.New().String()
	}

	keyMetrics, err := json.Marshal(cls.KeyMetrics)
	if err != nil {
		return fmt.Errorf("failed to encode key metrics: %w", err)
	}

	query := `
		INSERT INTO classifications (
			classification_id, resource_id, project_id, analysis_id,
			workload_type, confidence, reasoning, key_metrics
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = s.db.ExecContext(ctx, query,
		cls.ClassificationID, cls.ResourceID, cls.ProjectID, cls.AnalysisID,
		cls.WorkloadType, cls.Confidence, pq.Array(cls.Reasoning), keyMetrics,
	)

	return err
}

// SaveRecommendation appends one recommendation record
func (s *PostgresStore) SaveRecommendation(ctx context.Context, rec *models.Recommendation) error {
	if rec.RecommendationID == "" {
		rec.RecommendationID = uuid.New().String()
	}
	if rec.RecommendedAt.IsZero() {
		rec.RecommendedAt = time.Now().UTC()
	}

	current, err := json.Marshal(rec.CurrentArchitecture)
	if err != nil {
		return fmt.Errorf("failed to encode current architecture: %w", err)
	}
	recommended, err := json.Marshal(rec.RecommendedArchitecture)
	if err != nil {
		return fmt.Errorf("failed to encode recommended architecture: %w", err)
	}
	impact, err := json.Marshal(rec.CostImpact)
	if err != nil {
		return fmt.Errorf("failed to encode cost impact: %w", err)
	}

	query := `
		INSERT INTO recommendations (
			recommendation_id, resource_id, project_id, classification_id,
			current_architecture, recommended_architecture, cost_impact,
			risk_level, explanation, implementation_steps,
			approval_status, approved_by, approved_at, recommended_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	var approvedBy any
	if rec.ApprovedBy != "" {
		approvedBy = rec.ApprovedBy
	}

	_, err = s.db.ExecContext(ctx, query,
		rec.RecommendationID, rec.ResourceID, rec.ProjectID, rec.ClassificationID,
		current, recommended, impact,
		rec.RiskLevel, pq.Array(rec.Explanation), pq.Array(rec.ImplementationSteps),
		rec.ApprovalStatus, approvedBy, rec.ApprovedAt, rec.RecommendedAt,
	)

	return err
}

const recommendationColumns = `
	recommendation_id, resource_id, project_id, classification_id,
	current_architecture, recommended_architecture, cost_impact,
	risk_level, explanation, implementation_steps,
	approval_status, approved_by, approved_at, recommended_at
`

func scanRecommendation(row interface {
	Scan(dest ...any) error
}) (*models.Recommendation, error) {
	var rec models.Recommendation
	var current, recommended, impact []byte
	var explanation, steps []string
	var approvedBy sql.NullString
	var approvedAt sql.NullTime

	err := row.Scan(
		&rec.RecommendationID, &rec.ResourceID, &rec.ProjectID, &rec.ClassificationID,
		&current, &recommended, &impact,
		&rec.RiskLevel, pq.Array(&explanation), pq.Array(&steps),
		&rec.ApprovalStatus, &approvedBy, &approvedAt, &rec.RecommendedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(current, &rec.CurrentArchitecture); err != nil {
		return nil, fmt.Errorf("failed to decode current architecture: %w", err)
	}
	if err := json.Unmarshal(recommended, &rec.RecommendedArchitecture); err != nil {
		return nil, fmt.Errorf("failed to decode recommended architecture: %w", err)
	}
	if err := json.Unmarshal(impact, &rec.CostImpact); err != nil {
		return nil, fmt.Errorf("failed to decode cost impact: %w", err)
	}

	rec.Explanation = explanation
	rec.ImplementationSteps = steps
	if approvedBy.Valid {
		rec.ApprovedBy = approvedBy.String
	}
	if approvedAt.Valid {
		rec.ApprovedAt = &approvedAt.Time
	}

	return &rec, nil
}

// GetRecommendation retrieves a recommendation by ID
func (s *PostgresStore) GetRecommendation(ctx context.Context, id string) (*models.Recommendation, error) {
	query := `SELECT ` + recommendationColumns + ` FROM recommendations WHERE recommendation_id = $1`

	rec, err := scanRecommendation(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("recommendation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListRecommendations retrieves the recommendation history for one resource,
// newest first.
func (s *PostgresStore) ListRecommendations(ctx context.Context, resourceID string, limit int) ([]*models.Recommendation, error) {
	query := `
		SELECT ` + recommendationColumns + `
		FROM recommendations
		WHERE resource_id = $1
		ORDER BY recommended_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, resourceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recommendations []*models.Recommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		recommendations = append(recommendations, rec)
	}

	return recommendations, rows.Err()
}

// ApplyApproval persists an approval decision. The conditional WHERE makes
// the transition atomic: two racing decisions cannot both take a pending row.
func (s *PostgresStore) ApplyApproval(ctx context.Context, rec *models.Recommendation) error {
	query := `
		UPDATE recommendations
		SET approval_status = $1, approved_by = $2, approved_at = $3
		WHERE recommendation_id = $4 AND approval_status = 'pending'
	`

	result, err := s.db.ExecContext(ctx, query,
		rec.ApprovalStatus, rec.ApprovedBy, rec.ApprovedAt, rec.RecommendationID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var status string
		err := s.db.QueryRowContext(ctx,
			`SELECT approval_status FROM recommendations WHERE recommendation_id = $1`,
			rec.RecommendationID,
		).Scan(&status)
		if err == sql.ErrNoRows {
			return fmt.Errorf("recommendation %s: %w", rec.RecommendationID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("recommendation %s is %s: %w", rec.RecommendationID, status, ErrNotPending)
	}

	return nil
}

// LatestRecommendations reads the per-resource latest recommendation view
func (s *PostgresStore) LatestRecommendations(ctx context.Context, projectID string) ([]*models.LatestRecommendation, error) {
	query := `
		SELECT resource_id, project_id, recommendation_id, workload_type,
			savings_usd, risk_level, approval_status, recommended_at
		FROM latest_recommendations
		WHERE project_id = $1
		ORDER BY savings_usd DESC
	`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var latest []*models.LatestRecommendation
	for rows.Next() {
		var row models.LatestRecommendation
		if err := rows.Scan(
			&row.ResourceID, &row.ProjectID, &row.RecommendationID, &row.WorkloadType,
			&row.SavingsUSD, &row.RiskLevel, &row.ApprovalStatus, &row.RecommendedAt,
		); err != nil {
			return nil, err
		}
		latest = append(latest, &row)
	}

	return latest, rows.Err()
}

// DashboardSummary reads the joined dashboard view
func (s *PostgresStore) DashboardSummary(ctx context.Context, projectID string) ([]*models.DashboardRow, error) {
	query := `
		SELECT resource_id, project_id, workload_type, confidence,
			efficiency_score, idle_ratio, current_monthly_usd,
			savings_usd, savings_percentage, risk_level, approval_status, analyzed_at
		FROM dashboard_summary
		WHERE project_id = $1
		ORDER BY savings_usd DESC
	`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summary []*models.DashboardRow
	for rows.Next() {
		var row models.DashboardRow
		var efficiency, idle sql.NullFloat64
		if err := rows.Scan(
			&row.ResourceID, &row.ProjectID, &row.WorkloadType, &row.Confidence,
			&efficiency, &idle, &row.CurrentMonthlyUSD,
			&row.SavingsUSD, &row.SavingsPercentage, &row.RiskLevel,
			&row.ApprovalStatus, &row.AnalyzedAt,
		); err != nil {
			return nil, err
		}
		row.EfficiencyScore = fromNullable(efficiency)
		row.IdleRatio = fromNullable(idle)
		summary = append(summary, &row)
	}

	return summary, rows.Err()
}

// DashboardStats aggregates the latest recommendations for one project
func (s *PostgresStore) DashboardStats(ctx context.Context, projectID string) (*models.DashboardStats, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(savings_usd), 0),
			COUNT(*) FILTER (WHERE approval_status = 'approved'),
			COUNT(*) FILTER (WHERE approval_status = 'pending')
		FROM latest_recommendations
		WHERE project_id = $1
	`

	stats := models.DashboardStats{ProjectID: projectID}
	err := s.db.QueryRowContext(ctx, query, projectID).Scan(
		&stats.ResourceCount, &stats.TotalPotentialSavings,
		&stats.ApprovedCount, &stats.PendingCount,
	)
	if err != nil {
		return nil, err
	}

	decided := stats.ResourceCount - stats.PendingCount
	if decided > 0 {
		stats.AdoptionRate = float64(stats.ApprovedCount) / float64(decided)
	}

	return &stats, nil
}

// Ping checks database connectivity
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
