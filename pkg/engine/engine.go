// Package engine wires the analysis pipeline: feature extraction, workload
// classification, recommendation generation and explanation enrichment.
// Each stage is a pure function of its inputs; resources are independent and
// can be analyzed in parallel.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/runixlabs/runix/pkg/classifier"
	"github.com/runixlabs/runix/pkg/config"
	"github.com/runixlabs/runix/pkg/explainer"
	"github.com/runixlabs/runix/pkg/features"
	"github.com/runixlabs/runix/pkg/models"
	"github.com/runixlabs/runix/pkg/pricing"
	"github.com/runixlabs/runix/pkg/recommender"
)

// Analysis is the input for one resource: a bounded sample window plus the
// resource's current architecture.
type Analysis struct {
	ResourceID          string
	ProjectID           string
	WindowStart         time.Time
	WindowEnd           time.Time
	Samples             []models.MetricSample
	CurrentArchitecture models.Architecture
}

// Result is the record chain produced for one resource.
type Result struct {
	Features       *models.FeatureWindow  `json:"features"`
	Classification *models.Classification `json:"classification"`
	Recommendation *models.Recommendation `json:"recommendation"`
	// Explanation is the prose rendering of the recommendation facts, from
	// the collaborator when reachable, the template fallback otherwise.
	Explanation []string `json:"explanation"`
}

// Engine runs the pipeline stages in order.
type Engine struct {
	extractor   *features.Extractor
	classifier  *classifier.Classifier
	recommender *recommender.Recommender
	explainer   explainer.Explainer
	fallback    explainer.Explainer
	logger      *slog.Logger

	// Parallelism bounds AnalyzeAll fan-out.
	Parallelism int
}

// New assembles an engine from the rule thresholds. exp may be nil; the
// template fallback is always available.
func New(thresholds *config.Thresholds, exp explainer.Explainer, logger *slog.Logger) *Engine {
	if thresholds == nil {
		thresholds = config.DefaultThresholds()
	}
	if logger == nil {
		logger = slog.Default()
	}
	provider := pricing.NewServerlessProvider(thresholds)
	return &Engine{
		extractor:   features.NewExtractor(thresholds),
		classifier:  classifier.New(thresholds),
		recommender: recommender.New(thresholds, provider),
		explainer:   exp,
		fallback:    explainer.NewTemplateExplainer(),
		logger:      logger,
		Parallelism: 8,
	}
}

// Analyze runs samples -> features -> classification -> recommendation for
// one resource. Data sparsity is not an error: an empty window flows through
// as an unknown classification and a no-op recommendation.
func (e *Engine) Analyze(ctx context.Context, in Analysis) (*Result, error) {
	fw, err := e.extractor.ExtractWithOptions(
		in.Samples, in.WindowStart, in.WindowEnd, in.ResourceID, in.ProjectID,
		features.Options{MinInstances: in.CurrentArchitecture.MinInstances},
	)
	if err != nil {
		return nil, fmt.Errorf("feature extraction failed: %w", err)
	}

	cls := e.classifier.Classify(fw)
	rec := e.recommender.Recommend(cls, fw, in.CurrentArchitecture)

	e.logger.Info("analysis complete",
		"resource_id", in.ResourceID,
		"workload_type", cls.WorkloadType,
		"confidence", cls.Confidence,
		"savings_usd", rec.CostImpact.SavingsUSD,
		"risk", rec.RiskLevel,
	)

	return &Result{
		Features:       fw,
		Classification: cls,
		Recommendation: rec,
		Explanation:    e.explain(ctx, cls, rec),
	}, nil
}

// AnalyzeAll analyzes independent resources in parallel. The first
// structural input error cancels the remaining work.
func (e *Engine) AnalyzeAll(ctx context.Context, inputs []Analysis) ([]*Result, error) {
	results := make([]*Result, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Parallelism)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			res, err := e.Analyze(ctx, in)
			if err != nil {
				return fmt.Errorf("resource %s: %w", in.ResourceID, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// explain asks the collaborator to phrase the recommendation facts and
// substitutes the deterministic templates on any failure.
func (e *Engine) explain(ctx context.Context, cls *models.Classification, rec *models.Recommendation) []string {
	facts := explainer.Facts{
		WorkloadType:            cls.WorkloadType,
		Confidence:              cls.Confidence,
		KeyMetrics:              cls.KeyMetrics,
		RecommendedArchitecture: rec.RecommendedArchitecture,
		CostImpact:              rec.CostImpact,
	}

	if e.explainer != nil {
		prose, err := e.explainer.Generate(ctx, facts)
		if err == nil {
			return prose
		}
		e.logger.Warn("explanation service unavailable, using templates",
			"resource_id", cls.ResourceID, "error", err)
	}

	prose, _ := e.fallback.Generate(ctx, facts)
	return prose
}
