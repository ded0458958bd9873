package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/runixlabs/runix/pkg/approval"
	"github.com/runixlabs/runix/pkg/config"
	"github.com/runixlabs/runix/pkg/datasource"
	"github.com/runixlabs/runix/pkg/engine"
	"github.com/runixlabs/runix/pkg/explainer"
	"github.com/runixlabs/runix/pkg/jobs"
	"github.com/runixlabs/runix/pkg/models"
	"github.com/runixlabs/runix/pkg/output"
	"github.com/runixlabs/runix/pkg/reporter"
	"github.com/runixlabs/runix/pkg/server"
	"github.com/runixlabs/runix/pkg/storage"
)

var (
	// Analyze flags
	resources      []string
	windowHours    int
	outputFormat   string
	saveResults    bool
	useMock        bool
	mockSeed       int64
	verbose        bool
	generateReport bool
	reportFormat   string
	reportOutput   string

	// History flags
	historyLimit int

	// Decision flags
	actor string

	// Global config
	cfg   *config.Config
	store storage.Store
)

func main() {
	cfg = config.NewConfig()

	var rootCmd = &cobra.Command{
		Use:   "runix",
		Short: "Workload classification and cost optimization engine",
		Long:  `Analyze service metrics, classify workload behavior and recommend cheaper serverless architectures.`,
		Run:   runAnalyze,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.Flags().StringSliceVarP(&resources, "resource", "r", nil, "Resource to analyze (repeatable; all discoverable resources if empty)")
	rootCmd.Flags().IntVar(&windowHours, "window-hours", 0, "Analysis window in hours (default from METRICS_DURATION)")
	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json")
	rootCmd.Flags().BoolVar(&saveResults, "save", false, "Save results to database")
	rootCmd.Flags().BoolVar(&useMock, "mock", false, "Use the synthetic metric generator instead of Prometheus")
	rootCmd.Flags().Int64Var(&mockSeed, "mock-seed", 42, "Seed for the synthetic metric generator")
	rootCmd.Flags().BoolVar(&generateReport, "generate-report", false, "Generate a cost optimization report")
	rootCmd.Flags().StringVar(&reportFormat, "report-format", "markdown", "Report format: markdown, csv")
	rootCmd.Flags().StringVar(&reportOutput, "report-output", "cost-report.md", "Output file for report")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis API server with scheduled sweeps",
		Run:   runServe,
	}
	serveCmd.Flags().BoolVar(&useMock, "mock", false, "Use the synthetic metric generator instead of Prometheus")
	serveCmd.Flags().Int64Var(&mockSeed, "mock-seed", 42, "Seed for the synthetic metric generator")

	historyCmd := &cobra.Command{
		Use:   "history <resource-id>",
		Short: "View past recommendations for a resource",
		Args:  cobra.ExactArgs(1),
		Run:   runHistory,
	}
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of recommendations to show")

	approveCmd := &cobra.Command{
		Use:   "approve <recommendation-id>",
		Short: "Approve a pending recommendation",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runDecision(args[0], approval.DecisionApprove)
		},
	}
	approveCmd.Flags().StringVar(&actor, "actor", "", "Identity recording the decision (required)")

	rejectCmd := &cobra.Command{
		Use:   "reject <recommendation-id>",
		Short: "Reject a pending recommendation",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runDecision(args[0], approval.DecisionReject)
		},
	}
	rejectCmd.Flags().StringVar(&actor, "actor", "", "Identity recording the decision (required)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(rejectCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadThresholds() *config.Thresholds {
	thresholds, err := config.LoadThresholds(cfg.ThresholdsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid thresholds file: %v\n", err)
		os.Exit(1)
	}
	return thresholds
}

func newDataSource(logger *slog.Logger) datasource.DataSource {
	if useMock {
		return datasource.NewMockSource(cfg.ProjectID, mockSeed)
	}
	source, err := datasource.NewPrometheusSource(datasource.Config{
		PrometheusURL: cfg.PrometheusURL,
		ProjectID:     cfg.ProjectID,
		Step:          time.Minute,
		Logger:        logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("using prometheus datasource", "url", cfg.PrometheusURL)
	return source
}

func newExplainer() explainer.Explainer {
	if cfg.ExplainerURL == "" {
		return nil
	}
	return explainer.NewHTTPExplainer(cfg.ExplainerURL, cfg.ExplainerTimeout)
}

func initStorage() error {
	if !cfg.StorageEnabled || !saveResults {
		return nil
	}
	return initStorageForced()
}

func initStorageForced() error {
	var err error
	store, err = storage.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) {
	if outputFormat != "text" && outputFormat != "json" {
		fmt.Fprintln(os.Stderr, "Error: output must be text or json")
		os.Exit(1)
	}
	if windowHours <= 0 {
		windowHours = int(cfg.MetricsDuration.Hours())
	}

	logger := newLogger()
	source := newDataSource(logger)
	eng := engine.New(loadThresholds(), newExplainer(), logger)

	if err := initStorage(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if store != nil {
		defer store.Close()
	}

	ctx := context.Background()
	targets := resources
	if len(targets) == 0 {
		var err error
		targets, err = source.ListResources(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: resource discovery failed: %v\n", err)
			os.Exit(1)
		}
	}
	if len(targets) == 0 {
		fmt.Println("No resources found to analyze")
		return
	}

	windowEnd := time.Now().UTC().Truncate(time.Minute)
	windowStart := windowEnd.Add(-time.Duration(windowHours) * time.Hour)

	var inputs []engine.Analysis
	for _, resourceID := range targets {
		samples, err := source.FetchWindow(ctx, resourceID, windowStart, windowEnd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: metric fetch failed for %s: %v\n", resourceID, err)
			os.Exit(1)
		}
		inputs = append(inputs, engine.Analysis{
			ResourceID:  resourceID,
			ProjectID:   cfg.ProjectID,
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

	results, err := eng.AnalyzeAll(ctx, inputs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if store != nil {
		for i, res := range results {
			if err := persistResult(ctx, inputs[i].Samples, res); err != nil {
				fmt.Fprintf(os.Stderr, "Error: failed to save results for %s: %v\n", inputs[i].ResourceID, err)
				os.Exit(1)
			}
		}
	}

	var handler output.Handler
	switch outputFormat {
	case "json":
		handler = output.NewJSONHandler(os.Stdout)
	default:
		handler = output.NewTextHandler(os.Stdout)
	}

	var totalSavings float64
	for _, res := range results {
		totalSavings += res.Recommendation.CostImpact.SavingsUSD
	}
	handler.DisplayResults(ctx, results)
	handler.DisplaySummary(ctx, totalSavings, len(results))

	if generateReport {
		if err := writeReport(results); err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] Failed to generate report: %v\n", err)
		}
	}
}

func persistResult(ctx context.Context, samples []models.MetricSample, res *engine.Result) error {
	if err := store.SaveSamples(ctx, samples); err != nil {
		return err
	}
	if err := store.SaveFeatureWindow(ctx, res.Features); err != nil {
		return err
	}
	if err := store.SaveClassification(ctx, res.Classification); err != nil {
		return err
	}
	return store.SaveRecommendation(ctx, res.Recommendation)
}

func writeReport(results []*engine.Result) error {
	recs := make([]*models.Recommendation, 0, len(results))
	types := make(map[string]models.WorkloadType, len(results))
	for _, res := range results {
		recs = append(recs, res.Recommendation)
		types[res.Recommendation.RecommendationID] = res.Classification.WorkloadType
	}

	rep := reporter.New(reporter.ReportFormat(reportFormat))
	report, err := rep.Generate(recs, types, cfg.ProjectID)
	if err != nil {
		return err
	}

	f, err := os.Create(reportOutput)
	if err != nil {
		return err
	}
	defer f.Close()

	switch reporter.ReportFormat(strings.ToLower(reportFormat)) {
	case reporter.FormatCSV:
		err = reporter.GenerateCSV(report, f)
	default:
		err = reporter.GenerateMarkdown(report, f)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Report written to %s\n", reportOutput)
	return nil
}

func runServe(cmd *cobra.Command, args []string) {
	logger := newLogger()
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	source := newDataSource(logger)
	eng := engine.New(loadThresholds(), newExplainer(), logger)

	if cfg.StorageEnabled {
		if err := initStorageForced(); err != nil {
			logger.Error("storage initialization failed", "error", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := jobs.NewScheduler(logger)
	sweep := jobs.NewAnalysisJob(eng, source, store, cfg.ProjectID, int(cfg.MetricsDuration.Hours()), logger)
	if err := scheduler.Register("analysis-sweep", cfg.AnalysisSchedule, sweep.Run); err != nil {
		logger.Error("failed to register analysis sweep", "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		cancel()
	}()

	srv := server.New(eng, source, store, cfg.ProjectID, logger)
	if err := srv.Start(ctx, cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func runHistory(cmd *cobra.Command, args []string) {
	resourceID := args[0]

	if err := initStorageForced(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	recommendations, err := store.ListRecommendations(ctx, resourceID, historyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(recommendations) == 0 {
		fmt.Printf("No recommendations found for resource: %s\n", resourceID)
		return
	}

	fmt.Printf("Recent recommendations for '%s':\n\n", resourceID)
	for i, rec := range recommendations {
		fmt.Printf("%d. %s (ID: %s)\n", i+1, rec.ResourceID, rec.RecommendationID)
		fmt.Printf("   Savings: $%.2f/mo (%.1f%%)\n", rec.CostImpact.SavingsUSD, rec.CostImpact.SavingsPercentage)
		fmt.Printf("   Risk: %s\n", rec.RiskLevel)
		fmt.Printf("   Status: %s\n", rec.ApprovalStatus)
		if rec.ApprovedAt != nil {
			fmt.Printf("   Decided: %s by %s\n", rec.ApprovedAt.Format("2006-01-02 15:04:05"), rec.ApprovedBy)
		}
		fmt.Printf("   Created: %s\n", rec.RecommendedAt.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
}

func runDecision(recommendationID string, decision approval.Decision) {
	if actor == "" {
		fmt.Fprintln(os.Stderr, "Error: --actor is required")
		os.Exit(1)
	}

	if err := initStorageForced(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	rec, err := store.GetRecommendation(ctx, recommendationID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := approval.Transition(rec, decision, actor, time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := store.ApplyApproval(ctx, rec); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Recommendation %s is now %s (by %s)\n", rec.RecommendationID, rec.ApprovalStatus, rec.ApprovedBy)
}
