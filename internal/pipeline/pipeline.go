// Package pipeline provides the high-level orchestration for the resource generation process.
package pipeline

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonathan/resource-curator/internal/aggregate"
	"github.com/jonathan/resource-curator/internal/categorize"
	"github.com/jonathan/resource-curator/internal/discovery"
	"github.com/jonathan/resource-curator/internal/llm"
	"github.com/jonathan/resource-curator/internal/logger"
	"github.com/jonathan/resource-curator/internal/metrics"
	"github.com/jonathan/resource-curator/internal/observability"
	"github.com/jonathan/resource-curator/internal/profile"
	"github.com/jonathan/resource-curator/internal/querygen"
	"github.com/jonathan/resource-curator/internal/search"
	"github.com/jonathan/resource-curator/internal/types"
)

// Run outcomes recorded in metrics
const (
	OutcomeOK                 = "ok"
	OutcomePersistenceFailure = "persistence_failure"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Config holds the tunables of a single run.
type Config struct {
	MaxQueries     int
	RateLimitDelay time.Duration
	PerCategoryCap int
	LLMTimeout     time.Duration
	SearchTimeout  time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxQueries:     querygen.DefaultMaxQueries,
		RateLimitDelay: discovery.DefaultDelay,
		PerCategoryCap: 10,
		LLMTimeout:     30 * time.Second,
		SearchTimeout:  10 * time.Second,
	}
}

// BundleWriter persists a finished bundle, replacing any earlier one for the user.
type BundleWriter interface {
	UpsertBundle(ctx context.Context, userID string, bundle *types.ResourceBundle) error
}

// Pipeline wires the stages together. It is safe for concurrent use; runs
// share nothing but the store.
type Pipeline struct {
	synth   *querygen.Synthesizer
	disc    *discovery.Discoverer
	store   BundleWriter
	cfg     Config
	log     *logger.Logger
	printer *observability.Printer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used by the pipeline and its stages.
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithPrinter enables verbose boxed output of intermediate results.
func WithPrinter(printer *observability.Printer) Option {
	return func(p *Pipeline) { p.printer = printer }
}

// New builds a Pipeline. A nil store disables persistence.
func New(client llm.Client, searcher search.Searcher, store BundleWriter, cfg Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		store: store,
		cfg:   cfg,
		log:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if searcher != nil && cfg.SearchTimeout > 0 {
		searcher = withTimeout(searcher, cfg.SearchTimeout)
	}

	synthOpts := []querygen.Option{querygen.WithLogger(p.log)}
	if cfg.LLMTimeout > 0 {
		synthOpts = append(synthOpts, querygen.WithTimeout(cfg.LLMTimeout))
	}
	p.synth = querygen.NewSynthesizer(client, synthOpts...)
	p.disc = discovery.New(searcher, discovery.WithLogger(p.log))
	return p
}

// Run executes one generation for userID from raw onboarding answers.
func (p *Pipeline) Run(ctx context.Context, userID string, raw map[string]any) (*types.ResourceBundle, error) {
	return p.RunWithProgress(ctx, userID, raw, nil)
}

// RunWithProgress is Run with a progress callback. The returned bundle is
// non-nil even when persistence fails; the only error is *PersistenceError.
func (p *Pipeline) RunWithProgress(ctx context.Context, userID string, raw map[string]any, onProgress ProgressCallback) (*types.ResourceBundle, error) {
	start := time.Now()
	runID := newBundleID()
	log := p.log.With("run_id", runID, "user_id", userID)

	emit := func(step, message string, content any) {
		if onProgress != nil {
			onProgress(ProgressEvent{
				Step:     step,
				Category: StepCategory(step),
				Message:  message,
				RunID:    runID,
				Content:  content,
			})
		}
	}

	ctx, runSpan := observability.Tracer().Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.String("run_id", runID)))
	defer runSpan.End()

	// Step 1: Normalize profile
	_, span := observability.Tracer().Start(ctx, "pipeline."+StepNormalize)
	learner := profile.Normalize(raw)
	if learner.IsEmpty() {
		log.Debug("profile incomplete, continuing with empty profile")
	}
	span.End()
	emit(StepNormalize, "Profile normalized", learner)
	if p.printer != nil {
		p.printer.PrintProfile(&learner)
	}

	// Step 2: Synthesize queries
	sctx, span := observability.Tracer().Start(ctx, "pipeline."+StepSynthesize)
	synth := p.synth.Run(sctx, learner, p.cfg.MaxQueries)
	span.SetAttributes(
		attribute.Int("queries", len(synth.Queries)),
		attribute.Bool("used_fallback", synth.UsedFallback),
	)
	span.End()
	message := "Search queries synthesized"
	if synth.UsedFallback {
		message = "Search queries built from templates"
	}
	emit(StepSynthesize, message, synth.Queries)
	if p.printer != nil {
		p.printer.PrintQueries(synth.Queries)
	}

	// Step 3: Discover resources
	dctx, span := observability.Tracer().Start(ctx, "pipeline."+StepDiscover)
	report := p.disc.Run(dctx, synth.Queries, p.cfg.RateLimitDelay)
	span.SetAttributes(
		attribute.Int("candidates", len(report.Candidates)),
		attribute.Int("failed_queries", report.Failed()),
	)
	span.End()
	emit(StepDiscover, "Candidate resources discovered", map[string]int{
		"candidates":     len(report.Candidates),
		"failed_queries": report.Failed(),
	})

	// Step 4: Categorize
	_, span = observability.Tracer().Start(ctx, "pipeline."+StepCategorize)
	tagged := categorize.Categorize(report.Candidates)
	span.End()
	emit(StepCategorize, "Resources categorized", map[string]int{"resources": len(tagged)})

	// Step 5: Aggregate
	_, span = observability.Tracer().Start(ctx, "pipeline."+StepAggregate)
	bundle := aggregate.Aggregate(tagged, p.cfg.PerCategoryCap)
	bundle.ID = runID
	bundle.UserID = userID
	bundle.UserProfile = learner
	bundle.SearchQueries = queryTexts(synth.Queries)
	span.SetAttributes(attribute.Int("total_resources", bundle.TotalResources))
	span.End()
	emit(StepAggregate, "Resource bundle assembled", bundle.Summarize())
	if p.printer != nil {
		p.printer.PrintBundle(bundle)
	}

	// Step 6: Persist
	if p.store != nil {
		pctx, span := observability.Tracer().Start(ctx, "pipeline."+StepPersist)
		err := p.store.UpsertBundle(pctx, userID, bundle)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "persist failed")
			span.End()
			runSpan.SetStatus(codes.Error, "persist failed")
			metrics.RecordRun(OutcomePersistenceFailure, time.Since(start).Seconds())
			log.Error("failed to persist bundle", "error", err)
			return bundle, &PersistenceError{
				UserID:  userID,
				Message: "upsert failed",
				Cause:   err,
				Bundle:  bundle,
			}
		}
		span.End()
		emit(StepPersist, "Resource bundle saved", nil)
	}

	metrics.RecordRun(OutcomeOK, time.Since(start).Seconds())
	metrics.RecordBundle(bundle.Summarize().PerCategory)
	log.Info("resource bundle generated",
		"total_resources", bundle.TotalResources,
		"queries", len(bundle.SearchQueries),
		"used_fallback", synth.UsedFallback,
		"failed_queries", report.Failed(),
	)
	emit(StepComplete, "Resource generation complete", bundle.Summarize())
	return bundle, nil
}

func queryTexts(queries []types.SearchQuery) []string {
	texts := make([]string, 0, len(queries))
	for _, q := range queries {
		texts = append(texts, q.Text)
	}
	return texts
}

// newBundleID returns a time-ordered ULID.
func newBundleID() string {
	return ulid.Make().String()
}

// withTimeout bounds each search call.
func withTimeout(next search.Searcher, d time.Duration) search.Searcher {
	return search.SearcherFunc(func(ctx context.Context, query string) ([]search.Result, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return next.Search(ctx, query)
	})
}
