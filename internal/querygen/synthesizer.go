// Package querygen turns a learning profile into search queries using a
// language model, with a deterministic template fallback.
package querygen

import (
	"context"
	"strings"
	"time"

	"github.com/jonathan/resource-curator/internal/llm"
	"github.com/jonathan/resource-curator/internal/logger"
	"github.com/jonathan/resource-curator/internal/metrics"
	"github.com/jonathan/resource-curator/internal/prompts"
	"github.com/jonathan/resource-curator/internal/types"
)

// DefaultMaxQueries is used when a caller passes a non-positive limit.
const DefaultMaxQueries = 15

// Result is the outcome of one synthesis run.
type Result struct {
	Queries      []types.SearchQuery
	UsedFallback bool
	// Err is the recovered failure that triggered the fallback, if any.
	Err *SynthesisError
}

// Synthesizer builds search queries for a profile.
type Synthesizer struct {
	client  llm.Client
	tier    llm.ModelTier
	timeout time.Duration
	log     *logger.Logger
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithTier selects the model tier used for synthesis.
func WithTier(tier llm.ModelTier) Option {
	return func(s *Synthesizer) { s.tier = tier }
}

// WithTimeout bounds the language model call.
func WithTimeout(d time.Duration) Option {
	return func(s *Synthesizer) { s.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Synthesizer) { s.log = l }
}

// NewSynthesizer creates a Synthesizer. A nil client always uses the fallback.
func NewSynthesizer(client llm.Client, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		client: client,
		tier:   llm.TierLite,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize returns at most maxQueries distinct queries for the profile.
// It never fails and always returns at least one query.
func (s *Synthesizer) Synthesize(ctx context.Context, profile types.LearningProfile, maxQueries int) []types.SearchQuery {
	return s.Run(ctx, profile, maxQueries).Queries
}

// Run is Synthesize with details about whether the fallback was used.
func (s *Synthesizer) Run(ctx context.Context, profile types.LearningProfile, maxQueries int) Result {
	if maxQueries <= 0 {
		maxQueries = DefaultMaxQueries
	}

	queries, err := s.fromModel(ctx, profile, maxQueries)
	if err == nil {
		s.log.Debug("queries synthesized", "count", len(queries), "model", s.client.GetModel(s.tier))
		return Result{Queries: queries}
	}

	s.log.Warn("query synthesis failed, using fallback templates", "reason", err.Reason, "error", err.Error())
	metrics.RecordFallback(err.Reason)
	return Result{
		Queries:      Fallback(profile, maxQueries),
		UsedFallback: true,
		Err:          err,
	}
}

func (s *Synthesizer) fromModel(ctx context.Context, profile types.LearningProfile, maxQueries int) ([]types.SearchQuery, *SynthesisError) {
	if s.client == nil {
		return nil, &SynthesisError{Reason: ReasonNoClient, Message: "no language model configured"}
	}

	prompt, err := BuildPrompt(profile, maxQueries)
	if err != nil {
		return nil, &SynthesisError{Reason: ReasonLLMError, Message: "failed to build prompt", Cause: err}
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.client.GenerateJSON(callCtx, prompt, s.tier)
	if err != nil {
		return nil, &SynthesisError{Reason: ReasonLLMError, Message: "language model call failed", Cause: err}
	}

	queries, err := ParseResponse(text, profile, maxQueries)
	if err != nil {
		return nil, &SynthesisError{Reason: ReasonMalformed, Message: "unusable language model response", Cause: err}
	}
	return queries, nil
}

// promptData feeds the synthesis template.
type promptData struct {
	MaxQueries             int
	Role                   string
	Timeline               string
	PrimaryLanguage        string
	TechStack              string
	FamiliarTopics         string
	WeakAreas              string
	TargetCompanies        string
	PreferredResourceTypes string
}

// BuildPrompt renders the synthesis prompt for a profile.
func BuildPrompt(profile types.LearningProfile, maxQueries int) (string, error) {
	return prompts.Render(prompts.SynthesizeQueries, promptData{
		MaxQueries:             maxQueries,
		Role:                   orNone(profile.Role),
		Timeline:               orNone(profile.Timeline),
		PrimaryLanguage:        orNone(profile.PrimaryLanguage),
		TechStack:              joinOrNone(profile.TechStack),
		FamiliarTopics:         joinOrNone(profile.FamiliarTopics),
		WeakAreas:              joinOrNone(profile.WeakAreas),
		TargetCompanies:        joinOrNone(profile.TargetCompanies),
		PreferredResourceTypes: joinOrNone(profile.PreferredResourceTypes),
	})
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}

func joinOrNone(items []string) string {
	return orNone(strings.Join(items, ", "))
}
