// Package service is the request boundary: it resolves user references,
// loads onboarding answers and runs the resource pipeline.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/resource-curator/internal/logger"
	"github.com/jonathan/resource-curator/internal/pipeline"
	"github.com/jonathan/resource-curator/internal/store"
	"github.com/jonathan/resource-curator/internal/types"
)

// Runner executes one pipeline run.
type Runner interface {
	RunWithProgress(ctx context.Context, userID string, raw map[string]any, onProgress pipeline.ProgressCallback) (*types.ResourceBundle, error)
}

// Service provides business logic for users, answers and bundles
type Service struct {
	store    store.Store
	runner   Runner
	log      *logger.Logger
	validate *validator.Validate
}

// New creates a Service. A nil logger discards output.
func New(st store.Store, runner Runner, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		store:    st,
		runner:   runner,
		log:      log,
		validate: validator.New(),
	}
}

// RegisterUser creates a learner.
func (s *Service) RegisterUser(ctx context.Context, req *types.CreateUserRequest) (*types.User, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}
	u, err := s.store.CreateUser(ctx, strings.TrimSpace(req.Name), req.Email)
	if errors.Is(err, store.ErrEmailTaken) {
		return nil, &ErrEmailAlreadyExists{Email: store.NormalizeEmail(req.Email)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.log.Info("user registered", "user_id", u.ID.String())
	return u, nil
}

// ResolveUser looks a user up by UUID or email.
func (s *Service) ResolveUser(ctx context.Context, ref string) (*types.User, error) {
	ref = strings.TrimSpace(ref)

	var (
		u   *types.User
		err error
	)
	if id, perr := uuid.Parse(ref); perr == nil {
		u, err = s.store.GetUser(ctx, id)
	} else if strings.Contains(ref, "@") {
		u, err = s.store.GetUserByEmail(ctx, ref)
	} else {
		return nil, &ErrInvalidReference{Ref: ref}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if u == nil {
		return nil, &ErrUserNotFound{Ref: ref}
	}
	return u, nil
}

// ListUsers returns every registered learner.
func (s *Service) ListUsers(ctx context.Context) ([]types.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateUser replaces the referenced user's name and email.
func (s *Service) UpdateUser(ctx context.Context, ref string, req *types.UpdateUserRequest) (*types.User, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}
	u, err := s.ResolveUser(ctx, ref)
	if err != nil {
		return nil, err
	}
	updated, err := s.store.UpdateUser(ctx, u.ID, strings.TrimSpace(req.Name), req.Email)
	if errors.Is(err, store.ErrEmailTaken) {
		return nil, &ErrEmailAlreadyExists{Email: store.NormalizeEmail(req.Email)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if updated == nil {
		return nil, &ErrUserNotFound{Ref: ref}
	}
	s.log.Info("user updated", "user_id", u.ID.String())
	return updated, nil
}

// DeleteUser removes the referenced user with their answers and bundle.
func (s *Service) DeleteUser(ctx context.Context, ref string) (*types.User, error) {
	u, err := s.ResolveUser(ctx, ref)
	if err != nil {
		return nil, err
	}
	deleted, err := s.store.DeleteUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	if !deleted {
		return nil, &ErrUserNotFound{Ref: ref}
	}
	s.log.Info("user deleted", "user_id", u.ID.String())
	return u, nil
}

// SubmitAnswers stores a new answer submission for the referenced user.
func (s *Service) SubmitAnswers(ctx context.Context, ref string, answers []types.OnboardingAnswer) (*types.AnswerSubmission, error) {
	u, err := s.ResolveUser(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.saveAnswers(ctx, u, answers)
}

// ImportAnswers creates the user if the email is unknown, then stores answers.
func (s *Service) ImportAnswers(ctx context.Context, name string, req *types.SubmitAnswersRequest) (*types.AnswerSubmission, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}
	u, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if u == nil {
		if strings.TrimSpace(name) == "" {
			name = req.Email
		}
		if u, err = s.RegisterUser(ctx, &types.CreateUserRequest{Name: name, Email: req.Email}); err != nil {
			return nil, err
		}
	}
	return s.saveAnswers(ctx, u, req.Answers)
}

func (s *Service) saveAnswers(ctx context.Context, u *types.User, answers []types.OnboardingAnswer) (*types.AnswerSubmission, error) {
	if len(answers) == 0 {
		return nil, &ErrValidation{Field: "answers", Message: "at least one answer is required"}
	}
	for i, a := range answers {
		if strings.TrimSpace(a.QuestionID) == "" {
			return nil, &ErrValidation{Field: fmt.Sprintf("answers[%d].question_id", i), Message: "is required"}
		}
	}
	sub, err := s.store.SaveAnswers(ctx, u, answers)
	if err != nil {
		return nil, fmt.Errorf("failed to save answers: %w", err)
	}
	s.log.Info("answers saved", "user_id", u.ID.String(), "answers", len(answers))
	return sub, nil
}

// LatestAnswers returns the most recent submission of the referenced user.
func (s *Service) LatestAnswers(ctx context.Context, ref string) (*types.AnswerSubmission, error) {
	u, err := s.ResolveUser(ctx, ref)
	if err != nil {
		return nil, err
	}
	sub, err := s.store.LatestAnswers(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}
	if sub == nil {
		return nil, &ErrNoAnswers{UserID: u.ID}
	}
	return sub, nil
}

// AnswerHistory returns every submission of the referenced user, newest first.
func (s *Service) AnswerHistory(ctx context.Context, ref string) (*types.AnswerHistory, error) {
	u, err := s.ResolveUser(ctx, ref)
	if err != nil {
		return nil, err
	}
	subs, err := s.store.ListAnswers(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}
	return &types.AnswerHistory{
		UserID:           u.ID,
		Email:            u.Email,
		Submissions:      subs,
		TotalSubmissions: len(subs),
	}, nil
}

// Generate runs the pipeline for the referenced user's latest answers.
func (s *Service) Generate(ctx context.Context, ref string) (*types.BundleSummary, error) {
	return s.GenerateWithProgress(ctx, ref, nil)
}

// GenerateWithProgress is Generate with a progress callback. A failed
// persist returns the *pipeline.PersistenceError unchanged.
func (s *Service) GenerateWithProgress(ctx context.Context, ref string, onProgress pipeline.ProgressCallback) (*types.BundleSummary, error) {
	sub, err := s.LatestAnswers(ctx, ref)
	if err != nil {
		return nil, err
	}

	raw := map[string]any{"answers": sub.Answers}
	bundle, err := s.runner.RunWithProgress(ctx, sub.UserID.String(), raw, onProgress)
	if err != nil {
		return nil, err
	}

	summary := bundle.Summarize()
	summary.Email = sub.Email
	return &summary, nil
}

// Fetch returns the last persisted bundle of the referenced user.
func (s *Service) Fetch(ctx context.Context, ref string) (*types.ResourceBundle, error) {
	u, err := s.ResolveUser(ctx, ref)
	if err != nil {
		return nil, err
	}
	bundle, err := s.store.GetBundle(ctx, u.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load bundle: %w", err)
	}
	if bundle == nil {
		return nil, &ErrBundleNotFound{UserID: u.ID}
	}
	return bundle, nil
}

// validateStruct maps validator failures to ErrValidation on the first field.
func (s *Service) validateStruct(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ErrValidation{Field: strings.ToLower(fe.Field()), Message: fmt.Sprintf("failed %q check", fe.Tag())}
	}
	return &ErrValidation{Field: "request", Message: err.Error()}
}
