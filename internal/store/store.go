// Package store provides persistence for users, onboarding answers and
// resource bundles, backed by PostgreSQL or SQLite.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/jonathan/resource-curator/internal/types"
)

// ErrEmailTaken is returned by CreateUser and UpdateUser when the email is
// already registered to another user.
var ErrEmailTaken = errors.New("email already registered")

// Store is the persistence gateway. Lookups return (nil, nil) when nothing
// matches.
type Store interface {
	CreateUser(ctx context.Context, name, email string) (*types.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	ListUsers(ctx context.Context) ([]types.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, name, email string) (*types.User, error)
	// DeleteUser removes the user with their submissions and bundle. It
	// reports false when no user matched.
	DeleteUser(ctx context.Context, id uuid.UUID) (bool, error)

	SaveAnswers(ctx context.Context, user *types.User, answers []types.OnboardingAnswer) (*types.AnswerSubmission, error)
	LatestAnswers(ctx context.Context, userID uuid.UUID) (*types.AnswerSubmission, error)
	// ListAnswers returns every submission of the user, newest first.
	ListAnswers(ctx context.Context, userID uuid.UUID) ([]types.AnswerSubmission, error)

	// UpsertBundle replaces the user's bundle in a single statement.
	UpsertBundle(ctx context.Context, userID string, bundle *types.ResourceBundle) error
	GetBundle(ctx context.Context, userID string) (*types.ResourceBundle, error)

	Ping(ctx context.Context) error
	Close() error
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newID() string {
	return ulid.Make().String()
}

func encodeBundle(bundle *types.ResourceBundle) ([]byte, error) {
	if bundle == nil {
		return nil, errors.New("bundle is nil")
	}
	data, err := json.Marshal(bundle)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bundle: %w", err)
	}
	return data, nil
}

// decodeBundle restores a stored bundle with all six category keys present.
func decodeBundle(data []byte) (*types.ResourceBundle, error) {
	bundle := types.NewResourceBundle()
	if err := json.Unmarshal(data, bundle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bundle: %w", err)
	}
	for _, c := range types.AllCategories() {
		if bundle.Resources[c] == nil {
			bundle.Resources[c] = []types.CategorizedResource{}
		}
	}
	if bundle.SearchQueries == nil {
		bundle.SearchQueries = []string{}
	}
	return bundle, nil
}

func encodeAnswers(answers []types.OnboardingAnswer) ([]byte, error) {
	if answers == nil {
		answers = []types.OnboardingAnswer{}
	}
	data, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal answers: %w", err)
	}
	return data, nil
}

func decodeAnswers(data []byte) ([]types.OnboardingAnswer, error) {
	var answers []types.OnboardingAnswer
	if err := json.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
	}
	return answers, nil
}

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
