package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/resource-curator/internal/types"
)

const uniqueViolation = "23505"

// postgresSchema is applied by Migrate.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS answer_submissions (
	id           TEXT PRIMARY KEY,
	user_id      UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	answers      JSONB NOT NULL,
	submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_answer_submissions_user ON answer_submissions(user_id, submitted_at DESC);

CREATE TABLE IF NOT EXISTS resource_bundles (
	user_id         TEXT PRIMARY KEY,
	bundle_id       TEXT NOT NULL,
	bundle          JSONB NOT NULL,
	total_resources INTEGER NOT NULL,
	generated_at    TIMESTAMPTZ NOT NULL
);
`

// pgxPool is the subset of *pgxpool.Pool the store uses.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store on a PostgreSQL connection pool.
type PostgresStore struct {
	pool pgxPool
}

// NewPostgresStore establishes a connection pool to the database
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// Ping verifies the connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// CreateUser registers a learner.
func (s *PostgresStore) CreateUser(ctx context.Context, name, email string) (*types.User, error) {
	u := &types.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     NormalizeEmail(email),
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, created_at) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Name, u.Email, u.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// GetUser retrieves a user by ID
func (s *PostgresStore) GetUser(ctx context.Context, id uuid.UUID) (*types.User, error) {
	return s.getUser(ctx, `SELECT id, name, email, created_at FROM users WHERE id = $1`, id)
}

// GetUserByEmail retrieves a user by email
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	return s.getUser(ctx, `SELECT id, name, email, created_at FROM users WHERE email = $1`, NormalizeEmail(email))
}

// ListUsers returns all users in registration order.
func (s *PostgresStore) ListUsers(ctx context.Context) ([]types.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, email, created_at FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []types.User{}
	for rows.Next() {
		var u types.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateUser replaces a user's name and email. It returns (nil, nil) when
// the user does not exist.
func (s *PostgresStore) UpdateUser(ctx context.Context, id uuid.UUID, name, email string) (*types.User, error) {
	var u types.User
	err := s.pool.QueryRow(ctx,
		`UPDATE users SET name = $2, email = $3 WHERE id = $1
		 RETURNING id, name, email, created_at`,
		id, name, NormalizeEmail(email),
	).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &u, nil
}

// DeleteUser removes a user. Submissions cascade; the bundle is removed
// explicitly since it is keyed by the ID string.
func (s *PostgresStore) DeleteUser(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return false, nil
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM resource_bundles WHERE user_id = $1`, id.String()); err != nil {
		return true, fmt.Errorf("failed to delete bundle: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) getUser(ctx context.Context, query string, arg any) (*types.User, error) {
	var u types.User
	err := s.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// SaveAnswers stores a new answer submission for user.
func (s *PostgresStore) SaveAnswers(ctx context.Context, user *types.User, answers []types.OnboardingAnswer) (*types.AnswerSubmission, error) {
	data, err := encodeAnswers(answers)
	if err != nil {
		return nil, err
	}
	sub := &types.AnswerSubmission{
		ID:          newID(),
		UserID:      user.ID,
		Email:       user.Email,
		Answers:     answers,
		SubmittedAt: time.Now().UTC(),
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO answer_submissions (id, user_id, answers, submitted_at) VALUES ($1, $2, $3, $4)`,
		sub.ID, sub.UserID, data, sub.SubmittedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save answers: %w", err)
	}
	return sub, nil
}

// LatestAnswers returns the user's most recent submission.
func (s *PostgresStore) LatestAnswers(ctx context.Context, userID uuid.UUID) (*types.AnswerSubmission, error) {
	var (
		sub  types.AnswerSubmission
		data []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT s.id, s.user_id, u.email, s.answers, s.submitted_at
		 FROM answer_submissions s JOIN users u ON u.id = s.user_id
		 WHERE s.user_id = $1
		 ORDER BY s.submitted_at DESC, s.id DESC
		 LIMIT 1`,
		userID,
	).Scan(&sub.ID, &sub.UserID, &sub.Email, &data, &sub.SubmittedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}
	if sub.Answers, err = decodeAnswers(data); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListAnswers returns every submission of the user, newest first.
func (s *PostgresStore) ListAnswers(ctx context.Context, userID uuid.UUID) ([]types.AnswerSubmission, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT s.id, s.user_id, u.email, s.answers, s.submitted_at
		 FROM answer_submissions s JOIN users u ON u.id = s.user_id
		 WHERE s.user_id = $1
		 ORDER BY s.submitted_at DESC, s.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	defer rows.Close()

	subs := []types.AnswerSubmission{}
	for rows.Next() {
		var (
			sub  types.AnswerSubmission
			data []byte
		)
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.Email, &data, &sub.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan answers: %w", err)
		}
		if sub.Answers, err = decodeAnswers(data); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	return subs, nil
}

// UpsertBundle replaces the user's bundle.
func (s *PostgresStore) UpsertBundle(ctx context.Context, userID string, bundle *types.ResourceBundle) error {
	data, err := encodeBundle(bundle)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO resource_bundles (user_id, bundle_id, bundle, total_resources, generated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO UPDATE SET
			bundle_id = EXCLUDED.bundle_id,
			bundle = EXCLUDED.bundle,
			total_resources = EXCLUDED.total_resources,
			generated_at = EXCLUDED.generated_at`,
		userID, bundle.ID, data, bundle.TotalResources, bundle.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert bundle: %w", err)
	}
	return nil
}

// GetBundle returns the user's last persisted bundle.
func (s *PostgresStore) GetBundle(ctx context.Context, userID string) (*types.ResourceBundle, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT bundle FROM resource_bundles WHERE user_id = $1`,
		userID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bundle: %w", err)
	}
	return decodeBundle(data)
}
