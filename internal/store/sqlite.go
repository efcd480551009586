package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jonathan/resource-curator/internal/types"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS answer_submissions (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		answers      TEXT NOT NULL,
		submitted_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_answer_submissions_user ON answer_submissions(user_id);

	CREATE TABLE IF NOT EXISTS resource_bundles (
		user_id         TEXT PRIMARY KEY,
		bundle_id       TEXT NOT NULL,
		bundle          TEXT NOT NULL,
		total_resources INTEGER NOT NULL,
		generated_at    TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateUser registers a learner.
func (s *SQLiteStore) CreateUser(ctx context.Context, name, email string) (*types.User, error) {
	u := &types.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     NormalizeEmail(email),
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, created_at) VALUES (?, ?, ?, ?)`,
		u.ID.String(), u.Name, u.Email, u.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, id uuid.UUID) (*types.User, error) {
	return s.getUser(ctx, `SELECT id, name, email, created_at FROM users WHERE id = ?`, id.String())
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	return s.getUser(ctx, `SELECT id, name, email, created_at FROM users WHERE email = ?`, NormalizeEmail(email))
}

// ListUsers returns all users in insertion order.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]types.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, email, created_at FROM users ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []types.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateUser replaces a user's name and email. It returns (nil, nil) when
// the user does not exist.
func (s *SQLiteStore) UpdateUser(ctx context.Context, id uuid.UUID, name, email string) (*types.User, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ? WHERE id = ?`,
		name, NormalizeEmail(email), id.String(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	} else if n == 0 {
		return nil, nil
	}
	return s.GetUser(ctx, id)
}

// DeleteUser removes a user together with their submissions and bundle.
func (s *SQLiteStore) DeleteUser(ctx context.Context, id uuid.UUID) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id.String())
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM answer_submissions WHERE user_id = ?`, id.String()); err != nil {
		return false, fmt.Errorf("delete answers: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM resource_bundles WHERE user_id = ?`, id.String()); err != nil {
		return false, fmt.Errorf("delete bundle: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete: %w", err)
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*types.User, error) {
	var (
		u                 types.User
		rawID, createdStr string
	)
	if err := row.Scan(&rawID, &u.Name, &u.Email, &createdStr); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	u.ID = id
	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return &u, nil
}

func (s *SQLiteStore) getUser(ctx context.Context, query string, arg any) (*types.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// SaveAnswers stores a new answer submission for user.
func (s *SQLiteStore) SaveAnswers(ctx context.Context, user *types.User, answers []types.OnboardingAnswer) (*types.AnswerSubmission, error) {
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
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO answer_submissions (id, user_id, answers, submitted_at) VALUES (?, ?, ?, ?)`,
		sub.ID, sub.UserID.String(), string(data), sub.SubmittedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert answers: %w", err)
	}
	return sub, nil
}

const submissionColumns = `SELECT s.id, s.user_id, u.email, s.answers, s.submitted_at
		 FROM answer_submissions s JOIN users u ON u.id = s.user_id
		 WHERE s.user_id = ?
		 ORDER BY s.id DESC`

// LatestAnswers returns the user's most recent submission. Submission IDs
// are ULIDs, so ID order is submission order.
func (s *SQLiteStore) LatestAnswers(ctx context.Context, userID uuid.UUID) (*types.AnswerSubmission, error) {
	sub, err := scanSubmission(s.db.QueryRowContext(ctx, submissionColumns+` LIMIT 1`, userID.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get answers: %w", err)
	}
	return sub, nil
}

// ListAnswers returns every submission of the user, newest first.
func (s *SQLiteStore) ListAnswers(ctx context.Context, userID uuid.UUID) ([]types.AnswerSubmission, error) {
	rows, err := s.db.QueryContext(ctx, submissionColumns, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	subs := []types.AnswerSubmission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("list answers: %w", err)
		}
		subs = append(subs, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return subs, nil
}

func scanSubmission(row rowScanner) (*types.AnswerSubmission, error) {
	var (
		sub                     types.AnswerSubmission
		rawUserID, data, subStr string
	)
	if err := row.Scan(&sub.ID, &rawUserID, &sub.Email, &data, &subStr); err != nil {
		return nil, err
	}
	var err error
	if sub.UserID, err = uuid.Parse(rawUserID); err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	if sub.Answers, err = decodeAnswers([]byte(data)); err != nil {
		return nil, err
	}
	sub.SubmittedAt, _ = time.Parse(time.RFC3339Nano, subStr)
	return &sub, nil
}

// UpsertBundle replaces the user's bundle.
func (s *SQLiteStore) UpsertBundle(ctx context.Context, userID string, bundle *types.ResourceBundle) error {
	data, err := encodeBundle(bundle)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO resource_bundles (user_id, bundle_id, bundle, total_resources, generated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
			bundle_id = excluded.bundle_id,
			bundle = excluded.bundle,
			total_resources = excluded.total_resources,
			generated_at = excluded.generated_at`,
		userID, bundle.ID, string(data), bundle.TotalResources, bundle.GeneratedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert bundle: %w", err)
	}
	return nil
}

// GetBundle returns the user's last persisted bundle.
func (s *SQLiteStore) GetBundle(ctx context.Context, userID string) (*types.ResourceBundle, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT bundle FROM resource_bundles WHERE user_id = ?`,
		userID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bundle: %w", err)
	}
	return decodeBundle([]byte(data))
}
