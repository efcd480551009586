package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resource-curator/internal/types"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func sampleBundle() *types.ResourceBundle {
	b := types.NewResourceBundle()
	b.ID = "01J0000000000000000000000"
	b.UserID = "user-1"
	b.SearchQueries = []string{"DSA tutorial for beginners"}
	b.Resources[types.CategoryWeakAreas] = []types.CategorizedResource{{
		Title:        "DSA for Beginners",
		URL:          "https://www.youtube.com/watch?v=abc",
		ResourceType: types.ResourceVideo,
		Difficulty:   types.DifficultyBeginner,
		Tags:         []string{"dsa"},
	}}
	b.TotalResources = b.CountResources()
	b.GeneratedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return b
}

func TestPostgres_CreateUser(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "Ada", "ada@example.com", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	u, err := s.CreateUser(context.Background(), "Ada", "  Ada@Example.com ")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, "ada@example.com", u.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateUser_DuplicateEmail(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "Ada", "ada@example.com", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	_, err := s.CreateUser(context.Background(), "Ada", "ada@example.com")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestPostgres_GetUser(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()
	created := time.Now().UTC()

	mock.ExpectQuery("SELECT id, name, email, created_at FROM users WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "created_at"}).
			AddRow(id, "Ada", "ada@example.com", created))

	u, err := s.GetUser(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "Ada", u.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetUserByEmail_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, name, email, created_at FROM users WHERE email").
		WithArgs("nobody@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "created_at"}))

	u, err := s.GetUserByEmail(context.Background(), "Nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestPostgres_SaveAndLatestAnswers(t *testing.T) {
	s, mock := newMockStore(t)
	user := &types.User{ID: uuid.New(), Email: "ada@example.com"}
	answers := []types.OnboardingAnswer{{QuestionID: "weak_areas", Answer: "DSA"}}

	mock.ExpectExec("INSERT INTO answer_submissions").
		WithArgs(pgxmock.AnyArg(), user.ID, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	sub, err := s.SaveAnswers(context.Background(), user, answers)
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, "ada@example.com", sub.Email)

	data, err := json.Marshal(answers)
	require.NoError(t, err)
	mock.ExpectQuery("SELECT s.id, s.user_id, u.email, s.answers, s.submitted_at").
		WithArgs(user.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "email", "answers", "submitted_at"}).
			AddRow(sub.ID, user.ID, user.Email, data, sub.SubmittedAt))

	latest, err := s.LatestAnswers(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, answers, latest.Answers)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListUsers(t *testing.T) {
	s, mock := newMockStore(t)
	ada, grace := uuid.New(), uuid.New()
	created := time.Now().UTC()

	mock.ExpectQuery("SELECT id, name, email, created_at FROM users ORDER BY created_at").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "created_at"}).
			AddRow(ada, "Ada", "ada@example.com", created).
			AddRow(grace, "Grace", "grace@example.com", created))

	users, err := s.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, ada, users[0].ID)
	assert.Equal(t, "grace@example.com", users[1].Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListUsers_Error(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, name, email, created_at FROM users").
		WillReturnError(errors.New("connection reset"))

	_, err := s.ListUsers(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list users")
}

func TestPostgres_UpdateUser(t *testing.T) {
	id := uuid.New()
	created := time.Now().UTC()
	columns := []string{"id", "name", "email", "created_at"}

	t.Run("updated", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("UPDATE users SET name").
			WithArgs(id, "Ada L.", "ada.l@example.com").
			WillReturnRows(pgxmock.NewRows(columns).AddRow(id, "Ada L.", "ada.l@example.com", created))

		u, err := s.UpdateUser(context.Background(), id, "Ada L.", " Ada.L@example.com")
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "ada.l@example.com", u.Email)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("UPDATE users SET name").
			WithArgs(id, "Ada", "ada@example.com").
			WillReturnRows(pgxmock.NewRows(columns))

		u, err := s.UpdateUser(context.Background(), id, "Ada", "ada@example.com")
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("email taken", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("UPDATE users SET name").
			WithArgs(id, "Ada", "grace@example.com").
			WillReturnError(&pgconn.PgError{Code: uniqueViolation})

		_, err := s.UpdateUser(context.Background(), id, "Ada", "grace@example.com")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestPostgres_DeleteUser(t *testing.T) {
	id := uuid.New()

	t.Run("deleted", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec("DELETE FROM users WHERE id").
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectExec("DELETE FROM resource_bundles WHERE user_id").
			WithArgs(id.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		deleted, err := s.DeleteUser(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, deleted)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec("DELETE FROM users WHERE id").
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		deleted, err := s.DeleteUser(context.Background(), id)
		require.NoError(t, err)
		assert.False(t, deleted)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgres_ListAnswers(t *testing.T) {
	s, mock := newMockStore(t)
	userID := uuid.New()
	now := time.Now().UTC()
	first, err := json.Marshal([]types.OnboardingAnswer{{QuestionID: "weak_areas", Answer: "DSA"}})
	require.NoError(t, err)
	second, err := json.Marshal([]types.OnboardingAnswer{{QuestionID: "weak_areas", Answer: "Graphs"}})
	require.NoError(t, err)

	mock.ExpectQuery(`(?s)SELECT s.id, s.user_id, u.email, s.answers, s.submitted_at.*ORDER BY s.submitted_at DESC`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "email", "answers", "submitted_at"}).
			AddRow("sub-2", userID, "ada@example.com", second, now).
			AddRow("sub-1", userID, "ada@example.com", first, now.Add(-time.Hour)))

	subs, err := s.ListAnswers(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "sub-2", subs[0].ID)
	assert.Equal(t, "Graphs", subs[0].Answers[0].Answer)
	assert.Equal(t, "DSA", subs[1].Answers[0].Answer)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListAnswers_Empty(t *testing.T) {
	s, mock := newMockStore(t)
	userID := uuid.New()

	mock.ExpectQuery("SELECT s.id").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "email", "answers", "submitted_at"}))

	subs, err := s.ListAnswers(context.Background(), userID)
	require.NoError(t, err)
	assert.NotNil(t, subs)
	assert.Empty(t, subs)
}

func TestPostgres_UpsertBundle(t *testing.T) {
	s, mock := newMockStore(t)
	b := sampleBundle()

	mock.ExpectExec(`(?s)INSERT INTO resource_bundles .* ON CONFLICT \(user_id\) DO UPDATE`).
		WithArgs("user-1", b.ID, pgxmock.AnyArg(), 1, b.GeneratedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.UpsertBundle(context.Background(), "user-1", b))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpsertBundle_Error(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO resource_bundles").
		WillReturnError(errors.New("connection reset"))

	err := s.UpsertBundle(context.Background(), "user-1", sampleBundle())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upsert bundle")
}

func TestPostgres_GetBundle(t *testing.T) {
	s, mock := newMockStore(t)
	b := sampleBundle()
	data, err := json.Marshal(b)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT bundle FROM resource_bundles").
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"bundle"}).AddRow(data))

	got, err := s.GetBundle(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, 1, got.TotalResources)
	assert.Len(t, got.Resources, 6)
	assert.Equal(t, b.Resources[types.CategoryWeakAreas], got.Resources[types.CategoryWeakAreas])
}

func TestPostgres_GetBundle_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT bundle FROM resource_bundles").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"bundle"}))

	got, err := s.GetBundle(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPostgres_Migrate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
