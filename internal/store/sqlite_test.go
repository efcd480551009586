package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resource-curator/internal/types"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "curator.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_Users(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "Ada", "Ada@Example.com")
	require.NoError(t, err)

	byID, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "Ada", byID.Name)
	assert.Equal(t, "ada@example.com", byID.Email)
	assert.False(t, byID.CreatedAt.IsZero())

	byEmail, err := s.GetUserByEmail(ctx, " ADA@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = s.CreateUser(ctx, "Other", "ada@example.com")
	assert.ErrorIs(t, err, ErrEmailTaken)

	missing, err := s.GetUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLite_LatestAnswersReturnsNewest(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "Ada", "ada@example.com")
	require.NoError(t, err)

	none, err := s.LatestAnswers(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = s.SaveAnswers(ctx, u, []types.OnboardingAnswer{{QuestionID: "weak_areas", Answer: "DSA"}})
	require.NoError(t, err)
	second, err := s.SaveAnswers(ctx, u, []types.OnboardingAnswer{{QuestionID: "weak_areas", Answer: "Graphs"}})
	require.NoError(t, err)

	latest, err := s.LatestAnswers(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, "ada@example.com", latest.Email)
	assert.Equal(t, u.ID, latest.UserID)
	require.Len(t, latest.Answers, 1)
	assert.Equal(t, "Graphs", latest.Answers[0].Answer)
}

func TestSQLite_UpsertBundleReplaces(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	got, err := s.GetBundle(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	first := sampleBundle()
	require.NoError(t, s.UpsertBundle(ctx, "user-1", first))

	second := types.NewResourceBundle()
	second.ID = "01J0000000000000000000001"
	second.UserID = "user-1"
	require.NoError(t, s.UpsertBundle(ctx, "user-1", second))

	got, err = s.GetBundle(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, 0, got.TotalResources)
	assert.Len(t, got.Resources, 6)
	for _, c := range types.AllCategories() {
		assert.NotNil(t, got.Resources[c])
	}
}

func TestSQLite_ConcurrentUpsertsLastWriteWins(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b := sampleBundle()
			b.ID = newID()
			assert.NoError(t, s.UpsertBundle(ctx, "user-1", b))
		}()
	}
	wg.Wait()

	got, err := s.GetBundle(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, got.CountResources(), got.TotalResources)
}

func TestSQLite_UpsertNilBundle(t *testing.T) {
	s := newTestSQLite(t)
	assert.Error(t, s.UpsertBundle(context.Background(), "user-1", nil))
}

func TestSQLite_Ping(t *testing.T) {
	s := newTestSQLite(t)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestSQLite_ListUpdateDeleteUsers(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	empty, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	ada, err := s.CreateUser(ctx, "Ada", "ada@example.com")
	require.NoError(t, err)
	grace, err := s.CreateUser(ctx, "Grace", "grace@example.com")
	require.NoError(t, err)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, ada.ID, users[0].ID)
	assert.Equal(t, grace.ID, users[1].ID)

	updated, err := s.UpdateUser(ctx, ada.ID, "Ada L.", " ADA.L@example.com")
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Ada L.", updated.Name)
	assert.Equal(t, "ada.l@example.com", updated.Email)
	assert.Equal(t, ada.CreatedAt.Unix(), updated.CreatedAt.Unix())

	_, err = s.UpdateUser(ctx, ada.ID, "Ada", "grace@example.com")
	assert.ErrorIs(t, err, ErrEmailTaken)

	missing, err := s.UpdateUser(ctx, uuid.New(), "Nobody", "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = s.SaveAnswers(ctx, updated, []types.OnboardingAnswer{{QuestionID: "role", Answer: "Backend"}})
	require.NoError(t, err)
	require.NoError(t, s.UpsertBundle(ctx, ada.ID.String(), types.NewResourceBundle()))

	deleted, err := s.DeleteUser(ctx, ada.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	gone, err := s.GetUser(ctx, ada.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	subs, err := s.ListAnswers(ctx, ada.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)
	bundle, err := s.GetBundle(ctx, ada.ID.String())
	require.NoError(t, err)
	assert.Nil(t, bundle)

	deleted, err = s.DeleteUser(ctx, ada.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSQLite_ListAnswersNewestFirst(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "Ada", "ada@example.com")
	require.NoError(t, err)

	none, err := s.ListAnswers(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	var ids []string
	for _, answer := range []string{"DSA", "Graphs", "SQL"} {
		sub, err := s.SaveAnswers(ctx, u, []types.OnboardingAnswer{{QuestionID: "weak_areas", Answer: answer}})
		require.NoError(t, err)
		ids = append(ids, sub.ID)
	}

	subs, err := s.ListAnswers(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, subs, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{subs[0].ID, subs[1].ID, subs[2].ID})
	assert.Equal(t, "SQL", subs[0].Answers[0].Answer)
	assert.Equal(t, "ada@example.com", subs[0].Email)
	assert.Equal(t, u.ID, subs[2].UserID)
}
