package db

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/fitcoach/pkg/models"
)

func setupTestDB(t *testing.T) (*Store, context.Context) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store, closer, err := Open(ctx, "sqlite://"+dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { closer.Close() })
	return store, ctx
}

func seedUser(t *testing.T, ctx context.Context, store *Store, name string) models.User {
	t.Helper()
	u, err := store.Users.CreateUser(ctx, models.User{Username: name, Token: name + "-token"})
	require.NoError(t, err)
	return u
}

func seedExercise(t *testing.T, ctx context.Context, store *Store, name string, tags ...string) models.Exercise {
	t.Helper()
	ex := models.Exercise{Name: name, Description: name + " description", TargetArea: "肩"}
	for _, tg := range tags {
		ex.Tags = append(ex.Tags, models.Tag{Name: tg})
	}
	created, err := store.Catalog.CreateExercise(ctx, ex)
	require.NoError(t, err)
	return created
}

func TestCreateAndGetExercise(t *testing.T) {
	store, ctx := setupTestDB(t)

	ex := seedExercise(t, ctx, store, "肩ストレッチ", "ストレッチ", "肩こり解消")
	assert.NotZero(t, ex.ID)
	assert.Equal(t, models.CategoryStretch, ex.Category)
	assert.Equal(t, []string{"ストレッチ", "肩こり解消"}, ex.TagNames())

	got, err := store.Catalog.GetExercise(ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, ex, got)

	_, err = store.Catalog.GetExercise(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Catalog.CreateExercise(ctx, models.Exercise{Name: "肩ストレッチ", Description: "dup"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = store.Catalog.CreateExercise(ctx, models.Exercise{Name: "x", Category: "yoga"})
	assert.Error(t, err)
}

func TestListExercisesPaging(t *testing.T) {
	store, ctx := setupTestDB(t)
	for i := 0; i < 7; i++ {
		seedExercise(t, ctx, store, fmt.Sprintf("ex-%02d", i), "shared")
	}
	n, err := store.Catalog.CountExercises(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	page, err := store.Catalog.ListExercises(ctx, 5, 5)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "ex-05", page[0].Name)
	assert.Equal(t, []string{"shared"}, page[1].TagNames())

	all, err := store.Catalog.AllExercises(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 7)
}

func TestConditionLogsNewestFirst(t *testing.T) {
	store, ctx := setupTestDB(t)
	u := seedUser(t, ctx, store, "viewer")
	other := seedUser(t, ctx, store, "other")

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := store.Journal.AddConditionLog(ctx, models.ConditionLog{
			User:         u.ID,
			FatigueLevel: i + 1,
			MoodLevel:    3,
			CreatedAt:    base.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}
	_, err := store.Journal.AddConditionLog(ctx, models.ConditionLog{User: other.ID, FatigueLevel: 1, MoodLevel: 1})
	require.NoError(t, err)

	logs, err := store.Journal.ListConditionLogs(ctx, u.ID, 2, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "2024-05-03", logs[0].LogDate)
	assert.Equal(t, 3, logs[0].FatigueLevel)
	assert.Equal(t, "2024-05-02", logs[1].LogDate)

	n, err := store.Journal.CountConditionLogs(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = store.Journal.AddConditionLog(ctx, models.ConditionLog{User: u.ID, FatigueLevel: 9, MoodLevel: 1})
	assert.Error(t, err, "check constraint rejects out of range levels")
}

func TestRoutineLifecycle(t *testing.T) {
	store, ctx := setupTestDB(t)
	u := seedUser(t, ctx, store, "viewer")
	a := seedExercise(t, ctx, store, "a", "t1")
	b := seedExercise(t, ctx, store, "b")

	r, created, err := store.Routines.AddRoutine(ctx, u.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "a", r.Exercise.Name)

	_, created, err = store.Routines.AddRoutine(ctx, u.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, created)

	_, _, err = store.Routines.AddRoutine(ctx, u.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = store.Routines.AddRoutine(ctx, u.ID, b.ID)
	require.NoError(t, err)

	// viewing a bumps it ahead of the more recently added b
	require.NoError(t, store.Routines.TouchRoutine(ctx, u.ID, a.ID))
	list, err := store.Routines.ListRoutines(ctx, u.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Exercise.Name)
	assert.Equal(t, 1, list[0].ViewCount)
	assert.Equal(t, []string{"t1"}, list[0].Exercise.TagNames())

	require.NoError(t, store.Routines.DeleteRoutine(ctx, u.ID, a.ID))
	assert.ErrorIs(t, store.Routines.DeleteRoutine(ctx, u.ID, a.ID), ErrNotFound)

	n, err := store.Routines.CountRoutines(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUserByToken(t *testing.T) {
	store, ctx := setupTestDB(t)
	u := seedUser(t, ctx, store, "viewer")

	got, err := store.Users.UserByToken(ctx, "viewer-token")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = store.Users.UserByToken(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Users.CreateUser(ctx, models.User{Username: "viewer", Token: "other"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	store, closer, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { closer.Close() })

	boom := errors.New("boom")
	err = InTx(ctx, store.Tx, func(ctx context.Context) error {
		if _, err := store.Catalog.CreateExercise(ctx, models.Exercise{Name: "kept?", Tags: []models.Tag{{Name: "t"}}}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := store.Catalog.CountExercises(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	_, _, err := Open(context.Background(), "postgres://localhost/db")
	assert.Error(t, err)
}

func TestConcurrentWritesOnFileStore(t *testing.T) {
	store, ctx := setupTestDB(t)
	u := seedUser(t, ctx, store, "busy")
	ex := seedExercise(t, ctx, store, "肩回し")
	_, _, err := store.Routines.AddRoutine(ctx, u.ID, ex.ID)
	require.NoError(t, err)

	const workers = 64
	var wg sync.WaitGroup
	errs := make(chan error, 2*workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Journal.AddConditionLog(ctx, models.ConditionLog{
				User: u.ID, FatigueLevel: 1 + i%5, MoodLevel: 3, BodyConcern: fmt.Sprintf("log %d", i),
			})
			errs <- err
			errs <- store.Routines.TouchRoutine(ctx, u.ID, ex.ID)
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	n, err := store.Journal.CountConditionLogs(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, workers, n)
	rs, err := store.Routines.ListRoutines(ctx, u.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, workers, rs[0].ViewCount)
}

func TestForeignKeysOnEveryConnection(t *testing.T) {
	store, ctx := setupTestDB(t)

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Journal.AddConditionLog(ctx, models.ConditionLog{User: 9999, FatigueLevel: 2, MoodLevel: 2})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.Error(t, err, "log for a missing user must violate the foreign key")
	}
}
