package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alexanderramin/obra/internal/domain"
	"github.com/alexanderramin/obra/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taskTestSetup(t *testing.T) (*sql.DB, *SQLiteTaskRepo, *domain.Project) {
	t.Helper()
	db := testutil.NewTestDB(t)
	proj := testutil.NewTestProject("Tasks")
	require.NoError(t, NewSQLiteProjectRepo(db).Create(context.Background(), proj))
	return db, NewSQLiteTaskRepo(db), proj
}

func TestTaskRepo_CreateAndGetByID(t *testing.T) {
	_, repo, proj := taskTestSetup(t)
	ctx := context.Background()

	start := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 15, 17, 0, 0, 0, time.UTC)
	phase := testutil.NewTestTask(proj.ID, "Estructura",
		testutil.WithKind(domain.KindPhase), testutil.WithOrder(1, "1"))
	require.NoError(t, repo.Create(ctx, phase))

	task := testutil.NewTestTask(proj.ID, "Hormigonado losa",
		testutil.WithParent(phase),
		testutil.WithOrder(1, "1.1"),
		testutil.WithDates(start, end),
		testutil.WithPercent(35),
		testutil.WithDescription("Losa nivel 2"))
	require.NoError(t, repo.Create(ctx, task))

	fetched, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hormigonado losa", fetched.Name)
	assert.Equal(t, "Losa nivel 2", fetched.Description)
	assert.Equal(t, domain.KindTask, fetched.Kind)
	require.NotNil(t, fetched.ParentID)
	assert.Equal(t, phase.ID, *fetched.ParentID)
	assert.Equal(t, "1.1", fetched.WBSCode)
	assert.Equal(t, 1, fetched.Order)
	assert.Equal(t, 1, fetched.Level)
	assert.Equal(t, 35, fetched.PercentComplete)
	require.NotNil(t, fetched.PlannedStart)
	require.NotNil(t, fetched.PlannedEnd)
	assert.True(t, start.Equal(*fetched.PlannedStart))
	assert.True(t, end.Equal(*fetched.PlannedEnd))

	root, err := repo.GetByID(ctx, phase.ID)
	require.NoError(t, err)
	assert.Nil(t, root.ParentID)
	assert.Nil(t, root.PlannedStart)
}

func TestTaskRepo_GetByID_NotFound(t *testing.T) {
	_, repo, _ := taskTestSetup(t)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskRepo_GetByWBSCode(t *testing.T) {
	_, repo, proj := taskTestSetup(t)
	ctx := context.Background()

	task := testutil.NewTestTask(proj.ID, "Excavación", testutil.WithOrder(2, "2"))
	require.NoError(t, repo.Create(ctx, task))

	fetched, err := repo.GetByWBSCode(ctx, proj.ID, "2")
	require.NoError(t, err)
	assert.Equal(t, task.ID, fetched.ID)

	_, err = repo.GetByWBSCode(ctx, proj.ID, "9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskRepo_ListOrderedBySibling(t *testing.T) {
	_, repo, proj := taskTestSetup(t)
	ctx := context.Background()

	parent := testutil.NewTestTask(proj.ID, "Phase", testutil.WithKind(domain.KindPhase), testutil.WithOrder(1, "1"))
	require.NoError(t, repo.Create(ctx, parent))
	second := testutil.NewTestTask(proj.ID, "Second", testutil.WithParent(parent), testutil.WithOrder(2, "1.2"))
	first := testutil.NewTestTask(proj.ID, "First", testutil.WithParent(parent), testutil.WithOrder(1, "1.1"))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, first))

	all, err := repo.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Phase", all[0].Name)
	assert.Equal(t, "First", all[1].Name)
	assert.Equal(t, "Second", all[2].Name)
}

func TestTaskRepo_MaxChildOrder(t *testing.T) {
	_, repo, proj := taskTestSetup(t)
	ctx := context.Background()

	n, err := repo.MaxChildOrder(ctx, proj.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "empty project")

	root := testutil.NewTestTask(proj.ID, "Root", testutil.WithKind(domain.KindPhase), testutil.WithOrder(3, "3"))
	require.NoError(t, repo.Create(ctx, root))
	require.NoError(t, repo.Create(ctx, testutil.NewTestTask(proj.ID, "Child", testutil.WithParent(root), testutil.WithOrder(7, "3.7"))))

	n, err = repo.MaxChildOrder(ctx, proj.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = repo.MaxChildOrder(ctx, proj.ID, &root.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestTaskRepo_UpdateClearsParentAndDates(t *testing.T) {
	_, repo, proj := taskTestSetup(t)
	ctx := context.Background()

	parent := testutil.NewTestTask(proj.ID, "Parent", testutil.WithKind(domain.KindPhase))
	require.NoError(t, repo.Create(ctx, parent))
	task := testutil.NewTestTask(proj.ID, "Child",
		testutil.WithParent(parent),
		testutil.WithDates(testutil.Date(2024, 1, 1), testutil.Date(2024, 1, 5)))
	require.NoError(t, repo.Create(ctx, task))

	task.ParentID = nil
	task.Level = 0
	task.PlannedStart = nil
	task.PlannedEnd = nil
	task.Name = "Renamed"
	require.NoError(t, repo.Update(ctx, task))

	fetched, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched.ParentID)
	assert.Nil(t, fetched.PlannedStart)
	assert.Equal(t, "Renamed", fetched.Name)
	assert.Equal(t, 0, fetched.Level)
}

func TestTaskRepo_DeleteMissing(t *testing.T) {
	_, repo, _ := taskTestSetup(t)

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskRepo_RejectsEndBeforeStart(t *testing.T) {
	_, repo, proj := taskTestSetup(t)

	task := testutil.NewTestTask(proj.ID, "Backwards",
		testutil.WithDates(testutil.Date(2024, 2, 1), testutil.Date(2024, 1, 1)))
	assert.Error(t, repo.Create(context.Background(), task))
}
