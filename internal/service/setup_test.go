package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/obra/internal/db"
	"github.com/alexanderramin/obra/internal/domain"
	"github.com/alexanderramin/obra/internal/gantt"
	"github.com/alexanderramin/obra/internal/repository"
	"github.com/alexanderramin/obra/internal/testutil"
)

func setupRepos(t *testing.T) (
	*sql.DB,
	repository.ProjectRepo,
	repository.TaskRepo,
	repository.DependencyRepo,
	db.UnitOfWork,
) {
	database := testutil.NewTestDB(t)
	return database,
		repository.NewSQLiteProjectRepo(database),
		repository.NewSQLiteTaskRepo(database),
		repository.NewSQLiteDependencyRepo(database),
		testutil.NewTestUoW(database)
}

// newSchedule returns a schedule service over a fresh database and a project
// to hang tasks on.
func newSchedule(t *testing.T, observers ...UseCaseObserver) (ScheduleService, *domain.Project, *sql.DB) {
	t.Helper()
	database, projects, tasks, deps, uow := setupRepos(t)
	proj := testutil.NewTestProject("Edificio Norte")
	require.NoError(t, projects.Create(context.Background(), proj))
	engine := gantt.NewEngine(gantt.DefaultLayoutConfig(), gantt.WithClock(func() time.Time {
		return testutil.Date(2024, time.January, 1)
	}))
	return NewScheduleService(projects, tasks, deps, uow, engine, observers...), proj, database
}

// newFaultySchedule is newSchedule with every write routed through a
// counting unit of work.
func newFaultySchedule(t *testing.T) (ScheduleService, *domain.Project, *testutil.FaultyUoW) {
	t.Helper()
	database, projects, tasks, deps, _ := setupRepos(t)
	proj := testutil.NewTestProject("Edificio Sur")
	require.NoError(t, projects.Create(context.Background(), proj))
	faulty := &testutil.FaultyUoW{DB: database, Err: errors.New("disk full")}
	return NewScheduleService(projects, tasks, deps, faulty, nil), proj, faulty
}

func at(y int, m time.Month, d int) *time.Time {
	v := testutil.Date(y, m, d)
	return &v
}

func ptr[T any](v T) *T { return &v }

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (r *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingObserver) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Name
	}
	return out
}
