package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/alexanderramin/obra/internal/domain"
	"github.com/alexanderramin/obra/internal/gantt"
	"github.com/alexanderramin/obra/internal/repository"
	"github.com/alexanderramin/obra/internal/service"
	"github.com/alexanderramin/obra/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string { return ansiPattern.ReplaceAllString(s, "") }

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T) *App {
	t.Helper()
	db := testutil.NewTestDB(t)

	projRepo := repository.NewSQLiteProjectRepo(db)
	taskRepo := repository.NewSQLiteTaskRepo(db)
	depRepo := repository.NewSQLiteDependencyRepo(db)
	uow := testutil.NewTestUoW(db)
	engine := gantt.NewEngine(gantt.DefaultLayoutConfig(), gantt.WithClock(func() time.Time {
		return testutil.Date(2024, time.January, 1)
	}))

	return &App{
		Projects:    service.NewProjectService(projRepo),
		Schedule:    service.NewScheduleService(projRepo, taskRepo, depRepo, uow, engine),
		Import:      service.NewImportService(uow),
		DefaultZoom: gantt.ZoomWeek,
		Now:         func() time.Time { return testutil.Date(2024, time.February, 15) },
	}
}

// building holds the ids of the seeded schedule, keyed by WBS code.
type building struct {
	project *domain.Project
	tasks   map[string]*domain.Task
}

// seedBuilding creates EDN01 with:
//
//	1   Fundaciones (phase)
//	1.1 Excavación  100%
//	1.2 Hormigonado  50%
//	2   Estructura
//	3   Obra gruesa (milestone)
//
// and the dependencies 1.1→1.2, 1.2→2 (+1d), 2→3 FF.
func seedBuilding(t *testing.T, app *App) building {
	t.Helper()
	ctx := context.Background()
	d := func(m time.Month, day int) *time.Time {
		v := testutil.Date(2024, m, day)
		return &v
	}

	p := testutil.NewTestProject("Edificio Norte", testutil.WithShortID("EDN01"),
		testutil.WithClient("Inmobiliaria Norte", "Córdoba"))
	require.NoError(t, app.Projects.Create(ctx, p))

	b := building{project: p, tasks: map[string]*domain.Task{}}
	create := func(in service.CreateTaskInput) *domain.Task {
		in.ProjectID = p.ID
		task, err := app.Schedule.CreateTask(ctx, in)
		require.NoError(t, err)
		b.tasks[task.WBSCode] = task
		return task
	}
	fund := create(service.CreateTaskInput{Name: "Fundaciones", Kind: domain.KindPhase,
		PlannedStart: d(time.January, 2), PlannedEnd: d(time.January, 31)})
	exc := create(service.CreateTaskInput{ParentID: &fund.ID, Name: "Excavación", Kind: domain.KindTask,
		PlannedStart: d(time.January, 2), PlannedEnd: d(time.January, 12), PercentComplete: 100})
	pour := create(service.CreateTaskInput{ParentID: &fund.ID, Name: "Hormigonado", Kind: domain.KindTask,
		PlannedStart: d(time.January, 15), PlannedEnd: d(time.January, 31), PercentComplete: 50})
	est := create(service.CreateTaskInput{Name: "Estructura", Kind: domain.KindTask,
		PlannedStart: d(time.February, 1), PlannedEnd: d(time.March, 29)})
	hito := create(service.CreateTaskInput{Name: "Obra gruesa", Kind: domain.KindMilestone,
		PlannedStart: d(time.April, 1)})

	link := func(pred, succ *domain.Task, typ domain.DependencyType, lag int) {
		_, err := app.Schedule.CreateDependency(ctx, service.CreateDependencyInput{
			PredecessorID: pred.ID, SuccessorID: succ.ID, Type: typ, LagDays: lag,
		})
		require.NoError(t, err)
	}
	link(exc, pour, domain.FinishToStart, 0)
	link(pour, est, domain.FinishToStart, 1)
	link(est, hito, domain.FinishToFinish, 0)
	return b
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return stripANSI(buf.String()), err
}

// --- root ---

func TestRootCmd_NoArgs_ShowsHelp(t *testing.T) {
	app := testApp(t)

	output, err := executeCmd(t, app)
	require.NoError(t, err)
	assert.Contains(t, output, "obra")
	assert.Contains(t, output, "gantt")
}

// --- project ---

func TestProjectAdd_AndList(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "project", "add", "--id", "gal02", "--name", "Galpón Sur",
		"--client", "Agro SA", "--start", "2024-05-01", "--target", "2024-09-30")
	require.NoError(t, err)
	assert.Contains(t, out, "Created project Galpón Sur [GAL02]")

	out, err = executeCmd(t, app, "project", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "GAL02")
	assert.Contains(t, out, "Agro SA")
	assert.Contains(t, out, "2024-09-30")
}

func TestProjectAdd_Validation(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "project", "add", "--id", "X1", "--name", "Bad", "--start", "2024-05-01")
	require.Error(t, err)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "shortId", verr.Field)

	_, err = executeCmd(t, app, "project", "add", "--id", "OBR01", "--name", "Bad", "--start", "01/05/2024")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid start date")

	_, err = executeCmd(t, app, "project", "add", "--name", "Bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestProjectList_Empty(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "project", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No projects found.")
}

func TestProjectShow_Summary(t *testing.T) {
	app := testApp(t)
	seedBuilding(t, app)

	out, err := executeCmd(t, app, "project", "show", "edn01")
	require.NoError(t, err)
	assert.Contains(t, out, "Edificio Norte")
	assert.Contains(t, out, "Inmobiliaria Norte")
	assert.Contains(t, out, "2024-01-02 → 2024-04-01")
	// roots: 75, 0, 0
	assert.Contains(t, out, "25%")
	assert.Contains(t, out, "▸ 1 Fundaciones")
}

func TestProjectRemove(t *testing.T) {
	app := testApp(t)
	b := seedBuilding(t, app)

	out, err := executeCmd(t, app, "project", "remove", "EDN01", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed project Edificio Norte [EDN01]")

	_, err = app.Projects.GetByID(context.Background(), b.project.ID)
	var rerr *domain.ReferenceError
	assert.ErrorAs(t, err, &rerr)
}

func TestProjectShow_NotFound(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "project", "show", "NOPE01")
	require.Error(t, err)
	var rerr *domain.ReferenceError
	assert.ErrorAs(t, err, &rerr)
}

// --- task ---

func TestTaskAdd_UnderParentByName(t *testing.T) {
	app := testApp(t)
	b := seedBuilding(t, app)

	out, err := executeCmd(t, app, "task", "add", "-p", "EDN01", "--name", "Vigas de fundación",
		"--parent", "Fundaciones", "--start", "2024-01-20", "--end", "2024-01-26")
	require.NoError(t, err)
	assert.Contains(t, out, "Created task 1.3 Vigas de fundación")

	created, err := app.Schedule.GetTaskByWBS(context.Background(), b.project.ID, "1.3")
	require.NoError(t, err)
	require.NotNil(t, created.ParentID)
	assert.Equal(t, b.tasks["1"].ID, *created.ParentID)
	assert.Equal(t, 1, created.Level)
}

func TestTaskAdd_Milestone(t *testing.T) {
	app := testApp(t)
	seedBuilding(t, app)

	out, err := executeCmd(t, app, "task", "add", "-p", "EDN01", "--name", "Final de obra",
		"--kind", "milestone", "--start", "2024-06-28")
	require.NoError(t, err)
	assert.Contains(t, out, "Created milestone 4 Final de obra")
}

func TestTaskAdd_ValidationErrors(t *testing.T) {
	app := testApp(t)
	seedBuilding(t, app)

	_, err := executeCmd(t, app, "task", "add", "-p", "EDN01", "--name", "Sin fechas")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "plannedStart", verr.Field)

	_, err = executeCmd(t, app, "task", "add", "-p", "EDN01", "--name", "Al revés",
		"--start", "2024-03-10", "--end", "2024-03-01")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "plannedEnd", verr.Field)

	_, err = executeCmd(t, app, "task", "add", "-p", "EDN01", "--name", "Bajo hito",
		"--parent", "3", "--start", "2024-04-01", "--end", "2024-04-02")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "parentId", verr.Field)

	_, err = executeCmd(t, app, "task", "add", "--name", "Sin obra")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project")
}

func TestTaskUpdate_ChangedFlagsOnly(t *testing.T) {
	app := testApp(t)
	b := seedBuilding(t, app)

	out, err := executeCmd(t, app, "task", "update", "1.2", "-p", "EDN01", "--percent", "80")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated 1.2 Hormigonado")

	got, err := app.Schedule.GetTask(context.Background(), b.tasks["1.2"].ID)
	require.NoError(t, err)
	assert.Equal(t, 80, got.PercentComplete)
	assert.Equal(t, "Hormigonado", got.Name)
	require.NotNil(t, got.PlannedStart)
	assert.Equal(t, testutil.Date(2024, time.January, 15), got.PlannedStart.UTC())
}

func TestTaskUpdate_MoveToRoot(t *testing.T) {
	app := testApp(t)
	b := seedBuilding(t, app)

	_, err := executeCmd(t, app, "task", "update", "Hormigonado", "-p", "EDN01", "--root")
	require.NoError(t, err)

	got, err := app.Schedule.GetTask(context.Background(), b.tasks["1.2"].ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID)
	assert.Equal(t, 0, got.Level)
}

func TestTaskUpdate_NothingToUpdate(t *testing.T) {
	app := testApp(t)
	seedBuilding(t, app)

	_, err := executeCmd(t, app, "task", "update", "1.1", "-p", "EDN01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")

	_, err = executeCmd(t, app, "task", "update", "1.1", "-p", "EDN01", "--root", "--parent", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestTaskRemove_Cascades(t *testing.T) {
	app := testApp(t)
	b := seedBuilding(t, app)

	out, err := executeCmd(t, app, "task", "remove", "1", "-p", "EDN01", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 Fundaciones (3 tasks, 2 dependencies)")
	assert.Contains(t, out, "! Lost a predecessor: 2 Estructura")

	tasks, err := app.Schedule.ListTasks(context.Background(), b.project.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	deps, err := app.Schedule.ListDependencies(context.Background(), b.project.ID)
	require.NoError(t, err)
	assert.Len(t, deps, 1)
}

func TestTaskRemove_LeafWithoutDependents(t *testing.T) {
	app := testApp(t)
	seedBuilding(t, app)

	out, err := executeCmd(t, app, "task", "remove", "3", "-p", "EDN01", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 3 Obra gruesa (1 task, 1 dependency)")
	assert.NotContains(t, out, "Lost a predecessor")
}

func TestDependents_LeaveTheSubtree(t *testing.T) {
	app := testApp(t)
	b := seedBuilding(t, app)
	board, err := app.Schedule.Board(context.Background(), b.project.ID, service.BoardRequest{})
	require.NoError(t, err)

	assert.Equal(t, "2 Estructura", taskRefs(dependents(board, b.tasks["1"].ID)), "1.1 -> 1.2 stays inside")
	assert.Equal(t, "3 Obra gruesa", taskRefs(dependents(board, b.tasks["2"].ID)))
	assert.Empty(t, dependents(board, b.tasks["3"].ID))
}

func TestTaskList_TableAndTree(t *testing.T) {
	app := testApp(t)
	seedBuilding(t, app)

	out, err := executeCmd(t, app, "task", "list", "-p", "EDN01")
	require.NoError(t, err)
	assert.Contains(t, out, "WBS")
	assert.Contains(t, out, "Excavación")
	assert.Contains(t, out, "2024-01-31")

	out, err = executeCmd(t, app, "task", "list", "-p", "EDN01", "--tree")
	require.NoError(t, err)
	assert.Contains(t, out, "▾ 1 Fundaciones")
	assert.Contains(t, out, "└─")
	assert.Contains(t, out, "75%")
}

func TestTaskShow_Neighbours(t *testing.T) {
	app := testApp(t)
	seedBuilding(t, app)

	out, err := executeCmd(t, app, "task", "show", "1.2", "-p", "EDN01")
	require.NoError(t, err)
	assert.Contains(t, out, "1.2 Hormigonado")
	assert.Contains(t, out, "1 Fundaciones")
	assert.Contains(t, out, "1.1 Excavación  FS")
	assert.Contains(t, out, "2 Estructura  FS +1d")
	assert.Contains(t, out, "50%")
}

// --- dep ---

func TestDepAdd_AndList(t *testing.T) {
	app := testApp(t)
	seedBuilding(t, app)

	out, err := executeCmd(t, app, "dep", "add", "1.1", "2", "-p", "EDN01", "--type", "ss", "--lag", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Added 1.1 Excavación → 2 Estructura (SS +3d")

	out, err = executeCmd(t, app, "dep", "list", "-p", "EDN01")
	require.NoError(t, err)
	assert.Contains(t, out, "start-to-start")
	assert.Contains(t, out, "+3d")
}

func TestDepAdd_Rejections(t *testing.T) {
	app := testApp(t)
	seedBuilding(t, app)

	tests := []struct {
		name  string
		args  []string
		field string
		msg   string
	}{
		{"self", []string{"1.1", "1.1"}, "successorId", "itself"},
		{"duplicate", []string{"1.1", "1.2"}, "successorId", "already depends"},
		{"cycle", []string{"3", "1.1"}, "successorId", "cycle"},
		{"type", []string{"1.1", "2", "--type", "XX"}, "type", "FS, SS, FF, SF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"dep", "add", "-p", "EDN01"}, tt.args...)
			_, err := executeCmd(t, app, args...)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Contains(t, verr.Msg, tt.msg)
		})
	}
}

func TestDepRemove_ByEndpointsAndPrefix(t *testing.T) {
	app := testApp(t)
	b := seedBuilding(t, app)
	ctx := context.Background()

	_, err := executeCmd(t, app, "dep", "remove", "1.1", "1.2", "-p", "EDN01")
	require.NoError(t, err)

	deps, err := app.Schedule.ListDependencies(ctx, b.project.ID)
	require.NoError(t, err)
	require.Len(t, deps, 2)

	out, err := executeCmd(t, app, "dep", "remove", deps[0].ID[:8], "-p", "EDN01")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed dependency")

	deps, err = app.Schedule.ListDependencies(ctx, b.project.ID)
	require.NoError(t, err)
	assert.Len(t, deps, 1)

	_, err = executeCmd(t, app, "dep", "remove", "1.1", "1.2", "-p", "EDN01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no dependency from 1.1 to 1.2")
}

func TestDepCheck_ReportsViolations(t *testing.T) {
	app := testApp(t)
	b := seedBuilding(t, app)

	out, err := executeCmd(t, app, "dep", "check", "-p", "EDN01", "--strict")
	require.NoError(t, err)
	assert.Contains(t, out, "All dependencies are satisfied")

	start := testutil.Date(2024, time.January, 20)
	_, err = app.Schedule.UpdateTask(context.Background(), b.tasks["2"].ID, service.TaskPatch{PlannedStart: &start})
	require.NoError(t, err)

	out, err = executeCmd(t, app, "dep", "check", "-p", "EDN01")
	require.NoError(t, err)
	assert.Contains(t, out, "violated")
	assert.Contains(t, out, "1 of 3 dependencies are violated")

	_, err = executeCmd(t, app, "dep", "check", "-p", "EDN01", "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 dependency violated")
}

// --- gantt ---

func TestGanttCmd_Expanded(t *testing.T) {
	app := testApp(t)
	seedBuilding(t, app)

	out, err := executeCmd(t, app, "gantt", "-p", "EDN01", "--width", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "Edificio Norte")
	assert.Contains(t, out, "week")
	assert.Contains(t, out, "1.2 Hormigonado")
	assert.Contains(t, out, "◆")
	assert.Contains(t, out, "DEPENDENCIES")
	assert.NotContains(t, out, "(hidden)")
}

func TestGanttCmd_CollapsedHidesLinks(t *testing.T) {
	app := testApp(t)
	seedBuilding(t, app)

	out, err := executeCmd(t, app, "gantt", "-p", "EDN01", "--collapsed", "--zoom", "month")
	require.NoError(t, err)
	assert.Contains(t, out, "month")
	assert.NotContains(t, out, "├─", "only top-level rows")
	assert.Contains(t, out, "1.1 Excavación → 1.2 Hormigonado  FS  (hidden)")
}

func TestGanttCmd_BadFlags(t *testing.T) {
	app := testApp(t)
	seedBuilding(t, app)

	_, err := executeCmd(t, app, "gantt", "-p", "EDN01", "--zoom", "year")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "zoom", verr.Field)

	_, err = executeCmd(t, app, "gantt", "-p", "EDN01", "--weighting", "cost")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "weighting", verr.Field)

	_, err = executeCmd(t, app, "gantt", "-p", "EDN01", "-i")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "terminal")
}

// --- export / import ---

func TestExportCmd_InfersFormat(t *testing.T) {
	app := testApp(t)
	seedBuilding(t, app)
	dir := t.TempDir()

	for _, name := range []string{"plan.svg", "plan.png", "plan.json"} {
		path := filepath.Join(dir, name)
		out, err := executeCmd(t, app, "export", "-p", "EDN01", "-o", path)
		require.NoError(t, err, name)
		assert.Contains(t, out, "Wrote "+path+" (5 rows, 3 dependency lines)")

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	svg, err := os.ReadFile(filepath.Join(dir, "plan.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(svg), "Edificio Norte")
}

func TestExportCmd_UnknownFormat(t *testing.T) {
	app := testApp(t)
	seedBuilding(t, app)
	path := filepath.Join(t.TempDir(), "plan.pdf")

	_, err := executeCmd(t, app, "export", "-p", "EDN01", "-o", path)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "format", verr.Field)
	assert.NoFileExists(t, path)
}

func TestImportCmd(t *testing.T) {
	app := testApp(t)
	path := filepath.Join(t.TempDir(), "torre.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "project": {"short_id": "TOR01", "name": "Torre Centro", "start_date": "2024-03-01"},
  "tasks": [
    {"ref": "est", "name": "Estructura", "kind": "phase", "planned_start": "2024-03-01", "planned_end": "2024-05-31"},
    {"ref": "col", "parent_ref": "est", "name": "Columnas", "planned_start": "2024-03-01", "planned_end": "2024-03-29", "percent_complete": 40},
    {"ref": "los", "parent_ref": "est", "name": "Losas", "planned_start": "2024-04-01", "planned_end": "2024-05-31"}
  ],
  "dependencies": [{"predecessor_ref": "col", "successor_ref": "los"}]
}`), 0o644))

	out, err := executeCmd(t, app, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported Torre Centro [TOR01]: 3 tasks, 1 dependency")

	out, err = executeCmd(t, app, "task", "list", "-p", "TOR01", "--tree")
	require.NoError(t, err)
	assert.Contains(t, out, "1.2 Losas")
	assert.Contains(t, out, "20%")
}
