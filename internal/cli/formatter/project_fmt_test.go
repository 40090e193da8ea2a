package formatter

import (
	"testing"
	"time"

	"github.com/alexanderramin/obra/internal/domain"
	"github.com/alexanderramin/obra/internal/gantt"
	"github.com/alexanderramin/obra/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFormatProjectList(t *testing.T) {
	target := testutil.Date(2024, time.December, 20)
	projects := []*domain.Project{
		testutil.NewTestProject("Edificio Norte", testutil.WithShortID("EDN01"), testutil.WithTargetDate(target)),
		testutil.NewTestProject("Galpón", testutil.WithShortID("GAL02"), testutil.WithClient("", "")),
	}

	out := stripANSI(FormatProjectList(projects))

	assert.Contains(t, out, "OBRAS")
	assert.Contains(t, out, "EDN01")
	assert.Contains(t, out, "Constructora Test")
	assert.Contains(t, out, "2024-12-20")
	assert.Contains(t, out, "GAL02")
	assert.NotContains(t, out, projects[0].ID[:8])
}

func TestFormatProjectShow_LateAgainstTarget(t *testing.T) {
	target := testutil.Date(2024, time.March, 1)
	p := testutil.NewTestProject("Edificio Norte", testutil.WithShortID("EDN01"),
		testutil.WithTargetDate(target), testutil.WithClient("Inmobiliaria Norte", "Córdoba"))
	start, end := testutil.Date(2024, time.January, 2), testutil.Date(2024, time.April, 1)

	out := stripANSI(FormatProjectShow(ProjectSummary{
		Project: p, Tasks: 5, Milestones: 1, Dependencies: 3, Progress: 40,
		PlannedStart: &start, PlannedEnd: &end,
	}))

	assert.Contains(t, out, "Inmobiliaria Norte")
	assert.Contains(t, out, "Córdoba")
	assert.Contains(t, out, "40%")
	assert.Contains(t, out, "2024-01-02 → 2024-04-01")
	assert.Contains(t, out, "ends 31 days after target")
}

func TestFormatTaskDetail(t *testing.T) {
	f := buildingFixture()
	pour := f.byWBS["1.2"]
	out := stripANSI(FormatTaskDetail(TaskDetail{
		Task:     pour,
		Parent:   f.byWBS["1"],
		Progress: 50,
		Predecessors: []LinkedTask{{Task: f.byWBS["1.1"], Dependency: f.deps[0]}},
		Successors:   []LinkedTask{{Task: f.byWBS["2"], Dependency: f.deps[1]}},
	}))

	assert.Contains(t, out, "1.2 Hormigonado")
	assert.Contains(t, out, "task")
	assert.Contains(t, out, "1 Fundaciones")
	assert.Contains(t, out, "DEPENDS ON")
	assert.Contains(t, out, "1.1 Excavación  FS")
	assert.Contains(t, out, "REQUIRED BY")
	assert.Contains(t, out, "2 Estructura  FS +1d")
}

func TestFormatConstraintReport(t *testing.T) {
	f := buildingFixture()
	tasks := map[string]*domain.Task{}
	for _, task := range f.tasks {
		tasks[task.ID] = task
	}
	results := gantt.NewDependencyGraph(f.tasks, f.deps).CheckConstraints()

	out := stripANSI(FormatConstraintReport(results, tasks))

	assert.Contains(t, out, "1.1 Excavación")
	assert.Contains(t, out, "met")
	assert.Contains(t, out, "All dependencies are satisfied")

	f.byWBS["2"].PlannedStart = ptrTime(testutil.Date(2024, time.January, 20))
	results = gantt.NewDependencyGraph(f.tasks, f.deps).CheckConstraints()
	out = stripANSI(FormatConstraintReport(results, tasks))
	assert.Contains(t, out, "violated")
	assert.Contains(t, out, "1 of 3 dependencies are violated")
}

func ptrTime(v time.Time) *time.Time { return &v }
