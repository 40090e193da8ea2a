package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/obra/internal/domain"
)

func TestConvert_MinimalProject(t *testing.T) {
	plan, err := Convert(validMinimalSchema())
	require.NoError(t, err)

	// Project
	assert.NotEmpty(t, plan.Project.ID)
	assert.Equal(t, "ED01", plan.Project.ShortID)
	assert.Equal(t, "Edificio Norte", plan.Project.Name)
	assert.Equal(t, domain.ProjectActive, plan.Project.Status)
	assert.Nil(t, plan.Project.TargetDate)

	// Tasks
	require.Len(t, plan.Tasks, 1)
	task := plan.Tasks[0]
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, plan.Project.ID, task.ProjectID)
	assert.Equal(t, domain.KindTask, task.Kind, "kind defaults to task")
	assert.Nil(t, task.ParentID)
	assert.Equal(t, "1", task.WBSCode)
	assert.Equal(t, 1, task.Order)
	assert.Equal(t, 0, task.Level)

	assert.Empty(t, plan.Dependencies)
}

func TestConvert_HierarchyNumbering(t *testing.T) {
	schema := &ImportSchema{
		Project: ProjectImport{ShortID: "ed03", Name: "Torre", StartDate: "2024-01-01"},
		Tasks: []TaskImport{
			{Ref: "est", Name: "Estructura", Kind: "phase", Order: 2},
			{Ref: "fund", Name: "Fundaciones", Kind: "phase", Order: 1},
			{Ref: "pour", ParentRef: ptrStr("fund"), Name: "Hormigonado", Order: 5},
			{Ref: "exc", ParentRef: ptrStr("fund"), Name: "Excavación", Order: 1},
			{Ref: "cols", ParentRef: ptrStr("est"), Name: "Columnas"},
			{Ref: "rebar", ParentRef: ptrStr("pour"), Name: "Armaduras"},
		},
	}

	plan, err := Convert(schema)
	require.NoError(t, err)

	byName := make(map[string]*domain.Task)
	for _, task := range plan.Tasks {
		byName[task.Name] = task
	}

	assert.Equal(t, "2", byName["Estructura"].WBSCode)
	assert.Equal(t, "1", byName["Fundaciones"].WBSCode)
	assert.Equal(t, "1.1", byName["Excavación"].WBSCode)
	assert.Equal(t, "1.2", byName["Hormigonado"].WBSCode)
	assert.Equal(t, 2, byName["Hormigonado"].Order, "orders are renumbered densely")
	assert.Equal(t, "1.2.1", byName["Armaduras"].WBSCode)
	assert.Equal(t, 2, byName["Armaduras"].Level)
	assert.Equal(t, "2.1", byName["Columnas"].WBSCode)

	require.NotNil(t, byName["Hormigonado"].ParentID)
	assert.Equal(t, byName["Fundaciones"].ID, *byName["Hormigonado"].ParentID)
	assert.Equal(t, "ED03", plan.Project.ShortID)
}

func TestConvert_DatesAndCoercions(t *testing.T) {
	schema := validMinimalSchema()
	schema.Project.TargetDate = ptrStr("2024-06-30")
	schema.Tasks = append(schema.Tasks,
		TaskImport{Ref: "ph", Name: "Fase", Kind: "phase", PercentComplete: 80},
		TaskImport{Ref: "ms", Name: "Hito", Kind: "milestone", PlannedStart: ptrStr("2024-02-01"), PlannedEnd: ptrStr("2024-02-09"), PercentComplete: 100},
	)

	plan, err := Convert(schema)
	require.NoError(t, err)

	require.NotNil(t, plan.Project.TargetDate)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), *plan.Project.TargetDate)

	task := plan.Tasks[0]
	require.True(t, task.HasDates())
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), *task.PlannedStart)
	assert.Equal(t, 8, task.DurationDays())

	phase := plan.Tasks[1]
	assert.Equal(t, 0, phase.PercentComplete, "phase progress is derived, never stored")
	assert.False(t, phase.HasDates())

	ms := plan.Tasks[2]
	require.True(t, ms.HasDates())
	assert.Equal(t, *ms.PlannedStart, *ms.PlannedEnd, "milestones have zero duration")
	assert.Equal(t, 100, ms.PercentComplete)
}

func TestConvert_Dependencies(t *testing.T) {
	schema := validMinimalSchema()
	schema.Tasks = append(schema.Tasks, TaskImport{Ref: "t2", Name: "Hormigonado"})
	schema.Dependencies = []DependencyImport{
		{PredecessorRef: "t1", SuccessorRef: "t2"},
		{PredecessorRef: "t2", SuccessorRef: "t1", Type: "SS", LagDays: -3},
	}

	plan, err := Convert(schema)
	require.NoError(t, err)

	require.Len(t, plan.Dependencies, 2)
	first := plan.Dependencies[0]
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, plan.Project.ID, first.ProjectID)
	assert.Equal(t, plan.Tasks[0].ID, first.PredecessorID)
	assert.Equal(t, plan.Tasks[1].ID, first.SuccessorID)
	assert.Equal(t, domain.FinishToStart, first.Type, "type defaults to FS")

	second := plan.Dependencies[1]
	assert.Equal(t, domain.StartToStart, second.Type)
	assert.Equal(t, -3, second.LagDays)
}

func TestConvert_UnknownRefs(t *testing.T) {
	schema := validMinimalSchema()
	schema.Dependencies = []DependencyImport{{PredecessorRef: "t1", SuccessorRef: "ghost"}}

	_, err := Convert(schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `successor_ref "ghost" not found`)
}

func TestLoadImportSchema(t *testing.T) {
	data := []byte(`{
		"project": {"short_id": "ED04", "name": "Galpón", "start_date": "2024-03-01"},
		"tasks": [
			{"ref": "a", "name": "Platea", "planned_start": "2024-03-04", "planned_end": "2024-03-15"},
			{"ref": "b", "name": "Montaje", "kind": "task"}
		],
		"dependencies": [{"predecessor_ref": "a", "successor_ref": "b", "type": "FS", "lag_days": 2}]
	}`)

	schema, err := ParseImportSchema(data)
	require.NoError(t, err)
	assert.Equal(t, "ED04", schema.Project.ShortID)
	require.Len(t, schema.Tasks, 2)
	assert.Equal(t, "2024-03-15", *schema.Tasks[0].PlannedEnd)
	require.Len(t, schema.Dependencies, 1)
	assert.Equal(t, 2, schema.Dependencies[0].LagDays)
	assert.Empty(t, ValidateImportSchema(schema))

	_, err = ParseImportSchema([]byte(`{"project":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing import file")

	_, err = LoadImportSchema(t.TempDir() + "/missing.json")
	require.Error(t, err)
}
