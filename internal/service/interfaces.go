package service

import (
	"context"
	"time"

	"github.com/alexanderramin/obra/internal/domain"
	"github.com/alexanderramin/obra/internal/gantt"
	"github.com/alexanderramin/obra/internal/importer"
)

type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	// Resolve finds a project by short ID (case-insensitive) or full ID.
	Resolve(ctx context.Context, ref string) (*domain.Project, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
}

// CreateTaskInput carries the fields accepted by ScheduleService.CreateTask.
// Order, WBSCode and Level are derived.
type CreateTaskInput struct {
	ProjectID       string
	ParentID        *string
	Name            string
	Description     string
	Kind            domain.TaskKind
	PlannedStart    *time.Time
	PlannedEnd      *time.Time
	PercentComplete int
}

// TaskPatch lists the fields to change on UpdateTask. Nil fields are left
// untouched; ClearParent moves the task to the root level.
type TaskPatch struct {
	Name            *string
	Description     *string
	Kind            *domain.TaskKind
	PlannedStart    *time.Time
	PlannedEnd      *time.Time
	PercentComplete *int
	ParentID        *string
	ClearParent     bool
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Kind == nil &&
		p.PlannedStart == nil && p.PlannedEnd == nil && p.PercentComplete == nil &&
		p.ParentID == nil && !p.ClearParent
}

type CreateDependencyInput struct {
	PredecessorID string
	SuccessorID   string
	Type          domain.DependencyType
	LagDays       int
}

// BoardRequest selects how a project's board is rendered.
type BoardRequest struct {
	Zoom      gantt.ZoomMode
	Expanded  gantt.ExpansionSet
	ExpandAll bool
	Weighting gantt.Weighting
}

// DeleteResult reports what a task deletion removed.
type DeleteResult struct {
	TaskIDs         []string
	DependencyCount int
	// Dependents are tasks outside the removed subtree that had a removed
	// task as predecessor, in first-seen order.
	Dependents []string
}

type ScheduleService interface {
	CreateTask(ctx context.Context, in CreateTaskInput) (*domain.Task, error)
	UpdateTask(ctx context.Context, id string, patch TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) (*DeleteResult, error)
	CreateDependency(ctx context.Context, in CreateDependencyInput) (*domain.Dependency, error)
	DeleteDependency(ctx context.Context, id string) error

	GetTask(ctx context.Context, id string) (*domain.Task, error)
	GetTaskByWBS(ctx context.Context, projectID, code string) (*domain.Task, error)
	ListTasks(ctx context.Context, projectID string) ([]*domain.Task, error)
	GetDependency(ctx context.Context, id string) (*domain.Dependency, error)
	ListDependencies(ctx context.Context, projectID string) ([]*domain.Dependency, error)

	// Board re-fetches the project's records and runs a full recompute.
	Board(ctx context.Context, projectID string, req BoardRequest) (*gantt.Board, error)
	// CheckConstraints reports, per dependency, whether the planned dates
	// satisfy its type and lag. It never changes dates.
	CheckConstraints(ctx context.Context, projectID string) ([]gantt.ConstraintResult, error)
}

// ImportResult holds the outcome of a project import.
type ImportResult struct {
	Project         *domain.Project
	TaskCount       int
	DependencyCount int
}

type ImportService interface {
	ImportProject(ctx context.Context, filePath string) (*ImportResult, error)
	ImportProjectFromSchema(ctx context.Context, schema *importer.ImportSchema) (*ImportResult, error)
}
