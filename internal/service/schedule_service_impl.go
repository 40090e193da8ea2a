package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/obra/internal/db"
	"github.com/alexanderramin/obra/internal/domain"
	"github.com/alexanderramin/obra/internal/gantt"
	"github.com/alexanderramin/obra/internal/repository"
)

type scheduleService struct {
	projects repository.ProjectRepo
	tasks    repository.TaskRepo
	deps     repository.DependencyRepo
	uow      db.UnitOfWork
	engine   *gantt.Engine
	observer UseCaseObserver
	now      func() time.Time
}

// NewScheduleService wires the mutation surface and the board recompute.
// A nil engine gets the default layout configuration.
func NewScheduleService(
	projects repository.ProjectRepo,
	tasks repository.TaskRepo,
	deps repository.DependencyRepo,
	uow db.UnitOfWork,
	engine *gantt.Engine,
	observers ...UseCaseObserver,
) ScheduleService {
	if engine == nil {
		engine = gantt.NewEngine(gantt.DefaultLayoutConfig())
	}
	return &scheduleService{
		projects: projects,
		tasks:    tasks,
		deps:     deps,
		uow:      uow,
		engine:   engine,
		observer: useCaseObserverOrNoop(observers),
		now:      nowUTC,
	}
}

func (s *scheduleService) CreateTask(ctx context.Context, in CreateTaskInput) (task *domain.Task, err error) {
	startedAt := time.Now()
	fields := map[string]any{"project_id": in.ProjectID}
	defer func() { observe(ctx, s.observer, "create-task", startedAt, &err, fields) }()

	if in.Kind == "" {
		in.Kind = domain.KindTask
	}
	if err := validateNewTask(in); err != nil {
		return nil, err
	}

	now := s.now()
	task = &domain.Task{
		ID:              uuid.New().String(),
		ProjectID:       in.ProjectID,
		Name:            in.Name,
		Description:     in.Description,
		Kind:            in.Kind,
		PlannedStart:    dayPtr(in.PlannedStart),
		PlannedEnd:      dayPtr(in.PlannedEnd),
		PercentComplete: in.PercentComplete,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.ParentID != nil && *in.ParentID != "" {
		pid := *in.ParentID
		task.ParentID = &pid
	}
	if task.IsPhase() {
		task.PercentComplete = 0
	}
	task.CollapseMilestone()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txProjects := repository.NewSQLiteProjectRepo(tx)
		txTasks := repository.NewSQLiteTaskRepo(tx)

		if _, err := txProjects.GetByID(ctx, task.ProjectID); err != nil {
			return lookupErr(err, "project", task.ProjectID)
		}

		var parent *domain.Task
		if task.ParentID != nil {
			p, err := txTasks.GetByID(ctx, *task.ParentID)
			if err != nil {
				return lookupErr(err, "task", *task.ParentID)
			}
			if err := checkParent(task, p); err != nil {
				return err
			}
			parent = p
		}

		maxOrder, err := txTasks.MaxChildOrder(ctx, task.ProjectID, task.ParentID)
		if err != nil {
			return storeErr("create task", err)
		}
		task.Order = maxOrder + 1
		task.WBSCode = wbsCode(parent, task.Order)
		if parent != nil {
			task.Level = parent.Level + 1
		}

		return storeErr("create task", txTasks.Create(ctx, task))
	})
	if err != nil {
		return nil, err
	}
	fields["task_id"] = task.ID
	fields["wbs"] = task.WBSCode
	return task, nil
}

func (s *scheduleService) UpdateTask(ctx context.Context, id string, patch TaskPatch) (task *domain.Task, err error) {
	startedAt := time.Now()
	fields := map[string]any{"task_id": id}
	defer func() { observe(ctx, s.observer, "update-task", startedAt, &err, fields) }()

	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return s.GetTask(ctx, id)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTasks := repository.NewSQLiteTaskRepo(tx)

		current, err := txTasks.GetByID(ctx, id)
		if err != nil {
			return lookupErr(err, "task", id)
		}
		all, err := txTasks.ListByProject(ctx, current.ProjectID)
		if err != nil {
			return storeErr("list tasks", err)
		}
		tree := gantt.BuildTree(all)

		updated, err := applyPatch(current, patch, tree)
		if err != nil {
			return err
		}

		var moved []*domain.Task
		if reparented(current, updated) {
			moved, err = reparent(ctx, txTasks, updated, tree)
			if err != nil {
				return err
			}
			fields["reparented"] = true
		}

		updated.UpdatedAt = s.now()
		if err := txTasks.Update(ctx, updated); err != nil {
			return storeErr("update task", err)
		}
		for _, d := range moved {
			d.UpdatedAt = updated.UpdatedAt
			if err := txTasks.Update(ctx, d); err != nil {
				return storeErr("update task", err)
			}
		}
		task = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// reparent validates the new parent, appends the task to its sibling list and
// returns the descendants whose level shifted. The WBS code is kept.
func reparent(ctx context.Context, txTasks repository.TaskRepo, t *domain.Task, tree *gantt.Tree) ([]*domain.Task, error) {
	var parent *domain.Task
	if t.ParentID != nil {
		p, err := txTasks.GetByID(ctx, *t.ParentID)
		if err != nil {
			return nil, lookupErr(err, "task", *t.ParentID)
		}
		if err := checkParent(t, p); err != nil {
			return nil, err
		}
		if tree.IsAncestor(t.ID, p.ID) {
			return nil, domain.NewValidationError("parentId", "%s is a descendant of %s; the move would create a cycle", p.WBSCode, t.WBSCode)
		}
		parent = p
	}

	maxOrder, err := txTasks.MaxChildOrder(ctx, t.ProjectID, t.ParentID)
	if err != nil {
		return nil, storeErr("update task", err)
	}
	t.Order = maxOrder + 1

	oldLevel := t.Level
	if node, ok := tree.ByID[t.ID]; ok {
		oldLevel = node.Level
	}
	t.Level = 0
	if parent != nil {
		t.Level = parent.Level + 1
	}
	delta := t.Level - oldLevel

	var moved []*domain.Task
	for _, did := range tree.Descendants(t.ID) {
		node := tree.ByID[did]
		d := node.Task.Clone()
		d.Level = node.Level + delta
		moved = append(moved, d)
	}
	return moved, nil
}

func (s *scheduleService) DeleteTask(ctx context.Context, id string) (res *DeleteResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"task_id": id}
	defer func() { observe(ctx, s.observer, "delete-task", startedAt, &err, fields) }()

	if id == "" {
		return nil, domain.NewValidationError("id", "is required")
	}

	res = &DeleteResult{}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTasks := repository.NewSQLiteTaskRepo(tx)
		txDeps := repository.NewSQLiteDependencyRepo(tx)

		task, err := txTasks.GetByID(ctx, id)
		if err != nil {
			return lookupErr(err, "task", id)
		}
		all, err := txTasks.ListByProject(ctx, task.ProjectID)
		if err != nil {
			return storeErr("list tasks", err)
		}
		ids := append([]string{id}, gantt.BuildTree(all).Descendants(id)...)
		removed := make(map[string]bool, len(ids))
		for _, tid := range ids {
			removed[tid] = true
		}

		for _, tid := range ids {
			links, err := txDeps.ListByTask(ctx, tid)
			if err != nil {
				return storeErr("list dependencies", err)
			}
			for _, d := range links {
				if d.PredecessorID == tid && !removed[d.SuccessorID] && !slices.Contains(res.Dependents, d.SuccessorID) {
					res.Dependents = append(res.Dependents, d.SuccessorID)
				}
			}
			n, err := txDeps.DeleteByTask(ctx, tid)
			if err != nil {
				return storeErr("delete dependencies", err)
			}
			res.DependencyCount += n
		}
		// Leaves first, so no row disappears through the parent cascade
		// before its own delete runs.
		for i := len(ids) - 1; i >= 0; i-- {
			if err := txTasks.Delete(ctx, ids[i]); err != nil {
				return storeErr("delete task", err)
			}
		}
		res.TaskIDs = ids
		return nil
	})
	if err != nil {
		return nil, err
	}
	fields["tasks"] = len(res.TaskIDs)
	fields["dependencies"] = res.DependencyCount
	fields["dependents"] = len(res.Dependents)
	return res, nil
}

func (s *scheduleService) CreateDependency(ctx context.Context, in CreateDependencyInput) (dep *domain.Dependency, err error) {
	startedAt := time.Now()
	fields := map[string]any{"predecessor_id": in.PredecessorID, "successor_id": in.SuccessorID}
	defer func() { observe(ctx, s.observer, "create-dependency", startedAt, &err, fields) }()

	if in.Type == "" {
		in.Type = domain.FinishToStart
	}
	switch {
	case in.PredecessorID == "":
		return nil, domain.NewValidationError("predecessorId", "is required")
	case in.SuccessorID == "":
		return nil, domain.NewValidationError("successorId", "is required")
	case in.PredecessorID == in.SuccessorID:
		return nil, domain.NewValidationError("successorId", "a task cannot depend on itself")
	case !in.Type.IsValid():
		return nil, domain.NewValidationError("type", "must be one of FS, SS, FF, SF (got %q)", in.Type)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTasks := repository.NewSQLiteTaskRepo(tx)
		txDeps := repository.NewSQLiteDependencyRepo(tx)

		pred, err := txTasks.GetByID(ctx, in.PredecessorID)
		if err != nil {
			return lookupErr(err, "task", in.PredecessorID)
		}
		succ, err := txTasks.GetByID(ctx, in.SuccessorID)
		if err != nil {
			return lookupErr(err, "task", in.SuccessorID)
		}
		if pred.ProjectID != succ.ProjectID {
			return domain.NewValidationError("successorId", "%s belongs to another project", succ.Name)
		}

		if _, err := txDeps.GetByPair(ctx, pred.ID, succ.ID); err == nil {
			return domain.NewValidationError("successorId", "%s already depends on %s", succ.WBSCode, pred.WBSCode)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return storeErr("get dependency", err)
		}

		tasks, err := txTasks.ListByProject(ctx, pred.ProjectID)
		if err != nil {
			return storeErr("list tasks", err)
		}
		existing, err := txDeps.ListByProject(ctx, pred.ProjectID)
		if err != nil {
			return storeErr("list dependencies", err)
		}
		if gantt.NewDependencyGraph(tasks, existing).WouldCreateCycle(pred.ID, succ.ID) {
			return domain.NewValidationError("successorId", "%s already leads to %s; the dependency would create a cycle", succ.WBSCode, pred.WBSCode)
		}

		dep = &domain.Dependency{
			ID:            uuid.New().String(),
			ProjectID:     pred.ProjectID,
			PredecessorID: pred.ID,
			SuccessorID:   succ.ID,
			Type:          in.Type,
			LagDays:       in.LagDays,
			CreatedAt:     s.now(),
		}
		return storeErr("create dependency", txDeps.Create(ctx, dep))
	})
	if err != nil {
		return nil, err
	}
	fields["dependency_id"] = dep.ID
	return dep, nil
}

func (s *scheduleService) DeleteDependency(ctx context.Context, id string) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"dependency_id": id}
	defer func() { observe(ctx, s.observer, "delete-dependency", startedAt, &err, fields) }()

	if id == "" {
		return domain.NewValidationError("id", "is required")
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteDependencyRepo(tx).Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &domain.ReferenceError{Entity: "dependency", ID: id}
			}
			return storeErr("delete dependency", err)
		}
		return nil
	})
}

func (s *scheduleService) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "task", id)
	}
	return t, nil
}

func (s *scheduleService) GetTaskByWBS(ctx context.Context, projectID, code string) (*domain.Task, error) {
	t, err := s.tasks.GetByWBSCode(ctx, projectID, code)
	if err != nil {
		return nil, lookupErr(err, "task", code)
	}
	return t, nil
}

func (s *scheduleService) ListTasks(ctx context.Context, projectID string) ([]*domain.Task, error) {
	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, storeErr("list tasks", err)
	}
	return tasks, nil
}

func (s *scheduleService) GetDependency(ctx context.Context, id string) (*domain.Dependency, error) {
	d, err := s.deps.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "dependency", id)
	}
	return d, nil
}

func (s *scheduleService) ListDependencies(ctx context.Context, projectID string) ([]*domain.Dependency, error) {
	deps, err := s.deps.ListByProject(ctx, projectID)
	if err != nil {
		return nil, storeErr("list dependencies", err)
	}
	return deps, nil
}

func (s *scheduleService) records(ctx context.Context, projectID string) ([]*domain.Task, []*domain.Dependency, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, nil, lookupErr(err, "project", projectID)
	}
	tasks, err := s.ListTasks(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	deps, err := s.ListDependencies(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	return tasks, deps, nil
}

func (s *scheduleService) Board(ctx context.Context, projectID string, req BoardRequest) (board *gantt.Board, err error) {
	startedAt := time.Now()
	fields := map[string]any{"project_id": projectID, "zoom": string(req.Zoom)}
	defer func() { observe(ctx, s.observer, "board", startedAt, &err, fields) }()

	tasks, deps, err := s.records(ctx, projectID)
	if err != nil {
		return nil, err
	}

	expanded := req.Expanded
	if req.ExpandAll {
		expanded = gantt.ExpandAll(tasks)
	}
	board, err = s.engine.Build(gantt.BoardInput{
		Tasks:        tasks,
		Dependencies: deps,
		Zoom:         req.Zoom,
		Expanded:     expanded,
		Weighting:    req.Weighting,
	})
	if err != nil {
		return nil, err
	}

	for _, w := range board.Warnings {
		slog.WarnContext(ctx, "stale reference",
			"project_id", projectID,
			"entity", w.Entity,
			"id", w.ID,
			"ref", w.Ref,
			"reason", w.Reason,
		)
	}
	for _, c := range board.Cycles {
		slog.WarnContext(ctx, "dependency cycle", "project_id", projectID, "tasks", c)
	}

	fields["rows"] = len(board.Rows)
	fields["paths"] = len(board.Paths)
	fields["warnings"] = len(board.Warnings)
	return board, nil
}

func (s *scheduleService) CheckConstraints(ctx context.Context, projectID string) ([]gantt.ConstraintResult, error) {
	tasks, deps, err := s.records(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return gantt.NewDependencyGraph(tasks, deps).CheckConstraints(), nil
}

func validateNewTask(in CreateTaskInput) error {
	if in.ProjectID == "" {
		return domain.NewValidationError("projectId", "is required")
	}
	if in.Name == "" {
		return domain.NewValidationError("name", "is required")
	}
	if !in.Kind.IsValid() {
		return domain.NewValidationError("kind", "must be task, phase or milestone (got %q)", in.Kind)
	}
	if in.PlannedStart == nil {
		return domain.NewValidationError("plannedStart", "is required")
	}
	if in.Kind != domain.KindMilestone {
		if in.PlannedEnd == nil {
			return domain.NewValidationError("plannedEnd", "is required")
		}
		if domain.DaysBetween(*in.PlannedStart, *in.PlannedEnd) < 0 {
			return domain.NewValidationError("plannedEnd", "must not be before plannedStart")
		}
	}
	return validatePercent(in.PercentComplete)
}

func validatePatch(p TaskPatch) error {
	if p.Name != nil && *p.Name == "" {
		return domain.NewValidationError("name", "cannot be empty")
	}
	if p.Kind != nil && !p.Kind.IsValid() {
		return domain.NewValidationError("kind", "must be task, phase or milestone (got %q)", *p.Kind)
	}
	if p.PercentComplete != nil {
		if err := validatePercent(*p.PercentComplete); err != nil {
			return err
		}
	}
	if p.ClearParent && p.ParentID != nil {
		return domain.NewValidationError("parentId", "cannot set and clear the parent at once")
	}
	return nil
}

func validatePercent(p int) error {
	if p < 0 || p > 100 {
		return domain.NewValidationError("percentComplete", "must be between 0 and 100 (got %d)", p)
	}
	return nil
}

// applyPatch returns a copy of t with the patch applied and the task
// invariants re-established.
func applyPatch(t *domain.Task, p TaskPatch, tree *gantt.Tree) (*domain.Task, error) {
	u := t.Clone()
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Description != nil {
		u.Description = *p.Description
	}
	if p.PlannedStart != nil {
		u.PlannedStart = dayPtr(p.PlannedStart)
	}
	if p.PlannedEnd != nil {
		u.PlannedEnd = dayPtr(p.PlannedEnd)
	}
	if p.PercentComplete != nil {
		u.PercentComplete = *p.PercentComplete
	}
	if p.ClearParent {
		u.ParentID = nil
	} else if p.ParentID != nil && *p.ParentID != "" {
		pid := *p.ParentID
		u.ParentID = &pid
	}

	if p.Kind != nil && *p.Kind != t.Kind {
		u.Kind = *p.Kind
		if u.IsMilestone() {
			if node, ok := tree.ByID[t.ID]; ok && len(node.Children) > 0 {
				return nil, domain.NewValidationError("kind", "%s has subtasks and cannot become a milestone", t.WBSCode)
			}
		}
		// Leaving or entering milestone collapses to a single instant
		// unless a new end is given with the patch.
		if (t.IsMilestone() || u.IsMilestone()) && p.PlannedEnd == nil && u.PlannedStart != nil {
			end := *u.PlannedStart
			u.PlannedEnd = &end
		}
	}

	if u.IsMilestone() {
		if u.PlannedStart == nil {
			return nil, domain.NewValidationError("plannedStart", "is required for milestones")
		}
		u.CollapseMilestone()
	} else if u.PlannedStart != nil && u.PlannedEnd != nil && domain.DaysBetween(*u.PlannedStart, *u.PlannedEnd) < 0 {
		return nil, domain.NewValidationError("plannedEnd", "must not be before plannedStart")
	}
	if u.IsPhase() {
		u.PercentComplete = 0
	}
	return u, nil
}

func reparented(before, after *domain.Task) bool {
	switch {
	case before.ParentID == nil && after.ParentID == nil:
		return false
	case before.ParentID == nil || after.ParentID == nil:
		return true
	default:
		return *before.ParentID != *after.ParentID
	}
}

// checkParent rejects parents that would break the hierarchy invariants.
func checkParent(child, parent *domain.Task) error {
	switch {
	case parent.ID == child.ID:
		return domain.NewValidationError("parentId", "a task cannot be its own parent")
	case parent.ProjectID != child.ProjectID:
		return domain.NewValidationError("parentId", "%s belongs to another project", parent.Name)
	case parent.IsMilestone():
		return domain.NewValidationError("parentId", "milestone %s cannot have subtasks", parent.WBSCode)
	}
	return nil
}

func wbsCode(parent *domain.Task, order int) string {
	if parent == nil || parent.WBSCode == "" {
		return strconv.Itoa(order)
	}
	return parent.WBSCode + "." + strconv.Itoa(order)
}
