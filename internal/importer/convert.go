package importer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/obra/internal/domain"
)

// Plan is a converted import ready for persistence.
type Plan struct {
	Project      *domain.Project
	Tasks        []*domain.Task
	Dependencies []*domain.Dependency
}

// Convert transforms a validated ImportSchema into domain objects ready for persistence.
// Call ValidateImportSchema first; Convert assumes the schema is valid.
//
// Siblings are numbered 1..n in ascending `order`, ties kept in file order,
// and WBS codes are derived from that numbering.
func Convert(schema *ImportSchema) (*Plan, error) {
	now := time.Now().UTC().Truncate(time.Second)

	startDate, err := time.Parse(dateLayout, schema.Project.StartDate)
	if err != nil {
		return nil, fmt.Errorf("parsing start_date: %w", err)
	}

	var targetDate *time.Time
	if schema.Project.TargetDate != nil {
		t, err := time.Parse(dateLayout, *schema.Project.TargetDate)
		if err != nil {
			return nil, fmt.Errorf("parsing target_date: %w", err)
		}
		targetDate = &t
	}

	project := &domain.Project{
		ID:         uuid.New().String(),
		ShortID:    strings.ToUpper(schema.Project.ShortID),
		Name:       schema.Project.Name,
		Client:     schema.Project.Client,
		Location:   schema.Project.Location,
		StartDate:  startDate,
		TargetDate: targetDate,
		Status:     domain.ProjectActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	refMap := make(map[string]*domain.Task, len(schema.Tasks))
	children := make(map[string][]int) // parent ref ("" for roots) -> task indexes
	tasks := make([]*domain.Task, 0, len(schema.Tasks))

	for i, ti := range schema.Tasks {
		parentRef := ""
		var parentID *string
		if ti.ParentRef != nil && *ti.ParentRef != "" {
			parent, ok := refMap[*ti.ParentRef]
			if !ok {
				return nil, fmt.Errorf("parent_ref %q not found for task %q", *ti.ParentRef, ti.Ref)
			}
			parentRef = *ti.ParentRef
			pid := parent.ID
			parentID = &pid
		}

		kind := domain.TaskKind(ti.Kind)
		if kind == "" {
			kind = domain.KindTask
		}

		start, err := parseOptionalDate("planned_start", ti.PlannedStart)
		if err != nil {
			return nil, err
		}
		end, err := parseOptionalDate("planned_end", ti.PlannedEnd)
		if err != nil {
			return nil, err
		}

		task := &domain.Task{
			ID:              uuid.New().String(),
			ProjectID:       project.ID,
			ParentID:        parentID,
			Name:            ti.Name,
			Description:     ti.Description,
			Kind:            kind,
			PlannedStart:    start,
			PlannedEnd:      end,
			PercentComplete: ti.PercentComplete,
			Order:           ti.Order,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if task.IsPhase() {
			task.PercentComplete = 0
		}
		task.CollapseMilestone()

		refMap[ti.Ref] = task
		children[parentRef] = append(children[parentRef], i)
		tasks = append(tasks, task)
	}

	var number func(parentRef, prefix string, level int)
	number = func(parentRef, prefix string, level int) {
		idx := children[parentRef]
		sort.SliceStable(idx, func(a, b int) bool {
			return schema.Tasks[idx[a]].Order < schema.Tasks[idx[b]].Order
		})
		for n, i := range idx {
			t := tasks[i]
			t.Order = n + 1
			t.Level = level
			t.WBSCode = prefix + strconv.Itoa(t.Order)
			if ref := schema.Tasks[i].Ref; ref != "" {
				number(ref, t.WBSCode+".", level+1)
			}
		}
	}
	number("", "", 0)

	deps := make([]*domain.Dependency, 0, len(schema.Dependencies))
	for _, d := range schema.Dependencies {
		pred, ok := refMap[d.PredecessorRef]
		if !ok {
			return nil, fmt.Errorf("predecessor_ref %q not found", d.PredecessorRef)
		}
		succ, ok := refMap[d.SuccessorRef]
		if !ok {
			return nil, fmt.Errorf("successor_ref %q not found", d.SuccessorRef)
		}
		typ := domain.DependencyType(d.Type)
		if typ == "" {
			typ = domain.FinishToStart
		}
		deps = append(deps, &domain.Dependency{
			ID:            uuid.New().String(),
			ProjectID:     project.ID,
			PredecessorID: pred.ID,
			SuccessorID:   succ.ID,
			Type:          typ,
			LagDays:       d.LagDays,
			CreatedAt:     now,
		})
	}

	return &Plan{
		Project:      project,
		Tasks:        tasks,
		Dependencies: deps,
	}, nil
}
