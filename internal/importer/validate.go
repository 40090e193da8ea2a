package importer

import (
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/obra/internal/domain"
)

const dateLayout = "2006-01-02"

// ValidateImportSchema checks the import schema for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateImportSchema(schema *ImportSchema) []error {
	var errs []error

	errs = append(errs, validateProject(&schema.Project)...)

	kinds := make(map[string]domain.TaskKind)
	errs = append(errs, validateTasks(schema.Tasks, kinds)...)

	errs = append(errs, validateDependencies(schema.Dependencies, kinds)...)

	return errs
}

func validateProject(p *ProjectImport) []error {
	var errs []error

	if p.ShortID == "" {
		errs = append(errs, fmt.Errorf("project.short_id is required"))
	}
	if p.Name == "" {
		errs = append(errs, fmt.Errorf("project.name is required"))
	}

	var start time.Time
	if p.StartDate == "" {
		errs = append(errs, fmt.Errorf("project.start_date is required"))
	} else if t, err := time.Parse(dateLayout, p.StartDate); err != nil {
		errs = append(errs, fmt.Errorf("project.start_date: invalid date format %q (expected YYYY-MM-DD)", p.StartDate))
	} else {
		start = t
	}

	if p.TargetDate != nil {
		target, err := time.Parse(dateLayout, *p.TargetDate)
		if err != nil {
			errs = append(errs, fmt.Errorf("project.target_date: invalid date format %q (expected YYYY-MM-DD)", *p.TargetDate))
		} else if !start.IsZero() && target.Before(start) {
			errs = append(errs, fmt.Errorf("project.target_date %q must not be before start_date %q", *p.TargetDate, p.StartDate))
		}
	}

	return errs
}

func validateTasks(tasks []TaskImport, kinds map[string]domain.TaskKind) []error {
	var errs []error

	for i, t := range tasks {
		prefix := fmt.Sprintf("tasks[%d]", i)

		kind := domain.TaskKind(t.Kind)
		if t.Kind == "" {
			kind = domain.KindTask
		} else if !kind.IsValid() {
			errs = append(errs, fmt.Errorf("%s.kind: invalid value %q", prefix, t.Kind))
		}

		if t.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}

		if t.ParentRef != nil && *t.ParentRef != "" {
			parentKind, ok := kinds[*t.ParentRef]
			switch {
			case *t.ParentRef == t.Ref:
				errs = append(errs, fmt.Errorf("%s.parent_ref: task cannot be its own parent", prefix))
			case !ok:
				errs = append(errs, fmt.Errorf("%s.parent_ref: ref %q not found (must appear earlier in tasks list)", prefix, *t.ParentRef))
			case parentKind == domain.KindMilestone:
				errs = append(errs, fmt.Errorf("%s.parent_ref: milestone %q cannot have children", prefix, *t.ParentRef))
			}
		}

		start, startErr := parseOptionalDate(prefix+".planned_start", t.PlannedStart)
		end, endErr := parseOptionalDate(prefix+".planned_end", t.PlannedEnd)
		if startErr != nil {
			errs = append(errs, startErr)
		}
		if endErr != nil {
			errs = append(errs, endErr)
		}
		if start != nil && end != nil && end.Before(*start) && kind != domain.KindMilestone {
			errs = append(errs, fmt.Errorf("%s.planned_end %q must not be before planned_start %q", prefix, *t.PlannedEnd, *t.PlannedStart))
		}
		if kind == domain.KindMilestone && start == nil && startErr == nil {
			errs = append(errs, fmt.Errorf("%s.planned_start is required for milestones", prefix))
		}

		if t.PercentComplete < 0 || t.PercentComplete > 100 {
			errs = append(errs, fmt.Errorf("%s.percent_complete must be between 0 and 100, got %d", prefix, t.PercentComplete))
		}

		// Register after the parent check so a task never resolves itself.
		if t.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if _, dup := kinds[t.Ref]; dup {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, t.Ref))
		} else {
			kinds[t.Ref] = kind
		}
	}

	return errs
}

func validateDependencies(deps []DependencyImport, refs map[string]domain.TaskKind) []error {
	var errs []error
	seen := make(map[[2]string]int)

	for i, d := range deps {
		prefix := fmt.Sprintf("dependencies[%d]", i)

		if d.PredecessorRef == "" {
			errs = append(errs, fmt.Errorf("%s.predecessor_ref is required", prefix))
		} else if _, ok := refs[d.PredecessorRef]; !ok {
			errs = append(errs, fmt.Errorf("%s.predecessor_ref: ref %q not found in tasks", prefix, d.PredecessorRef))
		}

		if d.SuccessorRef == "" {
			errs = append(errs, fmt.Errorf("%s.successor_ref is required", prefix))
		} else if _, ok := refs[d.SuccessorRef]; !ok {
			errs = append(errs, fmt.Errorf("%s.successor_ref: ref %q not found in tasks", prefix, d.SuccessorRef))
		}

		if d.Type != "" && !domain.DependencyType(d.Type).IsValid() {
			errs = append(errs, fmt.Errorf("%s.type: invalid value %q (expected FS, SS, FF or SF)", prefix, d.Type))
		}

		if d.PredecessorRef == "" || d.SuccessorRef == "" {
			continue
		}
		if d.PredecessorRef == d.SuccessorRef {
			errs = append(errs, fmt.Errorf("%s: self-dependency (predecessor_ref == successor_ref == %q)", prefix, d.PredecessorRef))
			continue
		}
		pair := [2]string{d.PredecessorRef, d.SuccessorRef}
		if first, dup := seen[pair]; dup {
			errs = append(errs, fmt.Errorf("%s: duplicate of dependencies[%d] (%q -> %q)", prefix, first, d.PredecessorRef, d.SuccessorRef))
			continue
		}
		seen[pair] = i
	}

	if len(deps) > 1 {
		errs = append(errs, detectCycles(deps)...)
	}

	return errs
}

func detectCycles(deps []DependencyImport) []error {
	graph := make(map[string][]string)
	nodes := make(map[string]bool)
	for _, d := range deps {
		if d.PredecessorRef != "" && d.SuccessorRef != "" && d.PredecessorRef != d.SuccessorRef {
			graph[d.PredecessorRef] = append(graph[d.PredecessorRef], d.SuccessorRef)
			nodes[d.PredecessorRef] = true
			nodes[d.SuccessorRef] = true
		}
	}

	const (
		white = 0 // unvisited
		gray  = 1 // in current path
		black = 2 // fully processed
	)

	color := make(map[string]int)
	var errs []error

	var visit func(node string) bool
	visit = func(node string) bool {
		color[node] = gray
		for _, neighbor := range graph[node] {
			if color[neighbor] == gray {
				errs = append(errs, fmt.Errorf("circular dependency detected involving %q and %q", node, neighbor))
				return true
			}
			if color[neighbor] == white {
				if visit(neighbor) {
					return true
				}
			}
		}
		color[node] = black
		return false
	}

	ordered := make([]string, 0, len(nodes))
	for node := range nodes {
		ordered = append(ordered, node)
	}
	sort.Strings(ordered)

	for _, node := range ordered {
		if color[node] == white {
			visit(node)
		}
	}

	return errs
}

func parseOptionalDate(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid date format %q (expected YYYY-MM-DD)", field, *s)
	}
	return &t, nil
}
