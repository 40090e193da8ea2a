package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/obra/internal/domain"
	"github.com/sahilm/fuzzy"
)

// minIDPrefix is the shortest id prefix accepted as a task reference.
const minIDPrefix = 4

func resolveProject(ctx context.Context, app *App, ref string) (*domain.Project, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, fmt.Errorf("project is required (use --project)")
	}
	return app.Projects.Resolve(ctx, ref)
}

// resolveTask finds a task of the project by reference, which can be:
//   - a WBS code ("1.2")
//   - a full UUID or a UUID prefix of at least 4 characters
//   - a task name, matched exactly or fuzzily
func resolveTask(ctx context.Context, app *App, projectID, ref string) (*domain.Task, error) {
	tasks, err := app.Schedule.ListTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return matchTask(tasks, ref)
}

func matchTask(tasks []*domain.Task, ref string) (*domain.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("task reference is required")
	}

	for _, t := range tasks {
		if t.WBSCode == ref {
			return t, nil
		}
	}
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
	}

	if len(ref) >= minIDPrefix {
		var prefixed []*domain.Task
		for _, t := range tasks {
			if strings.HasPrefix(t.ID, ref) {
				prefixed = append(prefixed, t)
			}
		}
		switch len(prefixed) {
		case 0:
		case 1:
			return prefixed[0], nil
		default:
			return nil, fmt.Errorf("task ID prefix %q is ambiguous (%d matches)", ref, len(prefixed))
		}
	}

	var exact []*domain.Task
	for _, t := range tasks {
		if strings.EqualFold(t.Name, ref) {
			exact = append(exact, t)
		}
	}
	switch len(exact) {
	case 0:
	case 1:
		return exact[0], nil
	default:
		return nil, ambiguousTask(ref, exact)
	}

	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.Name
	}
	matches := fuzzy.Find(ref, names)
	switch {
	case len(matches) == 0:
		return nil, fmt.Errorf("task not found: %q", ref)
	case len(matches) == 1 || matches[0].Score > matches[1].Score:
		return tasks[matches[0].Index], nil
	}

	var tied []*domain.Task
	for _, m := range matches {
		if m.Score == matches[0].Score {
			tied = append(tied, tasks[m.Index])
		}
	}
	return nil, ambiguousTask(ref, tied)
}

func ambiguousTask(ref string, candidates []*domain.Task) error {
	labels := make([]string, 0, len(candidates))
	for _, t := range candidates {
		labels = append(labels, t.WBSCode+" "+t.Name)
	}
	return fmt.Errorf("task %q is ambiguous: %s (use the WBS code)", ref, strings.Join(labels, ", "))
}
