package gantt

import (
	"time"

	"github.com/alexanderramin/obra/internal/domain"
)

type taskOpt func(*domain.Task)

func newTask(id string, opts ...taskOpt) *domain.Task {
	t := &domain.Task{
		ID:        id,
		ProjectID: "p-1",
		Name:      "Task " + id,
		Kind:      domain.KindTask,
		WBSCode:   id,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func withParent(id string) taskOpt {
	return func(t *domain.Task) { t.ParentID = &id }
}

func withDates(start, end string) taskOpt {
	return func(t *domain.Task) {
		t.PlannedStart = day(start)
		t.PlannedEnd = day(end)
	}
}

func withKind(k domain.TaskKind) taskOpt {
	return func(t *domain.Task) { t.Kind = k }
}

func withOrder(order int, wbs string) taskOpt {
	return func(t *domain.Task) {
		t.Order = order
		t.WBSCode = wbs
	}
}

func withPercent(p int) taskOpt {
	return func(t *domain.Task) { t.PercentComplete = p }
}

func dep(id, pred, succ string) *domain.Dependency {
	return &domain.Dependency{
		ID:            id,
		ProjectID:     "p-1",
		PredecessorID: pred,
		SuccessorID:   succ,
		Type:          domain.FinishToStart,
	}
}

func day(s string) *time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func rowIDs(rows []Row) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.Task.ID
	}
	return ids
}
