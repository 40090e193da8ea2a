package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/obra/internal/domain"
	"github.com/google/uuid"
)

var testShortIDCounter atomic.Int64

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// Project options
type ProjectOption func(*domain.Project)

func WithTargetDate(d time.Time) ProjectOption {
	return func(p *domain.Project) {
		p.TargetDate = &d
	}
}

func WithProjectStatus(s domain.ProjectStatus) ProjectOption {
	return func(p *domain.Project) {
		p.Status = s
	}
}

func WithShortID(id string) ProjectOption {
	return func(p *domain.Project) {
		p.ShortID = id
	}
}

func WithClient(client, location string) ProjectOption {
	return func(p *domain.Project) {
		p.Client = client
		p.Location = location
	}
}

func defaultShortID(name string) string {
	upper := strings.ToUpper(name)
	var letters []byte
	for i := 0; i < len(upper) && len(letters) < 3; i++ {
		if upper[i] >= 'A' && upper[i] <= 'Z' {
			letters = append(letters, upper[i])
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	n := testShortIDCounter.Add(1)
	return fmt.Sprintf("%s%02d", string(letters), n)
}

func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	ts := now()
	p := &domain.Project{
		ID:        uuid.New().String(),
		ShortID:   defaultShortID(name),
		Name:      name,
		Client:    "Constructora Test",
		StartDate: Date(2024, time.January, 1),
		Status:    domain.ProjectActive,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Task options
type TaskOption func(*domain.Task)

func WithParent(parent *domain.Task) TaskOption {
	return func(t *domain.Task) {
		id := parent.ID
		t.ParentID = &id
		t.Level = parent.Level + 1
	}
}

func WithParentID(id string) TaskOption {
	return func(t *domain.Task) {
		t.ParentID = &id
	}
}

func WithKind(k domain.TaskKind) TaskOption {
	return func(t *domain.Task) {
		t.Kind = k
	}
}

func WithDates(start, end time.Time) TaskOption {
	return func(t *domain.Task) {
		t.PlannedStart = &start
		t.PlannedEnd = &end
	}
}

func WithPercent(p int) TaskOption {
	return func(t *domain.Task) {
		t.PercentComplete = p
	}
}

func WithOrder(order int, wbs string) TaskOption {
	return func(t *domain.Task) {
		t.Order = order
		t.WBSCode = wbs
	}
}

func WithDescription(d string) TaskOption {
	return func(t *domain.Task) {
		t.Description = d
	}
}

func NewTestTask(projectID, name string, opts ...TaskOption) *domain.Task {
	ts := now()
	t := &domain.Task{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      name,
		Kind:      domain.KindTask,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Dependency options
type DependencyOption func(*domain.Dependency)

func WithDependencyType(typ domain.DependencyType) DependencyOption {
	return func(d *domain.Dependency) {
		d.Type = typ
	}
}

func WithLag(days int) DependencyOption {
	return func(d *domain.Dependency) {
		d.LagDays = days
	}
}

func NewTestDependency(projectID, predecessorID, successorID string, opts ...DependencyOption) *domain.Dependency {
	d := &domain.Dependency{
		ID:            uuid.New().String(),
		ProjectID:     projectID,
		PredecessorID: predecessorID,
		SuccessorID:   successorID,
		Type:          domain.FinishToStart,
		CreatedAt:     now(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}
