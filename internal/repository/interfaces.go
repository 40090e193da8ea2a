package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/obra/internal/domain"
)

// ErrNotFound is wrapped by every single-record lookup that finds no row.
var ErrNotFound = errors.New("not found")

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByShortID(ctx context.Context, shortID string) (*domain.Project, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
}

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	GetByWBSCode(ctx context.Context, projectID, code string) (*domain.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error)
	// MaxChildOrder returns the highest Order among the children of parentID
	// (roots of projectID when parentID is nil), or 0 when there are none.
	MaxChildOrder(ctx context.Context, projectID string, parentID *string) (int, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
}

type DependencyRepo interface {
	Create(ctx context.Context, d *domain.Dependency) error
	GetByID(ctx context.Context, id string) (*domain.Dependency, error)
	GetByPair(ctx context.Context, predecessorID, successorID string) (*domain.Dependency, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Dependency, error)
	// ListByTask returns dependencies with taskID at either end.
	ListByTask(ctx context.Context, taskID string) ([]*domain.Dependency, error)
	Delete(ctx context.Context, id string) error
	// DeleteByTask removes every dependency touching taskID and reports how many.
	DeleteByTask(ctx context.Context, taskID string) (int, error)
}
