package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/obra/internal/domain"
	"github.com/alexanderramin/obra/internal/repository"
)

type projectService struct {
	projects repository.ProjectRepo
	observer UseCaseObserver
}

func NewProjectService(projects repository.ProjectRepo, observers ...UseCaseObserver) ProjectService {
	return &projectService{projects: projects, observer: useCaseObserverOrNoop(observers)}
}

func (s *projectService) Create(ctx context.Context, p *domain.Project) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"short_id": p.ShortID}
	defer func() { observe(ctx, s.observer, "create-project", startedAt, &err, fields) }()

	p.ShortID = strings.ToUpper(strings.TrimSpace(p.ShortID))
	if err := p.Validate(); err != nil {
		return err
	}
	if err := ensureShortIDFree(ctx, s.projects, p); err != nil {
		return err
	}

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := nowUTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = domain.ProjectActive
	}
	fields["project_id"] = p.ID
	return storeErr("create project", s.projects.Create(ctx, p))
}

func (s *projectService) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "project", id)
	}
	return p, nil
}

func (s *projectService) Resolve(ctx context.Context, ref string) (*domain.Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.NewValidationError("project", "is required")
	}
	p, err := s.projects.GetByShortID(ctx, strings.ToUpper(ref))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeErr("get project", err)
	}
	return s.GetByID(ctx, ref)
}

func (s *projectService) List(ctx context.Context, includeArchived bool) ([]*domain.Project, error) {
	projects, err := s.projects.List(ctx, includeArchived)
	if err != nil {
		return nil, storeErr("list projects", err)
	}
	return projects, nil
}

func (s *projectService) Update(ctx context.Context, p *domain.Project) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"project_id": p.ID}
	defer func() { observe(ctx, s.observer, "update-project", startedAt, &err, fields) }()

	p.ShortID = strings.ToUpper(strings.TrimSpace(p.ShortID))
	if err := p.Validate(); err != nil {
		return err
	}
	if err := ensureShortIDFree(ctx, s.projects, p); err != nil {
		return err
	}
	p.UpdatedAt = nowUTC()
	if err := s.projects.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &domain.ReferenceError{Entity: "project", ID: p.ID}
		}
		return storeErr("update project", err)
	}
	return nil
}

// Delete removes the project together with its tasks and dependencies.
func (s *projectService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"project_id": id}
	defer func() { observe(ctx, s.observer, "delete-project", startedAt, &err, fields) }()

	if err := s.projects.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &domain.ReferenceError{Entity: "project", ID: id}
		}
		return storeErr("delete project", err)
	}
	return nil
}

func ensureShortIDFree(ctx context.Context, projects repository.ProjectRepo, p *domain.Project) error {
	existing, err := projects.GetByShortID(ctx, p.ShortID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return storeErr("get project", err)
	case existing.ID != p.ID:
		return domain.NewValidationError("shortId", "%s is already used by %q", p.ShortID, existing.Name)
	}
	return nil
}
