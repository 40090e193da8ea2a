package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/obra/internal/db"
	"github.com/alexanderramin/obra/internal/importer"
	"github.com/alexanderramin/obra/internal/repository"
)

type importService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

// NewImportService builds an importer that writes a whole project in one
// transaction.
func NewImportService(uow db.UnitOfWork, observers ...UseCaseObserver) ImportService {
	return &importService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *importService) ImportProject(ctx context.Context, filePath string) (*ImportResult, error) {
	schema, err := importer.LoadImportSchema(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.importSchema(ctx, schema)
}

func (s *importService) ImportProjectFromSchema(ctx context.Context, schema *importer.ImportSchema) (*ImportResult, error) {
	return s.importSchema(ctx, schema)
}

func (s *importService) importSchema(ctx context.Context, schema *importer.ImportSchema) (res *ImportResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"short_id": schema.Project.ShortID}
	defer func() { observe(ctx, s.observer, "import-project", startedAt, &err, fields) }()

	if errs := importer.ValidateImportSchema(schema); len(errs) > 0 {
		fields["validation_errors"] = len(errs)
		return nil, formatValidationErrors(errs)
	}

	plan, err := importer.Convert(schema)
	if err != nil {
		return nil, fmt.Errorf("converting import schema: %w", err)
	}
	if err := plan.Project.Validate(); err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txProjects := repository.NewSQLiteProjectRepo(tx)
		txTasks := repository.NewSQLiteTaskRepo(tx)
		txDeps := repository.NewSQLiteDependencyRepo(tx)

		if err := ensureShortIDFree(ctx, txProjects, plan.Project); err != nil {
			return err
		}
		if err := txProjects.Create(ctx, plan.Project); err != nil {
			return storeErr("create project", err)
		}
		for _, t := range plan.Tasks {
			if err := txTasks.Create(ctx, t); err != nil {
				return storeErr(fmt.Sprintf("create task %q", t.Name), err)
			}
		}
		for _, d := range plan.Dependencies {
			if err := txDeps.Create(ctx, d); err != nil {
				return storeErr("create dependency", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields["project_id"] = plan.Project.ID
	fields["tasks"] = len(plan.Tasks)
	fields["dependencies"] = len(plan.Dependencies)
	return &ImportResult{
		Project:         plan.Project,
		TaskCount:       len(plan.Tasks),
		DependencyCount: len(plan.Dependencies),
	}, nil
}
