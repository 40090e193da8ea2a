package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/obra/internal/db"
	"github.com/alexanderramin/obra/internal/domain"
)

const dependencyColumns = `id, project_id, predecessor_id, successor_id, type, lag_days, created_at`

// SQLiteDependencyRepo implements DependencyRepo using a SQLite database.
type SQLiteDependencyRepo struct {
	db db.DBTX
}

// NewSQLiteDependencyRepo creates a new SQLiteDependencyRepo.
func NewSQLiteDependencyRepo(conn db.DBTX) *SQLiteDependencyRepo {
	return &SQLiteDependencyRepo{db: conn}
}

func (r *SQLiteDependencyRepo) Create(ctx context.Context, d *domain.Dependency) error {
	query := `INSERT INTO dependencies (` + dependencyColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		d.ID,
		d.ProjectID,
		d.PredecessorID,
		d.SuccessorID,
		string(d.Type),
		d.LagDays,
		formatTime(d.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting dependency: %w", err)
	}
	return nil
}

func (r *SQLiteDependencyRepo) GetByID(ctx context.Context, id string) (*domain.Dependency, error) {
	query := `SELECT ` + dependencyColumns + ` FROM dependencies WHERE id = ?`
	return r.scanDependency(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteDependencyRepo) GetByPair(ctx context.Context, predecessorID, successorID string) (*domain.Dependency, error) {
	query := `SELECT ` + dependencyColumns + ` FROM dependencies WHERE predecessor_id = ? AND successor_id = ?`
	return r.scanDependency(r.db.QueryRowContext(ctx, query, predecessorID, successorID))
}

func (r *SQLiteDependencyRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Dependency, error) {
	query := `SELECT ` + dependencyColumns + ` FROM dependencies WHERE project_id = ? ORDER BY created_at, id`
	return r.queryDependencies(ctx, query, projectID)
}

func (r *SQLiteDependencyRepo) ListByTask(ctx context.Context, taskID string) ([]*domain.Dependency, error) {
	query := `SELECT ` + dependencyColumns + ` FROM dependencies
		WHERE predecessor_id = ? OR successor_id = ? ORDER BY created_at, id`
	return r.queryDependencies(ctx, query, taskID, taskID)
}

func (r *SQLiteDependencyRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dependencies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting dependency: %w", err)
	}
	return requireAffected(res, "dependency")
}

func (r *SQLiteDependencyRepo) DeleteByTask(ctx context.Context, taskID string) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM dependencies WHERE predecessor_id = ? OR successor_id = ?`, taskID, taskID)
	if err != nil {
		return 0, fmt.Errorf("deleting dependencies of task %s: %w", taskID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return int(n), nil
}

func (r *SQLiteDependencyRepo) queryDependencies(ctx context.Context, query string, args ...any) ([]*domain.Dependency, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing dependencies: %w", err)
	}
	defer rows.Close()

	var deps []*domain.Dependency
	for rows.Next() {
		d, err := r.scanDependency(rows)
		if err != nil {
			return nil, err
		}
		deps = append(deps, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dependencies: %w", err)
	}
	return deps, nil
}

func (r *SQLiteDependencyRepo) scanDependency(row rowScanner) (*domain.Dependency, error) {
	var d domain.Dependency
	var typeStr, createdAtStr string

	err := row.Scan(&d.ID, &d.ProjectID, &d.PredecessorID, &d.SuccessorID, &typeStr, &d.LagDays, &createdAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("dependency: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning dependency: %w", err)
	}
	d.Type = domain.DependencyType(typeStr)
	d.CreatedAt = parseTime(createdAtStr)
	return &d, nil
}
