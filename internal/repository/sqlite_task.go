package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/obra/internal/db"
	"github.com/alexanderramin/obra/internal/domain"
)

// taskColumns is the canonical SELECT column list for tasks.
const taskColumns = `id, project_id, parent_id, wbs_code, name, description, kind,
		planned_start, planned_end, percent_complete, order_index, level,
		created_at, updated_at`

// taskOrder is the sibling order used by every listing.
const taskOrder = `ORDER BY order_index, wbs_code, id`

// SQLiteTaskRepo implements TaskRepo using a SQLite database.
type SQLiteTaskRepo struct {
	db db.DBTX
}

// NewSQLiteTaskRepo creates a new SQLiteTaskRepo.
func NewSQLiteTaskRepo(conn db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: conn}
}

func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.ProjectID,
		nullableString(t.ParentID),
		t.WBSCode,
		t.Name,
		t.Description,
		string(t.Kind),
		nullableTimeToString(t.PlannedStart, timeLayout),
		nullableTimeToString(t.PlannedEnd, timeLayout),
		t.PercentComplete,
		t.Order,
		t.Level,
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	return r.scanTask(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteTaskRepo) GetByWBSCode(ctx context.Context, projectID, code string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = ? AND wbs_code = ?
		ORDER BY created_at LIMIT 1`
	return r.scanTask(r.db.QueryRowContext(ctx, query, projectID, code))
}

func (r *SQLiteTaskRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = ? ` + taskOrder
	return r.queryTasks(ctx, query, projectID)
}

func (r *SQLiteTaskRepo) MaxChildOrder(ctx context.Context, projectID string, parentID *string) (int, error) {
	var (
		maxOrder sql.NullInt64
		err      error
	)
	if parentID == nil || *parentID == "" {
		err = r.db.QueryRowContext(ctx,
			`SELECT MAX(order_index) FROM tasks WHERE project_id = ? AND parent_id IS NULL`, projectID).Scan(&maxOrder)
	} else {
		err = r.db.QueryRowContext(ctx,
			`SELECT MAX(order_index) FROM tasks WHERE parent_id = ?`, *parentID).Scan(&maxOrder)
	}
	if err != nil {
		return 0, fmt.Errorf("computing max sibling order: %w", err)
	}
	return int(maxOrder.Int64), nil
}

func (r *SQLiteTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	query := `UPDATE tasks SET parent_id = ?, wbs_code = ?, name = ?, description = ?, kind = ?,
		planned_start = ?, planned_end = ?, percent_complete = ?, order_index = ?, level = ?,
		updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableString(t.ParentID),
		t.WBSCode,
		t.Name,
		t.Description,
		string(t.Kind),
		nullableTimeToString(t.PlannedStart, timeLayout),
		nullableTimeToString(t.PlannedEnd, timeLayout),
		t.PercentComplete,
		t.Order,
		t.Level,
		formatTime(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	return requireAffected(res, "task")
}

func (r *SQLiteTaskRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return requireAffected(res, "task")
}

func (r *SQLiteTaskRepo) queryTasks(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := r.scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

func (r *SQLiteTaskRepo) scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var kindStr, createdAtStr, updatedAtStr string
	var parentID, startStr, endStr sql.NullString

	err := row.Scan(
		&t.ID, &t.ProjectID, &parentID, &t.WBSCode, &t.Name, &t.Description, &kindStr,
		&startStr, &endStr, &t.PercentComplete, &t.Order, &t.Level,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	if parentID.Valid {
		t.ParentID = &parentID.String
	}
	t.Kind = domain.TaskKind(kindStr)
	t.PlannedStart = parseNullableTime(startStr, timeLayout)
	t.PlannedEnd = parseNullableTime(endStr, timeLayout)
	t.CreatedAt = parseTime(createdAtStr)
	t.UpdatedAt = parseTime(updatedAtStr)
	return &t, nil
}
