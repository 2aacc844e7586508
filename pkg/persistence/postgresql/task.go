package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/taskmill/taskmill/pkg/models"
	"github.com/taskmill/taskmill/pkg/persistence"
)

// TaskRepository handles task-related database operations.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `
	id
  , project_id
  , title
  , description
  , status
  , priority
  , assignee
  , due_date
  , created_at
  , updated_at
`

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrTaskNotFound
		}

		return nil, fmt.Errorf("failed to get task %s: %w", id, err)
	}

	return task, nil
}

func (r *TaskRepository) Save(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (id, project_id, title, description, status, priority, assignee, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (id) DO UPDATE SET
			project_id = EXCLUDED.project_id,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			priority = EXCLUDED.priority,
			assignee = EXCLUDED.assignee,
			due_date = EXCLUDED.due_date,
			updated_at = NOW()
	`

	createdAt := task.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.ProjectID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.Assignee,
		task.DueDate,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save task %s: %w", task.ID, err)
	}

	return nil
}

// ListDueBetween returns tasks whose due date falls inside the inclusive
// window, ordered by due date.
func (r *TaskRepository) ListDueBetween(ctx context.Context, from, until time.Time) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE due_date IS NOT NULL AND due_date >= $1 AND due_date <= $2
		ORDER BY due_date ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, from, until)
	if err != nil {
		return nil, fmt.Errorf("failed to query due tasks: %w", err)
	}

	defer func() { _ = rows.Close() }()

	tasks := make([]*models.Task, 0)

	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		task    models.Task
		dueDate sql.NullTime
	)

	err := row.Scan(
		&task.ID,
		&task.ProjectID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.Assignee,
		&dueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}

	return &task, nil
}
