package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskmill/taskmill/pkg/models"
	"github.com/taskmill/taskmill/pkg/persistence"
)

// WorkflowRepository handles workflow-related database operations. Triggers
// and actions are embedded JSONB documents; counters are updated with atomic
// single-statement increments.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

const workflowColumns = `
	id
  , name
  , description
  , status
  , owner
  , max_retries
  , execution_count
  , triggers
  , actions
  , created_at
  , updated_at
  , deleted_at
`

func (r *WorkflowRepository) List(ctx context.Context) ([]*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM workflows WHERE deleted_at IS NULL ORDER BY id ASC`

	return r.queryWorkflows(ctx, query)
}

func (r *WorkflowRepository) ListByStatus(ctx context.Context, status models.WorkflowStatus) ([]*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM workflows WHERE deleted_at IS NULL AND status = $1 ORDER BY id ASC`

	return r.queryWorkflows(ctx, query, string(status))
}

func (r *WorkflowRepository) queryWorkflows(ctx context.Context, query string, args ...any) ([]*models.Workflow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return workflows, nil
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM workflows WHERE id = $1 AND deleted_at IS NULL`

	row := r.db.QueryRowContext(ctx, query, id)

	workflow, err := scanWorkflow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	return workflow, nil
}

func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	triggers, err := json.Marshal(workflow.Triggers)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	actions, err := json.Marshal(workflow.Actions)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	query := `
		INSERT INTO workflows (id, name, description, status, owner, max_retries, execution_count, triggers, actions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			owner = EXCLUDED.owner,
			max_retries = EXCLUDED.max_retries,
			triggers = EXCLUDED.triggers,
			actions = EXCLUDED.actions,
			updated_at = NOW()
	`

	createdAt := workflow.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.Name,
		workflow.Description,
		string(workflow.Status),
		workflow.Owner,
		workflow.MaxRetries,
		workflow.ExecutionCount,
		triggers,
		actions,
		createdAt,
	)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

// Delete soft deletes a workflow by setting the deleted_at timestamp.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE workflows SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	if affected == 0 {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

// IncrementExecutionCount bumps the counter in a single atomic statement.
func (r *WorkflowRepository) IncrementExecutionCount(ctx context.Context, workflowID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE workflows SET execution_count = execution_count + 1 WHERE id = $1 AND deleted_at IS NULL`, workflowID)
	if err != nil {
		return persistence.NewWorkflowError("IncrementExecutionCount", workflowID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewWorkflowError("IncrementExecutionCount", workflowID, err)
	}

	if affected == 0 {
		return persistence.NewWorkflowError("IncrementExecutionCount", workflowID, persistence.ErrWorkflowNotFound)
	}

	return nil
}

// IncrementTriggerCount bumps a trigger's counter inside the JSONB document
// with a single atomic statement.
func (r *WorkflowRepository) IncrementTriggerCount(ctx context.Context, workflowID, triggerID string) error {
	query := `
		UPDATE workflows
		SET triggers = (
			SELECT jsonb_agg(
				CASE
					WHEN trigger->>'id' = $2
					THEN jsonb_set(trigger, '{trigger_count}', to_jsonb(COALESCE((trigger->>'trigger_count')::bigint, 0) + 1))
					ELSE trigger
				END
			)
			FROM jsonb_array_elements(triggers) AS trigger
		)
		WHERE id = $1 AND deleted_at IS NULL AND triggers @> jsonb_build_array(jsonb_build_object('id', $2::text))
	`

	result, err := r.db.ExecContext(ctx, query, workflowID, triggerID)
	if err != nil {
		return persistence.NewWorkflowError("IncrementTriggerCount", workflowID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewWorkflowError("IncrementTriggerCount", workflowID, err)
	}

	if affected == 0 {
		return persistence.NewWorkflowError("IncrementTriggerCount", workflowID, persistence.ErrTriggerNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow     models.Workflow
		status       string
		triggersJSON []byte
		actionsJSON  []byte
		deletedAt    sql.NullTime
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.Name,
		&workflow.Description,
		&status,
		&workflow.Owner,
		&workflow.MaxRetries,
		&workflow.ExecutionCount,
		&triggersJSON,
		&actionsJSON,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	workflow.Status = models.WorkflowStatus(status)

	if deletedAt.Valid {
		workflow.DeletedAt = &deletedAt.Time
	}

	err = json.Unmarshal(triggersJSON, &workflow.Triggers)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal triggers: %w", err)
	}

	err = json.Unmarshal(actionsJSON, &workflow.Actions)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal actions: %w", err)
	}

	return &workflow, nil
}
