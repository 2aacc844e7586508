package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/taskmill/taskmill/pkg/models"
	"github.com/taskmill/taskmill/pkg/persistence"
)

// ExecutionRepository stores the append-only execution audit records.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

const executionColumns = `
	id
  , workflow_id
  , trigger_id
  , triggered_by
  , status
  , error
  , context_snapshot
  , results
  , max_attempts
  , created_at
  , started_at
  , finished_at
`

func (r *ExecutionRepository) Create(ctx context.Context, execution *models.WorkflowExecution) error {
	snapshot, results, err := marshalExecutionPayloads(execution)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO workflow_executions
			(id, workflow_id, trigger_id, triggered_by, status, error, context_snapshot, results, max_attempts, created_at, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.db.ExecContext(ctx, query,
		execution.ID,
		execution.WorkflowID,
		execution.TriggerID,
		execution.TriggeredBy,
		string(execution.Status),
		execution.Error,
		snapshot,
		results,
		execution.MaxAttempts,
		execution.CreatedAt,
		execution.StartedAt,
		execution.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert execution %s: %w", execution.ID, err)
	}

	return nil
}

// Save persists a state transition. The WHERE clause refuses to rewrite
// records that already reached a terminal state, keeping the audit log
// append-only.
func (r *ExecutionRepository) Save(ctx context.Context, execution *models.WorkflowExecution) error {
	snapshot, results, err := marshalExecutionPayloads(execution)
	if err != nil {
		return err
	}

	query := `
		UPDATE workflow_executions
		SET status = $2, error = $3, context_snapshot = $4, results = $5, started_at = $6, finished_at = $7
		WHERE id = $1 AND status NOT IN ('completed', 'failed')
	`

	result, err := r.db.ExecContext(ctx, query,
		execution.ID,
		string(execution.Status),
		execution.Error,
		snapshot,
		results,
		execution.StartedAt,
		execution.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update execution %s: %w", execution.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update execution %s: %w", execution.ID, err)
	}

	if affected == 0 {
		stored, err := r.GetByID(ctx, execution.ID)
		if err != nil {
			return err
		}

		if stored.IsTerminal() {
			return persistence.ErrExecutionImmutable
		}

		return persistence.ErrExecutionNotFound
	}

	return nil
}

func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	query := `SELECT ` + executionColumns + ` FROM workflow_executions WHERE id = $1`

	execution, err := scanExecution(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrExecutionNotFound
		}

		return nil, fmt.Errorf("failed to get execution %s: %w", id, err)
	}

	return execution, nil
}

func (r *ExecutionRepository) List(ctx context.Context, opts persistence.ListExecutionsOptions) ([]*models.WorkflowExecution, error) {
	query := `SELECT ` + executionColumns + ` FROM workflow_executions WHERE 1=1`
	args := make([]any, 0, 4)

	appendArg := func(clause string, value any) {
		args = append(args, value)
		query += " AND " + clause + " $" + strconv.Itoa(len(args))
	}

	if opts.WorkflowID != "" {
		appendArg("workflow_id =", opts.WorkflowID)
	}

	if opts.Status != nil {
		appendArg("status =", string(*opts.Status))
	}

	if opts.Since != nil {
		appendArg("created_at >=", *opts.Since)
	}

	if opts.Until != nil {
		appendArg("created_at <=", *opts.Until)
	}

	query += " ORDER BY created_at DESC, id ASC"

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}

	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	executions := make([]*models.WorkflowExecution, 0)

	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}

		executions = append(executions, execution)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating executions: %w", err)
	}

	return executions, nil
}

func marshalExecutionPayloads(execution *models.WorkflowExecution) ([]byte, []byte, error) {
	snapshot, err := json.Marshal(execution.ContextSnapshot)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal context snapshot: %w", err)
	}

	results, err := json.Marshal(execution.Results)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal results: %w", err)
	}

	return snapshot, results, nil
}

func scanExecution(row rowScanner) (*models.WorkflowExecution, error) {
	var (
		execution    models.WorkflowExecution
		status       string
		snapshotJSON []byte
		resultsJSON  []byte
		startedAt    sql.NullTime
		finishedAt   sql.NullTime
	)

	err := row.Scan(
		&execution.ID,
		&execution.WorkflowID,
		&execution.TriggerID,
		&execution.TriggeredBy,
		&status,
		&execution.Error,
		&snapshotJSON,
		&resultsJSON,
		&execution.MaxAttempts,
		&execution.CreatedAt,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	execution.Status = models.ExecutionStatus(status)

	if startedAt.Valid {
		execution.StartedAt = &startedAt.Time
	}

	if finishedAt.Valid {
		execution.FinishedAt = &finishedAt.Time
	}

	err = json.Unmarshal(snapshotJSON, &execution.ContextSnapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal context snapshot: %w", err)
	}

	err = json.Unmarshal(resultsJSON, &execution.Results)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal results: %w", err)
	}

	return &execution, nil
}
