package file

import (
	"context"
	"os"
	"sort"
	"sync"

	"github.com/taskmill/taskmill/pkg/models"
	"github.com/taskmill/taskmill/pkg/persistence"
)

const executionCollection = "executions"

// ExecutionRepository stores execution audit records as JSON documents.
type ExecutionRepository struct {
	root string
	mu   *sync.Mutex
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(root string, mu *sync.Mutex) *ExecutionRepository {
	return &ExecutionRepository{root: root, mu: mu}
}

func (er *ExecutionRepository) Create(_ context.Context, execution *models.WorkflowExecution) error {
	er.mu.Lock()
	defer er.mu.Unlock()

	return writeDocument(er.root, executionCollection, execution.ID, execution)
}

// Save persists a state transition. Terminal records may not be rewritten:
// the audit log is append-only once an execution completed or failed.
func (er *ExecutionRepository) Save(ctx context.Context, execution *models.WorkflowExecution) error {
	er.mu.Lock()
	defer er.mu.Unlock()

	var stored models.WorkflowExecution

	err := readDocument(er.root, executionCollection, execution.ID, &stored)
	if err == nil && stored.IsTerminal() {
		return persistence.ErrExecutionImmutable
	}

	return writeDocument(er.root, executionCollection, execution.ID, execution)
}

func (er *ExecutionRepository) GetByID(_ context.Context, id string) (*models.WorkflowExecution, error) {
	var execution models.WorkflowExecution

	err := readDocument(er.root, executionCollection, id, &execution)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrExecutionNotFound
		}

		return nil, err
	}

	return &execution, nil
}

func (er *ExecutionRepository) List(ctx context.Context, opts persistence.ListExecutionsOptions) ([]*models.WorkflowExecution, error) {
	ids, err := listDocumentIDs(er.root, executionCollection)
	if err != nil {
		return nil, err
	}

	executions := make([]*models.WorkflowExecution, 0, len(ids))

	for _, id := range ids {
		execution, err := er.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if !matchesOptions(execution, opts) {
			continue
		}

		executions = append(executions, execution)
	}

	// Newest first, with the ID as a deterministic tiebreaker.
	sort.Slice(executions, func(i, j int) bool {
		if executions[i].CreatedAt.Equal(executions[j].CreatedAt) {
			return executions[i].ID < executions[j].ID
		}

		return executions[i].CreatedAt.After(executions[j].CreatedAt)
	})

	return paginate(executions, opts.Offset, opts.Limit), nil
}

func matchesOptions(execution *models.WorkflowExecution, opts persistence.ListExecutionsOptions) bool {
	if opts.WorkflowID != "" && execution.WorkflowID != opts.WorkflowID {
		return false
	}

	if opts.Status != nil && execution.Status != *opts.Status {
		return false
	}

	if opts.Since != nil && execution.CreatedAt.Before(*opts.Since) {
		return false
	}

	if opts.Until != nil && execution.CreatedAt.After(*opts.Until) {
		return false
	}

	return true
}

func paginate(executions []*models.WorkflowExecution, offset, limit int) []*models.WorkflowExecution {
	if offset >= len(executions) {
		return []*models.WorkflowExecution{}
	}

	executions = executions[offset:]

	if limit > 0 && limit < len(executions) {
		executions = executions[:limit]
	}

	return executions
}
