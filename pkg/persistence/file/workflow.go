package file

import (
	"context"
	"os"
	"sort"
	"sync"

	"github.com/taskmill/taskmill/pkg/models"
	"github.com/taskmill/taskmill/pkg/persistence"
)

const workflowCollection = "workflows"

// WorkflowRepository stores workflow definitions as JSON documents.
type WorkflowRepository struct {
	root string
	mu   *sync.Mutex
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(root string, mu *sync.Mutex) *WorkflowRepository {
	return &WorkflowRepository{root: root, mu: mu}
}

func (wr *WorkflowRepository) List(ctx context.Context) ([]*models.Workflow, error) {
	ids, err := listDocumentIDs(wr.root, workflowCollection)
	if err != nil {
		return nil, err
	}

	workflows := make([]*models.Workflow, 0, len(ids))

	for _, id := range ids {
		workflow, err := wr.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if workflow.DeletedAt == nil {
			workflows = append(workflows, workflow)
		}
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].ID < workflows[j].ID
	})

	return workflows, nil
}

func (wr *WorkflowRepository) ListByStatus(ctx context.Context, status models.WorkflowStatus) ([]*models.Workflow, error) {
	all, err := wr.List(ctx)
	if err != nil {
		return nil, err
	}

	workflows := make([]*models.Workflow, 0, len(all))

	for _, workflow := range all {
		if workflow.Status == status {
			workflows = append(workflows, workflow)
		}
	}

	return workflows, nil
}

func (wr *WorkflowRepository) GetByID(_ context.Context, id string) (*models.Workflow, error) {
	var workflow models.Workflow

	err := readDocument(wr.root, workflowCollection, id, &workflow)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	return &workflow, nil
}

func (wr *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	err := writeDocument(wr.root, workflowCollection, workflow.ID, workflow)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

func (wr *WorkflowRepository) Delete(_ context.Context, id string) error {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	err := deleteDocument(wr.root, workflowCollection, id)
	if err != nil {
		if os.IsNotExist(err) {
			return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
		}

		return persistence.NewWorkflowError("Delete", id, err)
	}

	return nil
}

// IncrementExecutionCount atomically bumps the workflow's execution counter.
func (wr *WorkflowRepository) IncrementExecutionCount(ctx context.Context, workflowID string) error {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	workflow, err := wr.GetByID(ctx, workflowID)
	if err != nil {
		return err
	}

	workflow.ExecutionCount++

	err = writeDocument(wr.root, workflowCollection, workflow.ID, workflow)
	if err != nil {
		return persistence.NewWorkflowError("IncrementExecutionCount", workflowID, err)
	}

	return nil
}

// IncrementTriggerCount atomically bumps one trigger's match counter.
func (wr *WorkflowRepository) IncrementTriggerCount(ctx context.Context, workflowID, triggerID string) error {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	workflow, err := wr.GetByID(ctx, workflowID)
	if err != nil {
		return err
	}

	trigger := workflow.TriggerByID(triggerID)
	if trigger == nil {
		return persistence.NewWorkflowError("IncrementTriggerCount", workflowID, persistence.ErrTriggerNotFound)
	}

	trigger.TriggerCount++

	err = writeDocument(wr.root, workflowCollection, workflow.ID, workflow)
	if err != nil {
		return persistence.NewWorkflowError("IncrementTriggerCount", workflowID, err)
	}

	return nil
}
