package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/taskmill/taskmill/pkg/models"
	"github.com/taskmill/taskmill/pkg/persistence"
	"github.com/taskmill/taskmill/pkg/registry"
)

// ErrWorkflowNotFound is returned when a workflow is not found.
var ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

// Workflow manages workflow definitions: validation, CRUD and lifecycle
// status changes. Action parameters are checked against their factory schemas
// at save time so a bad workflow never reaches the executor.
type Workflow struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	validator   *validator.Validate
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(persist persistence.Persistence, reg *registry.Registry) *Workflow {
	return &Workflow{
		persistence: persist,
		registry:    reg,
		validator:   validator.New(),
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List retrieves workflows, optionally filtered by status.
func (w *Workflow) List(ctx context.Context, status *models.WorkflowStatus) ([]*models.Workflow, error) {
	if status == nil {
		workflows, err := w.persistence.WorkflowRepository().List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list workflows: %w", err)
		}

		return workflows, nil
	}

	if !validWorkflowStatus(*status) {
		return nil, NewValidationError("List", "INVALID_STATUS",
			fmt.Sprintf("invalid status '%s'", *status), ErrInvalidStatus)
	}

	workflows, err := w.persistence.WorkflowRepository().ListByStatus(ctx, *status)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return workflows, nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return workflow, nil
}

// Create validates and stores a new workflow. Empty trigger and action IDs
// are assigned; the status defaults to draft.
func (w *Workflow) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	now := time.Now().UTC()
	workflow.ID = uuid.New().String()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	if workflow.Status == "" {
		workflow.Status = models.WorkflowStatusDraft
	}

	w.assignIdentifiers(workflow)

	err := w.validate(workflow)
	if err != nil {
		return nil, err
	}

	err = w.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	return workflow, nil
}

// Update validates and overwrites an existing workflow. Creation time and
// execution counters are preserved from the stored record.
func (w *Workflow) Update(ctx context.Context, workflowID string, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	existing, err := w.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	workflow.ID = workflowID
	workflow.CreatedAt = existing.CreatedAt
	workflow.UpdatedAt = time.Now().UTC()
	workflow.ExecutionCount = existing.ExecutionCount

	if workflow.Status == "" {
		workflow.Status = existing.Status
	}

	w.assignIdentifiers(workflow)

	err = w.validate(workflow)
	if err != nil {
		return nil, err
	}

	err = w.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	return workflow, nil
}

// SetStatus transitions a workflow between draft, active and inactive.
func (w *Workflow) SetStatus(ctx context.Context, workflowID string, status models.WorkflowStatus) (*models.Workflow, error) {
	if !validWorkflowStatus(status) {
		return nil, NewValidationError("SetStatus", "INVALID_STATUS",
			fmt.Sprintf("invalid status '%s'", status), ErrInvalidStatus)
	}

	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	workflow.Status = status
	workflow.UpdatedAt = time.Now().UTC()

	err = w.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to update workflow status: %w", err)
	}

	return workflow, nil
}

// Delete removes a workflow by its ID.
func (w *Workflow) Delete(ctx context.Context, workflowID string) error {
	_, err := w.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return err
	}

	err = w.persistence.WorkflowRepository().Delete(ctx, workflowID)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	return nil
}

// assignIdentifiers fills empty trigger and action IDs and binds triggers to
// the workflow.
func (w *Workflow) assignIdentifiers(workflow *models.Workflow) {
	for _, trigger := range workflow.Triggers {
		if trigger.ID == "" {
			trigger.ID = uuid.New().String()
		}

		trigger.WorkflowID = workflow.ID
	}

	for _, action := range workflow.Actions {
		if action.ID == "" {
			action.ID = uuid.New().String()
		}
	}
}

// validate runs struct validation plus the domain rules the tags cannot
// express: known action types and schema-valid action parameters.
func (w *Workflow) validate(workflow *models.Workflow) error {
	if workflow.Name == "" {
		return ErrWorkflowNameRequired
	}

	err := w.validator.Struct(workflow)
	if err != nil {
		return NewValidationError("validate", "INVALID_WORKFLOW", err.Error(), ErrInvalidRequest)
	}

	if len(workflow.Triggers) == 0 {
		return ErrTriggersRequired
	}

	if len(workflow.Actions) == 0 {
		return ErrActionsRequired
	}

	for _, action := range workflow.Actions {
		if !action.Type.Valid() {
			return NewValidationError("validate", "UNKNOWN_ACTION_TYPE",
				fmt.Sprintf("unknown action type '%s'", action.Type), ErrUnknownActionType)
		}

		if w.registry == nil {
			continue
		}

		err := w.registry.ValidateParameters(string(action.Type), action.Parameters)
		if err != nil {
			return NewValidationError("validate", "INVALID_PARAMETERS", err.Error(), ErrInvalidParameters)
		}
	}

	return nil
}

func validWorkflowStatus(status models.WorkflowStatus) bool {
	switch status {
	case models.WorkflowStatusActive, models.WorkflowStatusInactive, models.WorkflowStatusDraft:
		return true
	default:
		return false
	}
}
