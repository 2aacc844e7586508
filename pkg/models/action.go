package models

// ActionType identifies one of the fixed action kinds a workflow step can perform.
type ActionType string

const (
	ActionSendEmail        ActionType = "send_email"
	ActionSendNotification ActionType = "send_notification"
	ActionUpdateTask       ActionType = "update_task"
	ActionCreateTask       ActionType = "create_task"
	ActionAssignTask       ActionType = "assign_task"
	ActionChangeStatus     ActionType = "change_status"
	ActionAddComment       ActionType = "add_comment"
	ActionWebhook          ActionType = "webhook"
	ActionDelay            ActionType = "delay"
	ActionConditional      ActionType = "conditional"
)

// ActionTypes lists every supported action kind.
func ActionTypes() []ActionType {
	return []ActionType{
		ActionSendEmail,
		ActionSendNotification,
		ActionUpdateTask,
		ActionCreateTask,
		ActionAssignTask,
		ActionChangeStatus,
		ActionAddComment,
		ActionWebhook,
		ActionDelay,
		ActionConditional,
	}
}

// Valid reports whether t is one of the supported action kinds.
func (t ActionType) Valid() bool {
	for _, known := range ActionTypes() {
		if t == known {
			return true
		}
	}

	return false
}

// WorkflowAction is one step of a workflow. Order defines the execution
// sequence within the owning workflow; ContinueOnError decides whether a
// handler failure aborts the remaining actions.
type WorkflowAction struct {
	ID              string         `json:"id"                validate:"required"`
	Type            ActionType     `json:"type"              validate:"required"`
	Name            string         `json:"name"`
	Parameters      map[string]any `json:"parameters"`
	Condition       *Condition     `json:"condition,omitempty"`
	Order           int            `json:"order"`
	IsActive        bool           `json:"is_active"`
	ContinueOnError bool           `json:"continue_on_error"`
}
