package models

// ExecutionContext carries the transient key->value map available to
// condition evaluation, variable substitution and action handlers during a
// single execution. Values are either domain records (anything implementing
// Resolvable) or plain literals.
type ExecutionContext struct {
	ExecutionID string         `json:"execution_id"`
	WorkflowID  string         `json:"workflow_id"`
	Data        map[string]any `json:"data,omitempty"`
}

// Lookup returns the value stored under the given top-level key.
func (c ExecutionContext) Lookup(key string) (any, bool) {
	value, ok := c.Data[key]

	return value, ok
}

// Task returns the task record from the context, if present.
func (c ExecutionContext) Task() (*Task, bool) {
	task, ok := c.Data["task"].(*Task)

	return task, ok
}

// Project returns the project record from the context, if present.
func (c ExecutionContext) Project() (*Project, bool) {
	project, ok := c.Data["project"].(*Project)

	return project, ok
}
