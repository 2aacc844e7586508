package models

import (
	"time"
)

// Task statuses and priorities mirror the project-management domain records
// the engine reads from and writes to.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusBlocked    = "blocked"
	TaskStatusDone       = "done"
)

const (
	TaskPriorityLow      = "low"
	TaskPriorityMedium   = "medium"
	TaskPriorityHigh     = "high"
	TaskPriorityCritical = "critical"
)

// Task is the project-management task record referenced from execution
// contexts and mutated by the task actions.
type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"  validate:"required"`
	Title       string     `json:"title"       validate:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Assignee    string     `json:"assignee,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Resolve implements Resolvable for template and condition lookups.
func (t *Task) Resolve(key string) (any, bool) {
	switch key {
	case "id":
		return t.ID, true
	case "project_id":
		return t.ProjectID, true
	case "title":
		return t.Title, true
	case "description":
		return t.Description, true
	case "status":
		return t.Status, true
	case "priority":
		return t.Priority, true
	case "assignee":
		return t.Assignee, true
	case "due_date":
		if t.DueDate == nil {
			return nil, false
		}

		return t.DueDate.Format(time.RFC3339), true
	default:
		return nil, false
	}
}

// Set overwrites a task attribute by name, returning false for unknown
// attributes. Used by the update_task action to apply parameter maps.
func (t *Task) Set(field string, value any) bool {
	switch field {
	case "title":
		t.Title = toString(value)
	case "description":
		t.Description = toString(value)
	case "status":
		t.Status = toString(value)
	case "priority":
		t.Priority = toString(value)
	case "assignee":
		t.Assignee = toString(value)
	case "due_date":
		parsed, err := time.Parse(time.RFC3339, toString(value))
		if err != nil {
			return false
		}

		t.DueDate = &parsed
	default:
		return false
	}

	return true
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	return Stringify(v)
}

// Project is the owning container of tasks, available in execution contexts.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"   validate:"required"`
	Description string    `json:"description"`
	Owner       string    `json:"owner"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Resolve implements Resolvable.
func (p *Project) Resolve(key string) (any, bool) {
	switch key {
	case "id":
		return p.ID, true
	case "name":
		return p.Name, true
	case "description":
		return p.Description, true
	case "owner":
		return p.Owner, true
	case "status":
		return p.Status, true
	default:
		return nil, false
	}
}
