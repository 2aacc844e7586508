package models

import (
	"fmt"
	"time"
)

// NotificationTypeWorkflow marks notifications created by workflow actions.
const NotificationTypeWorkflow = "workflow"

// Notification is an in-app notification record created for a user.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id" validate:"required"`
	Title     string    `json:"title"   validate:"required"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	TaskID    string    `json:"task_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a task comment record created by the add_comment action.
type Comment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id" validate:"required"`
	Author    string    `json:"author"`
	Body      string    `json:"body"    validate:"required"`
	CreatedAt time.Time `json:"created_at"`
}

// Stringify renders a resolved value into its template string form.
func Stringify(v any) string {
	if v == nil {
		return ""
	}

	return fmt.Sprint(v)
}
