// Package sendnotification provides the send_notification workflow action.
package sendnotification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/taskmill/taskmill/pkg/models"
	"github.com/taskmill/taskmill/pkg/persistence"
)

// ErrMissingUserID is returned when the 'user_id' parameter is absent.
var ErrMissingUserID = errors.New("missing 'user_id' parameter")

// Action creates an in-app notification record for a user. When the context
// carries a task, the notification is linked to it.
type Action struct {
	UserID  string
	Title   string
	Message string
	Type    string

	notifications persistence.NotificationRepository
}

// NewAction creates a send_notification action from the step parameters.
func NewAction(notifications persistence.NotificationRepository, params map[string]any) (*Action, error) {
	userID, _ := params["user_id"].(string)
	if userID == "" {
		return nil, ErrMissingUserID
	}

	title, _ := params["title"].(string)
	message, _ := params["message"].(string)

	notificationType, _ := params["type"].(string)
	if notificationType == "" {
		notificationType = models.NotificationTypeWorkflow
	}

	return &Action{
		UserID:        userID,
		Title:         title,
		Message:       message,
		Type:          notificationType,
		notifications: notifications,
	}, nil
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	notification := &models.Notification{
		ID:      uuid.New().String(),
		UserID:  a.UserID,
		Title:   a.Title,
		Message: a.Message,
		Type:    a.Type,
	}

	if task, ok := executionCtx.Task(); ok {
		notification.TaskID = task.ID
	}

	err := a.notifications.Create(ctx, notification)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	logger.InfoContext(ctx, "Created notification", "notification_id", notification.ID, "user_id", a.UserID)

	return map[string]any{
		"notification_id": notification.ID,
		"user_id":         a.UserID,
	}, nil
}
