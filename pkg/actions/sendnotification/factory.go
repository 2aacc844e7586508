package sendnotification

import (
	"github.com/taskmill/taskmill/pkg/persistence"
	"github.com/taskmill/taskmill/pkg/protocol"
)

// ActionFactory creates send_notification actions bound to the notification
// store.
type ActionFactory struct {
	notifications persistence.NotificationRepository
}

// NewActionFactory creates the factory.
func NewActionFactory(notifications persistence.NotificationRepository) *ActionFactory {
	return &ActionFactory{notifications: notifications}
}

func (f *ActionFactory) Create(params map[string]any) (protocol.Action, error) {
	return NewAction(f.notifications, params)
}

func (f *ActionFactory) ID() string {
	return "send_notification"
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"user_id": map[string]any{
				"type":        "string",
				"description": "Recipient user. Supports templating.",
				"examples":    []string{"{{task.assignee}}"},
			},
			"title": map[string]any{
				"type":        "string",
				"description": "Notification title. Supports templating.",
			},
			"message": map[string]any{
				"type":        "string",
				"description": "Notification body. Supports templating.",
			},
			"type": map[string]any{
				"type":        "string",
				"description": "Notification category shown to the client.",
				"default":     "workflow",
			},
		},
		"required":             []string{"user_id"},
		"additionalProperties": false,
	}
}
