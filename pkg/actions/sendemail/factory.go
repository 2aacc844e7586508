package sendemail

import (
	"github.com/taskmill/taskmill/pkg/mail"
	"github.com/taskmill/taskmill/pkg/protocol"
)

// ActionFactory creates send_email actions bound to a mail transport.
type ActionFactory struct {
	mailer mail.Mailer
}

// NewActionFactory creates the factory.
func NewActionFactory(mailer mail.Mailer) *ActionFactory {
	return &ActionFactory{mailer: mailer}
}

func (f *ActionFactory) Create(params map[string]any) (protocol.Action, error) {
	return NewAction(f.mailer, params)
}

func (f *ActionFactory) ID() string {
	return "send_email"
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"to": map[string]any{
				"type":        "string",
				"description": "Recipient address, or comma-separated list. Supports templating.",
				"examples":    []string{"ops@example.com", "{{task.assignee}}"},
			},
			"subject": map[string]any{
				"type":        "string",
				"description": "Email subject. Supports templating.",
				"examples":    []string{"Task {{task.title}} is overdue"},
			},
			"message": map[string]any{
				"type":        "string",
				"description": "Plain-text body. Supports templating.",
			},
			"from": map[string]any{
				"type":        "string",
				"description": "Override the default sender address.",
			},
		},
		"required":             []string{"to", "subject"},
		"additionalProperties": false,
	}
}
