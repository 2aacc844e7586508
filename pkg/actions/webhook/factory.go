package webhook

import (
	"net/http"

	"github.com/taskmill/taskmill/pkg/protocol"
)

// ActionFactory creates webhook actions sharing one HTTP client.
type ActionFactory struct {
	client *http.Client
}

// NewActionFactory creates the factory. A nil client falls back to a default
// per-action client.
func NewActionFactory(client *http.Client) *ActionFactory {
	return &ActionFactory{client: client}
}

func (f *ActionFactory) Create(params map[string]any) (protocol.Action, error) {
	return NewAction(f.client, params)
}

func (f *ActionFactory) ID() string {
	return "webhook"
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "Endpoint to call.",
				"examples":    []string{"https://hooks.example.com/taskmill"},
			},
			"method": map[string]any{
				"type":    "string",
				"enum":    []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
				"default": "POST",
			},
			"headers": map[string]any{
				"type":                 "object",
				"description":          "Request headers. Values support templating.",
				"additionalProperties": map[string]any{"type": "string"},
			},
			"data": map[string]any{
				"type":        "object",
				"description": "JSON payload. String values support templating.",
				"examples": []map[string]any{
					{"task_id": "{{task.id}}", "status": "{{task.status}}"},
				},
			},
			"timeout": map[string]any{
				"type":        "number",
				"description": "Request timeout in seconds.",
				"default":     30,
			},
		},
		"required":             []string{"url"},
		"additionalProperties": false,
	}
}
