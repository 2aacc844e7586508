// Package registry holds the action factories available to the executor and
// validates action parameters against their declared schemas.
package registry

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/xeipuuv/gojsonschema"

	"github.com/taskmill/taskmill/pkg/protocol"
)

type Registry struct {
	logger          *slog.Logger
	actionFactories map[string]protocol.ActionFactory
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:          log,
		actionFactories: make(map[string]protocol.ActionFactory),
	}
}

func (r *Registry) RegisterAction(factory protocol.ActionFactory) {
	r.actionFactories[factory.ID()] = factory
}

// CreateAction instantiates the action registered under actionType.
func (r *Registry) CreateAction(actionType string, params map[string]any) (protocol.Action, error) {
	factory, ok := r.actionFactories[actionType]
	if !ok {
		return nil, fmt.Errorf("action type '%s' not registered", actionType)
	}

	return factory.Create(params)
}

// AvailableActions returns all registered action kinds.
func (r *Registry) AvailableActions() []string {
	types := make([]string, 0, len(r.actionFactories))
	for actionType := range r.actionFactories {
		types = append(types, actionType)
	}

	return types
}

// ActionSchema returns the parameter schema for an action kind.
func (r *Registry) ActionSchema(actionType string) (map[string]any, bool) {
	factory, ok := r.actionFactories[actionType]
	if !ok {
		return nil, false
	}

	return factory.Schema(), true
}

// ValidateParameters checks an action's parameter map against the schema its
// factory declares, so configuration errors surface at workflow save time
// rather than only at dispatch.
func (r *Registry) ValidateParameters(actionType string, params map[string]any) error {
	factory, ok := r.actionFactories[actionType]
	if !ok {
		return fmt.Errorf("action type '%s' not registered", actionType)
	}

	schema := factory.Schema()
	if schema == nil {
		return nil
	}

	if params == nil {
		params = map[string]any{}
	}

	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("failed to marshal schema for '%s': %w", actionType, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(params),
	)
	if err != nil {
		return fmt.Errorf("failed to validate parameters for '%s': %w", actionType, err)
	}

	if !result.Valid() {
		detail := ""
		for _, desc := range result.Errors() {
			if detail != "" {
				detail += "; "
			}

			detail += desc.String()
		}

		return fmt.Errorf("invalid parameters for '%s': %s", actionType, detail)
	}

	return nil
}
