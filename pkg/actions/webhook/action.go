// Package webhook provides the webhook workflow action.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/taskmill/taskmill/pkg/models"
	"github.com/taskmill/taskmill/pkg/template"
)

const (
	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 1000
)

// ErrMissingURL is returned when the 'url' parameter is absent.
var ErrMissingURL = errors.New("missing 'url' parameter")

// Action issues an HTTP call to an external endpoint. String values of the
// data payload are template-substituted against the execution context before
// sending. The response body recorded in the output is truncated.
type Action struct {
	Method  string
	URL     string
	Headers map[string]string
	Data    map[string]any
	Timeout time.Duration

	client *http.Client
}

// NewAction creates a webhook action from the step parameters.
func NewAction(client *http.Client, params map[string]any) (*Action, error) {
	url, _ := params["url"].(string)
	if url == "" {
		return nil, ErrMissingURL
	}

	method, _ := params["method"].(string)
	if method == "" {
		method = http.MethodPost
	}

	headers := make(map[string]string)

	if headersConfig, ok := params["headers"].(map[string]any); ok {
		for key, value := range headersConfig {
			if strVal, ok := value.(string); ok {
				headers[key] = strVal
			}
		}
	}

	data, _ := params["data"].(map[string]any)

	timeout := defaultTimeout
	if seconds, ok := toSeconds(params["timeout"]); ok {
		timeout = seconds
	}

	return &Action{
		Method:  strings.ToUpper(method),
		URL:     url,
		Headers: headers,
		Data:    data,
		Timeout: timeout,
		client:  client,
	}, nil
}

func toSeconds(raw any) (time.Duration, bool) {
	switch v := raw.(type) {
	case int:
		return time.Duration(v) * time.Second, true
	case float64:
		return time.Duration(v * float64(time.Second)), true
	default:
		return 0, false
	}
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	logger.InfoContext(ctx, "Calling webhook", "method", a.Method, "url", a.URL)

	req, err := a.buildRequest(ctx, executionCtx)
	if err != nil {
		return nil, err
	}

	client := a.client
	if client == nil {
		client = &http.Client{}
	}

	ctx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read webhook response: %w", err)
	}

	logger.InfoContext(ctx, "Webhook responded", "status_code", resp.StatusCode, "body_length", len(body))

	return map[string]any{
		"status_code": resp.StatusCode,
		"body":        string(body),
	}, nil
}

func (a *Action) buildRequest(ctx context.Context, executionCtx models.ExecutionContext) (*http.Request, error) {
	var bodyReader io.Reader = strings.NewReader("")

	if a.Data != nil {
		payload := template.SubstituteMap(a.Data, executionCtx.Data)

		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode webhook payload: %w", err)
		}

		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, a.Method, a.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	for key, value := range a.Headers {
		req.Header.Set(key, template.Substitute(value, executionCtx.Data))
	}

	return req, nil
}
