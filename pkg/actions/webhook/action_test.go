package webhook_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmill/taskmill/pkg/actions/webhook"
	"github.com/taskmill/taskmill/pkg/models"
)

func TestNewAction_RequiresURL(t *testing.T) {
	_, err := webhook.NewAction(nil, map[string]any{"method": "POST"})
	assert.ErrorIs(t, err, webhook.ErrMissingURL)
}

func TestExecute_PostsSubstitutedPayload(t *testing.T) {
	var (
		gotBody   map[string]any
		gotHeader string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		gotHeader = r.Header.Get("X-Task")

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	action, err := webhook.NewAction(server.Client(), map[string]any{
		"url": server.URL,
		"headers": map[string]any{
			"X-Task": "{{task.id}}",
		},
		"data": map[string]any{
			"title":  "{{task.title}}",
			"static": "value",
		},
	})
	require.NoError(t, err)

	task := &models.Task{ID: "task-1", Title: "Ship release"}
	executionCtx := models.ExecutionContext{Data: map[string]any{"task": task}}

	output, err := action.Execute(t.Context(), executionCtx, slog.Default())
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, output["status_code"])
	assert.JSONEq(t, `{"ok":true}`, output["body"].(string))
	assert.Equal(t, "Ship release", gotBody["title"])
	assert.Equal(t, "value", gotBody["static"])
	assert.Equal(t, "task-1", gotHeader)
}

func TestExecute_TruncatesLongResponses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 5000)))
	}))
	defer server.Close()

	action, err := webhook.NewAction(server.Client(), map[string]any{"url": server.URL, "method": "GET"})
	require.NoError(t, err)

	output, err := action.Execute(t.Context(), models.ExecutionContext{}, slog.Default())
	require.NoError(t, err)

	assert.Len(t, output["body"].(string), 1000)
}

func TestExecute_TransportErrorFails(t *testing.T) {
	action, err := webhook.NewAction(nil, map[string]any{
		"url":     "http://127.0.0.1:1/unreachable",
		"timeout": 1,
	})
	require.NoError(t, err)

	_, err = action.Execute(t.Context(), models.ExecutionContext{}, slog.Default())
	assert.Error(t, err)
}
