package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/taskmill/taskmill/pkg/engine"
	"github.com/taskmill/taskmill/pkg/eventbus"
	"github.com/taskmill/taskmill/pkg/events"
	"github.com/taskmill/taskmill/pkg/models"
	"github.com/taskmill/taskmill/pkg/persistence/file"
	"github.com/taskmill/taskmill/pkg/registry"
	"github.com/taskmill/taskmill/pkg/services"
	"github.com/taskmill/taskmill/pkg/web"
)

type discardPublisher struct{}

func (discardPublisher) Publish(_ context.Context, _ string, _ eventbus.Event) error { return nil }

type capturingDomainPublisher struct {
	events []*events.DomainEvent
}

func (p *capturingDomainPublisher) PublishDomainEvent(_ context.Context, event *events.DomainEvent) error {
	p.events = append(p.events, event)

	return nil
}

func setupTestApp(t *testing.T) (*fiber.App, *capturingDomainPublisher) {
	t.Helper()

	persist := file.NewPersistence(t.TempDir())
	logger := slog.Default()
	reg := registry.NewRegistry(logger)
	tracer := noop.NewTracerProvider().Tracer("test")
	eng := engine.New(logger, persist, reg, discardPublisher{}, tracer)

	domainPublisher := &capturingDomainPublisher{}

	handlers := web.NewAPIHandlers(
		services.NewWorkflow(persist, nil),
		services.NewExecution(eng, persist),
		services.NewEventIntake(domainPublisher),
		validator.New(),
		reg,
	)

	app := fiber.New()
	web.RegisterRoutes(app, handlers)

	return app, domainPublisher
}

func createWorkflowRequest() web.CreateWorkflowRequest {
	return web.CreateWorkflowRequest{
		Name:   "Escalate overdue tasks",
		Status: models.WorkflowStatusActive,
		Triggers: []*models.WorkflowTrigger{
			{EventType: "deadline_approaching", IsActive: true},
		},
		Actions: []*models.WorkflowAction{
			{Type: models.ActionAddComment, Parameters: map[string]any{"text": "overdue"}, IsActive: true},
		},
	}
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func decodeWorkflow(t *testing.T, resp *http.Response) models.Workflow {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var workflow models.Workflow
	require.NoError(t, json.Unmarshal(body, &workflow))

	return workflow
}

func TestCreateWorkflow(t *testing.T) {
	app, _ := setupTestApp(t)

	resp := postJSON(t, app, "/workflows", createWorkflowRequest())
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	workflow := decodeWorkflow(t, resp)
	assert.NotEmpty(t, workflow.ID)
	assert.NotEmpty(t, workflow.Triggers[0].ID)
}

func TestCreateWorkflow_Validation(t *testing.T) {
	app, _ := setupTestApp(t)

	missingName := createWorkflowRequest()
	missingName.Name = ""
	resp := postJSON(t, app, "/workflows", missingName)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	noTriggers := createWorkflowRequest()
	noTriggers.Triggers = nil
	resp = postJSON(t, app, "/workflows", noTriggers)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/workflows", bytes.NewReader([]byte("not-json")))
	req.Header.Set("Content-Type", "application/json")
	badJSON, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, badJSON.StatusCode)
}

func TestGetWorkflow(t *testing.T) {
	app, _ := setupTestApp(t)

	created := decodeWorkflow(t, postJSON(t, app, "/workflows", createWorkflowRequest()))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/workflows/"+created.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	fetched := decodeWorkflow(t, resp)
	assert.Equal(t, created.ID, fetched.ID)
}

func TestGetWorkflow_NotFound(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/workflows/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateWorkflow_PartialUpdate(t *testing.T) {
	app, _ := setupTestApp(t)

	created := decodeWorkflow(t, postJSON(t, app, "/workflows", createWorkflowRequest()))

	patch, err := json.Marshal(map[string]any{"name": "Escalate overdue tasks v2", "status": "inactive"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/workflows/"+created.ID, bytes.NewReader(patch))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	updated := decodeWorkflow(t, resp)
	assert.Equal(t, "Escalate overdue tasks v2", updated.Name)
	assert.Equal(t, models.WorkflowStatusInactive, updated.Status)
	assert.Len(t, updated.Actions, 1)
}

func TestDeleteWorkflow(t *testing.T) {
	app, _ := setupTestApp(t)

	created := decodeWorkflow(t, postJSON(t, app, "/workflows", createWorkflowRequest()))

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/workflows/"+created.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/workflows/"+created.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRunWorkflow_InactiveYieldsFailedExecution(t *testing.T) {
	app, _ := setupTestApp(t)

	request := createWorkflowRequest()
	request.Status = models.WorkflowStatusInactive
	created := decodeWorkflow(t, postJSON(t, app, "/workflows", request))

	resp := postJSON(t, app, "/workflows/"+created.ID+"/run", web.RunWorkflowRequest{UserID: "alice"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var execution models.WorkflowExecution
	require.NoError(t, json.Unmarshal(body, &execution))

	assert.Equal(t, models.ExecutionStatusFailed, execution.Status)
	assert.Equal(t, "workflow not active", execution.Error)
	assert.Equal(t, "user:alice", execution.TriggeredBy)
}

func TestRunWorkflow_NotFound(t *testing.T) {
	app, _ := setupTestApp(t)

	resp := postJSON(t, app, "/workflows/missing/run", web.RunWorkflowRequest{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetWorkflowExecutions(t *testing.T) {
	app, _ := setupTestApp(t)

	request := createWorkflowRequest()
	request.Status = models.WorkflowStatusInactive
	created := decodeWorkflow(t, postJSON(t, app, "/workflows", request))

	resp := postJSON(t, app, "/workflows/"+created.ID+"/run", web.RunWorkflowRequest{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/workflows/"+created.ID+"/executions", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload struct {
		Executions []*models.WorkflowExecution `json:"executions"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Len(t, payload.Executions, 1)
}

func TestGetExecution_NotFound(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/executions/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIngestEvent(t *testing.T) {
	app, publisher := setupTestApp(t)

	resp := postJSON(t, app, "/events", web.IngestEventRequest{
		EventType: events.TaskCreated,
		Data:      map[string]any{"task": map[string]any{"id": "task-1"}},
	})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, events.TaskCreated, publisher.events[0].EventType)
}

func TestIngestEvent_UnknownType(t *testing.T) {
	app, _ := setupTestApp(t)

	resp := postJSON(t, app, "/events", web.IngestEventRequest{EventType: "task_exploded"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetActionTypes(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/actions", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthCheck(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
