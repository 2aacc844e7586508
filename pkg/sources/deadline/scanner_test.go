package deadline_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmill/taskmill/pkg/events"
	"github.com/taskmill/taskmill/pkg/models"
	"github.com/taskmill/taskmill/pkg/sources/deadline"
)

type fakeTaskRepo struct {
	tasks []*models.Task
}

func (r *fakeTaskRepo) GetByID(_ context.Context, _ string) (*models.Task, error) { return nil, nil }

func (r *fakeTaskRepo) Save(_ context.Context, _ *models.Task) error { return nil }

func (r *fakeTaskRepo) ListDueBetween(_ context.Context, from, until time.Time) ([]*models.Task, error) {
	due := make([]*models.Task, 0, len(r.tasks))

	for _, task := range r.tasks {
		if task.DueDate == nil {
			continue
		}

		if !task.DueDate.Before(from) && !task.DueDate.After(until) {
			due = append(due, task)
		}
	}

	return due, nil
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []*events.DomainEvent
}

func (p *capturingPublisher) PublishDomainEvent(_ context.Context, event *events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)

	return nil
}

func (p *capturingPublisher) published() []*events.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]*events.DomainEvent(nil), p.events...)
}

func TestScan_PublishesForTasksInsideWindow(t *testing.T) {
	soon := time.Now().UTC().Add(2 * time.Hour)
	far := time.Now().UTC().Add(72 * time.Hour)

	repo := &fakeTaskRepo{tasks: []*models.Task{
		{ID: "task-soon", Title: "Ship release", Status: models.TaskStatusInProgress, DueDate: &soon},
		{ID: "task-far", Title: "Plan retro", Status: models.TaskStatusTodo, DueDate: &far},
	}}
	publisher := &capturingPublisher{}
	scanner := deadline.NewScanner(slog.Default(), repo, publisher, 24*time.Hour)

	err := scanner.Scan(t.Context())
	require.NoError(t, err)

	published := publisher.published()
	require.Len(t, published, 1)
	assert.Equal(t, events.DeadlineApproaching, published[0].EventType)
	assert.Equal(t, "deadline-scanner", published[0].Source)

	taskData, ok := published[0].GetDataMap("task")
	require.True(t, ok)
	assert.Equal(t, "task-soon", taskData["id"])
}

func TestScan_AnnouncesEachDueDateOnce(t *testing.T) {
	due := time.Now().UTC().Add(time.Hour)
	repo := &fakeTaskRepo{tasks: []*models.Task{
		{ID: "task-1", Title: "Ship release", DueDate: &due},
	}}
	publisher := &capturingPublisher{}
	scanner := deadline.NewScanner(slog.Default(), repo, publisher, 24*time.Hour)

	require.NoError(t, scanner.Scan(t.Context()))
	require.NoError(t, scanner.Scan(t.Context()))
	assert.Len(t, publisher.published(), 1)

	moved := due.Add(3 * time.Hour)
	repo.tasks[0].DueDate = &moved

	require.NoError(t, scanner.Scan(t.Context()))
	assert.Len(t, publisher.published(), 2)
}

func TestScan_SkipsCompletedTasks(t *testing.T) {
	due := time.Now().UTC().Add(time.Hour)
	repo := &fakeTaskRepo{tasks: []*models.Task{
		{ID: "task-1", Title: "Ship release", Status: models.TaskStatusDone, DueDate: &due},
	}}
	publisher := &capturingPublisher{}
	scanner := deadline.NewScanner(slog.Default(), repo, publisher, 24*time.Hour)

	require.NoError(t, scanner.Scan(t.Context()))
	assert.Empty(t, publisher.published())
}

func TestStartStop(t *testing.T) {
	repo := &fakeTaskRepo{}
	publisher := &capturingPublisher{}
	scanner := deadline.NewScanner(slog.Default(), repo, publisher, 0)

	require.NoError(t, scanner.Start(t.Context(), ""))
	require.NoError(t, scanner.Start(t.Context(), ""))
	require.NoError(t, scanner.Stop(t.Context()))
	require.NoError(t, scanner.Stop(t.Context()))
}

func TestStart_RejectsInvalidSchedule(t *testing.T) {
	scanner := deadline.NewScanner(slog.Default(), &fakeTaskRepo{}, &capturingPublisher{}, 0)

	err := scanner.Start(t.Context(), "not a schedule")
	assert.Error(t, err)
}
