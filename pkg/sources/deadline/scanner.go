// Package deadline emits deadline_approaching domain events for tasks whose
// due date falls inside a look-ahead window. A cron schedule drives the scan;
// each task is announced at most once per due date.
package deadline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/taskmill/taskmill/pkg/eventbus"
	"github.com/taskmill/taskmill/pkg/events"
	"github.com/taskmill/taskmill/pkg/models"
	"github.com/taskmill/taskmill/pkg/persistence"
)

const (
	// DefaultSchedule scans once a minute.
	DefaultSchedule = "* * * * *"

	// DefaultWindow announces tasks due within the next 24 hours.
	DefaultWindow = 24 * time.Hour

	sourceName = "deadline-scanner"
)

// Scanner polls the task store for tasks approaching their due date and
// publishes a deadline_approaching event for each.
type Scanner struct {
	logger    *slog.Logger
	tasks     persistence.TaskRepository
	publisher eventbus.DomainEventPublisher
	window    time.Duration

	cron    *cron.Cron
	mu      sync.Mutex
	started bool

	// announced maps task ID to the due date already published, so a scan
	// interval shorter than the window does not repeat events. A task whose
	// due date moves is announced again.
	announced map[string]time.Time
}

// NewScanner creates a deadline scanner. A non-positive window falls back to
// DefaultWindow.
func NewScanner(
	logger *slog.Logger,
	tasks persistence.TaskRepository,
	publisher eventbus.DomainEventPublisher,
	window time.Duration,
) *Scanner {
	if window <= 0 {
		window = DefaultWindow
	}

	return &Scanner{
		logger:    logger.With("module", "deadline_scanner"),
		tasks:     tasks,
		publisher: publisher,
		window:    window,
		announced: make(map[string]time.Time),
	}
}

// Start registers the scan on the given cron schedule and begins running it.
// An empty schedule falls back to DefaultSchedule.
func (s *Scanner) Start(ctx context.Context, schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if schedule == "" {
		schedule = DefaultSchedule
	}

	s.cron = cron.New()

	_, err := s.cron.AddFunc(schedule, func() {
		err := s.Scan(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "Deadline scan failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid deadline scan schedule %q: %w", schedule, err)
	}

	s.cron.Start()
	s.started = true

	s.logger.InfoContext(ctx, "Deadline scanner started",
		"schedule", schedule,
		"window", s.window.String())

	return nil
}

// Stop halts the cron schedule and waits for a running scan to finish.
func (s *Scanner) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	s.started = false
	s.logger.InfoContext(ctx, "Deadline scanner stopped")

	return nil
}

// Scan performs a single pass: tasks due between now and now+window that have
// not been announced for their current due date get a deadline_approaching
// event. Exported so callers can trigger an immediate pass outside the cron
// schedule.
func (s *Scanner) Scan(ctx context.Context) error {
	now := time.Now().UTC()

	dueTasks, err := s.tasks.ListDueBetween(ctx, now, now.Add(s.window))
	if err != nil {
		return fmt.Errorf("failed to list due tasks: %w", err)
	}

	s.pruneAnnounced(now)

	published := 0

	for _, task := range dueTasks {
		if task.DueDate == nil || task.Status == models.TaskStatusDone {
			continue
		}

		if s.alreadyAnnounced(task) {
			continue
		}

		err = s.publishDeadlineEvent(ctx, now, task)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish deadline event",
				"task_id", task.ID,
				"error", err)

			continue
		}

		s.markAnnounced(task)
		published++
	}

	if published > 0 {
		s.logger.InfoContext(ctx, "Deadline scan completed",
			"due_tasks", len(dueTasks),
			"published", published)
	}

	return nil
}

func (s *Scanner) publishDeadlineEvent(ctx context.Context, now time.Time, task *models.Task) error {
	data := map[string]any{
		"task": map[string]any{
			"id":       task.ID,
			"title":    task.Title,
			"status":   task.Status,
			"priority": task.Priority,
			"assignee": task.Assignee,
		},
		"due_at":          task.DueDate.UTC().Format(time.RFC3339),
		"seconds_until":   int64(task.DueDate.Sub(now).Seconds()),
		"window_duration": s.window.String(),
	}

	event := events.NewDomainEvent(uuid.New().String(), events.DeadlineApproaching, sourceName, data)

	return s.publisher.PublishDomainEvent(ctx, event)
}

func (s *Scanner) alreadyAnnounced(task *models.Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	announcedAt, ok := s.announced[task.ID]

	return ok && announcedAt.Equal(task.DueDate.UTC())
}

func (s *Scanner) markAnnounced(task *models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.announced[task.ID] = task.DueDate.UTC()
}

// pruneAnnounced drops entries whose due date has passed so the map does not
// grow unbounded.
func (s *Scanner) pruneAnnounced(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, due := range s.announced {
		if due.Before(now) {
			delete(s.announced, id)
		}
	}
}
