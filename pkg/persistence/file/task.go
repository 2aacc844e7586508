package file

import (
	"context"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/taskmill/taskmill/pkg/models"
	"github.com/taskmill/taskmill/pkg/persistence"
)

const taskCollection = "tasks"

// TaskRepository stores task records as JSON documents.
type TaskRepository struct {
	root string
	mu   *sync.Mutex
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(root string, mu *sync.Mutex) *TaskRepository {
	return &TaskRepository{root: root, mu: mu}
}

func (tr *TaskRepository) GetByID(_ context.Context, id string) (*models.Task, error) {
	var task models.Task

	err := readDocument(tr.root, taskCollection, id, &task)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrTaskNotFound
		}

		return nil, err
	}

	return &task, nil
}

func (tr *TaskRepository) Save(_ context.Context, task *models.Task) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	task.UpdatedAt = time.Now().UTC()

	return writeDocument(tr.root, taskCollection, task.ID, task)
}

// ListDueBetween returns tasks whose due date falls inside [from, until].
func (tr *TaskRepository) ListDueBetween(ctx context.Context, from, until time.Time) ([]*models.Task, error) {
	ids, err := listDocumentIDs(tr.root, taskCollection)
	if err != nil {
		return nil, err
	}

	tasks := make([]*models.Task, 0, len(ids))

	for _, id := range ids {
		task, err := tr.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if task.DueDate == nil {
			continue
		}

		if task.DueDate.Before(from) || task.DueDate.After(until) {
			continue
		}

		tasks = append(tasks, task)
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].DueDate.Before(*tasks[j].DueDate)
	})

	return tasks, nil
}
