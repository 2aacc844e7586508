// Package file provides file-based persistence for development and tests.
// Each record is stored as one JSON document under a per-collection directory.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/taskmill/taskmill/pkg/persistence"
)

// Persistence implements persistence.Persistence on the local file system.
type Persistence struct {
	root          string
	workflowRepo  *WorkflowRepository
	executionRepo *ExecutionRepository
	taskRepo      *TaskRepository
	notifRepo     *NotificationRepository
	commentRepo   *CommentRepository
}

// NewPersistence creates a file persistence rooted at the given directory.
// Accepts both a plain path and a file:// URL.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	// Counter increments are read-modify-write on JSON documents; a single
	// process-wide mutex keeps them atomic within this process.
	mu := &sync.Mutex{}

	return &Persistence{
		root:          cleanRoot,
		workflowRepo:  NewWorkflowRepository(cleanRoot, mu),
		executionRepo: NewExecutionRepository(cleanRoot, mu),
		taskRepo:      NewTaskRepository(cleanRoot, mu),
		notifRepo:     NewNotificationRepository(cleanRoot, mu),
		commentRepo:   NewCommentRepository(cleanRoot, mu),
	}
}

func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflowRepo
}

func (fp *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return fp.executionRepo
}

func (fp *Persistence) TaskRepository() persistence.TaskRepository {
	return fp.taskRepo
}

func (fp *Persistence) NotificationRepository() persistence.NotificationRepository {
	return fp.notifRepo
}

func (fp *Persistence) CommentRepository() persistence.CommentRepository {
	return fp.commentRepo
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. Nothing to do for files.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// writeDocument marshals v into <root>/<collection>/<id>.json.
func writeDocument(root, collection, id string, v any) error {
	dir := filepath.Join(root, collection)

	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return fmt.Errorf("failed to create %s directory: %w", collection, err)
	}

	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s document: %w", collection, err)
	}

	err = os.WriteFile(filepath.Join(dir, id+".json"), payload, 0o644)
	if err != nil {
		return fmt.Errorf("failed to write %s document: %w", collection, err)
	}

	return nil
}

// readDocument unmarshals <root>/<collection>/<id>.json into v. Returns
// os.ErrNotExist when the document is missing.
func readDocument(root, collection, id string, v any) error {
	payload, err := os.ReadFile(filepath.Join(root, collection, id+".json"))
	if err != nil {
		return err
	}

	err = json.Unmarshal(payload, v)
	if err != nil {
		return fmt.Errorf("failed to unmarshal %s document %s: %w", collection, id, err)
	}

	return nil
}

// listDocumentIDs returns the ids of every document in a collection.
func listDocumentIDs(root, collection string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(root, collection))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to list %s documents: %w", collection, err)
	}

	ids := make([]string, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}

	return ids, nil
}

func deleteDocument(root, collection, id string) error {
	return os.Remove(filepath.Join(root, collection, id+".json"))
}
