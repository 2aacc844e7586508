package file

import (
	"context"
	"sync"
	"time"

	"github.com/taskmill/taskmill/pkg/models"
)

// NotificationRepository stores notification records as JSON documents.
type NotificationRepository struct {
	root string
	mu   *sync.Mutex
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(root string, mu *sync.Mutex) *NotificationRepository {
	return &NotificationRepository{root: root, mu: mu}
}

func (nr *NotificationRepository) Create(_ context.Context, notification *models.Notification) error {
	nr.mu.Lock()
	defer nr.mu.Unlock()

	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}

	return writeDocument(nr.root, "notifications", notification.ID, notification)
}

// CommentRepository stores task comments as JSON documents.
type CommentRepository struct {
	root string
	mu   *sync.Mutex
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(root string, mu *sync.Mutex) *CommentRepository {
	return &CommentRepository{root: root, mu: mu}
}

func (cr *CommentRepository) Create(_ context.Context, comment *models.Comment) error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	return writeDocument(cr.root, "comments", comment.ID, comment)
}
