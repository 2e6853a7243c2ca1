package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge-app/taskforge-api/internal/domain"
)

// TaskStore defines the interface for task data persistence. Every read and
// write except MarkOverdue is scoped to an owning user; a task owned by a
// different user behaves exactly like a missing one.
type TaskStore interface {
	// Create saves a new task.
	// Returns ErrInvalidEntity if the owner does not exist, or validation
	// errors from the domain Task.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves the task with the given ID owned by userID.
	// Returns ErrTaskNotFound if no such task is owned by that user.
	GetByID(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// ListByUser returns all tasks owned by userID ordered by ascending
	// due date. Returns an empty slice when the user has no tasks.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// Update persists the full state of a task owned by userID.
	// Returns ErrTaskNotFound under the same combined ownership check.
	Update(ctx context.Context, userID uuid.UUID, task *domain.Task) error

	// Delete removes the task with the given ID owned by userID.
	// Returns ErrTaskNotFound under the same combined ownership check.
	Delete(ctx context.Context, userID, taskID uuid.UUID) error

	// MarkOverdue transitions every task with a due date before now and a
	// status that is neither completed nor already overdue to overdue, in a
	// single bulk operation. Returns the number of tasks transitioned.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}
