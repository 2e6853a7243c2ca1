package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

// Possible task status values. The set is closed: anything else is rejected
// at the boundary.
const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusOverdue    TaskStatus = "overdue"
)

// TaskPriority represents the urgency of a task
type TaskPriority string

// Possible task priority values (closed set).
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID       = errors.New("task ID cannot be empty")
	ErrEmptyTaskUserID   = errors.New("task user ID cannot be empty")
	ErrEmptyTaskTitle    = errors.New("task title cannot be empty")
	ErrEmptyTaskDueDate  = errors.New("task due date cannot be empty")
	ErrInvalidStatus     = errors.New("invalid task status")
	ErrInvalidPriority   = errors.New("invalid task priority")
	ErrInvalidAttachment = errors.New("invalid task attachment")
)

// Attachment holds the stored metadata of a file attached to a task.
// Path is the public serving path (or object URL), not a filesystem path.
type Attachment struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	MimeType string `json:"mimetype"`
}

// Task is a unit of work owned by exactly one user. The owner reference is
// immutable after creation; all reads and writes are scoped to it.
type Task struct {
	ID         uuid.UUID    `json:"id"`
	UserID     uuid.UUID    `json:"userId"`
	Title      string       `json:"title"`
	DueDate    time.Time    `json:"dueDate"`
	Status     TaskStatus   `json:"status"`
	Priority   TaskPriority `json:"priority"`
	Attachment *Attachment  `json:"attachment"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// TaskUpdate carries a partial update: nil fields are left untouched.
type TaskUpdate struct {
	Title      *string
	DueDate    *time.Time
	Status     *TaskStatus
	Priority   *TaskPriority
	Attachment *Attachment
}

// NewTask creates a Task owned by userID. Empty status and priority take the
// defaults (todo, medium); non-empty values must belong to the closed sets.
func NewTask(
	userID uuid.UUID,
	title string,
	dueDate time.Time,
	priority TaskPriority,
	status TaskStatus,
) (*Task, error) {
	if priority == "" {
		priority = TaskPriorityMedium
	}
	if status == "" {
		status = TaskStatusTodo
	}

	task := &Task{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		DueDate:   dueDate,
		Status:    status,
		Priority:  priority,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.UserID == uuid.Nil {
		return ErrEmptyTaskUserID
	}

	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTaskTitle
	}

	if t.DueDate.IsZero() {
		return ErrEmptyTaskDueDate
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidStatus
	}

	if !isValidTaskPriority(t.Priority) {
		return ErrInvalidPriority
	}

	if t.Attachment != nil {
		if t.Attachment.Filename == "" || t.Attachment.Path == "" || t.Attachment.MimeType == "" {
			return ErrInvalidAttachment
		}
	}

	return nil
}

// Apply merges a partial update into the task and bumps UpdatedAt.
//
// A sticky overdue status is re-evaluated here: if the update moves the due
// date into the future without also setting a status, the task drops back to
// todo rather than staying overdue against a deadline that no longer passed.
func (t *Task) Apply(upd TaskUpdate) error {
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.DueDate != nil {
		t.DueDate = *upd.DueDate
		if upd.Status == nil && t.Status == TaskStatusOverdue && t.DueDate.After(time.Now().UTC()) {
			t.Status = TaskStatusTodo
		}
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.Priority != nil {
		t.Priority = *upd.Priority
	}
	if upd.Attachment != nil {
		t.Attachment = upd.Attachment
	}

	if err := t.Validate(); err != nil {
		return err
	}

	t.UpdatedAt = time.Now().UTC()
	return nil
}

// isValidTaskStatus checks if the given status belongs to the closed set.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted, TaskStatusOverdue:
		return true
	default:
		return false
	}
}

// isValidTaskPriority checks if the given priority belongs to the closed set.
func isValidTaskPriority(priority TaskPriority) bool {
	switch priority {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}

// ParseTaskStatus converts a raw string into a TaskStatus, rejecting values
// outside the closed set.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !isValidTaskStatus(status) {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// ParseTaskPriority converts a raw string into a TaskPriority, rejecting
// values outside the closed set.
func ParseTaskPriority(s string) (TaskPriority, error) {
	priority := TaskPriority(s)
	if !isValidTaskPriority(priority) {
		return "", ErrInvalidPriority
	}
	return priority, nil
}
