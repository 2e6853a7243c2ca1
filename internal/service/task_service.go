package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge-app/taskforge-api/internal/domain"
	"github.com/taskforge-app/taskforge-api/internal/platform/storage"
	"github.com/taskforge-app/taskforge-api/internal/store"
)

// maxAttachmentSize caps attachment uploads at 10 MiB.
const maxAttachmentSize = 10 << 20

// allowedMimeTypes is the closed set of attachment content types.
var allowedMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
}

// AttachmentUpload carries an incoming attachment: the client-supplied name
// and content type, the declared size, and the content stream.
type AttachmentUpload struct {
	Filename string
	MimeType string
	Size     int64
	Content  io.Reader
}

// CreateTaskInput holds the fields accepted when creating a task. Zero-value
// Priority and Status take the domain defaults.
type CreateTaskInput struct {
	Title    string
	DueDate  time.Time
	Priority domain.TaskPriority
	Status   domain.TaskStatus
}

// TaskService provides task operations scoped to an owning user, including
// attachment handling. Attachments are validated before anything is
// persisted; a rejected upload leaves no trace in storage or the database.
type TaskService interface {
	// ListTasks returns the user's tasks ordered by ascending due date.
	ListTasks(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// CreateTask creates a task, storing the attachment first if one was
	// uploaded. Returns ErrUnsupportedFileType or ErrFileTooLarge for a
	// rejected upload.
	CreateTask(
		ctx context.Context,
		userID uuid.UUID,
		input CreateTaskInput,
		upload *AttachmentUpload,
	) (*domain.Task, error)

	// UpdateTask applies a partial update to a task owned by the user. A new
	// attachment replaces the previous one; the superseded file is removed
	// after the update commits.
	UpdateTask(
		ctx context.Context,
		userID, taskID uuid.UUID,
		upd domain.TaskUpdate,
		upload *AttachmentUpload,
	) (*domain.Task, error)

	// DeleteTask removes a task owned by the user along with its stored
	// attachment, if any.
	DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error
}

// TaskServiceImpl implements the TaskService interface
type TaskServiceImpl struct {
	taskStore store.TaskStore
	files     storage.FileStore
	logger    *slog.Logger
}

// Ensure TaskServiceImpl implements TaskService interface
var _ TaskService = (*TaskServiceImpl)(nil)

// NewTaskService creates a new TaskService
func NewTaskService(
	taskStore store.TaskStore,
	files storage.FileStore,
	logger *slog.Logger,
) *TaskServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskServiceImpl{
		taskStore: taskStore,
		files:     files,
		logger:    logger.With("component", "task_service"),
	}
}

// ListTasks returns the user's tasks ordered by ascending due date.
func (s *TaskServiceImpl) ListTasks(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Task, error) {
	tasks, err := s.taskStore.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list tasks",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// CreateTask creates a task, storing the attachment first if one was uploaded.
func (s *TaskServiceImpl) CreateTask(
	ctx context.Context,
	userID uuid.UUID,
	input CreateTaskInput,
	upload *AttachmentUpload,
) (*domain.Task, error) {
	task, err := domain.NewTask(userID, input.Title, input.DueDate, input.Priority, input.Status)
	if err != nil {
		return nil, err
	}

	// Validate the upload before anything touches storage.
	if err := validateUpload(upload); err != nil {
		return nil, err
	}

	if upload != nil {
		attachment, err := s.files.Save(ctx, upload.Filename, upload.MimeType, upload.Content)
		if err != nil {
			s.logger.Error("failed to store attachment",
				"error", err,
				"user_id", userID)
			return nil, fmt.Errorf("failed to store attachment: %w", err)
		}
		task.Attachment = attachment
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		// The task row never landed, so the stored file is orphaned.
		s.removeFile(ctx, task.Attachment)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("task created",
		"task_id", task.ID,
		"user_id", userID,
		"has_attachment", task.Attachment != nil)

	return task, nil
}

// UpdateTask applies a partial update, replacing the attachment when a new
// file was uploaded.
func (s *TaskServiceImpl) UpdateTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
	upd domain.TaskUpdate,
	upload *AttachmentUpload,
) (*domain.Task, error) {
	if err := validateUpload(upload); err != nil {
		return nil, err
	}

	task, err := s.taskStore.GetByID(ctx, userID, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task for update: %w", err)
	}

	previous := task.Attachment

	if upload != nil {
		attachment, err := s.files.Save(ctx, upload.Filename, upload.MimeType, upload.Content)
		if err != nil {
			s.logger.Error("failed to store replacement attachment",
				"error", err,
				"task_id", taskID)
			return nil, fmt.Errorf("failed to store attachment: %w", err)
		}
		upd.Attachment = attachment
	}

	if err := task.Apply(upd); err != nil {
		s.removeFile(ctx, upd.Attachment)
		return nil, err
	}

	if err := s.taskStore.Update(ctx, userID, task); err != nil {
		s.removeFile(ctx, upd.Attachment)
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	// The update committed; the superseded file can go.
	if upload != nil && previous != nil {
		s.removeFile(ctx, previous)
	}

	s.logger.Info("task updated",
		"task_id", task.ID,
		"user_id", userID,
		"status", task.Status)

	return task, nil
}

// DeleteTask removes a task along with its stored attachment.
func (s *TaskServiceImpl) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	task, err := s.taskStore.GetByID(ctx, userID, taskID)
	if err != nil {
		return fmt.Errorf("failed to get task for delete: %w", err)
	}

	if err := s.taskStore.Delete(ctx, userID, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.removeFile(ctx, task.Attachment)

	s.logger.Info("task deleted",
		"task_id", taskID,
		"user_id", userID)

	return nil
}

// removeFile deletes a stored attachment, logging instead of failing: the
// database is the source of truth and a leftover file is only wasted space.
func (s *TaskServiceImpl) removeFile(ctx context.Context, attachment *domain.Attachment) {
	if attachment == nil {
		return
	}
	if err := s.files.Delete(ctx, attachment); err != nil {
		s.logger.Warn("failed to remove stored attachment",
			"error", err,
			"filename", attachment.Filename)
	}
}

// validateUpload enforces the content-type allowlist and size cap. A nil
// upload is valid (no attachment).
func validateUpload(upload *AttachmentUpload) error {
	if upload == nil {
		return nil
	}

	if !allowedMimeTypes[upload.MimeType] {
		return fmt.Errorf("%w: %s", ErrUnsupportedFileType, upload.MimeType)
	}

	if upload.Size > maxAttachmentSize {
		return fmt.Errorf("%w: %d bytes", ErrFileTooLarge, upload.Size)
	}

	return nil
}
