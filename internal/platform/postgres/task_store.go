package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge-app/taskforge-api/internal/domain"
	"github.com/taskforge-app/taskforge-api/internal/platform/logger"
	"github.com/taskforge-app/taskforge-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed
// by the caller. If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// marshalAttachment encodes the attachment for the JSONB column. A nil
// attachment maps to SQL NULL.
func marshalAttachment(a *domain.Attachment) (any, error) {
	if a == nil {
		return nil, nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attachment: %w", err)
	}
	return data, nil
}

// unmarshalAttachment decodes the JSONB column; NULL yields nil.
func unmarshalAttachment(data []byte) (*domain.Attachment, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var a domain.Attachment
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode attachment: %w", err)
	}
	return &a, nil
}

// Create implements store.TaskStore.Create
// It saves a new task to the database, handling domain validation.
// Returns store.ErrInvalidEntity if the owner doesn't exist (foreign key violation).
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	attachment, err := marshalAttachment(task.Attachment)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (id, user_id, title, due_date, status, priority, attachment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.UserID,
		task.Title,
		task.DueDate,
		task.Status,
		task.Priority,
		attachment,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("task_id", task.ID.String()),
				slog.String("user_id", task.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, task.UserID)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("user_id", task.UserID.String()))
		return wrapStoreError("task", "create", err)
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// The lookup is scoped to the owner: a task owned by another user reports
// store.ErrTaskNotFound exactly like a missing one.
func (s *PostgresTaskStore) GetByID(
	ctx context.Context,
	userID, taskID uuid.UUID,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, title, due_date, status, priority, attachment, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`

	task, err := s.scanTask(s.db.QueryRowContext(ctx, query, taskID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found",
				slog.String("task_id", taskID.String()),
				slog.String("user_id", userID.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, wrapStoreError("task", "get", err)
	}

	return task, nil
}

// ListByUser implements store.TaskStore.ListByUser
// Tasks are ordered by ascending due date (soonest first).
// Returns an empty slice when the user has no tasks.
func (s *PostgresTaskStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, title, due_date, status, priority, attachment, created_at, updated_at
		FROM tasks
		WHERE user_id = $1
		ORDER BY due_date ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to query tasks by user",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, wrapStoreError("task", "list", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := s.scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row",
				slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	// Return empty slice instead of nil if no tasks found
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	log.Debug("listed tasks for user",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

// Update implements store.TaskStore.Update
// The WHERE clause carries both IDs, so the combined ownership check falls
// out of the affected row count.
func (s *PostgresTaskStore) Update(
	ctx context.Context,
	userID uuid.UUID,
	task *domain.Task,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	attachment, err := marshalAttachment(task.Attachment)
	if err != nil {
		return err
	}

	query := `
		UPDATE tasks
		SET title = $1, due_date = $2, status = $3, priority = $4, attachment = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.DueDate,
		task.Status,
		task.Priority,
		attachment,
		task.UpdatedAt,
		task.ID,
		userID,
	)

	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return wrapStoreError("task", "update", err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			log.Debug("task not found for update",
				slog.String("task_id", task.ID.String()),
				slog.String("user_id", userID.String()))
		}
		return err
	}

	log.Info("task updated successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// Delete implements store.TaskStore.Delete
// Scoped to the owner like Update; a foreign task reports not found.
func (s *PostgresTaskStore) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM tasks
		WHERE id = $1 AND user_id = $2
	`

	result, err := s.db.ExecContext(ctx, query, taskID, userID)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return wrapStoreError("task", "delete", err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			log.Debug("task not found for delete",
				slog.String("task_id", taskID.String()),
				slog.String("user_id", userID.String()))
		}
		return err
	}

	log.Info("task deleted successfully",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// MarkOverdue implements store.TaskStore.MarkOverdue
// A single bulk UPDATE transitions every task past its due date that is
// neither completed nor already overdue. The exclusion of overdue rows keeps
// the operation idempotent and the returned count meaningful.
func (s *PostgresTaskStore) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET status = $1, updated_at = $2
		WHERE due_date < $2 AND status NOT IN ($1, $3)
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		domain.TaskStatusOverdue,
		now.UTC(),
		domain.TaskStatusCompleted,
	)
	if err != nil {
		log.Error("failed to mark tasks overdue",
			slog.String("error", err.Error()))
		return 0, wrapStoreError("task", "mark_overdue", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected for overdue sweep",
			slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Debug("marked tasks overdue", slog.Int64("count", count))
	return count, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanTask.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one task row, decoding the status, priority, and
// attachment columns into their domain types.
func (s *PostgresTaskStore) scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var status, priority string
	var attachmentJSON []byte

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.DueDate,
		&status,
		&priority,
		&attachmentJSON,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)

	attachment, err := unmarshalAttachment(attachmentJSON)
	if err != nil {
		return nil, err
	}
	task.Attachment = attachment

	return &task, nil
}
