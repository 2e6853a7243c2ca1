package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskforge-app/taskforge-api/internal/api/middleware"
	"github.com/taskforge-app/taskforge-api/internal/api/shared"
	"github.com/taskforge-app/taskforge-api/internal/domain"
	"github.com/taskforge-app/taskforge-api/internal/service"
)

// multipartMemoryLimit bounds how much of a multipart body is held in
// memory; larger file parts spill to temporary files.
const multipartMemoryLimit = 32 << 20

// TaskHandler handles task-related API requests. Create and update accept
// multipart form data so a file can ride along with the fields.
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// List handles GET /tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	tasks, err := h.taskService.ListTasks(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	title, hasTitle := formValue(r, "title")
	if !hasTitle {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid title: required field")
		return
	}

	rawDue, hasDue := formValue(r, "dueDate")
	if !hasDue {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid dueDate: required field")
		return
	}
	dueDate, err := parseDueDate(rawDue)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid dueDate: expected RFC 3339 or YYYY-MM-DD")
		return
	}

	input := service.CreateTaskInput{
		Title:   title,
		DueDate: dueDate,
	}

	if raw, present := formValue(r, "priority"); present {
		priority, err := domain.ParseTaskPriority(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
			return
		}
		input.Priority = priority
	}

	if raw, present := formValue(r, "status"); present {
		status, err := domain.ParseTaskStatus(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
			return
		}
		input.Status = status
	}

	upload, cleanup, err := extractUpload(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid file upload")
		return
	}
	defer cleanup()

	task, err := h.taskService.CreateTask(r.Context(), userID, input, upload)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// Update handles PUT /tasks/{id}. Only fields present in the form are
// touched; everything else keeps its prior value.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	taskID, err := taskIDFromURL(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	var upd domain.TaskUpdate

	if raw, present := formValue(r, "title"); present {
		upd.Title = &raw
	}

	if raw, present := formValue(r, "dueDate"); present {
		dueDate, err := parseDueDate(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid dueDate: expected RFC 3339 or YYYY-MM-DD")
			return
		}
		upd.DueDate = &dueDate
	}

	if raw, present := formValue(r, "status"); present {
		status, err := domain.ParseTaskStatus(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
			return
		}
		upd.Status = &status
	}

	if raw, present := formValue(r, "priority"); present {
		priority, err := domain.ParseTaskPriority(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
			return
		}
		upd.Priority = &priority
	}

	upload, cleanup, err := extractUpload(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid file upload")
		return
	}
	defer cleanup()

	task, err := h.taskService.UpdateTask(r.Context(), userID, taskID, upd, upload)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	taskID, err := taskIDFromURL(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), userID, taskID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Task deleted"})
}

// taskIDFromURL parses the {id} route parameter. A malformed ID behaves
// like a missing task.
func taskIDFromURL(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

// formValue reports a multipart field and whether it was present at all,
// which is how partial updates distinguish "clear" from "leave alone".
func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// parseDueDate accepts RFC 3339 timestamps or bare YYYY-MM-DD dates, the
// latter interpreted as midnight UTC.
func parseDueDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized due date format: %q", raw)
}

// extractUpload pulls the optional "file" part out of the parsed form. The
// returned cleanup closes the part and is safe to call when no file was
// sent.
func extractUpload(r *http.Request) (*service.AttachmentUpload, func(), error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}

	upload := &service.AttachmentUpload{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Size:     header.Size,
		Content:  file,
	}

	return upload, func() { _ = file.Close() }, nil
}
