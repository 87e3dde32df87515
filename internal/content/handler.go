package content

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	dErrors "daystack/pkg/domain-errors"
	"daystack/pkg/platform/httputil"
	"daystack/pkg/platform/sentinel"
	"daystack/pkg/requestcontext"
)

// TaskRepository is the task persistence surface the handler needs.
type TaskRepository interface {
	Get(ctx context.Context, userID, id uuid.UUID) (Task, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Task, error)
	Save(ctx context.Context, task Task) error
	Update(ctx context.Context, userID, id uuid.UUID, fn func(Task) Task) (Task, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// TagRepository is the tag persistence surface, satisfied by both the
// pgx-backed and the in-memory store.
type TagRepository interface {
	Create(ctx context.Context, tag *Tag) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Tag, error)
	Rename(ctx context.Context, userID, id uuid.UUID, name string) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// Handler serves the task and tag routes. All routes sit behind the auth
// gate, so the request context always carries a user.
type Handler struct {
	tasks  TaskRepository
	tags   TagRepository
	logger *slog.Logger
}

func NewHandler(tasks TaskRepository, tags TagRepository, logger *slog.Logger) *Handler {
	return &Handler{tasks: tasks, tags: tags, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.listTasks)
		r.Post("/", h.createTask)
		r.Get("/{id}", h.getTask)
		r.Patch("/{id}", h.updateTask)
		r.Delete("/{id}", h.deleteTask)
		r.Post("/{id}/subtasks", h.addSubTask)
		r.Delete("/{id}/subtasks", h.removeSubTask)
	})
	r.Route("/tags", func(r chi.Router) {
		r.Get("/", h.listTags)
		r.Post("/", h.createTag)
		r.Patch("/{id}", h.renameTag)
		r.Delete("/{id}", h.deleteTag)
	})
}

type createTaskRequest struct {
	Title    string     `json:"title"`
	Body     string     `json:"body"`
	SubTasks []string   `json:"sub_tasks"`
	DueAt    *time.Time `json:"due_at"`
}

type updateTaskRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
	Done  *bool   `json:"done"`
}

type subTaskRequest struct {
	Value string `json:"value"`
}

type createTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type renameTagRequest struct {
	Name string `json:"name"`
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := requestcontext.User(ctx)

	tasks, err := h.tasks.ListByUser(ctx, user.ID)
	if err != nil {
		h.writeStoreError(w, r, err, "list tasks")
		return
	}
	if tasks == nil {
		tasks = []Task{}
	}
	httputil.WriteSuccess(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := requestcontext.User(ctx)

	req, ok := httputil.DecodeJSON[createTaskRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "title is required"))
		return
	}

	now := requestcontext.Now(ctx)
	task := Task{
		ID:        uuid.New(),
		UserID:    user.ID,
		Title:     strings.TrimSpace(req.Title),
		Body:      req.Body,
		SubTasks:  req.SubTasks,
		DueAt:     req.DueAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.tasks.Save(ctx, task); err != nil {
		h.writeStoreError(w, r, err, "create task")
		return
	}
	httputil.WriteSuccess(w, http.StatusCreated, map[string]any{"task": task})
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := requestcontext.User(ctx)

	id, ok := parseID(w, r)
	if !ok {
		return
	}
	task, err := h.tasks.Get(ctx, user.ID, id)
	if err != nil {
		h.writeStoreError(w, r, err, "get task")
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, map[string]any{"task": task})
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := requestcontext.User(ctx)

	id, ok := parseID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[updateTaskRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}

	task, err := h.tasks.Update(ctx, user.ID, id, func(t Task) Task {
		if req.Title != nil {
			t.Title = *req.Title
		}
		if req.Body != nil {
			t.Body = *req.Body
		}
		if req.Done != nil {
			t.Done = *req.Done
		}
		t.UpdatedAt = requestcontext.Now(ctx)
		return t
	})
	if err != nil {
		h.writeStoreError(w, r, err, "update task")
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, map[string]any{"task": task})
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := requestcontext.User(ctx)

	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.tasks.Delete(ctx, user.ID, id); err != nil {
		h.writeStoreError(w, r, err, "delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addSubTask(w http.ResponseWriter, r *http.Request) {
	h.mutateSubTasks(w, r, func(subTasks []string, value string) []string {
		if slices.Contains(subTasks, value) {
			return subTasks
		}
		return append(subTasks, value)
	})
}

func (h *Handler) removeSubTask(w http.ResponseWriter, r *http.Request) {
	h.mutateSubTasks(w, r, func(subTasks []string, value string) []string {
		return slices.DeleteFunc(subTasks, func(s string) bool { return s == value })
	})
}

func (h *Handler) mutateSubTasks(w http.ResponseWriter, r *http.Request, mutate func([]string, string) []string) {
	ctx := r.Context()
	user := requestcontext.User(ctx)

	id, ok := parseID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[subTaskRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Value) == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "value is required"))
		return
	}

	task, err := h.tasks.Update(ctx, user.ID, id, func(t Task) Task {
		t.SubTasks = mutate(t.SubTasks, req.Value)
		t.UpdatedAt = requestcontext.Now(ctx)
		return t
	})
	if err != nil {
		h.writeStoreError(w, r, err, "update subtasks")
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, map[string]any{"task": task})
}

func (h *Handler) listTags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := requestcontext.User(ctx)

	tags, err := h.tags.ListByUser(ctx, user.ID)
	if err != nil {
		h.writeStoreError(w, r, err, "list tags")
		return
	}
	if tags == nil {
		tags = []Tag{}
	}
	httputil.WriteSuccess(w, http.StatusOK, map[string]any{"tags": tags})
}

func (h *Handler) createTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := requestcontext.User(ctx)

	req, ok := httputil.DecodeJSON[createTagRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "name is required"))
		return
	}

	tag := &Tag{
		ID:        uuid.New(),
		UserID:    user.ID,
		Name:      strings.TrimSpace(req.Name),
		Color:     req.Color,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := h.tags.Create(ctx, tag); err != nil {
		h.writeStoreError(w, r, err, "create tag")
		return
	}
	httputil.WriteSuccess(w, http.StatusCreated, map[string]any{"tag": tag})
}

func (h *Handler) renameTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := requestcontext.User(ctx)

	id, ok := parseID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[renameTagRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "name is required"))
		return
	}

	if err := h.tags.Rename(ctx, user.ID, id, strings.TrimSpace(req.Name)); err != nil {
		h.writeStoreError(w, r, err, "rename tag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := requestcontext.User(ctx)

	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.tags.Delete(ctx, user.ID, id); err != nil {
		h.writeStoreError(w, r, err, "delete tag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeNotFound, "document not found"))
	case errors.Is(err, sentinel.ErrConflict):
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeConflict, "a document with that name already exists"))
	default:
		h.logger.ErrorContext(r.Context(), op+" failed",
			slog.String("error", err.Error()),
			slog.String("request_id", requestcontext.RequestID(r.Context())),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "something went wrong"))
	}
}
