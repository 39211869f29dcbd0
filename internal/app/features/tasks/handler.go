// internal/app/features/tasks/handler.go

// Package tasks serves a project's task board.
//
// Access control is deliberately asymmetric: any member may create
// tasks and change task status, but editing task metadata (name, due
// date, assignees) and deleting tasks is reserved to the project
// creator.
package tasks

import (
	"errors"
	"net/http"
	"strings"
	"time"

	apierrors "github.com/dalemusser/collabhub/internal/app/features/errors"
	"github.com/dalemusser/collabhub/internal/app/features/shared"
	"github.com/dalemusser/collabhub/internal/app/policy/projectpolicy"
	taskstore "github.com/dalemusser/collabhub/internal/app/store/tasks"
	"github.com/dalemusser/collabhub/internal/app/system/authz"
	"github.com/dalemusser/collabhub/internal/app/system/sanitize"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB     *mongo.Database
	Tasks  *taskstore.Store
	ErrLog *apierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, tasks *taskstore.Store, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Tasks: tasks, ErrLog: errLog, Log: logger}
}

// memberGate loads the caller and verifies project membership. On
// failure it renders the response and returns ok=false.
func (h *Handler) memberGate(w http.ResponseWriter, r *http.Request) (uid, projectID primitive.ObjectID, ok bool) {
	_, uid, signedIn := authz.UserCtx(r)
	if !signedIn {
		apierrors.RenderUnauthorized(w)
		return uid, projectID, false
	}
	projectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		apierrors.RenderNotFound(w, "Project not found.")
		return uid, projectID, false
	}
	member, err := projectpolicy.IsMember(r.Context(), h.DB, projectID, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "membership check failed", err)
		return uid, projectID, false
	}
	if !member {
		apierrors.RenderForbidden(w, "You are not a member of this project.")
		return uid, projectID, false
	}
	return uid, projectID, true
}

func parseAssignees(hexes []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(hexes))
	for _, s := range hexes {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, errors.New("assigned_to contains an invalid user id")
		}
		out = append(out, id)
	}
	return out, nil
}

type createRequest struct {
	Name       string   `json:"name"`
	Status     string   `json:"status,omitempty"`
	DueDate    string   `json:"due_date,omitempty"`
	AssignedTo []string `json:"assigned_to,omitempty"`
}

// Create handles POST /projects/{projectID}/tasks.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	_, projectID, ok := h.memberGate(w, r)
	if !ok {
		return
	}

	var req createRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		apierrors.RenderValidation(w, err.Error())
		return
	}
	name := sanitize.Text(req.Name)
	if name == "" {
		apierrors.RenderValidation(w, "Task name is required.")
		return
	}

	task := models.Task{ProjectID: projectID, Name: name, Status: req.Status}
	if strings.TrimSpace(req.DueDate) != "" {
		due, err := parseDate(req.DueDate)
		if err != nil {
			apierrors.RenderValidation(w, "Due date must be a valid date.")
			return
		}
		task.DueDate = &due
	}
	if req.AssignedTo != nil {
		assignees, err := parseAssignees(req.AssignedTo)
		if err != nil {
			apierrors.RenderValidation(w, err.Error())
			return
		}
		task.AssignedTo = assignees
	}

	created, err := h.Tasks.Create(r.Context(), task)
	if errors.Is(err, taskstore.ErrInvalidStatus) {
		apierrors.RenderValidation(w, err.Error())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "task create failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, created)
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// List handles GET /projects/{projectID}/tasks?sort=name|due|status&dir=asc|desc.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	_, projectID, ok := h.memberGate(w, r)
	if !ok {
		return
	}

	list, err := h.Tasks.ListForProject(r.Context(), projectID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "task list failed", err)
		return
	}
	if list == nil {
		list = []models.Task{}
	}
	if key := r.URL.Query().Get("sort"); key != "" {
		taskstore.Sort(list, key, r.URL.Query().Get("dir") == "desc")
	}
	shared.WriteJSON(w, http.StatusOK, list)
}

// Stats handles GET /projects/{projectID}/tasks/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	_, projectID, ok := h.memberGate(w, r)
	if !ok {
		return
	}
	st, err := h.Tasks.Stats(r.Context(), projectID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "task stats failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, st)
}

type updateRequest struct {
	Name       *string   `json:"name,omitempty"`
	Status     *string   `json:"status,omitempty"`
	DueDate    *string   `json:"due_date,omitempty"` // empty string clears
	AssignedTo *[]string `json:"assigned_to,omitempty"`
}

// metadata reports whether the update touches creator-only fields.
func (u updateRequest) metadata() bool {
	return u.Name != nil || u.DueDate != nil || u.AssignedTo != nil
}

// Update handles PATCH /projects/{projectID}/tasks/{taskID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	uid, projectID, ok := h.memberGate(w, r)
	if !ok {
		return
	}
	taskID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "taskID"))
	if err != nil {
		apierrors.RenderNotFound(w, "Task not found.")
		return
	}

	var req updateRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		apierrors.RenderValidation(w, err.Error())
		return
	}

	if req.metadata() {
		creator, err := projectpolicy.IsCreator(r.Context(), h.DB, projectID, uid)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "creator check failed", err)
			return
		}
		if !creator {
			apierrors.RenderForbidden(w, "Only the project creator can edit task details.")
			return
		}
	}

	task, err := h.Tasks.GetByID(r.Context(), taskID)
	if errors.Is(err, mongo.ErrNoDocuments) || (err == nil && task.ProjectID != projectID) {
		apierrors.RenderNotFound(w, "Task not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "task load failed", err)
		return
	}

	var upd taskstore.Update
	if req.Name != nil {
		name := sanitize.Text(*req.Name)
		if name == "" {
			apierrors.RenderValidation(w, "Task name must not be empty.")
			return
		}
		upd.Name = &name
	}
	upd.Status = req.Status
	if req.DueDate != nil {
		if strings.TrimSpace(*req.DueDate) == "" {
			upd.ClearDueDate = true
		} else {
			due, err := parseDate(*req.DueDate)
			if err != nil {
				apierrors.RenderValidation(w, "Due date must be a valid date.")
				return
			}
			upd.DueDate = &due
		}
	}
	if req.AssignedTo != nil {
		assignees, err := parseAssignees(*req.AssignedTo)
		if err != nil {
			apierrors.RenderValidation(w, err.Error())
			return
		}
		upd.AssignedTo = &assignees
	}

	if err := h.Tasks.Update(r.Context(), taskID, upd); err != nil {
		switch {
		case errors.Is(err, taskstore.ErrInvalidStatus):
			apierrors.RenderValidation(w, err.Error())
		case errors.Is(err, mongo.ErrNoDocuments):
			apierrors.RenderNotFound(w, "Task not found.")
		default:
			h.ErrLog.LogServerError(w, r, "task update failed", err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /projects/{projectID}/tasks/{taskID}. Creator only.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, projectID, ok := h.memberGate(w, r)
	if !ok {
		return
	}
	taskID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "taskID"))
	if err != nil {
		apierrors.RenderNotFound(w, "Task not found.")
		return
	}

	creator, err := projectpolicy.IsCreator(r.Context(), h.DB, projectID, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "creator check failed", err)
		return
	}
	if !creator {
		apierrors.RenderForbidden(w, "Only the project creator can delete tasks.")
		return
	}

	task, err := h.Tasks.GetByID(r.Context(), taskID)
	if errors.Is(err, mongo.ErrNoDocuments) || (err == nil && task.ProjectID != projectID) {
		apierrors.RenderNotFound(w, "Task not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "task load failed", err)
		return
	}

	if _, err := h.Tasks.Delete(r.Context(), taskID); err != nil {
		h.ErrLog.LogServerError(w, r, "task delete failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
