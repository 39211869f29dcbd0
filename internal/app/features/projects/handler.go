// internal/app/features/projects/handler.go
package projects

import (
	"errors"
	"net/http"
	"strings"
	"time"

	apierrors "github.com/dalemusser/collabhub/internal/app/features/errors"
	"github.com/dalemusser/collabhub/internal/app/features/shared"
	"github.com/dalemusser/collabhub/internal/app/policy/projectpolicy"
	projectstore "github.com/dalemusser/collabhub/internal/app/store/projects"
	userstore "github.com/dalemusser/collabhub/internal/app/store/users"
	"github.com/dalemusser/collabhub/internal/app/system/authz"
	"github.com/dalemusser/collabhub/internal/app/system/sanitize"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Provisioner is the async room-provisioning hook; project creation
// enqueues and returns without waiting.
type Provisioner interface {
	Enqueue(projectID primitive.ObjectID)
}

type Handler struct {
	DB       *mongo.Database
	Projects *projectstore.Store
	Users    *userstore.Store
	Rooms    Provisioner
	ErrLog   *apierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, projects *projectstore.Store, users *userstore.Store, rooms Provisioner, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Projects: projects,
		Users:    users,
		Rooms:    rooms,
		ErrLog:   errLog,
		Log:      logger,
	}
}

// dateOnly parses a deadline accepted as either a bare date or RFC 3339.
func dateOnly(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// deadlineValid requires the deadline to fall on today's calendar date
// (UTC) or later; time of day is ignored.
func deadlineValid(t time.Time) bool {
	now := time.Now().UTC()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	d := t.UTC()
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(startOfToday)
}

// projectID pulls and validates the {projectID} URL parameter.
func projectID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	return id, err == nil
}

type memberView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type projectView struct {
	models.Project
	MemberDetails []memberView `json:"member_details,omitempty"`
}

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Deadline    string `json:"deadline,omitempty"`
}

// Create handles POST /projects.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		apierrors.RenderUnauthorized(w)
		return
	}

	var req createRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		apierrors.RenderValidation(w, err.Error())
		return
	}
	name := sanitize.Text(req.Name)
	if name == "" {
		apierrors.RenderValidation(w, "Project name is required.")
		return
	}

	var deadline *time.Time
	if strings.TrimSpace(req.Deadline) != "" {
		t, err := dateOnly(strings.TrimSpace(req.Deadline))
		if err != nil {
			apierrors.RenderValidation(w, "Deadline must be a valid date.")
			return
		}
		if !deadlineValid(t) {
			apierrors.RenderValidation(w, "Deadline must be today or later.")
			return
		}
		deadline = &t
	}

	created, err := h.Projects.Create(r.Context(), models.Project{
		Name:        name,
		Description: sanitize.Text(req.Description),
		Deadline:    deadline,
		Creator:     uid,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "project create failed", err)
		return
	}

	if h.Rooms != nil {
		h.Rooms.Enqueue(created.ID)
	}
	h.Log.Info("project created",
		zap.String("project_id", created.ID.Hex()),
		zap.String("creator", uid.Hex()))
	shared.WriteJSON(w, http.StatusCreated, created)
}

// List handles GET /projects.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		apierrors.RenderUnauthorized(w)
		return
	}
	list, err := h.Projects.ListForUser(r.Context(), uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "project list failed", err)
		return
	}
	if list == nil {
		list = []models.Project{}
	}
	shared.WriteJSON(w, http.StatusOK, list)
}

// Get handles GET /projects/{projectID}. Members only; the response
// carries resolved member names for display.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		apierrors.RenderUnauthorized(w)
		return
	}
	id, ok := projectID(r)
	if !ok {
		apierrors.RenderNotFound(w, "Project not found.")
		return
	}

	p, err := h.Projects.GetByID(r.Context(), id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		apierrors.RenderNotFound(w, "Project not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "project load failed", err)
		return
	}
	if !p.HasMember(uid) {
		apierrors.RenderForbidden(w, "You are not a member of this project.")
		return
	}

	users, err := h.Users.ListByIDs(r.Context(), p.Members)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "member load failed", err)
		return
	}
	view := projectView{Project: p}
	for _, u := range users {
		view.MemberDetails = append(view.MemberDetails, memberView{
			ID:    u.ID.Hex(),
			Name:  u.DisplayName(),
			Email: u.Email,
		})
	}
	shared.WriteJSON(w, http.StatusOK, view)
}

type updateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Deadline    *string `json:"deadline,omitempty"` // empty string clears
}

// Update handles PATCH /projects/{projectID}. Any member may update
// name, description, and deadline; omitted fields are untouched.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		apierrors.RenderUnauthorized(w)
		return
	}
	id, ok := projectID(r)
	if !ok {
		apierrors.RenderNotFound(w, "Project not found.")
		return
	}
	member, err := projectpolicy.IsMember(r.Context(), h.DB, id, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "membership check failed", err)
		return
	}
	if !member {
		apierrors.RenderForbidden(w, "You are not a member of this project.")
		return
	}

	var req updateRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		apierrors.RenderValidation(w, err.Error())
		return
	}

	var upd projectstore.InfoUpdate
	if req.Name != nil {
		name := sanitize.Text(*req.Name)
		if name == "" {
			apierrors.RenderValidation(w, "Project name must not be empty.")
			return
		}
		upd.Name = &name
	}
	if req.Description != nil {
		desc := sanitize.Text(*req.Description)
		upd.Description = &desc
	}
	if req.Deadline != nil {
		if strings.TrimSpace(*req.Deadline) == "" {
			upd.ClearDeadline = true
		} else {
			t, err := dateOnly(strings.TrimSpace(*req.Deadline))
			if err != nil {
				apierrors.RenderValidation(w, "Deadline must be a valid date.")
				return
			}
			if !deadlineValid(t) {
				apierrors.RenderValidation(w, "Deadline must be today or later.")
				return
			}
			upd.Deadline = &t
		}
	}

	if err := h.Projects.UpdateInfo(r.Context(), id, upd); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierrors.RenderNotFound(w, "Project not found.")
			return
		}
		h.ErrLog.LogServerError(w, r, "project update failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Leave handles POST /projects/{projectID}/leave.
func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		apierrors.RenderUnauthorized(w)
		return
	}
	id, ok := projectID(r)
	if !ok {
		apierrors.RenderNotFound(w, "Project not found.")
		return
	}

	err := h.Projects.Leave(r.Context(), id, uid)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		apierrors.RenderNotFound(w, "Project not found.")
	case errors.Is(err, projectstore.ErrCreatorCannotLeave):
		apierrors.RenderForbidden(w, "The creator cannot leave; delete the project instead.")
	case err != nil:
		h.ErrLog.LogServerError(w, r, "project leave failed", err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// Delete handles DELETE /projects/{projectID}. Creator only; cascades
// tasks, chats, messages, files, and pending invites.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		apierrors.RenderUnauthorized(w)
		return
	}
	id, ok := projectID(r)
	if !ok {
		apierrors.RenderNotFound(w, "Project not found.")
		return
	}

	p, err := h.Projects.GetByID(r.Context(), id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		apierrors.RenderNotFound(w, "Project not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "project load failed", err)
		return
	}
	if p.Creator != uid {
		apierrors.RenderForbidden(w, "Only the project creator can delete the project.")
		return
	}

	if err := h.Projects.Delete(r.Context(), id); err != nil {
		h.ErrLog.LogServerError(w, r, "project delete failed", err)
		return
	}
	h.Log.Info("project deleted",
		zap.String("project_id", id.Hex()),
		zap.String("creator", uid.Hex()))
	w.WriteHeader(http.StatusNoContent)
}
