// internal/app/features/invites/handler.go
package invites

import (
	"errors"
	"net/http"
	"strings"

	apierrors "github.com/dalemusser/collabhub/internal/app/features/errors"
	"github.com/dalemusser/collabhub/internal/app/features/shared"
	invitestore "github.com/dalemusser/collabhub/internal/app/store/invites"
	projectstore "github.com/dalemusser/collabhub/internal/app/store/projects"
	userstore "github.com/dalemusser/collabhub/internal/app/store/users"
	"github.com/dalemusser/collabhub/internal/app/system/authz"
	"github.com/dalemusser/collabhub/internal/app/system/inputval"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Invites  *invitestore.Store
	Projects *projectstore.Store
	Users    *userstore.Store
	ErrLog   *apierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(invites *invitestore.Store, projects *projectstore.Store, users *userstore.Store, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Invites:  invites,
		Projects: projects,
		Users:    users,
		ErrLog:   errLog,
		Log:      logger,
	}
}

type inviteRequest struct {
	Email string `json:"email"`
}

// Create handles POST /projects/{projectID}/invites. Any member may
// invite; the email must resolve to exactly one account, which the
// unique email index guarantees.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	name, uid, ok := authz.UserCtx(r)
	if !ok {
		apierrors.RenderUnauthorized(w)
		return
	}
	projectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		apierrors.RenderNotFound(w, "Project not found.")
		return
	}

	var req inviteRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		apierrors.RenderValidation(w, err.Error())
		return
	}
	email := strings.TrimSpace(req.Email)
	if !inputval.IsValidEmail(email) {
		apierrors.RenderValidation(w, "A valid email address is required.")
		return
	}

	p, err := h.Projects.GetByID(r.Context(), projectID)
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

	invitee, err := h.Users.GetByEmail(r.Context(), email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		apierrors.RenderNotFound(w, "No account exists for that email address.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "invitee lookup failed", err)
		return
	}
	if p.HasMember(invitee.ID) {
		apierrors.RenderValidation(w, "That user is already a member of this project.")
		return
	}

	inv, err := h.Invites.Invite(r.Context(), invitee.ID, p.ID, p.Name, name)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "invite delivery failed", err)
		return
	}
	h.Log.Info("invitation sent",
		zap.String("project_id", p.ID.Hex()),
		zap.String("invitee", invitee.ID.Hex()))
	shared.WriteJSON(w, http.StatusCreated, inv)
}

// List handles GET /invites: the caller's pending invitations.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		apierrors.RenderUnauthorized(w)
		return
	}
	list, err := h.Invites.ListForUser(r.Context(), uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "invite list failed", err)
		return
	}
	if list == nil {
		list = []models.Invitation{}
	}
	shared.WriteJSON(w, http.StatusOK, list)
}

// Accept handles POST /invites/{inviteID}/accept. A retried accept
// (invite already removed) answers 204 like the first one did.
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		apierrors.RenderUnauthorized(w)
		return
	}
	inviteID := chi.URLParam(r, "inviteID")

	err := h.Invites.Accept(r.Context(), uid, inviteID)
	switch {
	case errors.Is(err, invitestore.ErrProjectGone):
		apierrors.RenderNotFound(w, "That project no longer exists.")
	case err != nil:
		h.ErrLog.LogServerError(w, r, "invite accept failed", err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// Decline handles POST /invites/{inviteID}/decline.
func (h *Handler) Decline(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		apierrors.RenderUnauthorized(w)
		return
	}
	if err := h.Invites.Decline(r.Context(), uid, chi.URLParam(r, "inviteID")); err != nil {
		h.ErrLog.LogServerError(w, r, "invite decline failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
