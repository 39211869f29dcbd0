// internal/app/features/calls/handler.go
package calls

import (
	"context"
	"errors"
	"net/http"

	apierrors "github.com/dalemusser/collabhub/internal/app/features/errors"
	"github.com/dalemusser/collabhub/internal/app/features/shared"
	"github.com/dalemusser/collabhub/internal/app/policy/projectpolicy"
	projectstore "github.com/dalemusser/collabhub/internal/app/store/projects"
	"github.com/dalemusser/collabhub/internal/app/system/authz"
	"github.com/dalemusser/collabhub/internal/app/system/rooms"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB       *mongo.Database
	Projects *projectstore.Store
	Rooms    rooms.Provisioner
	ErrLog   *apierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, projects *projectstore.Store, provisioner rooms.Provisioner, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Projects: projects,
		Rooms:    provisioner,
		ErrLog:   errLog,
		Log:      logger,
	}
}

func validKind(kind string) bool {
	for _, k := range models.RoomKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// roomGate resolves the caller, membership, and the requested room id.
// A project whose room of this kind never provisioned gets a 404 so the
// client can fall back or retry later.
func (h *Handler) roomGate(w http.ResponseWriter, r *http.Request) (uid primitive.ObjectID, roomID string, ok bool) {
	_, uid, signedIn := authz.UserCtx(r)
	if !signedIn {
		apierrors.RenderUnauthorized(w)
		return uid, "", false
	}
	projectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		apierrors.RenderNotFound(w, "Project not found.")
		return uid, "", false
	}
	kind := chi.URLParam(r, "kind")
	if !validKind(kind) {
		apierrors.RenderValidation(w, "Unknown call room kind.")
		return uid, "", false
	}
	member, err := projectpolicy.IsMember(r.Context(), h.DB, projectID, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "membership check failed", err)
		return uid, "", false
	}
	if !member {
		apierrors.RenderForbidden(w, "You are not a member of this project.")
		return uid, "", false
	}

	p, err := h.Projects.GetByID(r.Context(), projectID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		apierrors.RenderNotFound(w, "Project not found.")
		return uid, "", false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "project lookup failed", err)
		return uid, "", false
	}
	id := p.Rooms.ByKind(kind)
	if id == nil {
		apierrors.RenderNotFound(w, "Call room is not provisioned yet.")
		return uid, "", false
	}
	return uid, *id, true
}

// Token handles POST /projects/{projectID}/calls/{kind}/token. The
// returned credential lets the member join the room directly from the
// browser.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	uid, roomID, ok := h.roomGate(w, r)
	if !ok {
		return
	}
	token, err := h.Rooms.JoinToken(roomID, uid.Hex(), "host")
	if err != nil {
		h.ErrLog.LogServerError(w, r, "join token mint failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, struct {
		RoomID string `json:"room_id"`
		Token  string `json:"token"`
	}{RoomID: roomID, Token: token})
}

// StartRecording handles POST /projects/{projectID}/calls/{kind}/recording/start.
func (h *Handler) StartRecording(w http.ResponseWriter, r *http.Request) {
	h.recording(w, r, h.Rooms.StartRecording, "recording start failed")
}

// StopRecording handles POST /projects/{projectID}/calls/{kind}/recording/stop.
func (h *Handler) StopRecording(w http.ResponseWriter, r *http.Request) {
	h.recording(w, r, h.Rooms.StopRecording, "recording stop failed")
}

func (h *Handler) recording(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, roomID string) error, msg string) {
	_, roomID, ok := h.roomGate(w, r)
	if !ok {
		return
	}
	if err := op(r.Context(), roomID); err != nil {
		if rooms.IsUpstream(err) {
			apierrors.RenderUpstream(w, "The call service rejected the recording request.")
			h.Log.Warn(msg, zap.String("room_id", roomID), zap.Error(err))
			return
		}
		h.ErrLog.LogServerError(w, r, msg, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
