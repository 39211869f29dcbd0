// internal/app/features/chats/handler.go
package chats

import (
	"errors"
	"net/http"
	"strconv"

	apierrors "github.com/dalemusser/collabhub/internal/app/features/errors"
	"github.com/dalemusser/collabhub/internal/app/features/shared"
	"github.com/dalemusser/collabhub/internal/app/policy/projectpolicy"
	chatstore "github.com/dalemusser/collabhub/internal/app/store/chats"
	"github.com/dalemusser/collabhub/internal/app/system/authz"
	"github.com/dalemusser/collabhub/internal/app/system/ratelimit"
	"github.com/dalemusser/collabhub/internal/app/system/realtime"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB      *mongo.Database
	Chats   *chatstore.Store
	Hub     *realtime.Hub
	Limiter *ratelimit.Limiter // per-sender message rate
	ErrLog  *apierrors.ErrorLogger
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, chats *chatstore.Store, hub *realtime.Hub, limiter *ratelimit.Limiter, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Chats:   chats,
		Hub:     hub,
		Limiter: limiter,
		ErrLog:  errLog,
		Log:     logger,
	}
}

// memberGate verifies the caller and project membership, rendering the
// failure response itself.
func (h *Handler) memberGate(w http.ResponseWriter, r *http.Request) (name string, uid, projectID primitive.ObjectID, ok bool) {
	name, uid, signedIn := authz.UserCtx(r)
	if !signedIn {
		apierrors.RenderUnauthorized(w)
		return name, uid, projectID, false
	}
	projectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		apierrors.RenderNotFound(w, "Project not found.")
		return name, uid, projectID, false
	}
	member, err := projectpolicy.IsMember(r.Context(), h.DB, projectID, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "membership check failed", err)
		return name, uid, projectID, false
	}
	if !member {
		apierrors.RenderForbidden(w, "You are not a member of this project.")
		return name, uid, projectID, false
	}
	return name, uid, projectID, true
}

// creatorGate additionally requires the caller to be the project creator.
func (h *Handler) creatorGate(w http.ResponseWriter, r *http.Request) (uid, projectID primitive.ObjectID, ok bool) {
	_, uid, projectID, ok = h.memberGate(w, r)
	if !ok {
		return uid, projectID, false
	}
	creator, err := projectpolicy.IsCreator(r.Context(), h.DB, projectID, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "creator check failed", err)
		return uid, projectID, false
	}
	if !creator {
		apierrors.RenderForbidden(w, "Only the project creator can manage channels.")
		return uid, projectID, false
	}
	return uid, projectID, true
}

// ListChannels handles GET /projects/{projectID}/chats.
func (h *Handler) ListChannels(w http.ResponseWriter, r *http.Request) {
	_, _, projectID, ok := h.memberGate(w, r)
	if !ok {
		return
	}
	channels, err := h.Chats.ListChannels(r.Context(), projectID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "channel list failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, channels)
}

type channelRequest struct {
	Name string `json:"name"`
}

// CreateChannel handles POST /projects/{projectID}/chats. Creator only.
func (h *Handler) CreateChannel(w http.ResponseWriter, r *http.Request) {
	_, projectID, ok := h.creatorGate(w, r)
	if !ok {
		return
	}
	var req channelRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		apierrors.RenderValidation(w, err.Error())
		return
	}
	c, err := h.Chats.CreateChannel(r.Context(), projectID, req.Name)
	switch {
	case errors.Is(err, chatstore.ErrReservedName), errors.Is(err, chatstore.ErrEmptyChannelName):
		apierrors.RenderValidation(w, err.Error())
	case err != nil:
		h.ErrLog.LogServerError(w, r, "channel create failed", err)
	default:
		shared.WriteJSON(w, http.StatusCreated, c)
	}
}

// RenameChannel handles PATCH /projects/{projectID}/chats/{chatID}. Creator only.
func (h *Handler) RenameChannel(w http.ResponseWriter, r *http.Request) {
	_, projectID, ok := h.creatorGate(w, r)
	if !ok {
		return
	}
	var req channelRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		apierrors.RenderValidation(w, err.Error())
		return
	}
	err := h.Chats.RenameChannel(r.Context(), projectID, chi.URLParam(r, "chatID"), req.Name)
	switch {
	case errors.Is(err, chatstore.ErrGeneralImmutable), errors.Is(err, chatstore.ErrReservedName),
		errors.Is(err, chatstore.ErrEmptyChannelName):
		apierrors.RenderValidation(w, err.Error())
	case errors.Is(err, chatstore.ErrChatNotFound):
		apierrors.RenderNotFound(w, "Channel not found.")
	case err != nil:
		h.ErrLog.LogServerError(w, r, "channel rename failed", err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteChannel handles DELETE /projects/{projectID}/chats/{chatID}. Creator only.
func (h *Handler) DeleteChannel(w http.ResponseWriter, r *http.Request) {
	_, projectID, ok := h.creatorGate(w, r)
	if !ok {
		return
	}
	err := h.Chats.DeleteChannel(r.Context(), projectID, chi.URLParam(r, "chatID"))
	switch {
	case errors.Is(err, chatstore.ErrGeneralImmutable):
		apierrors.RenderValidation(w, err.Error())
	case errors.Is(err, chatstore.ErrChatNotFound):
		apierrors.RenderNotFound(w, "Channel not found.")
	case err != nil:
		h.ErrLog.LogServerError(w, r, "channel delete failed", err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

type sendRequest struct {
	Text string `json:"text"`
}

// Send handles POST /projects/{projectID}/chats/{chatID}/messages.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	name, uid, projectID, ok := h.memberGate(w, r)
	if !ok {
		return
	}
	if h.Limiter != nil && !h.Limiter.Allow(uid.Hex()) {
		apierrors.RenderValidation(w, "You are sending messages too quickly.")
		return
	}

	var req sendRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		apierrors.RenderValidation(w, err.Error())
		return
	}

	msg, err := h.Chats.SendMessage(r.Context(), projectID, chi.URLParam(r, "chatID"), uid, name, req.Text)
	switch {
	case errors.Is(err, chatstore.ErrEmptyMessage), errors.Is(err, chatstore.ErrMessageTooLong):
		apierrors.RenderValidation(w, err.Error())
	case errors.Is(err, chatstore.ErrChatNotFound):
		apierrors.RenderNotFound(w, "Channel not found.")
	case err != nil:
		h.ErrLog.LogServerError(w, r, "message send failed", err)
	default:
		shared.WriteJSON(w, http.StatusCreated, msg)
	}
}

// History handles GET /projects/{projectID}/chats/{chatID}/messages
// with optional after_seq and limit query parameters. Messages come
// back in sequence order with day-divider sections.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	_, _, projectID, ok := h.memberGate(w, r)
	if !ok {
		return
	}

	afterSeq, _ := strconv.ParseInt(r.URL.Query().Get("after_seq"), 10, 64)
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)

	msgs, err := h.Chats.ListMessages(r.Context(), projectID, chi.URLParam(r, "chatID"), afterSeq, limit)
	if errors.Is(err, chatstore.ErrChatNotFound) {
		apierrors.RenderNotFound(w, "Channel not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "message history failed", err)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}

	shared.WriteJSON(w, http.StatusOK, struct {
		Messages []models.Message `json:"messages"`
		Days     []DaySection     `json:"days"`
	}{Messages: msgs, Days: GroupByDay(msgs, timeNow())})
}
