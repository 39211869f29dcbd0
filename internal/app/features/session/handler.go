// internal/app/features/session/handler.go

// Package session implements trust sign-in. Identity is asserted by the
// fronting identity provider; this service accepts the asserted name and
// email, creates the account on first sight, and issues its own session
// cookie.
package session

import (
	"net/http"
	"strings"

	apierrors "github.com/dalemusser/collabhub/internal/app/features/errors"
	"github.com/dalemusser/collabhub/internal/app/features/shared"
	userstore "github.com/dalemusser/collabhub/internal/app/store/users"
	"github.com/dalemusser/collabhub/internal/app/system/auth"
	"github.com/dalemusser/collabhub/internal/app/system/inputval"
	"github.com/dalemusser/collabhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

type Handler struct {
	Users    *userstore.Store
	Sessions *auth.SessionManager
	Limiter  *ratelimit.Limiter
	ErrLog   *apierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(users *userstore.Store, sessions *auth.SessionManager, limiter *ratelimit.Limiter, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    users,
		Sessions: sessions,
		Limiter:  limiter,
		ErrLog:   errLog,
		Log:      logger,
	}
}

type signInRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SignIn handles POST /session.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	if h.Limiter != nil && !h.Limiter.Allow(ratelimit.ClientIP(r)) {
		apierrors.RenderValidation(w, "Too many sign-in attempts; try again shortly.")
		return
	}

	var req signInRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		apierrors.RenderValidation(w, err.Error())
		return
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)

	if req.FirstName == "" || req.LastName == "" {
		apierrors.RenderValidation(w, "First and last name are required.")
		return
	}
	if !inputval.IsValidEmail(req.Email) {
		apierrors.RenderValidation(w, "A valid email address is required.")
		return
	}

	u, err := h.Users.EnsureByEmail(r.Context(), req.FirstName, req.LastName, req.Email)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "sign-in failed", err)
		return
	}

	su := auth.SessionUser{ID: u.ID.Hex(), Name: u.DisplayName(), Email: u.Email}
	if err := h.Sessions.SignIn(w, r, su); err != nil {
		h.ErrLog.LogServerError(w, r, "session write failed", err)
		return
	}

	h.Log.Info("user signed in", zap.String("user_id", su.ID))
	shared.WriteJSON(w, http.StatusOK, userResponse{ID: su.ID, Name: su.Name, Email: su.Email})
}

// Current handles GET /session.
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		apierrors.RenderUnauthorized(w)
		return
	}
	shared.WriteJSON(w, http.StatusOK, userResponse{ID: u.ID, Name: u.Name, Email: u.Email})
}

// SignOut handles DELETE /session.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.SignOut(w, r); err != nil {
		h.ErrLog.LogServerError(w, r, "session clear failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
