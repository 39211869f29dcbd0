// internal/app/features/invites/routes.go
package invites

import "github.com/go-chi/chi/v5"

// Routes returns the /invites subrouter (the caller's inbox). The
// invite-creation route lives under /projects/{projectID}/invites and
// is mounted by the bootstrap router.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/{inviteID}/accept", h.Accept)
	r.Post("/{inviteID}/decline", h.Decline)
	return r
}
