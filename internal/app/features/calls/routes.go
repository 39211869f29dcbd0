// internal/app/features/calls/routes.go
package calls

import "github.com/go-chi/chi/v5"

// Routes returns the call subrouter, mounted under
// /projects/{projectID}/calls by the bootstrap router.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/{kind}/token", h.Token)
	r.Post("/{kind}/recording/start", h.StartRecording)
	r.Post("/{kind}/recording/stop", h.StopRecording)
	return r
}
