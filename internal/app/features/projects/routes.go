// internal/app/features/projects/routes.go
package projects

import "github.com/go-chi/chi/v5"

// Routes returns the /projects subrouter. Task, chat, invite, file, and
// call routes nest under /projects/{projectID} and are mounted by the
// bootstrap router.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{projectID}", h.Get)
	r.Patch("/{projectID}", h.Update)
	r.Delete("/{projectID}", h.Delete)
	r.Post("/{projectID}/leave", h.Leave)
	return r
}
