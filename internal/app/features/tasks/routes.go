// internal/app/features/tasks/routes.go
package tasks

import "github.com/go-chi/chi/v5"

// Routes returns the task subrouter, mounted under
// /projects/{projectID}/tasks by the bootstrap router.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/stats", h.Stats)
	r.Patch("/{taskID}", h.Update)
	r.Delete("/{taskID}", h.Delete)
	return r
}
