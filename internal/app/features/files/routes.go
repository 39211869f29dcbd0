// internal/app/features/files/routes.go
package files

import "github.com/go-chi/chi/v5"

// Routes returns the file subrouter, mounted under
// /projects/{projectID}/files by the bootstrap router. The transcript
// listing lives at /projects/{projectID}/transcripts and is registered
// there directly.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Upload)
	r.Delete("/{fileID}", h.Delete)
	return r
}
