// internal/app/features/chats/routes.go
package chats

import "github.com/go-chi/chi/v5"

// Routes returns the chat subrouter, mounted under
// /projects/{projectID}/chats by the bootstrap router.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListChannels)
	r.Post("/", h.CreateChannel)
	r.Patch("/{chatID}", h.RenameChannel)
	r.Delete("/{chatID}", h.DeleteChannel)
	r.Get("/{chatID}/messages", h.History)
	r.Post("/{chatID}/messages", h.Send)
	r.Get("/{chatID}/stream", h.Stream)
	return r
}
