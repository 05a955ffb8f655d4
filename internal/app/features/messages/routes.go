// internal/app/features/messages/routes.go
package messages

import (
	"github.com/go-chi/chi/v5"
	"github.com/harborteam/harbor/internal/app/system/auth"
)

// Routes serves the message API, mounted under /api/messages.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandlePost)

	r.Get("/{messageId}", h.ServeGet)
	r.Patch("/{messageId}", h.HandleEdit)
	r.Delete("/{messageId}", h.HandleDelete)

	return r
}
