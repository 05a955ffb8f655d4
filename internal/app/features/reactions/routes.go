// internal/app/features/reactions/routes.go
package reactions

import (
	"github.com/go-chi/chi/v5"
	"github.com/harborteam/harbor/internal/app/system/auth"
)

// Routes serves the toggle endpoint, mounted under
// /api/messages/{messageId}/reactions.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Post("/", h.HandleToggle)

	return r
}
