// internal/app/features/conversations/routes.go
package conversations

import (
	"github.com/go-chi/chi/v5"
	"github.com/harborteam/harbor/internal/app/system/auth"
)

// WorkspaceRoutes serves endpoints mounted under
// /api/workspaces/{id}/conversations.
func WorkspaceRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Post("/", h.HandleResolve)

	return r
}

// Routes serves per-conversation endpoints mounted under
// /api/conversations.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/{conversationId}", h.ServeGet)

	return r
}
