// internal/app/features/channels/routes.go
package channels

import (
	"github.com/go-chi/chi/v5"
	"github.com/harborteam/harbor/internal/app/system/auth"
)

// WorkspaceRoutes serves endpoints mounted under
// /api/workspaces/{id}/channels.
func WorkspaceRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)

	return r
}

// Routes serves per-channel endpoints mounted under /api/channels.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/{channelId}", h.ServeGet)
	r.Patch("/{channelId}", h.HandleRename)
	r.Delete("/{channelId}", h.HandleDelete)

	return r
}
