// internal/app/features/members/routes.go
package members

import (
	"github.com/go-chi/chi/v5"
	"github.com/harborteam/harbor/internal/app/system/auth"
)

// WorkspaceRoutes serves the roster endpoints mounted under
// /api/workspaces/{id}/members.
func WorkspaceRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/me", h.ServeCurrent)

	return r
}

// Routes serves the per-member endpoints mounted under /api/members.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/{memberId}", h.ServeGet)
	r.Patch("/{memberId}", h.HandleUpdateRole)
	r.Delete("/{memberId}", h.HandleRemove)

	return r
}
