// internal/app/features/workspaces/routes.go
package workspaces

import (
	"github.com/go-chi/chi/v5"
	"github.com/harborteam/harbor/internal/app/system/auth"
)

// Routes mounts the workspace API. Mounted under /api/workspaces.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Post("/join", h.HandleJoin)

	r.Get("/{id}", h.ServeGet)
	r.Get("/{id}/info", h.ServeInfo)
	r.Patch("/{id}", h.HandleRename)
	r.Delete("/{id}", h.HandleDelete)
	r.Post("/{id}/join-code", h.HandleNewJoinCode)

	return r
}
