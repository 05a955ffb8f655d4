// internal/app/features/uploads/routes.go
package uploads

import (
	"github.com/go-chi/chi/v5"
	"github.com/harborteam/harbor/internal/app/system/auth"
)

// Routes serves the upload API, mounted under /api/uploads.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Post("/", h.HandleIssue)
	r.Put("/{storageId}", h.HandlePut)
	r.Get("/{storageId}", h.ServeGet)

	return r
}
