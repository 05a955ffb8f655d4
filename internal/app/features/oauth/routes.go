// internal/app/features/oauth/routes.go
package oauth

import "github.com/go-chi/chi/v5"

// Routes mounts the browser-facing OAuth endpoints. Mounted under
// /auth.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{provider}", h.ServeLogin)
	r.Get("/{provider}/callback", h.ServeCallback)
	return r
}
