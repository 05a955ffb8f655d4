// internal/app/features/login/routes.go
package login

import (
	"github.com/go-chi/chi/v5"
	"github.com/harborteam/harbor/internal/app/system/auth"
)

// Routes mounts the authentication API. Mounted under /api/auth. The
// credential endpoints are public; /me requires a session, and
// /signout is a no-op without one.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", h.HandleSignup)
	r.Post("/signin", h.HandleSignin)
	r.Post("/signout", h.HandleSignout)

	r.Post("/otp/send", h.HandleOTPSend)
	r.Post("/otp/verify", h.HandleOTPVerify)

	r.Post("/password/reset", h.HandleResetSend)
	r.Post("/password/confirm", h.HandleResetConfirm)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Get("/me", h.ServeMe)
		r.Patch("/me", h.HandleUpdateMe)
	})

	return r
}
