// internal/app/features/oauth/flow.go
package oauth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/harborteam/harbor/internal/app/store/oauthstate"
	"github.com/harborteam/harbor/internal/app/system/auth"
	"github.com/harborteam/harbor/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/{provider}                                                         |
| Initiates the OAuth flow by redirecting to the provider's consent screen.    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	cfg := h.config(provider)
	if cfg == nil {
		h.Log.Warn("oauth provider not configured", zap.String("provider", provider))
		http.Redirect(w, r, "/signin?error=provider_not_configured", http.StatusSeeOther)
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate oauth state", zap.Error(err))
		http.Redirect(w, r, "/signin?error=internal", http.StatusSeeOther)
		return
	}

	returnURL := sanitizeReturnURL(r.URL.Query().Get("return"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	expiresAt := time.Now().UTC().Add(oauthstate.DefaultExpiry)
	if err := h.States.Save(ctx, state, provider, returnURL, expiresAt); err != nil {
		h.Log.Error("failed to save oauth state", zap.Error(err))
		http.Redirect(w, r, "/signin?error=internal", http.StatusSeeOther)
		return
	}

	url := cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)

	h.Log.Debug("initiating oauth flow",
		zap.String("provider", provider),
		zap.String("return_url", returnURL))

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/{provider}/callback                                                |
| Validates state, exchanges the code, fetches the profile, and signs in.      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")
	cfg := h.config(provider)
	if cfg == nil {
		http.Redirect(w, r, "/signin?error=provider_not_configured", http.StatusSeeOther)
		return
	}

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("oauth provider returned error",
			zap.String("provider", provider),
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		http.Redirect(w, r, "/signin?error=provider_denied", http.StatusSeeOther)
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		h.Log.Warn("missing oauth state parameter", zap.String("provider", provider))
		http.Redirect(w, r, "/signin?error=invalid_state", http.StatusSeeOther)
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.States.Consume(ctxTimeout, state, provider)
	if err != nil {
		h.Log.Error("failed to consume oauth state", zap.Error(err))
		http.Redirect(w, r, "/signin?error=internal", http.StatusSeeOther)
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired oauth state", zap.String("provider", provider))
		http.Redirect(w, r, "/signin?error=invalid_state", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing oauth code parameter", zap.String("provider", provider))
		http.Redirect(w, r, "/signin?error=invalid_code", http.StatusSeeOther)
		return
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange oauth code",
			zap.String("provider", provider), zap.Error(err))
		http.Redirect(w, r, "/signin?error=token_exchange", http.StatusSeeOther)
		return
	}

	p, err := fetchProfile(ctx, provider, token)
	if err != nil {
		h.Log.Error("failed to fetch oauth profile",
			zap.String("provider", provider), zap.Error(err))
		http.Redirect(w, r, "/signin?error=user_info", http.StatusSeeOther)
		return
	}
	if p.Email == "" {
		h.Log.Warn("oauth profile missing email", zap.String("provider", provider))
		http.Redirect(w, r, "/signin?error=no_email", http.StatusSeeOther)
		return
	}

	user, err := h.Users.UpsertByEmail(ctxTimeout, p.Email, p.Name, p.Image, provider)
	if err != nil {
		h.Log.Error("failed to upsert oauth user",
			zap.String("provider", provider), zap.Error(err))
		http.Redirect(w, r, "/signin?error=internal", http.StatusSeeOther)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, &auth.SessionUser{
		ID:    user.ID.Hex(),
		Name:  user.Name,
		Email: user.Email,
	}); err != nil {
		h.Log.Error("failed to create session", zap.Error(err))
		http.Redirect(w, r, "/signin?error=internal", http.StatusSeeOther)
		return
	}

	h.Log.Info("user signed in",
		zap.String("user_id", user.ID.Hex()),
		zap.String("method", provider))

	if returnURL == "" {
		returnURL = "/"
	}
	http.Redirect(w, r, returnURL, http.StatusSeeOther)
}

// sanitizeReturnURL keeps only same-origin relative paths so the
// callback can never bounce the browser to another site.
func sanitizeReturnURL(raw string) string {
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return ""
	}
	return raw
}
