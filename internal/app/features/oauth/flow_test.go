package oauth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/harborteam/harbor/internal/app/features/oauth"
	oauthstatestore "github.com/harborteam/harbor/internal/app/store/oauthstate"
	userstore "github.com/harborteam/harbor/internal/app/store/users"
	"github.com/harborteam/harbor/internal/app/system/auth"
	"github.com/harborteam/harbor/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, google, github oauth.ProviderConfig) *oauth.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	sm, err := auth.NewSessionManager("test-session-key", "harbor-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return oauth.NewHandler(
		userstore.New(db),
		oauthstatestore.New(db),
		sm,
		"http://localhost:8080",
		google,
		github,
		zap.NewNop(),
	)
}

func startLogin(t *testing.T, h *oauth.Handler, target, provider string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewRequest("GET", target)
	req = testutil.WithChiURLParam(req, "provider", provider)
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, req)
	return rec
}

func TestServeLogin_UnconfiguredProvider(t *testing.T) {
	h := newTestHandler(t, oauth.ProviderConfig{}, oauth.ProviderConfig{})

	rec := startLogin(t, h, "/auth/google", oauth.ProviderGoogle)
	testutil.AssertStatus(t, rec, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != "/signin?error=provider_not_configured" {
		t.Errorf("location: got %q", loc)
	}
}

func TestServeLogin_RedirectsToProvider(t *testing.T) {
	h := newTestHandler(t, oauth.ProviderConfig{ClientID: "id", ClientSecret: "secret"}, oauth.ProviderConfig{})

	rec := startLogin(t, h, "/auth/google?return=/w/abc", oauth.ProviderGoogle)
	testutil.AssertStatus(t, rec, http.StatusTemporaryRedirect)

	loc, err := rec.Result().Location()
	if err != nil {
		t.Fatalf("no redirect location: %v", err)
	}
	if loc.Host != "accounts.google.com" {
		t.Errorf("redirect host: got %q, want accounts.google.com", loc.Host)
	}
	if loc.Query().Get("state") == "" {
		t.Error("expected a state parameter on the authorize URL")
	}
	if got := loc.Query().Get("client_id"); got != "id" {
		t.Errorf("client_id: got %q", got)
	}
}

func TestServeCallback_UnknownState(t *testing.T) {
	h := newTestHandler(t, oauth.ProviderConfig{ClientID: "id", ClientSecret: "secret"}, oauth.ProviderConfig{})

	req := testutil.NewRequest("GET", "/auth/google/callback?state=bogus&code=whatever")
	req = testutil.WithChiURLParam(req, "provider", oauth.ProviderGoogle)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	testutil.AssertStatus(t, rec, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != "/signin?error=invalid_state" {
		t.Errorf("location: got %q", loc)
	}
}

func TestServeCallback_ProviderDenied(t *testing.T) {
	h := newTestHandler(t, oauth.ProviderConfig{ClientID: "id", ClientSecret: "secret"}, oauth.ProviderConfig{})

	req := testutil.NewRequest("GET", "/auth/google/callback?error=access_denied")
	req = testutil.WithChiURLParam(req, "provider", oauth.ProviderGoogle)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	testutil.AssertStatus(t, rec, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != "/signin?error=provider_denied" {
		t.Errorf("location: got %q", loc)
	}
}
