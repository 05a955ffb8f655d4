// internal/app/features/login/password.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apierrors "github.com/harborteam/harbor/internal/app/features/errors"
	userstore "github.com/harborteam/harbor/internal/app/store/users"
	"github.com/harborteam/harbor/internal/app/system/authz"
	"github.com/harborteam/harbor/internal/app/system/httpjson"
	"github.com/harborteam/harbor/internal/app/system/inputval"
	"github.com/harborteam/harbor/internal/app/system/timeouts"
	"github.com/harborteam/harbor/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// HandleSignup handles POST /api/auth/signup.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var req signupRequest
	if err := httpjson.DecodeBody(r, &req); err != nil {
		apierrors.ValidationFailed(w, "Request body must be valid JSON.")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if v := inputval.Validate(req); v.HasErrors() {
		apierrors.ValidationFailed(w, v.First())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		apierrors.ServerError(w, h.Log, "signup: hash password", err)
		return
	}

	user, err := h.Users.Create(ctx, models.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		AuthMethod:   methodPassword,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			apierrors.Conflict(w, "An account with this email already exists.")
			return
		}
		apierrors.ServerError(w, h.Log, "signup", err)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, sessionUser(user)); err != nil {
		apierrors.ServerError(w, h.Log, "signup: session", err)
		return
	}
	h.Log.Info("user signed up", zap.String("user_id", user.ID.Hex()))
	httpjson.Created(w, toResponse(user))
}

// HandleSignin handles POST /api/auth/signin. One generic failure
// message covers unknown email, wrong password, and passwordless
// accounts alike.
func (h *Handler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var req signinRequest
	if err := httpjson.DecodeBody(r, &req); err != nil {
		apierrors.ValidationFailed(w, "Request body must be valid JSON.")
		return
	}
	if v := inputval.Validate(req); v.HasErrors() {
		apierrors.ValidationFailed(w, v.First())
		return
	}

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			apierrors.PermissionDenied(w, "Invalid email or password.")
			return
		}
		apierrors.ServerError(w, h.Log, "signin", err)
		return
	}
	if len(user.PasswordHash) == 0 {
		apierrors.PermissionDenied(w, "Invalid email or password.")
		return
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)); err != nil {
		h.Log.Info("signin rejected", zap.String("user_id", user.ID.Hex()))
		apierrors.PermissionDenied(w, "Invalid email or password.")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, sessionUser(user)); err != nil {
		apierrors.ServerError(w, h.Log, "signin: session", err)
		return
	}
	h.Log.Info("user signed in",
		zap.String("user_id", user.ID.Hex()),
		zap.String("method", methodPassword))
	httpjson.OK(w, toResponse(user))
}

// HandleSignout handles POST /api/auth/signout.
func (h *Handler) HandleSignout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		apierrors.ServerError(w, h.Log, "signout", err)
		return
	}
	httpjson.NoContent(w)
}

// ServeMe handles GET /api/auth/me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	userID, ok := authz.UserID(r)
	if !ok {
		apierrors.Unauthenticated(w)
		return
	}
	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		apierrors.Unauthenticated(w)
		return
	}
	httpjson.OK(w, toResponse(user))
}

// HandleUpdateMe handles PATCH /api/auth/me. Name and image update
// independently; an omitted field keeps its current value.
func (h *Handler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	userID, ok := authz.UserID(r)
	if !ok {
		apierrors.Unauthenticated(w)
		return
	}

	var req updateMeRequest
	if err := httpjson.DecodeBody(r, &req); err != nil {
		apierrors.ValidationFailed(w, "Request body must be valid JSON.")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if v := inputval.Validate(req); v.HasErrors() {
		apierrors.ValidationFailed(w, v.First())
		return
	}
	if req.Name == "" && req.Image == "" {
		apierrors.ValidationFailed(w, "Nothing to update.")
		return
	}

	if err := h.Users.UpdateProfile(ctx, userID, req.Name, req.Image); err != nil {
		apierrors.ServerError(w, h.Log, "profile update", err)
		return
	}
	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		apierrors.ServerError(w, h.Log, "profile update: reload", err)
		return
	}
	h.Log.Info("profile updated", zap.String("user_id", userID.Hex()))
	httpjson.OK(w, toResponse(user))
}
