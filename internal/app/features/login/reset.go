// internal/app/features/login/reset.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
	apierrors "github.com/harborteam/harbor/internal/app/features/errors"
	"github.com/harborteam/harbor/internal/app/store/emailverify"
	userstore "github.com/harborteam/harbor/internal/app/store/users"
	"github.com/harborteam/harbor/internal/app/system/httpjson"
	"github.com/harborteam/harbor/internal/app/system/inputval"
	"github.com/harborteam/harbor/internal/app/system/mailer"
	"github.com/harborteam/harbor/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// HandleResetSend handles POST /api/auth/password/reset. It responds
// 200 whether or not the address has an account; a code is only
// issued when one exists.
func (h *Handler) HandleResetSend(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var req emailRequest
	if err := httpjson.DecodeBody(r, &req); err != nil {
		apierrors.ValidationFailed(w, "Request body must be valid JSON.")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if v := inputval.Validate(req); v.HasErrors() {
		apierrors.ValidationFailed(w, v.First())
		return
	}

	if _, err := h.Users.GetByEmail(ctx, req.Email); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpjson.OK(w, map[string]bool{"sent": true})
			return
		}
		apierrors.ServerError(w, h.Log, "reset send", err)
		return
	}

	code, err := h.Verify.Issue(ctx, text.Fold(req.Email), emailverify.PurposePasswordReset)
	if err != nil {
		apierrors.ServerError(w, h.Log, "reset send: issue code", err)
		return
	}

	email := mailer.BuildPasswordResetEmail(mailer.CodeEmailData{
		SiteName:  h.SiteName,
		Code:      code,
		ExpiresIn: expiresIn(h.Verify.Expiry()),
	})
	email.To = req.Email
	if err := h.Mailer.Send(email); err != nil {
		apierrors.ServerError(w, h.Log, "reset send: mail delivery", err)
		return
	}

	h.Log.Info("password reset code sent", zap.String("email_ci", text.Fold(req.Email)))
	httpjson.OK(w, map[string]bool{"sent": true})
}

// HandleResetConfirm handles POST /api/auth/password/confirm.
func (h *Handler) HandleResetConfirm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var req resetConfirmRequest
	if err := httpjson.DecodeBody(r, &req); err != nil {
		apierrors.ValidationFailed(w, "Request body must be valid JSON.")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Code = strings.TrimSpace(req.Code)
	if v := inputval.Validate(req); v.HasErrors() {
		apierrors.ValidationFailed(w, v.First())
		return
	}

	err := h.Verify.Redeem(ctx, text.Fold(req.Email), emailverify.PurposePasswordReset, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, emailverify.ErrTooManyAttempts):
			apierrors.PermissionDenied(w, "Too many attempts. Request a new code.")
		case errors.Is(err, emailverify.ErrNotFound), errors.Is(err, emailverify.ErrInvalidCode):
			apierrors.PermissionDenied(w, "The code is not valid or has expired.")
		default:
			apierrors.ServerError(w, h.Log, "reset confirm", err)
		}
		return
	}

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			apierrors.NotFound(w, "Account not found.")
			return
		}
		apierrors.ServerError(w, h.Log, "reset confirm: load user", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		apierrors.ServerError(w, h.Log, "reset confirm: hash password", err)
		return
	}
	if err := h.Users.SetPassword(ctx, user.ID, hash); err != nil {
		apierrors.ServerError(w, h.Log, "reset confirm: set password", err)
		return
	}

	h.Log.Info("password reset", zap.String("user_id", user.ID.Hex()))
	httpjson.OK(w, map[string]bool{"reset": true})
}
