// internal/app/features/login/otp.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
	apierrors "github.com/harborteam/harbor/internal/app/features/errors"
	"github.com/harborteam/harbor/internal/app/store/emailverify"
	"github.com/harborteam/harbor/internal/app/system/httpjson"
	"github.com/harborteam/harbor/internal/app/system/inputval"
	"github.com/harborteam/harbor/internal/app/system/mailer"
	"github.com/harborteam/harbor/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleOTPSend handles POST /api/auth/otp/send. It always responds
// 200 so the endpoint cannot be used to discover which addresses have
// accounts.
func (h *Handler) HandleOTPSend(w http.ResponseWriter, r *http.Request) {
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

	code, err := h.Verify.Issue(ctx, text.Fold(req.Email), emailverify.PurposeSignIn)
	if err != nil {
		apierrors.ServerError(w, h.Log, "otp send: issue code", err)
		return
	}

	email := mailer.BuildSignInCodeEmail(mailer.CodeEmailData{
		SiteName:  h.SiteName,
		Code:      code,
		ExpiresIn: expiresIn(h.Verify.Expiry()),
	})
	email.To = req.Email
	if err := h.Mailer.Send(email); err != nil {
		// The code is already stored; a resend recovers.
		h.Log.Error("otp send: mail delivery failed", zap.Error(err))
		apierrors.ServerError(w, h.Log, "otp send", err)
		return
	}

	h.Log.Info("sign-in code sent", zap.String("email_ci", text.Fold(req.Email)))
	httpjson.OK(w, map[string]bool{"sent": true})
}

// HandleOTPVerify handles POST /api/auth/otp/verify. A valid code
// signs the user in, creating the account on first use.
func (h *Handler) HandleOTPVerify(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var req otpVerifyRequest
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

	err := h.Verify.Redeem(ctx, text.Fold(req.Email), emailverify.PurposeSignIn, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, emailverify.ErrTooManyAttempts):
			apierrors.PermissionDenied(w, "Too many attempts. Request a new code.")
		case errors.Is(err, emailverify.ErrNotFound), errors.Is(err, emailverify.ErrInvalidCode):
			apierrors.PermissionDenied(w, "The code is not valid or has expired.")
		default:
			apierrors.ServerError(w, h.Log, "otp verify", err)
		}
		return
	}

	user, err := h.Users.UpsertByEmail(ctx, req.Email, nameFromEmail(req.Email), "", methodOTP)
	if err != nil {
		apierrors.ServerError(w, h.Log, "otp verify: upsert user", err)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, sessionUser(user)); err != nil {
		apierrors.ServerError(w, h.Log, "otp verify: session", err)
		return
	}
	h.Log.Info("user signed in",
		zap.String("user_id", user.ID.Hex()),
		zap.String("method", methodOTP))
	httpjson.OK(w, toResponse(user))
}
