// internal/app/features/workspaces/update.go
package workspaces

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/harborteam/harbor/internal/app/features/errors"
	workspacestore "github.com/harborteam/harbor/internal/app/store/workspaces"
	"github.com/harborteam/harbor/internal/app/system/authz"
	"github.com/harborteam/harbor/internal/app/system/httpjson"
	"github.com/harborteam/harbor/internal/app/system/inputval"
	"github.com/harborteam/harbor/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleRename handles PATCH /api/workspaces/{id}. Admin only.
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	userID, ok := authz.UserID(r)
	if !ok {
		apierrors.Unauthenticated(w)
		return
	}
	wsID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.NotFound(w, "Workspace not found.")
		return
	}

	member, err := h.Guard.Admin(ctx, wsID, userID)
	if err != nil {
		if !apierrors.FromGuard(w, err) {
			apierrors.ServerError(w, h.Log, "workspace rename: guard", err)
		}
		return
	}

	var req renameRequest
	if err := httpjson.DecodeBody(r, &req); err != nil {
		apierrors.ValidationFailed(w, "Request body must be valid JSON.")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if v := inputval.Validate(req); v.HasErrors() {
		apierrors.ValidationFailed(w, v.First())
		return
	}

	if err := h.Workspaces.Rename(ctx, wsID, req.Name); err != nil {
		if errors.Is(err, workspacestore.ErrNotFound) {
			apierrors.NotFound(w, "Workspace not found.")
			return
		}
		apierrors.ServerError(w, h.Log, "workspace rename", err)
		return
	}

	ws, err := h.Workspaces.GetByID(ctx, wsID)
	if err != nil {
		apierrors.ServerError(w, h.Log, "workspace rename: reload", err)
		return
	}
	httpjson.OK(w, toResponse(ws, member))
}

// HandleNewJoinCode handles POST /api/workspaces/{id}/join-code.
// Admin only. The old code stops working the moment this returns.
func (h *Handler) HandleNewJoinCode(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	userID, ok := authz.UserID(r)
	if !ok {
		apierrors.Unauthenticated(w)
		return
	}
	wsID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.NotFound(w, "Workspace not found.")
		return
	}

	if _, err := h.Guard.Admin(ctx, wsID, userID); err != nil {
		if !apierrors.FromGuard(w, err) {
			apierrors.ServerError(w, h.Log, "join code rotate: guard", err)
		}
		return
	}

	code, err := h.Workspaces.RegenerateJoinCode(ctx, wsID)
	if err != nil {
		if errors.Is(err, workspacestore.ErrNotFound) {
			apierrors.NotFound(w, "Workspace not found.")
			return
		}
		apierrors.ServerError(w, h.Log, "join code rotate", err)
		return
	}

	h.Log.Info("join code rotated", zap.String("workspace_id", wsID.Hex()))
	httpjson.OK(w, map[string]string{"joinCode": code})
}
