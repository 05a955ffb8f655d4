// internal/app/features/workspaces/create.go
package workspaces

import (
	"context"
	"net/http"
	"strings"

	apierrors "github.com/harborteam/harbor/internal/app/features/errors"
	"github.com/harborteam/harbor/internal/app/system/authz"
	"github.com/harborteam/harbor/internal/app/system/httpjson"
	"github.com/harborteam/harbor/internal/app/system/inputval"
	"github.com/harborteam/harbor/internal/app/system/timeouts"
	"github.com/harborteam/harbor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultChannelName is created in every new workspace so the first
// screen is never empty.
const DefaultChannelName = "general"

// HandleCreate handles POST /api/workspaces.
//
// Creating a workspace writes three documents: the workspace, the
// creator's admin membership, and the default channel. Mongo standalone
// has no multi-document transactions, so a failure after the first
// insert rolls back with compensating deletes.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	userID, ok := authz.UserID(r)
	if !ok {
		apierrors.Unauthenticated(w)
		return
	}

	var req createRequest
	if err := httpjson.DecodeBody(r, &req); err != nil {
		apierrors.ValidationFailed(w, "Request body must be valid JSON.")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if v := inputval.Validate(req); v.HasErrors() {
		apierrors.ValidationFailed(w, v.First())
		return
	}

	ws, err := h.Workspaces.Create(ctx, models.Workspace{
		Name:        req.Name,
		OwnerUserID: userID,
	})
	if err != nil {
		apierrors.ServerError(w, h.Log, "workspace create", err)
		return
	}

	member, err := h.Members.Add(ctx, ws.ID, userID, models.RoleAdmin)
	if err != nil {
		h.rollbackCreate(ctx, ws.ID, false)
		apierrors.ServerError(w, h.Log, "workspace create: add admin member", err)
		return
	}

	if _, err := h.Channels.Create(ctx, ws.ID, DefaultChannelName); err != nil {
		h.rollbackCreate(ctx, ws.ID, true)
		apierrors.ServerError(w, h.Log, "workspace create: default channel", err)
		return
	}

	h.Log.Info("workspace created",
		zap.String("workspace_id", ws.ID.Hex()),
		zap.String("owner_user_id", userID.Hex()))

	httpjson.Created(w, toResponse(ws, member))
}

// rollbackCreate undoes a partial workspace creation. Each compensating
// delete is best effort; an orphaned document is better than surfacing
// a second error over the first.
func (h *Handler) rollbackCreate(ctx context.Context, workspaceID primitive.ObjectID, withMembers bool) {
	if withMembers {
		if _, err := h.Members.DeleteByWorkspace(ctx, workspaceID); err != nil {
			h.Log.Warn("workspace create rollback: members", zap.Error(err))
		}
	}
	if _, err := h.Workspaces.Delete(ctx, workspaceID); err != nil {
		h.Log.Warn("workspace create rollback: workspace", zap.Error(err))
	}
}
