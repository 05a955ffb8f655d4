// internal/app/features/workspaces/delete.go
package workspaces

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/harborteam/harbor/internal/app/features/errors"
	"github.com/harborteam/harbor/internal/app/system/authz"
	"github.com/harborteam/harbor/internal/app/system/httpjson"
	"github.com/harborteam/harbor/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleDelete handles DELETE /api/workspaces/{id}. Admin only.
//
// The cascade removes children before the workspace itself, so a crash
// mid-way leaves orphaned children behind a still-existing workspace
// (and a retryable delete), never children pointing at a missing
// workspace that guards would no longer protect.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
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
			apierrors.ServerError(w, h.Log, "workspace delete: guard", err)
		}
		return
	}

	steps := []struct {
		name string
		fn   func(context.Context, primitive.ObjectID) (int64, error)
	}{
		{"reactions", h.Reactions.DeleteByWorkspace},
		{"messages", h.Messages.DeleteByWorkspace},
		{"conversations", h.Conversations.DeleteByWorkspace},
		{"channels", h.Channels.DeleteByWorkspace},
		{"members", h.Members.DeleteByWorkspace},
		{"workspace", h.Workspaces.Delete},
	}
	for _, step := range steps {
		n, err := step.fn(ctx, wsID)
		if err != nil {
			apierrors.ServerError(w, h.Log, "workspace delete: "+step.name, err)
			return
		}
		h.Log.Debug("workspace delete step",
			zap.String("workspace_id", wsID.Hex()),
			zap.String("step", step.name),
			zap.Int64("deleted", n))
	}

	h.Log.Info("workspace deleted", zap.String("workspace_id", wsID.Hex()))
	httpjson.NoContent(w)
}
