// internal/app/features/members/remove.go
package members

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/harborteam/harbor/internal/app/features/errors"
	"github.com/harborteam/harbor/internal/app/system/authz"
	"github.com/harborteam/harbor/internal/app/system/guard"
	"github.com/harborteam/harbor/internal/app/system/httpjson"
	"github.com/harborteam/harbor/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleRemove handles DELETE /api/members/{memberId}.
//
// Members may remove themselves (leave); admins may remove anyone but
// an admin. An admin wanting out must first be demoted or hand the
// workspace to another admin, which keeps the last-admin invariant in
// one place (the role update).
//
// Removal also deletes the member's authored content: messages,
// reactions, and direct conversations. Content deletes run before the
// membership delete so a retry after a partial failure still finds the
// membership and can resume.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	userID, ok := authz.UserID(r)
	if !ok {
		apierrors.Unauthenticated(w)
		return
	}
	memberID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "memberId"))
	if err != nil {
		apierrors.NotFound(w, "Member not found.")
		return
	}

	target, err := h.Members.GetByID(ctx, memberID)
	if err != nil {
		apierrors.NotFound(w, "Member not found.")
		return
	}

	self := target.UserID == userID
	if !self {
		if _, err := h.Guard.Admin(ctx, target.WorkspaceID, userID); err != nil {
			if !apierrors.FromGuard(w, err) {
				apierrors.ServerError(w, h.Log, "member remove: guard", err)
			}
			return
		}
	} else {
		// Leaving still requires a live membership, which GetByID proved.
		if _, err := h.Guard.Member(ctx, target.WorkspaceID, userID); err != nil {
			if errors.Is(err, guard.ErrNotMember) {
				apierrors.NotFound(w, "Member not found.")
				return
			}
			apierrors.ServerError(w, h.Log, "member remove: guard", err)
			return
		}
	}

	if target.IsAdmin() {
		apierrors.Conflict(w, "Admins cannot be removed. Change the role first.")
		return
	}

	steps := []struct {
		name string
		fn   func(context.Context, primitive.ObjectID) (int64, error)
	}{
		{"reactions", h.Reactions.DeleteByMember},
		{"messages", h.Messages.DeleteByMember},
		{"conversations", h.Conversations.DeleteByMember},
	}
	for _, step := range steps {
		if _, err := step.fn(ctx, memberID); err != nil {
			apierrors.ServerError(w, h.Log, "member remove: "+step.name, err)
			return
		}
	}

	if err := h.Members.Remove(ctx, memberID); err != nil {
		apierrors.ServerError(w, h.Log, "member remove", err)
		return
	}

	h.Log.Info("member removed",
		zap.String("member_id", memberID.Hex()),
		zap.String("workspace_id", target.WorkspaceID.Hex()),
		zap.Bool("self", self))
	httpjson.NoContent(w)
}
